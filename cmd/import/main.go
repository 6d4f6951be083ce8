// Command import loads a local payment file the same way the upload
// endpoint does, but synchronously, and prints the outcome.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"claims-payment-backend/internal/config"
	"claims-payment-backend/internal/identity"
	"claims-payment-backend/internal/progress"
	"claims-payment-backend/internal/receipt"
	"claims-payment-backend/internal/repository"
	"claims-payment-backend/internal/services/account"
	"claims-payment-backend/internal/services/upload"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	file := flag.String("file", "", "CSV or XLSX payment file")
	user := flag.String("user", "", "email recorded as uploader")
	flag.Parse()
	if *file == "" {
		fmt.Fprintln(os.Stderr, "usage: import -file payments.csv [-user ops@example.com]")
		os.Exit(2)
	}

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on system env")
	}
	cfg := config.Load()

	logger, err := config.NewLogger(cfg.LogLevel, cfg.LogDir)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	db, err := config.InitDB(cfg, logger)
	if err != nil {
		logger.Fatal("Database unavailable", zap.Error(err))
	}
	if err := config.Migrate(db); err != nil {
		logger.Fatal("Migration failed", zap.Error(err))
	}

	f, err := os.Open(*file)
	if err != nil {
		logger.Fatal("Cannot open file", zap.String("file", *file), zap.Error(err))
	}
	defer f.Close()

	svc := account.NewAccountService(account.Deps{
		Payments:  repository.NewPaymentRepository(db),
		Providers: repository.NewProviderRepository(db),
		Batches:   repository.NewBatchRepository(db),
		Jobs:      repository.NewUploadJobRepository(db),
		Audit:     repository.NewAuditLogRepository(db),
		Progress:  progress.NewMemoryTracker(),
		Receipts:  receipt.NewRenderer(cfg.PayingBank, cfg.ReceiptTimeout),
		Log:       logger.Named("import"),
	})

	// Ctrl-C stops after the row in flight.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	who := identity.Identity{Authenticated: *user != "", Email: *user}
	job, out, err := svc.Import(ctx, who, filepath.Base(*file), f)
	if err != nil {
		var missing *upload.MissingColumnsError
		if errors.As(err, &missing) {
			fmt.Fprintln(os.Stderr, missing.Error())
			os.Exit(1)
		}
		logger.Fatal("Import failed", zap.Error(err))
	}

	fmt.Printf("upload %s: %s (%d of %d rows inserted)\n", job.ID, out.Status, out.Inserted, out.Total)
	fmt.Println(out.Message)
	if out.Status != upload.StatusAllSucceeded {
		os.Exit(1)
	}
}
