package routes

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"claims-payment-backend/internal/config"
	handler "claims-payment-backend/internal/handlers"
	"claims-payment-backend/internal/identity"
	"claims-payment-backend/internal/progress"
	"claims-payment-backend/internal/receipt"
	"claims-payment-backend/internal/repository"
	"claims-payment-backend/internal/services/account"
	"claims-payment-backend/internal/services/registry"
)

// Roles allowed to delete records.
var deleteRoles = []string{"admin", "account"}

type Handlers struct {
	Account  *handler.AccountHandler
	Registry *handler.RegistryHandler
}

// RegisterRoutes wires repositories, services and handlers onto r. The
// returned service lets the caller wait for background uploads on shutdown.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config, log *zap.Logger, tracker progress.Tracker) *account.AccountService {
	paymentRepo := repository.NewPaymentRepository(db)
	providerRepo := repository.NewProviderRepository(db)
	batchRepo := repository.NewBatchRepository(db)

	accountService := account.NewAccountService(account.Deps{
		Payments:  paymentRepo,
		Providers: providerRepo,
		Batches:   batchRepo,
		Jobs:      repository.NewUploadJobRepository(db),
		Audit:     repository.NewAuditLogRepository(db),
		Progress:  tracker,
		Receipts:  receipt.NewRenderer(cfg.PayingBank, cfg.ReceiptTimeout),
		Log:       log.Named("account"),
	})
	registryService := registry.NewRegistryService(providerRepo, batchRepo, log.Named("registry"))

	Mount(r, Handlers{
		Account:  handler.NewAccountHandler(accountService, log.Named("http")),
		Registry: handler.NewRegistryHandler(registryService, log.Named("http")),
	}, identity.NewHeaderProvider())

	return accountService
}

func Mount(r *gin.Engine, h Handlers, ids identity.Provider) {
	api := r.Group("/api")
	api.Use(identity.Middleware(ids))

	// Health check
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	payments := api.Group("/payments")
	payments.POST("/upload", identity.RequireAuthenticated(), h.Account.Upload)
	payments.GET("/uploads/:id", h.Account.GetUpload)
	payments.GET("", h.Account.List)
	payments.GET("/stats", h.Account.Stats)
	payments.GET("/export", h.Account.Export)
	payments.GET("/:id/receipt", h.Account.Receipt)
	payments.DELETE("/:id", identity.RequireRole(deleteRoles...), h.Account.Delete)

	providers := api.Group("/providers")
	providers.POST("", identity.RequireAuthenticated(), h.Registry.CreateProvider)
	providers.GET("", h.Registry.ListProviders)
	providers.GET("/export", h.Registry.ExportProviders)
	providers.DELETE("/:id", identity.RequireRole(deleteRoles...), h.Registry.DeleteProvider)

	batches := api.Group("/batches")
	{
		batches.POST("", identity.RequireAuthenticated(), h.Registry.CreateBatch)
		batches.GET("", h.Registry.ListBatches)
		batches.GET("/export", h.Registry.ExportBatches)
		batches.DELETE("/:id", identity.RequireRole(deleteRoles...), h.Registry.DeleteBatch)
	}
}
