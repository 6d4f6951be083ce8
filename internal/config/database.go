package config

import (
	"fmt"

	"claims-payment-backend/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func InitDB(cfg *Config, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("Database connected", zap.String("host", cfg.DB.Host), zap.String("name", cfg.DB.Name))
	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.ProviderRecord{},
		&models.BatchRecord{},
		&models.PaymentRecord{},
		&models.UploadJob{},
		&models.PaymentAuditLog{},
	)
}
