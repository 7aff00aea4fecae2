// internal/database/connection.go
package database

import (
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/javajoker/marketplace-catalog/internal/config"
	"github.com/javajoker/marketplace-catalog/internal/models"
)

var logLevels = map[string]logger.LogLevel{
	"silent": logger.Silent,
	"error":  logger.Error,
	"warn":   logger.Warn,
	"info":   logger.Info,
}

func Initialize(cfg config.DatabaseConfig, log logrus.FieldLogger) (*gorm.DB, error) {
	level, ok := logLevels[cfg.LogLevel]
	if !ok {
		level = logger.Warn
	}

	gormConfig := &gorm.Config{
		Logger: logger.New(log, logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		}),
		TranslateError: true,
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get underlying sql.DB")
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	if err := sqlDB.Ping(); err != nil {
		return nil, errors.Wrap(err, "failed to ping database")
	}

	log.WithFields(logrus.Fields{
		"host":     cfg.Host,
		"database": cfg.Database,
	}).Info("database connection established")
	return db, nil
}

func Close(db *gorm.DB, log logrus.FieldLogger) {
	sqlDB, err := db.DB()
	if err != nil {
		log.WithError(err).Error("error getting underlying sql.DB")
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.WithError(err).Error("error closing database connection")
		return
	}
	log.Info("database connection closed")
}

func RunMigrations(db *gorm.DB, log logrus.FieldLogger) error {
	log.Info("running database migrations")

	// gen_random_uuid() is built in from PostgreSQL 13; pgcrypto covers older servers.
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "pgcrypto"`).Error; err != nil {
		return errors.Wrap(err, "failed to create pgcrypto extension")
	}

	err := db.AutoMigrate(
		&models.Vendor{},
		&models.Product{},
		&models.Review{},
		&models.ReviewResponse{},
		&models.AuditLog{},
		&models.Notification{},
	)
	if err != nil {
		return errors.Wrap(err, "failed to run migrations")
	}

	if err := createIndexes(db, log); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	log.Info("database migrations completed")
	return nil
}

// createIndexes adds the indexes AutoMigrate cannot express. The partial
// unique indexes back the review rules and must exist; the rest are best-effort.
func createIndexes(db *gorm.DB, log logrus.FieldLogger) error {
	constraints := []string{
		// One active review per reviewer and product
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_reviews_active_reviewer_product ON reviews(reviewer_id, product_id) WHERE is_active AND deleted_at IS NULL",
		// One vendor response per review
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_review_responses_vendor ON review_responses(review_id) WHERE is_vendor_response AND deleted_at IS NULL",
	}
	for _, constraint := range constraints {
		if err := db.Exec(constraint).Error; err != nil {
			return err
		}
	}

	indexes := []string{
		// Product listing indexes
		"CREATE INDEX IF NOT EXISTS idx_products_public ON products(status, available, approval_kind) WHERE deleted_at IS NULL",
		"CREATE INDEX IF NOT EXISTS idx_products_category_price ON products(category_slug, price)",
		"CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_products_search ON products USING GIN(to_tsvector('english', name || ' ' || coalesce(description, '')))",

		// Admin indexes
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_resource ON audit_logs(resource_type, resource_id)",
		"CREATE INDEX IF NOT EXISTS idx_notifications_recipient ON notifications(recipient_id, status, created_at DESC)",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			// Continue with other indexes instead of failing completely
			log.WithError(err).WithField("index", index).Warn("failed to create index")
		}
	}
	return nil
}
