package db

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"steam-bff-backend/config"
	"steam-bff-backend/internal/model"
)

// Init opens the user directory and runs migrations. DSNs starting with
// postgres:// or postgresql://, or containing "host=", use PostgreSQL;
// anything else is treated as a SQLite path.
func Init(cfg *config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	dialector, driver := dialectorFor(cfg.DSN)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)
	if driver == "sqlite" {
		// A shared in-memory database vanishes with its last connection.
		sqlDB.SetMaxIdleConns(max(cfg.MaxIdleConns, 1))
		sqlDB.SetConnMaxLifetime(0)
	}

	log.Info("running database migrations", zap.String("driver", driver))
	if err := db.AutoMigrate(&model.User{}); err != nil {
		return nil, fmt.Errorf("automigrate failed: %w", err)
	}

	return db, nil
}

func dialectorFor(dsn string) (gorm.Dialector, string) {
	lower := strings.ToLower(dsn)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") || strings.Contains(lower, "host=") {
		return postgres.Open(dsn), "postgres"
	}
	return sqlite.Open(dsn), "sqlite"
}
