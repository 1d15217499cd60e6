// Package mysql stores saved searches in MySQL through gorm.
package mysql

import (
	"context"
	"fmt"
	"time"

	"audit-log-search/config"
	"audit-log-search/internal/model"

	"github.com/rs/zerolog/log"
	"go.uber.org/fx"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DSN renders the go-sql-driver connection string for cfg.
func DSN(cfg config.DatabaseConfig) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Name)
}

// NewDB opens the saved-search database and migrates its schema. It returns
// a nil DB when no database host is configured.
func NewDB(lc fx.Lifecycle, cfg *config.Config) (*gorm.DB, error) {
	if cfg.Database.Host == "" {
		log.Info().Msg("DATABASE_HOST not set, saved searches disabled")
		return nil, nil
	}

	db, err := gorm.Open(mysql.Open(DSN(cfg.Database)), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		log.Error().Err(err).Str("host", cfg.Database.Host).Msg("Failed to open MySQL connection")
		return nil, fmt.Errorf("failed to connect to mysql: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&model.SavedSearch{}); err != nil {
		log.Error().Err(err).Msg("Failed to migrate saved search schema")
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}
	log.Info().Str("host", cfg.Database.Host).Str("database", cfg.Database.Name).Msg("MySQL connection established")

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Closing MySQL connection...")
			return sqlDB.Close()
		},
	})
	return db, nil
}
