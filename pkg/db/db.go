package db

import (
	"github.com/SeredDEV/store-payments/internal/config"
	"github.com/SeredDEV/store-payments/internal/events"
	sessiondomain "github.com/SeredDEV/store-payments/internal/session/domain"
	webhookdomain "github.com/SeredDEV/store-payments/internal/webhook/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open connects to the configured database and ensures the schema exists.
func Open(cfg config.Config, log *zap.Logger) (*gorm.DB, error) {
	conn, err := gorm.Open(sqlite.Open(cfg.DatabaseDSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}

	if err := conn.AutoMigrate(
		&sessiondomain.PaymentCollection{},
		&sessiondomain.PaymentSession{},
		&webhookdomain.EventRecord{},
		&events.OutboxEntry{},
	); err != nil {
		return nil, err
	}

	log.Info("database ready", zap.String("dsn", cfg.DatabaseDSN))
	return conn, nil
}

var Module = fx.Module("db",
	fx.Provide(Open),
)
