package db

import (
	"context"
	"time"

	"fivebells/internal/domain/bank"
	"fivebells/internal/domain/ledger"
	"fivebells/internal/domain/loan"
	"fivebells/internal/domain/outbox"
	"fivebells/internal/domain/statistic"
	"fivebells/internal/domain/transfer"
	"fivebells/internal/domain/world"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func OpenGorm(dsn string) (*gorm.DB, error) {
	return OpenGormWithDialector(mysql.Open(dsn))
}

// OpenSQLite opens an embedded database. A single connection keeps
// ":memory:" databases alive and serialises writers.
func OpenSQLite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

func OpenGormWithDialector(dial gorm.Dialector) (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	}
	db, err := gorm.Open(dial, cfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(30)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}
	zap.L().Info("gorm: connected", zap.String("dialect", dial.Name()))
	return db, nil
}

// Models lists every table the economy persists.
func Models() []any {
	return []any{
		&world.World{},
		&bank.Bank{},
		&ledger.Ledger{},
		&ledger.Account{},
		&transfer.Transfer{},
		&loan.Loan{},
		&loan.Payment{},
		&statistic.Statistic{},
		&statistic.Value{},
		&outbox.Message{},
	}
}

func Migrate(db *gorm.DB) error { return db.AutoMigrate(Models()...) }

// Check returns a ping for the health endpoint.
func Check(db *gorm.DB) func(context.Context) error {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}
