package main

import (
	"context"
	"fmt"

	"fivebells/internal/adapter/repository/mysql"
	"fivebells/internal/config"
	agentDomain "fivebells/internal/domain/agent"
	bankDomain "fivebells/internal/domain/bank"
	"fivebells/internal/domain/ledger"
	"fivebells/internal/infrastructure/db"
	"fivebells/internal/usecase/agent"
	bankuc "fivebells/internal/usecase/bank"
	loanuc "fivebells/internal/usecase/loan"
	worlduc "fivebells/internal/usecase/world"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// app holds the wired services every command shares.
type app struct {
	cfg *config.Config
	log *zap.Logger
	db  *gorm.DB

	registry *agentDomain.Registry
	bank     *bankuc.Service
	loans    *loanuc.Usecase
	worlds   *worlduc.Usecase
	stats    *mysql.StatisticRepository
}

func openDB(c *config.Config) (*gorm.DB, error) {
	switch c.DBDriver {
	case "sqlite":
		return db.OpenSQLite(c.SQLitePath)
	default:
		return db.OpenGorm(c.MySQLDSN())
	}
}

func newApp(c *config.Config, log *zap.Logger) (*app, error) {
	gdb, err := openDB(c)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	rate, err := c.Rate()
	if err != nil {
		return nil, err
	}
	flow, err := ledger.ParseFlowMode(c.FlowMode)
	if err != nil {
		return nil, err
	}

	tx := mysql.NewGormUoW(gdb)
	reg := agentDomain.NewRegistry()
	a := &app{
		cfg:      c,
		log:      log,
		db:       gdb,
		registry: reg,
		bank:     bankuc.NewService(tx, bankDomain.FixedRate{Value: rate}, flow, log.Named("bank")),
		loans:    loanuc.NewUsecase(mysql.NewLoanRepository(gdb), tx),
		worlds:   worlduc.NewUsecase(mysql.NewWorldRepository(gdb), tx, reg, worlduc.NewRand(c.SimSeed), log.Named("world")),
		stats:    mysql.NewStatisticRepository(gdb),
	}
	return a, nil
}

// populate registers the reference agents of every world.
func (a *app) populate(ctx context.Context) error {
	ws, err := a.worlds.List(ctx)
	if err != nil {
		return err
	}
	for _, w := range ws {
		if _, err := a.populateWorld(ctx, w.ID); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) populateWorld(ctx context.Context, worldID uint64) (int, error) {
	return agent.Populate(ctx, a.registry, mysql.NewBankRepository(a.db), mysql.NewLedgerRepository(a.db),
		worldID, a.bank, a.loans, a.stats, agent.PopulationConfig{}, a.log.Named("agent"))
}

func (a *app) close() {
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
