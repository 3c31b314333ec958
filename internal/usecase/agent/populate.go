package agent

import (
	"context"
	"fmt"

	agentDomain "fivebells/internal/domain/agent"
	bankDomain "fivebells/internal/domain/bank"
	"fivebells/internal/domain/ledger"
	"fivebells/internal/domain/statistic"

	"go.uber.org/zap"
)

// PopulationConfig sets the behaviour of the agents Populate creates.
type PopulationConfig struct {
	ReserveTarget int64
	LoanAmount    int64
	LoanDuration  int
	LoanFrequency int
	LoanType      string
}

func (c PopulationConfig) withDefaults() PopulationConfig {
	if c.ReserveTarget <= 0 {
		c.ReserveTarget = 1000
	}
	if c.LoanAmount <= 0 {
		c.LoanAmount = 1200
	}
	if c.LoanDuration <= 0 {
		c.LoanDuration = 12
	}
	return c
}

// Populate registers one CustomerBank per customer bank of the world and one
// Borrower per person-owned deposit account. It returns the number of agents
// registered.
func Populate(ctx context.Context, reg *agentDomain.Registry, banks bankDomain.Repository, ledgers ledger.Repository,
	worldID uint64, bank Banking, loans Loans, stats statistic.Repository, cfg PopulationConfig, log *zap.Logger) (int, error) {
	cfg = cfg.withDefaults()
	if log == nil {
		log = zap.NewNop()
	}
	bs, err := banks.ListByWorld(ctx, worldID)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, b := range bs {
		if b.Kind != bankDomain.KindCustomer {
			continue
		}
		reg.Register(worldID, NewCustomerBank(b.Name, worldID, b.ID, cfg.ReserveTarget, bank, stats, log))
		n++

		dep, err := ledgers.GetLedgerByName(ctx, b.ID, bankDomain.LedgerDeposit)
		if err != nil {
			return n, fmt.Errorf("bank %s: deposit ledger: %w", b.Name, err)
		}
		accounts, err := ledgers.ListAccounts(ctx, dep.ID)
		if err != nil {
			return n, err
		}
		for _, a := range accounts {
			if a.Owner.Kind != ledger.OwnerPerson {
				continue
			}
			reg.Register(worldID, NewBorrower(BorrowerConfig{
				Name:      fmt.Sprintf("%s.%s", b.Name, a.AccountNo),
				WorldID:   worldID,
				BankID:    b.ID,
				AccountID: a.ID,
				Amount:    cfg.LoanAmount,
				Duration:  cfg.LoanDuration,
				Frequency: cfg.LoanFrequency,
				LoanType:  cfg.LoanType,
			}, bank, loans, stats, log))
			n++
		}
	}
	log.Info("agents registered", zap.Uint64("world_id", worldID), zap.Int("count", n))
	return n, nil
}
