package agent

import (
	"context"

	agentDomain "fivebells/internal/domain/agent"
	bankDomain "fivebells/internal/domain/bank"
	"fivebells/internal/domain/statistic"

	"go.uber.org/zap"
)

// CustomerBank keeps its settlement reserve topped up from cash and records
// its loan book every cycle.
type CustomerBank struct {
	agentDomain.Base
	BankID        uint64
	ReserveTarget int64

	bank  Banking
	stats statistic.Repository
	log   *zap.Logger
}

func NewCustomerBank(name string, worldID, bankID uint64, reserveTarget int64, bank Banking, stats statistic.Repository, log *zap.Logger) *CustomerBank {
	if log == nil {
		log = zap.NewNop()
	}
	return &CustomerBank{
		Base:          agentDomain.Base{AgentName: name, AgentKind: agentDomain.KindBank, WorldID: worldID},
		BankID:        bankID,
		ReserveTarget: reserveTarget,
		bank:          bank,
		stats:         stats,
		log:           log.With(zap.String("agent", name)),
	}
}

func (c *CustomerBank) Evaluate(ctx context.Context, cycle int64) error {
	reserve, err := c.bank.LedgerBalance(ctx, c.BankID, bankDomain.LedgerReserve)
	if err != nil {
		return err
	}
	if reserve >= c.ReserveTarget {
		return nil
	}
	cash, err := c.bank.LedgerBalance(ctx, c.BankID, bankDomain.LedgerCash)
	if err != nil {
		return err
	}
	amount := min(c.ReserveTarget-reserve, cash)
	if amount <= 0 {
		return nil
	}
	if _, err := c.bank.FundReserve(ctx, c.BankID, amount); err != nil {
		return err
	}
	c.log.Debug("bank: reserve funded", zap.Int64("amount", amount), zap.Int64("cycle", cycle))
	return nil
}

func (c *CustomerBank) RecordStats(ctx context.Context, cycle int64) error {
	capital, err := c.bank.LoanCapitalOutstanding(ctx, c.BankID)
	if err != nil {
		return err
	}
	if err := record(ctx, c.stats, c.WorldID, c.AgentName+".loan_capital", cycle, capital); err != nil {
		return err
	}
	reserve, err := c.bank.LedgerBalance(ctx, c.BankID, bankDomain.LedgerReserve)
	if err != nil {
		return err
	}
	return record(ctx, c.stats, c.WorldID, c.AgentName+".reserve", cycle, reserve)
}
