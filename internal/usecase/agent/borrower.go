package agent

import (
	"context"
	"fmt"

	agentDomain "fivebells/internal/domain/agent"
	"fivebells/internal/domain/statistic"
	bankuc "fivebells/internal/usecase/bank"

	"go.uber.org/zap"
)

// Borrower is a person living on credit: when debt free it takes out a loan,
// otherwise it pays every due installment it can afford.
type Borrower struct {
	agentDomain.Base
	BankID    uint64
	AccountID uint64
	Amount    int64
	Duration  int
	Frequency int
	LoanType  string

	bank  Banking
	loans Loans
	stats statistic.Repository
	log   *zap.Logger

	paid    int64
	skipped int
}

type BorrowerConfig struct {
	Name      string
	WorldID   uint64
	BankID    uint64
	AccountID uint64
	Amount    int64
	Duration  int
	Frequency int
	LoanType  string
}

func NewBorrower(cfg BorrowerConfig, bank Banking, loans Loans, stats statistic.Repository, log *zap.Logger) *Borrower {
	if log == nil {
		log = zap.NewNop()
	}
	return &Borrower{
		Base:      agentDomain.Base{AgentName: cfg.Name, AgentKind: agentDomain.KindPerson, WorldID: cfg.WorldID},
		BankID:    cfg.BankID,
		AccountID: cfg.AccountID,
		Amount:    cfg.Amount,
		Duration:  cfg.Duration,
		Frequency: cfg.Frequency,
		LoanType:  cfg.LoanType,
		bank:      bank,
		loans:     loans,
		stats:     stats,
		log:       log.With(zap.String("agent", cfg.Name)),
	}
}

func (b *Borrower) Evaluate(ctx context.Context, cycle int64) error {
	loans, err := b.loans.ByBorrower(ctx, b.AccountID)
	if err != nil {
		return err
	}
	var open []uint64
	for _, l := range loans {
		if l.PrincipalRemaining > 0 {
			open = append(open, l.ID)
		}
	}

	if len(open) == 0 {
		l, err := b.bank.RequestLoan(ctx, bankuc.LoanRequest{
			BankID:            b.BankID,
			BorrowerAccountID: b.AccountID,
			Amount:            b.Amount,
			Duration:          b.Duration,
			Frequency:         b.Frequency,
			LoanType:          b.LoanType,
		})
		if err != nil {
			return fmt.Errorf("request loan: %w", err)
		}
		b.log.Debug("borrower: loan taken", zap.String("loan_no", l.LoanNo), zap.Int64("cycle", cycle))
		return nil
	}

	for _, id := range open {
		due, err := b.loans.PaymentDue(ctx, id, cycle)
		if err != nil {
			return err
		}
		if !due {
			continue
		}
		next, err := b.loans.NextPayment(ctx, id)
		if err != nil {
			return err
		}
		balance, err := b.bank.Balance(ctx, b.AccountID)
		if err != nil {
			return err
		}
		if balance < next.Total {
			b.skipped++
			b.log.Info("borrower: cannot afford payment",
				zap.Uint64("loan_id", id), zap.Int("payment_no", next.PaymentNo),
				zap.Int64("due", next.Total), zap.Int64("balance", balance))
			continue
		}
		p, err := b.bank.MakeLoanPayment(ctx, id)
		if err != nil {
			return fmt.Errorf("pay loan %d: %w", id, err)
		}
		b.paid += p.Total()
	}
	return nil
}

func (b *Borrower) RecordStats(ctx context.Context, cycle int64) error {
	balance, err := b.bank.Balance(ctx, b.AccountID)
	if err != nil {
		return err
	}
	if err := record(ctx, b.stats, b.WorldID, b.AgentName+".balance", cycle, balance); err != nil {
		return err
	}
	if err := record(ctx, b.stats, b.WorldID, b.AgentName+".paid", cycle, b.paid); err != nil {
		return err
	}
	return record(ctx, b.stats, b.WorldID, b.AgentName+".skipped", cycle, int64(b.skipped))
}

func (b *Borrower) ResetInternals(context.Context) error {
	b.paid = 0
	b.skipped = 0
	return nil
}
