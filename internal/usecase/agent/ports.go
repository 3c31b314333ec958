// Package agent holds reference agents that drive the bank service from the
// scheduler. Market and factory heuristics live elsewhere.
package agent

import (
	"context"

	"fivebells/internal/domain/loan"
	"fivebells/internal/domain/statistic"
	"fivebells/internal/domain/transfer"
	bankuc "fivebells/internal/usecase/bank"
	loanuc "fivebells/internal/usecase/loan"
)

// Banking is the part of the bank service agents call.
type Banking interface {
	Balance(ctx context.Context, accountID uint64) (int64, error)
	LedgerBalance(ctx context.Context, bankID uint64, name string) (int64, error)
	LoanCapitalOutstanding(ctx context.Context, bankID uint64) (int64, error)
	RequestLoan(ctx context.Context, in bankuc.LoanRequest) (*loan.Loan, error)
	MakeLoanPayment(ctx context.Context, loanID uint64) (*loan.Payment, error)
	FundReserve(ctx context.Context, bankID uint64, amount int64) (*transfer.Transfer, error)
}

type Loans interface {
	ByBorrower(ctx context.Context, accountID uint64) ([]loanuc.LoanDTO, error)
	NextPayment(ctx context.Context, loanID uint64) (*loanuc.PaymentDTO, error)
	PaymentDue(ctx context.Context, loanID uint64, cycle int64) (bool, error)
}

var (
	_ Banking = (*bankuc.Service)(nil)
	_ Loans   = (*loanuc.Usecase)(nil)
)

func record(ctx context.Context, stats statistic.Repository, worldID uint64, name string, cycle, value int64) error {
	s, err := stats.Ensure(ctx, worldID, name)
	if err != nil {
		return err
	}
	return stats.Record(ctx, s.ID, cycle, value)
}
