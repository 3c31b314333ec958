package uow

import (
	"context"

	"fivebells/internal/domain/bank"
	"fivebells/internal/domain/ledger"
	"fivebells/internal/domain/loan"
	"fivebells/internal/domain/outbox"
	"fivebells/internal/domain/statistic"
	"fivebells/internal/domain/transfer"
	"fivebells/internal/domain/world"
)

// domain/uow/uow.go
type Repos struct {
	Banks      bank.Repository
	Ledgers    ledger.Repository
	Transfers  transfer.Repository
	Loans      loan.Repository
	Worlds     world.Repository
	Statistics statistic.Repository
	Outbox     outbox.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// convenience: lock loan first, then pass it in
	WithinLoanTx(ctx context.Context, loanID uint64, fn func(r Repos, l *loan.Loan) error) error
}
