package mysql

import (
	"context"

	"fivebells/internal/domain/loan"
	"fivebells/internal/domain/uow"

	"gorm.io/gorm"
)

type GormUoW struct{ db *gorm.DB }

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

// NewRepos binds every repository to the same handle.
func NewRepos(db *gorm.DB) uow.Repos {
	return uow.Repos{
		Banks:      &BankRepository{db: db},
		Ledgers:    &LedgerRepository{db: db},
		Transfers:  &TransferRepository{db: db},
		Loans:      &LoanRepository{db: db},
		Worlds:     &WorldRepository{db: db},
		Statistics: &StatisticRepository{db: db},
		Outbox:     &OutboxRepository{db: db},
	}
}

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepos(tx))
	})
}

func (u *GormUoW) WithinLoanTx(ctx context.Context, loanID uint64, fn func(r uow.Repos, l *loan.Loan) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := NewRepos(tx)
		// lock the loan row up-front to prevent races
		l, err := r.Loans.GetByIDForUpdate(ctx, loanID)
		if err != nil {
			return err
		}
		return fn(r, l)
	})
}
