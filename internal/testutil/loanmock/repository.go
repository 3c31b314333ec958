package loanmock

import (
	"context"

	domain "fivebells/internal/domain/loan"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Writes default to a nil error, reads default to context.Canceled.
type Repo struct {
	CreateFn                func(ctx context.Context, l *domain.Loan) error
	GetByIDFn               func(ctx context.Context, id uint64) (*domain.Loan, error)
	GetByIDForUpdateFn      func(ctx context.Context, id uint64) (*domain.Loan, error)
	SaveFn                  func(ctx context.Context, l *domain.Loan) error
	ListByOwnerAccountFn    func(ctx context.Context, accountID uint64) ([]domain.Loan, error)
	ListByBorrowerAccountFn func(ctx context.Context, accountID uint64) ([]domain.Loan, error)
	ReplacePaymentsFn       func(ctx context.Context, loanID uint64, payments []domain.Payment) error
	SavePaymentFn           func(ctx context.Context, p *domain.Payment) error
	ListUnpaidScheduledFn   func(ctx context.Context, loanID uint64) ([]domain.Payment, error)
}

func (m *Repo) Create(ctx context.Context, l *domain.Loan) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, l)
	}
	return nil
}

func (m *Repo) GetByID(ctx context.Context, id uint64) (*domain.Loan, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByIDForUpdate(ctx context.Context, id uint64) (*domain.Loan, error) {
	if m.GetByIDForUpdateFn != nil {
		return m.GetByIDForUpdateFn(ctx, id)
	}
	return nil, context.Canceled
}

func (m *Repo) Save(ctx context.Context, l *domain.Loan) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, l)
	}
	return nil
}

func (m *Repo) ListByOwnerAccount(ctx context.Context, accountID uint64) ([]domain.Loan, error) {
	if m.ListByOwnerAccountFn != nil {
		return m.ListByOwnerAccountFn(ctx, accountID)
	}
	return nil, context.Canceled
}

func (m *Repo) ListByBorrowerAccount(ctx context.Context, accountID uint64) ([]domain.Loan, error) {
	if m.ListByBorrowerAccountFn != nil {
		return m.ListByBorrowerAccountFn(ctx, accountID)
	}
	return nil, context.Canceled
}

func (m *Repo) ReplacePayments(ctx context.Context, loanID uint64, payments []domain.Payment) error {
	if m.ReplacePaymentsFn != nil {
		return m.ReplacePaymentsFn(ctx, loanID, payments)
	}
	return nil
}

func (m *Repo) SavePayment(ctx context.Context, p *domain.Payment) error {
	if m.SavePaymentFn != nil {
		return m.SavePaymentFn(ctx, p)
	}
	return nil
}

func (m *Repo) ListUnpaidScheduled(ctx context.Context, loanID uint64) ([]domain.Payment, error) {
	if m.ListUnpaidScheduledFn != nil {
		return m.ListUnpaidScheduledFn(ctx, loanID)
	}
	return nil, context.Canceled
}
