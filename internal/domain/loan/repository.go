package loan

import "context"

type Repository interface {
	// Loans; Create also inserts l.Payments.
	Create(ctx context.Context, l *Loan) error
	GetByID(ctx context.Context, id uint64) (*Loan, error)
	GetByIDForUpdate(ctx context.Context, id uint64) (*Loan, error)
	Save(ctx context.Context, l *Loan) error
	ListByOwnerAccount(ctx context.Context, accountID uint64) ([]Loan, error)
	ListByBorrowerAccount(ctx context.Context, accountID uint64) ([]Loan, error)

	// Payments
	ReplacePayments(ctx context.Context, loanID uint64, payments []Payment) error
	SavePayment(ctx context.Context, p *Payment) error
	// ListUnpaidScheduled returns the unsettled scheduled payments ordered by payment_no.
	ListUnpaidScheduled(ctx context.Context, loanID uint64) ([]Payment, error)
}
