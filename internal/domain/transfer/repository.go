package transfer

import "context"

type Repository interface {
	Create(ctx context.Context, t *Transfer) error
	GetByID(ctx context.Context, id uint64) (*Transfer, error)
	ListByAccount(ctx context.Context, accountID uint64) ([]Transfer, error)
	ListByCycle(ctx context.Context, cycle int64) ([]Transfer, error)
}
