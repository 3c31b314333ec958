package bank

import "context"

type Repository interface {
	Create(ctx context.Context, b *Bank) error
	GetByID(ctx context.Context, id uint64) (*Bank, error)
	ListByWorld(ctx context.Context, worldID uint64) ([]Bank, error)
}
