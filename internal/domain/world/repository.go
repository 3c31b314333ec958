package world

import "context"

type Repository interface {
	Create(ctx context.Context, w *World) error
	GetByID(ctx context.Context, id uint64) (*World, error)
	GetByIDForUpdate(ctx context.Context, id uint64) (*World, error)
	List(ctx context.Context) ([]World, error)
	SetCycle(ctx context.Context, id uint64, cycle int64) error
	SetHalted(ctx context.Context, id uint64, halted bool, reason string) error
}

// Lease is an exclusive, expiring hold on one world's evaluation. Renew
// pushes the expiry out again and fails once the hold was lost.
type Lease interface {
	Renew(ctx context.Context) error
	Release(ctx context.Context) error
}
