package outbox

import "context"

type Repository interface {
	Create(ctx context.Context, m *Message) error
	ListPending(ctx context.Context, limit int) ([]Message, error)
	MarkSent(ctx context.Context, id uint64) error
	IncrementRetry(ctx context.Context, id uint64) error
	MarkFailed(ctx context.Context, id uint64) error
}
