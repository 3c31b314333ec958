package mysql

import (
	"context"

	outboxDomain "fivebells/internal/domain/outbox"

	"gorm.io/gorm"
)

type OutboxRepository struct{ db *gorm.DB }

func NewOutboxRepository(db *gorm.DB) *OutboxRepository { return &OutboxRepository{db: db} }

func (r *OutboxRepository) Create(ctx context.Context, m *outboxDomain.Message) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *OutboxRepository) ListPending(ctx context.Context, limit int) ([]outboxDomain.Message, error) {
	var out []outboxDomain.Message
	res := r.db.WithContext(ctx).
		Where("status = ?", outboxDomain.StatusPending).
		Order("created_at ASC, id ASC").
		Limit(limit).
		Find(&out)
	return out, res.Error
}

func (r *OutboxRepository) MarkSent(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).
		Model(&outboxDomain.Message{}).
		Where("id = ?", id).
		Update("status", outboxDomain.StatusSent).Error
}

func (r *OutboxRepository) IncrementRetry(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).
		Model(&outboxDomain.Message{}).
		Where("id = ?", id).
		UpdateColumn("retry_count", gorm.Expr("retry_count + 1")).Error
}

func (r *OutboxRepository) MarkFailed(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).
		Model(&outboxDomain.Message{}).
		Where("id = ?", id).
		Update("status", outboxDomain.StatusFailed).Error
}
