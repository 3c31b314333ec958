package mysql

import (
	"context"

	transferDomain "fivebells/internal/domain/transfer"

	"gorm.io/gorm"
)

type TransferRepository struct{ db *gorm.DB }

func NewTransferRepository(db *gorm.DB) *TransferRepository { return &TransferRepository{db: db} }

func (r *TransferRepository) Create(ctx context.Context, t *transferDomain.Transfer) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *TransferRepository) GetByID(ctx context.Context, id uint64) (*transferDomain.Transfer, error) {
	var out transferDomain.Transfer
	res := r.db.WithContext(ctx).First(&out, id)
	return &out, res.Error
}

func (r *TransferRepository) ListByAccount(ctx context.Context, accountID uint64) ([]transferDomain.Transfer, error) {
	var out []transferDomain.Transfer
	res := r.db.WithContext(ctx).
		Where("debit_id = ? OR credit_id = ?", accountID, accountID).
		Order("id ASC").
		Find(&out)
	return out, res.Error
}

func (r *TransferRepository) ListByCycle(ctx context.Context, cycle int64) ([]transferDomain.Transfer, error) {
	var out []transferDomain.Transfer
	res := r.db.WithContext(ctx).Where("cycle = ?", cycle).Order("id ASC").Find(&out)
	return out, res.Error
}
