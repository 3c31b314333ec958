package mysql

import (
	"context"

	bankDomain "fivebells/internal/domain/bank"

	"gorm.io/gorm"
)

type BankRepository struct{ db *gorm.DB }

func NewBankRepository(db *gorm.DB) *BankRepository { return &BankRepository{db: db} }

func (r *BankRepository) Create(ctx context.Context, b *bankDomain.Bank) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *BankRepository) GetByID(ctx context.Context, id uint64) (*bankDomain.Bank, error) {
	var out bankDomain.Bank
	res := r.db.WithContext(ctx).First(&out, id)
	return &out, res.Error
}

func (r *BankRepository) ListByWorld(ctx context.Context, worldID uint64) ([]bankDomain.Bank, error) {
	var out []bankDomain.Bank
	res := r.db.WithContext(ctx).Where("world_id = ?", worldID).Order("id ASC").Find(&out)
	return out, res.Error
}
