package mysql

import (
	"context"

	ledgerDomain "fivebells/internal/domain/ledger"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LedgerRepository struct{ db *gorm.DB }

func NewLedgerRepository(db *gorm.DB) *LedgerRepository { return &LedgerRepository{db: db} }

func (r *LedgerRepository) CreateLedger(ctx context.Context, l *ledgerDomain.Ledger) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *LedgerRepository) GetLedger(ctx context.Context, id uint64) (*ledgerDomain.Ledger, error) {
	var out ledgerDomain.Ledger
	res := r.db.WithContext(ctx).First(&out, id)
	return &out, res.Error
}

func (r *LedgerRepository) GetLedgerByName(ctx context.Context, bankID uint64, name string) (*ledgerDomain.Ledger, error) {
	var out ledgerDomain.Ledger
	res := r.db.WithContext(ctx).Where("bank_id = ? AND name = ?", bankID, name).First(&out)
	return &out, res.Error
}

func (r *LedgerRepository) ListLedgers(ctx context.Context, bankID uint64) ([]ledgerDomain.Ledger, error) {
	var out []ledgerDomain.Ledger
	res := r.db.WithContext(ctx).Where("bank_id = ?", bankID).Order("id ASC").Find(&out)
	return out, res.Error
}

func (r *LedgerRepository) CreateAccount(ctx context.Context, a *ledgerDomain.Account) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *LedgerRepository) GetAccount(ctx context.Context, id uint64) (*ledgerDomain.Account, error) {
	var out ledgerDomain.Account
	res := r.db.WithContext(ctx).First(&out, id)
	return &out, res.Error
}

// GetAccountForUpdate row-locks the account for the rest of the transaction.
func (r *LedgerRepository) GetAccountForUpdate(ctx context.Context, id uint64) (*ledgerDomain.Account, error) {
	var out ledgerDomain.Account
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&out, id)
	return &out, res.Error
}

func (r *LedgerRepository) FirstAccountForUpdate(ctx context.Context, ledgerID uint64) (*ledgerDomain.Account, error) {
	var out ledgerDomain.Account
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("ledger_id = ?", ledgerID).
		Order("id ASC").
		First(&out)
	return &out, res.Error
}

func (r *LedgerRepository) SaveAccount(ctx context.Context, a *ledgerDomain.Account) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *LedgerRepository) ListAccounts(ctx context.Context, ledgerID uint64) ([]ledgerDomain.Account, error) {
	var out []ledgerDomain.Account
	res := r.db.WithContext(ctx).Where("ledger_id = ?", ledgerID).Order("id ASC").Find(&out)
	return out, res.Error
}

func (r *LedgerRepository) ListAccountsByOwner(ctx context.Context, owner ledgerDomain.OwnerRef) ([]ledgerDomain.Account, error) {
	var out []ledgerDomain.Account
	res := r.db.WithContext(ctx).
		Where("owner_kind = ? AND owner_id = ?", owner.Kind, owner.ID).
		Order("id ASC").
		Find(&out)
	return out, res.Error
}
