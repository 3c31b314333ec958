package bank

import (
	"fmt"
	"time"

	"fivebells/internal/domain/errs"
	"fivebells/internal/domain/ledger"
	"fivebells/internal/domain/transfer"
)

var (
	ErrInvalidOwner    = fmt.Errorf("%w: deposit account owner must be set and differ from the bank", errs.ErrValidation)
	ErrSameAccount     = transfer.ErrSameAccount
	ErrForeignTransfer = fmt.Errorf("%w: neither account is held at this bank", errs.ErrRouting)
	ErrLedgerMissing   = fmt.Errorf("%w: bank has no such ledger", errs.ErrRouting)
)

type Kind string

const (
	KindCustomer Kind = "customer"
	KindCentral  Kind = "central"
)

// Table: banks
type Bank struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	WorldID   uint64    `gorm:"column:world_id;not null;index" json:"world_id"`
	Name      string    `gorm:"column:name;size:64;not null" json:"name"`
	BankNo    string    `gorm:"column:bank_no;size:8;not null" json:"bank_no"`
	Kind      Kind      `gorm:"column:kind;size:16;not null" json:"kind"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"-"`
}

func (Bank) TableName() string { return "banks" }

func (b *Bank) Owner() ledger.OwnerRef { return ledger.BankOwner(b.ID) }

// AbsoluteAccountNo renders bank_no-ledger_no-account_no.
func AbsoluteAccountNo(b *Bank, l *ledger.Ledger, a *ledger.Account) string {
	return fmt.Sprintf("%s-%s-%s", b.BankNo, l.LedgerNo, a.AccountNo)
}
