package ledger

import (
	"fmt"
	"time"

	"fivebells/internal/domain/errs"
)

var (
	ErrInvalidAccount  = fmt.Errorf("%w: account does not belong to ledger", errs.ErrRouting)
	ErrNotSingleLedger = fmt.Errorf("%w: not a single account ledger", errs.ErrRouting)
	ErrEmptyLedger     = fmt.Errorf("%w: no accounts in ledger", errs.ErrRouting)
	ErrNegativeBalance = fmt.Errorf("%w: deposit would become negative", errs.ErrValidation)
	ErrInvalidAmount   = fmt.Errorf("%w: amount must be > 0", errs.ErrValidation)
)

type AccountType string

const (
	AccountTypeAsset     AccountType = "ASSET"
	AccountTypeLiability AccountType = "LIABILITY"
	AccountTypeEquity    AccountType = "EQUITY"
)

// Polarity returns the sign convention for the account type: ASSET ledgers
// are -1, LIABILITY and EQUITY ledgers are +1.
func (t AccountType) Polarity() int {
	if t == AccountTypeAsset {
		return -1
	}
	return +1
}

// Table: ledgers
type Ledger struct {
	ID          uint64      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	BankID      uint64      `gorm:"column:bank_id;not null;uniqueIndex:ux_ledgers_bank_name" json:"bank_id"`
	Name        string      `gorm:"column:name;size:32;not null;uniqueIndex:ux_ledgers_bank_name" json:"name"`
	LedgerNo    string      `gorm:"column:ledger_no;size:8;not null" json:"ledger_no"`
	LedgerType  string      `gorm:"column:ledger_type;size:16;not null" json:"ledger_type"`
	AccountType AccountType `gorm:"column:account_type;size:16;not null" json:"account_type"`
	Polarity    int         `gorm:"column:polarity;not null;default:1" json:"polarity"`
	Single      bool        `gorm:"column:single;not null;default:false" json:"single"`
	CreatedAt   time.Time   `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time   `gorm:"column:updated_at;autoUpdateTime" json:"-"`
}

func (Ledger) TableName() string { return "ledgers" }

// Table: accounts
type Account struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	LedgerID  uint64    `gorm:"column:ledger_id;not null;index" json:"ledger_id"`
	AccountNo string    `gorm:"column:account_no;size:32;not null" json:"account_no"`
	Owner     OwnerRef  `gorm:"embedded;embeddedPrefix:owner_" json:"owner"`
	Deposit   int64     `gorm:"column:deposit;not null;default:0" json:"deposit"`
	Inflow    int64     `gorm:"column:inflow;not null;default:0" json:"inflow"`
	Outflow   int64     `gorm:"column:outflow;not null;default:0" json:"outflow"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"-"`
}

func (Account) TableName() string { return "accounts" }

// NettoFlow is the net movement recorded in the flow markers. Outflow is
// stored signed, so the two simply add up.
func (a *Account) NettoFlow() int64 { return a.Inflow + a.Outflow }
