package transfer

import (
	"fmt"
	"time"

	"fivebells/internal/domain/errs"
)

var (
	ErrInvalidAmount = fmt.Errorf("%w: transfer amount must be > 0", errs.ErrValidation)
	ErrSameAccount   = fmt.Errorf("%w: debit and credit account must differ", errs.ErrValidation)
)

// Table: transfers. Rows are written once and never updated.
type Transfer struct {
	ID          uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	DebitID     uint64    `gorm:"column:debit_id;not null;index" json:"debit_id"`
	CreditID    uint64    `gorm:"column:credit_id;not null;index" json:"credit_id"`
	Amount      int64     `gorm:"column:amount;not null" json:"amount"`
	Cycle       int64     `gorm:"column:cycle;not null;index" json:"cycle"`
	Description string    `gorm:"column:description;size:255" json:"description"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Transfer) TableName() string { return "transfers" }

func New(debitID, creditID uint64, amount, cycle int64, description string) (*Transfer, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidAmount, amount)
	}
	if debitID == creditID {
		return nil, fmt.Errorf("%w: account %d", ErrSameAccount, debitID)
	}
	return &Transfer{
		DebitID:     debitID,
		CreditID:    creditID,
		Amount:      amount,
		Cycle:       cycle,
		Description: description,
	}, nil
}
