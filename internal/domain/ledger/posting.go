package ledger

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// FlowMode selects how Inflow/Outflow react to a posting.
type FlowMode string

const (
	// FlowLastValue keeps only the most recent signed movement in each marker.
	FlowLastValue FlowMode = "last_value"
	// FlowCumulative keeps running totals; Outflow accumulates as a negative sum.
	FlowCumulative FlowMode = "cumulative"
)

func ParseFlowMode(s string) (FlowMode, error) {
	switch FlowMode(s) {
	case "", FlowLastValue:
		return FlowLastValue, nil
	case FlowCumulative:
		return FlowCumulative, nil
	}
	return "", fmt.Errorf("unknown flow mode %q", s)
}

// Debit applies -amount*polarity to the account.
func (l *Ledger) Debit(a *Account, amount int64, mode FlowMode) error {
	return l.post(a, amount, -int64(l.Polarity), mode)
}

// Credit applies +amount*polarity to the account.
func (l *Ledger) Credit(a *Account, amount int64, mode FlowMode) error {
	return l.post(a, amount, int64(l.Polarity), mode)
}

func (l *Ledger) post(a *Account, amount, sign int64, mode FlowMode) error {
	if a == nil || a.LedgerID != l.ID {
		return fmt.Errorf("%w: ledger %s", ErrInvalidAccount, l.Name)
	}
	if amount <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidAmount, amount)
	}
	delta := amount * sign
	next := a.Deposit + delta
	if next < 0 {
		return fmt.Errorf("%w: account %d has %d, delta %d", ErrNegativeBalance, a.ID, a.Deposit, delta)
	}
	a.Deposit = next

	switch mode {
	case FlowCumulative:
		if delta > 0 {
			a.Inflow += delta
		} else {
			a.Outflow += delta
		}
	default:
		if delta > 0 {
			a.Inflow = delta
		} else {
			a.Outflow = delta
		}
	}
	return nil
}

// SingleAccount returns the only account of a single ledger.
func SingleAccount(ctx context.Context, repo Repository, l *Ledger) (*Account, error) {
	if !l.Single {
		return nil, fmt.Errorf("%w: %s", ErrNotSingleLedger, l.Name)
	}
	a, err := repo.FirstAccountForUpdate(ctx, l.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrEmptyLedger, l.Name)
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}
