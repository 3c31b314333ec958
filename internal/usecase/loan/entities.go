package loan

import (
	"time"

	"fivebells/internal/domain/loan"
)

type CreateLoanInput struct {
	OwnerAccountID    uint64 `json:"owner_account_id" validate:"required"`
	BorrowerAccountID uint64 `json:"borrower_account_id" validate:"required"`
	Principal         int64  `json:"principal" validate:"gte=0"`
	InterestRate      string `json:"interest_rate" validate:"required,numeric"`
	Duration          int    `json:"duration" validate:"required,gt=0"`
	Frequency         int    `json:"frequency" validate:"gte=0"`
	LoanType          string `json:"loan_type" validate:"omitempty,oneof=SIMPLE COMPOUND INTERBANK VARIABLE simple compound interbank variable"`
}

// UpdateTermsInput leaves nil fields untouched.
type UpdateTermsInput struct {
	Principal    *int64  `json:"principal,omitempty" validate:"omitempty,gte=0"`
	InterestRate *string `json:"interest_rate,omitempty" validate:"omitempty,numeric"`
	Duration     *int    `json:"duration,omitempty" validate:"omitempty,gt=0"`
	Frequency    *int    `json:"frequency,omitempty" validate:"omitempty,gt=0"`
	LoanType     *string `json:"loan_type,omitempty"`
}

type LoanDTO struct {
	ID                 uint64    `json:"id"`
	LoanNo             string    `json:"loan_no"`
	OwnerAccountID     uint64    `json:"owner_account_id"`
	BorrowerAccountID  uint64    `json:"borrower_account_id"`
	Principal          int64     `json:"principal"`
	InterestRate       string    `json:"interest_rate"`
	Duration           int       `json:"duration"`
	Frequency          int       `json:"frequency"`
	LoanType           string    `json:"loan_type"`
	State              string    `json:"state"`
	PrincipalRemaining int64     `json:"principal_remaining"`
	InterestRemaining  int64     `json:"interest_remaining"`
	CreatedAt          time.Time `json:"created_at"`
}

type PaymentDTO struct {
	PaymentNo int   `json:"payment_no"`
	Capital   int64 `json:"capital"`
	Interest  int64 `json:"interest"`
	Total     int64 `json:"total"`
	Paid      bool  `json:"paid"`
}

func toDTO(l *loan.Loan) *LoanDTO {
	return &LoanDTO{
		ID:                 l.ID,
		LoanNo:             l.LoanNo,
		OwnerAccountID:     l.OwnerAccountID,
		BorrowerAccountID:  l.BorrowerAccountID,
		Principal:          l.Principal,
		InterestRate:       l.InterestRate.String(),
		Duration:           l.Duration,
		Frequency:          l.Frequency,
		LoanType:           string(l.LoanType),
		State:              string(l.State()),
		PrincipalRemaining: l.PrincipalRemaining(),
		InterestRemaining:  l.InterestRemaining(),
		CreatedAt:          l.CreatedAt,
	}
}

func toPaymentDTO(p *loan.Payment) PaymentDTO {
	return PaymentDTO{PaymentNo: p.PaymentNo, Capital: p.Capital, Interest: p.Interest, Total: p.Total(), Paid: p.Settled()}
}
