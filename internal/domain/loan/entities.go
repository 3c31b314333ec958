package loan

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"fivebells/internal/domain/errs"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidTerms  = fmt.Errorf("%w: invalid loan terms", errs.ErrValidation)
	ErrLoanFrozen    = fmt.Errorf("%w: loans with payments made cannot be changed", errs.ErrValidation)
	ErrZeroPrincipal = fmt.Errorf("%w: remaining principal is zero", errs.ErrSchedule)
	ErrNoPaymentDue  = fmt.Errorf("%w: no unpaid scheduled payment", errs.ErrSchedule)
)

type Type string

const (
	TypeSimple    Type = "SIMPLE"
	TypeCompound  Type = "COMPOUND"
	TypeInterbank Type = "INTERBANK"
	TypeVariable  Type = "VARIABLE"
)

func ParseType(s string) (Type, error) {
	switch t := Type(strings.ToUpper(strings.TrimSpace(s))); t {
	case TypeSimple, TypeCompound, TypeInterbank, TypeVariable:
		return t, nil
	case "":
		return TypeCompound, nil
	}
	return "", fmt.Errorf("%w: unknown loan type %q", ErrInvalidTerms, s)
}

// amortizing reports whether the type uses the annuity schedule.
func (t Type) amortizing() bool { return t != TypeSimple }

type State string

const (
	StateDraft         State = "DRAFT"
	StateScheduled     State = "SCHEDULED"
	StatePartiallyPaid State = "PARTIALLY_PAID"
	StatePaid          State = "PAID"
)

type Loan struct {
	ID                uint64          `gorm:"primaryKey;column:id" json:"id"`
	LoanNo            string          `gorm:"column:loan_no;size:16;not null;uniqueIndex:ux_loans_owner_loan_no" json:"loan_no"`
	OwnerAccountID    uint64          `gorm:"column:owner_account_id;not null;uniqueIndex:ux_loans_owner_loan_no" json:"owner_account_id"`
	BorrowerAccountID uint64          `gorm:"column:borrower_account_id;not null;index" json:"borrower_account_id"`
	Principal         int64           `gorm:"column:principal;not null" json:"principal"`
	InterestRate      decimal.Decimal `gorm:"column:interest_rate;type:decimal(8,4);not null" json:"interest_rate"`
	Duration          int             `gorm:"column:duration;not null" json:"duration"`
	Frequency         int             `gorm:"column:frequency;not null;default:1" json:"frequency"`
	LoanType          Type            `gorm:"column:loan_type;size:16;not null" json:"loan_type"`
	CreatedAt         time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	Payments []Payment `gorm:"foreignKey:LoanID" json:"payments,omitempty"`
}

func (Loan) TableName() string { return "loans" }

// Table: loan_payments
type Payment struct {
	ID                 uint64    `gorm:"primaryKey;column:id" json:"id"`
	LoanID             uint64    `gorm:"column:loan_id;not null;index:idx_loan_payments_loan_no" json:"loan_id"`
	PaymentNo          int       `gorm:"column:payment_no;not null;index:idx_loan_payments_loan_no" json:"payment_no"`
	Capital            int64     `gorm:"column:capital;not null" json:"capital"`
	Interest           int64     `gorm:"column:interest;not null" json:"interest"`
	Scheduled          bool      `gorm:"column:scheduled;not null" json:"scheduled"`
	CapitalTransferID  *uint64   `gorm:"column:capital_transfer_id" json:"capital_transfer_id,omitempty"`
	InterestTransferID *uint64   `gorm:"column:interest_transfer_id" json:"interest_transfer_id,omitempty"`
	CreatedAt          time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Payment) TableName() string { return "loan_payments" }

func (p *Payment) Total() int64 { return p.Capital + p.Interest }

// Settled is true once every non-zero leg has a linked transfer.
func (p *Payment) Settled() bool {
	if p.Capital > 0 && p.CapitalTransferID == nil {
		return false
	}
	if p.Interest > 0 && p.InterestTransferID == nil {
		return false
	}
	return true
}

// Validate checks the terms a schedule is built from.
func (l *Loan) Validate() error {
	switch l.LoanType {
	case TypeSimple, TypeCompound, TypeInterbank, TypeVariable:
	default:
		return fmt.Errorf("%w: loan type %q", ErrInvalidTerms, l.LoanType)
	}
	switch {
	case l.Principal < 0:
		return fmt.Errorf("%w: principal %d", ErrInvalidTerms, l.Principal)
	case l.Duration <= 0:
		return fmt.Errorf("%w: duration %d", ErrInvalidTerms, l.Duration)
	case l.Frequency <= 0 || l.Frequency > l.Duration:
		return fmt.Errorf("%w: frequency %d for duration %d", ErrInvalidTerms, l.Frequency, l.Duration)
	case l.InterestRate.IsNegative():
		return fmt.Errorf("%w: interest rate %s", ErrInvalidTerms, l.InterestRate)
	}
	return nil
}

// MonthlyRate is the yearly percentage rate spread over twelve periods.
func (l *Loan) MonthlyRate() float64 { return l.InterestRate.InexactFloat64() * 0.01 / 12.0 }

func (l *Loan) PaymentCount() int {
	if l.Frequency <= 0 {
		return 0
	}
	return l.Duration / l.Frequency
}

// scheduled returns the scheduled payments ordered by payment_no.
func (l *Loan) scheduled() []*Payment {
	out := make([]*Payment, 0, len(l.Payments))
	for i := range l.Payments {
		if l.Payments[i].Scheduled {
			out = append(out, &l.Payments[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].PaymentNo < out[j].PaymentNo })
	return out
}

func (l *Loan) CapitalPaid() int64 {
	var sum int64
	for _, p := range l.scheduled() {
		if p.Settled() {
			sum += p.Capital
		}
	}
	return sum
}

func (l *Loan) InterestPaid() int64 {
	var sum int64
	for _, p := range l.scheduled() {
		if p.Settled() {
			sum += p.Interest
		}
	}
	return sum
}

func (l *Loan) TotalPaid() int64 { return l.CapitalPaid() + l.InterestPaid() }

func (l *Loan) InterestTotal() int64 {
	var sum int64
	for _, p := range l.scheduled() {
		sum += p.Interest
	}
	return sum
}

func (l *Loan) PrincipalRemaining() int64 { return l.Principal - l.CapitalPaid() }
func (l *Loan) InterestRemaining() int64  { return l.InterestTotal() - l.InterestPaid() }

// NextPayment returns the earliest unsettled scheduled payment, or nil.
func (l *Loan) NextPayment() *Payment {
	for _, p := range l.scheduled() {
		if !p.Settled() {
			return p
		}
	}
	return nil
}

func (l *Loan) PaymentDue(cycle int64) bool {
	if l.Frequency <= 0 {
		return false
	}
	return cycle%int64(l.Frequency) == 0 && l.PrincipalRemaining() > 0
}

func (l *Loan) Frozen() bool { return l.TotalPaid() > 0 }

func (l *Loan) State() State {
	ps := l.scheduled()
	switch {
	case len(ps) == 0:
		return StateDraft
	case l.NextPayment() == nil:
		return StatePaid
	case l.TotalPaid() > 0:
		return StatePartiallyPaid
	}
	return StateScheduled
}

// Terms is the mutable part of a loan; every field is optional.
type Terms struct {
	Principal    *int64
	InterestRate *decimal.Decimal
	Duration     *int
	Frequency    *int
	LoanType     *Type
}

// Apply copies the set fields onto the loan. Frozen loans reject any change.
func (l *Loan) Apply(t Terms) error {
	if l.Frozen() {
		return fmt.Errorf("%w: loan %s", ErrLoanFrozen, l.LoanNo)
	}
	next := *l
	if t.Principal != nil {
		next.Principal = *t.Principal
	}
	if t.InterestRate != nil {
		next.InterestRate = *t.InterestRate
	}
	if t.Duration != nil {
		next.Duration = *t.Duration
	}
	if t.Frequency != nil {
		next.Frequency = *t.Frequency
	}
	if t.LoanType != nil {
		next.LoanType = *t.LoanType
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*l = next
	return nil
}
