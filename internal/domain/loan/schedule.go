package loan

import (
	"fmt"
	"math"
)

// MonthlyPayment is the level payment before rounding. Annuity types use
// c = P*r / (1 - (1+r)^-n) with n = duration; SIMPLE splits the principal
// evenly over the payment count.
func (l *Loan) MonthlyPayment(principal int64) float64 {
	p := float64(principal)
	if !l.LoanType.amortizing() {
		n := l.PaymentCount()
		if n == 0 {
			return 0
		}
		return p / float64(n)
	}
	r := l.MonthlyRate()
	if r == 0 {
		return p / float64(l.Duration)
	}
	return p * r / (1.0 - math.Pow(1.0+r, -float64(l.Duration)))
}

// BuildSchedule produces the scheduled payments for the given remaining
// principal. The last installment absorbs the rounding residue so capital
// always sums to principalRemaining.
func BuildSchedule(l *Loan, principalRemaining int64) ([]Payment, error) {
	if principalRemaining <= 0 {
		return nil, fmt.Errorf("%w: loan %s", ErrZeroPrincipal, l.LoanNo)
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	n := l.PaymentCount()
	r := l.MonthlyRate()
	c := l.MonthlyPayment(principalRemaining)

	out := make([]Payment, 0, n)
	if l.LoanType.amortizing() {
		remains := float64(principalRemaining)
		for i := 1; i <= n; i++ {
			interest := remains * r
			capital := int64(math.Round(c - interest))
			remains -= float64(capital)
			out = append(out, Payment{
				LoanID:    l.ID,
				PaymentNo: i,
				Capital:   capital,
				Interest:  int64(math.Round(interest)),
				Scheduled: true,
			})
		}
	} else {
		capital := principalRemaining / int64(n)
		interest := int64(math.Round(c * r))
		for i := 1; i <= n; i++ {
			out = append(out, Payment{
				LoanID:    l.ID,
				PaymentNo: i,
				Capital:   capital,
				Interest:  interest,
				Scheduled: true,
			})
		}
	}

	var sum int64
	for _, p := range out {
		sum += p.Capital
	}
	out[len(out)-1].Capital += principalRemaining - sum
	return out, nil
}
