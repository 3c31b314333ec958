package bank

import (
	"context"

	"fivebells/internal/domain/loan"

	"github.com/shopspring/decimal"
)

// DefaultRate is the yearly percentage used when nothing else is configured.
var DefaultRate = decimal.RequireFromString("4.3")

// InterestPolicy decides the rate a bank offers for a new loan.
type InterestPolicy interface {
	Rate(ctx context.Context, b *Bank, t loan.Type) (decimal.Decimal, error)
}

// FixedRate offers the same rate for every loan type.
type FixedRate struct{ Value decimal.Decimal }

func (f FixedRate) Rate(context.Context, *Bank, loan.Type) (decimal.Decimal, error) {
	if f.Value.IsZero() {
		return DefaultRate, nil
	}
	return f.Value, nil
}
