package loan

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func scheduledLoan(t *testing.T) *Loan {
	t.Helper()
	l := makeLoan(1200, "12", 12, 1, TypeCompound)
	ps, err := BuildSchedule(l, l.Principal)
	require.NoError(t, err)
	for i := range ps {
		ps[i].ID = uint64(i + 1)
	}
	l.Payments = ps
	return l
}

func TestParseType(t *testing.T) {
	typ, err := ParseType("simple")
	require.NoError(t, err)
	require.Equal(t, TypeSimple, typ)

	typ, err = ParseType("")
	require.NoError(t, err)
	require.Equal(t, TypeCompound, typ)

	_, err = ParseType("balloon")
	require.ErrorIs(t, err, ErrInvalidTerms)
}

func TestPayment_Settled(t *testing.T) {
	require.False(t, (&Payment{Capital: 10, Interest: 1}).Settled())
	require.False(t, (&Payment{Capital: 10, Interest: 1, CapitalTransferID: ptr(uint64(1))}).Settled())
	require.True(t, (&Payment{Capital: 10, Interest: 0, CapitalTransferID: ptr(uint64(1))}).Settled())
	require.True(t, (&Payment{Capital: 10, Interest: 1, CapitalTransferID: ptr(uint64(1)), InterestTransferID: ptr(uint64(2))}).Settled())
	require.Equal(t, int64(11), (&Payment{Capital: 10, Interest: 1}).Total())
}

func TestLoan_StateLifecycle(t *testing.T) {
	l := makeLoan(1200, "12", 12, 1, TypeCompound)
	require.Equal(t, StateDraft, l.State())
	require.Nil(t, l.NextPayment())

	l = scheduledLoan(t)
	require.Equal(t, StateScheduled, l.State())
	require.False(t, l.Frozen())
	require.Equal(t, int64(1200), l.PrincipalRemaining())
	require.Equal(t, 1, l.NextPayment().PaymentNo)

	first := l.NextPayment()
	first.CapitalTransferID = ptr(uint64(100))
	first.InterestTransferID = ptr(uint64(101))

	require.Equal(t, StatePartiallyPaid, l.State())
	require.True(t, l.Frozen())
	require.Equal(t, 2, l.NextPayment().PaymentNo)
	require.Equal(t, int64(1200)-first.Capital, l.PrincipalRemaining())
	require.Equal(t, first.Total(), l.TotalPaid())

	for i := range l.Payments {
		l.Payments[i].CapitalTransferID = ptr(uint64(200 + i))
		l.Payments[i].InterestTransferID = ptr(uint64(300 + i))
	}
	require.Equal(t, StatePaid, l.State())
	require.Zero(t, l.PrincipalRemaining())
	require.Zero(t, l.InterestRemaining())
	require.Nil(t, l.NextPayment())
}

func TestLoan_PaymentDue(t *testing.T) {
	l := scheduledLoan(t)
	l.Frequency = 3
	require.True(t, l.PaymentDue(0))
	require.False(t, l.PaymentDue(1))
	require.True(t, l.PaymentDue(6))

	for i := range l.Payments {
		l.Payments[i].CapitalTransferID = ptr(uint64(i + 1))
		l.Payments[i].InterestTransferID = ptr(uint64(i + 100))
	}
	require.False(t, l.PaymentDue(6))
}

func TestLoan_ApplyRejectedOnceFrozen(t *testing.T) {
	l := scheduledLoan(t)
	require.NoError(t, l.Apply(Terms{Duration: ptr(24)}))
	require.Equal(t, 24, l.Duration)

	l.Payments[0].CapitalTransferID = ptr(uint64(1))
	l.Payments[0].InterestTransferID = ptr(uint64(2))

	changes := []Terms{
		{Principal: ptr(int64(5))},
		{InterestRate: ptr(decimal.NewFromInt(1))},
		{Duration: ptr(6)},
		{LoanType: ptr(TypeSimple)},
	}
	for _, c := range changes {
		err := l.Apply(c)
		require.ErrorIs(t, err, ErrLoanFrozen)
	}
	require.Equal(t, int64(1200), l.Principal)
	require.Equal(t, 24, l.Duration)
	require.Equal(t, TypeCompound, l.LoanType)
}

func TestLoan_ApplyValidatesTerms(t *testing.T) {
	l := scheduledLoan(t)
	err := l.Apply(Terms{Frequency: ptr(0)})
	require.ErrorIs(t, err, ErrInvalidTerms)
	require.Equal(t, 1, l.Frequency)
}
