package loan

import (
	"context"
	"fmt"

	"fivebells/internal/domain/loan"
	"fivebells/internal/domain/uow"
	"fivebells/pkg/id"

	"github.com/shopspring/decimal"
)

const loanNoWidth = 6

type Usecase struct {
	repo loan.Repository
	uow  uow.UnitOfWork
}

// NewUsecase: reads go through the repo, schedule rewrites lock the loan via the UoW.
func NewUsecase(r loan.Repository, tx uow.UnitOfWork) *Usecase { return &Usecase{repo: r, uow: tx} }

// Create books a loan contract with its schedule. No money moves; issuing a
// loan to a customer goes through the bank service.
func (u *Usecase) Create(ctx context.Context, in CreateLoanInput) (*LoanDTO, error) {
	lt, err := loan.ParseType(in.LoanType)
	if err != nil {
		return nil, err
	}
	rate, err := decimal.NewFromString(in.InterestRate)
	if err != nil {
		return nil, fmt.Errorf("%w: interest rate %q", loan.ErrInvalidTerms, in.InterestRate)
	}
	if in.Frequency == 0 {
		in.Frequency = 1
	}

	issued, err := u.repo.ListByOwnerAccount(ctx, in.OwnerAccountID)
	if err != nil {
		return nil, err
	}
	l := &loan.Loan{
		LoanNo:            id.Sequence(int64(len(issued)+1), loanNoWidth),
		OwnerAccountID:    in.OwnerAccountID,
		BorrowerAccountID: in.BorrowerAccountID,
		Principal:         in.Principal,
		InterestRate:      rate,
		Duration:          in.Duration,
		Frequency:         in.Frequency,
		LoanType:          lt,
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	// a zero principal loan stays in DRAFT without a schedule
	if l.Principal > 0 {
		if l.Payments, err = loan.BuildSchedule(l, l.Principal); err != nil {
			return nil, err
		}
	}
	if err := u.repo.Create(ctx, l); err != nil {
		return nil, err
	}
	return toDTO(l), nil
}

func (u *Usecase) Get(ctx context.Context, loanID uint64) (*LoanDTO, error) {
	l, err := u.repo.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	return toDTO(l), nil
}

// ByBorrower lists every loan taken out by the account.
func (u *Usecase) ByBorrower(ctx context.Context, accountID uint64) ([]LoanDTO, error) {
	loans, err := u.repo.ListByBorrowerAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	out := make([]LoanDTO, 0, len(loans))
	for i := range loans {
		out = append(out, *toDTO(&loans[i]))
	}
	return out, nil
}

// ResetPayments rebuilds the schedule from the remaining principal. Only
// allowed while nothing has been paid.
func (u *Usecase) ResetPayments(ctx context.Context, loanID uint64) (*LoanDTO, error) {
	var dto *LoanDTO
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loan.Loan) error {
		if l.Frozen() {
			return fmt.Errorf("%w: loan %s", loan.ErrLoanFrozen, l.LoanNo)
		}
		payments, err := loan.BuildSchedule(l, l.PrincipalRemaining())
		if err != nil {
			return err
		}
		if err := r.Loans.ReplacePayments(ctx, l.ID, payments); err != nil {
			return err
		}
		l.Payments = payments
		dto = toDTO(l)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// UpdateTerms changes the contract of an unpaid loan and rebuilds its schedule.
func (u *Usecase) UpdateTerms(ctx context.Context, loanID uint64, in UpdateTermsInput) (*LoanDTO, error) {
	terms, err := in.terms()
	if err != nil {
		return nil, err
	}
	var dto *LoanDTO
	err = u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loan.Loan) error {
		if err := l.Apply(terms); err != nil {
			return err
		}
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		var payments []loan.Payment
		if l.Principal > 0 {
			if payments, err = loan.BuildSchedule(l, l.Principal); err != nil {
				return err
			}
		}
		if err := r.Loans.ReplacePayments(ctx, l.ID, payments); err != nil {
			return err
		}
		l.Payments = payments
		dto = toDTO(l)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

func (u *Usecase) Schedule(ctx context.Context, loanID uint64) ([]PaymentDTO, error) {
	l, err := u.repo.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	out := make([]PaymentDTO, 0, len(l.Payments))
	for i := range l.Payments {
		if l.Payments[i].Scheduled {
			out = append(out, toPaymentDTO(&l.Payments[i]))
		}
	}
	return out, nil
}

func (u *Usecase) NextPayment(ctx context.Context, loanID uint64) (*PaymentDTO, error) {
	l, err := u.repo.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	p := l.NextPayment()
	if p == nil {
		return nil, fmt.Errorf("%w: loan %s", loan.ErrNoPaymentDue, l.LoanNo)
	}
	dto := toPaymentDTO(p)
	return &dto, nil
}

// PaymentDue reports whether the loan expects a payment in cycle.
func (u *Usecase) PaymentDue(ctx context.Context, loanID uint64, cycle int64) (bool, error) {
	l, err := u.repo.GetByID(ctx, loanID)
	if err != nil {
		return false, err
	}
	return l.PaymentDue(cycle), nil
}

func (in UpdateTermsInput) terms() (loan.Terms, error) {
	t := loan.Terms{Principal: in.Principal, Duration: in.Duration, Frequency: in.Frequency}
	if in.InterestRate != nil {
		rate, err := decimal.NewFromString(*in.InterestRate)
		if err != nil {
			return t, fmt.Errorf("%w: interest rate %q", loan.ErrInvalidTerms, *in.InterestRate)
		}
		t.InterestRate = &rate
	}
	if in.LoanType != nil {
		lt, err := loan.ParseType(*in.LoanType)
		if err != nil {
			return t, err
		}
		t.LoanType = &lt
	}
	return t, nil
}
