package bank

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	bankDomain "fivebells/internal/domain/bank"
	"fivebells/internal/domain/ledger"
	"fivebells/internal/domain/loan"
	"fivebells/internal/domain/outbox"
	"fivebells/internal/domain/transfer"
	"fivebells/internal/domain/uow"
	"fivebells/pkg/id"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	bankNoWidth    = 4
	ledgerNoWidth  = 4
	accountNoWidth = 6
	loanNoWidth    = 6
)

type Service struct {
	uow   uow.UnitOfWork
	rates bankDomain.InterestPolicy
	flow  ledger.FlowMode
	log   *zap.Logger
}

// NewService wires the router. A nil policy offers the default rate, a nil
// logger discards output.
func NewService(tx uow.UnitOfWork, rates bankDomain.InterestPolicy, flow ledger.FlowMode, log *zap.Logger) *Service {
	if rates == nil {
		rates = bankDomain.FixedRate{}
	}
	if flow == "" {
		flow = ledger.FlowLastValue
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{uow: tx, rates: rates, flow: flow, log: log}
}

// CreateBank creates the bank together with its ledger chart. Single ledgers
// get their one bank-owned account right away.
func (s *Service) CreateBank(ctx context.Context, worldID uint64, name string, kind bankDomain.Kind) (*bankDomain.Bank, error) {
	if kind == "" {
		kind = bankDomain.KindCustomer
	}
	var out *bankDomain.Bank
	err := s.uow.WithinTx(ctx, func(r uow.Repos) error {
		if _, err := r.Worlds.GetByID(ctx, worldID); err != nil {
			return fmt.Errorf("load world %d: %w", worldID, err)
		}
		existing, err := r.Banks.ListByWorld(ctx, worldID)
		if err != nil {
			return err
		}
		b := &bankDomain.Bank{
			WorldID: worldID,
			Name:    name,
			BankNo:  id.Sequence(int64(len(existing)+1), bankNoWidth),
			Kind:    kind,
		}
		if err := r.Banks.Create(ctx, b); err != nil {
			return err
		}
		for i, spec := range bankDomain.Chart(kind) {
			l := &ledger.Ledger{
				BankID:      b.ID,
				Name:        spec.Name,
				LedgerNo:    id.Sequence(int64(i+1), ledgerNoWidth),
				LedgerType:  spec.LedgerType,
				AccountType: spec.AccountType,
				Polarity:    spec.AccountType.Polarity(),
				Single:      spec.Single,
			}
			if err := r.Ledgers.CreateLedger(ctx, l); err != nil {
				return fmt.Errorf("create ledger %s: %w", spec.Name, err)
			}
			if !spec.Single {
				continue
			}
			a := &ledger.Account{LedgerID: l.ID, AccountNo: id.Sequence(1, accountNoWidth), Owner: b.Owner()}
			if err := r.Ledgers.CreateAccount(ctx, a); err != nil {
				return fmt.Errorf("create %s account: %w", spec.Name, err)
			}
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("bank: created", zap.Uint64("bank_id", out.ID), zap.String("bank_no", out.BankNo), zap.String("kind", string(out.Kind)))
	return out, nil
}

// OpenDepositAccount opens an account for owner in the bank's deposit ledger.
func (s *Service) OpenDepositAccount(ctx context.Context, bankID uint64, owner ledger.OwnerRef) (*ledger.Account, error) {
	if !owner.Valid() {
		return nil, fmt.Errorf("%w: %s", bankDomain.ErrInvalidOwner, owner)
	}
	var out *ledger.Account
	err := s.uow.WithinTx(ctx, func(r uow.Repos) error {
		b, err := r.Banks.GetByID(ctx, bankID)
		if err != nil {
			return err
		}
		if owner == b.Owner() {
			return fmt.Errorf("%w: %s", bankDomain.ErrInvalidOwner, owner)
		}
		l, err := ledgerByName(ctx, r, b.ID, bankDomain.LedgerDeposit)
		if err != nil {
			return err
		}
		accounts, err := r.Ledgers.ListAccounts(ctx, l.ID)
		if err != nil {
			return err
		}
		a := &ledger.Account{
			LedgerID:  l.ID,
			AccountNo: id.Sequence(int64(len(accounts)+1), accountNoWidth),
			Owner:     owner,
		}
		if err := r.Ledgers.CreateAccount(ctx, a); err != nil {
			return err
		}
		out = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Transfer moves amount from the debit account to the credit account as seen
// by bankID. When the credit account lives at another bank the counter-party
// is settled through both reserves in the same transaction.
func (s *Service) Transfer(ctx context.Context, bankID, debitAccountID, creditAccountID uint64, amount int64, description string) (*transfer.Transfer, error) {
	var out *transfer.Transfer
	err := s.uow.WithinTx(ctx, func(r uow.Repos) error {
		b, err := r.Banks.GetByID(ctx, bankID)
		if err != nil {
			return err
		}
		out, err = s.route(ctx, r, b, debitAccountID, creditAccountID, amount, description)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DepositCash books cash handed in over the counter onto a local account.
func (s *Service) DepositCash(ctx context.Context, bankID, accountID uint64, amount int64) (*transfer.Transfer, error) {
	return s.fromSingle(ctx, bankID, bankDomain.LedgerCash, func(r uow.Repos, b *bankDomain.Bank, cash *ledger.Account) (*transfer.Transfer, error) {
		if err := requireLocal(ctx, r, b, accountID); err != nil {
			return nil, err
		}
		return s.route(ctx, r, b, cash.ID, accountID, amount, "Cash deposit")
	})
}

// DepositCapital books owner equity paid in as cash.
func (s *Service) DepositCapital(ctx context.Context, bankID uint64, amount int64) (*transfer.Transfer, error) {
	return s.fromSingle(ctx, bankID, bankDomain.LedgerCash, func(r uow.Repos, b *bankDomain.Bank, cash *ledger.Account) (*transfer.Transfer, error) {
		capital, err := singleAccount(ctx, r, b.ID, bankDomain.LedgerCapital)
		if err != nil {
			return nil, err
		}
		return s.route(ctx, r, b, cash.ID, capital.ID, amount, "Capital deposit")
	})
}

// FundReserve moves cash into the reserve used for inter-bank settlement.
func (s *Service) FundReserve(ctx context.Context, bankID uint64, amount int64) (*transfer.Transfer, error) {
	return s.fromSingle(ctx, bankID, bankDomain.LedgerReserve, func(r uow.Repos, b *bankDomain.Bank, reserve *ledger.Account) (*transfer.Transfer, error) {
		cash, err := singleAccount(ctx, r, b.ID, bankDomain.LedgerCash)
		if err != nil {
			return nil, err
		}
		return s.route(ctx, r, b, reserve.ID, cash.ID, amount, "Reserve funding")
	})
}

// RequestLoan creates the loan with its schedule and pays the principal out
// to the borrower. Nothing is persisted when any step fails.
func (s *Service) RequestLoan(ctx context.Context, in LoanRequest) (*loan.Loan, error) {
	lt, err := loan.ParseType(in.LoanType)
	if err != nil {
		return nil, err
	}
	if in.Frequency == 0 {
		in.Frequency = 1
	}

	var out *loan.Loan
	err = s.uow.WithinTx(ctx, func(r uow.Repos) error {
		b, err := r.Banks.GetByID(ctx, in.BankID)
		if err != nil {
			return err
		}
		owner, err := singleAccount(ctx, r, b.ID, bankDomain.LedgerLoan)
		if err != nil {
			return err
		}
		rate, err := s.rates.Rate(ctx, b, lt)
		if err != nil {
			return fmt.Errorf("interest rate: %w", err)
		}
		issued, err := r.Loans.ListByOwnerAccount(ctx, owner.ID)
		if err != nil {
			return err
		}

		l := &loan.Loan{
			LoanNo:            id.Sequence(int64(len(issued)+1), loanNoWidth),
			OwnerAccountID:    owner.ID,
			BorrowerAccountID: in.BorrowerAccountID,
			Principal:         in.Amount,
			InterestRate:      rate,
			Duration:          in.Duration,
			Frequency:         in.Frequency,
			LoanType:          lt,
		}
		if err := l.Validate(); err != nil {
			return err
		}
		payments, err := loan.BuildSchedule(l, l.Principal)
		if err != nil {
			return err
		}
		l.Payments = payments
		if err := r.Loans.Create(ctx, l); err != nil {
			return err
		}

		if _, err := s.route(ctx, r, b, owner.ID, in.BorrowerAccountID, l.Principal, "Loan "+l.LoanNo); err != nil {
			return fmt.Errorf("pay out loan %s: %w", l.LoanNo, err)
		}
		out = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("bank: loan issued",
		zap.Uint64("bank_id", in.BankID),
		zap.String("loan_no", out.LoanNo),
		zap.Int64("principal", out.Principal),
		zap.String("rate", out.InterestRate.String()),
	)
	return out, nil
}

// MakeLoanPayment settles the earliest open scheduled payment of the loan.
// Both legs are booked by the borrower's bank, so a borrower banking
// elsewhere is debited at home and settled inter-bank.
func (s *Service) MakeLoanPayment(ctx context.Context, loanID uint64) (*loan.Payment, error) {
	var out *loan.Payment
	err := s.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loan.Loan) error {
		due, err := r.Loans.ListUnpaidScheduled(ctx, l.ID)
		if err != nil {
			return err
		}
		if len(due) == 0 {
			return fmt.Errorf("%w: loan %s", loan.ErrNoPaymentDue, l.LoanNo)
		}
		p := &due[0]
		borrowerBank, err := bankOfAccount(ctx, r, l.BorrowerAccountID)
		if err != nil {
			return err
		}
		lender, err := bankOfAccount(ctx, r, l.OwnerAccountID)
		if err != nil {
			return err
		}

		if p.Capital > 0 && p.CapitalTransferID == nil {
			desc := "Capital payment " + strconv.Itoa(p.PaymentNo)
			t, err := s.route(ctx, r, borrowerBank, l.BorrowerAccountID, l.OwnerAccountID, p.Capital, desc)
			if err != nil {
				return fmt.Errorf("loan %s capital: %w", l.LoanNo, err)
			}
			p.CapitalTransferID = &t.ID
		}
		if p.Interest > 0 && p.InterestTransferID == nil {
			income, err := singleAccount(ctx, r, lender.ID, bankDomain.LedgerInterestIncome)
			if err != nil {
				return err
			}
			desc := "Interest payment " + strconv.Itoa(p.PaymentNo)
			t, err := s.route(ctx, r, borrowerBank, l.BorrowerAccountID, income.ID, p.Interest, desc)
			if err != nil {
				return fmt.Errorf("loan %s interest: %w", l.LoanNo, err)
			}
			p.InterestTransferID = &t.ID
		}
		if err := r.Loans.SavePayment(ctx, p); err != nil {
			return err
		}
		cp := *p
		out = &cp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// LoanCapitalOutstanding sums the principal still owed on loans the bank issued.
func (s *Service) LoanCapitalOutstanding(ctx context.Context, bankID uint64) (int64, error) {
	return s.sumLoans(ctx, bankID, bankDomain.LedgerLoan, func(r uow.Repos, accountID uint64) ([]loan.Loan, error) {
		return r.Loans.ListByOwnerAccount(ctx, accountID)
	})
}

// DebtOutstanding sums the principal the bank still owes on inter-bank loans.
func (s *Service) DebtOutstanding(ctx context.Context, bankID uint64) (int64, error) {
	return s.sumLoans(ctx, bankID, bankDomain.LedgerIBDebt, func(r uow.Repos, accountID uint64) ([]loan.Loan, error) {
		return r.Loans.ListByBorrowerAccount(ctx, accountID)
	})
}

func (s *Service) Balance(ctx context.Context, accountID uint64) (int64, error) {
	var out int64
	err := s.uow.WithinTx(ctx, func(r uow.Repos) error {
		a, err := r.Ledgers.GetAccount(ctx, accountID)
		if err != nil {
			return err
		}
		out = a.Deposit
		return nil
	})
	return out, err
}

// LedgerBalance sums the deposits of every account in the named ledger.
func (s *Service) LedgerBalance(ctx context.Context, bankID uint64, name string) (int64, error) {
	var out int64
	err := s.uow.WithinTx(ctx, func(r uow.Repos) error {
		l, err := ledgerByName(ctx, r, bankID, name)
		if err != nil {
			return err
		}
		accounts, err := r.Ledgers.ListAccounts(ctx, l.ID)
		if err != nil {
			return err
		}
		for _, a := range accounts {
			out += a.Deposit
		}
		return nil
	})
	return out, err
}

func (s *Service) sumLoans(ctx context.Context, bankID uint64, ledgerName string, list func(uow.Repos, uint64) ([]loan.Loan, error)) (int64, error) {
	var out int64
	err := s.uow.WithinTx(ctx, func(r uow.Repos) error {
		a, err := singleAccount(ctx, r, bankID, ledgerName)
		if err != nil {
			return err
		}
		loans, err := list(r, a.ID)
		if err != nil {
			return err
		}
		for i := range loans {
			out += loans[i].PrincipalRemaining()
		}
		return nil
	})
	return out, err
}

func (s *Service) fromSingle(ctx context.Context, bankID uint64, ledgerName string, fn func(uow.Repos, *bankDomain.Bank, *ledger.Account) (*transfer.Transfer, error)) (*transfer.Transfer, error) {
	var out *transfer.Transfer
	err := s.uow.WithinTx(ctx, func(r uow.Repos) error {
		b, err := r.Banks.GetByID(ctx, bankID)
		if err != nil {
			return err
		}
		a, err := singleAccount(ctx, r, b.ID, ledgerName)
		if err != nil {
			return err
		}
		out, err = fn(r, b, a)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// route books one transfer from the point of view of bank b:
//   - internal: both accounts are local
//   - incoming: the debit account is foreign, b's reserve pays the credit account
//   - outgoing: the credit account is foreign, the debit account pays b's reserve
//     and the counter-party bank books the incoming side
func (s *Service) route(ctx context.Context, r uow.Repos, b *bankDomain.Bank, fromID, toID uint64, amount int64, description string) (*transfer.Transfer, error) {
	if fromID == toID {
		return nil, fmt.Errorf("%w: account %d", bankDomain.ErrSameAccount, fromID)
	}
	if amount <= 0 {
		return nil, fmt.Errorf("%w: got %d", transfer.ErrInvalidAmount, amount)
	}

	from, fromLedger, err := lockAccount(ctx, r, fromID)
	if err != nil {
		return nil, err
	}
	to, toLedger, err := lockAccount(ctx, r, toID)
	if err != nil {
		return nil, err
	}
	fromLocal := fromLedger.BankID == b.ID
	toLocal := toLedger.BankID == b.ID

	debit, debitLedger := from, fromLedger
	credit, creditLedger := to, toLedger
	var counterParty uint64
	switch {
	case !fromLocal && !toLocal:
		return nil, fmt.Errorf("%w: bank %d, accounts %d and %d", bankDomain.ErrForeignTransfer, b.ID, fromID, toID)
	case !fromLocal:
		debitLedger, err = ledgerByName(ctx, r, b.ID, bankDomain.LedgerReserve)
		if err != nil {
			return nil, err
		}
		if debit, err = ledger.SingleAccount(ctx, r.Ledgers, debitLedger); err != nil {
			return nil, err
		}
	case !toLocal:
		creditLedger, err = ledgerByName(ctx, r, b.ID, bankDomain.LedgerReserve)
		if err != nil {
			return nil, err
		}
		if credit, err = ledger.SingleAccount(ctx, r.Ledgers, creditLedger); err != nil {
			return nil, err
		}
		counterParty = toLedger.BankID
	}

	w, err := r.Worlds.GetByID(ctx, b.WorldID)
	if err != nil {
		return nil, fmt.Errorf("load world %d: %w", b.WorldID, err)
	}
	t, err := transfer.New(debit.ID, credit.ID, amount, w.Cycle(), description)
	if err != nil {
		return nil, err
	}

	if err := debitLedger.Debit(debit, amount, s.flow); err != nil {
		return nil, fmt.Errorf("debit account %d: %w", debit.ID, err)
	}
	if err := creditLedger.Credit(credit, amount, s.flow); err != nil {
		return nil, fmt.Errorf("credit account %d: %w", credit.ID, err)
	}
	if err := r.Ledgers.SaveAccount(ctx, debit); err != nil {
		return nil, err
	}
	if err := r.Ledgers.SaveAccount(ctx, credit); err != nil {
		return nil, err
	}

	if counterParty != 0 {
		other, err := r.Banks.GetByID(ctx, counterParty)
		if err != nil {
			return nil, fmt.Errorf("load counter-party bank %d: %w", counterParty, err)
		}
		if _, err := s.route(ctx, r, other, fromID, toID, amount, description); err != nil {
			return nil, fmt.Errorf("settle at bank %d: %w", other.ID, err)
		}
	}

	if err := r.Transfers.Create(ctx, t); err != nil {
		return nil, err
	}
	if err := s.emit(ctx, r, b, t); err != nil {
		return nil, err
	}
	s.log.Debug("bank: transfer recorded",
		zap.Uint64("bank_id", b.ID),
		zap.Uint64("transfer_id", t.ID),
		zap.Uint64("debit_id", t.DebitID),
		zap.Uint64("credit_id", t.CreditID),
		zap.Int64("amount", t.Amount),
		zap.Int64("cycle", t.Cycle),
	)
	return t, nil
}

func (s *Service) emit(ctx context.Context, r uow.Repos, b *bankDomain.Bank, t *transfer.Transfer) error {
	msg, err := outbox.NewMessage(outbox.EventTransferRecorded, strconv.FormatUint(t.ID, 10), TransferEvent{
		TransferID:  t.ID,
		BankID:      b.ID,
		DebitID:     t.DebitID,
		CreditID:    t.CreditID,
		Amount:      t.Amount,
		Cycle:       t.Cycle,
		Description: t.Description,
		RecordedAt:  t.CreatedAt,
	})
	if err != nil {
		return err
	}
	return r.Outbox.Create(ctx, msg)
}

func lockAccount(ctx context.Context, r uow.Repos, accountID uint64) (*ledger.Account, *ledger.Ledger, error) {
	a, err := r.Ledgers.GetAccountForUpdate(ctx, accountID)
	if err != nil {
		return nil, nil, fmt.Errorf("load account %d: %w", accountID, err)
	}
	l, err := r.Ledgers.GetLedger(ctx, a.LedgerID)
	if err != nil {
		return nil, nil, fmt.Errorf("load ledger %d: %w", a.LedgerID, err)
	}
	return a, l, nil
}

func bankOfAccount(ctx context.Context, r uow.Repos, accountID uint64) (*bankDomain.Bank, error) {
	a, err := r.Ledgers.GetAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("load account %d: %w", accountID, err)
	}
	l, err := r.Ledgers.GetLedger(ctx, a.LedgerID)
	if err != nil {
		return nil, err
	}
	return r.Banks.GetByID(ctx, l.BankID)
}

func requireLocal(ctx context.Context, r uow.Repos, b *bankDomain.Bank, accountID uint64) error {
	other, err := bankOfAccount(ctx, r, accountID)
	if err != nil {
		return err
	}
	if other.ID != b.ID {
		return fmt.Errorf("%w: account %d is held at bank %d", bankDomain.ErrForeignTransfer, accountID, other.ID)
	}
	return nil
}

func ledgerByName(ctx context.Context, r uow.Repos, bankID uint64, name string) (*ledger.Ledger, error) {
	l, err := r.Ledgers.GetLedgerByName(ctx, bankID, name)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: bank %d has no %s ledger", bankDomain.ErrLedgerMissing, bankID, name)
	}
	return l, err
}

func singleAccount(ctx context.Context, r uow.Repos, bankID uint64, name string) (*ledger.Account, error) {
	l, err := ledgerByName(ctx, r, bankID, name)
	if err != nil {
		return nil, err
	}
	return ledger.SingleAccount(ctx, r.Ledgers, l)
}
