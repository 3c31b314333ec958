package bank

import (
	"context"
	"testing"

	"fivebells/internal/adapter/repository/mysql"
	bankDomain "fivebells/internal/domain/bank"
	"fivebells/internal/domain/errs"
	"fivebells/internal/domain/ledger"
	"fivebells/internal/domain/loan"
	"fivebells/internal/domain/outbox"
	"fivebells/internal/domain/transfer"
	"fivebells/internal/domain/world"
	"fivebells/internal/testutil/testdb"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

type fixture struct {
	t     *testing.T
	ctx   context.Context
	db    *gorm.DB
	svc   *Service
	world *world.World
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testdb.Open(t)
	ctx := context.Background()
	w := &world.World{Name: "test"}
	require.NoError(t, mysql.NewWorldRepository(db).Create(ctx, w))
	svc := NewService(mysql.NewGormUoW(db), bankDomain.FixedRate{Value: decimal.NewFromInt(12)}, ledger.FlowLastValue, zaptest.NewLogger(t))
	return &fixture{t: t, ctx: ctx, db: db, svc: svc, world: w}
}

func (f *fixture) bank(name string, kind bankDomain.Kind) *bankDomain.Bank {
	f.t.Helper()
	b, err := f.svc.CreateBank(f.ctx, f.world.ID, name, kind)
	require.NoError(f.t, err)
	return b
}

func (f *fixture) customer(b *bankDomain.Bank, personID uint64) *ledger.Account {
	f.t.Helper()
	a, err := f.svc.OpenDepositAccount(f.ctx, b.ID, ledger.PersonOwner(personID))
	require.NoError(f.t, err)
	return a
}

func (f *fixture) single(b *bankDomain.Bank, name string) *ledger.Account {
	f.t.Helper()
	repo := mysql.NewLedgerRepository(f.db)
	l, err := repo.GetLedgerByName(f.ctx, b.ID, name)
	require.NoError(f.t, err)
	accounts, err := repo.ListAccounts(f.ctx, l.ID)
	require.NoError(f.t, err)
	require.Len(f.t, accounts, 1)
	return &accounts[0]
}

func (f *fixture) deposit(accountID uint64) int64 {
	f.t.Helper()
	got, err := f.svc.Balance(f.ctx, accountID)
	require.NoError(f.t, err)
	return got
}

// weighted is the polarity weighted sum of every deposit in the database.
func (f *fixture) weighted() int64 {
	f.t.Helper()
	var ledgers []ledger.Ledger
	require.NoError(f.t, f.db.Find(&ledgers).Error)
	var sum int64
	for _, l := range ledgers {
		var accounts []ledger.Account
		require.NoError(f.t, f.db.Where("ledger_id = ?", l.ID).Find(&accounts).Error)
		for _, a := range accounts {
			sum += a.Deposit * int64(l.Polarity)
		}
	}
	return sum
}

func (f *fixture) count(model any) int64 {
	f.t.Helper()
	var n int64
	require.NoError(f.t, f.db.Model(model).Count(&n).Error)
	return n
}

func TestCreateBank_ChartAndNumbering(t *testing.T) {
	f := newFixture(t)

	a := f.bank("First", bankDomain.KindCustomer)
	b := f.bank("Second", "")
	c := f.bank("Central", bankDomain.KindCentral)

	require.Equal(t, "0001", a.BankNo)
	require.Equal(t, "0002", b.BankNo)
	require.Equal(t, bankDomain.KindCustomer, b.Kind)

	repo := mysql.NewLedgerRepository(f.db)
	ledgers, err := repo.ListLedgers(f.ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, ledgers, 11)
	require.Equal(t, "0001", ledgers[0].LedgerNo)
	for _, l := range ledgers {
		require.Equal(t, l.AccountType.Polarity(), l.Polarity, l.Name)
		accounts, err := repo.ListAccounts(f.ctx, l.ID)
		require.NoError(t, err)
		if l.Single {
			require.Len(t, accounts, 1, l.Name)
			require.Equal(t, a.Owner(), accounts[0].Owner)
		} else {
			require.Empty(t, accounts, l.Name)
		}
	}

	central, err := repo.ListLedgers(f.ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, central, 4)
}

func TestCreateBank_UnknownWorld(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.CreateBank(f.ctx, 999, "Ghost", bankDomain.KindCustomer)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
	require.Zero(t, f.count(&bankDomain.Bank{}))
}

func TestOpenDepositAccount(t *testing.T) {
	f := newFixture(t)
	b := f.bank("First", bankDomain.KindCustomer)

	first := f.customer(b, 1)
	second := f.customer(b, 2)
	require.Equal(t, "000001", first.AccountNo)
	require.Equal(t, "000002", second.AccountNo)
	require.Equal(t, ledger.PersonOwner(1), first.Owner)

	_, err := f.svc.OpenDepositAccount(f.ctx, b.ID, ledger.OwnerRef{})
	require.ErrorIs(t, err, bankDomain.ErrInvalidOwner)
	require.ErrorIs(t, err, errs.ErrValidation)

	_, err = f.svc.OpenDepositAccount(f.ctx, b.ID, b.Owner())
	require.ErrorIs(t, err, bankDomain.ErrInvalidOwner)

	c := f.bank("Central", bankDomain.KindCentral)
	_, err = f.svc.OpenDepositAccount(f.ctx, c.ID, ledger.PersonOwner(1))
	require.ErrorIs(t, err, bankDomain.ErrLedgerMissing)
	require.ErrorIs(t, err, errs.ErrRouting)
}

func TestInternalTransfer_RecordsAtCurrentCycle(t *testing.T) {
	f := newFixture(t)
	b := f.bank("First", bankDomain.KindCustomer)
	x, y := f.customer(b, 1), f.customer(b, 2)

	_, err := f.svc.DepositCash(f.ctx, b.ID, x.ID, 100)
	require.NoError(t, err)
	require.NoError(t, mysql.NewWorldRepository(f.db).SetCycle(f.ctx, f.world.ID, 5))

	tr, err := f.svc.Transfer(f.ctx, b.ID, x.ID, y.ID, 40, "rent")
	require.NoError(t, err)
	require.Equal(t, int64(5), tr.Cycle)
	require.Equal(t, x.ID, tr.DebitID)
	require.Equal(t, y.ID, tr.CreditID)
	require.Equal(t, "rent", tr.Description)

	require.Equal(t, int64(60), f.deposit(x.ID))
	require.Equal(t, int64(40), f.deposit(y.ID))
	require.Equal(t, int64(100), f.deposit(f.single(b, bankDomain.LedgerCash).ID))
	require.Zero(t, f.weighted())
}

func TestTransfer_RejectsBadRequests(t *testing.T) {
	f := newFixture(t)
	a := f.bank("A", bankDomain.KindCustomer)
	b := f.bank("B", bankDomain.KindCustomer)
	x := f.customer(a, 1)
	y1, y2 := f.customer(b, 2), f.customer(b, 3)

	_, err := f.svc.Transfer(f.ctx, a.ID, y1.ID, y2.ID, 10, "not ours")
	require.ErrorIs(t, err, bankDomain.ErrForeignTransfer)
	require.ErrorIs(t, err, errs.ErrRouting)

	_, err = f.svc.Transfer(f.ctx, a.ID, x.ID, x.ID, 10, "loop")
	require.ErrorIs(t, err, bankDomain.ErrSameAccount)
	require.ErrorIs(t, err, errs.ErrValidation)

	_, err = f.svc.Transfer(f.ctx, a.ID, x.ID, y1.ID, 0, "nothing")
	require.ErrorIs(t, err, transfer.ErrInvalidAmount)

	_, err = f.svc.Transfer(f.ctx, a.ID, x.ID, y1.ID, 10, "overdraft")
	require.ErrorIs(t, err, ledger.ErrNegativeBalance)

	require.Zero(t, f.count(&transfer.Transfer{}))
	require.Zero(t, f.count(&outbox.Message{}))
}

func TestOutgoingTransfer_SettlesThroughReserves(t *testing.T) {
	f := newFixture(t)
	a := f.bank("A", bankDomain.KindCustomer)
	b := f.bank("B", bankDomain.KindCustomer)
	x, y := f.customer(a, 1), f.customer(b, 2)

	_, err := f.svc.DepositCash(f.ctx, a.ID, x.ID, 100)
	require.NoError(t, err)
	_, err = f.svc.FundReserve(f.ctx, a.ID, 80)
	require.NoError(t, err)

	reserveA := f.single(a, bankDomain.LedgerReserve)
	reserveB := f.single(b, bankDomain.LedgerReserve)
	require.Equal(t, int64(80), reserveA.Deposit)
	require.Equal(t, int64(20), f.deposit(f.single(a, bankDomain.LedgerCash).ID))
	before := f.weighted()
	transfersBefore := f.count(&transfer.Transfer{})

	tr, err := f.svc.Transfer(f.ctx, a.ID, x.ID, y.ID, 50, "invoice")
	require.NoError(t, err)
	require.Equal(t, x.ID, tr.DebitID)
	require.Equal(t, reserveA.ID, tr.CreditID)

	require.Equal(t, int64(30), f.deposit(reserveA.ID))
	require.Equal(t, int64(50), f.deposit(reserveB.ID))
	require.Equal(t, int64(50), f.deposit(x.ID))
	require.Equal(t, int64(50), f.deposit(y.ID))
	require.Equal(t, before, f.weighted())

	// one row per bank
	require.Equal(t, transfersBefore+2, f.count(&transfer.Transfer{}))
	atB, err := mysql.NewTransferRepository(f.db).ListByAccount(f.ctx, reserveB.ID)
	require.NoError(t, err)
	require.Len(t, atB, 1)
	require.Equal(t, y.ID, atB[0].CreditID)

	pending, err := mysql.NewOutboxRepository(f.db).ListPending(f.ctx, 100)
	require.NoError(t, err)
	require.Len(t, pending, 4)
	require.Equal(t, outbox.EventTransferRecorded, pending[3].EventType)
}

func TestIncomingTransfer_OnlyBooksLocalSide(t *testing.T) {
	f := newFixture(t)
	a := f.bank("A", bankDomain.KindCustomer)
	b := f.bank("B", bankDomain.KindCustomer)
	x, y := f.customer(a, 1), f.customer(b, 2)

	tr, err := f.svc.Transfer(f.ctx, b.ID, x.ID, y.ID, 25, "wire")
	require.NoError(t, err)
	reserveB := f.single(b, bankDomain.LedgerReserve)
	require.Equal(t, reserveB.ID, tr.DebitID)
	require.Equal(t, int64(25), reserveB.Deposit)
	require.Equal(t, int64(25), f.deposit(y.ID))
	require.Zero(t, f.deposit(x.ID))
}

func TestOutgoingTransfer_RollsBackWhenCounterPartyFails(t *testing.T) {
	f := newFixture(t)
	a := f.bank("A", bankDomain.KindCustomer)
	b := f.bank("B", bankDomain.KindCustomer)
	x, y := f.customer(a, 1), f.customer(b, 2)

	_, err := f.svc.DepositCash(f.ctx, a.ID, x.ID, 100)
	require.NoError(t, err)
	_, err = f.svc.FundReserve(f.ctx, a.ID, 100)
	require.NoError(t, err)
	reserveA := f.single(a, bankDomain.LedgerReserve)
	transfers := f.count(&transfer.Transfer{})

	// break bank B's settlement side
	require.NoError(t, f.db.Delete(&ledger.Account{}, f.single(b, bankDomain.LedgerReserve).ID).Error)

	_, err = f.svc.Transfer(f.ctx, a.ID, x.ID, y.ID, 60, "doomed")
	require.ErrorIs(t, err, ledger.ErrEmptyLedger)

	require.Equal(t, int64(100), f.deposit(x.ID))
	require.Equal(t, int64(100), f.deposit(reserveA.ID))
	require.Zero(t, f.deposit(y.ID))
	require.Equal(t, transfers, f.count(&transfer.Transfer{}))
}

func TestOutgoingTransfer_EmptyReserveLeavesNoTrace(t *testing.T) {
	f := newFixture(t)
	a := f.bank("A", bankDomain.KindCustomer)
	b := f.bank("B", bankDomain.KindCustomer)
	x, y := f.customer(a, 1), f.customer(b, 2)

	_, err := f.svc.DepositCash(f.ctx, a.ID, x.ID, 100)
	require.NoError(t, err)
	reserveA := f.single(a, bankDomain.LedgerReserve)
	require.Zero(t, reserveA.Deposit)
	transfers, messages := f.count(&transfer.Transfer{}), f.count(&outbox.Message{})

	// x can afford it, A's reserve cannot
	_, err = f.svc.Transfer(f.ctx, a.ID, x.ID, y.ID, 60, "unfunded")
	require.ErrorIs(t, err, ledger.ErrNegativeBalance)

	require.Equal(t, int64(100), f.deposit(x.ID))
	require.Zero(t, f.deposit(reserveA.ID))
	require.Zero(t, f.deposit(y.ID))
	require.Zero(t, f.deposit(f.single(b, bankDomain.LedgerReserve).ID))
	require.Equal(t, transfers, f.count(&transfer.Transfer{}))
	require.Equal(t, messages, f.count(&outbox.Message{}))
	require.Zero(t, f.weighted())
}

func TestLoanPayment_RollsBackCapitalWhenInterestFails(t *testing.T) {
	f := newFixture(t)
	a := f.bank("A", bankDomain.KindCustomer)
	x, z := f.customer(a, 1), f.customer(a, 2)

	l, err := f.svc.RequestLoan(f.ctx, LoanRequest{BankID: a.ID, BorrowerAccountID: x.ID, Amount: 1200, Duration: 12})
	require.NoError(t, err)
	first := l.Payments[0]
	require.Positive(t, first.Interest)

	// leave exactly enough for the capital leg
	_, err = f.svc.Transfer(f.ctx, a.ID, x.ID, z.ID, 1200-first.Capital, "spent")
	require.NoError(t, err)
	loanAccount := f.single(a, bankDomain.LedgerLoan)
	income := f.single(a, bankDomain.LedgerInterestIncome)
	transfers, messages := f.count(&transfer.Transfer{}), f.count(&outbox.Message{})

	_, err = f.svc.MakeLoanPayment(f.ctx, l.ID)
	require.ErrorIs(t, err, ledger.ErrNegativeBalance)

	require.Equal(t, first.Capital, f.deposit(x.ID))
	require.Equal(t, int64(1200), f.deposit(loanAccount.ID))
	require.Zero(t, f.deposit(income.ID))
	require.Equal(t, transfers, f.count(&transfer.Transfer{}))
	require.Equal(t, messages, f.count(&outbox.Message{}))
	require.Zero(t, f.weighted())

	reloaded, err := mysql.NewLoanRepository(f.db).GetByID(f.ctx, l.ID)
	require.NoError(t, err)
	next := reloaded.NextPayment()
	require.NotNil(t, next)
	require.Equal(t, 1, next.PaymentNo)
	require.Nil(t, next.CapitalTransferID)
	require.Nil(t, next.InterestTransferID)
	require.Zero(t, reloaded.TotalPaid())

	due, err := mysql.NewLoanRepository(f.db).ListUnpaidScheduled(f.ctx, l.ID)
	require.NoError(t, err)
	require.Len(t, due, 12)
}

func TestMakeLoanPayment_UnknownLoan(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.MakeLoanPayment(f.ctx, 404)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDepositCash_RejectsForeignAccount(t *testing.T) {
	f := newFixture(t)
	a := f.bank("A", bankDomain.KindCustomer)
	b := f.bank("B", bankDomain.KindCustomer)
	y := f.customer(b, 2)

	_, err := f.svc.DepositCash(f.ctx, a.ID, y.ID, 10)
	require.ErrorIs(t, err, bankDomain.ErrForeignTransfer)
	require.Zero(t, f.deposit(y.ID))
}

func TestDepositCapital(t *testing.T) {
	f := newFixture(t)
	a := f.bank("A", bankDomain.KindCustomer)

	_, err := f.svc.DepositCapital(f.ctx, a.ID, 1000)
	require.NoError(t, err)
	require.Equal(t, int64(1000), f.deposit(f.single(a, bankDomain.LedgerCapital).ID))
	require.Equal(t, int64(1000), f.deposit(f.single(a, bankDomain.LedgerCash).ID))
	require.Zero(t, f.weighted())

	total, err := f.svc.LedgerBalance(f.ctx, a.ID, bankDomain.LedgerCapital)
	require.NoError(t, err)
	require.Equal(t, int64(1000), total)
}

func TestLoan_RequestAndRepayInFull(t *testing.T) {
	f := newFixture(t)
	a := f.bank("A", bankDomain.KindCustomer)
	x := f.customer(a, 1)
	_, err := f.svc.DepositCash(f.ctx, a.ID, x.ID, 100)
	require.NoError(t, err)

	l, err := f.svc.RequestLoan(f.ctx, LoanRequest{BankID: a.ID, BorrowerAccountID: x.ID, Amount: 1200, Duration: 12})
	require.NoError(t, err)
	require.Equal(t, "000001", l.LoanNo)
	require.Equal(t, loan.TypeCompound, l.LoanType)
	require.Equal(t, 1, l.Frequency)
	require.True(t, l.InterestRate.Equal(decimal.NewFromInt(12)))
	require.Len(t, l.Payments, 12)

	loanAccount := f.single(a, bankDomain.LedgerLoan)
	require.Equal(t, loanAccount.ID, l.OwnerAccountID)
	require.Equal(t, int64(1200), loanAccount.Deposit)
	require.Equal(t, int64(1300), f.deposit(x.ID))
	require.Zero(t, f.weighted())

	payout, err := mysql.NewTransferRepository(f.db).ListByAccount(f.ctx, loanAccount.ID)
	require.NoError(t, err)
	require.Len(t, payout, 1)
	require.Equal(t, "Loan 000001", payout[0].Description)

	outstanding, err := f.svc.LoanCapitalOutstanding(f.ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1200), outstanding)

	first := l.Payments[0]
	p, err := f.svc.MakeLoanPayment(f.ctx, l.ID)
	require.NoError(t, err)
	require.Equal(t, 1, p.PaymentNo)
	require.NotNil(t, p.CapitalTransferID)
	require.NotNil(t, p.InterestTransferID)
	require.Equal(t, 1200-first.Capital, f.deposit(loanAccount.ID))
	require.Equal(t, first.Interest, f.deposit(f.single(a, bankDomain.LedgerInterestIncome).ID))

	for i := 1; i < 12; i++ {
		_, err := f.svc.MakeLoanPayment(f.ctx, l.ID)
		require.NoError(t, err, "payment %d", i+1)
	}
	_, err = f.svc.MakeLoanPayment(f.ctx, l.ID)
	require.ErrorIs(t, err, loan.ErrNoPaymentDue)
	require.ErrorIs(t, err, errs.ErrSchedule)

	paid, err := mysql.NewLoanRepository(f.db).GetByID(f.ctx, l.ID)
	require.NoError(t, err)
	require.Equal(t, loan.StatePaid, paid.State())
	require.Zero(t, f.deposit(loanAccount.ID))
	require.Equal(t, 100-paid.InterestTotal(), f.deposit(x.ID))

	outstanding, err = f.svc.LoanCapitalOutstanding(f.ctx, a.ID)
	require.NoError(t, err)
	require.Zero(t, outstanding)
	require.Zero(t, f.weighted())
}

func TestLoan_BorrowerAtAnotherBank(t *testing.T) {
	f := newFixture(t)
	a := f.bank("A", bankDomain.KindCustomer)
	b := f.bank("B", bankDomain.KindCustomer)
	y := f.customer(b, 2)

	// A pays the principal out of its reserve
	_, err := f.svc.DepositCapital(f.ctx, a.ID, 500)
	require.NoError(t, err)
	_, err = f.svc.FundReserve(f.ctx, a.ID, 500)
	require.NoError(t, err)

	l, err := f.svc.RequestLoan(f.ctx, LoanRequest{BankID: a.ID, BorrowerAccountID: y.ID, Amount: 300, Duration: 3, LoanType: "simple"})
	require.NoError(t, err)
	require.Equal(t, loan.TypeSimple, l.LoanType)
	require.Equal(t, int64(300), f.deposit(y.ID))
	require.Equal(t, int64(200), f.deposit(f.single(a, bankDomain.LedgerReserve).ID))
	require.Equal(t, int64(300), f.deposit(f.single(b, bankDomain.LedgerReserve).ID))

	p, err := f.svc.MakeLoanPayment(f.ctx, l.ID)
	require.NoError(t, err)
	require.Equal(t, int64(100), p.Capital)
	require.Equal(t, 300-p.Capital, f.deposit(l.OwnerAccountID))
	require.Equal(t, 300-p.Total(), f.deposit(y.ID))
	require.Equal(t, p.Interest, f.deposit(f.single(a, bankDomain.LedgerInterestIncome).ID))
	require.Zero(t, f.weighted())
}

func TestRequestLoan_InvalidTermsLeaveNoTrace(t *testing.T) {
	f := newFixture(t)
	a := f.bank("A", bankDomain.KindCustomer)
	x := f.customer(a, 1)

	_, err := f.svc.RequestLoan(f.ctx, LoanRequest{BankID: a.ID, BorrowerAccountID: x.ID, Amount: 100, Duration: 0})
	require.ErrorIs(t, err, loan.ErrInvalidTerms)

	_, err = f.svc.RequestLoan(f.ctx, LoanRequest{BankID: a.ID, BorrowerAccountID: x.ID, Amount: 100, Duration: 12, LoanType: "balloon"})
	require.ErrorIs(t, err, loan.ErrInvalidTerms)

	_, err = f.svc.RequestLoan(f.ctx, LoanRequest{BankID: a.ID, BorrowerAccountID: x.ID, Amount: 0, Duration: 12})
	require.ErrorIs(t, err, loan.ErrZeroPrincipal)

	require.Zero(t, f.count(&loan.Loan{}))
	require.Zero(t, f.count(&transfer.Transfer{}))
	require.Zero(t, f.deposit(x.ID))
}

func TestDebtOutstanding(t *testing.T) {
	f := newFixture(t)
	a := f.bank("A", bankDomain.KindCustomer)
	c := f.bank("Central", bankDomain.KindCentral)

	debt, err := f.svc.DebtOutstanding(f.ctx, a.ID)
	require.NoError(t, err)
	require.Zero(t, debt)

	_, err = f.svc.DebtOutstanding(f.ctx, c.ID)
	require.ErrorIs(t, err, bankDomain.ErrLedgerMissing)
}
