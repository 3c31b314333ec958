package bank

import "fivebells/internal/domain/ledger"

const (
	LedgerCapital          = "capital"
	LedgerCash             = "cash"
	LedgerDeposit          = "deposit"
	LedgerIBDebt           = "ib_debt"
	LedgerInterestIncome   = "interest_income"
	LedgerLoan             = "loan"
	LedgerLossProvision    = "loss_provision"
	LedgerLossReserve      = "loss_reserve"
	LedgerNonCash          = "non_cash"
	LedgerReserve          = "reserve"
	LedgerRetainedEarnings = "retained_earnings"
)

// LedgerSpec describes one ledger created together with a bank.
type LedgerSpec struct {
	Name        string
	AccountType ledger.AccountType
	LedgerType  string
	Single      bool
}

var customerChart = []LedgerSpec{
	{LedgerCapital, ledger.AccountTypeEquity, "CAPITAL", true},
	{LedgerCash, ledger.AccountTypeAsset, "CASH", true},
	{LedgerDeposit, ledger.AccountTypeLiability, "DEPOSIT", false},
	{LedgerIBDebt, ledger.AccountTypeLiability, "LOAN", true},
	{LedgerInterestIncome, ledger.AccountTypeLiability, "DEPOSIT", true},
	{LedgerLoan, ledger.AccountTypeAsset, "LOAN", true},
	{LedgerLossProvision, ledger.AccountTypeLiability, "DEPOSIT", true},
	{LedgerLossReserve, ledger.AccountTypeAsset, "DEPOSIT", true},
	{LedgerNonCash, ledger.AccountTypeLiability, "DEPOSIT", true},
	{LedgerReserve, ledger.AccountTypeAsset, "DEPOSIT", true},
	{LedgerRetainedEarnings, ledger.AccountTypeEquity, "DEPOSIT", true},
}

var centralChart = []LedgerSpec{
	{LedgerInterestIncome, ledger.AccountTypeLiability, "DEPOSIT", true},
	{LedgerLoan, ledger.AccountTypeAsset, "LOAN", true},
	{LedgerNonCash, ledger.AccountTypeLiability, "DEPOSIT", true},
	{LedgerReserve, ledger.AccountTypeAsset, "DEPOSIT", true},
}

// Chart returns the ledgers a bank of the given kind is created with.
func Chart(k Kind) []LedgerSpec {
	src := customerChart
	if k == KindCentral {
		src = centralChart
	}
	return append([]LedgerSpec(nil), src...)
}
