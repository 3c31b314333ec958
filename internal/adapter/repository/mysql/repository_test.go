package mysql

import (
	"context"
	"errors"
	"testing"

	bankDomain "fivebells/internal/domain/bank"
	ledgerDomain "fivebells/internal/domain/ledger"
	outboxDomain "fivebells/internal/domain/outbox"
	transferDomain "fivebells/internal/domain/transfer"
	worldDomain "fivebells/internal/domain/world"
	"fivebells/internal/testutil/testdb"

	"gorm.io/gorm"
)

func TestLedgerRepository_SingleAndOwnerLookups(t *testing.T) {
	db := testdb.Open(t)
	repo := NewLedgerRepository(db)
	ctx := context.Background()

	reserve := &ledgerDomain.Ledger{BankID: 5, Name: "reserve", LedgerNo: "010", LedgerType: "DEPOSIT",
		AccountType: ledgerDomain.AccountTypeAsset, Polarity: -1, Single: true}
	if err := repo.CreateLedger(ctx, reserve); err != nil {
		t.Fatalf("CreateLedger: %v", err)
	}
	dup := &ledgerDomain.Ledger{BankID: 5, Name: "reserve", LedgerNo: "011", LedgerType: "DEPOSIT",
		AccountType: ledgerDomain.AccountTypeAsset, Polarity: -1}
	if err := repo.CreateLedger(ctx, dup); err == nil {
		t.Fatalf("ledger name must be unique per bank")
	}

	got, err := repo.GetLedgerByName(ctx, 5, "reserve")
	if err != nil {
		t.Fatalf("GetLedgerByName: %v", err)
	}
	if got.Polarity != -1 || !got.Single || got.AccountType.Polarity() != -1 {
		t.Fatalf("ledger round trip: %+v", got)
	}

	if _, err := ledgerDomain.SingleAccount(ctx, repo, got); !errors.Is(err, ledgerDomain.ErrEmptyLedger) {
		t.Fatalf("expected ErrEmptyLedger, got %v", err)
	}

	owner := ledgerDomain.BankOwner(5)
	a := &ledgerDomain.Account{LedgerID: got.ID, AccountNo: "reserve", Owner: owner}
	if err := repo.CreateAccount(ctx, a); err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	single, err := ledgerDomain.SingleAccount(ctx, repo, got)
	if err != nil || single.ID != a.ID {
		t.Fatalf("SingleAccount: %+v err=%v", single, err)
	}

	byOwner, err := repo.ListAccountsByOwner(ctx, owner)
	if err != nil || len(byOwner) != 1 || byOwner[0].Owner != owner {
		t.Fatalf("ListAccountsByOwner: %+v err=%v", byOwner, err)
	}
	none, _ := repo.ListAccountsByOwner(ctx, ledgerDomain.PersonOwner(5))
	if len(none) != 0 {
		t.Fatalf("owner kind must be part of the lookup")
	}

	ledgers, _ := repo.ListLedgers(ctx, 5)
	if len(ledgers) != 1 {
		t.Fatalf("ListLedgers: %d", len(ledgers))
	}
}

func TestTransferRepository_ListByCycle(t *testing.T) {
	db := testdb.Open(t)
	repo := NewTransferRepository(db)
	ctx := context.Background()

	for i, c := range []int64{1, 1, 2} {
		tr, err := transferDomain.New(uint64(i+1), 10, 5, c, "x")
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		if err := repo.Create(ctx, tr); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	c1, err := repo.ListByCycle(ctx, 1)
	if err != nil || len(c1) != 2 {
		t.Fatalf("ListByCycle(1): n=%d err=%v", len(c1), err)
	}
	credited, _ := repo.ListByAccount(ctx, 10)
	if len(credited) != 3 {
		t.Fatalf("ListByAccount must match credit side, got %d", len(credited))
	}
	got, err := repo.GetByID(ctx, credited[0].ID)
	if err != nil || got.Amount != 5 {
		t.Fatalf("GetByID: %+v err=%v", got, err)
	}
}

func TestBankRepository_ListByWorld(t *testing.T) {
	db := testdb.Open(t)
	repo := NewBankRepository(db)
	ctx := context.Background()

	for _, b := range []*bankDomain.Bank{
		{WorldID: 1, Name: "central", BankNo: "001", Kind: bankDomain.KindCentral},
		{WorldID: 1, Name: "first", BankNo: "002", Kind: bankDomain.KindCustomer},
		{WorldID: 2, Name: "elsewhere", BankNo: "001", Kind: bankDomain.KindCustomer},
	} {
		if err := repo.Create(ctx, b); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	banks, err := repo.ListByWorld(ctx, 1)
	if err != nil || len(banks) != 2 {
		t.Fatalf("ListByWorld: n=%d err=%v", len(banks), err)
	}
	if banks[0].Kind != bankDomain.KindCentral {
		t.Fatalf("banks not ordered by id: %+v", banks)
	}
}

func TestWorldRepository_CycleAndHalt(t *testing.T) {
	db := testdb.Open(t)
	repo := NewWorldRepository(db)
	ctx := context.Background()

	w := &worldDomain.World{Name: "w"}
	if err := repo.Create(ctx, w); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if w.CycleStepSize != 1 {
		t.Fatalf("step size default, got %d", w.CycleStepSize)
	}
	if err := repo.SetCycle(ctx, w.ID, 3); err != nil {
		t.Fatalf("SetCycle: %v", err)
	}
	if err := repo.SetHalted(ctx, w.ID, true, "agent failed"); err != nil {
		t.Fatalf("SetHalted: %v", err)
	}
	got, err := repo.GetByID(ctx, w.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Cycle() != 3 || !got.Halted || got.HaltReason != "agent failed" {
		t.Fatalf("world state: %+v", got)
	}

	if err := repo.SetHalted(ctx, w.ID, false, ""); err != nil {
		t.Fatalf("SetHalted(false): %v", err)
	}
	got, _ = repo.GetByIDForUpdate(ctx, w.ID)
	if got.Halted || got.HaltReason != "" {
		t.Fatalf("halt not cleared: %+v", got)
	}

	if _, err := repo.GetByID(ctx, 999); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
	all, _ := repo.List(ctx)
	if len(all) != 1 {
		t.Fatalf("List: %d", len(all))
	}
}

func TestStatisticRepository_EnsureRecordValues(t *testing.T) {
	db := testdb.Open(t)
	repo := NewStatisticRepository(db)
	ctx := context.Background()

	s1, err := repo.Ensure(ctx, 1, "bank.loan_capital")
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	s2, err := repo.Ensure(ctx, 1, "bank.loan_capital")
	if err != nil || s2.ID != s1.ID {
		t.Fatalf("Ensure must be idempotent: %d vs %d err=%v", s1.ID, s2.ID, err)
	}
	other, _ := repo.Ensure(ctx, 2, "bank.loan_capital")
	if other.ID == s1.ID {
		t.Fatalf("series are scoped per world")
	}

	for cycle, v := range []int64{100, 90, 80} {
		if err := repo.Record(ctx, s1.ID, int64(cycle+1), v); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	vals, err := repo.Values(ctx, 1, "bank.loan_capital")
	if err != nil || len(vals) != 3 {
		t.Fatalf("Values: n=%d err=%v", len(vals), err)
	}
	if vals[0].Cycle != 1 || vals[2].Value != 80 {
		t.Fatalf("values out of order: %+v", vals)
	}
	empty, _ := repo.Values(ctx, 2, "bank.loan_capital")
	if len(empty) != 0 {
		t.Fatalf("world 2 has no values, got %d", len(empty))
	}
}

func TestOutboxRepository_Lifecycle(t *testing.T) {
	db := testdb.Open(t)
	repo := NewOutboxRepository(db)
	ctx := context.Background()

	m1, _ := outboxDomain.NewMessage(outboxDomain.EventTransferRecorded, "1", map[string]int{"amount": 5})
	m2, _ := outboxDomain.NewMessage(outboxDomain.EventCycleAdvanced, "2", map[string]int{"cycle": 1})
	for _, m := range []*outboxDomain.Message{m1, m2} {
		if err := repo.Create(ctx, m); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	pending, err := repo.ListPending(ctx, 10)
	if err != nil || len(pending) != 2 {
		t.Fatalf("ListPending: n=%d err=%v", len(pending), err)
	}
	if err := repo.MarkSent(ctx, m1.ID); err != nil {
		t.Fatalf("MarkSent: %v", err)
	}
	if err := repo.IncrementRetry(ctx, m2.ID); err != nil {
		t.Fatalf("IncrementRetry: %v", err)
	}
	if err := repo.IncrementRetry(ctx, m2.ID); err != nil {
		t.Fatalf("IncrementRetry: %v", err)
	}
	pending, _ = repo.ListPending(ctx, 10)
	if len(pending) != 1 || pending[0].ID != m2.ID || pending[0].RetryCount != 2 {
		t.Fatalf("pending after retries: %+v", pending)
	}
	if err := repo.MarkFailed(ctx, m2.ID); err != nil {
		t.Fatalf("MarkFailed: %v", err)
	}
	pending, _ = repo.ListPending(ctx, 10)
	if len(pending) != 0 {
		t.Fatalf("failed messages are not pending: %d", len(pending))
	}
}
