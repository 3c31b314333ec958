package ledger

import "context"

type Repository interface {
	// Ledgers
	CreateLedger(ctx context.Context, l *Ledger) error
	GetLedger(ctx context.Context, id uint64) (*Ledger, error)
	GetLedgerByName(ctx context.Context, bankID uint64, name string) (*Ledger, error)
	ListLedgers(ctx context.Context, bankID uint64) ([]Ledger, error)

	// Accounts
	CreateAccount(ctx context.Context, a *Account) error
	GetAccount(ctx context.Context, id uint64) (*Account, error)
	GetAccountForUpdate(ctx context.Context, id uint64) (*Account, error)
	FirstAccountForUpdate(ctx context.Context, ledgerID uint64) (*Account, error)
	SaveAccount(ctx context.Context, a *Account) error
	ListAccounts(ctx context.Context, ledgerID uint64) ([]Account, error)
	ListAccountsByOwner(ctx context.Context, owner OwnerRef) ([]Account, error)
}
