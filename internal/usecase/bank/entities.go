package bank

import "time"

// TransferEvent is the outbox payload written for every recorded transfer.
type TransferEvent struct {
	TransferID  uint64    `json:"transfer_id"`
	BankID      uint64    `json:"bank_id"`
	DebitID     uint64    `json:"debit_id"`
	CreditID    uint64    `json:"credit_id"`
	Amount      int64     `json:"amount"`
	Cycle       int64     `json:"cycle"`
	Description string    `json:"description"`
	RecordedAt  time.Time `json:"recorded_at"`
}

// LoanRequest carries the terms a borrower asks for. Zero Frequency means
// one payment per cycle, an empty LoanType means COMPOUND.
type LoanRequest struct {
	BankID            uint64
	BorrowerAccountID uint64
	Amount            int64
	Duration          int
	Frequency         int
	LoanType          string
}
