package mysql

import (
	"context"

	loanDomain "fivebells/internal/domain/loan"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LoanRepository struct{ db *gorm.DB }

func NewLoanRepository(db *gorm.DB) *LoanRepository { return &LoanRepository{db: db} }

func orderedPayments(db *gorm.DB) *gorm.DB { return db.Order("payment_no ASC") }

func (r *LoanRepository) Create(ctx context.Context, l *loanDomain.Loan) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *LoanRepository) Save(ctx context.Context, l *loanDomain.Loan) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(l).Error
}

func (r *LoanRepository) GetByID(ctx context.Context, id uint64) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	res := r.db.WithContext(ctx).Preload("Payments", orderedPayments).First(&out, id)
	return &out, res.Error
}

func (r *LoanRepository) GetByIDForUpdate(ctx context.Context, id uint64) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Payments", orderedPayments).
		First(&out, id)
	return &out, res.Error
}

func (r *LoanRepository) ListByOwnerAccount(ctx context.Context, accountID uint64) ([]loanDomain.Loan, error) {
	var out []loanDomain.Loan
	res := r.db.WithContext(ctx).
		Preload("Payments", orderedPayments).
		Where("owner_account_id = ?", accountID).
		Order("id ASC").
		Find(&out)
	return out, res.Error
}

func (r *LoanRepository) ListByBorrowerAccount(ctx context.Context, accountID uint64) ([]loanDomain.Loan, error) {
	var out []loanDomain.Loan
	res := r.db.WithContext(ctx).
		Preload("Payments", orderedPayments).
		Where("borrower_account_id = ?", accountID).
		Order("id ASC").
		Find(&out)
	return out, res.Error
}

// ReplacePayments drops every payment row of the loan and inserts the new set.
func (r *LoanRepository) ReplacePayments(ctx context.Context, loanID uint64, payments []loanDomain.Payment) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("loan_id = ?", loanID).Delete(&loanDomain.Payment{}).Error; err != nil {
		return err
	}
	if len(payments) == 0 {
		return nil
	}
	for i := range payments {
		payments[i].ID = 0
		payments[i].LoanID = loanID
	}
	return db.Create(&payments).Error
}

func (r *LoanRepository) SavePayment(ctx context.Context, p *loanDomain.Payment) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *LoanRepository) ListUnpaidScheduled(ctx context.Context, loanID uint64) ([]loanDomain.Payment, error) {
	var out []loanDomain.Payment
	res := r.db.WithContext(ctx).
		Where("loan_id = ? AND scheduled = ?", loanID, true).
		Where("((capital > 0 AND capital_transfer_id IS NULL) OR (interest > 0 AND interest_transfer_id IS NULL))").
		Order("payment_no ASC").
		Find(&out)
	return out, res.Error
}
