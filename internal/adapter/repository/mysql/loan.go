package mysql

import (
	"context"
	"errors"

	loanDomain "collateral-ledger/internal/domain/loan"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LoanRepository struct{ db *gorm.DB }

func NewLoanRepository(db *gorm.DB) *LoanRepository { return &LoanRepository{db: db} }

func (r *LoanRepository) Create(ctx context.Context, l *loanDomain.Loan) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *LoanRepository) Save(ctx context.Context, l *loanDomain.Loan) error {
	return r.db.WithContext(ctx).Save(l).Error
}

func (r *LoanRepository) GetByLoanID(ctx context.Context, loanID string) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	res := r.db.WithContext(ctx).Where("loan_id = ?", loanID).First(&out)
	return loanOrNotFound(&out, res.Error)
}

// GetByLoanIDForUpdate issues SELECT ... FOR UPDATE (a no-op on sqlite, which locks the whole db per write tx).
func (r *LoanRepository) GetByLoanIDForUpdate(ctx context.Context, loanID string) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("loan_id = ?", loanID).
		First(&out)
	return loanOrNotFound(&out, res.Error)
}

func (r *LoanRepository) ListByBorrower(ctx context.Context, borrowerID string) ([]loanDomain.Loan, error) {
	var out []loanDomain.Loan
	err := r.db.WithContext(ctx).
		Where("borrower_id = ?", borrowerID).
		Order("start_at DESC, id DESC").
		Find(&out).Error
	return out, err
}

func (r *LoanRepository) ListActive(ctx context.Context, limit, offset int) ([]loanDomain.Loan, error) {
	var out []loanDomain.Loan
	q := r.db.WithContext(ctx).
		Where("status = ?", loanDomain.StatusActive).
		Order("id ASC")
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}
	err := q.Find(&out).Error
	return out, err
}

func (r *LoanRepository) CountByProduct(ctx context.Context, productID uint64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&loanDomain.Loan{}).Where("product_id = ?", productID).Count(&n).Error
	return n, err
}

func (r *LoanRepository) StatsByProduct(ctx context.Context, productID uint64) ([]loanDomain.StatusStats, error) {
	var out []loanDomain.StatusStats
	err := r.db.WithContext(ctx).
		Model(&loanDomain.Loan{}).
		Select("status, COUNT(*) AS count, SUM(principal) AS principal, SUM(collateral) AS collateral, SUM(repaid_amount) AS repaid_amount").
		Where("product_id = ?", productID).
		Group("status").
		Scan(&out).Error
	return out, err
}

func loanOrNotFound(l *loanDomain.Loan, err error) (*loanDomain.Loan, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, loanDomain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}
