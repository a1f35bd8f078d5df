package loan

import (
	"context"

	"github.com/shopspring/decimal"
)

type Repository interface {
	Create(ctx context.Context, l *Loan) error
	Save(ctx context.Context, l *Loan) error
	GetByLoanID(ctx context.Context, loanID string) (*Loan, error)
	// GetByLoanIDForUpdate row-locks the loan for the rest of the transaction.
	GetByLoanIDForUpdate(ctx context.Context, loanID string) (*Loan, error)
	ListByBorrower(ctx context.Context, borrowerID string) ([]Loan, error)
	ListActive(ctx context.Context, limit, offset int) ([]Loan, error)
	CountByProduct(ctx context.Context, productID uint64) (int64, error)
	StatsByProduct(ctx context.Context, productID uint64) ([]StatusStats, error)
}

// StatusStats aggregates loans of one product sharing a status.
type StatusStats struct {
	Status       Status
	Count        int64
	Principal    decimal.Decimal
	Collateral   decimal.Decimal
	RepaidAmount decimal.Decimal
}
