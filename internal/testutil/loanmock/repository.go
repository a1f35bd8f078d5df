package loanmock

import (
	"context"

	domain "collateral-ledger/internal/domain/loan"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Unset getters return domain.ErrNotFound; unset writers are no-ops.
type Repo struct {
	CreateFn               func(ctx context.Context, l *domain.Loan) error
	SaveFn                 func(ctx context.Context, l *domain.Loan) error
	GetByLoanIDFn          func(ctx context.Context, loanID string) (*domain.Loan, error)
	GetByLoanIDForUpdateFn func(ctx context.Context, loanID string) (*domain.Loan, error)
	ListByBorrowerFn       func(ctx context.Context, borrowerID string) ([]domain.Loan, error)
	ListActiveFn           func(ctx context.Context, limit, offset int) ([]domain.Loan, error)
	CountByProductFn       func(ctx context.Context, productID uint64) (int64, error)
	StatsByProductFn       func(ctx context.Context, productID uint64) ([]domain.StatusStats, error)
}

func (m *Repo) Create(ctx context.Context, l *domain.Loan) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, l)
	}
	return nil
}

func (m *Repo) Save(ctx context.Context, l *domain.Loan) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, l)
	}
	return nil
}

func (m *Repo) GetByLoanID(ctx context.Context, loanID string) (*domain.Loan, error) {
	if m.GetByLoanIDFn != nil {
		return m.GetByLoanIDFn(ctx, loanID)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) GetByLoanIDForUpdate(ctx context.Context, loanID string) (*domain.Loan, error) {
	if m.GetByLoanIDForUpdateFn != nil {
		return m.GetByLoanIDForUpdateFn(ctx, loanID)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) ListByBorrower(ctx context.Context, borrowerID string) ([]domain.Loan, error) {
	if m.ListByBorrowerFn != nil {
		return m.ListByBorrowerFn(ctx, borrowerID)
	}
	return nil, nil
}

func (m *Repo) ListActive(ctx context.Context, limit, offset int) ([]domain.Loan, error) {
	if m.ListActiveFn != nil {
		return m.ListActiveFn(ctx, limit, offset)
	}
	return nil, nil
}

func (m *Repo) CountByProduct(ctx context.Context, productID uint64) (int64, error) {
	if m.CountByProductFn != nil {
		return m.CountByProductFn(ctx, productID)
	}
	return 0, nil
}

func (m *Repo) StatsByProduct(ctx context.Context, productID uint64) ([]domain.StatusStats, error) {
	if m.StatsByProductFn != nil {
		return m.StatsByProductFn(ctx, productID)
	}
	return nil, nil
}
