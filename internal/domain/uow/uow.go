package uow

import (
	"context"

	"collateral-ledger/internal/domain/ledger"
	"collateral-ledger/internal/domain/loan"
	"collateral-ledger/internal/domain/product"
)

// Repos are bound to one transaction.
type Repos struct {
	Products product.Repository
	Loans    loan.Repository
	Ledger   ledger.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// lock the loan row first, then pass it in; serializes writers per loan
	WithinLoanTx(ctx context.Context, loanID string, fn func(r Repos, l *loan.Loan) error) error
}
