package ledgermock

import (
	"context"

	domain "collateral-ledger/internal/domain/ledger"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Appends without a func are recorded so tests can inspect what was written.
type Repo struct {
	AppendPaymentFn           func(ctx context.Context, p *domain.Payment) error
	AppendCollateralChangeFn  func(ctx context.Context, c *domain.CollateralChange) error
	AppendLiquidationFn       func(ctx context.Context, l *domain.Liquidation) error
	AppendAuditFn             func(ctx context.Context, a *domain.AuditEntry) error
	PaymentsByLoanFn          func(ctx context.Context, loanID uint64) ([]domain.Payment, error)
	CollateralChangesByLoanFn func(ctx context.Context, loanID uint64) ([]domain.CollateralChange, error)
	LiquidationByLoanFn       func(ctx context.Context, loanID uint64) (*domain.Liquidation, error)

	Payments     []domain.Payment
	Changes      []domain.CollateralChange
	Liquidations []domain.Liquidation
	Audits       []domain.AuditEntry
}

func (m *Repo) AppendPayment(ctx context.Context, p *domain.Payment) error {
	if m.AppendPaymentFn != nil {
		return m.AppendPaymentFn(ctx, p)
	}
	m.Payments = append(m.Payments, *p)
	return nil
}

func (m *Repo) AppendCollateralChange(ctx context.Context, c *domain.CollateralChange) error {
	if m.AppendCollateralChangeFn != nil {
		return m.AppendCollateralChangeFn(ctx, c)
	}
	m.Changes = append(m.Changes, *c)
	return nil
}

func (m *Repo) AppendLiquidation(ctx context.Context, l *domain.Liquidation) error {
	if m.AppendLiquidationFn != nil {
		return m.AppendLiquidationFn(ctx, l)
	}
	m.Liquidations = append(m.Liquidations, *l)
	return nil
}

func (m *Repo) AppendAudit(ctx context.Context, a *domain.AuditEntry) error {
	if m.AppendAuditFn != nil {
		return m.AppendAuditFn(ctx, a)
	}
	m.Audits = append(m.Audits, *a)
	return nil
}

func (m *Repo) PaymentsByLoan(ctx context.Context, loanID uint64) ([]domain.Payment, error) {
	if m.PaymentsByLoanFn != nil {
		return m.PaymentsByLoanFn(ctx, loanID)
	}
	return m.Payments, nil
}

func (m *Repo) CollateralChangesByLoan(ctx context.Context, loanID uint64) ([]domain.CollateralChange, error) {
	if m.CollateralChangesByLoanFn != nil {
		return m.CollateralChangesByLoanFn(ctx, loanID)
	}
	return m.Changes, nil
}

func (m *Repo) LiquidationByLoan(ctx context.Context, loanID uint64) (*domain.Liquidation, error) {
	if m.LiquidationByLoanFn != nil {
		return m.LiquidationByLoanFn(ctx, loanID)
	}
	if len(m.Liquidations) == 0 {
		return nil, nil
	}
	return &m.Liquidations[0], nil
}
