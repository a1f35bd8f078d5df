package ledger

import "context"

// Repository appends ledger events. There are no update or delete methods on purpose:
// events are immutable once written.
type Repository interface {
	AppendPayment(ctx context.Context, p *Payment) error
	AppendCollateralChange(ctx context.Context, c *CollateralChange) error
	AppendLiquidation(ctx context.Context, l *Liquidation) error
	AppendAudit(ctx context.Context, a *AuditEntry) error

	PaymentsByLoan(ctx context.Context, loanID uint64) ([]Payment, error)
	CollateralChangesByLoan(ctx context.Context, loanID uint64) ([]CollateralChange, error)
	LiquidationByLoan(ctx context.Context, loanID uint64) (*Liquidation, error)
}
