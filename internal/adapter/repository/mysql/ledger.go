package mysql

import (
	"context"
	"errors"

	ledgerDomain "collateral-ledger/internal/domain/ledger"

	"gorm.io/gorm"
)

type LedgerRepository struct{ db *gorm.DB }

func NewLedgerRepository(db *gorm.DB) *LedgerRepository { return &LedgerRepository{db: db} }

func (r *LedgerRepository) AppendPayment(ctx context.Context, p *ledgerDomain.Payment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *LedgerRepository) AppendCollateralChange(ctx context.Context, c *ledgerDomain.CollateralChange) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *LedgerRepository) AppendLiquidation(ctx context.Context, l *ledgerDomain.Liquidation) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *LedgerRepository) AppendAudit(ctx context.Context, a *ledgerDomain.AuditEntry) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *LedgerRepository) PaymentsByLoan(ctx context.Context, loanID uint64) ([]ledgerDomain.Payment, error) {
	var out []ledgerDomain.Payment
	err := r.db.WithContext(ctx).Where("loan_id = ?", loanID).Order("paid_at ASC, id ASC").Find(&out).Error
	return out, err
}

func (r *LedgerRepository) CollateralChangesByLoan(ctx context.Context, loanID uint64) ([]ledgerDomain.CollateralChange, error) {
	var out []ledgerDomain.CollateralChange
	err := r.db.WithContext(ctx).Where("loan_id = ?", loanID).Order("changed_at ASC, id ASC").Find(&out).Error
	return out, err
}

// LiquidationByLoan returns (nil, nil) when the loan was never liquidated.
func (r *LedgerRepository) LiquidationByLoan(ctx context.Context, loanID uint64) (*ledgerDomain.Liquidation, error) {
	var out ledgerDomain.Liquidation
	err := r.db.WithContext(ctx).Where("loan_id = ?", loanID).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}
