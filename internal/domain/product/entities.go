package product

import (
	"time"

	"github.com/shopspring/decimal"
)

// Table: loan_products
type Product struct {
	ID        uint64 `gorm:"primaryKey;column:id" json:"-"`
	ProductID string `gorm:"column:product_id;size:32;uniqueIndex:ux_loan_products_product_id" json:"product_id"`
	Name      string `gorm:"column:name;size:128;not null" json:"name"`
	// Empty means collateral is denominated like the principal (par value).
	CollateralAsset string `gorm:"column:collateral_asset;size:64" json:"collateral_asset"`

	MinAmount decimal.Decimal `gorm:"column:min_amount;type:decimal(36,8);not null" json:"min_amount"`
	MaxAmount decimal.Decimal `gorm:"column:max_amount;type:decimal(36,8);not null" json:"max_amount"`

	InterestRateBps         int64 `gorm:"column:interest_rate_bps;not null" json:"interest_rate_bps"`
	CollateralRatioBps      int64 `gorm:"column:collateral_ratio_bps;not null" json:"collateral_ratio_bps"`
	DurationSeconds         int64 `gorm:"column:duration_seconds;not null" json:"duration_seconds"`
	LiquidationThresholdBps int64 `gorm:"column:liquidation_threshold_bps;not null" json:"liquidation_threshold_bps"`
	PenaltyRateBps          int64 `gorm:"column:penalty_rate_bps;not null;default:0" json:"penalty_rate_bps"`

	Active                bool `gorm:"column:active;not null;default:true" json:"active"`
	RequiresIdentityCheck bool `gorm:"column:requires_identity_check;not null;default:false" json:"requires_identity_check"`
	// 0 = unlimited
	MaxBorrowers     int64 `gorm:"column:max_borrowers;not null;default:0" json:"max_borrowers"`
	CurrentBorrowers int64 `gorm:"column:current_borrowers;not null;default:0" json:"current_borrowers"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Product) TableName() string { return "loan_products" }

func (p *Product) Duration() time.Duration {
	return time.Duration(p.DurationSeconds) * time.Second
}

// SameDenomination reports whether collateral needs no price conversion.
func (p *Product) SameDenomination() bool { return p.CollateralAsset == "" }

// Terms are the editable parameters of a product.
type Terms struct {
	Name                    string
	CollateralAsset         string
	MinAmount               decimal.Decimal
	MaxAmount               decimal.Decimal
	InterestRateBps         int64
	CollateralRatioBps      int64
	DurationSeconds         int64
	LiquidationThresholdBps int64
	PenaltyRateBps          int64
	RequiresIdentityCheck   bool
	MaxBorrowers            int64
}

func (t Terms) Validate() error {
	switch {
	case t.Name == "":
		return ErrInvalidTerms
	case !t.MinAmount.IsPositive() || t.MaxAmount.LessThan(t.MinAmount):
		return ErrInvalidTerms
	case t.InterestRateBps < 0 || t.PenaltyRateBps < 0:
		return ErrInvalidTerms
	case t.DurationSeconds <= 0:
		return ErrInvalidTerms
	case t.LiquidationThresholdBps <= 0 || t.LiquidationThresholdBps >= t.CollateralRatioBps:
		return ErrInvalidTerms
	case t.MaxBorrowers < 0:
		return ErrInvalidTerms
	}
	return nil
}

// Apply copies the terms onto p. Callers validate first.
func (t Terms) Apply(p *Product) {
	p.Name = t.Name
	p.CollateralAsset = t.CollateralAsset
	p.MinAmount = t.MinAmount
	p.MaxAmount = t.MaxAmount
	p.InterestRateBps = t.InterestRateBps
	p.CollateralRatioBps = t.CollateralRatioBps
	p.DurationSeconds = t.DurationSeconds
	p.LiquidationThresholdBps = t.LiquidationThresholdBps
	p.PenaltyRateBps = t.PenaltyRateBps
	p.RequiresIdentityCheck = t.RequiresIdentityCheck
	p.MaxBorrowers = t.MaxBorrowers
}

func (p *Product) InRange(amount decimal.Decimal) bool {
	return !amount.LessThan(p.MinAmount) && !amount.GreaterThan(p.MaxAmount)
}
