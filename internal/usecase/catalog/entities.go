package catalog

import (
	"time"

	"collateral-ledger/internal/domain/product"

	"github.com/shopspring/decimal"
)

// ProductInput carries editable product terms.
type ProductInput struct {
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

func (in ProductInput) terms() product.Terms {
	return product.Terms{
		Name:                    in.Name,
		CollateralAsset:         in.CollateralAsset,
		MinAmount:               in.MinAmount,
		MaxAmount:               in.MaxAmount,
		InterestRateBps:         in.InterestRateBps,
		CollateralRatioBps:      in.CollateralRatioBps,
		DurationSeconds:         in.DurationSeconds,
		LiquidationThresholdBps: in.LiquidationThresholdBps,
		PenaltyRateBps:          in.PenaltyRateBps,
		RequiresIdentityCheck:   in.RequiresIdentityCheck,
		MaxBorrowers:            in.MaxBorrowers,
	}
}

type ProductDTO struct {
	ProductID               string          `json:"product_id"`
	Name                    string          `json:"name"`
	CollateralAsset         string          `json:"collateral_asset,omitempty"`
	MinAmount               decimal.Decimal `json:"min_amount"`
	MaxAmount               decimal.Decimal `json:"max_amount"`
	InterestRateBps         int64           `json:"interest_rate_bps"`
	CollateralRatioBps      int64           `json:"collateral_ratio_bps"`
	DurationSeconds         int64           `json:"duration_seconds"`
	LiquidationThresholdBps int64           `json:"liquidation_threshold_bps"`
	PenaltyRateBps          int64           `json:"penalty_rate_bps"`
	Active                  bool            `json:"active"`
	RequiresIdentityCheck   bool            `json:"requires_identity_check"`
	MaxBorrowers            int64           `json:"max_borrowers"`
	CurrentBorrowers        int64           `json:"current_borrowers"`
	CreatedAt               time.Time       `json:"created_at"`
	UpdatedAt               time.Time       `json:"updated_at"`
}

func ToDTO(p *product.Product) ProductDTO {
	return ProductDTO{
		ProductID:               p.ProductID,
		Name:                    p.Name,
		CollateralAsset:         p.CollateralAsset,
		MinAmount:               p.MinAmount,
		MaxAmount:               p.MaxAmount,
		InterestRateBps:         p.InterestRateBps,
		CollateralRatioBps:      p.CollateralRatioBps,
		DurationSeconds:         p.DurationSeconds,
		LiquidationThresholdBps: p.LiquidationThresholdBps,
		PenaltyRateBps:          p.PenaltyRateBps,
		Active:                  p.Active,
		RequiresIdentityCheck:   p.RequiresIdentityCheck,
		MaxBorrowers:            p.MaxBorrowers,
		CurrentBorrowers:        p.CurrentBorrowers,
		CreatedAt:               p.CreatedAt,
		UpdatedAt:               p.UpdatedAt,
	}
}
