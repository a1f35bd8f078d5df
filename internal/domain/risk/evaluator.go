// Package risk evaluates a loan's collateral coverage and liquidation eligibility.
// Everything here is read-only; callers obtain collateral quotes before calling in.
package risk

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"collateral-ledger/internal/domain/accrual"
	"collateral-ledger/internal/domain/apperr"
	"collateral-ledger/internal/domain/ledger"
	"collateral-ledger/internal/domain/loan"
	"collateral-ledger/internal/domain/product"
)

var (
	ErrPriceUnavailable = apperr.New(apperr.KindDependency, "price_unavailable", "collateral price is unavailable")
	ErrStalePrice       = apperr.New(apperr.KindDependency, "stale_price", "collateral price is stale")
)

// PriceOracle values an amount of asset in the unit loans are denominated in.
type PriceOracle interface {
	Value(ctx context.Context, asset string, amount decimal.Decimal) (decimal.Decimal, error)
}

var (
	bps = decimal.NewFromInt(accrual.BpsDenominator)
	one = decimal.NewFromInt(1)
)

// Quote is the value of one unit of collateral. Valuation is linear in the amount,
// so a single quote taken up front can value any amount later without another oracle call.
type Quote struct {
	Asset string
	Unit  decimal.Decimal
}

// Par values collateral one-for-one with the principal.
func Par() Quote { return Quote{Unit: one} }

func (q Quote) Value(amount decimal.Decimal) decimal.Decimal {
	return accrual.Round(amount.Mul(q.Unit))
}

// QuoteFor returns par for same-denomination products, otherwise asks the oracle.
func QuoteFor(ctx context.Context, oracle PriceOracle, p *product.Product) (Quote, error) {
	if p.SameDenomination() {
		return Par(), nil
	}
	if oracle == nil {
		return Quote{}, ErrPriceUnavailable
	}
	unit, err := oracle.Value(ctx, p.CollateralAsset, one)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindDependency {
			return Quote{}, err
		}
		return Quote{}, fmt.Errorf("%w: %s: %v", ErrPriceUnavailable, p.CollateralAsset, err)
	}
	if !unit.IsPositive() {
		return Quote{}, fmt.Errorf("%w: non-positive quote for %s", ErrPriceUnavailable, p.CollateralAsset)
	}
	return Quote{Asset: p.CollateralAsset, Unit: unit}, nil
}

// TotalOwed = principal + accrued interest - repaid, floored at zero.
func TotalOwed(l *loan.Loan, p *product.Product, asOf time.Time) decimal.Decimal {
	owed := l.Principal.Add(accrual.ForLoan(l, p, asOf)).Sub(l.RepaidAmount)
	if owed.IsNegative() {
		return decimal.Zero
	}
	return owed
}

// Ratio is collateral value over amount owed, in bps. Infinite when nothing is owed.
type Ratio struct {
	Bps      decimal.Decimal
	Infinite bool

	value decimal.Decimal
	owed  decimal.Decimal
}

func CollateralRatio(value, owed decimal.Decimal) Ratio {
	if !owed.IsPositive() {
		return Ratio{Infinite: true, value: value, owed: decimal.Zero}
	}
	return Ratio{
		Bps:   value.Mul(bps).DivRound(owed, 2),
		value: value,
		owed:  owed,
	}
}

// Below compares exactly (value*10_000 < owed*threshold); Bps is rounded for display.
func (r Ratio) Below(thresholdBps int64) bool {
	if r.Infinite {
		return false
	}
	return r.value.Mul(bps).LessThan(r.owed.Mul(decimal.NewFromInt(thresholdBps)))
}

// BpsOrNil is nil for an infinite ratio.
func (r Ratio) BpsOrNil() *decimal.Decimal {
	if r.Infinite {
		return nil
	}
	v := r.Bps
	return &v
}

// MeetsRatio reports whether value covers owed at requiredBps or better.
func MeetsRatio(value, owed decimal.Decimal, requiredBps int64) bool {
	return !CollateralRatio(value, owed).Below(requiredBps)
}

func Maturity(l *loan.Loan, p *product.Product) time.Time {
	return l.StartAt.Add(p.Duration())
}

func IsOverdue(l *loan.Loan, p *product.Product, asOf time.Time) bool {
	return asOf.After(Maturity(l, p))
}

// IsLiquidatable: overdue, or collateral ratio under the liquidation threshold.
func IsLiquidatable(l *loan.Loan, p *product.Product, collateralValue decimal.Decimal, asOf time.Time) bool {
	if IsOverdue(l, p, asOf) {
		return true
	}
	return CollateralRatio(collateralValue, TotalOwed(l, p, asOf)).Below(p.LiquidationThresholdBps)
}

// Assessment is every derived figure of a loan at one instant.
type Assessment struct {
	AsOf             time.Time
	Interest         decimal.Decimal
	Owed             decimal.Decimal
	CollateralValue  decimal.Decimal
	Ratio            Ratio
	Overdue          bool
	SecondsRemaining int64
	Liquidatable     bool
	// set only when Liquidatable
	Reason ledger.LiquidationReason
}

func Assess(l *loan.Loan, p *product.Product, q Quote, asOf time.Time) Assessment {
	a := Assessment{
		AsOf:            asOf,
		Interest:        accrual.ForLoan(l, p, asOf),
		Owed:            TotalOwed(l, p, asOf),
		CollateralValue: q.Value(l.Collateral),
		Overdue:         IsOverdue(l, p, asOf),
	}
	a.Ratio = CollateralRatio(a.CollateralValue, a.Owed)
	if rem := Maturity(l, p).Sub(asOf); rem > 0 {
		a.SecondsRemaining = int64(rem / time.Second)
	}
	switch {
	case a.Overdue:
		a.Liquidatable, a.Reason = true, ledger.ReasonOverdue
	case a.Ratio.Below(p.LiquidationThresholdBps):
		a.Liquidatable, a.Reason = true, ledger.ReasonUndercollateralized
	}
	return a
}
