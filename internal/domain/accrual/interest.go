// Package accrual computes simple interest owed on a loan as of a point in time.
//
// Interest accrues linearly over a fixed 365-day year (no leap-year adjustment)
// and stops once the product's nominal duration has elapsed. Time past maturity
// makes a loan liquidatable; it does not add interest.
package accrual

import (
	"time"

	"github.com/shopspring/decimal"

	"collateral-ledger/internal/domain/loan"
	"collateral-ledger/internal/domain/product"
)

const (
	SecondsPerYear = 365 * 24 * 60 * 60
	BpsDenominator = 10_000

	// AmountScale is the number of decimal places every ledger amount is kept at.
	AmountScale = 8
)

var yearBps = decimal.NewFromInt(BpsDenominator * SecondsPerYear)

// ElapsedSeconds is asOf-start in whole seconds, clamped to [0, duration].
func ElapsedSeconds(start, asOf time.Time, duration time.Duration) int64 {
	if !asOf.After(start) {
		return 0
	}
	elapsed := int64(asOf.Sub(start) / time.Second)
	if limit := int64(duration / time.Second); elapsed > limit {
		return limit
	}
	return elapsed
}

// Interest = principal * rateBps * elapsed / (10_000 * SecondsPerYear), at AmountScale.
func Interest(principal decimal.Decimal, rateBps int64, start, asOf time.Time, duration time.Duration) decimal.Decimal {
	elapsed := ElapsedSeconds(start, asOf, duration)
	if elapsed == 0 || rateBps <= 0 || !principal.IsPositive() {
		return decimal.Zero
	}
	num := principal.Mul(decimal.NewFromInt(rateBps)).Mul(decimal.NewFromInt(elapsed))
	return num.DivRound(yearBps, AmountScale)
}

// ForLoan is Interest with the loan's principal/start and the product's rate/duration.
func ForLoan(l *loan.Loan, p *product.Product, asOf time.Time) decimal.Decimal {
	return Interest(l.Principal, p.InterestRateBps, l.StartAt, asOf, p.Duration())
}

// Round brings an input amount to AmountScale.
func Round(d decimal.Decimal) decimal.Decimal { return d.Round(AmountScale) }
