package risk

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"collateral-ledger/internal/domain/ledger"
	"collateral-ledger/internal/domain/loan"
	"collateral-ledger/internal/domain/product"
)

var t0 = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

const day = 24 * time.Hour

func exampleProduct() *product.Product {
	return &product.Product{
		InterestRateBps:         500,
		CollateralRatioBps:      15_000,
		DurationSeconds:         int64((30 * day).Seconds()),
		LiquidationThresholdBps: 12_000,
	}
}

func exampleLoan() *loan.Loan {
	return &loan.Loan{
		Principal:  decimal.NewFromInt(1000),
		Collateral: decimal.NewFromInt(1500),
		StartAt:    t0,
		Status:     loan.StatusActive,
	}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestAssess_HalfwayExample(t *testing.T) {
	l, p := exampleLoan(), exampleProduct()
	a := Assess(l, p, Par(), t0.Add(15*day))

	if !a.Owed.Equal(dec("1002.05479452")) {
		t.Fatalf("owed = %s", a.Owed)
	}
	if !a.Ratio.Bps.Equal(dec("14969.24")) {
		t.Fatalf("ratio = %s", a.Ratio.Bps)
	}
	if a.Liquidatable || a.Overdue {
		t.Fatalf("loan must be healthy: %+v", a)
	}
	if a.SecondsRemaining != int64((15 * day).Seconds()) {
		t.Fatalf("seconds remaining = %d", a.SecondsRemaining)
	}

	// repaying 500 leaves ~502.05 owed
	l.RepaidAmount = decimal.NewFromInt(500)
	if got := TotalOwed(l, p, t0.Add(15*day)); !got.Equal(dec("502.05479452")) {
		t.Fatalf("owed after 500 = %s", got)
	}
}

func TestIsLiquidatable_AtMinimumRatio(t *testing.T) {
	l, p := exampleLoan(), exampleProduct()
	if IsLiquidatable(l, p, l.Collateral, t0) {
		t.Fatal("a loan opened at exactly the required ratio must not be liquidatable")
	}
}

func TestIsLiquidatable_BelowThreshold(t *testing.T) {
	l, p := exampleLoan(), exampleProduct()
	l.Collateral = decimal.NewFromInt(1199)
	if !IsLiquidatable(l, p, l.Collateral, t0) {
		t.Fatal("ratio 11990bps < 12000bps must be liquidatable")
	}
	a := Assess(l, p, Par(), t0)
	if a.Reason != ledger.ReasonUndercollateralized {
		t.Fatalf("reason = %q", a.Reason)
	}

	l.Collateral = decimal.NewFromInt(1200)
	if IsLiquidatable(l, p, l.Collateral, t0) {
		t.Fatal("ratio exactly at threshold is not below it")
	}
}

func TestIsLiquidatable_Overdue(t *testing.T) {
	l, p := exampleLoan(), exampleProduct()
	l.Collateral = decimal.NewFromInt(100_000)

	if IsLiquidatable(l, p, l.Collateral, t0.Add(30*day)) {
		t.Fatal("at maturity the loan is not yet overdue")
	}
	if !IsLiquidatable(l, p, l.Collateral, t0.Add(30*day+time.Second)) {
		t.Fatal("one second past maturity is overdue")
	}
	a := Assess(l, p, Par(), t0.Add(31*day))
	if a.Reason != ledger.ReasonOverdue || a.SecondsRemaining != 0 {
		t.Fatalf("unexpected assessment: %+v", a)
	}
}

func TestCollateralRatio_NothingOwed(t *testing.T) {
	r := CollateralRatio(decimal.NewFromInt(10), decimal.Zero)
	if !r.Infinite || r.Below(1_000_000) || r.BpsOrNil() != nil {
		t.Fatalf("ratio with nothing owed must be infinite: %+v", r)
	}

	l, p := exampleLoan(), exampleProduct()
	l.RepaidAmount = decimal.NewFromInt(2000) // more than owed
	if got := TotalOwed(l, p, t0.Add(day)); !got.IsZero() {
		t.Fatalf("owed must floor at zero, got %s", got)
	}
}

func TestMeetsRatio(t *testing.T) {
	if !MeetsRatio(decimal.NewFromInt(1500), decimal.NewFromInt(1000), 15_000) {
		t.Fatal("exact ratio meets requirement")
	}
	if MeetsRatio(dec("1499.99999999"), decimal.NewFromInt(1000), 15_000) {
		t.Fatal("just under the ratio must fail")
	}
}

type stubOracle struct {
	unit decimal.Decimal
	err  error
	hits int
}

func (s *stubOracle) Value(_ context.Context, _ string, amount decimal.Decimal) (decimal.Decimal, error) {
	s.hits++
	return amount.Mul(s.unit), s.err
}

func TestQuoteFor(t *testing.T) {
	ctx := context.Background()
	p := exampleProduct()

	o := &stubOracle{unit: dec("2.5")}
	q, err := QuoteFor(ctx, o, p)
	if err != nil || !q.Unit.Equal(decimal.NewFromInt(1)) || o.hits != 0 {
		t.Fatalf("same-denomination must be par without oracle call: q=%+v err=%v hits=%d", q, err, o.hits)
	}

	p.CollateralAsset = "ETH"
	q, err = QuoteFor(ctx, o, p)
	if err != nil || !q.Value(decimal.NewFromInt(4)).Equal(decimal.NewFromInt(10)) {
		t.Fatalf("quote = %+v err=%v", q, err)
	}

	_, err = QuoteFor(ctx, &stubOracle{err: errors.New("timeout")}, p)
	if !errors.Is(err, ErrPriceUnavailable) {
		t.Fatalf("err = %v, want ErrPriceUnavailable", err)
	}

	_, err = QuoteFor(ctx, &stubOracle{err: ErrStalePrice}, p)
	if !errors.Is(err, ErrStalePrice) {
		t.Fatalf("err = %v, want ErrStalePrice", err)
	}

	_, err = QuoteFor(ctx, &stubOracle{unit: decimal.Zero}, p)
	if !errors.Is(err, ErrPriceUnavailable) {
		t.Fatalf("zero quote: err = %v", err)
	}
}
