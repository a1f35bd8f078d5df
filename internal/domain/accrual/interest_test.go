package accrual

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

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
	return &loan.Loan{Principal: decimal.NewFromInt(1000), Collateral: decimal.NewFromInt(1500), StartAt: t0}
}

func TestForLoan_HalfwayExample(t *testing.T) {
	got := ForLoan(exampleLoan(), exampleProduct(), t0.Add(15*day))
	// 1000 * 0.05 * 15/365
	want := decimal.RequireFromString("2.05479452")
	if !got.Equal(want) {
		t.Fatalf("interest = %s, want %s", got, want)
	}
}

func TestInterest_CappedAtDuration(t *testing.T) {
	l, p := exampleLoan(), exampleProduct()
	atMaturity := ForLoan(l, p, t0.Add(30*day))
	later := ForLoan(l, p, t0.Add(90*day))
	if !atMaturity.Equal(later) {
		t.Fatalf("interest kept accruing after maturity: %s vs %s", atMaturity, later)
	}
	if want := decimal.RequireFromString("4.10958904"); !atMaturity.Equal(want) {
		t.Fatalf("interest at maturity = %s, want %s", atMaturity, want)
	}
}

func TestInterest_MonotonicUpToMaturity(t *testing.T) {
	l, p := exampleLoan(), exampleProduct()
	prev := decimal.Zero
	for h := 0; h <= 24*40; h += 7 {
		cur := ForLoan(l, p, t0.Add(time.Duration(h)*time.Hour))
		if cur.LessThan(prev) {
			t.Fatalf("interest decreased at +%dh: %s < %s", h, cur, prev)
		}
		if cur.IsNegative() {
			t.Fatalf("negative interest at +%dh", h)
		}
		prev = cur
	}
}

func TestInterest_EdgeCases(t *testing.T) {
	p := exampleProduct()

	before := ForLoan(exampleLoan(), p, t0.Add(-time.Hour))
	if !before.IsZero() {
		t.Fatalf("asOf before start must yield zero, got %s", before)
	}

	zero := &loan.Loan{Principal: decimal.Zero, StartAt: t0}
	if got := ForLoan(zero, p, t0.Add(10*day)); !got.IsZero() {
		t.Fatalf("zero principal must yield zero, got %s", got)
	}

	if got := Interest(decimal.NewFromInt(1000), 0, t0, t0.Add(day), 30*day); !got.IsZero() {
		t.Fatalf("zero rate must yield zero, got %s", got)
	}
}

func TestElapsedSeconds(t *testing.T) {
	if got := ElapsedSeconds(t0, t0.Add(1500*time.Millisecond), time.Hour); got != 1 {
		t.Fatalf("partial seconds are floored, got %d", got)
	}
	if got := ElapsedSeconds(t0, t0.Add(2*time.Hour), time.Hour); got != 3600 {
		t.Fatalf("elapsed must be capped at duration, got %d", got)
	}
	if got := ElapsedSeconds(t0, t0, time.Hour); got != 0 {
		t.Fatalf("elapsed at start = %d", got)
	}
}
