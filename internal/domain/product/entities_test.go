package product

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func validTerms() Terms {
	return Terms{
		Name:                    "Stable 30d",
		MinAmount:               decimal.NewFromInt(100),
		MaxAmount:               decimal.NewFromInt(10_000),
		InterestRateBps:         500,
		CollateralRatioBps:      15_000,
		DurationSeconds:         30 * 24 * 3600,
		LiquidationThresholdBps: 12_000,
		PenaltyRateBps:          200,
	}
}

func TestTermsValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Terms)
		ok     bool
	}{
		{"valid", func(*Terms) {}, true},
		{"missing name", func(t *Terms) { t.Name = "" }, false},
		{"zero min", func(t *Terms) { t.MinAmount = decimal.Zero }, false},
		{"max below min", func(t *Terms) { t.MaxAmount = decimal.NewFromInt(50) }, false},
		{"threshold equals ratio", func(t *Terms) { t.LiquidationThresholdBps = 15_000 }, false},
		{"threshold above ratio", func(t *Terms) { t.LiquidationThresholdBps = 16_000 }, false},
		{"zero duration", func(t *Terms) { t.DurationSeconds = 0 }, false},
		{"negative rate", func(t *Terms) { t.InterestRateBps = -1 }, false},
		{"negative capacity", func(t *Terms) { t.MaxBorrowers = -1 }, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			terms := validTerms()
			tc.mutate(&terms)
			err := terms.Validate()
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok && !errors.Is(err, ErrInvalidTerms) {
				t.Fatalf("err = %v, want ErrInvalidTerms", err)
			}
		})
	}
}

func TestProductHelpers(t *testing.T) {
	var p Product
	validTerms().Apply(&p)

	if p.Duration() != 30*24*time.Hour {
		t.Fatalf("Duration = %v", p.Duration())
	}
	if !p.SameDenomination() {
		t.Fatal("empty collateral asset means same denomination")
	}
	if !p.InRange(decimal.NewFromInt(100)) || !p.InRange(decimal.NewFromInt(10_000)) {
		t.Fatal("bounds are inclusive")
	}
	if p.InRange(decimal.NewFromInt(99)) || p.InRange(decimal.NewFromInt(10_001)) {
		t.Fatal("outside bounds must be rejected")
	}
}
