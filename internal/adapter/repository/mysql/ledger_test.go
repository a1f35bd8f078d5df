package mysql

import (
	"context"
	"testing"
	"time"

	ledgerDomain "collateral-ledger/internal/domain/ledger"
	"collateral-ledger/pkg/id"

	"github.com/shopspring/decimal"
)

func TestLedger_AppendAndReadBack(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	p := seedProduct(t, db, 0)

	l := makeLoan(id.NewID32(), "b", p.ID)
	if err := NewLoanRepository(db).Create(ctx, l); err != nil {
		t.Fatalf("seed loan: %v", err)
	}
	repo := NewLedgerRepository(db)

	first := makePayment(l.ID, "100")
	first.PaidAt = time.Now().UTC().Add(-time.Hour)
	second := makePayment(l.ID, "50.25")
	for _, pay := range []*ledgerDomain.Payment{second, first} {
		if err := repo.AppendPayment(ctx, pay); err != nil {
			t.Fatalf("AppendPayment: %v", err)
		}
	}
	pays, err := repo.PaymentsByLoan(ctx, l.ID)
	if err != nil || len(pays) != 2 {
		t.Fatalf("PaymentsByLoan len=%d err=%v", len(pays), err)
	}
	if pays[0].PaymentID != first.PaymentID {
		t.Fatalf("payments not ordered by paid_at: %+v", pays)
	}
	if !pays[1].Amount.Equal(decimal.RequireFromString("50.25")) {
		t.Fatalf("amount = %s", pays[1].Amount)
	}

	if liq, err := repo.LiquidationByLoan(ctx, l.ID); err != nil || liq != nil {
		t.Fatalf("LiquidationByLoan before = %+v, err=%v", liq, err)
	}
	rec := &ledgerDomain.Liquidation{
		LiquidationID:    id.NewID32(),
		LoanID:           l.ID,
		LiquidatorID:     "keeper",
		CollateralSeized: l.Collateral,
		DebtAmount:       decimal.RequireFromString("1002.05479452"),
		Reason:           ledgerDomain.ReasonOverdue,
		LiquidatedAt:     time.Now().UTC(),
	}
	if err := repo.AppendLiquidation(ctx, rec); err != nil {
		t.Fatalf("AppendLiquidation: %v", err)
	}
	liq, err := repo.LiquidationByLoan(ctx, l.ID)
	if err != nil || liq == nil || liq.Reason != ledgerDomain.ReasonOverdue {
		t.Fatalf("LiquidationByLoan after = %+v, err=%v", liq, err)
	}

	// unique per loan
	dup := *rec
	dup.ID = 0
	dup.LiquidationID = id.NewID32()
	if err := repo.AppendLiquidation(ctx, &dup); err == nil {
		t.Fatal("second liquidation for the same loan must fail")
	}

	loanID := l.ID
	if err := repo.AppendAudit(ctx, &ledgerDomain.AuditEntry{
		LoanID: &loanID,
		Action: ledgerDomain.ActionLoanLiquidated,
		Amount: rec.DebtAmount,
	}); err != nil {
		t.Fatalf("AppendAudit: %v", err)
	}
	var n int64
	db.Model(&ledgerDomain.AuditEntry{}).Where("loan_id = ?", l.ID).Count(&n)
	if n != 1 {
		t.Fatalf("audit rows = %d, want 1", n)
	}
}
