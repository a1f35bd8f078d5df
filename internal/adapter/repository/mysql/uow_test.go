package mysql

import (
	"context"
	"errors"
	"testing"
	"time"

	ledgerDomain "collateral-ledger/internal/domain/ledger"
	loanDomain "collateral-ledger/internal/domain/loan"
	"collateral-ledger/internal/domain/uow"
	"collateral-ledger/pkg/id"

	"github.com/shopspring/decimal"
)

// ----------------------------- Tests -----------------------------

func TestGormUoW_WithinTx_Commit(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	p := seedProduct(t, db, 1)

	guow := NewGormUoW(db)
	loanID := id.NewID32()

	err := guow.WithinTx(ctx, func(r uow.Repos) error {
		ok, err := r.Products.TryReserveSlot(ctx, p.ID)
		if err != nil || !ok {
			t.Fatalf("reserve: ok=%v err=%v", ok, err)
		}
		l := makeLoan(loanID, "b", p.ID)
		if err := r.Loans.Create(ctx, l); err != nil {
			return err
		}
		return r.Ledger.AppendCollateralChange(ctx, &ledgerDomain.CollateralChange{
			ChangeID:        id.NewID32(),
			LoanID:          l.ID,
			Kind:            ledgerDomain.CollateralAdded,
			Amount:          l.Collateral,
			CollateralAfter: l.Collateral,
			ChangedAt:       l.StartAt,
		})
	})
	if err != nil {
		t.Fatalf("WithinTx commit: %v", err)
	}

	got, err := NewLoanRepository(db).GetByLoanID(ctx, loanID)
	if err != nil {
		t.Fatalf("loan not committed: %v", err)
	}
	changes, err := NewLedgerRepository(db).CollateralChangesByLoan(ctx, got.ID)
	if err != nil || len(changes) != 1 {
		t.Fatalf("collateral changes = %d, err=%v", len(changes), err)
	}
	prod, _ := NewProductRepository(db).GetByID(ctx, p.ID)
	if prod.CurrentBorrowers != 1 {
		t.Fatalf("current borrowers = %d, want 1", prod.CurrentBorrowers)
	}
}

func TestGormUoW_WithinTx_RollbackUndoesSlot(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	p := seedProduct(t, db, 1)

	guow := NewGormUoW(db)
	loanID := id.NewID32()
	boom := errors.New("boom")

	err := guow.WithinTx(ctx, func(r uow.Repos) error {
		if ok, err := r.Products.TryReserveSlot(ctx, p.ID); err != nil || !ok {
			t.Fatalf("reserve: ok=%v err=%v", ok, err)
		}
		if err := r.Loans.Create(ctx, makeLoan(loanID, "b", p.ID)); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithinTx err = %v", err)
	}

	if _, err := NewLoanRepository(db).GetByLoanID(ctx, loanID); !errors.Is(err, loanDomain.ErrNotFound) {
		t.Fatalf("expected loan rolled back, got %v", err)
	}
	prod, _ := NewProductRepository(db).GetByID(ctx, p.ID)
	if prod.CurrentBorrowers != 0 {
		t.Fatalf("slot not released by rollback: %d", prod.CurrentBorrowers)
	}
}

func TestGormUoW_WithinLoanTx_UpdatesAndAppends(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	p := seedProduct(t, db, 0)

	l := makeLoan(id.NewID32(), "b", p.ID)
	if err := NewLoanRepository(db).Create(ctx, l); err != nil {
		t.Fatalf("seed loan: %v", err)
	}

	guow := NewGormUoW(db)
	err := guow.WithinLoanTx(ctx, l.LoanID, func(r uow.Repos, locked *loanDomain.Loan) error {
		if locked.ID != l.ID {
			t.Fatalf("locked wrong loan: %d != %d", locked.ID, l.ID)
		}
		pay := makePayment(locked.ID, "250")
		if err := r.Ledger.AppendPayment(ctx, pay); err != nil {
			return err
		}
		locked.RepaidAmount = locked.RepaidAmount.Add(pay.Amount)
		now := time.Now().UTC()
		locked.LastPaymentAt = &now
		return r.Loans.Save(ctx, locked)
	})
	if err != nil {
		t.Fatalf("WithinLoanTx: %v", err)
	}

	got, _ := NewLoanRepository(db).GetByLoanID(ctx, l.LoanID)
	if !got.RepaidAmount.Equal(decimal.NewFromInt(250)) {
		t.Fatalf("repaid = %s, want 250", got.RepaidAmount)
	}
	pays, _ := NewLedgerRepository(db).PaymentsByLoan(ctx, l.ID)
	if len(pays) != 1 {
		t.Fatalf("payments = %d, want 1", len(pays))
	}
}

func TestGormUoW_WithinLoanTx_RollbackKeepsLoan(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	p := seedProduct(t, db, 0)

	l := makeLoan(id.NewID32(), "b", p.ID)
	if err := NewLoanRepository(db).Create(ctx, l); err != nil {
		t.Fatalf("seed loan: %v", err)
	}

	guow := NewGormUoW(db)
	boom := errors.New("boom")
	err := guow.WithinLoanTx(ctx, l.LoanID, func(r uow.Repos, locked *loanDomain.Loan) error {
		if err := locked.TransitionTo(loanDomain.StatusDefaulted, time.Now().UTC()); err != nil {
			return err
		}
		if err := r.Loans.Save(ctx, locked); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithinLoanTx err = %v", err)
	}

	got, _ := NewLoanRepository(db).GetByLoanID(ctx, l.LoanID)
	if got.Status != loanDomain.StatusActive || got.ClosedAt != nil {
		t.Fatalf("rollback did not restore loan: %+v", got)
	}
}

func TestGormUoW_WithinLoanTx_LoanNotFound(t *testing.T) {
	db := openTestDB(t)
	guow := NewGormUoW(db)

	called := false
	err := guow.WithinLoanTx(context.Background(), "ffffffffffffffffffffffffffffffff", func(uow.Repos, *loanDomain.Loan) error {
		called = true
		return nil
	})
	if !errors.Is(err, loanDomain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if called {
		t.Fatal("fn must not run when the loan is missing")
	}
}
