package productmock

import (
	"context"
	"errors"
	"testing"

	domain "collateral-ledger/internal/domain/product"
)

func TestRepo_Defaults(t *testing.T) {
	ctx := context.Background()
	m := &Repo{}

	if _, err := m.GetByProductID(ctx, "p"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("GetByProductID default: %v", err)
	}
	if _, err := m.GetByID(ctx, 1); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("GetByID default: %v", err)
	}
	if ok, err := m.TryReserveSlot(ctx, 1); err != nil || !ok {
		t.Fatalf("TryReserveSlot default: ok=%v err=%v", ok, err)
	}
	if err := m.ReleaseSlot(ctx, 1); err != nil {
		t.Fatalf("ReleaseSlot default: %v", err)
	}
}

func TestRepo_TryReserveSlot_Provided(t *testing.T) {
	ctx := context.Background()
	called := false
	m := &Repo{
		TryReserveSlotFn: func(gotCtx context.Context, id uint64) (bool, error) {
			called = true
			if gotCtx != ctx || id != 7 {
				t.Fatalf("TryReserveSlot args mismatch: %d", id)
			}
			return false, nil
		},
	}
	if ok, err := m.TryReserveSlot(ctx, 7); err != nil || ok {
		t.Fatalf("TryReserveSlot: ok=%v err=%v", ok, err)
	}
	if !called {
		t.Fatal("TryReserveSlotFn not called")
	}
}
