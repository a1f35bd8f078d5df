package product

import "context"

type Repository interface {
	Create(ctx context.Context, p *Product) error
	// Save never writes current_borrowers; a stale copy cannot undo a concurrent reservation.
	Save(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, id uint64) (*Product, error)
	GetByProductID(ctx context.Context, productID string) (*Product, error)
	// The ForUpdate reads lock the product row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id uint64) (*Product, error)
	GetByProductIDForUpdate(ctx context.Context, productID string) (*Product, error)
	GetByIDs(ctx context.Context, ids []uint64) ([]Product, error)
	List(ctx context.Context, activeOnly bool) ([]Product, error)

	// TryReserveSlot increments current_borrowers iff a slot is free.
	// It is a single conditional UPDATE, so concurrent callers cannot overshoot.
	TryReserveSlot(ctx context.Context, id uint64) (bool, error)
	// ReleaseSlot decrements current_borrowers, never below zero.
	ReleaseSlot(ctx context.Context, id uint64) error
}
