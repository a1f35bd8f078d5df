package productmock

import (
	"context"

	domain "collateral-ledger/internal/domain/product"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Unset getters return domain.ErrNotFound; the ForUpdate getters fall back to their
// plain counterparts. TryReserveSlot defaults to granting a slot.
type Repo struct {
	CreateFn         func(ctx context.Context, p *domain.Product) error
	SaveFn           func(ctx context.Context, p *domain.Product) error
	GetByIDFn        func(ctx context.Context, id uint64) (*domain.Product, error)
	GetByProductIDFn func(ctx context.Context, productID string) (*domain.Product, error)
	GetByIDsFn       func(ctx context.Context, ids []uint64) ([]domain.Product, error)
	ListFn           func(ctx context.Context, activeOnly bool) ([]domain.Product, error)
	TryReserveSlotFn func(ctx context.Context, id uint64) (bool, error)
	ReleaseSlotFn    func(ctx context.Context, id uint64) error

	GetByIDForUpdateFn        func(ctx context.Context, id uint64) (*domain.Product, error)
	GetByProductIDForUpdateFn func(ctx context.Context, productID string) (*domain.Product, error)
}

func (m *Repo) Create(ctx context.Context, p *domain.Product) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, p)
	}
	return nil
}

func (m *Repo) Save(ctx context.Context, p *domain.Product) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, p)
	}
	return nil
}

func (m *Repo) GetByID(ctx context.Context, id uint64) (*domain.Product, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) GetByProductID(ctx context.Context, productID string) (*domain.Product, error) {
	if m.GetByProductIDFn != nil {
		return m.GetByProductIDFn(ctx, productID)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) GetByIDForUpdate(ctx context.Context, id uint64) (*domain.Product, error) {
	if m.GetByIDForUpdateFn != nil {
		return m.GetByIDForUpdateFn(ctx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *Repo) GetByProductIDForUpdate(ctx context.Context, productID string) (*domain.Product, error) {
	if m.GetByProductIDForUpdateFn != nil {
		return m.GetByProductIDForUpdateFn(ctx, productID)
	}
	return m.GetByProductID(ctx, productID)
}

func (m *Repo) GetByIDs(ctx context.Context, ids []uint64) ([]domain.Product, error) {
	if m.GetByIDsFn != nil {
		return m.GetByIDsFn(ctx, ids)
	}
	return nil, nil
}

func (m *Repo) List(ctx context.Context, activeOnly bool) ([]domain.Product, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, activeOnly)
	}
	return nil, nil
}

func (m *Repo) TryReserveSlot(ctx context.Context, id uint64) (bool, error) {
	if m.TryReserveSlotFn != nil {
		return m.TryReserveSlotFn(ctx, id)
	}
	return true, nil
}

func (m *Repo) ReleaseSlot(ctx context.Context, id uint64) error {
	if m.ReleaseSlotFn != nil {
		return m.ReleaseSlotFn(ctx, id)
	}
	return nil
}
