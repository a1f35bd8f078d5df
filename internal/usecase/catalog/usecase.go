// Package catalog administers loan products and their borrower slots.
package catalog

import (
	"context"
	"encoding/json"

	"collateral-ledger/internal/domain/ledger"
	"collateral-ledger/internal/domain/product"
	"collateral-ledger/internal/domain/uow"
	"collateral-ledger/pkg/id"
)

type Usecase struct {
	products product.Repository
	uow      uow.UnitOfWork
}

func NewUsecase(products product.Repository, tx uow.UnitOfWork) *Usecase {
	return &Usecase{products: products, uow: tx}
}

func (u *Usecase) Get(ctx context.Context, productID string) (*product.Product, error) {
	return u.products.GetByProductID(ctx, productID)
}

func (u *Usecase) List(ctx context.Context) ([]product.Product, error) {
	return u.products.List(ctx, false)
}

func (u *Usecase) ListActive(ctx context.Context) ([]product.Product, error) {
	return u.products.List(ctx, true)
}

// Create stores a new, active product.
func (u *Usecase) Create(ctx context.Context, in ProductInput) (*product.Product, error) {
	t := in.terms()
	if err := t.Validate(); err != nil {
		return nil, err
	}
	p := &product.Product{ProductID: id.NewID32(), Active: true}
	t.Apply(p)

	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if err := r.Products.Create(ctx, p); err != nil {
			return err
		}
		return r.Ledger.AppendAudit(ctx, productAudit(p, ledger.ActionProductCreated, nil))
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// UpdateTerms replaces the terms of a product no loan references yet.
func (u *Usecase) UpdateTerms(ctx context.Context, productID string, in ProductInput) (*product.Product, error) {
	t := in.terms()
	if err := t.Validate(); err != nil {
		return nil, err
	}
	var out *product.Product
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		p, err := r.Products.GetByProductIDForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		n, err := r.Loans.CountByProduct(ctx, p.ID)
		if err != nil {
			return err
		}
		if n > 0 {
			return product.ErrReferenced
		}
		if t.MaxBorrowers > 0 && p.CurrentBorrowers > t.MaxBorrowers {
			return product.ErrInvalidTerms
		}
		t.Apply(p)
		if err := r.Products.Save(ctx, p); err != nil {
			return err
		}
		out = p
		return r.Ledger.AppendAudit(ctx, productAudit(p, ledger.ActionProductUpdated, nil))
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SetActive toggles whether new loans may be opened against the product.
func (u *Usecase) SetActive(ctx context.Context, productID string, active bool) (*product.Product, error) {
	var out *product.Product
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		p, err := r.Products.GetByProductIDForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		p.Active = active
		if err := r.Products.Save(ctx, p); err != nil {
			return err
		}
		out = p
		return r.Ledger.AppendAudit(ctx, productAudit(p, ledger.ActionProductActivated, map[string]any{"active": active}))
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReserveSlot claims a borrower slot on p through repo, which is normally tx-bound
// so a later rollback gives the slot back.
func ReserveSlot(ctx context.Context, repo product.Repository, p *product.Product) error {
	ok, err := repo.TryReserveSlot(ctx, p.ID)
	if err != nil {
		return err
	}
	if !ok {
		return product.ErrCapacityExceeded
	}
	return nil
}

// ReleaseSlot hands a borrower slot back.
func ReleaseSlot(ctx context.Context, repo product.Repository, productID uint64) error {
	return repo.ReleaseSlot(ctx, productID)
}

func productAudit(p *product.Product, action string, extra map[string]any) *ledger.AuditEntry {
	meta := map[string]any{"product_id": p.ProductID}
	for k, v := range extra {
		meta[k] = v
	}
	b, _ := json.Marshal(meta)
	pid := p.ID
	return &ledger.AuditEntry{ProductID: &pid, Action: action, Metadata: string(b)}
}
