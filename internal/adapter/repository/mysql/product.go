package mysql

import (
	"context"
	"errors"

	productDomain "collateral-ledger/internal/domain/product"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductRepository struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) *ProductRepository { return &ProductRepository{db: db} }

func (r *ProductRepository) Create(ctx context.Context, p *productDomain.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

// Save writes every column except current_borrowers, which only the slot statements move.
func (r *ProductRepository) Save(ctx context.Context, p *productDomain.Product) error {
	return r.db.WithContext(ctx).Omit("current_borrowers").Save(p).Error
}

func (r *ProductRepository) GetByID(ctx context.Context, id uint64) (*productDomain.Product, error) {
	var out productDomain.Product
	res := r.db.WithContext(ctx).Where("id = ?", id).First(&out)
	return productOrNotFound(&out, res.Error)
}

func (r *ProductRepository) GetByProductID(ctx context.Context, productID string) (*productDomain.Product, error) {
	var out productDomain.Product
	res := r.db.WithContext(ctx).Where("product_id = ?", productID).First(&out)
	return productOrNotFound(&out, res.Error)
}

// GetByIDForUpdate issues SELECT ... FOR UPDATE; callers must be inside a transaction.
func (r *ProductRepository) GetByIDForUpdate(ctx context.Context, id uint64) (*productDomain.Product, error) {
	var out productDomain.Product
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&out)
	return productOrNotFound(&out, res.Error)
}

func (r *ProductRepository) GetByProductIDForUpdate(ctx context.Context, productID string) (*productDomain.Product, error) {
	var out productDomain.Product
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("product_id = ?", productID).
		First(&out)
	return productOrNotFound(&out, res.Error)
}

func (r *ProductRepository) GetByIDs(ctx context.Context, ids []uint64) ([]productDomain.Product, error) {
	var out []productDomain.Product
	if len(ids) == 0 {
		return out, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&out).Error
	return out, err
}

func (r *ProductRepository) List(ctx context.Context, activeOnly bool) ([]productDomain.Product, error) {
	var out []productDomain.Product
	q := r.db.WithContext(ctx).Order("id ASC")
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	err := q.Find(&out).Error
	return out, err
}

// TryReserveSlot is a compare-and-increment in one statement.
func (r *ProductRepository) TryReserveSlot(ctx context.Context, id uint64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&productDomain.Product{}).
		Where("id = ? AND (max_borrowers = 0 OR current_borrowers < max_borrowers)", id).
		UpdateColumn("current_borrowers", gorm.Expr("current_borrowers + 1"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *ProductRepository) ReleaseSlot(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).
		Model(&productDomain.Product{}).
		Where("id = ? AND current_borrowers > 0", id).
		UpdateColumn("current_borrowers", gorm.Expr("current_borrowers - 1")).Error
}

func productOrNotFound(p *productDomain.Product, err error) (*productDomain.Product, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, productDomain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}
