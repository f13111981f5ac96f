package repos

import (
	"database/sql"
	"errors"

	"pricebook/internal/domain"

	"github.com/jmoiron/sqlx"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

const productCols = `
    id, category_id, catalog_name, title, COALESCE(description,'') AS description,
    price, currency, price_card_name, tags, active,
    created_at, COALESCE(updated_at,'') AS updated_at`

func (r *ProductRepo) ListByCategory(catID string, limit, offset int) ([]domain.Product, error) {
	var out []domain.Product
	err := r.db.Select(&out, r.db.Rebind(`
  SELECT`+productCols+`
  FROM products
  WHERE category_id = ? AND active = 1
  ORDER BY created_at DESC, id
  LIMIT ? OFFSET ?
`), catID, limit, offset)
	return out, err
}

// Get returns nil, nil when the product does not exist.
func (r *ProductRepo) Get(id string) (*domain.Product, error) {
	var p domain.Product
	err := r.db.Get(&p, r.db.Rebind(`
  SELECT`+productCols+`
  FROM products
  WHERE id = ?
`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepo) Search(q, catID string, limit, offset int) ([]domain.Product, error) {
	where := `active = 1`
	args := []any{}
	if q != "" {
		where += ` AND (LOWER(title) LIKE ? OR LOWER(description) LIKE ?)`
		args = append(args, "%"+q+"%", "%"+q+"%")
	}
	if catID != "" {
		where += ` AND category_id = ?`
		args = append(args, catID)
	}

	query := `
  SELECT` + productCols + `
  FROM products
  WHERE ` + where + `
  ORDER BY created_at DESC, id
  LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	var out []domain.Product
	err := r.db.Select(&out, r.db.Rebind(query), args...)
	return out, err
}

func (r *ProductRepo) Variants(productID string) ([]domain.Variant, error) {
	var out []domain.Variant
	err := r.db.Select(&out, r.db.Rebind(`
  SELECT id, product_id, name, price, price_card_name, tags
  FROM product_variants
  WHERE product_id = ?
  ORDER BY id
`), productID)
	return out, err
}

func (r *ProductRepo) BundleComponents(bundleID string) ([]domain.BundleComponent, error) {
	var out []domain.BundleComponent
	err := r.db.Select(&out, r.db.Rebind(`
  SELECT bundle_id, component_id, qty
  FROM bundle_components
  WHERE bundle_id = ?
  ORDER BY component_id
`), bundleID)
	return out, err
}
