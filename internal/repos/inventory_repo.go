package repos

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

type InventoryRepo struct{ db *sqlx.DB }

func NewInventoryRepo(db *sqlx.DB) *InventoryRepo { return &InventoryRepo{db: db} }

// Qty returns current stock for a product in a region.
// If no row exists, it returns sql.ErrNoRows from sqlx.Get.
func (r *InventoryRepo) Qty(productID, region string) (int, error) {
	var qty int
	err := r.db.Get(&qty, r.db.Rebind(`
		SELECT qty FROM inventory
		WHERE product_id = ? AND region_code = ?
	`), productID, region)
	if err != nil {
		return 0, err
	}
	return qty, nil
}

// TotalQty sums stock across every region; unknown products have zero.
func (r *InventoryRepo) TotalQty(productID string) (int, error) {
	var qty int
	err := r.db.Get(&qty, r.db.Rebind(`
		SELECT COALESCE(SUM(qty),0) FROM inventory WHERE product_id = ?
	`), productID)
	return qty, err
}

// RestockDate returns the earliest announced availability date, or nil.
func (r *InventoryRepo) RestockDate(productID string) (*time.Time, error) {
	var raw sql.NullString
	err := r.db.Get(&raw, r.db.Rebind(`
		SELECT MIN(available_at) FROM inventory
		WHERE product_id = ? AND available_at IS NOT NULL AND available_at <> ''
	`), productID)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !raw.Valid) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	t, err := time.Parse(time.RFC3339, raw.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// UpsertQty sets qty for (productID, region) creating the row if needed.
func (r *InventoryRepo) UpsertQty(productID, region string, qty int) error {
	_, err := r.db.Exec(r.db.Rebind(`
		INSERT INTO inventory(product_id, region_code, qty, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(product_id, region_code) DO UPDATE SET qty = excluded.qty, updated_at = excluded.updated_at
	`), productID, region, qty)
	return err
}
