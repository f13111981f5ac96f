package repos

import (
	"database/sql"
	"errors"

	"pricebook/internal/domain"

	"github.com/jmoiron/sqlx"
)

type CustomerRepo struct{ DB *sqlx.DB }

func NewCustomerRepo(db *sqlx.DB) *CustomerRepo { return &CustomerRepo{DB: db} }

// ByID returns nil, nil when the customer does not exist.
func (r *CustomerRepo) ByID(id string) (*domain.Customer, error) {
	var c domain.Customer
	err := r.DB.Get(&c, r.DB.Rebind(`SELECT id,email,name FROM customers WHERE id=?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CustomerRepo) Create(c domain.Customer) error {
	_, err := r.DB.Exec(r.DB.Rebind(`INSERT INTO customers(id,email,name) VALUES(?,?,?)`), c.ID, c.Email, c.Name)
	return err
}

func (r *CustomerRepo) BindSession(sid, customerID string) error {
	_, err := r.DB.Exec(r.DB.Rebind(`INSERT INTO sessions(id,customer_id,last_seen)
                          VALUES(?,?,CURRENT_TIMESTAMP)
                          ON CONFLICT(id) DO UPDATE SET customer_id=excluded.customer_id,last_seen=CURRENT_TIMESTAMP`), sid, customerID)
	return err
}

// BySession returns the customer bound to sid, or nil for anonymous sessions.
func (r *CustomerRepo) BySession(sid string) (*domain.Customer, error) {
	var c domain.Customer
	err := r.DB.Get(&c, r.DB.Rebind(`
      SELECT c.id,c.email,c.name
      FROM sessions s
      JOIN customers c ON c.id=s.customer_id
      WHERE s.id=?`), sid)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}
