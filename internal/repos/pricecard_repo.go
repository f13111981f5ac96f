package repos

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"pricebook/internal/domain"
)

type PriceCardRepo struct{ db *sqlx.DB }

func NewPriceCardRepo(db *sqlx.DB) *PriceCardRepo { return &PriceCardRepo{db: db} }

type cardRow struct {
	ID   string `db:"id"`
	Book string `db:"book_name"`
	Name string `db:"name"`
}

type snapshotRow struct {
	ID             string `db:"id"`
	CardID         string `db:"card_id"`
	BeginDate      string `db:"begin_date"`
	ApprovalStatus string `db:"approval_status"`
	Components     string `db:"components"`
}

type tierRow struct {
	SnapshotID string          `db:"snapshot_id"`
	Currency   string          `db:"currency"`
	Quantity   int             `db:"quantity"`
	Amount     decimal.Decimal `db:"amount"`
}

type tagRow struct {
	SnapshotID string `db:"snapshot_id"`
	Tag        string `db:"tag"`
}

// FindEntity returns the card with the given id, or nil when none exists.
func (r *PriceCardRepo) FindEntity(id string) (*domain.PriceCard, error) {
	var row cardRow
	err := r.db.Get(&row, r.db.Rebind(`SELECT id, book_name, name FROM price_cards WHERE LOWER(id) = LOWER(?)`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	cards, err := r.hydrate([]cardRow{row})
	if err != nil {
		return nil, err
	}
	return &cards[0], nil
}

// FindEntitiesInList returns every card that is a member of listName, unfiltered.
func (r *PriceCardRepo) FindEntitiesInList(listName string) ([]domain.PriceCard, error) {
	var rows []cardRow
	err := r.db.Select(&rows, r.db.Rebind(`
		SELECT id, book_name, name
		FROM price_cards
		WHERE list_name = ?
		ORDER BY id
	`), listName)
	if err != nil {
		return nil, err
	}
	return r.hydrate(rows)
}

func (r *PriceCardRepo) hydrate(rows []cardRow) ([]domain.PriceCard, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	ids := make([]string, 0, len(rows))
	for _, c := range rows {
		ids = append(ids, c.ID)
	}

	query, args, err := sqlx.In(`
		SELECT id, card_id, begin_date, approval_status, components
		FROM price_snapshots
		WHERE card_id IN (?)
		ORDER BY card_id, seq`, ids)
	if err != nil {
		return nil, err
	}
	var snaps []snapshotRow
	if err := r.db.Select(&snaps, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}

	snapIDs := make([]string, 0, len(snaps))
	for _, s := range snaps {
		snapIDs = append(snapIDs, s.ID)
	}
	tiers := map[string][]domain.PriceTier{}
	tags := map[string][]string{}
	if len(snapIDs) > 0 {
		query, args, err = sqlx.In(`
			SELECT snapshot_id, currency, quantity, amount
			FROM price_tiers
			WHERE snapshot_id IN (?)
			ORDER BY snapshot_id, seq`, snapIDs)
		if err != nil {
			return nil, err
		}
		var trows []tierRow
		if err := r.db.Select(&trows, r.db.Rebind(query), args...); err != nil {
			return nil, err
		}
		for _, t := range trows {
			tiers[t.SnapshotID] = append(tiers[t.SnapshotID], domain.PriceTier{Currency: t.Currency, Quantity: t.Quantity, Amount: t.Amount})
		}

		query, args, err = sqlx.In(`
			SELECT snapshot_id, tag
			FROM snapshot_tags
			WHERE snapshot_id IN (?)
			ORDER BY snapshot_id, seq`, snapIDs)
		if err != nil {
			return nil, err
		}
		var grows []tagRow
		if err := r.db.Select(&grows, r.db.Rebind(query), args...); err != nil {
			return nil, err
		}
		for _, g := range grows {
			tags[g.SnapshotID] = append(tags[g.SnapshotID], g.Tag)
		}
	}

	bySnapCard := map[string][]domain.PriceSnapshot{}
	for _, s := range snaps {
		begin, err := time.Parse(time.RFC3339Nano, s.BeginDate)
		if err != nil {
			return nil, fmt.Errorf("snapshot %s: bad begin date %q: %w", s.ID, s.BeginDate, err)
		}
		bySnapCard[s.CardID] = append(bySnapCard[s.CardID], domain.PriceSnapshot{
			ID:             s.ID,
			BeginDate:      begin,
			ApprovalStatus: s.ApprovalStatus,
			Tiers:          tiers[s.ID],
			Tags:           tags[s.ID],
			Components:     domain.SplitTags(s.Components),
		})
	}

	out := make([]domain.PriceCard, 0, len(rows))
	for _, c := range rows {
		out = append(out, domain.PriceCard{ID: c.ID, Book: c.Book, Name: c.Name, Snapshots: bySnapCard[c.ID]})
	}
	return out, nil
}

// Upsert replaces a card and all of its snapshots.
func (r *PriceCardRepo) Upsert(c domain.PriceCard) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, q := range []string{
		`DELETE FROM price_tiers WHERE snapshot_id IN (SELECT id FROM price_snapshots WHERE card_id = ?)`,
		`DELETE FROM snapshot_tags WHERE snapshot_id IN (SELECT id FROM price_snapshots WHERE card_id = ?)`,
		`DELETE FROM price_snapshots WHERE card_id = ?`,
		`DELETE FROM price_cards WHERE id = ?`,
	} {
		if _, err := tx.Exec(tx.Rebind(q), c.ID); err != nil {
			return err
		}
	}
	if err := insertCard(tx, c); err != nil {
		return err
	}
	return tx.Commit()
}

func insertCard(tx *sqlx.Tx, c domain.PriceCard) error {
	if c.ID == "" {
		c.ID = domain.CardID(c.Book, c.Name)
	}
	if _, err := tx.Exec(tx.Rebind(`
		INSERT INTO price_cards(id, book_name, name, list_name) VALUES(?,?,?,?)
	`), c.ID, c.Book, c.Name, domain.BookCardsList(c.Book)); err != nil {
		return err
	}
	for i, s := range c.Snapshots {
		if _, err := tx.Exec(tx.Rebind(`
			INSERT INTO price_snapshots(id, card_id, seq, begin_date, approval_status, components)
			VALUES(?,?,?,?,?,?)
		`), s.ID, c.ID, i, s.BeginDate.UTC().Format(time.RFC3339Nano), s.ApprovalStatus, strings.Join(s.Components, ",")); err != nil {
			return err
		}
		for j, t := range s.Tiers {
			if _, err := tx.Exec(tx.Rebind(`
				INSERT INTO price_tiers(snapshot_id, seq, currency, quantity, amount) VALUES(?,?,?,?,?)
			`), s.ID, j, t.Currency, t.Quantity, t.Amount.String()); err != nil {
				return err
			}
		}
		for j, tag := range s.Tags {
			if _, err := tx.Exec(tx.Rebind(`
				INSERT INTO snapshot_tags(snapshot_id, seq, tag) VALUES(?,?,?)
			`), s.ID, j, tag); err != nil {
				return err
			}
		}
	}
	return nil
}
