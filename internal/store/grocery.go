package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dukerupert/shoplist/internal/model"
	"github.com/shopspring/decimal"
)

type ItemStore struct {
	db *sql.DB
}

func NewItemStore(db *sql.DB) *ItemStore {
	return &ItemStore{db: db}
}

func scanItem(scanner interface{ Scan(...any) error }) (*model.ListItem, error) {
	var item model.ListItem
	var purchased int
	var purchasedAt sql.NullInt64
	var createdAt int64

	err := scanner.Scan(
		&item.ID, &item.ListID, &item.Name, &item.Quantity, &item.Unit,
		&item.UnitPrice, &purchased, &purchasedAt, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	item.Purchased = purchased != 0
	if purchasedAt.Valid {
		t := time.UnixMilli(purchasedAt.Int64)
		item.PurchasedAt = &t
	}
	item.CreatedAt = time.UnixMilli(createdAt)
	return &item, nil
}

const itemCols = `id, list_id, name, quantity, unit, unit_price, purchased, purchased_at, created_at`

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func insertItem(ctx context.Context, db execer, item model.ListItem) (int64, error) {
	var pAt sql.NullInt64
	if item.Purchased {
		at := item.CreatedAt
		if item.PurchasedAt != nil {
			at = *item.PurchasedAt
		}
		pAt = sql.NullInt64{Int64: at.UnixMilli(), Valid: true}
	}
	result, err := db.ExecContext(ctx,
		`INSERT INTO list_items (list_id, name, quantity, unit, unit_price, purchased, purchased_at, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ListID, item.Name, item.Quantity, item.Unit, item.UnitPrice.String(), boolToInt(item.Purchased), pAt, item.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert item: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

func getItem(ctx context.Context, db queryRower, id int64) (*model.ListItem, error) {
	row := db.QueryRowContext(ctx, `SELECT `+itemCols+` FROM list_items WHERE id = ?`, id)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// findItemByName compares names in Go: SQLite's lower() only folds ASCII,
// and item names here are routinely accented ("Feijão", "Açúcar").
func findItemByName(ctx context.Context, db querier, listID int64, name string) (*model.ListItem, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+itemCols+` FROM list_items WHERE list_id = ? ORDER BY id ASC`, listID)
	if err != nil {
		return nil, fmt.Errorf("find item by name: %w", err)
	}
	defer rows.Close()

	want := normalizeName(name)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		if normalizeName(item.Name) == want {
			return item, nil
		}
	}
	return nil, rows.Err()
}

func (s *ItemStore) Create(ctx context.Context, item model.ListItem) (*model.ListItem, error) {
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	id, err := insertItem(ctx, s.db, item)
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

func (s *ItemStore) GetByID(ctx context.Context, id int64) (*model.ListItem, error) {
	return getItem(ctx, s.db, id)
}

// FindByName looks an item up by list and name, ignoring case and surrounding spaces.
func (s *ItemStore) FindByName(ctx context.Context, listID int64, name string) (*model.ListItem, error) {
	return findItemByName(ctx, s.db, listID, name)
}

// AddOrIncrement inserts item, or, when the list already holds an item with
// the same name, adds item.Quantity to the existing row instead.
func (s *ItemStore) AddOrIncrement(ctx context.Context, item model.ListItem) (*model.ListItem, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	id, err := addOrIncrement(ctx, tx, item)
	if err != nil {
		return nil, err
	}

	got, err := getItem(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return got, nil
}

func addOrIncrement(ctx context.Context, tx *sql.Tx, item model.ListItem) (int64, error) {
	existing, err := findItemByName(ctx, tx, item.ListID, item.Name)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		if _, err := tx.ExecContext(ctx,
			`UPDATE list_items SET quantity = quantity + ? WHERE id = ?`,
			item.Quantity, existing.ID,
		); err != nil {
			return 0, fmt.Errorf("increment quantity: %w", err)
		}
		return existing.ID, nil
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	return insertItem(ctx, tx, item)
}

func (s *ItemStore) queryItems(ctx context.Context, query string, args ...any) ([]model.ListItem, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []model.ListItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// ListByList returns a list's items in insertion order.
func (s *ItemStore) ListByList(ctx context.Context, listID int64) ([]model.ListItem, error) {
	return s.queryItems(ctx, `SELECT `+itemCols+` FROM list_items WHERE list_id = ? ORDER BY id ASC`, listID)
}

func (s *ItemStore) ListByPurchased(ctx context.Context, listID int64, purchased bool) ([]model.ListItem, error) {
	return s.queryItems(ctx,
		`SELECT `+itemCols+` FROM list_items WHERE list_id = ? AND purchased = ? ORDER BY id ASC`,
		listID, boolToInt(purchased),
	)
}

func (s *ItemStore) Update(ctx context.Context, id int64, name string, quantity int, unit string, unitPrice decimal.Decimal) (*model.ListItem, error) {
	_, err := s.db.ExecContext(ctx,
		`UPDATE list_items SET name = ?, quantity = ?, unit = ?, unit_price = ? WHERE id = ?`,
		name, quantity, unit, unitPrice.String(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *ItemStore) SetPurchased(ctx context.Context, id int64, purchased bool, at time.Time) (*model.ListItem, error) {
	var err error
	if purchased {
		_, err = s.db.ExecContext(ctx,
			`UPDATE list_items SET purchased = 1, purchased_at = ? WHERE id = ?`,
			at.UnixMilli(), id,
		)
	} else {
		_, err = s.db.ExecContext(ctx,
			`UPDATE list_items SET purchased = 0, purchased_at = NULL WHERE id = ?`,
			id,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("set purchased: %w", err)
	}
	return s.GetByID(ctx, id)
}

// TogglePurchased flips the purchased flag. Returns nil for an unknown id.
func (s *ItemStore) TogglePurchased(ctx context.Context, id int64, at time.Time) (*model.ListItem, error) {
	item, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, nil
	}
	return s.SetPurchased(ctx, id, !item.Purchased, at)
}

func (s *ItemStore) Delete(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM list_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

func (s *ItemStore) ClearPurchased(ctx context.Context, listID int64) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM list_items WHERE list_id = ? AND purchased = 1`,
		listID,
	)
	if err != nil {
		return 0, fmt.Errorf("clear purchased: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return count, nil
}

func (s *ItemStore) CountPending(ctx context.Context, listID int64) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM list_items WHERE list_id = ? AND purchased = 0`,
		listID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count pending: %w", err)
	}
	return count, nil
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
