package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/shoplist/internal/model"
	"github.com/shopspring/decimal"
)

type ListStore struct {
	db *sql.DB
}

func NewListStore(db *sql.DB) *ListStore {
	return &ListStore{db: db}
}

func scanList(scanner interface{ Scan(...any) error }) (*model.ShoppingList, error) {
	var l model.ShoppingList
	var createdAt int64
	err := scanner.Scan(&l.ID, &l.Name, &l.Description, &l.Type, &createdAt, &l.EstimatedTotal, &l.CoverPhoto, &l.Status)
	if err != nil {
		return nil, err
	}
	l.CreatedAt = time.UnixMilli(createdAt)
	return &l, nil
}

const listCols = `id, name, description, list_type, created_at, estimated_total, cover_photo, status`

func (s *ListStore) Create(ctx context.Context, l model.ShoppingList) (*model.ShoppingList, error) {
	id, err := insertList(ctx, s.db, l)
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertList(ctx context.Context, db execer, l model.ShoppingList) (int64, error) {
	if l.Status == "" {
		l.Status = model.ListStatusActive
	}
	if l.Type == "" {
		l.Type = model.ListTypeRegular
	}
	result, err := db.ExecContext(ctx,
		`INSERT INTO shopping_lists (name, description, list_type, created_at, estimated_total, cover_photo, status) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		l.Name, l.Description, l.Type, l.CreatedAt.UnixMilli(), l.EstimatedTotal.String(), l.CoverPhoto, l.Status,
	)
	if err != nil {
		return 0, fmt.Errorf("insert list: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// CreateWithItems inserts a list and its items in one transaction. Items
// sharing a name are merged into one row with the summed quantity.
func (s *ListStore) CreateWithItems(ctx context.Context, l model.ShoppingList, items []model.ListItem) (*model.ShoppingList, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	id, err := insertList(ctx, tx, l)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		item.ListID = id
		if item.CreatedAt.IsZero() {
			item.CreatedAt = l.CreatedAt
		}
		if _, err := addOrIncrement(ctx, tx, item); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *ListStore) GetByID(ctx context.Context, id int64) (*model.ShoppingList, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+listCols+` FROM shopping_lists WHERE id = ?`, id)
	l, err := scanList(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get list: %w", err)
	}
	return l, nil
}

func (s *ListStore) queryLists(ctx context.Context, query string, args ...any) ([]model.ShoppingList, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list lists: %w", err)
	}
	defer rows.Close()

	var lists []model.ShoppingList
	for rows.Next() {
		l, err := scanList(rows)
		if err != nil {
			return nil, fmt.Errorf("scan list: %w", err)
		}
		lists = append(lists, *l)
	}
	return lists, rows.Err()
}

// List returns every list, newest first.
func (s *ListStore) List(ctx context.Context) ([]model.ShoppingList, error) {
	return s.queryLists(ctx, `SELECT `+listCols+` FROM shopping_lists ORDER BY created_at DESC, id DESC`)
}

func (s *ListStore) ListByStatus(ctx context.Context, status model.ListStatus) ([]model.ShoppingList, error) {
	return s.queryLists(ctx,
		`SELECT `+listCols+` FROM shopping_lists WHERE status = ? ORDER BY created_at DESC, id DESC`,
		status,
	)
}

// ListCreatedBetween returns lists with from <= created_at < to.
func (s *ListStore) ListCreatedBetween(ctx context.Context, from, to time.Time) ([]model.ShoppingList, error) {
	return s.queryLists(ctx,
		`SELECT `+listCols+` FROM shopping_lists WHERE created_at >= ? AND created_at < ? ORDER BY created_at ASC, id ASC`,
		from.UnixMilli(), to.UnixMilli(),
	)
}

func (s *ListStore) Update(ctx context.Context, id int64, name, description string) (*model.ShoppingList, error) {
	_, err := s.db.ExecContext(ctx,
		`UPDATE shopping_lists SET name = ?, description = ? WHERE id = ?`,
		name, description, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update list: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *ListStore) UpdateStatus(ctx context.Context, id int64, status model.ListStatus) (*model.ShoppingList, error) {
	_, err := s.db.ExecContext(ctx, `UPDATE shopping_lists SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return nil, fmt.Errorf("update list status: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *ListStore) UpdateEstimatedTotal(ctx context.Context, id int64, total decimal.Decimal) error {
	_, err := s.db.ExecContext(ctx, `UPDATE shopping_lists SET estimated_total = ? WHERE id = ?`, total.String(), id)
	if err != nil {
		return fmt.Errorf("update estimated total: %w", err)
	}
	return nil
}

func (s *ListStore) UpdateCoverPhoto(ctx context.Context, id int64, ref string) (*model.ShoppingList, error) {
	_, err := s.db.ExecContext(ctx, `UPDATE shopping_lists SET cover_photo = ? WHERE id = ?`, ref, id)
	if err != nil {
		return nil, fmt.Errorf("update cover photo: %w", err)
	}
	return s.GetByID(ctx, id)
}

// Delete removes a list. Its items go with it through the foreign key cascade.
func (s *ListStore) Delete(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM shopping_lists WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete list: %w", err)
	}
	return nil
}
