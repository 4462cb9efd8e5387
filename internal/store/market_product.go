package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dukerupert/shoplist/internal/model"
)

type ProductStore struct {
	db *sql.DB
}

func NewProductStore(db *sql.DB) *ProductStore {
	return &ProductStore{db: db}
}

func scanProduct(scanner interface{ Scan(...any) error }) (*model.MarketProduct, error) {
	var p model.MarketProduct
	if err := scanner.Scan(&p.ID, &p.Name, &p.Unit, &p.ReferencePrice); err != nil {
		return nil, err
	}
	return &p, nil
}

const productCols = `id, name, unit, reference_price`

// SeedIfEmpty inserts products only when the catalog has no rows yet and
// returns how many were inserted. Calling it again is a no-op.
func (s *ProductStore) SeedIfEmpty(ctx context.Context, products []model.MarketProduct) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM market_products`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	for _, p := range products {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO market_products (name, unit, reference_price) VALUES (?, ?, ?)`,
			p.Name, p.Unit, p.ReferencePrice.String(),
		); err != nil {
			return 0, fmt.Errorf("insert product %q: %w", p.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return len(products), nil
}

func (s *ProductStore) queryProducts(ctx context.Context, query string, args ...any) ([]model.MarketProduct, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []model.MarketProduct
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

func (s *ProductStore) List(ctx context.Context) ([]model.MarketProduct, error) {
	return s.queryProducts(ctx, `SELECT `+productCols+` FROM market_products ORDER BY name ASC`)
}

// Search matches products whose name contains query. An empty query lists
// the catalog. limit <= 0 means no limit.
func (s *ProductStore) Search(ctx context.Context, query string, limit int) ([]model.MarketProduct, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(strings.TrimSpace(query))
	var out []model.MarketProduct
	for _, p := range all {
		if q != "" && !strings.Contains(strings.ToLower(p.Name), q) {
			continue
		}
		out = append(out, p)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *ProductStore) GetByID(ctx context.Context, id int64) (*model.MarketProduct, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+productCols+` FROM market_products WHERE id = ?`, id)
	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (s *ProductStore) GetByName(ctx context.Context, name string) (*model.MarketProduct, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	want := normalizeName(name)
	for _, p := range all {
		if normalizeName(p.Name) == want {
			return &p, nil
		}
	}
	return nil, nil
}
