package store

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"time"

	"github.com/dukerupert/shoplist/internal/model"
)

// HistoryStore reads aggregate purchase history across all lists.
type HistoryStore struct {
	db *sql.DB
}

func NewHistoryStore(db *sql.DB) *HistoryStore {
	return &HistoryStore{db: db}
}

type purchase struct {
	listID int64
	name   string
}

func (s *HistoryStore) purchases(ctx context.Context, since time.Time) ([]purchase, error) {
	query := `SELECT list_id, name FROM list_items WHERE purchased = 1`
	var args []any
	if !since.IsZero() {
		query += ` AND purchased_at >= ?`
		args = append(args, since.UnixMilli())
	}
	query += ` ORDER BY list_id ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	defer rows.Close()

	var out []purchase
	for rows.Next() {
		var p purchase
		if err := rows.Scan(&p.listID, &p.name); err != nil {
			return nil, fmt.Errorf("scan purchase: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Frequencies counts purchases per product name, most purchased first.
// A zero since covers the whole history.
func (s *HistoryStore) Frequencies(ctx context.Context, since time.Time) ([]model.ProductFrequency, error) {
	ps, err := s.purchases(ctx, since)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int)
	var freqs []model.ProductFrequency
	for _, p := range ps {
		key := normalizeName(p.name)
		if i, ok := index[key]; ok {
			freqs[i].Count++
			continue
		}
		index[key] = len(freqs)
		freqs = append(freqs, model.ProductFrequency{Product: p.name, Count: 1})
	}

	slices.SortStableFunc(freqs, func(a, b model.ProductFrequency) int {
		return b.Count - a.Count
	})
	return freqs, nil
}

// Cooccurrences counts, for every pair of products, the lists in which both
// were purchased. Pairs are unordered and reported once, highest count first.
func (s *HistoryStore) Cooccurrences(ctx context.Context) ([]model.Cooccurrence, error) {
	ps, err := s.purchases(ctx, time.Time{})
	if err != nil {
		return nil, err
	}

	byList := make(map[int64][]string)
	var listOrder []int64
	display := make(map[string]string)
	for _, p := range ps {
		key := normalizeName(p.name)
		if _, ok := display[key]; !ok {
			display[key] = p.name
		}
		names, seen := byList[p.listID]
		if !seen {
			listOrder = append(listOrder, p.listID)
		}
		if !slices.Contains(names, key) {
			byList[p.listID] = append(names, key)
		}
	}

	type pairKey struct{ a, b string }
	index := make(map[pairKey]int)
	var pairs []model.Cooccurrence
	for _, listID := range listOrder {
		names := byList[listID]
		for i := 0; i < len(names); i++ {
			for j := i + 1; j < len(names); j++ {
				a, b := names[i], names[j]
				if b < a {
					a, b = b, a
				}
				k := pairKey{a, b}
				if n, ok := index[k]; ok {
					pairs[n].Count++
					continue
				}
				index[k] = len(pairs)
				pairs = append(pairs, model.Cooccurrence{ProductA: display[a], ProductB: display[b], Count: 1})
			}
		}
	}

	slices.SortStableFunc(pairs, func(x, y model.Cooccurrence) int {
		return y.Count - x.Count
	})
	return pairs, nil
}
