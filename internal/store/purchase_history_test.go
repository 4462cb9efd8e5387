package store

import (
	"context"
	"testing"
	"time"

	"github.com/dukerupert/shoplist/internal/database"
	"github.com/dukerupert/shoplist/internal/model"
)

func setupHistoryTestDB(t *testing.T) (*HistoryStore, *ListStore, *ItemStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewHistoryStore(db), NewListStore(db), NewItemStore(db)
}

func seedPurchases(t *testing.T, ls *ListStore, is *ItemStore, at time.Time, names ...string) {
	t.Helper()
	ctx := context.Background()
	l := mustCreateList(t, ls, "history")
	for _, n := range names {
		it, err := is.Create(ctx, model.ListItem{ListID: l.ID, Name: n, Quantity: 1})
		if err != nil {
			t.Fatalf("create item: %v", err)
		}
		if _, err := is.SetPurchased(ctx, it.ID, true, at); err != nil {
			t.Fatalf("set purchased: %v", err)
		}
	}
}

func TestFrequencies(t *testing.T) {
	hs, ls, is := setupHistoryTestDB(t)
	ctx := context.Background()
	now := time.Now()

	seedPurchases(t, ls, is, now, "Leite", "Pão")
	seedPurchases(t, ls, is, now, "leite", "Café")
	seedPurchases(t, ls, is, now, "Leite")

	// Unpurchased items never count.
	l := mustCreateList(t, ls, "pending")
	is.Create(ctx, model.ListItem{ListID: l.ID, Name: "Café", Quantity: 1})

	freqs, err := hs.Frequencies(ctx, time.Time{})
	if err != nil {
		t.Fatalf("frequencies: %v", err)
	}
	if len(freqs) != 3 {
		t.Fatalf("expected 3 products, got %d", len(freqs))
	}
	if freqs[0].Product != "Leite" || freqs[0].Count != 3 {
		t.Errorf("top = %+v, want Leite x3", freqs[0])
	}
	if freqs[1].Product != "Pão" || freqs[2].Product != "Café" {
		t.Errorf("ties should keep first-seen order, got %v", freqs)
	}
}

func TestFrequenciesSince(t *testing.T) {
	hs, ls, is := setupHistoryTestDB(t)
	now := time.Now()

	seedPurchases(t, ls, is, now.AddDate(0, 0, -60), "Arroz")
	seedPurchases(t, ls, is, now.AddDate(0, 0, -2), "Feijão")

	freqs, err := hs.Frequencies(context.Background(), now.AddDate(0, 0, -30))
	if err != nil {
		t.Fatalf("frequencies: %v", err)
	}
	if len(freqs) != 1 || freqs[0].Product != "Feijão" {
		t.Errorf("recent = %v, want [Feijão]", freqs)
	}
}

func TestCooccurrences(t *testing.T) {
	hs, ls, is := setupHistoryTestDB(t)
	now := time.Now()

	seedPurchases(t, ls, is, now, "Pão", "Manteiga", "Café")
	seedPurchases(t, ls, is, now, "Manteiga", "Pão")
	seedPurchases(t, ls, is, now, "Pão", "Pão")

	pairs, err := hs.Cooccurrences(context.Background())
	if err != nil {
		t.Fatalf("cooccurrences: %v", err)
	}
	if len(pairs) != 3 {
		t.Fatalf("expected 3 pairs, got %d: %v", len(pairs), pairs)
	}

	top := pairs[0]
	if top.Count != 2 {
		t.Errorf("top count = %d, want 2", top.Count)
	}
	got := map[string]bool{top.ProductA: true, top.ProductB: true}
	if !got["Pão"] || !got["Manteiga"] {
		t.Errorf("top pair = %s/%s, want Pão/Manteiga", top.ProductA, top.ProductB)
	}
	for _, p := range pairs[1:] {
		if p.Count != 1 {
			t.Errorf("pair %s/%s count = %d, want 1", p.ProductA, p.ProductB, p.Count)
		}
	}
}
