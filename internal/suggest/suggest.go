// Package suggest ranks products a user may want to add to a list, based on
// what has been bought before.
package suggest

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/dukerupert/shoplist/internal/clock"
	"github.com/dukerupert/shoplist/internal/model"
	"golang.org/x/sync/errgroup"
)

const (
	frequencyTop  = 10
	recencyTop    = 5
	recencyWindow = 30 * 24 * time.Hour
)

type History interface {
	Cooccurrences(ctx context.Context) ([]model.Cooccurrence, error)
	Frequencies(ctx context.Context, since time.Time) ([]model.ProductFrequency, error)
}

type Catalog interface {
	GetByName(ctx context.Context, name string) (*model.MarketProduct, error)
}

type Engine struct {
	history History
	catalog Catalog
	clock   clock.Clock
	logger  *slog.Logger
}

// New builds an engine. catalog may be nil, in which case suggestions are
// not enriched with catalog products.
func New(history History, catalog Catalog, clk clock.Clock, logger *slog.Logger) *Engine {
	if clk == nil {
		clk = clock.Real{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		history: history,
		catalog: catalog,
		clock:   clk,
		logger:  logger.With("component", "suggest"),
	}
}

// Suggest returns at most limit suggestions for a list holding current,
// highest confidence first. It never fails: errors are logged and produce
// an empty result.
func (e *Engine) Suggest(ctx context.Context, current []model.ListItem, limit int) (out []model.Suggestion) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("suggestion panicked", "panic", r)
			out = []model.Suggestion{}
		}
	}()

	if limit <= 0 {
		return []model.Suggestion{}
	}
	got, err := e.suggest(ctx, current, limit)
	if err != nil {
		e.logger.Warn("suggestions unavailable", "error", err)
		return []model.Suggestion{}
	}
	return got
}

func (e *Engine) suggest(ctx context.Context, current []model.ListItem, limit int) ([]model.Suggestion, error) {
	inList := make(map[string]bool, len(current))
	for _, it := range current {
		inList[normalize(it.Name)] = true
	}

	var pairs []model.Cooccurrence
	var frequent, recent []model.ProductFrequency

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		pairs, err = e.history.Cooccurrences(gctx)
		if err != nil {
			return fmt.Errorf("load cooccurrences: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		frequent, err = e.history.Frequencies(gctx, time.Time{})
		if err != nil {
			return fmt.Errorf("load frequencies: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		recent, err = e.history.Frequencies(gctx, e.clock.Now().Add(-recencyWindow))
		if err != nil {
			return fmt.Errorf("load recent purchases: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var pool []model.Suggestion
	pool = append(pool, fromCooccurrence(pairs, inList)...)
	pool = append(pool, fromFrequency(frequent, inList)...)
	pool = append(pool, fromRecency(recent, inList)...)

	ranked := dedupe(pool)
	slices.SortStableFunc(ranked, func(a, b model.Suggestion) int {
		switch {
		case a.Confidence > b.Confidence:
			return -1
		case a.Confidence < b.Confidence:
			return 1
		}
		return 0
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	if e.catalog != nil {
		for i := range ranked {
			p, err := e.catalog.GetByName(ctx, ranked[i].Product)
			if err != nil {
				return nil, fmt.Errorf("catalog lookup: %w", err)
			}
			ranked[i].Catalog = p
		}
	}
	return ranked, nil
}

// fromCooccurrence suggests the missing side of every pair with exactly one
// side already in the list.
func fromCooccurrence(pairs []model.Cooccurrence, inList map[string]bool) []model.Suggestion {
	var out []model.Suggestion
	for _, p := range pairs {
		hasA, hasB := inList[normalize(p.ProductA)], inList[normalize(p.ProductB)]
		if hasA == hasB {
			continue
		}
		have, missing := p.ProductA, p.ProductB
		if hasB {
			have, missing = p.ProductB, p.ProductA
		}
		out = append(out, model.Suggestion{
			Product:    missing,
			Reason:     "Costuma ser comprado com " + have,
			Confidence: math.Min(0.9, float64(p.Count)/10),
			Source:     model.SourceCooccurrence,
		})
	}
	return out
}

func fromFrequency(freqs []model.ProductFrequency, inList map[string]bool) []model.Suggestion {
	var out []model.Suggestion
	for _, f := range notInList(freqs, inList, frequencyTop) {
		out = append(out, model.Suggestion{
			Product:    f.Product,
			Reason:     fmt.Sprintf("Comprado %d vezes", f.Count),
			Confidence: math.Min(0.8, float64(f.Count)/20),
			Source:     model.SourceFrequency,
		})
	}
	return out
}

func fromRecency(freqs []model.ProductFrequency, inList map[string]bool) []model.Suggestion {
	var out []model.Suggestion
	for _, f := range notInList(freqs, inList, recencyTop) {
		out = append(out, model.Suggestion{
			Product:    f.Product,
			Reason:     "Comprado nos últimos 30 dias",
			Confidence: math.Min(0.7, float64(f.Count)/5),
			Source:     model.SourceRecency,
		})
	}
	return out
}

// notInList keeps the first n products that are not already in the list.
// freqs must be ordered most purchased first.
func notInList(freqs []model.ProductFrequency, inList map[string]bool, n int) []model.ProductFrequency {
	var out []model.ProductFrequency
	for _, f := range freqs {
		if len(out) == n {
			break
		}
		if inList[normalize(f.Product)] {
			continue
		}
		out = append(out, f)
	}
	return out
}

// dedupe drops repeated products, keeping the first occurrence.
func dedupe(pool []model.Suggestion) []model.Suggestion {
	seen := make(map[string]bool, len(pool))
	out := make([]model.Suggestion, 0, len(pool))
	for _, s := range pool {
		key := normalize(s.Product)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
