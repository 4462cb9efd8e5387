// Package sorting orders list items for display. Every strategy returns a
// new slice and leaves its input untouched.
package sorting

import (
	"cmp"
	"slices"
	"strings"

	"github.com/dukerupert/shoplist/internal/grocery"
	"github.com/dukerupert/shoplist/internal/model"
)

type Strategy interface {
	Name() string
	Sort(items []model.ListItem) []model.ListItem
}

// Sorter applies whichever strategy it currently holds.
type Sorter struct {
	Strategy Strategy
}

func (s Sorter) Sort(items []model.ListItem) []model.ListItem {
	if s.Strategy == nil {
		return slices.Clone(items)
	}
	return s.Strategy.Sort(items)
}

type funcStrategy struct {
	name string
	cmp  func(a, b model.ListItem) int
}

func (f funcStrategy) Name() string { return f.name }

func (f funcStrategy) Sort(items []model.ListItem) []model.ListItem {
	out := slices.Clone(items)
	slices.SortStableFunc(out, f.cmp)
	return out
}

func byName(a, b model.ListItem) int {
	return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
}

var (
	Alphabetical Strategy = funcStrategy{"alphabetical", byName}

	PriceAscending Strategy = funcStrategy{"price_asc", func(a, b model.ListItem) int {
		return a.UnitPrice.Cmp(b.UnitPrice)
	}}

	PriceDescending Strategy = funcStrategy{"price_desc", func(a, b model.ListItem) int {
		return b.UnitPrice.Cmp(a.UnitPrice)
	}}

	Quantity Strategy = funcStrategy{"quantity", func(a, b model.ListItem) int {
		return cmp.Compare(a.Quantity, b.Quantity)
	}}

	Total Strategy = funcStrategy{"total", func(a, b model.ListItem) int {
		return a.Total().Cmp(b.Total())
	}}

	// Status puts items still to buy first.
	Status Strategy = funcStrategy{"status", func(a, b model.ListItem) int {
		if a.Purchased != b.Purchased {
			if a.Purchased {
				return 1
			}
			return -1
		}
		return byName(a, b)
	}}

	// Category groups items in store-walk order, alphabetical within a section.
	Category Strategy = funcStrategy{"category", func(a, b model.ListItem) int {
		if c := cmp.Compare(grocery.Categorize(a.Name).Rank(), grocery.Categorize(b.Name).Rank()); c != 0 {
			return c
		}
		return byName(a, b)
	}}
)

var all = []Strategy{Alphabetical, PriceAscending, PriceDescending, Quantity, Total, Status, Category}

// All returns every built-in strategy.
func All() []Strategy {
	return slices.Clone(all)
}

// ByName resolves a strategy from its query-string name.
func ByName(name string) (Strategy, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, s := range all {
		if s.Name() == name {
			return s, true
		}
	}
	return nil, false
}
