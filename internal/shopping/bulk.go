package shopping

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/dukerupert/shoplist/internal/listbuilder"
	"github.com/dukerupert/shoplist/internal/model"
	"github.com/dukerupert/shoplist/internal/result"
	"github.com/shopspring/decimal"
)

const maxBulkLists = 52

// Template is a named starter set of products.
type Template struct {
	Name  string   `json:"name"`
	Items []string `json:"items"`
}

var templates = map[string][]string{
	"Básico do Mês": {"Arroz", "Feijão", "Açúcar", "Óleo", "Sal", "Macarrão", "Café"},
	"Café da Manhã": {"Pão", "Leite", "Café", "Manteiga", "Queijo"},
	"Churrasco":     {"Picanha", "Linguiça", "Carvão", "Pão de Alho", "Cerveja"},
	"Feira":         {"Banana", "Maçã", "Alface", "Tomate", "Cebola"},
	"Limpeza":       {"Detergente", "Sabão em Pó", "Desinfetante", "Esponja", "Papel Toalha"},
	"Higiene":       {"Sabonete", "Shampoo", "Creme Dental", "Papel Higiênico"},
}

// CreateWeeklyLists creates n lists one week apart starting at start, named
// "{base} - Semana 1" onwards.
func (s *Service) CreateWeeklyLists(ctx context.Context, base string, start time.Time, n int) result.Result[[]model.ShoppingList] {
	return run(s, "Could not create the weekly lists", func() ([]model.ShoppingList, error) {
		if err := validateBulk(base, n); err != nil {
			return nil, err
		}
		created := make([]model.ShoppingList, 0, n)
		cursor := start
		for i := 0; i < n; i++ {
			draft := listbuilder.New(model.ListTypeWeekly).
				Name(fmt.Sprintf("%s - Semana %d", strings.TrimSpace(base), i+1)).
				CreatedAt(cursor).
				Build()
			l, err := s.createDraft(ctx, draft)
			if err != nil {
				return nil, err
			}
			created = append(created, l)
			cursor = cursor.AddDate(0, 0, 7)
		}
		return created, nil
	})
}

// CreateMonthlyLists creates n lists one calendar month apart, named
// "{base} - {month}/{year}". A start on the 31st lands on the last day of
// shorter months.
func (s *Service) CreateMonthlyLists(ctx context.Context, base string, start time.Time, n int) result.Result[[]model.ShoppingList] {
	return run(s, "Could not create the monthly lists", func() ([]model.ShoppingList, error) {
		if err := validateBulk(base, n); err != nil {
			return nil, err
		}
		created := make([]model.ShoppingList, 0, n)
		cursor := start
		for i := 0; i < n; i++ {
			draft := listbuilder.New(model.ListTypeMonthly).
				Name(fmt.Sprintf("%s - %d/%d", strings.TrimSpace(base), int(cursor.Month()), cursor.Year())).
				CreatedAt(cursor).
				Build()
			l, err := s.createDraft(ctx, draft)
			if err != nil {
				return nil, err
			}
			created = append(created, l)
			cursor = addMonth(cursor)
		}
		return created, nil
	})
}

// addMonth moves t one calendar month forward, clamping the day to the end
// of the target month instead of overflowing into the next one.
func addMonth(t time.Time) time.Time {
	year, month, day := t.Date()
	first := time.Date(year, month+1, 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	last := first.AddDate(0, 1, -1).Day()
	if day > last {
		day = last
	}
	return first.AddDate(0, 0, day-1)
}

func validateBulk(base string, n int) error {
	if strings.TrimSpace(base) == "" {
		return invalid("base name is required")
	}
	if n < 1 || n > maxBulkLists {
		return invalid("count must be between 1 and %d", maxBulkLists)
	}
	return nil
}

// Templates lists the built-in templates by name.
func (s *Service) Templates() result.Result[[]Template] {
	return run(s, "Could not load templates", func() ([]Template, error) {
		out := make([]Template, 0, len(templates))
		for name, items := range templates {
			out = append(out, Template{Name: name, Items: slices.Clone(items)})
		}
		slices.SortFunc(out, func(a, b Template) int { return strings.Compare(a.Name, b.Name) })
		return out, nil
	})
}

// CreateFromTemplate creates a list holding one of each template product.
// Products found in the catalog carry its unit and reference price.
func (s *Service) CreateFromTemplate(ctx context.Context, template, name string) result.Result[model.ShoppingList] {
	return run(s, "Could not create the list from the template", func() (model.ShoppingList, error) {
		items, ok := templates[template]
		if !ok {
			return model.ShoppingList{}, fmt.Errorf("template %q: %w", template, ErrNotFound)
		}
		if strings.TrimSpace(name) == "" {
			name = template
		}

		b := listbuilder.New(model.ListTypeRegular).Name(name).CreatedAt(s.clock.Now())
		for _, product := range items {
			unit, price := "un", decimal.Zero
			p, err := s.catalog.GetByName(ctx, product)
			if err != nil {
				return model.ShoppingList{}, err
			}
			if p != nil {
				unit, price = p.Unit, p.ReferencePrice
			}
			b.AddItem(product, 1, unit, price)
		}
		return s.createDraft(ctx, b.Build())
	})
}

// DuplicateList copies a list and its items under a new creation date. The
// copies start unpurchased and the new list is active.
func (s *Service) DuplicateList(ctx context.Context, id int64) result.Result[model.ShoppingList] {
	return run(s, "Could not duplicate the list", func() (model.ShoppingList, error) {
		src, err := s.getList(ctx, id)
		if err != nil {
			return model.ShoppingList{}, err
		}
		items, err := s.items.ListByList(ctx, id)
		if err != nil {
			return model.ShoppingList{}, err
		}

		now := s.clock.Now()
		copies := make([]model.ListItem, len(items))
		for i, it := range items {
			copies[i] = model.ListItem{
				Name:      it.Name,
				Quantity:  it.Quantity,
				Unit:      it.Unit,
				UnitPrice: it.UnitPrice,
				CreatedAt: now,
			}
		}

		return s.createDraft(ctx, listbuilder.Draft{
			List: model.ShoppingList{
				Name:           src.Name + " (Cópia)",
				Description:    src.Description,
				Type:           src.Type,
				CreatedAt:      now,
				EstimatedTotal: src.EstimatedTotal,
				CoverPhoto:     src.CoverPhoto,
				Status:         model.ListStatusActive,
			},
			Items: copies,
		})
	})
}
