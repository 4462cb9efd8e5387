// Package listbuilder assembles new shopping lists and derives their default
// names from the list type and creation date.
package listbuilder

import (
	"fmt"
	"strings"
	"time"

	"github.com/dukerupert/shoplist/internal/model"
	"github.com/shopspring/decimal"
)

var monthNames = [...]string{
	"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}

// MonthName returns the Portuguese month name, capitalized.
func MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return monthNames[m-1]
}

// DefaultName derives a list name and description from its type and date.
// Weeks follow ISO 8601 numbering.
func DefaultName(t model.ListType, date time.Time) (name, description string) {
	switch t {
	case model.ListTypeWeekly:
		year, week := date.ISOWeek()
		return fmt.Sprintf("Compras da Semana %d", week),
			fmt.Sprintf("Lista semanal - semana %d de %d", week, year)
	case model.ListTypeMonthly:
		month := MonthName(date.Month())
		return fmt.Sprintf("Compras de %s %d", month, date.Year()),
			fmt.Sprintf("Lista mensal de %s de %d", strings.ToLower(month), date.Year())
	case model.ListTypeEmergency:
		return "Compras de Emergência",
			"Lista de emergência criada em " + date.Format("02/01/2006")
	case model.ListTypeRecurrent:
		return "Lista Recorrente",
			"Itens comprados com frequência"
	default:
		return "Lista de Compras",
			"Lista criada em " + date.Format("02/01/2006")
	}
}

// Draft is a list ready to persist, with the items to attach to it.
type Draft struct {
	List  model.ShoppingList
	Items []model.ListItem
}

// Builder accumulates a list and its items. The estimated total tracks the
// sum of unit price × quantity over every item added.
type Builder struct {
	listType    model.ListType
	name        string
	description string
	createdAt   time.Time
	coverPhoto  string
	items       []model.ListItem
	total       decimal.Decimal
}

func New(t model.ListType) *Builder {
	if !t.Valid() {
		t = model.ListTypeRegular
	}
	return &Builder{listType: t, total: decimal.Zero}
}

func (b *Builder) Name(name string) *Builder {
	b.name = name
	return b
}

func (b *Builder) Description(description string) *Builder {
	b.description = description
	return b
}

func (b *Builder) CreatedAt(at time.Time) *Builder {
	b.createdAt = at
	return b
}

func (b *Builder) CoverPhoto(ref string) *Builder {
	b.coverPhoto = ref
	return b
}

// AddItem appends an item. A name already in the draft (ignoring case and
// surrounding space) adds to that item's quantity at its existing price.
func (b *Builder) AddItem(name string, quantity int, unit string, unitPrice decimal.Decimal) *Builder {
	key := strings.ToLower(strings.TrimSpace(name))
	for i := range b.items {
		if strings.ToLower(strings.TrimSpace(b.items[i].Name)) == key {
			b.items[i].Quantity += quantity
			b.total = b.total.Add(b.items[i].UnitPrice.Mul(decimal.NewFromInt(int64(quantity))))
			return b
		}
	}
	item := model.ListItem{Name: name, Quantity: quantity, Unit: unit, UnitPrice: unitPrice}
	b.items = append(b.items, item)
	b.total = b.total.Add(item.Total())
	return b
}

// EstimatedTotal is the running total of the items added so far.
func (b *Builder) EstimatedTotal() decimal.Decimal {
	return b.total
}

// Build returns the draft. A blank name or description falls back to
// DefaultName for the creation date, which defaults to now.
func (b *Builder) Build() Draft {
	at := b.createdAt
	if at.IsZero() {
		at = time.Now()
	}
	name, description := b.name, b.description
	if strings.TrimSpace(name) == "" || strings.TrimSpace(description) == "" {
		defName, defDesc := DefaultName(b.listType, at)
		if strings.TrimSpace(name) == "" {
			name = defName
		}
		if strings.TrimSpace(description) == "" {
			description = defDesc
		}
	}

	items := make([]model.ListItem, len(b.items))
	copy(items, b.items)
	for i := range items {
		items[i].CreatedAt = at
	}

	return Draft{
		List: model.ShoppingList{
			Name:           name,
			Description:    description,
			Type:           b.listType,
			CreatedAt:      at,
			EstimatedTotal: b.total,
			CoverPhoto:     b.coverPhoto,
			Status:         model.ListStatusActive,
		},
		Items: items,
	}
}

// FromType builds an empty list of the given type.
func FromType(t model.ListType, name, description string, at time.Time) model.ShoppingList {
	return New(t).Name(name).Description(description).CreatedAt(at).Build().List
}
