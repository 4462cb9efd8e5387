package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type ListStatus string

const (
	ListStatusActive    ListStatus = "active"
	ListStatusCompleted ListStatus = "completed"
)

func (s ListStatus) Valid() bool {
	return s == ListStatusActive || s == ListStatusCompleted
}

// ListType tags how a list was created. It only drives default naming.
type ListType string

const (
	ListTypeRegular   ListType = "regular"
	ListTypeWeekly    ListType = "weekly"
	ListTypeMonthly   ListType = "monthly"
	ListTypeEmergency ListType = "emergency"
	ListTypeRecurrent ListType = "recurrent"
)

func (t ListType) Valid() bool {
	switch t {
	case ListTypeRegular, ListTypeWeekly, ListTypeMonthly, ListTypeEmergency, ListTypeRecurrent:
		return true
	}
	return false
}

type ShoppingList struct {
	ID             int64           `json:"id"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	Type           ListType        `json:"type"`
	CreatedAt      time.Time       `json:"created_at"`
	EstimatedTotal decimal.Decimal `json:"estimated_total"`
	CoverPhoto     string          `json:"cover_photo,omitempty"`
	Status         ListStatus      `json:"status"`
}

type ListItem struct {
	ID          int64           `json:"id"`
	ListID      int64           `json:"list_id"`
	Name        string          `json:"name"`
	Quantity    int             `json:"quantity"`
	Unit        string          `json:"unit"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Purchased   bool            `json:"purchased"`
	PurchasedAt *time.Time      `json:"purchased_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Total is quantity × unit price.
func (i ListItem) Total() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ItemsTotal sums Total over items.
func ItemsTotal(items []ListItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.Total())
	}
	return sum
}

type MarketProduct struct {
	ID             int64           `json:"id"`
	Name           string          `json:"name"`
	Unit           string          `json:"unit"`
	ReferencePrice decimal.Decimal `json:"reference_price"`
}
