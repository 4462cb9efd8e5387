package model

const (
	EntityShoppingList = "shopping_list"
	EntityListItem     = "list_item"
	EntityProduct      = "market_product"
)

// Change describes a write to the store that subscribers may want to react to.
type Change struct {
	Entity string `json:"entity"`
	Action string `json:"action"`
	ID     int64  `json:"id,omitempty"`
}
