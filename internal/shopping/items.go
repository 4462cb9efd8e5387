package shopping

import (
	"context"
	"strings"

	"github.com/dukerupert/shoplist/internal/model"
	"github.com/dukerupert/shoplist/internal/result"
	"github.com/dukerupert/shoplist/internal/sorting"
	"github.com/shopspring/decimal"
)

type ItemFilter string

const (
	FilterAll       ItemFilter = ""
	FilterPending   ItemFilter = "pending"
	FilterPurchased ItemFilter = "purchased"
)

func (f ItemFilter) Valid() bool {
	return f == FilterAll || f == FilterPending || f == FilterPurchased
}

// AddItem adds an item to its list. When the list already has an item of
// the same name, the quantities are summed into that row instead.
func (s *Service) AddItem(ctx context.Context, item model.ListItem) result.Result[model.ListItem] {
	return run(s, "Could not add the item", func() (model.ListItem, error) {
		return s.addItem(ctx, item)
	})
}

func (s *Service) addItem(ctx context.Context, item model.ListItem) (model.ListItem, error) {
	item.Name = strings.TrimSpace(item.Name)
	if err := validateItem(item.Name, item.Quantity, item.UnitPrice); err != nil {
		return model.ListItem{}, err
	}
	if _, err := s.getList(ctx, item.ListID); err != nil {
		return model.ListItem{}, err
	}
	item.ID = 0
	item.Purchased = false
	item.PurchasedAt = nil
	item.CreatedAt = s.clock.Now()

	saved, err := s.items.AddOrIncrement(ctx, item)
	if err != nil {
		return model.ListItem{}, err
	}
	if err := s.refreshTotal(ctx, item.ListID); err != nil {
		return model.ListItem{}, err
	}
	s.publish(model.EntityListItem, "created", saved.ID)
	return *saved, nil
}

// AddProduct adds quantity units of a catalog product, priced at its
// reference price.
func (s *Service) AddProduct(ctx context.Context, listID, productID int64, quantity int) result.Result[model.ListItem] {
	return run(s, "Could not add the product", func() (model.ListItem, error) {
		p, err := s.catalog.GetByID(ctx, productID)
		if err != nil {
			return model.ListItem{}, err
		}
		if p == nil {
			return model.ListItem{}, notFound("product", productID)
		}
		return s.addItem(ctx, model.ListItem{
			ListID:    listID,
			Name:      p.Name,
			Quantity:  quantity,
			Unit:      p.Unit,
			UnitPrice: p.ReferencePrice,
		})
	})
}

// UpdateItem replaces an item's fields. Renaming it to another item's name
// in the same list is rejected.
func (s *Service) UpdateItem(ctx context.Context, id int64, name string, quantity int, unit string, unitPrice decimal.Decimal) result.Result[model.ListItem] {
	return run(s, "Could not update the item", func() (model.ListItem, error) {
		name = strings.TrimSpace(name)
		if err := validateItem(name, quantity, unitPrice); err != nil {
			return model.ListItem{}, err
		}
		existing, err := s.getItem(ctx, id)
		if err != nil {
			return model.ListItem{}, err
		}
		clash, err := s.items.FindByName(ctx, existing.ListID, name)
		if err != nil {
			return model.ListItem{}, err
		}
		if clash != nil && clash.ID != id {
			return model.ListItem{}, invalid("list already has an item named %q", clash.Name)
		}
		updated, err := s.items.Update(ctx, id, name, quantity, unit, unitPrice)
		if err != nil {
			return model.ListItem{}, err
		}
		if err := s.refreshTotal(ctx, existing.ListID); err != nil {
			return model.ListItem{}, err
		}
		s.publish(model.EntityListItem, "updated", id)
		return *updated, nil
	})
}

func (s *Service) DeleteItem(ctx context.Context, id int64) result.Result[struct{}] {
	return run(s, "Could not delete the item", func() (struct{}, error) {
		existing, err := s.getItem(ctx, id)
		if err != nil {
			return struct{}{}, err
		}
		if err := s.items.Delete(ctx, id); err != nil {
			return struct{}{}, err
		}
		if err := s.refreshTotal(ctx, existing.ListID); err != nil {
			return struct{}{}, err
		}
		s.publish(model.EntityListItem, "deleted", id)
		return struct{}{}, nil
	})
}

// TogglePurchased flips an item between bought and still to buy.
func (s *Service) TogglePurchased(ctx context.Context, id int64) result.Result[model.ListItem] {
	return run(s, "Could not update the item", func() (model.ListItem, error) {
		item, err := s.items.TogglePurchased(ctx, id, s.clock.Now())
		if err != nil {
			return model.ListItem{}, err
		}
		if item == nil {
			return model.ListItem{}, notFound("item", id)
		}
		s.publish(model.EntityListItem, "updated", id)
		return *item, nil
	})
}

// ListItems returns a list's items, optionally filtered by purchase state and
// ordered by strategy. A nil strategy keeps insertion order.
func (s *Service) ListItems(ctx context.Context, listID int64, filter ItemFilter, strategy sorting.Strategy) result.Result[[]model.ListItem] {
	return run(s, "Could not load the items", func() ([]model.ListItem, error) {
		if !filter.Valid() {
			return nil, invalid("unknown filter %q", filter)
		}
		if _, err := s.getList(ctx, listID); err != nil {
			return nil, err
		}

		var items []model.ListItem
		var err error
		switch filter {
		case FilterPending:
			items, err = s.items.ListByPurchased(ctx, listID, false)
		case FilterPurchased:
			items, err = s.items.ListByPurchased(ctx, listID, true)
		default:
			items, err = s.items.ListByList(ctx, listID)
		}
		if err != nil {
			return nil, err
		}
		return nonNil(sorting.Sorter{Strategy: strategy}.Sort(items)), nil
	})
}

// ClearPurchased removes every purchased item from a list and returns how
// many were removed.
func (s *Service) ClearPurchased(ctx context.Context, listID int64) result.Result[int64] {
	return run(s, "Could not clear purchased items", func() (int64, error) {
		if _, err := s.getList(ctx, listID); err != nil {
			return 0, err
		}
		n, err := s.items.ClearPurchased(ctx, listID)
		if err != nil {
			return 0, err
		}
		if err := s.refreshTotal(ctx, listID); err != nil {
			return 0, err
		}
		s.publish(model.EntityListItem, "cleared", listID)
		return n, nil
	})
}

// Suggestions ranks products to add to a list. It never fails on a missing
// suggester; the result is simply empty.
func (s *Service) Suggestions(ctx context.Context, listID int64, limit int) result.Result[[]model.Suggestion] {
	return run(s, "Could not load suggestions", func() ([]model.Suggestion, error) {
		if _, err := s.getList(ctx, listID); err != nil {
			return nil, err
		}
		if s.suggester == nil || limit <= 0 {
			return []model.Suggestion{}, nil
		}
		items, err := s.items.ListByList(ctx, listID)
		if err != nil {
			return nil, err
		}
		return nonNil(s.suggester.Suggest(ctx, items, limit)), nil
	})
}

func (s *Service) getItem(ctx context.Context, id int64) (*model.ListItem, error) {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, notFound("item", id)
	}
	return item, nil
}

func (s *Service) refreshTotal(ctx context.Context, listID int64) error {
	total, err := s.itemsTotal(ctx, listID)
	if err != nil {
		return err
	}
	return s.lists.UpdateEstimatedTotal(ctx, listID, total)
}
