package shopping

import (
	"context"
	"strings"
	"time"

	"github.com/dukerupert/shoplist/internal/listbuilder"
	"github.com/dukerupert/shoplist/internal/model"
	"github.com/dukerupert/shoplist/internal/result"
	"github.com/shopspring/decimal"
)

// ListDetail is a list together with its items.
type ListDetail struct {
	List       model.ShoppingList `json:"list"`
	Items      []model.ListItem   `json:"items"`
	ItemsTotal decimal.Decimal    `json:"items_total"`
	Pending    int                `json:"pending"`
}

// CreateList persists a draft produced by listbuilder, items included.
func (s *Service) CreateList(ctx context.Context, draft listbuilder.Draft) result.Result[model.ShoppingList] {
	return run(s, "Could not create the list", func() (model.ShoppingList, error) {
		return s.createDraft(ctx, draft)
	})
}

func (s *Service) createDraft(ctx context.Context, draft listbuilder.Draft) (model.ShoppingList, error) {
	if strings.TrimSpace(draft.List.Name) == "" {
		return model.ShoppingList{}, invalid("list name is required")
	}
	if draft.List.Type != "" && !draft.List.Type.Valid() {
		return model.ShoppingList{}, invalid("unknown list type %q", draft.List.Type)
	}
	for _, it := range draft.Items {
		if err := validateItem(it.Name, it.Quantity, it.UnitPrice); err != nil {
			return model.ShoppingList{}, err
		}
	}
	if draft.List.CreatedAt.IsZero() {
		draft.List.CreatedAt = s.clock.Now()
	}

	var created *model.ShoppingList
	var err error
	if len(draft.Items) == 0 {
		created, err = s.lists.Create(ctx, draft.List)
	} else {
		created, err = s.lists.CreateWithItems(ctx, draft.List, draft.Items)
	}
	if err != nil {
		return model.ShoppingList{}, err
	}
	s.publish(model.EntityShoppingList, "created", created.ID)
	return *created, nil
}

// CreateListOfType creates an empty list. Blank name or description fall
// back to the defaults for the type and today's date.
func (s *Service) CreateListOfType(ctx context.Context, t model.ListType, name, description string) result.Result[model.ShoppingList] {
	return run(s, "Could not create the list", func() (model.ShoppingList, error) {
		if !t.Valid() {
			return model.ShoppingList{}, invalid("unknown list type %q", t)
		}
		l := listbuilder.FromType(t, name, description, s.clock.Now())
		return s.createDraft(ctx, listbuilder.Draft{List: l})
	})
}

func (s *Service) UpdateList(ctx context.Context, id int64, name, description string) result.Result[model.ShoppingList] {
	return run(s, "Could not update the list", func() (model.ShoppingList, error) {
		if strings.TrimSpace(name) == "" {
			return model.ShoppingList{}, invalid("list name is required")
		}
		if _, err := s.getList(ctx, id); err != nil {
			return model.ShoppingList{}, err
		}
		l, err := s.lists.Update(ctx, id, strings.TrimSpace(name), description)
		if err != nil {
			return model.ShoppingList{}, err
		}
		s.publish(model.EntityShoppingList, "updated", id)
		return *l, nil
	})
}

func (s *Service) SetCoverPhoto(ctx context.Context, id int64, ref string) result.Result[model.ShoppingList] {
	return run(s, "Could not update the cover photo", func() (model.ShoppingList, error) {
		if _, err := s.getList(ctx, id); err != nil {
			return model.ShoppingList{}, err
		}
		l, err := s.lists.UpdateCoverPhoto(ctx, id, ref)
		if err != nil {
			return model.ShoppingList{}, err
		}
		s.publish(model.EntityShoppingList, "updated", id)
		return *l, nil
	})
}

// DeleteList removes a list. Its items go with it through the foreign key cascade.
func (s *Service) DeleteList(ctx context.Context, id int64) result.Result[struct{}] {
	return run(s, "Could not delete the list", func() (struct{}, error) {
		if _, err := s.getList(ctx, id); err != nil {
			return struct{}{}, err
		}
		if err := s.lists.Delete(ctx, id); err != nil {
			return struct{}{}, err
		}
		s.publish(model.EntityShoppingList, "deleted", id)
		return struct{}{}, nil
	})
}

func (s *Service) GetList(ctx context.Context, id int64) result.Result[model.ShoppingList] {
	return run(s, "Could not load the list", func() (model.ShoppingList, error) {
		l, err := s.getList(ctx, id)
		if err != nil {
			return model.ShoppingList{}, err
		}
		return *l, nil
	})
}

func (s *Service) GetListDetail(ctx context.Context, id int64) result.Result[ListDetail] {
	return run(s, "Could not load the list", func() (ListDetail, error) {
		l, err := s.getList(ctx, id)
		if err != nil {
			return ListDetail{}, err
		}
		items, err := s.items.ListByList(ctx, id)
		if err != nil {
			return ListDetail{}, err
		}
		pending := 0
		for _, it := range items {
			if !it.Purchased {
				pending++
			}
		}
		return ListDetail{
			List:       *l,
			Items:      nonNil(items),
			ItemsTotal: model.ItemsTotal(items),
			Pending:    pending,
		}, nil
	})
}

func (s *Service) AllLists(ctx context.Context) result.Result[[]model.ShoppingList] {
	return run(s, "Could not load lists", func() ([]model.ShoppingList, error) {
		return s.snapshot(ctx, "")
	})
}

func (s *Service) ActiveLists(ctx context.Context) result.Result[[]model.ShoppingList] {
	return run(s, "Could not load lists", func() ([]model.ShoppingList, error) {
		return s.snapshot(ctx, model.ListStatusActive)
	})
}

func (s *Service) CompletedLists(ctx context.Context) result.Result[[]model.ShoppingList] {
	return run(s, "Could not load lists", func() ([]model.ShoppingList, error) {
		return s.snapshot(ctx, model.ListStatusCompleted)
	})
}

// ListsBetween returns lists created in [from, to), oldest first.
func (s *Service) ListsBetween(ctx context.Context, from, to time.Time) result.Result[[]model.ShoppingList] {
	return run(s, "Could not load lists", func() ([]model.ShoppingList, error) {
		if !to.After(from) {
			return nil, invalid("range end must be after its start")
		}
		lists, err := s.lists.ListCreatedBetween(ctx, from, to)
		return nonNil(lists), err
	})
}

// UpdateStatus moves a list between active and completed.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status model.ListStatus) result.Result[model.ShoppingList] {
	return run(s, "Could not update the list status", func() (model.ShoppingList, error) {
		if !status.Valid() {
			return model.ShoppingList{}, invalid("unknown status %q", status)
		}
		if _, err := s.getList(ctx, id); err != nil {
			return model.ShoppingList{}, err
		}
		l, err := s.lists.UpdateStatus(ctx, id, status)
		if err != nil {
			return model.ShoppingList{}, err
		}
		s.publish(model.EntityShoppingList, "updated", id)
		return *l, nil
	})
}

func (s *Service) getList(ctx context.Context, id int64) (*model.ShoppingList, error) {
	l, err := s.lists.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, notFound("list", id)
	}
	return l, nil
}

// snapshot reads every list, or only those with the given status when it is set.
func (s *Service) snapshot(ctx context.Context, status model.ListStatus) ([]model.ShoppingList, error) {
	var lists []model.ShoppingList
	var err error
	if status == "" {
		lists, err = s.lists.List(ctx)
	} else {
		lists, err = s.lists.ListByStatus(ctx, status)
	}
	return nonNil(lists), err
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
