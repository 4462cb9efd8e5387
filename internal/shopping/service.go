// Package shopping implements the shopping list use-cases. Every exported
// operation returns a result.Result: repository errors and panics are caught
// at the operation boundary and never reach the caller as bare errors.
package shopping

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dukerupert/shoplist/internal/clock"
	"github.com/dukerupert/shoplist/internal/model"
	"github.com/dukerupert/shoplist/internal/result"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound = errors.New("not found")
	ErrInvalid  = errors.New("invalid input")
)

type ListRepository interface {
	Create(ctx context.Context, l model.ShoppingList) (*model.ShoppingList, error)
	CreateWithItems(ctx context.Context, l model.ShoppingList, items []model.ListItem) (*model.ShoppingList, error)
	GetByID(ctx context.Context, id int64) (*model.ShoppingList, error)
	List(ctx context.Context) ([]model.ShoppingList, error)
	ListByStatus(ctx context.Context, status model.ListStatus) ([]model.ShoppingList, error)
	ListCreatedBetween(ctx context.Context, from, to time.Time) ([]model.ShoppingList, error)
	Update(ctx context.Context, id int64, name, description string) (*model.ShoppingList, error)
	UpdateStatus(ctx context.Context, id int64, status model.ListStatus) (*model.ShoppingList, error)
	UpdateEstimatedTotal(ctx context.Context, id int64, total decimal.Decimal) error
	UpdateCoverPhoto(ctx context.Context, id int64, ref string) (*model.ShoppingList, error)
	Delete(ctx context.Context, id int64) error
}

type ItemRepository interface {
	GetByID(ctx context.Context, id int64) (*model.ListItem, error)
	FindByName(ctx context.Context, listID int64, name string) (*model.ListItem, error)
	AddOrIncrement(ctx context.Context, item model.ListItem) (*model.ListItem, error)
	ListByList(ctx context.Context, listID int64) ([]model.ListItem, error)
	ListByPurchased(ctx context.Context, listID int64, purchased bool) ([]model.ListItem, error)
	Update(ctx context.Context, id int64, name string, quantity int, unit string, unitPrice decimal.Decimal) (*model.ListItem, error)
	TogglePurchased(ctx context.Context, id int64, at time.Time) (*model.ListItem, error)
	Delete(ctx context.Context, id int64) error
	ClearPurchased(ctx context.Context, listID int64) (int64, error)
	CountPending(ctx context.Context, listID int64) (int, error)
}

type CatalogRepository interface {
	SeedIfEmpty(ctx context.Context, products []model.MarketProduct) (int, error)
	Search(ctx context.Context, query string, limit int) ([]model.MarketProduct, error)
	GetByID(ctx context.Context, id int64) (*model.MarketProduct, error)
	GetByName(ctx context.Context, name string) (*model.MarketProduct, error)
}

// ChangeFeed carries write notifications to live subscribers.
type ChangeFeed interface {
	Publish(change model.Change)
	Subscribe() (<-chan model.Change, func())
}

// Suggester ranks products the user may want to add to a list.
type Suggester interface {
	Suggest(ctx context.Context, current []model.ListItem, limit int) []model.Suggestion
}

type Options struct {
	Clock     clock.Clock
	Location  *time.Location // calendar fields for monthly aggregation; defaults to time.Local
	Feed      ChangeFeed
	Suggester Suggester
	Logger    *slog.Logger
}

type Service struct {
	lists     ListRepository
	items     ItemRepository
	catalog   CatalogRepository
	clock     clock.Clock
	loc       *time.Location
	feed      ChangeFeed
	suggester Suggester
	logger    *slog.Logger
}

func NewService(lists ListRepository, items ItemRepository, catalog CatalogRepository, opts Options) *Service {
	s := &Service{
		lists:     lists,
		items:     items,
		catalog:   catalog,
		clock:     opts.Clock,
		loc:       opts.Location,
		feed:      opts.Feed,
		suggester: opts.Suggester,
		logger:    opts.Logger,
	}
	if s.clock == nil {
		s.clock = clock.Real{}
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	if s.feed == nil {
		s.feed = noopFeed{}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With("component", "shopping")
	return s
}

// run executes fn and folds its outcome into a Result. A panic inside fn
// becomes an Error result like any other failure.
func run[T any](s *Service, message string, fn func() (T, error)) (res result.Result[T]) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("use-case panicked", "op", message, "panic", r)
			res = result.Failure[T](message, fmt.Errorf("panic: %v", r))
		}
	}()

	v, err := fn()
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalid) {
			s.logger.Debug("use-case rejected", "op", message, "error", err)
		} else {
			s.logger.Error("use-case failed", "op", message, "error", err)
		}
		return result.Failure[T](message, err)
	}
	return result.Success(v)
}

func (s *Service) publish(entity, action string, id int64) {
	s.feed.Publish(model.Change{Entity: entity, Action: action, ID: id})
}

func notFound(what string, id int64) error {
	return fmt.Errorf("%s %d: %w", what, id, ErrNotFound)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvalid)
}

func validateItem(name string, quantity int, unitPrice decimal.Decimal) error {
	if strings.TrimSpace(name) == "" {
		return invalid("item name is required")
	}
	if quantity < 0 {
		return invalid("quantity must not be negative")
	}
	if unitPrice.IsNegative() {
		return invalid("unit price must not be negative")
	}
	return nil
}

type noopFeed struct{}

func (noopFeed) Publish(model.Change) {}

func (noopFeed) Subscribe() (<-chan model.Change, func()) {
	return nil, func() {}
}
