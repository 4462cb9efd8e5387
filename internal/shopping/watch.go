package shopping

import (
	"context"

	"github.com/dukerupert/shoplist/internal/model"
	"github.com/dukerupert/shoplist/internal/result"
)

// WatchLists streams list snapshots: Loading first, then the current lists,
// then a fresh snapshot after every list or item change. An empty status
// watches every list. The channel closes when ctx is done.
func (s *Service) WatchLists(ctx context.Context, status model.ListStatus) <-chan result.Result[[]model.ShoppingList] {
	out := make(chan result.Result[[]model.ShoppingList], 1)
	changes, unsubscribe := s.feed.Subscribe()

	go func() {
		defer close(out)
		defer unsubscribe()

		send := func(r result.Result[[]model.ShoppingList]) bool {
			select {
			case out <- r:
				return true
			case <-ctx.Done():
				return false
			}
		}
		load := func() result.Result[[]model.ShoppingList] {
			return run(s, "Could not load lists", func() ([]model.ShoppingList, error) {
				return s.snapshot(ctx, status)
			})
		}

		if !send(result.Loading[[]model.ShoppingList]()) {
			return
		}
		if !send(load()) {
			return
		}

		for {
			select {
			case <-ctx.Done():
				return
			case c, ok := <-changes:
				if !ok {
					return
				}
				if !affectsLists(c) {
					continue
				}
				// Coalesce a burst of writes into one snapshot.
				drain(changes)
				if !send(load()) {
					return
				}
			}
		}
	}()

	return out
}

func affectsLists(c model.Change) bool {
	return c.Entity == model.EntityShoppingList || c.Entity == model.EntityListItem
}

func drain(changes <-chan model.Change) {
	for {
		select {
		case _, ok := <-changes:
			if !ok {
				return
			}
		default:
			return
		}
	}
}
