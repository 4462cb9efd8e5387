package shopping

import (
	"context"
	"testing"
	"time"

	"github.com/dukerupert/shoplist/internal/model"
	"github.com/dukerupert/shoplist/internal/result"
)

func next(t *testing.T, ch <-chan result.Result[[]model.ShoppingList]) result.Result[[]model.ShoppingList] {
	t.Helper()
	select {
	case r, ok := <-ch:
		if !ok {
			t.Fatal("channel closed")
		}
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for snapshot")
	}
	return result.Result[[]model.ShoppingList]{}
}

func TestWatchLists(t *testing.T) {
	env := setupService(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	createList(t, env, "First", env.clock.Now())
	ch := env.svc.WatchLists(ctx, "")

	if r := next(t, ch); !r.IsLoading() {
		t.Fatalf("first emission = %s, want loading", r.Status())
	}
	initial := next(t, ch)
	if lists := mustGet(t, initial); len(lists) != 1 {
		t.Fatalf("initial snapshot = %d lists, want 1", len(lists))
	}

	createList(t, env, "Second", env.clock.Now().Add(time.Minute))
	if lists := mustGet(t, next(t, ch)); len(lists) != 2 || lists[0].Name != "Second" {
		t.Fatalf("snapshot after create = %v", lists)
	}

	cancel()
	select {
	case _, ok := <-ch:
		for ok {
			_, ok = <-ch
		}
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after cancel")
	}

	deadline := time.Now().Add(2 * time.Second)
	for env.hub.WatcherCount() != 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if env.hub.WatcherCount() != 0 {
		t.Errorf("watchers = %d, want 0 after cancel", env.hub.WatcherCount())
	}
}

func TestWatchListsByStatus(t *testing.T) {
	env := setupService(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := createList(t, env, "Feira", env.clock.Now())
	ch := env.svc.WatchLists(ctx, model.ListStatusCompleted)
	next(t, ch) // loading

	if lists := mustGet(t, next(t, ch)); len(lists) != 0 {
		t.Fatalf("completed snapshot = %v, want empty", lists)
	}

	mustGet(t, env.svc.UpdateStatus(context.Background(), l.ID, model.ListStatusCompleted))
	if lists := mustGet(t, next(t, ch)); len(lists) != 1 || lists[0].ID != l.ID {
		t.Fatalf("completed snapshot = %v, want [Feira]", lists)
	}
}
