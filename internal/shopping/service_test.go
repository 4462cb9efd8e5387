package shopping

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/dukerupert/shoplist/internal/clock"
	"github.com/dukerupert/shoplist/internal/database"
	"github.com/dukerupert/shoplist/internal/listbuilder"
	"github.com/dukerupert/shoplist/internal/model"
	"github.com/dukerupert/shoplist/internal/result"
	"github.com/dukerupert/shoplist/internal/sorting"
	"github.com/dukerupert/shoplist/internal/store"
	"github.com/dukerupert/shoplist/internal/websocket"
	"github.com/shopspring/decimal"
)

type testEnv struct {
	svc   *Service
	clock *clock.Fake
	hub   *websocket.Hub
	items *store.ItemStore
}

func setupService(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	clk := clock.NewFake(time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC))
	hub := websocket.NewHub(slog.Default())
	items := store.NewItemStore(db)
	svc := NewService(store.NewListStore(db), items, store.NewProductStore(db), Options{
		Clock:    clk,
		Location: time.UTC,
		Feed:     hub,
	})
	return &testEnv{svc: svc, clock: clk, hub: hub, items: items}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func mustGet[T any](t *testing.T, r result.Result[T]) T {
	t.Helper()
	v, err := r.Get()
	if err != nil {
		t.Fatalf("unexpected failure: %v", err)
	}
	return v
}

func wantErr[T any](t *testing.T, r result.Result[T], target error) {
	t.Helper()
	if !r.IsError() {
		t.Fatalf("status = %s, want error", r.Status())
	}
	if !errors.Is(r.Err(), target) {
		t.Errorf("error = %v, want %v", r.Err(), target)
	}
	if r.Message() == "" {
		t.Error("expected a display message")
	}
}

func createList(t *testing.T, env *testEnv, name string, at time.Time) model.ShoppingList {
	t.Helper()
	return mustGet(t, env.svc.CreateList(context.Background(),
		listbuilder.New(model.ListTypeRegular).Name(name).CreatedAt(at).Build()))
}

func addItem(t *testing.T, env *testEnv, listID int64, name string, qty int, price string) model.ListItem {
	t.Helper()
	return mustGet(t, env.svc.AddItem(context.Background(), model.ListItem{
		ListID: listID, Name: name, Quantity: qty, UnitPrice: dec(price),
	}))
}

func TestListItemTotalAndAddOrIncrement(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()
	l1 := createList(t, env, "L1", env.clock.Now())

	addItem(t, env, l1.ID, "Rice", 2, "5.0")
	addItem(t, env, l1.ID, "Beans", 1, "8.0")

	detail := mustGet(t, env.svc.GetListDetail(ctx, l1.ID))
	if !detail.ItemsTotal.Equal(dec("18")) {
		t.Errorf("item total = %s, want 18", detail.ItemsTotal)
	}
	if !detail.List.EstimatedTotal.Equal(dec("18")) {
		t.Errorf("estimated total = %s, want 18", detail.List.EstimatedTotal)
	}

	rice := addItem(t, env, l1.ID, "Rice", 3, "5.0")
	if rice.Quantity != 5 {
		t.Errorf("rice quantity = %d, want 5", rice.Quantity)
	}
	items := mustGet(t, env.svc.ListItems(ctx, l1.ID, FilterAll, nil))
	count := 0
	for _, it := range items {
		if it.Name == "Rice" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("rice rows = %d, want 1", count)
	}
	got := mustGet(t, env.svc.GetList(ctx, l1.ID))
	if !got.EstimatedTotal.Equal(dec("33")) {
		t.Errorf("estimated total = %s, want 33", got.EstimatedTotal)
	}
}

func TestCreateListDefaultsFromType(t *testing.T) {
	env := setupService(t)

	l := mustGet(t, env.svc.CreateListOfType(context.Background(), model.ListTypeMonthly, "", ""))
	if l.Name != "Compras de Março 2024" {
		t.Errorf("name = %q", l.Name)
	}
	if l.Type != model.ListTypeMonthly || l.Status != model.ListStatusActive {
		t.Errorf("type/status = %s/%s", l.Type, l.Status)
	}

	wantErr(t, env.svc.CreateListOfType(context.Background(), model.ListType("daily"), "", ""), ErrInvalid)
}

func TestCreateListWithDraftItems(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()

	draft := listbuilder.New(model.ListTypeRegular).
		Name("Churrasco").
		AddItem("Picanha", 2, "kg", dec("79.90")).
		AddItem("Carvão", 1, "un", dec("20")).
		Build()
	l := mustGet(t, env.svc.CreateList(ctx, draft))

	detail := mustGet(t, env.svc.GetListDetail(ctx, l.ID))
	if len(detail.Items) != 2 || detail.Pending != 2 {
		t.Errorf("items = %d pending = %d, want 2/2", len(detail.Items), detail.Pending)
	}
	if !detail.ItemsTotal.Equal(dec("179.80")) {
		t.Errorf("total = %s, want 179.80", detail.ItemsTotal)
	}

	merged := listbuilder.New(model.ListTypeRegular).
		Name("Mercado").
		AddItem("Arroz", 2, "kg", dec("5")).
		AddItem("arroz", 3, "kg", dec("5")).
		Build()
	l = mustGet(t, env.svc.CreateList(ctx, merged))
	detail = mustGet(t, env.svc.GetListDetail(ctx, l.ID))
	if len(detail.Items) != 1 || detail.Items[0].Quantity != 5 {
		t.Fatalf("items = %+v, want one Arroz x5", detail.Items)
	}
	if !detail.ItemsTotal.Equal(detail.List.EstimatedTotal) {
		t.Errorf("items total %s != estimated total %s", detail.ItemsTotal, detail.List.EstimatedTotal)
	}

	bad := listbuilder.New(model.ListTypeRegular).Name("X").AddItem("Ghost", -1, "", decimal.Zero).Build()
	wantErr(t, env.svc.CreateList(ctx, bad), ErrInvalid)
}

func TestUpdateAndDeleteList(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()
	l := createList(t, env, "Old", env.clock.Now())
	addItem(t, env, l.ID, "Milk", 1, "4")

	updated := mustGet(t, env.svc.UpdateList(ctx, l.ID, " New ", "desc"))
	if updated.Name != "New" || updated.Description != "desc" {
		t.Errorf("updated = %q/%q", updated.Name, updated.Description)
	}
	wantErr(t, env.svc.UpdateList(ctx, l.ID, "  ", "desc"), ErrInvalid)
	wantErr(t, env.svc.UpdateList(ctx, 999, "Name", ""), ErrNotFound)

	withCover := mustGet(t, env.svc.SetCoverPhoto(ctx, l.ID, "covers/1.png"))
	if withCover.CoverPhoto != "covers/1.png" {
		t.Errorf("cover = %q", withCover.CoverPhoto)
	}

	mustGet(t, env.svc.DeleteList(ctx, l.ID))
	wantErr(t, env.svc.GetList(ctx, l.ID), ErrNotFound)
	wantErr(t, env.svc.DeleteList(ctx, l.ID), ErrNotFound)

	remaining, err := env.items.ListByList(ctx, l.ID)
	if err != nil {
		t.Fatalf("list items: %v", err)
	}
	if len(remaining) != 0 {
		t.Errorf("items after delete = %d, want 0", len(remaining))
	}
}

func TestStatusLifecycle(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()
	a := createList(t, env, "A", env.clock.Now())
	createList(t, env, "B", env.clock.Now().Add(time.Hour))

	done := mustGet(t, env.svc.UpdateStatus(ctx, a.ID, model.ListStatusCompleted))
	if done.Status != model.ListStatusCompleted {
		t.Errorf("status = %q", done.Status)
	}
	wantErr(t, env.svc.UpdateStatus(ctx, a.ID, model.ListStatus("archived")), ErrInvalid)

	if got := mustGet(t, env.svc.AllLists(ctx)); len(got) != 2 || got[0].Name != "B" {
		t.Errorf("all = %v, want [B A]", got)
	}
	if got := mustGet(t, env.svc.ActiveLists(ctx)); len(got) != 1 || got[0].Name != "B" {
		t.Errorf("active = %v, want [B]", got)
	}
	if got := mustGet(t, env.svc.CompletedLists(ctx)); len(got) != 1 || got[0].Name != "A" {
		t.Errorf("completed = %v, want [A]", got)
	}

	back := mustGet(t, env.svc.UpdateStatus(ctx, a.ID, model.ListStatusActive))
	if back.Status != model.ListStatusActive {
		t.Errorf("status = %q, want active", back.Status)
	}
}

func TestListsBetween(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	createList(t, env, "Feb", base.AddDate(0, 0, -1))
	createList(t, env, "Mar1", base)
	createList(t, env, "Mar20", base.AddDate(0, 0, 19))
	createList(t, env, "Apr", base.AddDate(0, 1, 0))

	got := mustGet(t, env.svc.ListsBetween(ctx, base, base.AddDate(0, 1, 0)))
	if len(got) != 2 || got[0].Name != "Mar1" || got[1].Name != "Mar20" {
		t.Errorf("between = %v, want [Mar1 Mar20]", got)
	}
	wantErr(t, env.svc.ListsBetween(ctx, base, base), ErrInvalid)
}

func TestItemOperations(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()
	l := createList(t, env, "L", env.clock.Now())
	milk := addItem(t, env, l.ID, "Leite", 2, "4.80")
	addItem(t, env, l.ID, "Arroz", 1, "6.49")
	addItem(t, env, l.ID, "Banana", 6, "0.80")

	wantErr(t, env.svc.AddItem(ctx, model.ListItem{ListID: l.ID, Name: " ", Quantity: 1}), ErrInvalid)
	wantErr(t, env.svc.AddItem(ctx, model.ListItem{ListID: l.ID, Name: "X", Quantity: 1, UnitPrice: dec("-1")}), ErrInvalid)
	wantErr(t, env.svc.AddItem(ctx, model.ListItem{ListID: 999, Name: "X", Quantity: 1}), ErrNotFound)

	toggled := mustGet(t, env.svc.TogglePurchased(ctx, milk.ID))
	if !toggled.Purchased || toggled.PurchasedAt == nil || !toggled.PurchasedAt.Equal(env.clock.Now()) {
		t.Errorf("toggled = %+v, want purchased now", toggled)
	}
	wantErr(t, env.svc.TogglePurchased(ctx, 999), ErrNotFound)

	pending := mustGet(t, env.svc.ListItems(ctx, l.ID, FilterPending, sorting.Alphabetical))
	if len(pending) != 2 || pending[0].Name != "Arroz" || pending[1].Name != "Banana" {
		t.Errorf("pending = %v", pending)
	}
	byCategory := mustGet(t, env.svc.ListItems(ctx, l.ID, FilterAll, sorting.Category))
	if byCategory[0].Name != "Banana" || byCategory[1].Name != "Leite" || byCategory[2].Name != "Arroz" {
		t.Errorf("category order = %s %s %s", byCategory[0].Name, byCategory[1].Name, byCategory[2].Name)
	}
	wantErr(t, env.svc.ListItems(ctx, l.ID, ItemFilter("maybe"), nil), ErrInvalid)

	updated := mustGet(t, env.svc.UpdateItem(ctx, milk.ID, "Leite Integral", 3, "L", dec("5")))
	if updated.Name != "Leite Integral" || !updated.Total().Equal(dec("15")) {
		t.Errorf("updated = %+v", updated)
	}
	wantErr(t, env.svc.UpdateItem(ctx, milk.ID, "Leite", -2, "L", dec("5")), ErrInvalid)
	wantErr(t, env.svc.UpdateItem(ctx, milk.ID, " arroz ", 3, "L", dec("5")), ErrInvalid)
	if same := mustGet(t, env.svc.UpdateItem(ctx, milk.ID, "LEITE INTEGRAL", 3, "L", dec("5"))); same.Name != "LEITE INTEGRAL" {
		t.Errorf("renaming to its own name = %q", same.Name)
	}
	rows := mustGet(t, env.svc.ListItems(ctx, l.ID, FilterAll, nil))
	if len(rows) != 3 {
		t.Errorf("items = %d, want 3 after rejected rename", len(rows))
	}

	cleared := mustGet(t, env.svc.ClearPurchased(ctx, l.ID))
	if cleared != 1 {
		t.Errorf("cleared = %d, want 1", cleared)
	}
	detail := mustGet(t, env.svc.GetListDetail(ctx, l.ID))
	if !detail.List.EstimatedTotal.Equal(dec("11.29")) {
		t.Errorf("estimated total = %s, want 11.29", detail.List.EstimatedTotal)
	}

	mustGet(t, env.svc.DeleteItem(ctx, detail.Items[0].ID))
	wantErr(t, env.svc.DeleteItem(ctx, detail.Items[0].ID), ErrNotFound)
}

func TestCatalog(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()

	n := mustGet(t, env.svc.SeedCatalog(ctx))
	if n != len(DefaultCatalog()) {
		t.Errorf("seeded = %d, want %d", n, len(DefaultCatalog()))
	}
	if again := mustGet(t, env.svc.SeedCatalog(ctx)); again != 0 {
		t.Errorf("second seed = %d, want 0", again)
	}

	found := mustGet(t, env.svc.SearchCatalog(ctx, "papel", 10))
	if len(found) != 2 {
		t.Fatalf("search = %v, want 2 products", found)
	}

	l := createList(t, env, "L", env.clock.Now())
	item := mustGet(t, env.svc.AddProduct(ctx, l.ID, found[0].ID, 2))
	if item.Name != found[0].Name || item.Unit != found[0].Unit || !item.UnitPrice.Equal(found[0].ReferencePrice) {
		t.Errorf("item = %+v, want catalog product %+v", item, found[0])
	}
	wantErr(t, env.svc.AddProduct(ctx, l.ID, 99999, 1), ErrNotFound)

	empty := mustGet(t, env.svc.SearchCatalog(ctx, "caviar", 10))
	if empty == nil || len(empty) != 0 {
		t.Errorf("search = %#v, want empty slice", empty)
	}
}

type stubSuggester struct {
	got []model.ListItem
}

func (s *stubSuggester) Suggest(_ context.Context, current []model.ListItem, limit int) []model.Suggestion {
	s.got = current
	return []model.Suggestion{{Product: "Manteiga", Confidence: 0.9}}[:min(limit, 1)]
}

func TestSuggestions(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()
	stub := &stubSuggester{}
	env.svc.suggester = stub

	l := createList(t, env, "L", env.clock.Now())
	addItem(t, env, l.ID, "Pão", 1, "1")

	got := mustGet(t, env.svc.Suggestions(ctx, l.ID, 5))
	if len(got) != 1 || got[0].Product != "Manteiga" {
		t.Errorf("suggestions = %v", got)
	}
	if len(stub.got) != 1 || stub.got[0].Name != "Pão" {
		t.Errorf("suggester saw %v, want [Pão]", stub.got)
	}
	wantErr(t, env.svc.Suggestions(ctx, 999, 5), ErrNotFound)

	env.svc.suggester = nil
	if got := mustGet(t, env.svc.Suggestions(ctx, l.ID, 5)); len(got) != 0 {
		t.Errorf("suggestions without engine = %v, want none", got)
	}
}

type panickyLists struct {
	ListRepository
}

func (panickyLists) List(context.Context) ([]model.ShoppingList, error) {
	panic("boom")
}

func TestPanicBecomesError(t *testing.T) {
	svc := NewService(panickyLists{}, nil, nil, Options{})

	r := svc.AllLists(context.Background())
	if !r.IsError() {
		t.Fatalf("status = %s, want error", r.Status())
	}
	if r.Message() != "Could not load lists" {
		t.Errorf("message = %q", r.Message())
	}
}
