package shopping

import (
	"context"
	"testing"
	"time"

	"github.com/dukerupert/shoplist/internal/model"
)

func completedList(t *testing.T, env *testEnv, name string, at time.Time, items ...model.ListItem) model.ShoppingList {
	t.Helper()
	l := createList(t, env, name, at)
	for _, it := range items {
		addItem(t, env, l.ID, it.Name, it.Quantity, it.UnitPrice.String())
	}
	return mustGet(t, env.svc.UpdateStatus(context.Background(), l.ID, model.ListStatusCompleted))
}

func line(name string, qty int, price string) model.ListItem {
	return model.ListItem{Name: name, Quantity: qty, UnitPrice: dec(price)}
}

func TestMonthlyExpenseEmpty(t *testing.T) {
	env := setupService(t)

	got := mustGet(t, env.svc.MonthlyExpense(context.Background(), time.March, 2024))
	if !got.IsZero() {
		t.Errorf("expense = %s, want 0", got)
	}
}

func TestMonthlyExpense(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()

	completedList(t, env, "Mar A", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), line("Rice", 2, "5.0"), line("Beans", 1, "8.0"))
	completedList(t, env, "Mar B", time.Date(2024, 3, 31, 23, 59, 0, 0, time.UTC), line("Milk", 3, "4.50"))
	completedList(t, env, "Apr", time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), line("Milk", 10, "4.50"))
	completedList(t, env, "Mar 2023", time.Date(2023, 3, 15, 0, 0, 0, 0, time.UTC), line("Milk", 10, "4.50"))

	active := createList(t, env, "Mar active", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC))
	addItem(t, env, active.ID, "Caviar", 1, "500")

	got := mustGet(t, env.svc.MonthlyExpense(ctx, time.March, 2024))
	if !got.Equal(dec("31.50")) {
		t.Errorf("expense = %s, want 31.50", got)
	}

	wantErr(t, env.svc.MonthlyExpense(ctx, time.Month(13), 2024), ErrInvalid)
}

func TestMonthlyExpenseUsesLocation(t *testing.T) {
	env := setupService(t)
	loc := time.FixedZone("BRT", -3*60*60)
	env.svc.loc = loc

	// 01:00 UTC on April 1st is still March 31st in BRT.
	completedList(t, env, "late", time.Date(2024, 4, 1, 1, 0, 0, 0, time.UTC), line("Pão", 1, "10"))

	march := mustGet(t, env.svc.MonthlyExpense(context.Background(), time.March, 2024))
	if !march.Equal(dec("10")) {
		t.Errorf("march = %s, want 10", march)
	}
	april := mustGet(t, env.svc.MonthlyExpense(context.Background(), time.April, 2024))
	if !april.IsZero() {
		t.Errorf("april = %s, want 0", april)
	}
}

func TestLastListValue(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()

	if got := mustGet(t, env.svc.LastListValue(ctx)); !got.IsZero() {
		t.Errorf("last value with no lists = %s, want 0", got)
	}

	completedList(t, env, "old", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), line("Rice", 2, "5.0"))
	completedList(t, env, "newest", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), line("Rice", 2, "5.0"), line("Beans", 1, "8.0"))
	completedList(t, env, "middle", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), line("Milk", 1, "4.50"))
	newerActive := createList(t, env, "active", time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC))
	addItem(t, env, newerActive.ID, "Caviar", 1, "500")

	got := mustGet(t, env.svc.LastListValue(ctx))
	if !got.Equal(dec("18")) {
		t.Errorf("last value = %s, want 18", got)
	}
}
