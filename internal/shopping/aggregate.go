package shopping

import (
	"context"
	"time"

	"github.com/dukerupert/shoplist/internal/model"
	"github.com/dukerupert/shoplist/internal/result"
	"github.com/shopspring/decimal"
)

// MonthlyExpense sums the item totals of the completed lists created in the
// given month. The month is matched on calendar fields in the service's
// location, so a list created at 23:30 on the 31st stays in that month.
func (s *Service) MonthlyExpense(ctx context.Context, month time.Month, year int) result.Result[decimal.Decimal] {
	return run(s, "Could not calculate the monthly expense", func() (decimal.Decimal, error) {
		if month < time.January || month > time.December {
			return decimal.Zero, invalid("month must be between 1 and 12")
		}
		completed, err := s.lists.ListByStatus(ctx, model.ListStatusCompleted)
		if err != nil {
			return decimal.Zero, err
		}

		sum := decimal.Zero
		for _, l := range completed {
			created := l.CreatedAt.In(s.loc)
			if created.Month() != month || created.Year() != year {
				continue
			}
			total, err := s.itemsTotal(ctx, l.ID)
			if err != nil {
				return decimal.Zero, err
			}
			sum = sum.Add(total)
		}
		return sum, nil
	})
}

// LastListValue is the item total of the most recently created completed list.
func (s *Service) LastListValue(ctx context.Context) result.Result[decimal.Decimal] {
	return run(s, "Could not calculate the last list value", func() (decimal.Decimal, error) {
		completed, err := s.lists.ListByStatus(ctx, model.ListStatusCompleted)
		if err != nil {
			return decimal.Zero, err
		}
		if len(completed) == 0 {
			return decimal.Zero, nil
		}

		last := completed[0]
		for _, l := range completed[1:] {
			if l.CreatedAt.After(last.CreatedAt) {
				last = l
			}
		}
		return s.itemsTotal(ctx, last.ID)
	})
}

func (s *Service) itemsTotal(ctx context.Context, listID int64) (decimal.Decimal, error) {
	items, err := s.items.ListByList(ctx, listID)
	if err != nil {
		return decimal.Zero, err
	}
	return model.ItemsTotal(items), nil
}
