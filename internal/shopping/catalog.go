package shopping

import (
	"context"

	"github.com/dukerupert/shoplist/internal/model"
	"github.com/dukerupert/shoplist/internal/result"
	"github.com/shopspring/decimal"
)

func product(name, unit, price string) model.MarketProduct {
	return model.MarketProduct{Name: name, Unit: unit, ReferencePrice: decimal.RequireFromString(price)}
}

// DefaultCatalog is the product list seeded into an empty catalog.
func DefaultCatalog() []model.MarketProduct {
	return []model.MarketProduct{
		product("Arroz", "kg", "6.49"),
		product("Feijão", "kg", "8.99"),
		product("Açúcar", "kg", "4.79"),
		product("Sal", "kg", "2.49"),
		product("Óleo", "un", "7.99"),
		product("Macarrão", "un", "4.29"),
		product("Farinha de Trigo", "kg", "5.49"),
		product("Café", "un", "17.90"),
		product("Leite", "L", "4.99"),
		product("Manteiga", "un", "12.90"),
		product("Queijo", "kg", "44.90"),
		product("Iogurte", "un", "3.49"),
		product("Ovos", "dz", "11.90"),
		product("Pão", "kg", "14.90"),
		product("Frango", "kg", "15.90"),
		product("Carne Moída", "kg", "34.90"),
		product("Picanha", "kg", "79.90"),
		product("Linguiça", "kg", "24.90"),
		product("Banana", "kg", "5.99"),
		product("Maçã", "kg", "9.99"),
		product("Alface", "un", "3.49"),
		product("Tomate", "kg", "7.99"),
		product("Cebola", "kg", "5.49"),
		product("Batata", "kg", "6.49"),
		product("Detergente", "un", "2.69"),
		product("Sabão em Pó", "un", "18.90"),
		product("Desinfetante", "un", "8.49"),
		product("Esponja", "un", "2.99"),
		product("Papel Toalha", "un", "6.99"),
		product("Sabonete", "un", "2.49"),
		product("Shampoo", "un", "16.90"),
		product("Creme Dental", "un", "4.99"),
		product("Papel Higiênico", "un", "21.90"),
	}
}

// SeedCatalog loads DefaultCatalog into an empty catalog. It reports how many
// products were inserted, which is zero once the catalog has been seeded.
func (s *Service) SeedCatalog(ctx context.Context) result.Result[int] {
	return run(s, "Could not seed the catalog", func() (int, error) {
		n, err := s.catalog.SeedIfEmpty(ctx, DefaultCatalog())
		if err != nil {
			return 0, err
		}
		if n > 0 {
			s.logger.Info("catalog seeded", "products", n)
			s.publish(model.EntityProduct, "seeded", 0)
		}
		return n, nil
	})
}

func (s *Service) SearchCatalog(ctx context.Context, query string, limit int) result.Result[[]model.MarketProduct] {
	return run(s, "Could not search the catalog", func() ([]model.MarketProduct, error) {
		products, err := s.catalog.Search(ctx, query, limit)
		return nonNil(products), err
	})
}
