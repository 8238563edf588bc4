package product

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is the read-only catalog view consumed by the cart and checkout
// flows. Quantity is the stock available for sale.
type Product struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int32           `json:"quantity"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Reader resolves product identity, current price and available stock.
type Reader interface {
	GetProduct(c context.Context, productId uuid.UUID) (Product, error)
}

// StockUpdate records units sold for a product after a committed checkout.
type StockUpdate struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int32     `json:"quantity"`
}

// Store is the persistence surface behind the catalog service. An empty
// category lists the whole catalog.
type Store interface {
	FindProductById(c context.Context, productId uuid.UUID) (Product, error)
	FindProducts(c context.Context, category string) ([]Product, error)
	InsertProduct(c context.Context, product Product) (Product, error)
	ReduceStock(c context.Context, updates []StockUpdate) error
}
