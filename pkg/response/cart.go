package response

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/edgestore/storefront/internal/cart"
	"github.com/edgestore/storefront/internal/pricing"
)

type Cart struct {
	LastModifiedAt time.Time  `json:"last_modified_at"`
	Items          []CartItem `json:"items"`
	Owner          string     `json:"owner"`
}

type CartItem struct {
	ProductId uuid.UUID `json:"product_id"`
	Quantity  int32     `json:"quantity"`
}

func NewCart(crt cart.Cart) Cart {
	items := make([]CartItem, len(crt.Items))
	for i, item := range crt.Items {
		items[i] = CartItem{ProductId: item.ProductID, Quantity: item.Quantity}
	}
	return Cart{Owner: string(crt.Owner), Items: items, LastModifiedAt: crt.LastModifiedAt}
}

// PricedCart is the view-cart payload: the cart lines joined with current
// catalog prices and the resulting totals.
type PricedCart struct {
	Items []PricedItem    `json:"items"`
	Owner string          `json:"owner"`
	Total decimal.Decimal `json:"total"`
}

type PricedItem struct {
	Name      string          `json:"name"`
	ProductId uuid.UUID       `json:"product_id"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
	Quantity  int32           `json:"quantity"`
}

func NewPricedCart(priced pricing.PricedCart) PricedCart {
	items := make([]PricedItem, len(priced.Items))
	for i, item := range priced.Items {
		items[i] = PricedItem{
			ProductId: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: item.LineTotal,
		}
	}
	return PricedCart{Owner: string(priced.Owner), Items: items, Total: priced.Total}
}
