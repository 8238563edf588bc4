package response

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/edgestore/storefront/internal/order"
)

type Order struct {
	CreatedAt  time.Time       `json:"created_at"`
	OrderItems []OrderItem     `json:"order_items"`
	Status     string          `json:"status"`
	ID         uuid.UUID       `json:"id"`
	AccountId  uuid.UUID       `json:"account_id"`
	Total      decimal.Decimal `json:"total"`
}

type OrderItem struct {
	ID        uuid.UUID       `json:"id"`
	OrderId   uuid.UUID       `json:"order_id"`
	ProductId uuid.UUID       `json:"product_id"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
	Quantity  int32           `json:"quantity"`
}

func NewOrder(o order.Order) Order {
	items := make([]OrderItem, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItem{
			ID:        item.ID,
			OrderId:   item.OrderID,
			ProductId: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: item.LineTotal,
		}
	}
	return Order{
		ID:         o.ID,
		AccountId:  o.AccountID,
		OrderItems: items,
		Total:      o.Total,
		Status:     string(o.Status),
		CreatedAt:  o.CreatedAt,
	}
}

func NewOrders(orders []order.Order) []Order {
	out := make([]Order, len(orders))
	for i, o := range orders {
		out[i] = NewOrder(o)
	}
	return out
}
