package order

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPlaced    Status = "PLACED"
	StatusCancelled Status = "CANCELLED"
)

// LineItem snapshots a product's unit price at order-creation time. Later
// catalog price changes never touch it.
type LineItem struct {
	ID        uuid.UUID       `json:"id"`
	OrderID   uuid.UUID       `json:"orderId"`
	ProductID uuid.UUID       `json:"productId"`
	Quantity  int32           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

// Order is immutable once created except for the Placed to Cancelled status
// transition. Total always equals the exact sum of the line totals.
type Order struct {
	ID        uuid.UUID       `json:"id"`
	AccountID uuid.UUID       `json:"accountId"`
	Items     []LineItem      `json:"items"`
	Total     decimal.Decimal `json:"total"`
	Status    Status          `json:"status"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Repository persists completed orders as immutable historical records.
type Repository interface {
	// Create fails with ErrDuplicateOrder only on an id collision, which
	// indicates broken id generation rather than a user error.
	Create(c context.Context, order Order) error
	Cancel(c context.Context, orderId uuid.UUID) error
	FindById(c context.Context, orderId uuid.UUID) (Order, error)
	// FindByAccount returns the account's orders newest first. Each call
	// re-reads the store, so the sequence is restartable.
	FindByAccount(c context.Context, accountId uuid.UUID) ([]Order, error)
}
