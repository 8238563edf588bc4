package errors

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrInvalidQuantity    = errors.New("quantity must be a positive integer")
	ErrUnknownProduct     = errors.New("product does not exist")
	ErrProductUnavailable = errors.New("product is no longer available")
	ErrEmptyCart          = errors.New("cart has no line items")
	ErrInsufficientStock  = errors.New("product has insufficient stock")
	ErrDuplicateOrder     = errors.New("order id already exists")
	ErrAlreadyCancelled   = errors.New("order is already cancelled")
	ErrNotFound           = errors.New("not found")

	ErrEmptyAuth    = errors.New("missing authorization")
	ErrTokenInvalid = errors.New("invalid token")
)

// InsufficientStockError reports which product failed reservation and how much
// stock was left, so the caller can adjust the cart and retry.
type InsufficientStockError struct {
	ProductID uuid.UUID
	Requested int32
	Available int32
}

func (e InsufficientStockError) Error() string {
	return fmt.Sprintf(
		"productId=%s requested=%d available=%d: %s",
		e.ProductID.String(),
		e.Requested,
		e.Available,
		ErrInsufficientStock.Error(),
	)
}

func (e InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}

// ProductUnavailableError reports which product must be removed from the cart
// before checkout can be retried.
type ProductUnavailableError struct {
	ProductID uuid.UUID
}

func (e ProductUnavailableError) Error() string {
	return fmt.Sprintf("productId=%s: %s", e.ProductID.String(), ErrProductUnavailable.Error())
}

func (e ProductUnavailableError) Unwrap() error {
	return ErrProductUnavailable
}

func HandleError(err error, span trace.Span) {
	if err == nil {
		return
	}
	span.AddEvent(err.Error())
	span.SetStatus(codes.Error, err.Error())
	span.RecordError(err)
}
