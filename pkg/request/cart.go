package request

import (
	"github.com/google/uuid"
)

type AddCartItem struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Quantity  int32     `json:"quantity"  validate:"required,gt=0"`
}

type UpdateCartItem struct {
	Quantity int32 `json:"quantity" validate:"gte=0"`
}

type MergeCart struct {
	SessionID string `json:"sessionId" validate:"required"`
}
