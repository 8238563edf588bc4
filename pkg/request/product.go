package request

import (
	"github.com/shopspring/decimal"
)

type Product struct {
	Name     string          `json:"name"     validate:"required"`
	Category string          `json:"category" validate:"required"`
	Price    decimal.Decimal `json:"price"    validate:"required"`
	Quantity int32           `json:"quantity" validate:"gte=0"`
}
