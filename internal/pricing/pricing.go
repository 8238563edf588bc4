package pricing

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/edgestore/storefront/internal/cart"
	inErrors "github.com/edgestore/storefront/internal/errors"
	"github.com/edgestore/storefront/internal/log"
	"github.com/edgestore/storefront/internal/otel"
	"github.com/edgestore/storefront/internal/product"
)

// PricedItem is a line item with its authoritative unit price captured at
// resolution time.
type PricedItem struct {
	ProductID uuid.UUID       `json:"productId"`
	Name      string          `json:"name"`
	Quantity  int32           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

// PricedCart is a derived, disposable view. It never feeds back into the cart
// store.
type PricedCart struct {
	Owner cart.OwnerKey   `json:"owner"`
	Items []PricedItem    `json:"items"`
	Total decimal.Decimal `json:"total"`
}

type Resolver struct {
	catalog product.Reader
}

func NewResolver(catalog product.Reader) Resolver {
	return Resolver{catalog: catalog}
}

// Resolve recomputes every line's unit price from the catalog. Client-supplied
// prices are never trusted. The whole operation fails if any referenced
// product no longer exists, so a cart is never partially priced.
func (r Resolver) Resolve(c context.Context, crt cart.Cart) (PricedCart, error) {
	c, span := otel.Tracer.Start(c, "Resolver Resolve")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Resolver Resolve").
		Str(log.KeyOwnerKey, string(crt.Owner)).
		Int(log.KeyCartItems, len(crt.Items)).
		Logger()

	priced := PricedCart{Owner: crt.Owner, Total: decimal.Zero}
	for _, item := range crt.Items {
		lg := logger.With().
			Str(log.KeyProductID, item.ProductID.String()).
			Int32(log.KeyQuantity, item.Quantity).
			Logger()

		lg.Trace().Msg("resolving product price")
		p, err := r.catalog.GetProduct(c, item.ProductID)
		if err != nil {
			if errors.Is(err, inErrors.ErrNotFound) {
				err = inErrors.ProductUnavailableError{ProductID: item.ProductID}
				inErrors.HandleError(err, span)
				lg.Error().Err(err).Msg(err.Error())
				return PricedCart{}, err
			}
			err = fmt.Errorf(
				"failed resolving productId=%s with error=%w",
				item.ProductID.String(),
				err,
			)
			inErrors.HandleError(err, span)
			lg.Error().Err(err).Msg(err.Error())
			return PricedCart{}, err
		}

		lineTotal := p.Price.Mul(decimal.NewFromInt32(item.Quantity))
		priced.Items = append(priced.Items, PricedItem{
			ProductID: item.ProductID,
			Name:      p.Name,
			Quantity:  item.Quantity,
			UnitPrice: p.Price,
			LineTotal: lineTotal,
		})
		priced.Total = priced.Total.Add(lineTotal)
		lg.Trace().Msg("resolved product price")
	}

	logger.Info().Msgf("priced %d line items total=%s", len(priced.Items), priced.Total.String())
	return priced, nil
}
