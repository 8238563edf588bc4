package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/edgestore/storefront/internal/cart"
	inErrors "github.com/edgestore/storefront/internal/errors"
	"github.com/edgestore/storefront/internal/log"
	"github.com/edgestore/storefront/internal/otel"
	"github.com/edgestore/storefront/internal/product"
)

func (s *CartService) AddToWishlist(
	c context.Context,
	owner cart.OwnerKey,
	productId uuid.UUID,
) ([]uuid.UUID, error) {
	c, span := otel.Tracer.Start(c, "CartService AddToWishlist")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService AddToWishlist").
		Str(log.KeyOwnerKey, string(owner)).
		Str(log.KeyProductID, productId.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "verifying product exists").Logger()
	logger.Info().Msg("verifying product exists")
	_, err := s.catalog.GetProduct(c, productId)
	if err != nil {
		if errors.Is(err, inErrors.ErrNotFound) {
			err = fmt.Errorf(
				"productId=%s with error=%w",
				productId.String(),
				inErrors.ErrUnknownProduct,
			)
		}
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Msg("verified product exists")

	logger = logger.With().Str(log.KeyProcess, "adding product to wishlist").Logger()
	logger.Info().Msg("adding product to wishlist")
	s.wishlist.Add(owner, productId)
	logger.Info().Msg("added product to wishlist")

	return s.wishlist.List(owner), nil
}

func (s *CartService) RemoveFromWishlist(
	c context.Context,
	owner cart.OwnerKey,
	productId uuid.UUID,
) ([]uuid.UUID, error) {
	c, span := otel.Tracer.Start(c, "CartService RemoveFromWishlist")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService RemoveFromWishlist").
		Str(log.KeyOwnerKey, string(owner)).
		Str(log.KeyProductID, productId.String()).
		Str(log.KeyProcess, "removing product from wishlist").
		Logger()

	logger.Info().Msg("removing product from wishlist")
	err := s.wishlist.Remove(owner, productId)
	if err != nil {
		err = fmt.Errorf("failed removing product from wishlist with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Msg("removed product from wishlist")

	return s.wishlist.List(owner), nil
}

// ListWishlist resolves each wishlisted product against the catalog so the
// response carries current names and prices. Products that disappeared from
// the catalog are skipped.
func (s *CartService) ListWishlist(
	c context.Context,
	owner cart.OwnerKey,
) ([]product.Product, error) {
	c, span := otel.Tracer.Start(c, "CartService ListWishlist")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService ListWishlist").
		Str(log.KeyOwnerKey, string(owner)).
		Str(log.KeyProcess, "listing wishlist").
		Logger()

	logger.Trace().Msg("listing wishlist")
	productIds := s.wishlist.List(owner)
	products := []product.Product{}
	for _, productId := range productIds {
		p, err := s.catalog.GetProduct(c, productId)
		if err != nil {
			if errors.Is(err, inErrors.ErrNotFound) {
				logger.Info().
					Str(log.KeyProductID, productId.String()).
					Msg("skipping wishlisted product missing from catalog")
				continue
			}
			err = fmt.Errorf("failed resolving wishlisted product with error=%w", err)
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return nil, err
		}
		products = append(products, p)
	}
	logger.Info().Msgf("listed wishlist productCount=%d", len(products))

	return products, nil
}
