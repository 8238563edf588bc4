package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/edgestore/storefront/internal/cart"
	inErrors "github.com/edgestore/storefront/internal/errors"
	"github.com/edgestore/storefront/internal/log"
	"github.com/edgestore/storefront/internal/otel"
	"github.com/edgestore/storefront/internal/pricing"
	"github.com/edgestore/storefront/internal/product"
	"github.com/edgestore/storefront/pkg/request"
)

// CartService wraps the in-memory cart store with catalog validation, live
// pricing and a redis snapshot of every mutation. The store is authoritative;
// the snapshot only serves rehydration after a restart.
type CartService struct {
	carts    *cart.Store
	wishlist *cart.WishlistStore
	catalog  product.Reader
	pricer   pricing.Resolver
	cache    *redis.Client
}

func NewCartService(
	carts *cart.Store,
	wishlist *cart.WishlistStore,
	catalog product.Reader,
	pricer pricing.Resolver,
	cache *redis.Client,
) *CartService {
	return &CartService{
		carts:    carts,
		wishlist: wishlist,
		catalog:  catalog,
		pricer:   pricer,
		cache:    cache,
	}
}

func (s *CartService) AddItem(
	c context.Context,
	owner cart.OwnerKey,
	param request.AddCartItem,
) (cart.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService AddItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService AddItem").
		Str(log.KeyOwnerKey, string(owner)).
		Str(log.KeyProductID, param.ProductID.String()).
		Int32(log.KeyQuantity, param.Quantity).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "verifying product exists").Logger()
	logger.Info().Msg("verifying product exists")
	_, err := s.catalog.GetProduct(c, param.ProductID)
	if err != nil {
		if errors.Is(err, inErrors.ErrNotFound) {
			err = fmt.Errorf(
				"productId=%s with error=%w",
				param.ProductID.String(),
				inErrors.ErrUnknownProduct,
			)
		}
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return cart.Cart{}, err
	}
	logger.Info().Msg("verified product exists")

	logger = logger.With().Str(log.KeyProcess, "adding item to cart").Logger()
	logger.Info().Msg("adding item to cart")
	err = s.carts.AddItem(owner, param.ProductID, param.Quantity)
	if err != nil {
		err = fmt.Errorf("failed adding item to cart with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return cart.Cart{}, err
	}
	logger.Info().Msg("added item to cart")

	crt := s.carts.Get(owner)
	s.snapshotCart(c, crt)
	return crt, nil
}

func (s *CartService) UpdateQuantity(
	c context.Context,
	owner cart.OwnerKey,
	productId uuid.UUID,
	param request.UpdateCartItem,
) (cart.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService UpdateQuantity")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService UpdateQuantity").
		Str(log.KeyOwnerKey, string(owner)).
		Str(log.KeyProductID, productId.String()).
		Int32(log.KeyQuantity, param.Quantity).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "updating item quantity").Logger()
	logger.Info().Msg("updating item quantity")
	err := s.carts.UpdateQuantity(owner, productId, param.Quantity)
	if err != nil {
		err = fmt.Errorf("failed updating item quantity with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return cart.Cart{}, err
	}
	logger.Info().Msg("updated item quantity")

	crt := s.carts.Get(owner)
	s.snapshotCart(c, crt)
	return crt, nil
}

func (s *CartService) RemoveItem(
	c context.Context,
	owner cart.OwnerKey,
	productId uuid.UUID,
) (cart.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService RemoveItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService RemoveItem").
		Str(log.KeyOwnerKey, string(owner)).
		Str(log.KeyProductID, productId.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "removing item from cart").Logger()
	logger.Info().Msg("removing item from cart")
	err := s.carts.RemoveItem(owner, productId)
	if err != nil {
		err = fmt.Errorf("failed removing item from cart with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return cart.Cart{}, err
	}
	logger.Info().Msg("removed item from cart")

	crt := s.carts.Get(owner)
	s.snapshotCart(c, crt)
	return crt, nil
}

func (s *CartService) ClearCart(c context.Context, owner cart.OwnerKey) {
	c, span := otel.Tracer.Start(c, "CartService ClearCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService ClearCart").
		Str(log.KeyOwnerKey, string(owner)).
		Str(log.KeyProcess, "clearing cart").
		Logger()

	logger.Info().Msg("clearing cart")
	s.carts.Clear(owner)
	logger.Info().Msg("cleared cart")

	s.snapshotCart(c, s.carts.Get(owner))
}

// ViewCart prices the cart against the live catalog. Unit prices are never
// stored on the cart so a price change between views is reflected here.
func (s *CartService) ViewCart(
	c context.Context,
	owner cart.OwnerKey,
) (pricing.PricedCart, error) {
	c, span := otel.Tracer.Start(c, "CartService ViewCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService ViewCart").
		Str(log.KeyOwnerKey, string(owner)).
		Logger()

	crt := s.carts.Get(owner)
	if len(crt.Items) == 0 {
		logger = logger.With().Str(log.KeyProcess, "rehydrating cart").Logger()
		logger.Trace().Msg("rehydrating cart from snapshot")
		err := s.RehydrateCart(c, owner)
		if err != nil {
			logger.Error().Err(err).Msg(err.Error())
		}
		crt = s.carts.Get(owner)
	}

	logger = logger.With().Str(log.KeyProcess, "pricing cart").Logger()
	logger.Trace().Msg("pricing cart")
	priced, err := s.pricer.Resolve(c, crt)
	if err != nil {
		err = fmt.Errorf("failed pricing cart with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return pricing.PricedCart{}, err
	}
	logger.Info().Msgf("priced cart total=%s", priced.Total.String())

	return priced, nil
}

// MergeOnLogin folds the anonymous session cart into the account cart and
// returns the merged result. Replaying the same merge is harmless.
func (s *CartService) MergeOnLogin(
	c context.Context,
	sessionId string,
	accountId uuid.UUID,
) (cart.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService MergeOnLogin")
	defer span.End()

	sessionOwner := cart.SessionOwner(sessionId)
	accountOwner := cart.AccountOwner(accountId)

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService MergeOnLogin").
		Str(log.KeySessionID, sessionId).
		Str(log.KeyAccountID, accountId.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "merging session cart into account cart").Logger()
	logger.Info().Msg("merging session cart into account cart")
	merged := s.carts.Merge(sessionOwner, accountOwner)
	logger.Info().Msgf("merged session cart into account cart itemCount=%d", len(merged.Items))

	s.snapshotCart(c, merged)
	s.snapshotCart(c, s.carts.Get(sessionOwner))
	return merged, nil
}

// RehydrateCart restores a cart from its redis snapshot, dropping the current
// in-memory content for that owner. Called lazily when an owner's in-memory
// cart is empty, so carts survive process restarts.
func (s *CartService) RehydrateCart(c context.Context, owner cart.OwnerKey) error {
	c, span := otel.Tracer.Start(c, "CartService RehydrateCart")
	defer span.End()

	cacheKey := cart.SnapshotKey(owner)
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService RehydrateCart").
		Str(log.KeyOwnerKey, string(owner)).
		Str(log.KeyCacheKey, cacheKey).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding cart snapshot").Logger()
	logger.Trace().Msg("finding cart snapshot")
	snapshots, err := s.cache.JSONGet(c, cacheKey, "$").Result()
	if err != nil || snapshots == "" {
		logger.Info().Msg("cart snapshot not found")
		return nil
	}
	logger.Info().Msg("found cart snapshot")

	logger = logger.With().Str(log.KeyProcess, "restoring cart snapshot").Logger()
	logger.Trace().Msg("unmarshaling cart snapshot")
	cached := []cart.Cart{}
	err = json.Unmarshal([]byte(snapshots), &cached)
	if err != nil {
		err = fmt.Errorf("failed unmarshaling cart snapshot with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	if len(cached) == 0 {
		logger.Info().Msg("cart snapshot empty")
		return nil
	}
	s.carts.Replace(owner, cached[0].Items)
	logger.Info().Msg("restored cart snapshot")

	return nil
}

func (s *CartService) snapshotCart(c context.Context, crt cart.Cart) {
	c, span := otel.Tracer.Start(c, "CartService snapshotCart")
	defer span.End()

	cacheKey := cart.SnapshotKey(crt.Owner)
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService snapshotCart").
		Str(log.KeyCacheKey, cacheKey).
		Str(log.KeyProcess, "snapshotting cart to cache").
		Logger()

	logger.Trace().Msg("snapshotting cart to cache")
	err := s.cache.JSONSet(c, cacheKey, "$", crt).Err()
	if err != nil {
		err = fmt.Errorf("failed snapshotting cart to cache with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	logger.Trace().Msg("snapshotted cart to cache")
}
