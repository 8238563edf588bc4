package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/edgestore/storefront/internal/cart"
	inErrors "github.com/edgestore/storefront/internal/errors"
	"github.com/edgestore/storefront/internal/inventory"
	"github.com/edgestore/storefront/internal/log"
	"github.com/edgestore/storefront/internal/order"
	"github.com/edgestore/storefront/internal/otel"
	"github.com/edgestore/storefront/internal/pricing"
	"github.com/edgestore/storefront/internal/product"
)

type checkoutState string

const (
	stateIdle       checkoutState = "IDLE"
	statePricing    checkoutState = "PRICING"
	stateReserving  checkoutState = "RESERVING"
	stateCommitting checkoutState = "COMMITTING"
	stateCompleted  checkoutState = "COMPLETED"
	stateFailed     checkoutState = "FAILED"
)

var (
	checkoutCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_checkout_completed_total",
		Help: "Checkouts that reached a durable order.",
	})
	checkoutFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_checkout_failed_total",
		Help: "Checkouts aborted before the commit point, by stage.",
	}, []string{"reason"})
)

// CheckoutOrchestrator drives a cart through pricing, reservation and order
// persistence. The durable order insert is the commit point: everything
// before it is released on failure, everything after it must succeed
// eventually and is safe to retry.
type CheckoutOrchestrator struct {
	carts        *cart.Store
	pricer       pricing.Resolver
	guard        *inventory.Guard
	repository   order.Repository
	cache        *redis.Client
	stockUpdates chan<- []product.StockUpdate
}

func NewCheckoutOrchestrator(
	carts *cart.Store,
	pricer pricing.Resolver,
	guard *inventory.Guard,
	repository order.Repository,
	cache *redis.Client,
	stockUpdates chan<- []product.StockUpdate,
) *CheckoutOrchestrator {
	return &CheckoutOrchestrator{
		carts:        carts,
		pricer:       pricer,
		guard:        guard,
		repository:   repository,
		cache:        cache,
		stockUpdates: stockUpdates,
	}
}

func (s *CheckoutOrchestrator) Checkout(
	c context.Context,
	accountId uuid.UUID,
) (order.Order, error) {
	c, span := otel.Tracer.Start(c, "CheckoutOrchestrator Checkout")
	defer span.End()

	owner := cart.AccountOwner(accountId)
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CheckoutOrchestrator Checkout").
		Str(log.KeyAccountID, accountId.String()).
		Str(log.KeyOwnerKey, string(owner)).
		Str(log.KeyCheckoutState, string(stateIdle)).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "snapshotting cart").Logger()
	logger.Info().Msg("snapshotting cart")
	snapshot := s.carts.Get(owner)
	if snapshot.IsEmpty() {
		err := fmt.Errorf("ownerKey=%s with error=%w", owner, inErrors.ErrEmptyCart)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		checkoutFailed.WithLabelValues("empty_cart").Inc()
		return order.Order{}, err
	}
	logger.Info().Msgf("snapshotted cart itemCount=%d", len(snapshot.Items))

	logger = logger.With().
		Str(log.KeyCheckoutState, string(statePricing)).
		Str(log.KeyProcess, "resolving prices").
		Logger()
	logger.Info().Msg("resolving prices")
	span.AddEvent("resolving prices")
	priced, err := s.pricer.Resolve(c, snapshot)
	if err != nil {
		err = fmt.Errorf("failed resolving prices with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().
			Err(err).
			Str(log.KeyCheckoutState, string(stateFailed)).
			Msg(err.Error())
		checkoutFailed.WithLabelValues("pricing").Inc()
		return order.Order{}, err
	}
	span.AddEvent("resolved prices")
	logger.Info().Msgf("resolved prices total=%s", priced.Total.String())

	logger = logger.With().
		Str(log.KeyCheckoutState, string(stateReserving)).
		Str(log.KeyProcess, "reserving stock").
		Logger()
	logger.Info().Msg("reserving stock")
	span.AddEvent("reserving stock")
	handles, err := s.guard.ReserveAll(snapshot.Items)
	if err != nil {
		err = fmt.Errorf("failed reserving stock with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().
			Err(err).
			Str(log.KeyCheckoutState, string(stateFailed)).
			Msg(err.Error())
		checkoutFailed.WithLabelValues("inventory").Inc()
		return order.Order{}, err
	}
	span.AddEvent("reserved stock")
	logger.Info().Msgf("reserved stock reservationCount=%d", len(handles))

	logger = logger.With().
		Str(log.KeyCheckoutState, string(stateCommitting)).
		Str(log.KeyProcess, "persisting order").
		Logger()
	newOrder := orderFromPricedCart(accountId, priced)
	logger = logger.With().Str(log.KeyOrderID, newOrder.ID.String()).Logger()

	logger.Info().Msg("persisting order")
	span.AddEvent("persisting order")
	err = s.repository.Create(c, newOrder)
	if err != nil {
		releaseErr := fmt.Errorf("failed persisting order with error=%w", err)
		inErrors.HandleError(releaseErr, span)
		logger.Error().
			Err(releaseErr).
			Str(log.KeyCheckoutState, string(stateFailed)).
			Msg(releaseErr.Error())
		checkoutFailed.WithLabelValues("persistence").Inc()

		logger = logger.With().Str(log.KeyProcess, "releasing reservations").Logger()
		logger.Info().Msg("releasing reservations")
		s.guard.Release(handles)
		logger.Info().Msg("released reservations")

		return order.Order{}, releaseErr
	}
	span.AddEvent("persisted order")
	logger.Info().Msg("persisted order")

	// Commit point passed. The remaining steps are cleanup and must not fail
	// the checkout.
	logger = logger.With().Str(log.KeyCheckoutState, string(stateCompleted)).Logger()

	logger = logger.With().Str(log.KeyProcess, "committing reservations").Logger()
	logger.Info().Msg("committing reservations")
	s.guard.Commit(handles)
	logger.Info().Msg("committed reservations")

	logger = logger.With().Str(log.KeyProcess, "clearing cart").Logger()
	logger.Info().Msg("clearing cart")
	s.carts.Clear(owner)
	logger.Info().Msg("cleared cart")

	// The snapshot must go with it, or rehydration would resurrect the
	// checked-out cart after a restart.
	logger = logger.With().Str(log.KeyProcess, "clearing cart snapshot").Logger()
	logger.Trace().Msg("clearing cart snapshot")
	err = s.cache.JSONDel(c, cart.SnapshotKey(owner), "$").Err()
	if err != nil {
		err = fmt.Errorf("failed clearing cart snapshot with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
	} else {
		logger.Trace().Msg("cleared cart snapshot")
	}

	logger = logger.With().Str(log.KeyProcess, "inserting order to cache").Logger()
	logger.Trace().Msg("inserting order to cache")
	cacheKey := fmt.Sprintf(cacheKeyOrder, newOrder.ID.String())
	err = s.cache.JSONSet(c, cacheKey, "$", newOrder).Err()
	if err != nil {
		err = fmt.Errorf("failed inserting order to cache with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
	} else {
		logger.Trace().Msg("inserted order to cache")
	}

	logger = logger.With().Str(log.KeyProcess, "publishing stock updates").Logger()
	logger.Info().Msg("publishing stock updates")
	updates := make([]product.StockUpdate, len(newOrder.Items))
	for i, item := range newOrder.Items {
		updates[i] = product.StockUpdate{ProductID: item.ProductID, Quantity: item.Quantity}
	}
	select {
	case s.stockUpdates <- updates:
		logger.Info().Msg("published stock updates")
	case <-c.Done():
		logger.Warn().Msg("skipped publishing stock updates, context done")
	}

	checkoutCompleted.Inc()
	return newOrder, nil
}

func orderFromPricedCart(accountId uuid.UUID, priced pricing.PricedCart) order.Order {
	orderId := uuid.New()
	items := make([]order.LineItem, len(priced.Items))
	for i, item := range priced.Items {
		items[i] = order.LineItem{
			ID:        uuid.New(),
			OrderID:   orderId,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: item.LineTotal,
		}
	}
	return order.Order{
		ID:        orderId,
		AccountID: accountId,
		Items:     items,
		Total:     priced.Total,
		Status:    order.StatusPlaced,
		CreatedAt: time.Now(),
	}
}
