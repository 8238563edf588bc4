package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	inErrors "github.com/edgestore/storefront/internal/errors"
	"github.com/edgestore/storefront/internal/log"
	"github.com/edgestore/storefront/internal/order"
	"github.com/edgestore/storefront/internal/otel"
)

const cacheKeyOrder = "orders:%s"

type OrderService struct {
	repository order.Repository
	cache      *redis.Client
}

func NewOrderService(repository order.Repository, cache *redis.Client) *OrderService {
	return &OrderService{repository: repository, cache: cache}
}

func (s *OrderService) FindOrderById(
	c context.Context,
	accountId uuid.UUID,
	orderId uuid.UUID,
) (order.Order, error) {
	c, span := otel.Tracer.Start(c, "OrderService FindOrderById")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderService FindOrderById").
		Str(log.KeyAccountID, accountId.String()).
		Str(log.KeyOrderID, orderId.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding order by id").Logger()
	logger.Info().Msg("finding order by id")
	found, err := s.repository.FindById(c, orderId)
	if err != nil {
		err = fmt.Errorf("failed finding order by id=%s with error=%w", orderId, err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return order.Order{}, err
	}
	logger.Info().Msg("found order by id")

	// An order owned by a different account is indistinguishable from a
	// missing one to the caller.
	if found.AccountID != accountId {
		err = fmt.Errorf("orderId=%s with error=%w", orderId, inErrors.ErrNotFound)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return order.Order{}, err
	}

	return found, nil
}

func (s *OrderService) FindOrders(
	c context.Context,
	accountId uuid.UUID,
) ([]order.Order, error) {
	c, span := otel.Tracer.Start(c, "OrderService FindOrders")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderService FindOrders").
		Str(log.KeyAccountID, accountId.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding orders by accountId").Logger()
	logger.Info().Msg("finding orders by accountId")
	orders, err := s.repository.FindByAccount(c, accountId)
	if err != nil {
		err = fmt.Errorf(
			"failed finding orders by accountId=%s with error=%w",
			accountId,
			err,
		)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Msgf("found orderCount=%d", len(orders))

	return orders, nil
}

// CancelOrder marks a placed order as cancelled. Inventory already sold to
// the order is not restored; restock is a separate back office flow.
func (s *OrderService) CancelOrder(
	c context.Context,
	accountId uuid.UUID,
	orderId uuid.UUID,
) (order.Order, error) {
	c, span := otel.Tracer.Start(c, "OrderService CancelOrder")
	defer span.End()

	cacheKey := fmt.Sprintf(cacheKeyOrder, orderId.String())
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderService CancelOrder").
		Str(log.KeyAccountID, accountId.String()).
		Str(log.KeyOrderID, orderId.String()).
		Str(log.KeyCacheKey, cacheKey).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "verifying order ownership").Logger()
	logger.Info().Msg("verifying order ownership")
	found, err := s.FindOrderById(c, accountId, orderId)
	if err != nil {
		err = fmt.Errorf("failed verifying order ownership with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return order.Order{}, err
	}
	logger.Info().Msg("verified order ownership")

	logger = logger.With().Str(log.KeyProcess, "cancelling order").Logger()
	logger.Info().Msg("cancelling order")
	err = s.repository.Cancel(c, orderId)
	if err != nil {
		err = fmt.Errorf("failed cancelling order with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return order.Order{}, err
	}
	found.Status = order.StatusCancelled
	logger.Info().Msg("cancelled order")

	logger = logger.With().Str(log.KeyProcess, "invalidating order cache").Logger()
	logger.Trace().Msg("invalidating order cache")
	err = s.cache.JSONDel(c, cacheKey, "$").Err()
	if err != nil {
		err = fmt.Errorf("failed invalidating order cache with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
	}
	logger.Trace().Msg("invalidated order cache")

	return found, nil
}
