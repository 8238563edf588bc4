package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	inErrors "github.com/edgestore/storefront/internal/errors"
	"github.com/edgestore/storefront/internal/log"
	"github.com/edgestore/storefront/internal/otel"
	"github.com/edgestore/storefront/internal/product"
	"github.com/edgestore/storefront/pkg/request"
)

const (
	cacheKeyProduct  = "products:%s"
	cacheKeyProducts = "products"
)

type ProductService struct {
	store product.Store
	cache *redis.Client
}

func NewProductService(store product.Store, cache *redis.Client) *ProductService {
	return &ProductService{store: store, cache: cache}
}

// GetProduct implements the catalog reader consumed by cart and checkout.
func (svc *ProductService) GetProduct(
	c context.Context,
	productId uuid.UUID,
) (product.Product, error) {
	c, span := otel.Tracer.Start(c, "ProductService GetProduct")
	defer span.End()

	cacheKey := fmt.Sprintf(cacheKeyProduct, productId.String())

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService GetProduct").
		Str(log.KeyProductID, productId.String()).
		Str(log.KeyCacheKey, cacheKey).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding product in cache").Logger()
	logger.Trace().Msg("finding product in cache")
	jsonCache, err := svc.cache.JSONGet(c, cacheKey, "$").Result()
	if err != nil || jsonCache == "" {
		logger.Info().Msg("product not in cache")

		logger = logger.With().Str(log.KeyProcess, "finding product in store").Logger()
		logger.Trace().Msg("finding product in store")
		p, err := svc.store.FindProductById(c, productId)
		if err != nil {
			err = fmt.Errorf("failed finding product in store with error=%w", err)
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return product.Product{}, err
		}
		logger = logger.With().Any(log.KeyProduct, p).Logger()
		logger.Info().Msg("found product in store")

		logger = logger.With().Str(log.KeyProcess, "inserting product in cache").Logger()
		logger.Trace().Msg("inserting product in cache")
		err = svc.cache.JSONSet(c, cacheKey, "$", p).Err()
		if err != nil {
			err = fmt.Errorf("failed inserting product in cache with error=%w", err)
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return p, nil
		}
		logger.Info().Msg("inserted product in cache")

		return p, nil
	}
	logger.Info().Msg("found product in cache")

	logger = logger.With().Str(log.KeyProcess, "unmarshaling cache").Logger()
	logger.Trace().Msg("unmarshaling cache")
	cached := []product.Product{}
	err = json.Unmarshal([]byte(jsonCache), &cached)
	if err != nil {
		err = fmt.Errorf("failed unmarshaling cache with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return svc.store.FindProductById(c, productId)
	}
	if len(cached) == 0 {
		logger.Info().Msg("cache entry empty")
		return svc.store.FindProductById(c, productId)
	}
	logger.Trace().Msg("unmarshaled cache")

	return cached[0], nil
}

// FindProducts lists the catalog, optionally narrowed to one category. Only
// the full listing is cached; category slices go straight to the store.
func (svc *ProductService) FindProducts(
	c context.Context,
	category string,
) ([]product.Product, error) {
	c, span := otel.Tracer.Start(c, "ProductService FindProducts")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService FindProducts").
		Str(log.KeyCategory, category).
		Logger()

	if category != "" {
		logger = logger.With().Str(log.KeyProcess, "finding products by category").Logger()
		logger.Trace().Msg("finding products by category")
		products, err := svc.store.FindProducts(c, category)
		if err != nil {
			err = fmt.Errorf("failed finding products by category with error=%w", err)
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return nil, err
		}
		logger.Info().Msgf("found products by category productCount=%d", len(products))
		return products, nil
	}

	logger = logger.With().Str(log.KeyProcess, "finding products in cache").Logger()
	logger.Trace().Msg("finding products in cache")
	jsonString, err := svc.cache.Get(c, cacheKeyProducts).Result()
	if err != nil {
		logger.Info().Msg("products not in cache")

		logger = logger.With().Str(log.KeyProcess, "finding products in store").Logger()
		logger.Trace().Msg("finding products in store")
		products, err := svc.store.FindProducts(c, "")
		if err != nil {
			err = fmt.Errorf("failed finding products in store with error=%w", err)
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return nil, err
		}
		logger.Info().Msg("found products in store")

		logger = logger.With().Str(log.KeyProcess, "inserting products in cache").Logger()
		logger.Trace().Msg("marshaling products")
		marshaled, err := json.Marshal(products)
		if err != nil {
			err = fmt.Errorf("failed marshaling products with error=%w", err)
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return products, nil
		}
		err = svc.cache.Set(c, cacheKeyProducts, marshaled, time.Hour*1).Err()
		if err != nil {
			err = fmt.Errorf("failed inserting products in cache with error=%w", err)
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return products, nil
		}
		logger.Info().Msg("inserted products in cache")

		return products, nil
	}
	logger.Info().Msg("found products in cache")

	logger = logger.With().Str(log.KeyProcess, "unmarshaling cache").Logger()
	products := []product.Product{}
	err = json.Unmarshal([]byte(jsonString), &products)
	if err != nil {
		err = fmt.Errorf("failed unmarshaling cache with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return svc.store.FindProducts(c, "")
	}

	return products, nil
}

func (svc *ProductService) InsertProduct(
	c context.Context,
	param request.Product,
) (product.Product, error) {
	c, span := otel.Tracer.Start(c, "ProductService InsertProduct")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService InsertProduct").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "inserting product to store").Logger()
	logger.Info().Msg("inserting product to store")
	inserted, err := svc.store.InsertProduct(c, product.Product{
		ID:       uuid.New(),
		Name:     param.Name,
		Category: param.Category,
		Price:    param.Price,
		Quantity: param.Quantity,
	})
	if err != nil {
		err = fmt.Errorf("failed inserting product with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return product.Product{}, err
	}
	logger = logger.With().Any(log.KeyProduct, inserted).Logger()
	logger.Info().Msg("inserted product to store")

	logger = logger.With().Str(log.KeyProcess, "invalidating products cache").Logger()
	logger.Trace().Msg("invalidating products cache")
	err = svc.cache.Del(c, cacheKeyProducts).Err()
	if err != nil {
		err = fmt.Errorf("failed invalidating products cache with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
	}
	logger.Trace().Msg("invalidated products cache")

	return inserted, nil
}

// ReduceStock persists units sold after a committed checkout and drops the
// affected cache entries so later reads observe the new quantities.
func (svc *ProductService) ReduceStock(c context.Context, updates []product.StockUpdate) error {
	c, span := otel.Tracer.Start(c, "ProductService ReduceStock")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService ReduceStock").
		Int("updateCount", len(updates)).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "reducing stock in store").Logger()
	logger.Info().Msg("reducing stock in store")
	err := svc.store.ReduceStock(c, updates)
	if err != nil {
		err = fmt.Errorf("failed reducing stock in store with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("reduced stock in store")

	logger = logger.With().Str(log.KeyProcess, "invalidating product cache").Logger()
	logger.Trace().Msg("invalidating product cache")
	keys := make([]string, 0, len(updates)+1)
	keys = append(keys, cacheKeyProducts)
	for _, update := range updates {
		keys = append(keys, fmt.Sprintf(cacheKeyProduct, update.ProductID.String()))
	}
	err = svc.cache.Del(c, keys...).Err()
	if err != nil {
		err = fmt.Errorf("failed invalidating product cache with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
	}
	logger.Trace().Msg("invalidated product cache")

	return nil
}
