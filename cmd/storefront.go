package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/edgestore/storefront/internal/cart"
	cartController "github.com/edgestore/storefront/internal/cart/controller"
	cartService "github.com/edgestore/storefront/internal/cart/service"
	"github.com/edgestore/storefront/internal/config"
	"github.com/edgestore/storefront/internal/constants"
	inErrors "github.com/edgestore/storefront/internal/errors"
	"github.com/edgestore/storefront/internal/infra"
	"github.com/edgestore/storefront/internal/inventory"
	"github.com/edgestore/storefront/internal/log"
	"github.com/edgestore/storefront/internal/middleware"
	orderController "github.com/edgestore/storefront/internal/order/controller"
	orderRepository "github.com/edgestore/storefront/internal/order/repository"
	orderService "github.com/edgestore/storefront/internal/order/service"
	inOtel "github.com/edgestore/storefront/internal/otel"
	"github.com/edgestore/storefront/internal/pricing"
	"github.com/edgestore/storefront/internal/product"
	productController "github.com/edgestore/storefront/internal/product/controller"
	productService "github.com/edgestore/storefront/internal/product/service"
	productStore "github.com/edgestore/storefront/internal/product/store"
)

func RunStorefrontService(c context.Context) {
	c, span := inOtel.Tracer.Start(c, "RunStorefrontService")
	defer span.End()

	logger := log.InitLogger(filepath.Join("/var/log/", constants.AppStorefront+".log")).
		With().
		Str(log.KeyAppName, constants.AppStorefront).
		Str(log.KeyTag, "main RunStorefrontService").
		Logger()

	c = logger.WithContext(c)
	cfg := config.InitConfig(c, constants.AppStorefront)

	logger = logger.With().Str(log.KeyProcess, "initializing otel sdk").Logger()
	logger.Info().Msg("initializing otel sdk")
	c = logger.WithContext(c)
	shutdownFuncs, err := inOtel.InitOtelSdk(c, constants.AppStorefront, cfg.Otel)
	if err != nil {
		err = fmt.Errorf("failed initializing otel sdk with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	defer func() {
		logger.Info().Msg("shutting down otel")
		c = logger.WithContext(c)
		err = inOtel.ShutdownOtel(c, shutdownFuncs)
		if err != nil {
			err = fmt.Errorf("failed shutting down otel with error=%w", err)
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
		}
		logger.Info().Msg("shutdown otel")
	}()
	logger.Info().Msg("initialized otel sdk")

	logger = logger.With().Str(log.KeyProcess, "initializing database").Logger()
	logger.Info().Msg("initializing database")
	c = logger.WithContext(c)
	db := infra.NewDatabaseClient(c, cfg.Database)
	defer func() {
		logger = logger.With().Str(log.KeyProcess, "closing database").Logger()
		logger.Info().Msg("closing database")
		db.Close()
		logger.Info().Msg("closed database")
	}()
	logger.Info().Msg("initialized database")

	logger = logger.With().Str(log.KeyProcess, "initializing cache").Logger()
	logger.Info().Msg("initializing cache")
	c = logger.WithContext(c)
	cache := infra.NewCacheClient(c, cfg.Cache)
	defer func() {
		logger = logger.With().Str(log.KeyProcess, "closing cache").Logger()
		logger.Info().Msg("closing cache")
		err = cache.Close()
		if err != nil {
			err = fmt.Errorf("failed closing cache with error=%w", err)
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return
		}
		logger.Info().Msg("closed cache")
	}()
	logger.Info().Msg("initialized cache")

	logger = logger.With().Str(log.KeyProcess, "initializing catalog").Logger()
	logger.Info().Msg("initializing catalog")
	catalogStore := productStore.NewPostgresStore(db)
	catalog := productService.NewProductService(catalogStore, cache)
	logger.Info().Msg("initialized catalog")

	logger = logger.With().Str(log.KeyProcess, "seeding inventory guard").Logger()
	logger.Info().Msg("seeding inventory guard")
	c = logger.WithContext(c)
	guard := inventory.NewGuard()
	products, err := catalogStore.FindProducts(c, "")
	if err != nil {
		err = fmt.Errorf("failed seeding inventory guard with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	for _, p := range products {
		guard.SetStock(p.ID, p.Quantity)
	}
	logger.Info().Msgf("seeded inventory guard productCount=%d", len(products))

	logger = logger.With().Str(log.KeyProcess, "initializing services").Logger()
	logger.Info().Msg("initializing services")
	carts := cart.NewStore()
	wishlist := cart.NewWishlistStore()
	pricer := pricing.NewResolver(catalog)
	cartSvc := cartService.NewCartService(carts, wishlist, catalog, pricer, cache)
	orders := orderRepository.NewPostgresRepository(db)
	orderSvc := orderService.NewOrderService(orders, cache)
	stockUpdates := make(chan []product.StockUpdate, 16)
	defer close(stockUpdates)
	checkout := orderService.NewCheckoutOrchestrator(
		carts,
		pricer,
		guard,
		orders,
		cache,
		stockUpdates,
	)
	logger.Info().Msg("initialized services")

	logger = logger.With().Str(log.KeyProcess, "initializing router").Logger()
	logger.Info().Msg("initializing router")
	router := mux.NewRouter()
	router.Use(otelmux.Middleware(constants.AppStorefront))
	router.Use(middleware.Logging)
	router.Use(middleware.RecoverPanic)
	router.Handle("/metrics", promhttp.Handler())
	cartController.AttachCartController(router, cartSvc)
	orderController.AttachOrderController(router, orderSvc, checkout)
	productController.AttachProductController(router, catalog)
	logger.Info().Msg("initialized router")

	logger = logger.With().Str(log.KeyProcess, "initializing server").Logger()
	logger.Info().Msg("initializing server")
	server := http.Server{
		Addr: fmt.Sprintf("%s:%d", cfg.Application.Host, cfg.Application.Port),
		BaseContext: func(net.Listener) context.Context {
			lg := logger.With().
				Reset().
				Timestamp().
				Caller().
				Stack().
				Str(log.KeyAppName, constants.AppStorefront).
				Logger()
			c = lg.WithContext(c)
			return c
		},
		Handler:      otelhttp.NewHandler(router, constants.AppStorefront),
		ReadTimeout:  45 * time.Second,
		WriteTimeout: 45 * time.Second,
	}
	defer func() {
		logger = logger.With().Str(log.KeyProcess, "shutting down server").Logger()
		logger.Info().Msg("shutting down server")
		err = server.Shutdown(c)
		if err != nil {
			err = fmt.Errorf("failed shutting down server with error=%w", err)
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
		}
		logger.Info().Msg("shutdown server")
	}()
	logger.Info().Msg("initialized server")

	go func() {
		logger = logger.With().Str(log.KeyProcess, "start server").Logger()
		logger.Info().Msgf("start listening request at %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			err = fmt.Errorf("encounter error=%w while running server", err)
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
		}
	}()

	logger = logger.With().Str(log.KeyProcess, "start stock worker").Logger()
	logger.Info().Msg("start stock worker")
	span.AddEvent("start stock worker")
	stockWorker := NewStockWorker(catalog, stockUpdates)
	var wg sync.WaitGroup
	wg.Add(1)
	c = logger.WithContext(c)
	go stockWorker.StartWorker(c, &wg)

	<-c.Done()
	logger = logger.With().Str(log.KeyProcess, "shutdown server").Logger()
	logger.Info().Msg("received interuption signal shutting down")
	wg.Wait()
}
