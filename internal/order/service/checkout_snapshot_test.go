package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	testRedis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/edgestore/storefront/internal/cart"
	cartService "github.com/edgestore/storefront/internal/cart/service"
	"github.com/edgestore/storefront/internal/inventory"
	"github.com/edgestore/storefront/internal/order/repository"
	"github.com/edgestore/storefront/internal/pricing"
	"github.com/edgestore/storefront/internal/product"
	"github.com/edgestore/storefront/internal/product/store"
	"github.com/edgestore/storefront/pkg/request"
)

// setupRedisStack runs a redis-stack container because the snapshot layer
// depends on the JSON commands plain redis does not ship.
func setupRedisStack(t *testing.T) *redis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	c := context.Background()
	redisContainer, err := testRedis.Run(c, "redis/redis-stack-server:7.4.0-v3")
	if err != nil {
		t.Fatalf("failed running redis container with error: %s", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(redisContainer); err != nil {
			t.Fatalf("failed to terminate container: %s", err)
		}
	})

	connStr, err := redisContainer.ConnectionString(c)
	if err != nil {
		t.Fatalf("failed getting redis connection string with error: %s", err)
	}
	redisOpt, err := redis.ParseURL(connStr)
	if err != nil {
		t.Fatalf("failed parsing redis connection string with error: %s", err)
	}
	client := redis.NewClient(redisOpt)
	if err = client.Ping(c).Err(); err != nil {
		t.Fatalf("failed ping redis client with error: %s", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

type snapshotFixture struct {
	catalog      *store.MemoryStore
	carts        *cart.Store
	pricer       pricing.Resolver
	guard        *inventory.Guard
	cartSvc      *cartService.CartService
	orchestrator *CheckoutOrchestrator
}

func newSnapshotFixture(t *testing.T, client *redis.Client) *snapshotFixture {
	t.Helper()

	f := &snapshotFixture{
		catalog: store.NewMemoryStore(),
		carts:   cart.NewStore(),
		guard:   inventory.NewGuard(),
	}
	f.pricer = pricing.NewResolver(f.catalog)
	f.cartSvc = cartService.NewCartService(
		f.carts,
		cart.NewWishlistStore(),
		f.catalog,
		f.pricer,
		client,
	)
	f.orchestrator = NewCheckoutOrchestrator(
		f.carts,
		f.pricer,
		f.guard,
		repository.NewMemoryRepository(),
		client,
		make(chan []product.StockUpdate, 4),
	)
	return f
}

func (f *snapshotFixture) seedWidget(t *testing.T, stock int32) product.Product {
	t.Helper()
	p, err := f.catalog.InsertProduct(context.Background(), product.Product{
		ID:       uuid.New(),
		Name:     "widget",
		Category: "tools",
		Price:    decimal.NewFromInt(10),
		Quantity: stock,
	})
	require.NoError(t, err)
	f.guard.SetStock(p.ID, stock)
	return p
}

func TestCheckoutClearsCartSnapshot(t *testing.T) {
	client := setupRedisStack(t)
	c := context.Background()
	f := newSnapshotFixture(t, client)
	widget := f.seedWidget(t, 5)

	accountId := uuid.New()
	owner := cart.AccountOwner(accountId)
	_, err := f.cartSvc.AddItem(c, owner, request.AddCartItem{
		ProductID: widget.ID,
		Quantity:  2,
	})
	require.NoError(t, err)

	_, err = f.orchestrator.Checkout(c, accountId)
	require.NoError(t, err)

	priced, err := f.cartSvc.ViewCart(c, owner)
	require.NoError(t, err)
	assert.Empty(t, priced.Items, "a checked-out cart must not come back through the snapshot")

	_, err = client.JSONGet(c, cart.SnapshotKey(owner), "$").Result()
	assert.ErrorIs(t, err, redis.Nil, "the snapshot key must be gone after checkout")
}

func TestViewCartRehydratesFromSnapshot(t *testing.T) {
	client := setupRedisStack(t)
	c := context.Background()
	f := newSnapshotFixture(t, client)
	widget := f.seedWidget(t, 5)

	owner := cart.AccountOwner(uuid.New())
	_, err := f.cartSvc.AddItem(c, owner, request.AddCartItem{
		ProductID: widget.ID,
		Quantity:  2,
	})
	require.NoError(t, err)

	// A fresh store over the same redis stands in for a restarted process.
	restarted := cartService.NewCartService(
		cart.NewStore(),
		cart.NewWishlistStore(),
		f.catalog,
		f.pricer,
		client,
	)
	priced, err := restarted.ViewCart(c, owner)
	require.NoError(t, err)
	require.Len(t, priced.Items, 1)
	assert.Equal(t, widget.ID, priced.Items[0].ProductID)
	assert.EqualValues(t, 2, priced.Items[0].Quantity)
}
