package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgestore/storefront/internal/cart"
	inErrors "github.com/edgestore/storefront/internal/errors"
	"github.com/edgestore/storefront/internal/pricing"
	"github.com/edgestore/storefront/internal/product"
	"github.com/edgestore/storefront/internal/product/store"
	"github.com/edgestore/storefront/pkg/request"
)

type cartFixture struct {
	catalog *store.MemoryStore
	carts   *cart.Store
	service *CartService
}

func newCartFixture(t *testing.T) *cartFixture {
	t.Helper()

	catalog := store.NewMemoryStore()
	carts := cart.NewStore()
	cache := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	svc := NewCartService(carts, cart.NewWishlistStore(), catalog, pricing.NewResolver(catalog), cache)
	return &cartFixture{catalog: catalog, carts: carts, service: svc}
}

func (f *cartFixture) seedProduct(t *testing.T, name string, price int64) product.Product {
	t.Helper()
	p, err := f.catalog.InsertProduct(context.Background(), product.Product{
		ID:       uuid.New(),
		Name:     name,
		Price:    decimal.NewFromInt(price),
		Quantity: 100,
	})
	require.NoError(t, err)
	return p
}

func TestAddItemUnknownProduct(t *testing.T) {
	f := newCartFixture(t)
	owner := cart.SessionOwner("session-1")

	_, err := f.service.AddItem(context.Background(), owner, request.AddCartItem{
		ProductID: uuid.New(),
		Quantity:  1,
	})
	assert.ErrorIs(t, err, inErrors.ErrUnknownProduct)
	assert.True(t, f.carts.Get(owner).IsEmpty())
}

func TestAddItemThenViewCart(t *testing.T) {
	f := newCartFixture(t)
	owner := cart.SessionOwner("session-1")
	widget := f.seedProduct(t, "widget", 10)

	crt, err := f.service.AddItem(context.Background(), owner, request.AddCartItem{
		ProductID: widget.ID,
		Quantity:  2,
	})
	require.NoError(t, err)
	require.Len(t, crt.Items, 1)

	priced, err := f.service.ViewCart(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, priced.Items, 1)
	assert.True(t, priced.Total.Equal(decimal.NewFromInt(20)))
}

func TestViewCartUsesLivePrices(t *testing.T) {
	f := newCartFixture(t)
	owner := cart.SessionOwner("session-1")
	widget := f.seedProduct(t, "widget", 10)

	_, err := f.service.AddItem(context.Background(), owner, request.AddCartItem{
		ProductID: widget.ID,
		Quantity:  1,
	})
	require.NoError(t, err)

	widget.Price = decimal.NewFromInt(15)
	_, err = f.catalog.InsertProduct(context.Background(), widget)
	require.NoError(t, err)

	priced, err := f.service.ViewCart(context.Background(), owner)
	require.NoError(t, err)
	assert.True(t, priced.Total.Equal(decimal.NewFromInt(15)))
}

func TestUpdateQuantityToZeroRemovesLine(t *testing.T) {
	f := newCartFixture(t)
	owner := cart.SessionOwner("session-1")
	widget := f.seedProduct(t, "widget", 10)

	_, err := f.service.AddItem(context.Background(), owner, request.AddCartItem{
		ProductID: widget.ID,
		Quantity:  2,
	})
	require.NoError(t, err)

	crt, err := f.service.UpdateQuantity(
		context.Background(),
		owner,
		widget.ID,
		request.UpdateCartItem{Quantity: 0},
	)
	require.NoError(t, err)
	assert.True(t, crt.IsEmpty())
}

func TestRemoveItemMissing(t *testing.T) {
	f := newCartFixture(t)
	owner := cart.SessionOwner("session-1")

	_, err := f.service.RemoveItem(context.Background(), owner, uuid.New())
	assert.ErrorIs(t, err, inErrors.ErrNotFound)
}

func TestMergeOnLogin(t *testing.T) {
	f := newCartFixture(t)
	sessionId := "session-1"
	accountId := uuid.New()
	widget := f.seedProduct(t, "widget", 10)

	_, err := f.service.AddItem(
		context.Background(),
		cart.SessionOwner(sessionId),
		request.AddCartItem{ProductID: widget.ID, Quantity: 2},
	)
	require.NoError(t, err)
	_, err = f.service.AddItem(
		context.Background(),
		cart.AccountOwner(accountId),
		request.AddCartItem{ProductID: widget.ID, Quantity: 3},
	)
	require.NoError(t, err)

	merged, err := f.service.MergeOnLogin(context.Background(), sessionId, accountId)
	require.NoError(t, err)
	require.Len(t, merged.Items, 1)
	assert.EqualValues(t, 5, merged.Items[0].Quantity)

	replayed, err := f.service.MergeOnLogin(context.Background(), sessionId, accountId)
	require.NoError(t, err)
	require.Len(t, replayed.Items, 1)
	assert.EqualValues(t, 5, replayed.Items[0].Quantity, "replayed merge must not double quantities")
}

func TestWishlistRoundTrip(t *testing.T) {
	f := newCartFixture(t)
	owner := cart.AccountOwner(uuid.New())
	widget := f.seedProduct(t, "widget", 10)

	_, err := f.service.AddToWishlist(context.Background(), owner, widget.ID)
	require.NoError(t, err)

	listed, err := f.service.ListWishlist(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, widget.ID, listed[0].ID)

	_, err = f.service.RemoveFromWishlist(context.Background(), owner, widget.ID)
	require.NoError(t, err)

	listed, err = f.service.ListWishlist(context.Background(), owner)
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestAddToWishlistUnknownProduct(t *testing.T) {
	f := newCartFixture(t)

	_, err := f.service.AddToWishlist(context.Background(), cart.SessionOwner("s"), uuid.New())
	assert.ErrorIs(t, err, inErrors.ErrUnknownProduct)
}
