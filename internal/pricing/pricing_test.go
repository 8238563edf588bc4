package pricing

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgestore/storefront/internal/cart"
	inErrors "github.com/edgestore/storefront/internal/errors"
	"github.com/edgestore/storefront/internal/product"
	"github.com/edgestore/storefront/internal/product/store"
)

func seedCatalog(t *testing.T, products ...product.Product) *store.MemoryStore {
	t.Helper()
	catalog := store.NewMemoryStore()
	for _, p := range products {
		_, err := catalog.InsertProduct(context.Background(), p)
		require.NoError(t, err)
	}
	return catalog
}

func TestResolveComputesLineAndCartTotals(t *testing.T) {
	widget := product.Product{ID: uuid.New(), Name: "widget", Price: decimal.NewFromInt(10), Quantity: 100}
	gadget := product.Product{ID: uuid.New(), Name: "gadget", Price: decimal.NewFromInt(5), Quantity: 100}
	catalog := seedCatalog(t, widget, gadget)
	resolver := NewResolver(catalog)

	crt := cart.Cart{
		Owner: cart.SessionOwner("session-1"),
		Items: []cart.LineItem{
			{ProductID: widget.ID, Quantity: 2},
			{ProductID: gadget.ID, Quantity: 1},
		},
	}

	priced, err := resolver.Resolve(context.Background(), crt)
	require.NoError(t, err)

	require.Len(t, priced.Items, 2)
	assert.True(t, priced.Items[0].LineTotal.Equal(decimal.NewFromInt(20)))
	assert.True(t, priced.Items[1].LineTotal.Equal(decimal.NewFromInt(5)))
	assert.True(t, priced.Total.Equal(decimal.NewFromInt(25)), "total should be the exact sum of line totals")
}

func TestResolveReflectsCurrentCatalogPrice(t *testing.T) {
	widget := product.Product{ID: uuid.New(), Name: "widget", Price: decimal.NewFromInt(10), Quantity: 100}
	catalog := seedCatalog(t, widget)
	resolver := NewResolver(catalog)

	crt := cart.Cart{
		Owner: cart.SessionOwner("session-1"),
		Items: []cart.LineItem{{ProductID: widget.ID, Quantity: 1}},
	}

	before, err := resolver.Resolve(context.Background(), crt)
	require.NoError(t, err)
	assert.True(t, before.Total.Equal(decimal.NewFromInt(10)))

	widget.Price = decimal.NewFromInt(12)
	_, err = catalog.InsertProduct(context.Background(), widget)
	require.NoError(t, err)

	after, err := resolver.Resolve(context.Background(), crt)
	require.NoError(t, err)
	assert.True(t, after.Total.Equal(decimal.NewFromInt(12)), "a later view should price against the current catalog")
}

func TestResolveFailsWhenProductUnavailable(t *testing.T) {
	catalog := seedCatalog(t)
	resolver := NewResolver(catalog)

	missing := uuid.New()
	crt := cart.Cart{
		Owner: cart.SessionOwner("session-1"),
		Items: []cart.LineItem{{ProductID: missing, Quantity: 1}},
	}

	_, err := resolver.Resolve(context.Background(), crt)
	require.ErrorIs(t, err, inErrors.ErrProductUnavailable)

	var unavailable inErrors.ProductUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, missing, unavailable.ProductID)
}

func TestResolveEmptyCart(t *testing.T) {
	resolver := NewResolver(seedCatalog(t))

	priced, err := resolver.Resolve(context.Background(), cart.Cart{Owner: cart.SessionOwner("s")})
	require.NoError(t, err)
	assert.Empty(t, priced.Items)
	assert.True(t, priced.Total.IsZero())
}
