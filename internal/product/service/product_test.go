package service

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgestore/storefront/internal/product/store"
	"github.com/edgestore/storefront/pkg/request"
)

// testCacheClient points at a closed port so cache calls fail fast and the
// service falls through to the store.
func testCacheClient() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
}

func TestFindProductsFiltersByCategory(t *testing.T) {
	svc := NewProductService(store.NewMemoryStore(), testCacheClient())

	widget, err := svc.InsertProduct(context.Background(), request.Product{
		Name:     "widget",
		Category: "tools",
		Price:    decimal.NewFromInt(10),
		Quantity: 5,
	})
	require.NoError(t, err)
	_, err = svc.InsertProduct(context.Background(), request.Product{
		Name:     "gizmo",
		Category: "toys",
		Price:    decimal.NewFromInt(5),
		Quantity: 5,
	})
	require.NoError(t, err)

	all, err := svc.FindProducts(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	tools, err := svc.FindProducts(context.Background(), "tools")
	require.NoError(t, err)
	require.Len(t, tools, 1)
	assert.Equal(t, widget.ID, tools[0].ID)
	assert.Equal(t, "tools", tools[0].Category)

	empty, err := svc.FindProducts(context.Background(), "groceries")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestInsertProductCarriesCategory(t *testing.T) {
	svc := NewProductService(store.NewMemoryStore(), testCacheClient())

	inserted, err := svc.InsertProduct(context.Background(), request.Product{
		Name:     "widget",
		Category: "tools",
		Price:    decimal.NewFromInt(10),
		Quantity: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, "tools", inserted.Category)

	found, err := svc.GetProduct(context.Background(), inserted.ID)
	require.NoError(t, err)
	assert.Equal(t, "tools", found.Category)
}
