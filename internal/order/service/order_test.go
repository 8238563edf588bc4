package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	inErrors "github.com/edgestore/storefront/internal/errors"
	"github.com/edgestore/storefront/internal/order"
	"github.com/edgestore/storefront/internal/order/repository"
)

func seedOrder(t *testing.T, repo order.Repository, accountId uuid.UUID, createdAt time.Time) order.Order {
	t.Helper()
	o := order.Order{
		ID:        uuid.New(),
		AccountID: accountId,
		Items: []order.LineItem{
			{
				ID:        uuid.New(),
				ProductID: uuid.New(),
				Quantity:  1,
				UnitPrice: decimal.NewFromInt(10),
				LineTotal: decimal.NewFromInt(10),
			},
		},
		Total:     decimal.NewFromInt(10),
		Status:    order.StatusPlaced,
		CreatedAt: createdAt,
	}
	o.Items[0].OrderID = o.ID
	require.NoError(t, repo.Create(context.Background(), o))
	return o
}

func TestCancelOrder(t *testing.T) {
	repo := repository.NewMemoryRepository()
	svc := NewOrderService(repo, testCacheClient())
	accountId := uuid.New()
	placed := seedOrder(t, repo, accountId, time.Now())

	cancelled, err := svc.CancelOrder(context.Background(), accountId, placed.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusCancelled, cancelled.Status)

	persisted, err := repo.FindById(context.Background(), placed.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusCancelled, persisted.Status)
}

func TestCancelOrderAlreadyCancelled(t *testing.T) {
	repo := repository.NewMemoryRepository()
	svc := NewOrderService(repo, testCacheClient())
	accountId := uuid.New()
	placed := seedOrder(t, repo, accountId, time.Now())

	_, err := svc.CancelOrder(context.Background(), accountId, placed.ID)
	require.NoError(t, err)

	_, err = svc.CancelOrder(context.Background(), accountId, placed.ID)
	assert.ErrorIs(t, err, inErrors.ErrAlreadyCancelled)
}

func TestCancelOrderUnknownOrder(t *testing.T) {
	svc := NewOrderService(repository.NewMemoryRepository(), testCacheClient())

	_, err := svc.CancelOrder(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, inErrors.ErrNotFound)
}

func TestCancelOrderOwnedByAnotherAccount(t *testing.T) {
	repo := repository.NewMemoryRepository()
	svc := NewOrderService(repo, testCacheClient())
	placed := seedOrder(t, repo, uuid.New(), time.Now())

	_, err := svc.CancelOrder(context.Background(), uuid.New(), placed.ID)
	assert.ErrorIs(t, err, inErrors.ErrNotFound, "foreign orders must look like missing ones")

	persisted, err := repo.FindById(context.Background(), placed.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusPlaced, persisted.Status)
}

func TestFindOrdersNewestFirst(t *testing.T) {
	repo := repository.NewMemoryRepository()
	svc := NewOrderService(repo, testCacheClient())
	accountId := uuid.New()

	older := seedOrder(t, repo, accountId, time.Now().Add(-time.Hour))
	newer := seedOrder(t, repo, accountId, time.Now())
	seedOrder(t, repo, uuid.New(), time.Now())

	orders, err := svc.FindOrders(context.Background(), accountId)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, newer.ID, orders[0].ID)
	assert.Equal(t, older.ID, orders[1].ID)
}

func TestFindOrdersEmptyAccount(t *testing.T) {
	svc := NewOrderService(repository.NewMemoryRepository(), testCacheClient())

	orders, err := svc.FindOrders(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, orders)
}
