package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	inErrors "github.com/edgestore/storefront/internal/errors"
	"github.com/edgestore/storefront/internal/order"
)

func TestCreateRejectsDuplicateOrderId(t *testing.T) {
	repo := NewMemoryRepository()
	o := order.Order{
		ID:        uuid.New(),
		AccountID: uuid.New(),
		Total:     decimal.NewFromInt(10),
		Status:    order.StatusPlaced,
	}

	require.NoError(t, repo.Create(context.Background(), o))
	err := repo.Create(context.Background(), o)
	assert.ErrorIs(t, err, inErrors.ErrDuplicateOrder)
}

func TestFindByIdReturnsCopy(t *testing.T) {
	repo := NewMemoryRepository()
	o := order.Order{
		ID:        uuid.New(),
		AccountID: uuid.New(),
		Items: []order.LineItem{
			{ID: uuid.New(), ProductID: uuid.New(), Quantity: 1, UnitPrice: decimal.NewFromInt(2), LineTotal: decimal.NewFromInt(2)},
		},
		Total:  decimal.NewFromInt(2),
		Status: order.StatusPlaced,
	}
	require.NoError(t, repo.Create(context.Background(), o))

	found, err := repo.FindById(context.Background(), o.ID)
	require.NoError(t, err)
	found.Items[0].Quantity = 99

	again, err := repo.FindById(context.Background(), o.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, again.Items[0].Quantity)
}

func TestFindByIdUnknownOrder(t *testing.T) {
	repo := NewMemoryRepository()

	_, err := repo.FindById(context.Background(), uuid.New())
	assert.ErrorIs(t, err, inErrors.ErrNotFound)
}

func TestCancelUnknownOrder(t *testing.T) {
	repo := NewMemoryRepository()

	err := repo.Cancel(context.Background(), uuid.New())
	assert.ErrorIs(t, err, inErrors.ErrNotFound)
}
