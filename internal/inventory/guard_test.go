package inventory

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgestore/storefront/internal/cart"
	inErrors "github.com/edgestore/storefront/internal/errors"
)

func TestReserveDecrementsAvailable(t *testing.T) {
	guard := NewGuard()
	productId := uuid.New()
	guard.SetStock(productId, 10)

	handle, err := guard.Reserve(productId, 4)
	require.NoError(t, err)
	assert.Equal(t, productId, handle.ProductID)

	available, ok := guard.Available(productId)
	require.True(t, ok)
	assert.EqualValues(t, 6, available)
}

func TestReserveInsufficientStock(t *testing.T) {
	guard := NewGuard()
	productId := uuid.New()
	guard.SetStock(productId, 3)

	_, err := guard.Reserve(productId, 5)
	require.ErrorIs(t, err, inErrors.ErrInsufficientStock)

	var stockErr inErrors.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.EqualValues(t, 5, stockErr.Requested)
	assert.EqualValues(t, 3, stockErr.Available)

	available, _ := guard.Available(productId)
	assert.EqualValues(t, 3, available, "failed reserve should not change stock")
}

func TestReserveUnknownProduct(t *testing.T) {
	guard := NewGuard()

	_, err := guard.Reserve(uuid.New(), 1)
	assert.ErrorIs(t, err, inErrors.ErrProductUnavailable)
}

func TestReserveAllRollsBackOnPartialFailure(t *testing.T) {
	guard := NewGuard()
	first, second := uuid.New(), uuid.New()
	guard.SetStock(first, 10)
	guard.SetStock(second, 1)

	_, err := guard.ReserveAll([]cart.LineItem{
		{ProductID: first, Quantity: 5},
		{ProductID: second, Quantity: 2},
	})
	require.ErrorIs(t, err, inErrors.ErrInsufficientStock)

	firstAvailable, _ := guard.Available(first)
	secondAvailable, _ := guard.Available(second)
	assert.EqualValues(t, 10, firstAvailable, "earlier reservations should be released")
	assert.EqualValues(t, 1, secondAvailable)
}

func TestReleaseRestoresStock(t *testing.T) {
	guard := NewGuard()
	productId := uuid.New()
	guard.SetStock(productId, 5)

	handle, err := guard.Reserve(productId, 5)
	require.NoError(t, err)

	guard.Release([]Reservation{handle})

	available, _ := guard.Available(productId)
	assert.EqualValues(t, 5, available)
}

func TestReleaseAfterCommitIsIgnored(t *testing.T) {
	guard := NewGuard()
	productId := uuid.New()
	guard.SetStock(productId, 5)

	handle, err := guard.Reserve(productId, 5)
	require.NoError(t, err)

	guard.Commit([]Reservation{handle})
	guard.Release([]Reservation{handle})

	available, _ := guard.Available(productId)
	assert.EqualValues(t, 0, available, "committed units must not return to stock")
}

func TestConcurrentReserveSingleUnit(t *testing.T) {
	guard := NewGuard()
	productId := uuid.New()
	guard.SetStock(productId, 1)

	workers := 32
	succeeded := make(chan Reservation, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			handle, err := guard.Reserve(productId, 1)
			if err == nil {
				succeeded <- handle
			}
		}()
	}
	wg.Wait()
	close(succeeded)

	wins := 0
	for range succeeded {
		wins++
	}
	assert.Equal(t, 1, wins, "exactly one reservation should win the last unit")

	available, _ := guard.Available(productId)
	assert.EqualValues(t, 0, available)
}

func TestConcurrentReserveNeverOversells(t *testing.T) {
	guard := NewGuard()
	productId := uuid.New()
	guard.SetStock(productId, 20)

	workers := 50
	reserved := make(chan int32, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			if _, err := guard.Reserve(productId, 3); err == nil {
				reserved <- 3
			}
		}()
	}
	wg.Wait()
	close(reserved)

	var total int32
	for q := range reserved {
		total += q
	}
	assert.LessOrEqual(t, total, int32(20))

	available, _ := guard.Available(productId)
	assert.EqualValues(t, 20-total, available)
}
