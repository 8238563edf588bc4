package cart

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	inErrors "github.com/edgestore/storefront/internal/errors"
)

func TestAddItemAccumulatesQuantity(t *testing.T) {
	store := NewStore()
	owner := SessionOwner("session-1")
	productId := uuid.New()

	require.NoError(t, store.AddItem(owner, productId, 2))
	require.NoError(t, store.AddItem(owner, productId, 3))

	crt := store.Get(owner)
	require.Len(t, crt.Items, 1)
	assert.EqualValues(t, 5, crt.Items[0].Quantity)
}

func TestAddItemRejectsNonPositiveQuantity(t *testing.T) {
	store := NewStore()
	owner := SessionOwner("session-1")

	err := store.AddItem(owner, uuid.New(), 0)
	assert.ErrorIs(t, err, inErrors.ErrInvalidQuantity)

	err = store.AddItem(owner, uuid.New(), -3)
	assert.ErrorIs(t, err, inErrors.ErrInvalidQuantity)

	assert.True(t, store.Get(owner).IsEmpty(), "invalid adds should not create lines")
}

func TestUpdateQuantity(t *testing.T) {
	owner := AccountOwner(uuid.New())
	productId := uuid.New()

	tests := []struct {
		name        string
		quantity    int32
		expectedErr error
		expectedLen int
	}{
		{name: "positive quantity replaces the line", quantity: 7, expectedLen: 1},
		{name: "zero quantity removes the line", quantity: 0, expectedLen: 0},
		{name: "negative quantity is rejected", quantity: -1, expectedErr: inErrors.ErrInvalidQuantity, expectedLen: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewStore()
			require.NoError(t, store.AddItem(owner, productId, 2))

			err := store.UpdateQuantity(owner, productId, tt.quantity)
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
			} else {
				assert.NoError(t, err)
			}

			crt := store.Get(owner)
			assert.Len(t, crt.Items, tt.expectedLen)
			if tt.expectedLen == 1 && tt.expectedErr == nil {
				assert.EqualValues(t, tt.quantity, crt.Items[0].Quantity)
			}
		})
	}
}

func TestUpdateQuantityMissingLine(t *testing.T) {
	store := NewStore()
	owner := SessionOwner("session-1")

	err := store.UpdateQuantity(owner, uuid.New(), 4)
	assert.ErrorIs(t, err, inErrors.ErrNotFound)
}

func TestRemoveItemMissingLine(t *testing.T) {
	store := NewStore()
	owner := SessionOwner("session-1")

	err := store.RemoveItem(owner, uuid.New())
	assert.ErrorIs(t, err, inErrors.ErrNotFound)
}

func TestClearIsIdempotent(t *testing.T) {
	store := NewStore()
	owner := AccountOwner(uuid.New())
	require.NoError(t, store.AddItem(owner, uuid.New(), 1))

	store.Clear(owner)
	store.Clear(owner)

	assert.True(t, store.Get(owner).IsEmpty())
}

func TestGetReturnsCopy(t *testing.T) {
	store := NewStore()
	owner := SessionOwner("session-1")
	productId := uuid.New()
	require.NoError(t, store.AddItem(owner, productId, 1))

	crt := store.Get(owner)
	crt.Items[0].Quantity = 99

	assert.EqualValues(t, 1, store.Get(owner).Items[0].Quantity)
}

func TestConcurrentAddsAccumulate(t *testing.T) {
	store := NewStore()
	owner := AccountOwner(uuid.New())
	productId := uuid.New()

	workers := 50
	var wg sync.WaitGroup
	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			_ = store.AddItem(owner, productId, 1)
		}()
	}
	wg.Wait()

	crt := store.Get(owner)
	require.Len(t, crt.Items, 1)
	assert.EqualValues(t, workers, crt.Items[0].Quantity)
}

func TestMergeSumsSharedProducts(t *testing.T) {
	store := NewStore()
	sessionOwner := SessionOwner("session-1")
	accountOwner := AccountOwner(uuid.New())
	shared := uuid.New()
	sessionOnly := uuid.New()

	require.NoError(t, store.AddItem(sessionOwner, shared, 2))
	require.NoError(t, store.AddItem(sessionOwner, sessionOnly, 1))
	require.NoError(t, store.AddItem(accountOwner, shared, 3))

	merged := store.Merge(sessionOwner, accountOwner)

	quantities := map[uuid.UUID]int32{}
	for _, item := range merged.Items {
		quantities[item.ProductID] = item.Quantity
	}
	assert.EqualValues(t, 5, quantities[shared])
	assert.EqualValues(t, 1, quantities[sessionOnly])
	assert.True(t, store.Get(sessionOwner).IsEmpty(), "session cart should be emptied")
}

func TestMergeIsIdempotent(t *testing.T) {
	store := NewStore()
	sessionOwner := SessionOwner("session-1")
	accountOwner := AccountOwner(uuid.New())
	productId := uuid.New()

	require.NoError(t, store.AddItem(sessionOwner, productId, 2))

	first := store.Merge(sessionOwner, accountOwner)
	second := store.Merge(sessionOwner, accountOwner)

	assert.EqualValues(t, first.Items, second.Items, "replayed merge should not change the account cart")
	require.Len(t, second.Items, 1)
	assert.EqualValues(t, 2, second.Items[0].Quantity)
}

func TestConcurrentMergeAndAdd(t *testing.T) {
	store := NewStore()
	sessionOwner := SessionOwner("session-1")
	accountOwner := AccountOwner(uuid.New())
	productId := uuid.New()

	require.NoError(t, store.AddItem(sessionOwner, productId, 10))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		store.Merge(sessionOwner, accountOwner)
	}()
	go func() {
		defer wg.Done()
		_ = store.AddItem(accountOwner, productId, 5)
	}()
	wg.Wait()

	crt := store.Get(accountOwner)
	require.Len(t, crt.Items, 1)
	assert.EqualValues(t, 15, crt.Items[0].Quantity)
}
