package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	inErrors "github.com/edgestore/storefront/internal/errors"
	"github.com/edgestore/storefront/internal/order"
)

// MemoryRepository keeps orders in process memory. It backs tests and
// local runs without a database.
type MemoryRepository struct {
	mu     sync.RWMutex
	orders map[uuid.UUID]order.Order
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{orders: map[uuid.UUID]order.Order{}}
}

func (r *MemoryRepository) Create(c context.Context, o order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[o.ID]; ok {
		return fmt.Errorf("orderId=%s with error=%w", o.ID.String(), inErrors.ErrDuplicateOrder)
	}
	items := make([]order.LineItem, len(o.Items))
	copy(items, o.Items)
	o.Items = items
	r.orders[o.ID] = o
	return nil
}

func (r *MemoryRepository) Cancel(c context.Context, orderId uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[orderId]
	if !ok {
		return fmt.Errorf("orderId=%s with error=%w", orderId.String(), inErrors.ErrNotFound)
	}
	if o.Status == order.StatusCancelled {
		return fmt.Errorf("orderId=%s with error=%w", orderId.String(), inErrors.ErrAlreadyCancelled)
	}
	o.Status = order.StatusCancelled
	r.orders[orderId] = o
	return nil
}

func (r *MemoryRepository) FindById(c context.Context, orderId uuid.UUID) (order.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[orderId]
	if !ok {
		return order.Order{}, fmt.Errorf(
			"orderId=%s with error=%w",
			orderId.String(),
			inErrors.ErrNotFound,
		)
	}
	items := make([]order.LineItem, len(o.Items))
	copy(items, o.Items)
	o.Items = items
	return o, nil
}

func (r *MemoryRepository) FindByAccount(
	c context.Context,
	accountId uuid.UUID,
) ([]order.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orders := []order.Order{}
	for _, o := range r.orders {
		if o.AccountID != accountId {
			continue
		}
		items := make([]order.LineItem, len(o.Items))
		copy(items, o.Items)
		o.Items = items
		orders = append(orders, o)
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}
