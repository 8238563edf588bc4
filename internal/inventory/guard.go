package inventory

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/edgestore/storefront/internal/cart"
	inErrors "github.com/edgestore/storefront/internal/errors"
)

// Reservation is an ephemeral hold against available stock. It lives only for
// the duration of a checkout and is always either committed or released.
type Reservation struct {
	ID        uuid.UUID
	ProductID uuid.UUID
	Quantity  int32
}

// stockEntry carries its own mutex so contention for one popular product never
// blocks reservations of unrelated products. The critical section is exactly
// check stock, decrement, record handle.
type stockEntry struct {
	mu        sync.Mutex
	available int32
}

// Guard owns the authoritative in-process stock counters and is the sole
// component performing the check-then-decrement sequence.
type Guard struct {
	mu     sync.RWMutex
	stocks map[uuid.UUID]*stockEntry

	resMu       sync.Mutex
	outstanding map[uuid.UUID]Reservation
}

func NewGuard() *Guard {
	return &Guard{
		stocks:      map[uuid.UUID]*stockEntry{},
		outstanding: map[uuid.UUID]Reservation{},
	}
}

// SetStock seeds or resets the available count for a product.
func (g *Guard) SetStock(productId uuid.UUID, quantity int32) {
	g.mu.Lock()
	defer g.mu.Unlock()

	entry, ok := g.stocks[productId]
	if !ok {
		g.stocks[productId] = &stockEntry{available: quantity}
		return
	}
	entry.mu.Lock()
	entry.available = quantity
	entry.mu.Unlock()
}

func (g *Guard) Available(productId uuid.UUID) (int32, bool) {
	g.mu.RLock()
	entry, ok := g.stocks[productId]
	g.mu.RUnlock()
	if !ok {
		return 0, false
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.available, true
}

func (g *Guard) entry(productId uuid.UUID) (*stockEntry, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	entry, ok := g.stocks[productId]
	return entry, ok
}

// Reserve atomically checks and decrements available stock, returning a handle
// for the held units.
func (g *Guard) Reserve(productId uuid.UUID, quantity int32) (Reservation, error) {
	if quantity <= 0 {
		return Reservation{}, fmt.Errorf(
			"quantity=%d with error=%w",
			quantity,
			inErrors.ErrInvalidQuantity,
		)
	}

	entry, ok := g.entry(productId)
	if !ok {
		return Reservation{}, inErrors.ProductUnavailableError{ProductID: productId}
	}

	entry.mu.Lock()
	if entry.available < quantity {
		available := entry.available
		entry.mu.Unlock()
		return Reservation{}, inErrors.InsufficientStockError{
			ProductID: productId,
			Requested: quantity,
			Available: available,
		}
	}
	entry.available -= quantity
	entry.mu.Unlock()

	reservation := Reservation{ID: uuid.New(), ProductID: productId, Quantity: quantity}
	g.resMu.Lock()
	g.outstanding[reservation.ID] = reservation
	g.resMu.Unlock()

	return reservation, nil
}

// ReserveAll reserves every line item or none: when a reservation fails
// partway, every handle acquired earlier in the batch is released before the
// failure surfaces, under all exit paths.
func (g *Guard) ReserveAll(items []cart.LineItem) (handles []Reservation, err error) {
	acquired := make([]Reservation, 0, len(items))
	defer func() {
		if err != nil {
			g.Release(acquired)
		}
	}()

	for _, item := range items {
		var reservation Reservation
		reservation, err = g.Reserve(item.ProductID, item.Quantity)
		if err != nil {
			return nil, err
		}
		acquired = append(acquired, reservation)
	}

	return acquired, nil
}

// Commit makes reservations permanent. Stock was already decremented at
// reserve time, so only the bookkeeping entry is discarded.
func (g *Guard) Commit(handles []Reservation) {
	g.resMu.Lock()
	defer g.resMu.Unlock()
	for _, handle := range handles {
		delete(g.outstanding, handle.ID)
	}
}

// Release restores stock for reservations that will not be committed. Handles
// already committed or released are skipped, so Release is safe to call on a
// partially rolled-back batch.
func (g *Guard) Release(handles []Reservation) {
	for _, handle := range handles {
		g.resMu.Lock()
		_, live := g.outstanding[handle.ID]
		delete(g.outstanding, handle.ID)
		g.resMu.Unlock()
		if !live {
			continue
		}

		entry, ok := g.entry(handle.ProductID)
		if !ok {
			continue
		}
		entry.mu.Lock()
		entry.available += handle.Quantity
		entry.mu.Unlock()
	}
}
