package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	inErrors "github.com/edgestore/storefront/internal/errors"
	"github.com/edgestore/storefront/internal/product"
)

// MemoryStore keeps the catalog in process memory. Used by tests and the
// cacheless development profile.
type MemoryStore struct {
	mu       sync.RWMutex
	products map[uuid.UUID]product.Product
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{products: map[uuid.UUID]product.Product{}}
}

func (s *MemoryStore) FindProductById(
	c context.Context,
	productId uuid.UUID,
) (product.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[productId]
	if !ok {
		return product.Product{}, fmt.Errorf(
			"productId=%s with error=%w",
			productId.String(),
			inErrors.ErrNotFound,
		)
	}
	return p, nil
}

// GetProduct lets the memory store stand in as a catalog Reader when no cache
// tier is wired.
func (s *MemoryStore) GetProduct(c context.Context, productId uuid.UUID) (product.Product, error) {
	return s.FindProductById(c, productId)
}

func (s *MemoryStore) FindProducts(c context.Context, category string) ([]product.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]product.Product, 0, len(s.products))
	for _, p := range s.products {
		if category != "" && p.Category != category {
			continue
		}
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].Name < products[j].Name })
	return products, nil
}

func (s *MemoryStore) InsertProduct(
	c context.Context,
	p product.Product,
) (product.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	s.products[p.ID] = p
	return p, nil
}

func (s *MemoryStore) ReduceStock(c context.Context, updates []product.StockUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, update := range updates {
		p, ok := s.products[update.ProductID]
		if !ok {
			return fmt.Errorf(
				"productId=%s with error=%w",
				update.ProductID.String(),
				inErrors.ErrNotFound,
			)
		}
		p.Quantity -= update.Quantity
		p.UpdatedAt = time.Now()
		s.products[update.ProductID] = p
	}
	return nil
}
