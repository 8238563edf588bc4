package cart

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	inErrors "github.com/edgestore/storefront/internal/errors"
)

// WishlistStore keeps a per-account set of saved products. Wishlists carry no
// quantities and never touch pricing or stock.
type WishlistStore struct {
	mu        sync.Mutex
	wishlists map[OwnerKey][]uuid.UUID
}

func NewWishlistStore() *WishlistStore {
	return &WishlistStore{wishlists: map[OwnerKey][]uuid.UUID{}}
}

func (s *WishlistStore) Add(owner OwnerKey, productId uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.wishlists[owner] {
		if id == productId {
			return
		}
	}
	s.wishlists[owner] = append(s.wishlists[owner], productId)
}

func (s *WishlistStore) Remove(owner OwnerKey, productId uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.wishlists[owner]
	for i, id := range list {
		if id == productId {
			s.wishlists[owner] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("productId=%s with error=%w", productId.String(), inErrors.ErrNotFound)
}

func (s *WishlistStore) List(owner OwnerKey) []uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := make([]uuid.UUID, len(s.wishlists[owner]))
	copy(list, s.wishlists[owner])
	return list
}
