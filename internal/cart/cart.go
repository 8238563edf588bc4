package cart

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	inErrors "github.com/edgestore/storefront/internal/errors"
)

// OwnerKey distinguishes whose cart is being operated on. A session identifier
// owns the cart before login, the account identifier after.
type OwnerKey string

func SessionOwner(sessionId string) OwnerKey {
	return OwnerKey("session:" + sessionId)
}

func AccountOwner(accountId uuid.UUID) OwnerKey {
	return OwnerKey("account:" + accountId.String())
}

// SnapshotKey is the redis key holding the serialized cart for an owner.
// Shared by the cart service (writes) and the checkout orchestrator (clears
// it after the order is durable).
func SnapshotKey(owner OwnerKey) string {
	return fmt.Sprintf("carts:%s", owner)
}

// LineItem carries no price: unit prices are resolved from the catalog at view
// and checkout time, never stored on the cart.
type LineItem struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int32     `json:"quantity"`
}

type Cart struct {
	Owner          OwnerKey   `json:"owner"`
	Items          []LineItem `json:"items"`
	LastModifiedAt time.Time  `json:"lastModifiedAt"`
}

func (crt Cart) IsEmpty() bool {
	return len(crt.Items) == 0
}

// Store holds one cart per owner key. Every read-modify-write of a cart runs
// under that owner's lock so concurrent mutations against the same key
// accumulate instead of overwriting each other.
type Store struct {
	mu    sync.Mutex
	carts map[OwnerKey]*Cart
	locks map[OwnerKey]*sync.Mutex
}

func NewStore() *Store {
	return &Store{
		carts: map[OwnerKey]*Cart{},
		locks: map[OwnerKey]*sync.Mutex{},
	}
}

func (s *Store) ownerLock(owner OwnerKey) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[owner]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[owner] = lock
	}
	return lock
}

func (s *Store) cart(owner OwnerKey) *Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	crt, ok := s.carts[owner]
	if !ok {
		crt = &Cart{Owner: owner}
		s.carts[owner] = crt
	}
	return crt
}

func (s *Store) AddItem(owner OwnerKey, productId uuid.UUID, quantity int32) error {
	if quantity <= 0 {
		return fmt.Errorf("quantity=%d with error=%w", quantity, inErrors.ErrInvalidQuantity)
	}

	lock := s.ownerLock(owner)
	lock.Lock()
	defer lock.Unlock()

	crt := s.cart(owner)
	for i, item := range crt.Items {
		if item.ProductID == productId {
			crt.Items[i].Quantity += quantity
			crt.LastModifiedAt = time.Now()
			return nil
		}
	}
	crt.Items = append(crt.Items, LineItem{ProductID: productId, Quantity: quantity})
	crt.LastModifiedAt = time.Now()
	return nil
}

// UpdateQuantity sets the line quantity; zero removes the line.
func (s *Store) UpdateQuantity(owner OwnerKey, productId uuid.UUID, quantity int32) error {
	if quantity < 0 {
		return fmt.Errorf("quantity=%d with error=%w", quantity, inErrors.ErrInvalidQuantity)
	}
	if quantity == 0 {
		return s.RemoveItem(owner, productId)
	}

	lock := s.ownerLock(owner)
	lock.Lock()
	defer lock.Unlock()

	crt := s.cart(owner)
	for i, item := range crt.Items {
		if item.ProductID == productId {
			crt.Items[i].Quantity = quantity
			crt.LastModifiedAt = time.Now()
			return nil
		}
	}
	return fmt.Errorf("productId=%s with error=%w", productId.String(), inErrors.ErrNotFound)
}

func (s *Store) RemoveItem(owner OwnerKey, productId uuid.UUID) error {
	lock := s.ownerLock(owner)
	lock.Lock()
	defer lock.Unlock()

	crt := s.cart(owner)
	for i, item := range crt.Items {
		if item.ProductID == productId {
			crt.Items = append(crt.Items[:i], crt.Items[i+1:]...)
			crt.LastModifiedAt = time.Now()
			return nil
		}
	}
	return fmt.Errorf("productId=%s with error=%w", productId.String(), inErrors.ErrNotFound)
}

// Clear empties the cart. Clearing an absent or already-empty cart is a no-op
// so checkout can retry it safely.
func (s *Store) Clear(owner OwnerKey) {
	lock := s.ownerLock(owner)
	lock.Lock()
	defer lock.Unlock()

	crt := s.cart(owner)
	if len(crt.Items) == 0 {
		return
	}
	crt.Items = nil
	crt.LastModifiedAt = time.Now()
}

// Get returns a copy; callers never observe later mutations.
func (s *Store) Get(owner OwnerKey) Cart {
	lock := s.ownerLock(owner)
	lock.Lock()
	defer lock.Unlock()

	crt := s.cart(owner)
	items := make([]LineItem, len(crt.Items))
	copy(items, crt.Items)
	return Cart{Owner: crt.Owner, Items: items, LastModifiedAt: crt.LastModifiedAt}
}

// Replace swaps the owner's line items wholesale. Used when rehydrating a cart
// snapshot; quantities below one are dropped.
func (s *Store) Replace(owner OwnerKey, items []LineItem) {
	lock := s.ownerLock(owner)
	lock.Lock()
	defer lock.Unlock()

	crt := s.cart(owner)
	crt.Items = nil
	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}
		crt.Items = append(crt.Items, item)
	}
	crt.LastModifiedAt = time.Now()
}

// Merge folds the session cart into the account cart on login. Quantities for
// products present in both carts are summed; products only in the session cart
// are copied over; the session cart is emptied. A second call with the same
// session key is a no-op because the session cart is already empty.
func (s *Store) Merge(sessionOwner, accountOwner OwnerKey) Cart {
	first, second := s.ownerLock(sessionOwner), s.ownerLock(accountOwner)
	if accountOwner < sessionOwner {
		first, second = second, first
	}
	first.Lock()
	defer first.Unlock()
	if first != second {
		second.Lock()
		defer second.Unlock()
	}

	session := s.cart(sessionOwner)
	account := s.cart(accountOwner)

	for _, item := range session.Items {
		merged := false
		for i, existing := range account.Items {
			if existing.ProductID == item.ProductID {
				account.Items[i].Quantity += item.Quantity
				merged = true
				break
			}
		}
		if !merged {
			account.Items = append(account.Items, item)
		}
	}
	if !session.IsEmpty() {
		session.Items = nil
		session.LastModifiedAt = time.Now()
		account.LastModifiedAt = time.Now()
	}

	items := make([]LineItem, len(account.Items))
	copy(items, account.Items)
	return Cart{Owner: account.Owner, Items: items, LastModifiedAt: account.LastModifiedAt}
}
