package memory

import (
	"fmt"
	"time"

	"github.com/imrishuroy/go-storefront/internal/apperr"
	"github.com/imrishuroy/go-storefront/internal/models"
)

// The helpers below load fixtures and read raw rows back. A zero ID is
// replaced by the next sequence value.

func (s *Store) PutProduct(p models.Product) models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.assign(p.ID)
	s.d.products[p.ID] = p
	return p
}

func (s *Store) PutSku(sku models.ProductSku) models.ProductSku {
	s.mu.Lock()
	defer s.mu.Unlock()
	sku.ID = s.assign(sku.ID)
	sku.ProductType, sku.ProductOnSale = "", false
	s.d.skus[sku.ID] = sku
	return sku
}

func (s *Store) PutCategory(c models.Category) models.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.assign(c.ID)
	s.d.categories[c.ID] = c
	return c
}

func (s *Store) PutAddress(a models.UserAddress) models.UserAddress {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = s.assign(a.ID)
	s.d.addresses[a.ID] = a
	return a
}

func (s *Store) PutCartItem(ci models.CartItem) models.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	ci.ID = s.assign(ci.ID)
	s.d.cartItems[ci.ID] = ci
	return ci
}

func (s *Store) PutCrowdfunding(cf models.Crowdfunding) models.Crowdfunding {
	s.mu.Lock()
	defer s.mu.Unlock()
	cf.ID = s.assign(cf.ID)
	s.d.crowdfundings[cf.ProductID] = cf
	return cf
}

// DeleteSku drops a SKU row, as an admin removing a variant would.
func (s *Store) DeleteSku(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.d.skus, id)
}

// MarkPaid stamps paid_at on an order, standing in for the payment system.
func (s *Store) MarkPaid(orderID int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.d.orders[orderID]
	if !ok {
		return fmt.Errorf("order %d: %w", orderID, apperr.ErrNotFound)
	}
	o.PaidAt = &at
	s.d.orders[orderID] = o
	return nil
}

// Stock returns the current stock of skuID, or -1 if it does not exist.
func (s *Store) Stock(skuID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	sku, ok := s.d.skus[skuID]
	if !ok {
		return -1
	}
	return sku.Stock
}

func (s *Store) Address(id int64) (models.UserAddress, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.d.addresses[id]
	return a, ok
}

func (s *Store) Crowdfunding(productID int64) (models.Crowdfunding, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cf, ok := s.d.crowdfundings[productID]
	return cf, ok
}

// OrderCount is the number of committed orders.
func (s *Store) OrderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.d.orders)
}

func (s *Store) assign(id int64) int64 {
	if id == 0 {
		return s.d.nextID()
	}
	s.d.bump(id)
	return id
}
