package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/imrishuroy/go-storefront/internal/apperr"
	"github.com/imrishuroy/go-storefront/internal/models"
)

func (s *Store) DecreaseStock(ctx context.Context, skuID int64, amount int) (int64, error) {
	var n int64
	err := s.direct(func(tx *txStore) error {
		var err error
		n, err = tx.DecreaseStock(ctx, skuID, amount)
		return err
	})
	return n, err
}

func (s *Store) IncreaseStock(ctx context.Context, skuID int64, amount int) error {
	return s.direct(func(tx *txStore) error { return tx.IncreaseStock(ctx, skuID, amount) })
}

func (s *Store) GetSku(ctx context.Context, skuID int64) (*models.ProductSku, error) {
	var sku *models.ProductSku
	err := s.direct(func(tx *txStore) error {
		var err error
		sku, err = tx.GetSku(ctx, skuID)
		return err
	})
	return sku, err
}

// GetAddress returns the address only if it belongs to userID.
func (s *Store) GetAddress(_ context.Context, userID, addressID int64) (*models.UserAddress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.d.addresses[addressID]
	if !ok || a.UserID != userID {
		return nil, fmt.Errorf("address %d: %w", addressID, apperr.ErrNotFound)
	}
	return &a, nil
}

func (s *Store) GetCategory(_ context.Context, id int64) (*models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.d.categories[id]
	if !ok {
		return nil, fmt.Errorf("category %d: %w", id, apperr.ErrNotFound)
	}
	return &c, nil
}

// ProductsByIDs returns the products that exist among ids, ordered by id.
func (s *Store) ProductsByIDs(_ context.Context, ids []int64) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := s.d.products[id]; ok {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// GetOrder returns the order with its items.
func (s *Store) GetOrder(_ context.Context, id int64) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.d.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %d: %w", id, apperr.ErrNotFound)
	}
	o.Items = append([]models.OrderItem(nil), s.d.orderItems[id]...)
	return &o, nil
}

// ListOrders returns one page of the user's orders, newest first, with their
// items, and the user's total order count.
func (s *Store) ListOrders(_ context.Context, userID int64, limit, offset int) ([]models.Order, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	mine := []models.Order{}
	for _, o := range s.d.orders {
		if o.UserID == userID {
			mine = append(mine, o)
		}
	}
	sort.Slice(mine, func(i, j int) bool {
		if !mine[i].CreatedAt.Equal(mine[j].CreatedAt) {
			return mine[i].CreatedAt.After(mine[j].CreatedAt)
		}
		return mine[i].ID > mine[j].ID
	})

	total := int64(len(mine))
	if offset >= len(mine) {
		return []models.Order{}, total, nil
	}
	mine = mine[offset:]
	if limit < len(mine) {
		mine = mine[:limit]
	}
	for i := range mine {
		mine[i].Items = append([]models.OrderItem(nil), s.d.orderItems[mine[i].ID]...)
	}
	return mine, total, nil
}

func (s *Store) GetProduct(_ context.Context, id int64) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.d.products[id]
	if !ok {
		return nil, fmt.Errorf("product %d: %w", id, apperr.ErrNotFound)
	}
	return &p, nil
}

// ListSkus returns the SKUs of productID ordered by id.
func (s *Store) ListSkus(_ context.Context, productID int64) ([]models.ProductSku, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.d.products[productID]
	out := []models.ProductSku{}
	for _, sku := range s.d.skus {
		if sku.ProductID == productID {
			sku.ProductType, sku.ProductOnSale = p.Type, p.OnSale
			out = append(out, sku)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// UpsertCartItem adds amount to the user's row for skuID, creating it if needed.
func (s *Store) UpsertCartItem(_ context.Context, userID, skuID int64, amount int, at time.Time) (*models.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, ci := range s.d.cartItems {
		if ci.UserID == userID && ci.ProductSkuID == skuID {
			ci.Amount += amount
			ci.UpdatedAt = at
			s.d.cartItems[id] = ci
			return &ci, nil
		}
	}
	ci := models.CartItem{
		ID:           s.d.nextID(),
		UserID:       userID,
		ProductSkuID: skuID,
		Amount:       amount,
		CreatedAt:    at,
		UpdatedAt:    at,
	}
	s.d.cartItems[ci.ID] = ci
	return &ci, nil
}

func (s *Store) RemoveCartItems(ctx context.Context, userID int64, skuIDs []int64) (int64, error) {
	var n int64
	err := s.direct(func(tx *txStore) error {
		var err error
		n, err = tx.RemoveCartItems(ctx, userID, skuIDs)
		return err
	})
	return n, err
}

// ListCartItems returns the user's cart, oldest row first.
func (s *Store) ListCartItems(_ context.Context, userID int64) ([]models.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.CartItem
	for _, ci := range s.d.cartItems {
		if ci.UserID == userID {
			out = append(out, ci)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// CrowdfundingProgress sums the totals and counts the distinct buyers of paid
// crowdfunding orders that contain productID.
func (s *Store) CrowdfundingProgress(_ context.Context, productID int64) (models.CrowdfundingProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	users := map[int64]bool{}
	for id, o := range s.d.orders {
		if o.Type != models.OrderTypeCrowdfunding || o.PaidAt == nil {
			continue
		}
		for _, it := range s.d.orderItems[id] {
			if it.ProductID == productID {
				total = total.Add(o.TotalAmount)
				users[o.UserID] = true
				break
			}
		}
	}
	return models.CrowdfundingProgress{TotalAmount: total, UserCount: len(users)}, nil
}

func (s *Store) UpdateCrowdfundingProgress(_ context.Context, productID int64, p models.CrowdfundingProgress) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cf, ok := s.d.crowdfundings[productID]
	if !ok {
		return fmt.Errorf("crowdfunding for product %d: %w", productID, apperr.ErrNotFound)
	}
	cf.TotalAmount = p.TotalAmount
	cf.UserCount = p.UserCount
	s.d.crowdfundings[productID] = cf
	return nil
}
