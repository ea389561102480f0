package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/imrishuroy/go-storefront/internal/apperr"
	"github.com/imrishuroy/go-storefront/internal/inventory"
	"github.com/imrishuroy/go-storefront/internal/models"
	"github.com/imrishuroy/go-storefront/internal/orders"
)

// txStore operates on one snapshot of the tables.
type txStore struct {
	d *data
}

var _ orders.Tx = (*txStore)(nil)

func (t *txStore) DecreaseStock(_ context.Context, skuID int64, amount int) (int64, error) {
	if err := inventory.ValidateAmount(amount); err != nil {
		return 0, err
	}
	sku, ok := t.d.skus[skuID]
	if !ok || sku.Stock < amount {
		return 0, nil
	}
	sku.Stock -= amount
	t.d.skus[skuID] = sku
	return 1, nil
}

func (t *txStore) IncreaseStock(_ context.Context, skuID int64, amount int) error {
	if err := inventory.ValidateAmount(amount); err != nil {
		return err
	}
	sku, ok := t.d.skus[skuID]
	if !ok {
		return fmt.Errorf("sku %d: %w", skuID, apperr.ErrNotFound)
	}
	sku.Stock += amount
	t.d.skus[skuID] = sku
	return nil
}

func (t *txStore) TouchAddress(_ context.Context, addressID int64, at time.Time) error {
	a, ok := t.d.addresses[addressID]
	if !ok {
		return fmt.Errorf("address %d: %w", addressID, apperr.ErrNotFound)
	}
	a.LastUsedAt = &at
	t.d.addresses[addressID] = a
	return nil
}

func (t *txStore) GetSku(_ context.Context, skuID int64) (*models.ProductSku, error) {
	sku, ok := t.d.skus[skuID]
	if !ok {
		return nil, fmt.Errorf("sku %d: %w", skuID, apperr.ErrNotFound)
	}
	if p, ok := t.d.products[sku.ProductID]; ok {
		sku.ProductType = p.Type
		sku.ProductOnSale = p.OnSale
	}
	return &sku, nil
}

func (t *txStore) CreateOrder(_ context.Context, o *models.Order) error {
	o.ID = t.d.nextID()
	row := *o
	row.Items = nil
	t.d.orders[o.ID] = row
	return nil
}

func (t *txStore) CreateOrderItem(_ context.Context, it *models.OrderItem) error {
	if _, ok := t.d.orders[it.OrderID]; !ok {
		return fmt.Errorf("order %d: %w", it.OrderID, apperr.ErrNotFound)
	}
	it.ID = t.d.nextID()
	t.d.orderItems[it.OrderID] = append(t.d.orderItems[it.OrderID], *it)
	return nil
}

func (t *txStore) FinalizeOrder(_ context.Context, orderID int64, total decimal.Decimal, orderType string) error {
	o, ok := t.d.orders[orderID]
	if !ok {
		return fmt.Errorf("order %d: %w", orderID, apperr.ErrNotFound)
	}
	o.TotalAmount = total
	o.Type = orderType
	t.d.orders[orderID] = o
	return nil
}

func (t *txStore) RemoveCartItems(_ context.Context, userID int64, skuIDs []int64) (int64, error) {
	want := make(map[int64]bool, len(skuIDs))
	for _, id := range skuIDs {
		want[id] = true
	}
	var n int64
	for id, ci := range t.d.cartItems {
		if ci.UserID == userID && want[ci.ProductSkuID] {
			delete(t.d.cartItems, id)
			n++
		}
	}
	return n, nil
}

func (t *txStore) CloseOrderIfUnpaid(_ context.Context, orderID int64, at time.Time) (bool, error) {
	o, ok := t.d.orders[orderID]
	if !ok {
		return false, fmt.Errorf("order %d: %w", orderID, apperr.ErrNotFound)
	}
	if o.PaidAt != nil || o.Closed {
		return false, nil
	}
	o.Closed = true
	o.UpdatedAt = at
	t.d.orders[orderID] = o
	return true, nil
}

func (t *txStore) OrderItems(_ context.Context, orderID int64) ([]models.OrderItem, error) {
	return append([]models.OrderItem(nil), t.d.orderItems[orderID]...), nil
}
