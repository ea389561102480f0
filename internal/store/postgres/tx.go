package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/imrishuroy/go-storefront/internal/apperr"
	"github.com/imrishuroy/go-storefront/internal/inventory"
	"github.com/imrishuroy/go-storefront/internal/models"
	"github.com/imrishuroy/go-storefront/internal/orders"
)

// txStore issues statements on either the pool or an open transaction.
type txStore struct {
	q querier
}

var _ orders.Tx = (*txStore)(nil)

const (
	sqlDecreaseStock = `UPDATE product_skus SET stock = stock - $1 WHERE id = $2 AND stock >= $1`
	sqlIncreaseStock = `UPDATE product_skus SET stock = stock + $1 WHERE id = $2`
)

func (t *txStore) DecreaseStock(ctx context.Context, skuID int64, amount int) (int64, error) {
	if err := inventory.ValidateAmount(amount); err != nil {
		return 0, err
	}
	tag, err := t.q.Exec(ctx, sqlDecreaseStock, amount, skuID)
	if err != nil {
		return 0, fmt.Errorf("decrease stock of sku %d: %w", skuID, mapErr(err))
	}
	return tag.RowsAffected(), nil
}

func (t *txStore) IncreaseStock(ctx context.Context, skuID int64, amount int) error {
	if err := inventory.ValidateAmount(amount); err != nil {
		return err
	}
	tag, err := t.q.Exec(ctx, sqlIncreaseStock, amount, skuID)
	if err != nil {
		return fmt.Errorf("increase stock of sku %d: %w", skuID, mapErr(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("sku %d: %w", skuID, apperr.ErrNotFound)
	}
	return nil
}

func (t *txStore) TouchAddress(ctx context.Context, addressID int64, at time.Time) error {
	tag, err := t.q.Exec(ctx, `UPDATE user_addresses SET last_used_at = $1 WHERE id = $2`, at, addressID)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("address %d: %w", addressID, apperr.ErrNotFound)
	}
	return nil
}

func (t *txStore) GetSku(ctx context.Context, skuID int64) (*models.ProductSku, error) {
	var (
		sku   models.ProductSku
		price string
	)
	err := t.q.QueryRow(ctx, `
		SELECT s.id, s.product_id, s.title, s.description, s.price::text, s.stock, p.type, p.on_sale
		FROM product_skus s
		JOIN products p ON p.id = s.product_id
		WHERE s.id = $1`, skuID).
		Scan(&sku.ID, &sku.ProductID, &sku.Title, &sku.Description, &price, &sku.Stock, &sku.ProductType, &sku.ProductOnSale)
	if err != nil {
		return nil, fmt.Errorf("sku %d: %w", skuID, mapErr(err))
	}
	if sku.Price, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("sku %d price %q: %w", skuID, price, err)
	}
	return &sku, nil
}

func (t *txStore) CreateOrder(ctx context.Context, o *models.Order) error {
	addr, err := json.Marshal(o.Address)
	if err != nil {
		return fmt.Errorf("marshal address: %w", err)
	}
	err = t.q.QueryRow(ctx, `
		INSERT INTO orders (no, user_id, type, address, remark, total_amount, refund_status, closed, created_at, updated_at)
		VALUES ($1, $2, $3, $4::jsonb, $5, $6::numeric, $7, false, $8, $9)
		RETURNING id`,
		o.No, o.UserID, o.Type, string(addr), o.Remark, o.TotalAmount.String(), o.RefundStatus, o.CreatedAt, o.UpdatedAt,
	).Scan(&o.ID)
	if err != nil {
		return mapErr(err)
	}
	return nil
}

func (t *txStore) CreateOrderItem(ctx context.Context, it *models.OrderItem) error {
	err := t.q.QueryRow(ctx, `
		INSERT INTO order_items (order_id, product_id, product_sku_id, amount, price)
		VALUES ($1, $2, $3, $4, $5::numeric)
		RETURNING id`,
		it.OrderID, it.ProductID, it.ProductSkuID, it.Amount, it.Price.String(),
	).Scan(&it.ID)
	if err != nil {
		return mapErr(err)
	}
	return nil
}

func (t *txStore) FinalizeOrder(ctx context.Context, orderID int64, total decimal.Decimal, orderType string) error {
	tag, err := t.q.Exec(ctx,
		`UPDATE orders SET total_amount = $1::numeric, type = $2, updated_at = now() WHERE id = $3`,
		total.String(), orderType, orderID)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("order %d: %w", orderID, apperr.ErrNotFound)
	}
	return nil
}

func (t *txStore) RemoveCartItems(ctx context.Context, userID int64, skuIDs []int64) (int64, error) {
	if len(skuIDs) == 0 {
		return 0, nil
	}
	tag, err := t.q.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1 AND product_sku_id = ANY($2)`, userID, skuIDs)
	if err != nil {
		return 0, mapErr(err)
	}
	return tag.RowsAffected(), nil
}

func (t *txStore) CloseOrderIfUnpaid(ctx context.Context, orderID int64, at time.Time) (bool, error) {
	tag, err := t.q.Exec(ctx,
		`UPDATE orders SET closed = true, updated_at = $1 WHERE id = $2 AND paid_at IS NULL AND NOT closed`,
		at, orderID)
	if err != nil {
		return false, mapErr(err)
	}
	if tag.RowsAffected() == 1 {
		return true, nil
	}
	var exists bool
	if err := t.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, orderID).Scan(&exists); err != nil {
		return false, mapErr(err)
	}
	if !exists {
		return false, fmt.Errorf("order %d: %w", orderID, apperr.ErrNotFound)
	}
	return false, nil
}

func (t *txStore) OrderItems(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	rows, err := t.q.Query(ctx, `
		SELECT id, order_id, product_id, product_sku_id, amount, price::text
		FROM order_items WHERE order_id = $1 ORDER BY id`, orderID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var out []models.OrderItem
	for rows.Next() {
		var (
			it    models.OrderItem
			price string
		)
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductSkuID, &it.Amount, &price); err != nil {
			return nil, err
		}
		if it.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("order item %d price %q: %w", it.ID, price, err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}
