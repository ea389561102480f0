package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/imrishuroy/go-storefront/internal/apperr"
	"github.com/imrishuroy/go-storefront/internal/models"
)

func (s *Store) DecreaseStock(ctx context.Context, skuID int64, amount int) (int64, error) {
	return s.conn().DecreaseStock(ctx, skuID, amount)
}

func (s *Store) IncreaseStock(ctx context.Context, skuID int64, amount int) error {
	return s.conn().IncreaseStock(ctx, skuID, amount)
}

func (s *Store) GetSku(ctx context.Context, skuID int64) (*models.ProductSku, error) {
	return s.conn().GetSku(ctx, skuID)
}

func (s *Store) RemoveCartItems(ctx context.Context, userID int64, skuIDs []int64) (int64, error) {
	return s.conn().RemoveCartItems(ctx, userID, skuIDs)
}

// GetAddress returns the address only if it belongs to userID.
func (s *Store) GetAddress(ctx context.Context, userID, addressID int64) (*models.UserAddress, error) {
	var a models.UserAddress
	err := s.db.QueryRow(ctx, `
		SELECT id, user_id, province, city, district, address, zip, contact_name, contact_phone, last_used_at
		FROM user_addresses WHERE id = $1 AND user_id = $2`, addressID, userID).
		Scan(&a.ID, &a.UserID, &a.Province, &a.City, &a.District, &a.Address, &a.Zip, &a.ContactName, &a.ContactPhone, &a.LastUsedAt)
	if err != nil {
		return nil, fmt.Errorf("address %d: %w", addressID, mapErr(err))
	}
	return &a, nil
}

func (s *Store) GetCategory(ctx context.Context, id int64) (*models.Category, error) {
	var c models.Category
	err := s.db.QueryRow(ctx, `
		SELECT id, name, parent_id, is_directory, level, path
		FROM categories WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.ParentID, &c.IsDirectory, &c.Level, &c.Path)
	if err != nil {
		return nil, fmt.Errorf("category %d: %w", id, mapErr(err))
	}
	return &c, nil
}

// ProductsByIDs loads the listed products in whatever order the database
// returns them. Missing ids are skipped.
func (s *Store) ProductsByIDs(ctx context.Context, ids []int64) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := s.db.Query(ctx, `
		SELECT id, type, category_id, title, long_title, description, image, on_sale,
		       rating, sold_count, review_count, price::text, created_at, updated_at
		FROM products WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var out []models.Product
	for rows.Next() {
		var (
			p     models.Product
			price string
		)
		if err := rows.Scan(&p.ID, &p.Type, &p.CategoryID, &p.Title, &p.LongTitle, &p.Description, &p.Image, &p.OnSale,
			&p.Rating, &p.SoldCount, &p.ReviewCount, &price, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		if p.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("product %d price %q: %w", p.ID, price, err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

const orderColumns = `id, no, user_id, type, address::text, remark, total_amount::text, paid_at,
		       refund_status, closed, created_at, updated_at`

func scanOrder(row pgx.Row) (models.Order, error) {
	var (
		o           models.Order
		addr, total string
	)
	if err := row.Scan(&o.ID, &o.No, &o.UserID, &o.Type, &addr, &o.Remark, &total, &o.PaidAt,
		&o.RefundStatus, &o.Closed, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return o, err
	}
	if err := json.Unmarshal([]byte(addr), &o.Address); err != nil {
		return o, fmt.Errorf("order %d address: %w", o.ID, err)
	}
	var err error
	if o.TotalAmount, err = decimal.NewFromString(total); err != nil {
		return o, fmt.Errorf("order %d total %q: %w", o.ID, total, err)
	}
	return o, nil
}

// GetOrder returns the order with its items.
func (s *Store) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	o, err := scanOrder(s.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("order %d: %w", id, mapErr(err))
	}
	if o.Items, err = s.conn().OrderItems(ctx, id); err != nil {
		return nil, err
	}
	return &o, nil
}

// ListOrders returns one page of the user's orders, newest first, with their
// items, and the user's total order count.
func (s *Store) ListOrders(ctx context.Context, userID int64, limit, offset int) ([]models.Order, int64, error) {
	var total int64
	if err := s.db.QueryRow(ctx, `SELECT count(*) FROM orders WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, mapErr(err)
	}
	if total == 0 {
		return []models.Order{}, 0, nil
	}

	rows, err := s.db.Query(ctx, `SELECT `+orderColumns+` FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, 0, mapErr(err)
	}
	out := []models.Order{}
	ids := []int64{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, 0, err
		}
		out = append(out, o)
		ids = append(ids, o.ID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, 0, mapErr(err)
	}
	if len(ids) == 0 {
		return out, total, nil
	}

	items, err := s.itemsOfOrders(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range out {
		out[i].Items = items[out[i].ID]
	}
	return out, total, nil
}

func (s *Store) itemsOfOrders(ctx context.Context, orderIDs []int64) (map[int64][]models.OrderItem, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, order_id, product_id, product_sku_id, amount, price::text
		FROM order_items WHERE order_id = ANY($1) ORDER BY id`, orderIDs)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := make(map[int64][]models.OrderItem, len(orderIDs))
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
		out[it.OrderID] = append(out[it.OrderID], it)
	}
	return out, rows.Err()
}

func (s *Store) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	var (
		p     models.Product
		price string
	)
	err := s.db.QueryRow(ctx, `
		SELECT id, type, category_id, title, long_title, description, image, on_sale,
		       rating, sold_count, review_count, price::text, created_at, updated_at
		FROM products WHERE id = $1`, id).
		Scan(&p.ID, &p.Type, &p.CategoryID, &p.Title, &p.LongTitle, &p.Description, &p.Image, &p.OnSale,
			&p.Rating, &p.SoldCount, &p.ReviewCount, &price, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("product %d: %w", id, mapErr(err))
	}
	if p.Price, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("product %d price %q: %w", id, price, err)
	}
	return &p, nil
}

// ListSkus returns the SKUs of productID ordered by id.
func (s *Store) ListSkus(ctx context.Context, productID int64) ([]models.ProductSku, error) {
	rows, err := s.db.Query(ctx, `
		SELECT s.id, s.product_id, s.title, s.description, s.price::text, s.stock, p.type, p.on_sale
		FROM product_skus s
		JOIN products p ON p.id = s.product_id
		WHERE s.product_id = $1
		ORDER BY s.id`, productID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := []models.ProductSku{}
	for rows.Next() {
		var (
			sku   models.ProductSku
			price string
		)
		if err := rows.Scan(&sku.ID, &sku.ProductID, &sku.Title, &sku.Description, &price, &sku.Stock,
			&sku.ProductType, &sku.ProductOnSale); err != nil {
			return nil, err
		}
		if sku.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("sku %d price %q: %w", sku.ID, price, err)
		}
		out = append(out, sku)
	}
	return out, rows.Err()
}

// UpsertCartItem adds amount to the user's row for skuID, creating it if needed.
func (s *Store) UpsertCartItem(ctx context.Context, userID, skuID int64, amount int, at time.Time) (*models.CartItem, error) {
	var ci models.CartItem
	err := s.db.QueryRow(ctx, `
		INSERT INTO cart_items (user_id, product_sku_id, amount, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (user_id, product_sku_id)
		DO UPDATE SET amount = cart_items.amount + EXCLUDED.amount, updated_at = EXCLUDED.updated_at
		RETURNING id, user_id, product_sku_id, amount, created_at, updated_at`,
		userID, skuID, amount, at).
		Scan(&ci.ID, &ci.UserID, &ci.ProductSkuID, &ci.Amount, &ci.CreatedAt, &ci.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &ci, nil
}

func (s *Store) ListCartItems(ctx context.Context, userID int64) ([]models.CartItem, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, product_sku_id, amount, created_at, updated_at
		FROM cart_items WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var out []models.CartItem
	for rows.Next() {
		var ci models.CartItem
		if err := rows.Scan(&ci.ID, &ci.UserID, &ci.ProductSkuID, &ci.Amount, &ci.CreatedAt, &ci.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, ci)
	}
	return out, rows.Err()
}

// CrowdfundingProgress sums the totals and counts the distinct buyers of paid
// crowdfunding orders that contain productID.
func (s *Store) CrowdfundingProgress(ctx context.Context, productID int64) (models.CrowdfundingProgress, error) {
	var (
		p     models.CrowdfundingProgress
		total string
	)
	err := s.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(o.total_amount), 0)::text, COUNT(DISTINCT o.user_id)
		FROM orders o
		WHERE o.type = 'crowdfunding' AND o.paid_at IS NOT NULL
		  AND EXISTS (SELECT 1 FROM order_items i WHERE i.order_id = o.id AND i.product_id = $1)`, productID).
		Scan(&total, &p.UserCount)
	if err != nil {
		return p, mapErr(err)
	}
	if p.TotalAmount, err = decimal.NewFromString(total); err != nil {
		return p, fmt.Errorf("crowdfunding total %q: %w", total, err)
	}
	return p, nil
}

func (s *Store) UpdateCrowdfundingProgress(ctx context.Context, productID int64, p models.CrowdfundingProgress) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE crowdfunding_products SET total_amount = $1::numeric, user_count = $2 WHERE product_id = $3`,
		p.TotalAmount.String(), p.UserCount, productID)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("crowdfunding for product %d: %w", productID, apperr.ErrNotFound)
	}
	return nil
}
