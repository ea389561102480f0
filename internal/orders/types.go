package orders

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/imrishuroy/go-storefront/internal/inventory"
	"github.com/imrishuroy/go-storefront/internal/models"
)

// MaxLineItems bounds the number of lines a single order may carry.
const MaxLineItems = 100

// LineItem is one requested (sku, quantity) pair.
type LineItem struct {
	SkuID  int64 `json:"sku_id"`
	Amount int   `json:"amount"`
}

// Tx is the set of writes an order transaction may perform. Every call made
// through a Tx commits or rolls back together.
type Tx interface {
	inventory.Store

	// TouchAddress records that the address was just used. ErrNotFound if absent.
	TouchAddress(ctx context.Context, addressID int64, at time.Time) error
	// GetSku returns the SKU joined with its product's type and listing flag. ErrNotFound if absent.
	GetSku(ctx context.Context, skuID int64) (*models.ProductSku, error)
	// CreateOrder inserts o and assigns o.ID.
	CreateOrder(ctx context.Context, o *models.Order) error
	// CreateOrderItem inserts it and assigns it.ID.
	CreateOrderItem(ctx context.Context, it *models.OrderItem) error
	// FinalizeOrder writes the computed total and order type.
	FinalizeOrder(ctx context.Context, orderID int64, total decimal.Decimal, orderType string) error
	// RemoveCartItems deletes the user's cart rows for skuIDs and returns how many went.
	RemoveCartItems(ctx context.Context, userID int64, skuIDs []int64) (int64, error)
	// CloseOrderIfUnpaid flips closed=true only for an unpaid, open order.
	// Returns false when the order is already settled; ErrNotFound when it does not exist.
	CloseOrderIfUnpaid(ctx context.Context, orderID int64, at time.Time) (bool, error)
	// OrderItems lists the lines of an order.
	OrderItems(ctx context.Context, orderID int64) ([]models.OrderItem, error)
}

// Store runs fn inside one atomic transaction. If fn returns an error nothing
// written through the Tx is visible afterwards.
type Store interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Scheduler arranges for an unpaid order to be closed once ttl has passed.
type Scheduler interface {
	ScheduleClose(ctx context.Context, orderID int64, ttl time.Duration) error
}
