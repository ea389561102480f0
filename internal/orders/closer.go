package orders

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/imrishuroy/go-storefront/internal/apperr"
)

// Closer closes orders that were never paid and hands their stock back.
type Closer struct {
	store   Store
	nowFunc func() time.Time
}

// NewCloser returns a Closer.
func NewCloser(store Store) *Closer {
	return &Closer{store: store, nowFunc: time.Now}
}

// Close closes orderID if it is still unpaid and open, restoring the stock of
// each line whose SKU still exists. It is safe to call repeatedly: a paid or
// already closed order is left untouched and Close reports false.
func (c *Closer) Close(ctx context.Context, orderID int64) (bool, error) {
	var closed bool
	err := c.store.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		ok, err := tx.CloseOrderIfUnpaid(ctx, orderID, c.nowFunc())
		if err != nil {
			return fmt.Errorf("close order %d: %w", orderID, err)
		}
		if !ok {
			return nil
		}
		items, err := tx.OrderItems(ctx, orderID)
		if err != nil {
			return fmt.Errorf("list items of order %d: %w", orderID, err)
		}
		for _, it := range items {
			err := tx.IncreaseStock(ctx, it.ProductSkuID, it.Amount)
			if errors.Is(err, apperr.ErrNotFound) {
				// the SKU was removed after the order was placed
				log.Printf("[closer] order=%d sku=%d gone, skipping restock of %d", orderID, it.ProductSkuID, it.Amount)
				continue
			}
			if err != nil {
				return fmt.Errorf("restock sku %d: %w", it.ProductSkuID, err)
			}
		}
		closed = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return closed, nil
}
