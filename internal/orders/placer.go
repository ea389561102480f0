package orders

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/imrishuroy/go-storefront/internal/apperr"
	"github.com/imrishuroy/go-storefront/internal/inventory"
	"github.com/imrishuroy/go-storefront/internal/models"
)

// Placer creates orders, reserving stock in the same transaction.
type Placer struct {
	store     Store
	scheduler Scheduler
	orderTTL  time.Duration
	nowFunc   func() time.Time
	newNo     func() string
}

// NewPlacer returns a Placer. scheduler may be nil, in which case no close task is queued.
func NewPlacer(store Store, scheduler Scheduler, orderTTL time.Duration) *Placer {
	return &Placer{
		store:     store,
		scheduler: scheduler,
		orderTTL:  orderTTL,
		nowFunc:   time.Now,
		newNo:     func() string { return uuid.NewString() },
	}
}

// Place creates an order for userID shipped to address.
//
// The address touch, order row, order items, stock decrements, total and cart
// cleanup all happen in one transaction; any failure rolls every one of them
// back. The close-if-unpaid task is queued only after the commit and a
// scheduling failure is logged, not returned.
func (p *Placer) Place(ctx context.Context, userID int64, address models.UserAddress, remark string, items []LineItem) (*models.Order, error) {
	if err := validatePlacement(userID, address, items); err != nil {
		return nil, err
	}

	var order *models.Order
	err := p.store.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		now := p.nowFunc()
		if err := tx.TouchAddress(ctx, address.ID, now); err != nil {
			return fmt.Errorf("touch address %d: %w", address.ID, err)
		}

		o := &models.Order{
			No:           p.newNo(),
			UserID:       userID,
			Type:         models.OrderTypeNormal,
			Address:      address.Snapshot(),
			Remark:       remark,
			TotalAmount:  decimal.Zero,
			RefundStatus: models.RefundStatusPending,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := tx.CreateOrder(ctx, o); err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		total := decimal.Zero
		skuIDs := make([]int64, 0, len(items))
		for _, line := range items {
			sku, err := tx.GetSku(ctx, line.SkuID)
			if err != nil {
				return fmt.Errorf("sku %d: %w", line.SkuID, err)
			}
			if sku.ProductType == models.ProductTypeCrowdfunding {
				if len(items) != 1 {
					return fmt.Errorf("crowdfunding sku %d must be ordered alone: %w", sku.ID, apperr.ErrValidation)
				}
				o.Type = models.OrderTypeCrowdfunding
			}

			item := models.OrderItem{
				OrderID:      o.ID,
				ProductID:    sku.ProductID,
				ProductSkuID: sku.ID,
				Amount:       line.Amount,
				Price:        sku.Price,
			}
			if err := tx.CreateOrderItem(ctx, &item); err != nil {
				return fmt.Errorf("create order item for sku %d: %w", sku.ID, err)
			}
			total = total.Add(item.Subtotal())

			if err := inventory.Reserve(ctx, tx, sku.ID, line.Amount); err != nil {
				return err
			}
			o.Items = append(o.Items, item)
			skuIDs = append(skuIDs, sku.ID)
		}

		if err := tx.FinalizeOrder(ctx, o.ID, total, o.Type); err != nil {
			return fmt.Errorf("update order total: %w", err)
		}
		o.TotalAmount = total

		if _, err := tx.RemoveCartItems(ctx, userID, skuIDs); err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}

		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	if p.scheduler != nil {
		if err := p.scheduler.ScheduleClose(ctx, order.ID, p.orderTTL); err != nil {
			log.Printf("[placer] failed to schedule close order=%d no=%s: %v", order.ID, order.No, err)
		}
	}
	return order, nil
}

func validatePlacement(userID int64, address models.UserAddress, items []LineItem) error {
	if address.UserID != userID {
		return fmt.Errorf("address %d: %w", address.ID, apperr.ErrNotFound)
	}
	if len(items) == 0 {
		return fmt.Errorf("order has no items: %w", apperr.ErrValidation)
	}
	if len(items) > MaxLineItems {
		return fmt.Errorf("order has %d items, limit is %d: %w", len(items), MaxLineItems, apperr.ErrValidation)
	}
	for i, it := range items {
		if it.SkuID <= 0 {
			return fmt.Errorf("items[%d]: sku_id is required: %w", i, apperr.ErrValidation)
		}
		if it.Amount < 1 {
			return fmt.Errorf("items[%d]: amount must be >= 1: %w", i, apperr.ErrValidation)
		}
	}
	return nil
}
