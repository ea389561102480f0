package crowdfunding

import (
	"context"
	"fmt"
	"log"

	"github.com/imrishuroy/go-storefront/internal/models"
)

type Store interface {
	GetOrder(ctx context.Context, id int64) (*models.Order, error)
	CrowdfundingProgress(ctx context.Context, productID int64) (models.CrowdfundingProgress, error)
	UpdateCrowdfundingProgress(ctx context.Context, productID int64, p models.CrowdfundingProgress) error
}

// Tracker keeps crowdfunding totals in step with paid orders.
type Tracker struct {
	store Store
}

func NewTracker(store Store) *Tracker {
	return &Tracker{store: store}
}

// OnOrderPaid recomputes the progress of the product in a paid crowdfunding
// order. Other orders are ignored. Recomputing from the orders table makes
// repeated deliveries harmless.
func (t *Tracker) OnOrderPaid(ctx context.Context, orderID int64) error {
	o, err := t.store.GetOrder(ctx, orderID)
	if err != nil {
		return fmt.Errorf("load order %d: %w", orderID, err)
	}
	if o.Type != models.OrderTypeCrowdfunding || !o.Paid() || len(o.Items) == 0 {
		return nil
	}

	productID := o.Items[0].ProductID
	p, err := t.store.CrowdfundingProgress(ctx, productID)
	if err != nil {
		return fmt.Errorf("crowdfunding progress of product %d: %w", productID, err)
	}
	if err := t.store.UpdateCrowdfundingProgress(ctx, productID, p); err != nil {
		return err
	}
	log.Printf("[crowdfunding] product=%d total=%s users=%d", productID, p.TotalAmount, p.UserCount)
	return nil
}
