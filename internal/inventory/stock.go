package inventory

import (
	"context"
	"fmt"

	"github.com/imrishuroy/go-storefront/internal/apperr"
)

// Store is the stock mutation primitive. Both operations are single conditional
// updates against the stock row; neither reads the stock into the application first.
type Store interface {
	// DecreaseStock subtracts amount only while stock >= amount and returns the
	// number of rows changed (0 or 1). Zero means the race was lost or the SKU is gone.
	DecreaseStock(ctx context.Context, skuID int64, amount int) (int64, error)
	// IncreaseStock adds amount to the stock of skuID.
	IncreaseStock(ctx context.Context, skuID int64, amount int) error
}

// ValidateAmount rejects negative stock deltas at the mutation boundary so a
// negative decrement can never act as a disguised restock.
func ValidateAmount(amount int) error {
	if amount < 0 {
		return fmt.Errorf("stock amount %d must not be negative: %w", amount, apperr.ErrInvalidArgument)
	}
	return nil
}

// Reserve decrements stock and turns a lost race into ErrInsufficientStock.
func Reserve(ctx context.Context, s Store, skuID int64, amount int) error {
	n, err := s.DecreaseStock(ctx, skuID, amount)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("sku %d: %w", skuID, apperr.ErrInsufficientStock)
	}
	return nil
}
