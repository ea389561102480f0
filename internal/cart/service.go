package cart

import (
	"context"
	"fmt"
	"time"

	"github.com/imrishuroy/go-storefront/internal/apperr"
	"github.com/imrishuroy/go-storefront/internal/models"
)

type Store interface {
	GetSku(ctx context.Context, skuID int64) (*models.ProductSku, error)
	UpsertCartItem(ctx context.Context, userID, skuID int64, amount int, at time.Time) (*models.CartItem, error)
	RemoveCartItems(ctx context.Context, userID int64, skuIDs []int64) (int64, error)
	ListCartItems(ctx context.Context, userID int64) ([]models.CartItem, error)
}

type Service struct {
	store   Store
	nowFunc func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, nowFunc: time.Now}
}

// Add puts amount of skuID into the user's cart, merging with an existing row.
// The merged amount must fit the current stock. The check is advisory; the
// order placement re-checks atomically.
func (s *Service) Add(ctx context.Context, userID, skuID int64, amount int) (*models.CartItem, error) {
	if amount < 1 {
		return nil, fmt.Errorf("amount %d must be >= 1: %w", amount, apperr.ErrValidation)
	}
	sku, err := s.store.GetSku(ctx, skuID)
	if err != nil {
		return nil, err
	}
	if !sku.ProductOnSale {
		return nil, fmt.Errorf("sku %d is not on sale: %w", skuID, apperr.ErrValidation)
	}
	inCart, err := s.amountInCart(ctx, userID, skuID)
	if err != nil {
		return nil, err
	}
	if sku.Stock < inCart+amount {
		return nil, fmt.Errorf("sku %d has %d left, cart would hold %d: %w",
			skuID, sku.Stock, inCart+amount, apperr.ErrInsufficientStock)
	}
	return s.store.UpsertCartItem(ctx, userID, skuID, amount, s.nowFunc())
}

func (s *Service) amountInCart(ctx context.Context, userID, skuID int64) (int, error) {
	items, err := s.store.ListCartItems(ctx, userID)
	if err != nil {
		return 0, err
	}
	for _, it := range items {
		if it.ProductSkuID == skuID {
			return it.Amount, nil
		}
	}
	return 0, nil
}

// Remove deletes the user's rows for skuIDs. Unknown ids are ignored.
func (s *Service) Remove(ctx context.Context, userID int64, skuIDs ...int64) (int64, error) {
	if len(skuIDs) == 0 {
		return 0, nil
	}
	return s.store.RemoveCartItems(ctx, userID, skuIDs)
}

func (s *Service) List(ctx context.Context, userID int64) ([]models.CartItem, error) {
	items, err := s.store.ListCartItems(ctx, userID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.CartItem{}
	}
	return items, nil
}
