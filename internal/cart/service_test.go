package cart_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imrishuroy/go-storefront/internal/apperr"
	"github.com/imrishuroy/go-storefront/internal/cart"
	"github.com/imrishuroy/go-storefront/internal/models"
	"github.com/imrishuroy/go-storefront/internal/store/memory"
)

func setup(t *testing.T) (*memory.Store, models.ProductSku, models.ProductSku) {
	t.Helper()
	s := memory.New()
	listed := s.PutProduct(models.Product{Title: "Mug", OnSale: true})
	hidden := s.PutProduct(models.Product{Title: "Old mug", OnSale: false})
	a := s.PutSku(models.ProductSku{ProductID: listed.ID, Price: decimal.NewFromInt(5), Stock: 3})
	b := s.PutSku(models.ProductSku{ProductID: hidden.ID, Price: decimal.NewFromInt(5), Stock: 3})
	return s, a, b
}

func TestAdd_MergesAmounts(t *testing.T) {
	s, sku, _ := setup(t)
	svc := cart.NewService(s)
	ctx := context.Background()

	_, err := svc.Add(ctx, 1, sku.ID, 1)
	require.NoError(t, err)
	item, err := svc.Add(ctx, 1, sku.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, item.Amount)

	items, err := svc.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestAdd_Rejections(t *testing.T) {
	s, sku, hidden := setup(t)
	svc := cart.NewService(s)
	ctx := context.Background()

	_, err := svc.Add(ctx, 1, sku.ID, 0)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.Add(ctx, 1, 999, 1)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.Add(ctx, 1, hidden.ID, 1)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.Add(ctx, 1, sku.ID, 4)
	assert.ErrorIs(t, err, apperr.ErrInsufficientStock)

	items, _ := svc.List(ctx, 1)
	assert.Empty(t, items)
}

func TestAdd_MergedAmountChecksStock(t *testing.T) {
	s, sku, _ := setup(t)
	svc := cart.NewService(s)
	ctx := context.Background()

	_, err := svc.Add(ctx, 1, sku.ID, 2)
	require.NoError(t, err)

	// 2 already in the cart + 2 more exceeds the stock of 3
	_, err = svc.Add(ctx, 1, sku.ID, 2)
	assert.ErrorIs(t, err, apperr.ErrInsufficientStock)

	// another user's cart does not count
	_, err = svc.Add(ctx, 2, sku.ID, 3)
	require.NoError(t, err)

	items, err := svc.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Amount)
}

func TestRemove_OnlyCallersRows(t *testing.T) {
	s, sku, _ := setup(t)
	svc := cart.NewService(s)
	ctx := context.Background()

	_, err := svc.Add(ctx, 1, sku.ID, 1)
	require.NoError(t, err)
	_, err = svc.Add(ctx, 2, sku.ID, 1)
	require.NoError(t, err)

	n, err := svc.Remove(ctx, 1, sku.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = svc.Remove(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, n)

	mine, _ := svc.List(ctx, 1)
	assert.Empty(t, mine)
	theirs, _ := svc.List(ctx, 2)
	assert.Len(t, theirs, 1)
}
