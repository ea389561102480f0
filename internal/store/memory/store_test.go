package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imrishuroy/go-storefront/internal/apperr"
	"github.com/imrishuroy/go-storefront/internal/models"
	"github.com/imrishuroy/go-storefront/internal/orders"
)

func TestStock_NegativeAmountRejected(t *testing.T) {
	s := New()
	sku := s.PutSku(models.ProductSku{Stock: 5})
	ctx := context.Background()

	_, err := s.DecreaseStock(ctx, sku.ID, -1)
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
	err = s.IncreaseStock(ctx, sku.ID, -1)
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
	assert.Equal(t, 5, s.Stock(sku.ID))
}

func TestStock_DecreaseIsConditional(t *testing.T) {
	s := New()
	sku := s.PutSku(models.ProductSku{Stock: 3})
	ctx := context.Background()

	n, err := s.DecreaseStock(ctx, sku.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
	assert.Equal(t, 3, s.Stock(sku.ID))

	n, err = s.DecreaseStock(ctx, sku.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, 0, s.Stock(sku.ID))

	n, err = s.DecreaseStock(ctx, 999, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	require.NoError(t, s.IncreaseStock(ctx, sku.ID, 2))
	assert.Equal(t, 2, s.Stock(sku.ID))
	assert.ErrorIs(t, s.IncreaseStock(ctx, 999, 1), apperr.ErrNotFound)
}

func TestStock_ConcurrentDecrementsNeverOversell(t *testing.T) {
	s := New()
	sku := s.PutSku(models.ProductSku{Stock: 10})
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := s.DecreaseStock(ctx, sku.ID, 1)
			if err == nil && n == 1 {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 10, wins)
	assert.Equal(t, 0, s.Stock(sku.ID))
}

func TestWithTx_RollbackDiscardsWrites(t *testing.T) {
	s := New()
	sku := s.PutSku(models.ProductSku{Stock: 5})
	boom := errors.New("boom")

	err := s.WithTx(context.Background(), func(ctx context.Context, tx orders.Tx) error {
		if _, err := tx.DecreaseStock(ctx, sku.ID, 2); err != nil {
			return err
		}
		if err := tx.CreateOrder(ctx, &models.Order{UserID: 1}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 5, s.Stock(sku.ID))
	assert.Equal(t, 0, s.OrderCount())
}

func TestCart_UpsertMergesAndIsUserScoped(t *testing.T) {
	s := New()
	ctx := context.Background()
	now := time.Unix(1700000000, 0)

	first, err := s.UpsertCartItem(ctx, 1, 10, 2, now)
	require.NoError(t, err)
	merged, err := s.UpsertCartItem(ctx, 1, 10, 3, now)
	require.NoError(t, err)
	assert.Equal(t, first.ID, merged.ID)
	assert.Equal(t, 5, merged.Amount)

	_, err = s.UpsertCartItem(ctx, 2, 10, 1, now)
	require.NoError(t, err)

	n, err := s.RemoveCartItems(ctx, 1, []int64{10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	other, err := s.ListCartItems(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, other, 1)
}

func TestCloseOrderIfUnpaid(t *testing.T) {
	s := New()
	ctx := context.Background()
	var orderID int64
	require.NoError(t, s.WithTx(ctx, func(ctx context.Context, tx orders.Tx) error {
		o := &models.Order{UserID: 1}
		if err := tx.CreateOrder(ctx, o); err != nil {
			return err
		}
		orderID = o.ID
		return nil
	}))

	closeOnce := func() (bool, error) {
		var ok bool
		err := s.WithTx(ctx, func(ctx context.Context, tx orders.Tx) error {
			var err error
			ok, err = tx.CloseOrderIfUnpaid(ctx, orderID, time.Now())
			return err
		})
		return ok, err
	}

	ok, err := closeOnce()
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = closeOnce()
	require.NoError(t, err)
	assert.False(t, ok)

	err = s.WithTx(ctx, func(ctx context.Context, tx orders.Tx) error {
		_, err := tx.CloseOrderIfUnpaid(ctx, 404, time.Now())
		return err
	})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
