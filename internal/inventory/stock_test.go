package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/imrishuroy/go-storefront/internal/apperr"
)

type fakeStock struct {
	stock map[int64]int
}

func (f *fakeStock) DecreaseStock(ctx context.Context, skuID int64, amount int) (int64, error) {
	if err := ValidateAmount(amount); err != nil {
		return 0, err
	}
	if f.stock[skuID] < amount {
		return 0, nil
	}
	f.stock[skuID] -= amount
	return 1, nil
}

func (f *fakeStock) IncreaseStock(ctx context.Context, skuID int64, amount int) error {
	if err := ValidateAmount(amount); err != nil {
		return err
	}
	f.stock[skuID] += amount
	return nil
}

func TestValidateAmount(t *testing.T) {
	if err := ValidateAmount(0); err != nil {
		t.Fatalf("zero should be allowed: %v", err)
	}
	if err := ValidateAmount(-1); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestReserve(t *testing.T) {
	s := &fakeStock{stock: map[int64]int{1: 5}}
	ctx := context.Background()

	if err := Reserve(ctx, s, 1, 3); err != nil {
		t.Fatalf("first reserve: %v", err)
	}
	if err := Reserve(ctx, s, 1, 3); !errors.Is(err, apperr.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	if s.stock[1] != 2 {
		t.Fatalf("stock = %d, want 2", s.stock[1])
	}
	if err := Reserve(ctx, s, 1, -1); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if s.stock[1] != 2 {
		t.Fatalf("stock changed by a rejected call: %d", s.stock[1])
	}
}
