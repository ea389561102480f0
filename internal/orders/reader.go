package orders

import (
	"context"
	"fmt"
	"math"

	"github.com/imrishuroy/go-storefront/internal/apperr"
	"github.com/imrishuroy/go-storefront/internal/models"
)

const (
	DefaultOrdersPerPage = 15
	MaxOrdersPerPage     = 100
)

// ReadStore loads committed orders.
type ReadStore interface {
	GetOrder(ctx context.Context, id int64) (*models.Order, error)
	ListOrders(ctx context.Context, userID int64, limit, offset int) ([]models.Order, int64, error)
}

// OrderPage is one page of a user's orders.
type OrderPage struct {
	Orders  []models.Order `json:"orders"`
	Total   int64          `json:"total"`
	Page    int            `json:"page"`
	PerPage int            `json:"per_page"`
}

// Reader serves a user's own orders.
type Reader struct {
	store ReadStore
}

func NewReader(store ReadStore) *Reader {
	return &Reader{store: store}
}

// List returns page (1-based, 0 means first) of userID's orders, newest
// first. perPage 0 means DefaultOrdersPerPage.
func (r *Reader) List(ctx context.Context, userID int64, page, perPage int) (*OrderPage, error) {
	if page == 0 {
		page = 1
	}
	if perPage == 0 {
		perPage = DefaultOrdersPerPage
	}
	if page < 1 || perPage < 1 || perPage > MaxOrdersPerPage {
		return nil, fmt.Errorf("page %d of size %d: %w", page, perPage, apperr.ErrInvalidArgument)
	}
	if page-1 > math.MaxInt32/perPage {
		return nil, fmt.Errorf("page %d is out of range: %w", page, apperr.ErrInvalidArgument)
	}

	list, total, err := r.store.ListOrders(ctx, userID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, fmt.Errorf("list orders of user %d: %w", userID, err)
	}
	return &OrderPage{Orders: list, Total: total, Page: page, PerPage: perPage}, nil
}

// Get returns orderID if it belongs to userID. Orders of other users are
// reported as not found.
func (r *Reader) Get(ctx context.Context, userID, orderID int64) (*models.Order, error) {
	o, err := r.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, fmt.Errorf("order %d: %w", orderID, apperr.ErrNotFound)
	}
	return o, nil
}
