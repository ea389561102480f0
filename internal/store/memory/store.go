// Package memory is an in-process implementation of the storefront stores.
// Transactions are serialized behind one mutex and committed copy-on-write, so a
// failed transaction leaves no trace. It backs tests and STORE_DRIVER=memory.
package memory

import (
	"context"
	"sync"

	"github.com/imrishuroy/go-storefront/internal/models"
	"github.com/imrishuroy/go-storefront/internal/orders"
)

type data struct {
	seq int64

	products      map[int64]models.Product
	skus          map[int64]models.ProductSku
	categories    map[int64]models.Category
	addresses     map[int64]models.UserAddress
	cartItems     map[int64]models.CartItem
	orders        map[int64]models.Order
	orderItems    map[int64][]models.OrderItem
	crowdfundings map[int64]models.Crowdfunding // keyed by product id
}

func newData() *data {
	return &data{
		products:      map[int64]models.Product{},
		skus:          map[int64]models.ProductSku{},
		categories:    map[int64]models.Category{},
		addresses:     map[int64]models.UserAddress{},
		cartItems:     map[int64]models.CartItem{},
		orders:        map[int64]models.Order{},
		orderItems:    map[int64][]models.OrderItem{},
		crowdfundings: map[int64]models.Crowdfunding{},
	}
}

func (d *data) nextID() int64 {
	d.seq++
	return d.seq
}

func (d *data) bump(id int64) {
	if id > d.seq {
		d.seq = id
	}
}

func (d *data) clone() *data {
	c := &data{
		seq:           d.seq,
		products:      cloneMap(d.products),
		skus:          cloneMap(d.skus),
		categories:    cloneMap(d.categories),
		addresses:     cloneMap(d.addresses),
		cartItems:     cloneMap(d.cartItems),
		orders:        cloneMap(d.orders),
		orderItems:    make(map[int64][]models.OrderItem, len(d.orderItems)),
		crowdfundings: cloneMap(d.crowdfundings),
	}
	for k, v := range d.orderItems {
		c.orderItems[k] = append([]models.OrderItem(nil), v...)
	}
	return c
}

func cloneMap[V any](m map[int64]V) map[int64]V {
	out := make(map[int64]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Store holds all tables in memory.
type Store struct {
	mu sync.Mutex
	d  *data
}

// New returns an empty Store.
func New() *Store {
	return &Store{d: newData()}
}

var _ orders.Store = (*Store)(nil)

// WithTx runs fn against a private copy of the tables and swaps the copy in
// only if fn succeeds. fn must not call back into s.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx orders.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.d.clone()
	if err := fn(ctx, &txStore{d: work}); err != nil {
		return err
	}
	s.d = work
	return nil
}

// direct runs fn against the live tables under the lock. Used for
// single-statement operations outside an explicit transaction.
func (s *Store) direct(fn func(tx *txStore) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&txStore{d: s.d})
}
