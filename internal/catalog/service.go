// Package catalog serves single product pages.
package catalog

import (
	"context"
	"fmt"

	"github.com/imrishuroy/go-storefront/internal/apperr"
	"github.com/imrishuroy/go-storefront/internal/models"
)

type Store interface {
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	ListSkus(ctx context.Context, productID int64) ([]models.ProductSku, error)
}

// Detail is a product with its purchasable SKUs.
type Detail struct {
	models.Product
	Skus []models.ProductSku `json:"skus"`
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Show returns the product and its SKUs. A product taken off sale is
// rejected with ErrValidation.
func (s *Service) Show(ctx context.Context, id int64) (*Detail, error) {
	p, err := s.store.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.OnSale {
		return nil, fmt.Errorf("product %d is not on sale: %w", id, apperr.ErrValidation)
	}
	skus, err := s.store.ListSkus(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("skus of product %d: %w", id, err)
	}
	return &Detail{Product: *p, Skus: skus}, nil
}
