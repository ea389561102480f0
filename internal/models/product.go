package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product types
const (
	ProductTypeNormal       = "normal"
	ProductTypeCrowdfunding = "crowdfunding"
)

// Product is the model for the 'products' table.
type Product struct {
	ID          int64           `json:"id" db:"id"`
	Type        string          `json:"type" db:"type"`
	CategoryID  *int64          `json:"category_id,omitempty" db:"category_id"`
	Title       string          `json:"title" db:"title"`
	LongTitle   string          `json:"long_title" db:"long_title"`
	Description string          `json:"description" db:"description"`
	Image       string          `json:"image" db:"image"`
	OnSale      bool            `json:"on_sale" db:"on_sale"`
	Rating      float64         `json:"rating" db:"rating"`
	SoldCount   int             `json:"sold_count" db:"sold_count"`
	ReviewCount int             `json:"review_count" db:"review_count"`
	Price       decimal.Decimal `json:"price" db:"price"` // lowest SKU price
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// ProductSku is the model for the 'product_skus' table.
type ProductSku struct {
	ID          int64           `json:"id" db:"id"`
	ProductID   int64           `json:"product_id" db:"product_id"`
	Title       string          `json:"title" db:"title"`
	Description string          `json:"description" db:"description"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Stock       int             `json:"stock" db:"stock"` // never negative

	// Joined from products, not stored on the SKU row.
	ProductType   string `json:"product_type,omitempty" db:"-"`
	ProductOnSale bool   `json:"product_on_sale" db:"-"`
}

// Category is the model for the 'categories' table. Path is the materialized
// ancestry of the node, e.g. "-1-4-" for a grandchild of category 1.
type Category struct {
	ID          int64  `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	ParentID    *int64 `json:"parent_id,omitempty" db:"parent_id"`
	IsDirectory bool   `json:"is_directory" db:"is_directory"`
	Level       int    `json:"level" db:"level"`
	Path        string `json:"path" db:"path"`
}
