package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order types
const (
	OrderTypeNormal       = "normal"
	OrderTypeCrowdfunding = "crowdfunding"
)

// Refund statuses
const (
	RefundStatusPending    = "pending"
	RefundStatusApplied    = "applied"
	RefundStatusProcessing = "processing"
	RefundStatusSuccess    = "success"
	RefundStatusFailed     = "failed"
)

// AddressSnapshot is the shipping address copied onto an order when it is placed.
// It is never re-read from the address book afterwards.
type AddressSnapshot struct {
	Address      string `json:"address"`
	Zip          string `json:"zip"`
	ContactName  string `json:"contact_name"`
	ContactPhone string `json:"contact_phone"`
}

// Order is the model for the 'orders' table.
type Order struct {
	ID           int64           `json:"id" db:"id"`
	No           string          `json:"no" db:"no"`
	UserID       int64           `json:"user_id" db:"user_id"`
	Type         string          `json:"type" db:"type"`
	Address      AddressSnapshot `json:"address" db:"address"`
	Remark       string          `json:"remark" db:"remark"`
	TotalAmount  decimal.Decimal `json:"total_amount" db:"total_amount"` // always sum(price * amount) of Items
	PaidAt       *time.Time      `json:"paid_at,omitempty" db:"paid_at"`
	RefundStatus string          `json:"refund_status" db:"refund_status"`
	Closed       bool            `json:"closed" db:"closed"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" db:"updated_at"`

	Items []OrderItem `json:"items,omitempty" db:"-"`
}

// Paid reports whether the order has been settled by the payment system.
func (o *Order) Paid() bool { return o.PaidAt != nil }

// OrderItem is the model for the 'order_items' table.
type OrderItem struct {
	ID           int64           `json:"id" db:"id"`
	OrderID      int64           `json:"order_id" db:"order_id"`
	ProductID    int64           `json:"product_id" db:"product_id"`
	ProductSkuID int64           `json:"product_sku_id" db:"product_sku_id"`
	Amount       int             `json:"amount" db:"amount"`
	Price        decimal.Decimal `json:"price" db:"price"` // unit price at the time of purchase
}

// Subtotal is price * amount for the line.
func (it OrderItem) Subtotal() decimal.Decimal {
	return it.Price.Mul(decimal.NewFromInt(int64(it.Amount)))
}
