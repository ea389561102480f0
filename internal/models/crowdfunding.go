package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Crowdfunding statuses
const (
	CrowdfundingStatusFunding = "funding"
	CrowdfundingStatusSuccess = "success"
	CrowdfundingStatusFail    = "fail"
)

// Crowdfunding is the model for the 'crowdfunding_products' table.
type Crowdfunding struct {
	ID           int64           `json:"id" db:"id"`
	ProductID    int64           `json:"product_id" db:"product_id"`
	TargetAmount decimal.Decimal `json:"target_amount" db:"target_amount"`
	TotalAmount  decimal.Decimal `json:"total_amount" db:"total_amount"`
	UserCount    int             `json:"user_count" db:"user_count"`
	EndAt        time.Time       `json:"end_at" db:"end_at"`
	Status       string          `json:"status" db:"status"`
}

// Percent is the funded share of the target, 0-100, rounded to two places.
func (c Crowdfunding) Percent() decimal.Decimal {
	if c.TargetAmount.IsZero() {
		return decimal.Zero
	}
	return c.TotalAmount.Div(c.TargetAmount).Mul(decimal.NewFromInt(100)).Round(2)
}

// CrowdfundingProgress is the aggregate recomputed whenever a crowdfunding order is paid.
type CrowdfundingProgress struct {
	TotalAmount decimal.Decimal
	UserCount   int
}
