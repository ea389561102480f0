package models

import "time"

// UserAddress is the model for the 'user_addresses' table.
type UserAddress struct {
	ID           int64      `json:"id" db:"id"`
	UserID       int64      `json:"user_id" db:"user_id"`
	Province     string     `json:"province" db:"province"`
	City         string     `json:"city" db:"city"`
	District     string     `json:"district" db:"district"`
	Address      string     `json:"address" db:"address"`
	Zip          string     `json:"zip" db:"zip"`
	ContactName  string     `json:"contact_name" db:"contact_name"`
	ContactPhone string     `json:"contact_phone" db:"contact_phone"`
	LastUsedAt   *time.Time `json:"last_used_at,omitempty" db:"last_used_at"`
}

// FullAddress joins the address parts the way they are printed on a parcel.
func (a UserAddress) FullAddress() string {
	return a.Province + a.City + a.District + a.Address
}

// Snapshot copies the fields an order keeps from the address.
func (a UserAddress) Snapshot() AddressSnapshot {
	return AddressSnapshot{
		Address:      a.FullAddress(),
		Zip:          a.Zip,
		ContactName:  a.ContactName,
		ContactPhone: a.ContactPhone,
	}
}

// CartItem is the model for the 'cart_items' table.
type CartItem struct {
	ID           int64     `json:"id" db:"id"`
	UserID       int64     `json:"user_id" db:"user_id"`
	ProductSkuID int64     `json:"product_sku_id" db:"product_sku_id"`
	Amount       int       `json:"amount" db:"amount"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}
