package validation

// OrderItem is one requested line of an order.
type OrderItem struct {
	SkuID  int64 `json:"sku_id" validate:"required,gt=0"`
	Amount int   `json:"amount" validate:"required,min=1"`
}

// PlaceOrderRequest is the payload for POST /orders
type PlaceOrderRequest struct {
	AddressID int64       `json:"address_id" validate:"required,gt=0"`
	Remark    string      `json:"remark" validate:"max=500"`
	Items     []OrderItem `json:"items" validate:"required,min=1,max=100,dive"`
}

// AddCartItemRequest is the payload for POST /cart/items
type AddCartItemRequest struct {
	SkuID  int64 `json:"sku_id" validate:"required,gt=0"`
	Amount int   `json:"amount" validate:"required,min=1"`
}

// SearchRequest is the query string of GET /products
type SearchRequest struct {
	Page       int    `form:"page" validate:"omitempty,min=1,max=10000"`
	PerPage    int    `form:"per_page" validate:"omitempty,min=1,max=100"`
	Order      string `form:"order"`
	CategoryID int64  `form:"category_id" validate:"omitempty,gt=0"`
	Search     string `form:"search" validate:"max=200"`
	Filters    string `form:"filters" validate:"max=500"`
}

// ListOrdersRequest is the query string of GET /orders
type ListOrdersRequest struct {
	Page    int `form:"page" validate:"omitempty,min=1,max=10000"`
	PerPage int `form:"per_page" validate:"omitempty,min=1,max=100"`
}
