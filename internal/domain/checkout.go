package domain

import "time"

// CheckoutItem is a line item as it looked at checkout time.
type CheckoutItem struct {
	ProductID ProductID `json:"product_id"`
	Name      string    `json:"name"`
	Quantity  int       `json:"quantity"`
	UnitPrice int64     `json:"unit_price"`
	Subtotal  int64     `json:"subtotal"`
}

// CheckoutCompleted is emitted after a cart has been handed off to WhatsApp.
type CheckoutCompleted struct {
	CheckoutID    string         `json:"checkout_id"`
	CartID        string         `json:"cart_id"`
	Items         []CheckoutItem `json:"items"`
	TotalAmount   int64          `json:"total_amount"`
	Currency      string         `json:"currency"`
	CustomerName  string         `json:"customer_name"`
	CustomerPhone string         `json:"customer_phone"`
	CompletedAt   time.Time      `json:"completed_at"`
}
