package orders

import "time"

// Line is one cart entry inside an order. Stored as JSONB, the shape the
// storefront cart already uses.
type Line struct {
	CartID     string `json:"cart_id,omitempty"`
	Name       string `json:"name"`
	Portion    string `json:"portion,omitempty"`
	PriceCents int64  `json:"price_cents"`
	Quantity   int    `json:"quantity"`
	Image      string `json:"image,omitempty"`
}

// Address is the delivery address attached to an order.
type Address struct {
	Name   string `json:"name"`
	Street string `json:"street"`
	City   string `json:"city"`
	State  string `json:"state"`
	Zip    string `json:"zip"`
	Phone  string `json:"phone"`
}

// Order statuses. Orders start pending; confirmation is manual.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
)

type Order struct {
	ID            string    `json:"id"`
	UserID        *string   `json:"user_id,omitempty"`
	Items         []Line    `json:"items"`
	Address       *Address  `json:"address,omitempty"`
	PaymentMethod string    `json:"payment_method"`
	TotalCents    int64     `json:"total_cents"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

type CreateOrderRequest struct {
	UserID        *string  `json:"user_id"`
	Items         []Line   `json:"items"`
	Address       *Address `json:"address"`
	PaymentMethod string   `json:"payment_method"`
	TotalCents    int64    `json:"total_cents"`
}
