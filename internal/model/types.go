// Package model defines domain types used by the service.
package model

// Order represents a Shopify orders/create webhook payload. Fields mirror
// the wire shape; monetary amounts stay strings exactly as Shopify sends
// them. An Order is decoded once per event and never mutated afterwards.
type Order struct {
	ID              int64      `json:"id"`
	OrderNumber     int64      `json:"order_number"`
	Currency        string     `json:"currency"`
	TotalPrice      string     `json:"total_price"`
	Customer        *Customer  `json:"customer,omitempty"`
	LineItems       []LineItem `json:"line_items"`
	ShippingAddress *Address   `json:"shipping_address,omitempty"`
	CreatedAt       string     `json:"created_at"`
}

// Customer is the optional buyer record attached to an order. Every field
// may be empty; guest checkouts carry no customer at all.
type Customer struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// LineItem is a single purchased item. Insertion order is significant.
type LineItem struct {
	Title    string `json:"title"`
	Quantity int64  `json:"quantity"`
	Price    string `json:"price"`
}

// Address is the optional shipping address; all fields may be empty.
type Address struct {
	Address1 string `json:"address1"`
	City     string `json:"city"`
	Province string `json:"province"`
	Zip      string `json:"zip"`
	Country  string `json:"country"`
}
