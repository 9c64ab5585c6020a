package domain

import (
	"time"

	"github.com/google/uuid"
)

// Order represents a placed order with its payment and delivery state.
type Order struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	UserID          uuid.UUID       `json:"user_id" db:"user_id"`
	Items           []OrderItem     `json:"items"`
	ShippingAddress ShippingAddress `json:"shipping_address"`
	PaymentMethod   string          `json:"payment_method" db:"payment_method"`
	ItemsPrice      float64         `json:"items_price" db:"items_price"`
	TaxPrice        float64         `json:"tax_price" db:"tax_price"`
	ShippingPrice   float64         `json:"shipping_price" db:"shipping_price"`
	TotalPrice      float64         `json:"total_price" db:"total_price"`
	IsPaid          bool            `json:"is_paid" db:"is_paid"`
	PaidAt          *time.Time      `json:"paid_at,omitempty" db:"paid_at"`
	PaymentResult   *PaymentResult  `json:"payment_result,omitempty"`
	IsDelivered     bool            `json:"is_delivered" db:"is_delivered"`
	DeliveredAt     *time.Time      `json:"delivered_at,omitempty" db:"delivered_at"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}

// OrderItem is a single line item of an order. Name, image and price
// are snapshotted from the product at order time.
type OrderItem struct {
	ID        uuid.UUID `json:"id" db:"id"`
	OrderID   uuid.UUID `json:"order_id" db:"order_id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	Name      string    `json:"name" db:"name"`
	ImageURL  string    `json:"image_url" db:"image_url"`
	Price     float64   `json:"price" db:"price"`
	Qty       int       `json:"qty" db:"qty"`
}

// ShippingAddress is the delivery destination of an order.
type ShippingAddress struct {
	Address    string `json:"address" db:"ship_address"`
	City       string `json:"city" db:"ship_city"`
	PostalCode string `json:"postal_code" db:"ship_postal_code"`
	Country    string `json:"country" db:"ship_country"`
}

// PaymentResult carries the payment provider's confirmation details.
type PaymentResult struct {
	TransactionID string `json:"transaction_id" db:"pay_transaction_id"`
	Status        string `json:"status" db:"pay_status"`
	Email         string `json:"email" db:"pay_email"`
}
