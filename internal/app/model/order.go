package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string
type PaymentStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"

	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether next is directly reachable from s.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsPaid is true once a payment moved the order out of PENDING and it was not cancelled.
func (s OrderStatus) IsPaid() bool {
	return s == OrderStatusProcessing || s == OrderStatusShipped || s == OrderStatusDelivered
}

// ShippingAddress is the address copied into an order at commit time.
type ShippingAddress struct {
	Recipient  string `gorm:"size:100" json:"recipient"`
	Phone      string `gorm:"size:30" json:"phone"`
	Line1      string `gorm:"size:255" json:"line1"`
	Line2      string `gorm:"size:255" json:"line2"`
	City       string `gorm:"size:100" json:"city"`
	PostalCode string `gorm:"size:20" json:"postal_code"`
	Country    string `gorm:"size:2" json:"country"`
}

type Order struct {
	ID              uint            `gorm:"primarykey" json:"id"`
	UserID          uint            `gorm:"not null;index" json:"user_id"`
	Status          OrderStatus     `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	Subtotal        decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"subtotal"`
	DiscountAmount  decimal.Decimal `gorm:"type:decimal(16,2);not null;default:0" json:"discount_amount"`
	TaxAmount       decimal.Decimal `gorm:"type:decimal(16,2);not null;default:0" json:"tax_amount"`
	ShippingAmount  decimal.Decimal `gorm:"type:decimal(16,2);not null;default:0" json:"shipping_amount"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"total_amount"`
	Currency        string          `gorm:"size:3;not null;default:'USD'" json:"currency"`
	CouponID        *uint           `gorm:"index" json:"coupon_id,omitempty"`
	CouponCode      string          `gorm:"size:32" json:"coupon_code,omitempty"`
	AddressID       *uint           `json:"address_id,omitempty"`
	ShippingAddress ShippingAddress `gorm:"embedded;embeddedPrefix:ship_" json:"shipping_address"`
	PaymentRef      string          `gorm:"size:64;index" json:"payment_ref,omitempty"`
	PaymentURL      string          `gorm:"size:512" json:"payment_url,omitempty"`
	CheckoutAt      *time.Time      `json:"checkout_at,omitempty"` // when the open provider checkout was created
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`

	OrderItems []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"order_items,omitempty"`
	Payments   []Payment   `gorm:"foreignKey:OrderID" json:"payments,omitempty"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderItem is a price snapshot; it never follows later catalog changes.
type OrderItem struct {
	ID           uint            `gorm:"primarykey" json:"id"`
	OrderID      uint            `gorm:"not null;index" json:"order_id"`
	ProductID    uint            `gorm:"not null;index" json:"product_id"`
	VariantID    *uint           `gorm:"index" json:"variant_id,omitempty"`
	Title        string          `gorm:"size:255;not null" json:"title"`
	VariantLabel string          `gorm:"size:120" json:"variant_label,omitempty"`
	Quantity     int             `gorm:"not null" json:"quantity"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"unit_price"`
	LineTotal    decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"line_total"`
	CreatedAt    time.Time       `json:"created_at"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

type Payment struct {
	ID            uint            `gorm:"primarykey" json:"id"`
	OrderID       uint            `gorm:"not null;index" json:"order_id"`
	Amount        decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"amount"`
	Method        string          `gorm:"size:50" json:"method"`
	Status        PaymentStatus   `gorm:"type:varchar(20);not null" json:"status"`
	TransactionID string          `gorm:"size:100;not null;uniqueIndex" json:"transaction_id"`
	RefundDue     bool            `gorm:"not null;default:false;index" json:"refund_due"` // captured after the order was cancelled
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (Payment) TableName() string {
	return "payments"
}
