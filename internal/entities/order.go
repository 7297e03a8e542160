package entities

import (
	"errors"
	"fmt"
	"time"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusConfirmed  OrderStatus = "confirmed"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

// ShippingAddress is stored as submitted at checkout.
type ShippingAddress struct {
	FullName     string
	Phone        string
	AddressLine1 string
	AddressLine2 string
	City         string
	County       string
}

// Item is a snapshot of a catalog product at order time. Name, image and
// price are denormalized so later catalog edits never change the order.
type Item struct {
	ProductID    string
	ProductName  string
	ProductImage string
	Quantity     int
	Price        int64 // kobo
	Size         string
	Color        string
}

func (i Item) LineTotal() int64 {
	return i.Price * int64(i.Quantity)
}

type Order struct {
	ID          string
	OrderNumber string

	CustomerID string
	// Snapshots from the auth token at order time, used for emails.
	CustomerEmail string
	CustomerName  string

	Items           []Item
	ShippingAddress ShippingAddress

	Subtotal    int64
	ShippingFee int64
	Total       int64

	Status           OrderStatus
	PaymentStatus    PaymentStatus
	PaymentMethod    string
	PaymentReference string
	Notes            string

	// ConfirmationSent is the claim flag that keeps the confirmation
	// email at-most-once across verify/webhook reconciliation.
	ConfirmationSent bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// OrderFilter narrows admin order listings.
type OrderFilter struct {
	Status OrderStatus
	Limit  uint64
	Offset uint64
}

var (
	ErrOrderNotFound    = errors.New("order not found")
	ErrInvalidOrder     = errors.New("invalid order")
	ErrAccessDenied     = errors.New("access denied")
	ErrOrderNumberTaken = errors.New("order number already taken")
)

// FormatOrderNumber renders the human-readable order number,
// AO-YYYYMMDD-NNNN, from the per-day counter value.
func FormatOrderNumber(day time.Time, seq int) string {
	return fmt.Sprintf("AO-%s-%04d", day.Format("20060102"), seq%10000)
}
