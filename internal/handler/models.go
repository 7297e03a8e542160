package handler

import (
	"time"

	"github.com/amazing-outfits/shop-backend/internal/entities"
	"github.com/amazing-outfits/shop-backend/internal/paystack"
)

// CreateOrderRequest is the checkout payload. Field names follow the
// public API contract (camelCase).
type CreateOrderRequest struct {
	Items           []OrderItemRequest      `json:"items" validate:"required,min=1,dive"`
	ShippingAddress *ShippingAddressRequest `json:"shippingAddress" validate:"required"`
	PaymentMethod   string                  `json:"paymentMethod"`
	Notes           string                  `json:"notes"`
}

type OrderItemRequest struct {
	Product      string `json:"product" validate:"required"`
	ProductName  string `json:"productName" validate:"required"`
	ProductImage string `json:"productImage"`
	Quantity     int    `json:"quantity" validate:"required,gte=1"`
	Price        int64  `json:"price" validate:"required,gt=0"`
	Size         string `json:"size"`
	Color        string `json:"color"`
}

type ShippingAddressRequest struct {
	FullName     string `json:"fullName" validate:"required"`
	Phone        string `json:"phone"`
	AddressLine1 string `json:"addressLine1" validate:"required"`
	AddressLine2 string `json:"addressLine2"`
	City         string `json:"city"`
	County       string `json:"county"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type UpdatePaymentRequest struct {
	PaymentStatus    string `json:"paymentStatus" validate:"required"`
	PaymentReference string `json:"paymentReference"`
}

type InitializePaymentRequest struct {
	OrderID string `json:"orderId" validate:"required"`
}

type Order struct {
	ID               string          `json:"id"`
	OrderNumber      string          `json:"orderNumber"`
	User             string          `json:"user"`
	Items            []OrderItem     `json:"items"`
	ShippingAddress  ShippingAddress `json:"shippingAddress"`
	Subtotal         int64           `json:"subtotal"`
	ShippingFee      int64           `json:"shippingFee"`
	Total            int64           `json:"total"`
	Status           string          `json:"status"`
	PaymentStatus    string          `json:"paymentStatus"`
	PaymentMethod    string          `json:"paymentMethod,omitempty"`
	PaymentReference string          `json:"paymentReference,omitempty"`
	Notes            string          `json:"notes,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

type OrderItem struct {
	Product      string `json:"product"`
	ProductName  string `json:"productName"`
	ProductImage string `json:"productImage,omitempty"`
	Quantity     int    `json:"quantity"`
	Price        int64  `json:"price"`
	Size         string `json:"size,omitempty"`
	Color        string `json:"color,omitempty"`
}

type ShippingAddress struct {
	FullName     string `json:"fullName"`
	Phone        string `json:"phone,omitempty"`
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2,omitempty"`
	City         string `json:"city,omitempty"`
	County       string `json:"county,omitempty"`
}

type OrderListResponse struct {
	Orders     []Order `json:"orders"`
	Total      int64   `json:"total"`
	Page       uint64  `json:"page"`
	Limit      uint64  `json:"limit"`
	TotalPages int64   `json:"totalPages"`
}

// VerifyResponse is the provider's transaction record plus the matched
// order's number, when reconciliation found one.
type VerifyResponse struct {
	Status      string            `json:"status"`
	Reference   string            `json:"reference"`
	Amount      int64             `json:"amount"`
	Channel     string            `json:"channel,omitempty"`
	PaidAt      string            `json:"paid_at,omitempty"`
	Metadata    paystack.Metadata `json:"metadata"`
	OrderNumber string            `json:"orderNumber,omitempty"`
}

func (r CreateOrderRequest) ItemEntities() []entities.Item {
	items := make([]entities.Item, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, entities.Item{
			ProductID:    it.Product,
			ProductName:  it.ProductName,
			ProductImage: it.ProductImage,
			Quantity:     it.Quantity,
			Price:        it.Price,
			Size:         it.Size,
			Color:        it.Color,
		})
	}
	return items
}

func (r CreateOrderRequest) AddressEntity() entities.ShippingAddress {
	if r.ShippingAddress == nil {
		return entities.ShippingAddress{}
	}
	return entities.ShippingAddress{
		FullName:     r.ShippingAddress.FullName,
		Phone:        r.ShippingAddress.Phone,
		AddressLine1: r.ShippingAddress.AddressLine1,
		AddressLine2: r.ShippingAddress.AddressLine2,
		City:         r.ShippingAddress.City,
		County:       r.ShippingAddress.County,
	}
}

func OrderEntityToJSON(o entities.Order) Order {
	items := make([]OrderItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItem{
			Product:      it.ProductID,
			ProductName:  it.ProductName,
			ProductImage: it.ProductImage,
			Quantity:     it.Quantity,
			Price:        it.Price,
			Size:         it.Size,
			Color:        it.Color,
		})
	}

	return Order{
		ID:          o.ID,
		OrderNumber: o.OrderNumber,
		User:        o.CustomerID,
		Items:       items,
		ShippingAddress: ShippingAddress{
			FullName:     o.ShippingAddress.FullName,
			Phone:        o.ShippingAddress.Phone,
			AddressLine1: o.ShippingAddress.AddressLine1,
			AddressLine2: o.ShippingAddress.AddressLine2,
			City:         o.ShippingAddress.City,
			County:       o.ShippingAddress.County,
		},
		Subtotal:         o.Subtotal,
		ShippingFee:      o.ShippingFee,
		Total:            o.Total,
		Status:           string(o.Status),
		PaymentStatus:    string(o.PaymentStatus),
		PaymentMethod:    o.PaymentMethod,
		PaymentReference: o.PaymentReference,
		Notes:            o.Notes,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}
}

func OrdersEntityToJSON(orders []entities.Order) []Order {
	result := make([]Order, 0, len(orders))
	for _, o := range orders {
		result = append(result, OrderEntityToJSON(o))
	}
	return result
}
