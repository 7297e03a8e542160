package repo

import (
	"database/sql"
	"time"

	"github.com/amazing-outfits/shop-backend/internal/entities"
)

type Order struct {
	ID               string         `db:"id"`
	OrderNumber      string         `db:"order_number"`
	CustomerID       string         `db:"customer_id"`
	CustomerEmail    string         `db:"customer_email"`
	CustomerName     sql.NullString `db:"customer_name"`
	Subtotal         int64          `db:"subtotal"`
	ShippingFee      int64          `db:"shipping_fee"`
	Total            int64          `db:"total"`
	Status           string         `db:"status"`
	PaymentStatus    string         `db:"payment_status"`
	PaymentMethod    sql.NullString `db:"payment_method"`
	PaymentReference sql.NullString `db:"payment_reference"`
	Notes            sql.NullString `db:"notes"`
	ConfirmationSent bool           `db:"confirmation_sent"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
}

type ShippingAddress struct {
	OrderID      string         `db:"order_id"`
	FullName     string         `db:"full_name"`
	Phone        sql.NullString `db:"phone"`
	AddressLine1 string         `db:"address_line1"`
	AddressLine2 sql.NullString `db:"address_line2"`
	City         sql.NullString `db:"city"`
	County       sql.NullString `db:"county"`
}

type Item struct {
	ID           int64          `db:"id"`
	OrderID      string         `db:"order_id"`
	ProductID    string         `db:"product_id"`
	ProductName  string         `db:"product_name"`
	ProductImage sql.NullString `db:"product_image"`
	Quantity     int            `db:"quantity"`
	Price        int64          `db:"price"`
	Size         sql.NullString `db:"size"`
	Color        sql.NullString `db:"color"`
}

func AddressToEntity(a ShippingAddress) entities.ShippingAddress {
	return entities.ShippingAddress{
		FullName:     a.FullName,
		Phone:        nullStringToString(a.Phone),
		AddressLine1: a.AddressLine1,
		AddressLine2: nullStringToString(a.AddressLine2),
		City:         nullStringToString(a.City),
		County:       nullStringToString(a.County),
	}
}

func ItemToEntity(i Item) entities.Item {
	return entities.Item{
		ProductID:    i.ProductID,
		ProductName:  i.ProductName,
		ProductImage: nullStringToString(i.ProductImage),
		Quantity:     i.Quantity,
		Price:        i.Price,
		Size:         nullStringToString(i.Size),
		Color:        nullStringToString(i.Color),
	}
}

func OrderToEntity(o Order, a ShippingAddress, items []Item) entities.Order {
	order := entities.Order{
		ID:               o.ID,
		OrderNumber:      o.OrderNumber,
		CustomerID:       o.CustomerID,
		CustomerEmail:    o.CustomerEmail,
		CustomerName:     nullStringToString(o.CustomerName),
		ShippingAddress:  AddressToEntity(a),
		Subtotal:         o.Subtotal,
		ShippingFee:      o.ShippingFee,
		Total:            o.Total,
		Status:           entities.OrderStatus(o.Status),
		PaymentStatus:    entities.PaymentStatus(o.PaymentStatus),
		PaymentMethod:    nullStringToString(o.PaymentMethod),
		PaymentReference: nullStringToString(o.PaymentReference),
		Notes:            nullStringToString(o.Notes),
		ConfirmationSent: o.ConfirmationSent,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}

	if len(items) > 0 {
		order.Items = make([]entities.Item, 0, len(items))
		for _, it := range items {
			order.Items = append(order.Items, ItemToEntity(it))
		}
	}

	return order
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullStringToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}
