package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/amazing-outfits/shop-backend/internal/entities"
	"github.com/amazing-outfits/shop-backend/pkg/trm"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var orderColumns = []string{
	"id", "order_number", "customer_id", "customer_email", "customer_name",
	"subtotal", "shipping_fee", "total", "status", "payment_status",
	"payment_method", "payment_reference", "notes", "confirmation_sent",
	"created_at", "updated_at",
}

type postgresRepo struct {
	db *sqlx.DB
	qb sq.StatementBuilderType
}

func NewPostgresRepo(db *sqlx.DB) *postgresRepo {
	return &postgresRepo{
		db: db,
		qb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// NextOrderNumber allocates the next order number for the given day from
// the per-day counter, atomically.
func (r *postgresRepo) NextOrderNumber(ctx context.Context, day time.Time) (string, error) {
	query, args := r.qb.Insert("order_counters").
		Columns("day", "value").
		Values(day.Format("2006-01-02"), 1).
		Suffix("ON CONFLICT (day) DO UPDATE SET value = order_counters.value + 1 RETURNING value").
		MustSql()

	var seq int
	if err := r.getContext(ctx, &seq, query, args...); err != nil {
		return "", fmt.Errorf("failed to allocate order number: %w", err)
	}
	return entities.FormatOrderNumber(day, seq), nil
}

func (r *postgresRepo) SaveOrder(ctx context.Context, o entities.Order) error {
	query, args := r.qb.Insert("orders").
		Columns(
			"id", "order_number", "customer_id", "customer_email", "customer_name",
			"subtotal", "shipping_fee", "total", "status", "payment_status",
			"payment_method", "payment_reference", "notes",
		).
		Values(
			o.ID, o.OrderNumber, o.CustomerID, o.CustomerEmail, nullString(o.CustomerName),
			o.Subtotal, o.ShippingFee, o.Total, string(o.Status), string(o.PaymentStatus),
			nullString(o.PaymentMethod), nullString(o.PaymentReference), nullString(o.Notes),
		).
		MustSql()

	_, err := r.execContext(ctx, query, args...)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" && pqErr.Constraint == "orders_order_number_key" {
		return entities.ErrOrderNumberTaken
	}
	if err != nil {
		return fmt.Errorf("failed to save order: %w", err)
	}
	return nil
}

func (r *postgresRepo) SaveShippingAddress(ctx context.Context, orderID string, a entities.ShippingAddress) error {
	query, args := r.qb.Insert("shipping_addresses").
		Columns("order_id", "full_name", "phone", "address_line1", "address_line2", "city", "county").
		Values(
			orderID, a.FullName, nullString(a.Phone), a.AddressLine1,
			nullString(a.AddressLine2), nullString(a.City), nullString(a.County),
		).
		MustSql()

	_, err := r.execContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to save shipping address: %w", err)
	}
	return nil
}

func (r *postgresRepo) SaveItems(ctx context.Context, orderID string, items []entities.Item) error {
	if len(items) == 0 {
		return nil
	}

	q := r.qb.Insert("order_items").
		Columns("order_id", "product_id", "product_name", "product_image", "quantity", "price", "size", "color")

	for _, it := range items {
		q = q.Values(
			orderID,
			it.ProductID,
			it.ProductName,
			nullString(it.ProductImage),
			it.Quantity,
			it.Price,
			nullString(it.Size),
			nullString(it.Color),
		)
	}

	query, args := q.MustSql()
	_, err := r.execContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to save order items: %w", err)
	}
	return nil
}

func (r *postgresRepo) GetOrderByID(ctx context.Context, orderID string) (entities.Order, error) {
	query, args := r.qb.Select(orderColumns...).
		From("orders").
		Where(sq.Eq{"id": orderID}).
		MustSql()

	var order Order
	err := r.getContext(ctx, &order, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.Order{}, entities.ErrOrderNotFound
	}
	if err != nil {
		return entities.Order{}, fmt.Errorf("failed to get order: %w", err)
	}

	query, args = r.qb.Select("order_id", "full_name", "phone", "address_line1", "address_line2", "city", "county").
		From("shipping_addresses").
		Where(sq.Eq{"order_id": orderID}).
		MustSql()

	var address ShippingAddress
	err = r.getContext(ctx, &address, query, args...)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return entities.Order{}, fmt.Errorf("failed to get shipping address: %w", err)
	}

	query, args = r.qb.Select("id", "order_id", "product_id", "product_name", "product_image", "quantity", "price", "size", "color").
		From("order_items").
		Where(sq.Eq{"order_id": orderID}).
		OrderBy("id").
		MustSql()

	var items []Item
	if err := r.selectContext(ctx, &items, query, args...); err != nil {
		return entities.Order{}, fmt.Errorf("failed to get order items: %w", err)
	}

	return OrderToEntity(order, address, items), nil
}

func (r *postgresRepo) OrdersByCustomer(ctx context.Context, customerID string) ([]entities.Order, error) {
	query, args := r.qb.Select(orderColumns...).
		From("orders").
		Where(sq.Eq{"customer_id": customerID}).
		OrderBy("created_at DESC").
		MustSql()

	var orders []Order
	if err := r.selectContext(ctx, &orders, query, args...); err != nil {
		return nil, fmt.Errorf("failed to select orders: %w", err)
	}

	return r.attach(ctx, orders)
}

func (r *postgresRepo) ListOrders(ctx context.Context, f entities.OrderFilter) ([]entities.Order, int64, error) {
	where := sq.Eq{}
	if f.Status != "" {
		where["status"] = string(f.Status)
	}

	query, args := r.qb.Select("count(*)").From("orders").Where(where).MustSql()

	var total int64
	if err := r.getContext(ctx, &total, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	q := r.qb.Select(orderColumns...).
		From("orders").
		Where(where).
		OrderBy("created_at DESC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}
	query, args = q.MustSql()

	var orders []Order
	if err := r.selectContext(ctx, &orders, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to select orders: %w", err)
	}

	result, err := r.attach(ctx, orders)
	if err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

// attach loads shipping addresses and items for a page of order rows.
func (r *postgresRepo) attach(ctx context.Context, orders []Order) ([]entities.Order, error) {
	if len(orders) == 0 {
		return []entities.Order{}, nil
	}

	ids := make([]string, len(orders))
	for i, order := range orders {
		ids[i] = order.ID
	}

	query, args := r.qb.Select("order_id", "full_name", "phone", "address_line1", "address_line2", "city", "county").
		From("shipping_addresses").
		Where(sq.Eq{"order_id": ids}).
		MustSql()

	var addresses []ShippingAddress
	if err := r.selectContext(ctx, &addresses, query, args...); err != nil {
		return nil, fmt.Errorf("failed to select shipping addresses: %w", err)
	}
	addressMap := make(map[string]ShippingAddress, len(addresses))
	for _, a := range addresses {
		addressMap[a.OrderID] = a
	}

	query, args = r.qb.Select("id", "order_id", "product_id", "product_name", "product_image", "quantity", "price", "size", "color").
		From("order_items").
		Where(sq.Eq{"order_id": ids}).
		OrderBy("id").
		MustSql()

	var items []Item
	if err := r.selectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("failed to select order items: %w", err)
	}
	itemsMap := make(map[string][]Item, len(ids))
	for _, it := range items {
		itemsMap[it.OrderID] = append(itemsMap[it.OrderID], it)
	}

	result := make([]entities.Order, 0, len(orders))
	for _, order := range orders {
		result = append(result, OrderToEntity(order, addressMap[order.ID], itemsMap[order.ID]))
	}
	return result, nil
}

func (r *postgresRepo) UpdateStatus(ctx context.Context, orderID string, status entities.OrderStatus) (entities.Order, error) {
	query, args := r.qb.Update("orders").
		Set("status", string(status)).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": orderID}).
		MustSql()

	if err := r.mustUpdate(ctx, query, args...); err != nil {
		return entities.Order{}, err
	}
	return r.GetOrderByID(ctx, orderID)
}

func (r *postgresRepo) UpdatePayment(ctx context.Context, orderID string, status entities.PaymentStatus, reference string) (entities.Order, error) {
	query, args := r.qb.Update("orders").
		Set("payment_status", string(status)).
		Set("payment_reference", nullString(reference)).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": orderID}).
		MustSql()

	if err := r.mustUpdate(ctx, query, args...); err != nil {
		return entities.Order{}, err
	}
	return r.GetOrderByID(ctx, orderID)
}

// MarkPaid applies the terminal payment mutation in a single statement:
// repeated application is a no-op at the data level.
func (r *postgresRepo) MarkPaid(ctx context.Context, orderID string, reference string) (entities.Order, error) {
	query, args := r.qb.Update("orders").
		Set("payment_status", string(entities.PaymentPaid)).
		Set("status", string(entities.StatusConfirmed)).
		Set("payment_reference", reference).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": orderID}).
		MustSql()

	if err := r.mustUpdate(ctx, query, args...); err != nil {
		return entities.Order{}, err
	}
	return r.GetOrderByID(ctx, orderID)
}

// ClaimConfirmation flips the confirmation flag and reports whether this
// caller won the claim. Only the winner may send the confirmation email.
func (r *postgresRepo) ClaimConfirmation(ctx context.Context, orderID string) (bool, error) {
	query, args := r.qb.Update("orders").
		Set("confirmation_sent", true).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": orderID, "confirmation_sent": false}).
		MustSql()

	res, err := r.execContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to claim confirmation: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to claim confirmation: %w", err)
	}
	return affected == 1, nil
}

func (r *postgresRepo) mustUpdate(ctx context.Context, query string, args ...any) error {
	res, err := r.execContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}
	if affected == 0 {
		return entities.ErrOrderNotFound
	}
	return nil
}

func (r *postgresRepo) execContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	tx := trm.ExtractTx(ctx)
	if tx != nil {
		return tx.ExecContext(ctx, query, args...)
	}
	return r.db.ExecContext(ctx, query, args...)
}

func (r *postgresRepo) getContext(ctx context.Context, dest any, query string, args ...any) error {
	tx := trm.ExtractTx(ctx)
	if tx != nil {
		return tx.GetContext(ctx, dest, query, args...)
	}
	return r.db.GetContext(ctx, dest, query, args...)
}

func (r *postgresRepo) selectContext(ctx context.Context, dest any, query string, args ...any) error {
	tx := trm.ExtractTx(ctx)
	if tx != nil {
		return tx.SelectContext(ctx, dest, query, args...)
	}
	return r.db.SelectContext(ctx, dest, query, args...)
}
