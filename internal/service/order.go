package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/amazing-outfits/shop-backend/internal/entities"
	"github.com/amazing-outfits/shop-backend/pkg/trm"
	"github.com/amazing-outfits/shop-backend/pkg/utils"

	"github.com/google/uuid"
)

type OrderRepo interface {
	NextOrderNumber(ctx context.Context, day time.Time) (string, error)
	SaveOrder(ctx context.Context, o entities.Order) error
	SaveShippingAddress(ctx context.Context, orderID string, a entities.ShippingAddress) error
	SaveItems(ctx context.Context, orderID string, items []entities.Item) error

	GetOrderByID(ctx context.Context, orderID string) (entities.Order, error)
	OrdersByCustomer(ctx context.Context, customerID string) ([]entities.Order, error)
	ListOrders(ctx context.Context, f entities.OrderFilter) ([]entities.Order, int64, error)

	UpdateStatus(ctx context.Context, orderID string, status entities.OrderStatus) (entities.Order, error)
	UpdatePayment(ctx context.Context, orderID string, status entities.PaymentStatus, reference string) (entities.Order, error)
}

// StatusNotifier delivers the status-update email. Failures are logged,
// never propagated.
type StatusNotifier interface {
	SendStatusUpdate(ctx context.Context, order entities.Order) error
}

type orderService struct {
	logger      *slog.Logger
	txManager   trm.Manager
	repo        OrderRepo
	notifier    StatusNotifier
	shippingFee int64
}

func NewOrderService(logger *slog.Logger, txManager trm.Manager, repo OrderRepo, notifier StatusNotifier, shippingFee int64) *orderService {
	return &orderService{
		logger:      logger.With(slog.String("service", "order")),
		txManager:   txManager,
		repo:        repo,
		notifier:    notifier,
		shippingFee: shippingFee,
	}
}

// CreateOrder validates the checkout input, prices the order and persists
// it in pending/pending state. Line-item prices are taken as submitted and
// never recomputed from the catalog. No email is sent here: the
// confirmation waits for payment.
func (s *orderService) CreateOrder(
	ctx context.Context,
	customer entities.Principal,
	items []entities.Item,
	address entities.ShippingAddress,
	paymentMethod, notes string,
) (entities.Order, error) {
	if len(items) == 0 {
		return entities.Order{}, fmt.Errorf("%w: order must contain at least one item", entities.ErrInvalidOrder)
	}
	for _, it := range items {
		if it.ProductID == "" || it.Quantity < 1 || it.Price <= 0 {
			return entities.Order{}, fmt.Errorf("%w: invalid item data", entities.ErrInvalidOrder)
		}
	}
	if (address == entities.ShippingAddress{}) {
		return entities.Order{}, fmt.Errorf("%w: shipping address is required", entities.ErrInvalidOrder)
	}

	var subtotal int64
	for _, it := range items {
		subtotal += it.LineTotal()
	}

	order := entities.Order{
		ID:              uuid.NewString(),
		CustomerID:      customer.ID,
		CustomerEmail:   customer.Email,
		CustomerName:    customer.Name,
		Items:           items,
		ShippingAddress: address,
		Subtotal:        subtotal,
		ShippingFee:     s.shippingFee,
		Total:           subtotal + s.shippingFee,
		Status:          entities.StatusPending,
		PaymentStatus:   entities.PaymentPending,
		PaymentMethod:   paymentMethod,
		Notes:           notes,
	}

	fn := func() error {
		return s.txManager.Do(ctx, func(ctx context.Context) error {
			number, err := s.repo.NextOrderNumber(ctx, time.Now())
			if err != nil {
				return err
			}
			order.OrderNumber = number

			if err := s.repo.SaveOrder(ctx, order); err != nil {
				return fmt.Errorf("failed to save order: %w", err)
			}
			if err := s.repo.SaveShippingAddress(ctx, order.ID, order.ShippingAddress); err != nil {
				return fmt.Errorf("failed to save shipping address: %w", err)
			}
			if err := s.repo.SaveItems(ctx, order.ID, order.Items); err != nil {
				return fmt.Errorf("failed to save items: %w", err)
			}
			return nil
		})
	}

	cfg := utils.RetryConfig{
		InitialDelay: 100 * time.Millisecond,
		MaxAttempts:  5,
		Multiplier:   2,
	}
	if err := utils.Retry(cfg, fn); err != nil {
		return entities.Order{}, err
	}

	s.logger.InfoContext(ctx, "order created",
		slog.String("order_id", order.ID),
		slog.String("order_number", order.OrderNumber),
		slog.Int64("total", order.Total),
	)

	return s.repo.GetOrderByID(ctx, order.ID)
}

func (s *orderService) CustomerOrders(ctx context.Context, customerID string) ([]entities.Order, error) {
	return s.repo.OrdersByCustomer(ctx, customerID)
}

func (s *orderService) Orders(ctx context.Context, f entities.OrderFilter) ([]entities.Order, int64, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, 0, fmt.Errorf("%w: invalid status", entities.ErrInvalidOrder)
	}
	return s.repo.ListOrders(ctx, f)
}

func (s *orderService) Order(ctx context.Context, orderID string, requester entities.Principal) (entities.Order, error) {
	order, err := s.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		return entities.Order{}, err
	}
	if !requester.CanAccess(order) {
		return entities.Order{}, entities.ErrAccessDenied
	}
	return order, nil
}

// UpdateStatus applies an admin workflow-status change and emails the
// customer best-effort, a delivery failure never fails the update.
func (s *orderService) UpdateStatus(ctx context.Context, orderID string, status entities.OrderStatus) (entities.Order, error) {
	if !status.Valid() {
		return entities.Order{}, fmt.Errorf("%w: invalid status", entities.ErrInvalidOrder)
	}

	order, err := s.repo.UpdateStatus(ctx, orderID, status)
	if err != nil {
		return entities.Order{}, err
	}

	if err := s.notifier.SendStatusUpdate(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to send status update email",
			slog.String("order_id", order.ID), slog.Any("error", err))
	}

	return order, nil
}

// UpdatePaymentStatus is the manual admin correction path. No email.
func (s *orderService) UpdatePaymentStatus(ctx context.Context, orderID string, status entities.PaymentStatus, reference string) (entities.Order, error) {
	if !status.Valid() {
		return entities.Order{}, fmt.Errorf("%w: invalid payment status", entities.ErrInvalidOrder)
	}
	return s.repo.UpdatePayment(ctx, orderID, status, reference)
}
