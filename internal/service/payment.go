package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/amazing-outfits/shop-backend/internal/entities"
	"github.com/amazing-outfits/shop-backend/internal/paystack"
)

// ErrBadWebhookPayload marks a signature-valid webhook body that could not
// be decoded.
var ErrBadWebhookPayload = errors.New("malformed webhook payload")

// Gateway is the payment provider as the reconciliation flow sees it.
type Gateway interface {
	Initialize(ctx context.Context, req paystack.InitializeRequest) (paystack.Authorization, error)
	Verify(ctx context.Context, reference string) (paystack.Transaction, error)
	ValidateSignature(body []byte, signature string) bool
}

type PaymentRepo interface {
	GetOrderByID(ctx context.Context, orderID string) (entities.Order, error)
	MarkPaid(ctx context.Context, orderID string, reference string) (entities.Order, error)
	ClaimConfirmation(ctx context.Context, orderID string) (bool, error)
}

// ConfirmationSender delivers the order confirmation email. Failures are
// logged, never propagated.
type ConfirmationSender interface {
	SendOrderConfirmation(ctx context.Context, order entities.Order) error
}

type paymentService struct {
	logger      *slog.Logger
	gateway     Gateway
	repo        PaymentRepo
	notifier    ConfirmationSender
	callbackURL string
}

func NewPaymentService(logger *slog.Logger, gateway Gateway, repo PaymentRepo, notifier ConfirmationSender, callbackURL string) *paymentService {
	return &paymentService{
		logger:      logger.With(slog.String("service", "payment")),
		gateway:     gateway,
		repo:        repo,
		notifier:    notifier,
		callbackURL: callbackURL,
	}
}

// Initialize starts a provider transaction for the order. The reference
// carries the order identity plus a timestamp disambiguator; the metadata
// is what ties verify/webhook callbacks back to the order.
func (s *paymentService) Initialize(ctx context.Context, requester entities.Principal, orderID string) (paystack.Authorization, error) {
	order, err := s.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		return paystack.Authorization{}, err
	}
	if !requester.CanAccess(order) {
		return paystack.Authorization{}, entities.ErrAccessDenied
	}

	auth, err := s.gateway.Initialize(ctx, paystack.InitializeRequest{
		Email:       order.CustomerEmail,
		Amount:      order.Total,
		Reference:   fmt.Sprintf("order_%s_%d", order.ID, time.Now().UnixMilli()),
		CallbackURL: s.callbackURL,
		Metadata: paystack.Metadata{
			OrderID: order.ID,
			UserID:  order.CustomerID,
		},
	})
	if err != nil {
		return paystack.Authorization{}, err
	}

	s.logger.InfoContext(ctx, "payment initialized",
		slog.String("order_id", order.ID),
		slog.String("reference", auth.Reference),
	)
	return auth, nil
}

// Verify is the pull reconciliation path: the client asks us to check a
// reference with the provider. A successful charge moves the order to
// paid/confirmed; no email is sent on this path, the webhook owns the
// confirmation.
func (s *paymentService) Verify(ctx context.Context, reference string) (paystack.Transaction, string, error) {
	txn, err := s.gateway.Verify(ctx, reference)
	if err != nil {
		return paystack.Transaction{}, "", err
	}

	var orderNumber string
	if txn.Status == "success" && txn.Metadata.OrderID != "" {
		order, err := s.repo.MarkPaid(ctx, txn.Metadata.OrderID, reference)
		switch {
		case errors.Is(err, entities.ErrOrderNotFound):
			s.logger.WarnContext(ctx, "verified charge references unknown order",
				slog.String("order_id", txn.Metadata.OrderID),
				slog.String("reference", reference))
		case err != nil:
			return paystack.Transaction{}, "", err
		default:
			orderNumber = order.OrderNumber
			s.logger.InfoContext(ctx, "payment reconciled via verify",
				slog.String("order_id", order.ID),
				slog.String("reference", reference))
		}
	}

	return txn, orderNumber, nil
}

// HandleWebhook is the push reconciliation path. The signature gate runs
// before anything else; signature-valid events are always acknowledged so
// the provider stops retrying, recognized or not. The confirmation email
// is sent at most once, guarded by the claim on the order row.
func (s *paymentService) HandleWebhook(ctx context.Context, body []byte, signature string) error {
	if !s.gateway.ValidateSignature(body, signature) {
		return paystack.ErrInvalidSignature
	}

	var event paystack.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("%w: %v", ErrBadWebhookPayload, err)
	}

	if event.Event != "charge.success" {
		s.logger.DebugContext(ctx, "ignoring webhook event", slog.String("event", event.Event))
		return nil
	}
	if event.Data.Metadata.OrderID == "" {
		s.logger.WarnContext(ctx, "charge.success event without order metadata",
			slog.String("reference", event.Data.Reference))
		return nil
	}

	order, err := s.repo.MarkPaid(ctx, event.Data.Metadata.OrderID, event.Data.Reference)
	if errors.Is(err, entities.ErrOrderNotFound) {
		// Ack anyway, retrying will not make the order appear.
		s.logger.WarnContext(ctx, "webhook references unknown order",
			slog.String("order_id", event.Data.Metadata.OrderID))
		return nil
	}
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "payment reconciled via webhook",
		slog.String("order_id", order.ID),
		slog.String("reference", event.Data.Reference))

	claimed, err := s.repo.ClaimConfirmation(ctx, order.ID)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to claim confirmation",
			slog.String("order_id", order.ID), slog.Any("error", err))
		return nil
	}
	if !claimed {
		return nil
	}

	if err := s.notifier.SendOrderConfirmation(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to send confirmation email",
			slog.String("order_id", order.ID), slog.Any("error", err))
	}
	return nil
}
