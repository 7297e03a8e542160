package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/amazing-outfits/shop-backend/internal/entities"
	"github.com/amazing-outfits/shop-backend/internal/middleware"
	"github.com/amazing-outfits/shop-backend/internal/paystack"
	"github.com/amazing-outfits/shop-backend/internal/service"
	"github.com/amazing-outfits/shop-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

const maxWebhookBody = 1 << 20

type PaymentService interface {
	Initialize(ctx context.Context, requester entities.Principal, orderID string) (paystack.Authorization, error)
	Verify(ctx context.Context, reference string) (paystack.Transaction, string, error)
	HandleWebhook(ctx context.Context, body []byte, signature string) error
}

type PaymentHandler struct {
	logger   *slog.Logger
	validate *validator.Validate
	svc      PaymentService
	auth     func(next http.Handler) http.Handler
}

func NewPaymentHandler(logger *slog.Logger, svc PaymentService, auth func(next http.Handler) http.Handler) *PaymentHandler {
	return &PaymentHandler{
		logger:   logger.With(slog.String("handler", "payments")),
		validate: validator.New(),
		svc:      svc,
		auth:     auth,
	}
}

func (h *PaymentHandler) Init(r chi.Router) {
	r.Route("/payments", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(h.auth)
			r.Post("/initialize", h.Initialize)
			r.Get("/verify/{reference}", h.Verify)
		})

		// The webhook authenticates by signature, not bearer token.
		r.Post("/webhook", h.Webhook)
	})
}

func (h *PaymentHandler) Initialize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requester, _ := middleware.PrincipalFromContext(ctx)

	var req InitializePaymentRequest
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	auth, err := h.svc.Initialize(ctx, requester, req.OrderID)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}

	utils.WriteJSON(w, auth, http.StatusOK)
}

func (h *PaymentHandler) Verify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reference := chi.URLParam(r, "reference")

	txn, orderNumber, err := h.svc.Verify(ctx, reference)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}

	if orderNumber != "" {
		verifyReconciled.Inc()
	}

	utils.WriteJSON(w, VerifyResponse{
		Status:      txn.Status,
		Reference:   txn.Reference,
		Amount:      txn.Amount,
		Channel:     txn.Channel,
		PaidAt:      txn.PaidAt,
		Metadata:    txn.Metadata,
		OrderNumber: orderNumber,
	}, http.StatusOK)
}

func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		utils.WriteError(w, "failed to read body", http.StatusBadRequest)
		return
	}

	err = h.svc.HandleWebhook(ctx, body, r.Header.Get("x-paystack-signature"))
	switch {
	case errors.Is(err, paystack.ErrInvalidSignature):
		webhookEvents.WithLabelValues("rejected").Inc()
		utils.WriteError(w, "invalid signature", http.StatusBadRequest)
	case errors.Is(err, service.ErrBadWebhookPayload):
		webhookEvents.WithLabelValues("rejected").Inc()
		utils.WriteError(w, "malformed payload", http.StatusBadRequest)
	case err != nil:
		h.logger.ErrorContext(ctx, "webhook processing failed", slog.Any("error", err))
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
	default:
		webhookEvents.WithLabelValues("ok").Inc()
		w.WriteHeader(http.StatusOK)
	}
}

func (h *PaymentHandler) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	var apiErr *paystack.APIError
	switch {
	case errors.Is(err, entities.ErrAccessDenied):
		utils.WriteError(w, "access denied", http.StatusForbidden)
	case errors.Is(err, entities.ErrOrderNotFound):
		utils.WriteError(w, "order not found", http.StatusNotFound)
	case errors.Is(err, paystack.ErrNotConfigured):
		h.logger.ErrorContext(ctx, "payment gateway is not configured")
		utils.WriteError(w, "payment gateway is not configured", http.StatusInternalServerError)
	case errors.As(err, &apiErr):
		utils.WriteError(w, apiErr.Message, http.StatusBadRequest)
	default:
		h.logger.ErrorContext(ctx, "payment request failed", slog.Any("error", err))
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
	}
}
