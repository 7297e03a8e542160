package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/amazing-outfits/shop-backend/internal/entities"
	"github.com/amazing-outfits/shop-backend/internal/middleware"
	"github.com/amazing-outfits/shop-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type OrderService interface {
	CreateOrder(ctx context.Context, customer entities.Principal, items []entities.Item, address entities.ShippingAddress, paymentMethod, notes string) (entities.Order, error)
	CustomerOrders(ctx context.Context, customerID string) ([]entities.Order, error)
	Orders(ctx context.Context, f entities.OrderFilter) ([]entities.Order, int64, error)
	Order(ctx context.Context, orderID string, requester entities.Principal) (entities.Order, error)
	UpdateStatus(ctx context.Context, orderID string, status entities.OrderStatus) (entities.Order, error)
	UpdatePaymentStatus(ctx context.Context, orderID string, status entities.PaymentStatus, reference string) (entities.Order, error)
}

type OrderHandler struct {
	logger   *slog.Logger
	validate *validator.Validate
	svc      OrderService
	auth     func(next http.Handler) http.Handler
}

func NewOrderHandler(logger *slog.Logger, svc OrderService, auth func(next http.Handler) http.Handler) *OrderHandler {
	return &OrderHandler{
		logger:   logger.With(slog.String("handler", "orders")),
		validate: validator.New(),
		svc:      svc,
		auth:     auth,
	}
}

func (h *OrderHandler) Init(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Use(h.auth)

		r.Post("/", h.CreateOrder)
		r.Get("/", h.MyOrders)
		r.Get("/my-orders", h.MyOrders)
		r.With(middleware.AdminOnly).Get("/all", h.AllOrders)
		r.Get("/{id}", h.GetOrder)
		r.With(middleware.AdminOnly).Patch("/{id}/status", h.UpdateStatus)
		r.With(middleware.AdminOnly).Patch("/{id}/payment", h.UpdatePayment)
	})
}

func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	customer, _ := middleware.PrincipalFromContext(ctx)

	var req CreateOrderRequest
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	order, err := h.svc.CreateOrder(ctx, customer, req.ItemEntities(), req.AddressEntity(), req.PaymentMethod, req.Notes)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}

	ordersCreated.Inc()
	utils.WriteJSON(w, OrderEntityToJSON(order), http.StatusCreated)
}

func (h *OrderHandler) MyOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	customer, _ := middleware.PrincipalFromContext(ctx)

	orders, err := h.svc.CustomerOrders(ctx, customer.ID)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}

	utils.WriteJSON(w, OrdersEntityToJSON(orders), http.StatusOK)
}

func (h *OrderHandler) AllOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	page := queryUint(r, "page", 1)
	if page < 1 {
		page = 1
	}
	limit := queryUint(r, "limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}

	filter := entities.OrderFilter{
		Status: entities.OrderStatus(r.URL.Query().Get("status")),
		Limit:  limit,
		Offset: (page - 1) * limit,
	}

	orders, total, err := h.svc.Orders(ctx, filter)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}

	totalPages := total / int64(limit)
	if total%int64(limit) != 0 {
		totalPages++
	}

	utils.WriteJSON(w, OrderListResponse{
		Orders:     OrdersEntityToJSON(orders),
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, http.StatusOK)
}

func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requester, _ := middleware.PrincipalFromContext(ctx)

	order, err := h.svc.Order(ctx, chi.URLParam(r, "id"), requester)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}

	utils.WriteJSON(w, OrderEntityToJSON(order), http.StatusOK)
}

func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req UpdateStatusRequest
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	order, err := h.svc.UpdateStatus(ctx, chi.URLParam(r, "id"), entities.OrderStatus(req.Status))
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}

	utils.WriteJSON(w, OrderEntityToJSON(order), http.StatusOK)
}

func (h *OrderHandler) UpdatePayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req UpdatePaymentRequest
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	order, err := h.svc.UpdatePaymentStatus(ctx, chi.URLParam(r, "id"), entities.PaymentStatus(req.PaymentStatus), req.PaymentReference)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}

	utils.WriteJSON(w, OrderEntityToJSON(order), http.StatusOK)
}

func (h *OrderHandler) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entities.ErrInvalidOrder):
		utils.WriteError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, entities.ErrAccessDenied):
		utils.WriteError(w, "access denied", http.StatusForbidden)
	case errors.Is(err, entities.ErrOrderNotFound):
		utils.WriteError(w, "order not found", http.StatusNotFound)
	default:
		h.logger.ErrorContext(ctx, "order request failed", slog.Any("error", err))
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
	}
}

func queryUint(r *http.Request, key string, fallback uint64) uint64 {
	value := r.URL.Query().Get(key)
	if value == "" {
		return fallback
	}
	v, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return fallback
	}
	return v
}
