package handler_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/amazing-outfits/shop-backend/internal/entities"
	"github.com/amazing-outfits/shop-backend/internal/handler"
	"github.com/amazing-outfits/shop-backend/internal/middleware"
	"github.com/amazing-outfits/shop-backend/internal/paystack"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-secret"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func signToken(t *testing.T, sub, email, name, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   sub,
		"email": email,
		"name":  name,
		"role":  role,
	})
	signed, err := token.SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return signed
}

func customerToken(t *testing.T) string {
	return signToken(t, "user-1", "jane@example.com", "Jane Doe", "customer")
}

func adminToken(t *testing.T) string {
	return signToken(t, "admin-1", "admin@amazingoutfits.example", "Ada", "admin")
}

func newRouter(orderSvc handler.OrderService, paymentSvc handler.PaymentService) *chi.Mux {
	r := chi.NewRouter()
	auth := middleware.Auth(testJWTSecret)
	if orderSvc != nil {
		handler.NewOrderHandler(discardLogger(), orderSvc, auth).Init(r)
	}
	if paymentSvc != nil {
		handler.NewPaymentHandler(discardLogger(), paymentSvc, auth).Init(r)
	}
	return r
}

func doRequest(r http.Handler, method, target, token, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

type orderServiceMock struct {
	mock.Mock
}

func (m *orderServiceMock) CreateOrder(ctx context.Context, customer entities.Principal, items []entities.Item, address entities.ShippingAddress, paymentMethod, notes string) (entities.Order, error) {
	args := m.Called(ctx, customer, items, address, paymentMethod, notes)
	return args.Get(0).(entities.Order), args.Error(1)
}

func (m *orderServiceMock) CustomerOrders(ctx context.Context, customerID string) ([]entities.Order, error) {
	args := m.Called(ctx, customerID)
	orders, _ := args.Get(0).([]entities.Order)
	return orders, args.Error(1)
}

func (m *orderServiceMock) Orders(ctx context.Context, f entities.OrderFilter) ([]entities.Order, int64, error) {
	args := m.Called(ctx, f)
	orders, _ := args.Get(0).([]entities.Order)
	return orders, args.Get(1).(int64), args.Error(2)
}

func (m *orderServiceMock) Order(ctx context.Context, orderID string, requester entities.Principal) (entities.Order, error) {
	args := m.Called(ctx, orderID, requester)
	return args.Get(0).(entities.Order), args.Error(1)
}

func (m *orderServiceMock) UpdateStatus(ctx context.Context, orderID string, status entities.OrderStatus) (entities.Order, error) {
	args := m.Called(ctx, orderID, status)
	return args.Get(0).(entities.Order), args.Error(1)
}

func (m *orderServiceMock) UpdatePaymentStatus(ctx context.Context, orderID string, status entities.PaymentStatus, reference string) (entities.Order, error) {
	args := m.Called(ctx, orderID, status, reference)
	return args.Get(0).(entities.Order), args.Error(1)
}

type paymentServiceMock struct {
	mock.Mock
}

func (m *paymentServiceMock) Initialize(ctx context.Context, requester entities.Principal, orderID string) (paystack.Authorization, error) {
	args := m.Called(ctx, requester, orderID)
	return args.Get(0).(paystack.Authorization), args.Error(1)
}

func (m *paymentServiceMock) Verify(ctx context.Context, reference string) (paystack.Transaction, string, error) {
	args := m.Called(ctx, reference)
	return args.Get(0).(paystack.Transaction), args.String(1), args.Error(2)
}

func (m *paymentServiceMock) HandleWebhook(ctx context.Context, body []byte, signature string) error {
	return m.Called(ctx, body, signature).Error(0)
}
