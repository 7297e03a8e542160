package handler_test

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/amazing-outfits/shop-backend/internal/config"
	"github.com/amazing-outfits/shop-backend/internal/entities"
	"github.com/amazing-outfits/shop-backend/internal/handler"
	"github.com/amazing-outfits/shop-backend/internal/middleware"
	"github.com/amazing-outfits/shop-backend/internal/paystack"
	"github.com/amazing-outfits/shop-backend/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const paystackTestSecret = "sk_test_e2e"

// memStore backs the full checkout flow in memory, including the
// counter-based number allocation and the confirmation claim.
type memStore struct {
	mu       sync.Mutex
	counters map[string]int
	orders   map[string]entities.Order
	numbers  map[string]string
}

func newMemStore() *memStore {
	return &memStore{
		counters: make(map[string]int),
		orders:   make(map[string]entities.Order),
		numbers:  make(map[string]string),
	}
}

func (s *memStore) NextOrderNumber(_ context.Context, day time.Time) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := day.Format("20060102")
	s.counters[key]++
	return entities.FormatOrderNumber(day, s.counters[key]), nil
}

func (s *memStore) SaveOrder(_ context.Context, o entities.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.numbers[o.OrderNumber]; taken {
		return entities.ErrOrderNumberTaken
	}
	s.numbers[o.OrderNumber] = o.ID
	s.orders[o.ID] = o
	return nil
}

func (s *memStore) SaveShippingAddress(_ context.Context, orderID string, a entities.ShippingAddress) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o := s.orders[orderID]
	o.ShippingAddress = a
	s.orders[orderID] = o
	return nil
}

func (s *memStore) SaveItems(_ context.Context, orderID string, items []entities.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o := s.orders[orderID]
	o.Items = items
	s.orders[orderID] = o
	return nil
}

func (s *memStore) GetOrderByID(_ context.Context, orderID string) (entities.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return entities.Order{}, entities.ErrOrderNotFound
	}
	return o, nil
}

func (s *memStore) OrdersByCustomer(_ context.Context, customerID string) ([]entities.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entities.Order
	for _, o := range s.orders {
		if o.CustomerID == customerID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *memStore) ListOrders(_ context.Context, f entities.OrderFilter) ([]entities.Order, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entities.Order
	for _, o := range s.orders {
		if f.Status == "" || o.Status == f.Status {
			out = append(out, o)
		}
	}
	return out, int64(len(out)), nil
}

func (s *memStore) UpdateStatus(_ context.Context, orderID string, status entities.OrderStatus) (entities.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return entities.Order{}, entities.ErrOrderNotFound
	}
	o.Status = status
	s.orders[orderID] = o
	return o, nil
}

func (s *memStore) UpdatePayment(_ context.Context, orderID string, status entities.PaymentStatus, reference string) (entities.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return entities.Order{}, entities.ErrOrderNotFound
	}
	o.PaymentStatus = status
	if reference != "" {
		o.PaymentReference = reference
	}
	s.orders[orderID] = o
	return o, nil
}

func (s *memStore) MarkPaid(_ context.Context, orderID, reference string) (entities.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return entities.Order{}, entities.ErrOrderNotFound
	}
	o.PaymentStatus = entities.PaymentPaid
	o.Status = entities.StatusConfirmed
	o.PaymentReference = reference
	s.orders[orderID] = o
	return o, nil
}

func (s *memStore) ClaimConfirmation(_ context.Context, orderID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok || o.ConfirmationSent {
		return false, nil
	}
	o.ConfirmationSent = true
	s.orders[orderID] = o
	return true, nil
}

// recordingNotifier counts deliveries instead of sending them.
type recordingNotifier struct {
	mu            sync.Mutex
	confirmations []entities.Order
	updates       []entities.Order
}

func (n *recordingNotifier) SendOrderConfirmation(_ context.Context, order entities.Order) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.confirmations = append(n.confirmations, order)
	return nil
}

func (n *recordingNotifier) SendStatusUpdate(_ context.Context, order entities.Order) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.updates = append(n.updates, order)
	return nil
}

func (n *recordingNotifier) confirmationCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.confirmations)
}

type callbackTx struct{}

func (callbackTx) Do(ctx context.Context, callback func(ctx context.Context) error) error {
	return callback(ctx)
}

func signWebhook(body []byte) string {
	mac := hmac.New(sha512.New, []byte(paystackTestSecret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestCheckoutFlow(t *testing.T) {
	store := newMemStore()
	notifier := &recordingNotifier{}
	gateway := paystack.New(config.Paystack{SecretKey: paystackTestSecret, Timeout: time.Second})

	logger := discardLogger()
	orderSvc := service.NewOrderService(logger, callbackTx{}, store, notifier, 0)
	paymentSvc := service.NewPaymentService(logger, gateway, store, notifier, "")

	r := chi.NewRouter()
	auth := middleware.Auth(testJWTSecret)
	handler.NewOrderHandler(logger, orderSvc, auth).Init(r)
	handler.NewPaymentHandler(logger, paymentSvc, auth).Init(r)

	token := customerToken(t)

	// Checkout: two dresses at 1000 naira and a scarf at 500, in kobo.
	rec := doRequest(r, http.MethodPost, "/orders", token, createOrderBody)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		ID            string `json:"id"`
		OrderNumber   string `json:"orderNumber"`
		Subtotal      int64  `json:"subtotal"`
		Total         int64  `json:"total"`
		Status        string `json:"status"`
		PaymentStatus string `json:"paymentStatus"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, int64(250000), created.Subtotal)
	assert.Equal(t, int64(250000), created.Total)
	assert.Equal(t, "pending", created.Status)
	assert.Equal(t, "pending", created.PaymentStatus)
	require.NotEmpty(t, created.OrderNumber)

	webhookBody, err := json.Marshal(map[string]any{
		"event": "charge.success",
		"data": map[string]any{
			"status":    "success",
			"reference": fmt.Sprintf("order_%s_1", created.ID),
			"amount":    created.Total,
			"metadata":  map[string]string{"orderId": created.ID, "userId": "user-1"},
		},
	})
	require.NoError(t, err)

	// A forged signature must change nothing.
	rec = webhookRequest(r, string(webhookBody), "deadbeef")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, notifier.confirmationCount())

	// The provider's delivery reconciles the order and emails once.
	rec = webhookRequest(r, string(webhookBody), signWebhook(webhookBody))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(r, http.MethodGet, "/orders/"+created.ID, token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var after struct {
		Status           string `json:"status"`
		PaymentStatus    string `json:"paymentStatus"`
		PaymentReference string `json:"paymentReference"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &after))
	assert.Equal(t, "confirmed", after.Status)
	assert.Equal(t, "paid", after.PaymentStatus)
	assert.Equal(t, fmt.Sprintf("order_%s_1", created.ID), after.PaymentReference)
	assert.Equal(t, 1, notifier.confirmationCount())

	// Redelivery is acknowledged but never emails again.
	rec = webhookRequest(r, string(webhookBody), signWebhook(webhookBody))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, notifier.confirmationCount())

	if assert.Len(t, notifier.confirmations, 1) {
		assert.Equal(t, created.OrderNumber, notifier.confirmations[0].OrderNumber)
		assert.Equal(t, "jane@example.com", notifier.confirmations[0].CustomerEmail)
	}
}
