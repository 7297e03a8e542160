package service_test

import (
	"context"
	"time"

	"github.com/amazing-outfits/shop-backend/internal/entities"
	"github.com/amazing-outfits/shop-backend/internal/paystack"
	"github.com/stretchr/testify/mock"
)

// txManagerStub runs the callback without a real database transaction.
type txManagerStub struct{}

func (txManagerStub) Do(ctx context.Context, callback func(ctx context.Context) error) error {
	return callback(ctx)
}

type orderRepoMock struct {
	mock.Mock
}

func (m *orderRepoMock) NextOrderNumber(ctx context.Context, day time.Time) (string, error) {
	args := m.Called(ctx, day)
	return args.String(0), args.Error(1)
}

func (m *orderRepoMock) SaveOrder(ctx context.Context, o entities.Order) error {
	return m.Called(ctx, o).Error(0)
}

func (m *orderRepoMock) SaveShippingAddress(ctx context.Context, orderID string, a entities.ShippingAddress) error {
	return m.Called(ctx, orderID, a).Error(0)
}

func (m *orderRepoMock) SaveItems(ctx context.Context, orderID string, items []entities.Item) error {
	return m.Called(ctx, orderID, items).Error(0)
}

func (m *orderRepoMock) GetOrderByID(ctx context.Context, orderID string) (entities.Order, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).(entities.Order), args.Error(1)
}

func (m *orderRepoMock) OrdersByCustomer(ctx context.Context, customerID string) ([]entities.Order, error) {
	args := m.Called(ctx, customerID)
	orders, _ := args.Get(0).([]entities.Order)
	return orders, args.Error(1)
}

func (m *orderRepoMock) ListOrders(ctx context.Context, f entities.OrderFilter) ([]entities.Order, int64, error) {
	args := m.Called(ctx, f)
	orders, _ := args.Get(0).([]entities.Order)
	return orders, args.Get(1).(int64), args.Error(2)
}

func (m *orderRepoMock) UpdateStatus(ctx context.Context, orderID string, status entities.OrderStatus) (entities.Order, error) {
	args := m.Called(ctx, orderID, status)
	return args.Get(0).(entities.Order), args.Error(1)
}

func (m *orderRepoMock) UpdatePayment(ctx context.Context, orderID string, status entities.PaymentStatus, reference string) (entities.Order, error) {
	args := m.Called(ctx, orderID, status, reference)
	return args.Get(0).(entities.Order), args.Error(1)
}

type paymentRepoMock struct {
	mock.Mock
}

func (m *paymentRepoMock) GetOrderByID(ctx context.Context, orderID string) (entities.Order, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).(entities.Order), args.Error(1)
}

func (m *paymentRepoMock) MarkPaid(ctx context.Context, orderID string, reference string) (entities.Order, error) {
	args := m.Called(ctx, orderID, reference)
	return args.Get(0).(entities.Order), args.Error(1)
}

func (m *paymentRepoMock) ClaimConfirmation(ctx context.Context, orderID string) (bool, error) {
	args := m.Called(ctx, orderID)
	return args.Bool(0), args.Error(1)
}

type gatewayMock struct {
	mock.Mock
}

func (m *gatewayMock) Initialize(ctx context.Context, req paystack.InitializeRequest) (paystack.Authorization, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(paystack.Authorization), args.Error(1)
}

func (m *gatewayMock) Verify(ctx context.Context, reference string) (paystack.Transaction, error) {
	args := m.Called(ctx, reference)
	return args.Get(0).(paystack.Transaction), args.Error(1)
}

func (m *gatewayMock) ValidateSignature(body []byte, signature string) bool {
	return m.Called(body, signature).Bool(0)
}

type notifierMock struct {
	mock.Mock
}

func (m *notifierMock) SendStatusUpdate(ctx context.Context, order entities.Order) error {
	return m.Called(ctx, order).Error(0)
}

func (m *notifierMock) SendOrderConfirmation(ctx context.Context, order entities.Order) error {
	return m.Called(ctx, order).Error(0)
}
