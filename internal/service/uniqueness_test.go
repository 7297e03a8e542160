package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/amazing-outfits/shop-backend/internal/entities"
	"github.com/amazing-outfits/shop-backend/internal/service"
	"github.com/stretchr/testify/require"
)

// memOrderRepo mimics the counter-backed number allocation and the unique
// constraint on order_number.
type memOrderRepo struct {
	mu       sync.Mutex
	counters map[string]int
	orders   map[string]entities.Order
	numbers  map[string]string
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{
		counters: make(map[string]int),
		orders:   make(map[string]entities.Order),
		numbers:  make(map[string]string),
	}
}

func (r *memOrderRepo) NextOrderNumber(_ context.Context, day time.Time) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := day.Format("20060102")
	r.counters[key]++
	return entities.FormatOrderNumber(day, r.counters[key]), nil
}

func (r *memOrderRepo) SaveOrder(_ context.Context, o entities.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.numbers[o.OrderNumber]; taken {
		return entities.ErrOrderNumberTaken
	}
	r.numbers[o.OrderNumber] = o.ID
	r.orders[o.ID] = o
	return nil
}

func (r *memOrderRepo) SaveShippingAddress(_ context.Context, orderID string, a entities.ShippingAddress) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o := r.orders[orderID]
	o.ShippingAddress = a
	r.orders[orderID] = o
	return nil
}

func (r *memOrderRepo) SaveItems(_ context.Context, orderID string, items []entities.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o := r.orders[orderID]
	o.Items = items
	r.orders[orderID] = o
	return nil
}

func (r *memOrderRepo) GetOrderByID(_ context.Context, orderID string) (entities.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok {
		return entities.Order{}, entities.ErrOrderNotFound
	}
	return o, nil
}

func (r *memOrderRepo) OrdersByCustomer(_ context.Context, customerID string) ([]entities.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entities.Order
	for _, o := range r.orders {
		if o.CustomerID == customerID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *memOrderRepo) ListOrders(_ context.Context, f entities.OrderFilter) ([]entities.Order, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entities.Order
	for _, o := range r.orders {
		if f.Status == "" || o.Status == f.Status {
			out = append(out, o)
		}
	}
	return out, int64(len(out)), nil
}

func (r *memOrderRepo) UpdateStatus(_ context.Context, orderID string, status entities.OrderStatus) (entities.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok {
		return entities.Order{}, entities.ErrOrderNotFound
	}
	o.Status = status
	r.orders[orderID] = o
	return o, nil
}

func (r *memOrderRepo) UpdatePayment(_ context.Context, orderID string, status entities.PaymentStatus, reference string) (entities.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok {
		return entities.Order{}, entities.ErrOrderNotFound
	}
	o.PaymentStatus = status
	if reference != "" {
		o.PaymentReference = reference
	}
	r.orders[orderID] = o
	return o, nil
}

func TestOrderService_OrderNumberUniqueness(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping 10k order creation in short mode")
	}

	repo := newMemOrderRepo()
	svc := service.NewOrderService(discardLogger(), txManagerStub{}, repo, new(notifierMock), 0)

	items := []entities.Item{{ProductID: "p1", ProductName: "Ankara Dress", Quantity: 1, Price: 100000}}
	seen := make(map[string]struct{}, 10000)

	for i := 0; i < 10000; i++ {
		order, err := svc.CreateOrder(t.Context(), testCustomer, items, testAddress, "paystack", "")
		require.NoError(t, err)
		require.NotEmpty(t, order.OrderNumber)

		_, dup := seen[order.OrderNumber]
		require.False(t, dup, "duplicate order number %s at iteration %d", order.OrderNumber, i)
		seen[order.OrderNumber] = struct{}{}
	}

	require.Len(t, seen, 10000)
}
