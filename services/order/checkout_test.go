package order

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	catalogRepo "vendora/database/repository/catalog"
	orderRepo "vendora/database/repository/order"
	"vendora/models"
	"vendora/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore backs both fakes so the checkout transaction and the catalog
// reads see the same stock counters.
type memStore struct {
	mu       sync.Mutex
	shops    map[string]models.Shop
	products map[string]models.Product
	orders   map[string]models.Order
	items    map[string][]models.OrderItem
	updates  map[string][]models.OrderStatusUpdate
	failNext error // injected persistence failure for the next CreateWithItems
}

func newMemStore() *memStore {
	return &memStore{
		shops:    make(map[string]models.Shop),
		products: make(map[string]models.Product),
		orders:   make(map[string]models.Order),
		items:    make(map[string][]models.OrderItem),
		updates:  make(map[string][]models.OrderStatusUpdate),
	}
}

type memCatalog struct{ store *memStore }

func (c *memCatalog) GetService(_ context.Context, id string) (*models.Service, error) {
	return nil, catalogRepo.ErrServiceNotFound
}

func (c *memCatalog) GetShop(_ context.Context, id string) (*models.Shop, error) {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	s, ok := c.store.shops[id]
	if !ok {
		return nil, catalogRepo.ErrShopNotFound
	}
	return &s, nil
}

func (c *memCatalog) GetProductsByIDs(_ context.Context, ids []string) ([]models.Product, error) {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	var out []models.Product
	for _, id := range ids {
		if p, ok := c.store.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (c *memCatalog) ConditionalDecrementStock(_ context.Context, productID string, quantity int) (int64, error) {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	p, ok := c.store.products[productID]
	if !ok || p.Stock < quantity {
		return 0, nil
	}
	p.Stock -= quantity
	c.store.products[productID] = p
	return 1, nil
}

type memOrders struct{ store *memStore }

// CreateWithItems mirrors the transactional contract: every decrement must
// match, or nothing is written. The single mutex stands in for the
// transaction's isolation.
func (r *memOrders) CreateWithItems(_ context.Context, order *models.Order, items []models.OrderItem, decrements []orderRepo.StockDecrement) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if r.store.failNext != nil {
		err := r.store.failNext
		r.store.failNext = nil
		return err
	}

	staged := make(map[string]models.Product, len(decrements))
	for _, d := range decrements {
		p, ok := r.store.products[d.ProductID]
		if s, already := staged[d.ProductID]; already {
			p = s
		}
		if !ok || p.Stock < d.Quantity {
			return &orderRepo.InsufficientStockError{ProductID: d.ProductID, Quantity: d.Quantity}
		}
		p.Stock -= d.Quantity
		staged[d.ProductID] = p
	}
	for id, p := range staged {
		r.store.products[id] = p
	}

	r.store.orders[order.ID] = *order
	r.store.items[order.ID] = append([]models.OrderItem(nil), items...)
	r.store.updates[order.ID] = append(r.store.updates[order.ID], models.OrderStatusUpdate{
		ID:        order.ID + "-created",
		OrderID:   order.ID,
		Status:    models.OrderCreated,
		CreatedAt: order.CreatedAt,
	})
	return nil
}

func (r *memOrders) GetByID(_ context.Context, id string) (*models.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	o, ok := r.store.orders[id]
	if !ok {
		return nil, orderRepo.ErrNotFound
	}
	return &o, nil
}

func (r *memOrders) ListStatusUpdates(_ context.Context, orderID string) ([]models.OrderStatusUpdate, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return append([]models.OrderStatusUpdate(nil), r.store.updates[orderID]...), nil
}

var _ catalogRepo.CatalogRepository = (*memCatalog)(nil)
var _ orderRepo.OrderRepository = (*memOrders)(nil)

const (
	testShopID     = "shop-1"
	testOwnerID    = "owner-1"
	testCustomerID = "cust-1"
)

func newTestService(t *testing.T) (*DefaultOrderService, *memStore) {
	t.Helper()
	store := newMemStore()
	store.shops[testShopID] = models.Shop{ID: testShopID, OwnerID: testOwnerID, Name: "Corner Store"}
	store.products["prod-a"] = models.Product{ID: "prod-a", ShopID: testShopID, Name: "Soap", Price: 4.50, Stock: 10}
	store.products["prod-b"] = models.Product{ID: "prod-b", ShopID: testShopID, Name: "Towel", Price: 12.00, Stock: 2}

	svc := &DefaultOrderService{
		Repo:            &memOrders{store: store},
		CatalogRepo:     &memCatalog{store: store},
		Clock:           utils.FixedClock{T: time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC)},
		PlatformFeeRate: 0,
		Timeout:         8 * time.Second,
	}
	return svc, store
}

func checkoutErrCode(t *testing.T, err error) string {
	t.Helper()
	require.Error(t, err)
	cErr, ok := err.(*CheckoutError)
	require.True(t, ok, "expected *CheckoutError, got %T: %v", err, err)
	return cErr.Code
}

func stock(store *memStore, id string) int {
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.products[id].Stock
}

func TestCheckoutHappyPath(t *testing.T) {
	svc, store := newTestService(t)

	created, err := svc.Checkout(context.Background(), CheckoutInput{
		CustomerID: testCustomerID,
		ShopID:     testShopID,
		Lines: []CheckoutLine{
			{ProductID: "prod-a", Quantity: 2},
			{ProductID: "prod-b", Quantity: 1},
		},
		DeclaredTotal: 21.00, // 2*4.50 + 12.00
	})
	require.NoError(t, err)
	assert.Equal(t, models.OrderCreated, created.Status)
	assert.Equal(t, 21.00, created.Subtotal)
	assert.Equal(t, 21.00, created.Total)
	assert.Equal(t, 8, stock(store, "prod-a"))
	assert.Equal(t, 1, stock(store, "prod-b"))

	items := store.items[created.ID]
	require.Len(t, items, 2)
	assert.Equal(t, 4.50, items[0].UnitPrice, "catalog price wins over the client's")

	timeline, err := svc.GetOrderTimeline(context.Background(), created.ID)
	require.NoError(t, err)
	require.Len(t, timeline, 1)
	assert.Equal(t, models.OrderCreated, timeline[0].Status)
}

func TestCheckoutRepeatedProductLinesAggregate(t *testing.T) {
	svc, store := newTestService(t)

	// prod-b has stock 2; two lines totalling 3 must fail as one reservation.
	_, err := svc.Checkout(context.Background(), CheckoutInput{
		CustomerID: testCustomerID,
		ShopID:     testShopID,
		Lines: []CheckoutLine{
			{ProductID: "prod-b", Quantity: 2},
			{ProductID: "prod-b", Quantity: 1},
		},
		DeclaredTotal: 36.00,
	})
	assert.Equal(t, CodeInsufficientStock, checkoutErrCode(t, err))
	assert.Equal(t, 2, stock(store, "prod-b"), "a failed checkout leaves stock untouched")
	assert.Empty(t, store.orders)
}

func TestCheckoutInsufficientStockRollsBackEverything(t *testing.T) {
	svc, store := newTestService(t)

	// First line is satisfiable, second is not; neither may commit.
	_, err := svc.Checkout(context.Background(), CheckoutInput{
		CustomerID: testCustomerID,
		ShopID:     testShopID,
		Lines: []CheckoutLine{
			{ProductID: "prod-a", Quantity: 1},
			{ProductID: "prod-b", Quantity: 5},
		},
		DeclaredTotal: 64.50,
	})
	assert.Equal(t, CodeInsufficientStock, checkoutErrCode(t, err))
	assert.Equal(t, 10, stock(store, "prod-a"))
	assert.Equal(t, 2, stock(store, "prod-b"))
	assert.Empty(t, store.orders)
	assert.Empty(t, store.updates)
}

func TestCheckoutCrossShopCart(t *testing.T) {
	svc, store := newTestService(t)
	store.products["prod-x"] = models.Product{ID: "prod-x", ShopID: "shop-2", Price: 1, Stock: 5}

	_, err := svc.Checkout(context.Background(), CheckoutInput{
		CustomerID: testCustomerID,
		ShopID:     testShopID,
		Lines: []CheckoutLine{
			{ProductID: "prod-a", Quantity: 1},
			{ProductID: "prod-x", Quantity: 1},
		},
		DeclaredTotal: 5.50,
	})
	assert.Equal(t, CodeCrossShopOrder, checkoutErrCode(t, err))
	assert.Equal(t, 10, stock(store, "prod-a"))
}

func TestCheckoutUnknownProductAndShop(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Checkout(context.Background(), CheckoutInput{
		CustomerID:    testCustomerID,
		ShopID:        testShopID,
		Lines:         []CheckoutLine{{ProductID: "missing", Quantity: 1}},
		DeclaredTotal: 1,
	})
	assert.Equal(t, CodeNotFound, checkoutErrCode(t, err))

	_, err = svc.Checkout(context.Background(), CheckoutInput{
		CustomerID:    testCustomerID,
		ShopID:        "missing-shop",
		Lines:         []CheckoutLine{{ProductID: "prod-a", Quantity: 1}},
		DeclaredTotal: 4.50,
	})
	assert.Equal(t, CodeNotFound, checkoutErrCode(t, err))
}

func TestCheckoutValidatesLines(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Checkout(context.Background(), CheckoutInput{
		CustomerID: testCustomerID,
		ShopID:     testShopID,
	})
	assert.Equal(t, CodeInvalidArgument, checkoutErrCode(t, err))

	_, err = svc.Checkout(context.Background(), CheckoutInput{
		CustomerID: testCustomerID,
		ShopID:     testShopID,
		Lines:      []CheckoutLine{{ProductID: "prod-a", Quantity: 0}},
	})
	assert.Equal(t, CodeInvalidArgument, checkoutErrCode(t, err))
}

func TestCheckoutTotalMismatch(t *testing.T) {
	svc, store := newTestService(t)

	_, err := svc.Checkout(context.Background(), CheckoutInput{
		CustomerID:    testCustomerID,
		ShopID:        testShopID,
		Lines:         []CheckoutLine{{ProductID: "prod-a", Quantity: 2}},
		DeclaredTotal: 8.00, // computed is 9.00
	})
	assert.Equal(t, CodeTotalMismatch, checkoutErrCode(t, err))
	assert.Equal(t, 10, stock(store, "prod-a"))

	// Within the rounding tolerance the declared total is accepted.
	created, err := svc.Checkout(context.Background(), CheckoutInput{
		CustomerID:    testCustomerID,
		ShopID:        testShopID,
		Lines:         []CheckoutLine{{ProductID: "prod-a", Quantity: 2}},
		DeclaredTotal: 9.004,
	})
	require.NoError(t, err)
	assert.Equal(t, 9.00, created.Total)
}

func TestCheckoutDiscountAndPlatformFee(t *testing.T) {
	svc, _ := newTestService(t)
	svc.PlatformFeeRate = 0.10

	// subtotal 9.00, fee 0.90, discount 2.00 -> total 7.90
	created, err := svc.Checkout(context.Background(), CheckoutInput{
		CustomerID:    testCustomerID,
		ShopID:        testShopID,
		Lines:         []CheckoutLine{{ProductID: "prod-a", Quantity: 2}},
		Discount:      2.00,
		DeclaredTotal: 7.90,
	})
	require.NoError(t, err)
	assert.Equal(t, 9.00, created.Subtotal)
	assert.Equal(t, 0.90, created.PlatformFee)
	assert.Equal(t, 7.90, created.Total)
}

func TestCheckoutOpenOrderModeSkipsStock(t *testing.T) {
	svc, store := newTestService(t)
	shop := store.shops[testShopID]
	shop.OpenOrderMode = true
	store.shops[testShopID] = shop

	created, err := svc.Checkout(context.Background(), CheckoutInput{
		CustomerID:    testCustomerID,
		ShopID:        testShopID,
		Lines:         []CheckoutLine{{ProductID: "prod-b", Quantity: 50}},
		DeclaredTotal: 600.00,
	})
	require.NoError(t, err)
	assert.Equal(t, models.OrderCreated, created.Status)
	assert.Equal(t, 2, stock(store, "prod-b"), "open-order shops never decrement stock")
}

func TestCheckoutRetriesOnceOnTransientFailure(t *testing.T) {
	svc, store := newTestService(t)
	store.failNext = errors.New("connection reset")

	created, err := svc.Checkout(context.Background(), CheckoutInput{
		CustomerID:    testCustomerID,
		ShopID:        testShopID,
		Lines:         []CheckoutLine{{ProductID: "prod-a", Quantity: 1}},
		DeclaredTotal: 4.50,
	})
	require.NoError(t, err)
	assert.Equal(t, 9, stock(store, "prod-a"))

	got, err := svc.GetOrder(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
}

func TestConcurrentCheckoutsNeverOversell(t *testing.T) {
	svc, store := newTestService(t)
	p := store.products["prod-a"]
	p.Stock = 5
	store.products["prod-a"] = p

	const workers = 8
	var wg sync.WaitGroup
	results := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Checkout(context.Background(), CheckoutInput{
				CustomerID:    testCustomerID,
				ShopID:        testShopID,
				Lines:         []CheckoutLine{{ProductID: "prod-a", Quantity: 3}},
				DeclaredTotal: 13.50,
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		assert.Equal(t, CodeInsufficientStock, checkoutErrCode(t, err))
	}
	assert.Equal(t, 1, succeeded, "stock 5 admits exactly one order of 3")
	assert.Equal(t, 2, stock(store, "prod-a"))
}

func TestGetOrderNotFound(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.GetOrder(context.Background(), "missing")
	assert.Equal(t, CodeNotFound, checkoutErrCode(t, err))
	_, err = svc.GetOrderTimeline(context.Background(), "missing")
	assert.Equal(t, CodeNotFound, checkoutErrCode(t, err))
}
