package order

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	orderRepo "vendora/database/repository/order"
	"vendora/models"
	"vendora/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// totalEpsilon is the rounding tolerance when comparing the client-declared
// total against the server-computed one.
const totalEpsilon = 0.005

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Checkout validates a multi-line cart against a single shop, reserves stock
// for every line in one transaction, and creates the order with its items
// only if every reservation succeeds. On any failure nothing is committed:
// no partial decrement, no orphan order.
func (s *DefaultOrderService) Checkout(ctx context.Context, input CheckoutInput) (*models.Order, error) {
	if len(input.Lines) == 0 {
		return nil, NewInvalidArgumentError("the cart has no lines")
	}
	for _, line := range input.Lines {
		if line.Quantity <= 0 {
			return nil, NewInvalidArgumentError(fmt.Sprintf("invalid quantity %d for product %s", line.Quantity, line.ProductID))
		}
	}
	if input.Discount < 0 {
		return nil, NewInvalidArgumentError("discount cannot be negative")
	}

	timeout := s.Timeout
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	shop, err := s.CatalogRepo.GetShop(ctx, input.ShopID)
	if err != nil {
		return nil, NewNotFoundError(fmt.Sprintf("shop %s not found", input.ShopID))
	}

	// Load every referenced product once, even when a cart repeats one.
	idSet := make(map[string]bool, len(input.Lines))
	ids := make([]string, 0, len(input.Lines))
	for _, line := range input.Lines {
		if !idSet[line.ProductID] {
			idSet[line.ProductID] = true
			ids = append(ids, line.ProductID)
		}
	}
	products, err := s.CatalogRepo.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	byID := make(map[string]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			return nil, NewNotFoundError(fmt.Sprintf("product %s not found", id))
		}
	}

	// The cart must be single-shop.
	for _, p := range byID {
		if p.ShopID != shop.ID {
			return nil, NewCrossShopError(fmt.Sprintf("product %s belongs to another shop", p.ID))
		}
	}

	// Aggregate quantities per product; one conditional decrement per
	// product regardless of how many lines reference it.
	aggregated := make(map[string]int, len(ids))
	for _, line := range input.Lines {
		aggregated[line.ProductID] += line.Quantity
	}

	// Authoritative totals from catalog prices. Client numbers are advisory.
	now := s.Clock.Now()
	orderID := uuid.New().String()
	items := make([]models.OrderItem, 0, len(input.Lines))
	subtotal := 0.0
	for _, line := range input.Lines {
		product := byID[line.ProductID]
		lineTotal := round2(product.Price * float64(line.Quantity))
		subtotal += lineTotal
		items = append(items, models.OrderItem{
			ID:        uuid.New().String(),
			OrderID:   orderID,
			ProductID: product.ID,
			Quantity:  line.Quantity,
			UnitPrice: product.Price,
			Total:     lineTotal,
		})
	}
	subtotal = round2(subtotal)
	platformFee := round2(subtotal * s.PlatformFeeRate)
	total := round2(subtotal - input.Discount + platformFee)

	if math.Abs(total-input.DeclaredTotal) > totalEpsilon {
		return nil, NewTotalMismatchError(fmt.Sprintf("declared total %.2f does not match computed total %.2f", input.DeclaredTotal, total))
	}

	record := &models.Order{
		ID:             orderID,
		CustomerID:     input.CustomerID,
		ShopID:         shop.ID,
		Status:         models.OrderCreated,
		Subtotal:       subtotal,
		Discount:       input.Discount,
		PlatformFee:    platformFee,
		Total:          total,
		DeliveryMethod: input.DeliveryMethod,
		PaymentMethod:  input.PaymentMethod,
		CreatedAt:      now,
	}

	// Open-order shops list without tracking stock; no decrement for them.
	var decrements []orderRepo.StockDecrement
	if !shop.OpenOrderMode {
		for _, id := range ids {
			decrements = append(decrements, orderRepo.StockDecrement{ProductID: id, Quantity: aggregated[id]})
		}
	}

	if err := s.createWithRetry(ctx, record, items, decrements); err != nil {
		var stockErr *orderRepo.InsufficientStockError
		if errors.As(err, &stockErr) {
			return nil, NewInsufficientStockError(fmt.Sprintf("not enough stock for product %s", stockErr.ProductID))
		}
		return nil, fmt.Errorf("checkout failed: %w", err)
	}

	utils.GetLogger().Info("Order created",
		zap.String("orderID", record.ID),
		zap.String("shopID", shop.ID),
		zap.Int("items", len(items)),
		zap.Float64("total", total))

	s.notifyShopAsync(shop, record)

	return record, nil
}

// createWithRetry retries the checkout transaction once on a persistence
// failure. The transaction is all-or-nothing, so a blind second attempt after
// a connectivity error cannot double-decrement. Insufficient stock is a final
// answer and is never retried.
func (s *DefaultOrderService) createWithRetry(ctx context.Context, record *models.Order, items []models.OrderItem, decrements []orderRepo.StockDecrement) error {
	err := s.Repo.CreateWithItems(ctx, record, items, decrements)
	if err == nil {
		return nil
	}
	var stockErr *orderRepo.InsufficientStockError
	if errors.As(err, &stockErr) || ctx.Err() != nil {
		return err
	}

	utils.GetLogger().Warn("Checkout transaction failed, retrying once",
		zap.String("orderID", record.ID),
		zap.Error(err))
	return s.Repo.CreateWithItems(ctx, record, items, decrements)
}

func (s *DefaultOrderService) notifyShopAsync(shop *models.Shop, record *models.Order) {
	if s.NotificationSvc == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := s.NotificationSvc.NotifyShop(ctx, shop.OwnerID,
			"New Order Received",
			fmt.Sprintf("%s received a new order totalling %.2f.", shop.Name, record.Total),
			map[string]string{
				"type":    "order_created",
				"orderId": record.ID,
				"shopId":  shop.ID,
			})
		if err != nil {
			utils.GetLogger().Warn("Order notification failed",
				zap.String("orderID", record.ID),
				zap.Error(err))
		}
	}()
}

// GetOrder returns an order by id.
func (s *DefaultOrderService) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	record, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, NewNotFoundError(fmt.Sprintf("order %s not found", id))
	}
	return record, nil
}

// GetOrderTimeline returns the append-only status history of an order.
func (s *DefaultOrderService) GetOrderTimeline(ctx context.Context, id string) ([]models.OrderStatusUpdate, error) {
	if _, err := s.Repo.GetByID(ctx, id); err != nil {
		return nil, NewNotFoundError(fmt.Sprintf("order %s not found", id))
	}
	return s.Repo.ListStatusUpdates(ctx, id)
}
