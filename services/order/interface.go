package order

import (
	"context"
	"time"

	catalogRepo "vendora/database/repository/catalog"
	orderRepo "vendora/database/repository/order"
	"vendora/models"
	"vendora/services/notification"
	"vendora/utils"
)

// CheckoutLine is one cart line as submitted by the client. UnitPrice is
// advisory; the catalog price is authoritative.
type CheckoutLine struct {
	ProductID string  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// CheckoutInput is one checkout request.
type CheckoutInput struct {
	CustomerID     string
	ShopID         string
	Lines          []CheckoutLine
	Discount       float64
	DeclaredTotal  float64
	DeliveryMethod string
	PaymentMethod  string
}

// OrderService owns the atomic checkout transaction.
type OrderService interface {
	Checkout(ctx context.Context, input CheckoutInput) (*models.Order, error)
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	GetOrderTimeline(ctx context.Context, id string) ([]models.OrderStatusUpdate, error)
}

// DefaultOrderService implements OrderService.
type DefaultOrderService struct {
	Repo            orderRepo.OrderRepository
	CatalogRepo     catalogRepo.CatalogRepository
	NotificationSvc notification.NotificationService
	Clock           utils.Clock
	PlatformFeeRate float64
	Timeout         time.Duration
}
