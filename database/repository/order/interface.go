package orderRepo

import (
	"context"
	"errors"
	"fmt"

	"vendora/models"
)

var ErrNotFound = errors.New("order not found")

// InsufficientStockError reports which product made the checkout transaction
// abort. No partial decrement survives it.
type InsufficientStockError struct {
	ProductID string
	Quantity  int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s (requested %d)", e.ProductID, e.Quantity)
}

// StockDecrement is one aggregated conditional decrement in a checkout.
type StockDecrement struct {
	ProductID string
	Quantity  int
}

// OrderRepository persists orders. CreateWithItems is the only stock writer
// in the system besides manual restock tooling.
type OrderRepository interface {
	// CreateWithItems runs one transaction: every conditional stock
	// decrement, the order, its items, and the initial status row. Any
	// decrement matching zero documents aborts the whole transaction with
	// *InsufficientStockError.
	CreateWithItems(ctx context.Context, order *models.Order, items []models.OrderItem, decrements []StockDecrement) error

	GetByID(ctx context.Context, id string) (*models.Order, error)
	ListStatusUpdates(ctx context.Context, orderID string) ([]models.OrderStatusUpdate, error)
}
