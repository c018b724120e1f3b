package catalogRepo

import (
	"context"
	"errors"

	"vendora/models"
)

var (
	ErrServiceNotFound = errors.New("service not found")
	ErrShopNotFound    = errors.New("shop not found")
)

// CatalogRepository reads services, shops and products. Catalog lifecycle
// management lives elsewhere; the core only consumes it, except for the
// conditional stock decrement which is the single legitimate stock writer.
type CatalogRepository interface {
	GetService(ctx context.Context, id string) (*models.Service, error)
	GetShop(ctx context.Context, id string) (*models.Shop, error)

	// GetProductsByIDs returns the products found; callers detect missing
	// ids by comparing lengths.
	GetProductsByIDs(ctx context.Context, ids []string) ([]models.Product, error)

	// ConditionalDecrementStock applies "stock -= quantity where stock >=
	// quantity" as one atomic write and returns the number of documents it
	// matched. Zero means insufficient stock; nothing was modified.
	ConditionalDecrementStock(ctx context.Context, productID string, quantity int) (int64, error)
}
