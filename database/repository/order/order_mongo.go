package orderRepo

import (
	"context"
	"errors"
	"fmt"

	catalogRepo "vendora/database/repository/catalog"
	"vendora/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoOrderRepo struct {
	orderColl  *mongo.Collection
	itemColl   *mongo.Collection
	statusColl *mongo.Collection
	catalog    catalogRepo.CatalogRepository
}

// NewMongoOrderRepo constructs a MongoDB-backed OrderRepository. Stock writes
// go through the catalog repository so there is a single decrement path.
func NewMongoOrderRepo(db *mongo.Database, catalog catalogRepo.CatalogRepository) OrderRepository {
	return &mongoOrderRepo{
		orderColl:  db.Collection("orders"),
		itemColl:   db.Collection("order_items"),
		statusColl: db.Collection("order_status_updates"),
		catalog:    catalog,
	}
}

// CreateWithItems commits the stock decrements, the order, its items and the
// initial status row together. The decrements run through the catalog
// repository's conditional write on the session context, so they join the
// transaction; one matching nothing means the product's stock fell below the
// requested quantity, and the whole transaction is aborted with no partial
// decrement remaining.
func (repo *mongoOrderRepo) CreateWithItems(ctx context.Context, order *models.Order, items []models.OrderItem, decrements []StockDecrement) error {
	client := repo.orderColl.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	txnFn := func(sc mongo.SessionContext) error {
		for _, dec := range decrements {
			matched, err := repo.catalog.ConditionalDecrementStock(sc, dec.ProductID, dec.Quantity)
			if err != nil {
				return fmt.Errorf("stock decrement for %s failed: %w", dec.ProductID, err)
			}
			if matched == 0 {
				return &InsufficientStockError{ProductID: dec.ProductID, Quantity: dec.Quantity}
			}
		}

		if _, err := repo.orderColl.InsertOne(sc, order); err != nil {
			return fmt.Errorf("insert order failed: %w", err)
		}

		docs := make([]interface{}, 0, len(items))
		for _, item := range items {
			docs = append(docs, item)
		}
		if _, err := repo.itemColl.InsertMany(sc, docs); err != nil {
			return fmt.Errorf("insert order items failed: %w", err)
		}

		statusRow := models.OrderStatusUpdate{
			ID:        uuid.New().String(),
			OrderID:   order.ID,
			Status:    models.OrderCreated,
			CreatedAt: order.CreatedAt,
		}
		if _, err := repo.statusColl.InsertOne(sc, statusRow); err != nil {
			return fmt.Errorf("insert order status row failed: %w", err)
		}
		return nil
	}

	if err := mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := txnFn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	}); err != nil {
		var stockErr *InsufficientStockError
		if errors.As(err, &stockErr) {
			return stockErr
		}
		return fmt.Errorf("checkout transaction failed: %w", err)
	}

	return nil
}

func (repo *mongoOrderRepo) GetByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := repo.orderColl.FindOne(ctx, bson.M{"id": id}).Decode(&order)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch order %s failed: %w", id, err)
	}
	return &order, nil
}

func (repo *mongoOrderRepo) ListStatusUpdates(ctx context.Context, orderID string) ([]models.OrderStatusUpdate, error) {
	opts := options.Find().SetSort(bson.M{"created_at": 1})
	cursor, err := repo.statusColl.Find(ctx, bson.M{"order_id": orderID}, opts)
	if err != nil {
		return nil, fmt.Errorf("order status query failed: %w", err)
	}
	defer cursor.Close(ctx)

	var updates []models.OrderStatusUpdate
	if err := cursor.All(ctx, &updates); err != nil {
		return nil, fmt.Errorf("decode order status updates failed: %w", err)
	}
	return updates, nil
}
