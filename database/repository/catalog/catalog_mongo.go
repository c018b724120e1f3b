package catalogRepo

import (
	"context"
	"fmt"
	"time"

	"vendora/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type mongoCatalogRepo struct {
	serviceColl *mongo.Collection
	shopColl    *mongo.Collection
	productColl *mongo.Collection
}

// NewMongoCatalogRepo constructs a MongoDB-backed CatalogRepository.
func NewMongoCatalogRepo(db *mongo.Database) CatalogRepository {
	return &mongoCatalogRepo{
		serviceColl: db.Collection("services"),
		shopColl:    db.Collection("shops"),
		productColl: db.Collection("products"),
	}
}

func (repo *mongoCatalogRepo) GetService(ctx context.Context, id string) (*models.Service, error) {
	var service models.Service
	err := repo.serviceColl.FindOne(ctx, bson.M{"id": id}).Decode(&service)
	if err == mongo.ErrNoDocuments {
		return nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch service %s failed: %w", id, err)
	}
	return &service, nil
}

func (repo *mongoCatalogRepo) GetShop(ctx context.Context, id string) (*models.Shop, error) {
	var shop models.Shop
	err := repo.shopColl.FindOne(ctx, bson.M{"id": id}).Decode(&shop)
	if err == mongo.ErrNoDocuments {
		return nil, ErrShopNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch shop %s failed: %w", id, err)
	}
	return &shop, nil
}

func (repo *mongoCatalogRepo) GetProductsByIDs(ctx context.Context, ids []string) ([]models.Product, error) {
	cursor, err := repo.productColl.Find(ctx, bson.M{"id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("product query failed: %w", err)
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("decode products failed: %w", err)
	}
	return products, nil
}

// ConditionalDecrementStock is a single conditional write, not a
// read-then-write pair: concurrent checkouts serialize through the document
// write, and a decrement that would drive stock negative matches nothing.
func (repo *mongoCatalogRepo) ConditionalDecrementStock(ctx context.Context, productID string, quantity int) (int64, error) {
	filter := bson.M{
		"id":    productID,
		"stock": bson.M{"$gte": quantity},
	}
	update := bson.M{
		"$inc": bson.M{"stock": -quantity},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}
	res, err := repo.productColl.UpdateOne(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("stock decrement for %s failed: %w", productID, err)
	}
	return res.MatchedCount, nil
}
