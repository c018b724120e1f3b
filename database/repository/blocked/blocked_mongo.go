package blockedRepo

import (
	"context"
	"fmt"

	"vendora/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// BlockedSlotRepository reads provider-declared unavailability windows.
// Writes happen through provider tooling outside the booking core.
type BlockedSlotRepository interface {
	ListForDate(ctx context.Context, serviceID, date string) ([]models.BlockedTimeSlot, error)
}

type mongoBlockedRepo struct {
	coll *mongo.Collection
}

// NewMongoBlockedRepo constructs a MongoDB-backed BlockedSlotRepository.
func NewMongoBlockedRepo(db *mongo.Database) BlockedSlotRepository {
	return &mongoBlockedRepo{coll: db.Collection("blocked_time_slots")}
}

func (repo *mongoBlockedRepo) ListForDate(ctx context.Context, serviceID, date string) ([]models.BlockedTimeSlot, error) {
	cursor, err := repo.coll.Find(ctx, bson.M{"service_id": serviceID, "date": date})
	if err != nil {
		return nil, fmt.Errorf("blocked slot query failed: %w", err)
	}
	defer cursor.Close(ctx)

	var slots []models.BlockedTimeSlot
	if err := cursor.All(ctx, &slots); err != nil {
		return nil, fmt.Errorf("decode blocked slots failed: %w", err)
	}
	return slots, nil
}
