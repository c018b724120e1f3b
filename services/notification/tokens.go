package notification

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoTokenSource reads device tokens registered by the profile services.
type MongoTokenSource struct {
	coll *mongo.Collection
}

func NewMongoTokenSource(db *mongo.Database) *MongoTokenSource {
	return &MongoTokenSource{coll: db.Collection("device_tokens")}
}

func (s *MongoTokenSource) TokensFor(ctx context.Context, accountID string) ([]string, error) {
	cursor, err := s.coll.Find(ctx, bson.M{"account_id": accountID})
	if err != nil {
		return nil, fmt.Errorf("device token query failed: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []struct {
		Token string `bson:"token"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode device tokens failed: %w", err)
	}

	tokens := make([]string, 0, len(docs))
	for _, doc := range docs {
		if doc.Token != "" {
			tokens = append(tokens, doc.Token)
		}
	}
	return tokens, nil
}
