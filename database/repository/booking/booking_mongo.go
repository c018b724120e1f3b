package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"vendora/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoBookingRepo struct {
	bookingColl *mongo.Collection
	historyColl *mongo.Collection
}

// NewMongoBookingRepo constructs a MongoDB-backed BookingRepository.
func NewMongoBookingRepo(db *mongo.Database) BookingRepository {
	return &mongoBookingRepo{
		bookingColl: db.Collection("bookings"),
		historyColl: db.Collection("booking_history"),
	}
}

func (repo *mongoBookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	if _, err := repo.bookingColl.InsertOne(ctx, booking); err != nil {
		return fmt.Errorf("insert booking failed: %w", err)
	}
	return nil
}

func (repo *mongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	var booking models.Booking
	err := repo.bookingColl.FindOne(ctx, bson.M{"id": id}).Decode(&booking)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch booking %s failed: %w", id, err)
	}
	return &booking, nil
}

// UpdateWithHistory replaces the booking document and inserts the history
// entry inside one multi-document transaction, so the audit trail and the
// status change commit or roll back together. The replace filters on the
// expected prior status, not just the id: a transition computed from a stale
// snapshot matches nothing and aborts with ErrStaleStatus instead of
// clobbering whatever landed in between.
func (repo *mongoBookingRepo) UpdateWithHistory(ctx context.Context, booking *models.Booking, from models.BookingStatus, entry *models.BookingHistoryEntry) error {
	client := repo.bookingColl.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	txnFn := func(sc mongo.SessionContext) error {
		filter := bson.M{"id": booking.ID, "status": from}
		res, err := repo.bookingColl.ReplaceOne(sc, filter, booking)
		if err != nil {
			return fmt.Errorf("update booking failed: %w", err)
		}
		if res.MatchedCount == 0 {
			count, err := repo.bookingColl.CountDocuments(sc, bson.M{"id": booking.ID})
			if err != nil {
				return fmt.Errorf("booking existence check failed: %w", err)
			}
			if count == 0 {
				return ErrNotFound
			}
			return ErrStaleStatus
		}
		if _, err := repo.historyColl.InsertOne(sc, entry); err != nil {
			return fmt.Errorf("append booking history failed: %w", err)
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
		if err == ErrNotFound || err == ErrStaleStatus {
			return err
		}
		return fmt.Errorf("booking update transaction failed: %w", err)
	}

	return nil
}

func (repo *mongoBookingRepo) ListOverlapping(ctx context.Context, serviceID string, start, end time.Time, statuses []models.BookingStatus) ([]models.Booking, error) {
	// Half-open interval intersection: window_start < end && start < window_end.
	filter := bson.M{
		"service_id":   serviceID,
		"status":       bson.M{"$in": statuses},
		"window_start": bson.M{"$lt": end},
		"window_end":   bson.M{"$gt": start},
	}
	cursor, err := repo.bookingColl.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("overlap query failed: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("decode overlapping bookings failed: %w", err)
	}
	return bookings, nil
}

func (repo *mongoBookingRepo) CountActiveInRange(ctx context.Context, serviceID string, dayStart, dayEnd time.Time) (int64, error) {
	terminal := []models.BookingStatus{
		models.BookingCompleted, models.BookingCancelled,
		models.BookingRejected, models.BookingExpired,
	}
	filter := bson.M{
		"service_id":   serviceID,
		"status":       bson.M{"$nin": terminal},
		"booking_date": bson.M{"$gte": dayStart, "$lt": dayEnd},
	}
	count, err := repo.bookingColl.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("daily booking count failed: %w", err)
	}
	return count, nil
}

func (repo *mongoBookingRepo) ListPendingPastDeadline(ctx context.Context, now time.Time, limit int64) ([]models.Booking, error) {
	filter := bson.M{
		"status":     models.BookingPending,
		"expires_at": bson.M{"$lt": now},
	}
	opts := options.Find().SetLimit(limit).SetSort(bson.M{"expires_at": 1})
	cursor, err := repo.bookingColl.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("stale pending query failed: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("decode stale pending bookings failed: %w", err)
	}
	return bookings, nil
}

func (repo *mongoBookingRepo) SetConflictFlag(ctx context.Context, id string, flagged bool) error {
	update := bson.M{"$set": bson.M{"conflict_flag": flagged, "updated_at": time.Now().UTC()}}
	res, err := repo.bookingColl.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("set conflict flag failed: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (repo *mongoBookingRepo) ListHistory(ctx context.Context, bookingID string) ([]models.BookingHistoryEntry, error) {
	opts := options.Find().SetSort(bson.M{"created_at": 1})
	cursor, err := repo.historyColl.Find(ctx, bson.M{"booking_id": bookingID}, opts)
	if err != nil {
		return nil, fmt.Errorf("history query failed: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []models.BookingHistoryEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("decode booking history failed: %w", err)
	}
	return entries, nil
}
