package bookingRepo

import (
	"context"
	"errors"
	"time"

	"vendora/models"
)

// ErrNotFound is returned when no booking matches the given id.
var ErrNotFound = errors.New("booking not found")

// ErrStaleStatus is returned when a conditional update finds the booking no
// longer in the expected status. The caller's snapshot is outdated; reload
// before retrying.
var ErrStaleStatus = errors.New("booking status changed concurrently")

// BookingRepository is the persistence contract of the reservation engine.
type BookingRepository interface {
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)

	// UpdateWithHistory persists the booking update and appends the history
	// entry in a single transaction, conditional on the stored booking still
	// being in status from. Returns ErrStaleStatus when it is not, so a
	// transition computed from an outdated snapshot can never overwrite a
	// concurrent one. The entry must never be written without the update
	// committing, and vice versa.
	UpdateWithHistory(ctx context.Context, booking *models.Booking, from models.BookingStatus, entry *models.BookingHistoryEntry) error

	// ListOverlapping returns bookings for the service whose occupied window
	// intersects [start, end) and whose status is in statuses.
	ListOverlapping(ctx context.Context, serviceID string, start, end time.Time, statuses []models.BookingStatus) ([]models.Booking, error)

	// CountActiveInRange counts non-terminal bookings for the service whose
	// booking date falls in [dayStart, dayEnd). Used for the daily cap.
	CountActiveInRange(ctx context.Context, serviceID string, dayStart, dayEnd time.Time) (int64, error)

	// ListPendingPastDeadline pages bookings stuck in pending whose
	// expires_at is before now.
	ListPendingPastDeadline(ctx context.Context, now time.Time, limit int64) ([]models.Booking, error)

	// SetConflictFlag marks a booking after the conflict audit finds a
	// second overlapping active booking.
	SetConflictFlag(ctx context.Context, id string, flagged bool) error

	ListHistory(ctx context.Context, bookingID string) ([]models.BookingHistoryEntry, error)
}
