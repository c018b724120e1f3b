package booking

import (
	"context"
	"time"

	blockedRepo "vendora/database/repository/blocked"
	bookingRepo "vendora/database/repository/booking"
	catalogRepo "vendora/database/repository/catalog"
	"vendora/models"
	"vendora/services/notification"
	"vendora/utils"

	"github.com/go-redis/redis/v8"
)

// RequestBookingInput is the create-booking request from the web layer.
type RequestBookingInput struct {
	CustomerID string
	ServiceID  string
	Instant    time.Time
	SlotLabel  string // optional coarse window: morning/afternoon/evening
	Location   models.ServiceLocation
}

// TransitionInput carries one requested state change.
type TransitionInput struct {
	BookingID    string
	ActorID      string
	ActorRole    models.ActorRole
	TargetStatus string
	Reason       string
	ProposedDate *time.Time
}

// BookingService owns the booking lifecycle: creation, the state machine,
// availability and the expiration sweep.
type BookingService interface {
	RequestBooking(ctx context.Context, input RequestBookingInput) (*models.Booking, error)
	TransitionBooking(ctx context.Context, input TransitionInput) (*models.Booking, error)
	CheckAvailability(ctx context.Context, serviceID string, instant time.Time, slotLabel string) (bool, error)
	RunExpirationSweep(ctx context.Context) (int, error)
	SubmitPaymentReference(ctx context.Context, bookingID, customerID, reference string) (*models.Booking, error)
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	GetBookingHistory(ctx context.Context, id string) ([]models.BookingHistoryEntry, error)
}

// DefaultBookingService implements BookingService.
type DefaultBookingService struct {
	Repo            bookingRepo.BookingRepository
	BlockedRepo     blockedRepo.BlockedSlotRepository
	CatalogRepo     catalogRepo.CatalogRepository
	NotificationSvc notification.NotificationService
	Payments        PaymentVerifier
	Cache           *redis.Client // optional short-TTL availability cache
	Clock           utils.Clock
	Business        *utils.BusinessTime
	PendingTTL      time.Duration
	SweepBatchSize  int64
}
