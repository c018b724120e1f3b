package booking

import (
	"context"
	"fmt"

	"vendora/models"
	"vendora/utils"

	"go.uber.org/zap"
)

// RunExpirationSweep force-expires bookings stuck in pending past their
// deadline and returns the number expired. Idempotent: an expired booking no
// longer matches the query, so a second run in immediate succession finds
// nothing. Per-booking failures are logged and skipped so one bad record
// cannot halt the run.
func (s *DefaultBookingService) RunExpirationSweep(ctx context.Context) (int, error) {
	logger := utils.GetLogger()
	now := s.Clock.Now()

	batch := s.SweepBatchSize
	if batch <= 0 {
		batch = 500
	}

	stale, err := s.Repo.ListPendingPastDeadline(ctx, now, batch)
	if err != nil {
		return 0, fmt.Errorf("failed to list stale pending bookings: %w", err)
	}

	expired := 0
	for i := range stale {
		record := stale[i]
		input := TransitionInput{
			BookingID:    record.ID,
			ActorID:      "system",
			ActorRole:    models.RoleSystem,
			TargetStatus: string(models.BookingExpired),
		}

		updated, err := s.applyTransition(ctx, &record, models.BookingExpired, input)
		if err != nil {
			logger.Warn("Failed to expire stale booking",
				zap.String("bookingID", record.ID),
				zap.Error(err))
			continue
		}
		expired++

		// Both parties hear about an expiry, with distinct messages.
		s.notifyAsync(updated.CustomerID, models.RoleCustomer,
			"Booking Request Expired",
			"Your booking request was not answered in time and has expired. Please pick another slot.",
			map[string]string{"type": "booking_expired", "bookingId": updated.ID})
		s.notifyAsync(updated.ProviderID, models.RoleProvider,
			"Booking Request Expired",
			"A pending booking request expired before you responded to it.",
			map[string]string{"type": "booking_expired", "bookingId": updated.ID})
	}

	logger.Info("Expiration sweep finished",
		zap.Int("expired", expired),
		zap.Int("scanned", len(stale)))

	return expired, nil
}
