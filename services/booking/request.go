package booking

import (
	"context"
	"fmt"

	"vendora/models"
	"vendora/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestBooking creates a booking in the pending state. Availability is
// checked first, but the create itself is a single insert: two concurrent
// requests for overlapping slots can both land, and the accept-time conflict
// audit handles that rare case instead of a provider-wide calendar lock.
func (s *DefaultBookingService) RequestBooking(ctx context.Context, input RequestBookingInput) (*models.Booking, error) {
	service, err := s.CatalogRepo.GetService(ctx, input.ServiceID)
	if err != nil {
		return nil, NewNotFoundError(fmt.Sprintf("service %s not found", input.ServiceID))
	}

	start, end, err := s.resolveWindow(service, input.Instant, input.SlotLabel)
	if err != nil {
		return nil, err
	}
	if err := s.checkWindow(ctx, service, input.Instant, start, end); err != nil {
		return nil, err
	}

	now := s.Clock.Now()
	expiresAt := now.Add(s.PendingTTL)
	location := input.Location
	if location == "" {
		location = models.LocationProviderSite
	}

	record := &models.Booking{
		ID:              uuid.New().String(),
		CustomerID:      input.CustomerID,
		ServiceID:       service.ID,
		ProviderID:      service.ProviderID,
		BookingDate:     input.Instant,
		SlotLabel:       input.SlotLabel,
		WindowStart:     start,
		WindowEnd:       end,
		Status:          models.BookingPending,
		PaymentStatus:   models.PaymentPending,
		ExpiresAt:       &expiresAt,
		ServiceLocation: location,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.Repo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	utils.GetLogger().Info("Booking requested",
		zap.String("bookingID", record.ID),
		zap.String("serviceID", service.ID),
		zap.String("customerID", input.CustomerID))

	s.notifyAsync(record.ProviderID, models.RoleProvider,
		"New Booking Request",
		fmt.Sprintf("You have a new booking request for %s. Accept or reject it before it expires.", service.Name),
		map[string]string{
			"type":      "booking_requested",
			"bookingId": record.ID,
			"serviceId": service.ID,
		})

	return record, nil
}

// GetBooking returns a booking by id.
func (s *DefaultBookingService) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	record, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, NewNotFoundError(fmt.Sprintf("booking %s not found", id))
	}
	return record, nil
}

// GetBookingHistory returns the append-only transition history of a booking.
func (s *DefaultBookingService) GetBookingHistory(ctx context.Context, id string) ([]models.BookingHistoryEntry, error) {
	if _, err := s.Repo.GetByID(ctx, id); err != nil {
		return nil, NewNotFoundError(fmt.Sprintf("booking %s not found", id))
	}
	return s.Repo.ListHistory(ctx, id)
}
