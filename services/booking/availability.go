package booking

import (
	"context"
	"fmt"
	"time"

	"vendora/models"
	"vendora/utils"

	"go.uber.org/zap"
)

// Statuses that occupy a provider's schedule. Terminal bookings and pending
// requests the provider has not yet accepted do not block the calendar.
var activeStatuses = []models.BookingStatus{
	models.BookingAccepted,
	models.BookingReschedulePending,
	models.BookingEnRoute,
	models.BookingAwaitingPayment,
}

const availabilityCacheTTL = 30 * time.Second

// CheckAvailability reports whether the slot can be reserved. The check is
// advisory: booking creation is a single insert and a post-hoc conflict audit
// resolves the rare double-entry, so no lock is taken here.
func (s *DefaultBookingService) CheckAvailability(ctx context.Context, serviceID string, instant time.Time, slotLabel string) (bool, error) {
	if s.Cache != nil {
		key := fmt.Sprintf("availability:%s:%d:%s", serviceID, instant.Unix(), slotLabel)
		if cached, err := s.Cache.Get(ctx, key).Result(); err == nil {
			return cached == "1", nil
		}
	}

	service, err := s.CatalogRepo.GetService(ctx, serviceID)
	if err != nil {
		return false, NewNotFoundError(fmt.Sprintf("service %s not found", serviceID))
	}

	start, end, err := s.resolveWindow(service, instant, slotLabel)
	if err != nil {
		return false, err
	}

	available := true
	if err := s.checkWindow(ctx, service, instant, start, end); err != nil {
		if _, ok := err.(*BookingError); !ok {
			return false, err
		}
		available = false
	}

	if s.Cache != nil {
		key := fmt.Sprintf("availability:%s:%d:%s", serviceID, instant.Unix(), slotLabel)
		val := "0"
		if available {
			val = "1"
		}
		if err := s.Cache.Set(ctx, key, val, availabilityCacheTTL).Err(); err != nil {
			utils.GetLogger().Debug("availability cache write failed", zap.Error(err))
		}
	}

	return available, nil
}

// resolveWindow computes the occupied window: the exact-time reservation
// window [instant, instant+duration+buffer), or the fixed local-time window
// of the slot label on the candidate date.
func (s *DefaultBookingService) resolveWindow(service *models.Service, instant time.Time, slotLabel string) (time.Time, time.Time, error) {
	if slotLabel != "" {
		start, end, err := s.Business.SlotWindow(slotLabel, instant)
		if err != nil {
			return time.Time{}, time.Time{}, NewInvalidArgumentError(err.Error())
		}
		return start, end, nil
	}
	start, end := utils.OccupiedWindow(instant, service.DurationMinutes, service.BufferMinutes)
	return start, end, nil
}

// checkWindow runs the three availability rules in order: provider blocks,
// overlapping active bookings, and the daily cap. Returns a SLOT_UNAVAILABLE
// error naming the failed rule, or nil when the slot is free.
func (s *DefaultBookingService) checkWindow(ctx context.Context, service *models.Service, instant time.Time, start, end time.Time) error {
	date := s.Business.LocalDate(start)
	dayStart, dayEnd := s.Business.DayBounds(start)

	blocks, err := s.BlockedRepo.ListForDate(ctx, service.ID, date)
	if err != nil {
		return fmt.Errorf("failed to load blocked slots: %w", err)
	}
	for _, block := range blocks {
		blockStart := dayStart.Add(time.Duration(block.Start) * time.Minute)
		blockEnd := dayStart.Add(time.Duration(block.End) * time.Minute)
		if utils.Overlaps(start, end, blockStart, blockEnd) {
			return NewSlotUnavailableError("the provider has blocked this time window")
		}
	}

	overlapping, err := s.Repo.ListOverlapping(ctx, service.ID, start, end, activeStatuses)
	if err != nil {
		return fmt.Errorf("failed to query overlapping bookings: %w", err)
	}
	if len(overlapping) > 0 {
		return NewSlotUnavailableError("an existing booking overlaps this time window")
	}

	count, err := s.Repo.CountActiveInRange(ctx, service.ID, dayStart, dayEnd)
	if err != nil {
		return fmt.Errorf("failed to count daily bookings: %w", err)
	}
	if count >= int64(service.DailyCap()) {
		return NewSlotUnavailableError("the service has reached its daily booking limit")
	}

	return nil
}
