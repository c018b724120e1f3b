package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	bookingRepo "vendora/database/repository/booking"
	"vendora/models"
	"vendora/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// validNext is the exhaustive transition table. A transition absent here is
// illegal no matter who asks.
var validNext = map[models.BookingStatus]map[models.BookingStatus]bool{
	models.BookingPending: {
		models.BookingAccepted:          true,
		models.BookingRejected:          true,
		models.BookingReschedulePending: true,
		models.BookingExpired:           true,
	},
	models.BookingAccepted: {
		models.BookingEnRoute:   true,
		models.BookingCancelled: true,
		models.BookingDisputed:  true,
	},
	models.BookingEnRoute: {
		models.BookingAwaitingPayment: true,
		models.BookingDisputed:        true,
	},
	models.BookingAwaitingPayment: {
		models.BookingCompleted: true,
		models.BookingDisputed:  true,
	},
	models.BookingReschedulePending: {
		models.BookingAccepted: true,
		models.BookingRejected: true,
	},
	models.BookingDisputed: {
		models.BookingCompleted: true,
		models.BookingCancelled: true,
	},
	models.BookingCompleted: {},
	models.BookingCancelled: {},
	models.BookingRejected:  {},
	models.BookingExpired:   {},
}

// transitionRoles is the union of roles that may ever request each target
// status, regardless of the current state. A role outside this set is
// rejected as unauthorized before legality is even considered.
var transitionRoles = map[models.BookingStatus][]models.ActorRole{
	models.BookingAccepted:          {models.RoleProvider, models.RoleCustomer},
	models.BookingRejected:          {models.RoleProvider, models.RoleCustomer},
	models.BookingReschedulePending: {models.RoleProvider, models.RoleCustomer},
	models.BookingEnRoute:           {models.RoleProvider},
	models.BookingAwaitingPayment:   {models.RoleProvider},
	models.BookingCompleted:         {models.RoleProvider, models.RoleAdmin},
	models.BookingCancelled:         {models.RoleCustomer, models.RoleAdmin},
	models.BookingDisputed:          {models.RoleCustomer, models.RoleProvider},
	models.BookingExpired:           {models.RoleSystem},
}

// TransitionBooking applies one state change: load, authorize, validate
// legality and arguments, persist with its history entry in one transaction,
// then notify the counterpart. A failed transition leaves the booking
// exactly as it was.
func (s *DefaultBookingService) TransitionBooking(ctx context.Context, input TransitionInput) (*models.Booking, error) {
	target, ok := models.ParseBookingStatus(input.TargetStatus)
	if !ok {
		return nil, NewInvalidArgumentError(fmt.Sprintf("unknown booking status %q", input.TargetStatus))
	}

	record, err := s.Repo.GetByID(ctx, input.BookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrNotFound) {
			return nil, NewNotFoundError(fmt.Sprintf("booking %s not found", input.BookingID))
		}
		return nil, fmt.Errorf("failed to load booking: %w", err)
	}

	updated, err := s.applyTransition(ctx, record, target, input)
	if err != nil {
		return nil, err
	}

	s.notifyCounterpart(updated, target, input.ActorRole)

	// A provider accept is the moment a racing create would surface: audit
	// for a second overlapping active booking (spec-level conflict audit).
	if target == models.BookingAccepted && input.ActorRole == models.RoleProvider {
		s.auditConflicts(ctx, updated)
	}

	return updated, nil
}

// applyTransition runs the shared transition pipeline without the counterpart
// notification, so the sweeper can reuse it with its own two-party messages.
func (s *DefaultBookingService) applyTransition(ctx context.Context, record *models.Booking, target models.BookingStatus, input TransitionInput) (*models.Booking, error) {
	from := record.Status

	if err := s.authorize(record, from, target, input); err != nil {
		return nil, err
	}

	if !validNext[from][target] {
		return nil, NewInvalidTransitionError(fmt.Sprintf("cannot transition booking from %s to %s", from, target))
	}

	now := s.Clock.Now()
	reason := strings.TrimSpace(input.Reason)

	switch target {
	case models.BookingRejected:
		if reason == "" {
			return nil, NewInvalidArgumentError("a rejection reason is required")
		}
		record.RejectionReason = reason

	case models.BookingReschedulePending:
		if input.ProposedDate == nil {
			return nil, NewInvalidArgumentError("a proposed reschedule date is required")
		}
		if !input.ProposedDate.After(now) {
			return nil, NewInvalidArgumentError("the proposed reschedule date must be in the future")
		}
		proposed := input.ProposedDate.UTC()
		record.RescheduleDate = &proposed
		record.RescheduleBy = input.ActorRole

	case models.BookingAccepted:
		if from == models.BookingReschedulePending && record.RescheduleDate != nil {
			if err := s.applyReschedule(ctx, record); err != nil {
				return nil, err
			}
		}

	case models.BookingDisputed:
		if reason == "" {
			return nil, NewInvalidArgumentError("a dispute reason is required")
		}
		record.DisputeReason = reason
	}

	record.Status = target
	if from == models.BookingPending {
		// expiresAt lives only while the booking is pending.
		record.ExpiresAt = nil
	}
	if reason != "" && target != models.BookingRejected && target != models.BookingDisputed {
		record.Comments = reason
	}
	record.UpdatedAt = now

	entry := &models.BookingHistoryEntry{
		ID:        uuid.New().String(),
		BookingID: record.ID,
		Status:    target,
		ActorRole: input.ActorRole,
		ActorID:   input.ActorID,
		Comment:   reason,
		CreatedAt: now,
	}

	if err := s.Repo.UpdateWithHistory(ctx, record, from, entry); err != nil {
		if errors.Is(err, bookingRepo.ErrNotFound) {
			return nil, NewNotFoundError(fmt.Sprintf("booking %s not found", record.ID))
		}
		if errors.Is(err, bookingRepo.ErrStaleStatus) {
			return nil, NewInvalidTransitionError(fmt.Sprintf("booking %s left %s while this transition was in flight", record.ID, from))
		}
		return nil, fmt.Errorf("failed to persist transition: %w", err)
	}

	utils.GetLogger().Info("Booking transitioned",
		zap.String("bookingID", record.ID),
		zap.String("from", string(from)),
		zap.String("to", string(target)),
		zap.String("actorRole", string(input.ActorRole)))

	return record, nil
}

// authorize enforces who may invoke which transition, in one place. Role
// capability first, then actor identity, then the from-state refinements
// (reschedule counterpart, admin-only dispute resolution).
func (s *DefaultBookingService) authorize(record *models.Booking, from, target models.BookingStatus, input TransitionInput) error {
	allowed := false
	for _, role := range transitionRoles[target] {
		if role == input.ActorRole {
			allowed = true
			break
		}
	}
	if !allowed {
		return NewUnauthorizedError(fmt.Sprintf("role %s may not set a booking to %s", input.ActorRole, target))
	}

	switch input.ActorRole {
	case models.RoleCustomer:
		if input.ActorID != record.CustomerID {
			return NewUnauthorizedError("only the booking's customer may perform this action")
		}
	case models.RoleProvider:
		if input.ActorID != record.ProviderID {
			return NewUnauthorizedError("only the service's provider may perform this action")
		}
	case models.RoleAdmin, models.RoleSystem:
		// Identity is established upstream for admins; the system actor is
		// the sweeper itself.
	default:
		return NewUnauthorizedError(fmt.Sprintf("unknown actor role %q", input.ActorRole))
	}

	switch {
	case from == models.BookingPending && (target == models.BookingAccepted || target == models.BookingRejected):
		if input.ActorRole != models.RoleProvider {
			return NewUnauthorizedError("only the provider may accept or reject a pending booking")
		}
	case from == models.BookingReschedulePending && (target == models.BookingAccepted || target == models.BookingRejected):
		counterpart := models.RoleCustomer
		if record.RescheduleBy == models.RoleCustomer {
			counterpart = models.RoleProvider
		}
		if input.ActorRole != counterpart {
			return NewUnauthorizedError("a reschedule must be resolved by the party that did not propose it")
		}
	case from == models.BookingDisputed:
		if input.ActorRole != models.RoleAdmin {
			return NewUnauthorizedError("only an admin may resolve a dispute")
		}
	case from == models.BookingAccepted && target == models.BookingCancelled:
		if input.ActorRole != models.RoleCustomer {
			return NewUnauthorizedError("only the customer may cancel an accepted booking")
		}
	}

	return nil
}

// applyReschedule rewrites the booking date and the occupied window from the
// agreed reschedule target.
func (s *DefaultBookingService) applyReschedule(ctx context.Context, record *models.Booking) error {
	service, err := s.CatalogRepo.GetService(ctx, record.ServiceID)
	if err != nil {
		return NewNotFoundError(fmt.Sprintf("service %s not found", record.ServiceID))
	}

	record.BookingDate = *record.RescheduleDate
	start, end, err := s.resolveWindow(service, record.BookingDate, record.SlotLabel)
	if err != nil {
		return err
	}
	record.WindowStart = start
	record.WindowEnd = end
	record.RescheduleDate = nil
	record.RescheduleBy = ""
	return nil
}

// auditConflicts checks, after an accept, whether a second active booking now
// overlaps the accepted window. The availability check at creation is
// advisory, so a rare racing create can slip through; the flag prompts a
// manual reschedule or rejection instead of a calendar-wide lock.
func (s *DefaultBookingService) auditConflicts(ctx context.Context, record *models.Booking) {
	logger := utils.GetLogger()

	overlapping, err := s.Repo.ListOverlapping(ctx, record.ServiceID, record.WindowStart, record.WindowEnd, activeStatuses)
	if err != nil {
		logger.Warn("Conflict audit query failed", zap.String("bookingID", record.ID), zap.Error(err))
		return
	}

	for _, other := range overlapping {
		if other.ID == record.ID {
			continue
		}
		logger.Warn("Overlapping active booking discovered after accept",
			zap.String("bookingID", record.ID),
			zap.String("conflictingID", other.ID))

		if err := s.Repo.SetConflictFlag(ctx, record.ID, true); err != nil {
			logger.Warn("Failed to set conflict flag", zap.String("bookingID", record.ID), zap.Error(err))
		}
		s.notifyAsync(record.ProviderID, models.RoleProvider,
			"Schedule Conflict Detected",
			"Two accepted bookings now overlap on your schedule. Please reschedule or reject one of them.",
			map[string]string{
				"type":          "booking_conflict",
				"bookingId":     record.ID,
				"conflictingId": other.ID,
			})
		return
	}
}
