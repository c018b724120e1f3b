package booking

import (
	"context"
	"fmt"
	"time"

	"vendora/models"
	"vendora/utils"

	"go.uber.org/zap"
)

// notifyAsync fires a push without blocking the transition. Delivery failures
// are logged; the booking state is already committed.
func (s *DefaultBookingService) notifyAsync(recipientID string, recipientRole models.ActorRole, title, body string, data map[string]string) {
	if s.NotificationSvc == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		var err error
		if recipientRole == models.RoleProvider {
			err = s.NotificationSvc.NotifyProvider(ctx, recipientID, title, body, data)
		} else {
			err = s.NotificationSvc.NotifyCustomer(ctx, recipientID, title, body, data)
		}
		if err != nil {
			utils.GetLogger().Warn("Push notification failed",
				zap.String("recipientID", recipientID),
				zap.Error(err))
		}
	}()
}

// notifyCounterpart emits exactly one notification per transition, to the
// party that did not act. Admin and system transitions notify the customer.
func (s *DefaultBookingService) notifyCounterpart(record *models.Booking, target models.BookingStatus, actorRole models.ActorRole) {
	recipientID := record.CustomerID
	recipientRole := models.RoleCustomer
	if actorRole == models.RoleCustomer {
		recipientID = record.ProviderID
		recipientRole = models.RoleProvider
	}

	title, body := transitionMessage(record, target)
	s.notifyAsync(recipientID, recipientRole, title, body, map[string]string{
		"type":      "booking_" + string(target),
		"bookingId": record.ID,
		"status":    string(target),
	})
}

func transitionMessage(record *models.Booking, target models.BookingStatus) (string, string) {
	when := record.BookingDate.Format("2 January, 3:04 PM")

	switch target {
	case models.BookingAccepted:
		return "Booking Accepted", fmt.Sprintf("Your booking on %s has been accepted.", when)
	case models.BookingRejected:
		return "Booking Rejected", fmt.Sprintf("The booking on %s was rejected: %s", when, record.RejectionReason)
	case models.BookingReschedulePending:
		proposed := ""
		if record.RescheduleDate != nil {
			proposed = record.RescheduleDate.Format("2 January, 3:04 PM")
		}
		return "Reschedule Proposed", fmt.Sprintf("A new time of %s has been proposed for your booking. Approve or decline it.", proposed)
	case models.BookingEnRoute:
		return "Provider On The Way", fmt.Sprintf("Your provider is en route for the booking on %s.", when)
	case models.BookingAwaitingPayment:
		return "Payment Requested", "The service is done. Please submit your payment reference."
	case models.BookingCompleted:
		return "Booking Completed", fmt.Sprintf("Your booking on %s is complete. Thank you!", when)
	case models.BookingCancelled:
		return "Booking Cancelled", fmt.Sprintf("The booking on %s has been cancelled.", when)
	case models.BookingDisputed:
		return "Booking Disputed", fmt.Sprintf("A dispute was raised on the booking dated %s: %s", when, record.DisputeReason)
	case models.BookingExpired:
		return "Booking Expired", fmt.Sprintf("The booking request for %s expired without a response.", when)
	}
	return "Booking Updated", fmt.Sprintf("Your booking on %s was updated to %s.", when, target)
}
