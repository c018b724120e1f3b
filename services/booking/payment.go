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
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"go.uber.org/zap"
)

// PaymentVerifier resolves whether a customer-submitted payment reference
// actually settled. Gateway webhooks are handled elsewhere; this is the
// synchronous lookup path.
type PaymentVerifier interface {
	Verify(ctx context.Context, reference string) (bool, error)
}

// StripeVerifier checks a PaymentIntent id against Stripe.
type StripeVerifier struct{}

func (StripeVerifier) Verify(ctx context.Context, reference string) (bool, error) {
	intent, err := paymentintent.Get(reference, nil)
	if err != nil {
		return false, fmt.Errorf("stripe payment intent lookup failed: %w", err)
	}
	return intent.Status == stripe.PaymentIntentStatusSucceeded, nil
}

// SubmitPaymentReference records the customer's payment reference on a
// booking awaiting payment, verifies it against the gateway, and lands the
// payment status on paid or failed. Only the booking's customer may submit.
func (s *DefaultBookingService) SubmitPaymentReference(ctx context.Context, bookingID, customerID, reference string) (*models.Booking, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, NewInvalidArgumentError("a payment reference is required")
	}

	record, err := s.Repo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrNotFound) {
			return nil, NewNotFoundError(fmt.Sprintf("booking %s not found", bookingID))
		}
		return nil, fmt.Errorf("failed to load booking: %w", err)
	}

	if customerID != record.CustomerID {
		return nil, NewUnauthorizedError("only the booking's customer may submit a payment reference")
	}
	if record.Status != models.BookingAwaitingPayment {
		return nil, NewInvalidTransitionError("a payment reference is only accepted while the booking awaits payment")
	}

	// The reference lands in verifying before the gateway is consulted, so a
	// crash mid-lookup leaves an inspectable state instead of a silent retry.
	record.PaymentStatus = models.PaymentVerifying
	record.PaymentRef = reference
	record.UpdatedAt = s.Clock.Now()
	entry := &models.BookingHistoryEntry{
		ID:        uuid.New().String(),
		BookingID: record.ID,
		Status:    record.Status,
		ActorRole: models.RoleCustomer,
		ActorID:   customerID,
		Comment:   "payment reference submitted",
		CreatedAt: record.UpdatedAt,
	}
	if err := s.Repo.UpdateWithHistory(ctx, record, record.Status, entry); err != nil {
		return nil, fmt.Errorf("failed to persist payment reference: %w", err)
	}

	verified := false
	if s.Payments != nil {
		verified, err = s.Payments.Verify(ctx, reference)
		if err != nil {
			utils.GetLogger().Warn("Payment verification failed",
				zap.String("bookingID", record.ID),
				zap.Error(err))
		}
	}
	if verified {
		record.PaymentStatus = models.PaymentPaid
	} else {
		record.PaymentStatus = models.PaymentFailed
	}
	record.UpdatedAt = s.Clock.Now()

	entry = &models.BookingHistoryEntry{
		ID:        uuid.New().String(),
		BookingID: record.ID,
		Status:    record.Status,
		ActorRole: models.RoleCustomer,
		ActorID:   customerID,
		Comment:   fmt.Sprintf("payment verification finished (%s)", record.PaymentStatus),
		CreatedAt: record.UpdatedAt,
	}
	if err := s.Repo.UpdateWithHistory(ctx, record, record.Status, entry); err != nil {
		return nil, fmt.Errorf("failed to persist payment result: %w", err)
	}

	if record.PaymentStatus == models.PaymentPaid {
		s.notifyAsync(record.ProviderID, models.RoleProvider,
			"Payment Received",
			"The customer's payment for your booking has been verified.",
			map[string]string{"type": "payment_verified", "bookingId": record.ID})
	} else {
		s.notifyAsync(record.CustomerID, models.RoleCustomer,
			"Payment Not Verified",
			"We could not verify your payment reference. Please try again or use another method.",
			map[string]string{"type": "payment_failed", "bookingId": record.ID})
	}

	return record, nil
}
