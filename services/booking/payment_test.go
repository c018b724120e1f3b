package booking

import (
	"context"
	"testing"

	"vendora/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubVerifier struct {
	ok   bool
	err  error
	refs []string
}

func (v *stubVerifier) Verify(_ context.Context, reference string) (bool, error) {
	v.refs = append(v.refs, reference)
	return v.ok, v.err
}

func TestSubmitPaymentReferenceVerified(t *testing.T) {
	svc, repo, _, _ := newTestService(testNow)
	verifier := &stubVerifier{ok: true}
	svc.Payments = verifier
	b := bookingInState(repo, testNow, models.BookingAwaitingPayment)

	updated, err := svc.SubmitPaymentReference(context.Background(), b.ID, testCustomerID, "pi_123")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, updated.PaymentStatus)
	assert.Equal(t, "pi_123", updated.PaymentRef)
	assert.Equal(t, []string{"pi_123"}, verifier.refs)

	// The booking itself stays in awaiting_payment; the provider completes it.
	assert.Equal(t, models.BookingAwaitingPayment, updated.Status)

	history, err := repo.ListHistory(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Len(t, history, 3, "seed, reference submission and verification result")
}

// peekingVerifier records what the store holds at the moment the gateway is
// consulted.
type peekingVerifier struct {
	repo      *memBookingRepo
	bookingID string
	seen      models.PaymentStatus
	seenRef   string
}

func (v *peekingVerifier) Verify(ctx context.Context, _ string) (bool, error) {
	b, err := v.repo.GetByID(ctx, v.bookingID)
	if err != nil {
		return false, err
	}
	v.seen = b.PaymentStatus
	v.seenRef = b.PaymentRef
	return true, nil
}

func TestPaymentReferencePersistedAsVerifyingBeforeLookup(t *testing.T) {
	svc, repo, _, _ := newTestService(testNow)
	b := bookingInState(repo, testNow, models.BookingAwaitingPayment)
	verifier := &peekingVerifier{repo: repo, bookingID: b.ID}
	svc.Payments = verifier

	updated, err := svc.SubmitPaymentReference(context.Background(), b.ID, testCustomerID, "pi_123")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentVerifying, verifier.seen, "verifying must be committed before the gateway call")
	assert.Equal(t, "pi_123", verifier.seenRef)
	assert.Equal(t, models.PaymentPaid, updated.PaymentStatus)
}

func TestSubmitPaymentReferenceRejected(t *testing.T) {
	svc, repo, _, _ := newTestService(testNow)
	svc.Payments = &stubVerifier{ok: false}
	b := bookingInState(repo, testNow, models.BookingAwaitingPayment)

	updated, err := svc.SubmitPaymentReference(context.Background(), b.ID, testCustomerID, "pi_bad")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentFailed, updated.PaymentStatus)
}

func TestSubmitPaymentReferenceGuards(t *testing.T) {
	svc, repo, _, _ := newTestService(testNow)
	svc.Payments = &stubVerifier{ok: true}

	awaiting := bookingInState(repo, testNow, models.BookingAwaitingPayment)

	_, err := svc.SubmitPaymentReference(context.Background(), awaiting.ID, testCustomerID, "  ")
	assert.Equal(t, CodeInvalidArgument, errCode(t, err))

	_, err = svc.SubmitPaymentReference(context.Background(), awaiting.ID, "someone-else", "pi_123")
	assert.Equal(t, CodeUnauthorized, errCode(t, err))

	_, err = svc.SubmitPaymentReference(context.Background(), "missing", testCustomerID, "pi_123")
	assert.Equal(t, CodeNotFound, errCode(t, err))

	pending := mustCreate(repo, models.Booking{
		ID:         "bk-pending",
		CustomerID: testCustomerID,
		ServiceID:  testServiceID,
		ProviderID: testProviderID,
		Status:     models.BookingPending,
	})
	_, err = svc.SubmitPaymentReference(context.Background(), pending.ID, testCustomerID, "pi_123")
	assert.Equal(t, CodeInvalidTransition, errCode(t, err))
}
