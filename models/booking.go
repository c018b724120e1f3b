package models

import "time"

// BookingStatus is the closed set of booking lifecycle states.
type BookingStatus string

const (
	BookingPending           BookingStatus = "pending"
	BookingAccepted          BookingStatus = "accepted"
	BookingRejected          BookingStatus = "rejected"
	BookingReschedulePending BookingStatus = "reschedule_pending"
	BookingEnRoute           BookingStatus = "en_route"
	BookingAwaitingPayment   BookingStatus = "awaiting_payment"
	BookingCompleted         BookingStatus = "completed"
	BookingCancelled         BookingStatus = "cancelled"
	BookingDisputed          BookingStatus = "disputed"
	BookingExpired           BookingStatus = "expired"
)

// ParseBookingStatus normalizes an input status string. "confirmed" is a
// legacy alias for "accepted" kept for older clients; it is never persisted.
func ParseBookingStatus(s string) (BookingStatus, bool) {
	if s == "confirmed" {
		return BookingAccepted, true
	}
	switch status := BookingStatus(s); status {
	case BookingPending, BookingAccepted, BookingRejected, BookingReschedulePending,
		BookingEnRoute, BookingAwaitingPayment, BookingCompleted, BookingCancelled,
		BookingDisputed, BookingExpired:
		return status, true
	}
	return "", false
}

// IsTerminal reports whether no further transition is defined from s.
func (s BookingStatus) IsTerminal() bool {
	switch s {
	case BookingCompleted, BookingCancelled, BookingRejected, BookingExpired:
		return true
	}
	return false
}

// PaymentStatus tracks the payment leg of a booking independently of its
// lifecycle state.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentVerifying PaymentStatus = "verifying"
	PaymentPaid      PaymentStatus = "paid"
	PaymentFailed    PaymentStatus = "failed"
)

// ActorRole identifies who is invoking a transition.
type ActorRole string

const (
	RoleCustomer ActorRole = "customer"
	RoleProvider ActorRole = "provider"
	RoleAdmin    ActorRole = "admin"
	RoleSystem   ActorRole = "system"
)

// ServiceLocation says where the service is rendered.
type ServiceLocation string

const (
	LocationCustomerSite ServiceLocation = "customer_site"
	LocationProviderSite ServiceLocation = "provider_site"
)

// Booking represents a single reservation of a provider's time.
// ProviderID is denormalized from the service at creation so authorization
// checks do not need a service lookup.
type Booking struct {
	ID         string `bson:"id" json:"id"`
	CustomerID string `bson:"customer_id" json:"customer_id"`
	ServiceID  string `bson:"service_id" json:"service_id"`
	ProviderID string `bson:"provider_id" json:"provider_id"`

	BookingDate time.Time `bson:"booking_date" json:"booking_date"`
	SlotLabel   string    `bson:"slot_label,omitempty" json:"slot_label,omitempty"`
	// Occupied schedule window [window_start, window_end), stored so the
	// overlap query is a plain indexed range comparison.
	WindowStart time.Time `bson:"window_start" json:"window_start"`
	WindowEnd   time.Time `bson:"window_end" json:"window_end"`

	Status        BookingStatus `bson:"status" json:"status"`
	PaymentStatus PaymentStatus `bson:"payment_status" json:"payment_status"`
	PaymentRef    string        `bson:"payment_ref,omitempty" json:"payment_ref,omitempty"`

	// Non-nil if and only if Status == pending.
	ExpiresAt *time.Time `bson:"expires_at,omitempty" json:"expires_at,omitempty"`

	RescheduleDate  *time.Time      `bson:"reschedule_date,omitempty" json:"reschedule_date,omitempty"`
	RescheduleBy    ActorRole       `bson:"reschedule_by,omitempty" json:"reschedule_by,omitempty"`
	RejectionReason string          `bson:"rejection_reason,omitempty" json:"rejection_reason,omitempty"`
	DisputeReason   string          `bson:"dispute_reason,omitempty" json:"dispute_reason,omitempty"`
	Comments        string          `bson:"comments,omitempty" json:"comments,omitempty"`
	ServiceLocation ServiceLocation `bson:"service_location" json:"service_location"`

	// Set by the post-accept conflict audit when a second overlapping
	// active booking is discovered.
	ConflictFlag bool `bson:"conflict_flag,omitempty" json:"conflict_flag,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// BookingHistoryEntry is an append-only audit row, one per transition.
type BookingHistoryEntry struct {
	ID        string        `bson:"id" json:"id"`
	BookingID string        `bson:"booking_id" json:"booking_id"`
	Status    BookingStatus `bson:"status" json:"status"`
	ActorRole ActorRole     `bson:"actor_role" json:"actor_role"`
	ActorID   string        `bson:"actor_id" json:"actor_id"`
	Comment   string        `bson:"comment,omitempty" json:"comment,omitempty"`
	CreatedAt time.Time     `bson:"created_at" json:"created_at"`
}
