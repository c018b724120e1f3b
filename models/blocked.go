package models

import "time"

// BlockedTimeSlot is a provider-declared unavailability window. Read-only
// input to the availability check; providers manage these elsewhere.
type BlockedTimeSlot struct {
	ID         string    `bson:"id" json:"id"`
	ServiceID  string    `bson:"service_id" json:"service_id"`
	ProviderID string    `bson:"provider_id" json:"provider_id"`
	Date       string    `bson:"date" json:"date"`   // business-timezone calendar date, "2006-01-02"
	Start      int       `bson:"start" json:"start"` // minutes from local midnight
	End        int       `bson:"end" json:"end"`     // minutes from local midnight
	Reason     string    `bson:"reason,omitempty" json:"reason,omitempty"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
}
