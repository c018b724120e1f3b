package models

import "time"

// DefaultMaxDailyBookings applies when a service does not set its own cap.
const DefaultMaxDailyBookings = 5

// Service is the bookable offering. Lifecycle is owned by catalog
// management; the booking engine only reads scheduling fields.
type Service struct {
	ID               string    `bson:"id" json:"id"`
	ProviderID       string    `bson:"provider_id" json:"provider_id"`
	Name             string    `bson:"name" json:"name"`
	DurationMinutes  int       `bson:"duration_minutes" json:"duration_minutes"`
	BufferMinutes    int       `bson:"buffer_minutes" json:"buffer_minutes"`
	MaxDailyBookings int       `bson:"max_daily_bookings,omitempty" json:"max_daily_bookings,omitempty"`
	Price            float64   `bson:"price" json:"price"`
	CreatedAt        time.Time `bson:"created_at" json:"created_at"`
}

// DailyCap returns the effective daily booking limit.
func (s Service) DailyCap() int {
	if s.MaxDailyBookings <= 0 {
		return DefaultMaxDailyBookings
	}
	return s.MaxDailyBookings
}
