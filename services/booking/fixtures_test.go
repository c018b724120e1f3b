package booking

import (
	"context"
	"sync"
	"time"

	blockedRepo "vendora/database/repository/blocked"
	bookingRepo "vendora/database/repository/booking"
	catalogRepo "vendora/database/repository/catalog"
	"vendora/models"
	"vendora/utils"
)

// In-memory repositories backing the booking engine tests. They honor the
// same contracts as the Mongo implementations, including the transactional
// pairing of booking updates with history entries.

type memBookingRepo struct {
	mu       sync.Mutex
	bookings map[string]models.Booking
	history  []models.BookingHistoryEntry
}

func newMemBookingRepo() *memBookingRepo {
	return &memBookingRepo{bookings: make(map[string]models.Booking)}
}

func (r *memBookingRepo) Create(_ context.Context, b *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookings[b.ID] = *b
	return nil
}

func (r *memBookingRepo) GetByID(_ context.Context, id string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrNotFound
	}
	copy := b
	return &copy, nil
}

func (r *memBookingRepo) UpdateWithHistory(_ context.Context, b *models.Booking, from models.BookingStatus, entry *models.BookingHistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.bookings[b.ID]
	if !ok {
		return bookingRepo.ErrNotFound
	}
	if stored.Status != from {
		return bookingRepo.ErrStaleStatus
	}
	r.bookings[b.ID] = *b
	r.history = append(r.history, *entry)
	return nil
}

func (r *memBookingRepo) ListOverlapping(_ context.Context, serviceID string, start, end time.Time, statuses []models.BookingStatus) ([]models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Booking
	for _, b := range r.bookings {
		if b.ServiceID != serviceID {
			continue
		}
		match := false
		for _, st := range statuses {
			if b.Status == st {
				match = true
				break
			}
		}
		if match && utils.Overlaps(b.WindowStart, b.WindowEnd, start, end) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *memBookingRepo) CountActiveInRange(_ context.Context, serviceID string, dayStart, dayEnd time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, b := range r.bookings {
		if b.ServiceID != serviceID || b.Status.IsTerminal() {
			continue
		}
		if !b.BookingDate.Before(dayStart) && b.BookingDate.Before(dayEnd) {
			count++
		}
	}
	return count, nil
}

func (r *memBookingRepo) ListPendingPastDeadline(_ context.Context, now time.Time, limit int64) ([]models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Booking
	for _, b := range r.bookings {
		if b.Status == models.BookingPending && b.ExpiresAt != nil && b.ExpiresAt.Before(now) {
			out = append(out, b)
			if int64(len(out)) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (r *memBookingRepo) SetConflictFlag(_ context.Context, id string, flagged bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return bookingRepo.ErrNotFound
	}
	b.ConflictFlag = flagged
	r.bookings[id] = b
	return nil
}

func (r *memBookingRepo) ListHistory(_ context.Context, bookingID string) ([]models.BookingHistoryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.BookingHistoryEntry
	for _, e := range r.history {
		if e.BookingID == bookingID {
			out = append(out, e)
		}
	}
	return out, nil
}

type memBlockedRepo struct {
	slots []models.BlockedTimeSlot
}

func (r *memBlockedRepo) ListForDate(_ context.Context, serviceID, date string) ([]models.BlockedTimeSlot, error) {
	var out []models.BlockedTimeSlot
	for _, s := range r.slots {
		if s.ServiceID == serviceID && s.Date == date {
			out = append(out, s)
		}
	}
	return out, nil
}

type memCatalogRepo struct {
	services map[string]models.Service
	shops    map[string]models.Shop
	products map[string]models.Product
}

func (r *memCatalogRepo) GetService(_ context.Context, id string) (*models.Service, error) {
	s, ok := r.services[id]
	if !ok {
		return nil, catalogRepo.ErrServiceNotFound
	}
	return &s, nil
}

func (r *memCatalogRepo) GetShop(_ context.Context, id string) (*models.Shop, error) {
	s, ok := r.shops[id]
	if !ok {
		return nil, catalogRepo.ErrShopNotFound
	}
	return &s, nil
}

func (r *memCatalogRepo) GetProductsByIDs(_ context.Context, ids []string) ([]models.Product, error) {
	var out []models.Product
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memCatalogRepo) ConditionalDecrementStock(_ context.Context, productID string, quantity int) (int64, error) {
	p, ok := r.products[productID]
	if !ok || p.Stock < quantity {
		return 0, nil
	}
	p.Stock -= quantity
	r.products[productID] = p
	return 1, nil
}

var _ bookingRepo.BookingRepository = (*memBookingRepo)(nil)
var _ blockedRepo.BlockedSlotRepository = (*memBlockedRepo)(nil)
var _ catalogRepo.CatalogRepository = (*memCatalogRepo)(nil)

const (
	testServiceID  = "svc-1"
	testProviderID = "prov-1"
	testCustomerID = "cust-1"
)

// newTestService builds a booking engine over the in-memory repositories,
// seeded with one 30-minute, zero-buffer service and a fixed clock.
func newTestService(now time.Time) (*DefaultBookingService, *memBookingRepo, *memCatalogRepo, *memBlockedRepo) {
	business, _ := utils.NewBusinessTime("UTC")
	repo := newMemBookingRepo()
	blocked := &memBlockedRepo{}
	catalog := &memCatalogRepo{
		services: map[string]models.Service{
			testServiceID: {
				ID:              testServiceID,
				ProviderID:      testProviderID,
				Name:            "Deep Clean",
				DurationMinutes: 30,
				BufferMinutes:   0,
				Price:           50,
			},
		},
	}

	svc := &DefaultBookingService{
		Repo:           repo,
		BlockedRepo:    blocked,
		CatalogRepo:    catalog,
		Clock:          utils.FixedClock{T: now},
		Business:       business,
		PendingTTL:     24 * time.Hour,
		SweepBatchSize: 500,
	}
	return svc, repo, catalog, blocked
}

// mustCreate seeds a booking in a given state directly through the repo.
func mustCreate(repo *memBookingRepo, b models.Booking) models.Booking {
	_ = repo.Create(context.Background(), &b)
	return b
}
