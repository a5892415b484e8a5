package booking_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-travel/internal/booking"
	"github.com/noah-isme/backend-travel/internal/lock"
	"github.com/noah-isme/backend-travel/internal/pricing"
	"github.com/noah-isme/backend-travel/internal/property"
	"github.com/noah-isme/backend-travel/internal/queue"
)

var (
	propertyID = uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000001")
	chefID     = uuid.MustParse("bbbbbbbb-0000-0000-0000-000000000001")
	guideID    = uuid.MustParse("bbbbbbbb-0000-0000-0000-000000000002")
	cleanerID  = uuid.MustParse("bbbbbbbb-0000-0000-0000-000000000003")
	remoteID   = uuid.MustParse("bbbbbbbb-0000-0000-0000-000000000004")

	chefProvider    = uuid.MustParse("cccccccc-0000-0000-0000-000000000001")
	guideProvider   = uuid.MustParse("cccccccc-0000-0000-0000-000000000002")
	cleanerProvider = uuid.MustParse("cccccccc-0000-0000-0000-000000000003")
	remoteProvider  = uuid.MustParse("cccccccc-0000-0000-0000-000000000004")
)

func money(v string) *pricing.Money {
	m := pricing.ParseAmount(v)
	return &m
}

func day(value string) time.Time {
	t, err := time.Parse(booking.DateLayout, value)
	if err != nil {
		panic(err)
	}
	return t
}

type fakeProperties struct {
	property  property.Property
	available []property.Offering
	all       []property.Offering
}

func newFakeProperties() *fakeProperties {
	chef := property.Offering{ID: chefID, ProviderID: chefProvider, ProviderName: "Chef Rui", Name: "Private dinner", Category: property.CategoryChef, HourlyRate: money("20")}
	guide := property.Offering{ID: guideID, ProviderID: guideProvider, ProviderName: "Ana", Name: "City walk", Category: property.CategoryTourGuide, HourlyRate: money("15")}
	cleaner := property.Offering{ID: cleanerID, ProviderID: cleanerProvider, ProviderName: "Sparkle", Name: "Deep clean", Category: property.CategoryCleaner, FixedRate: money("50")}
	remote := property.Offering{ID: remoteID, ProviderID: remoteProvider, ProviderName: "Elsewhere", Name: "Boat trip", Category: property.CategoryOther, FixedRate: money("80")}
	return &fakeProperties{
		property: property.Property{
			ID:            propertyID,
			Name:          "Casa Azul",
			City:          "Lisbon",
			Country:       "PT",
			PricePerNight: pricing.ParseAmount("100"),
			MaxGuests:     4,
		},
		available: []property.Offering{chef, guide, cleaner},
		all:       []property.Offering{chef, guide, cleaner, remote},
	}
}

func (f *fakeProperties) Get(_ context.Context, id uuid.UUID) (property.Property, error) {
	if id != f.property.ID {
		return property.Property{}, property.ErrPropertyNotFound
	}
	return f.property, nil
}

func (f *fakeProperties) Offerings(_ context.Context, id uuid.UUID) ([]property.Offering, error) {
	if id != f.property.ID {
		return nil, property.ErrPropertyNotFound
	}
	return f.available, nil
}

func (f *fakeProperties) FindOffering(_ context.Context, providerID uuid.UUID, name string) (property.Offering, error) {
	for _, o := range f.all {
		if o.ProviderID == providerID && strings.EqualFold(o.Name, strings.TrimSpace(name)) {
			return o, nil
		}
	}
	return property.Offering{}, property.ErrOfferingNotFound
}

type memoryStore struct {
	mu        sync.Mutex
	bookings  map[uuid.UUID]booking.Booking
	takenCode map[string]bool
}

func newMemoryStore() *memoryStore {
	return &memoryStore{bookings: map[uuid.UUID]booking.Booking{}, takenCode: map[string]bool{}}
}

func (m *memoryStore) HasOverlap(_ context.Context, propertyID uuid.UUID, checkIn, checkOut time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.bookings {
		if b.PropertyID != propertyID || b.Status == booking.StatusCancelled {
			continue
		}
		if b.CheckIn.Before(checkOut) && b.CheckOut.After(checkIn) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryStore) Create(_ context.Context, b *booking.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.takenCode[b.Code] {
		return booking.ErrDuplicateCode
	}
	m.takenCode[b.Code] = true
	m.bookings[b.ID] = *b
	return nil
}

func (m *memoryStore) Get(_ context.Context, id uuid.UUID) (booking.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return booking.Booking{}, booking.ErrBookingNotFound
	}
	return b, nil
}

func (m *memoryStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.bookings)
}

type recordingEnqueuer struct {
	mu   sync.Mutex
	sent []queue.BookingConfirmation
	err  error
}

func (r *recordingEnqueuer) EnqueueBookingConfirmation(_ context.Context, p queue.BookingConfirmation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, p)
	return nil
}

type fixture struct {
	svc      *booking.Service
	store    *memoryStore
	enqueuer *recordingEnqueuer
	redis    *miniredis.Miniredis
}

func newFixture(t *testing.T, mutate ...func(*booking.ServiceConfig)) fixture {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := newMemoryStore()
	enq := &recordingEnqueuer{}
	cfg := booking.ServiceConfig{
		Properties: newFakeProperties(),
		Store:      store,
		Locker:     lock.Locker{R: client, RetryBackoff: 5 * time.Millisecond, MaxWait: 50 * time.Millisecond},
		Enqueuer:   enq,
		Logger:     zerolog.Nop(),
		Currency:   "eur",
		Now:        func() time.Time { return time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC) },
	}
	for _, fn := range mutate {
		fn(&cfg)
	}
	svc, err := booking.NewService(cfg)
	require.NoError(t, err)
	return fixture{svc: svc, store: store, enqueuer: enq, redis: mr}
}

func requireAmount(t *testing.T, want string, got pricing.Money) {
	t.Helper()
	require.Truef(t, pricing.ParseAmount(want).Equal(got), "want %s, got %s", want, got.String())
}
