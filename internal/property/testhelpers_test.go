package property_test

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-travel/internal/property"
)

type fakeStore struct {
	mu         sync.Mutex
	properties map[uuid.UUID]property.Property
	offerings  map[uuid.UUID][]property.Offering
	propCalls  int
	listCalls  int
}

func newFakeStore() (*fakeStore, property.Property) {
	p := property.Property{
		ID:            uuid.MustParse("11111111-1111-1111-1111-111111111111"),
		Name:          "Casa Azul",
		City:          "Lisbon",
		Country:       "PT",
		PricePerNight: decimal.RequireFromString("120.50"),
		MaxGuests:     4,
	}
	hourly := decimal.RequireFromString("35")
	fixed := decimal.RequireFromString("60")
	chef := property.Offering{
		ID:           uuid.MustParse("22222222-2222-2222-2222-222222222222"),
		ProviderID:   uuid.MustParse("33333333-3333-3333-3333-333333333333"),
		ProviderName: "Chef Rui",
		Name:         "Private dinner",
		Category:     property.CategoryChef,
		HourlyRate:   &hourly,
	}
	cleaner := property.Offering{
		ID:           uuid.MustParse("44444444-4444-4444-4444-444444444444"),
		ProviderID:   uuid.MustParse("55555555-5555-5555-5555-555555555555"),
		ProviderName: "Sparkle",
		Name:         "Deep clean",
		Category:     property.CategoryCleaner,
		FixedRate:    &fixed,
	}
	return &fakeStore{
		properties: map[uuid.UUID]property.Property{p.ID: p},
		offerings:  map[uuid.UUID][]property.Offering{p.ID: {chef, cleaner}},
	}, p
}

func (f *fakeStore) GetProperty(_ context.Context, id uuid.UUID) (property.Property, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.propCalls++
	p, ok := f.properties[id]
	if !ok {
		return property.Property{}, property.ErrPropertyNotFound
	}
	return p, nil
}

func (f *fakeStore) ListOfferings(_ context.Context, propertyID uuid.UUID) ([]property.Offering, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	return f.offerings[propertyID], nil
}

func (f *fakeStore) FindOffering(_ context.Context, providerID uuid.UUID, name string) (property.Offering, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, list := range f.offerings {
		for _, o := range list {
			if o.ProviderID == providerID && strings.EqualFold(o.Name, name) {
				return o, nil
			}
		}
	}
	return property.Offering{}, property.ErrOfferingNotFound
}
