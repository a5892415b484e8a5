package property

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Store is the persistence contract for the property read model.
type Store interface {
	GetProperty(ctx context.Context, id uuid.UUID) (Property, error)
	ListOfferings(ctx context.Context, propertyID uuid.UUID) ([]Offering, error)
	FindOffering(ctx context.Context, providerID uuid.UUID, name string) (Offering, error)
}

// ServiceConfig configures the property service.
type ServiceConfig struct {
	Store  Store
	Cache  *Cache
	Logger zerolog.Logger
}

// Service serves properties and service offerings, fronted by a Redis cache.
type Service struct {
	store  Store
	cache  *Cache
	logger zerolog.Logger
}

// NewService constructs a property service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Store == nil {
		return nil, errors.New("property store is required")
	}
	return &Service{store: cfg.Store, cache: cfg.Cache, logger: cfg.Logger}, nil
}

// Get returns a property by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Property, error) {
	key := PropertyKey(id)
	var cached Property
	if ok, err := s.cache.GetJSON(ctx, key, &cached); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("property cache read failed")
	} else if ok {
		return cached, nil
	}

	p, err := s.store.GetProperty(ctx, id)
	if err != nil {
		return Property{}, err
	}
	if err := s.cache.SetJSON(ctx, key, p); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("property cache write failed")
	}
	return p, nil
}

// Offerings lists the services that can be bundled with a stay at the property.
func (s *Service) Offerings(ctx context.Context, propertyID uuid.UUID) ([]Offering, error) {
	key := OfferingsKey(propertyID)
	var cached []Offering
	if ok, err := s.cache.GetJSON(ctx, key, &cached); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("offerings cache read failed")
	} else if ok {
		return cached, nil
	}

	if _, err := s.Get(ctx, propertyID); err != nil {
		return nil, err
	}
	offerings, err := s.store.ListOfferings(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if offerings == nil {
		offerings = []Offering{}
	}
	if err := s.cache.SetJSON(ctx, key, offerings); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("offerings cache write failed")
	}
	return offerings, nil
}

// FindOffering resolves an offering from the provider and service name a
// booking submission refers to.
func (s *Service) FindOffering(ctx context.Context, providerID uuid.UUID, name string) (Offering, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Offering{}, ErrOfferingNotFound
	}
	return s.store.FindOffering(ctx, providerID, name)
}
