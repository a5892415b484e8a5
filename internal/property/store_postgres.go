package property

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noah-isme/backend-travel/internal/pricing"
)

// PostgresStore reads properties and offerings from Postgres. Numeric columns
// are selected as text and parsed into decimals.
type PostgresStore struct {
	Pool *pgxpool.Pool
}

// NewPostgresStore constructs a Postgres-backed store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{Pool: pool}
}

const selectProperty = `
SELECT id, name, city, country, price_per_night::text, max_guests
FROM properties
WHERE id = $1`

const selectOfferingColumns = `
SELECT o.id, o.provider_id, sp.name, o.name, o.category, o.hourly_rate::text, o.fixed_rate::text
FROM service_offerings o
JOIN service_providers sp ON sp.id = o.provider_id`

// GetProperty implements Store.
func (s *PostgresStore) GetProperty(ctx context.Context, id uuid.UUID) (Property, error) {
	var (
		p     Property
		price string
	)
	err := s.Pool.QueryRow(ctx, selectProperty, id).Scan(&p.ID, &p.Name, &p.City, &p.Country, &price, &p.MaxGuests)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Property{}, ErrPropertyNotFound
		}
		return Property{}, fmt.Errorf("get property %s: %w", id, err)
	}
	p.PricePerNight = pricing.ParseAmount(price)
	return p, nil
}

// ListOfferings implements Store. Offerings are matched on the property's city.
func (s *PostgresStore) ListOfferings(ctx context.Context, propertyID uuid.UUID) ([]Offering, error) {
	rows, err := s.Pool.Query(ctx, selectOfferingColumns+`
JOIN properties p ON lower(p.city) = lower(sp.city)
WHERE p.id = $1 AND o.active
ORDER BY o.category, o.name`, propertyID)
	if err != nil {
		return nil, fmt.Errorf("list offerings for %s: %w", propertyID, err)
	}
	defer rows.Close()

	var out []Offering
	for rows.Next() {
		o, err := scanOffering(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// FindOffering implements Store.
func (s *PostgresStore) FindOffering(ctx context.Context, providerID uuid.UUID, name string) (Offering, error) {
	row := s.Pool.QueryRow(ctx, selectOfferingColumns+`
WHERE o.provider_id = $1 AND lower(o.name) = lower($2) AND o.active`, providerID, name)
	return s.offeringFromRow(row, providerID.String()+"/"+name)
}

func (s *PostgresStore) offeringFromRow(row pgx.Row, ref string) (Offering, error) {
	o, err := scanOffering(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Offering{}, ErrOfferingNotFound
		}
		return Offering{}, fmt.Errorf("get offering %s: %w", ref, err)
	}
	return o, nil
}

func scanOffering(row pgx.Row) (Offering, error) {
	var (
		o        Offering
		category string
		hourly   *string
		fixed    *string
	)
	if err := row.Scan(&o.ID, &o.ProviderID, &o.ProviderName, &o.Name, &category, &hourly, &fixed); err != nil {
		return Offering{}, err
	}
	o.Category = ParseCategory(category)
	o.HourlyRate = pricing.ParseOptionalAmount(hourly)
	if o.HourlyRate == nil {
		o.FixedRate = pricing.ParseOptionalAmount(fixed)
	}
	return o, nil
}
