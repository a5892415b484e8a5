package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noah-isme/backend-travel/internal/pricing"
)

const (
	pgUniqueViolation        = "23505"
	bookingCodeConstraint    = "bookings_booking_code_key"
	activeBookingStatusCheck = "status <> 'cancelled'"
)

// PostgresStore persists bookings in Postgres.
type PostgresStore struct {
	Pool *pgxpool.Pool
}

// NewPostgresStore constructs a Postgres-backed booking store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{Pool: pool}
}

// HasOverlap reports whether an active booking shares at least one night with
// the stay [checkIn, checkOut).
func (s *PostgresStore) HasOverlap(ctx context.Context, propertyID uuid.UUID, checkIn, checkOut time.Time) (bool, error) {
	var exists bool
	err := s.Pool.QueryRow(ctx, `
SELECT EXISTS (
    SELECT 1 FROM bookings
    WHERE property_id = $1 AND check_in < $3 AND check_out > $2 AND `+activeBookingStatusCheck+`
)`, propertyID, checkIn, checkOut).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check overlap for %s: %w", propertyID, err)
	}
	return exists, nil
}

// Create inserts the booking and its service lines in one transaction.
func (s *PostgresStore) Create(ctx context.Context, b *Booking) error {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	bd := b.Breakdown
	err = tx.QueryRow(ctx, `
INSERT INTO bookings (
    id, booking_code, property_id, check_in, check_out, guests, guest_email, status,
    nights, nightly_rate, lodging_subtotal, services_subtotal, discount_rate, discount_amount, total, currency, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
RETURNING created_at`,
		b.ID, b.Code, b.PropertyID, b.CheckIn, b.CheckOut, b.Guests, b.GuestEmail, string(b.Status),
		bd.Nights, b.NightlyRate.String(), bd.LodgingSubtotal.String(), bd.ServicesSubtotal.String(),
		bd.DiscountRate.String(), bd.DiscountAmount.String(), bd.Total.String(), b.Currency, b.CreatedAt,
	).Scan(&b.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation && pgErr.ConstraintName == bookingCodeConstraint {
			return ErrDuplicateCode
		}
		return fmt.Errorf("insert booking: %w", err)
	}

	batch := &pgx.Batch{}
	for _, line := range b.Services {
		batch.Queue(`
INSERT INTO booking_services (
    id, booking_id, offering_id, provider_id, service_name, service_date, duration, pricing_mode, rate, line_total, status
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			line.ID, b.ID, line.OfferingID, line.ProviderID, line.ServiceName, line.ServiceDate,
			line.Duration, string(line.Mode), line.Rate.String(), line.Total.String(), string(line.Status),
		)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert booking services: %w", err)
		}
	}
	return tx.Commit(ctx)
}

// Get loads a booking with its service lines.
func (s *PostgresStore) Get(ctx context.Context, id uuid.UUID) (Booking, error) {
	var (
		b                                                 Booking
		status                                            string
		nightly, lodging, services, rate, discount, total string
	)
	err := s.Pool.QueryRow(ctx, `
SELECT id, booking_code, property_id, check_in, check_out, guests, guest_email, status, nights,
       nightly_rate::text, lodging_subtotal::text, services_subtotal::text, discount_rate::text,
       discount_amount::text, total::text, currency, created_at
FROM bookings
WHERE id = $1`, id).Scan(
		&b.ID, &b.Code, &b.PropertyID, &b.CheckIn, &b.CheckOut, &b.Guests, &b.GuestEmail, &status, &b.Breakdown.Nights,
		&nightly, &lodging, &services, &rate, &discount, &total, &b.Currency, &b.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Booking{}, ErrBookingNotFound
		}
		return Booking{}, fmt.Errorf("get booking %s: %w", id, err)
	}
	b.Status = Status(status)
	b.NightlyRate = pricing.ParseAmount(nightly)
	b.Breakdown.LodgingSubtotal = pricing.ParseAmount(lodging)
	b.Breakdown.ServicesSubtotal = pricing.ParseAmount(services)
	b.Breakdown.DiscountRate = pricing.ParseAmount(rate)
	b.Breakdown.DiscountAmount = pricing.ParseAmount(discount)
	b.Breakdown.Total = pricing.ParseAmount(total)

	rows, err := s.Pool.Query(ctx, `
SELECT id, offering_id, provider_id, service_name, service_date, duration, pricing_mode, rate::text, line_total::text, status
FROM booking_services
WHERE booking_id = $1
ORDER BY service_date, service_name`, id)
	if err != nil {
		return Booking{}, fmt.Errorf("list booking services %s: %w", id, err)
	}
	defer rows.Close()

	b.Services = []ServiceLine{}
	b.Breakdown.Lines = []pricing.Line{}
	for rows.Next() {
		var (
			line                ServiceLine
			mode, lineStatus    string
			unitRate, lineTotal string
		)
		if err := rows.Scan(&line.ID, &line.OfferingID, &line.ProviderID, &line.ServiceName, &line.ServiceDate,
			&line.Duration, &mode, &unitRate, &lineTotal, &lineStatus); err != nil {
			return Booking{}, err
		}
		line.Mode = pricing.Mode(mode)
		line.Rate = pricing.ParseAmount(unitRate)
		line.Total = pricing.ParseAmount(lineTotal)
		line.Status = Status(lineStatus)
		b.Services = append(b.Services, line)
		b.Breakdown.Lines = append(b.Breakdown.Lines, pricing.Line{ID: line.OfferingID.String(), Mode: line.Mode, Cost: line.Total})
	}
	return b, rows.Err()
}
