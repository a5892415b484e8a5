package booking_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-travel/internal/booking"
	"github.com/noah-isme/backend-travel/internal/common"
	"github.com/noah-isme/backend-travel/internal/lock"
	"github.com/noah-isme/backend-travel/internal/obs"
	"github.com/noah-isme/backend-travel/internal/pricing"
	"github.com/noah-isme/backend-travel/internal/property"
)

func init() {
	obs.MustRegisterDomainMetrics("travel_test", prometheus.NewRegistry())
}

func threeNightStay() booking.Submission {
	return booking.Submission{
		PropertyID: propertyID,
		CheckIn:    day("2025-03-10"),
		CheckOut:   day("2025-03-13"),
		Guests:     2,
		GuestEmail: "guest@example.com",
		Services: []booking.SubmittedService{
			{ProviderID: chefProvider, ServiceName: "Private dinner", ServiceDate: day("2025-03-11"), Duration: 2},
			{ProviderID: guideProvider, ServiceName: "city walk", ServiceDate: day("2025-03-12"), Duration: 1},
		},
	}
}

func requireAppError(t *testing.T, err error, status int) *common.AppError {
	t.Helper()
	var appErr *common.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	require.Equal(t, status, appErr.HTTPStatus)
	return appErr
}

func TestQuote(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("two hourly services", func(t *testing.T) {
		q, err := f.svc.Quote(ctx, booking.QuoteInput{
			PropertyID: propertyID,
			CheckIn:    day("2025-03-10"),
			CheckOut:   day("2025-03-13"),
			Services:   []booking.QuoteService{{OfferingID: chefID, Duration: 2}, {OfferingID: guideID, Duration: 1}},
		})
		require.NoError(t, err)
		require.False(t, q.Authoritative)
		require.Equal(t, "EUR", q.Currency)
		require.Equal(t, 3, q.Breakdown.Nights)
		requireAmount(t, "300", q.Breakdown.LodgingSubtotal)
		requireAmount(t, "55", q.Breakdown.ServicesSubtotal)
		requireAmount(t, "17.75", q.Breakdown.DiscountAmount)
		requireAmount(t, "337.25", q.Breakdown.Total)
	})

	t.Run("third fixed service moves to the next tier", func(t *testing.T) {
		q, err := f.svc.Quote(ctx, booking.QuoteInput{
			PropertyID: propertyID,
			CheckIn:    day("2025-03-10"),
			CheckOut:   day("2025-03-13"),
			Services: []booking.QuoteService{
				{OfferingID: chefID, Duration: 2},
				{OfferingID: guideID, Duration: 1},
				{OfferingID: cleanerID, Duration: 9},
			},
		})
		require.NoError(t, err)
		requireAmount(t, "0.1", q.Breakdown.DiscountRate)
		requireAmount(t, "364.5", q.Breakdown.Total)
	})

	t.Run("missing dates price services only", func(t *testing.T) {
		q, err := f.svc.Quote(ctx, booking.QuoteInput{
			PropertyID: propertyID,
			Services:   []booking.QuoteService{{OfferingID: cleanerID}},
		})
		require.NoError(t, err)
		require.Equal(t, 0, q.Breakdown.Nights)
		requireAmount(t, "0", q.Breakdown.LodgingSubtotal)
		requireAmount(t, "47.5", q.Breakdown.Total)
	})

	t.Run("inverted dates never fail", func(t *testing.T) {
		q, err := f.svc.Quote(ctx, booking.QuoteInput{
			PropertyID: propertyID,
			CheckIn:    day("2025-03-13"),
			CheckOut:   day("2025-03-10"),
		})
		require.NoError(t, err)
		require.Equal(t, 0, q.Breakdown.Nights)
		requireAmount(t, "0", q.Breakdown.Total)
	})

	t.Run("hourly duration below one bills one hour", func(t *testing.T) {
		q, err := f.svc.Quote(ctx, booking.QuoteInput{
			PropertyID: propertyID,
			Services:   []booking.QuoteService{{OfferingID: chefID, Duration: 0}},
		})
		require.NoError(t, err)
		requireAmount(t, "20", q.Breakdown.ServicesSubtotal)
	})

	t.Run("offering from another city", func(t *testing.T) {
		_, err := f.svc.Quote(ctx, booking.QuoteInput{
			PropertyID: propertyID,
			Services:   []booking.QuoteService{{OfferingID: remoteID}},
		})
		require.ErrorIs(t, err, property.ErrOfferingNotFound)
	})

	t.Run("unknown property", func(t *testing.T) {
		_, err := f.svc.Quote(ctx, booking.QuoteInput{PropertyID: uuid.New()})
		require.ErrorIs(t, err, property.ErrPropertyNotFound)
	})
}

func TestCreateUsesServerPrices(t *testing.T) {
	f := newFixture(t)
	before := testutil.ToFloat64(obs.BookingPriceMismatchTotal)

	sub := threeNightStay()
	sub.QuotedTotal = money("250")
	sub.Services[0].Rate = money("5")
	sub.Services[0].Total = money("10")

	b, err := f.svc.Create(context.Background(), sub)
	require.NoError(t, err)

	require.Regexp(t, `^BK-[A-Z2-7]{8}$`, b.Code)
	require.Equal(t, booking.StatusPending, b.Status)
	require.Equal(t, "EUR", b.Currency)
	requireAmount(t, "337.25", b.Breakdown.Total)
	require.Len(t, b.Services, 2)
	require.Equal(t, "Private dinner", b.Services[0].ServiceName)
	require.Equal(t, pricing.ModeHourly, b.Services[0].Mode)
	requireAmount(t, "20", b.Services[0].Rate)
	requireAmount(t, "40", b.Services[0].Total)
	require.Equal(t, "City walk", b.Services[1].ServiceName)

	require.Equal(t, before+1, testutil.ToFloat64(obs.BookingPriceMismatchTotal))

	stored, err := f.svc.Get(context.Background(), b.ID)
	require.NoError(t, err)
	requireAmount(t, "337.25", stored.Breakdown.Total)

	require.Len(t, f.enqueuer.sent, 1)
	require.Equal(t, b.Code, f.enqueuer.sent[0].BookingCode)
	require.Equal(t, "guest@example.com", f.enqueuer.sent[0].Email)
	require.Equal(t, "2025-03-10", f.enqueuer.sent[0].CheckIn)
	requireAmount(t, "337.25", f.enqueuer.sent[0].Total)

	require.False(t, f.redis.Exists(lock.PropertyBookingKey(propertyID)))
}

func TestCreateMatchingClientAmountsAreNotCounted(t *testing.T) {
	f := newFixture(t)
	before := testutil.ToFloat64(obs.BookingPriceMismatchTotal)

	sub := threeNightStay()
	sub.QuotedTotal = money("337.25")
	sub.Services[0].Rate = money("20.00")
	sub.Services[0].Total = money("40")

	_, err := f.svc.Create(context.Background(), sub)
	require.NoError(t, err)
	require.Equal(t, before, testutil.ToFloat64(obs.BookingPriceMismatchTotal))
}

func TestCreateRejectsOverlappingStay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, threeNightStay())
	require.NoError(t, err)

	overlapping := threeNightStay()
	overlapping.CheckIn = day("2025-03-12")
	overlapping.CheckOut = day("2025-03-15")
	_, err = f.svc.Create(ctx, overlapping)
	appErr := requireAppError(t, err, http.StatusConflict)
	require.Equal(t, common.CodeConflict, appErr.Code)
	require.ErrorIs(t, err, booking.ErrUnavailable)

	adjacent := threeNightStay()
	adjacent.CheckIn = day("2025-03-13")
	adjacent.CheckOut = day("2025-03-14")
	_, err = f.svc.Create(ctx, adjacent)
	require.NoError(t, err)
	require.Equal(t, 2, f.store.count())
}

func TestCreateValidatesAgainstProperty(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("capacity", func(t *testing.T) {
		sub := threeNightStay()
		sub.Guests = 5
		_, err := f.svc.Create(ctx, sub)
		appErr := requireAppError(t, err, http.StatusUnprocessableEntity)
		require.Contains(t, appErr.Message, "capacity of 4")
	})

	t.Run("unknown service", func(t *testing.T) {
		sub := threeNightStay()
		sub.Services[1].ServiceName = "Helicopter ride"
		_, err := f.svc.Create(ctx, sub)
		appErr := requireAppError(t, err, http.StatusUnprocessableEntity)
		require.Contains(t, appErr.Details, "services[1]")
	})

	t.Run("service not offered at the property", func(t *testing.T) {
		sub := threeNightStay()
		sub.Services = append(sub.Services, booking.SubmittedService{
			ProviderID: remoteProvider, ServiceName: "Boat trip", ServiceDate: day("2025-03-11"),
		})
		_, err := f.svc.Create(ctx, sub)
		requireAppError(t, err, http.StatusUnprocessableEntity)
	})

	t.Run("unknown property", func(t *testing.T) {
		sub := threeNightStay()
		sub.PropertyID = uuid.New()
		_, err := f.svc.Create(ctx, sub)
		require.ErrorIs(t, err, property.ErrPropertyNotFound)
	})

	require.Zero(t, f.store.count())
	require.Empty(t, f.enqueuer.sent)
}

func TestCreateRegeneratesCollidingCode(t *testing.T) {
	codes := []string{"BK-AAAAAAAA", "BK-AAAAAAAA", "BK-BBBBBBBB"}
	next := 0
	f := newFixture(t, func(cfg *booking.ServiceConfig) {
		cfg.NewCode = func() string {
			code := codes[next]
			next++
			return code
		}
	})

	first, err := f.svc.Create(context.Background(), threeNightStay())
	require.NoError(t, err)
	require.Equal(t, "BK-AAAAAAAA", first.Code)

	later := threeNightStay()
	later.CheckIn = day("2025-04-01")
	later.CheckOut = day("2025-04-02")
	second, err := f.svc.Create(context.Background(), later)
	require.NoError(t, err)
	require.Equal(t, "BK-BBBBBBBB", second.Code)
}

func TestCreateSurvivesEnqueueFailure(t *testing.T) {
	f := newFixture(t)
	f.enqueuer.err = errors.New("redis unavailable")

	b, err := f.svc.Create(context.Background(), threeNightStay())
	require.NoError(t, err)
	require.Equal(t, 1, f.store.count())
	require.NotEmpty(t, b.Code)
}

func TestCreateWhileLockHeld(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.redis.Set(lock.PropertyBookingKey(propertyID), "other-instance"))

	_, err := f.svc.Create(context.Background(), threeNightStay())
	appErr := requireAppError(t, err, http.StatusConflict)
	require.ErrorIs(t, appErr, lock.ErrNotAcquired)
	require.Zero(t, f.store.count())
}

func TestQuoteAndCreateAgree(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	q, err := f.svc.Quote(ctx, booking.QuoteInput{
		PropertyID: propertyID,
		CheckIn:    day("2025-03-10"),
		CheckOut:   day("2025-03-13"),
		Services: []booking.QuoteService{
			{OfferingID: chefID, Duration: 2},
			{OfferingID: guideID, Duration: 1},
		},
	})
	require.NoError(t, err)

	b, err := f.svc.Create(ctx, threeNightStay())
	require.NoError(t, err)
	require.True(t, q.Breakdown.Total.Equal(b.Breakdown.Total))
	require.True(t, q.Breakdown.DiscountAmount.Equal(b.Breakdown.DiscountAmount))
}

func TestNewServiceRequiresCollaborators(t *testing.T) {
	_, err := booking.NewService(booking.ServiceConfig{})
	require.Error(t, err)
	_, err = booking.NewService(booking.ServiceConfig{Properties: newFakeProperties()})
	require.Error(t, err)
	_, err = booking.NewService(booking.ServiceConfig{Properties: newFakeProperties(), Store: newMemoryStore()})
	require.Error(t, err)
}
