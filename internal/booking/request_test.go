package booking_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-travel/internal/booking"
	"github.com/noah-isme/backend-travel/internal/common"
)

func validSubmitRequest() booking.SubmitRequest {
	return booking.SubmitRequest{
		PropertyID: propertyID.String(),
		CheckIn:    "2025-03-10",
		CheckOut:   "2025-03-13",
		Guests:     2,
		Services: []booking.SubmitServiceRequest{
			{ServiceProviderID: chefProvider.String(), ServiceName: "Private dinner", ServiceDate: "2025-03-11", Duration: 2},
		},
	}
}

func TestRequestValidator(t *testing.T) {
	v := booking.NewRequestValidator()

	require.NoError(t, v.Validate(validSubmitRequest()))

	req := validSubmitRequest()
	req.PropertyID = "not-a-uuid"
	req.Guests = 0
	req.GuestEmail = "nope"
	req.Services[0].ServiceDate = "11/03/2025"
	err := v.Validate(req)

	var appErr *common.AppError
	require.True(t, errors.As(err, &appErr))
	require.Equal(t, http.StatusUnprocessableEntity, appErr.HTTPStatus)
	details, ok := appErr.Details.(map[string]string)
	require.True(t, ok)
	require.Equal(t, "must be a UUID", details["propertyId"])
	require.Equal(t, "is required", details["guests"])
	require.Equal(t, "must be a valid email address", details["guestEmail"])
	require.Equal(t, "must be a date formatted YYYY-MM-DD", details["services[0].serviceDate"])
}

func TestSubmissionRules(t *testing.T) {
	t.Run("check-out must follow check-in", func(t *testing.T) {
		for _, checkOut := range []string{"2025-03-10", "2025-03-09"} {
			req := validSubmitRequest()
			req.CheckOut = checkOut
			_, err := req.Submission()
			var appErr *common.AppError
			require.True(t, errors.As(err, &appErr))
			require.Equal(t, "check-out must be after check-in", appErr.Message)
		}
	})

	t.Run("duplicate service slot", func(t *testing.T) {
		req := validSubmitRequest()
		dup := req.Services[0]
		dup.ServiceName = "private dinner "
		req.Services = append(req.Services, dup)
		_, err := req.Submission()
		var appErr *common.AppError
		require.True(t, errors.As(err, &appErr))
		require.Equal(t, map[string]string{"services[1]": "repeats services[0]"}, appErr.Details)
	})

	t.Run("same service on another day", func(t *testing.T) {
		req := validSubmitRequest()
		other := req.Services[0]
		other.ServiceDate = "2025-03-12"
		req.Services = append(req.Services, other)
		sub, err := req.Submission()
		require.NoError(t, err)
		require.Len(t, sub.Services, 2)
		require.Equal(t, day("2025-03-12"), sub.Services[1].ServiceDate)
	})
}

func TestQuoteRequestInputIgnoresBadDates(t *testing.T) {
	in := booking.QuoteRequest{
		PropertyID: propertyID.String(),
		CheckIn:    "2025-13-45",
		CheckOut:   "",
		Services:   []booking.QuoteServiceRequest{{OfferingID: chefID.String(), Duration: 3}},
	}.Input()

	require.True(t, in.CheckIn.IsZero())
	require.True(t, in.CheckOut.IsZero())
	require.Equal(t, chefID, in.Services[0].OfferingID)
	require.Equal(t, 3, in.Services[0].Duration)
}

func TestNewCode(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		code := booking.NewCode()
		require.Regexp(t, `^BK-[A-Z2-7]{8}$`, code)
		require.False(t, seen[code])
		seen[code] = true
	}
}
