package obs

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func TestRequestLoggerWritesStructuredEntry(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "json", "debug")

	r := chi.NewRouter()
	r.Use(RequestLogger{Logger: logger}.Middleware)
	r.Post("/api/v1/bookings/{id}/notes", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("ok"))
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/42/notes", nil)
	req.Header.Set("Idempotency-Key", "abc")
	r.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "http_request", entry["message"])
	require.Equal(t, "/api/v1/bookings/{id}/notes", entry["route"])
	require.Equal(t, "/api/v1/bookings/42/notes", entry["path"])
	require.EqualValues(t, http.StatusCreated, entry["status"])
	require.EqualValues(t, 2, entry["bytes"])
	require.Equal(t, true, entry["idempotent"])
}

func TestNewLoggerFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "json", "nonsense")
	logger.Debug().Msg("hidden")
	require.Zero(t, buf.Len())
	logger.Info().Msg("shown")
	require.NotZero(t, buf.Len())
}
