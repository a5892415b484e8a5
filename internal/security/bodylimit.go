package security

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/noah-isme/backend-travel/internal/common"
)

// BodyLimit caps request payloads at Max bytes. Zero disables the check.
type BodyLimit struct {
	Max int64
}

// Middleware buffers the body up to the limit so oversized payloads are
// rejected with 413 before any handler starts decoding.
func (b BodyLimit) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if b.Max <= 0 || r.Body == nil || r.Body == http.NoBody {
			next.ServeHTTP(w, r)
			return
		}
		if r.ContentLength > b.Max {
			payloadTooLarge(w)
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, b.Max))
		var tooBig *http.MaxBytesError
		switch {
		case errors.As(err, &tooBig):
			payloadTooLarge(w)
			return
		case err != nil:
			common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, "invalid request body", nil)
			return
		}

		r.Body = io.NopCloser(bytes.NewReader(body))
		r.ContentLength = int64(len(body))
		next.ServeHTTP(w, r)
	})
}

func payloadTooLarge(w http.ResponseWriter) {
	common.JSONError(w, http.StatusRequestEntityTooLarge, common.CodePayloadTooLarge, "request entity too large", nil)
}
