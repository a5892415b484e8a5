package security

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// apiHeaders are sent on every response. The API serves only JSON, so the
// content security policy forbids every resource type and nothing is cached.
var apiHeaders = [][2]string{
	{"X-Content-Type-Options", "nosniff"},
	{"X-Frame-Options", "DENY"},
	{"Referrer-Policy", "no-referrer"},
	{"Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'"},
	{"Cross-Origin-Resource-Policy", "same-site"},
	{"Cache-Control", "no-store"},
}

// Headers adds security headers to responses.
type Headers struct {
	Enable     bool
	EnableHSTS bool
	// HSTSMaxAge defaults to one year.
	HSTSMaxAge            time.Duration
	HSTSIncludeSubdomains bool
}

// Middleware applies the headers before the handler runs. HSTS is only sent
// on requests that arrived over TLS, directly or through a proxy setting
// X-Forwarded-Proto.
func (h Headers) Middleware(next http.Handler) http.Handler {
	if !h.Enable {
		return next
	}
	hsts := h.hstsValue()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers := w.Header()
		for _, kv := range apiHeaders {
			headers.Set(kv[0], kv[1])
		}
		if hsts != "" && isHTTPS(r) {
			headers.Set("Strict-Transport-Security", hsts)
		}
		next.ServeHTTP(w, r)
	})
}

func (h Headers) hstsValue() string {
	if !h.EnableHSTS {
		return ""
	}
	maxAge := h.HSTSMaxAge
	if maxAge <= 0 {
		maxAge = 365 * 24 * time.Hour
	}
	value := "max-age=" + strconv.FormatInt(int64(maxAge/time.Second), 10)
	if h.HSTSIncludeSubdomains {
		value += "; includeSubDomains"
	}
	return value
}

func isHTTPS(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(r.Header.Get("X-Forwarded-Proto")), "https")
}
