package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

var privateCIDRs = []string{"10.0.0.0/8", "127.0.0.0/8", "::1/128"}

func TestIPAllowlist(t *testing.T) {
	var buf bytes.Buffer
	h := IPAllowlist(append(privateCIDRs, "not-a-cidr"), newTestLogger(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		remoteAddr string
		want       int
	}{
		{"10.1.2.3:5555", http.StatusOK},
		{"127.0.0.1:80", http.StatusOK},
		{"[::1]:9000", http.StatusOK},
		{"[::ffff:10.0.0.7]:9000", http.StatusOK},
		{"203.0.113.9:4444", http.StatusForbidden},
		{"garbage", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.remoteAddr, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
			req.RemoteAddr = tt.remoteAddr
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}

	assert.Contains(t, buf.String(), "invalid allowlist CIDR")
}

func TestIPAllowlist_IgnoresForwardedFor(t *testing.T) {
	var buf bytes.Buffer
	h := IPAllowlist(privateCIDRs, newTestLogger(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.RemoteAddr = "198.51.100.1:1234"
	req.Header.Set("X-Forwarded-For", "10.0.0.1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN", decodeBody(t, rec)["code"])
}

func TestRegisterPprof(t *testing.T) {
	var buf bytes.Buffer
	r := chi.NewRouter()
	RegisterPprof(r, privateCIDRs, newTestLogger(&buf))

	for addr, want := range map[string]int{
		"127.0.0.1:1":   http.StatusOK,
		"203.0.113.9:1": http.StatusForbidden,
	} {
		req := httptest.NewRequest(http.MethodGet, "/debug/pprof/cmdline", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, want, rec.Code, addr)
	}
}
