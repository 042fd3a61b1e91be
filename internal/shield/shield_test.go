package shield

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

var ok = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestSecurityHeaders(t *testing.T) {
	h := SecurityHeaders(DefaultHeaders())(ok)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	want := map[string]string{
		"X-Content-Type-Options":  "nosniff",
		"X-Frame-Options":         "DENY",
		"Referrer-Policy":         "no-referrer",
		"Cache-Control":           "no-store",
		"Content-Security-Policy": "default-src 'none'; frame-ancestors 'none'",
	}
	for k, v := range want {
		if got := rec.Header().Get(k); got != v {
			t.Errorf("%s = %q, want %q", k, got, v)
		}
	}
}

func TestLoopbackOnly(t *testing.T) {
	h := LoopbackOnly(ok)
	tests := []struct {
		host string
		want int
	}{
		{"127.0.0.1:7070", http.StatusOK},
		{"localhost:7070", http.StatusOK},
		{"LOCALHOST", http.StatusOK},
		{"[::1]:7070", http.StatusOK},
		{"127.8.0.1", http.StatusOK},
		{"evil.example:7070", http.StatusForbidden},
		{"192.168.1.5:7070", http.StatusForbidden},
		{"", http.StatusForbidden},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Host = tt.host
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != tt.want {
			t.Errorf("host %q: %d, want %d", tt.host, rec.Code, tt.want)
		}
	}
}
