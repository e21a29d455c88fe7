package trace

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	applog "expensetracker/internal/log"
)

func TestGenerateRequestID(t *testing.T) {
	a, b := GenerateRequestID(), GenerateRequestID()
	if !strings.HasPrefix(a, "req_") || len(a) != len("req_")+16 {
		t.Errorf("unexpected id %q", a)
	}
	if a == b {
		t.Errorf("ids should differ: %q", a)
	}
}

func TestMiddleware_AssignsAndEchoesID(t *testing.T) {
	var seen string
	var hasLogger bool
	h := NewMiddleware(nil, nil).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		hasLogger = applog.FromContext(r.Context()).Component() == applog.ComponentTrace
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/summary", nil))

	if seen == "" || rec.Header().Get(HeaderRequestID) != seen {
		t.Errorf("context id %q, header %q", seen, rec.Header().Get(HeaderRequestID))
	}
	if !hasLogger {
		t.Error("request-scoped logger missing from context")
	}
	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestMiddleware_ReusesIncomingID(t *testing.T) {
	tests := []struct {
		incoming string
		reuse    bool
	}{
		{"abc-123", true},
		{"req_0011223344556677", true},
		{"has spaces", false},
		{strings.Repeat("x", 65), false},
		{"", false},
	}
	for _, tt := range tests {
		var seen string
		m := NewMiddleware(nil, nil)
		h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = GetRequestID(r.Context())
		}))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(HeaderRequestID, tt.incoming)
		h.ServeHTTP(httptest.NewRecorder(), req)

		if got := seen == tt.incoming; got != tt.reuse {
			t.Errorf("incoming %q: reused=%v, want %v (got %q)", tt.incoming, got, tt.reuse, seen)
		}
		if m.GetMetrics().TotalRequests != 1 {
			t.Errorf("total requests = %d", m.GetMetrics().TotalRequests)
		}
	}
}
