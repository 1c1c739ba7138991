package middleware

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRecoverTurnsPanicInto500(t *testing.T) {
	handler := Recover(slog.Default())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("snapshot is nil")
	}))

	// The chain must survive repeated panics, one bad request at a time.
	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/price", nil))

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("request %d: status = %d, want %d", i, rec.Code, http.StatusInternalServerError)
		}
		if !strings.Contains(rec.Body.String(), "internal server error") {
			t.Errorf("request %d: body = %q, want the generic error message", i, rec.Body.String())
		}
	}
}

func TestRecoverPassesThroughCleanRequests(t *testing.T) {
	handler := Recover(slog.Default())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("stored"))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/record", nil))

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusCreated)
	}
	if rec.Body.String() != "stored" {
		t.Errorf("body = %q, want %q", rec.Body.String(), "stored")
	}
}
