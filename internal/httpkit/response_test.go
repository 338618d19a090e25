package httpkit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"voxpress/internal/pkg/errors"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", errors.Validation("bad input"), 400, "VALIDATION_ERROR"},
		{"not found", errors.NotFound("job", "x"), 404, "NOT_FOUND"},
		{"unavailable", errors.Unavailable("postgres"), 503, "UNAVAILABLE"},
		{"conversion", errors.Conversion("synthesis failed"), 502, "CONVERSION_FAILED"},
		{"plain error", http.ErrBodyNotAllowed, 500, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("status=%d, want %d", rec.Code, tt.wantStatus)
			}

			var env ErrorEnvelope
			if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if env.Error.Code != tt.wantCode {
				t.Errorf("code=%s, want %s", env.Error.Code, tt.wantCode)
			}
		})
	}
}

func TestCORSWildcard(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := CORS(CORSOptions{})(next)

	t.Run("cross-origin request", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/posts", nil)
		req.Header.Set("Origin", "https://example.com")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
			t.Errorf("Allow-Origin=%q, want *", got)
		}
	})

	t.Run("preflight short-circuits", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/posts", nil)
		req.Header.Set("Origin", "https://example.com")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Errorf("status=%d", rec.Code)
		}
		if rec.Header().Get("Access-Control-Allow-Methods") == "" {
			t.Error("expected Allow-Methods on preflight")
		}
	})

	t.Run("no origin header, no CORS headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/posts", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Errorf("unexpected Allow-Origin=%q", got)
		}
	})
}

func TestCORSAllowList(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	handler := CORS(CORSOptions{AllowedOrigins: []string{"https://app.local"}})(next)

	req := httptest.NewRequest(http.MethodGet, "/posts", nil)
	req.Header.Set("Origin", "https://app.local")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.local" {
		t.Errorf("Allow-Origin=%q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/posts", nil)
	req.Header.Set("Origin", "https://evil.local")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("unexpected Allow-Origin=%q", got)
	}
}
