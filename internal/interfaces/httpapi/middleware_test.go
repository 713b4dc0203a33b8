package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	idgen "github.com/IdoCohen138/league-predictions/internal/platform/id"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireInternalJobToken(t *testing.T) {
	t.Parallel()

	t.Run("accepts matching token", func(t *testing.T) {
		t.Parallel()
		guarded := RequireInternalJobToken("secret", okHandler())
		req := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/score-round", nil)
		req.Header.Set("X-Internal-Job-Token", "secret")
		rec := httptest.NewRecorder()
		guarded.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("rejects wrong token", func(t *testing.T) {
		t.Parallel()
		guarded := RequireInternalJobToken("secret", okHandler())
		req := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/score-round", nil)
		req.Header.Set("X-Internal-Job-Token", "other")
		rec := httptest.NewRecorder()
		guarded.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unconfigured token is unavailable", func(t *testing.T) {
		t.Parallel()
		guarded := RequireInternalJobToken("  ", okHandler())
		req := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/score-round", nil)
		req.Header.Set("X-Internal-Job-Token", "anything")
		rec := httptest.NewRecorder()
		guarded.ServeHTTP(rec, req)
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestCORS(t *testing.T) {
	t.Parallel()

	t.Run("wildcard allows any origin", func(t *testing.T) {
		t.Parallel()
		handler := CORS([]string{"*"}, okHandler())
		req := httptest.NewRequest(http.MethodGet, "/v1/context", nil)
		req.Header.Set("Origin", "https://pool.example.com")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("allowlist echoes matching origin", func(t *testing.T) {
		t.Parallel()
		handler := CORS([]string{"https://pool.example.com"}, okHandler())
		req := httptest.NewRequest(http.MethodGet, "/v1/context", nil)
		req.Header.Set("Origin", "https://pool.example.com")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, "https://pool.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
		require.Equal(t, "Origin", rec.Header().Get("Vary"))
	})

	t.Run("unknown origin gets no cors headers", func(t *testing.T) {
		t.Parallel()
		handler := CORS([]string{"https://pool.example.com"}, okHandler())
		req := httptest.NewRequest(http.MethodGet, "/v1/context", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight short-circuits", func(t *testing.T) {
		t.Parallel()
		handler := CORS([]string{"*"}, okHandler())
		req := httptest.NewRequest(http.MethodOptions, "/v1/context", nil)
		req.Header.Set("Origin", "https://pool.example.com")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNoContent, rec.Code)
	})
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	t.Run("generates when missing", func(t *testing.T) {
		t.Parallel()
		var seen string
		handler := RequestID(idgen.NewRandomGenerator(), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = requestIDFromContext(r.Context())
		}))
		req := httptest.NewRequest(http.MethodGet, "/v1/context", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.NotEmpty(t, seen)
		require.Equal(t, seen, rec.Header().Get("X-Request-ID"))
	})

	t.Run("honors caller id", func(t *testing.T) {
		t.Parallel()
		var seen string
		handler := RequestID(idgen.NewRandomGenerator(), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = requestIDFromContext(r.Context())
		}))
		req := httptest.NewRequest(http.MethodGet, "/v1/context", nil)
		req.Header.Set("X-Request-ID", "caller-id")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, "caller-id", seen)
	})
}

func TestShouldTraceRequest(t *testing.T) {
	t.Parallel()

	if shouldTraceRequest("/healthz") {
		t.Fatalf("healthz should not be traced")
	}
	if !shouldTraceRequest("/v1/seasons/2025-2026/leaderboard") {
		t.Fatalf("api routes should be traced")
	}
}
