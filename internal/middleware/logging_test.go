package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newLoggedRouter(logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(LoggingMiddleware(logger, "/health"))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/api/products/{id}", func(w http.ResponseWriter, r *http.Request) {
		switch chi.URLParam(r, "id") {
		case "404":
			RespondWithError(w, http.StatusNotFound, "Product not found")
		case "500":
			RespondWithError(w, http.StatusInternalServerError, "Failed to fetch product")
		default:
			RespondWithData(w, http.StatusOK, map[string]string{"name": "Mouse"}, "")
		}
	})
	return r
}

func TestLoggingMiddleware_LevelFollowsStatus(t *testing.T) {
	cases := map[string]zapcore.Level{
		"/api/products/1":   zapcore.InfoLevel,
		"/api/products/404": zapcore.WarnLevel,
		"/api/products/500": zapcore.ErrorLevel,
	}

	for path, want := range cases {
		t.Run(path, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			router := newLoggedRouter(zap.New(core))

			router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))

			entries := logs.All()
			if len(entries) != 1 {
				t.Fatalf("expected one entry, got %d", len(entries))
			}
			if entries[0].Level != want {
				t.Errorf("expected level %v, got %v", want, entries[0].Level)
			}
		})
	}
}

func TestLoggingMiddleware_LogsRoutePattern(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	router := newLoggedRouter(zap.New(core))

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/products/42", nil))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["route"] != "/api/products/{id}" {
		t.Errorf("expected route pattern, got %v", fields["route"])
	}
	if fields["product_id"] != "42" {
		t.Errorf("expected product_id 42, got %v", fields["product_id"])
	}
	if fields["status"] != int64(http.StatusOK) {
		t.Errorf("expected status 200, got %#v", fields["status"])
	}
}

func TestLoggingMiddleware_SkipsHealthChecks(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	router := newLoggedRouter(zap.New(core))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if logs.Len() != 0 {
		t.Errorf("health checks should not be logged, got %d entries", logs.Len())
	}
}
