package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"go.uber.org/zap"
)

// Error responses share the failure envelope
func TestProperty_ErrorsHaveConsistentStructure(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("all error responses have consistent structure", prop.ForAll(
		func(message string) bool {
			standardCodes := []int{
				http.StatusBadRequest,
				http.StatusNotFound,
				http.StatusTooManyRequests,
				http.StatusInternalServerError,
			}

			statusCode := standardCodes[len(message)%len(standardCodes)]

			w := httptest.NewRecorder()
			RespondWithError(w, statusCode, message)

			if w.Code != statusCode {
				return false
			}
			if w.Header().Get("Content-Type") != "application/json" {
				return false
			}

			var response map[string]interface{}
			if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
				return false
			}

			if response["success"] != false || response["error"] != message {
				return false
			}
			_, hasData := response["data"]
			_, hasTotal := response["total"]

			return !hasData && !hasTotal
		},
		gen.AlphaString().SuchThat(func(s string) bool { return len(s) > 0 }),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_ListEnvelopeCarriesTotal(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("list responses report the collection size", prop.ForAll(
		func(items []string) bool {
			w := httptest.NewRecorder()
			RespondWithList(w, items, len(items))

			var response struct {
				Success bool     `json:"success"`
				Data    []string `json:"data"`
				Total   *int     `json:"total"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
				return false
			}

			return w.Code == http.StatusOK &&
				response.Success &&
				response.Total != nil &&
				*response.Total == len(items)
		},
		gen.SliceOf(gen.AlphaString()),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestRespondWithData(t *testing.T) {
	w := httptest.NewRecorder()
	RespondWithData(w, http.StatusCreated, map[string]string{"name": "Mouse"}, "Product created successfully")

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}

	var response Envelope
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if !response.Success || response.Message != "Product created successfully" || response.Error != "" {
		t.Errorf("unexpected envelope %+v", response)
	}
	if data, ok := response.Data.(map[string]interface{}); !ok || data["name"] != "Mouse" {
		t.Errorf("unexpected data %#v", response.Data)
	}
}

func TestErrorHandlingMiddlewareRecoversPanics(t *testing.T) {
	handler := ErrorHandlingMiddleware(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/products", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}

	var response Envelope
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if response.Success || response.Error != "Internal server error" {
		t.Errorf("unexpected envelope %+v", response)
	}
}

func TestNotFoundAndMethodNotAllowedUseEnvelope(t *testing.T) {
	for name, tc := range map[string]struct {
		handler http.HandlerFunc
		status  int
	}{
		"not found":          {NotFoundHandler, http.StatusNotFound},
		"method not allowed": {MethodNotAllowedHandler, http.StatusMethodNotAllowed},
	} {
		t.Run(name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tc.handler(w, httptest.NewRequest(http.MethodGet, "/nowhere", nil))

			var response Envelope
			if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}
			if w.Code != tc.status || response.Success || response.Error == "" {
				t.Errorf("unexpected response %d %+v", w.Code, response)
			}
		})
	}
}
