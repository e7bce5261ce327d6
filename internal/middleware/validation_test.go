package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestProperty_JSONObjectsDecode(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("any JSON object body is decoded field for field", prop.ForAll(
		func(fields map[string]string) bool {
			body, _ := json.Marshal(fields)
			req := httptest.NewRequest("POST", "/api/products", bytes.NewReader(body))
			w := httptest.NewRecorder()

			payload, err := DecodeJSONObject(w, req)
			if err != nil {
				return false
			}
			if len(payload) != len(fields) {
				return false
			}
			for k, v := range fields {
				if payload[k] != v {
					return false
				}
			}
			return true
		},
		gen.MapOf(gen.AlphaString(), gen.AlphaString()),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestDecodeJSONObjectRejectsMalformedBodies(t *testing.T) {
	cases := map[string]string{
		"truncated":      `{"name": "Mouse"`,
		"array":          `[{"name": "Mouse"}]`,
		"null":           `null`,
		"string":         `"Mouse"`,
		"trailing data":  `{"name": "Mouse"} {"name": "Keyboard"}`,
		"not json":       `name=Mouse`,
		"oversized body": `{"description": "` + strings.Repeat("x", MaxBodyBytes) + `"}`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/products", strings.NewReader(body))
			w := httptest.NewRecorder()

			if _, err := DecodeJSONObject(w, req); !errors.Is(err, ErrInvalidBody) {
				t.Errorf("expected ErrInvalidBody, got %v", err)
			}
		})
	}
}

func TestDecodeJSONObjectTreatsEmptyBodyAsEmptyObject(t *testing.T) {
	for _, body := range []string{"", "  \n"} {
		req := httptest.NewRequest("PUT", "/api/products/1", strings.NewReader(body))
		w := httptest.NewRecorder()

		payload, err := DecodeJSONObject(w, req)
		if err != nil {
			t.Fatalf("body %q: unexpected error: %v", body, err)
		}
		if payload == nil || len(payload) != 0 {
			t.Errorf("body %q: expected empty object, got %#v", body, payload)
		}
	}
}

func TestDecodeJSONObjectKeepsTypes(t *testing.T) {
	req := httptest.NewRequest("POST", "/api/products",
		strings.NewReader(`{"name":"Mouse","price":100000,"stock":"5","description":null}`))
	w := httptest.NewRecorder()

	payload, err := DecodeJSONObject(w, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload["price"] != float64(100000) {
		t.Errorf("expected numeric price, got %#v", payload["price"])
	}
	if payload["stock"] != "5" {
		t.Errorf("expected string stock, got %#v", payload["stock"])
	}
	if v, ok := payload["description"]; !ok || v != nil {
		t.Errorf("expected explicit null description, got %#v", v)
	}
}
