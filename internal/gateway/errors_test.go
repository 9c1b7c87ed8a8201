package gateway

import (
	"errors"
	"testing"
)

func TestNewAPIErrorPrefersNestedErrorMessage(t *testing.T) {
	raw := []byte(`{"error":{"message":"coupon already used today"},"message":"outer","extra":1}`)
	apiErr := newAPIError(409, raw)
	if apiErr.Message != "coupon already used today" {
		t.Fatalf("expected nested error.message to win, got %q", apiErr.Message)
	}
}

func TestNewAPIErrorFallsBackToTopLevelMessage(t *testing.T) {
	raw := []byte(`{"message":"coupon not found","error":{}}`)
	apiErr := newAPIError(404, raw)
	if apiErr.Message != "coupon not found" {
		t.Fatalf("expected top level message, got %q", apiErr.Message)
	}
}

func TestNewAPIErrorFallsBackToPlainErrorString(t *testing.T) {
	raw := []byte(`{"error":"login required"}`)
	apiErr := newAPIError(401, raw)
	if apiErr.Message != "login required" {
		t.Fatalf("expected plain error string, got %q", apiErr.Message)
	}
}

func TestNewAPIErrorGenericWhenBodyUnusable(t *testing.T) {
	cases := []struct {
		name string
		raw  []byte
	}{
		{"empty body", nil},
		{"not json", []byte("<html>bad gateway</html>")},
		{"empty object", []byte(`{}`)},
		{"empty strings", []byte(`{"error":"","message":""}`)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			apiErr := newAPIError(502, tc.raw)
			if apiErr.Message != "request failed (status 502)" {
				t.Fatalf("expected generic message with status, got %q", apiErr.Message)
			}
		})
	}
}

func TestIsAuthError(t *testing.T) {
	if !IsAuthError(&APIError{Status: 401}) {
		t.Fatalf("401 must classify as auth error")
	}
	if !IsAuthError(&APIError{Status: 403}) {
		t.Fatalf("403 must classify as auth error")
	}
	if IsAuthError(&APIError{Status: 500}) {
		t.Fatalf("500 is not an auth error")
	}
	if IsAuthError(errors.New("connection reset")) {
		t.Fatalf("transport errors are not auth errors")
	}
}

func TestStatusOf(t *testing.T) {
	wrapped := &APIError{Status: 404, Message: "coupon not found"}
	if got := StatusOf(wrapped); got != 404 {
		t.Fatalf("expected 404, got %d", got)
	}
	if got := StatusOf(errors.New("boom")); got != 0 {
		t.Fatalf("expected 0 for non api errors, got %d", got)
	}
}
