package netprovider

import (
	"errors"
	"fmt"
	"testing"
)

func TestAPIErrorMatchesSentinelByType(t *testing.T) {
	cause := errors.New("unexpected EOF")
	err := fmt.Errorf("fetch users: %w", newError(InvalidData, cause))

	if !errors.Is(err, ErrInvalidData) {
		t.Fatalf("expected ErrInvalidData match")
	}
	if errors.Is(err, ErrInvalidURL) || errors.Is(err, ErrGeneralService) {
		t.Fatalf("error matched the wrong classification")
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to unwrap")
	}
	if TypeOf(err) != InvalidData {
		t.Fatalf("TypeOf = %v", TypeOf(err))
	}
	if TypeOf(cause) != 0 || TypeOf(nil) != 0 {
		t.Fatalf("expected zero type for foreign errors")
	}
}

func TestAPIErrorMessage(t *testing.T) {
	if got := ErrInvalidURL.Error(); got != "invalid url" {
		t.Fatalf("unexpected message %q", got)
	}
	if got := newError(InvalidData, errEmptyBody).Error(); got != "invalid data: response body is empty" {
		t.Fatalf("unexpected message %q", got)
	}
	if got := GeneralServiceError.String(); got != "general service error" {
		t.Fatalf("unexpected string %q", got)
	}
}

func TestParseMethod(t *testing.T) {
	cases := map[string]Method{"": MethodGet, "get": MethodGet, " Post ": MethodPost, "PATCH": MethodPatch, "delete": MethodDelete}
	for in, want := range cases {
		got, ok := ParseMethod(in)
		if !ok || got != want {
			t.Fatalf("ParseMethod(%q) = %q, %v", in, got, ok)
		}
	}
	if _, ok := ParseMethod("TRACE"); ok {
		t.Fatalf("expected TRACE to be rejected")
	}
}
