package opendata

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorKinds(t *testing.T) {
	cause := errors.New("connection refused")

	testCases := []struct {
		name      string
		err       *Error
		kind      error
		otherKind error
	}{
		{
			name:      "network",
			err:       NetworkError(ServiceOverpass, cause),
			kind:      ErrNetwork,
			otherKind: ErrParse,
		},
		{
			name:      "parse",
			err:       ParseError(ServiceWikipedia, errors.New("unexpected token")),
			kind:      ErrParse,
			otherKind: ErrProvider,
		},
		{
			name:      "provider",
			err:       ProviderError(ServiceWikidata, 500, "query timeout"),
			kind:      ErrProvider,
			otherKind: ErrLookup,
		},
		{
			name:      "lookup",
			err:       LookupError(ServiceCommons, "12345"),
			kind:      ErrLookup,
			otherKind: ErrNetwork,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if !errors.Is(tc.err, tc.kind) {
				t.Errorf("errors.Is(%v, kind) = false", tc.err)
			}
			if errors.Is(tc.err, tc.otherKind) {
				t.Errorf("errors.Is(%v, %v) = true, want false", tc.err, tc.otherKind)
			}
		})
	}
}

func TestErrorKindsSurviveWrapping(t *testing.T) {
	err := fmt.Errorf("querying places: %w", ProviderError(ServiceOverpass, 429, "rate limited"))
	if !errors.Is(err, ErrProvider) {
		t.Error("wrapped provider error should still match ErrProvider")
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("tcp dial timeout")
	err := NetworkError(ServiceOverpass, cause)

	if !errors.Is(err, cause) {
		t.Error("network error should unwrap to its cause")
	}
}

func TestErrorMessage(t *testing.T) {
	err := ProviderError(ServiceWikidata, 500, "query timeout")
	msg := err.Error()

	for _, want := range []string{ServiceWikidata, "500", "query timeout"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q missing %q", msg, want)
		}
	}

	netErr := NetworkError(ServiceCommons, errors.New("connection reset"))
	if !strings.Contains(netErr.Error(), "connection reset") {
		t.Errorf("message %q missing cause", netErr.Error())
	}
}
