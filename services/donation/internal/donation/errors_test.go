package donation

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorMatchesSentinelByKind(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		kind     Kind
	}{
		{name: "notFound", err: notFound("donation.Get", "donation %s not found", "abc"), sentinel: ErrNotFound, kind: KindNotFound},
		{name: "invalidTransition", err: invalidTransition("donation.Accept", "accepted", "accepted"), sentinel: ErrInvalidTransition, kind: KindInvalidTransition},
		{name: "validation", err: validationFailed("donation.Create", "invalid input", "phone is required"), sentinel: ErrValidation, kind: KindValidation},
		{name: "unauthorized", err: unauthorized("donation.Accept", "role %s is not allowed", "donor"), sentinel: ErrUnauthorized, kind: KindUnauthorized},
		{name: "unavailable", err: unavailable("donation.Create", errors.New("connection refused")), sentinel: ErrUnavailable, kind: KindUnavailable},
		{name: "wrapped", err: fmt.Errorf("handling request: %w", notFound("op", "gone")), sentinel: ErrNotFound, kind: KindNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.sentinel) {
				t.Errorf("errors.Is(%v, %v) = false", tt.err, tt.sentinel)
			}
			if got := KindOf(tt.err); got != tt.kind {
				t.Errorf("KindOf() = %s, want %s", got, tt.kind)
			}
			if errors.Is(tt.err, ErrAggregationDegraded) {
				t.Error("error matched an unrelated sentinel")
			}
		})
	}
}

func TestErrorMessage(t *testing.T) {
	cause := errors.New("connection refused")
	err := unavailable("donation.Create", cause)

	want := "donation.Create: unavailable: store unavailable: connection refused"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, cause) {
		t.Error("unavailable error does not unwrap to its cause")
	}
}

func TestKindOfForeignError(t *testing.T) {
	if got := KindOf(errors.New("boom")); got != "" {
		t.Errorf("KindOf() = %q, want empty", got)
	}
	if got := KindOf(nil); got != "" {
		t.Errorf("KindOf(nil) = %q, want empty", got)
	}
}
