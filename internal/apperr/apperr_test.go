package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindOf(t *testing.T) {
	err := New(KindNotOpenYet, "quiz %d opens later", 3)
	if KindOf(err) != KindNotOpenYet {
		t.Errorf("KindOf = %s, want %s", KindOf(err), KindNotOpenYet)
	}

	// The kind survives wrapping by callers.
	wrapped := fmt.Errorf("handling request: %w", err)
	if !Is(wrapped, KindNotOpenYet) {
		t.Error("kind lost through fmt.Errorf wrapping")
	}

	// Unknown errors default to a persistence failure.
	if KindOf(errors.New("boom")) != KindPersistence {
		t.Errorf("unknown error kind = %s, want %s", KindOf(errors.New("boom")), KindPersistence)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(KindPersistence, cause, "saving attempt %d", 7)
	if !errors.Is(err, cause) {
		t.Error("Wrap must keep the cause reachable via errors.Is")
	}
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		kind Kind
		want int
	}{
		{KindNotFound, http.StatusNotFound},
		{KindNotOpenYet, http.StatusConflict},
		{KindAlreadyClosed, http.StatusConflict},
		{KindAlreadyAttempted, http.StatusConflict},
		{KindMissingResponseField, http.StatusBadRequest},
		{KindTypeMismatch, http.StatusBadRequest},
		{KindMarkOutOfRange, http.StatusBadRequest},
		{KindUnauthorized, http.StatusForbidden},
		{KindPersistence, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := HTTPStatus(New(tc.kind, "x")); got != tc.want {
			t.Errorf("HTTPStatus(%s) = %d, want %d", tc.kind, got, tc.want)
		}
	}
}
