package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestWrapperWrap(t *testing.T) {
	t.Parallel()

	w := NewWrapper("advisor", "handle_turn")
	cause := errors.New("generator down")

	err := w.Wrap(cause, "Sorry, something went wrong on my side.")
	if err == nil {
		t.Fatal("expected wrapped error")
	}
	if !errors.Is(err, cause) {
		t.Error("wrapped error must unwrap to cause")
	}

	msg := err.Error()
	for _, want := range []string{"advisor", "handle_turn", "generator down"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, missing %q", msg, want)
		}
	}
}

func TestWrapperWrapNil(t *testing.T) {
	t.Parallel()

	w := NewWrapper("storage", "search_courses")
	if err := w.Wrap(nil, "unused"); err != nil {
		t.Errorf("Wrap(nil) = %v, want nil", err)
	}
	if err := w.Wrapf(nil, "unused %d", 1); err != nil {
		t.Errorf("Wrapf(nil) = %v, want nil", err)
	}
}

func TestWrapperWrapf(t *testing.T) {
	t.Parallel()

	w := NewWrapper("prompt", "refresh")
	err := w.Wrapf(errors.New("store down"), "could not reload %d modules", 5)

	if got := GetUserMessage(err); got != "could not reload 5 modules" {
		t.Errorf("GetUserMessage() = %q", got)
	}
}

func TestGetUserMessage(t *testing.T) {
	t.Parallel()

	if got := GetUserMessage(nil); got != "" {
		t.Errorf("GetUserMessage(nil) = %q, want empty", got)
	}

	plain := errors.New("plain failure")
	if got := GetUserMessage(plain); got != "plain failure" {
		t.Errorf("GetUserMessage(plain) = %q", got)
	}
}
