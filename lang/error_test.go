package lang

import (
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestSyntaxError_Message(t *testing.T) {
	_, err := ParseString("1 + @")

	var serr *SyntaxError
	if !errors.As(err, &serr) {
		t.Fatalf("got %T, want syntax error", err)
	}

	if !errors.Is(err, ErrUnrecognizedChar) {
		t.Errorf("got %v, want unrecognized character", err)
	}

	msg := err.Error()

	for _, want := range []string{
		"line 1, column 5",
		"1 | 1 + @",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}

	// The caret sits under the failure column: 2 spaces, the line number,
	// " | ", then column minus one.
	if !strings.Contains(msg, "\n"+strings.Repeat(" ", 10)+"^") {
		t.Errorf("caret misplaced:\n%s", msg)
	}
}

func TestSyntaxError_TokenSpelling(t *testing.T) {
	_, err := ParseString("1 + then")
	if err == nil {
		t.Fatal("expected parse failure")
	}

	if !strings.Contains(err.Error(), "then") {
		t.Errorf("message does not name the token: %s", err.Error())
	}
}

func TestError_WrapAndAttrs(t *testing.T) {
	base := NewError("outer")
	cause := errors.New("inner detail")

	wrapped := base.Wrap(cause)

	if wrapped.Error() != "outer: inner detail" {
		t.Errorf("got %q", wrapped.Error())
	}

	if !errors.Is(wrapped, cause) {
		t.Error("wrapped cause not reachable via errors.Is")
	}

	// With returns a copy; the original keeps its attribute list.
	if withAttrs := wrapped.With(); withAttrs == wrapped {
		t.Error("With returned the receiver")
	}
}

func TestError_SentinelIdentity(t *testing.T) {
	derived := ErrKeyNotFound.With(slog.String("key", "a"))

	if !errors.Is(derived, ErrKeyNotFound) {
		t.Error("attributed error lost its sentinel identity")
	}

	if errors.Is(derived, ErrIndexOutOfBounds) {
		t.Error("attributed error matches a foreign sentinel")
	}

	cause := errors.New("boom")
	wrapped := ErrInvalidOperand.Wrap(cause)

	if !errors.Is(wrapped, ErrInvalidOperand) {
		t.Error("wrapped error lost its sentinel identity")
	}

	if !errors.Is(wrapped, cause) {
		t.Error("wrapped cause not reachable via errors.Is")
	}

	chained := derived.With(slog.String("index", "0")).Wrap(cause)
	if !errors.Is(chained, ErrKeyNotFound) {
		t.Error("chained derivation lost its sentinel identity")
	}
}

func TestWrapError_PassesThrough(t *testing.T) {
	if got := WrapError(ErrDivisionByZero); got != ErrDivisionByZero {
		t.Errorf("got %v, want identical sentinel", got)
	}

	plain := errors.New("plain")
	if got := WrapError(plain); !errors.Is(got, plain) {
		t.Errorf("got %v, want wrapper around plain", got)
	}
}
