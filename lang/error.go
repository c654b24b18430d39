package lang

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
)

// Predefined errors (sentinel values).
var (
	ErrUnterminatedString  = NewError("unterminated string")
	ErrUnterminatedComment = NewError("unterminated comment")
	ErrCommentNesting      = NewError("comment nesting too deep")
	ErrNumeralOverflow     = NewError("numeral overflow")
	ErrUnrecognizedChar    = NewError("unrecognized character")
	ErrUnexpectedToken     = NewError("unexpected token")
	ErrUnexpectedEnd       = NewError("unexpected end of input")
	ErrTrailingInput       = NewError("trailing input after expression")
	ErrDivisionByZero      = NewError("division by zero")
	ErrUndefinedName       = NewError("undefined name")
	ErrInvalidOperand      = NewError("invalid operand type")
	ErrNotCallable         = NewError("value is not callable")
	ErrArgumentCount       = NewError("argument count mismatch")
	ErrUnknownParameter    = NewError("unknown parameter name")
	ErrIndexOutOfBounds    = NewError("index out of bounds")
	ErrKeyNotFound         = NewError("key not found")
	ErrInvalidIndex        = NewError("invalid index type")
	ErrEmptyDistribution   = NewError("cannot sample empty distribution")
	ErrInvalidAssignTarget = NewError("invalid assignment target")
)

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	msg   string
	err   error       // Wrapped error (for errors.Unwrap)
	base  *Error      // Originating sentinel (for errors.Is)
	attrs []slog.Attr // Attributes for structured logging
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	// Build error message using the first available format,
	// depending on which fields are set:
	//
	//   1. "<msg>: <err>" // base and wrapped error both set
	//   2. "<msg>"        // wrapped error is nil
	//   3. "<err>"        // base error message is empty
	//   4. ""             // no fields are set
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the sentinel this error derives from, so
// errors.Is matches the results of [Error.Wrap] and [Error.With] against
// their originating sentinel.
func (e *Error) Is(target error) bool { return e.base != nil && target == e.base }

// origin returns the sentinel this error derives from.
func (e *Error) origin() *Error {
	if e.base != nil {
		return e.base
	}

	return e
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		msg:   e.msg,
		err:   err,
		base:  e.origin(),
		attrs: e.attrs, // Share attrs
	}
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		msg:   e.msg,
		err:   e.err,
		base:  e.origin(),
		attrs: newAttrs,
	}
}

// SyntaxError locates a lexing or parsing failure in its source line. It
// wraps one of the sentinel errors above so callers can branch on the cause
// with errors.Is.
type SyntaxError struct {
	Err    error  // Underlying sentinel
	Source string // The original source input
	Pos    Pos    // 1-based location of the failure
	Token  string // Display spelling of the offending token, if any
}

// NewSyntaxError wraps a sentinel with its source location.
func NewSyntaxError(err error, source string, pos Pos) *SyntaxError {
	return &SyntaxError{Err: err, Source: source, Pos: pos}
}

// WithToken records the offending token's display spelling.
func (e *SyntaxError) WithToken(tok Token) *SyntaxError {
	e.Token = tok.String()

	return e
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *SyntaxError) Unwrap() error { return e.Err }

// Error implements the error interface. The message names the cause and
// location, then reproduces the offending line with a caret marker.
func (e *SyntaxError) Error() string {
	var buf strings.Builder

	buf.WriteString(e.Err.Error())

	if e.Token != "" {
		buf.WriteString(" (")
		buf.WriteString(e.Token)
		buf.WriteString(")")
	}

	buf.WriteString(" at line ")
	buf.WriteString(strconv.Itoa(e.Pos.Line))
	buf.WriteString(", column ")
	buf.WriteString(strconv.Itoa(e.Pos.Col))

	if snippet := e.snippet(); snippet != "" {
		buf.WriteString(":\n")
		buf.WriteString(snippet)
	}

	return buf.String()
}

// LogValue implements slog.LogValuer for structured logging.
func (e *SyntaxError) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("error", e.Err.Error()),
		slog.Int("line", e.Pos.Line),
		slog.Int("column", e.Pos.Col),
	}

	if e.Token != "" {
		attrs = append(attrs, slog.String("token", e.Token))
	}

	return slog.GroupValue(attrs...)
}

// snippet reproduces the offending source line with a caret under the
// failure column.
func (e *SyntaxError) snippet() string {
	if e.Source == "" || e.Pos.Line < 1 {
		return ""
	}

	lines := strings.Split(e.Source, "\n")
	if e.Pos.Line > len(lines) {
		return ""
	}

	line := lines[e.Pos.Line-1]
	num := strconv.Itoa(e.Pos.Line)

	var src strings.Builder

	src.WriteString("  ")
	src.WriteString(num)
	src.WriteString(" | ")
	src.WriteString(line)
	src.WriteRune('\n')

	// 2 leading spaces + line number + " | " before the source text.
	padding := len(num) + 5
	if e.Pos.Col > 0 {
		padding += e.Pos.Col - 1
	}

	src.WriteString(strings.Repeat(" ", padding))
	src.WriteString("^\n")

	return src.String()
}
