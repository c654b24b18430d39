package lang

import (
	"strings"
	"testing"
)

func TestFormat_Surface(t *testing.T) {
	var b strings.Builder

	e := parse(t, "1 + 2 * 3")

	if err := Format(t.Context(), &b, e); err != nil {
		t.Fatalf("format error: %v", err)
	}

	if got := b.String(); got != "(1 + (2 * 3))\n" {
		t.Errorf("got %q, want %q", got, "(1 + (2 * 3))\n")
	}
}

func TestFormatExpr_Numerals(t *testing.T) {
	// Non-integer rationals render as decimal numerals, not num/den, so the
	// output re-lexes as a single literal instead of a division.
	tests := []struct {
		input string
		want  string
	}{
		{input: "42", want: "42"},
		{input: "2.5", want: "2.5"},
		{input: "0.125", want: "0.125"},
		{input: "0.50", want: "0.5"},
		{input: "2.5e-1", want: "0.25"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := FormatExpr(parse(t, tt.input)); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatExpr_SingleEntryDistribution(t *testing.T) {
	// A distribution whose alternatives merged into one entry still renders
	// with a pipe; without one the output would re-parse as a map.
	tests := []struct {
		input string
		want  string
	}{
		{input: "[1 | 1]", want: "[1: 2 | 1: 0]"},
		{input: "[1: x | 1: 2]", want: "[1: x | 1: 2]"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := FormatExpr(parse(t, tt.input)); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatExpr_Strings(t *testing.T) {
	// String literals regain quotes and escapes.
	e := parse(t, `"a\n\"b\""`)

	if got := FormatExpr(e); got != `"a\n\"b\""` {
		t.Errorf("got %s, want quoted literal", got)
	}
}

func TestFormatJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "literal",
			input: "42",
			want:  `{"val":42}`,
		},
		{
			name:  "fraction as string",
			input: "1/2",
			want:  `{"binop":{"op":"/","x":{"val":1},"y":{"val":2}}}`,
		},
		{
			name:  "reference",
			input: "x.y",
			want:  `{"lval":{"path":["y"],"root":"x"}}`,
		},
		{
			name:  "none is null",
			input: "none",
			want:  `{"val":null}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b strings.Builder

			if err := FormatJSON(t.Context(), &b, parse(t, tt.input), 0); err != nil {
				t.Fatalf("marshal error: %v", err)
			}

			if got := strings.TrimSpace(b.String()); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestFormatJSON_Indented(t *testing.T) {
	var b strings.Builder

	if err := FormatJSON(t.Context(), &b, parse(t, "[1, 2]"), 2); err != nil {
		t.Fatalf("marshal error: %v", err)
	}

	if !strings.Contains(b.String(), "\n  ") {
		t.Errorf("expected indented output, got %q", b.String())
	}
}

func TestFormatYAML(t *testing.T) {
	var b strings.Builder

	if err := FormatYAML(t.Context(), &b, parse(t, "x = 1"), 2); err != nil {
		t.Fatalf("marshal error: %v", err)
	}

	out := b.String()

	for _, want := range []string{"assign:", "lvalue:", "root: x"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
