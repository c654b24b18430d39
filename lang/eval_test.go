package lang

import (
	"errors"
	"math/rand/v2"
	"testing"
)

// run evaluates each line in order against one interpreter and returns the
// value of the last line.
func run(t *testing.T, in *Interp, lines ...string) Value {
	t.Helper()

	var last Value

	for _, line := range lines {
		e, err := ParseString(line)
		if err != nil {
			t.Fatalf("parse %q: %v", line, err)
		}

		last, err = in.Eval(e)
		if err != nil {
			t.Fatalf("eval %q: %v", line, err)
		}
	}

	return last
}

// runErr evaluates lines until one fails and returns the failure.
func runErr(t *testing.T, in *Interp, lines ...string) error {
	t.Helper()

	for _, line := range lines {
		e, err := ParseString(line)
		if err != nil {
			t.Fatalf("parse %q: %v", line, err)
		}

		if _, err := in.Eval(e); err != nil {
			return err
		}
	}

	return nil
}

func TestEval_Arithmetic(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "precedence", input: "3 + 4 * 2", want: "11"},
		{name: "subtraction", input: "1 - 2", want: "-1"},
		{name: "exact division", input: "7 / 2", want: "7/2"},
		{name: "fraction arithmetic", input: "1/2 + 1/3", want: "5/6"},
		{name: "power", input: "2 ^ 10", want: "1024"},
		{name: "power right associative", input: "2 ^ 3 ^ 2", want: "512"},
		{name: "fractional power", input: "4 ^ (1/2)", want: "2"},
		{name: "negative power", input: "2 ^ (0 - 2)", want: "1/4"},
		{name: "unary negation", input: "(-5)", want: "-5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := run(t, NewInterp(), tt.input)
			if got.String() != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestEval_DivisionByZero(t *testing.T) {
	err := runErr(t, NewInterp(), "1 / 0")
	if !errors.Is(err, ErrDivisionByZero) {
		t.Errorf("got %v, want division by zero", err)
	}
}

func TestEval_ArithmeticOverflow(t *testing.T) {
	err := runErr(t, NewInterp(), "2000000000 + 2000000000")
	if !errors.Is(err, ErrNumeralOverflow) {
		t.Errorf("got %v, want numeral overflow", err)
	}
}

func TestEval_Logic(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{input: "true and true", want: true},
		{input: "true and false", want: false},
		{input: "false or true", want: true},
		{input: "false or false", want: false},
		{input: "true xor false", want: true},
		{input: "true xor true", want: false},
		{input: "(not false)", want: true},
	}

	for _, tt := range tests {
		got := run(t, NewInterp(), tt.input)
		if b, ok := got.(Bool); !ok || b.B != tt.want {
			t.Errorf("%q: got %s, want %v", tt.input, got, tt.want)
		}
	}

	// Logic is strict over booleans.
	err := runErr(t, NewInterp(), "1 and true")
	if !errors.Is(err, ErrInvalidOperand) {
		t.Errorf("got %v, want invalid operand", err)
	}
}

func TestEval_Comparison(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{input: "1 < 2", want: true},
		{input: "2 <= 2", want: true},
		{input: "1/3 > 1/4", want: true},
		{input: "3 >= 4", want: false},
		{input: "1 is 1", want: true},
		{input: `"a" is "a"`, want: true},
		{input: `"a" isnt "b"`, want: true},
		{input: "1 is true", want: false},
		{input: "none is none", want: true},
		{input: "[1, 2] is [1, 2]", want: true},
	}

	for _, tt := range tests {
		got := run(t, NewInterp(), tt.input)
		if b, ok := got.(Bool); !ok || b.B != tt.want {
			t.Errorf("%q: got %s, want %v", tt.input, got, tt.want)
		}
	}

	// Ordering is numeral-only; equality is universal.
	err := runErr(t, NewInterp(), `"a" < "b"`)
	if !errors.Is(err, ErrInvalidOperand) {
		t.Errorf("got %v, want invalid operand", err)
	}
}

func TestEval_Conditional(t *testing.T) {
	got := run(t, NewInterp(), "if 1 < 2 then 10 else 20")
	if got.String() != "10" {
		t.Errorf("got %s, want 10", got)
	}

	// Only the taken branch evaluates.
	got = run(t, NewInterp(), "if false then 1 / 0 else 7")
	if got.String() != "7" {
		t.Errorf("got %s, want 7", got)
	}

	// The condition must be a boolean.
	err := runErr(t, NewInterp(), "if 1 then 2 else 3")
	if !errors.Is(err, ErrInvalidOperand) {
		t.Errorf("got %v, want invalid operand", err)
	}
}

func TestEval_Assignment(t *testing.T) {
	in := NewInterp()

	if got := run(t, in, "x = 5"); got.Type() != "void" {
		t.Errorf("assignment evaluated to %s, want void", got.Type())
	}

	if got := run(t, in, "x + 1"); got.String() != "6" {
		t.Errorf("got %s, want 6", got)
	}

	// Rebinding overwrites.
	if got := run(t, in, "x = x * 2", "x"); got.String() != "10" {
		t.Errorf("got %s, want 10", got)
	}

	err := runErr(t, NewInterp(), "y + 1")
	if !errors.Is(err, ErrUndefinedName) {
		t.Errorf("got %v, want undefined name", err)
	}
}

func TestEval_ListIndexing(t *testing.T) {
	in := NewInterp()
	run(t, in, "l = [10, 20, 30]")

	if got := run(t, in, "l(1)"); got.String() != "20" {
		t.Errorf("got %s, want 20", got)
	}

	// Negative indices count from the end.
	if got := run(t, in, "i = 0 - 1", "l(i)"); got.String() != "30" {
		t.Errorf("got %s, want 30", got)
	}

	if err := runErr(t, in, "l(3)"); !errors.Is(err, ErrIndexOutOfBounds) {
		t.Errorf("got %v, want index out of bounds", err)
	}

	if err := runErr(t, in, `l("x")`); !errors.Is(err, ErrInvalidIndex) {
		t.Errorf("got %v, want invalid index", err)
	}
}

func TestEval_ListElementAssignment(t *testing.T) {
	in := NewInterp()

	got := run(t, in, "l = [1, 2, 3]", "l.1 = 9", "l")
	if got.String() != "[1, 9, 3]" {
		t.Errorf("got %s, want [1, 9, 3]", got)
	}

	err := runErr(t, in, "l.5 = 0")
	if !errors.Is(err, ErrIndexOutOfBounds) {
		t.Errorf("got %v, want index out of bounds", err)
	}
}

func TestEval_Maps(t *testing.T) {
	in := NewInterp()
	run(t, in, `m = ["a": 1, "b": 2]`)

	if got := run(t, in, "m.a"); got.String() != "1" {
		t.Errorf("got %s, want 1", got)
	}

	if got := run(t, in, `m("b")`); got.String() != "2" {
		t.Errorf("got %s, want 2", got)
	}

	if err := runErr(t, in, "m.missing"); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("got %v, want key not found", err)
	}
}

func TestEval_MapInsertOnAssign(t *testing.T) {
	in := NewInterp()

	// Assigning through a missing final key inserts a new entry.
	got := run(t, in, "m = [:]", "m.a = 1", "m.a = 2", "m.b = 3", "m")
	if got.String() != `["a": 2, "b": 3]` {
		t.Errorf("got %s, want [\"a\": 2, \"b\": 3]", got)
	}

	// Missing intermediate keys do not insert.
	err := runErr(t, in, "m.x.y = 1")
	if !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("got %v, want key not found", err)
	}
}

func TestEval_MapValueKeyDedup(t *testing.T) {
	// Distinct key expressions that evaluate to equal values collapse.
	got := run(t, NewInterp(), "[1 + 1: 10, 2: 20]")
	if got.String() != "[2: 20]" {
		t.Errorf("got %s, want [2: 20]", got)
	}
}

func TestEval_CopySemantics(t *testing.T) {
	in := NewInterp()

	// Binding one name to another copies the value.
	got := run(t, in, "a = [1, 2]", "b = a", "b.0 = 9", "a")
	if got.String() != "[1, 2]" {
		t.Errorf("got %s, want [1, 2]", got)
	}

	if got := run(t, in, "b"); got.String() != "[9, 2]" {
		t.Errorf("got %s, want [9, 2]", got)
	}

	// Nested collections copy all the way down.
	got = run(t, in, "outer = [[1], [2]]", "inner = outer(0)",
		"inner.0 = 7", "outer")
	if got.String() != "[[1], [2]]" {
		t.Errorf("got %s, want [[1], [2]]", got)
	}
}

func TestEval_Functions(t *testing.T) {
	in := NewInterp()
	run(t, in, "f = { x y ; x + y }")

	if got := run(t, in, "f(1, 2)"); got.String() != "3" {
		t.Errorf("got %s, want 3", got)
	}

	if got := run(t, in, "f(1, y = 2)"); got.String() != "3" {
		t.Errorf("got %s, want 3", got)
	}

	if got := run(t, in, "f(y = 10, x = 1)"); got.String() != "11" {
		t.Errorf("got %s, want 11", got)
	}

	if err := runErr(t, in, "f(1)"); !errors.Is(err, ErrArgumentCount) {
		t.Errorf("got %v, want argument count", err)
	}

	if err := runErr(t, in, "f(1, z = 2)"); !errors.Is(err, ErrUnknownParameter) {
		t.Errorf("got %v, want unknown parameter", err)
	}

	if err := runErr(t, in, "f(1, x = 2)"); !errors.Is(err, ErrArgumentCount) {
		t.Errorf("got %v, want duplicate binding failure", err)
	}
}

func TestEval_FunctionScopes(t *testing.T) {
	in := NewInterp()

	// Free names resolve against the caller's environment.
	got := run(t, in, "x = 1", "f = { y ; x + y }", "f(2)")
	if got.String() != "3" {
		t.Errorf("got %s, want 3", got)
	}

	// Unqualified assignment overwrites the innermost existing binding.
	got = run(t, in, "g = { ; x = 5 }", "g()", "x")
	if got.String() != "5" {
		t.Errorf("got %s, want 5", got)
	}

	// A local-qualified assignment shadows without touching the caller.
	got = run(t, in, "h = { ; local.x = 9 }", "h()", "x")
	if got.String() != "5" {
		t.Errorf("got %s, want 5", got)
	}

	// Parameters shadow outer bindings for the duration of the call.
	got = run(t, in, "k = { x ; x * 10 }", "k(3)", "x")
	if got.String() != "5" {
		t.Errorf("got %s, want 5", got)
	}

	// Global qualification reaches through any call depth.
	got = run(t, in, "w = { x ; global.x }", "w(42)")
	if got.String() != "5" {
		t.Errorf("got %s, want 5", got)
	}
}

func TestEval_NotCallable(t *testing.T) {
	err := runErr(t, NewInterp(), "x = 5", "x(1)")
	if !errors.Is(err, ErrNotCallable) {
		t.Errorf("got %v, want not callable", err)
	}

	// Lists and maps take exactly one argument.
	err = runErr(t, NewInterp(), "l = [1]", "l(0, 0)")
	if !errors.Is(err, ErrArgumentCount) {
		t.Errorf("got %v, want argument count", err)
	}
}

func TestEval_Distributions(t *testing.T) {
	in := NewInterp()

	got := run(t, in, "d = [1 | 2: 3]", "d")

	d, ok := got.(DistValue)
	if !ok {
		t.Fatalf("got %s, want distribution", got.Type())
	}

	if d.TotalWeight() != 4 {
		t.Errorf("got total weight %d, want 4", d.TotalWeight())
	}

	// Weights must be positive whole numerals.
	for _, input := range []string{"[1: 0 | 2]", "[1: 1/2 | 2]", `[1: "w" | 2]`} {
		if err := runErr(t, NewInterp(), input); err == nil {
			t.Errorf("%q: expected weight failure", input)
		}
	}
}

func TestEval_Sampling(t *testing.T) {
	in := NewInterp(WithRand(rand.New(rand.NewPCG(7, 11))))
	run(t, in, "d = [1: 1 | 2: 3]")

	counts := map[string]int{}

	for range 200 {
		got := run(t, in, "d()")
		counts[got.String()]++
	}

	if len(counts) > 2 || counts["1"]+counts["2"] != 200 {
		t.Fatalf("unexpected sample values: %v", counts)
	}

	// Weight 3 of 4 dominates over 200 draws.
	if counts["2"] <= counts["1"] {
		t.Errorf("expected 2 to dominate, got %v", counts)
	}
}

func TestEval_SampleKeysReevaluate(t *testing.T) {
	// Alternative keys stay unevaluated until drawn, so a sample observes
	// the environment at sampling time.
	in := NewInterp(WithRand(rand.New(rand.NewPCG(1, 2))))

	got := run(t, in, "x = 1", "d = [x | x]", "x = 5", "d()")
	if got.String() != "5" {
		t.Errorf("got %s, want 5", got)
	}
}

func TestEval_VoidResults(t *testing.T) {
	got := run(t, NewInterp(), "x = 1")

	if _, ok := got.(Void); !ok {
		t.Fatalf("got %s, want void", got.Type())
	}

	if got.String() != "" {
		t.Errorf("void renders %q, want empty", got.String())
	}
}
