package lang

import (
	"errors"
	"testing"
)

// parse is a test helper that fails the test on a parse error.
func parse(t *testing.T, source string) Expr {
	t.Helper()

	e, err := ParseString(source)
	if err != nil {
		t.Fatalf("parse %q: %v", source, err)
	}

	return e
}

func num(n int32) Expr { return &Val{V: Num{N: RatFromInt(n)}} }

func TestParse_Literals(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Expr
	}{
		{name: "integer", input: "42", want: num(42)},
		{name: "boolean", input: "true", want: &Val{V: Bool{B: true}}},
		{name: "string", input: `"hi"`, want: &Val{V: Str{S: "hi"}}},
		{name: "none", input: "none", want: &Val{V: None{}}},
		{name: "reference", input: "x", want: &LVal{LV: LValue{Root: "x"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parse(t, tt.input); !got.Equal(tt.want) {
				t.Errorf("got %s, want %s", FormatExpr(got), FormatExpr(tt.want))
			}
		})
	}
}

func TestParse_Precedence(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "multiplication binds tighter",
			input: "1 + 2 * 3",
			want:  "(1 + (2 * 3))",
		},
		{
			name:  "additive left associative",
			input: "1 - 2 - 3",
			want:  "((1 - 2) - 3)",
		},
		{
			name:  "exponent right associative",
			input: "2 ^ 3 ^ 4",
			want:  "(2 ^ (3 ^ 4))",
		},
		{
			name:  "boolean looser than arithmetic",
			input: "a and b + 1",
			want:  "(a and (b + 1))",
		},
		{
			name:  "comparison loosest",
			input: "1 + 2 < 3 * 4",
			want:  "((1 + 2) < (3 * 4))",
		},
		{
			name:  "parens override",
			input: "(1 + 2) * 3",
			want:  "((1 + 2) * 3)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatExpr(parse(t, tt.input)); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestParse_SingleComparison(t *testing.T) {
	e := parse(t, "a is b")

	bin, ok := e.(*BinOp)
	if !ok || bin.Op != OpEq {
		t.Fatalf("got %s, want equality", FormatExpr(e))
	}

	// Comparisons do not chain.
	if _, err := ParseString("a is b is c"); !errors.Is(err, ErrTrailingInput) {
		t.Errorf("got %v, want trailing input", err)
	}

	if _, err := ParseString("1 < 2 < 3"); !errors.Is(err, ErrTrailingInput) {
		t.Errorf("got %v, want trailing input", err)
	}
}

func TestParse_PrefixRequiresParens(t *testing.T) {
	// Prefix operators are only reachable inside a parenthesized
	// subexpression.
	for _, input := range []string{"-a", "not a", "1 + -2"} {
		if _, err := ParseString(input); err == nil {
			t.Errorf("%q: expected parse failure", input)
		}
	}

	tests := []struct {
		input string
		want  string
	}{
		{input: "(-a)", want: "(-a)"},
		{input: "(not a)", want: "(not a)"},
		{input: "(1 + -2)", want: "(1 + (-2))"},
		{input: "(- -1)", want: "(-(-1))"},
		{input: "(not not a)", want: "(not (not a))"},
	}

	for _, tt := range tests {
		if got := FormatExpr(parse(t, tt.input)); got != tt.want {
			t.Errorf("%q: got %s, want %s", tt.input, got, tt.want)
		}
	}
}

func TestParse_Conditional(t *testing.T) {
	e := parse(t, "if a then 1 else 2")

	cond, ok := e.(*If)
	if !ok {
		t.Fatalf("got %s, want conditional", FormatExpr(e))
	}

	if !cond.Then.Equal(num(1)) || !cond.Else.Equal(num(2)) {
		t.Errorf("unexpected branches: %s", FormatExpr(e))
	}

	// The else branch is mandatory.
	if _, err := ParseString("if a then 1"); err == nil {
		t.Error("expected parse failure without else")
	}

	// Conditionals nest in either branch.
	parse(t, "if a then if b then 1 else 2 else 3")
}

func TestParse_Assignment(t *testing.T) {
	tests := []struct {
		name  string
		input string
		root  string
		vis   Visibility
		path  int
	}{
		{name: "bare", input: "x = 5", root: "x", vis: VisDefault},
		{name: "global", input: "global.x = 5", root: "x", vis: VisGlobal},
		{name: "local", input: "local.x = 5", root: "x", vis: VisLocal},
		{name: "field path", input: "x.y.z = 5", root: "x", path: 2},
		{name: "index path", input: "x.0 = 5", root: "x", path: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := parse(t, tt.input)

			asn, ok := e.(*Assign)
			if !ok {
				t.Fatalf("got %s, want assignment", FormatExpr(e))
			}

			if asn.LV.Root != tt.root || asn.LV.Vis != tt.vis {
				t.Errorf("got %v/%v, want %v/%v",
					asn.LV.Vis, asn.LV.Root, tt.vis, tt.root)
			}

			if len(asn.LV.Path) != tt.path {
				t.Errorf("got %d accessors, want %d", len(asn.LV.Path), tt.path)
			}
		})
	}

	// "global" without a dot is an ordinary identifier context, not a
	// qualifier, and fails because global is a keyword.
	if _, err := ParseString("global = 5"); err == nil {
		t.Error("expected parse failure for bare keyword assignment")
	}
}

func TestParse_AssignmentBacktrack(t *testing.T) {
	// An identifier followed by anything but "=" rewinds and parses as an
	// expression.
	e := parse(t, "x + 1")

	if _, ok := e.(*Assign); ok {
		t.Fatalf("got assignment, want expression: %s", FormatExpr(e))
	}

	// The right-hand side is a full expression, including conditionals.
	e = parse(t, "x = if a then 1 else 2")

	asn, ok := e.(*Assign)
	if !ok {
		t.Fatalf("got %s, want assignment", FormatExpr(e))
	}

	if _, ok := asn.X.(*If); !ok {
		t.Errorf("got %s, want conditional rhs", FormatExpr(asn.X))
	}
}

func TestParse_Calls(t *testing.T) {
	e := parse(t, "f(1, 2)")

	call, ok := e.(*Call)
	if !ok {
		t.Fatalf("got %s, want call", FormatExpr(e))
	}

	if len(call.Args) != 2 || len(call.KwArgs) != 0 {
		t.Errorf("got %d/%d args, want 2/0", len(call.Args), len(call.KwArgs))
	}

	e = parse(t, "f()")
	if call := e.(*Call); len(call.Args) != 0 {
		t.Errorf("expected empty argument list, got %s", FormatExpr(e))
	}

	// Trailing comma is allowed.
	parse(t, "f(1, 2,)")
}

func TestParse_CallKeywordArgs(t *testing.T) {
	e := parse(t, "f(1, 2, name = 3)")

	call := e.(*Call)
	if len(call.Args) != 2 || len(call.KwArgs) != 1 {
		t.Fatalf("got %d/%d args, want 2/1", len(call.Args), len(call.KwArgs))
	}

	if call.KwArgs[0].Name != "name" {
		t.Errorf("got %q, want name", call.KwArgs[0].Name)
	}

	// Once keyword arguments begin, positional arguments may not follow.
	if _, err := ParseString("f(name = 3, 1)"); err == nil {
		t.Error("expected parse failure for positional after keyword")
	}
}

func TestParse_CallsAreNotOperands(t *testing.T) {
	// A call result cannot feed an operator; the call consumes the whole
	// line or nothing.
	for _, input := range []string{"f(1) + 2", "f(1) is 2"} {
		if _, err := ParseString(input); !errors.Is(err, ErrTrailingInput) {
			t.Errorf("%q: got %v, want trailing input", input, err)
		}
	}

	// Wrapping the call in parens restores operand position.
	parse(t, "(f(1)) + 2")
}

func TestParse_Lists(t *testing.T) {
	e := parse(t, "[1, 2, 3]")

	list, ok := e.(*List)
	if !ok || len(list.Elems) != 3 {
		t.Fatalf("got %s, want three-element list", FormatExpr(e))
	}

	if e := parse(t, "[]"); !e.Equal(&List{}) {
		t.Errorf("got %s, want empty list", FormatExpr(e))
	}

	// Trailing comma.
	if e := parse(t, "[1, 2,]"); len(e.(*List).Elems) != 2 {
		t.Errorf("got %s, want two-element list", FormatExpr(e))
	}

	// Nested collections.
	parse(t, "[[1, 2], [3: 4], []]")
}

func TestParse_Maps(t *testing.T) {
	e := parse(t, "[1: 2, 3: 4]")

	m, ok := e.(*Map)
	if !ok || len(m.Entries) != 2 {
		t.Fatalf("got %s, want two-entry map", FormatExpr(e))
	}

	for _, input := range []string{"[:]", "[:,]"} {
		if e := parse(t, input); !e.Equal(&Map{}) {
			t.Errorf("%q: got %s, want empty map", input, FormatExpr(e))
		}
	}
}

func TestParse_MapDuplicateKeys(t *testing.T) {
	// Last write wins for syntactically equal keys.
	e := parse(t, "[1: 2, 1: 3]")

	m := e.(*Map)
	if len(m.Entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(m.Entries))
	}

	if !m.Entries[0].Val.Equal(num(3)) {
		t.Errorf("got %s, want 3", FormatExpr(m.Entries[0].Val))
	}
}

func TestParse_Distributions(t *testing.T) {
	// Bare alternatives carry implicit weight one.
	e := parse(t, "[1 | 2 | 3]")

	d, ok := e.(*Dist)
	if !ok || len(d.Entries) != 3 {
		t.Fatalf("got %s, want three-alternative distribution", FormatExpr(e))
	}

	for _, en := range d.Entries {
		if !en.Weight.Equal(num(1)) {
			t.Errorf("got weight %s, want 1", FormatExpr(en.Weight))
		}
	}

	// Explicit weights.
	e = parse(t, "[1: 2 | 3: 4]")
	if d := e.(*Dist); !d.Entries[1].Weight.Equal(num(4)) {
		t.Errorf("got %s, want weight 4", FormatExpr(e))
	}

	// A single pair followed by a bare alternative is a distribution, not a
	// map.
	e = parse(t, "[1: 2 | 3]")
	if _, ok := e.(*Dist); !ok {
		t.Errorf("got %s, want distribution", FormatExpr(e))
	}
}

func TestParse_DistributionDuplicateKeys(t *testing.T) {
	// Duplicate keys merge by summing weights; literal weights fold.
	e := parse(t, "[1 | 2 | 1]")

	d := e.(*Dist)
	if len(d.Entries) != 2 {
		t.Fatalf("got %d alternatives, want 2", len(d.Entries))
	}

	if !d.Entries[0].Weight.Equal(num(2)) {
		t.Errorf("got weight %s, want 2", FormatExpr(d.Entries[0].Weight))
	}

	if !d.Entries[1].Weight.Equal(num(1)) {
		t.Errorf("got weight %s, want 1", FormatExpr(d.Entries[1].Weight))
	}

	// Non-literal weights merge into an addition.
	e = parse(t, "[1: x | 1: 2]")

	d = e.(*Dist)
	if len(d.Entries) != 1 {
		t.Fatalf("got %d alternatives, want 1", len(d.Entries))
	}

	sum, ok := d.Entries[0].Weight.(*BinOp)
	if !ok || sum.Op != OpAdd {
		t.Errorf("got %s, want summed weight", FormatExpr(d.Entries[0].Weight))
	}
}

func TestParse_FunctionLiterals(t *testing.T) {
	e := parse(t, "{ x y ; x + y }")

	val, ok := e.(*Val)
	if !ok {
		t.Fatalf("got %s, want function literal", FormatExpr(e))
	}

	fn, ok := val.V.(Func)
	if !ok {
		t.Fatalf("got %s, want function value", val.V.Type())
	}

	if len(fn.Def.Params) != 2 ||
		fn.Def.Params[0] != "x" || fn.Def.Params[1] != "y" {
		t.Errorf("got params %v, want [x y]", fn.Def.Params)
	}

	// Zero parameters.
	e = parse(t, "{ ; 42 }")
	if fn := e.(*Val).V.(Func); len(fn.Def.Params) != 0 {
		t.Errorf("got params %v, want none", fn.Def.Params)
	}

	// The semicolon is mandatory even without parameters.
	if _, err := ParseString("{ 42 }"); err == nil {
		t.Error("expected parse failure without semicolon")
	}
}

func TestParse_TrailingInput(t *testing.T) {
	for _, input := range []string{"1 2", "x y", "[1] 2", "1; 2"} {
		if _, err := ParseString(input); !errors.Is(err, ErrTrailingInput) {
			t.Errorf("%q: got %v, want trailing input", input, err)
		}
	}
}

func TestParse_UnexpectedEnd(t *testing.T) {
	for _, input := range []string{"", "1 +", "if a then", "[1,", "(1"} {
		if _, err := ParseString(input); !errors.Is(err, ErrUnexpectedEnd) {
			t.Errorf("%q: got %v, want unexpected end", input, err)
		}
	}
}

func TestParse_RoundTrip(t *testing.T) {
	// Formatting a tree and reparsing the result yields an equal tree.
	inputs := []string{
		"1 + 2 * 3",
		"x = if a then 1 else (2 + 3)",
		`["k": [1, 2], "j": [:]]`,
		"[1: 2 | 3 | 4: x]",
		"f(1, 2, name = 3)",
		"{ x y ; (x ^ y) }",
		"global.x.y.0 = (not b)",
		"2.5 + 0.125",
		"[1 | 1]",
		"[1: x | 1: 2]",
		"[2.5: 1 | 2.5: 3]",
	}

	for _, input := range inputs {
		orig := parse(t, input)

		again, err := ParseString(FormatExpr(orig))
		if err != nil {
			t.Errorf("reparse %q: %v", FormatExpr(orig), err)

			continue
		}

		if !orig.Equal(again) {
			t.Errorf("%q: round trip changed tree: %s vs %s",
				input, FormatExpr(orig), FormatExpr(again))
		}
	}
}
