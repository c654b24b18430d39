package lang

import "strings"

// Value is the runtime representation of an evaluated expression. Literal
// tokens carry None, Bool, Num, and Str directly; the remaining variants are
// produced only by evaluation.
type Value interface {
	Type() string
	Equal(Value) bool
	String() string

	valueNode() // sealed marker
}

// Void is the result of an assignment or any other expression evaluated for
// effect. It renders as nothing and compares equal only to itself.
type Void struct{}

func (Void) Type() string   { return "void" }
func (Void) String() string { return "" }
func (Void) valueNode()     {}

func (Void) Equal(other Value) bool {
	_, ok := other.(Void)

	return ok
}

// None is the explicit absence-of-value literal.
type None struct{}

func (None) Type() string   { return "none" }
func (None) String() string { return "none" }
func (None) valueNode()     {}

func (None) Equal(other Value) bool {
	_, ok := other.(None)

	return ok
}

// Bool is a boolean value.
type Bool struct {
	B bool
}

func (v Bool) Type() string { return "boolean" }
func (v Bool) valueNode()   {}

func (v Bool) String() string {
	if v.B {
		return "true"
	}

	return "false"
}

func (v Bool) Equal(other Value) bool {
	o, ok := other.(Bool)

	return ok && v.B == o.B
}

// Num is an exact rational numeral.
type Num struct {
	N Rat
}

func (v Num) Type() string   { return "numeral" }
func (v Num) String() string { return v.N.String() }
func (v Num) valueNode()     {}

func (v Num) Equal(other Value) bool {
	o, ok := other.(Num)

	return ok && v.N.Cmp(o.N) == 0
}

// Str is a string value holding decoded content, never source escapes.
type Str struct {
	S string
}

func (v Str) Type() string   { return "string" }
func (v Str) String() string { return v.S }
func (v Str) valueNode()     {}

func (v Str) Equal(other Value) bool {
	o, ok := other.(Str)

	return ok && v.S == o.S
}

// ListValue is an evaluated list.
type ListValue struct {
	Elems []Value
}

func (v ListValue) Type() string { return "list" }
func (v ListValue) valueNode()   {}

func (v ListValue) String() string {
	var b strings.Builder

	b.WriteByte('[')

	for i, e := range v.Elems {
		if i > 0 {
			b.WriteString(", ")
		}

		b.WriteString(displayElem(e))
	}

	b.WriteByte(']')

	return b.String()
}

func (v ListValue) Equal(other Value) bool {
	o, ok := other.(ListValue)
	if !ok || len(v.Elems) != len(o.Elems) {
		return false
	}

	for i := range v.Elems {
		if !v.Elems[i].Equal(o.Elems[i]) {
			return false
		}
	}

	return true
}

// MapPair is one entry of an evaluated map.
type MapPair struct {
	Key Value
	Val Value
}

// MapValue is an evaluated map with entries in insertion order and keys
// pairwise unequal.
type MapValue struct {
	Entries []MapPair
}

func (v MapValue) Type() string { return "map" }
func (v MapValue) valueNode()   {}

func (v MapValue) String() string {
	if len(v.Entries) == 0 {
		return "[:]"
	}

	var b strings.Builder

	b.WriteByte('[')

	for i, e := range v.Entries {
		if i > 0 {
			b.WriteString(", ")
		}

		b.WriteString(displayElem(e.Key))
		b.WriteString(": ")
		b.WriteString(displayElem(e.Val))
	}

	b.WriteByte(']')

	return b.String()
}

func (v MapValue) Equal(other Value) bool {
	o, ok := other.(MapValue)
	if !ok || len(v.Entries) != len(o.Entries) {
		return false
	}

	for i := range v.Entries {
		if !v.Entries[i].Key.Equal(o.Entries[i].Key) ||
			!v.Entries[i].Val.Equal(o.Entries[i].Val) {
			return false
		}
	}

	return true
}

// Get returns the value mapped to key, if any.
func (v MapValue) Get(key Value) (Value, bool) {
	for i := range v.Entries {
		if v.Entries[i].Key.Equal(key) {
			return v.Entries[i].Val, true
		}
	}

	return nil, false
}

// DistAlt is one weighted alternative of an evaluated distribution. The key
// stays an unevaluated expression so every sample re-evaluates its choice.
type DistAlt struct {
	Key    Expr
	Weight int64
}

// DistValue is an evaluated distribution: alternatives in insertion order
// with positive integer weights.
type DistValue struct {
	Alts []DistAlt
}

func (v DistValue) Type() string { return "distribution" }
func (v DistValue) valueNode()   {}

func (v DistValue) String() string {
	var b strings.Builder

	b.WriteByte('[')

	for i, a := range v.Alts {
		if i > 0 {
			b.WriteString(" | ")
		} else {
			b.WriteByte(' ')
		}

		b.WriteString(FormatExpr(a.Key))
		b.WriteString(": ")
		b.WriteString(Num{N: RatFromInt(int32(a.Weight))}.String())
	}

	b.WriteString(" ]")

	return b.String()
}

func (v DistValue) Equal(other Value) bool {
	o, ok := other.(DistValue)
	if !ok || len(v.Alts) != len(o.Alts) {
		return false
	}

	for i := range v.Alts {
		if v.Alts[i].Weight != o.Alts[i].Weight ||
			!v.Alts[i].Key.Equal(o.Alts[i].Key) {
			return false
		}
	}

	return true
}

// TotalWeight returns the sum of all alternative weights.
func (v DistValue) TotalWeight() int64 {
	var total int64
	for _, a := range v.Alts {
		total += a.Weight
	}

	return total
}

// FunDef is the definition carried by a function value: parameter names and
// an unevaluated body.
type FunDef struct {
	Params []string
	Body   Expr
}

// Func is a function value. Functions close over nothing; free names resolve
// against the caller's environment at call time.
type Func struct {
	Def FunDef
}

func (v Func) Type() string { return "function" }
func (v Func) valueNode()   {}

func (v Func) String() string {
	return "fn(" + strings.Join(v.Def.Params, ", ") + ")"
}

func (v Func) Equal(other Value) bool {
	o, ok := other.(Func)
	if !ok || len(v.Def.Params) != len(o.Def.Params) {
		return false
	}

	for i := range v.Def.Params {
		if v.Def.Params[i] != o.Def.Params[i] {
			return false
		}
	}

	return v.Def.Body.Equal(o.Def.Body)
}

// displayElem renders a value for inclusion inside a collection display.
// Strings regain their quotes so nested output stays readable.
func displayElem(v Value) string {
	if s, ok := v.(Str); ok {
		return quoteStr(s.S)
	}

	return v.String()
}

func quoteStr(s string) string {
	var b strings.Builder

	b.WriteByte('"')

	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteRune(r)
		}
	}

	b.WriteByte('"')

	return b.String()
}
