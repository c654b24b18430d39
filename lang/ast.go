// Package lang implements the roller language: lexer, parser, AST, and
// tree-walking evaluator. One call to Parse consumes one logical line of
// source and yields exactly one expression tree; all state is local to the
// call, so the package is safe for concurrent use.
package lang

// Op identifies an operator carried by a BinOp node. Unary operators (OpNeg,
// OpNot) use the same node shape with the Empty sentinel as right operand.
type Op int

const (
	OpAdd Op = iota // +
	OpSub           // -
	OpMul           // *
	OpDiv           // /
	OpPow           // ^
	OpNeg           // unary -
	OpNot           // not
	OpAnd           // and
	OpOr            // or
	OpXor           // xor
	OpEq            // is
	OpNe            // isnt
	OpLt            // <
	OpLe            // <=
	OpGt            // >
	OpGe            // >=
)

// String returns the surface spelling of the operator.
func (op Op) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpPow:
		return "^"
	case OpNeg:
		return "-"
	case OpNot:
		return "not"
	case OpAnd:
		return "and"
	case OpOr:
		return "or"
	case OpXor:
		return "xor"
	case OpEq:
		return "is"
	case OpNe:
		return "isnt"
	case OpLt:
		return "<"
	case OpLe:
		return "<="
	case OpGt:
		return ">"
	case OpGe:
		return ">="
	default:
		return "?"
	}
}

// Expr is the interface implemented by all expression nodes. Trees are
// exclusively owned and cycle-free; nodes are never shared between trees.
type Expr interface {
	Kind() string
	Equal(Expr) bool

	exprNode() // sealed marker
}

// Val embeds a literal value.
type Val struct {
	V Value
}

func (n *Val) Kind() string { return "Val" }
func (n *Val) exprNode()    {}

func (n *Val) Equal(other Expr) bool {
	o, ok := other.(*Val)

	return ok && n.V.Equal(o.V)
}

// LVal references a variable or accessor chain without resolving it.
type LVal struct {
	LV LValue
}

func (n *LVal) Kind() string { return "LVal" }
func (n *LVal) exprNode()    {}

func (n *LVal) Equal(other Expr) bool {
	o, ok := other.(*LVal)

	return ok && n.LV.Equal(o.LV)
}

// BinOp applies an operator to two operands. Unary negation and boolean
// negation set Y to the Empty sentinel.
type BinOp struct {
	Op Op
	X  Expr
	Y  Expr
}

func (n *BinOp) Kind() string { return "BinOp" }
func (n *BinOp) exprNode()    {}

func (n *BinOp) Equal(other Expr) bool {
	o, ok := other.(*BinOp)

	return ok && n.Op == o.Op && n.X.Equal(o.X) && n.Y.Equal(o.Y)
}

// Assign stores the value of X through the lvalue. Right-associative.
type Assign struct {
	LV LValue
	X  Expr
}

func (n *Assign) Kind() string { return "Assign" }
func (n *Assign) exprNode()    {}

func (n *Assign) Equal(other Expr) bool {
	o, ok := other.(*Assign)

	return ok && n.LV.Equal(o.LV) && n.X.Equal(o.X)
}

// KwArg is one keyword argument of a call.
type KwArg struct {
	Name string
	X    Expr
}

// Call invokes a callee with positional and keyword arguments. Positional
// arguments always precede keyword arguments, in the surface syntax and here.
type Call struct {
	Callee Expr
	Args   []Expr
	KwArgs []KwArg
}

func (n *Call) Kind() string { return "Call" }
func (n *Call) exprNode()    {}

func (n *Call) Equal(other Expr) bool {
	o, ok := other.(*Call)
	if !ok || !n.Callee.Equal(o.Callee) ||
		len(n.Args) != len(o.Args) || len(n.KwArgs) != len(o.KwArgs) {
		return false
	}

	for i := range n.Args {
		if !n.Args[i].Equal(o.Args[i]) {
			return false
		}
	}

	for i := range n.KwArgs {
		if n.KwArgs[i].Name != o.KwArgs[i].Name ||
			!n.KwArgs[i].X.Equal(o.KwArgs[i].X) {
			return false
		}
	}

	return true
}

// If is a conditional with a mandatory else branch.
type If struct {
	Cond Expr
	Then Expr
	Else Expr
}

func (n *If) Kind() string { return "If" }
func (n *If) exprNode()    {}

func (n *If) Equal(other Expr) bool {
	o, ok := other.(*If)

	return ok && n.Cond.Equal(o.Cond) &&
		n.Then.Equal(o.Then) && n.Else.Equal(o.Else)
}

// List is an ordered sequence of element expressions.
type List struct {
	Elems []Expr
}

func (n *List) Kind() string { return "List" }
func (n *List) exprNode()    {}

func (n *List) Equal(other Expr) bool {
	o, ok := other.(*List)
	if !ok || len(n.Elems) != len(o.Elems) {
		return false
	}

	for i := range n.Elems {
		if !n.Elems[i].Equal(o.Elems[i]) {
			return false
		}
	}

	return true
}

// MapEntry is one key/value pair of a map literal.
type MapEntry struct {
	Key Expr
	Val Expr
}

// Map is a key-unique mapping with keys in parse order. Duplicate keys
// overwrite on insert; deduplication happens at construction, never later.
type Map struct {
	Entries []MapEntry
}

func (n *Map) Kind() string { return "Map" }
func (n *Map) exprNode()    {}

func (n *Map) Equal(other Expr) bool {
	o, ok := other.(*Map)
	if !ok || len(n.Entries) != len(o.Entries) {
		return false
	}

	for i := range n.Entries {
		if !n.Entries[i].Key.Equal(o.Entries[i].Key) ||
			!n.Entries[i].Val.Equal(o.Entries[i].Val) {
			return false
		}
	}

	return true
}

// Insert adds or overwrites the value for a structurally equal key.
func (n *Map) Insert(key, val Expr) {
	for i := range n.Entries {
		if n.Entries[i].Key.Equal(key) {
			n.Entries[i].Val = val

			return
		}
	}

	n.Entries = append(n.Entries, MapEntry{Key: key, Val: val})
}

// DistEntry is one alternative of a distribution literal.
type DistEntry struct {
	Key    Expr
	Weight Expr
}

// Dist is a weighted distribution with keys in parse order. Duplicate keys
// merge by summing weights at construction.
type Dist struct {
	Entries []DistEntry
}

func (n *Dist) Kind() string { return "Distribution" }
func (n *Dist) exprNode()    {}

func (n *Dist) Equal(other Expr) bool {
	o, ok := other.(*Dist)
	if !ok || len(n.Entries) != len(o.Entries) {
		return false
	}

	for i := range n.Entries {
		if !n.Entries[i].Key.Equal(o.Entries[i].Key) ||
			!n.Entries[i].Weight.Equal(o.Entries[i].Weight) {
			return false
		}
	}

	return true
}

// Insert adds an alternative, summing weights for a structurally equal key.
// Two literal numeral weights fold into one literal; any other combination
// becomes an addition node for the evaluator to resolve.
func (n *Dist) Insert(key, weight Expr) {
	for i := range n.Entries {
		if !n.Entries[i].Key.Equal(key) {
			continue
		}

		n.Entries[i].Weight = sumWeights(n.Entries[i].Weight, weight)

		return
	}

	n.Entries = append(n.Entries, DistEntry{Key: key, Weight: weight})
}

func sumWeights(a, b Expr) Expr {
	av, aok := numLit(a)
	bv, bok := numLit(b)

	if aok && bok {
		if sum, err := av.Add(bv); err == nil {
			return &Val{V: Num{N: sum}}
		}
	}

	return &BinOp{Op: OpAdd, X: a, Y: b}
}

func numLit(e Expr) (Rat, bool) {
	v, ok := e.(*Val)
	if !ok {
		return Rat{}, false
	}

	num, ok := v.V.(Num)

	return num.N, ok
}

// Empty is the sentinel right operand of unary BinOp nodes. It is never
// produced by user syntax.
type Empty struct{}

func (n *Empty) Kind() string { return "Empty" }
func (n *Empty) exprNode()    {}

func (n *Empty) Equal(other Expr) bool {
	_, ok := other.(*Empty)

	return ok
}

// Visibility qualifies the scope an lvalue root resolves in.
type Visibility int

const (
	// VisDefault resolves the root through the scope chain, innermost first.
	VisDefault Visibility = iota
	// VisGlobal pins the root to the outermost scope.
	VisGlobal
	// VisLocal pins the root to the innermost scope.
	VisLocal
)

// String returns the surface spelling of the qualifier, or "" for default.
func (v Visibility) String() string {
	switch v {
	case VisGlobal:
		return "global"
	case VisLocal:
		return "local"
	default:
		return ""
	}
}

// Accessor is one trailing segment of an lvalue: either an identifier field
// (Name set) or a literal index (Index set). Exactly one of the two is set.
type Accessor struct {
	Name  string
	Index Expr
}

// Equal reports structural equality of accessors.
func (a Accessor) Equal(b Accessor) bool {
	if a.Name != b.Name {
		return false
	}

	if (a.Index == nil) != (b.Index == nil) {
		return false
	}

	return a.Index == nil || a.Index.Equal(b.Index)
}

// LValue is a parsed reference to a storage location: an optional visibility
// qualifier, a root identifier, and a chain of accessors. Nothing is resolved
// at parse time.
type LValue struct {
	Vis  Visibility
	Root string
	Path []Accessor
}

// Equal reports structural equality of lvalues.
func (lv LValue) Equal(other LValue) bool {
	if lv.Vis != other.Vis || lv.Root != other.Root ||
		len(lv.Path) != len(other.Path) {
		return false
	}

	for i := range lv.Path {
		if !lv.Path[i].Equal(other.Path[i]) {
			return false
		}
	}

	return true
}
