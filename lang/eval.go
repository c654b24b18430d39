package lang

import (
	"log/slog"
	"math/rand/v2"
)

// Interp evaluates expression trees against a persistent environment. One
// interpreter serves one session; it is not safe for concurrent use.
type Interp struct {
	env *Env
	rng *rand.Rand
}

// InterpOption configures an interpreter at construction.
type InterpOption func(*Interp)

// WithRand replaces the sampling source used by distribution calls.
// Deterministic sources make sampled results reproducible.
func WithRand(rng *rand.Rand) InterpOption {
	return func(in *Interp) { in.rng = rng }
}

// NewInterp returns an interpreter with an empty global scope.
func NewInterp(opts ...InterpOption) *Interp {
	in := &Interp{
		env: NewEnv(),
		rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}

	for _, opt := range opts {
		opt(in)
	}

	return in
}

// Env exposes the interpreter's environment.
func (in *Interp) Env() *Env { return in.env }

// Eval reduces one expression tree to a value, or fails on the first
// semantic error. Assignments evaluate to Void.
func (in *Interp) Eval(e Expr) (Value, error) {
	switch n := e.(type) {
	case *Val:
		return n.V, nil
	case *LVal:
		return in.evalLValue(n.LV)
	case *BinOp:
		return in.evalBinOp(n)
	case *Assign:
		v, err := in.Eval(n.X)
		if err != nil {
			return nil, err
		}

		if err := in.assign(n.LV, v); err != nil {
			return nil, err
		}

		return Void{}, nil
	case *Call:
		return in.evalCall(n)
	case *If:
		return in.evalIf(n)
	case *List:
		return in.evalList(n)
	case *Map:
		return in.evalMap(n)
	case *Dist:
		return in.evalDist(n)
	case *Empty:
		return Void{}, nil
	default:
		return nil, ErrInvalidOperand
	}
}

// evalLValue resolves a reference to a copy of its current value.
func (in *Interp) evalLValue(lv LValue) (Value, error) {
	v, ok := in.env.Lookup(lv.Vis, lv.Root)
	if !ok {
		return nil, ErrUndefinedName.With(slog.String("name", lv.Root))
	}

	for _, a := range lv.Path {
		key, err := in.accessorKey(a)
		if err != nil {
			return nil, err
		}

		v, err = index(v, key)
		if err != nil {
			return nil, err
		}
	}

	return v, nil
}

// accessorKey produces the index value of one accessor: field names become
// string keys, literal indices evaluate to their value.
func (in *Interp) accessorKey(a Accessor) (Value, error) {
	if a.Name != "" {
		return Str{S: a.Name}, nil
	}

	return in.Eval(a.Index)
}

// index reads one element of a collection. Lists take integer indices with
// negative values counting from the end; maps take any key.
func index(container, key Value) (Value, error) {
	switch c := container.(type) {
	case ListValue:
		i, err := listIndex(c, key)
		if err != nil {
			return nil, err
		}

		return c.Elems[i], nil
	case MapValue:
		v, ok := c.Get(key)
		if !ok {
			return nil, ErrKeyNotFound.With(slog.String("key", key.String()))
		}

		return v, nil
	default:
		return nil, ErrInvalidIndex.With(slog.String("type", container.Type()))
	}
}

// listIndex validates a list index value and normalizes negatives.
func listIndex(list ListValue, key Value) (int, error) {
	num, ok := key.(Num)
	if !ok || !num.N.IsInt() {
		return 0, ErrInvalidIndex.With(slog.String("index", key.String()))
	}

	i := int(num.N.Num())
	if i < 0 {
		i += len(list.Elems)
	}

	if i < 0 || i >= len(list.Elems) {
		return 0, ErrIndexOutOfBounds.With(slog.String("index", key.String()))
	}

	return i, nil
}

// assign stores a value through an lvalue. A bare root rebinds the name; an
// accessor chain mutates inside the bound collection, where a missing map
// key at the final segment inserts a new entry.
func (in *Interp) assign(lv LValue, v Value) error {
	if len(lv.Path) == 0 {
		in.env.Set(lv.Vis, lv.Root, v)

		return nil
	}

	keys := make([]Value, len(lv.Path))

	for i, a := range lv.Path {
		key, err := in.accessorKey(a)
		if err != nil {
			return err
		}

		keys[i] = key
	}

	cur, ok := in.env.Lookup(lv.Vis, lv.Root)
	if !ok {
		return ErrUndefinedName.With(slog.String("name", lv.Root))
	}

	updated, err := setIn(cur, keys, v)
	if err != nil {
		return err
	}

	in.env.Set(lv.Vis, lv.Root, updated)

	return nil
}

// setIn writes v at the location named by keys inside container, returning
// the updated container.
func setIn(container Value, keys []Value, v Value) (Value, error) {
	key := keys[0]

	switch c := container.(type) {
	case ListValue:
		i, err := listIndex(c, key)
		if err != nil {
			return nil, err
		}

		if len(keys) == 1 {
			c.Elems[i] = v

			return c, nil
		}

		inner, err := setIn(c.Elems[i], keys[1:], v)
		if err != nil {
			return nil, err
		}

		c.Elems[i] = inner

		return c, nil
	case MapValue:
		for i := range c.Entries {
			if !c.Entries[i].Key.Equal(key) {
				continue
			}

			if len(keys) == 1 {
				c.Entries[i].Val = v

				return c, nil
			}

			inner, err := setIn(c.Entries[i].Val, keys[1:], v)
			if err != nil {
				return nil, err
			}

			c.Entries[i].Val = inner

			return c, nil
		}

		if len(keys) == 1 {
			c.Entries = append(c.Entries, MapPair{Key: key, Val: v})

			return c, nil
		}

		return nil, ErrKeyNotFound.With(slog.String("key", key.String()))
	default:
		return nil, ErrInvalidIndex.With(slog.String("type", container.Type()))
	}
}

// evalBinOp dispatches operator semantics: arithmetic over numerals, logic
// over booleans, equality over any pair, and ordering over numerals. Both
// operands evaluate before dispatch; there is no short-circuiting.
func (in *Interp) evalBinOp(n *BinOp) (Value, error) {
	x, err := in.Eval(n.X)
	if err != nil {
		return nil, err
	}

	if _, unary := n.Y.(*Empty); unary {
		return evalUnary(n.Op, x)
	}

	y, err := in.Eval(n.Y)
	if err != nil {
		return nil, err
	}

	switch n.Op {
	case OpAdd, OpSub, OpMul, OpDiv, OpPow:
		return evalArith(n.Op, x, y)
	case OpAnd, OpOr, OpXor:
		return evalLogic(n.Op, x, y)
	case OpEq:
		return Bool{B: x.Equal(y)}, nil
	case OpNe:
		return Bool{B: !x.Equal(y)}, nil
	case OpLt, OpLe, OpGt, OpGe:
		return evalCompare(n.Op, x, y)
	default:
		return nil, ErrInvalidOperand.With(slog.String("op", n.Op.String()))
	}
}

func evalUnary(op Op, x Value) (Value, error) {
	switch op {
	case OpNeg:
		num, ok := x.(Num)
		if !ok {
			return nil, operandErr(op, x)
		}

		neg, err := num.N.Neg()
		if err != nil {
			return nil, err
		}

		return Num{N: neg}, nil
	case OpNot:
		b, ok := x.(Bool)
		if !ok {
			return nil, operandErr(op, x)
		}

		return Bool{B: !b.B}, nil
	default:
		return nil, operandErr(op, x)
	}
}

func evalArith(op Op, x, y Value) (Value, error) {
	xn, xok := x.(Num)
	yn, yok := y.(Num)

	if !xok {
		return nil, operandErr(op, x)
	}

	if !yok {
		return nil, operandErr(op, y)
	}

	var (
		r   Rat
		err error
	)

	switch op {
	case OpAdd:
		r, err = xn.N.Add(yn.N)
	case OpSub:
		r, err = xn.N.Sub(yn.N)
	case OpMul:
		r, err = xn.N.Mul(yn.N)
	case OpDiv:
		r, err = xn.N.Div(yn.N)
	case OpPow:
		r, err = xn.N.Pow(yn.N)
	}

	if err != nil {
		return nil, err
	}

	return Num{N: r}, nil
}

func evalLogic(op Op, x, y Value) (Value, error) {
	xb, xok := x.(Bool)
	yb, yok := y.(Bool)

	if !xok {
		return nil, operandErr(op, x)
	}

	if !yok {
		return nil, operandErr(op, y)
	}

	switch op {
	case OpAnd:
		return Bool{B: xb.B && yb.B}, nil
	case OpOr:
		return Bool{B: xb.B || yb.B}, nil
	default:
		return Bool{B: xb.B != yb.B}, nil
	}
}

func evalCompare(op Op, x, y Value) (Value, error) {
	xn, xok := x.(Num)
	yn, yok := y.(Num)

	if !xok {
		return nil, operandErr(op, x)
	}

	if !yok {
		return nil, operandErr(op, y)
	}

	c := xn.N.Cmp(yn.N)

	switch op {
	case OpLt:
		return Bool{B: c < 0}, nil
	case OpLe:
		return Bool{B: c <= 0}, nil
	case OpGt:
		return Bool{B: c > 0}, nil
	default:
		return Bool{B: c >= 0}, nil
	}
}

func operandErr(op Op, v Value) error {
	return ErrInvalidOperand.With(
		slog.String("op", op.String()),
		slog.String("type", v.Type()),
	)
}

// evalIf requires a boolean condition and evaluates exactly one branch.
func (in *Interp) evalIf(n *If) (Value, error) {
	cond, err := in.Eval(n.Cond)
	if err != nil {
		return nil, err
	}

	b, ok := cond.(Bool)
	if !ok {
		return nil, ErrInvalidOperand.With(
			slog.String("op", "if"),
			slog.String("type", cond.Type()),
		)
	}

	if b.B {
		return in.Eval(n.Then)
	}

	return in.Eval(n.Else)
}

func (in *Interp) evalList(n *List) (Value, error) {
	elems := make([]Value, len(n.Elems))

	for i, el := range n.Elems {
		v, err := in.Eval(el)
		if err != nil {
			return nil, err
		}

		elems[i] = v
	}

	return ListValue{Elems: elems}, nil
}

// evalMap evaluates keys and values in source order. Distinct key
// expressions that evaluate to equal values collapse, last write wins.
func (in *Interp) evalMap(n *Map) (Value, error) {
	m := MapValue{}

	for _, en := range n.Entries {
		k, err := in.Eval(en.Key)
		if err != nil {
			return nil, err
		}

		v, err := in.Eval(en.Val)
		if err != nil {
			return nil, err
		}

		set := false

		for i := range m.Entries {
			if m.Entries[i].Key.Equal(k) {
				m.Entries[i].Val = v
				set = true

				break
			}
		}

		if !set {
			m.Entries = append(m.Entries, MapPair{Key: k, Val: v})
		}
	}

	return m, nil
}

// evalDist evaluates alternative weights, which must be positive whole
// numerals. Keys stay unevaluated so each sample re-evaluates its choice.
func (in *Interp) evalDist(n *Dist) (Value, error) {
	d := DistValue{Alts: make([]DistAlt, 0, len(n.Entries))}

	for _, en := range n.Entries {
		wv, err := in.Eval(en.Weight)
		if err != nil {
			return nil, err
		}

		num, ok := wv.(Num)
		if !ok || !num.N.IsInt() || num.N.Sign() <= 0 {
			return nil, ErrInvalidOperand.With(
				slog.String("op", "weight"),
				slog.String("value", wv.String()),
			)
		}

		d.Alts = append(d.Alts, DistAlt{
			Key:    en.Key,
			Weight: int64(num.N.Num()),
		})
	}

	return d, nil
}

// evalCall dispatches on the callee's value: functions apply their
// arguments, lists and maps index by a single argument, and distributions
// sample when called with no arguments.
func (in *Interp) evalCall(n *Call) (Value, error) {
	callee, err := in.Eval(n.Callee)
	if err != nil {
		return nil, err
	}

	switch c := callee.(type) {
	case Func:
		return in.apply(c.Def, n)
	case ListValue, MapValue:
		if len(n.Args) != 1 || len(n.KwArgs) != 0 {
			return nil, ErrArgumentCount.With(
				slog.String("callee", callee.Type()))
		}

		key, err := in.Eval(n.Args[0])
		if err != nil {
			return nil, err
		}

		return index(c, key)
	case DistValue:
		if len(n.Args) != 0 || len(n.KwArgs) != 0 {
			return nil, ErrArgumentCount.With(
				slog.String("callee", callee.Type()))
		}

		return in.sample(c)
	default:
		return nil, ErrNotCallable.With(slog.String("type", callee.Type()))
	}
}

// apply binds positional then keyword arguments to parameter names, pushes
// a call scope, and evaluates the body. Every parameter must be bound
// exactly once.
func (in *Interp) apply(def FunDef, n *Call) (Value, error) {
	if len(n.Args)+len(n.KwArgs) != len(def.Params) ||
		len(n.Args) > len(def.Params) {
		return nil, ErrArgumentCount.With(
			slog.Int("want", len(def.Params)),
			slog.Int("have", len(n.Args)+len(n.KwArgs)),
		)
	}

	bindings := make(map[string]Value, len(def.Params))

	for i, a := range n.Args {
		v, err := in.Eval(a)
		if err != nil {
			return nil, err
		}

		bindings[def.Params[i]] = v
	}

	for _, kw := range n.KwArgs {
		if !paramNamed(def.Params, kw.Name) {
			return nil, ErrUnknownParameter.With(
				slog.String("name", kw.Name))
		}

		if _, dup := bindings[kw.Name]; dup {
			return nil, ErrArgumentCount.With(
				slog.String("name", kw.Name))
		}

		v, err := in.Eval(kw.X)
		if err != nil {
			return nil, err
		}

		bindings[kw.Name] = v
	}

	in.env.Push(bindings)
	defer in.env.Pop()

	return in.Eval(def.Body)
}

func paramNamed(params []string, name string) bool {
	for _, p := range params {
		if p == name {
			return true
		}
	}

	return false
}

// sample draws one alternative from a distribution in proportion to its
// weight and evaluates the chosen key expression.
func (in *Interp) sample(d DistValue) (Value, error) {
	total := d.TotalWeight()
	if total <= 0 {
		return nil, ErrEmptyDistribution
	}

	r := in.rng.Int64N(total)

	for _, a := range d.Alts {
		r -= a.Weight
		if r < 0 {
			return in.Eval(a.Key)
		}
	}

	return nil, ErrEmptyDistribution
}
