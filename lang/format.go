package lang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
)

// FormatExpr renders an expression back into surface syntax. For any tree
// produced by [Parse], re-parsing the result yields a structurally identical
// tree.
func FormatExpr(e Expr) string {
	var b strings.Builder

	writeExpr(&b, e)

	return b.String()
}

// Format writes the expression in surface syntax to the writer.
func Format(_ context.Context, w io.Writer, e Expr) error {
	_, err := fmt.Fprintln(w, FormatExpr(e))

	return err
}

// FormatJSON writes the expression tree as JSON to the writer.
func FormatJSON(_ context.Context, w io.Writer, e Expr, indent int) error {
	var (
		jsonData []byte
		err      error
	)

	if indent > 0 {
		jsonData, err = json.MarshalIndent(
			exprNative(e), "", strings.Repeat(" ", indent))
	} else {
		jsonData, err = json.Marshal(exprNative(e))
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(jsonData))

	return err
}

// FormatYAML writes the expression tree as YAML to the writer.
func FormatYAML(ctx context.Context, w io.Writer, e Expr, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	yamlData, err := yaml.MarshalContext(ctx, exprNative(e), opts...)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(w, string(yamlData))

	return err
}

// exprNative converts an expression tree into plain maps and slices for
// structured marshaling.
func exprNative(e Expr) any {
	switch n := e.(type) {
	case *Val:
		return map[string]any{"val": valueNative(n.V)}
	case *LVal:
		return map[string]any{"lval": lvalueNative(n.LV)}
	case *BinOp:
		return map[string]any{"binop": map[string]any{
			"op": n.Op.String(),
			"x":  exprNative(n.X),
			"y":  exprNative(n.Y),
		}}
	case *Assign:
		return map[string]any{"assign": map[string]any{
			"lvalue": lvalueNative(n.LV),
			"x":      exprNative(n.X),
		}}
	case *Call:
		call := map[string]any{"callee": exprNative(n.Callee)}

		if len(n.Args) > 0 {
			args := make([]any, len(n.Args))
			for i, a := range n.Args {
				args[i] = exprNative(a)
			}

			call["args"] = args
		}

		if len(n.KwArgs) > 0 {
			kwargs := make([]any, len(n.KwArgs))
			for i, kw := range n.KwArgs {
				kwargs[i] = map[string]any{kw.Name: exprNative(kw.X)}
			}

			call["kwargs"] = kwargs
		}

		return map[string]any{"call": call}
	case *If:
		return map[string]any{"if": map[string]any{
			"cond": exprNative(n.Cond),
			"then": exprNative(n.Then),
			"else": exprNative(n.Else),
		}}
	case *List:
		elems := make([]any, len(n.Elems))
		for i, el := range n.Elems {
			elems[i] = exprNative(el)
		}

		return map[string]any{"list": elems}
	case *Map:
		entries := make([]any, len(n.Entries))
		for i, en := range n.Entries {
			entries[i] = map[string]any{
				"key": exprNative(en.Key),
				"val": exprNative(en.Val),
			}
		}

		return map[string]any{"map": entries}
	case *Dist:
		entries := make([]any, len(n.Entries))
		for i, en := range n.Entries {
			entries[i] = map[string]any{
				"key":    exprNative(en.Key),
				"weight": exprNative(en.Weight),
			}
		}

		return map[string]any{"distribution": entries}
	case *Empty:
		return map[string]any{"empty": true}
	default:
		return nil
	}
}

func valueNative(v Value) any {
	switch val := v.(type) {
	case None:
		return nil
	case Bool:
		return val.B
	case Num:
		if val.N.IsInt() {
			return val.N.Num()
		}

		return val.N.String()
	case Str:
		return val.S
	case Func:
		return map[string]any{
			"params": val.Def.Params,
			"body":   exprNative(val.Def.Body),
		}
	default:
		return v.String()
	}
}

func lvalueNative(lv LValue) any {
	m := map[string]any{"root": lv.Root}

	if lv.Vis != VisDefault {
		m["visibility"] = lv.Vis.String()
	}

	if len(lv.Path) > 0 {
		path := make([]any, len(lv.Path))

		for i, a := range lv.Path {
			if a.Name != "" {
				path[i] = a.Name
			} else {
				path[i] = exprNative(a.Index)
			}
		}

		m["path"] = path
	}

	return m
}

func writeExpr(b *strings.Builder, e Expr) {
	switch n := e.(type) {
	case *Val:
		writeValueLit(b, n.V)
	case *LVal:
		writeLValue(b, n.LV)
	case *BinOp:
		writeBinOp(b, n)
	case *Assign:
		writeLValue(b, n.LV)
		b.WriteString(" = ")
		writeExpr(b, n.X)
	case *Call:
		writeCall(b, n)
	case *If:
		b.WriteString("if ")
		writeExpr(b, n.Cond)
		b.WriteString(" then ")
		writeExpr(b, n.Then)
		b.WriteString(" else ")
		writeExpr(b, n.Else)
	case *List:
		b.WriteByte('[')

		for i, el := range n.Elems {
			if i > 0 {
				b.WriteString(", ")
			}

			writeExpr(b, el)
		}

		b.WriteByte(']')
	case *Map:
		if len(n.Entries) == 0 {
			b.WriteString("[:]")

			return
		}

		b.WriteByte('[')

		for i, en := range n.Entries {
			if i > 0 {
				b.WriteString(", ")
			}

			writeExpr(b, en.Key)
			b.WriteString(": ")
			writeExpr(b, en.Val)
		}

		b.WriteByte(']')
	case *Dist:
		if len(n.Entries) == 1 {
			writeSingleDist(b, n.Entries[0])

			return
		}

		b.WriteByte('[')

		for i, en := range n.Entries {
			if i > 0 {
				b.WriteString(" | ")
			}

			writeExpr(b, en.Key)
			b.WriteString(": ")
			writeExpr(b, en.Weight)
		}

		b.WriteByte(']')
	case *Empty:
	}
}

// writeSingleDist renders a one-entry distribution with an explicit pipe so
// the result re-parses as a distribution rather than a map. A weight merged
// into an addition splits back into one alternative per addend; a numeral
// weight gains a zero-weight alternative that folds away on re-parse.
func writeSingleDist(b *strings.Builder, en DistEntry) {
	b.WriteByte('[')
	writeExpr(b, en.Key)
	b.WriteString(": ")

	if add, ok := en.Weight.(*BinOp); ok && add.Op == OpAdd {
		writeExpr(b, add.X)
		b.WriteString(" | ")
		writeExpr(b, en.Key)
		b.WriteString(": ")
		writeExpr(b, add.Y)
	} else {
		writeExpr(b, en.Weight)
		b.WriteString(" | ")
		writeExpr(b, en.Key)
		b.WriteString(": 0")
	}

	b.WriteByte(']')
}

func writeBinOp(b *strings.Builder, n *BinOp) {
	if _, unary := n.Y.(*Empty); unary {
		b.WriteByte('(')

		if n.Op == OpNot {
			b.WriteString("not ")
		} else {
			b.WriteByte('-')
		}

		writeExpr(b, n.X)
		b.WriteByte(')')

		return
	}

	b.WriteByte('(')
	writeExpr(b, n.X)
	b.WriteByte(' ')
	b.WriteString(n.Op.String())
	b.WriteByte(' ')
	writeExpr(b, n.Y)
	b.WriteByte(')')
}

func writeCall(b *strings.Builder, n *Call) {
	writeExpr(b, n.Callee)
	b.WriteByte('(')

	count := 0

	for _, a := range n.Args {
		if count > 0 {
			b.WriteString(", ")
		}

		writeExpr(b, a)

		count++
	}

	for _, kw := range n.KwArgs {
		if count > 0 {
			b.WriteString(", ")
		}

		b.WriteString(kw.Name)
		b.WriteString(" = ")
		writeExpr(b, kw.X)

		count++
	}

	b.WriteByte(')')
}

func writeValueLit(b *strings.Builder, v Value) {
	switch val := v.(type) {
	case Num:
		b.WriteString(litRat(val.N))
	case Str:
		b.WriteString(quoteStr(val.S))
	case Func:
		b.WriteByte('{')

		for _, p := range val.Def.Params {
			b.WriteString(p)
			b.WriteByte(' ')
		}

		b.WriteString("; ")
		writeExpr(b, val.Def.Body)
		b.WriteString(" }")
	default:
		b.WriteString(v.String())
	}
}

// litRat renders a rational as a numeral the lexer accepts: whole numbers as
// bare digits, finite decimals otherwise. Every numeral the lexer scans has a
// finite decimal form; rationals without one arise only through evaluation
// and keep the num/den display form.
func litRat(r Rat) string {
	if r.IsInt() || r.Sign() < 0 {
		return r.String()
	}

	reduced := int64(r.Den())
	for reduced%2 == 0 {
		reduced /= 2
	}

	for reduced%5 == 0 {
		reduced /= 5
	}

	if reduced != 1 {
		return r.String()
	}

	num, den := int64(r.Num()), int64(r.Den())

	var b strings.Builder

	b.WriteString(strconv.FormatInt(num/den, 10))
	b.WriteByte('.')

	for rem := num % den; rem != 0; rem %= den {
		rem *= 10
		b.WriteByte(byte('0' + rem/den))
	}

	return b.String()
}

func writeLValue(b *strings.Builder, lv LValue) {
	if lv.Vis != VisDefault {
		b.WriteString(lv.Vis.String())
		b.WriteByte('.')
	}

	b.WriteString(lv.Root)

	for _, a := range lv.Path {
		b.WriteByte('.')

		if a.Name != "" {
			b.WriteString(a.Name)
		} else {
			writeExpr(b, a.Index)
		}
	}
}
