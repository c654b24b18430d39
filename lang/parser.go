package lang

// ParseString lexes and parses one logical line of source, producing exactly
// one expression tree or the first failure encountered.
func ParseString(source string) (Expr, error) {
	toks, err := Scan(source)
	if err != nil {
		return nil, err
	}

	return Parse(toks, source)
}

// Parse consumes a complete token sequence and produces one expression. The
// sequence must end with TokEnd immediately after the expression; trailing
// tokens fail with ErrTrailingInput. On failure no partial tree is returned.
func Parse(toks []Token, source string) (Expr, error) {
	p := &parser{toks: toks, src: source}

	e, err := p.expr()
	if err != nil {
		return nil, err
	}

	if tok := p.peek(); tok.Type != TokEnd {
		return nil, NewSyntaxError(ErrTrailingInput, p.src, tok.Pos).
			WithToken(tok)
	}

	return e, nil
}

// parser walks a materialized token sequence with single-token lookahead and
// one explicit backtracking point (the assignment lvalue). The parens
// counter gates the prefix-operator tier, which is reachable only inside a
// parenthesized subexpression.
type parser struct {
	toks   []Token
	i      int
	src    string
	parens int
}

func (p *parser) peek() Token { return p.toks[p.i] }

// peekAt returns the token n positions past the next one, clamped to the
// final End token.
func (p *parser) peekAt(n int) Token {
	if p.i+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}

	return p.toks[p.i+n]
}

func (p *parser) advance() Token {
	tok := p.toks[p.i]
	if tok.Type != TokEnd {
		p.i++
	}

	return tok
}

// match consumes the next token if it has the given type.
func (p *parser) match(t TokenType) bool {
	if p.peek().Type == t {
		p.advance()

		return true
	}

	return false
}

// need consumes the next token, failing unless it has the given type.
func (p *parser) need(t TokenType) (Token, error) {
	if tok := p.peek(); tok.Type != t {
		return Token{}, p.unexpected(tok)
	}

	return p.advance(), nil
}

// unexpected reports the offending token and its position.
func (p *parser) unexpected(tok Token) error {
	if tok.Type == TokEnd {
		return NewSyntaxError(ErrUnexpectedEnd, p.src, tok.Pos)
	}

	return NewSyntaxError(ErrUnexpectedToken, p.src, tok.Pos).WithToken(tok)
}

// expr is the loosest tier: a conditional with mandatory else, or expr0.
func (p *parser) expr() (Expr, error) {
	if !p.match(TokIf) {
		return p.expr0()
	}

	cond, err := p.expr()
	if err != nil {
		return nil, err
	}

	if _, err := p.need(TokThen); err != nil {
		return nil, err
	}

	then, err := p.expr()
	if err != nil {
		return nil, err
	}

	if _, err := p.need(TokElse); err != nil {
		return nil, err
	}

	els, err := p.expr()
	if err != nil {
		return nil, err
	}

	return &If{Cond: cond, Then: then, Else: els}, nil
}

// expr0 resolves the assignment / comparison / call / fallthrough tier.
// Assignment is the single backtracking point: an lvalue followed by "="
// commits, anything else rewinds. The other three alternatives share one
// expr1 parse, then dispatch on the following token: a comparison operator
// yields exactly one non-chaining comparison, an opening paren yields a
// call, and otherwise the expr1 stands alone.
func (p *parser) expr0() (Expr, error) {
	if lv, ok := p.tryAssignTarget(); ok {
		rhs, err := p.expr()
		if err != nil {
			return nil, err
		}

		return &Assign{LV: lv, X: rhs}, nil
	}

	x, err := p.expr1()
	if err != nil {
		return nil, err
	}

	if op, ok := cmpOp(p.peek().Type); ok {
		p.advance()

		y, err := p.expr1()
		if err != nil {
			return nil, err
		}

		return &BinOp{Op: op, X: x, Y: y}, nil
	}

	if p.peek().Type == TokLParen {
		return p.call(x)
	}

	return x, nil
}

// tryAssignTarget attempts to parse "lvalue =", rewinding entirely unless
// both parts are present.
func (p *parser) tryAssignTarget() (LValue, bool) {
	switch p.peek().Type {
	case TokIdent, TokGlobal, TokLocal:
	default:
		return LValue{}, false
	}

	save := p.i

	lv, err := p.lvalue()
	if err != nil || !p.match(TokAssign) {
		p.i = save

		return LValue{}, false
	}

	return lv, true
}

func cmpOp(t TokenType) (Op, bool) {
	switch t {
	case TokIs:
		return OpEq, true
	case TokIsnt:
		return OpNe, true
	case TokLt:
		return OpLt, true
	case TokLe:
		return OpLe, true
	case TokGt:
		return OpGt, true
	case TokGe:
		return OpGe, true
	default:
		return 0, false
	}
}

// call parses the parenthesized argument list for an already-parsed callee.
// Arguments are positional until the first "name =" pair; from there on
// every argument must be a keyword pair, so a positional argument after a
// keyword argument fails to parse.
func (p *parser) call(callee Expr) (Expr, error) {
	if _, err := p.need(TokLParen); err != nil {
		return nil, err
	}

	node := &Call{Callee: callee}

	if p.match(TokRParen) {
		return node, nil
	}

	keyword := false

	for {
		if !keyword &&
			p.peek().Type == TokIdent && p.peekAt(1).Type == TokAssign {
			keyword = true
		}

		if keyword {
			name, err := p.need(TokIdent)
			if err != nil {
				return nil, err
			}

			if _, err := p.need(TokAssign); err != nil {
				return nil, err
			}

			x, err := p.expr1()
			if err != nil {
				return nil, err
			}

			node.KwArgs = append(node.KwArgs, KwArg{Name: name.Name, X: x})
		} else {
			x, err := p.expr1()
			if err != nil {
				return nil, err
			}

			node.Args = append(node.Args, x)
		}

		if p.match(TokComma) {
			if p.match(TokRParen) {
				return node, nil
			}

			continue
		}

		if _, err := p.need(TokRParen); err != nil {
			return nil, err
		}

		return node, nil
	}
}

// expr1 is the left-associative boolean tier.
func (p *parser) expr1() (Expr, error) {
	x, err := p.expr2()
	if err != nil {
		return nil, err
	}

	for {
		var op Op

		switch p.peek().Type {
		case TokAnd:
			op = OpAnd
		case TokOr:
			op = OpOr
		case TokXor:
			op = OpXor
		default:
			return x, nil
		}

		p.advance()

		y, err := p.expr2()
		if err != nil {
			return nil, err
		}

		x = &BinOp{Op: op, X: x, Y: y}
	}
}

// expr2 is the left-associative additive tier.
func (p *parser) expr2() (Expr, error) {
	x, err := p.expr3()
	if err != nil {
		return nil, err
	}

	for {
		var op Op

		switch p.peek().Type {
		case TokPlus:
			op = OpAdd
		case TokMinus:
			op = OpSub
		default:
			return x, nil
		}

		p.advance()

		y, err := p.expr3()
		if err != nil {
			return nil, err
		}

		x = &BinOp{Op: op, X: x, Y: y}
	}
}

// expr3 is the left-associative multiplicative tier.
func (p *parser) expr3() (Expr, error) {
	x, err := p.expr4()
	if err != nil {
		return nil, err
	}

	for {
		var op Op

		switch p.peek().Type {
		case TokStar:
			op = OpMul
		case TokSlash:
			op = OpDiv
		default:
			return x, nil
		}

		p.advance()

		y, err := p.expr4()
		if err != nil {
			return nil, err
		}

		x = &BinOp{Op: op, X: x, Y: y}
	}
}

// expr4 is right-associative exponentiation.
func (p *parser) expr4() (Expr, error) {
	x, err := p.expr5()
	if err != nil {
		return nil, err
	}

	if !p.match(TokCaret) {
		return x, nil
	}

	y, err := p.expr4()
	if err != nil {
		return nil, err
	}

	return &BinOp{Op: OpPow, X: x, Y: y}, nil
}

// expr5 is the prefix tier: boolean negation and arithmetic negation, each
// a BinOp with the Empty sentinel as right operand. The tier activates only
// inside a parenthesized subexpression; a bare leading "-" or "not" at top
// level is rejected by the atom tier below.
func (p *parser) expr5() (Expr, error) {
	if p.parens > 0 {
		var op Op

		switch p.peek().Type {
		case TokNot:
			op = OpNot
		case TokMinus:
			op = OpNeg
		default:
			return p.expr6()
		}

		p.advance()

		x, err := p.expr5()
		if err != nil {
			return nil, err
		}

		return &BinOp{Op: op, X: x, Y: &Empty{}}, nil
	}

	return p.expr6()
}

// expr6 parses the atomic forms: literals, lvalues, collection literals,
// function literals, and parenthesized subexpressions.
func (p *parser) expr6() (Expr, error) {
	switch tok := p.peek(); tok.Type {
	case TokBool:
		p.advance()

		return &Val{V: Bool{B: tok.Bool}}, nil
	case TokNum:
		p.advance()

		return &Val{V: Num{N: tok.Num}}, nil
	case TokStr:
		p.advance()

		return &Val{V: Str{S: tok.Str}}, nil
	case TokNone:
		p.advance()

		return &Val{V: None{}}, nil
	case TokIdent, TokGlobal, TokLocal:
		lv, err := p.lvalue()
		if err != nil {
			return nil, err
		}

		return &LVal{LV: lv}, nil
	case TokLBracket:
		return p.collection()
	case TokLBrace:
		return p.fundef()
	case TokLParen:
		p.advance()

		p.parens++

		e, err := p.expr()
		if err != nil {
			return nil, err
		}

		p.parens--

		if _, err := p.need(TokRParen); err != nil {
			return nil, err
		}

		return e, nil
	default:
		return nil, p.unexpected(tok)
	}
}

// lvalue parses an optional visibility qualifier, a root identifier, and a
// chain of dot accessors. Each accessor is an identifier field or a literal
// index; nothing is resolved here.
func (p *parser) lvalue() (LValue, error) {
	var lv LValue

	switch p.peek().Type {
	case TokGlobal:
		if p.peekAt(1).Type == TokDot {
			p.advance()
			p.advance()

			lv.Vis = VisGlobal
		}
	case TokLocal:
		if p.peekAt(1).Type == TokDot {
			p.advance()
			p.advance()

			lv.Vis = VisLocal
		}
	}

	root, err := p.need(TokIdent)
	if err != nil {
		return LValue{}, err
	}

	lv.Root = root.Name

	for p.match(TokDot) {
		switch tok := p.peek(); tok.Type {
		case TokIdent:
			p.advance()

			lv.Path = append(lv.Path, Accessor{Name: tok.Name})
		case TokBool:
			p.advance()

			lv.Path = append(lv.Path,
				Accessor{Index: &Val{V: Bool{B: tok.Bool}}})
		case TokNum:
			p.advance()

			lv.Path = append(lv.Path,
				Accessor{Index: &Val{V: Num{N: tok.Num}}})
		case TokStr:
			p.advance()

			lv.Path = append(lv.Path,
				Accessor{Index: &Val{V: Str{S: tok.Str}}})
		case TokNone:
			p.advance()

			lv.Path = append(lv.Path, Accessor{Index: &Val{V: None{}}})
		default:
			return LValue{}, p.unexpected(tok)
		}
	}

	return lv, nil
}

// collection parses the bracket literal and resolves its three-way
// ambiguity by the first separator observed: a lone colon is the empty map,
// a colon after the first element commits to map or distribution depending
// on the separator that follows the pair, a pipe commits to distribution,
// and anything else is a list.
func (p *parser) collection() (Expr, error) {
	if _, err := p.need(TokLBracket); err != nil {
		return nil, err
	}

	if p.match(TokRBracket) {
		return &List{}, nil
	}

	if p.match(TokColon) {
		p.match(TokComma)

		if _, err := p.need(TokRBracket); err != nil {
			return nil, err
		}

		return &Map{}, nil
	}

	first, err := p.expr()
	if err != nil {
		return nil, err
	}

	switch {
	case p.match(TokColon):
		val, err := p.expr()
		if err != nil {
			return nil, err
		}

		if p.match(TokPipe) {
			return p.distribution(first, val)
		}

		return p.mapLiteral(first, val)
	case p.match(TokPipe):
		return p.distribution(first, one())
	default:
		return p.list(first)
	}
}

// one is the implicit weight of a bare distribution alternative.
func one() Expr {
	return &Val{V: Num{N: RatFromInt(1)}}
}

// list parses the remaining comma-separated elements of a list literal.
func (p *parser) list(first Expr) (Expr, error) {
	node := &List{Elems: []Expr{first}}

	for p.match(TokComma) {
		if p.match(TokRBracket) {
			return node, nil
		}

		e, err := p.expr()
		if err != nil {
			return nil, err
		}

		node.Elems = append(node.Elems, e)
	}

	if _, err := p.need(TokRBracket); err != nil {
		return nil, err
	}

	return node, nil
}

// mapLiteral parses the remaining key:value pairs of a map literal.
// Duplicate keys overwrite on insert, last write wins.
func (p *parser) mapLiteral(key, val Expr) (Expr, error) {
	node := &Map{}
	node.Insert(key, val)

	for p.match(TokComma) {
		if p.match(TokRBracket) {
			return node, nil
		}

		k, err := p.expr()
		if err != nil {
			return nil, err
		}

		if _, err := p.need(TokColon); err != nil {
			return nil, err
		}

		v, err := p.expr()
		if err != nil {
			return nil, err
		}

		node.Insert(k, v)
	}

	if _, err := p.need(TokRBracket); err != nil {
		return nil, err
	}

	return node, nil
}

// distribution parses the remaining pipe-separated alternatives after the
// first. Each alternative is a bare expression with implicit weight one or
// a key:weight pair; duplicate keys merge by summing weights.
func (p *parser) distribution(key, weight Expr) (Expr, error) {
	node := &Dist{}
	node.Insert(key, weight)

	for {
		k, err := p.expr()
		if err != nil {
			return nil, err
		}

		w := one()

		if p.match(TokColon) {
			if w, err = p.expr(); err != nil {
				return nil, err
			}
		}

		node.Insert(k, w)

		if p.match(TokPipe) {
			continue
		}

		if _, err := p.need(TokRBracket); err != nil {
			return nil, err
		}

		return node, nil
	}
}

// fundef parses a function literal: zero or more parameter identifiers, a
// semicolon, and the body expression. The result is an ordinary embeddable
// value, not a distinct expression kind.
func (p *parser) fundef() (Expr, error) {
	if _, err := p.need(TokLBrace); err != nil {
		return nil, err
	}

	var params []string

	for p.peek().Type == TokIdent {
		params = append(params, p.advance().Name)
	}

	if _, err := p.need(TokSemi); err != nil {
		return nil, err
	}

	body, err := p.expr()
	if err != nil {
		return nil, err
	}

	if _, err := p.need(TokRBrace); err != nil {
		return nil, err
	}

	return &Val{V: Func{Def: FunDef{Params: params, Body: body}}}, nil
}
