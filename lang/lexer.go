package lang

import (
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// maxCommentDepth is the deepest block-comment nesting the lexer accepts.
// Opening one more comment inside a span already nested this deep fails with
// ErrCommentNesting.
const maxCommentDepth = 255

// Scan converts source into its complete token sequence, ending with TokEnd.
// Comments and whitespace are consumed and never emitted. The first lexical
// failure aborts the scan; no partial sequence is returned.
func Scan(source string) ([]Token, error) {
	lx := &lexer{src: source, line: 1, col: 1}

	// One token per few characters is a fair starting estimate.
	toks := make([]Token, 0, len(source)/4+1)

	for {
		tok, err := lx.next()
		if err != nil {
			return nil, err
		}

		toks = append(toks, tok)

		if tok.Type == TokEnd {
			return toks, nil
		}
	}
}

// lexer is the scanning state for one pass over one source string.
type lexer struct {
	src  string
	off  int // byte offset of the next rune
	line int
	col  int
}

func (lx *lexer) eof() bool { return lx.off >= len(lx.src) }

// peek returns the next rune without consuming it.
func (lx *lexer) peek() rune {
	r, _ := utf8.DecodeRuneInString(lx.src[lx.off:])

	return r
}

// peekAt returns the rune n runes past the next one, or utf8.RuneError past
// end of input.
func (lx *lexer) peekAt(n int) rune {
	off := lx.off
	for ; n > 0 && off < len(lx.src); n-- {
		_, size := utf8.DecodeRuneInString(lx.src[off:])
		off += size
	}

	r, _ := utf8.DecodeRuneInString(lx.src[off:])

	return r
}

// advance consumes one rune, tracking line and column.
func (lx *lexer) advance() rune {
	r, size := utf8.DecodeRuneInString(lx.src[lx.off:])
	lx.off += size

	if r == '\n' {
		lx.line++
		lx.col = 1
	} else {
		lx.col++
	}

	return r
}

func (lx *lexer) pos() Pos { return Pos{Line: lx.line, Col: lx.col} }

func (lx *lexer) fail(err error, pos Pos) error {
	return NewSyntaxError(err, lx.src, pos)
}

// next produces the next token, consuming any leading whitespace and
// comments.
func (lx *lexer) next() (Token, error) {
	if err := lx.skip(); err != nil {
		return Token{}, err
	}

	pos := lx.pos()

	if lx.eof() {
		return Token{Type: TokEnd, Pos: pos}, nil
	}

	r := lx.peek()

	switch {
	case r == '_' || unicode.IsLetter(r):
		return lx.scanWord(pos), nil
	case unicode.IsDigit(r):
		return lx.scanNumeral(pos)
	case r == '"':
		return lx.scanString(pos)
	default:
		return lx.scanOperator(pos)
	}
}

// skip consumes whitespace and comments until the next token boundary.
func (lx *lexer) skip() error {
	for !lx.eof() {
		switch r := lx.peek(); {
		case unicode.IsSpace(r):
			lx.advance()
		case r == '/' && lx.peekAt(1) == '/':
			if err := lx.skipLineComment(); err != nil {
				return err
			}
		case r == '/' && lx.peekAt(1) == '*':
			if err := lx.skipBlockComment(); err != nil {
				return err
			}
		default:
			return nil
		}
	}

	return nil
}

// skipLineComment discards from "//" through the terminating newline. A line
// comment cut off by end of input is unterminated.
func (lx *lexer) skipLineComment() error {
	start := lx.pos()
	lx.advance()
	lx.advance()

	for !lx.eof() {
		if lx.advance() == '\n' {
			return nil
		}
	}

	return lx.fail(ErrUnterminatedComment, start)
}

// skipBlockComment discards a nestable block comment. The comment ends only
// when every opened "/*" has been matched by "*/".
func (lx *lexer) skipBlockComment() error {
	start := lx.pos()
	lx.advance()
	lx.advance()

	depth := 1

	for !lx.eof() {
		switch r := lx.peek(); {
		case r == '/' && lx.peekAt(1) == '*':
			if depth == maxCommentDepth {
				return lx.fail(ErrCommentNesting, lx.pos())
			}

			depth++

			lx.advance()
			lx.advance()
		case r == '*' && lx.peekAt(1) == '/':
			depth--

			lx.advance()
			lx.advance()

			if depth == 0 {
				return nil
			}
		default:
			lx.advance()
		}
	}

	return lx.fail(ErrUnterminatedComment, start)
}

// scanWord consumes an identifier, resolving reserved spellings to keyword
// or boolean tokens.
func (lx *lexer) scanWord(pos Pos) Token {
	start := lx.off

	for !lx.eof() {
		r := lx.peek()
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}

		lx.advance()
	}

	word := lx.src[start:lx.off]

	switch word {
	case "true", "false":
		return Token{Type: TokBool, Pos: pos, Bool: word == "true"}
	}

	if t, ok := keywords[word]; ok {
		return Token{Type: t, Pos: pos}
	}

	return Token{Type: TokIdent, Pos: pos, Name: word}
}

// scanNumeral consumes a decimal numeral with optional fractional part and
// exponent, converting it to an exact rational. Values whose reduced form
// does not fit the bounded width fail with ErrNumeralOverflow.
func (lx *lexer) scanNumeral(pos Pos) (Token, error) {
	start := lx.off

	for !lx.eof() && unicode.IsDigit(lx.peek()) {
		lx.advance()
	}

	fracDigits := 0

	if lx.peek() == '.' && unicode.IsDigit(lx.peekAt(1)) {
		lx.advance()

		for !lx.eof() && unicode.IsDigit(lx.peek()) {
			lx.advance()
			fracDigits++
		}
	}

	exp := 0

	if r := lx.peek(); r == 'e' || r == 'E' {
		if n := lx.expWidth(); n > 0 {
			lx.advance() // e

			neg := false
			if r := lx.peek(); r == '+' || r == '-' {
				neg = r == '-'

				lx.advance()
			}

			for !lx.eof() && unicode.IsDigit(lx.peek()) {
				if exp < 10000 {
					exp = exp*10 + int(lx.peek()-'0')
				}

				lx.advance()
			}

			if neg {
				exp = -exp
			}
		}
	}

	rat, err := ratFromDecimal(lx.src[start:lx.off], fracDigits, exp)
	if err != nil {
		return Token{}, lx.fail(err, pos)
	}

	return Token{Type: TokNum, Pos: pos, Num: rat}, nil
}

// expWidth reports how many runes a well-formed exponent suffix would
// occupy at the current position, or 0 when the "e" belongs to a following
// identifier instead.
func (lx *lexer) expWidth() int {
	n := 1 // e or E

	if r := lx.peekAt(n); r == '+' || r == '-' {
		n++
	}

	if !unicode.IsDigit(lx.peekAt(n)) {
		return 0
	}

	return n + 1
}

// ratFromDecimal builds the exact rational for a scanned numeral: its digit
// text (decimal point included), the count of fractional digits, and the
// exponent value.
func ratFromDecimal(text string, fracDigits, exp int) (Rat, error) {
	var mant int64

	for _, r := range text {
		switch {
		case unicode.IsDigit(r):
			d := int64(r - '0')
			if mant > (math.MaxInt64-d)/10 {
				return Rat{}, ErrNumeralOverflow
			}

			mant = mant*10 + d
		case r == 'e' || r == 'E':
			// Digits past this point belong to the exponent.
			return ratScale10(mant, exp-fracDigits)
		}
	}

	return ratScale10(mant, exp-fracDigits)
}

// ratScale10 returns mant * 10^exp10 as a reduced rational.
func ratScale10(mant int64, exp10 int) (Rat, error) {
	if mant == 0 {
		return RatFromInt(0), nil
	}

	den := int64(1)

	for ; exp10 > 0; exp10-- {
		if mant > math.MaxInt64/10 {
			return Rat{}, ErrNumeralOverflow
		}

		mant *= 10
	}

	for ; exp10 < 0; exp10++ {
		if den > math.MaxInt64/10 {
			return Rat{}, ErrNumeralOverflow
		}

		den *= 10
	}

	return makeRat(mant, den)
}

// scanString consumes a double-quoted string literal and decodes its escape
// sequences. Scanning is greedy over backslash pairs, matching the pattern
//
//	"(?:\\.|[^"])*"
//
// so a backslash-quote pair inside the literal continues the string. When
// greed runs past end of input, the scan backtracks to the last such pair
// and lets its quote terminate the literal instead, leaving the backslash as
// literal content. A string with no recoverable closing quote is
// unterminated.
func (lx *lexer) scanString(pos Pos) (Token, error) {
	lx.advance() // opening quote

	contentStart := lx.off

	// Byte offset of the backslash of the last scanned \" pair, with the
	// line/col state needed to resume there.
	lastEscQuote := -1

	var resume lexer

	for !lx.eof() {
		switch r := lx.peek(); r {
		case '"':
			raw := lx.src[contentStart:lx.off]
			lx.advance()

			return Token{Type: TokStr, Pos: pos, Str: unescape(raw)}, nil
		case '\\':
			if lx.peekAt(1) == '"' {
				lastEscQuote = lx.off
				resume = *lx
			}

			lx.advance()

			if !lx.eof() {
				lx.advance()
			}
		default:
			lx.advance()
		}
	}

	if lastEscQuote < 0 {
		return Token{}, lx.fail(ErrUnterminatedString, pos)
	}

	// Backtrack: the backslash becomes content, the quote closes the
	// literal, and scanning resumes after it.
	*lx = resume
	lx.advance() // backslash
	raw := lx.src[contentStart:lx.off]
	lx.advance() // closing quote

	return Token{Type: TokStr, Pos: pos, Str: unescape(raw)}, nil
}

// unescape decodes backslash escapes in raw string content. Recognized
// escapes map to their control characters; an unrecognized escape yields the
// escaped character itself, and a trailing lone backslash stays a backslash.
func unescape(raw string) string {
	if !strings.ContainsRune(raw, '\\') {
		return raw
	}

	var b strings.Builder

	b.Grow(len(raw))

	esc := false

	for _, r := range raw {
		if !esc {
			if r == '\\' {
				esc = true
			} else {
				b.WriteRune(r)
			}

			continue
		}

		esc = false

		switch r {
		case 'n':
			b.WriteRune('\n')
		case 't':
			b.WriteRune('\t')
		case 'r':
			b.WriteRune('\r')
		default:
			b.WriteRune(r)
		}
	}

	if esc {
		b.WriteRune('\\')
	}

	return b.String()
}

// scanOperator consumes punctuation, matching multi-character spellings
// before their single-character prefixes.
func (lx *lexer) scanOperator(pos Pos) (Token, error) {
	r := lx.advance()

	two := func(next rune, twoType, oneType TokenType) Token {
		if lx.peek() == next {
			lx.advance()

			return Token{Type: twoType, Pos: pos}
		}

		return Token{Type: oneType, Pos: pos}
	}

	switch r {
	case '(':
		return Token{Type: TokLParen, Pos: pos}, nil
	case ')':
		return Token{Type: TokRParen, Pos: pos}, nil
	case '[':
		return Token{Type: TokLBracket, Pos: pos}, nil
	case ']':
		return Token{Type: TokRBracket, Pos: pos}, nil
	case '{':
		return Token{Type: TokLBrace, Pos: pos}, nil
	case '}':
		return Token{Type: TokRBrace, Pos: pos}, nil
	case '.':
		return Token{Type: TokDot, Pos: pos}, nil
	case ',':
		return Token{Type: TokComma, Pos: pos}, nil
	case ':':
		return Token{Type: TokColon, Pos: pos}, nil
	case ';':
		return Token{Type: TokSemi, Pos: pos}, nil
	case '|':
		return Token{Type: TokPipe, Pos: pos}, nil
	case '+':
		return Token{Type: TokPlus, Pos: pos}, nil
	case '*':
		return Token{Type: TokStar, Pos: pos}, nil
	case '/':
		return Token{Type: TokSlash, Pos: pos}, nil
	case '^':
		return Token{Type: TokCaret, Pos: pos}, nil
	case '=':
		return two('>', TokFatArrow, TokAssign), nil
	case '-':
		return two('>', TokArrow, TokMinus), nil
	case '<':
		if lx.peek() == '-' {
			lx.advance()

			return Token{Type: TokLArrow, Pos: pos}, nil
		}

		return two('=', TokLe, TokLt), nil
	case '>':
		return two('=', TokGe, TokGt), nil
	default:
		serr := NewSyntaxError(ErrUnrecognizedChar, lx.src, pos)
		serr.Token = strconv.Quote(string(r))

		return Token{}, serr
	}
}
