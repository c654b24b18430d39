package lang

import "strconv"

// TokenType identifies the kind of a lexer token.
type TokenType int

const (
	// TokEnd marks input exhaustion. It is always the final token of a scan.
	TokEnd TokenType = iota

	// Brackets
	TokLParen   // (
	TokRParen   // )
	TokLBracket // [
	TokRBracket // ]
	TokLBrace   // {
	TokRBrace   // }

	// Arrows
	TokArrow    // ->
	TokLArrow   // <-
	TokFatArrow // =>

	// Single-character operators and separators
	TokAssign // =
	TokMinus  // -
	TokDot    // .
	TokComma  // ,
	TokColon  // :
	TokSemi   // ;
	TokPipe   // |

	// Arithmetic operators
	TokPlus  // +
	TokStar  // *
	TokSlash // /
	TokCaret // ^

	// Comparison operators
	TokLt // <
	TokLe // <=
	TokGt // >
	TokGe // >=

	// Keywords
	TokNot    // not
	TokIs     // is
	TokIsnt   // isnt
	TokAnd    // and
	TokOr     // or
	TokXor    // xor
	TokIf     // if
	TokThen   // then
	TokElse   // else
	TokGlobal // global
	TokLocal  // local
	TokVar    // var
	TokNone   // none

	// Literal-carrying variants
	TokBool
	TokNum
	TokStr

	// Identifiers
	TokIdent
)

// tokenNames maps token types to their display spelling for diagnostics.
var tokenNames = map[TokenType]string{
	TokEnd:      "end of input",
	TokLParen:   `"("`,
	TokRParen:   `")"`,
	TokLBracket: `"["`,
	TokRBracket: `"]"`,
	TokLBrace:   `"{"`,
	TokRBrace:   `"}"`,
	TokArrow:    `"->"`,
	TokLArrow:   `"<-"`,
	TokFatArrow: `"=>"`,
	TokAssign:   `"="`,
	TokMinus:    `"-"`,
	TokDot:      `"."`,
	TokComma:    `","`,
	TokColon:    `":"`,
	TokSemi:     `";"`,
	TokPipe:     `"|"`,
	TokPlus:     `"+"`,
	TokStar:     `"*"`,
	TokSlash:    `"/"`,
	TokCaret:    `"^"`,
	TokLt:       `"<"`,
	TokLe:       `"<="`,
	TokGt:       `">"`,
	TokGe:       `">="`,
	TokNot:      `"not"`,
	TokIs:       `"is"`,
	TokIsnt:     `"isnt"`,
	TokAnd:      `"and"`,
	TokOr:       `"or"`,
	TokXor:      `"xor"`,
	TokIf:       `"if"`,
	TokThen:     `"then"`,
	TokElse:     `"else"`,
	TokGlobal:   `"global"`,
	TokLocal:    `"local"`,
	TokVar:      `"var"`,
	TokNone:     `"none"`,
	TokBool:     "boolean literal",
	TokNum:      "numeral",
	TokStr:      "string literal",
	TokIdent:    "identifier",
}

// String returns a human-readable spelling of the token type.
func (t TokenType) String() string {
	if s, ok := tokenNames[t]; ok {
		return s
	}

	return "token(" + strconv.Itoa(int(t)) + ")"
}

// Pos is a 1-based source position.
type Pos struct {
	Line int
	Col  int
}

// String formats the position as "line:col".
func (p Pos) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Col)
}

// Token is one lexical unit. Literal payloads occupy the field matching the
// token type; all other fields are zero. Tokens are immutable once produced.
type Token struct {
	Type TokenType
	Pos  Pos

	Bool bool   // TokBool
	Num  Rat    // TokNum
	Str  string // TokStr, already unescaped
	Name string // TokIdent
}

// String returns the display spelling of the token for diagnostics.
func (t Token) String() string {
	switch t.Type {
	case TokBool:
		return strconv.FormatBool(t.Bool)
	case TokNum:
		return t.Num.String()
	case TokStr:
		return strconv.Quote(t.Str)
	case TokIdent:
		return "identifier " + strconv.Quote(t.Name)
	default:
		return t.Type.String()
	}
}

// keywords maps reserved spellings to their dedicated token types.
// true and false lex as TokBool rather than keyword tokens.
var keywords = map[string]TokenType{
	"not":    TokNot,
	"is":     TokIs,
	"isnt":   TokIsnt,
	"and":    TokAnd,
	"or":     TokOr,
	"xor":    TokXor,
	"if":     TokIf,
	"then":   TokThen,
	"else":   TokElse,
	"global": TokGlobal,
	"local":  TokLocal,
	"var":    TokVar,
	"none":   TokNone,
}
