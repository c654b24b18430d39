package repl

import (
	"unicode/utf8"

	"github.com/sahilm/fuzzy"

	"github.com/rollerlang/roller/lang"
)

// langWords are the fixed spellings offered alongside bound variable names.
var langWords = []string{
	"not", "is", "isnt", "and", "or", "xor",
	"if", "then", "else", "global", "local", "none",
	"true", "false",
}

// directives are the interpreter commands recognized at the prompt.
var directives = []string{"#debug", "#help", "#quit"}

// isWordBoundary reports whether the rune delimits a word for completion
// purposes: whitespace, the member-access dot, and operator or bracket
// characters.
func isWordBoundary(r rune) bool {
	switch r {
	case '.', ' ', '\t',
		'(', ')', '[', ']', '{', '}',
		'+', '-', '*', '/', '^',
		'<', '>', '=', '|', ',', ':', ';':
		return true
	}

	return false
}

// wordBounds returns the word at the cursor position and its byte
// boundaries within input. The word is empty when the cursor sits on a
// boundary.
func wordBounds(input string, cursor int) (word string, start, end int) {
	if cursor > len(input) {
		cursor = len(input)
	}

	start = cursor

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) && r != '#' {
			break
		}

		start -= size
	}

	end = cursor

	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// candidates returns the completion candidates for the current session:
// directives, language keywords, and every name bound in the environment.
func candidates(env *lang.Env) []string {
	names := env.Names()

	out := make([]string, 0, len(directives)+len(langWords)+len(names))
	out = append(out, directives...)
	out = append(out, langWords...)
	out = append(out, names...)

	return out
}

// complete returns the candidates fuzzy-matched against the word at the
// cursor, best match first. An empty word matches nothing.
func complete(env *lang.Env, input string, cursor int) fuzzy.Matches {
	word, _, _ := wordBounds(input, cursor)
	if word == "" {
		return nil
	}

	return fuzzy.Find(word, candidates(env))
}
