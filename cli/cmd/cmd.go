// Package cmd implements the roller CLI subcommands.
package cmd

import (
	"bufio"
	"context"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
)

// contextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given
// kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// Stdout returns the output writer of the active kong context, falling
// back to os.Stdout outside a parsed invocation (tests, mostly).
func Stdout(ctx context.Context) io.Writer {
	if ktx := kongContextFrom(ctx); ktx != nil {
		return ktx.Stdout
	}

	return os.Stdout
}

// debugKey is used to store the --debug flag in [context.Context].
type debugKey struct{}

// WithDebug returns a new context.Context carrying the debug flag, which
// makes commands print the parsed syntax tree before evaluating.
func WithDebug(ctx context.Context, debug bool) context.Context {
	return context.WithValue(ctx, debugKey{}, debug)
}

// DebugFrom reports whether the debug flag is set in ctx.
func DebugFrom(ctx context.Context) bool {
	debug, _ := ctx.Value(debugKey{}).(bool)

	return debug
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// gatherLines collects the input lines for a command: the argument
// expressions when given, otherwise the non-blank lines of the source file
// ("-" reads stdin). Lines holding only whitespace are skipped.
func gatherLines(exprs []string, source string) ([]string, error) {
	if len(exprs) > 0 {
		return exprs, nil
	}

	if source == "" {
		source = stdinSource
	}

	file := os.Stdin

	if source != stdinSource {
		var err error

		file, err = os.Open(source)
		if err != nil {
			return nil, ErrReadSource.Wrap(err)
		}
		defer file.Close()
	}

	var lines []string

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, ErrReadSource.Wrap(err)
	}

	return lines, nil
}
