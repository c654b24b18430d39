package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rollerlang/roller/lang"
	"github.com/rollerlang/roller/log"
)

// Eval parses and evaluates expressions, one per line, against a single
// shared environment, printing each non-void result to stdout.
type Eval struct {
	Exprs  []string `arg:"" help:"Expression(s) to evaluate"       name:"expr" optional:""`
	Source string   `       help:"Source input file or '-' for stdin"          default:"-" short:"f"`
}

// Run executes the eval command.
func (e *Eval) Run(ctx context.Context) (err error) {
	_, cancel := context.WithCancelCause(ctx)

	defer func(err *error) {
		cancel(*err)
	}(&err)

	lines, err := gatherLines(e.Exprs, e.Source)
	if err != nil {
		return err
	}

	interp := lang.NewInterp()

	for _, line := range lines {
		expr, err := lang.ParseString(line)
		if err != nil {
			return lang.WrapError(err).
				With(slog.String("command", "eval"))
		}

		if DebugFrom(ctx) {
			log.DebugContext(ctx, "parsed",
				slog.String("expr", lang.FormatExpr(expr)))

			if err := lang.FormatYAML(ctx, Stdout(ctx), expr, 2); err != nil {
				return ErrYAMLMarshal.Wrap(err)
			}
		}

		result, err := interp.Eval(expr)
		if err != nil {
			return lang.WrapError(err).
				With(
					slog.String("command", "eval"),
					slog.String("input", line),
				)
		}

		if _, void := result.(lang.Void); !void {
			fmt.Fprintln(Stdout(ctx), result.String())
		}
	}

	return nil
}
