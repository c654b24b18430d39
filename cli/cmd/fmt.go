package cmd

import (
	"context"

	"github.com/rollerlang/roller/lang"
)

// Fmt parses expressions and prints their syntax trees without evaluating
// them. Native output reproduces surface syntax; json and yaml output dump
// the tree structure.
type Fmt struct {
	Exprs  []string `arg:"" help:"Expression(s) to format"          name:"expr"                          optional:""`
	Source string   `       help:"Source input file or '-' for stdin"            default:"-"             short:"f"`
	Format string   `       help:"Output format"                                 default:"native"        enum:"native,json,yaml" short:"o"`
	Indent int      `       help:"Indentation width (0 for compact)"             default:"2"`
}

// Run executes the fmt command.
func (f *Fmt) Run(ctx context.Context) (err error) {
	_, cancel := context.WithCancelCause(ctx)

	defer func(err *error) {
		cancel(*err)
	}(&err)

	lines, err := gatherLines(f.Exprs, f.Source)
	if err != nil {
		return err
	}

	out := Stdout(ctx)

	for _, line := range lines {
		expr, err := lang.ParseString(line)
		if err != nil {
			return lang.WrapError(err)
		}

		switch f.Format {
		case "json":
			if err := lang.FormatJSON(ctx, out, expr, f.Indent); err != nil {
				return ErrJSONMarshal.Wrap(err)
			}
		case "yaml":
			if err := lang.FormatYAML(ctx, out, expr, f.Indent); err != nil {
				return ErrYAMLMarshal.Wrap(err)
			}
		default:
			if err := lang.Format(ctx, out, expr); err != nil {
				return err
			}
		}
	}

	return nil
}
