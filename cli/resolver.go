package cli

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/rollerlang/roller/lang"
	"github.com/rollerlang/roller/log"
)

// resolve returns a [kong.ConfigurationLoader] that parses config files
// written as a roller map literal. It can be used with [kong.Configuration]:
//
//	kong.Configuration(resolve(ctx), "/path/to/config.roller")
//
// The config file holds a single map literal from string keys to literal
// values. Flag names with hyphens (e.g., "log-level") may use underscores in
// the config file (e.g., "log_level"). String values are quoted, booleans
// and numerals are not.
//
// Example config file:
//
//	[
//	  "log_level": "debug",
//	  "log_format": "text",
//	  "log_pretty": true,
//	]
//
// This configuration will be applied to flags:
//
//	--log-level=debug
//	--log-format=text
//	--log-pretty=true
//
// Command-line flags override config file values.
func resolve(ctx context.Context) func(r io.Reader) (kong.Resolver, error) {
	return func(r io.Reader) (kong.Resolver, error) {
		src, err := io.ReadAll(r)
		if err != nil {
			return config{}, nil //nolint:nilerr
		}

		text := strings.TrimSpace(string(src))
		if text == "" {
			return config{}, nil
		}

		expr, err := lang.ParseString(text)
		if err != nil {
			log.WarnContext(ctx, "config file ignored",
				slog.Any("error", lang.WrapError(err)))

			return config{}, nil
		}

		m, ok := expr.(*lang.Map)
		if !ok {
			log.WarnContext(ctx, "config file is not a map literal")

			return config{}, nil
		}

		return mapToConfig(m), nil
	}
}

// config implements [kong.Resolver] for roller map-literal configs.
type config map[string]any

// Validate implements [kong.Resolver].
func (r config) Validate(*kong.Application) error {
	return nil
}

// Resolve implements [kong.Resolver].
func (r config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	// Flags use hyphens but roller strings may use underscores. Try both.
	if value, ok := r[flag.Name]; ok {
		return value, nil
	}

	if value, ok := r[strings.ReplaceAll(flag.Name, "-", "_")]; ok {
		return value, nil
	}

	return nil, nil
}

// mapToConfig flattens a parsed map literal into flag values. Entries whose
// key is not a string literal or whose value is not a literal are skipped.
func mapToConfig(m *lang.Map) config {
	result := make(config, len(m.Entries))

	for _, entry := range m.Entries {
		key, ok := litStr(entry.Key)
		if !ok {
			continue
		}

		val, ok := litAny(entry.Val)
		if !ok {
			continue
		}

		result[key] = val
	}

	return result
}

func litStr(e lang.Expr) (string, bool) {
	v, ok := e.(*lang.Val)
	if !ok {
		return "", false
	}

	s, ok := v.V.(lang.Str)

	return s.S, ok
}

// litAny converts a literal expression into the string form kong expects
// when resolving flag values.
func litAny(e lang.Expr) (any, bool) {
	v, ok := e.(*lang.Val)
	if !ok {
		return nil, false
	}

	switch val := v.V.(type) {
	case lang.Str:
		return val.S, true
	case lang.Bool:
		return val.B, true
	case lang.Num:
		// Kong parses numbers from strings.
		return val.N.String(), true
	default:
		return nil, false
	}
}
