// Package cli contains the command line interface for roller.
//
// # Usage
//
// Running roller without a command starts the interactive session:
//
//	roller
//
// Expressions can also be evaluated or formatted directly:
//
//	roller eval '3 + 4 * 2'
//	roller eval -f rolls.roller
//	roller fmt -o yaml '[1:2, 3:4]'
//
// # Configuration File
//
// Flags may be given defaults in a configuration file written as a roller
// map literal, located at the platform config directory (for example
// ~/.config/roller/config.roller):
//
//	[
//	  "log_level": "debug",
//	  "log_pretty": true,
//	]
//
// Command-line flags override configuration file values.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (json, text)
//   - --log-time-layout: Set timestamp format (Kitchen, RFC3339, etc.)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Enable colorized pretty printing
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default:
//     ~/.cache/roller/pprof)
//
// # Examples
//
//	# Debug logging with CPU profiling
//	roller --log-level=debug --pprof-mode=cpu
//
//	# Print the syntax tree before evaluating
//	roller -d eval '1 + 2'
package cli
