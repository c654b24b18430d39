//nolint:gochecknoglobals
package pkg

const (
	// Name is the canonical command and module identifier used across the
	// project. It appears in help text and default config paths.
	Name = "roller"
	// Description is a short, human-readable summary of the project used in
	// help output and documentation.
	Description = "Dice-roll expression language REPL"
	// Version is the semantic version reported by the CLI.
	Version = "0.2.0"
)

// AuthorInfo represents an individual author's name and email address.
type AuthorInfo struct {
	// Name is the author's preferred name or handle.
	Name string
	// Email is the author's contact email address.
	Email string
}

// Author lists the primary author(s) of the project for display in metadata.
//
//nolint:gochecknoglobals
var Author = []AuthorInfo{
	{"rollerlang", "dev@rollerlang.org"},
}
