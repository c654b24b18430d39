package pkg

import (
	"slices"
	"strings"
	"testing"
)

func TestName(t *testing.T) {
	expected := "roller"
	if Name != expected {
		t.Errorf("Expected Name to be %q, got %q", expected, Name)
	}
}

func TestDescription(t *testing.T) {
	if Description == "" {
		t.Error("Expected Description to be non-empty")
	}
}

func TestVersion(t *testing.T) {
	if Version == "" {
		t.Fatal("Expected Version to be non-empty")
	}

	if parts := strings.Split(Version, "."); len(parts) != 3 {
		t.Errorf("Expected Version %q to have three dotted components", Version)
	}
}

func TestAuthor(t *testing.T) {
	if len(Author) == 0 {
		t.Fatal("Expected Author to have at least one entry")
	}

	if slices.ContainsFunc(Author, func(a AuthorInfo) bool {
		return a.Name == "" || a.Email == ""
	}) {
		t.Error("Expected every Author entry to have a name and email")
	}
}
