package repl

import (
	"strings"
	"testing"

	"github.com/rollerlang/roller/lang"
)

func newSession() *session {
	return &session{interp: lang.NewInterp()}
}

func TestSession_EvalLine(t *testing.T) {
	s := newSession()

	outs, quit := s.exec(t.Context(), "1 + 1")
	if quit {
		t.Fatal("unexpected quit")
	}

	if len(outs) != 1 || !strings.Contains(outs[0], "2") {
		t.Errorf("got %v, want result 2", outs)
	}
}

func TestSession_StatePersists(t *testing.T) {
	s := newSession()

	// Assignments print nothing and persist across lines.
	outs, _ := s.exec(t.Context(), "x = 5")
	if len(outs) != 0 {
		t.Fatalf("assignment produced output: %v", outs)
	}

	outs, _ = s.exec(t.Context(), "x * 2")
	if len(outs) != 1 || !strings.Contains(outs[0], "10") {
		t.Errorf("got %v, want 10", outs)
	}
}

func TestSession_ParseAndEvalErrors(t *testing.T) {
	s := newSession()

	outs, quit := s.exec(t.Context(), "1 +")
	if quit || len(outs) != 1 {
		t.Fatalf("got %v, want one error line", outs)
	}

	outs, _ = s.exec(t.Context(), "1 / 0")
	if len(outs) != 1 || !strings.Contains(outs[0], "division") {
		t.Errorf("got %v, want division error", outs)
	}
}

func TestSession_DebugDirective(t *testing.T) {
	s := newSession()

	outs, _ := s.exec(t.Context(), "#debug")
	if !s.debug || len(outs) != 1 {
		t.Fatalf("toggle on failed: %v", outs)
	}

	// With debug on, the syntax tree prints before the result.
	outs, _ = s.exec(t.Context(), "1 + 2")
	if len(outs) != 2 || !strings.Contains(outs[0], "(1 + 2)") {
		t.Errorf("got %v, want tree then result", outs)
	}

	if _, _ = s.exec(t.Context(), "#debug false"); s.debug {
		t.Error("explicit false did not clear debug")
	}

	outs, _ = s.exec(t.Context(), "#debug maybe")
	if len(outs) != 1 || !strings.Contains(outs[0], "usage") {
		t.Errorf("got %v, want usage message", outs)
	}
}

func TestSession_QuitAndHelp(t *testing.T) {
	s := newSession()

	if _, quit := s.exec(t.Context(), "#quit"); !quit {
		t.Error("expected quit")
	}

	outs, quit := s.exec(t.Context(), "#help")
	if quit || len(outs) != 1 || !strings.Contains(outs[0], "#debug") {
		t.Errorf("got %v, want help text", outs)
	}

	outs, _ = s.exec(t.Context(), "#bogus")
	if len(outs) != 1 || !strings.Contains(outs[0], "unknown") {
		t.Errorf("got %v, want unknown command", outs)
	}
}

func TestRunPiped(t *testing.T) {
	var out strings.Builder

	in := strings.NewReader("x = 2\nx ^ 3\n\n#quit\nnever reached\n")

	if err := runPiped(t.Context(), newSession(), in, &out); err != nil {
		t.Fatalf("piped run: %v", err)
	}

	got := out.String()

	for _, want := range []string{"> x = 2", "> x ^ 3", "8", "> #quit"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}

	if strings.Contains(got, "never reached") {
		t.Errorf("quit did not stop the loop:\n%s", got)
	}
}
