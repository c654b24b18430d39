// Package repl implements the interactive roller session: a line editor
// with history and completion when attached to a terminal, and a plain
// echoing line loop when input is piped.
package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rollerlang/roller/cli/cmd"
	"github.com/rollerlang/roller/lang"
	"github.com/rollerlang/roller/log"
)

const prompt = "> "

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	inputStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	debugStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
)

func helpMessage() string {
	return `
Interpreter commands:

  #debug [true|false]   Toggle printing the syntax tree before evaluating
  #help                 Print this cruft
  #quit                 Exit the session

Usage:
  Type an expression to evaluate it
  Press Tab / Shift-Tab to cycle through completions
  Use Up/Down arrows for history navigation
  Press Ctrl+C on an empty line or Ctrl+D to exit
`
}

// Repl starts an interactive session that reads one expression per line,
// evaluates it against a persistent environment, and prints the result.
type Repl struct {
	HistoryFile string `default:"${historyFile}" help:"Session history file" type:"path"`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	sess := &session{
		interp: lang.NewInterp(),
		debug:  cmd.DebugFrom(ctx),
	}

	log.TraceContext(ctx, "repl start",
		slog.String("history", r.HistoryFile),
		slog.Bool("debug", sess.debug),
	)

	if !isatty.IsTerminal(os.Stdin.Fd()) {
		return runPiped(ctx, sess, os.Stdin, cmd.Stdout(ctx))
	}

	history := NewHistory(r.HistoryFile)
	if err := history.Load(); err != nil {
		log.WarnContext(ctx, "could not load history",
			slog.Any("error", err))
	}

	m := newModel(ctx, sess, history)

	p := tea.NewProgram(m, tea.WithContext(ctx))
	_, err = p.Run()

	return err
}

// runPiped evaluates lines from a non-terminal reader, echoing each input
// line after the prompt the way an interactive session would display it.
func runPiped(
	ctx context.Context,
	sess *session,
	in io.Reader,
	out io.Writer,
) error {
	scanner := bufio.NewScanner(in)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		fmt.Fprintln(out, prompt+line)

		outs, quit := sess.exec(ctx, line)
		for _, o := range outs {
			fmt.Fprintln(out, o)
		}

		if quit {
			return nil
		}
	}

	return scanner.Err()
}

// session holds the interpreter state shared by both front ends.
type session struct {
	interp *lang.Interp
	debug  bool
}

// exec handles one input line: an interpreter directive or an expression.
// It returns the lines to display and whether the session should end.
func (s *session) exec(ctx context.Context, line string) ([]string, bool) {
	if strings.HasPrefix(line, "#") {
		return s.directive(ctx, line)
	}

	expr, err := lang.ParseString(line)
	if err != nil {
		return []string{errorStyle.Render(err.Error())}, false
	}

	var outs []string

	if s.debug {
		outs = append(outs,
			debugStyle.Render("ast: "+lang.FormatExpr(expr)))
	}

	result, err := s.interp.Eval(expr)
	if err != nil {
		log.TraceContext(ctx, "eval failed",
			slog.String("input", line),
			slog.Any("error", lang.WrapError(err)),
		)

		return append(outs, errorStyle.Render(err.Error())), false
	}

	if _, void := result.(lang.Void); !void {
		outs = append(outs, resultStyle.Render(result.String()))
	}

	return outs, false
}

// directive handles the "#"-prefixed interpreter commands.
func (s *session) directive(_ context.Context, line string) ([]string, bool) {
	fields := strings.Fields(line)

	switch fields[0] {
	case "#debug":
		if len(fields) > 1 {
			v, err := strconv.ParseBool(fields[1])
			if err != nil {
				return []string{errorStyle.Render(
					"usage: #debug [true|false]")}, false
			}

			s.debug = v
		} else {
			s.debug = !s.debug
		}

		return []string{hintStyle.Render(
			"debug " + strconv.FormatBool(s.debug))}, false
	case "#help":
		return []string{helpMessage()}, false
	case "#quit":
		return nil, true
	default:
		return []string{errorStyle.Render(
			"unknown command " + fields[0] + " (try #help)")}, false
	}
}

const defaultWidth = 80

// model is the Bubble Tea model for the interactive session.
type model struct {
	ctx       context.Context
	sess      *session
	input     textinput.Model
	history   *History
	histIdx   int
	draft     string
	matches   fuzzy.Matches
	suggIdx   int
	tabActive bool
	preTab    string
	preCursor int
	width     int
	quitting  bool
}

func newModel(ctx context.Context, sess *session, history *History) model {
	input := textinput.New()
	input.Prompt = promptStyle.Render(prompt)
	input.TextStyle = inputStyle
	input.Focus()

	return model{
		ctx:     ctx,
		sess:    sess,
		input:   input,
		history: history,
		histIdx: history.Len(),
		width:   defaultWidth,
	}
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd { return textinput.Blink }

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width

		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var tcmd tea.Cmd

	m.input, tcmd = m.input.Update(msg)

	return m, tcmd
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		if strings.TrimSpace(m.input.Value()) == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.resetInput()

		return m, nil
	case tea.KeyCtrlD:
		m.quitting = true

		return m, tea.Quit
	case tea.KeyEnter:
		return m.submit()
	case tea.KeyUp:
		m.navigateHistory(-1)

		return m, nil
	case tea.KeyDown:
		m.navigateHistory(1)

		return m, nil
	case tea.KeyTab:
		m.cycleSuggestion(1)

		return m, nil
	case tea.KeyShiftTab:
		m.cycleSuggestion(-1)

		return m, nil
	}

	m.tabActive = false

	var tcmd tea.Cmd

	m.input, tcmd = m.input.Update(msg)
	m.matches = complete(m.sess.interp.Env(), m.input.Value(), m.input.Position())
	m.suggIdx = 0

	return m, tcmd
}

func (m *model) resetInput() {
	m.input.Reset()

	m.matches = nil
	m.suggIdx = 0
	m.tabActive = false
	m.histIdx = m.history.Len()
	m.draft = ""
}

func (m model) submit() (tea.Model, tea.Cmd) {
	line := strings.TrimSpace(m.input.Value())

	echo := promptStyle.Render(prompt) + inputStyle.Render(line)
	cmds := []tea.Cmd{tea.Println(echo)}

	if line == "" {
		m.resetInput()

		return m, tea.Sequence(cmds...)
	}

	if _, err := m.history.Write(line); err != nil {
		log.Warn("could not write history", slog.Any("error", err))
	}

	outs, quit := m.sess.exec(m.ctx, line)
	for _, o := range outs {
		cmds = append(cmds, tea.Println(o))
	}

	m.resetInput()

	if quit {
		m.quitting = true

		cmds = append(cmds, tea.Quit)
	}

	return m, tea.Sequence(cmds...)
}

// navigateHistory moves through stored entries, preserving the in-progress
// line as a draft at the newest position.
func (m *model) navigateHistory(delta int) {
	if m.history.Len() == 0 {
		return
	}

	if m.histIdx == m.history.Len() {
		m.draft = m.input.Value()
	}

	idx := m.histIdx + delta
	if idx < 0 || idx > m.history.Len() {
		return
	}

	m.histIdx = idx

	if idx == m.history.Len() {
		m.input.SetValue(m.draft)
	} else if entry, err := m.history.GetLine(idx); err == nil {
		m.input.SetValue(entry)
	}

	m.input.CursorEnd()
}

// cycleSuggestion steps through the current fuzzy matches, replacing the
// word at the cursor with the selected candidate.
func (m *model) cycleSuggestion(delta int) {
	if !m.tabActive {
		m.preTab = m.input.Value()
		m.preCursor = m.input.Position()
		m.matches = complete(m.sess.interp.Env(), m.preTab, m.preCursor)
		m.suggIdx = 0
		m.tabActive = true
	} else {
		m.suggIdx += delta
		if m.suggIdx < 0 {
			m.suggIdx = len(m.matches) - 1
		}

		if m.suggIdx >= len(m.matches) {
			m.suggIdx = 0
		}
	}

	if len(m.matches) == 0 {
		m.tabActive = false

		return
	}

	_, start, end := wordBounds(m.preTab, m.preCursor)
	chosen := m.matches[m.suggIdx].Str

	m.input.SetValue(m.preTab[:start] + chosen + m.preTab[end:])
	m.input.SetCursor(start + len(chosen))
}

// View implements tea.Model.
func (m model) View() string {
	if m.quitting {
		return ""
	}

	view := m.input.View()

	if hint := m.suggestionHint(); hint != "" {
		view += "\n" + hint
	}

	return view
}

// suggestionHint renders the current completion candidates on one line,
// truncated to the terminal width.
func (m model) suggestionHint() string {
	if len(m.matches) == 0 {
		return ""
	}

	var b strings.Builder

	for i, match := range m.matches {
		if i > 0 {
			b.WriteString("  ")
		}

		if b.Len()+len(match.Str) > m.width {
			b.WriteString("…")

			break
		}

		if m.tabActive && i == m.suggIdx {
			b.WriteString(inputStyle.Render(match.Str))
		} else {
			b.WriteString(match.Str)
		}
	}

	return hintStyle.Render(b.String())
}
