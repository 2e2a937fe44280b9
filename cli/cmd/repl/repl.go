// Package repl is an interactive formula prompt built on bubbletea.
//
// Each submitted line is parsed and evaluated against the environment given
// to [Run], and printed as "canonical = value". Lines starting with ":" are
// commands; ":set" binds session variables layered over the environment.
package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/formula/lang"
	"github.com/ardnew/formula/log"
)

// Option configures [Run].
type Option func(config) config

type config struct {
	history string
	logger  log.Logger
	in      io.Reader
	out     io.Writer
}

// WithHistory persists the input history in the file at path.
func WithHistory(path string) Option {
	return func(c config) config {
		c.history = path

		return c
	}
}

// WithLogger logs key presses and evaluations at trace level to logger.
func WithLogger(logger log.Logger) Option {
	return func(c config) config {
		c.logger = logger

		return c
	}
}

// WithIO reads keys from in and draws on out instead of the terminal.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(c config) config {
		c.in, c.out = in, out

		return c
	}
}

// Run runs the prompt until the user leaves or ctx is canceled.
func Run(ctx context.Context, env lang.Environment, opts ...Option) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	cfg := config{in: os.Stdin, out: os.Stdout}
	for _, opt := range opts {
		cfg = opt(cfg)
	}

	history := NewHistory(cfg.history)
	if err := history.Load(); err != nil {
		cfg.logger.WarnContext(ctx, "history not loaded",
			slog.String("path", cfg.history),
			slog.Any("error", err))
	}

	cfg.logger.TraceContext(ctx, "repl start",
		slog.String("history", cfg.history),
		slog.Int("entries", history.Len()))

	m := newModel(ctx, env, history, cfg)

	p := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithInput(cfg.in),
		tea.WithOutput(cfg.out))

	_, err = p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}

	return err
}

const defaultWidth = 80

// model is the bubbletea model of the prompt.
type model struct {
	ctx     func() context.Context
	base    lang.Environment
	session *lang.Map
	logger  log.Logger
	styles  styles
	input   textinput.Model
	history *History

	historyIdx int    // entry shown in the input; history.Len() when editing
	draft      string // input saved when browsing history began

	matches   fuzzy.Matches
	wordStart int
	wordEnd   int
	selected  int // match shown in the input while tabbing

	tabbing      bool
	preTab       string
	preTabCursor int

	width    int
	quitting bool
}

func newModel(ctx context.Context, env lang.Environment, history *History, cfg config) model {
	if env == nil {
		env = lang.NewMap(nil)
	}

	s := newStyles(lipgloss.NewRenderer(cfg.out))

	ti := textinput.New()
	ti.Prompt = s.prompt.Render(prompt)
	ti.CharLimit = 4096
	ti.Width = defaultWidth - lipgloss.Width(prompt) - 2
	ti.Focus()

	return model{
		ctx:        func() context.Context { return ctx },
		base:       env,
		session:    lang.NewMap(nil),
		logger:     cfg.logger,
		styles:     s,
		input:      ti,
		history:    history,
		historyIdx: history.Len(),
		selected:   -1,
		width:      defaultWidth,
	}
}

// env is the session bindings over the environment given to Run.
func (m model) env() lang.Environment { return lang.Layer(m.session, m.base) }

func (m model) Init() tea.Cmd { return textinput.Blink }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = max(msg.Width-lipgloss.Width(prompt)-2, 1)

		return m, nil
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var status string

	switch {
	case m.historyIdx < m.history.Len():
		status = m.styles.hint.Render(
			strconv.Itoa(m.historyIdx+1) + "/" + strconv.Itoa(m.history.Len()))

	case strings.TrimSpace(m.input.Value()) == "":
		status = m.styles.hint.Render("Enter a formula, :help for commands")

	case len(m.matches) > 0:
		status = renderCandidateBar(m.styles, m.matches, m.selected, m.isFunc, m.width)
	}

	return m.input.View() + "\n" + status + "\n"
}

func (m model) isFunc(name string) bool {
	v, ok := m.env().Lookup(name)

	return ok && v.Kind() == lang.KindFunc
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.logger.TraceContext(m.ctx(), "repl key", slog.String("key", msg.String()))

	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			return m.quit()
		}

		m.input.SetValue("")
		m.historyIdx = m.history.Len()
		m.tabbing = false
		m.refresh()

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			return m.quit()
		}

		return m, nil

	case tea.KeyEnter:
		if m.tabbing {
			m.tabbing = false
			m.refresh()

			return m, nil
		}

		return m.submit()

	case tea.KeyTab:
		return m.cycle(1), nil

	case tea.KeyShiftTab:
		return m.cycle(-1), nil

	case tea.KeyUp:
		return m.browse(-1), nil

	case tea.KeyDown:
		return m.browse(1), nil

	case tea.KeyEsc:
		if m.tabbing {
			m.tabbing = false
			m.input.SetValue(m.preTab)
			m.input.SetCursor(m.preTabCursor)
			m.refresh()
		}

		return m, nil
	}

	var cmd tea.Cmd

	m.tabbing = false
	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	m.refresh()

	return m, cmd
}

func (m model) quit() (model, tea.Cmd) {
	m.quitting = true

	return m, tea.Quit
}

// refresh recomputes the completions for the word at the cursor.
func (m *model) refresh() {
	input := m.input.Value()

	word, start, end := wordBounds(input, m.input.Position())
	m.wordStart, m.wordEnd = start, end
	m.matches = matchWord(word, candidates(m.env(), input, start))
	m.selected = -1

	if len(m.matches) == 1 && m.matches[0].Str == word {
		m.matches = nil
	}
}

// cycle moves the selection step matches forward and shows it in the input.
// A sole match is accepted outright.
func (m model) cycle(step int) model {
	n := len(m.matches)
	if n == 0 {
		return m
	}

	if n == 1 {
		m.replaceWord(m.matches[0].Str)
		m.matches = nil
		m.tabbing = false

		return m
	}

	if m.tabbing {
		m.selected = (m.selected + step + n) % n
	} else {
		m.tabbing = true
		m.preTab = m.input.Value()
		m.preTabCursor = m.input.Position()

		m.selected = 0
		if step < 0 {
			m.selected = n - 1
		}
	}

	m.replaceWord(m.matches[m.selected].Str)

	return m
}

func (m *model) replaceWord(s string) {
	input := m.input.Value()

	m.input.SetValue(input[:m.wordStart] + s + input[m.wordEnd:])
	m.input.SetCursor(m.wordStart + len(s))
	m.wordEnd = m.wordStart + len(s)
}

// browse moves step entries through the history. Moving past the newest
// entry restores the line being edited.
func (m model) browse(step int) model {
	n := m.history.Len()

	i := m.historyIdx + step
	if i < 0 || i > n {
		return m
	}

	if m.historyIdx == n {
		m.draft = m.input.Value()
	}

	line := m.draft
	if i < n {
		line, _ = m.history.Entry(i)
	}

	m.historyIdx = i
	m.tabbing = false
	m.input.SetValue(line)
	m.input.CursorEnd()
	m.refresh()

	return m
}

// submit runs the input line and prints it with its outcome.
func (m model) submit() (model, tea.Cmd) {
	line := strings.TrimSpace(m.input.Value())

	m.input.SetValue("")
	m.matches = nil
	m.draft = ""

	if line == "" {
		return m, nil
	}

	if err := m.history.Add(line); err != nil {
		m.logger.WarnContext(m.ctx(), "history not saved", slog.Any("error", err))
	}

	m.historyIdx = m.history.Len()

	echo := tea.Println(m.styles.prompt.Render(prompt) + m.styles.input.Render(line))

	if line == "exit" || line == "quit" {
		m.quitting = true

		return m, tea.Sequence(echo, tea.Quit)
	}

	if rest, ok := strings.CutPrefix(line, commandPrefix); ok {
		return m.command(echo, rest)
	}

	return m, tea.Sequence(echo, tea.Println(m.evaluate(line)))
}

// command runs a ":" command line without its prefix.
func (m model) command(echo tea.Cmd, line string) (model, tea.Cmd) {
	name, args, _ := strings.Cut(strings.TrimSpace(line), " ")
	args = strings.TrimSpace(args)

	m.logger.TraceContext(m.ctx(), "repl command",
		slog.String("command", name),
		slog.String("args", args))

	var out string

	switch name {
	case "q", "quit", "exit":
		m.quitting = true

		return m, tea.Sequence(echo, tea.Quit)

	case "clear":
		return m, tea.ClearScreen

	case "h", "help":
		out = m.styles.hint.Render(helpText)

	case "names":
		out = m.names(args)

	case "set":
		out = m.set(args)

	case "unset":
		out = m.unset(args)

	default:
		out = m.styles.err.Render(fmt.Sprintf("%v %q (try :help)", ErrCommand, name))
	}

	return m, tea.Sequence(echo, tea.Println(out))
}

// evaluate returns line rendered as "canonical = value", or its error.
func (m model) evaluate(line string) string {
	ctx := m.ctx()

	e, err := lang.Parse(ctx, line, lang.WithLogger(m.logger))
	if err != nil {
		return m.renderError(err)
	}

	v, err := lang.Evaluate(ctx, e, m.env(), lang.WithLogger(m.logger))
	if err != nil {
		return m.renderError(err)
	}

	return m.styles.result.Render(e.String() + " = " + v.Repr())
}

// renderError renders err; syntax errors get a caret under the echoed input.
func (m model) renderError(err error) string {
	var se *lang.SyntaxError
	if errors.As(err, &se) && se.Line == 1 && se.Column > 0 {
		caret := strings.Repeat(" ", lipgloss.Width(prompt)+se.Column-1) + "^"

		return m.styles.hint.Render(caret) + "\n" + m.styles.err.Render(se.Error())
	}

	return m.styles.err.Render("error: " + err.Error())
}

// set binds "NAME = FORMULA" in the session.
func (m model) set(args string) string {
	name, src, ok := strings.Cut(args, "=")
	name = strings.TrimSpace(name)

	if !ok || !m.isName(name) {
		return m.styles.err.Render(ErrUsage.Error() + ": :set NAME = FORMULA")
	}

	ctx := m.ctx()

	e, err := lang.Parse(ctx, src, lang.WithLogger(m.logger))
	if err != nil {
		return m.renderError(err)
	}

	v, err := lang.Evaluate(ctx, e, m.env(), lang.WithLogger(m.logger))
	if err != nil {
		return m.renderError(err)
	}

	m.session.Set(name, v)

	return m.styles.result.Render(name + " = " + v.Repr())
}

func (m model) unset(args string) string {
	if !m.isName(args) {
		return m.styles.err.Render(ErrUsage.Error() + ": :unset NAME")
	}

	if !m.session.Contains(args) {
		return m.styles.err.Render("error: " + args + " is not a session variable")
	}

	m.session.Delete(args)

	return m.styles.hint.Render("unset " + args)
}

// names lists the bound names with their values, ordered by name or, with a
// pattern, by match quality.
func (m model) names(pattern string) string {
	env := m.env()

	names := lang.Names(env)
	if pattern != "" {
		matches := fuzzy.Find(pattern, names)

		names = make([]string, len(matches))
		for i, match := range matches {
			names[i] = match.Str
		}
	}

	if len(names) == 0 {
		return m.styles.hint.Render("no names")
	}

	width := 0
	for _, name := range names {
		width = max(width, len(name))
	}

	var b strings.Builder

	for i, name := range names {
		if i > 0 {
			b.WriteByte('\n')
		}

		v, _ := env.Lookup(name)

		desc := v.Repr()
		if fn, ok := v.AsFunc(); ok {
			desc = "function " + fn.Name
		}

		b.WriteString("  " + name + strings.Repeat(" ", width-len(name)+2))
		b.WriteString(m.styles.hint.Render(desc))
	}

	return b.String()
}

// isName reports whether s parses as a lone variable reference.
func (m model) isName(s string) bool {
	e, err := lang.Parse(m.ctx(), s)
	if err != nil {
		return false
	}

	v, ok := e.(*lang.Variable)

	return ok && v.Name == s
}
