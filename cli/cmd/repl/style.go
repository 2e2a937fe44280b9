package repl

import "github.com/charmbracelet/lipgloss"

const prompt = "➜ "

const helpText = `Enter a formula to print its canonical form and value.

Commands:
  :set NAME = FORMULA   bind NAME for this session
  :unset NAME           remove a session binding
  :names [PATTERN]      list bound names, fuzzy-filtered by PATTERN
  :clear                clear the screen
  :help                 print this text
  :quit                 leave (also "exit", "quit", ctrl-d)

Keys:
  Tab / Shift-Tab       cycle through completions; Esc restores the input
  Up / Down             browse history
  Ctrl-C                clear the input, or leave when it is empty`

// styles are the colors of one output stream. Streams that are not
// terminals render plain text.
type styles struct {
	prompt        lipgloss.Style
	input         lipgloss.Style
	result        lipgloss.Style
	err           lipgloss.Style
	hint          lipgloss.Style
	suggestion    lipgloss.Style
	match         lipgloss.Style
	selected      lipgloss.Style
	selectedMatch lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		prompt:        r.NewStyle().Foreground(lipgloss.Color("6")).Bold(true),
		input:         r.NewStyle().Foreground(lipgloss.Color("15")),
		result:        r.NewStyle().Foreground(lipgloss.Color("2")),
		err:           r.NewStyle().Foreground(lipgloss.Color("1")),
		hint:          r.NewStyle().Foreground(lipgloss.Color("8")),
		suggestion:    r.NewStyle().Foreground(lipgloss.Color("4")),
		match:         r.NewStyle().Foreground(lipgloss.Color("4")).Bold(true),
		selected:      r.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("4")),
		selectedMatch: r.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("4")).Bold(true),
	}
}
