package cli

import (
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/nathoo/dicecore/types"
)

var (
	styleSuccess = lipgloss.NewStyle().
			Foreground(lipgloss.Color("34"))

	styleCritical = lipgloss.NewStyle().
			Foreground(lipgloss.Color("228")).
			Bold(true)

	styleFailure = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleTrace = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	styleInput = lipgloss.NewStyle().
			Foreground(lipgloss.Color("34"))
)

var (
	titler  = cases.Title(language.English)
	printer = message.NewPrinter(language.English)
)

// label turns an outcome's tier name into words: "MarginalSuccess" becomes
// "Marginal Success".
func label(o types.Outcome) string {
	var b strings.Builder
	for i, r := range o.String() {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteByte(' ')
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return titler.String(b.String())
}

// num formats n with English digit grouping.
func num(n int) string { return printer.Sprintf("%d", n) }

func outcomeStyle(o types.Outcome) lipgloss.Style {
	switch {
	case o == types.CriticalSuccess || o == types.CriticalFailure:
		return styleCritical
	case o.IsSuccess():
		return styleSuccess
	default:
		return styleFailure
	}
}

// paint renders text with st unless plain output was requested.
func (r *Runner) paint(st lipgloss.Style, text string) string {
	if r.Plain {
		return text
	}
	return st.Render(text)
}
