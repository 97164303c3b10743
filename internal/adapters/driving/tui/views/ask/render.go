package ask

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/clause/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/clause/internal/core/domain"
)

// rawPreview caps how much generator output a failure shows.
const rawPreview = 300

// RenderOutcome formats an outcome for a terminal width columns wide.
func RenderOutcome(s *styles.Styles, outcome domain.ValidationOutcome, width int) string {
	if width < 30 {
		width = 30
	}
	wrap := lipgloss.NewStyle().Width(width - 4)

	var b strings.Builder
	switch {
	case outcome.IsAnswer():
		renderAnswer(&b, s, wrap, outcome.Answer)
	case outcome.Failure != nil:
		renderFailure(&b, s, wrap, outcome.Failure)
	default:
		b.WriteString(s.Muted.Render("No outcome."))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(s.Muted.Render(fmt.Sprintf("%d evidence fragment(s) · %d attempt(s)",
		outcome.EvidenceCount, outcome.Attempts)))
	return b.String()
}

func renderAnswer(b *strings.Builder, s *styles.Styles, wrap lipgloss.Style, a *domain.StructuredAnswer) {
	b.WriteString(s.Decision(a.Decision).Render(strings.ToUpper(string(a.Decision))))
	if a.Amount != nil {
		b.WriteString("  ")
		b.WriteString(s.Normal.Render(fmt.Sprintf("amount %.2f", *a.Amount)))
	}
	b.WriteString("  ")
	conf := fmt.Sprintf("confidence %.2f", a.Confidence)
	if a.ConfidenceAdjusted {
		conf += " (adjusted)"
	}
	b.WriteString(s.Muted.Render(conf))
	b.WriteString("\n\n")

	b.WriteString(wrap.Render(a.Justification))
	b.WriteString("\n")

	if len(a.CitedClauses) > 0 {
		b.WriteString("\n")
		b.WriteString(s.Heading.Render("Cited"))
		b.WriteString("\n")
		for _, c := range a.CitedClauses {
			b.WriteString("  ")
			b.WriteString(s.Citation.Render("[" + c.FragmentRef + "]"))
			if c.RelevanceNote != "" {
				b.WriteString(" " + s.Normal.Render(c.RelevanceNote))
			}
			b.WriteString("\n")
		}
	}

	if len(a.Diagnostics) > 0 {
		b.WriteString("\n")
		b.WriteString(s.Heading.Render("Diagnostics"))
		b.WriteString("\n")
		for _, d := range a.Diagnostics {
			b.WriteString(s.Muted.Render(fmt.Sprintf("  %s: %s", d.Code, d.Message)))
			b.WriteString("\n")
		}
	}
}

func renderFailure(b *strings.Builder, s *styles.Styles, wrap lipgloss.Style, f *domain.FailureRecord) {
	b.WriteString(s.Error.Render("No answer: " + f.Reason.String()))
	b.WriteString("\n")
	if f.Detail != "" {
		b.WriteString(wrap.Render(f.Detail))
		b.WriteString("\n")
	}
	if f.RawOutput != "" {
		b.WriteString("\n")
		b.WriteString(s.Heading.Render("Generator output"))
		b.WriteString("\n")
		b.WriteString(s.Panel.Render(preview(f.RawOutput, rawPreview)))
		b.WriteString("\n")
	}
}

func preview(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
