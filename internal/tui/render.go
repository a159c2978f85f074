package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"quiz-widget/internal/models"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	subtitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	cardStyle     = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1).
			Width(48)
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	disabledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	actionStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
	scoreStyle    = lipgloss.NewStyle().Bold(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

// Render draws a widget view. cursor marks the highlighted option.
func Render(v models.View, cursor int) string {
	if v.Loading {
		return "Loading...\n"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(v.Header.Title))
	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render(v.Header.Subtitle))
	b.WriteString("\n\n")

	if v.Card != nil {
		b.WriteString(cardStyle.Render(renderCard(v, cursor)))
		b.WriteString("\n")
	}
	return b.String()
}

func renderCard(v models.View, cursor int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(v.Card.Title))
	b.WriteString("\n")
	b.WriteString(v.Card.Description)
	b.WriteString("\n")

	if v.Results != nil {
		b.WriteString("\n")
		b.WriteString(scoreStyle.Render(fmt.Sprintf("Your Score: %d/%d", v.Results.Score, v.Results.Total)))
		b.WriteString("\n")
		b.WriteString(v.Results.Message)
		return b.String()
	}

	b.WriteString("\n")
	for _, opt := range v.Card.Options {
		pointer := "  "
		if opt.Index == cursor {
			pointer = "> "
		}
		mark := "( )"
		if opt.Selected {
			mark = "(•)"
		}
		line := fmt.Sprintf("%s%s %d. %s", pointer, mark, opt.Index+1, opt.Label)
		if opt.Selected {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	if a := v.Card.Action; a != nil {
		b.WriteString("\n")
		label := "[ " + a.Label + " ]"
		if a.Disabled {
			b.WriteString(disabledStyle.Render(label))
		} else {
			b.WriteString(actionStyle.Render(label))
		}
	}
	return b.String()
}
