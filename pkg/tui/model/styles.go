package model

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/modoterra/logpanel/pkg/core"
)

var (
	labelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57"))

	inputStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	focusedInputStyle = lipgloss.NewStyle().Underline(true).Foreground(lipgloss.Color("229"))
	liveStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)

	activePaneStyle = paneStyle.
			BorderForeground(lipgloss.Color("205"))

	menuStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("57")).
			PaddingLeft(1)

	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	typeStyles = map[string]lipgloss.Style{
		core.TypeError:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		core.TypeWarn:    lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		core.TypeInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		core.TypeMessage: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	}
)

// RenderRecord formats a record as one styled row.
func RenderRecord(r core.LogRecord) string {
	style, ok := typeStyles[r.Type]
	if !ok {
		style = dimStyle
	}
	return style.Render(fmt.Sprintf("%-7s", r.Type)) + " " + r.Content
}
