package model

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/modoterra/logpanel/pkg/tui/dropdown"
)

const (
	headerHeight = 2
	statusHeight = 2
)

// View renders the TUI.
func (a App) View() string {
	if a.width == 0 || a.height == 0 {
		return "loading..."
	}

	if a.showHelp {
		return paneStyle.Width(a.width - 4).Render(a.helpText)
	}

	settingsBar := a.renderSettingsBar()
	filterBar := a.renderFilterBar()
	menu := a.renderOpenMenu()

	vp := a.logs
	if menu != "" {
		vp.Height = max(vp.Height-lipgloss.Height(menu), 1)
	}
	body := vp.View()
	if a.rows.Len() == 0 {
		body = dimStyle.Render("no log records")
	}
	logPane := activePaneStyle.Width(a.width - 4).Height(vp.Height).Render(body)

	parts := []string{settingsBar, filterBar}
	if menu != "" {
		parts = append(parts, menu)
	}
	parts = append(parts, logPane, a.renderStatusBar())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (a App) renderSettingsBar() string {
	inst := a.menus.Menu(dropdown.MenuInstances)
	fields := []string{menuLabel(inst)}
	if a.menus.DatesVisible() {
		fields = append(fields,
			a.field("From", a.from, FocusFrom),
			a.field("To", a.to, FocusTo),
		)
	}
	live := "[ ]"
	if a.store.Snapshot().LiveUpdate {
		live = liveStyle.Render("[x]")
	}
	fields = append(fields,
		labelStyle.Render("Live ")+live,
		a.field("Delay", a.delay, FocusDelay)+dimStyle.Render(" ms"),
	)
	return strings.Join(fields, "  ")
}

func (a App) renderFilterBar() string {
	typ := a.menus.Menu(dropdown.MenuTypes)
	shown := a.rows.Len()
	visible := len(a.rows.Visible())
	count := dimStyle.Render(fmt.Sprintf("%d/%d", visible, shown))
	return strings.Join([]string{
		menuLabel(typ),
		a.field("Keyword", a.keyword, FocusKeyword),
		count,
	}, "  ")
}

func (a App) field(label string, in textinput.Model, f Focus) string {
	style := inputStyle
	if a.focus == f {
		style = focusedInputStyle
	}
	return labelStyle.Render(label+" ") + style.Render(in.View())
}

func menuLabel(m *dropdown.Menu) string {
	if m == nil {
		return ""
	}
	return labelStyle.Render(m.Title+" ") + m.Indicator() + " " + m.Label()
}

func (a App) renderOpenMenu() string {
	m := a.menus.Active()
	if m == nil {
		return ""
	}
	items := m.Items()
	if len(items) == 0 {
		return menuStyle.Render(dimStyle.Render("no " + m.Name))
	}
	var b strings.Builder
	for i, it := range items {
		line := "  " + it
		if i == m.Cursor() {
			line = selectedStyle.Render("> " + it)
		}
		b.WriteString(line)
		if i < len(items)-1 {
			b.WriteByte('\n')
		}
	}
	return menuStyle.Render(b.String())
}

func (a App) renderStatusBar() string {
	var left string
	width := a.width
	if a.fetcher.Live() {
		mark := "● live "
		width -= lipgloss.Width(mark)
		if a.width > 0 && width <= 0 {
			width = 1
		}
		left = liveStyle.Render(strings.TrimSpace(mark)) + " "
	}
	left += truncate(a.statusMsg, width)
	return helpStyle.Render(left) + "\n" + a.help.View(a.keys)
}

// truncate cuts s to maxLen terminal cells, ending with an ellipsis.
func truncate(s string, maxLen int) string {
	if maxLen <= 0 || ansi.StringWidth(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return ansi.Truncate(s, maxLen, "")
	}
	return ansi.Truncate(s, maxLen, "...")
}
