// Package dropdown manages the open/closed state of the dashboard's
// selection menus.
package dropdown

import "github.com/modoterra/logpanel/pkg/core"

// Menu names with dedicated behaviour.
const (
	MenuInstances = "instances"
	MenuTypes     = "types"
)

// Indicator glyphs for a closed and an open menu.
const (
	GlyphClosed = "▸"
	GlyphOpen   = "▾"
)

// Menu is one labeled selection menu.
type Menu struct {
	Name     string
	Title    string
	items    []string
	selected int // -1 when nothing is selected
	cursor   int
	open     bool
}

// Items returns the selectable values.
func (m *Menu) Items() []string { return m.items }

// Open reports whether the menu is expanded.
func (m *Menu) Open() bool { return m.open }

// Cursor returns the highlighted index while open.
func (m *Menu) Cursor() int { return m.cursor }

// Value returns the selected item, or "" when none is selected.
func (m *Menu) Value() string {
	if m.selected < 0 || m.selected >= len(m.items) {
		return ""
	}
	return m.items[m.selected]
}

// Label is the text shown on the closed menu.
func (m *Menu) Label() string {
	if v := m.Value(); v != "" {
		return v
	}
	return core.InstanceNone
}

// Indicator returns the rotation glyph for the current state.
func (m *Menu) Indicator() string {
	if m.open {
		return GlyphOpen
	}
	return GlyphClosed
}

func (m *Menu) indexOf(value string) int {
	for i, it := range m.items {
		if it == value {
			return i
		}
	}
	return -1
}

// SelectFunc is called after a menu value was chosen.
type SelectFunc func(menu, value string)

// Controller owns a set of menus. At most one menu is open at a time.
type Controller struct {
	menus        []*Menu
	onSelect     SelectFunc
	datesVisible bool
}

// New creates a controller. onSelect may be nil.
func New(onSelect SelectFunc) *Controller {
	return &Controller{onSelect: onSelect, datesVisible: true}
}

// Add registers a menu with its items and initial selection.
func (c *Controller) Add(name, title string, items []string, initial string) *Menu {
	m := &Menu{Name: name, Title: title, items: append([]string(nil), items...)}
	m.selected = m.indexOf(initial)
	if m.selected >= 0 {
		m.cursor = m.selected
	}
	c.menus = append(c.menus, m)
	if name == MenuInstances {
		c.datesVisible = initial != core.InstanceLocal
	}
	return m
}

// Menu returns the named menu or nil.
func (c *Controller) Menu(name string) *Menu {
	for _, m := range c.menus {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// Menus returns all menus in registration order.
func (c *Controller) Menus() []*Menu { return c.menus }

// SetItems replaces a menu's items, keeping the selection when it still
// exists.
func (c *Controller) SetItems(name string, items []string) {
	m := c.Menu(name)
	if m == nil {
		return
	}
	prev := m.Value()
	m.items = append([]string(nil), items...)
	m.selected = m.indexOf(prev)
	m.cursor = max(m.selected, 0)
	if name == MenuInstances {
		c.datesVisible = m.Value() != core.InstanceLocal
	}
}

// Toggle opens the named menu, closing any other, or closes it when open.
func (c *Controller) Toggle(name string) {
	m := c.Menu(name)
	if m == nil {
		return
	}
	if m.open {
		m.open = false
		return
	}
	c.Close()
	m.open = true
	m.cursor = max(m.selected, 0)
}

// Close collapses every menu.
func (c *Controller) Close() {
	for _, m := range c.menus {
		m.open = false
	}
}

// Active returns the open menu or nil.
func (c *Controller) Active() *Menu {
	for _, m := range c.menus {
		if m.open {
			return m
		}
	}
	return nil
}

// Move shifts the highlight of the open menu by delta, wrapping around.
func (c *Controller) Move(delta int) {
	m := c.Active()
	if m == nil || len(m.items) == 0 {
		return
	}
	n := len(m.items)
	m.cursor = ((m.cursor+delta)%n + n) % n
}

// Choose selects the highlighted item of the open menu and closes it.
func (c *Controller) Choose() bool {
	m := c.Active()
	if m == nil || len(m.items) == 0 {
		return false
	}
	return c.Select(m.Name, m.items[m.cursor])
}

// Select sets a menu's value and closes it. It returns false when the menu
// or value is unknown.
func (c *Controller) Select(name, value string) bool {
	m := c.Menu(name)
	if m == nil {
		return false
	}
	idx := m.indexOf(value)
	if idx < 0 {
		return false
	}
	m.selected = idx
	m.cursor = idx
	m.open = false
	if name == MenuInstances {
		c.datesVisible = value != core.InstanceLocal
	}
	if c.onSelect != nil {
		c.onSelect(name, value)
	}
	return true
}

// DatesVisible reports whether the date-range inputs apply to the chosen
// instance.
func (c *Controller) DatesVisible() bool { return c.datesVisible }
