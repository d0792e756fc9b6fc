package model

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/modoterra/logpanel/pkg/core"
	"github.com/modoterra/logpanel/pkg/fetcher"
	"github.com/modoterra/logpanel/pkg/logview"
	"github.com/modoterra/logpanel/pkg/settings"
	"github.com/modoterra/logpanel/pkg/tui/dropdown"
)

// settleDelay is the wait between a render and the auto-scroll.
const settleDelay = 100 * time.Millisecond

const defaultTimeout = 10 * time.Second

// Focus identifies the focused text input.
type Focus int

const (
	FocusNone Focus = iota
	FocusFrom
	FocusTo
	FocusDelay
	FocusKeyword
)

// Source is the logs endpoint the dashboard talks to.
type Source interface {
	core.Source
	Instances(ctx context.Context) ([]string, error)
}

// Options configures a dashboard.
type Options struct {
	Source    Source
	Logger    *slog.Logger
	Defaults  core.Settings
	Instances []string // used when the endpoint cannot list instances
	MaxRows   int
	Timeout   time.Duration
	Location  *time.Location
	Copy      func(string) error
}

// App is the root Bubble Tea model.
type App struct {
	source   Source
	logger   *slog.Logger
	timeout  time.Duration
	loc      *time.Location
	fallback []string
	copy     func(string) error

	// State
	store   *settings.Store
	fetcher *fetcher.Fetcher
	rows    *logview.List
	menus   *dropdown.Controller

	// UI
	from     textinput.Model
	to       textinput.Model
	delay    textinput.Model
	keyword  textinput.Model
	focus    Focus
	logs     viewport.Model
	keys     keyMap
	help     help.Model
	showHelp bool
	helpText string
	width    int
	height   int

	statusMsg string
}

// New creates a dashboard.
func New(opts Options) App {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	cp := opts.Copy
	if cp == nil {
		cp = clipboard.WriteAll
	}

	store := settings.NewStore(opts.Defaults, loc)
	menus := dropdown.New(func(menu, value string) {
		if menu == dropdown.MenuInstances {
			store.SetInstance(value)
		}
	})
	menus.Add(dropdown.MenuInstances, "Instance", opts.Instances, opts.Defaults.InstanceName)
	menus.Add(dropdown.MenuTypes, "Type", core.FilterTypes, core.SelectAll)

	delay := newInput("ms", 6)
	if opts.Defaults.UpdateDelay > 0 {
		delay.SetValue(formatMillis(opts.Defaults.UpdateDelay))
	}
	from := newInput("yyyy-mm-dd hh:mm", 25)
	if opts.Defaults.FromDate > 0 {
		from.SetValue(settings.FormatDate(opts.Defaults.FromDate, loc))
	}
	to := newInput("open", 25)
	if opts.Defaults.ToDate > 0 {
		to.SetValue(settings.FormatDate(opts.Defaults.ToDate, loc))
	}

	return App{
		source:   opts.Source,
		logger:   logger,
		timeout:  timeout,
		loc:      loc,
		fallback: opts.Instances,
		copy:     cp,
		store:    store,
		fetcher:  fetcher.New(logger),
		rows:     logview.NewList(opts.MaxRows),
		menus:    menus,
		from:     from,
		to:       to,
		delay:    delay,
		keyword:  newInput("keyword", 64),
		logs:     viewport.New(80, 20),
		keys:     defaultKeys(),
		help:     help.New(),
	}
}

func newInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Width = limit
	return ti
}

func formatMillis(d time.Duration) string {
	return strconv.FormatInt(d.Milliseconds(), 10)
}

// Init loads the instance list.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		loadInstancesCmd(a.source, a.timeout),
		tea.SetWindowTitle("logpanel"),
	)
}

// instancesMsg carries the endpoint's instance list.
type instancesMsg struct {
	names []string
	err   error
}

// fetchDueMsg fires when a scheduled request's delay has elapsed.
type fetchDueMsg struct{ req fetcher.Request }

// batchMsg carries a fetched batch for cycle gen.
type batchMsg struct {
	gen   uint64
	batch core.Batch
}

// fetchErrMsg carries a failed fetch for cycle gen.
type fetchErrMsg struct {
	gen uint64
	err error
}

// settleMsg triggers the auto-scroll after a render.
type settleMsg struct{}

// statusMsg replaces the status line.
type statusMsg string

func loadInstancesCmd(src Source, timeout time.Duration) tea.Cmd {
	if src == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		names, err := src.Instances(ctx)
		return instancesMsg{names: names, err: err}
	}
}

func fetchCmd(src Source, req fetcher.Request, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		b, err := src.Fetch(ctx, req.Instance, req.Query)
		if err != nil {
			return fetchErrMsg{gen: req.Gen, err: err}
		}
		return batchMsg{gen: req.Gen, batch: b}
	}
}

func settleCmd() tea.Cmd {
	return tea.Tick(settleDelay, func(time.Time) tea.Msg {
		return settleMsg{}
	})
}

func copyCmd(cp func(string) error, text string, n int) tea.Cmd {
	return func() tea.Msg {
		if err := cp(text); err != nil {
			return statusMsg("copy failed: " + err.Error())
		}
		return statusMsg(pluralRows(n) + " copied")
	}
}

// schedule issues req now or after its delay.
func (a App) schedule(req fetcher.Request) tea.Cmd {
	if a.source == nil {
		return nil
	}
	if req.Delay <= 0 {
		return fetchCmd(a.source, req, a.timeout)
	}
	return tea.Tick(req.Delay, func(time.Time) tea.Msg {
		return fetchDueMsg{req: req}
	})
}

// Update handles messages.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		a.logs.Width = max(msg.Width-4, 10)
		a.logs.Height = max(msg.Height-headerHeight-statusHeight-2, 3)
		if a.showHelp {
			a.helpText = renderHelp(a.width)
		}
		a.refreshLogs()
		return a, nil

	case instancesMsg:
		names := msg.names
		if msg.err != nil {
			a.logger.Warn("list instances failed", "err", msg.err)
			a.statusMsg = "instances unavailable, using configured list"
			names = a.fallback
		}
		a.setInstances(names)
		return a, nil

	case fetchDueMsg:
		if !a.fetcher.Current(msg.req.Gen) || a.source == nil {
			return a, nil
		}
		return a, fetchCmd(a.source, msg.req, a.timeout)

	case batchMsg:
		next, rearm, current := a.fetcher.Complete(msg.gen, msg.batch)
		if !current {
			return a, nil
		}
		var cmds []tea.Cmd
		if len(msg.batch.Logs) > 0 {
			a.rows.Append(a.criteria(), msg.batch.Logs...)
			a.refreshLogs()
			cmds = append(cmds, settleCmd())
		}
		if rearm {
			cmds = append(cmds, a.schedule(next))
		} else {
			a.statusMsg = "done: " + pluralRows(a.rows.Len())
		}
		return a, tea.Batch(cmds...)

	case fetchErrMsg:
		if a.fetcher.Fail(msg.gen, msg.err) {
			a.statusMsg = "fetch failed: " + msg.err.Error()
		}
		return a, nil

	case settleMsg:
		a.logs.GotoBottom()
		return a, nil

	case statusMsg:
		a.statusMsg = string(msg)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	var cmd tea.Cmd
	a.logs, cmd = a.logs.Update(msg)
	return a, cmd
}

func (a *App) setInstances(names []string) {
	want := a.store.Snapshot().InstanceName
	a.menus.SetItems(dropdown.MenuInstances, names)
	m := a.menus.Menu(dropdown.MenuInstances)
	if m.Value() == "" && want != core.InstanceNone {
		a.menus.Select(dropdown.MenuInstances, want)
	}
	if m.Value() == "" {
		a.store.SetInstance("")
	}
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		a.fetcher.Stop()
		return a, tea.Quit
	}

	// Help overlay
	if a.showHelp {
		if key.Matches(msg, a.keys.Help, a.keys.Back, a.keys.Quit) {
			a.showHelp = false
		}
		return a, nil
	}

	// Text input focused
	if a.focus != FocusNone {
		return a.handleInputKey(msg)
	}

	// Open menu
	if m := a.menus.Active(); m != nil {
		switch {
		case key.Matches(msg, a.keys.Up):
			a.menus.Move(-1)
		case key.Matches(msg, a.keys.Down):
			a.menus.Move(1)
		case key.Matches(msg, a.keys.Submit):
			a.menus.Choose()
			if m.Name == dropdown.MenuTypes {
				a.applyFilter()
			}
		case key.Matches(msg, a.keys.Back):
			a.menus.Close()
		case key.Matches(msg, a.keys.Instances):
			a.menus.Toggle(dropdown.MenuInstances)
		case key.Matches(msg, a.keys.Type):
			a.menus.Toggle(dropdown.MenuTypes)
		}
		return a, nil
	}

	switch {
	case key.Matches(msg, a.keys.Quit):
		a.fetcher.Stop()
		return a, tea.Quit

	case key.Matches(msg, a.keys.Instances):
		a.menus.Toggle(dropdown.MenuInstances)
	case key.Matches(msg, a.keys.Type):
		a.menus.Toggle(dropdown.MenuTypes)

	case key.Matches(msg, a.keys.From):
		if a.menus.DatesVisible() {
			return a.focusInput(FocusFrom)
		}
	case key.Matches(msg, a.keys.To):
		if a.menus.DatesVisible() {
			return a.focusInput(FocusTo)
		}
	case key.Matches(msg, a.keys.Delay):
		return a.focusInput(FocusDelay)
	case key.Matches(msg, a.keys.Keyword):
		return a.focusInput(FocusKeyword)

	case key.Matches(msg, a.keys.Live):
		live := !a.store.Snapshot().LiveUpdate
		a.store.SetLive(live)
		if !live && a.fetcher.Live() {
			a.fetcher.Stop()
			a.statusMsg = "live polling stopped"
		}

	case key.Matches(msg, a.keys.Submit):
		return a.submit()

	case key.Matches(msg, a.keys.Copy):
		visible := a.rows.Visible()
		if len(visible) == 0 {
			a.statusMsg = "nothing to copy"
			return a, nil
		}
		return a, copyCmd(a.copy, joinRecords(visible), len(visible))

	case key.Matches(msg, a.keys.Help):
		a.showHelp = true
		a.helpText = renderHelp(a.width)

	default:
		var cmd tea.Cmd
		a.logs, cmd = a.logs.Update(msg)
		return a, cmd
	}

	return a, nil
}

func (a App) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		a.blur()
		return a, nil
	case tea.KeyEnter:
		f := a.focus
		a.blur()
		if f == FocusKeyword {
			return a, nil
		}
		return a.submit()
	}

	var cmd tea.Cmd
	in := a.input(a.focus)
	*in, cmd = in.Update(msg)
	if a.focus == FocusKeyword {
		a.applyFilter()
	}
	return a, cmd
}

func (a *App) input(f Focus) *textinput.Model {
	switch f {
	case FocusFrom:
		return &a.from
	case FocusTo:
		return &a.to
	case FocusDelay:
		return &a.delay
	case FocusKeyword:
		return &a.keyword
	}
	return nil
}

func (a App) focusInput(f Focus) (tea.Model, tea.Cmd) {
	a.menus.Close()
	a.blur()
	a.focus = f
	return a, a.input(f).Focus()
}

func (a *App) blur() {
	if in := a.input(a.focus); in != nil {
		in.Blur()
	}
	a.focus = FocusNone
}

// submit stores the inputs, clears the list and starts a new fetch cycle.
func (a App) submit() (tea.Model, tea.Cmd) {
	if a.menus.DatesVisible() {
		if err := a.store.SetFromDate(a.from.Value()); err != nil {
			a.statusMsg = err.Error()
			return a, nil
		}
		if err := a.store.SetToDate(a.to.Value()); err != nil {
			a.statusMsg = err.Error()
			return a, nil
		}
	}
	a.store.SetDelay(a.delay.Value())

	a.rows.Clear()
	a.refreshLogs()

	s := a.store.Snapshot()
	req, ok := a.fetcher.Submit(s)
	if !ok {
		a.statusMsg = "select an instance first"
		return a, nil
	}
	a.statusMsg = "fetching " + s.InstanceName
	if a.fetcher.Live() {
		a.statusMsg += " (live)"
	}
	return a, a.schedule(req)
}

func (a App) criteria() logview.Criteria {
	return logview.Criteria{
		Type:    a.menus.Menu(dropdown.MenuTypes).Value(),
		Keyword: a.keyword.Value(),
	}
}

func (a *App) applyFilter() {
	logview.Apply(a.rows, a.criteria())
	a.refreshLogs()
}

func (a *App) refreshLogs() {
	visible := a.rows.Visible()
	lines := make([]string, len(visible))
	for i, r := range visible {
		lines[i] = RenderRecord(r)
	}
	a.logs.SetContent(strings.Join(lines, "\n"))
}

func joinRecords(records []core.LogRecord) string {
	var b strings.Builder
	for _, r := range records {
		b.WriteString(r.String())
		b.WriteByte('\n')
	}
	return b.String()
}

func pluralRows(n int) string {
	if n == 1 {
		return "1 row"
	}
	return strconv.Itoa(n) + " rows"
}
