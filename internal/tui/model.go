// SPDX-License-Identifier: Apache-2.0

// Package tui is the interactive package browser. It renders one tab per catalog and turns key presses into catalog
// operations; every operation runs as a tea.Cmd so the UI never blocks on a package manager.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/hashgraph/pkgview/internal/catalog"
	"github.com/hashgraph/pkgview/internal/models"
)

// SearchDebounce is how long typing must pause before the search is applied.
const SearchDebounce = 300 * time.Millisecond

// changedMsg is sent whenever a catalog publishes new state.
type changedMsg struct{}

// searchMsg applies query to tab if no keystroke arrived since it was scheduled.
type searchMsg struct {
	seq   int
	tab   int
	query string
}

// opDoneMsg reports the end of a catalog operation.
type opDoneMsg struct {
	op  string
	id  models.Identity
	err error
}

const (
	opLoad    = "load"
	opRefresh = "refresh"
	opCheck   = "check"
	opUpdate  = "update"
)

type Model struct {
	ctx      context.Context
	catalogs []*catalog.Catalog
	keys     keyMap

	active      int
	cursor      int
	scroll      int
	width       int
	height      int
	searchInput textinput.Model
	searching   bool
	searchSeq   int
	spinner     spinner.Model
	statusMsg   string
	statusErr   bool
}

func NewModel(ctx context.Context, catalogs []*catalog.Catalog) Model {
	ti := textinput.New()
	ti.Placeholder = "Search packages..."
	ti.CharLimit = 100
	ti.Width = 40

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = searchStyle

	return Model{
		ctx:         ctx,
		catalogs:    catalogs,
		keys:        defaultKeyMap(),
		searchInput: ti,
		spinner:     sp,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.load())
}

func (m Model) current() *catalog.Catalog {
	if len(m.catalogs) == 0 {
		return nil
	}
	return m.catalogs[m.active]
}

// selected returns the package under the cursor.
func (m Model) selected() (*models.Package, bool) {
	c := m.current()
	if c == nil {
		return nil, false
	}
	visible := c.Visible()
	if m.cursor < 0 || m.cursor >= len(visible) {
		return nil, false
	}
	return visible[m.cursor], true
}

func (m Model) load() tea.Cmd {
	c := m.current()
	if c == nil {
		return nil
	}
	ctx := m.ctx
	return func() tea.Msg {
		return opDoneMsg{op: opLoad, err: c.Load(ctx)}
	}
}

func (m Model) refresh() tea.Cmd {
	c := m.current()
	ctx := m.ctx
	return func() tea.Msg {
		return opDoneMsg{op: opRefresh, err: c.Refresh(ctx)}
	}
}

func (m Model) check(id models.Identity) tea.Cmd {
	c := m.current()
	ctx := m.ctx
	return func() tea.Msg {
		c.CheckLatestVersion(ctx, id)
		return opDoneMsg{op: opCheck, id: id}
	}
}

func (m Model) update(id models.Identity) tea.Cmd {
	c := m.current()
	ctx := m.ctx
	return func() tea.Msg {
		return opDoneMsg{op: opUpdate, id: id, err: c.UpdatePackage(ctx, id)}
	}
}

func (m Model) scheduleSearch() tea.Cmd {
	msg := searchMsg{seq: m.searchSeq, tab: m.active, query: m.searchInput.Value()}
	return tea.Tick(SearchDebounce, func(time.Time) tea.Msg {
		return msg
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.clampCursor()
		return m, nil

	case changedMsg:
		m.clampCursor()
		return m, nil

	case searchMsg:
		if msg.seq != m.searchSeq || msg.tab != m.active {
			return m, nil
		}
		if c := m.current(); c != nil {
			c.Search(msg.query)
		}
		m.cursor = 0
		m.scroll = 0
		return m, nil

	case opDoneMsg:
		m.clampCursor()
		if msg.op == opUpdate {
			// the catalog notification takes over from here
			m.statusMsg = ""
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.searching {
			return m.handleSearchKey(msg)
		}
		return m.handleNormalKey(msg)
	}

	return m, nil
}

func (m Model) handleNormalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	c := m.current()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case c == nil:
		return m, nil

	case key.Matches(msg, m.keys.Acknowledge):
		if _, ok := c.Notification(); ok {
			c.AcknowledgeNotification()
		}

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
			m.ensureCursorVisible()
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < c.PackageCount()-1 {
			m.cursor++
			m.ensureCursorVisible()
		}

	case key.Matches(msg, m.keys.NextTab), key.Matches(msg, m.keys.PrevTab):
		if len(m.catalogs) < 2 {
			return m, nil
		}
		step := 1
		if key.Matches(msg, m.keys.PrevTab) {
			step = len(m.catalogs) - 1
		}
		m.active = (m.active + step) % len(m.catalogs)
		m.cursor = 0
		m.scroll = 0
		m.statusMsg = ""
		m.searchInput.SetValue(m.current().Query())
		return m, m.load()

	case key.Matches(msg, m.keys.Search):
		m.searching = true
		m.searchInput.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.ClearSearch):
		if c.Query() != "" {
			m.searchSeq++
			m.searchInput.SetValue("")
			c.ClearSearch()
			m.cursor = 0
			m.scroll = 0
		}

	case key.Matches(msg, m.keys.Refresh):
		m.statusMsg = ""
		return m, m.refresh()

	case key.Matches(msg, m.keys.Check):
		if p, ok := m.selected(); ok && !p.CheckInProgress {
			m.statusMsg = ""
			return m, m.check(p.ID)
		}

	case key.Matches(msg, m.keys.Update):
		if p, ok := m.selected(); ok && !p.UpdateInProgress {
			m.statusMsg = "Updating " + p.DisplayName + "..."
			m.statusErr = false
			return m, m.update(p.ID)
		}
	}

	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "esc":
		m.searching = false
		m.searchInput.Blur()
		m.searchInput.SetValue("")
		m.searchSeq++
		if c := m.current(); c != nil {
			c.ClearSearch()
		}
		m.cursor = 0
		m.scroll = 0
		return m, nil

	case "enter":
		m.searching = false
		m.searchInput.Blur()
		return m, nil
	}

	before := m.searchInput.Value()
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	if m.searchInput.Value() == before {
		return m, cmd
	}

	// every keystroke restarts the debounce window; older ticks are dropped by sequence
	m.searchSeq++
	return m, tea.Batch(cmd, m.scheduleSearch())
}

func (m *Model) clampCursor() {
	c := m.current()
	if c == nil {
		m.cursor = 0
		return
	}
	n := c.PackageCount()
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.ensureCursorVisible()
}

// maxVisibleItems returns how many package rows fit on screen below the header, search bar, banner and help.
func (m Model) maxVisibleItems() int {
	overhead := 12
	if m.height == 0 {
		return 20
	}
	available := m.height - overhead
	if available < 1 {
		return 1
	}
	return available
}

func (m *Model) ensureCursorVisible() {
	maxVisible := m.maxVisibleItems()

	if m.cursor < m.scroll {
		m.scroll = m.cursor
	}
	if m.cursor >= m.scroll+maxVisible {
		m.scroll = m.cursor - maxVisible + 1
	}
}

// Run starts the browser over catalogs and blocks until the user quits or ctx is done.
func Run(ctx context.Context, catalogs []*catalog.Catalog) error {
	p := tea.NewProgram(NewModel(ctx, catalogs), tea.WithAltScreen(), tea.WithContext(ctx))

	for _, c := range catalogs {
		// Send blocks until the program reads the message; the publisher must not wait on the UI.
		c.SetOnChange(func() { go p.Send(changedMsg{}) })
	}
	defer func() {
		for _, c := range catalogs {
			c.SetOnChange(nil)
		}
	}()

	_, err := p.Run()
	return err
}
