// Package tui is the interactive movie set browser.
package tui

import (
	"fmt"
	"strings"

	"github.com/Nomadcxx/mediashelf/internal/moviesets"
	"github.com/Nomadcxx/mediashelf/internal/tree"
	"github.com/Nomadcxx/mediashelf/internal/ui"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
)

// Loader produces the tree to browse. It runs outside the UI goroutine.
type Loader func() (tree.DataProvider[moviesets.Node], error)

type loadedMsg struct {
	provider tree.DataProvider[moviesets.Node]
	err      error
}

type treeChangedMsg struct{}

type row struct {
	node  moviesets.Node
	depth int
}

var sortOrder = []moviesets.SortBy{moviesets.SortByTitle, moviesets.SortByYear, moviesets.SortByRating}

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("5"))
	cursorStyle    = lipgloss.NewStyle().Reverse(true)
	helpStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorTextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// Model is the bubbletea model of the browser.
type Model struct {
	load     Loader
	provider tree.DataProvider[moviesets.Node]
	format   *moviesets.TableFormat
	filters  []tree.Filter[moviesets.Node]
	title    *moviesets.TitleFilter
	lang     language.Tag
	sortIdx  int

	rows      []row
	collapsed map[moviesets.Node]bool
	cursor    int
	offset    int
	width     int
	height    int

	spinner   spinner.Model
	input     textinput.Model
	filtering bool
	loading   bool
	err       error

	changes chan struct{}
	cancel  func()
}

// Option configures the browser.
type Option func(*Model)

// WithFilters adds fixed filters (e.g. watched state) next to the title filter.
func WithFilters(filters ...tree.Filter[moviesets.Node]) Option {
	return func(m *Model) {
		m.filters = append(m.filters, filters...)
	}
}

// WithSort sets the initial sort order and collation language.
func WithSort(by moviesets.SortBy, lang language.Tag) Option {
	return func(m *Model) {
		m.lang = lang
		for i, s := range sortOrder {
			if s == by {
				m.sortIdx = i
			}
		}
	}
}

// WithQuery pre-fills the title filter.
func WithQuery(q string) Option {
	return func(m *Model) {
		m.title.SetQuery(q)
		m.input.SetValue(q)
	}
}

func New(load Loader, opts ...Option) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot

	ti := textinput.New()
	ti.Placeholder = "filter titles"
	ti.Prompt = "/ "
	ti.CharLimit = 100

	m := Model{
		load:      load,
		format:    moviesets.NewTableFormat(),
		title:     moviesets.NewTitleFilter(""),
		lang:      language.English,
		collapsed: make(map[moviesets.Node]bool),
		spinner:   s,
		input:     ti,
		loading:   true,
		changes:   make(chan struct{}, 1),
		height:    24,
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadCmd())
}

func (m Model) loadCmd() tea.Cmd {
	load := m.load
	return func() tea.Msg {
		p, err := load()
		return loadedMsg{provider: p, err: err}
	}
}

// waitForChange turns tree events into messages, one at a time.
func (m Model) waitForChange() tea.Cmd {
	ch := m.changes
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return treeChangedMsg{}
	}
}

// Close unsubscribes from the provider.
func (m Model) Close() {
	if m.cancel != nil {
		m.cancel()
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(msg.Width-4, 10)
		m.clampOffset()
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case loadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.attach(msg.provider)
		return m, m.waitForChange()

	case treeChangedMsg:
		m.refresh()
		return m, m.waitForChange()

	case tea.KeyMsg:
		if m.filtering {
			return m.handleFilterKeys(msg)
		}
		return m.handleKeyPress(msg)
	}
	return m, nil
}

// attach starts browsing p.
func (m *Model) attach(p tree.DataProvider[moviesets.Node]) {
	m.provider = p
	changes := m.changes
	m.cancel = p.Subscribe(func(tree.Event[moviesets.Node]) {
		select {
		case changes <- struct{}{}:
		default:
		}
	})
	m.applyFilters()
	m.applySort()
	m.refresh()
}

func (m *Model) applyFilters() {
	if m.provider == nil {
		return
	}
	filters := append([]tree.Filter[moviesets.Node]{}, m.filters...)
	filters = append(filters, m.title)
	m.provider.SetFilters(filters...)
}

func (m *Model) applySort() {
	if m.provider == nil {
		return
	}
	m.provider.SetComparator(moviesets.NewComparator(sortOrder[m.sortIdx], m.lang))
}

// refresh rebuilds the visible rows and keeps the cursor on the same node
// when it is still visible.
func (m *Model) refresh() {
	if m.provider == nil {
		return
	}
	var current moviesets.Node
	hadCurrent := m.cursor < len(m.rows)
	if hadCurrent {
		current = m.rows[m.cursor].node
	}

	m.rows = m.rows[:0]
	tree.Walk(m.provider, func(n moviesets.Node, depth int) bool {
		if depth > 0 {
			m.rows = append(m.rows, row{node: n, depth: depth})
		}
		return depth == 0 || !m.collapsed[n]
	})

	m.cursor = min(m.cursor, max(len(m.rows)-1, 0))
	if hadCurrent {
		for i, r := range m.rows {
			if r.node == current {
				m.cursor = i
				break
			}
		}
	}
	m.clampOffset()
}

// Selected returns the node under the cursor.
func (m Model) Selected() (moviesets.Node, bool) {
	if m.cursor >= len(m.rows) {
		return moviesets.Node{}, false
	}
	return m.rows[m.cursor].node, true
}

func (m Model) handleFilterKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.filtering = false
		m.input.Blur()
		m.input.SetValue("")
		m.title.SetQuery("")
		m.applyFilters()
		m.refresh()
		return m, nil
	case "enter":
		m.filtering = false
		m.input.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != m.title.Query() {
		m.title.SetQuery(m.input.Value())
		m.applyFilters()
		m.cursor = 0
		m.refresh()
	}
	return m, cmd
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "up", "k":
		m.move(-1)
	case "down", "j":
		m.move(1)
	case "pgup":
		m.move(-m.pageSize())
	case "pgdown":
		m.move(m.pageSize())
	case "home", "g":
		m.move(-len(m.rows))
	case "end", "G":
		m.move(len(m.rows))
	case "left", "h":
		m.setCollapsed(true)
	case "right", "l":
		m.setCollapsed(false)
	case "enter", " ", "space":
		if n, ok := m.Selected(); ok && n.Kind == moviesets.MovieSetNode {
			m.setCollapsed(!m.collapsed[n])
		}
	case "/":
		if m.provider != nil {
			m.filtering = true
			return m, m.input.Focus()
		}
	case "s":
		m.sortIdx = (m.sortIdx + 1) % len(sortOrder)
		m.applySort()
		m.refresh()
	case "r":
		if !m.loading {
			m.Close()
			m.loading = true
			return m, tea.Batch(m.spinner.Tick, m.loadCmd())
		}
	}
	return m, nil
}

func (m *Model) move(delta int) {
	if len(m.rows) == 0 {
		return
	}
	m.cursor = min(max(m.cursor+delta, 0), len(m.rows)-1)
	m.clampOffset()
}

// setCollapsed folds the set under the cursor, or the set of the movie
// under it.
func (m *Model) setCollapsed(collapsed bool) {
	n, ok := m.Selected()
	if !ok || m.provider == nil {
		return
	}
	if n.Kind == moviesets.MovieNode {
		if !collapsed {
			return
		}
		n = m.provider.Parent(n)
	}
	if n.Kind != moviesets.MovieSetNode {
		return
	}
	m.collapsed[n] = collapsed
	for i, r := range m.rows {
		if r.node == n {
			m.cursor = i
			break
		}
	}
	m.refresh()
}

// pageSize is the number of table rows that fit on screen.
func (m Model) pageSize() int {
	return max(m.height-7, 1)
}

func (m *Model) clampOffset() {
	page := m.pageSize()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+page {
		m.offset = m.cursor - page + 1
	}
	m.offset = max(min(m.offset, len(m.rows)-page), 0)
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("mediashelf · movie sets"))
	b.WriteString("\n")

	switch {
	case m.loading:
		fmt.Fprintf(&b, "\n %s Loading library...\n", m.spinner.View())
		return b.String()
	case m.err != nil:
		b.WriteString("\n " + errorTextStyle.Render("Error: "+m.err.Error()) + "\n")
		b.WriteString(helpStyle.Render(" r reload · q quit") + "\n")
		return b.String()
	}

	if m.filtering || m.title.Active() {
		b.WriteString(m.input.View())
	}
	b.WriteString("\n")

	if len(m.rows) == 0 {
		b.WriteString(helpStyle.Render(" No movie sets match.") + "\n")
	} else {
		b.WriteString(m.renderTable())
	}

	fmt.Fprintf(&b, "%s\n", helpStyle.Render(fmt.Sprintf(
		" %d rows · sort: %s · ↑/↓ move · ←/→ fold · / filter · s sort · r reload · q quit",
		len(m.rows), sortOrder[m.sortIdx])))
	return b.String()
}

func (m Model) renderTable() string {
	headers := make([]string, len(m.format.Columns))
	for i, c := range m.format.Columns {
		headers[i] = c.Title
	}
	t := ui.NewTable(headers...)
	t.SetMaxWidth(m.width)
	for i, c := range m.format.Columns {
		t.SetMinWidth(i, c.MinWidth)
	}
	end := min(m.offset+m.pageSize(), len(m.rows))
	for _, r := range m.rows[m.offset:end] {
		cells := ui.RowCells(m.format, r.node, r.depth)
		if r.node.Kind == moviesets.MovieSetNode {
			marker := "▾ "
			if m.collapsed[r.node] {
				marker = "▸ "
			}
			cells[0] = marker + cells[0]
		} else {
			cells[0] = "  " + cells[0]
		}
		t.AddRow(cells...)
	}

	var sb strings.Builder
	t.RenderCompact(&sb)
	lines := strings.Split(strings.TrimRight(sb.String(), "\n"), "\n")
	// header and separator come first
	if idx := m.cursor - m.offset + 2; idx >= 2 && idx < len(lines) {
		lines[idx] = cursorStyle.Render(lines[idx])
	}
	return strings.Join(lines, "\n") + "\n"
}
