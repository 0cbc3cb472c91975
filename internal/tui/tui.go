// Package tui provides a Bubble Tea TUI for browsing a watch session journal.
package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fakeyudi/autopilot/internal/session"
)

// ── Styles ────────────

var (
	// Title bar at the very top
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 2)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245")).
				Background(lipgloss.Color("235")).
				Padding(0, 1)

	tabSepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("238")).
			Background(lipgloss.Color("235"))

	sectionHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("33")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("178"))

	pushedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true)
	localStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	failedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	opStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	errTextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("245")).
			Padding(0, 1)

	selectedRowStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("237"))
)

// ── Tabs ─────────────────

type tabID int

const (
	tabSummary tabID = iota
	tabEntries
	tabFailures
	tabTimeline
	tabCount
)

var tabNames = [tabCount]string{"Summary", "Changes", "Failures", "Timeline"}

// ── Model ────────────────────

// Model is the root Bubble Tea model for the journal viewer.
type Model struct {
	session   *session.Session
	source    string
	activeTab tabID
	viewports [tabCount]viewport.Model
	width     int
	height    int
	ready     bool
	sortAsc   bool
	// Changes tab: cursor position and expanded rows
	cursor   int
	expanded map[int]bool
}

// New creates a viewer for s, read from source.
func New(s *session.Session, source string) Model {
	return Model{
		session:  s,
		source:   source,
		expanded: make(map[int]bool),
	}
}

// ── Bubble Tea interface ───────────────

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "tab", "l", "right":
			m.activeTab = (m.activeTab + 1) % tabCount
		case "shift+tab", "h", "left":
			m.activeTab = (m.activeTab - 1 + tabCount) % tabCount
		case "1", "2", "3", "4":
			m.activeTab = tabID(msg.String()[0] - '1')
		case "s":
			if m.activeTab == tabTimeline {
				m.sortAsc = !m.sortAsc
				m.refresh(tabTimeline)
				m.viewports[tabTimeline].GotoTop()
			}
		case "up", "k":
			if m.activeTab == tabEntries && m.cursor > 0 {
				m.cursor--
				m.refresh(tabEntries)
				return m, nil
			}
		case "down", "j":
			if m.activeTab == tabEntries && m.cursor < len(m.session.Entries)-1 {
				m.cursor++
				m.refresh(tabEntries)
				return m, nil
			}
		case "enter", " ":
			if m.activeTab == tabEntries && len(m.session.Entries) > 0 {
				if m.expanded[m.cursor] {
					delete(m.expanded, m.cursor)
				} else {
					m.expanded[m.cursor] = true
				}
				m.refresh(tabEntries)
				return m, nil
			}
		}
		var cmd tea.Cmd
		m.viewports[m.activeTab], cmd = m.viewports[m.activeTab].Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.initViewports()
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	if !m.ready {
		return "Loading…"
	}

	title := titleStyle.Width(m.width).Render("  autopilot  " + m.source)

	var tabParts []string
	for i := tabID(0); i < tabCount; i++ {
		label := fmt.Sprintf(" %d %s ", i+1, tabNames[i])
		if i == m.activeTab {
			tabParts = append(tabParts, activeTabStyle.Render(label))
		} else {
			tabParts = append(tabParts, inactiveTabStyle.Render(label))
		}
		if i < tabCount-1 {
			tabParts = append(tabParts, tabSepStyle.Render("│"))
		}
	}
	tabRow := lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		Width(m.width).
		Render(lipgloss.JoinHorizontal(lipgloss.Top, tabParts...))

	content := m.viewports[m.activeTab].View()

	hint := "  ←/→ tab  ↑/↓ scroll  1-4 jump  q quit"
	switch m.activeTab {
	case tabTimeline:
		dir := "newest first"
		if m.sortAsc {
			dir = "oldest first"
		}
		hint += "  s sort (" + dir + ")"
	case tabEntries:
		hint += "  enter expand/collapse"
	}
	pct := fmt.Sprintf("%3.0f%%", m.viewports[m.activeTab].ScrollPercent()*100)
	pad := m.width - lipgloss.Width(hint) - len(pct) - 2
	if pad < 1 {
		pad = 1
	}
	statusBar := statusBarStyle.Width(m.width).Render(hint + strings.Repeat(" ", pad) + pct)

	return lipgloss.JoinVertical(lipgloss.Left, title, tabRow, content, statusBar)
}

// ── Viewports ──────────────────────

func (m *Model) initViewports() {
	// title, tab row and status bar take one row each
	vpHeight := m.height - 3
	if vpHeight < 1 {
		vpHeight = 1
	}
	for i := tabID(0); i < tabCount; i++ {
		vp := viewport.New(m.width, vpHeight)
		vp.SetContent(m.renderTab(i))
		m.viewports[i] = vp
	}
}

func (m *Model) refresh(t tabID) {
	m.viewports[t].SetContent(m.renderTab(t))
}

// ── Tab renderers ──────────────────────

func (m *Model) renderTab(t tabID) string {
	switch t {
	case tabSummary:
		return m.renderSummary()
	case tabEntries:
		return m.renderEntries()
	case tabFailures:
		return m.renderFailures()
	case tabTimeline:
		return m.renderTimeline()
	}
	return ""
}

func heading(s string) string {
	return "\n" + sectionHeader.Render("  "+s) + "\n\n"
}

func (m *Model) renderSummary() string {
	s := m.session
	var sb strings.Builder
	sb.WriteString(heading("Watch Session"))

	row := func(label, value string) {
		sb.WriteString(labelStyle.Render(fmt.Sprintf("  %-14s", label)) + "  " + value + "\n")
	}
	row("Session:", s.ID)
	row("Started:", s.StartTime.Local().Format("2006-01-02 15:04:05 MST"))
	if s.StopTime != nil {
		row("Stopped:", s.StopTime.Local().Format("2006-01-02 15:04:05 MST"))
		row("Duration:", s.StopTime.Sub(s.StartTime).Round(time.Second).String())
	} else {
		row("Stopped:", dimStyle.Render("(running or interrupted)"))
	}
	for i, repo := range s.Repos {
		label := ""
		if i == 0 {
			label = "Repositories:"
		}
		row(label, repo)
	}

	c := Count(s)
	sb.WriteString(heading("Counts"))
	row("Changes:", fmt.Sprintf("%d", len(s.Entries)))
	row("Pushed:", fmt.Sprintf("%d", c.Pushed))
	row("Local only:", fmt.Sprintf("%d", c.Local))
	row("Failed:", fmt.Sprintf("%d", c.Failed))
	return sb.String()
}

func badge(e session.Entry) string {
	switch {
	case e.Failed():
		return failedStyle.Render("FAILED")
	case e.Pushed:
		return pushedStyle.Render("PUSHED")
	default:
		return localStyle.Render("LOCAL ")
	}
}

func (m *Model) renderEntries() string {
	var sb strings.Builder
	sb.WriteString(heading(fmt.Sprintf("Changes (%d)", len(m.session.Entries))))
	if len(m.session.Entries) == 0 {
		sb.WriteString(dimStyle.Render("  (none)") + "\n")
		return sb.String()
	}
	for i, e := range m.session.Entries {
		toggle := dimStyle.Render("  ▶ ")
		if m.expanded[i] {
			toggle = dimStyle.Render("  ▼ ")
		}
		ts := timeStyle.Render(e.Timestamp.Local().Format("15:04:05"))
		row := fmt.Sprintf("%s%s  %s  %s  %s", toggle, ts, badge(e), opStyle.Render(fmt.Sprintf("%-10s", e.Operation)), displayPath(e))
		if i == m.cursor {
			row = selectedRowStyle.Width(max(m.width-2, 1)).Render(row)
		}
		sb.WriteString(row + "\n")
		if m.expanded[i] {
			sb.WriteString(renderDetails(e))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func renderDetails(e session.Entry) string {
	var sb strings.Builder
	line := func(label, value string) {
		if value == "" {
			return
		}
		sb.WriteString("      " + labelStyle.Render(fmt.Sprintf("%-12s", label)) + " " + value + "\n")
	}
	line("Repository:", e.Repository)
	line("Status:", e.Status)
	line("Lines:", fmt.Sprintf("+%d -%d", e.Insertions, e.Deletions))
	line("Commit:", e.CommitID)
	line("Message:", e.Message)
	if e.Error != "" {
		line("Error:", errTextStyle.Render(e.Error))
	}
	return sb.String()
}

func (m *Model) renderFailures() string {
	var sb strings.Builder
	failed := Failures(m.session)
	sb.WriteString(heading(fmt.Sprintf("Failures (%d)", len(failed))))
	if len(failed) == 0 {
		sb.WriteString(dimStyle.Render("  (none)") + "\n")
		return sb.String()
	}
	for _, e := range failed {
		ts := timeStyle.Render(e.Timestamp.Local().Format("15:04:05"))
		sb.WriteString(fmt.Sprintf("  %s  %s\n", ts, displayPath(e)))
		sb.WriteString("      " + errTextStyle.Render(e.Error) + "\n\n")
	}
	return sb.String()
}

func (m *Model) renderTimeline() string {
	var sb strings.Builder
	dir := "newest first"
	if m.sortAsc {
		dir = "oldest first"
	}
	sb.WriteString(heading(fmt.Sprintf("Timeline (%s)", dir)))

	entries := append([]session.Entry(nil), m.session.Entries...)
	if m.sortAsc {
		sort.SliceStable(entries, func(i, j int) bool { return entries[i].Timestamp.Before(entries[j].Timestamp) })
	} else {
		sort.SliceStable(entries, func(i, j int) bool { return entries[i].Timestamp.After(entries[j].Timestamp) })
	}
	if len(entries) == 0 {
		sb.WriteString(dimStyle.Render("  (nothing recorded in this session)") + "\n")
		return sb.String()
	}
	for _, e := range entries {
		ts := timeStyle.Render(e.Timestamp.Local().Format("15:04:05"))
		text := e.Message
		if text == "" {
			text = displayPath(e)
		}
		sb.WriteString(ts + "  " + badge(e) + "  " + text + "\n\n")
	}
	return sb.String()
}

// ── Helpers ───────────────────────────

// Counts summarizes the outcome of a session's entries.
type Counts struct {
	Pushed int
	Local  int
	Failed int
}

// Count tallies the entries of s by outcome.
func Count(s *session.Session) Counts {
	var c Counts
	for _, e := range s.Entries {
		switch {
		case e.Failed():
			c.Failed++
		case e.Pushed:
			c.Pushed++
		default:
			c.Local++
		}
	}
	return c
}

// Failures returns the entries of s that ended in an error.
func Failures(s *session.Session) []session.Entry {
	var out []session.Entry
	for _, e := range s.Entries {
		if e.Failed() {
			out = append(out, e)
		}
	}
	return out
}

func displayPath(e session.Entry) string {
	if e.OldPath != "" {
		return e.OldPath + " → " + e.Path
	}
	return e.Path
}

// Run starts the TUI for s.
func Run(s *session.Session, source string) error {
	p := tea.NewProgram(New(s, source), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
