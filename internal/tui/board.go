// Package tui provides the terminal status board for Surveyor.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/surveyor-agent/surveyor/internal/orchestrator"
	"github.com/surveyor-agent/surveyor/pkg/models"
)

// RowFetcher loads the current board snapshot. The board never mutates
// state through it.
type RowFetcher func() ([]orchestrator.BoardRow, error)

// rowsLoadedMsg carries a fresh snapshot into the model.
type rowsLoadedMsg struct {
	rows []orchestrator.BoardRow
}

// loadErrMsg carries a snapshot failure into the model.
type loadErrMsg struct {
	err error
}

// fileChangedMsg signals that a watched path changed on disk.
type fileChangedMsg struct{}

// Board is the bubbletea model for the read-only status board.
type Board struct {
	fetch   RowFetcher
	watcher *Watcher

	rows      []orchestrator.BoardRow
	loaded    bool
	loadErr   error
	refreshed time.Time

	spinner  spinner.Model
	width    int
	height   int
	quitting bool

	headerStyle    lipgloss.Style
	borderStyle    lipgloss.Style
	availableStyle lipgloss.Style
	activeStyle    lipgloss.Style
	completedStyle lipgloss.Style
	dimStyle       lipgloss.Style
	errStyle       lipgloss.Style
}

// NewBoard creates a Board. watcher may be nil, in which case the board
// refreshes only on demand (the r key).
func NewBoard(fetch RowFetcher, watcher *Watcher) *Board {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &Board{
		fetch:   fetch,
		watcher: watcher,
		spinner: sp,

		headerStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Padding(0, 1),

		borderStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")),

		availableStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")),

		activeStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("34")),

		completedStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("28")),

		dimStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")),

		errStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")),
	}
}

// Init implements tea.Model.
func (b *Board) Init() tea.Cmd {
	cmds := []tea.Cmd{b.spinner.Tick, b.load()}
	if b.watcher != nil {
		cmds = append(cmds, b.waitForChange())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (b *Board) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			b.quitting = true
			if b.watcher != nil {
				b.watcher.Close()
			}
			return b, tea.Quit
		case "r":
			return b, b.load()
		}

	case tea.WindowSizeMsg:
		b.width = msg.Width
		b.height = msg.Height

	case rowsLoadedMsg:
		b.rows = msg.rows
		b.loaded = true
		b.loadErr = nil
		b.refreshed = time.Now()

	case loadErrMsg:
		b.loaded = true
		b.loadErr = msg.err

	case fileChangedMsg:
		cmds := []tea.Cmd{b.load()}
		if b.watcher != nil {
			cmds = append(cmds, b.waitForChange())
		}
		return b, tea.Batch(cmds...)

	case spinner.TickMsg:
		var cmd tea.Cmd
		b.spinner, cmd = b.spinner.Update(msg)
		return b, cmd
	}

	return b, nil
}

// View implements tea.Model.
func (b *Board) View() string {
	if b.quitting {
		return ""
	}
	if !b.loaded {
		return fmt.Sprintf("\n  %s Loading areas...\n", b.spinner.View())
	}
	if b.loadErr != nil {
		return b.errStyle.Render(fmt.Sprintf("\n  error: %v\n", b.loadErr))
	}

	var body strings.Builder
	body.WriteString(b.headerStyle.Render("Surveyor work areas"))
	body.WriteString("\n\n")

	if len(b.rows) == 0 {
		body.WriteString(b.dimStyle.Render("  No work areas. Run 'surveyor add' or 'surveyor plan' to create some.\n"))
	} else {
		for _, row := range b.rows {
			body.WriteString(b.renderRow(row))
			body.WriteString("\n")
		}
	}

	body.WriteString("\n")
	body.WriteString(b.dimStyle.Render(fmt.Sprintf("  refreshed %s   r: refresh  q: quit",
		b.refreshed.Format("15:04:05"))))

	return body.String()
}

func (b *Board) renderRow(row orchestrator.BoardRow) string {
	style := b.styleFor(row.Area.Status)

	line := fmt.Sprintf("  %-10s %-12s %-6s %s", row.Area.ID, row.Area.Status, row.Area.Priority, truncate(row.Area.Description, 48))
	line = style.Render(line)

	if row.Branch.BranchExists {
		line += b.dimStyle.Render(fmt.Sprintf("  [%s]", row.Branch.BranchName))
	} else if row.Area.AssignedAgent != "" && row.Area.Status == models.AreaInProgress {
		line += b.dimStyle.Render(fmt.Sprintf("  (%s, no branch)", row.Area.AssignedAgent))
	}
	return line
}

func (b *Board) styleFor(status models.AreaStatus) lipgloss.Style {
	switch status {
	case models.AreaInProgress:
		return b.activeStyle
	case models.AreaCompleted:
		return b.completedStyle
	default:
		return b.availableStyle
	}
}

func (b *Board) load() tea.Cmd {
	return func() tea.Msg {
		rows, err := b.fetch()
		if err != nil {
			return loadErrMsg{err: err}
		}
		return rowsLoadedMsg{rows: rows}
	}
}

// waitForChange blocks on the watcher and converts the next filesystem
// event into a message. Re-issued after every event.
func (b *Board) waitForChange() tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-b.watcher.Changes(); !ok {
			return nil
		}
		return fileChangedMsg{}
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
