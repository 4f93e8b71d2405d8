// Package tui implements the interactive terminal interface for querying the
// chunk store.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/impactdesk/insight-cli/internal/core/domain"
)

// QueryPort is the TUI-facing subset of the retrieval service.
type QueryPort interface {
	Query(ctx context.Context, query string) ([]domain.RetrievedChunk, error)
}

var (
	headerStyle    = lipgloss.NewStyle().Bold(true)
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// queryResultMsg carries the outcome of an asynchronous query.
type queryResultMsg struct {
	query   string
	results []domain.RetrievedChunk
	err     error
}

// Model is the Bubble Tea model for the query view.
type Model struct {
	service  QueryPort
	input    textinput.Model
	viewport viewport.Model
	results  []domain.RetrievedChunk
	status   string
	cursor   int
	ready    bool
	querying bool
}

// New creates a new TUI model over the retrieval service.
func New(service QueryPort) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type a question and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		service:  service,
		input:    ti,
		viewport: vp,
		status:   "Ready. Type to search.",
	}
}

// Init starts the text input cursor blink.
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key, window and query-result events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + qh + 1 // header, status, query box, spacer
		vh := msg.Height - reserved - rh
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width-4)
		m.viewport.Height = vh
		m.viewport.SetContent(m.renderCurrentResult())
		return m, nil

	case queryResultMsg:
		m.querying = false
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
			m.results = nil
		} else if len(msg.results) == 0 {
			m.status = fmt.Sprintf("No results for %q", msg.query)
			m.results = nil
		} else {
			m.status = fmt.Sprintf("%d result(s) for %q", len(msg.results), msg.query)
			m.results = msg.results
			m.cursor = 0
		}
		m.viewport.SetContent(m.renderCurrentResult())
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD || msg.String() == "esc" {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			query := strings.TrimSpace(m.input.Value())
			if query != "" && !m.querying {
				m.querying = true
				m.status = "Searching..."
				return m, runQuery(m.service, query)
			}
		case "down", "ctrl+n":
			if len(m.results) > 0 {
				m.cursor = (m.cursor + 1) % len(m.results)
				m.viewport.SetContent(m.renderCurrentResult())
				return m, nil
			}
		case "up", "ctrl+p":
			if len(m.results) > 0 {
				m.cursor = (m.cursor - 1 + len(m.results)) % len(m.results)
				m.viewport.SetContent(m.renderCurrentResult())
				return m, nil
			}
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the query view.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := headerStyle.Render("insight")
	results := resultBoxStyle.Render(m.viewport.View())
	input := queryBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + results + "\n" + input + "\n" + status
}

func (m Model) renderCurrentResult() string {
	if len(m.results) == 0 {
		return dimStyle.Render("No results yet.")
	}
	result := m.results[m.cursor]
	title := fmt.Sprintf("Result %d/%d  %s  similarity=%.2f",
		m.cursor+1, len(m.results), result.Metadata.Title, result.Similarity)
	return headerStyle.Render(title) + "\n\n" + result.Content
}

// runQuery executes the query off the update loop.
func runQuery(service QueryPort, query string) tea.Cmd {
	return func() tea.Msg {
		results, err := service.Query(context.Background(), query)
		return queryResultMsg{query: query, results: results, err: err}
	}
}
