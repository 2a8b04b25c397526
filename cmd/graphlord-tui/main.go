package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/graphlord/graphlord/pkg/client"
	"github.com/graphlord/graphlord/pkg/graph"
)

// Config
const (
	pollRate       = 2 * time.Second
	maxRows        = 20
	viewportHeight = 20
)

// Styles
var (
	subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))

	// Layout styles
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			Width(100)

	paneStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1).
			Width(100)

	// Row styles
	nodeIDStyle = lipgloss.NewStyle().Width(30).Bold(true)
	scoreStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("99"))
	bridgeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
)

type tickMsg time.Time

type dataMsg struct {
	info       client.GraphInfo
	centrality []graph.CentralityScore
	bridges    []graph.Node
	err        error
}

type model struct {
	api      *client.Client
	spinner  spinner.Model
	viewport viewport.Model

	info       client.GraphInfo
	centrality []graph.CentralityScore
	bridges    []graph.Node
	err        error
	ready      bool
}

func initialModel(api *client.Client) model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return model{
		api:     api,
		spinner: s,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		fetchData(m.api),
		tick(),
	)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
		return m, tea.Batch(cmds...)

	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case tickMsg:
		cmds = append(cmds, fetchData(m.api), tick())

	case dataMsg:
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.err = nil
			m.info = msg.info
			m.centrality = msg.centrality
			m.bridges = msg.bridges
			m.updateViewportContent()
		}

		if !m.ready {
			m.ready = true
		}

	case tea.WindowSizeMsg:
		if !m.ready {
			m.viewport = viewport.New(msg.Width, viewportHeight)
			m.viewport.Style = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("62")).
				PaddingRight(2)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = viewportHeight
		}
	}

	return m, tea.Batch(cmds...)
}

func (m *model) updateViewportContent() {
	var sb strings.Builder

	sb.WriteString(lipgloss.NewStyle().Bold(true).Underline(true).Render("Central Concepts") + "\n\n")
	for _, score := range m.centrality {
		sb.WriteString(fmt.Sprintf("%s %s\n",
			nodeIDStyle.Render(score.NodeID),
			scoreStyle.Render(fmt.Sprintf("degree=%.3f in=%.3f out=%.3f", score.Degree, score.InDegree, score.OutDegree)),
		))
	}

	sb.WriteString("\n" + lipgloss.NewStyle().Bold(true).Underline(true).Render("Bridges") + "\n\n")
	for _, node := range m.bridges {
		sb.WriteString(fmt.Sprintf("%s %s\n",
			nodeIDStyle.Render(node.ID),
			bridgeStyle.Render(node.Title),
		))
	}

	m.viewport.SetContent(sb.String())
}

func (m model) View() string {
	if !m.ready {
		return fmt.Sprintf("\n%s Initializing...", m.spinner.View())
	}

	// Top Pane: Graph Summary
	var summary strings.Builder
	summary.WriteString(lipgloss.NewStyle().Bold(true).Underline(true).Render("Graph") + "\n\n")
	summary.WriteString(fmt.Sprintf("Nodes: %d   Edges: %d   Isolated: %d\n",
		m.info.Stats.NodeCount, m.info.Stats.EdgeCount, m.info.Stats.IsolatedNodes))
	if m.info.BuiltAt.IsZero() {
		summary.WriteString(subtleStyle.Render("No snapshot yet."))
	} else {
		summary.WriteString(subtleStyle.Render(fmt.Sprintf("Built %s (from cache: %v)",
			m.info.BuiltAt.Format("15:04:05"), m.info.FromCache)))
	}
	topPane := paneStyle.Render(summary.String())

	// Bottom Pane: Rankings
	header := headerStyle.Render(fmt.Sprintf("%s Concept Rankings", m.spinner.View()))
	bottomPane := m.viewport.View()

	// Status Footer
	var status string
	if m.err != nil {
		status = errorStyle.Render(fmt.Sprintf("Offline: %v", m.err))
	} else {
		status = okStyle.Render(fmt.Sprintf("Online • %d relationship types • %d categories",
			len(m.info.Stats.Relationships), len(m.info.Stats.Categories)))
	}
	footer := subtleStyle.Render(fmt.Sprintf("\n%s\nPress q to quit", status))

	return lipgloss.JoinVertical(lipgloss.Left, topPane, header, bottomPane, footer)
}

// Commands

func fetchData(api *client.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), pollRate)
		defer cancel()

		info, err := api.Info(ctx)
		if err != nil {
			return dataMsg{err: err}
		}

		centrality, err := api.Centrality(ctx, maxRows)
		if err != nil {
			return dataMsg{err: err}
		}

		bridges, err := api.Bridges(ctx, maxRows)
		if err != nil {
			return dataMsg{err: err}
		}

		return dataMsg{
			info:       info,
			centrality: centrality,
			bridges:    bridges,
		}
	}
}

func tick() tea.Cmd {
	return tea.Tick(pollRate, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func main() {
	api := client.NewClient(os.Getenv("GRAPHLORD_URL"))

	p := tea.NewProgram(initialModel(api), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Alas, there's been an error: %v", err)
		os.Exit(1)
	}
}
