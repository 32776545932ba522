// Package optimizeui provides the Bubble Tea grid-search interface.
package optimizeui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/okatens/addstat/internal/model"
	"github.com/okatens/addstat/internal/optimize"
	"github.com/okatens/addstat/internal/stats"
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle  = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
)

type progressMsg optimize.Progress

type doneMsg struct {
	result model.OptimizationResult
	err    error
}

// Model implements the Bubble Tea grid-search UI.
type Model struct {
	exercises   []model.Exercise
	evaluations []model.Evaluation
	opts        optimize.Options

	bar     progress.Model
	spin    spinner.Model
	current int
	total   int

	msgs   chan tea.Msg
	cancel context.CancelFunc

	cancelling bool
	done       bool
	result     model.OptimizationResult
	err        error
	width      int
}

// NewModel constructs a grid-search UI model.
func NewModel(exercises []model.Exercise, evaluations []model.Evaluation, opts optimize.Options) *Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return &Model{
		exercises:   exercises,
		evaluations: evaluations,
		opts:        opts,
		bar:         progress.New(progress.WithDefaultGradient()),
		spin:        sp,
		total:       optimize.TotalCombinations(),
		msgs:        make(chan tea.Msg),
	}
}

// Result returns the search outcome once the program has finished.
func (m *Model) Result() (model.OptimizationResult, error) {
	return m.result, m.err
}

// Init starts the grid search on a worker goroutine.
func (m *Model) Init() tea.Cmd {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel

	opts := m.opts
	opts.OnProgress = func(p optimize.Progress) {
		select {
		case m.msgs <- progressMsg(p):
		case <-ctx.Done():
		}
	}
	go func() {
		result, err := optimize.GridSearch(ctx, m.exercises, m.evaluations, opts)
		m.msgs <- doneMsg{result: result, err: err}
	}()

	return tea.Batch(m.spin.Tick, m.listen())
}

func (m *Model) listen() tea.Cmd {
	return func() tea.Msg {
		return <-m.msgs
	}
}

// Update handles progress, completion, resize, and key events.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			if !m.done {
				m.cancelling = true
				m.cancel()
				return m, nil
			}
			return m, tea.Quit
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		barWidth := msg.Width - 8
		if barWidth > 60 {
			barWidth = 60
		}
		if barWidth > 0 {
			m.bar.Width = barWidth
		}
		return m, nil
	case progressMsg:
		m.current = msg.Current
		m.total = msg.Total
		return m, m.listen()
	case doneMsg:
		m.done = true
		m.result = msg.result
		m.err = msg.err
		m.cancel()
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the progress screen or the final result panel.
func (m *Model) View() string {
	if m.done {
		return m.viewResult()
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("Optimizing difficulty weights"))
	b.WriteString("\n\n")
	ratio := 0.0
	if m.total > 0 {
		ratio = float64(m.current) / float64(m.total)
	}
	b.WriteString(fmt.Sprintf("%s %s %d/%d\n", m.spin.View(), m.bar.ViewAs(ratio), m.current, m.total))
	if m.cancelling {
		b.WriteString(mutedStyle.Render("Cancelling...") + "\n")
	} else {
		b.WriteString(mutedStyle.Render("Press q to cancel") + "\n")
	}
	return b.String()
}

func (m *Model) viewResult() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Search stopped: %v", m.err)) + "\n"
	}
	w := m.result.Weights
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Best weights: digits=%.1f carryovers=%.1f zeros=%.1f\n", w.Digits, w.Carryovers, w.Zeros))
	b.WriteString(fmt.Sprintf("Composite score: %.3f\n", m.result.CompositeScore))
	b.WriteString(renderCorrelation("solve time", m.result.Correlations.Time))
	b.WriteString(renderCorrelation("rating", m.result.Correlations.Rating))
	b.WriteString(renderCorrelation("correctness", m.result.Correlations.Correctness))
	return cardStyle.Render(b.String()) + "\n"
}

func renderCorrelation(name string, r *float64) string {
	if r == nil {
		return fmt.Sprintf("%-12s %s\n", name, mutedStyle.Render("n/a"))
	}
	return fmt.Sprintf("%-12s %+.3f (%s)\n", name, *r, stats.Strength(*r, true))
}
