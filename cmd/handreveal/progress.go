package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lox/handreveal/internal/session"
)

type fileResolvedMsg struct {
	result *session.Result
}

type batchDoneMsg struct{}

// progressModel renders a live view of a batch resolution.
type progressModel struct {
	spinner spinner.Model
	bar     progress.Model
	total   int
	done    int
	lines   []string
}

func newProgressModel(total int) progressModel {
	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))

	return progressModel{
		spinner: sp,
		bar:     progress.New(progress.WithDefaultGradient()),
		total:   total,
	}
}

func (m progressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case fileResolvedMsg:
		m.done++
		m.lines = append(m.lines, resultLine(msg.result))
		return m, m.bar.SetPercent(float64(m.done) / float64(m.total))

	case batchDoneMsg:
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}

	return m, nil
}

func (m progressModel) View() string {
	var b strings.Builder
	for _, line := range m.lines {
		b.WriteString(line)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "%s resolving %d/%d\n%s\n", m.spinner.View(), m.done, m.total, m.bar.View())
	return b.String()
}

// runWithProgress resolves the batch behind a Bubble Tea program so the
// per-file results render above a live progress bar.
func runWithProgress(ctx context.Context, resolver *session.Resolver, files []string) ([]*session.Result, error) {
	program := tea.NewProgram(newProgressModel(len(files)), tea.WithAltScreen())

	var results []*session.Result
	go func() {
		results = resolver.ResolveBatch(ctx, files, func(res *session.Result) {
			program.Send(fileResolvedMsg{result: res})
		})
		program.Send(batchDoneMsg{})
	}()

	if _, err := program.Run(); err != nil {
		return nil, err
	}
	for _, line := range linesFor(results) {
		fmt.Println(line)
	}
	return results, nil
}

// linesFor replays the per-file lines after the program exits, since the
// alternate screen contents are discarded on quit.
func linesFor(results []*session.Result) []string {
	lines := make([]string, 0, len(results))
	for _, res := range results {
		lines = append(lines, resultLine(res))
	}
	return lines
}
