package controller

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// recentLimit is how many processed files stay listed under the bar.
const recentLimit = 8

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	statusStyles = map[string]lipgloss.Style{
		statusChanged:   lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true), // Green
		statusUnchanged: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),             // Gray
		statusFailed:    lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true), // Red
	}
)

// runModel renders progress while codemods run.
type runModel struct {
	progressBar progress.Model
	width       int
	total       int
	done        int
	changed     int
	failed      int
	changes     int
	recent      []fileDoneMsg
	finished    bool
}

func newRunModel(total int) runModel {
	return runModel{
		progressBar: progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		total:       total,
	}
}

func (r runModel) Init() tea.Cmd {
	return nil
}

func (r runModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		r.width = msg.Width
		r.progressBar.Width = max(10, min(msg.Width-10, 60))
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return r, tea.Quit
		}
	case fileDoneMsg:
		r.done++
		r.changes += msg.changes

		switch msg.status {
		case statusChanged:
			r.changed++
		case statusFailed:
			r.failed++
		}

		r.recent = append(r.recent, msg)
		if len(r.recent) > recentLimit {
			r.recent = r.recent[len(r.recent)-recentLimit:]
		}
	case runFinishedMsg:
		r.finished = true

		return r, tea.Quit
	}

	return r, nil
}

func (r runModel) percent() float64 {
	if r.total == 0 {
		return 1
	}

	return float64(r.done) / float64(r.total)
}

func (r runModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("codemodder"))
	b.WriteString("\n\n")
	b.WriteString(r.progressBar.ViewAs(r.percent()))
	b.WriteString(fmt.Sprintf("  %d/%d files\n", r.done, r.total))
	b.WriteString(mutedStyle.Render(fmt.Sprintf("%d changed, %d failed, %d changes", r.changed, r.failed, r.changes)))
	b.WriteString("\n\n")

	for _, f := range r.recent {
		style, ok := statusStyles[f.status]
		if !ok {
			style = mutedStyle
		}

		b.WriteString(style.Render(fmt.Sprintf("%-10s", f.status)))
		b.WriteString(truncatePath(f.path, r.width-12))
		b.WriteString("\n")
	}

	return b.String()
}

// truncatePath keeps the tail of path within width runes.
func truncatePath(path string, width int) string {
	runes := []rune(path)
	if width <= 3 || len(runes) <= width {
		return path
	}

	return "..." + string(runes[len(runes)-width+3:])
}
