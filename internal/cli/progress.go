package cli

import (
	"context"
	"fmt"
	"time"

	"charm.land/bubbles/v2/progress"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"
	"github.com/perimetric/council/internal/models"
	"github.com/perimetric/council/internal/review"
)

const pollInterval = time.Second

// Theme holds the color scheme for the progress display.
type Theme struct {
	Status     lipgloss.Color
	Success    lipgloss.Color
	Error      lipgloss.Color
	Hint       lipgloss.Color
	ProgressBg lipgloss.Color
}

// defaultTheme provides default colors.
var defaultTheme = Theme{
	Status:     lipgloss.Color("#5FAFD7"), // light blue
	Success:    lipgloss.Color("#00D787"), // green
	Error:      lipgloss.Color("#FF005F"), // red
	Hint:       lipgloss.Color("#6C6C6C"), // dim gray
	ProgressBg: lipgloss.Color("#3A3A3A"), // dark gray
}

// Style functions for dynamic theming
func (t Theme) statusStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Status)
}

func (t Theme) completedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Success).Bold(true)
}

func (t Theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error).Bold(true)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

// tickMsg triggers polling the job status
type tickMsg time.Time

// jobUpdateMsg carries the updated job data
type jobUpdateMsg struct {
	job *models.Job
	err error
}

// progressModel is the bubbletea model for watching a review job.
type progressModel struct {
	svc      *review.Service
	jobID    string
	job      *models.Job
	progress progress.Model
	theme    Theme
	done     bool
	quitting bool
	err      error
}

// newProgressModel creates a new progress model.
func newProgressModel(svc *review.Service, jobID string) progressModel {
	// Create progress bar with color blend
	prog := progress.New(
		progress.WithDefaultBlend(),
		progress.WithWidth(40),
	)

	return progressModel{
		svc:      svc,
		jobID:    jobID,
		progress: prog,
		theme:    defaultTheme,
	}
}

// Init returns the initial commands (immediate fetch, then polling).
func (m progressModel) Init() tea.Cmd {
	return tea.Batch(
		m.fetchJob(),
		m.progress.Init(),
	)
}

// Update handles messages and returns the updated model.
func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		}

	case tickMsg:
		// Fetch job status
		return m, m.fetchJob()

	case jobUpdateMsg:
		if msg.err != nil {
			m.err = fmt.Errorf("failed to fetch job status: %w", msg.err)
			m.done = true
			return m, tea.Quit
		}

		m.job = msg.job

		// Check for terminal states
		switch m.job.Status {
		case models.StatusCompleted:
			m.done = true
			return m, tea.Quit
		case models.StatusFailed:
			m.done = true
			if m.job.Error != "" {
				m.err = fmt.Errorf("%s", m.job.Error)
			} else {
				m.err = fmt.Errorf("job failed with unknown error")
			}
			return m, tea.Quit
		}

		// Continue polling for running jobs
		return m, tickCmd()

	case progress.FrameMsg:
		// Update progress bar animation
		var cmd tea.Cmd
		m.progress, cmd = m.progress.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the progress display.
func (m progressModel) View() tea.View {
	return tea.NewView(m.renderContent())
}

// renderContent builds the display string.
func (m progressModel) renderContent() string {
	if m.done {
		return m.finalView()
	}

	if m.job == nil {
		return "Loading job status...\n"
	}

	agentStates := latestByAgent(m.job.Progress)

	// Overall fraction is the mean of the agents' latest fractions
	var pct float64
	finished := 0
	for _, ev := range agentStates {
		pct += ev.Fraction
		if ev.Phase == models.PhaseCompleted || ev.Phase == models.PhaseError {
			finished++
		}
	}
	if len(agentStates) > 0 {
		pct /= float64(len(agentStates))
	}

	// Status line with color
	status := m.theme.statusStyle().Render(fmt.Sprintf("[%s]", m.job.Status))

	// Progress bar with counts
	progressBar := m.progress.ViewAs(pct)
	counts := fmt.Sprintf("%d/%d agents", finished, len(agentStates))

	var agentLines string
	for _, ev := range agentStates {
		agentLines += "  " + m.agentLine(ev) + "\n"
	}

	// Hint about background operation
	hint := m.theme.hintStyle().Render("Press Ctrl+C to continue in background")

	return fmt.Sprintf("%s %s %s\n%s%s\n", status, progressBar, counts, agentLines, hint)
}

// agentLine renders one agent's latest progress event.
func (m progressModel) agentLine(ev models.ProgressEvent) string {
	switch ev.Phase {
	case models.PhaseCompleted:
		return m.theme.completedStyle().Render("✓ ") + ev.Message
	case models.PhaseError:
		return m.theme.errorStyle().Render("✗ " + ev.Message)
	case models.PhaseAnalyzing:
		return m.theme.statusStyle().Render("• ") + ev.Message
	default:
		return m.theme.hintStyle().Render("· ") + ev.Message
	}
}

// finalView renders the completion message.
func (m progressModel) finalView() string {
	if m.quitting {
		msg := fmt.Sprintf("\nReview %s continues in background.\nUse 'council results %s' to fetch the report.\n",
			m.jobID, m.jobID)
		return m.theme.hintStyle().Render(msg)
	}

	if m.err != nil {
		return m.theme.errorStyle().Render(fmt.Sprintf("\n✗ Review failed: %s\n", m.err))
	}

	// Success with report summary
	if m.job != nil && m.job.Report != nil {
		s := m.job.Report.Summary
		var output string
		output += m.theme.completedStyle().Render("✓ Review complete") + "\n\n"
		output += fmt.Sprintf("  Findings: %d (%d critical, %d high priority)\n",
			s.Findings, s.CriticalFindings, s.HighPriorityFindings)
		output += fmt.Sprintf("  Files:    %d\n", s.Files)
		output += fmt.Sprintf("  Agents:   %d/%d succeeded\n", s.AgentsSucceeded, s.AgentsTotal)

		var failed []models.AgentReport
		for _, ar := range m.job.Report.Agents {
			if !ar.Succeeded {
				failed = append(failed, ar)
			}
		}
		if len(failed) > 0 {
			output += m.theme.errorStyle().Render(fmt.Sprintf("\nWarnings (%d):\n", len(failed)))
			for _, ar := range failed {
				output += fmt.Sprintf("  • %s: %s\n", ar.AgentName, ar.Error)
			}
		}
		return output
	}

	return m.theme.completedStyle().Render("✓ Review complete\n")
}

// latestByAgent reduces the progress log to each agent's latest event,
// preserving first-appearance order.
func latestByAgent(events []models.ProgressEvent) []models.ProgressEvent {
	idx := make(map[string]int, len(events))
	var latest []models.ProgressEvent
	for _, ev := range events {
		if i, ok := idx[ev.Agent]; ok {
			latest[i] = ev
			continue
		}
		idx[ev.Agent] = len(latest)
		latest = append(latest, ev)
	}
	return latest
}

// fetchJob fetches the current job state from the store.
// Runs in a separate goroutine (command) to avoid blocking Update().
func (m progressModel) fetchJob() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		job, err := m.svc.Status(ctx, m.jobID)
		return jobUpdateMsg{job: job, err: err}
	}
}

// tickCmd returns a command that sends a tick after the poll interval.
func tickCmd() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// RunJobProgress runs the interactive progress UI for a review job.
// Returns nil on success or Ctrl+C (background), error on job failure.
func RunJobProgress(svc *review.Service, jobID string) error {
	model := newProgressModel(svc, jobID)
	p := tea.NewProgram(model)

	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("progress UI error: %w", err)
	}

	// Check final state
	if m, ok := finalModel.(progressModel); ok {
		// If user quit with Ctrl+C, job continues in background - not an error
		if m.quitting {
			return nil
		}
		// If job failed, return the error
		if m.err != nil {
			return m.err
		}
	}

	return nil
}
