package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/bnema/reaction-tally/internal/application"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type tallyDoneMsg struct {
	err error
}

type tallyProgressMsg application.AggregateProgress

// tallyInterruptedMsg is sent once shutdown is requested so the view can say
// the run is draining.
type tallyInterruptedMsg struct{}

var failedFetchStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))

type tallySpinnerModel struct {
	spinner     spinner.Model
	run         tea.Cmd
	progress    application.AggregateProgress
	interrupted bool
	err         error
	done        bool
}

func newTallySpinnerModel(run tea.Cmd) tallySpinnerModel {
	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("69"))),
	)

	return tallySpinnerModel{spinner: s, run: run}
}

func (m tallySpinnerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.run)
}

func (m tallySpinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tallyProgressMsg:
		// Updates arrive from concurrent fetches and may be out of order.
		if msg.Finished >= m.progress.Finished {
			m.progress = application.AggregateProgress(msg)
		}
		return m, nil
	case tallyInterruptedMsg:
		m.interrupted = true
		return m, nil
	case tallyDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m tallySpinnerModel) View() string {
	if m.done {
		return ""
	}

	label := "Scanning channel..."
	if m.progress.Fetches > 0 {
		label = fmt.Sprintf("Counting reactions %d/%d", m.progress.Finished, m.progress.Fetches)
		if m.progress.Failed > 0 {
			label += failedFetchStyle.Render(fmt.Sprintf(" (%d failed)", m.progress.Failed))
		}
	}
	if m.interrupted {
		label += " - stopping, waiting for dispatched fetches"
	}

	return fmt.Sprintf("%s %s", m.spinner.View(), label)
}

// runTallySpinner shows fetch progress while run executes. The program keeps
// running after ctx is cancelled so that run can drain and return its
// partial report.
func runTallySpinner(ctx context.Context, output io.Writer, run func(context.Context, application.ProgressFunc) error) error {
	var p *tea.Program
	progress := func(update application.AggregateProgress) {
		p.Send(tallyProgressMsg(update))
	}
	runCmd := func() tea.Msg {
		return tallyDoneMsg{err: run(ctx, progress)}
	}

	p = tea.NewProgram(
		newTallySpinnerModel(runCmd),
		tea.WithInput(nil),
		tea.WithOutput(output),
		tea.WithoutSignalHandler(),
	)

	stopWatch := context.AfterFunc(ctx, func() {
		p.Send(tallyInterruptedMsg{})
	})
	defer stopWatch()

	finalModel, err := p.Run()
	if err != nil {
		return err
	}

	result, ok := finalModel.(tallySpinnerModel)
	if !ok {
		return fmt.Errorf("unexpected final spinner model type %T", finalModel)
	}

	return result.err
}
