package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/progress"

	tea "github.com/charmbracelet/bubbletea"
)

// stepMsg reports one finished input to the progress display.
type stepMsg struct {
	name   string
	failed bool
}

// doneMsg ends the progress display.
type doneMsg struct{}

// progressWidth is the bar width in cells.
const progressWidth = 30

// progressModel is the Bubble Tea model for the batch progress display.
type progressModel struct {
	bar    progress.Model
	total  int
	done   int
	failed int
	name   string
}

func (m progressModel) Init() tea.Cmd { return nil }

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stepMsg:
		m.done++
		m.name = msg.name

		if msg.failed {
			m.failed++
		}

		return m, nil

	case doneMsg:
		return m, tea.Quit
	}

	return m, nil
}

func (m progressModel) View() string {
	percent := float64(m.done) / float64(m.total)

	line := fmt.Sprintf("%s %d/%d", m.bar.ViewAs(percent), m.done, m.total)

	if m.failed > 0 {
		line += failStyle.Render(fmt.Sprintf(" %d failed", m.failed))
	}

	if m.name != "" {
		line += skipStyle.Render(" " + m.name)
	}

	return line + "\n"
}

// notifier forwards per-input completion events to the progress display.
// The zero notifier discards everything, which is how batches run when
// the display is disabled.
type notifier struct {
	prog *tea.Program
	wait chan struct{}
}

// startProgress launches the progress display when enabled. The caller
// must invoke done to stop the display and wait for the terminal to be
// restored.
//
// The display never reads input: stdin may itself be one of the batch
// inputs.
func startProgress(ctx context.Context, enabled bool, total int) *notifier {
	n := &notifier{}

	if !enabled || total == 0 {
		return n
	}

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = progressWidth

	n.prog = tea.NewProgram(
		progressModel{bar: bar, total: total},
		tea.WithContext(ctx),
		tea.WithOutput(os.Stderr),
		tea.WithInput(nil),
	)

	n.wait = make(chan struct{})

	go func() {
		defer close(n.wait)

		_, _ = n.prog.Run()
	}()

	return n
}

// step reports one finished input.
func (n *notifier) step(name string, failed bool) {
	if n.prog != nil {
		n.prog.Send(stepMsg{name: name, failed: failed})
	}
}

// done stops the display and blocks until the terminal is restored.
func (n *notifier) done() {
	if n.prog == nil {
		return
	}

	n.prog.Send(doneMsg{})
	<-n.wait
}
