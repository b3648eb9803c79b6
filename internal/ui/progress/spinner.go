// Package progress draws a spinner on stderr while modules are processed.
//
// The spinner owns the terminal line it draws on, so callers stop it
// before printing anything else to the same terminal.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"github.com/mattn/go-isatty"
)

// messageUpdate is sent to update the spinner message
type messageUpdate string

// Spinner wraps a Bubbletea spinner for simple non-interactive use
type Spinner struct {
	out       io.Writer
	program   *tea.Program
	msgChan   chan string
	done      chan struct{}
	mu        sync.Mutex
	isRunning bool
	lastMsg   string
}

// spinnerModel is the internal Bubbletea model
type spinnerModel struct {
	spinner spinner.Model
	message string
	msgChan chan string
}

func (m spinnerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForMessage())
}

func (m spinnerModel) waitForMessage() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-m.msgChan
		if !ok {
			return tea.Quit()
		}
		return messageUpdate(msg)
	}
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case messageUpdate:
		m.message = string(msg)
		return m, m.waitForMessage()
	default:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
}

func (m spinnerModel) View() tea.View {
	if m.message == "" {
		return tea.NewView("")
	}
	return tea.NewView(fmt.Sprintf("%s %s", m.spinner.View(), m.message))
}

// Enabled reports whether f is an interactive terminal a spinner can be
// drawn on.
func Enabled(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) && os.Getenv("CI") == ""
}

// NewSpinner creates a spinner drawing to out with an initial message.
func NewSpinner(out io.Writer, message string) *Spinner {
	return &Spinner{
		out:     out,
		msgChan: make(chan string, 10),
		done:    make(chan struct{}),
		lastMsg: message,
	}
}

// Start begins the spinner animation
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	model := spinnerModel{
		spinner: sp,
		message: s.lastMsg,
		msgChan: s.msgChan,
	}

	// The command's context owns Ctrl-C.
	s.program = tea.NewProgram(model,
		tea.WithoutSignalHandler(),
		tea.WithOutput(s.out),
	)
	s.isRunning = true

	go func() {
		_, _ = s.program.Run()
		close(s.done)
	}()
}

// Update changes the spinner message. Updates are dropped while the
// message queue is full.
func (s *Spinner) Update(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		s.lastMsg = message
		return
	}

	select {
	case s.msgChan <- message:
	default:
	}
}

// Stop stops the spinner and clears its line
func (s *Spinner) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	close(s.msgChan)
	s.mu.Unlock()

	if s.program != nil {
		s.program.Quit()
	}

	select {
	case <-s.done:
	case <-time.After(500 * time.Millisecond):
	}

	fmt.Fprint(s.out, "\r\033[K")
}
