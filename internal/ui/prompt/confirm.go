package prompt

import (
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"github.com/mattn/go-isatty"
)

// ConfirmResult holds the result of a confirmation prompt.
type ConfirmResult struct {
	Confirmed bool
	Cancelled bool
}

type confirmModel struct {
	prompt    string
	confirmed bool
	done      bool
	cancelled bool
}

func (m confirmModel) Init() tea.Cmd {
	return nil
}

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "y", "Y":
		m.confirmed = true
		m.done = true
		return m, tea.Quit
	case "n", "N", "enter":
		m.done = true
		return m, tea.Quit
	case "ctrl+c", "q", "esc":
		m.cancelled = true
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m confirmModel) View() tea.View {
	return tea.NewView(m.render())
}

func (m confirmModel) render() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("%s [y/N] ", m.prompt)
}

// Interactive reports whether stdin and stderr are both terminals, so a
// prompt can be answered.
func Interactive() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stderr.Fd())
}

// Confirm shows a yes/no prompt on stderr and returns the user's choice.
// Enter without input answers "no".
func Confirm(prompt string) (ConfirmResult, error) {
	p := tea.NewProgram(confirmModel{prompt: prompt}, tea.WithOutput(os.Stderr))
	finalModel, err := p.Run()
	if err != nil {
		return ConfirmResult{}, err
	}
	m := finalModel.(confirmModel)
	return ConfirmResult{
		Confirmed: m.confirmed,
		Cancelled: m.cancelled,
	}, nil
}
