package ui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kamikazebr/iskra-desktop/internal/client/usage"
)

type (
	creditsMsg     usage.Display
	hideCreditsMsg struct{}
	errorMsg       struct {
		err error
		seq int
	}
	clearErrorMsg struct{ seq int }
)

// StatusModel is the live view behind `iskra watch`: the credits line plus
// the last error, which disappears after ErrorTTL.
type StatusModel struct {
	title   string
	display *usage.Display
	err     error
	errSeq  int
	ttl     time.Duration
}

func NewStatusModel(title string) StatusModel {
	return StatusModel{title: title, ttl: ErrorTTL}
}

func (m StatusModel) Init() tea.Cmd {
	return nil
}

func (m StatusModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		}

	case creditsMsg:
		d := usage.Display(msg)
		m.display = &d

	case hideCreditsMsg:
		m.display = nil

	case errorMsg:
		m.err, m.errSeq = msg.err, msg.seq
		seq, ttl := msg.seq, m.ttl
		return m, tea.Tick(ttl, func(time.Time) tea.Msg { return clearErrorMsg{seq: seq} })

	case clearErrorMsg:
		if msg.seq == m.errSeq {
			m.err = nil
		}
	}
	return m, nil
}

func (m StatusModel) View() string {
	var b strings.Builder
	if m.title != "" {
		b.WriteString(TitleStyle.Render(m.title))
		b.WriteString("\n\n")
	}

	if m.display == nil {
		b.WriteString(HelpStyle.Render("Not signed in"))
	} else {
		b.WriteString(RenderCredits(*m.display))
		b.WriteString("\n")
		b.WriteString(HelpStyle.Render(CreditsTooltip(*m.display)))
	}
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(ErrorStyle.Render("✗ " + m.err.Error()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(HelpStyle.Render("q quit"))
	return b.String()
}

// ProgramIndicator forwards indicator updates into a running program.
type ProgramIndicator struct {
	p   *tea.Program
	seq int
}

func NewProgramIndicator(p *tea.Program) *ProgramIndicator {
	return &ProgramIndicator{p: p}
}

func (i *ProgramIndicator) Show(d usage.Display) {
	i.p.Send(creditsMsg(d))
}

func (i *ProgramIndicator) Hide() {
	i.p.Send(hideCreditsMsg{})
}

// ShowError displays err for ErrorTTL. Not safe for concurrent use.
func (i *ProgramIndicator) ShowError(err error) {
	i.seq++
	i.p.Send(errorMsg{err: err, seq: i.seq})
}
