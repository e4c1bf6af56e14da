// Package display provides the terminal UI using Bubble Tea.
//
// The [UI] type manages a persistent table status bar and an input
// prompt at the bottom of the terminal. All application output is
// printed above the rendered area via Program.Println / Printf,
// ensuring concurrent writes never garble the display.
package display

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fondita/mesaboard/internal/domain"
	"github.com/fondita/mesaboard/internal/estimate"
)

// ── Styles ───────────────────────────────────────────────────────

var (
	barBg = lipgloss.NewStyle().
		Background(lipgloss.Color("#27272a")).
		Foreground(lipgloss.Color("#a1a1aa"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#a1a1aa"))

	sepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#52525b"))

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94a3b8"))

	// BannerStyle — muted slate for the startup banner.
	BannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94a3b8"))

	// Header — soft mint for section headers.
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bbf7d0"))

	// Primary text — light zinc for normal output.
	primaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4d4d8"))

	// Secondary text — dimmed zinc for hints, tips, metadata.
	secondaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#71717a"))

	// Urgent — soft coral for errors/alerts.
	urgentOutputStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#fca5a5"))

	userInputEchoStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#a1a1aa"))

	// severityStyles colors a table by how backed up it is. The idle
	// grey is used for empty tables.
	severityStyles = map[domain.Severity]lipgloss.Style{
		domain.SeverityIdle:      lipgloss.NewStyle().Foreground(lipgloss.Color("#CCCCCC")),
		domain.SeverityFast:      lipgloss.NewStyle().Foreground(lipgloss.Color("#7CB342")),
		domain.SeverityNormal:    lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA726")),
		domain.SeverityAttention: lipgloss.NewStyle().Foreground(lipgloss.Color("#FF9800")),
		domain.SeverityUrgent:    lipgloss.NewStyle().Foreground(lipgloss.Color("#EF5350")).Bold(true),
	}
)

func severityStyle(s domain.Severity) lipgloss.Style {
	if st, ok := severityStyles[s]; ok {
		return st
	}
	return severityStyles[domain.SeverityIdle]
}

// ── UI ───────────────────────────────────────────────────────────

// UI manages the terminal through Bubble Tea.
//
// Call [NewUI] then [UI.Run] (blocking).  Other goroutines may
// safely call [UI.Println], [UI.Printf], [UI.SetViews], and read
// from [UI.InputChan] at any time after [UI.WaitReady] returns.
type UI struct {
	prompt  string
	title   string
	program atomic.Pointer[tea.Program] // set once by Run; readers may race startup
	inputCh chan string
	readyCh chan struct{}
	quitCh  chan struct{}
	done    atomic.Bool
}

// NewUI creates the display. The prompt is shown verbatim before the
// input field (e.g. "mesa> "). Call Run() to start.
func NewUI(prompt, title string) *UI {
	return &UI{
		prompt:  prompt,
		title:   title,
		inputCh: make(chan string, 16),
		readyCh: make(chan struct{}),
		quitCh:  make(chan struct{}),
	}
}

// Println prints a line above the prompt. Thread-safe.
// If the program hasn't started yet, falls back to fmt.Println.
func (u *UI) Println(a ...interface{}) {
	if p := u.program.Load(); p != nil && !u.done.Load() {
		p.Println(a...)
	} else {
		fmt.Println(a...)
	}
}

// Printf prints formatted text above the prompt. Thread-safe.
// The output is printed on its own line (a trailing newline in the
// format string will produce an extra blank line).
func (u *UI) Printf(format string, a ...interface{}) {
	if p := u.program.Load(); p != nil && !u.done.Load() {
		p.Printf(format, a...)
	} else {
		fmt.Printf(format, a...)
	}
}

// InputChan returns completed user-input lines.
func (u *UI) InputChan() <-chan string { return u.inputCh }

// SetViews pushes a fresh board frame into the status bar. Thread-safe;
// called from the board's subscription goroutine.
func (u *UI) SetViews(views []domain.TableView) {
	if p := u.program.Load(); p != nil && !u.done.Load() {
		p.Send(viewsMsg(views))
	}
}

// ── Styled print helpers ─────────────────────────────────────────

// PrintHeader prints a section header like "Mesa 4".
func (u *UI) PrintHeader(text string) {
	u.Println(headerStyle.Render("  " + text))
}

// PrintInfo prints a normal output line.
func (u *UI) PrintInfo(text string) {
	u.Println(primaryStyle.Render("  " + text))
}

// PrintHint prints a secondary/dimmed line.
func (u *UI) PrintHint(text string) {
	u.Println(secondaryStyle.Render("  " + text))
}

// PrintUrgent prints an urgent/error line (red, bold).
func (u *UI) PrintUrgent(text string) {
	u.Println(urgentOutputStyle.Render("  " + text))
}

// PrintUserInput echoes the user's typed command into the scrollback.
func (u *UI) PrintUserInput(text string) {
	u.Println(promptStyle.Render(strings.TrimSuffix(u.prompt, " ")) + secondaryStyle.Render(" ") + userInputEchoStyle.Render(text))
}

// WaitReady blocks until the Bubble Tea event loop is running.
func (u *UI) WaitReady() { <-u.readyCh }

// Quit tells Bubble Tea to exit.
func (u *UI) Quit() {
	if p := u.program.Load(); p != nil {
		p.Quit()
	}
}

// QuitChan is closed when Run returns.
func (u *UI) QuitChan() <-chan struct{} { return u.quitCh }

// Run starts the Bubble Tea event loop.  Blocks until quit.
func (u *UI) Run() error {
	ti := textinput.New()
	// Use a plain-text prompt so the textinput width math stays correct.
	// Lipgloss-styled prompts add invisible ANSI bytes that break the
	// internal offset/scroll calculations for long input.
	ti.Prompt = u.prompt
	ti.PromptStyle = promptStyle
	ti.TextStyle = userInputEchoStyle
	ti.Cursor.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#94a3b8"))
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60 // updated on first WindowSizeMsg

	m := model{
		title:   u.title,
		input:   ti,
		inputCh: u.inputCh,
		readyCh: u.readyCh,
		echoFn: func(v string) {
			u.PrintUserInput(v)
		},
	}

	p := tea.NewProgram(m)
	u.program.Store(p)
	_, err := p.Run()
	u.done.Store(true)
	close(u.quitCh)
	return err
}

// ── Bubble Tea model ─────────────────────────────────────────────

type model struct {
	title   string
	input   textinput.Model
	inputCh chan<- string
	readyCh chan struct{}
	echoFn  func(string) // prints user input into scrollback
	views   []domain.TableView
	width   int
}

// viewsMsg carries a new board frame into the model.
type viewsMsg []domain.TableView

func (m model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		signalReady(m.readyCh),
	)
}

func signalReady(ch chan struct{}) tea.Cmd {
	return func() tea.Msg {
		close(ch)
		return nil
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeyEnter:
			v := m.input.Value()
			m.input.Reset()
			if strings.TrimSpace(v) != "" {
				m.inputCh <- v
				// Return a Cmd that prints the echo — this runs
				// outside Update so it won't deadlock on msgs.
				echoFn := m.echoFn
				return m, func() tea.Msg {
					echoFn(v)
					return nil
				}
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		promptLen := len(m.input.Prompt)
		if msg.Width > promptLen {
			m.input.Width = msg.Width - promptLen
		}
		return m, nil

	case viewsMsg:
		m.views = msg
		return m, tea.SetWindowTitle(m.titleStr())
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) titleStr() string {
	occupied := 0
	urgent := 0
	for _, v := range m.views {
		if v.Occupied() {
			occupied++
		}
		if v.Severity == domain.SeverityUrgent {
			urgent++
		}
	}
	if urgent > 0 {
		return fmt.Sprintf("%s — %d open, %d urgent", m.title, occupied, urgent)
	}
	return fmt.Sprintf("%s — %d open", m.title, occupied)
}

func (m model) View() string {
	var b strings.Builder

	if len(m.views) > 0 {
		b.WriteString(m.renderBar())
		b.WriteByte('\n')
	}

	// Blank line before prompt for visual separation.
	b.WriteByte('\n')
	b.WriteString(m.input.View())
	return b.String()
}

// renderBar draws one segment per table, colored by severity:
// "4: 27 min" for an occupied table, "4: libre" for an empty one.
func (m model) renderBar() string {
	var parts []string
	for _, v := range m.views {
		style := severityStyle(v.Severity)
		if !v.Occupied() {
			parts = append(parts, labelStyle.Render(v.Table+": ")+style.Render("libre"))
			continue
		}
		parts = append(parts,
			labelStyle.Render(v.Table+": ")+
				style.Render(estimate.FormatEstimated(v.RemainingMinutes)))
	}

	content := " " + strings.Join(parts, sepStyle.Render("  │  ")) + " "

	w := m.width
	if w <= 0 {
		w = 80
	}
	return barBg.Width(w).Render(content)
}
