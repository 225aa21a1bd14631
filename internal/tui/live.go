// Package tui hosts a session in the terminal with bubbletea.
package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
	"github.com/san-kum/orrery/internal/config"
	"github.com/san-kum/orrery/internal/ephemeris"
	"github.com/san-kum/orrery/internal/loop"
	"github.com/san-kum/orrery/internal/session"
	"github.com/san-kum/orrery/internal/term"
)

const (
	tickInterval = 16 * time.Millisecond

	// chrome is the number of rows taken by the header, status and help lines.
	chrome = 4

	// A terminal cell is roughly 8×16 screen pixels; drags are scaled to
	// that so rotation feels the same as with a window host.
	cellWidth  = 8
	cellHeight = 16

	wheelNotch = 100.0
	arrowStep  = 40.0

	defaultCols = 80
	defaultRows = 24
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffffff")).
			Background(lipgloss.Color("#1a1a2e")).
			Padding(0, 1)
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	valueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	runningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff88")).Bold(true)
	pausedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffcc00")).Bold(true)
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
)

type TickMsg time.Time

type Model struct {
	session *session.Session
	backend *term.Backend
	queue   *loop.Queue

	width, height int
	showHelp      bool
	quitting      bool
}

// NewModel wraps a session that draws into backend and is scheduled on queue.
func NewModel(s *session.Session, b *term.Backend, q *loop.Queue) Model {
	return Model{session: s, backend: b, queue: q}
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	m.session.Start()
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		rows := msg.Height - chrome
		if rows < 1 {
			rows = 1
		}
		m.session.Resize(msg.Width*2, rows*4)
		return m, nil

	case TickMsg:
		if m.quitting {
			return m, nil
		}
		m.queue.RunDue()
		return m, tick()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.session
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		m.quitting = true
		s.Close()
		return m, tea.Quit
	case " ", "space":
		s.TogglePlayPause()
	case "r":
		s.Reset()
	case "[", "-":
		s.SlowDown()
	case "]", "+", "=":
		s.SpeedUp()
	case "o":
		s.ToggleOrbits()
	case "l":
		s.ToggleLabels()
	case "z":
		s.Wheel(-wheelNotch)
	case "x":
		s.Wheel(wheelNotch)
	case "left":
		m.nudge(-arrowStep, 0)
	case "right":
		m.nudge(arrowStep, 0)
	case "up":
		m.nudge(0, -arrowStep)
	case "down":
		m.nudge(0, arrowStep)
	case "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

// nudge replays a short drag so the camera can be turned without a mouse.
func (m Model) nudge(dx, dy float64) {
	if m.session.Camera().State().Dragging {
		return
	}
	m.session.PointerDown(0, 0)
	m.session.PointerMove(dx, dy)
	m.session.PointerUp()
}

func (m Model) handleMouse(msg tea.MouseMsg) {
	s := m.session
	x, y := float64(msg.X*cellWidth), float64(msg.Y*cellHeight)
	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		s.Wheel(-wheelNotch)
	case msg.Button == tea.MouseButtonWheelDown:
		s.Wheel(wheelNotch)
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		s.PointerDown(x, y)
	case msg.Action == tea.MouseActionMotion:
		s.PointerMove(x, y)
	case msg.Action == tea.MouseActionRelease:
		s.PointerUp()
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	st := m.session.Status()

	header := headerStyle.Render(st.Title)

	state := runningStyle.Render("▶ running")
	if !st.Running {
		state = pausedStyle.Render("⏸ paused")
	}
	status := fmt.Sprintf("%s %s   %s %s   %s",
		labelStyle.Render("Date:"), valueStyle.Render(st.Date),
		labelStyle.Render("Speed:"), valueStyle.Render(st.Speed),
		state)

	help := "drag to rotate • scroll to zoom • ? keys"
	if m.showHelp {
		help = "space play/pause • r reset • [ ] speed • o orbits • l labels • arrows rotate • z/x zoom • q quit"
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.backend.View(),
		status,
		helpStyle.Render(help),
	)
}

// Run opens a full-screen terminal session for cfg and blocks until the user
// quits.
func Run(cfg *config.Config, log zerolog.Logger) error {
	b := term.NewBackend(defaultCols, defaultRows-chrome)
	q := loop.New(loop.SystemClock{})
	s := session.New(cfg, b, q, ephemeris.NewKepler(), log)
	defer s.Close()

	p := tea.NewProgram(NewModel(s, b, q), tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run terminal host: %w", err)
	}
	return nil
}
