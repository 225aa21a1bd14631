// Package gui hosts a session in a raylib window.
package gui

import (
	"fmt"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/rs/zerolog"
	"github.com/san-kum/orrery/internal/config"
	"github.com/san-kum/orrery/internal/ephemeris"
	"github.com/san-kum/orrery/internal/loop"
	"github.com/san-kum/orrery/internal/session"
)

const (
	windowWidth  = 1280
	windowHeight = 720
	targetFPS    = 60
	fontPath     = "/usr/share/fonts/liberation/LiberationMono-Regular.ttf"

	// raylib reports one wheel notch as 1; browsers report about 100.
	wheelNotch = 100.0
)

var (
	ColBg      = rl.NewColor(0, 0, 0, 255)
	ColText    = rl.NewColor(220, 220, 220, 255)
	ColTextDim = rl.NewColor(110, 110, 110, 255)
	ColPlay    = rl.NewColor(0, 255, 136, 255)
	ColPause   = rl.NewColor(255, 204, 0, 255)
)

type App struct {
	session *session.Session
	backend *Backend
	queue   *loop.Queue
	log     zerolog.Logger

	font    rl.Font
	hasFont bool
	quit    bool
}

func initWindow(title string) {
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(windowWidth, windowHeight, title)
	rl.SetTargetFPS(targetFPS)
	rl.SetExitKey(0)
}

// loadFont loads Liberation Mono when it is installed and reports whether it
// did; callers fall back to the raylib default font otherwise.
func loadFont() (rl.Font, bool) {
	if _, err := os.Stat(fontPath); err != nil {
		return rl.Font{}, false
	}
	font := rl.LoadFontEx(fontPath, 32, nil, 0)
	rl.SetTextureFilter(font.Texture, rl.FilterBilinear)
	return font, true
}

func NewApp(s *session.Session, b *Backend, q *loop.Queue, log zerolog.Logger) *App {
	return &App{session: s, backend: b, queue: q, log: log.With().Str("component", "gui").Logger()}
}

// Run opens a window for cfg and blocks until it is closed.
func Run(cfg *config.Config, log zerolog.Logger) error {
	initWindow(cfg.Title)
	defer rl.CloseWindow()
	if !rl.IsWindowReady() {
		return fmt.Errorf("open window: raylib did not initialise")
	}

	b := NewBackend(rl.GetScreenWidth(), rl.GetScreenHeight())
	q := loop.New(loop.SystemClock{})
	s := session.New(cfg, b, q, ephemeris.NewKepler(), log)
	app := NewApp(s, b, q, log)
	if font, ok := loadFont(); ok {
		app.font, app.hasFont = font, true
		b.SetFont(font)
	}

	s.Start()
	app.RunLoop()
	s.Close()
	return nil
}

func (a *App) RunLoop() {
	for !a.quit && !rl.WindowShouldClose() {
		a.Update()
		a.Draw()
	}
	a.log.Debug().Bool("quit_key", a.quit).Msg("window loop finished")
}

// Update feeds window input into the session and runs whatever scene and
// playback work is due.
func (a *App) Update() {
	s := a.session

	if rl.IsKeyPressed(rl.KeyQ) || rl.IsKeyPressed(rl.KeyEscape) {
		a.quit = true
		return
	}
	if rl.IsKeyPressed(rl.KeySpace) {
		s.TogglePlayPause()
	}
	if rl.IsKeyPressed(rl.KeyR) {
		s.Reset()
	}
	if rl.IsKeyPressed(rl.KeyLeftBracket) || rl.IsKeyPressed(rl.KeyMinus) {
		s.SlowDown()
	}
	if rl.IsKeyPressed(rl.KeyRightBracket) || rl.IsKeyPressed(rl.KeyEqual) {
		s.SpeedUp()
	}
	if rl.IsKeyPressed(rl.KeyO) {
		s.ToggleOrbits()
	}
	if rl.IsKeyPressed(rl.KeyL) {
		s.ToggleLabels()
	}

	if rl.IsWindowResized() {
		s.Resize(rl.GetScreenWidth(), rl.GetScreenHeight())
	}

	mouse := rl.GetMousePosition()
	x, y := float64(mouse.X), float64(mouse.Y)
	switch {
	case !rl.IsCursorOnScreen():
		s.PointerLeave()
	case rl.IsMouseButtonPressed(rl.MouseLeftButton):
		s.PointerDown(x, y)
	case rl.IsMouseButtonReleased(rl.MouseLeftButton):
		s.PointerUp()
	default:
		if d := rl.GetMouseDelta(); d.X != 0 || d.Y != 0 {
			s.PointerMove(x, y)
		}
	}
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		s.Wheel(-float64(wheel) * wheelNotch)
	}

	a.queue.RunDue()
}

func (a *App) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(ColBg)
	a.backend.Render()
	a.DrawHUD()
	rl.EndDrawing()
}

func (a *App) DrawHUD() {
	st := a.session.Status()
	a.drawText(st.Title, 30, 30, 24, ColText)
	a.drawText(st.Date, 30, 62, 16, ColText)
	a.drawText("Speed: "+st.Speed, 30, 84, 16, ColText)

	status, col := "RUNNING", ColPlay
	if !st.Running {
		status, col = "PAUSED", ColPause
	}
	a.drawText(status, int32(rl.GetScreenWidth())-130, 30, 16, col)

	h := int32(rl.GetScreenHeight())
	a.drawText("drag to rotate - scroll to zoom", 30, h-60, 14, ColTextDim)
	a.drawText("[SPACE] PLAY/PAUSE  [R] RESET  [[ ]] SPEED  [O] ORBITS  [L] LABELS  [Q] QUIT", 30, h-36, 14, ColTextDim)
	a.drawText(fmt.Sprintf("%d FPS", rl.GetFPS()), int32(rl.GetScreenWidth())-100, h-36, 14, ColTextDim)
}

func (a *App) drawText(text string, x, y int32, size int32, color rl.Color) {
	if a.hasFont {
		rl.DrawTextEx(a.font, text, rl.NewVector2(float32(x), float32(y)), float32(size), 1, color)
		return
	}
	rl.DrawText(text, x, y, size, color)
}
