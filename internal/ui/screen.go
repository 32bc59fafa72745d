// Package ui renders dungeons as text and on a tcell terminal.
package ui

import "github.com/gdamore/tcell/v2"

// Screen is the terminal a Viewer draws on. It satisfies Canvas.
type Screen struct {
	tty tcell.Screen
}

// NewScreen opens the controlling terminal.
func NewScreen() (*Screen, error) {
	tty, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return WrapScreen(tty)
}

// WrapScreen initializes tty and takes ownership of it. Tests pass a
// simulation screen.
func WrapScreen(tty tcell.Screen) (*Screen, error) {
	if err := tty.Init(); err != nil {
		return nil, err
	}
	tty.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	tty.Clear()
	return &Screen{tty: tty}, nil
}

// Close restores the terminal.
func (s *Screen) Close() { s.tty.Fini() }

// SetContent draws one cell.
func (s *Screen) SetContent(x, y int, r rune, style tcell.Style) {
	s.tty.SetContent(x, y, r, nil, style)
}

// Size reports the terminal dimensions in cells.
func (s *Screen) Size() (width, height int) { return s.tty.Size() }

func (s *Screen) pollEvent() tcell.Event { return s.tty.PollEvent() }
func (s *Screen) show()                  { s.tty.Show() }
func (s *Screen) sync()                  { s.tty.Sync() }

// interrupt wakes a pending pollEvent.
func (s *Screen) interrupt() error { return s.tty.PostEvent(tcell.NewEventInterrupt(nil)) }
