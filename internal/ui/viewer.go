package ui

import (
	"context"

	"github.com/gdamore/tcell/v2"
	"go.opentelemetry.io/otel/attribute"

	"github.com/samdwyer/dungeongrammar/internal/telemetry"
	"github.com/samdwyer/dungeongrammar/internal/world"
)

// Viewer shows one dungeon until the user quits.
type Viewer struct {
	screen   *Screen
	renderer *Renderer
	dungeon  *world.Dungeon
	view     View
	running  bool
}

// NewViewer creates a viewer drawing d on screen.
func NewViewer(screen *Screen, d *world.Dungeon, palette Palette, title string) *Viewer {
	return &Viewer{
		screen:   screen,
		renderer: NewRenderer(screen, palette),
		dungeon:  d,
		view:     View{Title: title},
		running:  true,
	}
}

// Run executes the render and input loop. It returns when the user presses
// q, Esc or Ctrl-C, or when ctx is cancelled. The caller closes the screen.
func (v *Viewer) Run(ctx context.Context) error {
	ctx, span := telemetry.Tracer("ui").Start(ctx, "ui.view")
	defer span.End()
	span.SetAttributes(attribute.Int("dungeon.room_count", v.dungeon.Len()))

	// Wake the blocking PollEvent when ctx ends.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = v.screen.interrupt()
		case <-done:
		}
	}()

	for v.running && ctx.Err() == nil {
		v.renderer.Render(v.dungeon, v.view)
		v.screen.show()

		v.handleEvent(v.screen.pollEvent())
	}
	return nil
}

func (v *Viewer) handleEvent(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		v.handleKeyEvent(ev)
	case *tcell.EventResize:
		v.screen.sync()
	case *tcell.EventInterrupt:
		v.running = false
	case nil:
		// Screen finalized.
		v.running = false
	}
}

func (v *Viewer) handleKeyEvent(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		v.running = false

	case tcell.KeyUp:
		v.view.Scroll.Y--
	case tcell.KeyDown:
		v.view.Scroll.Y++
	case tcell.KeyLeft:
		v.view.Scroll.X--
	case tcell.KeyRight:
		v.view.Scroll.X++

	case tcell.KeyTab:
		if n := v.dungeon.Len(); n > 0 {
			v.view.Selected = (v.view.Selected + 1) % n
		}

	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q', 'Q':
			v.running = false
		}
	}
}
