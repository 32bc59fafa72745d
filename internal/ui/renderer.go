package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/samdwyer/dungeongrammar/internal/world"
)

// Canvas is the drawing surface a Renderer writes to.
type Canvas interface {
	SetContent(x, y int, r rune, style tcell.Style)
	Size() (width, height int)
}

// View is the viewer state the renderer needs.
type View struct {
	Title string
	// Scroll is the map offset in grid cells.
	Scroll world.Point
	// Selected indexes Dungeon.Rooms; negative selects nothing.
	Selected int
}

const (
	mapTop    = 1
	footerLen = 2
	help      = "arrows scroll  tab next room  q quit"
)

// Renderer handles drawing the dungeon to the screen.
type Renderer struct {
	canvas  Canvas
	palette Palette
}

// NewRenderer creates a new renderer for the given canvas.
func NewRenderer(canvas Canvas, palette Palette) *Renderer {
	return &Renderer{canvas: canvas, palette: palette}
}

// Render draws the title, map, selected room and key help.
func (r *Renderer) Render(d *world.Dungeon, v View) {
	width, height := r.canvas.Size()
	blank := tcell.StyleDefault
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r.canvas.SetContent(x, y, ' ', blank)
		}
	}

	r.text(0, 0, v.Title, tcell.StyleDefault.Bold(true))

	var selected *world.Room
	rooms := d.Rooms()
	if v.Selected >= 0 && v.Selected < len(rooms) {
		selected = &rooms[v.Selected]
	}

	grid := Grid(d)
	var lo, hi world.Point
	if len(grid) > 0 {
		lo, hi = d.Bounds()
	}
	for row, cells := range grid {
		y := mapTop + row - v.Scroll.Y
		if y < mapTop || y >= height-footerLen {
			continue
		}
		for col, symbol := range cells {
			x := (col - v.Scroll.X) * 2
			if x < 0 || x >= width {
				continue
			}
			style := r.palette.Style(symbol)
			if selected != nil && selected.Position == (world.Point{X: lo.X + col, Y: hi.Y - row}) {
				style = style.Reverse(true)
			}
			r.canvas.SetContent(x, y, symbol, style)
		}
	}

	if selected != nil {
		info := fmt.Sprintf("Room %d (%s)", selected.ID, selected.Label)
		if selected.Description != "" {
			info += ": " + selected.Description
		}
		r.text(0, height-2, info, tcell.StyleDefault)
	}
	r.text(0, height-1, help, tcell.StyleDefault.Foreground(tcell.ColorGray))
}

// text writes msg on row y, clipped to the canvas width.
func (r *Renderer) text(x, y int, msg string, style tcell.Style) {
	width, height := r.canvas.Size()
	if y < 0 || y >= height {
		return
	}
	for _, ch := range msg {
		if x >= width {
			return
		}
		r.canvas.SetContent(x, y, ch, style)
		x++
	}
}
