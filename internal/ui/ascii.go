package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/samdwyer/dungeongrammar/internal/world"
)

// Empty marks a grid cell with no room.
const Empty = '.'

// Grid lays the dungeon out north up over its bounding box. Row 0 is the
// northernmost row. An empty dungeon yields nil.
func Grid(d *world.Dungeon) [][]rune {
	if d.Len() == 0 {
		return nil
	}
	lo, hi := d.Bounds()
	width, height := hi.X-lo.X+1, hi.Y-lo.Y+1

	grid := make([][]rune, height)
	for y := range grid {
		grid[y] = make([]rune, width)
		for x := range grid[y] {
			grid[y][x] = Empty
		}
	}
	for _, room := range d.Rooms() {
		grid[hi.Y-room.Position.Y][room.Position.X-lo.X] = room.Symbol
	}
	return grid
}

// RenderASCII returns the grid with cells separated by single spaces and
// rows separated by newlines.
func RenderASCII(d *world.Dungeon) string {
	grid := Grid(d)
	lines := make([]string, len(grid))
	for y, row := range grid {
		cells := make([]string, len(row))
		for x, r := range row {
			cells[x] = string(r)
		}
		lines[y] = strings.Join(cells, " ")
	}
	return strings.Join(lines, "\n")
}

// WriteReport writes the map followed by every non-entry room's label and
// description.
func WriteReport(w io.Writer, d *world.Dungeon) error {
	if _, err := fmt.Fprintln(w, RenderASCII(d)); err != nil {
		return err
	}
	for _, room := range d.Rooms() {
		if room.IsEntry() {
			continue
		}
		desc := room.Description
		if desc == "" {
			desc = "<no description>"
		}
		if _, err := fmt.Fprintf(w, "\nRoom %d (%s)\n%s\n", room.ID, room.Label, desc); err != nil {
			return err
		}
	}
	return nil
}
