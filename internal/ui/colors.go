package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/samdwyer/dungeongrammar/internal/world"
)

// ParseHexColor converts "#RRGGBB" or "RRGGBB" to a tcell.Color.
func ParseHexColor(hex string) (tcell.Color, error) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return tcell.ColorDefault, fmt.Errorf("invalid hex color length: %s", hex)
	}

	var rgb [3]int32
	for i, name := range []string{"red", "green", "blue"} {
		v, err := strconv.ParseUint(hex[i*2:i*2+2], 16, 8)
		if err != nil {
			return tcell.ColorDefault, fmt.Errorf("invalid %s component in %s: %w", name, hex, err)
		}
		rgb[i] = int32(v)
	}
	return tcell.NewRGBColor(rgb[0], rgb[1], rgb[2]), nil
}

// Palette maps room symbols to display colors.
type Palette map[rune]tcell.Color

// NewPalette parses the configured hex colors.
func NewPalette(colors map[rune]string) (Palette, error) {
	p := Palette{}
	for symbol, hex := range colors {
		c, err := ParseHexColor(hex)
		if err != nil {
			return nil, fmt.Errorf("color for %q: %w", symbol, err)
		}
		p[symbol] = c
	}
	return p, nil
}

// Style returns the cell style for a grid symbol.
func (p Palette) Style(symbol rune) tcell.Style {
	switch symbol {
	case Empty:
		return tcell.StyleDefault.Foreground(tcell.ColorDarkGray)
	case world.EntrySymbol:
		return tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	}
	if c, ok := p[symbol]; ok {
		return tcell.StyleDefault.Foreground(c)
	}
	return tcell.StyleDefault.Foreground(tcell.ColorWhite)
}
