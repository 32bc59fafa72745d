package world

import (
	"encoding/json"
	"slices"
)

// EntrySymbol marks the implicit entry room at the origin.
const EntrySymbol = 'S'

// EntryLabel is the label of the entry room.
const EntryLabel = "Entry point"

// Point is an integer grid coordinate.
type Point struct {
	X, Y int
}

// Add returns p offset by q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// MarshalJSON encodes the point as [x, y].
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{p.X, p.Y})
}

// UnmarshalJSON decodes a point from [x, y].
func (p *Point) UnmarshalJSON(data []byte) error {
	var xy [2]int
	if err := json.Unmarshal(data, &xy); err != nil {
		return err
	}
	p.X, p.Y = xy[0], xy[1]
	return nil
}

// Template describes how a draw symbol becomes a room.
type Template struct {
	Label string
	Tags  []string
}

// Entity is an item or monster placed in a room during enrichment.
type Entity struct {
	Symbol      string   `json:"symbol"`
	Label       string   `json:"label"`
	Tags        []string `json:"tags"`
	Description string   `json:"description"`
	Quantity    int      `json:"quantity"`
}

// Room is a node of the dungeon graph. Rooms are values: enrichment replaces
// them through the With* helpers instead of mutating them in place.
type Room struct {
	ID          int
	Symbol      rune
	Label       string
	Tags        []string
	Position    Point
	Trail       []Direction
	Description string
	Items       []Entity
	Monsters    []Entity
}

// IsEntry reports whether this is the entry room.
func (r Room) IsEntry() bool {
	return r.ID == 0
}

// TrailNames returns the trail as direction names.
func (r Room) TrailNames() []string {
	names := make([]string, len(r.Trail))
	for i, d := range r.Trail {
		names[i] = d.String()
	}
	return names
}

// WithDescription returns a copy of the room with a new description.
func (r Room) WithDescription(description string) Room {
	r.Description = description
	return r
}

// WithEntities returns a copy of the room with new items and monsters.
func (r Room) WithEntities(items, monsters []Entity) Room {
	r.Items = slices.Clone(items)
	r.Monsters = slices.Clone(monsters)
	return r
}
