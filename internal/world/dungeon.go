// Package world provides the dungeon room graph and the turtle builder that
// derives it from an expanded grammar string.
package world

import (
	"encoding/json"
	"maps"
	"slices"
	"strconv"
)

// Dungeon is an undirected room graph. Adjacency is symmetric and room 0 is
// always the entry. A Dungeon is immutable once returned by Build; WithRoom
// produces a new value sharing the unchanged parts.
type Dungeon struct {
	rooms      map[int]Room
	adjacency  map[int][]int
	directions map[int]map[int]Direction
}

// Len returns the number of rooms.
func (d *Dungeon) Len() int {
	return len(d.rooms)
}

// Room returns the room with the given id.
func (d *Dungeon) Room(id int) (Room, bool) {
	r, ok := d.rooms[id]
	return r, ok
}

// Rooms returns all rooms ordered by id.
func (d *Dungeon) Rooms() []Room {
	rooms := make([]Room, 0, len(d.rooms))
	for _, id := range d.ids() {
		rooms = append(rooms, d.rooms[id])
	}
	return rooms
}

// Neighbors returns the ids adjacent to id in discovery order.
func (d *Dungeon) Neighbors(id int) []int {
	return slices.Clone(d.adjacency[id])
}

// Degree returns the number of rooms adjacent to id.
func (d *Dungeon) Degree(id int) int {
	return len(d.adjacency[id])
}

// Direction returns the heading used to travel from one room to an adjacent one.
func (d *Dungeon) Direction(from, to int) (Direction, bool) {
	dir, ok := d.directions[from][to]
	return dir, ok
}

// Bounds returns the minimum and maximum room coordinates.
func (d *Dungeon) Bounds() (lo, hi Point) {
	first := true
	for _, r := range d.rooms {
		p := r.Position
		if first {
			lo, hi = p, p
			first = false
			continue
		}
		lo.X, lo.Y = min(lo.X, p.X), min(lo.Y, p.Y)
		hi.X, hi.Y = max(hi.X, p.X), max(hi.Y, p.Y)
	}
	return lo, hi
}

// WithRoom returns a new dungeon with room swapped in for the room of the same
// id. The receiver is left untouched. Unknown ids return the receiver.
func (d *Dungeon) WithRoom(room Room) *Dungeon {
	if _, ok := d.rooms[room.ID]; !ok {
		return d
	}
	rooms := maps.Clone(d.rooms)
	rooms[room.ID] = room
	return &Dungeon{
		rooms:      rooms,
		adjacency:  d.adjacency,
		directions: d.directions,
	}
}

// WithRooms is WithRoom for a batch of replacements.
func (d *Dungeon) WithRooms(replacements []Room) *Dungeon {
	rooms := maps.Clone(d.rooms)
	for _, r := range replacements {
		if _, ok := rooms[r.ID]; ok {
			rooms[r.ID] = r
		}
	}
	return &Dungeon{
		rooms:      rooms,
		adjacency:  d.adjacency,
		directions: d.directions,
	}
}

func (d *Dungeon) ids() []int {
	return slices.Sorted(maps.Keys(d.rooms))
}

type roomJSON struct {
	Symbol      string   `json:"symbol"`
	Label       string   `json:"label"`
	Tags        []string `json:"tags"`
	Position    Point    `json:"position"`
	Trail       []string `json:"trail"`
	Description string   `json:"description"`
	Items       []Entity `json:"items"`
	Monsters    []Entity `json:"monsters"`
}

type dungeonJSON struct {
	Rooms      map[string]roomJSON          `json:"rooms"`
	Adjacency  map[string][]int             `json:"adjacency"`
	Directions map[string]map[string]string `json:"directions"`
}

// MarshalJSON encodes the output graph consumed by presentation layers.
func (d *Dungeon) MarshalJSON() ([]byte, error) {
	out := dungeonJSON{
		Rooms:      make(map[string]roomJSON, len(d.rooms)),
		Adjacency:  make(map[string][]int, len(d.adjacency)),
		Directions: make(map[string]map[string]string, len(d.directions)),
	}
	for id, r := range d.rooms {
		key := strconv.Itoa(id)
		out.Rooms[key] = roomJSON{
			Symbol:      string(r.Symbol),
			Label:       r.Label,
			Tags:        nonNil(r.Tags),
			Position:    r.Position,
			Trail:       r.TrailNames(),
			Description: r.Description,
			Items:       nonNil(r.Items),
			Monsters:    nonNil(r.Monsters),
		}
		out.Adjacency[key] = nonNil(d.adjacency[id])
	}
	for from, targets := range d.directions {
		named := make(map[string]string, len(targets))
		for to, dir := range targets {
			named[strconv.Itoa(to)] = dir.String()
		}
		out.Directions[strconv.Itoa(from)] = named
	}
	return json.Marshal(out)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
