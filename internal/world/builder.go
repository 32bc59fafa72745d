package world

import "slices"

// Turtle control characters. Any symbol with a template is a draw command
// and takes precedence over these.
const (
	TurnRight  = '+'
	TurnLeft   = '-'
	PushBranch = '['
	PopBranch  = ']'
)

// turtle is the mutable cursor state of one Build call.
type turtle struct {
	room     int
	position Point
	facing   Direction
}

// builder holds construction state for one Build call.
type builder struct {
	templates map[rune]Template
	dungeon   *Dungeon
	byCell    map[Point]int
	cursor    turtle
	stack     []turtle
	nextID    int
}

// Build interprets expanded as turtle commands on a four-way grid, starting
// in the entry room at the origin facing north. Symbols with a template step
// forward, creating a room or joining an existing one at the target cell.
// Unknown symbols and unbalanced branch closes are ignored, so Build accepts
// any input.
func Build(expanded string, templates map[rune]Template) *Dungeon {
	b := newBuilder(templates)
	for _, symbol := range expanded {
		b.apply(symbol)
	}
	return b.dungeon
}

func newBuilder(templates map[rune]Template) *builder {
	entry := Room{
		ID:       0,
		Symbol:   EntrySymbol,
		Label:    EntryLabel,
		Tags:     []string{},
		Position: Point{},
		Trail:    []Direction{},
	}
	d := &Dungeon{
		rooms:      map[int]Room{entry.ID: entry},
		adjacency:  map[int][]int{entry.ID: {}},
		directions: map[int]map[int]Direction{},
	}
	return &builder{
		templates: templates,
		dungeon:   d,
		byCell:    map[Point]int{entry.Position: entry.ID},
		cursor:    turtle{room: entry.ID, position: entry.Position, facing: North},
		nextID:    1,
	}
}

func (b *builder) apply(symbol rune) {
	if tmpl, ok := b.templates[symbol]; ok {
		b.draw(symbol, tmpl)
		return
	}

	switch symbol {
	case TurnRight:
		b.cursor.facing = b.cursor.facing.Clockwise()
	case TurnLeft:
		b.cursor.facing = b.cursor.facing.CounterClockwise()
	case PushBranch:
		b.stack = append(b.stack, b.cursor)
	case PopBranch:
		if n := len(b.stack); n > 0 {
			b.cursor = b.stack[n-1]
			b.stack = b.stack[:n-1]
		}
	}
}

// draw steps one cell forward and connects the current room to the room
// found or created there.
func (b *builder) draw(symbol rune, tmpl Template) {
	from := b.cursor.room
	heading := b.cursor.facing
	target := b.cursor.position.Add(heading.Delta())

	id, ok := b.byCell[target]
	if !ok {
		id = b.nextID
		b.nextID++

		parent := b.dungeon.rooms[from]
		trail := append(slices.Clone(parent.Trail), heading)
		b.dungeon.rooms[id] = Room{
			ID:       id,
			Symbol:   symbol,
			Label:    tmpl.Label,
			Tags:     slices.Clone(nonNil(tmpl.Tags)),
			Position: target,
			Trail:    trail,
		}
		b.dungeon.adjacency[id] = []int{}
		b.byCell[target] = id
	}

	b.connect(from, id, heading)
	b.cursor.room = id
	b.cursor.position = target
}

// connect adds the undirected edge a-b, recording a->b as heading.
func (b *builder) connect(a, c int, heading Direction) {
	if a == c {
		return
	}
	if !slices.Contains(b.dungeon.adjacency[a], c) {
		b.dungeon.adjacency[a] = append(b.dungeon.adjacency[a], c)
	}
	if !slices.Contains(b.dungeon.adjacency[c], a) {
		b.dungeon.adjacency[c] = append(b.dungeon.adjacency[c], a)
	}
	b.setDirection(a, c, heading)
	b.setDirection(c, a, heading.Opposite())
}

func (b *builder) setDirection(from, to int, heading Direction) {
	if b.dungeon.directions[from] == nil {
		b.dungeon.directions[from] = map[int]Direction{}
	}
	b.dungeon.directions[from][to] = heading
}
