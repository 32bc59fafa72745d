package world

// Direction is one of the four compass headings the builder can face.
type Direction int

const (
	North Direction = iota
	East
	South
	West
)

var directionNames = [...]string{"north", "east", "south", "west"}

// Step offsets per direction; north is +y.
var directionDeltas = [...]Point{{0, 1}, {1, 0}, {0, -1}, {-1, 0}}

// String returns the lowercase compass name.
func (d Direction) String() string {
	return directionNames[d.normalize()]
}

// Delta returns the grid offset of one step in this direction.
func (d Direction) Delta() Point {
	return directionDeltas[d.normalize()]
}

// Clockwise returns the direction one quarter turn to the right.
func (d Direction) Clockwise() Direction {
	return (d + 1).normalize()
}

// CounterClockwise returns the direction one quarter turn to the left.
func (d Direction) CounterClockwise() Direction {
	return (d - 1).normalize()
}

// Opposite returns the reverse heading.
func (d Direction) Opposite() Direction {
	return (d + 2).normalize()
}

func (d Direction) normalize() Direction {
	return ((d % 4) + 4) % 4
}
