package world

import (
	"encoding/json"
	"math/rand"
	"reflect"
	"testing"
)

var roomTemplates = map[rune]Template{
	'F': {Label: "Room", Tags: []string{"stone"}},
	'A': {Label: "Armory", Tags: []string{"steel", "racks"}},
	'B': {Label: "Barracks"},
}

// randomProgram produces turtle input with unbalanced brackets and noise.
func randomProgram(rng *rand.Rand, n int) string {
	const alphabet = "FFFAB++--[[]]]xyz"
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = alphabet[rng.Intn(len(alphabet))]
	}
	return string(buf)
}

func TestBuildClosedLoopReusesEntry(t *testing.T) {
	d := Build("F+F+F+F", map[rune]Template{'F': {Label: "Room"}})

	if d.Len() != 4 {
		t.Fatalf("Expected 4 rooms (entry + 3), got %d", d.Len())
	}

	wantPos := map[int]Point{0: {0, 0}, 1: {0, 1}, 2: {1, 1}, 3: {1, 0}}
	for id, want := range wantPos {
		r, ok := d.Room(id)
		if !ok {
			t.Fatalf("Room %d missing", id)
		}
		if r.Position != want {
			t.Errorf("Room %d position = %v, want %v", id, r.Position, want)
		}
	}

	wantAdj := map[int][]int{0: {1, 3}, 1: {0, 2}, 2: {1, 3}, 3: {2, 0}}
	for id, want := range wantAdj {
		if got := d.Neighbors(id); !reflect.DeepEqual(got, want) {
			t.Errorf("Neighbors(%d) = %v, want %v", id, got, want)
		}
	}

	if dir, ok := d.Direction(3, 0); !ok || dir != West {
		t.Errorf("Direction(3,0) = %v,%v, want west", dir, ok)
	}
	if dir, ok := d.Direction(0, 3); !ok || dir != East {
		t.Errorf("Direction(0,3) = %v,%v, want east", dir, ok)
	}

	entry, _ := d.Room(0)
	if entry.Symbol != EntrySymbol || entry.Label != EntryLabel || len(entry.Trail) != 0 {
		t.Errorf("Entry room was overwritten: %+v", entry)
	}
}

func TestBuildTrails(t *testing.T) {
	d := Build("FF+A[-B]+F", roomTemplates)

	want := map[int][]string{
		1: {"north"},
		2: {"north", "north"},
		3: {"north", "north", "east"},
		4: {"north", "north", "east", "north"},
		5: {"north", "north", "east", "south"},
	}
	for id, trail := range want {
		r, ok := d.Room(id)
		if !ok {
			t.Fatalf("Room %d missing", id)
		}
		if got := r.TrailNames(); !reflect.DeepEqual(got, trail) {
			t.Errorf("Room %d trail = %v, want %v", id, got, trail)
		}
	}

	armory, _ := d.Room(3)
	if armory.Symbol != 'A' || armory.Label != "Armory" {
		t.Errorf("Room 3 = %+v, want Armory", armory)
	}
}

func TestBuildBranchRestoresCursor(t *testing.T) {
	// The branch walks east then returns; the final F continues north of room 1.
	d := Build("F[+F]F", roomTemplates)

	r3, ok := d.Room(3)
	if !ok {
		t.Fatal("Room 3 missing")
	}
	if r3.Position != (Point{0, 2}) {
		t.Errorf("Room 3 position = %v, want (0,2)", r3.Position)
	}
	if got := d.Neighbors(1); !reflect.DeepEqual(got, []int{0, 2, 3}) {
		t.Errorf("Neighbors(1) = %v, want [0 2 3]", got)
	}
}

func TestBuildIgnoresNoise(t *testing.T) {
	d := Build("]]x?F]zz-", roomTemplates)
	if d.Len() != 2 {
		t.Fatalf("Expected 2 rooms, got %d", d.Len())
	}
	r, _ := d.Room(1)
	if r.Position != (Point{0, 1}) {
		t.Errorf("Room 1 position = %v, want (0,1)", r.Position)
	}
}

func TestBuildEmptyInput(t *testing.T) {
	d := Build("", roomTemplates)
	if d.Len() != 1 {
		t.Fatalf("Expected only the entry room, got %d rooms", d.Len())
	}
	if d.Degree(0) != 0 {
		t.Errorf("Entry degree = %d, want 0", d.Degree(0))
	}
}

func TestBuildRevisitDoesNotDuplicateEdges(t *testing.T) {
	// Walk north, turn around, walk back, repeat.
	d := Build("F++F++F++F", roomTemplates)
	if d.Len() != 2 {
		t.Fatalf("Expected 2 rooms, got %d", d.Len())
	}
	if d.Degree(0) != 1 || d.Degree(1) != 1 {
		t.Errorf("Degrees = %d,%d, want 1,1", d.Degree(0), d.Degree(1))
	}
}

func TestBuildInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(12345))

	for i := 0; i < 200; i++ {
		d := Build(randomProgram(rng, 300), roomTemplates)

		seen := map[Point]int{}
		for _, r := range d.Rooms() {
			if other, dup := seen[r.Position]; dup {
				t.Fatalf("Rooms %d and %d share position %v", other, r.ID, r.Position)
			}
			seen[r.Position] = r.ID

			for _, n := range d.Neighbors(r.ID) {
				back := d.Neighbors(n)
				found := false
				for _, b := range back {
					if b == r.ID {
						found = true
						break
					}
				}
				if !found {
					t.Fatalf("Adjacency not symmetric: %d -> %d", r.ID, n)
				}

				dir, ok := d.Direction(r.ID, n)
				rev, ok2 := d.Direction(n, r.ID)
				if !ok || !ok2 || rev != dir.Opposite() {
					t.Fatalf("Directions %d<->%d inconsistent: %v %v", r.ID, n, dir, rev)
				}
				other, _ := d.Room(n)
				if r.Position.Add(dir.Delta()) != other.Position {
					t.Fatalf("Direction %v from %d does not reach %d", dir, r.ID, n)
				}
			}
		}
	}
}

func TestBuildReproducibility(t *testing.T) {
	program := randomProgram(rand.New(rand.NewSource(99)), 500)

	d1 := Build(program, roomTemplates)
	d2 := Build(program, roomTemplates)

	if !reflect.DeepEqual(d1.Rooms(), d2.Rooms()) {
		t.Error("Rooms differ between identical builds")
	}
	for _, r := range d1.Rooms() {
		if !reflect.DeepEqual(d1.Neighbors(r.ID), d2.Neighbors(r.ID)) {
			t.Errorf("Neighbors(%d) differ between identical builds", r.ID)
		}
	}
}

func TestWithRoomCopyOnWrite(t *testing.T) {
	d := Build("FF", roomTemplates)
	original, _ := d.Room(1)

	updated := d.WithRoom(original.WithDescription("A dusty hall."))

	before, _ := d.Room(1)
	after, _ := updated.Room(1)
	if before.Description != "" {
		t.Errorf("Original dungeon mutated: %q", before.Description)
	}
	if after.Description != "A dusty hall." {
		t.Errorf("Updated description = %q", after.Description)
	}
	if !reflect.DeepEqual(d.Neighbors(1), updated.Neighbors(1)) {
		t.Error("Adjacency changed by WithRoom")
	}

	if unknown := d.WithRoom(Room{ID: 42}); unknown != d {
		t.Error("WithRoom with unknown id should return the receiver")
	}
}

func TestMarshalJSON(t *testing.T) {
	d := Build("F+A", roomTemplates)
	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var out struct {
		Rooms map[string]struct {
			Symbol   string   `json:"symbol"`
			Position [2]int   `json:"position"`
			Trail    []string `json:"trail"`
			Items    []Entity `json:"items"`
		} `json:"rooms"`
		Adjacency  map[string][]int             `json:"adjacency"`
		Directions map[string]map[string]string `json:"directions"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if out.Rooms["0"].Symbol != "S" {
		t.Errorf("Entry symbol = %q, want S", out.Rooms["0"].Symbol)
	}
	if out.Rooms["2"].Position != [2]int{1, 1} {
		t.Errorf("Room 2 position = %v, want [1 1]", out.Rooms["2"].Position)
	}
	if !reflect.DeepEqual(out.Rooms["2"].Trail, []string{"north", "east"}) {
		t.Errorf("Room 2 trail = %v", out.Rooms["2"].Trail)
	}
	if out.Rooms["1"].Items == nil {
		t.Error("Items should encode as an empty list, not null")
	}
	if !reflect.DeepEqual(out.Adjacency["1"], []int{0, 2}) {
		t.Errorf("Adjacency[1] = %v", out.Adjacency["1"])
	}
	if out.Directions["1"]["2"] != "east" || out.Directions["2"]["1"] != "west" {
		t.Errorf("Directions = %v", out.Directions)
	}
}
