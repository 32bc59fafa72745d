package evaluate

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samdwyer/dungeongrammar/internal/world"
)

var templates = map[rune]world.Template{
	'F': {Label: "Hall"},
	'A': {Label: "Armory"},
	'T': {Label: "Treasury"},
}

func TestComputeCross(t *testing.T) {
	// Entry with a north corridor through a four-way junction.
	//     F
	//   A F T
	//     F
	//     S
	d := world.Build("FF[+T][-A]F", templates)
	require.Equal(t, 6, d.Len())

	m := Compute(d, 10)

	assert.InDelta(t, 3.0/6, m.RoomDiversity, 1e-9)
	// Room 2 connects to 1, 3, 4 and 5.
	assert.InDelta(t, 1.0/6, m.BranchingFactor, 1e-9)
	// Rooms 3, 4 and 5 are dead ends; the entry never counts.
	assert.InDelta(t, 3.0/6, m.DeadEndRatio, 1e-9)
	assert.InDelta(t, 0.6, m.RoomCountScore, 1e-9)
	assert.Zero(t, m.LootPresence)
	assert.Zero(t, m.MonsterPresence)
	assert.Equal(t, 6, m.RawRoomCount)
}

func TestComputeEntryOnly(t *testing.T) {
	d := world.Build("", templates)
	m := Compute(d, 5)

	assert.Zero(t, m.RoomDiversity)
	assert.Zero(t, m.DeadEndRatio, "entry room is never a dead end")
	assert.InDelta(t, 0.2, m.RoomCountScore, 1e-9)
	assert.Equal(t, 1, m.RawRoomCount)
}

func TestComputeRoomCountSaturates(t *testing.T) {
	d := world.Build("FFFFFFFF", templates)
	m := Compute(d, 4)
	assert.Equal(t, 1.0, m.RoomCountScore)

	m = Compute(d, 0)
	assert.Equal(t, 1.0, m.RoomCountScore)
}

func TestComputeEntityPresence(t *testing.T) {
	d := world.Build("FFF", templates)
	r1, _ := d.Room(1)
	r2, _ := d.Room(2)
	d = d.WithRooms([]world.Room{
		r1.WithEntities([]world.Entity{{Symbol: "c", Quantity: 1}}, nil),
		r2.WithEntities([]world.Entity{{Symbol: "g", Quantity: 2}}, []world.Entity{{Symbol: "o", Quantity: 1}}),
	})

	m := Compute(d, 4)
	assert.InDelta(t, 0.5, m.LootPresence, 1e-9)
	assert.InDelta(t, 0.25, m.MonsterPresence, 1e-9)
}

func TestScoreWeights(t *testing.T) {
	d := world.Build("FF[+T][-A]F", templates)
	m := Compute(d, 10)

	tests := []struct {
		name    string
		weights Weights
		want    float64
	}{
		{"empty", Weights{}, 0},
		{"nil", nil, 0},
		{"unknown keys ignored", Weights{"sparkle": 100, "dead_end_ratio": 5}, 0},
		{"diversity", Weights{WeightRoomDiversity: 2}, 2 * m.RoomDiversity},
		{"penalty", Weights{WeightDeadEndPenalty: -1, WeightRoomCount: 1}, m.RoomCountScore - m.DeadEndRatio},
		{
			"all",
			Weights{
				WeightRoomDiversity:   1,
				WeightBranchingFactor: 1,
				WeightLootPresence:    1,
				WeightMonsterPresence: 1,
				WeightDeadEndPenalty:  1,
				WeightRoomCount:       1,
			},
			m.RoomDiversity + m.BranchingFactor + m.DeadEndRatio + m.RoomCountScore,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, got := Score(d, 10, tt.weights)
			assert.InDelta(t, tt.want, score, 1e-9)
			assert.Equal(t, m, got)
		})
	}
}

func TestMetricBounds(t *testing.T) {
	const alphabet = "FFAT+-[]"
	rng := rand.New(rand.NewSource(2024))

	for i := 0; i < 100; i++ {
		buf := make([]byte, 200)
		for j := range buf {
			buf[j] = alphabet[rng.Intn(len(alphabet))]
		}
		m := Compute(world.Build(string(buf), templates), 1+rng.Intn(40))

		for name, v := range map[string]float64{
			"room_diversity":   m.RoomDiversity,
			"branching_factor": m.BranchingFactor,
			"loot_presence":    m.LootPresence,
			"monster_presence": m.MonsterPresence,
			"dead_end_ratio":   m.DeadEndRatio,
			"room_count_score": m.RoomCountScore,
		} {
			assert.GreaterOrEqual(t, v, 0.0, name)
			assert.LessOrEqual(t, v, 1.0, name)
		}
	}
}
