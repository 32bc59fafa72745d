// Package evaluate scores dungeon layouts from structural metrics.
package evaluate

import "github.com/samdwyer/dungeongrammar/internal/world"

// Weight keys recognised by Score. Unknown keys are ignored.
const (
	WeightRoomDiversity   = "room_diversity"
	WeightBranchingFactor = "branching_factor"
	WeightLootPresence    = "loot_presence"
	WeightMonsterPresence = "monster_presence"
	WeightDeadEndPenalty  = "dead_end_penalty"
	WeightRoomCount       = "room_count"
)

// Weights maps a weight key to its multiplier. Penalties are expressed as
// negative weights.
type Weights map[string]float64

// Metrics summarises a dungeon. Every field except RawRoomCount is in [0, 1].
type Metrics struct {
	RoomDiversity   float64 `json:"room_diversity"`
	BranchingFactor float64 `json:"branching_factor"`
	LootPresence    float64 `json:"loot_presence"`
	MonsterPresence float64 `json:"monster_presence"`
	DeadEndRatio    float64 `json:"dead_end_ratio"`
	RoomCountScore  float64 `json:"room_count_score"`
	RawRoomCount    int     `json:"raw_room_count"`
}

// Compute derives metrics for d. The entry room counts toward the totals but
// not toward diversity, branching or dead ends. targetRoomCount values below
// one are treated as one.
func Compute(d *world.Dungeon, targetRoomCount int) Metrics {
	rooms := d.Rooms()
	total := max(len(rooms), 1)
	target := max(targetRoomCount, 1)

	symbols := map[rune]struct{}{}
	var branching, deadEnds, loot, monsters int
	for _, r := range rooms {
		if len(r.Items) > 0 {
			loot++
		}
		if len(r.Monsters) > 0 {
			monsters++
		}
		if r.IsEntry() {
			continue
		}
		symbols[r.Symbol] = struct{}{}
		degree := d.Degree(r.ID)
		if degree >= 3 {
			branching++
		}
		if degree <= 1 {
			deadEnds++
		}
	}

	n := float64(total)
	return Metrics{
		RoomDiversity:   float64(len(symbols)) / n,
		BranchingFactor: float64(branching) / n,
		LootPresence:    float64(loot) / n,
		MonsterPresence: float64(monsters) / n,
		DeadEndRatio:    float64(deadEnds) / n,
		RoomCountScore:  float64(min(total, target)) / float64(target),
		RawRoomCount:    total,
	}
}

// Weighted reduces metrics to a scalar using w.
func (m Metrics) Weighted(w Weights) float64 {
	return w[WeightRoomDiversity]*m.RoomDiversity +
		w[WeightBranchingFactor]*m.BranchingFactor +
		w[WeightLootPresence]*m.LootPresence +
		w[WeightMonsterPresence]*m.MonsterPresence +
		w[WeightDeadEndPenalty]*m.DeadEndRatio +
		w[WeightRoomCount]*m.RoomCountScore
}

// Score computes metrics for d and returns their weighted sum.
func Score(d *world.Dungeon, targetRoomCount int, w Weights) (float64, Metrics) {
	m := Compute(d, targetRoomCount)
	return m.Weighted(w), m
}
