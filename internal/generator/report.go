package generator

import (
	"github.com/samdwyer/dungeongrammar/internal/evaluate"
	"github.com/samdwyer/dungeongrammar/internal/world"
)

// Report is the JSON document written for a finished run.
type Report struct {
	RunID     string           `json:"run_id"`
	RunSeed   int64            `json:"run_seed"`
	Seed      uint32           `json:"seed"`
	Score     float64          `json:"score"`
	Metrics   evaluate.Metrics `json:"metrics"`
	Evaluated int              `json:"evaluated"`
	Failed    int              `json:"failed"`
	Dungeon   *world.Dungeon   `json:"dungeon"`
}

// Report describes the outcome of a run started from runSeed.
func (o Outcome) Report(runSeed int64) Report {
	return Report{
		RunID:     o.RunID,
		RunSeed:   runSeed,
		Seed:      o.Seed,
		Score:     o.Score,
		Metrics:   o.Metrics,
		Evaluated: o.Evaluated,
		Failed:    o.Failed,
		Dungeon:   o.Dungeon,
	}
}
