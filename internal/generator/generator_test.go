package generator

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samdwyer/dungeongrammar/internal/config"
	"github.com/samdwyer/dungeongrammar/internal/evaluate"
	"github.com/samdwyer/dungeongrammar/internal/grammar"
	"github.com/samdwyer/dungeongrammar/internal/world"
)

var testTemplates = map[rune]world.Template{
	'F': {Label: "Corridor", Tags: []string{"narrow"}},
	'C': {Label: "Chamber", Tags: []string{"vaulted"}},
	'T': {Label: "Treasury", Tags: []string{"gilded"}},
}

func testConfig() Config {
	return Config{
		Grammar: grammar.MustGrammar("F", map[rune]grammar.Rule{
			'F': {
				{Production: "F[+C]F", Weight: 2},
				{Production: "F-F", Weight: 1},
				{Production: "FT", Weight: 1},
			},
		}),
		Templates:       testTemplates,
		Iterations:      3,
		TargetRoomCount: 12,
		Weights: evaluate.Weights{
			evaluate.WeightRoomDiversity:   1,
			evaluate.WeightBranchingFactor: 1,
			evaluate.WeightDeadEndPenalty:  0.5,
			evaluate.WeightRoomCount:       1,
		},
		Candidates: 6,
		Workers:    3,
	}
}

func encode(t *testing.T, d *world.Dungeon) string {
	t.Helper()
	data, err := json.Marshal(d)
	require.NoError(t, err)
	return string(data)
}

func TestGenerateIsReproducible(t *testing.T) {
	ctx := context.Background()
	a, err := New(testConfig()).Generate(ctx, 42, false)
	require.NoError(t, err)
	b, err := New(testConfig()).Generate(ctx, 42, false)
	require.NoError(t, err)

	assert.Equal(t, encode(t, a), encode(t, b))
}

func TestExpandCachesPerSeed(t *testing.T) {
	g := New(testConfig())
	first, err := g.Expand(9)
	require.NoError(t, err)
	again, err := g.Expand(9)
	require.NoError(t, err)
	assert.Equal(t, first, again)
	assert.Equal(t, grammar.FromGrammar(testConfig().Grammar, 9).Expand(3), first)
}

func TestEvaluateMatchesScore(t *testing.T) {
	cfg := testConfig()
	g := New(cfg)
	ctx := context.Background()

	c, err := g.Evaluate(ctx, 5)
	require.NoError(t, err)
	d, err := g.Generate(ctx, 5, false)
	require.NoError(t, err)

	score, metrics := evaluate.Score(d, cfg.TargetRoomCount, cfg.Weights)
	assert.Equal(t, uint32(5), c.Seed)
	assert.Equal(t, score, c.Score)
	assert.Equal(t, metrics, c.Metrics)
}

func TestMaxSymbolsRejectsLongExpansions(t *testing.T) {
	cfg := testConfig()
	cfg.MaxSymbols = 1
	_, err := New(cfg).Generate(context.Background(), 1, false)
	assert.True(t, errors.Is(err, ErrExpansionTooLarge))
}

func TestMaxSymbolsStopsRunawayGrowth(t *testing.T) {
	cfg := testConfig()
	// Doubling for 60 passes could never fit in memory.
	cfg.Grammar = grammar.MustGrammar("F", map[rune]grammar.Rule{'F': {{Production: "FF", Weight: 1}}})
	cfg.Iterations = 60
	cfg.MaxSymbols = 10
	g := New(cfg)

	_, err := g.Generate(context.Background(), 4, false)
	require.ErrorIs(t, err, ErrExpansionTooLarge)
	assert.Empty(t, g.expanded)

	_, err = g.Evaluate(context.Background(), 4)
	assert.ErrorIs(t, err, ErrExpansionTooLarge)
}

func TestSelectReplacesOversizedCandidates(t *testing.T) {
	cfg := testConfig()
	cfg.Grammar = grammar.MustGrammar("F", map[rune]grammar.Rule{'F': {
		{Production: "F+F", Weight: 1},
		{Production: "FFFFFFFFFFFFFFFFFFFF", Weight: 1},
	}})
	cfg.Iterations = 1
	cfg.MaxSymbols = 5
	cfg.MaxRetries = 50

	res, err := New(cfg).Select(context.Background(), rand.New(rand.NewSource(8)))
	require.NoError(t, err)
	assert.Equal(t, cfg.Candidates, res.Evaluated)
}

type recordingEnricher struct {
	mu    sync.Mutex
	seeds []uint32
}

func (r *recordingEnricher) Enrich(_ context.Context, d *world.Dungeon, seed uint32) *world.Dungeon {
	r.mu.Lock()
	r.seeds = append(r.seeds, seed)
	r.mu.Unlock()
	var rooms []world.Room
	for _, room := range d.Rooms() {
		rooms = append(rooms, room.WithDescription("enriched"))
	}
	return d.WithRooms(rooms)
}

func TestBestEnrichesOnlyTheWinner(t *testing.T) {
	cfg := testConfig()
	enricher := &recordingEnricher{}
	cfg.Enricher = enricher
	g := New(cfg)
	ctx := context.Background()

	out, err := g.Best(ctx, rand.New(rand.NewSource(3)))
	require.NoError(t, err)

	// Replay the cheap pass by hand.
	rng := rand.New(rand.NewSource(3))
	best := -1.0
	var bestSeed uint32
	for range cfg.Candidates {
		seed := rng.Uint32()
		c, err := g.Evaluate(ctx, seed)
		require.NoError(t, err)
		if c.Score > best {
			best, bestSeed = c.Score, seed
		}
	}

	assert.Equal(t, bestSeed, out.Seed)
	assert.Equal(t, best, out.Score)
	assert.Equal(t, []uint32{bestSeed}, enricher.seeds)
	assert.NotEmpty(t, out.RunID)

	plain, err := g.Generate(ctx, out.Seed, false)
	require.NoError(t, err)
	require.Equal(t, plain.Len(), out.Dungeon.Len())
	for _, room := range out.Dungeon.Rooms() {
		assert.Equal(t, "enriched", room.Description)
	}
}

func TestBestIsIndependentOfWorkers(t *testing.T) {
	var seeds []uint32
	for _, workers := range []int{1, 2, 6} {
		cfg := testConfig()
		cfg.Workers = workers
		out, err := New(cfg).Best(context.Background(), rand.New(rand.NewSource(17)))
		require.NoError(t, err)
		seeds = append(seeds, out.Seed)
	}
	assert.Equal(t, seeds[0], seeds[1])
	assert.Equal(t, seeds[0], seeds[2])
}

func TestFromConfigWithoutNarrative(t *testing.T) {
	cfg, err := config.Default()
	require.NoError(t, err)

	iterations := 2
	g := FromConfig(cfg, Options{Iterations: &iterations, Candidates: 3, NoNarrative: true})
	out, err := g.Best(context.Background(), rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	for _, room := range out.Dungeon.Rooms() {
		if room.IsEntry() {
			assert.Empty(t, room.Description)
			continue
		}
		assert.NotEmpty(t, room.Description, "room %d", room.ID)
	}
}

func TestNewRand(t *testing.T) {
	a, seed, err := NewRand(99)
	require.NoError(t, err)
	assert.Equal(t, int64(99), seed)
	assert.Equal(t, rand.New(rand.NewSource(99)).Uint32(), a.Uint32())

	_, seed, err = NewRand(0)
	require.NoError(t, err)
	assert.NotZero(t, seed)
}
