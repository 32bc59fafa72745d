// Package generator runs the seed to dungeon pipeline and the two-pass
// selection protocol: score many cheap candidates, then regenerate only the
// winner with enrichment.
package generator

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/samdwyer/dungeongrammar/internal/evaluate"
	"github.com/samdwyer/dungeongrammar/internal/grammar"
	"github.com/samdwyer/dungeongrammar/internal/logging"
	"github.com/samdwyer/dungeongrammar/internal/selector"
	"github.com/samdwyer/dungeongrammar/internal/telemetry"
	"github.com/samdwyer/dungeongrammar/internal/world"
)

// ErrExpansionTooLarge is returned when an expansion exceeds Config.MaxSymbols.
var ErrExpansionTooLarge = grammar.ErrExpansionTooLarge

// Enricher adds expensive per-room detail to a finished dungeon.
type Enricher interface {
	Enrich(ctx context.Context, d *world.Dungeon, seed uint32) *world.Dungeon
}

// EnricherFunc adapts a function to the Enricher interface.
type EnricherFunc func(ctx context.Context, d *world.Dungeon, seed uint32) *world.Dungeon

// Enrich calls f.
func (f EnricherFunc) Enrich(ctx context.Context, d *world.Dungeon, seed uint32) *world.Dungeon {
	return f(ctx, d, seed)
}

// Config holds everything one generation run needs.
type Config struct {
	Grammar         grammar.Grammar
	Templates       map[rune]world.Template
	Iterations      int
	TargetRoomCount int
	Weights         evaluate.Weights

	Candidates int
	Workers    int
	MaxRetries int
	FailFast   bool

	// MaxSymbols rejects candidates whose expansion grows longer. Rewriting
	// stops as soon as the limit is crossed. Zero means no limit.
	MaxSymbols int

	// Enricher runs on the winner only. Nil skips enrichment.
	Enricher Enricher
	Logger   *zap.Logger
}

// Outcome is the enriched winner of a selection run.
type Outcome struct {
	RunID string
	selector.Result
	Dungeon *world.Dungeon
}

// Generator is safe for concurrent use. Expansions are cached per seed for
// the lifetime of the Generator.
type Generator struct {
	cfg Config
	log *zap.Logger

	mu       sync.Mutex
	expanded map[uint32]string
}

// New creates a generator.
func New(cfg Config) *Generator {
	return &Generator{
		cfg:      cfg,
		log:      logging.OrNop(cfg.Logger),
		expanded: map[uint32]string{},
	}
}

// Expand returns the grammar expansion for seed. Only expansions within
// Config.MaxSymbols are cached.
func (g *Generator) Expand(seed uint32) (string, error) {
	g.mu.Lock()
	s, ok := g.expanded[seed]
	g.mu.Unlock()
	if ok {
		return s, nil
	}

	s, err := grammar.FromGrammar(g.cfg.Grammar, seed).ExpandLimit(g.cfg.Iterations, g.cfg.MaxSymbols)
	if err != nil {
		return "", err
	}

	g.mu.Lock()
	g.expanded[seed] = s
	g.mu.Unlock()
	return s, nil
}

// Generate builds the dungeon for seed, enriching it when enrich is set and
// an Enricher is configured.
func (g *Generator) Generate(ctx context.Context, seed uint32, enrich bool) (*world.Dungeon, error) {
	ctx, span := telemetry.Tracer("generator").Start(ctx, "generator.generate")
	defer span.End()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	expanded, err := g.Expand(seed)
	if err != nil {
		return nil, err
	}

	d := world.Build(expanded, g.cfg.Templates)
	if enrich && g.cfg.Enricher != nil {
		d = g.cfg.Enricher.Enrich(ctx, d, seed)
	}

	span.SetAttributes(
		attribute.Int64("dungeon.seed", int64(seed)),
		attribute.Int("dungeon.expanded_length", len(expanded)),
		attribute.Int("dungeon.room_count", d.Len()),
		attribute.Bool("dungeon.enriched", enrich),
	)
	return d, nil
}

// Evaluate is the cheap pass: generate without enrichment and score.
func (g *Generator) Evaluate(ctx context.Context, seed uint32) (selector.Candidate, error) {
	d, err := g.Generate(ctx, seed, false)
	if err != nil {
		return selector.Candidate{}, err
	}
	score, metrics := evaluate.Score(d, g.cfg.TargetRoomCount, g.cfg.Weights)
	return selector.Candidate{Seed: seed, Score: score, Metrics: metrics}, nil
}

// Select runs the cheap pass over Candidates seeds drawn from rng.
func (g *Generator) Select(ctx context.Context, rng *rand.Rand) (selector.Result, error) {
	sel := selector.New(g, selector.Config{
		Candidates: g.cfg.Candidates,
		Workers:    g.cfg.Workers,
		MaxRetries: g.cfg.MaxRetries,
		FailFast:   g.cfg.FailFast,
		Logger:     g.log,
	})
	return sel.Select(ctx, rng)
}

// Best selects the highest scoring seed and regenerates it with enrichment.
// The returned score and metrics belong to the cheap pass that won.
func (g *Generator) Best(ctx context.Context, rng *rand.Rand) (Outcome, error) {
	runID := uuid.NewString()
	log := g.log.With(zap.String("run_id", runID))

	ctx, span := telemetry.Tracer("generator").Start(ctx, "generator.best")
	defer span.End()
	span.SetAttributes(attribute.String("run.id", runID))

	res, err := g.Select(ctx, rng)
	if err != nil {
		return Outcome{}, err
	}
	log.Info("selected candidate",
		zap.Uint32("seed", res.Seed),
		zap.Float64("score", res.Score),
		zap.Int("candidates", res.Evaluated),
		zap.Int("failed", res.Failed),
	)

	d, err := g.Generate(ctx, res.Seed, true)
	if err != nil {
		return Outcome{}, fmt.Errorf("regenerate seed %d: %w", res.Seed, err)
	}
	return Outcome{RunID: runID, Result: res, Dungeon: d}, nil
}
