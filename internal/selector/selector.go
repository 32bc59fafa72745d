// Package selector samples seeded dungeon candidates and keeps the best one.
package selector

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/samdwyer/dungeongrammar/internal/evaluate"
	"github.com/samdwyer/dungeongrammar/internal/logging"
	"github.com/samdwyer/dungeongrammar/internal/telemetry"
)

// Candidate is the cheap-pass outcome for one seed.
type Candidate struct {
	Seed    uint32           `json:"seed"`
	Score   float64          `json:"score"`
	Metrics evaluate.Metrics `json:"metrics"`
}

// Evaluator runs the generate-and-score pipeline for a single seed. It must
// be safe for concurrent use when Config.Workers is greater than one.
type Evaluator interface {
	Evaluate(ctx context.Context, seed uint32) (Candidate, error)
}

// EvaluatorFunc adapts a function to the Evaluator interface.
type EvaluatorFunc func(ctx context.Context, seed uint32) (Candidate, error)

// Evaluate calls f.
func (f EvaluatorFunc) Evaluate(ctx context.Context, seed uint32) (Candidate, error) {
	return f(ctx, seed)
}

// Config controls a selection run.
type Config struct {
	// Candidates is the number of successful candidates to compare. Values
	// below one are raised to one.
	Candidates int
	// Workers bounds concurrent evaluations. Values below one mean one.
	Workers int
	// MaxRetries caps how many replacement seeds are drawn for failed
	// candidates. Zero means Candidates; negative disables replacement.
	MaxRetries int
	// FailFast aborts the run on the first candidate error.
	FailFast bool
	Logger   *zap.Logger
}

// Result describes the winning candidate of a run.
type Result struct {
	Candidate
	Evaluated int `json:"evaluated"`
	Failed    int `json:"failed"`
}

// Selector compares seeded candidates. Seeds are always drawn in sequence
// from the caller's source before evaluation, so the winner depends only on
// that source and the evaluator, never on worker scheduling.
type Selector struct {
	eval Evaluator
	cfg  Config
	log  *zap.Logger
}

// New creates a selector over eval.
func New(eval Evaluator, cfg Config) *Selector {
	cfg.Candidates = max(cfg.Candidates, 1)
	cfg.Workers = max(cfg.Workers, 1)
	switch {
	case cfg.MaxRetries == 0:
		cfg.MaxRetries = cfg.Candidates
	case cfg.MaxRetries < 0:
		cfg.MaxRetries = 0
	}
	return &Selector{eval: eval, cfg: cfg, log: logging.OrNop(cfg.Logger)}
}

type outcome struct {
	candidate Candidate
	err       error
}

// Select draws seeds from rng, evaluates them and returns the candidate with
// the strictly greatest score. On equal scores the earlier draw wins. Failed
// candidates are logged and replaced by fresh seeds until the retry budget
// runs out; a SelectionError is returned when nothing succeeds.
func (s *Selector) Select(ctx context.Context, rng *rand.Rand) (Result, error) {
	tracer := telemetry.Tracer("selector")
	ctx, span := tracer.Start(ctx, "selector.select")
	defer span.End()

	var (
		best      Result
		found     bool
		failures  []error
		attempted int
	)
	pending := s.cfg.Candidates
	retries := s.cfg.MaxRetries

	for pending > 0 {
		seeds := make([]uint32, pending)
		for i := range seeds {
			seeds[i] = rng.Uint32()
		}
		attempted += len(seeds)

		outcomes, err := s.evaluateAll(ctx, seeds)
		if err != nil {
			return Result{}, err
		}

		pending = 0
		for i, out := range outcomes {
			if out.err != nil {
				best.Failed++
				failures = append(failures, fmt.Errorf("seed %d: %w", seeds[i], out.err))
				s.log.Warn("candidate failed",
					zap.Uint32("seed", seeds[i]),
					zap.Error(out.err),
				)
				if retries > 0 {
					retries--
					pending++
				}
				continue
			}

			best.Evaluated++
			s.log.Debug("candidate scored",
				zap.Uint32("seed", out.candidate.Seed),
				zap.Float64("score", out.candidate.Score),
			)
			if !found || out.candidate.Score > best.Score {
				best.Candidate = out.candidate
				found = true
			}
		}
	}

	span.SetAttributes(
		attribute.Int("selector.attempted", attempted),
		attribute.Int("selector.failed", best.Failed),
	)

	if !found {
		return Result{}, &SelectionError{Attempted: attempted, Failed: best.Failed, Errs: failures}
	}

	span.SetAttributes(
		attribute.Int64("selector.winning_seed", int64(best.Seed)),
		attribute.Float64("selector.best_score", best.Score),
	)
	return best, nil
}

// evaluateAll runs every seed through the evaluator, at most Workers at a
// time, and returns outcomes in seed order.
func (s *Selector) evaluateAll(ctx context.Context, seeds []uint32) ([]outcome, error) {
	outcomes := make([]outcome, len(seeds))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)
	for i, seed := range seeds {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			c, err := s.eval.Evaluate(gctx, seed)
			if err == nil {
				c.Seed = seed
			}
			outcomes[i] = outcome{candidate: c, err: err}
			if err != nil && s.cfg.FailFast {
				return fmt.Errorf("seed %d: %w", seed, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

// ErrNoCandidates is matched by every SelectionError.
var ErrNoCandidates = errors.New("no candidate could be evaluated")

// SelectionError reports a run in which no candidate succeeded.
type SelectionError struct {
	Attempted int
	Failed    int
	Errs      []error
}

func (e *SelectionError) Error() string {
	msg := fmt.Sprintf("selection: %v (%d attempted, %d failed)", ErrNoCandidates, e.Attempted, e.Failed)
	if len(e.Errs) > 0 {
		msg += ": " + e.Errs[len(e.Errs)-1].Error()
	}
	return msg
}

func (e *SelectionError) Unwrap() []error {
	return append([]error{ErrNoCandidates}, e.Errs...)
}
