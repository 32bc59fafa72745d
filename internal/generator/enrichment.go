package generator

import (
	"context"

	"go.uber.org/zap"

	"github.com/samdwyer/dungeongrammar/internal/config"
	"github.com/samdwyer/dungeongrammar/internal/content"
	"github.com/samdwyer/dungeongrammar/internal/narrative"
	"github.com/samdwyer/dungeongrammar/internal/world"
)

// Enrichment places items and monsters and then describes every room. A nil
// Text generator produces fallback text only.
type Enrichment struct {
	Text     narrative.Generator
	Content  content.Config
	Narrator narrative.NarratorConfig
}

// Enrich runs content placement followed by room narration. Each call uses
// fresh caches so separate dungeons never share descriptions.
func (e Enrichment) Enrich(ctx context.Context, d *world.Dungeon, seed uint32) *world.Dungeon {
	d = content.New(e.Text, e.Content, seed).Enrich(ctx, d)
	return narrative.NewNarrator(e.Text, e.Narrator).Annotate(ctx, d)
}

// Options adjust a config-derived generator.
type Options struct {
	// Iterations overrides the configured count when non-negative.
	Iterations *int
	// MaxSymbols overrides the configured expansion bound when non-negative.
	MaxSymbols *int
	Candidates int
	Workers    int
	// NoNarrative keeps enrichment but never calls the text service.
	NoNarrative bool
	Logger      *zap.Logger
}

// FromConfig builds a generator from a loaded configuration.
func FromConfig(cfg *config.Config, opts Options) *Generator {
	iterations := cfg.Dungeon.Iterations
	if opts.Iterations != nil && *opts.Iterations >= 0 {
		iterations = *opts.Iterations
	}
	candidates := cfg.Evaluation.CandidateCount
	if opts.Candidates > 0 {
		candidates = opts.Candidates
	}
	maxSymbols := cfg.Evaluation.MaxSymbols
	if opts.MaxSymbols != nil && *opts.MaxSymbols >= 0 {
		maxSymbols = *opts.MaxSymbols
	}
	workers := cfg.Evaluation.Workers
	if opts.Workers > 0 {
		workers = opts.Workers
	}

	var text narrative.Generator
	if cfg.Narrative.Enabled && !opts.NoNarrative {
		text = narrative.NewClient(narrative.ClientConfig{
			Endpoint:       cfg.Ollama.Endpoint,
			CompletionPath: cfg.Ollama.CompletionPath,
			Model:          cfg.Ollama.Model,
			Options:        cfg.Ollama.Options,
			Timeout:        cfg.Ollama.Timeout,
			MaxRetries:     uint(max(cfg.Ollama.MaxRetries, 0)),
			Logger:         opts.Logger,
		})
	}

	return New(Config{
		Grammar:         cfg.Dungeon.Grammar,
		Templates:       cfg.Dungeon.Symbols,
		Iterations:      iterations,
		TargetRoomCount: cfg.Evaluation.TargetRoomCount,
		Weights:         cfg.Evaluation.Weights,
		Candidates:      candidates,
		Workers:         workers,
		MaxRetries:      cfg.Evaluation.MaxRetries,
		MaxSymbols:      maxSymbols,
		Enricher: Enrichment{
			Text: text,
			Content: content.Config{
				Items:           cfg.Content.Items,
				Monsters:        cfg.Content.Monsters,
				ItemPrompt:      cfg.Ollama.ItemPrompt,
				MonsterPrompt:   cfg.Ollama.MonsterPrompt,
				ItemFallback:    cfg.Narrative.ItemFallback,
				MonsterFallback: cfg.Narrative.MonsterFallback,
				GlobalCues:      cfg.Narrative.GlobalCues,
				Logger:          opts.Logger,
			},
			Narrator: narrative.NarratorConfig{
				System:     cfg.Ollama.Prompt.System,
				Template:   cfg.Ollama.Prompt.Template,
				Fallback:   cfg.Narrative.Fallback,
				GlobalCues: cfg.Narrative.GlobalCues,
				Logger:     opts.Logger,
			},
		},
		Logger: opts.Logger,
	})
}
