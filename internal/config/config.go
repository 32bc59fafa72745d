// Package config loads dungeon definitions, evaluation settings and
// text-generation options from TOML.
package config

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/samdwyer/dungeongrammar/internal/content"
	"github.com/samdwyer/dungeongrammar/internal/evaluate"
	"github.com/samdwyer/dungeongrammar/internal/gamedata"
	"github.com/samdwyer/dungeongrammar/internal/grammar"
	"github.com/samdwyer/dungeongrammar/internal/world"
)

// Defaults applied when a field is absent.
const (
	DefaultAxiom           = "F"
	DefaultIterations      = 1
	DefaultCandidateCount  = 1
	DefaultTargetRoomCount = 20
	DefaultWorkers         = 1
	DefaultMaxSymbols      = 1 << 20
	DefaultSubIterations   = 2
	DefaultOllamaTimeout   = 60 * time.Second
	DefaultOllamaRetries   = 1
)

// Config is the fully parsed configuration.
type Config struct {
	Dungeon    Dungeon
	Evaluation Evaluation
	Ollama     Ollama
	Narrative  Narrative
	Content    Content
}

// Dungeon is the main grammar plus its room templates.
type Dungeon struct {
	Grammar    grammar.Grammar
	Iterations int
	Symbols    map[rune]world.Template
	// Colors holds optional hex display colors per symbol.
	Colors map[rune]string
}

// Evaluation configures scoring and candidate selection.
type Evaluation struct {
	CandidateCount  int
	TargetRoomCount int
	Workers         int
	MaxRetries      int
	// MaxSymbols bounds one candidate's grammar expansion. Zero disables
	// the bound.
	MaxSymbols int
	Weights    evaluate.Weights
}

// Ollama configures the text-generation service.
type Ollama struct {
	Endpoint       string
	Model          string
	CompletionPath string
	Timeout        time.Duration
	MaxRetries     int
	Options        map[string]any
	Prompt         content.Prompt
	ItemPrompt     content.Prompt
	MonsterPrompt  content.Prompt
}

// Narrative configures enrichment text.
type Narrative struct {
	Enabled         bool
	GlobalCues      string
	Fallback        string
	ItemFallback    string
	MonsterFallback string
}

// Content holds the item and monster groups.
type Content struct {
	Items    content.Group
	Monsters content.Group
}

// ConfigError reports an invalid or missing setting.
type ConfigError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("config: %s: %s: %v", e.Field, e.Reason, e.Err)
	}
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Load reads a config file from disk. Sub-grammar paths resolve against the
// file's directory.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); err != nil {
		return nil, fmt.Errorf("config file not found: %w", err)
	}
	dir, name := filepath.Split(filename)
	if dir == "" {
		dir = "."
	}
	return LoadFS(os.DirFS(dir), name)
}

// Default loads the configuration embedded in the binary.
func Default() (*Config, error) {
	return LoadFS(gamedata.FS(), gamedata.DefaultConfig)
}

// LoadFS reads a config file from fsys.
func LoadFS(fsys fs.FS, name string) (*Config, error) {
	raw, err := gamedata.Load[fileConfig](fsys, name)
	if err != nil {
		return nil, err
	}
	l := loader{fsys: fsys, dir: path.Dir(name)}
	return l.build(raw)
}

type loader struct {
	fsys fs.FS
	dir  string
}

func (l loader) build(raw fileConfig) (*Config, error) {
	cfg := &Config{}

	dungeon, err := buildDungeon(raw.Dungeon)
	if err != nil {
		return nil, err
	}
	cfg.Dungeon = dungeon

	cfg.Evaluation = Evaluation{
		CandidateCount:  valueOr(raw.Evaluation.CandidateCount, DefaultCandidateCount),
		TargetRoomCount: valueOr(raw.Evaluation.TargetRoomCount, DefaultTargetRoomCount),
		Workers:         valueOr(raw.Evaluation.Workers, DefaultWorkers),
		MaxRetries:      valueOr(raw.Evaluation.MaxRetries, 0),
		MaxSymbols:      valueOr(raw.Evaluation.MaxSymbols, DefaultMaxSymbols),
		Weights:         evaluate.Weights(raw.Evaluation.Weights),
	}
	if cfg.Evaluation.Weights == nil {
		cfg.Evaluation.Weights = evaluate.Weights{}
	}

	timeout := DefaultOllamaTimeout
	if raw.Ollama.Timeout != nil {
		timeout = time.Duration(*raw.Ollama.Timeout * float64(time.Second))
	}
	cfg.Ollama = Ollama{
		Endpoint:       strings.TrimRight(strings.TrimSpace(raw.Ollama.Endpoint), "/"),
		Model:          strings.TrimSpace(raw.Ollama.Model),
		CompletionPath: strings.TrimSpace(raw.Ollama.CompletionPath),
		Timeout:        timeout,
		MaxRetries:     valueOr(raw.Ollama.MaxRetries, DefaultOllamaRetries),
		Options:        raw.Ollama.Options,
		Prompt:         prompt(raw.Ollama.Prompt),
		ItemPrompt:     prompt(raw.Ollama.ItemPrompt),
		MonsterPrompt:  prompt(raw.Ollama.MonsterPrompt),
	}

	cfg.Narrative = Narrative{
		Enabled:         valueOr(raw.Narrative.Enabled, true),
		GlobalCues:      strings.TrimSpace(raw.Narrative.GlobalCues),
		Fallback:        strings.TrimSpace(raw.Narrative.Fallback),
		ItemFallback:    strings.TrimSpace(raw.Narrative.ItemFallback),
		MonsterFallback: strings.TrimSpace(raw.Narrative.MonsterFallback),
	}

	if cfg.Content.Items, err = l.buildGroup("content.items", raw.Content.Items); err != nil {
		return nil, err
	}
	if cfg.Content.Monsters, err = l.buildGroup("content.monsters", raw.Content.Monsters); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func buildDungeon(raw dungeonFile) (Dungeon, error) {
	if len(raw.Rules) == 0 {
		return Dungeon{}, &ConfigError{Field: "dungeon.rules", Reason: "no production rules found"}
	}
	if len(raw.Symbols) == 0 {
		return Dungeon{}, &ConfigError{Field: "dungeon.symbols", Reason: "no symbol definitions found"}
	}

	rules, err := parseRules("dungeon.rules", raw.Rules)
	if err != nil {
		return Dungeon{}, err
	}
	g, err := grammar.NewGrammar(valueOr(raw.Axiom, DefaultAxiom), rules)
	if err != nil {
		return Dungeon{}, &ConfigError{Field: "dungeon.rules", Reason: "invalid grammar", Err: err}
	}

	symbols, colors, err := parseSymbols("dungeon.symbols", raw.Symbols)
	if err != nil {
		return Dungeon{}, err
	}

	return Dungeon{
		Grammar:    g,
		Iterations: valueOr(raw.Iterations, DefaultIterations),
		Symbols:    symbols,
		Colors:     colors,
	}, nil
}

func (l loader) buildGroup(field string, raw contentGroupFile) (content.Group, error) {
	symbols, _, err := parseSymbols(field+".symbols", raw.Symbols)
	if err != nil {
		return content.Group{}, err
	}
	group := content.Group{
		Grammars: make(map[rune]content.Source, len(raw.Grammars)),
		Symbols:  symbols,
	}
	for key, rel := range raw.Grammars {
		symbol, err := symbolKey(field+".grammars", key)
		if err != nil {
			return content.Group{}, err
		}
		src, err := l.loadGrammar(rel)
		if err != nil {
			return content.Group{}, &ConfigError{Field: field + ".grammars." + key, Reason: "cannot load grammar", Err: err}
		}
		group.Grammars[symbol] = src
	}
	return group, nil
}

// loadGrammar reads a sub-grammar file. Relative paths resolve against the
// config directory; absolute paths are read from disk.
func (l loader) loadGrammar(p string) (content.Source, error) {
	fsys, name := l.fsys, path.Join(l.dir, filepath.ToSlash(p))
	if filepath.IsAbs(p) {
		fsys, name = os.DirFS(filepath.Dir(p)), filepath.Base(p)
	}

	raw, err := gamedata.Load[grammarFile](fsys, name)
	if err != nil {
		return content.Source{}, err
	}
	axiom := strings.TrimSpace(raw.Grammar.Axiom)
	if axiom == "" {
		return content.Source{}, fmt.Errorf("grammar file %s: missing axiom", p)
	}
	if len(raw.Grammar.Rules) == 0 {
		return content.Source{}, fmt.Errorf("grammar file %s: missing rules", p)
	}
	rules, err := parseRules("grammar.rules", raw.Grammar.Rules)
	if err != nil {
		return content.Source{}, err
	}
	g, err := grammar.NewGrammar(axiom, rules)
	if err != nil {
		return content.Source{}, err
	}
	return content.Source{
		Path:       name,
		Grammar:    g,
		Iterations: max(valueOr(raw.Grammar.Iterations, DefaultSubIterations), 1),
	}, nil
}

func prompt(p promptFile) content.Prompt {
	return content.Prompt{
		System:   strings.TrimSpace(p.System),
		Template: strings.TrimSpace(p.Template),
	}
}

func valueOr[T any](p *T, fallback T) T {
	if p == nil {
		return fallback
	}
	return *p
}
