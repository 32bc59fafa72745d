// Package content places items and monsters in rooms by expanding small
// per-room-symbol grammars, and describes each entity.
package content

import (
	"context"
	"strings"

	"github.com/cespare/xxhash/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/samdwyer/dungeongrammar/internal/grammar"
	"github.com/samdwyer/dungeongrammar/internal/logging"
	"github.com/samdwyer/dungeongrammar/internal/narrative"
	"github.com/samdwyer/dungeongrammar/internal/telemetry"
	"github.com/samdwyer/dungeongrammar/internal/world"
)

// Kind distinguishes the two entity groups.
type Kind string

const (
	KindItem    Kind = "item"
	KindMonster Kind = "monster"
)

// Default fallback templates. Placeholders: {global_cues}, {room_label},
// {room_symbol}, {entity_label}, {entity_symbol}, {entity_tags}.
const (
	DefaultItemFallback    = "A {entity_label} imbued with {entity_tags} qualities rests here."
	DefaultMonsterFallback = "A {entity_label} exuding {entity_tags} menace stalks the edges of the room."
)

// Source is a loaded sub-grammar. Path identifies it in caches.
type Source struct {
	Path       string
	Grammar    grammar.Grammar
	Iterations int
}

// Group maps room symbols to sub-grammars and entity symbols to templates.
type Group struct {
	Grammars map[rune]Source
	Symbols  map[rune]world.Template
}

// Prompt is a system prompt plus a user prompt template.
type Prompt struct {
	System   string
	Template string
}

// Config configures entity placement and description.
type Config struct {
	Items           Group
	Monsters        Group
	ItemPrompt      Prompt
	MonsterPrompt   Prompt
	ItemFallback    string
	MonsterFallback string
	GlobalCues      string
	Logger          *zap.Logger
}

type sequenceKey struct {
	path   string
	symbol rune
}

type descriptionKey struct {
	kind   Kind
	symbol rune
}

// Generator enriches one dungeon. Its caches live as long as the Generator.
type Generator struct {
	gen          narrative.Generator
	cfg          Config
	seed         uint32
	log          *zap.Logger
	sequences    map[sequenceKey]string
	descriptions map[descriptionKey]string
}

// New creates a generator. seed makes sub-grammar expansion reproducible; a
// nil text generator always uses fallback descriptions.
func New(gen narrative.Generator, cfg Config, seed uint32) *Generator {
	if strings.TrimSpace(cfg.ItemFallback) == "" {
		cfg.ItemFallback = DefaultItemFallback
	}
	if strings.TrimSpace(cfg.MonsterFallback) == "" {
		cfg.MonsterFallback = DefaultMonsterFallback
	}
	return &Generator{
		gen:          gen,
		cfg:          cfg,
		seed:         seed,
		log:          logging.OrNop(cfg.Logger),
		sequences:    map[sequenceKey]string{},
		descriptions: map[descriptionKey]string{},
	}
}

// Enrich returns a copy of d with items and monsters placed in every room
// except the entry.
func (g *Generator) Enrich(ctx context.Context, d *world.Dungeon) *world.Dungeon {
	ctx, span := telemetry.Tracer("content").Start(ctx, "content.enrich")
	defer span.End()

	var (
		updated  []world.Room
		items    int
		monsters int
	)
	for _, room := range d.Rooms() {
		if room.IsEntry() {
			continue
		}
		roomItems := g.entities(ctx, room, KindItem)
		roomMonsters := g.entities(ctx, room, KindMonster)
		items += len(roomItems)
		monsters += len(roomMonsters)
		updated = append(updated, room.WithEntities(roomItems, roomMonsters))
	}

	span.SetAttributes(
		attribute.Int("content.items", items),
		attribute.Int("content.monsters", monsters),
	)
	return d.WithRooms(updated)
}

func (g *Generator) group(kind Kind) Group {
	if kind == KindItem {
		return g.cfg.Items
	}
	return g.cfg.Monsters
}

// entities expands the room symbol's sub-grammar and turns each distinct
// known entity symbol into an Entity, in order of first appearance.
func (g *Generator) entities(ctx context.Context, room world.Room, kind Kind) []world.Entity {
	group := g.group(kind)
	src, ok := group.Grammars[room.Symbol]
	if !ok {
		return nil
	}

	counts := map[rune]int{}
	var order []rune
	for _, symbol := range g.expand(src, room.Symbol) {
		if _, known := group.Symbols[symbol]; !known {
			continue
		}
		if counts[symbol] == 0 {
			order = append(order, symbol)
		}
		counts[symbol]++
	}

	entities := make([]world.Entity, 0, len(order))
	for _, symbol := range order {
		tmpl := group.Symbols[symbol]
		entities = append(entities, world.Entity{
			Symbol:      string(symbol),
			Label:       tmpl.Label,
			Tags:        append([]string{}, tmpl.Tags...),
			Description: g.describe(ctx, kind, symbol, tmpl, room),
			Quantity:    counts[symbol],
		})
	}
	return entities
}

// expand returns the cached expansion of src for a room symbol. Each
// (path, symbol) pair gets its own seed derived from the run seed.
func (g *Generator) expand(src Source, roomSymbol rune) string {
	key := sequenceKey{path: src.Path, symbol: roomSymbol}
	if seq, ok := g.sequences[key]; ok {
		return seq
	}
	sub := g.seed ^ uint32(xxhash.Sum64String(src.Path+"\x00"+string(roomSymbol)))
	seq := grammar.FromGrammar(src.Grammar, sub).Expand(max(src.Iterations, 1))
	g.sequences[key] = seq
	return seq
}

func (g *Generator) describe(ctx context.Context, kind Kind, symbol rune, tmpl world.Template, room world.Room) string {
	key := descriptionKey{kind: kind, symbol: symbol}
	if text, ok := g.descriptions[key]; ok {
		return text
	}

	prompt, fallback, tagCount, maxWords := g.cfg.ItemPrompt, g.cfg.ItemFallback, 2, 3
	if kind == KindMonster {
		prompt, fallback, tagCount, maxWords = g.cfg.MonsterPrompt, g.cfg.MonsterFallback, 3, 4
	}
	fields := map[string]string{
		"global_cues":   g.cfg.GlobalCues,
		"room_label":    room.Label,
		"room_symbol":   string(room.Symbol),
		"entity_label":  tmpl.Label,
		"entity_symbol": string(symbol),
		"entity_tags":   strings.Join(tmpl.Tags[:min(tagCount, len(tmpl.Tags))], " "),
	}

	var text string
	if g.gen != nil && strings.TrimSpace(prompt.Template) != "" {
		var err error
		text, err = g.gen.Generate(ctx, strings.TrimSpace(narrative.Fill(prompt.Template, fields)), prompt.System)
		if err != nil {
			g.log.Warn("entity description fell back to template",
				zap.String("kind", string(kind)),
				zap.String("symbol", string(symbol)),
				zap.Error(err),
			)
			text = ""
		}
	}
	if strings.TrimSpace(text) == "" {
		text = narrative.Fill(fallback, fields)
	}

	text = narrative.Clean(text, maxWords)
	g.descriptions[key] = text
	return text
}
