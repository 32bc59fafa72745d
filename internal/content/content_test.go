package content

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samdwyer/dungeongrammar/internal/grammar"
	"github.com/samdwyer/dungeongrammar/internal/world"
)

type countingGenerator struct {
	text    string
	err     error
	prompts []string
}

func (c *countingGenerator) Generate(_ context.Context, prompt, _ string) (string, error) {
	c.prompts = append(c.prompts, prompt)
	return c.text, c.err
}

var roomTemplates = map[rune]world.Template{
	'F': {Label: "Hall"},
	'A': {Label: "Armory"},
}

func testConfig() Config {
	return Config{
		Items: Group{
			Grammars: map[rune]Source{
				'F': {
					Path:       "items/hall.toml",
					Grammar:    grammar.MustGrammar("X", map[rune]grammar.Rule{'X': {{Production: "c-gc", Weight: 1}}}),
					Iterations: 1,
				},
			},
			Symbols: map[rune]world.Template{
				'c': {Label: "Coin", Tags: []string{"gold", "shiny", "round"}},
				'g': {Label: "Gem", Tags: []string{"red"}},
			},
		},
		Monsters: Group{
			Grammars: map[rune]Source{
				'A': {
					Path: "monsters/armory.toml",
					Grammar: grammar.MustGrammar("M", map[rune]grammar.Rule{'M': {
						{Production: "oM", Weight: 1},
						{Production: "k", Weight: 1},
					}}),
					Iterations: 4,
				},
			},
			Symbols: map[rune]world.Template{
				'o': {Label: "Orc", Tags: []string{"brutal", "green", "loud", "smelly"}},
				'k': {Label: "Kobold", Tags: []string{"sneaky"}},
			},
		},
		ItemPrompt:    Prompt{Template: "Item {entity_label} with {entity_tags} in {room_label}"},
		MonsterPrompt: Prompt{Template: "Monster {entity_label} with {entity_tags} in {room_label}"},
	}
}

func TestEnrichPlacesEntities(t *testing.T) {
	d := world.Build("FA", roomTemplates)
	gen := &countingGenerator{text: "<think>plan</think> A  glinting golden pile"}

	out := New(gen, testConfig(), 42).Enrich(context.Background(), d)

	hall, _ := out.Room(1)
	require.Len(t, hall.Items, 2)
	assert.Equal(t, world.Entity{
		Symbol:      "c",
		Label:       "Coin",
		Tags:        []string{"gold", "shiny", "round"},
		Description: "A glinting golden",
		Quantity:    2,
	}, hall.Items[0])
	assert.Equal(t, "g", hall.Items[1].Symbol)
	assert.Equal(t, 1, hall.Items[1].Quantity)
	assert.Empty(t, hall.Monsters)

	armory, _ := out.Room(2)
	assert.Empty(t, armory.Items)
	require.NotEmpty(t, armory.Monsters)
	for _, m := range armory.Monsters {
		assert.Equal(t, "A glinting golden pile", m.Description)
	}

	entry, _ := out.Room(0)
	assert.Empty(t, entry.Items)
	assert.Empty(t, entry.Monsters)

	assert.Contains(t, gen.prompts, "Item Coin with gold shiny in Hall")

	before, _ := d.Room(1)
	assert.Empty(t, before.Items, "source dungeon must not change")
}

func TestEnrichMonsterTags(t *testing.T) {
	cfg := testConfig()
	cfg.Monsters.Grammars['A'] = Source{
		Path:       "monsters/orcs.toml",
		Grammar:    grammar.MustGrammar("o", nil),
		Iterations: 1,
	}
	gen := &countingGenerator{text: "Grunting brute"}

	New(gen, cfg, 1).Enrich(context.Background(), world.Build("A", roomTemplates))
	assert.Equal(t, []string{"Monster Orc with brutal green loud in Armory"}, gen.prompts)
}

func TestEnrichFallback(t *testing.T) {
	d := world.Build("F", roomTemplates)

	out := New(&countingGenerator{err: errors.New("offline")}, testConfig(), 7).Enrich(context.Background(), d)
	hall, _ := out.Room(1)
	require.Len(t, hall.Items, 2)
	assert.Equal(t, "A Coin imbued", hall.Items[0].Description)

	out = New(nil, testConfig(), 7).Enrich(context.Background(), d)
	hall, _ = out.Room(1)
	assert.Equal(t, "A Gem imbued", hall.Items[1].Description)
}

func TestEnrichCachesDescriptions(t *testing.T) {
	d := world.Build("FFF", roomTemplates)
	gen := &countingGenerator{text: "Shiny"}

	out := New(gen, testConfig(), 3).Enrich(context.Background(), d)

	// One prompt per entity symbol, not per room.
	assert.Len(t, gen.prompts, 2)
	for _, id := range []int{1, 2, 3} {
		r, _ := out.Room(id)
		assert.Len(t, r.Items, 2)
	}
}

func TestEnrichReproducible(t *testing.T) {
	d := world.Build("AAFA", roomTemplates)

	out1 := New(nil, testConfig(), 99).Enrich(context.Background(), d)
	out2 := New(nil, testConfig(), 99).Enrich(context.Background(), d)

	assert.Equal(t, out1.Rooms(), out2.Rooms())
}
