package narrative

import (
	"context"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/samdwyer/dungeongrammar/internal/logging"
	"github.com/samdwyer/dungeongrammar/internal/telemetry"
	"github.com/samdwyer/dungeongrammar/internal/world"
)

// DefaultFallback is used when neither the generator nor the configured
// fallback template yields text.
const DefaultFallback = "An indescribable place."

// NarratorConfig holds prompt and fallback templates. Templates may use
// {room_id}, {symbol}, {label}, {tags}, {global_cues} and {path_summary}.
type NarratorConfig struct {
	System     string
	Template   string
	Fallback   string
	GlobalCues string
	Logger     *zap.Logger
}

// Narrator describes rooms. Descriptions are cached per room id for the
// lifetime of the Narrator, so one Narrator should serve one dungeon.
type Narrator struct {
	gen   Generator
	cfg   NarratorConfig
	log   *zap.Logger
	cache map[int]string
}

// NewNarrator creates a narrator. A nil generator always uses the fallback.
func NewNarrator(gen Generator, cfg NarratorConfig) *Narrator {
	return &Narrator{
		gen:   gen,
		cfg:   cfg,
		log:   logging.OrNop(cfg.Logger),
		cache: map[int]string{},
	}
}

// Annotate returns a copy of d in which every room except the entry carries
// a description. Generation failures never abort; they fall back to the
// template.
func (n *Narrator) Annotate(ctx context.Context, d *world.Dungeon) *world.Dungeon {
	ctx, span := telemetry.Tracer("narrative").Start(ctx, "narrative.annotate")
	defer span.End()

	var updated []world.Room
	fallbacks := 0
	for _, room := range d.Rooms() {
		if room.IsEntry() {
			continue
		}
		text, generated := n.Describe(ctx, room)
		if !generated {
			fallbacks++
		}
		updated = append(updated, room.WithDescription(text))
	}

	span.SetAttributes(
		attribute.Int("narrative.rooms", len(updated)),
		attribute.Int("narrative.fallbacks", fallbacks),
	)
	return d.WithRooms(updated)
}

// Describe returns the description for room and whether it came from the
// generator rather than a fallback.
func (n *Narrator) Describe(ctx context.Context, room world.Room) (string, bool) {
	if text, ok := n.cache[room.ID]; ok {
		return text, true
	}

	fields := roomFields(room, n.cfg.GlobalCues)
	if n.gen != nil && strings.TrimSpace(n.cfg.Template) != "" {
		prompt := strings.TrimSpace(Fill(n.cfg.Template, fields))
		text, err := n.gen.Generate(ctx, prompt, n.cfg.System)
		if err != nil {
			n.log.Warn("room description fell back to template",
				zap.Int("room_id", room.ID),
				zap.Error(err),
			)
		}
		if text = strings.TrimSpace(text); err == nil && text != "" {
			n.cache[room.ID] = text
			return text, true
		}
	}

	fallback := n.cfg.Fallback
	if strings.TrimSpace(fallback) == "" {
		fallback = DefaultFallback
	}
	return strings.TrimSpace(Fill(fallback, fields)), false
}

// PathSummary renders the trail from the entry to room.
func PathSummary(room world.Room) string {
	if len(room.Trail) == 0 {
		return "start"
	}
	return "start -> " + strings.Join(room.TrailNames(), " -> ")
}

func roomFields(room world.Room, cues string) map[string]string {
	return map[string]string{
		"room_id":      strconv.Itoa(room.ID),
		"symbol":       string(room.Symbol),
		"label":        room.Label,
		"tags":         strings.Join(room.Tags, ", "),
		"global_cues":  cues,
		"path_summary": PathSummary(room),
	}
}
