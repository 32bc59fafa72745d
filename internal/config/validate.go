package config

import (
	"strings"

	"github.com/samdwyer/dungeongrammar/internal/world"
)

// reservedSymbols cannot name room templates.
const reservedSymbols = string(world.EntrySymbol) + string(world.TurnRight) +
	string(world.TurnLeft) + string(world.PushBranch) + string(world.PopBranch)

// Validate checks ranges and reserved symbols.
func (c *Config) Validate() error {
	if c.Dungeon.Iterations < 0 {
		return &ConfigError{Field: "dungeon.iterations", Reason: "must not be negative"}
	}
	for symbol := range c.Dungeon.Symbols {
		if strings.ContainsRune(reservedSymbols, symbol) {
			return &ConfigError{Field: "dungeon.symbols." + string(symbol), Reason: "symbol is reserved"}
		}
	}
	if c.Evaluation.CandidateCount < 1 {
		return &ConfigError{Field: "evaluation.candidate_count", Reason: "must be at least 1"}
	}
	if c.Evaluation.TargetRoomCount < 1 {
		return &ConfigError{Field: "evaluation.target_room_count", Reason: "must be at least 1"}
	}
	if c.Evaluation.Workers < 1 {
		return &ConfigError{Field: "evaluation.workers", Reason: "must be at least 1"}
	}
	if c.Evaluation.MaxSymbols < 0 {
		return &ConfigError{Field: "evaluation.max_symbols", Reason: "must not be negative"}
	}
	if c.Ollama.Timeout <= 0 {
		return &ConfigError{Field: "ollama.timeout", Reason: "must be positive"}
	}
	if c.Ollama.MaxRetries < 0 {
		return &ConfigError{Field: "ollama.max_retries", Reason: "must not be negative"}
	}
	return nil
}
