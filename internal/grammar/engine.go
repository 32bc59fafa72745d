package grammar

import (
	"fmt"
	"math/rand"
	"strings"
	"unicode/utf8"
)

// Engine expands a Grammar using a private seeded random source. Two engines
// built from the same grammar and seed produce identical output for the same
// iteration count. An Engine is not safe for concurrent use.
type Engine struct {
	grammar Grammar
	rng     *rand.Rand
}

// New validates the rules and creates an engine seeded with seed.
func New(axiom string, rules map[rune]Rule, seed uint32) (*Engine, error) {
	g, err := NewGrammar(axiom, rules)
	if err != nil {
		return nil, err
	}
	return FromGrammar(g, seed), nil
}

// FromGrammar creates an engine over an already validated grammar.
func FromGrammar(g Grammar, seed uint32) *Engine {
	return &Engine{
		grammar: g,
		rng:     rand.New(rand.NewSource(int64(seed))),
	}
}

// Expand runs iterations left-to-right rewriting passes over the axiom.
// Negative iteration counts are treated as zero.
func (e *Engine) Expand(iterations int) string {
	s, _ := e.ExpandLimit(iterations, 0)
	return s
}

// ExpandLimit is Expand with a bound on the intermediate length. It stops
// rewriting as soon as a pass holds more than limit symbols and returns
// ErrExpansionTooLarge. A limit of zero or less means no bound.
func (e *Engine) ExpandLimit(iterations, limit int) (string, error) {
	current := e.grammar.Axiom
	if limit > 0 && utf8.RuneCountInString(current) > limit {
		return "", fmt.Errorf("%w: axiom exceeds %d", ErrExpansionTooLarge, limit)
	}
	for i := 0; i < iterations; i++ {
		var next strings.Builder
		next.Grow(len(current) * 2)
		symbols := 0
		for _, symbol := range current {
			rule, ok := e.grammar.Rules[symbol]
			if !ok {
				next.WriteRune(symbol)
				symbols++
			} else {
				production := e.choose(rule)
				next.WriteString(production)
				symbols += utf8.RuneCountInString(production)
			}
			if limit > 0 && symbols > limit {
				return "", fmt.Errorf("%w: more than %d after pass %d", ErrExpansionTooLarge, limit, i+1)
			}
		}
		current = next.String()
	}
	return current, nil
}

// choose picks an alternative using cumulative weights in declared order.
// A single alternative never consumes randomness.
func (e *Engine) choose(rule Rule) string {
	if len(rule) == 1 {
		return rule[0].Production
	}

	roll := e.rng.Float64() * rule.totalWeight()

	cumulative := 0.0
	for _, alt := range rule {
		cumulative += alt.Weight
		if roll <= cumulative {
			return alt.Production
		}
	}

	// Rounding can leave roll a hair above the final cumulative sum.
	return rule[len(rule)-1].Production
}
