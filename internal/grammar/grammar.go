// Package grammar provides the weighted stochastic rewriting engine that turns
// an axiom into a long symbol string.
package grammar

import (
	"fmt"
	"math"
)

// Alternative is one weighted production for a symbol.
type Alternative struct {
	Production string
	Weight     float64
}

// Rule is the ordered list of alternatives attached to one symbol.
type Rule []Alternative

// totalWeight returns the sum of all alternative weights.
func (r Rule) totalWeight() float64 {
	total := 0.0
	for _, alt := range r {
		total += alt.Weight
	}
	return total
}

// Grammar is an axiom plus its production rules. Symbols absent from Rules
// are terminals and pass through expansion unchanged.
type Grammar struct {
	Axiom string
	Rules map[rune]Rule
}

// NewGrammar validates the rules and returns an immutable copy.
func NewGrammar(axiom string, rules map[rune]Rule) (Grammar, error) {
	copied := make(map[rune]Rule, len(rules))
	for symbol, rule := range rules {
		if err := validateRule(symbol, rule); err != nil {
			return Grammar{}, err
		}
		copied[symbol] = append(Rule(nil), rule...)
	}
	return Grammar{Axiom: axiom, Rules: copied}, nil
}

// MustGrammar is like NewGrammar but panics on an invalid rule table.
// Use it for grammars defined in code.
func MustGrammar(axiom string, rules map[rune]Rule) Grammar {
	g, err := NewGrammar(axiom, rules)
	if err != nil {
		panic(err)
	}
	return g
}

func validateRule(symbol rune, rule Rule) error {
	if len(rule) == 0 {
		return &GrammarError{Symbol: symbol, Index: -1, Err: ErrNoAlternatives}
	}
	for i, alt := range rule {
		if alt.Production == "" {
			return &GrammarError{Symbol: symbol, Index: i, Err: ErrEmptyProduction}
		}
		if !(alt.Weight > 0) || math.IsInf(alt.Weight, 0) {
			return &GrammarError{Symbol: symbol, Index: i, Err: fmt.Errorf("%w: %g", ErrNonPositiveWeight, alt.Weight)}
		}
	}
	return nil
}
