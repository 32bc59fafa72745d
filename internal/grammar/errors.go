package grammar

import (
	"errors"
	"fmt"
)

var (
	// ErrNoAlternatives is returned when a rule has nothing to choose from.
	ErrNoAlternatives = errors.New("rule has no alternatives")
	// ErrNonPositiveWeight is returned when an alternative weight is zero, negative, infinite or NaN.
	ErrNonPositiveWeight = errors.New("alternative weight must be positive")
	// ErrEmptyProduction is returned when an alternative has no production text.
	ErrEmptyProduction = errors.New("alternative production is empty")
	// ErrExpansionTooLarge is returned by ExpandLimit when a pass outgrows the limit.
	ErrExpansionTooLarge = errors.New("expanded grammar exceeds symbol limit")
)

// GrammarError reports a malformed rule. Index is -1 when the error concerns
// the rule as a whole rather than a single alternative.
type GrammarError struct {
	Symbol rune
	Index  int
	Err    error
}

func (e *GrammarError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("grammar: symbol %q: %v", e.Symbol, e.Err)
	}
	return fmt.Sprintf("grammar: symbol %q alternative %d: %v", e.Symbol, e.Index, e.Err)
}

func (e *GrammarError) Unwrap() error {
	return e.Err
}
