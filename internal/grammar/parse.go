package grammar

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// DefaultWeight is used for alternatives that carry no explicit weight.
const DefaultWeight = 1.0

var weightSuffix = regexp.MustCompile(`^(.*)\(\s*([-+]?[0-9]*\.?[0-9]+(?:[eE][-+]?[0-9]+)?)\s*\)$`)

// ParseAlternatives parses the inline alternative syntax used in grammar
// files: a comma-separated list where each entry may end with a "(weight)"
// suffix, for example "F[+F]F(2), F-F(1), FF".
func ParseAlternatives(symbol rune, text string) (Rule, error) {
	parts := strings.Split(text, ",")
	rule := make(Rule, 0, len(parts))
	for i, part := range parts {
		alt, err := ParseAlternative(part)
		if err != nil {
			return nil, &GrammarError{Symbol: symbol, Index: i, Err: err}
		}
		rule = append(rule, alt)
	}
	if err := validateRule(symbol, rule); err != nil {
		return nil, err
	}
	return rule, nil
}

// ParseAlternative parses a single "production(weight)" entry. The weight is
// optional and defaults to DefaultWeight.
func ParseAlternative(text string) (Alternative, error) {
	text = strings.TrimSpace(text)
	m := weightSuffix.FindStringSubmatch(text)
	if m == nil {
		return Alternative{Production: text, Weight: DefaultWeight}, nil
	}
	weight, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return Alternative{}, fmt.Errorf("parse weight %q: %w", m[2], err)
	}
	return Alternative{Production: strings.TrimSpace(m[1]), Weight: weight}, nil
}
