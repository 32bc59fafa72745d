package config

import (
	"fmt"
	"unicode/utf8"

	"github.com/samdwyer/dungeongrammar/internal/grammar"
	"github.com/samdwyer/dungeongrammar/internal/world"
)

// parseRules converts raw rule values into grammar rules. A value may be an
// inline alternative string, a list of such strings, or a list of
// {production, weight} tables.
func parseRules(field string, raw map[string]any) (map[rune]grammar.Rule, error) {
	rules := make(map[rune]grammar.Rule, len(raw))
	for key, value := range raw {
		symbol, err := symbolKey(field, key)
		if err != nil {
			return nil, err
		}
		rule, err := parseRule(symbol, value)
		if err != nil {
			return nil, &ConfigError{Field: field + "." + key, Reason: "invalid rule", Err: err}
		}
		rules[symbol] = rule
	}
	return rules, nil
}

func parseRule(symbol rune, value any) (grammar.Rule, error) {
	switch v := value.(type) {
	case string:
		return grammar.ParseAlternatives(symbol, v)
	case []any:
		var rule grammar.Rule
		for i, item := range v {
			switch alt := item.(type) {
			case string:
				parsed, err := grammar.ParseAlternatives(symbol, alt)
				if err != nil {
					return nil, err
				}
				rule = append(rule, parsed...)
			case map[string]any:
				parsed, err := parseAlternativeTable(alt)
				if err != nil {
					return nil, fmt.Errorf("alternative %d: %w", i, err)
				}
				rule = append(rule, parsed)
			default:
				return nil, fmt.Errorf("alternative %d: unsupported type %T", i, item)
			}
		}
		return rule, nil
	default:
		return nil, fmt.Errorf("unsupported rule type %T", value)
	}
}

func parseAlternativeTable(t map[string]any) (grammar.Alternative, error) {
	production, ok := t["production"].(string)
	if !ok {
		return grammar.Alternative{}, fmt.Errorf("production must be a string")
	}
	alt := grammar.Alternative{Production: production, Weight: grammar.DefaultWeight}
	switch w := t["weight"].(type) {
	case nil:
	case float64:
		alt.Weight = w
	case int64:
		alt.Weight = float64(w)
	default:
		return grammar.Alternative{}, fmt.Errorf("weight must be a number, got %T", w)
	}
	return alt, nil
}

// parseSymbols converts template tables. Tags may be a single string or a
// list; a missing label defaults to the symbol itself.
func parseSymbols(field string, raw map[string]symbolEntry) (map[rune]world.Template, map[rune]string, error) {
	templates := make(map[rune]world.Template, len(raw))
	colors := map[rune]string{}
	for key, entry := range raw {
		symbol, err := symbolKey(field, key)
		if err != nil {
			return nil, nil, err
		}
		tags, err := parseTags(entry.Tags)
		if err != nil {
			return nil, nil, &ConfigError{Field: field + "." + key + ".tags", Reason: err.Error()}
		}
		label := entry.Label
		if label == "" {
			label = key
		}
		templates[symbol] = world.Template{Label: label, Tags: tags}
		if entry.Color != "" {
			colors[symbol] = entry.Color
		}
	}
	return templates, colors, nil
}

func parseTags(raw any) ([]string, error) {
	switch v := raw.(type) {
	case nil:
		return []string{}, nil
	case string:
		return []string{v}, nil
	case []any:
		tags := make([]string, 0, len(v))
		for _, t := range v {
			tags = append(tags, fmt.Sprint(t))
		}
		return tags, nil
	default:
		return nil, fmt.Errorf("unsupported tags type %T", raw)
	}
}

// symbolKey checks that a table key is exactly one character.
func symbolKey(field, key string) (rune, error) {
	r, size := utf8.DecodeRuneInString(key)
	if size == 0 || size != len(key) || r == utf8.RuneError {
		return 0, &ConfigError{Field: field + "." + key, Reason: "symbol keys must be a single character"}
	}
	return r, nil
}
