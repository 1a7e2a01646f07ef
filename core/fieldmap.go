package core

import (
	"fmt"
	"strconv"
	"strings"
)

// FieldMap is the loosely typed field set produced by the email-intake
// extraction step. Keys are snake_case business fields; values arrive as
// strings or numbers depending on the extractor.
type FieldMap map[string]any

// String returns the first non-empty trimmed value among the given keys.
func (f FieldMap) String(keys ...string) string {
	for _, key := range keys {
		value, ok := f[key]
		if !ok || value == nil {
			continue
		}
		text := strings.TrimSpace(fmt.Sprint(value))
		if text != "" && text != "<nil>" {
			return text
		}
	}
	return ""
}

// StringOr returns String(keys...) or the fallback when every key is empty.
func (f FieldMap) StringOr(fallback string, keys ...string) string {
	if value := f.String(keys...); value != "" {
		return value
	}
	return fallback
}

// Int parses the first parseable integer among the given keys.
func (f FieldMap) Int(fallback int, keys ...string) int {
	for _, key := range keys {
		value, ok := f[key]
		if !ok || value == nil {
			continue
		}
		switch typed := value.(type) {
		case int:
			return typed
		case int64:
			return int(typed)
		case float64:
			return int(typed)
		}
		if parsed, err := strconv.Atoi(strings.TrimSpace(fmt.Sprint(value))); err == nil {
			return parsed
		}
	}
	return fallback
}

// Money parses the first parseable monetary amount among the given keys.
// Currency symbols and thousands separators are stripped; "250k" and "1.5M"
// style suffixes are expanded, matching how amounts arrive in intake emails.
func (f FieldMap) Money(fallback float64, keys ...string) float64 {
	for _, key := range keys {
		value, ok := f[key]
		if !ok || value == nil {
			continue
		}
		switch typed := value.(type) {
		case int:
			return float64(typed)
		case int64:
			return float64(typed)
		case float64:
			return typed
		}
		if amount, err := ParseMoney(fmt.Sprint(value)); err == nil {
			return amount
		}
	}
	return fallback
}

// ParseMoney parses a human-entered amount: "$1,000,000", "250K", "1.5m".
func ParseMoney(text string) (float64, error) {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.ReplaceAll(cleaned, "$", "")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return 0, fmt.Errorf("core: empty amount")
	}

	multiplier := 1.0
	switch {
	case strings.HasSuffix(strings.ToLower(cleaned), "k"):
		multiplier = 1_000
		cleaned = cleaned[:len(cleaned)-1]
	case strings.HasSuffix(strings.ToLower(cleaned), "m"):
		multiplier = 1_000_000
		cleaned = cleaned[:len(cleaned)-1]
	}

	amount, err := strconv.ParseFloat(strings.TrimSpace(cleaned), 64)
	if err != nil {
		return 0, fmt.Errorf("core: parse amount %q: %w", text, err)
	}
	return amount * multiplier, nil
}
