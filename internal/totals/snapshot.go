package totals

import (
	"strconv"
	"strings"
)

// Snapshot is the flat field map collected across the financial panels.
// Every field is optional; panels may write values under legacy or current
// names, so reads go through prioritized alias lists.
type Snapshot map[string]any

// lookup returns the first alias present with a non-empty, non-null value.
func (s Snapshot) lookup(aliases []string) (any, bool) {
	for _, name := range aliases {
		v, ok := s[name]
		if !ok || v == nil {
			continue
		}
		if str, isStr := v.(string); isStr && strings.TrimSpace(str) == "" {
			continue
		}
		return v, true
	}
	return nil, false
}

// Amount resolves a numeric field through its alias list, coercing to a whole
// currency amount. Malformed values fall back to def rather than erroring.
func (s Snapshot) Amount(def int64, aliases ...string) int64 {
	v, ok := s.lookup(aliases)
	if !ok {
		return def
	}
	n, ok := coerceAmount(v)
	if !ok {
		return def
	}
	return n
}

// Flag resolves a boolean field through its alias list.
func (s Snapshot) Flag(def bool, aliases ...string) bool {
	v, ok := s.lookup(aliases)
	if !ok {
		return def
	}
	return coerceFlag(v)
}

func coerceAmount(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float32:
		return int64(n), true
	case float64:
		return int64(n), true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	case string:
		return parseAmount(n)
	default:
		return 0, false
	}
}

// parseAmount accepts user-entered currency text such as "$1,250.75".
func parseAmount(raw string) (int64, bool) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.ReplaceAll(cleaned, "$", "")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	if cleaned == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return int64(f), true
}

func coerceFlag(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return isTruthy(b)
	case int:
		return b == 1
	case int64:
		return b == 1
	case float64:
		return b == 1
	default:
		return false
	}
}

func isTruthy(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "yes", "true", "1":
		return true
	default:
		return false
	}
}
