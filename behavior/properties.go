package behavior

import (
	"fmt"
	"strings"
)

// Properties are the key/value pairs handed to Spawn, usually from a
// level file or a spawn action.
type Properties map[string]any

func (p Properties) Has(key string) bool {
	_, ok := p[key]
	return ok
}

func (p Properties) Float(key string) (float64, bool) {
	v, ok := p[key]
	if !ok {
		return 0, false
	}
	return toFloat(v)
}

func (p Properties) String(key string) (string, bool) {
	v, ok := p[key]
	if !ok || v == nil {
		return "", false
	}
	return fmt.Sprint(v), true
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case int32:
		return float64(t), true
	case uint64:
		return float64(t), true
	case float64:
		return t, true
	case float32:
		return float64(t), true
	default:
		return 0, false
	}
}

func asFloat(v any) float64 {
	f, _ := toFloat(v)
	return f
}

func asString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

func asMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

func asStringList(v any) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		return []string{strings.TrimSpace(t)}
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			out = append(out, asString(item))
		}
		return out
	default:
		return []string{asString(t)}
	}
}

// parseFacing accepts "left"/"right" or a signed number.
func parseFacing(v any) (int, bool) {
	if f, ok := toFloat(v); ok {
		if f < 0 {
			return -1, true
		}
		return 1, true
	}
	switch strings.ToLower(asString(v)) {
	case "left", "l":
		return -1, true
	case "right", "r":
		return 1, true
	}
	return 0, false
}
