package preferences

import (
	"math"

	"github.com/matst80/slask-storefront/pkg/types"
)

func getString(doc map[string]any, path, def string) string {
	if v, ok := types.LookupPath(doc, path).(string); ok {
		return v
	}
	return def
}

func getBool(doc map[string]any, path string, def bool) bool {
	if v, ok := types.LookupPath(doc, path).(bool); ok {
		return v
	}
	return def
}

// getPositiveInt accepts JSON (float64) and YAML (int) numbers.
func getPositiveInt(doc map[string]any, path string, def int) int {
	var n int
	switch v := types.LookupPath(doc, path).(type) {
	case float64:
		if v != math.Trunc(v) {
			return def
		}
		n = int(v)
	case int:
		n = v
	case int64:
		n = int(v)
	default:
		return def
	}
	if n <= 0 {
		return def
	}
	return n
}

func getMap(doc map[string]any, path string) map[string]any {
	v, ok := types.LookupPath(doc, path).(map[string]any)
	if !ok || len(v) == 0 {
		return nil
	}
	return v
}

func getList(doc map[string]any, path string) []any {
	v, _ := types.LookupPath(doc, path).([]any)
	return v
}

// getStringList returns nil when the path is absent or not a list. A single string
// is accepted as a one element list. Non string elements are skipped.
func getStringList(doc map[string]any, path string) []string {
	switch v := types.LookupPath(doc, path).(type) {
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	case []string:
		return v
	case []any:
		result := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				result = append(result, s)
			}
		}
		return result
	}
	return nil
}
