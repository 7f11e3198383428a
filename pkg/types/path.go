package types

import "strings"

// LookupPath walks a decoded document along a dotted path. A missing segment yields nil.
func LookupPath(doc map[string]any, path string) any {
	var current any = doc
	for part := range strings.SplitSeq(path, ".") {
		switch node := current.(type) {
		case map[string]any:
			v, ok := node[part]
			if !ok {
				return nil
			}
			current = v
		case []any:
			if len(node) == 0 {
				return nil
			}
			first, ok := node[0].(map[string]any)
			if !ok {
				return nil
			}
			current = first[part]
		default:
			return nil
		}
	}
	return current
}
