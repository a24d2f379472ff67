// Package shape transforms plain nested map/slice/scalar values into the
// canonical form the patch generator expects.
//
// Absence is always the explicit nil value, never a dropped key: [MapKeys]
// emits nil for sources it cannot find, and [Prune] collapses structures that
// become empty into nil so emptiness propagates one level up per recursion
// step. Pruned values are safe to hand to the remote API as create payloads.
package shape

// KeyMap declares a renaming from source field names to destination field
// names. Only destinations named here ever appear in the output of [MapKeys].
type KeyMap map[string]string

// MapKeys builds a new flat map containing exactly the destination keys of
// keyMap, each carrying the value of its source key in src. A missing source
// key (or a nil/empty src) maps the destination to nil rather than dropping
// it, so "not provided" survives into later pruning.
func MapKeys(src map[string]any, keyMap KeyMap) map[string]any {
	out := make(map[string]any, len(keyMap))
	for srcKey, dstKey := range keyMap {
		if len(src) == 0 {
			out[dstKey] = nil
			continue
		}
		out[dstKey] = src[srcKey]
	}
	return out
}

// Prune returns a structurally equivalent copy of v with every nil removed at
// every nesting level. A map or slice that becomes empty after pruning is
// itself replaced by nil; scalars pass through unchanged. Prune is idempotent
// and never mutates its input.
func Prune(v any) any {
	switch val := v.(type) {
	case map[string]any:
		cleaned := make(map[string]any, len(val))
		for key, item := range val {
			if item == nil {
				continue
			}
			if p := Prune(item); p != nil {
				cleaned[key] = p
			}
		}
		if len(cleaned) == 0 {
			return nil
		}
		return cleaned

	case []any:
		cleaned := make([]any, 0, len(val))
		for _, item := range val {
			if item == nil {
				continue
			}
			if p := Prune(item); p != nil {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) == 0 {
			return nil
		}
		return cleaned

	default:
		return v
	}
}

// PruneMap is a convenience wrapper around [Prune] for callers that need a
// map result, e.g. a create payload. It returns nil when everything pruned
// away.
func PruneMap(m map[string]any) map[string]any {
	pruned, _ := Prune(m).(map[string]any)
	return pruned
}

// AllNil reports whether every value in the list is nil. Call sites use it to
// tell "reference block was provided but left empty" apart from a real
// reference.
func AllNil(values []any) bool {
	for _, v := range values {
		if v != nil {
			return false
		}
	}
	return true
}
