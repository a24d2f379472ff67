package reconcile

import (
	"sort"

	"github.com/ndoctl-project/ndoctl/pkg/keypath"
)

// Replace is one declared desired value for one path. A nil Value means "no
// declared change" for that path and is skipped by the engine.
type Replace struct {
	Path  keypath.Path
	Value any
}

// ReplaceSet is an ordered list of declared replacements. Order is
// significant whenever paths overlap: entries are walked exactly in the
// order they were declared. A ReplaceSet is built fresh per reconciliation
// and consumed once.
type ReplaceSet []Replace

// Set appends a declaration for the given path.
func (rs ReplaceSet) Set(path keypath.Path, value any) ReplaceSet {
	return append(rs, Replace{Path: path, Value: value})
}

// SetKey appends a declaration for a bare top-level key.
func (rs ReplaceSet) SetKey(key string, value any) ReplaceSet {
	return rs.Set(keypath.New(key), value)
}

// MergeMap folds a flat sub-object into the set: every key of sub becomes an
// entry addressed by prefix+key. This lets one reconciliation touch both
// top-level and nested fields of the same object. Keys are inserted in
// sorted order so the emitted operation list is deterministic; an empty sub
// leaves the set unchanged.
func (rs ReplaceSet) MergeMap(sub map[string]any, prefix ...string) ReplaceSet {
	if len(sub) == 0 {
		return rs
	}
	keys := make([]string, 0, len(sub))
	for key := range sub {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	base := keypath.New(prefix...)
	for _, key := range keys {
		rs = append(rs, Replace{Path: base.Append(key), Value: sub[key]})
	}
	return rs
}

// RemoveSet is an ordered list of paths whose addressed location must be
// deleted from the snapshot if present.
type RemoveSet []keypath.Path

// Remove appends a path to the set.
func (rm RemoveSet) Remove(path keypath.Path) RemoveSet {
	return append(rm, path)
}

// RemoveKey appends a bare top-level key to the set.
func (rm RemoveSet) RemoveKey(key string) RemoveSet {
	return append(rm, keypath.New(key))
}
