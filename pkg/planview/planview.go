// Package planview renders the outcome of a reconciliation as a YAML-like
// tree in which added, removed and modified fields are highlighted, plus a
// compact listing of the raw patch operations.
package planview

import (
	"reflect"
	"sort"
)

// ChangeType indicates the kind of change at a node.
type ChangeType int

const (
	Unchanged ChangeType = iota
	Added
	Removed
	Modified
)

// Node is one entry of the annotated tree. Leaves carry Value; inner nodes
// carry Children.
type Node struct {
	Value    any
	Change   ChangeType
	Children map[string]*Node
}

// Compare builds the annotated tree between the previous and the proposed
// object state.
func Compare(previous, proposed map[string]any) *Node {
	node := &Node{Children: make(map[string]*Node)}

	for _, key := range collectKeys(previous, proposed) {
		before, inBefore := previous[key]
		after, inAfter := proposed[key]

		switch {
		case inBefore && !inAfter:
			node.Children[key] = annotate(before, Removed)

		case !inBefore && inAfter:
			node.Children[key] = annotate(after, Added)

		default:
			beforeMap, beforeOK := before.(map[string]any)
			afterMap, afterOK := after.(map[string]any)
			if beforeOK && afterOK {
				node.Children[key] = Compare(beforeMap, afterMap)
			} else if reflect.DeepEqual(before, after) {
				node.Children[key] = annotate(before, Unchanged)
			} else {
				node.Children[key] = &Node{Value: after, Change: Modified}
			}
		}
	}
	return node
}

// Render renders the change tree between previous and proposed.
func Render(previous, proposed map[string]any, theme Theme) string {
	return RenderTree(Compare(previous, proposed), theme, DefaultRenderOptions)
}

// annotate builds a subtree in which every node carries the same change.
func annotate(val any, change ChangeType) *Node {
	m, ok := val.(map[string]any)
	if !ok {
		// lists are treated atomic
		return &Node{Value: val, Change: change}
	}
	node := &Node{Change: change, Children: make(map[string]*Node)}
	for k, sub := range m {
		node.Children[k] = annotate(sub, change)
	}
	return node
}

func collectKeys(a, b map[string]any) []string {
	keySet := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		keySet[k] = struct{}{}
	}
	for k := range b {
		keySet[k] = struct{}{}
	}

	keys := make([]string, 0, len(keySet))
	for k := range keySet {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
