// Package keypath models the ordered key sequence that addresses a single
// value inside a nested map document.
//
// A [Path] is pure data: construction, concatenation and formatting into a
// slash-joined location string are the only operations. A bare key is just a
// one-element Path.
package keypath

import "strings"

// Path is a non-empty ordered sequence of string keys, outermost first.
type Path []string

// New builds a Path from the given segments.
func New(segments ...string) Path {
	return Path(segments)
}

// Append returns a new Path with the given segments added at the end.
// The receiver is never modified.
func (p Path) Append(segments ...string) Path {
	out := make(Path, 0, len(p)+len(segments))
	out = append(out, p...)
	out = append(out, segments...)
	return out
}

// Join concatenates two paths into a new one.
func (p Path) Join(other Path) Path {
	return p.Append(other...)
}

// Equal reports whether both paths contain the same segments in the same
// order.
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// String renders the path as slash-joined segments, e.g. "bfdPol/adminState".
func (p Path) String() string {
	return strings.Join(p, "/")
}

// Location renders the absolute location of the path below base, e.g.
// Location("/tenantPolicyTemplate/template/netFlowExporters/0") for path
// ["qosPolicy","dscp"] yields ".../0/qosPolicy/dscp".
func (p Path) Location(base string) string {
	var sb strings.Builder
	sb.WriteString(base)
	for _, seg := range p {
		sb.WriteByte('/')
		sb.WriteString(seg)
	}
	return sb.String()
}

// Valid reports whether the path is usable for addressing: non-empty and
// without empty segments.
func (p Path) Valid() bool {
	if len(p) == 0 {
		return false
	}
	for _, seg := range p {
		if seg == "" {
			return false
		}
	}
	return true
}
