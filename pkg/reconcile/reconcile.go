// Package reconcile turns a declarative description of desired field changes
// into the minimal ordered list of JSON-Patch operations that transforms a
// fetched document snapshot into the desired shape.
//
// The engine mutates the snapshot in place while it emits operations, so the
// snapshot and the operation list can never diverge: after a call the
// snapshot looks exactly like the remote object will look once the
// operations are applied. Callers that need the pre-mutation state must copy
// the snapshot beforehand.
//
// The engine is synchronous, performs no I/O and holds no state across
// calls; a snapshot must not be shared between concurrent reconciliations.
package reconcile

import (
	"errors"
	"fmt"

	"github.com/brunoga/deep"
	"github.com/wI2L/jsondiff"

	"github.com/ndoctl-project/ndoctl/pkg/keypath"
)

// ErrInvalidArgument reports a malformed input shape. It is raised before any
// snapshot mutation, so a failed call leaves both the snapshot and the
// operation list untouched.
var ErrInvalidArgument = errors.New("reconcile: invalid argument")

// AppendUpdateOps walks the declared replace and remove sets against the
// snapshot and appends one operation per effective change to ops.
//
// Replace entries are processed first, remove entries after, each set in its
// declaration order; callers control overlapping-path semantics purely
// through that order. A replace whose value equals the current value is
// suppressed, a remove whose key is absent is a no-op, and a path whose
// intermediate segments do not exist in the snapshot is silently skipped:
// declared changes for optional nested structure that a given object does
// not carry are normal, not errors.
//
// Values recorded in emitted operations are deep copies, so later mutation
// of the snapshot (or of the caller's value) cannot retroactively alter an
// already-emitted operation. basePath is the absolute document location the
// paths are rooted at, e.g. "/tenantPolicyTemplate/template/netFlowExporters/0".
func AppendUpdateOps(ops *jsondiff.Patch, snapshot map[string]any, basePath string, replace ReplaceSet, remove RemoveSet) error {
	if ops == nil {
		return fmt.Errorf("%w: ops list must not be nil", ErrInvalidArgument)
	}
	if snapshot == nil {
		return fmt.Errorf("%w: snapshot must not be nil", ErrInvalidArgument)
	}
	// validate every declared path before touching the snapshot
	for _, entry := range replace {
		if !entry.Path.Valid() {
			return fmt.Errorf("%w: replace path %q", ErrInvalidArgument, entry.Path.String())
		}
	}
	for _, path := range remove {
		if !path.Valid() {
			return fmt.Errorf("%w: remove path %q", ErrInvalidArgument, path.String())
		}
	}

	for _, entry := range replace {
		if entry.Value == nil {
			// nil is the "no declared change" marker, distinct from
			// falsy-but-present values like false, 0 or "".
			continue
		}
		parent, key, ok := walkToParent(snapshot, entry.Path)
		if !ok {
			continue
		}
		if equalValue(parent[key], entry.Value) {
			continue
		}
		parent[key] = entry.Value
		*ops = append(*ops, jsondiff.Operation{
			Type:  jsondiff.OperationReplace,
			Path:  entry.Path.Location(basePath),
			Value: deep.MustCopy(entry.Value),
		})
	}

	for _, path := range remove {
		parent, key, ok := walkToParent(snapshot, path)
		if !ok {
			continue
		}
		if _, present := parent[key]; !present {
			continue
		}
		delete(parent, key)
		*ops = append(*ops, jsondiff.Operation{
			Type: jsondiff.OperationRemove,
			Path: path.Location(basePath),
		})
	}

	return nil
}

// walkToParent descends the snapshot along all but the last path segment and
// returns the mapping holding the final key. ok is false when an
// intermediate segment is absent or not a mapping; the engine treats that as
// "nothing to change here".
func walkToParent(snapshot map[string]any, path keypath.Path) (parent map[string]any, key string, ok bool) {
	current := snapshot
	for _, segment := range path[:len(path)-1] {
		next, isMap := current[segment].(map[string]any)
		if !isMap {
			return nil, "", false
		}
		current = next
	}
	return current, path[len(path)-1], true
}
