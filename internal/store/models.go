package store

import (
	"fmt"
	"time"

	"github.com/wI2L/jsondiff"
)

// RevisionID numbers the revisions of one template, starting at 1.
type RevisionID uint64

func (id RevisionID) String() string {
	return fmt.Sprintf("%016x", uint64(id))
}

// Snapshot is a full copy of a template document at one revision.
type Snapshot struct {
	// ID of the revision.
	ID RevisionID `msgpack:"i"`
	// PreviousID is the ID of the previous revision; zero for the first
	// revision of a template.
	PreviousID RevisionID `msgpack:"p,omitempty"`
	// TakenAt is when the revision was committed.
	TakenAt time.Time `msgpack:"t"`

	// Document is the full template document at this revision.
	Document map[string]any `msgpack:"d"`
}

// Patch records one revision as the operations that transform the previous
// revision into it. A patch cannot exist without a preceding snapshot
// somewhere down its chain.
type Patch struct {
	// ID of the revision.
	ID RevisionID `msgpack:"i"`
	// PreviousID is the ID of the previous revision.
	PreviousID RevisionID `msgpack:"p,omitempty"`
	// TakenAt is when the revision was committed.
	TakenAt time.Time `msgpack:"t"`

	// Operations is the JSON Patch transforming the previous revision into
	// this one.
	Operations []jsondiff.Operation `msgpack:"o"`
}
