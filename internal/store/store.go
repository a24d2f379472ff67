package store

import (
	"context"
	"errors"
)

var (
	ErrNotFound        = errors.New("store: not found")
	ErrInvalidRevision = errors.New("store: invalid revision")
)

// RevisionStore persists the revision log of template documents. Revisions
// are stored either as full snapshots or as patches against the previous
// revision; the history layer decides which.
type RevisionStore interface {
	GetSnapshot(ctx context.Context, templateID string, rev RevisionID) (*Snapshot, error)
	GetPatch(ctx context.Context, templateID string, rev RevisionID) (*Patch, error)

	SaveSnapshot(ctx context.Context, templateID string, snap *Snapshot) error
	SavePatch(ctx context.Context, templateID string, p *Patch) error

	// LatestRevision returns the newest revision of a template, or
	// ErrNotFound when the template was never committed.
	LatestRevision(ctx context.Context, templateID string) (RevisionID, error)
	// Revisions lists all revisions of a template in ascending order.
	Revisions(ctx context.Context, templateID string) ([]RevisionID, error)

	Close() error
}
