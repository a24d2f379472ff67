// Package history keeps a local revision log of template documents. Every
// applied change commits the fresh document; revisions are stored as full
// snapshots every snapshotEvery commits and as patch chains in between, and
// any revision can be restored by replaying its chain.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/wI2L/jsondiff"

	"github.com/ndoctl-project/ndoctl/internal/store"
)

// Service tracks template document revisions in a RevisionStore.
type Service struct {
	store         store.RevisionStore
	snapshotEvery uint64 // create full snapshot after this many patches
}

// NewService creates a new history service.
func NewService(rs store.RevisionStore, snapshotEvery uint64) *Service {
	if snapshotEvery == 0 {
		snapshotEvery = 10
	}
	return &Service{
		store:         rs,
		snapshotEvery: snapshotEvery,
	}
}

// Commit persists doc as the next revision of the template and returns its
// ID. Committing a document identical to the latest revision stores nothing
// and returns the latest ID.
func (s *Service) Commit(ctx context.Context, templateID string, doc map[string]any) (store.RevisionID, error) {
	now := time.Now().UTC()

	latest, err := s.store.LatestRevision(ctx, templateID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return 0, err
		}
		snap := &store.Snapshot{ID: 1, TakenAt: now, Document: doc}
		if err := s.store.SaveSnapshot(ctx, templateID, snap); err != nil {
			return 0, err
		}
		return snap.ID, nil
	}

	base, err := s.Restore(ctx, templateID, latest)
	if err != nil {
		return 0, err
	}
	operations, err := jsondiff.Compare(base, doc)
	if err != nil {
		return 0, err
	}
	if len(operations) == 0 {
		return latest, nil
	}

	chain, err := s.patchDistance(ctx, templateID, latest)
	if err != nil {
		return 0, err
	}
	if uint64(chain) >= s.snapshotEvery-1 {
		snap := &store.Snapshot{
			ID:         latest + 1,
			PreviousID: latest,
			TakenAt:    now,
			Document:   doc,
		}
		if err := s.store.SaveSnapshot(ctx, templateID, snap); err != nil {
			return 0, err
		}
		return snap.ID, nil
	}

	p := &store.Patch{
		ID:         latest + 1,
		PreviousID: latest,
		TakenAt:    now,
		Operations: operations,
	}
	if err := s.store.SavePatch(ctx, templateID, p); err != nil {
		return 0, err
	}
	return p.ID, nil
}

// Restore brings back the document state at rev by walking down to the
// nearest snapshot and replaying the patch chain upwards.
func (s *Service) Restore(ctx context.Context, templateID string, rev store.RevisionID) (map[string]any, error) {
	var chain []store.RevisionID
	cur := rev
	for {
		if snap, err := s.store.GetSnapshot(ctx, templateID, cur); err == nil {
			state := snap.Document
			for i := len(chain) - 1; i >= 0; i-- {
				p, err := s.store.GetPatch(ctx, templateID, chain[i])
				if err != nil {
					return nil, fmt.Errorf("broken chain at %s: %w", chain[i], err)
				}
				state, err = applyOperations(state, p.Operations)
				if err != nil {
					return nil, fmt.Errorf("failed to apply operations of %s: %w", chain[i], err)
				}
			}
			return state, nil
		}
		p, err := s.store.GetPatch(ctx, templateID, cur)
		if err != nil {
			return nil, fmt.Errorf("broken chain at %s: %w", cur, err)
		}
		chain = append(chain, cur)
		cur = p.PreviousID
	}
}

// Entry describes one revision for listings.
type Entry struct {
	ID       store.RevisionID
	TakenAt  time.Time
	Snapshot bool
	// OpCount is the number of patch operations; zero for snapshots.
	OpCount int
}

// List returns all revisions of a template in ascending order.
func (s *Service) List(ctx context.Context, templateID string) ([]Entry, error) {
	revs, err := s.store.Revisions(ctx, templateID)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(revs))
	for _, rev := range revs {
		if snap, err := s.store.GetSnapshot(ctx, templateID, rev); err == nil {
			entries = append(entries, Entry{ID: snap.ID, TakenAt: snap.TakenAt, Snapshot: true})
			continue
		}
		p, err := s.store.GetPatch(ctx, templateID, rev)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{ID: p.ID, TakenAt: p.TakenAt, OpCount: len(p.Operations)})
	}
	return entries, nil
}

// Latest returns the newest revision ID of a template.
func (s *Service) Latest(ctx context.Context, templateID string) (store.RevisionID, error) {
	return s.store.LatestRevision(ctx, templateID)
}

// Diff computes the operations transforming revision from into revision to.
func (s *Service) Diff(ctx context.Context, templateID string, from, to store.RevisionID) (jsondiff.Patch, error) {
	a, err := s.Restore(ctx, templateID, from)
	if err != nil {
		return nil, err
	}
	b, err := s.Restore(ctx, templateID, to)
	if err != nil {
		return nil, err
	}
	return jsondiff.Compare(a, b)
}

// Close closes the underlying store.
func (s *Service) Close() error {
	return s.store.Close()
}

// patchDistance counts the patches between from and its nearest snapshot.
func (s *Service) patchDistance(ctx context.Context, templateID string, from store.RevisionID) (int, error) {
	n := 0
	cur := from
	for {
		if _, err := s.store.GetSnapshot(ctx, templateID, cur); err == nil {
			return n, nil
		}
		p, err := s.store.GetPatch(ctx, templateID, cur)
		if err != nil {
			return 0, err
		}
		n++
		cur = p.PreviousID
	}
}

// applyOperations runs ops over base through the JSON round-trip; patch
// application is defined on the wire encoding, not on Go maps.
func applyOperations(base map[string]any, ops []jsondiff.Operation) (map[string]any, error) {
	baseBytes, err := json.Marshal(base)
	if err != nil {
		return nil, err
	}
	patchBytes, err := json.Marshal(ops)
	if err != nil {
		return nil, err
	}
	p, err := jsonpatch.DecodePatch(patchBytes)
	if err != nil {
		return nil, fmt.Errorf("cannot decode patch: %w", err)
	}
	applied, err := p.Apply(baseBytes)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(applied, &out); err != nil {
		return nil, err
	}
	return out, nil
}
