// Package bbolt implements store.RevisionStore on a single BoltDB file.
//
// Snapshots live in their own bucket. Patches are packed into fixed-size
// chunks so that restoring a revision reads long patch chains with few
// bucket lookups. An index bucket records, per revision, whether it is a
// snapshot and where its patch lives.
package bbolt

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
	"go.etcd.io/bbolt"

	"github.com/ndoctl-project/ndoctl/internal/store"
)

var (
	bucketSnapshots = []byte("snapshots")   // <tpl>|rev   -> Snapshot
	bucketChunks    = []byte("patchChunks") // <tpl>|chunk -> []rawPatch
	bucketIndex     = []byte("index")       // <tpl>|rev   -> indexEntry
	bucketLatest    = []byte("latest")      // <tpl>       -> uint64(rev)
)

var (
	errIndexEntryMissing  = errors.New("index entry missing")
	errRevisionIsSnapshot = errors.New("revision is a snapshot")
	errPatchChunkMissing  = errors.New("patch chunk missing")
)

const chunkSize = 64 // patches per chunk value

type indexEntry struct {
	Snap   bool   `msgpack:"s"`
	Chunk  uint64 `msgpack:"c"`
	Offset uint16 `msgpack:"o"`
}

type rawPatch struct {
	Data []byte `msgpack:"d"`
}

type Store struct {
	db    *bbolt.DB
	codec store.Codec

	head  map[string]uint64 // hot cache: templateID -> latest rev
	mutex sync.RWMutex
}

var _ store.RevisionStore = (*Store)(nil)

// New opens (or creates) a BoltDB database file.
// Pass nil for codec to use the default MessagePack implementation.
func New(path string, codec store.Codec) (*Store, error) {
	if codec == nil {
		codec = store.DefaultCodec
	}
	db, err := bbolt.Open(path, 0666, &bbolt.Options{
		Timeout:      0,
		FreelistType: bbolt.FreelistMapType,
	})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketSnapshots, bucketChunks, bucketIndex, bucketLatest} {
			if _, e := tx.CreateBucketIfNotExists(b); e != nil {
				return e
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create default buckets: %w", err)
	}
	return &Store{
		db:    db,
		codec: codec,
		head:  make(map[string]uint64),
	}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveSnapshot stores a full snapshot and updates the latest pointer.
func (s *Store) SaveSnapshot(_ context.Context, templateID string, snap *store.Snapshot) error {
	if snap.ID == 0 {
		return store.ErrInvalidRevision
	}
	rev := uint64(snap.ID)
	payload, err := s.codec.Marshal(snap)
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketSnapshots).Put(keyObjRev(templateID, rev), payload); err != nil {
			return err
		}
		raw, err := msgpack.Marshal(indexEntry{Snap: true})
		if err != nil {
			return err
		}
		if err := tx.Bucket(bucketIndex).Put(keyObjRev(templateID, rev), raw); err != nil {
			return err
		}
		return s.setLatest(tx, templateID, rev)
	})
}

// SavePatch stores a patch into its chunk and updates the latest pointer.
func (s *Store) SavePatch(_ context.Context, templateID string, p *store.Patch) error {
	if p.ID == 0 {
		return store.ErrInvalidRevision
	}
	rev := uint64(p.ID)
	payload, err := s.codec.Marshal(p)
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		chunkID := rev / chunkSize
		offset := uint16(rev % chunkSize)

		cKey := keyObjChunk(templateID, chunkID)
		var chunk []rawPatch
		if v := tx.Bucket(bucketChunks).Get(cKey); v != nil {
			if err := s.codec.Unmarshal(v, &chunk); err != nil {
				return err
			}
		} else {
			chunk = make([]rawPatch, chunkSize)
		}
		chunk[offset] = rawPatch{Data: payload}

		encoded, err := s.codec.Marshal(chunk)
		if err != nil {
			return err
		}
		if err := tx.Bucket(bucketChunks).Put(cKey, encoded); err != nil {
			return err
		}

		idxBytes, err := msgpack.Marshal(indexEntry{
			Snap:   false,
			Chunk:  chunkID,
			Offset: offset,
		})
		if err != nil {
			return err
		}
		if err := tx.Bucket(bucketIndex).Put(keyObjRev(templateID, rev), idxBytes); err != nil {
			return err
		}
		return s.setLatest(tx, templateID, rev)
	})
}

func (s *Store) LatestRevision(_ context.Context, templateID string) (store.RevisionID, error) {
	s.mutex.RLock()
	if rev, ok := s.head[templateID]; ok {
		s.mutex.RUnlock()
		return store.RevisionID(rev), nil
	}
	s.mutex.RUnlock()

	var rev uint64
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketLatest).Get([]byte(templateID))
		if v == nil {
			return store.ErrNotFound
		}
		rev = binary.BigEndian.Uint64(v)
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.mutex.Lock()
	s.head[templateID] = rev
	s.mutex.Unlock()
	return store.RevisionID(rev), nil
}

func (s *Store) GetSnapshot(_ context.Context, templateID string, revID store.RevisionID) (*store.Snapshot, error) {
	var snapshot store.Snapshot
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketSnapshots).Get(keyObjRev(templateID, uint64(revID)))
		if v == nil {
			return store.ErrNotFound
		}
		return s.codec.Unmarshal(v, &snapshot)
	})
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (s *Store) GetPatch(_ context.Context, templateID string, revID store.RevisionID) (*store.Patch, error) {
	var patch store.Patch
	err := s.db.View(func(tx *bbolt.Tx) error {
		idxBytes := tx.Bucket(bucketIndex).Get(keyObjRev(templateID, uint64(revID)))
		if idxBytes == nil {
			return errIndexEntryMissing
		}
		var idx indexEntry
		if err := msgpack.Unmarshal(idxBytes, &idx); err != nil {
			return err
		}
		if idx.Snap {
			return errRevisionIsSnapshot
		}

		chunkBytes := tx.Bucket(bucketChunks).Get(keyObjChunk(templateID, idx.Chunk))
		if chunkBytes == nil {
			return errPatchChunkMissing
		}
		var arr []rawPatch
		if err := s.codec.Unmarshal(chunkBytes, &arr); err != nil {
			return err
		}
		return s.codec.Unmarshal(arr[idx.Offset].Data, &patch)
	})
	if err != nil {
		return nil, err
	}
	return &patch, nil
}

// Revisions scans the index bucket for all revisions of a template.
func (s *Store) Revisions(_ context.Context, templateID string) ([]store.RevisionID, error) {
	prefix := append([]byte(templateID), '|')
	var revs []store.RevisionID
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketIndex).Cursor()
		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
			revs = append(revs, store.RevisionID(binary.BigEndian.Uint64(k[len(prefix):])))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return revs, nil
}

// setLatest updates the latest revision pointer. The head cache follows
// only once the transaction commits; a failed commit must not leave the
// in-memory pointer ahead of disk.
func (s *Store) setLatest(tx *bbolt.Tx, templateID string, rev uint64) error {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, rev)
	if err := tx.Bucket(bucketLatest).Put([]byte(templateID), buf); err != nil {
		return err
	}

	tx.OnCommit(func() {
		s.mutex.Lock()
		s.head[templateID] = rev
		s.mutex.Unlock()
	})
	return nil
}

func keyObjRev(templateID string, rev uint64) []byte {
	buf := make([]byte, len(templateID)+1+8)
	copy(buf, templateID)
	buf[len(templateID)] = '|'
	binary.BigEndian.PutUint64(buf[len(templateID)+1:], rev)
	return buf
}

func keyObjChunk(templateID string, chunk uint64) []byte {
	buf := make([]byte, len(templateID)+1+8)
	copy(buf, templateID)
	buf[len(templateID)] = '|'
	binary.BigEndian.PutUint64(buf[len(templateID)+1:], chunk)
	return buf
}
