// Package disk implements a global state persisted in a key/value database.
// The values are stored in one bucket, indexed by the binary form of the keys.
package disk

import (
	"github.com/JoowonYun/CasperLabs/core/effect"
	"github.com/JoowonYun/CasperLabs/core/key"
	"github.com/JoowonYun/CasperLabs/core/state"
	"github.com/JoowonYun/CasperLabs/core/store/kv"
	"github.com/JoowonYun/CasperLabs/core/value"
	"golang.org/x/xerrors"
)

var defaultBucket = []byte("global_state")

// Store is a global state backed by a database.
//
// - implements state.Store
type Store struct {
	db     kv.DB
	bucket []byte
}

// New returns the store of the database.
func New(db kv.DB) *Store {
	return &Store{
		db:     db,
		bucket: defaultBucket,
	}
}

// Read implements state.Reader.
func (s *Store) Read(k key.Key) (value.Value, bool, error) {
	var v value.Value

	err := s.db.View(func(tx kv.ReadableTx) error {
		bucket := tx.GetBucket(s.bucket)
		if bucket == nil {
			return nil
		}

		var err error
		v, err = read(bucket, k)

		return err
	})
	if err != nil {
		return nil, false, xerrors.Errorf("failed to read %s: %v", k, err)
	}

	return v, v != nil, nil
}

// Commit implements state.Store. Every transform of the effect is applied
// inside one database transaction.
func (s *Store) Commit(eff effect.Effect) error {
	return s.db.Update(func(tx kv.WritableTx) error {
		bucket, err := tx.GetBucketOrCreate(s.bucket)
		if err != nil {
			return xerrors.Errorf("failed to open bucket: %v", err)
		}

		changes, err := state.Changes(bucketReader{bucket: bucket}, eff)
		if err != nil {
			return xerrors.Errorf("failed to commit: %w", err)
		}

		for _, change := range changes {
			data, err := value.Encode(change.Value)
			if err != nil {
				return xerrors.Errorf("failed to encode %s: %v", change.Key, err)
			}

			err = bucket.Set(change.Key.Bytes(), data)
			if err != nil {
				return xerrors.Errorf("failed to write %s: %v", change.Key, err)
			}
		}

		return nil
	})
}

// ForEach iterates over the stored values in the order of the binary keys.
func (s *Store) ForEach(fn func(k key.Key, v value.Value) error) error {
	return s.db.View(func(tx kv.ReadableTx) error {
		bucket := tx.GetBucket(s.bucket)
		if bucket == nil {
			return nil
		}

		return bucket.ForEach(func(kb, vb []byte) error {
			k, err := key.FromBytes(kb)
			if err != nil {
				return xerrors.Errorf("malformed key: %v", err)
			}

			v, err := value.Decode(vb)
			if err != nil {
				return xerrors.Errorf("malformed value at %s: %v", k, err)
			}

			return fn(k, v)
		})
	})
}

func read(bucket kv.Bucket, k key.Key) (value.Value, error) {
	data, err := bucket.Get(k.Bytes())
	if err != nil {
		return nil, err
	}

	if data == nil {
		return nil, nil
	}

	v, err := value.Decode(data)
	if err != nil {
		return nil, xerrors.Errorf("malformed value: %v", err)
	}

	return v, nil
}

type bucketReader struct {
	bucket kv.Bucket
}

func (r bucketReader) Read(k key.Key) (value.Value, bool, error) {
	v, err := read(r.bucket, k)
	if err != nil {
		return nil, false, err
	}

	return v, v != nil, nil
}
