package kv

import (
	"bytes"

	"go.etcd.io/bbolt"
	"golang.org/x/xerrors"
)

// boltDB is an adapter of the KV store using bboltdb.
//
// - implements kv.DB
type boltDB struct {
	bolt *bbolt.DB
}

// NewBolt opens the database file at the path, creating it if necessary.
func NewBolt(path string) (DB, error) {
	db, err := bbolt.Open(path, 0666, &bbolt.Options{})
	if err != nil {
		return nil, xerrors.Errorf("failed to open db: %v", err)
	}

	return boltDB{bolt: db}, nil
}

// New opens the database file with the default engine.
func New(path string) (DB, error) {
	return NewBolt(path)
}

// View implements kv.DB. It executes the read-only transaction in the context
// of the database.
func (db boltDB) View(fn func(ReadableTx) error) error {
	return db.bolt.View(func(txn *bbolt.Tx) error {
		return fn(boltTx{txn: txn})
	})
}

// Update implements kv.DB. It executes the read-write transaction in the
// context of the database.
func (db boltDB) Update(fn func(WritableTx) error) error {
	return db.bolt.Update(func(txn *bbolt.Tx) error {
		return fn(boltTx{txn: txn})
	})
}

// Close implements kv.DB. It closes the database. Any view or update call will
// result in an error after this function is called.
func (db boltDB) Close() error {
	return db.bolt.Close()
}

// boltTx is the adapter of a bbolt transaction.
//
// - implements kv.WritableTx
type boltTx struct {
	txn *bbolt.Tx
}

// GetBucket implements kv.ReadableTx.
func (tx boltTx) GetBucket(name []byte) Bucket {
	bucket := tx.txn.Bucket(name)
	if bucket == nil {
		return nil
	}

	return boltBucket{bucket: bucket}
}

// GetBucketOrCreate implements kv.WritableTx.
func (tx boltTx) GetBucketOrCreate(name []byte) (Bucket, error) {
	bucket, err := tx.txn.CreateBucketIfNotExists(name)
	if err != nil {
		return nil, xerrors.Errorf("failed to create bucket: %v", err)
	}

	return boltBucket{bucket: bucket}, nil
}

// boltBucket is the adapter of a bbolt bucket to the kv.Bucket interface.
//
// - implements kv.Bucket
type boltBucket struct {
	bucket *bbolt.Bucket
}

// Get implements kv.Bucket. It returns the value associated to the key.
func (b boltBucket) Get(key []byte) ([]byte, error) {
	return b.bucket.Get(key), nil
}

// Set implements kv.Bucket. It sets the provided key to the value.
func (b boltBucket) Set(key, value []byte) error {
	return b.bucket.Put(key, value)
}

// Delete implements kv.Bucket. It deletes the key from the bucket.
func (b boltBucket) Delete(key []byte) error {
	return b.bucket.Delete(key)
}

// ForEach implements kv.Bucket. It iterates over the whole bucket.
func (b boltBucket) ForEach(fn func(k, v []byte) error) error {
	return b.bucket.ForEach(fn)
}

// Scan implements kv.Bucket. It iterates over the keys matching the prefix.
func (b boltBucket) Scan(prefix []byte, fn func(k, v []byte) error) error {
	cursor := b.bucket.Cursor()

	for k, v := cursor.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = cursor.Next() {
		err := fn(k, v)
		if err != nil {
			return xerrors.Errorf("callback failed: %v", err)
		}
	}

	return nil
}
