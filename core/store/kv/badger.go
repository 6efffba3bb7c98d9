package kv

import (
	"github.com/dgraph-io/badger/v2"
	"golang.org/x/xerrors"
)

// Badger has no buckets: the keys of a bucket are prefixed by the length and
// the name of the bucket, and the bucket exists when its marker key does.
const bucketMarker = 0x00

// badgerDB is an adapter of the KV store using badger.
//
// - implements kv.DB
type badgerDB struct {
	badger *badger.DB
}

// NewBadger opens the database directory at the path. An empty path opens an
// in-memory database.
func NewBadger(path string) (DB, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, xerrors.Errorf("failed to open db: %v", err)
	}

	return badgerDB{badger: db}, nil
}

// View implements kv.DB.
func (db badgerDB) View(fn func(ReadableTx) error) error {
	return db.badger.View(func(txn *badger.Txn) error {
		return fn(badgerTx{txn: txn})
	})
}

// Update implements kv.DB.
func (db badgerDB) Update(fn func(WritableTx) error) error {
	return db.badger.Update(func(txn *badger.Txn) error {
		return fn(badgerTx{txn: txn})
	})
}

// Close implements kv.DB.
func (db badgerDB) Close() error {
	return db.badger.Close()
}

// badgerTx is the adapter of a badger transaction.
//
// - implements kv.WritableTx
type badgerTx struct {
	txn *badger.Txn
}

// GetBucket implements kv.ReadableTx.
func (tx badgerTx) GetBucket(name []byte) Bucket {
	if len(name) == 0 || len(name) > 255 {
		return nil
	}

	bucket := newBadgerBucket(tx.txn, name)

	_, err := tx.txn.Get(bucket.marker())
	if err != nil {
		return nil
	}

	return bucket
}

// GetBucketOrCreate implements kv.WritableTx.
func (tx badgerTx) GetBucketOrCreate(name []byte) (Bucket, error) {
	if len(name) == 0 {
		return nil, xerrors.New("failed to create bucket: bucket name required")
	}

	if len(name) > 255 {
		return nil, xerrors.Errorf("failed to create bucket: name is %d bytes long", len(name))
	}

	bucket := newBadgerBucket(tx.txn, name)

	err := tx.txn.Set(bucket.marker(), []byte{})
	if err != nil {
		return nil, xerrors.Errorf("failed to create bucket: %v", err)
	}

	return bucket, nil
}

// badgerBucket is the view of the keys of a bucket.
//
// - implements kv.Bucket
type badgerBucket struct {
	txn    *badger.Txn
	prefix []byte
}

func newBadgerBucket(txn *badger.Txn, name []byte) badgerBucket {
	prefix := make([]byte, 0, len(name)+2)
	prefix = append(prefix, byte(len(name)))
	prefix = append(prefix, name...)

	return badgerBucket{txn: txn, prefix: prefix}
}

func (b badgerBucket) marker() []byte {
	return append(append([]byte{}, b.prefix...), bucketMarker)
}

func (b badgerBucket) key(k []byte) []byte {
	full := make([]byte, 0, len(b.prefix)+1+len(k))
	full = append(full, b.prefix...)
	full = append(full, bucketMarker+1)

	return append(full, k...)
}

// Get implements kv.Bucket.
func (b badgerBucket) Get(key []byte) ([]byte, error) {
	item, err := b.txn.Get(b.key(key))
	if xerrors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, xerrors.Errorf("failed to read: %v", err)
	}

	return item.ValueCopy(nil)
}

// Set implements kv.Bucket.
func (b badgerBucket) Set(key, value []byte) error {
	return b.txn.Set(b.key(key), value)
}

// Delete implements kv.Bucket.
func (b badgerBucket) Delete(key []byte) error {
	return b.txn.Delete(b.key(key))
}

// ForEach implements kv.Bucket.
func (b badgerBucket) ForEach(fn func(k, v []byte) error) error {
	return b.iterate(nil, fn)
}

// Scan implements kv.Bucket.
func (b badgerBucket) Scan(prefix []byte, fn func(k, v []byte) error) error {
	err := b.iterate(prefix, fn)
	if err != nil {
		return xerrors.Errorf("callback failed: %v", err)
	}

	return nil
}

func (b badgerBucket) iterate(prefix []byte, fn func(k, v []byte) error) error {
	full := b.key(prefix)
	start := len(b.key(nil))

	it := b.txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()

	for it.Seek(full); it.ValidForPrefix(full); it.Next() {
		item := it.Item()

		v, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}

		err = fn(item.KeyCopy(nil)[start:], v)
		if err != nil {
			return err
		}
	}

	return nil
}
