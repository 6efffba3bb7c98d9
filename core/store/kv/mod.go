// Package kv defines the abstraction for a key/value database.
//
// The package implements it with two engines: bbolt
// (https://github.com/etcd-io/bbolt), the default, and badger
// (https://github.com/dgraph-io/badger).
package kv

// Bucket is a general interface to operate on a database bucket.
type Bucket interface {
	// Get reads the key from the bucket and returns the value, or nil if the
	// key does not exist. The value is only valid during the transaction.
	Get(key []byte) ([]byte, error)

	// Set assigns the value to the provided key.
	Set(key, value []byte) error

	// Delete deletes the key from the bucket.
	Delete(key []byte) error

	// ForEach iterates over all the items in the bucket in the order of the
	// keys. The iteration stops when the callback returns an error.
	ForEach(func(k, v []byte) error) error

	// Scan iterates over every key that matches the prefix in the order of the
	// keys. The iteration stops when the callback returns an error.
	Scan(prefix []byte, fn func(k, v []byte) error) error
}

// ReadableTx allows one to perform read-only atomic operations on the database.
type ReadableTx interface {
	// GetBucket returns the bucket of the given name if it exists, otherwise it
	// returns nil.
	GetBucket(name []byte) Bucket
}

// WritableTx allows one to perform atomic operations on the database.
type WritableTx interface {
	ReadableTx

	// GetBucketOrCreate returns the bucket of the given name if it exists, or
	// it creates it.
	GetBucketOrCreate(name []byte) (Bucket, error)
}

// DB is a general interface to operate over a key/value database.
type DB interface {
	// View executes the provided read-only transaction in the context of the
	// database.
	View(fn func(ReadableTx) error) error

	// Update executes the provided writable transaction in the context of the
	// database. Nothing is written when the function returns an error.
	Update(fn func(WritableTx) error) error

	// Close closes the database and free the resources.
	Close() error
}

// Engine is the name of a database engine.
type Engine string

const (
	// Bolt is the bbolt engine. The path is a file.
	Bolt Engine = "bolt"
	// Badger is the badger engine. The path is a directory.
	Badger Engine = "badger"
)

// Open opens the database of the engine at the path.
func Open(engine Engine, path string) (DB, error) {
	switch engine {
	case Bolt, "":
		return NewBolt(path)
	case Badger:
		return NewBadger(path)
	default:
		return nil, &UnknownEngineError{Engine: engine}
	}
}

// UnknownEngineError is returned when opening a database of an unsupported
// engine.
type UnknownEngineError struct {
	Engine Engine
}

// Error implements error.
func (e *UnknownEngineError) Error() string {
	return "unknown engine '" + string(e.Engine) + "'"
}
