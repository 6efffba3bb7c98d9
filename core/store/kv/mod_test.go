package kv

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"
)

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	db, err := Open(Bolt, filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	require.IsType(t, boltDB{}, db)
	require.NoError(t, db.Close())

	db, err = Open(Badger, filepath.Join(dir, "badger"))
	require.NoError(t, err)
	require.IsType(t, badgerDB{}, db)
	require.NoError(t, db.Close())

	_, err = Open("leveldb", dir)
	require.EqualError(t, err, "unknown engine 'leveldb'")

	_, err = NewBolt("")
	require.Error(t, err)
}

func TestDB_UpdateAndView(t *testing.T) {
	for name, db := range makeDBs(t) {
		t.Run(name, func(t *testing.T) {
			err := db.Update(func(tx WritableTx) error {
				bucket, err := tx.GetBucketOrCreate([]byte("bucket"))
				require.NoError(t, err)

				return bucket.Set([]byte("ping"), []byte("pong"))
			})
			require.NoError(t, err)

			err = db.View(func(tx ReadableTx) error {
				require.Nil(t, tx.GetBucket([]byte("unknown")))

				value, err := tx.GetBucket([]byte("bucket")).Get([]byte("ping"))
				require.NoError(t, err)
				require.Equal(t, []byte("pong"), value)

				return nil
			})
			require.NoError(t, err)

			err = db.Update(func(tx WritableTx) error {
				_, err := tx.GetBucketOrCreate(nil)
				return err
			})
			require.EqualError(t, err, "failed to create bucket: bucket name required")
		})
	}
}

func TestDB_UpdateRollback(t *testing.T) {
	for name, db := range makeDBs(t) {
		t.Run(name, func(t *testing.T) {
			err := db.Update(func(tx WritableTx) error {
				bucket, err := tx.GetBucketOrCreate([]byte("bucket"))
				require.NoError(t, err)

				require.NoError(t, bucket.Set([]byte("ping"), []byte("pong")))

				return xerrors.New("oops")
			})
			require.EqualError(t, err, "oops")

			err = db.View(func(tx ReadableTx) error {
				require.Nil(t, tx.GetBucket([]byte("bucket")))
				return nil
			})
			require.NoError(t, err)
		})
	}
}

func TestBucket_Get_Set_Delete(t *testing.T) {
	for name, db := range makeDBs(t) {
		t.Run(name, func(t *testing.T) {
			err := db.Update(func(tx WritableTx) error {
				b, err := tx.GetBucketOrCreate([]byte("bucket"))
				require.NoError(t, err)

				require.NoError(t, b.Set([]byte("ping"), []byte("pong")))

				value, err := b.Get([]byte("ping"))
				require.NoError(t, err)
				require.Equal(t, []byte("pong"), value)

				value, err = b.Get([]byte("pong"))
				require.NoError(t, err)
				require.Nil(t, value)

				require.NoError(t, b.Delete([]byte("ping")))

				value, err = b.Get([]byte("ping"))
				require.NoError(t, err)
				require.Nil(t, value)

				return nil
			})
			require.NoError(t, err)
		})
	}
}

func TestBucket_ForEach(t *testing.T) {
	for name, db := range makeDBs(t) {
		t.Run(name, func(t *testing.T) {
			err := db.Update(func(tx WritableTx) error {
				b, err := tx.GetBucketOrCreate([]byte("bucket"))
				require.NoError(t, err)

				other, err := tx.GetBucketOrCreate([]byte("other"))
				require.NoError(t, err)
				require.NoError(t, other.Set([]byte{9}, []byte{9}))

				require.NoError(t, b.Set([]byte{2}, []byte{2}))
				require.NoError(t, b.Set([]byte{1}, []byte{1}))
				require.NoError(t, b.Set([]byte{0}, []byte{0}))

				var i byte = 0
				err = b.ForEach(func(k, v []byte) error {
					require.Equal(t, []byte{i}, k)
					require.Equal(t, []byte{i}, v)
					i++
					return nil
				})
				require.Equal(t, byte(3), i)

				return err
			})
			require.NoError(t, err)
		})
	}
}

func TestBucket_Scan(t *testing.T) {
	for name, db := range makeDBs(t) {
		t.Run(name, func(t *testing.T) {
			err := db.Update(func(tx WritableTx) error {
				b, err := tx.GetBucketOrCreate([]byte("bucket"))
				require.NoError(t, err)

				require.NoError(t, b.Set([]byte{7}, []byte{7}))
				require.NoError(t, b.Set([]byte{0}, []byte{0}))

				var i byte = 0
				err = b.Scan(nil, func(k, v []byte) error {
					require.Equal(t, []byte{i}, k)
					require.Equal(t, []byte{i}, v)
					i += 7
					return nil
				})
				require.NoError(t, err)
				require.Equal(t, byte(14), i)

				err = b.Scan([]byte{1}, func(k, v []byte) error {
					return xerrors.New("oops")
				})
				require.NoError(t, err)

				err = b.Scan([]byte{}, func(k, v []byte) error {
					return xerrors.New("oops")
				})
				require.EqualError(t, err, "callback failed: oops")

				return nil
			})
			require.NoError(t, err)
		})
	}
}

// -----------------------------------------------------------------------------
// Utility functions

func makeDBs(t *testing.T) map[string]DB {
	dir := t.TempDir()

	bolt, err := NewBolt(filepath.Join(dir, "test.db"))
	require.NoError(t, err)

	badger, err := NewBadger("")
	require.NoError(t, err)

	t.Cleanup(func() {
		bolt.Close()
		badger.Close()
	})

	return map[string]DB{"bolt": bolt, "badger": badger}
}
