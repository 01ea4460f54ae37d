/*
Package bolt provides a durable key-value backend for the marketplace
engine, built on top of bbolt.

All state is kept in a single bolt bucket. Batches are applied within one
bolt transaction, so a delivered operation either commits all of its writes
or none of them.
*/
package bolt

import (
	"bytes"
	"os"
	"path/filepath"

	datamarket "github.com/openpool/datamarket"
	"github.com/openpool/datamarket/errors"
	"github.com/openpool/datamarket/store"
	"go.etcd.io/bbolt"
)

var bucketState = []byte("state")

// Store is a durable CacheableKVStore backed by a bbolt database.
type Store struct {
	db *bbolt.DB
}

var _ datamarket.CacheableKVStore = (*Store)(nil)

// Open opens or creates the bolt database at dbPath. The parent directory
// is created if it does not exist.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketState)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the value stored under given key, or nil if missing.
func (s *Store) Get(key []byte) ([]byte, error) {
	var value []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		if raw := tx.Bucket(bucketState).Get(key); raw != nil {
			value = append([]byte(nil), raw...)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return value, nil
}

// Has checks existence of a key.
func (s *Store) Has(key []byte) (bool, error) {
	raw, err := s.Get(key)
	if err != nil {
		return false, err
	}
	return raw != nil, nil
}

// Set writes a single key-value pair in its own transaction.
func (s *Store) Set(key, value []byte) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketState).Put(key, value)
	})
	return errors.Wrap(err, "bolt update")
}

// Delete removes a single key in its own transaction.
func (s *Store) Delete(key []byte) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketState).Delete(key)
	})
	return errors.Wrap(err, "bolt update")
}

// Iterator over a domain of keys in ascending order. The result is a
// snapshot taken when the iterator is created.
func (s *Store) Iterator(start, end []byte) (datamarket.Iterator, error) {
	return s.snapshotRange(start, end, false)
}

// ReverseIterator over a domain of keys in descending order. The result is
// a snapshot taken when the iterator is created.
func (s *Store) ReverseIterator(start, end []byte) (datamarket.Iterator, error) {
	return s.snapshotRange(start, end, true)
}

func (s *Store) snapshotRange(start, end []byte, reverse bool) (datamarket.Iterator, error) {
	var models []store.Model
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketState).Cursor()

		var k, v []byte
		if start == nil {
			k, v = c.First()
		} else {
			k, v = c.Seek(start)
		}
		for ; k != nil; k, v = c.Next() {
			if end != nil && bytes.Compare(k, end) >= 0 {
				break
			}
			models = append(models, store.Model{
				Key:   append([]byte(nil), k...),
				Value: append([]byte(nil), v...),
			})
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	if reverse {
		for i, j := 0, len(models)-1; i < j; i, j = i+1, j-1 {
			models[i], models[j] = models[j], models[i]
		}
	}
	return store.NewSliceIterator(models), nil
}

// NewBatch returns a batch that applies all operations within a single
// bolt transaction when written.
func (s *Store) NewBatch() datamarket.Batch {
	return &batch{db: s.db}
}

// CacheWrap provides a scratch pad over the durable store. Writes apply to
// the database in one transaction when the wrap is written.
func (s *Store) CacheWrap() datamarket.KVCacheWrap {
	return store.NewBTreeCacheWrap(s, s.NewBatch(), nil)
}

type batch struct {
	db  *bbolt.DB
	ops []store.Op
}

var _ datamarket.Batch = (*batch)(nil)

func (b *batch) Set(key, value []byte) error {
	b.ops = append(b.ops, store.SetOp(key, value))
	return nil
}

func (b *batch) Delete(key []byte) error {
	b.ops = append(b.ops, store.DelOp(key))
	return nil
}

// Write applies all batched operations atomically.
func (b *batch) Write() error {
	err := b.db.Update(func(tx *bbolt.Tx) error {
		bkt := tx.Bucket(bucketState)
		for _, op := range b.ops {
			if err := op.Apply(boltSetDeleter{bkt}); err != nil {
				return err
			}
		}
		return nil
	})
	b.ops = nil
	return errors.Wrap(err, "bolt batch")
}

type boltSetDeleter struct {
	bkt *bbolt.Bucket
}

func (b boltSetDeleter) Set(key, value []byte) error {
	return b.bkt.Put(key, value)
}

func (b boltSetDeleter) Delete(key []byte) error {
	return b.bkt.Delete(key)
}
