package orm

import (
	datamarket "github.com/openpool/datamarket"
	"github.com/openpool/datamarket/errors"
)

// IterAll returns an iterator through all entities saved in given bucket.
// Iteration order is by primary key. Use the Next method to load entities
// one by one, until ErrIteratorDone is returned.
func IterAll(bucketName string) *ModelIterator {
	return &ModelIterator{
		prefix: []byte(bucketName + ":"),
	}
}

// ModelIterator is a lazy iterator over all models of a single bucket. The
// underlying store iterator is created on the first Next call.
type ModelIterator struct {
	prefix []byte
	iter   datamarket.Iterator
}

// Next loads the next entity into the given destination and returns its
// primary key. ErrIteratorDone is returned when all entities were consumed.
func (it *ModelIterator) Next(db datamarket.ReadOnlyKVStore, dest Model) ([]byte, error) {
	if it.iter == nil {
		iter, err := db.Iterator(it.prefix, prefixRange(it.prefix))
		if err != nil {
			return nil, errors.Wrap(err, "cannot create iterator")
		}
		it.iter = iter
	}
	key, value, err := it.iter.Next()
	if err != nil {
		// ErrIteratorDone is passed through.
		return nil, err
	}
	if err := dest.Unmarshal(value); err != nil {
		return nil, errors.Wrapf(err, "cannot unmarshal %q entity", key)
	}
	return key[len(it.prefix):], nil
}

// Release frees the underlying iterator. It is safe to call it even if no
// iteration happened.
func (it *ModelIterator) Release() {
	if it.iter != nil {
		it.iter.Release()
		it.iter = nil
	}
}

// prefixRange returns the smallest key that is bigger than any key with
// given prefix, terminating an ascending prefix scan. A nil return means an
// open end.
func prefixRange(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}
