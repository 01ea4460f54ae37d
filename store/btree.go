package store

import (
	"bytes"

	"github.com/google/btree"
	"github.com/openpool/datamarket/errors"
)

const (
	// DefaultFreeListSize is the size we hold for free nodes in btree.
	DefaultFreeListSize = btree.DefaultFreeListSize
)

// BTreeCacheable adds a simple btree-based CacheWrap strategy to a KVStore.
type BTreeCacheable struct {
	KVStore
}

var _ CacheableKVStore = BTreeCacheable{}

// CacheWrap returns a BTreeCacheWrap that can be later written to this
// store, or rolled back.
func (b BTreeCacheable) CacheWrap() KVCacheWrap {
	return NewBTreeCacheWrap(b.KVStore, b.NewBatch(), nil)
}

// MemStore returns a simple implementation useful for tests. There is no
// persistence here.
func MemStore() CacheableKVStore {
	e := EmptyKVStore{}
	return NewBTreeCacheWrap(e, e.NewBatch(), nil)
}

///////////////////////////////////////////////
// Actual CacheWrap implementation

// BTreeCacheWrap places a btree cache over a KVStore.
type BTreeCacheWrap struct {
	bt    *btree.BTree
	free  *btree.FreeList
	back  ReadOnlyKVStore
	batch Batch
}

var _ KVCacheWrap = BTreeCacheWrap{}

// NewBTreeCacheWrap initializes a BTree to cache around this kv store. Use
// ReadOnlyKVStore to emphasize that all writes must go through the Batch.
//
// free may be nil, but set to an existing list to reuse it for memory
// savings.
func NewBTreeCacheWrap(kv ReadOnlyKVStore, batch Batch, free *btree.FreeList) BTreeCacheWrap {
	if free == nil {
		free = btree.NewFreeList(DefaultFreeListSize)
	}
	return BTreeCacheWrap{
		bt:    btree.NewWithFreeList(2, free),
		free:  free,
		back:  kv,
		batch: batch,
	}
}

// CacheWrap layers another BTree on top of this one. Don't change horses in
// mid-stream.
//
// Uses NonAtomicBatch as it is only backed by another in-memory batch.
func (b BTreeCacheWrap) CacheWrap() KVCacheWrap {
	return NewBTreeCacheWrap(b, b.NewBatch(), b.free)
}

// NewBatch returns a non-atomic batch that eventually may write to our
// cachewrap.
func (b BTreeCacheWrap) NewBatch() Batch {
	return NewNonAtomicBatch(b)
}

// Write syncs with the underlying store. And then cleans up.
func (b BTreeCacheWrap) Write() error {
	err := b.batch.Write()
	b.Discard()
	return err
}

// Discard invalidates this CacheWrap and releases all data.
func (b BTreeCacheWrap) Discard() {
	// clean up the btree -> freelist
	for stop := false; !stop; {
		rem := b.bt.DeleteMin()
		stop = (rem == nil)
	}
}

// Set writes to the BTree and to the batch.
func (b BTreeCacheWrap) Set(key, value []byte) error {
	b.bt.ReplaceOrInsert(newSetItem(key, value))
	return b.batch.Set(key, value)
}

// Delete deletes from the BTree and to the batch.
func (b BTreeCacheWrap) Delete(key []byte) error {
	b.bt.ReplaceOrInsert(newDeletedItem(key))
	return b.batch.Delete(key)
}

// Get reads from btree if there, else backing store.
func (b BTreeCacheWrap) Get(key []byte) ([]byte, error) {
	res := b.bt.Get(bkey{key})
	if res != nil {
		switch t := res.(type) {
		case setItem:
			return t.value, nil
		case deletedItem:
			return nil, nil
		default:
			return nil, errors.Wrapf(errors.ErrDatabase, "unknown item in btree: %#v", res)
		}
	}
	return b.back.Get(key)
}

// Has reads from btree if there, else backing store.
func (b BTreeCacheWrap) Has(key []byte) (bool, error) {
	res := b.bt.Get(bkey{key})
	if res != nil {
		switch res.(type) {
		case setItem:
			return true, nil
		case deletedItem:
			return false, nil
		default:
			return false, errors.Wrapf(errors.ErrDatabase, "unknown item in btree: %#v", res)
		}
	}
	return b.back.Has(key)
}

// Iterator over a domain of keys in ascending order. Combines results from
// btree and backing store.
func (b BTreeCacheWrap) Iterator(start, end []byte) (Iterator, error) {
	parentIter, err := b.back.Iterator(start, end)
	if err != nil {
		return nil, err
	}
	return newMergeIterator(b.rangedCacheEntries(start, end, false), parentIter, false), nil
}

// ReverseIterator over a domain of keys in descending order. Combines
// results from btree and backing store.
func (b BTreeCacheWrap) ReverseIterator(start, end []byte) (Iterator, error) {
	parentIter, err := b.back.ReverseIterator(start, end)
	if err != nil {
		return nil, err
	}
	return newMergeIterator(b.rangedCacheEntries(start, end, true), parentIter, true), nil
}

// rangedCacheEntries materializes all cached operations within [start, end)
// range, ordered by iteration direction. Both range boundaries may be nil
// to mean an open range.
func (b BTreeCacheWrap) rangedCacheEntries(start, end []byte, reverse bool) []cacheEntry {
	var entries []cacheEntry
	collect := func(item btree.Item) bool {
		switch t := item.(type) {
		case setItem:
			entries = append(entries, cacheEntry{key: t.key, value: t.value})
		case deletedItem:
			entries = append(entries, cacheEntry{key: t.key, deleted: true})
		}
		return true
	}

	switch {
	case start == nil && end == nil:
		b.bt.Ascend(collect)
	case start == nil:
		b.bt.AscendLessThan(bkey{end}, collect)
	case end == nil:
		b.bt.AscendGreaterOrEqual(bkey{start}, collect)
	default:
		b.bt.AscendRange(bkey{start}, bkey{end}, collect)
	}

	if reverse {
		for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
			entries[i], entries[j] = entries[j], entries[i]
		}
	}
	return entries
}

/////////////////////////////////////////////////////////
// Merge iterator

type cacheEntry struct {
	key     []byte
	value   []byte
	deleted bool
}

// mergeIterator walks the cached entries together with the parent iterator
// keeping the combined order. Cached operations shadow the parent state:
// a cached write wins over the backing value and a cached delete hides it.
type mergeIterator struct {
	cache      []cacheEntry
	parent     Iterator
	reverse    bool
	parentKey  []byte
	parentVal  []byte
	parentDone bool
	primed     bool
}

var _ Iterator = (*mergeIterator)(nil)

func newMergeIterator(cache []cacheEntry, parent Iterator, reverse bool) *mergeIterator {
	return &mergeIterator{
		cache:   cache,
		parent:  parent,
		reverse: reverse,
	}
}

func (m *mergeIterator) Next() ([]byte, []byte, error) {
	if !m.primed {
		if err := m.advanceParent(); err != nil {
			return nil, nil, err
		}
		m.primed = true
	}

	for {
		if len(m.cache) == 0 && m.parentDone {
			return nil, nil, errors.ErrIteratorDone
		}

		if len(m.cache) == 0 {
			return m.takeParent()
		}

		entry := m.cache[0]

		if m.parentDone {
			m.cache = m.cache[1:]
			if entry.deleted {
				continue
			}
			return entry.key, entry.value, nil
		}

		switch cmp := m.compare(entry.key, m.parentKey); {
		case cmp < 0:
			// Cache entry comes first.
			m.cache = m.cache[1:]
			if entry.deleted {
				continue
			}
			return entry.key, entry.value, nil
		case cmp == 0:
			// Cache shadows the backing store.
			m.cache = m.cache[1:]
			if err := m.advanceParent(); err != nil {
				return nil, nil, err
			}
			if entry.deleted {
				continue
			}
			return entry.key, entry.value, nil
		default:
			return m.takeParent()
		}
	}
}

func (m *mergeIterator) Release() {
	m.cache = nil
	m.parentDone = true
	m.parent.Release()
}

// compare orders two keys according to the iteration direction.
func (m *mergeIterator) compare(a, b []byte) int {
	cmp := bytes.Compare(a, b)
	if m.reverse {
		return -cmp
	}
	return cmp
}

func (m *mergeIterator) takeParent() ([]byte, []byte, error) {
	key, value := m.parentKey, m.parentVal
	if err := m.advanceParent(); err != nil {
		return nil, nil, err
	}
	return key, value, nil
}

func (m *mergeIterator) advanceParent() error {
	if m.parentDone {
		return nil
	}
	key, value, err := m.parent.Next()
	switch {
	case err == nil:
		m.parentKey, m.parentVal = key, value
		return nil
	case errors.ErrIteratorDone.Is(err):
		m.parentDone = true
		m.parentKey, m.parentVal = nil, nil
		return nil
	default:
		return err
	}
}

/////////////////////////////////////////////////////////
// Items to write to btree

// we enforce all data in our btree implements keyer so we can compare
// nicely
type keyer interface {
	Key() []byte
}

// bkey implements keyer and btree.Item and may be used for queries or
// embedded in data to store.
type bkey struct {
	key []byte
}

var _ keyer = bkey{}
var _ btree.Item = bkey{}

func (k bkey) Key() []byte {
	return k.key
}

// Less returns true iff second argument is greater than first.
//
// panics if the item to compare doesn't implement keyer.
func (k bkey) Less(item btree.Item) bool {
	cmp := item.(keyer).Key()
	return bytes.Compare(k.key, cmp) < 0
}

type deletedItem struct {
	bkey
}

func newDeletedItem(key []byte) deletedItem {
	return deletedItem{bkey{key}}
}

type setItem struct {
	bkey
	value []byte
}

func newSetItem(key, value []byte) setItem {
	return setItem{bkey{key}, value}
}
