package store

import (
	datamarket "github.com/openpool/datamarket"
)

// Move references for all storage types into this package for shorter names
// everywhere.

type ReadOnlyKVStore = datamarket.ReadOnlyKVStore
type KVStore = datamarket.KVStore
type SetDeleter = datamarket.SetDeleter
type Batch = datamarket.Batch
type Iterator = datamarket.Iterator
type CacheableKVStore = datamarket.CacheableKVStore
type KVCacheWrap = datamarket.KVCacheWrap

// Model groups a key-value pair.
type Model struct {
	Key   []byte
	Value []byte
}
