package store

import (
	"bytes"
	"testing"

	"github.com/openpool/datamarket/errors"
)

func TestBTreeCacheGetSetDelete(t *testing.T) {
	base := MemStore()
	if err := base.Set([]byte("a"), []byte("1")); err != nil {
		t.Fatalf("cannot set: %s", err)
	}

	cache := base.CacheWrap()

	// Cache sees the backing data.
	v, err := cache.Get([]byte("a"))
	if err != nil {
		t.Fatalf("cannot get: %s", err)
	}
	if !bytes.Equal(v, []byte("1")) {
		t.Fatalf("unexpected value: %q", v)
	}

	// Writes are visible in the cache but not in the base.
	if err := cache.Set([]byte("b"), []byte("2")); err != nil {
		t.Fatalf("cannot set: %s", err)
	}
	if has, _ := cache.Has([]byte("b")); !has {
		t.Fatal("cache must contain b")
	}
	if has, _ := base.Has([]byte("b")); has {
		t.Fatal("base must not contain b before write")
	}

	// Cached deletes shadow the backing store.
	if err := cache.Delete([]byte("a")); err != nil {
		t.Fatalf("cannot delete: %s", err)
	}
	if has, _ := cache.Has([]byte("a")); has {
		t.Fatal("cache must not contain a")
	}
	if has, _ := base.Has([]byte("a")); !has {
		t.Fatal("base must contain a before write")
	}

	if err := cache.Write(); err != nil {
		t.Fatalf("cannot write: %s", err)
	}
	if has, _ := base.Has([]byte("a")); has {
		t.Fatal("base must not contain a after write")
	}
	if has, _ := base.Has([]byte("b")); !has {
		t.Fatal("base must contain b after write")
	}
}

func TestBTreeCacheDiscard(t *testing.T) {
	base := MemStore()
	if err := base.Set([]byte("a"), []byte("1")); err != nil {
		t.Fatalf("cannot set: %s", err)
	}

	cache := base.CacheWrap()
	if err := cache.Set([]byte("b"), []byte("2")); err != nil {
		t.Fatalf("cannot set: %s", err)
	}
	if err := cache.Delete([]byte("a")); err != nil {
		t.Fatalf("cannot delete: %s", err)
	}
	cache.Discard()

	if has, _ := base.Has([]byte("a")); !has {
		t.Fatal("discard must not affect the base")
	}
	if has, _ := base.Has([]byte("b")); has {
		t.Fatal("discarded write must not reach the base")
	}
}

func TestBTreeCacheIterator(t *testing.T) {
	base := MemStore()
	for _, m := range []Model{
		{Key: []byte("a"), Value: []byte("1")},
		{Key: []byte("c"), Value: []byte("3")},
		{Key: []byte("e"), Value: []byte("5")},
	} {
		if err := base.Set(m.Key, m.Value); err != nil {
			t.Fatalf("cannot set: %s", err)
		}
	}

	cache := base.CacheWrap()
	// Overwrite, delete and insert within the cache.
	if err := cache.Set([]byte("c"), []byte("33")); err != nil {
		t.Fatalf("cannot set: %s", err)
	}
	if err := cache.Delete([]byte("e")); err != nil {
		t.Fatalf("cannot delete: %s", err)
	}
	if err := cache.Set([]byte("b"), []byte("2")); err != nil {
		t.Fatalf("cannot set: %s", err)
	}

	it, err := cache.Iterator(nil, nil)
	if err != nil {
		t.Fatalf("cannot create iterator: %s", err)
	}
	defer it.Release()

	want := []Model{
		{Key: []byte("a"), Value: []byte("1")},
		{Key: []byte("b"), Value: []byte("2")},
		{Key: []byte("c"), Value: []byte("33")},
	}
	assertIteratorItems(t, it, want)
}

func TestBTreeCacheReverseIterator(t *testing.T) {
	base := MemStore()
	for _, m := range []Model{
		{Key: []byte("a"), Value: []byte("1")},
		{Key: []byte("b"), Value: []byte("2")},
	} {
		if err := base.Set(m.Key, m.Value); err != nil {
			t.Fatalf("cannot set: %s", err)
		}
	}

	cache := base.CacheWrap()
	if err := cache.Set([]byte("d"), []byte("4")); err != nil {
		t.Fatalf("cannot set: %s", err)
	}

	it, err := cache.ReverseIterator(nil, nil)
	if err != nil {
		t.Fatalf("cannot create iterator: %s", err)
	}
	defer it.Release()

	want := []Model{
		{Key: []byte("d"), Value: []byte("4")},
		{Key: []byte("b"), Value: []byte("2")},
		{Key: []byte("a"), Value: []byte("1")},
	}
	assertIteratorItems(t, it, want)
}

func TestBTreeCacheIteratorRange(t *testing.T) {
	base := MemStore()
	cache := base.CacheWrap()
	for _, m := range []Model{
		{Key: []byte("aa"), Value: []byte("1")},
		{Key: []byte("ab"), Value: []byte("2")},
		{Key: []byte("b"), Value: []byte("3")},
	} {
		if err := cache.Set(m.Key, m.Value); err != nil {
			t.Fatalf("cannot set: %s", err)
		}
	}

	it, err := cache.Iterator([]byte("aa"), []byte("b"))
	if err != nil {
		t.Fatalf("cannot create iterator: %s", err)
	}
	defer it.Release()

	want := []Model{
		{Key: []byte("aa"), Value: []byte("1")},
		{Key: []byte("ab"), Value: []byte("2")},
	}
	assertIteratorItems(t, it, want)
}

func assertIteratorItems(t *testing.T, it Iterator, want []Model) {
	t.Helper()

	for i, w := range want {
		key, value, err := it.Next()
		if err != nil {
			t.Fatalf("item %d: %s", i, err)
		}
		if !bytes.Equal(key, w.Key) || !bytes.Equal(value, w.Value) {
			t.Fatalf("item %d: want %q=%q, got %q=%q", i, w.Key, w.Value, key, value)
		}
	}
	if _, _, err := it.Next(); !errors.ErrIteratorDone.Is(err) {
		t.Fatalf("want iterator done, got %+v", err)
	}
}
