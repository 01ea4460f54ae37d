package orm

import (
	"bytes"
	"reflect"
	"regexp"

	datamarket "github.com/openpool/datamarket"
	"github.com/openpool/datamarket/errors"
)

// Model is implemented by any entity that can be stored using a ModelBucket.
type Model interface {
	datamarket.Persistent
	Validate() error
}

// ModelSlicePtr represents a pointer to a slice of models, for example
// *[]*Pool. This must be a pointer so that the slice can be grown in place.
type ModelSlicePtr interface{}

// ModelBucket is a storage engine for a single entity type. All instances
// live under a common key prefix and can be found by the primary key or by
// any of the registered secondary indexes.
type ModelBucket interface {
	// One queries the database for a single model instance. Lookup is done
	// by the primary key. The result is loaded into the given destination
	// model.
	// This method returns ErrNotFound if the entity does not exist in the
	// database.
	One(db datamarket.ReadOnlyKVStore, key []byte, dest Model) error

	// ByIndex returns all objects that secondary index with given name and
	// given key points to. A single index key can point to any number of
	// entities.
	// The results are loaded into the given destination, which must be a
	// pointer to a slice of models. Primary keys of the matched entities
	// are returned in the same order.
	ByIndex(db datamarket.ReadOnlyKVStore, indexName string, indexKey []byte, destination ModelSlicePtr) ([][]byte, error)

	// Put saves given model in the database. A nil key means the id
	// sequence assigns the next value. The key used is returned.
	Put(db datamarket.KVStore, key []byte, m Model) ([]byte, error)

	// Delete removes an entity with given primary key from the database.
	// It returns ErrNotFound if an entity with given key does not exist.
	Delete(db datamarket.KVStore, key []byte) error

	// Has returns nil if an entity with given primary key exists, and
	// ErrNotFound otherwise.
	Has(db datamarket.ReadOnlyKVStore, key []byte) error
}

// validBucketName is stricter than it needs to be, to keep key layouts short
// and predictable.
var validBucketName = regexp.MustCompile(`^[a-z_]{3,10}$`)

// Indexer produces the secondary index key for the given model instance. A
// nil key with no error means the instance is not indexed.
type Indexer func(Model) ([]byte, error)

// ModelBucketOption configures a ModelBucket during creation.
type ModelBucketOption func(mb *modelBucket)

// WithIDSequence configures the bucket to use given sequence to generate
// primary keys when Put is called with a nil key.
func WithIDSequence(s Sequence) ModelBucketOption {
	return func(mb *modelBucket) {
		mb.idSeq = &s
	}
}

// WithIndex registers a secondary index on the bucket. A unique index allows
// at most one entity per index key.
func WithIndex(name string, indexer Indexer, unique bool) ModelBucketOption {
	return func(mb *modelBucket) {
		mb.indexes = append(mb.indexes, bucketIndex{
			name:    name,
			indexer: indexer,
			unique:  unique,
			prefix:  []byte("_i." + mb.name + "_" + name + ":"),
		})
	}
}

// NewModelBucket returns a ModelBucket instance operating directly on the
// key-value store. The model is used as a prototype: only entities of this
// exact type can be stored and loaded.
//
// The bucket name must match [a-z_]{3,10} or this function panics. A short
// name keeps every stored key small.
func NewModelBucket(name string, m Model, opts ...ModelBucketOption) ModelBucket {
	if !validBucketName.MatchString(name) {
		panic("invalid bucket name: " + name)
	}

	tp := reflect.TypeOf(m)
	if tp.Kind() == reflect.Ptr {
		tp = tp.Elem()
	}

	b := &modelBucket{
		name:   name,
		prefix: []byte(name + ":"),
		model:  tp,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

type modelBucket struct {
	name    string
	prefix  []byte
	model   reflect.Type
	idSeq   *Sequence
	indexes []bucketIndex
}

var _ ModelBucket = (*modelBucket)(nil)

func (b *modelBucket) dbKey(key []byte) []byte {
	return append(append([]byte(nil), b.prefix...), key...)
}

func (b *modelBucket) One(db datamarket.ReadOnlyKVStore, key []byte, dest Model) error {
	raw, err := db.Get(b.dbKey(key))
	if err != nil {
		return err
	}
	if raw == nil {
		return errors.Wrapf(errors.ErrNotFound, "%q not in %q bucket", key, b.name)
	}
	if tp := reflect.TypeOf(dest); tp.Kind() != reflect.Ptr || tp.Elem() != b.model {
		return errors.Wrapf(errors.ErrType, "%T cannot hold %s entity", dest, b.model.Name())
	}
	if err := dest.Unmarshal(raw); err != nil {
		return errors.Wrapf(err, "cannot unmarshal %q entity", key)
	}
	return nil
}

func (b *modelBucket) ByIndex(db datamarket.ReadOnlyKVStore, indexName string, indexKey []byte, destination ModelSlicePtr) ([][]byte, error) {
	idx, err := b.index(indexName)
	if err != nil {
		return nil, err
	}
	refs, err := idx.refs(db, indexKey)
	if err != nil {
		return nil, err
	}
	if len(refs) == 0 {
		return nil, nil
	}

	dest := reflect.ValueOf(destination)
	if dest.Kind() != reflect.Ptr {
		return nil, errors.Wrap(errors.ErrType, "destination must be a pointer to a slice")
	}
	dest = dest.Elem()
	if dest.Kind() != reflect.Slice {
		return nil, errors.Wrap(errors.ErrType, "destination must be a pointer to a slice")
	}
	// Support both []Model and []*Model element layouts.
	sliceOfPointers := dest.Type().Elem().Kind() == reflect.Ptr

	keys := make([][]byte, 0, len(refs))
	for _, ref := range refs {
		raw, err := db.Get(b.dbKey(ref))
		if err != nil {
			return nil, err
		}
		if raw == nil {
			return nil, errors.Wrapf(errors.ErrState, "index %q points to missing entity %q", indexName, ref)
		}
		item := reflect.New(b.model)
		if err := item.Interface().(Model).Unmarshal(raw); err != nil {
			return nil, errors.Wrapf(err, "cannot unmarshal %q entity", ref)
		}
		if !sliceOfPointers {
			item = item.Elem()
		}
		dest.Set(reflect.Append(dest, item))
		keys = append(keys, ref)
	}
	return keys, nil
}

func (b *modelBucket) Put(db datamarket.KVStore, key []byte, m Model) ([]byte, error) {
	mTp := reflect.TypeOf(m)
	if mTp.Kind() != reflect.Ptr || mTp.Elem() != b.model {
		return nil, errors.Wrapf(errors.ErrType, "%q bucket holds %s entities", b.name, b.model.Name())
	}
	if err := m.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid model")
	}

	if len(key) == 0 {
		if b.idSeq == nil {
			return nil, errors.Wrap(errors.ErrInput, "bucket does not generate keys")
		}
		var err error
		key, err = b.idSeq.NextVal(db)
		if err != nil {
			return nil, errors.Wrap(err, "id sequence")
		}
	}

	// The previous state is needed to keep secondary indexes in sync.
	var old Model
	if len(b.indexes) > 0 {
		raw, err := db.Get(b.dbKey(key))
		if err != nil {
			return nil, err
		}
		if raw != nil {
			item := reflect.New(b.model)
			if err := item.Interface().(Model).Unmarshal(raw); err != nil {
				return nil, errors.Wrapf(err, "cannot unmarshal %q entity", key)
			}
			old = item.Interface().(Model)
		}
	}

	raw, err := m.Marshal()
	if err != nil {
		return nil, errors.Wrap(err, "cannot marshal model")
	}
	if err := db.Set(b.dbKey(key), raw); err != nil {
		return nil, err
	}

	for i := range b.indexes {
		if err := b.indexes[i].update(db, old, m, key); err != nil {
			return nil, errors.Wrapf(err, "index %q", b.indexes[i].name)
		}
	}
	return key, nil
}

func (b *modelBucket) Delete(db datamarket.KVStore, key []byte) error {
	raw, err := db.Get(b.dbKey(key))
	if err != nil {
		return err
	}
	if raw == nil {
		return errors.Wrapf(errors.ErrNotFound, "%q not in %q bucket", key, b.name)
	}

	if len(b.indexes) > 0 {
		item := reflect.New(b.model)
		if err := item.Interface().(Model).Unmarshal(raw); err != nil {
			return errors.Wrapf(err, "cannot unmarshal %q entity", key)
		}
		old := item.Interface().(Model)
		for i := range b.indexes {
			if err := b.indexes[i].update(db, old, nil, key); err != nil {
				return errors.Wrapf(err, "index %q", b.indexes[i].name)
			}
		}
	}
	return db.Delete(b.dbKey(key))
}

func (b *modelBucket) Has(db datamarket.ReadOnlyKVStore, key []byte) error {
	ok, err := db.Has(b.dbKey(key))
	if err != nil {
		return err
	}
	if !ok {
		return errors.Wrapf(errors.ErrNotFound, "%q not in %q bucket", key, b.name)
	}
	return nil
}

func (b *modelBucket) index(name string) (*bucketIndex, error) {
	for i := range b.indexes {
		if b.indexes[i].name == name {
			return &b.indexes[i], nil
		}
	}
	return nil, errors.Wrapf(errors.ErrInput, "no %q index", name)
}

type bucketIndex struct {
	name    string
	indexer Indexer
	unique  bool
	prefix  []byte
}

func (ix *bucketIndex) dbKey(indexKey []byte) []byte {
	return append(append([]byte(nil), ix.prefix...), indexKey...)
}

// refs returns the primary keys the given index key points to.
func (ix *bucketIndex) refs(db datamarket.ReadOnlyKVStore, indexKey []byte) ([][]byte, error) {
	raw, err := db.Get(ix.dbKey(indexKey))
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}
	if ix.unique {
		return [][]byte{raw}, nil
	}
	var refs MultiRef
	if err := refs.Unmarshal(raw); err != nil {
		return nil, errors.Wrap(err, "cannot unmarshal index value")
	}
	return refs.Refs, nil
}

// update moves the primary key reference from the index value of the old
// model state to the index value of the new one. Either state can be nil,
// meaning the entity is being created or deleted.
func (ix *bucketIndex) update(db datamarket.KVStore, old, new Model, primary []byte) error {
	var oldKey, newKey []byte
	var err error
	if old != nil {
		if oldKey, err = ix.indexer(old); err != nil {
			return err
		}
	}
	if new != nil {
		if newKey, err = ix.indexer(new); err != nil {
			return err
		}
	}
	if old != nil && new != nil && bytes.Equal(oldKey, newKey) {
		return nil
	}
	if oldKey != nil {
		if err := ix.remove(db, oldKey, primary); err != nil {
			return err
		}
	}
	if newKey != nil {
		if err := ix.insert(db, newKey, primary); err != nil {
			return err
		}
	}
	return nil
}

func (ix *bucketIndex) insert(db datamarket.KVStore, indexKey, primary []byte) error {
	if ix.unique {
		ok, err := db.Has(ix.dbKey(indexKey))
		if err != nil {
			return err
		}
		if ok {
			return errors.Wrapf(errors.ErrDuplicate, "unique index value %q taken", indexKey)
		}
		return db.Set(ix.dbKey(indexKey), primary)
	}

	var refs MultiRef
	raw, err := db.Get(ix.dbKey(indexKey))
	if err != nil {
		return err
	}
	if raw != nil {
		if err := refs.Unmarshal(raw); err != nil {
			return errors.Wrap(err, "cannot unmarshal index value")
		}
	}
	if err := refs.Add(primary); err != nil {
		return err
	}
	raw, err = refs.Marshal()
	if err != nil {
		return err
	}
	return db.Set(ix.dbKey(indexKey), raw)
}

func (ix *bucketIndex) remove(db datamarket.KVStore, indexKey, primary []byte) error {
	if ix.unique {
		return db.Delete(ix.dbKey(indexKey))
	}

	raw, err := db.Get(ix.dbKey(indexKey))
	if err != nil {
		return err
	}
	if raw == nil {
		return errors.Wrapf(errors.ErrState, "index value %q missing", indexKey)
	}
	var refs MultiRef
	if err := refs.Unmarshal(raw); err != nil {
		return errors.Wrap(err, "cannot unmarshal index value")
	}
	if err := refs.Remove(primary); err != nil {
		return err
	}
	if len(refs.Refs) == 0 {
		return db.Delete(ix.dbKey(indexKey))
	}
	raw, err = refs.Marshal()
	if err != nil {
		return err
	}
	return db.Set(ix.dbKey(indexKey), raw)
}
