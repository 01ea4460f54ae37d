package orm

import (
	"bytes"

	"github.com/gogo/protobuf/proto"
	"github.com/openpool/datamarket/errors"
)

// MultiRef is a list of references to other entities, stored as the value of
// a secondary index key. References are kept sorted so that serialization is
// deterministic.
type MultiRef struct {
	Refs [][]byte `protobuf:"bytes,1,rep,name=refs,proto3" json:"refs,omitempty"`
}

func (m *MultiRef) Reset()         { *m = MultiRef{} }
func (m *MultiRef) String() string { return proto.CompactTextString(m) }
func (*MultiRef) ProtoMessage()    {}

// Marshal serializes the set as repeated length-delimited field 1 of the
// protobuf wire format.
func (m *MultiRef) Marshal() ([]byte, error) {
	var buf []byte
	for _, ref := range m.Refs {
		buf = appendBytesField(buf, 1, ref)
	}
	return buf, nil
}

func (m *MultiRef) Unmarshal(raw []byte) error {
	*m = MultiRef{}
	var err error
	for len(raw) > 0 {
		var key uint64
		if key, raw, err = splitVarint(raw); err != nil {
			return err
		}
		switch key >> 3 {
		case 1:
			var ref []byte
			if ref, raw, err = splitBytes(raw); err != nil {
				return err
			}
			m.Refs = append(m.Refs, ref)
		default:
			if raw, err = skipFieldValue(raw, key&0x7); err != nil {
				return err
			}
		}
	}
	return nil
}

// Validate returns an error if the set is empty. An empty set is never
// written, the index key is removed instead.
func (m *MultiRef) Validate() error {
	if len(m.Refs) == 0 {
		return errors.Wrap(errors.ErrEmpty, "no references")
	}
	return nil
}

// Add inserts the reference into the set, keeping sort order. It returns an
// error if the reference is already present.
func (m *MultiRef) Add(ref []byte) error {
	i, found := m.findRef(ref)
	if found {
		return errors.Wrap(errors.ErrDuplicate, "ref already in set")
	}
	if i == len(m.Refs) {
		m.Refs = append(m.Refs, ref)
		return nil
	}
	m.Refs = append(m.Refs, nil)
	copy(m.Refs[i+1:], m.Refs[i:])
	m.Refs[i] = ref
	return nil
}

// Remove removes the reference from the set. It returns an error if the
// reference is not present.
func (m *MultiRef) Remove(ref []byte) error {
	i, found := m.findRef(ref)
	if !found {
		return errors.Wrap(errors.ErrNotFound, "ref not in set")
	}
	m.Refs = append(m.Refs[:i], m.Refs[i+1:]...)
	return nil
}

// findRef returns (index, found). If not found, index is the insertion
// position that keeps the set sorted.
func (m *MultiRef) findRef(ref []byte) (int, bool) {
	for i, r := range m.Refs {
		switch bytes.Compare(ref, r) {
		case -1:
			return i, false
		case 0:
			return i, true
		}
	}
	return len(m.Refs), false
}
