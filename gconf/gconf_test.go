package gconf

import (
	"io"
	"testing"

	"github.com/gogo/protobuf/proto"
	datamarket "github.com/openpool/datamarket"
	"github.com/openpool/datamarket/errors"
	"github.com/openpool/datamarket/store"
)

type testConfig struct {
	Owner datamarket.Address `protobuf:"bytes,1,opt,name=owner,proto3,casttype=github.com/openpool/datamarket.Address" json:"owner,omitempty"`
	Name  string             `protobuf:"bytes,2,opt,name=name,proto3" json:"name,omitempty"`
	Limit int64              `protobuf:"varint,3,opt,name=limit,proto3" json:"limit,omitempty"`
}

func (c *testConfig) Reset()         { *c = testConfig{} }
func (c *testConfig) String() string { return proto.CompactTextString(c) }
func (*testConfig) ProtoMessage()    {}

func (c *testConfig) Marshal() ([]byte, error) {
	var buf []byte
	if len(c.Owner) > 0 {
		buf = append(buf, 1<<3|2)
		buf = append(buf, proto.EncodeVarint(uint64(len(c.Owner)))...)
		buf = append(buf, c.Owner...)
	}
	if len(c.Name) > 0 {
		buf = append(buf, 2<<3|2)
		buf = append(buf, proto.EncodeVarint(uint64(len(c.Name)))...)
		buf = append(buf, c.Name...)
	}
	if c.Limit != 0 {
		buf = append(buf, 3<<3|0)
		buf = append(buf, proto.EncodeVarint(uint64(c.Limit))...)
	}
	return buf, nil
}

func (c *testConfig) Unmarshal(raw []byte) error {
	*c = testConfig{}
	for len(raw) > 0 {
		key, n := proto.DecodeVarint(raw)
		if n == 0 {
			return io.ErrUnexpectedEOF
		}
		raw = raw[n:]
		switch key >> 3 {
		case 1:
			val, rest, err := splitTestBytes(raw)
			if err != nil {
				return err
			}
			c.Owner, raw = datamarket.Address(val), rest
		case 2:
			val, rest, err := splitTestBytes(raw)
			if err != nil {
				return err
			}
			c.Name, raw = string(val), rest
		case 3:
			val, n := proto.DecodeVarint(raw)
			if n == 0 {
				return io.ErrUnexpectedEOF
			}
			c.Limit, raw = int64(val), raw[n:]
		default:
			return errors.Wrapf(errors.ErrInput, "unexpected field %d", key>>3)
		}
	}
	return nil
}

func splitTestBytes(raw []byte) ([]byte, []byte, error) {
	size, n := proto.DecodeVarint(raw)
	if n == 0 || uint64(len(raw[n:])) < size {
		return nil, nil, io.ErrUnexpectedEOF
	}
	raw = raw[n:]
	return append([]byte{}, raw[:size]...), raw[size:], nil
}

func (c *testConfig) GetOwner() datamarket.Address { return c.Owner }

func (c *testConfig) Validate() error {
	if c.Limit < 0 {
		return errors.Wrap(errors.ErrInput, "negative limit")
	}
	return nil
}

func TestSaveAndLoad(t *testing.T) {
	db := store.MemStore()

	if err := Save(db, "testpkg", &testConfig{Name: "alpha", Limit: 4}); err != nil {
		t.Fatalf("cannot save: %+v", err)
	}

	var got testConfig
	if err := Load(db, "testpkg", &got); err != nil {
		t.Fatalf("cannot load: %+v", err)
	}
	if got.Name != "alpha" || got.Limit != 4 {
		t.Fatalf("unexpected configuration: %+v", got)
	}
}

func TestSaveValidates(t *testing.T) {
	db := store.MemStore()
	if err := Save(db, "testpkg", &testConfig{Limit: -1}); !errors.ErrInput.Is(err) {
		t.Fatalf("want input error, got %+v", err)
	}
}

func TestLoadMissing(t *testing.T) {
	db := store.MemStore()
	var got testConfig
	if err := Load(db, "testpkg", &got); !errors.ErrNotFound.Is(err) {
		t.Fatalf("want not found, got %+v", err)
	}
}

func TestInitConfig(t *testing.T) {
	db := store.MemStore()
	opts := datamarket.Options{
		"conf": []byte(`{"testpkg": {"name": "genesis", "limit": 2}}`),
	}

	var conf testConfig
	if err := InitConfig(db, opts, "testpkg", &conf); err != nil {
		t.Fatalf("cannot initialize: %+v", err)
	}

	var got testConfig
	if err := Load(db, "testpkg", &got); err != nil {
		t.Fatalf("cannot load: %+v", err)
	}
	if got.Name != "genesis" || got.Limit != 2 {
		t.Fatalf("unexpected configuration: %+v", got)
	}
}
