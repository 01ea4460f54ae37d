package access

import (
	"io"

	"github.com/gogo/protobuf/proto"
	datamarket "github.com/openpool/datamarket"
	"github.com/openpool/datamarket/errors"
)

// Grant is a time-bounded permission record issued to a buyer for a pool.
// The grant id is the bucket key and is not stored in the entity. It
// serializes to the protobuf wire format declared by the struct tags;
// unknown fields are skipped when decoding.
type Grant struct {
	Buyer     datamarket.Address  `protobuf:"bytes,1,opt,name=buyer,proto3,casttype=github.com/openpool/datamarket.Address" json:"buyer,omitempty"`
	PoolID    []byte              `protobuf:"bytes,2,opt,name=pool_id,json=poolId,proto3" json:"pool_id,omitempty"`
	GrantedAt datamarket.UnixTime `protobuf:"varint,3,opt,name=granted_at,json=grantedAt,proto3,casttype=github.com/openpool/datamarket.UnixTime" json:"granted_at,omitempty"`
	ExpiresAt datamarket.UnixTime `protobuf:"varint,4,opt,name=expires_at,json=expiresAt,proto3,casttype=github.com/openpool/datamarket.UnixTime" json:"expires_at,omitempty"`
	Token     string              `protobuf:"bytes,5,opt,name=token,proto3" json:"token,omitempty"`
}

func (g *Grant) Reset()         { *g = Grant{} }
func (g *Grant) String() string { return proto.CompactTextString(g) }
func (*Grant) ProtoMessage()    {}

func (g *Grant) Marshal() ([]byte, error) {
	var buf []byte
	if len(g.Buyer) > 0 {
		buf = appendBytesField(buf, 1, g.Buyer)
	}
	if len(g.PoolID) > 0 {
		buf = appendBytesField(buf, 2, g.PoolID)
	}
	if g.GrantedAt != 0 {
		buf = appendVarintField(buf, 3, uint64(g.GrantedAt))
	}
	if g.ExpiresAt != 0 {
		buf = appendVarintField(buf, 4, uint64(g.ExpiresAt))
	}
	if len(g.Token) > 0 {
		buf = appendBytesField(buf, 5, []byte(g.Token))
	}
	return buf, nil
}

func (g *Grant) Unmarshal(raw []byte) error {
	*g = Grant{}
	var err error
	for len(raw) > 0 {
		var key uint64
		if key, raw, err = splitVarint(raw); err != nil {
			return err
		}
		switch key >> 3 {
		case 1:
			var val []byte
			if val, raw, err = splitBytes(raw); err != nil {
				return err
			}
			g.Buyer = datamarket.Address(val)
		case 2:
			var val []byte
			if val, raw, err = splitBytes(raw); err != nil {
				return err
			}
			g.PoolID = val
		case 3:
			var val uint64
			if val, raw, err = splitVarint(raw); err != nil {
				return err
			}
			g.GrantedAt = datamarket.UnixTime(val)
		case 4:
			var val uint64
			if val, raw, err = splitVarint(raw); err != nil {
				return err
			}
			g.ExpiresAt = datamarket.UnixTime(val)
		case 5:
			var val []byte
			if val, raw, err = splitBytes(raw); err != nil {
				return err
			}
			g.Token = string(val)
		default:
			if raw, err = skipFieldValue(raw, key&0x7); err != nil {
				return err
			}
		}
	}
	return nil
}

const (
	wireVarint  = 0
	wireFixed64 = 1
	wireBytes   = 2
	wireFixed32 = 5
)

func appendVarintField(buf []byte, fieldNum byte, value uint64) []byte {
	buf = append(buf, fieldNum<<3|wireVarint)
	return append(buf, proto.EncodeVarint(value)...)
}

func appendBytesField(buf []byte, fieldNum byte, value []byte) []byte {
	buf = append(buf, fieldNum<<3|wireBytes)
	buf = append(buf, proto.EncodeVarint(uint64(len(value)))...)
	return append(buf, value...)
}

func splitVarint(raw []byte) (uint64, []byte, error) {
	value, n := proto.DecodeVarint(raw)
	if n == 0 {
		return 0, nil, io.ErrUnexpectedEOF
	}
	return value, raw[n:], nil
}

func splitBytes(raw []byte) ([]byte, []byte, error) {
	size, raw, err := splitVarint(raw)
	if err != nil {
		return nil, nil, err
	}
	if uint64(len(raw)) < size {
		return nil, nil, io.ErrUnexpectedEOF
	}
	// Copy so the decoded value does not alias the input buffer.
	value := append([]byte{}, raw[:size]...)
	return value, raw[size:], nil
}

func skipFieldValue(raw []byte, wireType uint64) ([]byte, error) {
	switch wireType {
	case wireVarint:
		_, rest, err := splitVarint(raw)
		return rest, err
	case wireBytes:
		_, rest, err := splitBytes(raw)
		return rest, err
	case wireFixed64:
		if len(raw) < 8 {
			return nil, io.ErrUnexpectedEOF
		}
		return raw[8:], nil
	case wireFixed32:
		if len(raw) < 4 {
			return nil, io.ErrUnexpectedEOF
		}
		return raw[4:], nil
	default:
		return nil, errors.Wrapf(errors.ErrInput, "unsupported wire type %d", wireType)
	}
}
