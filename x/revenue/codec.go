package revenue

import (
	"io"

	"github.com/gogo/protobuf/proto"
	datamarket "github.com/openpool/datamarket"
	"github.com/openpool/datamarket/errors"
)

// Entities and messages serialize to the protobuf wire format. The field
// numbers and types are declared by the struct tags. Unknown fields are
// skipped when decoding.

// Purchase is an immutable record of a single access payment.
type Purchase struct {
	Buyer        datamarket.Address  `protobuf:"bytes,1,opt,name=buyer,proto3,casttype=github.com/openpool/datamarket.Address" json:"buyer,omitempty"`
	PoolID       []byte              `protobuf:"bytes,2,opt,name=pool_id,json=poolId,proto3" json:"pool_id,omitempty"`
	Amount       int64               `protobuf:"varint,3,opt,name=amount,proto3" json:"amount,omitempty"`
	Timestamp    datamarket.UnixTime `protobuf:"varint,4,opt,name=timestamp,proto3,casttype=github.com/openpool/datamarket.UnixTime" json:"timestamp,omitempty"`
	AccessExpiry datamarket.UnixTime `protobuf:"varint,5,opt,name=access_expiry,json=accessExpiry,proto3,casttype=github.com/openpool/datamarket.UnixTime" json:"access_expiry,omitempty"`
}

func (p *Purchase) Reset()         { *p = Purchase{} }
func (p *Purchase) String() string { return proto.CompactTextString(p) }
func (*Purchase) ProtoMessage()    {}

func (p *Purchase) Marshal() ([]byte, error) {
	var buf []byte
	if len(p.Buyer) > 0 {
		buf = appendBytesField(buf, 1, p.Buyer)
	}
	if len(p.PoolID) > 0 {
		buf = appendBytesField(buf, 2, p.PoolID)
	}
	if p.Amount != 0 {
		buf = appendVarintField(buf, 3, uint64(p.Amount))
	}
	if p.Timestamp != 0 {
		buf = appendVarintField(buf, 4, uint64(p.Timestamp))
	}
	if p.AccessExpiry != 0 {
		buf = appendVarintField(buf, 5, uint64(p.AccessExpiry))
	}
	return buf, nil
}

func (p *Purchase) Unmarshal(raw []byte) error {
	*p = Purchase{}
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
			p.Buyer = datamarket.Address(val)
		case 2:
			var val []byte
			if val, raw, err = splitBytes(raw); err != nil {
				return err
			}
			p.PoolID = val
		case 3:
			var val uint64
			if val, raw, err = splitVarint(raw); err != nil {
				return err
			}
			p.Amount = int64(val)
		case 4:
			var val uint64
			if val, raw, err = splitVarint(raw); err != nil {
				return err
			}
			p.Timestamp = datamarket.UnixTime(val)
		case 5:
			var val uint64
			if val, raw, err = splitVarint(raw); err != nil {
				return err
			}
			p.AccessExpiry = datamarket.UnixTime(val)
		default:
			if raw, err = skipFieldValue(raw, key&0x7); err != nil {
				return err
			}
		}
	}
	return nil
}

// Share is a per-user, per-pool claimable earning generated by a single
// purchase. The claimed flag flips false to true exactly once, never back.
type Share struct {
	User      datamarket.Address  `protobuf:"bytes,1,opt,name=user,proto3,casttype=github.com/openpool/datamarket.Address" json:"user,omitempty"`
	PoolID    []byte              `protobuf:"bytes,2,opt,name=pool_id,json=poolId,proto3" json:"pool_id,omitempty"`
	Amount    int64               `protobuf:"varint,3,opt,name=amount,proto3" json:"amount,omitempty"`
	Timestamp datamarket.UnixTime `protobuf:"varint,4,opt,name=timestamp,proto3,casttype=github.com/openpool/datamarket.UnixTime" json:"timestamp,omitempty"`
	Claimed   bool                `protobuf:"varint,5,opt,name=claimed,proto3" json:"claimed,omitempty"`
}

func (s *Share) Reset()         { *s = Share{} }
func (s *Share) String() string { return proto.CompactTextString(s) }
func (*Share) ProtoMessage()    {}

func (s *Share) Marshal() ([]byte, error) {
	var buf []byte
	if len(s.User) > 0 {
		buf = appendBytesField(buf, 1, s.User)
	}
	if len(s.PoolID) > 0 {
		buf = appendBytesField(buf, 2, s.PoolID)
	}
	if s.Amount != 0 {
		buf = appendVarintField(buf, 3, uint64(s.Amount))
	}
	if s.Timestamp != 0 {
		buf = appendVarintField(buf, 4, uint64(s.Timestamp))
	}
	if s.Claimed {
		buf = appendVarintField(buf, 5, 1)
	}
	return buf, nil
}

func (s *Share) Unmarshal(raw []byte) error {
	*s = Share{}
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
			s.User = datamarket.Address(val)
		case 2:
			var val []byte
			if val, raw, err = splitBytes(raw); err != nil {
				return err
			}
			s.PoolID = val
		case 3:
			var val uint64
			if val, raw, err = splitVarint(raw); err != nil {
				return err
			}
			s.Amount = int64(val)
		case 4:
			var val uint64
			if val, raw, err = splitVarint(raw); err != nil {
				return err
			}
			s.Timestamp = datamarket.UnixTime(val)
		case 5:
			var val uint64
			if val, raw, err = splitVarint(raw); err != nil {
				return err
			}
			s.Claimed = val != 0
		default:
			if raw, err = skipFieldValue(raw, key&0x7); err != nil {
				return err
			}
		}
	}
	return nil
}

// Configuration holds the revenue package settings. The owner is the
// marketplace administrator allowed to change the fee.
type Configuration struct {
	Owner  datamarket.Address `protobuf:"bytes,1,opt,name=owner,proto3,casttype=github.com/openpool/datamarket.Address" json:"owner,omitempty"`
	FeeBps uint32             `protobuf:"varint,2,opt,name=fee_bps,json=feeBps,proto3" json:"fee_bps,omitempty"`
}

func (c *Configuration) Reset()         { *c = Configuration{} }
func (c *Configuration) String() string { return proto.CompactTextString(c) }
func (*Configuration) ProtoMessage()    {}

func (c *Configuration) Marshal() ([]byte, error) {
	var buf []byte
	if len(c.Owner) > 0 {
		buf = appendBytesField(buf, 1, c.Owner)
	}
	if c.FeeBps != 0 {
		buf = appendVarintField(buf, 2, uint64(c.FeeBps))
	}
	return buf, nil
}

func (c *Configuration) Unmarshal(raw []byte) error {
	*c = Configuration{}
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
			c.Owner = datamarket.Address(val)
		case 2:
			var val uint64
			if val, raw, err = splitVarint(raw); err != nil {
				return err
			}
			c.FeeBps = uint32(val)
		default:
			if raw, err = skipFieldValue(raw, key&0x7); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Configuration) GetOwner() datamarket.Address { return c.Owner }

// PurchaseAccessMsg pays for time-bounded access to a pool and distributes
// the payment among the pool's contributors.
type PurchaseAccessMsg struct {
	Buyer    datamarket.Address      `protobuf:"bytes,1,opt,name=buyer,proto3,casttype=github.com/openpool/datamarket.Address" json:"buyer,omitempty"`
	PoolID   []byte                  `protobuf:"bytes,2,opt,name=pool_id,json=poolId,proto3" json:"pool_id,omitempty"`
	Amount   int64                   `protobuf:"varint,3,opt,name=amount,proto3" json:"amount,omitempty"`
	Duration datamarket.UnixDuration `protobuf:"varint,4,opt,name=duration,proto3,casttype=github.com/openpool/datamarket.UnixDuration" json:"duration,omitempty"`
}

func (m *PurchaseAccessMsg) Reset()         { *m = PurchaseAccessMsg{} }
func (m *PurchaseAccessMsg) String() string { return proto.CompactTextString(m) }
func (*PurchaseAccessMsg) ProtoMessage()    {}

func (m *PurchaseAccessMsg) Marshal() ([]byte, error) {
	var buf []byte
	if len(m.Buyer) > 0 {
		buf = appendBytesField(buf, 1, m.Buyer)
	}
	if len(m.PoolID) > 0 {
		buf = appendBytesField(buf, 2, m.PoolID)
	}
	if m.Amount != 0 {
		buf = appendVarintField(buf, 3, uint64(m.Amount))
	}
	if m.Duration != 0 {
		buf = appendVarintField(buf, 4, uint64(m.Duration))
	}
	return buf, nil
}

func (m *PurchaseAccessMsg) Unmarshal(raw []byte) error {
	*m = PurchaseAccessMsg{}
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
			m.Buyer = datamarket.Address(val)
		case 2:
			var val []byte
			if val, raw, err = splitBytes(raw); err != nil {
				return err
			}
			m.PoolID = val
		case 3:
			var val uint64
			if val, raw, err = splitVarint(raw); err != nil {
				return err
			}
			m.Amount = int64(val)
		case 4:
			var val uint64
			if val, raw, err = splitVarint(raw); err != nil {
				return err
			}
			m.Duration = datamarket.UnixDuration(val)
		default:
			if raw, err = skipFieldValue(raw, key&0x7); err != nil {
				return err
			}
		}
	}
	return nil
}

// ClaimRevenueMsg settles all unclaimed revenue shares of a user.
type ClaimRevenueMsg struct {
	User datamarket.Address `protobuf:"bytes,1,opt,name=user,proto3,casttype=github.com/openpool/datamarket.Address" json:"user,omitempty"`
}

func (m *ClaimRevenueMsg) Reset()         { *m = ClaimRevenueMsg{} }
func (m *ClaimRevenueMsg) String() string { return proto.CompactTextString(m) }
func (*ClaimRevenueMsg) ProtoMessage()    {}

func (m *ClaimRevenueMsg) Marshal() ([]byte, error) {
	var buf []byte
	if len(m.User) > 0 {
		buf = appendBytesField(buf, 1, m.User)
	}
	return buf, nil
}

func (m *ClaimRevenueMsg) Unmarshal(raw []byte) error {
	*m = ClaimRevenueMsg{}
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
			m.User = datamarket.Address(val)
		default:
			if raw, err = skipFieldValue(raw, key&0x7); err != nil {
				return err
			}
		}
	}
	return nil
}

// UpdateConfigurationMsg replaces non-zero fields of the package
// configuration. Changing the fee requires the owner's authorization.
type UpdateConfigurationMsg struct {
	Patch *Configuration `protobuf:"bytes,1,opt,name=patch,proto3" json:"patch,omitempty"`
}

func (m *UpdateConfigurationMsg) Reset()         { *m = UpdateConfigurationMsg{} }
func (m *UpdateConfigurationMsg) String() string { return proto.CompactTextString(m) }
func (*UpdateConfigurationMsg) ProtoMessage()    {}

func (m *UpdateConfigurationMsg) Marshal() ([]byte, error) {
	var buf []byte
	if m.Patch != nil {
		sub, err := m.Patch.Marshal()
		if err != nil {
			return nil, err
		}
		buf = appendBytesField(buf, 1, sub)
	}
	return buf, nil
}

func (m *UpdateConfigurationMsg) Unmarshal(raw []byte) error {
	*m = UpdateConfigurationMsg{}
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
			m.Patch = &Configuration{}
			if err := m.Patch.Unmarshal(val); err != nil {
				return err
			}
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
