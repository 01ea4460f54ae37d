package datapool

import (
	"io"

	"github.com/gogo/protobuf/proto"
	datamarket "github.com/openpool/datamarket"
	"github.com/openpool/datamarket/errors"
)

// Entities and messages serialize to the protobuf wire format. The field
// numbers and types are declared by the struct tags. Unknown fields are
// skipped when decoding.

// PoolKind describes what sort of data a pool collects.
type PoolKind int32

const (
	PoolKindUnspecified PoolKind = 0
	PoolKindDataset     PoolKind = 1
	PoolKindStream      PoolKind = 2
	PoolKindModel       PoolKind = 3
)

var poolKindName = map[PoolKind]string{
	PoolKindUnspecified: "unspecified",
	PoolKindDataset:     "dataset",
	PoolKindStream:      "stream",
	PoolKindModel:       "model",
}

func (k PoolKind) String() string {
	if name, ok := poolKindName[k]; ok {
		return name
	}
	return "invalid"
}

// Pool is a named collection that contributors add data to and buyers pay
// to access. The pool id is the bucket key and is not stored in the entity.
type Pool struct {
	Name              string              `protobuf:"bytes,1,opt,name=name,proto3" json:"name,omitempty"`
	Description       string              `protobuf:"bytes,2,opt,name=description,proto3" json:"description,omitempty"`
	Kind              PoolKind            `protobuf:"varint,3,opt,name=kind,proto3,casttype=PoolKind" json:"kind,omitempty"`
	Creator           datamarket.Address  `protobuf:"bytes,4,opt,name=creator,proto3,casttype=github.com/openpool/datamarket.Address" json:"creator,omitempty"`
	TotalContributors uint32              `protobuf:"varint,5,opt,name=total_contributors,json=totalContributors,proto3" json:"total_contributors,omitempty"`
	TotalRevenue      int64               `protobuf:"varint,6,opt,name=total_revenue,json=totalRevenue,proto3" json:"total_revenue,omitempty"`
	Active            bool                `protobuf:"varint,7,opt,name=active,proto3" json:"active,omitempty"`
	CreatedAt         datamarket.UnixTime `protobuf:"varint,8,opt,name=created_at,json=createdAt,proto3,casttype=github.com/openpool/datamarket.UnixTime" json:"created_at,omitempty"`
}

func (p *Pool) Reset()         { *p = Pool{} }
func (p *Pool) String() string { return proto.CompactTextString(p) }
func (*Pool) ProtoMessage()    {}

func (p *Pool) Marshal() ([]byte, error) {
	var buf []byte
	if len(p.Name) > 0 {
		buf = appendBytesField(buf, 1, []byte(p.Name))
	}
	if len(p.Description) > 0 {
		buf = appendBytesField(buf, 2, []byte(p.Description))
	}
	if p.Kind != 0 {
		buf = appendVarintField(buf, 3, uint64(p.Kind))
	}
	if len(p.Creator) > 0 {
		buf = appendBytesField(buf, 4, p.Creator)
	}
	if p.TotalContributors != 0 {
		buf = appendVarintField(buf, 5, uint64(p.TotalContributors))
	}
	if p.TotalRevenue != 0 {
		buf = appendVarintField(buf, 6, uint64(p.TotalRevenue))
	}
	if p.Active {
		buf = appendVarintField(buf, 7, 1)
	}
	if p.CreatedAt != 0 {
		buf = appendVarintField(buf, 8, uint64(p.CreatedAt))
	}
	return buf, nil
}

func (p *Pool) Unmarshal(raw []byte) error {
	*p = Pool{}
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
			p.Name = string(val)
		case 2:
			var val []byte
			if val, raw, err = splitBytes(raw); err != nil {
				return err
			}
			p.Description = string(val)
		case 3:
			var val uint64
			if val, raw, err = splitVarint(raw); err != nil {
				return err
			}
			p.Kind = PoolKind(val)
		case 4:
			var val []byte
			if val, raw, err = splitBytes(raw); err != nil {
				return err
			}
			p.Creator = datamarket.Address(val)
		case 5:
			var val uint64
			if val, raw, err = splitVarint(raw); err != nil {
				return err
			}
			p.TotalContributors = uint32(val)
		case 6:
			var val uint64
			if val, raw, err = splitVarint(raw); err != nil {
				return err
			}
			p.TotalRevenue = int64(val)
		case 7:
			var val uint64
			if val, raw, err = splitVarint(raw); err != nil {
				return err
			}
			p.Active = val != 0
		case 8:
			var val uint64
			if val, raw, err = splitVarint(raw); err != nil {
				return err
			}
			p.CreatedAt = datamarket.UnixTime(val)
		default:
			if raw, err = skipFieldValue(raw, key&0x7); err != nil {
				return err
			}
		}
	}
	return nil
}

// Contribution is a single append-only record of data added to a pool.
type Contribution struct {
	User      datamarket.Address  `protobuf:"bytes,1,opt,name=user,proto3,casttype=github.com/openpool/datamarket.Address" json:"user,omitempty"`
	PoolID    []byte              `protobuf:"bytes,2,opt,name=pool_id,json=poolId,proto3" json:"pool_id,omitempty"`
	DataHash  []byte              `protobuf:"bytes,3,opt,name=data_hash,json=dataHash,proto3" json:"data_hash,omitempty"`
	Timestamp datamarket.UnixTime `protobuf:"varint,4,opt,name=timestamp,proto3,casttype=github.com/openpool/datamarket.UnixTime" json:"timestamp,omitempty"`
	Shares    uint32              `protobuf:"varint,5,opt,name=shares,proto3" json:"shares,omitempty"`
}

func (c *Contribution) Reset()         { *c = Contribution{} }
func (c *Contribution) String() string { return proto.CompactTextString(c) }
func (*Contribution) ProtoMessage()    {}

func (c *Contribution) Marshal() ([]byte, error) {
	var buf []byte
	if len(c.User) > 0 {
		buf = appendBytesField(buf, 1, c.User)
	}
	if len(c.PoolID) > 0 {
		buf = appendBytesField(buf, 2, c.PoolID)
	}
	if len(c.DataHash) > 0 {
		buf = appendBytesField(buf, 3, c.DataHash)
	}
	if c.Timestamp != 0 {
		buf = appendVarintField(buf, 4, uint64(c.Timestamp))
	}
	if c.Shares != 0 {
		buf = appendVarintField(buf, 5, uint64(c.Shares))
	}
	return buf, nil
}

func (c *Contribution) Unmarshal(raw []byte) error {
	*c = Contribution{}
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
			c.User = datamarket.Address(val)
		case 2:
			var val []byte
			if val, raw, err = splitBytes(raw); err != nil {
				return err
			}
			c.PoolID = val
		case 3:
			var val []byte
			if val, raw, err = splitBytes(raw); err != nil {
				return err
			}
			c.DataHash = val
		case 4:
			var val uint64
			if val, raw, err = splitVarint(raw); err != nil {
				return err
			}
			c.Timestamp = datamarket.UnixTime(val)
		case 5:
			var val uint64
			if val, raw, err = splitVarint(raw); err != nil {
				return err
			}
			c.Shares = uint32(val)
		default:
			if raw, err = skipFieldValue(raw, key&0x7); err != nil {
				return err
			}
		}
	}
	return nil
}

// Configuration holds the datapool package settings. The owner is the
// marketplace administrator that may deactivate any pool and change this
// configuration.
type Configuration struct {
	Owner datamarket.Address `protobuf:"bytes,1,opt,name=owner,proto3,casttype=github.com/openpool/datamarket.Address" json:"owner,omitempty"`
}

func (c *Configuration) Reset()         { *c = Configuration{} }
func (c *Configuration) String() string { return proto.CompactTextString(c) }
func (*Configuration) ProtoMessage()    {}

func (c *Configuration) Marshal() ([]byte, error) {
	var buf []byte
	if len(c.Owner) > 0 {
		buf = appendBytesField(buf, 1, c.Owner)
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
		default:
			if raw, err = skipFieldValue(raw, key&0x7); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Configuration) GetOwner() datamarket.Address { return c.Owner }

// CreatePoolMsg registers a new pool owned by the creator.
type CreatePoolMsg struct {
	Creator     datamarket.Address `protobuf:"bytes,1,opt,name=creator,proto3,casttype=github.com/openpool/datamarket.Address" json:"creator,omitempty"`
	Name        string             `protobuf:"bytes,2,opt,name=name,proto3" json:"name,omitempty"`
	Description string             `protobuf:"bytes,3,opt,name=description,proto3" json:"description,omitempty"`
	Kind        PoolKind           `protobuf:"varint,4,opt,name=kind,proto3,casttype=PoolKind" json:"kind,omitempty"`
}

func (m *CreatePoolMsg) Reset()         { *m = CreatePoolMsg{} }
func (m *CreatePoolMsg) String() string { return proto.CompactTextString(m) }
func (*CreatePoolMsg) ProtoMessage()    {}

func (m *CreatePoolMsg) Marshal() ([]byte, error) {
	var buf []byte
	if len(m.Creator) > 0 {
		buf = appendBytesField(buf, 1, m.Creator)
	}
	if len(m.Name) > 0 {
		buf = appendBytesField(buf, 2, []byte(m.Name))
	}
	if len(m.Description) > 0 {
		buf = appendBytesField(buf, 3, []byte(m.Description))
	}
	if m.Kind != 0 {
		buf = appendVarintField(buf, 4, uint64(m.Kind))
	}
	return buf, nil
}

func (m *CreatePoolMsg) Unmarshal(raw []byte) error {
	*m = CreatePoolMsg{}
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
			m.Creator = datamarket.Address(val)
		case 2:
			var val []byte
			if val, raw, err = splitBytes(raw); err != nil {
				return err
			}
			m.Name = string(val)
		case 3:
			var val []byte
			if val, raw, err = splitBytes(raw); err != nil {
				return err
			}
			m.Description = string(val)
		case 4:
			var val uint64
			if val, raw, err = splitVarint(raw); err != nil {
				return err
			}
			m.Kind = PoolKind(val)
		default:
			if raw, err = skipFieldValue(raw, key&0x7); err != nil {
				return err
			}
		}
	}
	return nil
}

// DeactivatePoolMsg permanently disables contributions to and purchases
// from a pool.
type DeactivatePoolMsg struct {
	PoolID []byte `protobuf:"bytes,1,opt,name=pool_id,json=poolId,proto3" json:"pool_id,omitempty"`
}

func (m *DeactivatePoolMsg) Reset()         { *m = DeactivatePoolMsg{} }
func (m *DeactivatePoolMsg) String() string { return proto.CompactTextString(m) }
func (*DeactivatePoolMsg) ProtoMessage()    {}

func (m *DeactivatePoolMsg) Marshal() ([]byte, error) {
	var buf []byte
	if len(m.PoolID) > 0 {
		buf = appendBytesField(buf, 1, m.PoolID)
	}
	return buf, nil
}

func (m *DeactivatePoolMsg) Unmarshal(raw []byte) error {
	*m = DeactivatePoolMsg{}
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
			m.PoolID = val
		default:
			if raw, err = skipFieldValue(raw, key&0x7); err != nil {
				return err
			}
		}
	}
	return nil
}

// ContributeMsg appends a data contribution to an active pool.
type ContributeMsg struct {
	User     datamarket.Address `protobuf:"bytes,1,opt,name=user,proto3,casttype=github.com/openpool/datamarket.Address" json:"user,omitempty"`
	PoolID   []byte             `protobuf:"bytes,2,opt,name=pool_id,json=poolId,proto3" json:"pool_id,omitempty"`
	DataHash []byte             `protobuf:"bytes,3,opt,name=data_hash,json=dataHash,proto3" json:"data_hash,omitempty"`
}

func (m *ContributeMsg) Reset()         { *m = ContributeMsg{} }
func (m *ContributeMsg) String() string { return proto.CompactTextString(m) }
func (*ContributeMsg) ProtoMessage()    {}

func (m *ContributeMsg) Marshal() ([]byte, error) {
	var buf []byte
	if len(m.User) > 0 {
		buf = appendBytesField(buf, 1, m.User)
	}
	if len(m.PoolID) > 0 {
		buf = appendBytesField(buf, 2, m.PoolID)
	}
	if len(m.DataHash) > 0 {
		buf = appendBytesField(buf, 3, m.DataHash)
	}
	return buf, nil
}

func (m *ContributeMsg) Unmarshal(raw []byte) error {
	*m = ContributeMsg{}
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
		case 2:
			var val []byte
			if val, raw, err = splitBytes(raw); err != nil {
				return err
			}
			m.PoolID = val
		case 3:
			var val []byte
			if val, raw, err = splitBytes(raw); err != nil {
				return err
			}
			m.DataHash = val
		default:
			if raw, err = skipFieldValue(raw, key&0x7); err != nil {
				return err
			}
		}
	}
	return nil
}

// UpdateConfigurationMsg replaces non-zero fields of the package
// configuration.
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
