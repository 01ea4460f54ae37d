package orm

import (
	"io"

	"github.com/gogo/protobuf/proto"
	"github.com/openpool/datamarket/errors"
)

// Protobuf wire format primitives used by the codecs in this package.

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
