package markettest

import (
	"crypto/rand"
	"encoding/binary"

	datamarket "github.com/openpool/datamarket"
)

// SequenceID returns an ID encoded as if it was generated by a bucket id
// sequence.
func SequenceID(n uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, n)
	return b
}

// NewCondition returns a random condition. Each call returns a different
// value.
func NewCondition() datamarket.Condition {
	data := make([]byte, 16)
	if _, err := rand.Read(data); err != nil {
		panic(err)
	}
	return datamarket.NewCondition("test", "random", data)
}
