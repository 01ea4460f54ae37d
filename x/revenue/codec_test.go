package revenue

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/gogo/protobuf/proto"
	datamarket "github.com/openpool/datamarket"
)

func TestShareSerialization(t *testing.T) {
	src := Share{
		User:      datamarket.Address("a-user-address------"),
		PoolID:    []byte{0, 0, 0, 0, 0, 0, 0, 1},
		Amount:    475,
		Timestamp: 1700000000,
		Claimed:   true,
	}

	raw, err := src.Marshal()
	if err != nil {
		t.Fatalf("cannot marshal: %+v", err)
	}
	// Serialization must go through gogo's entry point as well, without
	// looping back into this type's Marshal forever.
	viaProto, err := proto.Marshal(&src)
	if err != nil {
		t.Fatalf("cannot marshal via proto: %+v", err)
	}
	if !bytes.Equal(raw, viaProto) {
		t.Fatalf("proto entry point produced different bytes: %x != %x", viaProto, raw)
	}

	var got Share
	if err := proto.Unmarshal(raw, &got); err != nil {
		t.Fatalf("cannot unmarshal via proto: %+v", err)
	}
	if !reflect.DeepEqual(got, src) {
		t.Fatalf("unexpected share: %+v", got)
	}
}

func TestPurchaseSerialization(t *testing.T) {
	src := Purchase{
		Buyer:        datamarket.Address("a-buyer-address-----"),
		PoolID:       []byte{0, 0, 0, 0, 0, 0, 0, 2},
		Amount:       1000,
		Timestamp:    1700000000,
		AccessExpiry: 1700003600,
	}

	raw, err := src.Marshal()
	if err != nil {
		t.Fatalf("cannot marshal: %+v", err)
	}
	viaProto, err := proto.Marshal(&src)
	if err != nil {
		t.Fatalf("cannot marshal via proto: %+v", err)
	}
	if !bytes.Equal(raw, viaProto) {
		t.Fatalf("proto entry point produced different bytes: %x != %x", viaProto, raw)
	}

	var got Purchase
	if err := got.Unmarshal(raw); err != nil {
		t.Fatalf("cannot unmarshal: %+v", err)
	}
	if !reflect.DeepEqual(got, src) {
		t.Fatalf("unexpected purchase: %+v", got)
	}
}

func TestUpdateConfigurationMsgSerialization(t *testing.T) {
	src := UpdateConfigurationMsg{
		Patch: &Configuration{
			Owner:  datamarket.Address("an-owner-address----"),
			FeeBps: 500,
		},
	}

	raw, err := src.Marshal()
	if err != nil {
		t.Fatalf("cannot marshal: %+v", err)
	}
	viaProto, err := proto.Marshal(&src)
	if err != nil {
		t.Fatalf("cannot marshal via proto: %+v", err)
	}
	if !bytes.Equal(raw, viaProto) {
		t.Fatalf("proto entry point produced different bytes: %x != %x", viaProto, raw)
	}

	var got UpdateConfigurationMsg
	if err := got.Unmarshal(raw); err != nil {
		t.Fatalf("cannot unmarshal: %+v", err)
	}
	if got.Patch == nil || !got.Patch.Owner.Equals(src.Patch.Owner) || got.Patch.FeeBps != 500 {
		t.Fatalf("unexpected message: %+v", got)
	}
}

func TestShareSerializationSkipsZeroFields(t *testing.T) {
	raw, err := (&Share{}).Marshal()
	if err != nil {
		t.Fatalf("cannot marshal: %+v", err)
	}
	if len(raw) != 0 {
		t.Fatalf("zero value must serialize to no bytes, got %x", raw)
	}
}
