package datamarket

import (
	"reflect"

	"github.com/openpool/datamarket/errors"
)

// Msg is a request to make a single state transition. It is just the
// payload, and must be validated by the handlers. All authentication
// information is in the wrapping Tx.
type Msg interface {
	Persistent

	// Validate returns an error if the message content is not valid. This
	// is a static validation that does not require access to the
	// database.
	Validate() error

	// Path returns the message path. It is used by the router to locate
	// the proper handler. Must be alphanumeric [0-9A-Za-z_/]+
	Path() string
}

// Marshaller is anything that can be represented in binary.
//
// Marshal may validate the data before serializing it and unless you
// previously validated the struct, errors should be expected.
type Marshaller interface {
	Marshal() ([]byte, error)
}

// Persistent supports Marshal and Unmarshal.
//
// This is separated from Marshaller, as this almost always requires a
// pointer, and functions that only need to marshal bytes can use the
// Marshaller interface to access non-pointers.
type Persistent interface {
	Marshaller
	Unmarshal([]byte) error
}

// Tx represents the data sent from the caller to the engine. It includes
// the actual message, along with information needed to authenticate the
// caller, interpreted by the surrounding middleware.
type Tx interface {
	Persistent

	// GetMsg returns the action we wish to communicate.
	GetMsg() (Msg, error)
}

// GetPath returns the path of the message, or (missing) if no message.
func GetPath(tx Tx) string {
	msg, err := tx.GetMsg()
	if err == nil && msg != nil {
		return msg.Path()
	}
	return "(missing)"
}

// TxDecoder can parse bytes into a Tx.
type TxDecoder func(txBytes []byte) (Tx, error)

// LoadMsg extracts the message from the transaction and unloads it into the
// destination. Destination must be a pointer to the expected message type.
// Before returning, message is validated.
func LoadMsg(tx Tx, destination Msg) error {
	msg, err := tx.GetMsg()
	if err != nil {
		return errors.Wrap(err, "cannot get message")
	}

	dstVal := reflect.ValueOf(destination)
	if dstVal.Kind() != reflect.Ptr || dstVal.Elem().Kind() != reflect.Struct {
		return errors.Wrapf(errors.ErrType, "expected message destination to be a pointer to a structure, got %T", destination)
	}

	msgVal := reflect.ValueOf(msg)
	if msgVal.Type() != dstVal.Type() {
		return errors.Wrapf(errors.ErrType, "want %T message, got %T", destination, msg)
	}

	dstVal.Elem().Set(msgVal.Elem())

	if err := destination.Validate(); err != nil {
		return errors.Wrap(err, "invalid message")
	}
	return nil
}
