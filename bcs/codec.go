package bcs

import (
	"fmt"
	"reflect"

	"github.com/zoobzio/witness"
)

type codec struct{}

// New returns a witness.Codec that marshals and unmarshals values using
// Binary Canonical Serialization.
func New() witness.Codec {
	return &codec{}
}

func (c *codec) ContentType() string { return "application/x-bcs" }

func (c *codec) Marshal(v any) ([]byte, error) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return nil, fmt.Errorf("bcs: cannot marshal a nil value")
	}
	s := NewSerializer()
	if err := witness.EncodeValue(s, rv); err != nil {
		return nil, err
	}
	return s.GetBytes(), nil
}

func (c *codec) Unmarshal(data []byte, v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("bcs: Unmarshal target must be a non-nil pointer")
	}
	d := NewDeserializer(data)
	out, err := witness.DecodeValue(d, rv.Elem().Type())
	if err != nil {
		return err
	}
	if d.buf.Len() > 0 {
		return fmt.Errorf("bcs: %d trailing byte(s) after decoded value", d.buf.Len())
	}
	rv.Elem().Set(out)
	return nil
}
