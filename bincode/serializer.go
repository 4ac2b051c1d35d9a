// Package bincode implements the Bincode wire contract against
// github.com/zoobzio/witness's Serializer and Deserializer interfaces:
// fixed-width little-endian primitives, fixed 64-bit length prefixes,
// fixed 32-bit variant indices, and no map key ordering.
package bincode

import (
	"bytes"
	"errors"

	"github.com/zoobzio/witness"
)

// MaxSequenceLength mirrors the upstream runtimes' practical length cap
// (matching other language targets' uint32 length fields) even though
// Bincode's own length prefix is a full 64 bits wide.
const MaxSequenceLength = (1 << 31) - 1

// Serializer writes values to a growing in-memory buffer using fixed
// 64-bit little-endian lengths and 32-bit variant indices, with no
// canonical map ordering.
type Serializer struct {
	buf bytes.Buffer
}

// NewSerializer returns an empty Serializer.
func NewSerializer() *Serializer {
	return &Serializer{}
}

func (s *Serializer) SerializeBool(value bool) error {
	if value {
		return s.buf.WriteByte(1)
	}
	return s.buf.WriteByte(0)
}

func (s *Serializer) SerializeUnit() error { return nil }

func (s *Serializer) SerializeChar(value rune) error {
	return errors.New("bincode: Char is not implemented")
}

func (s *Serializer) SerializeF32(value float32) error {
	return errors.New("bincode: F32 is not implemented")
}

func (s *Serializer) SerializeF64(value float64) error {
	return errors.New("bincode: F64 is not implemented")
}

func (s *Serializer) SerializeU8(value uint8) error {
	return s.buf.WriteByte(value)
}

func (s *Serializer) SerializeU16(value uint16) error {
	s.buf.WriteByte(byte(value))
	s.buf.WriteByte(byte(value >> 8))
	return nil
}

func (s *Serializer) SerializeU32(value uint32) error {
	s.buf.WriteByte(byte(value))
	s.buf.WriteByte(byte(value >> 8))
	s.buf.WriteByte(byte(value >> 16))
	s.buf.WriteByte(byte(value >> 24))
	return nil
}

func (s *Serializer) SerializeU64(value uint64) error {
	for i := 0; i < 64; i += 8 {
		s.buf.WriteByte(byte(value >> i))
	}
	return nil
}

func (s *Serializer) SerializeU128(value witness.Uint128) error {
	s.SerializeU64(value.Low)
	s.SerializeU64(value.High)
	return nil
}

func (s *Serializer) SerializeI8(value int8) error { return s.SerializeU8(uint8(value)) }

func (s *Serializer) SerializeI16(value int16) error { return s.SerializeU16(uint16(value)) }

func (s *Serializer) SerializeI32(value int32) error { return s.SerializeU32(uint32(value)) }

func (s *Serializer) SerializeI64(value int64) error { return s.SerializeU64(uint64(value)) }

func (s *Serializer) SerializeI128(value witness.Int128) error {
	s.SerializeU64(value.Low)
	return s.SerializeI64(value.High)
}

func (s *Serializer) SerializeOptionTag(value bool) error { return s.SerializeBool(value) }

func (s *Serializer) SerializeLen(value uint64) error {
	return s.SerializeU64(value)
}

func (s *Serializer) SerializeVariantIndex(value uint32) error {
	return s.SerializeU32(value)
}

func (s *Serializer) SerializeBytes(value []byte) error {
	if err := s.SerializeLen(uint64(len(value))); err != nil {
		return err
	}
	s.buf.Write(value)
	return nil
}

func (s *Serializer) SerializeStr(value string) error {
	return s.SerializeBytes([]byte(value))
}

func (s *Serializer) GetBufferOffset() uint64 { return uint64(s.buf.Len()) }

func (s *Serializer) GetBytes() []byte { return s.buf.Bytes() }

// SortMapEntries is a no-op: Bincode has no canonical map ordering.
func (s *Serializer) SortMapEntries(offsets []uint64) {}
