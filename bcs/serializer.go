// Package bcs implements the Binary Canonical Serialization wire contract
// against github.com/zoobzio/witness's Serializer and Deserializer
// interfaces: fixed-width little-endian primitives, ULEB128-encoded
// lengths and variant indices, and strictly-increasing map key ordering.
package bcs

import (
	"bytes"
	"errors"
	"sort"

	"github.com/zoobzio/witness"
)

// MaxSequenceLength bounds the length prefix of a sequence, byte string,
// or map: larger values are refused rather than silently truncated.
const MaxSequenceLength = (1 << 31) - 1

// MaxContainerDepth bounds how many nested structs and enum variants a
// single value may cross, guarding against stack exhaustion from a
// maliciously deep input on decode.
const MaxContainerDepth = 500

// Serializer writes values to a growing in-memory buffer using BCS's
// fixed-width little-endian integer encoding and ULEB128 length/variant
// prefixes. MaxContainerDepth is enforced only on decode, where it guards
// against a maliciously deep untrusted input; an encode walks a Go value
// the caller already holds in memory, so there is no adversarial depth to
// bound.
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
	return errors.New("bcs: Char is not implemented")
}

func (s *Serializer) SerializeF32(value float32) error {
	return errors.New("bcs: F32 is not implemented")
}

func (s *Serializer) SerializeF64(value float64) error {
	return errors.New("bcs: F64 is not implemented")
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
	if value > MaxSequenceLength {
		return errors.New("bcs: length exceeds MaxSequenceLength")
	}
	return s.serializeU32AsUleb128(uint32(value))
}

func (s *Serializer) SerializeVariantIndex(value uint32) error {
	return s.serializeU32AsUleb128(value)
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

// SortMapEntries reorders the byte ranges written since each offset into
// strictly increasing lexicographic order, the canonical map encoding
// BCS requires so two maps with the same entries always encode to the
// same bytes regardless of Go's randomized map iteration order.
func (s *Serializer) SortMapEntries(offsets []uint64) {
	if len(offsets) <= 1 {
		return
	}
	data := s.buf.Bytes()
	slices := make([]witness.Slice, len(offsets))
	for i, start := range offsets {
		end := uint64(len(data))
		if i+1 < len(offsets) {
			end = offsets[i+1]
		}
		slices[i] = witness.Slice{Start: start, End: end}
	}
	entries := mapEntries{data: data, slices: slices}
	sort.Sort(entries)

	reordered := make([]byte, len(data)-int(offsets[0]))
	cursor := reordered[:0]
	for _, sl := range entries.slices {
		cursor = append(cursor, data[sl.Start:sl.End]...)
	}
	copy(data[offsets[0]:], cursor)
}

func (s *Serializer) serializeU32AsUleb128(value uint32) error {
	for value >= 0x80 {
		s.buf.WriteByte(byte(value&0x7f) | 0x80)
		value >>= 7
	}
	s.buf.WriteByte(byte(value))
	return nil
}

type mapEntries struct {
	data   []byte
	slices []witness.Slice
}

func (a mapEntries) Len() int { return len(a.slices) }

func (a mapEntries) Less(i, j int) bool {
	return bytes.Compare(a.data[a.slices[i].Start:a.slices[i].End], a.data[a.slices[j].Start:a.slices[j].End]) < 0
}

func (a mapEntries) Swap(i, j int) { a.slices[i], a.slices[j] = a.slices[j], a.slices[i] }
