package bincode

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/zoobzio/witness"
)

// Deserializer reads values out of a fixed input buffer using Bincode's
// fixed-width little-endian integers, fixed 64-bit lengths, and fixed
// 32-bit variant indices.
type Deserializer struct {
	input []byte
	buf   *bytes.Buffer
}

// NewDeserializer wraps input for reading. The returned Deserializer
// holds a reference to input; callers must not mutate it afterward.
func NewDeserializer(input []byte) *Deserializer {
	return &Deserializer{input: input, buf: bytes.NewBuffer(input)}
}

func (d *Deserializer) DeserializeBool() (bool, error) {
	b, err := d.buf.ReadByte()
	if err != nil {
		return false, err
	}
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("bincode: invalid bool byte %d", b)
	}
}

func (d *Deserializer) DeserializeUnit() error { return nil }

func (d *Deserializer) DeserializeChar() (rune, error) {
	return 0, errors.New("bincode: Char is not implemented")
}

func (d *Deserializer) DeserializeF32() (float32, error) {
	return 0, errors.New("bincode: F32 is not implemented")
}

func (d *Deserializer) DeserializeF64() (float64, error) {
	return 0, errors.New("bincode: F64 is not implemented")
}

func (d *Deserializer) DeserializeU8() (uint8, error) {
	return d.buf.ReadByte()
}

func (d *Deserializer) DeserializeU16() (uint16, error) {
	var ret uint16
	for i := 0; i < 16; i += 8 {
		b, err := d.buf.ReadByte()
		if err != nil {
			return 0, err
		}
		ret |= uint16(b) << i
	}
	return ret, nil
}

func (d *Deserializer) DeserializeU32() (uint32, error) {
	var ret uint32
	for i := 0; i < 32; i += 8 {
		b, err := d.buf.ReadByte()
		if err != nil {
			return 0, err
		}
		ret |= uint32(b) << i
	}
	return ret, nil
}

func (d *Deserializer) DeserializeU64() (uint64, error) {
	var ret uint64
	for i := 0; i < 64; i += 8 {
		b, err := d.buf.ReadByte()
		if err != nil {
			return 0, err
		}
		ret |= uint64(b) << i
	}
	return ret, nil
}

func (d *Deserializer) DeserializeU128() (witness.Uint128, error) {
	low, err := d.DeserializeU64()
	if err != nil {
		return witness.Uint128{}, err
	}
	high, err := d.DeserializeU64()
	if err != nil {
		return witness.Uint128{}, err
	}
	return witness.Uint128{High: high, Low: low}, nil
}

func (d *Deserializer) DeserializeI8() (int8, error) {
	v, err := d.DeserializeU8()
	return int8(v), err
}

func (d *Deserializer) DeserializeI16() (int16, error) {
	v, err := d.DeserializeU16()
	return int16(v), err
}

func (d *Deserializer) DeserializeI32() (int32, error) {
	v, err := d.DeserializeU32()
	return int32(v), err
}

func (d *Deserializer) DeserializeI64() (int64, error) {
	v, err := d.DeserializeU64()
	return int64(v), err
}

func (d *Deserializer) DeserializeI128() (witness.Int128, error) {
	low, err := d.DeserializeU64()
	if err != nil {
		return witness.Int128{}, err
	}
	high, err := d.DeserializeI64()
	if err != nil {
		return witness.Int128{}, err
	}
	return witness.Int128{High: high, Low: low}, nil
}

func (d *Deserializer) DeserializeOptionTag() (bool, error) { return d.DeserializeBool() }

func (d *Deserializer) DeserializeLen() (uint64, error) {
	n, err := d.DeserializeU64()
	if err != nil {
		return 0, err
	}
	if n > MaxSequenceLength {
		return 0, errors.New("bincode: length exceeds MaxSequenceLength")
	}
	return n, nil
}

func (d *Deserializer) DeserializeVariantIndex() (uint32, error) {
	return d.DeserializeU32()
}

func (d *Deserializer) DeserializeBytes() ([]byte, error) {
	n, err := d.DeserializeLen()
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	if _, err := io.ReadFull(d.buf, out); err != nil {
		return nil, fmt.Errorf("bincode: truncated input reading %d byte(s): %w", n, err)
	}
	return out, nil
}

func (d *Deserializer) DeserializeStr() (string, error) {
	b, err := d.DeserializeBytes()
	return string(b), err
}

func (d *Deserializer) GetBufferOffset() uint64 {
	return uint64(len(d.input)) - uint64(d.buf.Len())
}

// CheckThatKeySlicesAreIncreasing never fails: Bincode has no canonical
// map ordering to enforce.
func (d *Deserializer) CheckThatKeySlicesAreIncreasing(key1, key2 witness.Slice) error {
	return nil
}
