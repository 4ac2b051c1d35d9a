package bcs

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/zoobzio/witness"
)

const maxUint32 = uint64(^uint32(0))

// Deserializer reads values out of a fixed input buffer using BCS's
// fixed-width little-endian integers, ULEB128 length/variant prefixes,
// and strict map key ordering.
type Deserializer struct {
	input []byte
	buf   *bytes.Buffer
	depth int
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
		return false, fmt.Errorf("bcs: invalid bool byte %d", b)
	}
}

func (d *Deserializer) DeserializeUnit() error { return nil }

func (d *Deserializer) DeserializeChar() (rune, error) {
	return 0, errors.New("bcs: Char is not implemented")
}

func (d *Deserializer) DeserializeF32() (float32, error) {
	return 0, errors.New("bcs: F32 is not implemented")
}

func (d *Deserializer) DeserializeF64() (float64, error) {
	return 0, errors.New("bcs: F64 is not implemented")
}

func (d *Deserializer) DeserializeU8() (uint8, error) {
	b, err := d.buf.ReadByte()
	return b, err
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
	ret, err := d.deserializeUleb128AsU32()
	if err != nil {
		return 0, err
	}
	if uint64(ret) > MaxSequenceLength {
		return 0, errors.New("bcs: length exceeds MaxSequenceLength")
	}
	return uint64(ret), nil
}

func (d *Deserializer) DeserializeVariantIndex() (uint32, error) {
	return d.deserializeUleb128AsU32()
}

func (d *Deserializer) DeserializeBytes() ([]byte, error) {
	n, err := d.DeserializeLen()
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	if _, err := io.ReadFull(d.buf, out); err != nil {
		return nil, fmt.Errorf("bcs: truncated input reading %d byte(s): %w", n, err)
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

// CheckThatKeySlicesAreIncreasing enforces BCS's canonical map encoding
// rule: the byte ranges of successive keys, as they appeared on the wire,
// must be strictly increasing lexicographically.
func (d *Deserializer) CheckThatKeySlicesAreIncreasing(key1, key2 witness.Slice) error {
	if bytes.Compare(d.input[key1.Start:key1.End], d.input[key2.Start:key2.End]) >= 0 {
		return errors.New("bcs: map keys are not serialized in increasing order")
	}
	return nil
}

// EnterContainer and ExitContainer implement [witness.DepthLimiter],
// rejecting input nested deeper than MaxContainerDepth structs or enum
// variants so a crafted input cannot exhaust the call stack.
func (d *Deserializer) EnterContainer() error {
	d.depth++
	if d.depth > MaxContainerDepth {
		return errors.New("bcs: exceeded MaxContainerDepth")
	}
	return nil
}

func (d *Deserializer) ExitContainer() { d.depth-- }

func (d *Deserializer) deserializeUleb128AsU32() (uint32, error) {
	var value uint64
	for shift := 0; shift < 32; shift += 7 {
		b, err := d.buf.ReadByte()
		if err != nil {
			return 0, err
		}
		digit := b & 0x7f
		value |= uint64(digit) << shift
		if value > maxUint32 {
			return 0, errors.New("bcs: overflow decoding uleb128 u32")
		}
		if digit == b {
			if shift > 0 && digit == 0 {
				return 0, errors.New("bcs: invalid uleb128 (unexpected zero digit)")
			}
			return uint32(value), nil
		}
	}
	return 0, errors.New("bcs: overflow decoding uleb128 u32")
}
