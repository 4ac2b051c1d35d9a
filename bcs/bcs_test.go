package bcs

import (
	"bytes"
	"math"
	"testing"

	"github.com/zoobzio/witness"
)

// sequence of primitive calls a codec generated for Test{a: Seq<U64>, b:
// Tuple<U32,U32>} would make, for Test{a: [4,6], b: (3,5)}.
func writeTestStruct(s witness.Serializer) error {
	if err := s.SerializeLen(2); err != nil {
		return err
	}
	if err := s.SerializeU64(4); err != nil {
		return err
	}
	if err := s.SerializeU64(6); err != nil {
		return err
	}
	if err := s.SerializeU32(3); err != nil {
		return err
	}
	return s.SerializeU32(5)
}

func TestEncodeMatchesWorkedExample(t *testing.T) {
	s := NewSerializer()
	if err := writeTestStruct(s); err != nil {
		t.Fatalf("writeTestStruct: %v", err)
	}
	want := []byte{
		0x02,
		0x04, 0, 0, 0, 0, 0, 0, 0,
		0x06, 0, 0, 0, 0, 0, 0, 0,
		0x03, 0, 0, 0,
		0x05, 0, 0, 0,
	}
	if got := s.GetBytes(); !bytes.Equal(got, want) {
		t.Fatalf("GetBytes() = % x, want % x", got, want)
	}
}

func TestRoundTripPrimitives(t *testing.T) {
	s := NewSerializer()
	s.SerializeBool(true)
	s.SerializeI64(-12345)
	s.SerializeStr("witness")
	s.SerializeBytes([]byte{1, 2, 3})

	d := NewDeserializer(s.GetBytes())
	b, err := d.DeserializeBool()
	if err != nil || !b {
		t.Fatalf("DeserializeBool() = %v, %v", b, err)
	}
	n, err := d.DeserializeI64()
	if err != nil || n != -12345 {
		t.Fatalf("DeserializeI64() = %v, %v", n, err)
	}
	str, err := d.DeserializeStr()
	if err != nil || str != "witness" {
		t.Fatalf("DeserializeStr() = %q, %v", str, err)
	}
	bs, err := d.DeserializeBytes()
	if err != nil || !bytes.Equal(bs, []byte{1, 2, 3}) {
		t.Fatalf("DeserializeBytes() = %v, %v", bs, err)
	}
}

func TestSerializeLenRejectsOverLength(t *testing.T) {
	s := NewSerializer()
	if err := s.SerializeLen(MaxSequenceLength + 1); err == nil {
		t.Fatal("SerializeLen should reject lengths over MaxSequenceLength")
	}
}

func TestSortMapEntriesOrdersByKeyBytes(t *testing.T) {
	s := NewSerializer()
	s.SerializeLen(2)
	offsets := make([]uint64, 0, 2)

	offsets = append(offsets, s.GetBufferOffset())
	s.SerializeStr("b")
	s.SerializeU8(2)

	offsets = append(offsets, s.GetBufferOffset())
	s.SerializeStr("a")
	s.SerializeU8(1)

	s.SortMapEntries(offsets)

	d := NewDeserializer(s.GetBytes())
	n, err := d.DeserializeLen()
	if err != nil || n != 2 {
		t.Fatalf("DeserializeLen() = %v, %v", n, err)
	}
	firstKey, err := d.DeserializeStr()
	if err != nil || firstKey != "a" {
		t.Fatalf("first key after sort = %q, want %q (%v)", firstKey, "a", err)
	}
}

func TestCheckThatKeySlicesAreIncreasingRejectsOutOfOrder(t *testing.T) {
	data := []byte("ba")
	d := NewDeserializer(data)
	err := d.CheckThatKeySlicesAreIncreasing(
		witness.Slice{Start: 0, End: 1},
		witness.Slice{Start: 1, End: 2},
	)
	if err == nil {
		t.Fatal("expected an error when the second key sorts before the first")
	}
}

func TestEnterContainerEnforcesMaxDepth(t *testing.T) {
	d := NewDeserializer(nil)
	for i := 0; i < MaxContainerDepth; i++ {
		if err := d.EnterContainer(); err != nil {
			t.Fatalf("EnterContainer() at depth %d: %v", i, err)
		}
	}
	if err := d.EnterContainer(); err == nil {
		t.Fatal("expected EnterContainer to reject exceeding MaxContainerDepth")
	}
}

func TestUleb128BoundaryLengths(t *testing.T) {
	cases := []struct {
		n    uint64
		want []byte
	}{
		{0, []byte{0}},
		{1, []byte{1}},
		{127, []byte{127}},
		{128, []byte{128, 1}},
		{3000, []byte{184, 23}},
	}
	for _, c := range cases {
		s := NewSerializer()
		if err := s.SerializeLen(c.n); err != nil {
			t.Fatalf("SerializeLen(%d): %v", c.n, err)
		}
		if got := s.GetBytes(); !bytes.Equal(got, c.want) {
			t.Fatalf("SerializeLen(%d) = % x, want % x", c.n, got, c.want)
		}
	}
}

func TestUleb128DecodeRejectsOverflow(t *testing.T) {
	d := NewDeserializer([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF})
	if _, err := d.deserializeUleb128AsU32(); err == nil {
		t.Fatal("expected overflow error decoding an all-0xFF uleb128 stream")
	}
}

func TestU128BoundaryValues(t *testing.T) {
	s := NewSerializer()
	s.SerializeU128(witness.Uint128{High: ^uint64(0), Low: ^uint64(0)})
	want := bytes.Repeat([]byte{0xFF}, 16)
	if got := s.GetBytes(); !bytes.Equal(got, want) {
		t.Fatalf("u128::MAX = % x, want % x", got, want)
	}

	s2 := NewSerializer()
	s2.SerializeU128(witness.Uint128{High: 0, Low: 1})
	want2 := append([]byte{1}, bytes.Repeat([]byte{0}, 15)...)
	if got := s2.GetBytes(); !bytes.Equal(got, want2) {
		t.Fatalf("u128==1 = % x, want % x", got, want2)
	}
}

func TestI128BoundaryValues(t *testing.T) {
	s := NewSerializer()
	s.SerializeI128(witness.Int128{High: -1, Low: ^uint64(0)})
	want := bytes.Repeat([]byte{0xFF}, 16)
	if got := s.GetBytes(); !bytes.Equal(got, want) {
		t.Fatalf("i128==-1 = % x, want % x", got, want)
	}

	s2 := NewSerializer()
	s2.SerializeI128(witness.Int128{High: math.MinInt64, Low: 0})
	want2 := append(bytes.Repeat([]byte{0}, 15), 0x80)
	if got := s2.GetBytes(); !bytes.Equal(got, want2) {
		t.Fatalf("i128==-2^127 = % x, want % x", got, want2)
	}
}

func TestSortMapEntriesWorkedExample(t *testing.T) {
	data := []byte{255, 1, 0, 0, 0, 1, 0, 0, 0, 2, 0, 0, 0}
	s := &Serializer{}
	s.buf.Write(data)
	s.SortMapEntries([]uint64{1, 2, 4, 7, 8, 9})
	want := []byte{255, 0, 0, 0, 0, 0, 1, 0, 1, 2, 0, 0, 0}
	if got := s.GetBytes(); !bytes.Equal(got, want) {
		t.Fatalf("SortMapEntries() = % x, want % x", got, want)
	}
}

func TestUleb128RoundTripsVariantIndex(t *testing.T) {
	for _, idx := range []uint32{0, 1, 127, 128, 16384, 1<<32 - 1} {
		s := NewSerializer()
		if err := s.SerializeVariantIndex(idx); err != nil {
			t.Fatalf("SerializeVariantIndex(%d): %v", idx, err)
		}
		d := NewDeserializer(s.GetBytes())
		got, err := d.DeserializeVariantIndex()
		if err != nil {
			t.Fatalf("DeserializeVariantIndex() after encoding %d: %v", idx, err)
		}
		if got != idx {
			t.Fatalf("round trip of %d produced %d", idx, got)
		}
	}
}
