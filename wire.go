package witness

// Uint128 and Int128 stand in for Go's missing 128-bit integer types, split
// into high and low 64-bit halves so the little-endian wire layout falls
// out of two ordinary fixed-width writes.
type Uint128 struct {
	High uint64
	Low  uint64
}

type Int128 struct {
	High int64
	Low  uint64
}

// Slice marks a byte range in a deserializer's input buffer, used by BCS's
// map-ordering check to compare two already-read keys without copying
// them.
type Slice struct {
	Start uint64
	End   uint64
}

// Serializer is the bit-exact wire contract a binary codec must implement.
// bcs.Serializer and bincode.Serializer both satisfy it; real values are
// driven through it by [EncodeValue]. Serialization tracing does not use
// it: the tracer walks values by reflection and records formats directly.
type Serializer interface {
	SerializeBool(value bool) error
	SerializeI8(value int8) error
	SerializeI16(value int16) error
	SerializeI32(value int32) error
	SerializeI64(value int64) error
	SerializeI128(value Int128) error
	SerializeU8(value uint8) error
	SerializeU16(value uint16) error
	SerializeU32(value uint32) error
	SerializeU64(value uint64) error
	SerializeU128(value Uint128) error
	SerializeF32(value float32) error
	SerializeF64(value float64) error
	SerializeChar(value rune) error
	SerializeStr(value string) error
	SerializeBytes(value []byte) error
	SerializeUnit() error
	SerializeOptionTag(value bool) error
	SerializeLen(value uint64) error
	SerializeVariantIndex(value uint32) error

	// GetBufferOffset reports the current write position, used by BCS to
	// record where each map entry begins.
	GetBufferOffset() uint64

	// SortMapEntries reorders the byte ranges starting at each of offsets
	// (up to the next offset or end of buffer) into strictly increasing
	// lexicographic order of their encoded bytes. Bincode's implementation
	// is a no-op; BCS's is not.
	SortMapEntries(offsets []uint64)

	GetBytes() []byte
}

// Deserializer is the read-side counterpart of [Serializer].
type Deserializer interface {
	DeserializeBool() (bool, error)
	DeserializeI8() (int8, error)
	DeserializeI16() (int16, error)
	DeserializeI32() (int32, error)
	DeserializeI64() (int64, error)
	DeserializeI128() (Int128, error)
	DeserializeU8() (uint8, error)
	DeserializeU16() (uint16, error)
	DeserializeU32() (uint32, error)
	DeserializeU64() (uint64, error)
	DeserializeU128() (Uint128, error)
	DeserializeF32() (float32, error)
	DeserializeF64() (float64, error)
	DeserializeChar() (rune, error)
	DeserializeStr() (string, error)
	DeserializeBytes() ([]byte, error)
	DeserializeUnit() error
	DeserializeOptionTag() (bool, error)
	DeserializeLen() (uint64, error)
	DeserializeVariantIndex() (uint32, error)

	GetBufferOffset() uint64

	// CheckThatKeySlicesAreIncreasing enforces BCS's strict map ordering
	// at decode time; Bincode's implementation always returns nil.
	CheckThatKeySlicesAreIncreasing(key1, key2 Slice) error
}

// Codec is a content-type-aware binary (de)serializer over arbitrary Go
// values, matching the Marshal/Unmarshal shape of a self-describing codec
// but backed by a [Serializer]/[Deserializer] pair instead. bcs.New() and
// bincode.New() both return a Codec.
type Codec interface {
	ContentType() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// DepthLimiter is implemented by a [Deserializer] that caps how many
// nested structs and enum variants a single decode may cross. BCS
// implements it to guard against a maliciously deep input exhausting the
// call stack; Bincode does not bother, matching the upstream runtimes.
type DepthLimiter interface {
	EnterContainer() error
	ExitContainer()
}

// RegistryCodec marshals a finalized [Registry] to and from the textual
// wire grammar: containers keyed by name, primitives as bare type tags,
// composites as single-key maps. witness/yaml and witness/json implement
// it.
type RegistryCodec interface {
	Marshal(r *Registry) ([]byte, error)
	Unmarshal(data []byte) (*Registry, error)
}
