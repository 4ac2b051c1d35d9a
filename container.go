package witness

// ContainerKind discriminates the shapes a named container can take.
type ContainerKind uint8

const (
	ContainerUnitStruct ContainerKind = iota
	ContainerNewTypeStruct
	ContainerTupleStruct
	ContainerStruct
	ContainerEnum
)

func (k ContainerKind) String() string {
	switch k {
	case ContainerUnitStruct:
		return "UnitStruct"
	case ContainerNewTypeStruct:
		return "NewTypeStruct"
	case ContainerTupleStruct:
		return "TupleStruct"
	case ContainerStruct:
		return "Struct"
	case ContainerEnum:
		return "Enum"
	default:
		return "Unknown"
	}
}

// NamedField pairs a declared field name with its format, preserving the
// declaration order a Struct or Struct-shaped variant requires.
type NamedField struct {
	Name   string
	Format Format
}

// ContainerFormat is the traced shape of one named container.
type ContainerFormat struct {
	Kind ContainerKind

	// ContainerNewTypeStruct.
	NewType *Format

	// ContainerTupleStruct.
	Tuple []Format

	// ContainerStruct.
	Fields []NamedField

	// ContainerEnum, keyed by variant index. A map is used (rather than a
	// slice) because variant indices may be discovered out of order across
	// repeated trace_type_once passes; Registry.Finalize validates that
	// the index space has no gaps once tracing is complete.
	Variants map[uint32]Variant
}

// VariantKind discriminates the shapes an enum variant can take.
type VariantKind uint8

const (
	VariantUnit VariantKind = iota
	VariantNewType
	VariantTuple
	VariantStruct
	variantUndiscovered // internal placeholder; never exposed after Finalize
)

// Variant is one case of an Enum container.
type Variant struct {
	Name string
	Kind VariantKind

	NewType *Format
	Tuple   []Format
	Fields  []NamedField
}

// UnitStructFormat returns a zero-field container.
func UnitStructFormat() ContainerFormat {
	return ContainerFormat{Kind: ContainerUnitStruct}
}

// NewTypeStructFormat wraps a single inner format. Per the registry
// invariant, inner must not be Unit; use UnitStructFormat instead.
func NewTypeStructFormat(inner Format) ContainerFormat {
	return ContainerFormat{Kind: ContainerNewTypeStruct, NewType: &inner}
}

// TupleStructFormat wraps an ordered list of unnamed fields.
func TupleStructFormat(elements ...Format) ContainerFormat {
	return ContainerFormat{Kind: ContainerTupleStruct, Tuple: elements}
}

// StructFormat wraps an ordered list of named fields.
func StructFormat(fields ...NamedField) ContainerFormat {
	return ContainerFormat{Kind: ContainerStruct, Fields: fields}
}

// EnumFormat wraps a variant-index-keyed mapping.
func EnumFormat(variants map[uint32]Variant) ContainerFormat {
	return ContainerFormat{Kind: ContainerEnum, Variants: variants}
}
