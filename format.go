// Package witness traces the binary-serialization shape implied by
// user-defined Go types and encodes/decodes values against that shape using
// the BCS and Bincode wire contracts.
//
// # Tracing
//
// A [Tracer] walks a value (serialization tracing) or a reflect.Type
// (deserialization tracing) and accumulates a [Registry] of named
// [ContainerFormat] entries. Deserialization tracing synthesizes witness
// values as it goes, so recursive and enum-shaped types terminate
// deterministically without the caller providing a value.
//
// # Codecs
//
// The github.com/zoobzio/witness/bcs and github.com/zoobzio/witness/bincode
// subpackages implement the [Serializer] and [Deserializer] contracts this
// package defines, and github.com/zoobzio/witness/yaml and
// github.com/zoobzio/witness/json implement [RegistryCodec], so a traced
// [Registry] and the bytes it describes stay interoperable across
// encodings without either codec knowing about the other.
package witness

import "fmt"

// Kind discriminates the variants of [Format]. Kind is a closed sum: every
// Format carries exactly one Kind and only the fields that Kind allows are
// meaningful.
type Kind uint8

const (
	KindUnit Kind = iota
	KindBool
	KindI8
	KindI16
	KindI32
	KindI64
	KindI128
	KindU8
	KindU16
	KindU32
	KindU64
	KindU128
	KindF32
	KindF64
	KindChar
	KindStr
	KindBytes
	KindOption
	KindSeq
	KindMap
	KindTuple
	KindTupleArray
	KindTypeName
	KindVariable
)

func (k Kind) String() string {
	switch k {
	case KindUnit:
		return "Unit"
	case KindBool:
		return "Bool"
	case KindI8:
		return "I8"
	case KindI16:
		return "I16"
	case KindI32:
		return "I32"
	case KindI64:
		return "I64"
	case KindI128:
		return "I128"
	case KindU8:
		return "U8"
	case KindU16:
		return "U16"
	case KindU32:
		return "U32"
	case KindU64:
		return "U64"
	case KindU128:
		return "U128"
	case KindF32:
		return "F32"
	case KindF64:
		return "F64"
	case KindChar:
		return "Char"
	case KindStr:
		return "Str"
	case KindBytes:
		return "Bytes"
	case KindOption:
		return "Option"
	case KindSeq:
		return "Seq"
	case KindMap:
		return "Map"
	case KindTuple:
		return "Tuple"
	case KindTupleArray:
		return "TupleArray"
	case KindTypeName:
		return "TypeName"
	case KindVariable:
		return "Variable"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// isPrimitive reports whether k names one of the fixed-shape primitives
// that carries no payload of its own.
func (k Kind) isPrimitive() bool {
	return k >= KindUnit && k <= KindBytes
}

// Format is a partially or fully known wire shape. Only the fields implied
// by Kind are populated; callers should use the accessor methods rather
// than reading fields directly when the Kind is not already known.
type Format struct {
	kind Kind

	// KindOption, KindSeq: the element format.
	elem *Format

	// KindMap.
	key   *Format
	value *Format

	// KindTuple, KindTupleArray (content).
	elements []Format

	// KindTupleArray.
	size uint64

	// KindTypeName.
	name string

	// KindVariable: index into the owning resolver's arena.
	varID    int
	resolver *resolver
}

// Primitive constructors. Each returns a fully-resolved Format with no
// payload beyond its Kind.
func Unit() Format       { return Format{kind: KindUnit} }
func Bool() Format       { return Format{kind: KindBool} }
func I8Format() Format   { return Format{kind: KindI8} }
func I16Format() Format  { return Format{kind: KindI16} }
func I32Format() Format  { return Format{kind: KindI32} }
func I64Format() Format  { return Format{kind: KindI64} }
func I128Format() Format { return Format{kind: KindI128} }
func U8Format() Format   { return Format{kind: KindU8} }
func U16Format() Format  { return Format{kind: KindU16} }
func U32Format() Format  { return Format{kind: KindU32} }
func U64Format() Format  { return Format{kind: KindU64} }
func U128Format() Format { return Format{kind: KindU128} }
func F32Format() Format  { return Format{kind: KindF32} }
func F64Format() Format  { return Format{kind: KindF64} }
func CharFormat() Format { return Format{kind: KindChar} }
func Str() Format        { return Format{kind: KindStr} }
func Bytes() Format      { return Format{kind: KindBytes} }

// OptionFormat builds Option(inner).
func OptionFormat(inner Format) Format {
	return Format{kind: KindOption, elem: &inner}
}

// SeqFormat builds Seq(inner).
func SeqFormat(inner Format) Format {
	return Format{kind: KindSeq, elem: &inner}
}

// MapFormat builds Map{key, value}.
func MapFormat(key, value Format) Format {
	return Format{kind: KindMap, key: &key, value: &value}
}

// TupleFormat builds Tuple([elements]).
func TupleFormat(elements ...Format) Format {
	return Format{kind: KindTuple, elements: elements}
}

// TupleArrayFormat builds TupleArray{content, size}.
func TupleArrayFormat(content Format, size uint64) Format {
	return Format{kind: KindTupleArray, elem: &content, size: size}
}

// TypeNameFormat builds a named reference to a container in the registry.
func TypeNameFormat(name string) Format {
	return Format{kind: KindTypeName, name: name}
}

// Kind returns the format's discriminant.
func (f Format) Kind() Kind { return f.kind }

// Elem returns the element format for Option, Seq, and TupleArray. It
// panics if Kind does not carry an element.
func (f Format) Elem() Format {
	switch f.kind {
	case KindOption, KindSeq, KindTupleArray:
		return *f.elem
	default:
		panic(fmt.Sprintf("witness: Elem() on %s format", f.kind))
	}
}

// KeyValue returns the key and value formats for Map. It panics otherwise.
func (f Format) KeyValue() (Format, Format) {
	if f.kind != KindMap {
		panic(fmt.Sprintf("witness: KeyValue() on %s format", f.kind))
	}
	return *f.key, *f.value
}

// Elements returns the member formats for Tuple. It panics otherwise.
func (f Format) Elements() []Format {
	if f.kind != KindTuple {
		panic(fmt.Sprintf("witness: Elements() on %s format", f.kind))
	}
	return f.elements
}

// Size returns the fixed length of a TupleArray. It panics otherwise.
func (f Format) Size() uint64 {
	if f.kind != KindTupleArray {
		panic(fmt.Sprintf("witness: Size() on %s format", f.kind))
	}
	return f.size
}

// Name returns the referenced container name for TypeName. It panics
// otherwise.
func (f Format) Name() string {
	if f.kind != KindTypeName {
		panic(fmt.Sprintf("witness: Name() on %s format", f.kind))
	}
	return f.name
}

// IsVariable reports whether f is an unresolved placeholder cell.
func (f Format) IsVariable() bool { return f.kind == KindVariable }

func (f Format) String() string {
	switch f.kind {
	case KindOption:
		return fmt.Sprintf("Option(%s)", f.elem)
	case KindSeq:
		return fmt.Sprintf("Seq(%s)", f.elem)
	case KindMap:
		return fmt.Sprintf("Map{%s, %s}", f.key, f.value)
	case KindTuple:
		return fmt.Sprintf("Tuple(%v)", f.elements)
	case KindTupleArray:
		return fmt.Sprintf("TupleArray{%s, %d}", f.elem, f.size)
	case KindTypeName:
		return fmt.Sprintf("TypeName(%s)", f.name)
	case KindVariable:
		return fmt.Sprintf("Variable(%d)", f.varID)
	default:
		return f.kind.String()
	}
}
