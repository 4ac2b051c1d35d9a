package witness

import (
	"fmt"
	"strings"
)

// FormatToValue converts f into a generic, marshaler-agnostic
// representation of the textual registry wire format: primitives are bare
// strings, composites are single-key maps. witness/yaml and witness/json
// both build their Marshal on top of this so the grammar itself is
// specified once.
func FormatToValue(f Format) any {
	switch f.Kind() {
	case KindOption:
		return map[string]any{"OPTION": FormatToValue(f.Elem())}
	case KindSeq:
		return map[string]any{"SEQ": FormatToValue(f.Elem())}
	case KindMap:
		key, value := f.KeyValue()
		return map[string]any{"MAP": map[string]any{
			"KEY":   FormatToValue(key),
			"VALUE": FormatToValue(value),
		}}
	case KindTuple:
		elements := f.Elements()
		out := make([]any, len(elements))
		for i, e := range elements {
			out[i] = FormatToValue(e)
		}
		return map[string]any{"TUPLE": out}
	case KindTupleArray:
		return map[string]any{"TUPLEARRAY": map[string]any{
			"CONTENT": FormatToValue(f.Elem()),
			"SIZE":    f.Size(),
		}}
	case KindTypeName:
		return map[string]any{"TYPENAME": f.Name()}
	default:
		return strings.ToUpper(f.Kind().String())
	}
}

// FormatFromValue is the inverse of [FormatToValue].
func FormatFromValue(v any) (Format, error) {
	switch val := v.(type) {
	case string:
		return primitiveFormatFromName(val)
	case map[string]any:
		for key, inner := range val {
			switch key {
			case "OPTION":
				elem, err := FormatFromValue(inner)
				if err != nil {
					return Format{}, err
				}
				return OptionFormat(elem), nil
			case "SEQ":
				elem, err := FormatFromValue(inner)
				if err != nil {
					return Format{}, err
				}
				return SeqFormat(elem), nil
			case "MAP":
				m, ok := inner.(map[string]any)
				if !ok {
					return Format{}, fmt.Errorf("witness: MAP value must be a mapping")
				}
				key, err := FormatFromValue(m["KEY"])
				if err != nil {
					return Format{}, err
				}
				value, err := FormatFromValue(m["VALUE"])
				if err != nil {
					return Format{}, err
				}
				return MapFormat(key, value), nil
			case "TUPLE":
				list, ok := inner.([]any)
				if !ok {
					return Format{}, fmt.Errorf("witness: TUPLE value must be a sequence")
				}
				elements := make([]Format, len(list))
				for i, e := range list {
					f, err := FormatFromValue(e)
					if err != nil {
						return Format{}, err
					}
					elements[i] = f
				}
				return TupleFormat(elements...), nil
			case "TUPLEARRAY":
				m, ok := inner.(map[string]any)
				if !ok {
					return Format{}, fmt.Errorf("witness: TUPLEARRAY value must be a mapping")
				}
				content, err := FormatFromValue(m["CONTENT"])
				if err != nil {
					return Format{}, err
				}
				size, err := toUint64(m["SIZE"])
				if err != nil {
					return Format{}, err
				}
				return TupleArrayFormat(content, size), nil
			case "TYPENAME":
				name, ok := inner.(string)
				if !ok {
					return Format{}, fmt.Errorf("witness: TYPENAME value must be a string")
				}
				return TypeNameFormat(name), nil
			}
		}
		return Format{}, fmt.Errorf("witness: unrecognized format mapping %v", val)
	default:
		return Format{}, fmt.Errorf("witness: unrecognized format value %v", v)
	}
}

func primitiveFormatFromName(name string) (Format, error) {
	switch name {
	case "UNIT":
		return Unit(), nil
	case "BOOL":
		return Bool(), nil
	case "I8":
		return I8Format(), nil
	case "I16":
		return I16Format(), nil
	case "I32":
		return I32Format(), nil
	case "I64":
		return I64Format(), nil
	case "I128":
		return I128Format(), nil
	case "U8":
		return U8Format(), nil
	case "U16":
		return U16Format(), nil
	case "U32":
		return U32Format(), nil
	case "U64":
		return U64Format(), nil
	case "U128":
		return U128Format(), nil
	case "F32":
		return F32Format(), nil
	case "F64":
		return F64Format(), nil
	case "CHAR":
		return CharFormat(), nil
	case "STR":
		return Str(), nil
	case "BYTES":
		return Bytes(), nil
	default:
		return Format{}, fmt.Errorf("witness: unrecognized primitive format %q", name)
	}
}

// ContainerFormatToValue converts cf into the generic representation used
// for a registry entry in the textual wire format.
func ContainerFormatToValue(cf ContainerFormat) any {
	switch cf.Kind {
	case ContainerUnitStruct:
		return "UNIT_STRUCT"
	case ContainerNewTypeStruct:
		return map[string]any{"NEWTYPE_STRUCT": FormatToValue(*cf.NewType)}
	case ContainerTupleStruct:
		out := make([]any, len(cf.Tuple))
		for i, f := range cf.Tuple {
			out[i] = FormatToValue(f)
		}
		return map[string]any{"TUPLE_STRUCT": out}
	case ContainerStruct:
		out := make([]any, len(cf.Fields))
		for i, f := range cf.Fields {
			out[i] = map[string]any{f.Name: FormatToValue(f.Format)}
		}
		return map[string]any{"STRUCT": out}
	case ContainerEnum:
		variants := make(map[string]any, len(cf.Variants))
		for idx, v := range cf.Variants {
			variants[itoa(idx)] = map[string]any{v.Name: variantToValue(v)}
		}
		return map[string]any{"ENUM": variants}
	default:
		return nil
	}
}

func variantToValue(v Variant) any {
	switch v.Kind {
	case VariantUnit:
		return "UNIT"
	case VariantNewType:
		return map[string]any{"NEWTYPE": FormatToValue(*v.NewType)}
	case VariantTuple:
		out := make([]any, len(v.Tuple))
		for i, f := range v.Tuple {
			out[i] = FormatToValue(f)
		}
		return map[string]any{"TUPLE": out}
	case VariantStruct:
		out := make([]any, len(v.Fields))
		for i, f := range v.Fields {
			out[i] = map[string]any{f.Name: FormatToValue(f.Format)}
		}
		return map[string]any{"STRUCT": out}
	default:
		return nil
	}
}

// ContainerFormatFromValue is the inverse of [ContainerFormatToValue].
func ContainerFormatFromValue(v any) (ContainerFormat, error) {
	switch val := v.(type) {
	case string:
		if val == "UNIT_STRUCT" {
			return UnitStructFormat(), nil
		}
		return ContainerFormat{}, fmt.Errorf("witness: unrecognized container value %q", val)
	case map[string]any:
		for key, inner := range val {
			switch key {
			case "NEWTYPE_STRUCT":
				f, err := FormatFromValue(inner)
				if err != nil {
					return ContainerFormat{}, err
				}
				return NewTypeStructFormat(f), nil
			case "TUPLE_STRUCT":
				list, ok := inner.([]any)
				if !ok {
					return ContainerFormat{}, fmt.Errorf("witness: TUPLE_STRUCT value must be a sequence")
				}
				elements := make([]Format, len(list))
				for i, e := range list {
					f, err := FormatFromValue(e)
					if err != nil {
						return ContainerFormat{}, err
					}
					elements[i] = f
				}
				return TupleStructFormat(elements...), nil
			case "STRUCT":
				fields, err := namedFieldsFromValue(inner)
				if err != nil {
					return ContainerFormat{}, err
				}
				return StructFormat(fields...), nil
			case "ENUM":
				m, ok := inner.(map[string]any)
				if !ok {
					return ContainerFormat{}, fmt.Errorf("witness: ENUM value must be a mapping")
				}
				variants := make(map[uint32]Variant, len(m))
				for idxStr, vInner := range m {
					idx, err := parseUint32(idxStr)
					if err != nil {
						return ContainerFormat{}, err
					}
					vm, ok := vInner.(map[string]any)
					if !ok {
						return ContainerFormat{}, fmt.Errorf("witness: ENUM variant %s value must be a mapping", idxStr)
					}
					for name, body := range vm {
						variant, err := variantFromValue(name, body)
						if err != nil {
							return ContainerFormat{}, err
						}
						variants[idx] = variant
					}
				}
				return EnumFormat(variants), nil
			}
		}
		return ContainerFormat{}, fmt.Errorf("witness: unrecognized container mapping %v", val)
	default:
		return ContainerFormat{}, fmt.Errorf("witness: unrecognized container value %v", v)
	}
}

func namedFieldsFromValue(v any) ([]NamedField, error) {
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("witness: field list must be a sequence")
	}
	fields := make([]NamedField, len(list))
	for i, item := range list {
		m, ok := item.(map[string]any)
		if !ok || len(m) != 1 {
			return nil, fmt.Errorf("witness: field entry must be a single-key mapping")
		}
		for name, body := range m {
			f, err := FormatFromValue(body)
			if err != nil {
				return nil, err
			}
			fields[i] = NamedField{Name: name, Format: f}
		}
	}
	return fields, nil
}

func variantFromValue(name string, v any) (Variant, error) {
	switch val := v.(type) {
	case string:
		if val == "UNIT" {
			return Variant{Name: name, Kind: VariantUnit}, nil
		}
		return Variant{}, fmt.Errorf("witness: unrecognized variant value %q", val)
	case map[string]any:
		for key, inner := range val {
			switch key {
			case "NEWTYPE":
				f, err := FormatFromValue(inner)
				if err != nil {
					return Variant{}, err
				}
				return Variant{Name: name, Kind: VariantNewType, NewType: &f}, nil
			case "TUPLE":
				list, ok := inner.([]any)
				if !ok {
					return Variant{}, fmt.Errorf("witness: variant TUPLE value must be a sequence")
				}
				elements := make([]Format, len(list))
				for i, e := range list {
					f, err := FormatFromValue(e)
					if err != nil {
						return Variant{}, err
					}
					elements[i] = f
				}
				return Variant{Name: name, Kind: VariantTuple, Tuple: elements}, nil
			case "STRUCT":
				fields, err := namedFieldsFromValue(inner)
				if err != nil {
					return Variant{}, err
				}
				return Variant{Name: name, Kind: VariantStruct, Fields: fields}, nil
			}
		}
		return Variant{}, fmt.Errorf("witness: unrecognized variant mapping %v", val)
	default:
		return Variant{}, fmt.Errorf("witness: unrecognized variant value %v", v)
	}
}

// RegistryEntry pairs a container name with its [ContainerFormatToValue]
// representation, preserving the order [RegistryEntries] returns them in.
type RegistryEntry struct {
	Name  string
	Value any
}

// RegistryEntries returns r's containers in the order the textual wire
// format requires: sorted lexicographically by name so two encodings of
// the same registry are byte-identical regardless of trace order.
// witness/yaml marshals this slice directly to preserve that order, since
// yaml.v3's generic map type does not; witness/json copies it into a map
// and relies on encoding/json sorting map keys.
func RegistryEntries(r *Registry) []RegistryEntry {
	names := r.SortedNames()
	out := make([]RegistryEntry, len(names))
	for i, name := range names {
		cf, _ := r.Get(name)
		out[i] = RegistryEntry{Name: name, Value: ContainerFormatToValue(cf)}
	}
	return out
}

// RegistryFromEntries rebuilds an (unfinalized) Registry from parsed
// name/value pairs. Callers that need the named-type and variant-gap
// checks should call [Registry.Finalize] on the result.
func RegistryFromEntries(entries []RegistryEntry) (*Registry, error) {
	r := NewRegistry()
	for _, e := range entries {
		cf, err := ContainerFormatFromValue(e.Value)
		if err != nil {
			return nil, fmt.Errorf("witness: container %q: %w", e.Name, err)
		}
		if err := r.Bind(e.Name, cf); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func toUint64(v any) (uint64, error) {
	switch n := v.(type) {
	case uint64:
		return n, nil
	case int:
		return uint64(n), nil
	case int64:
		return uint64(n), nil
	case float64:
		return uint64(n), nil
	default:
		return 0, fmt.Errorf("witness: expected a number, got %v", v)
	}
}

func parseUint32(s string) (uint32, error) {
	var n uint64
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("witness: %q is not a variant index", s)
		}
		n = n*10 + uint64(c-'0')
		if n > uint64(^uint32(0)) {
			return 0, fmt.Errorf("witness: variant index %q overflows uint32", s)
		}
	}
	return uint32(n), nil
}
