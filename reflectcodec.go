package witness

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/zoobzio/sentinel"
)

var enumValueType = reflect.TypeOf((*EnumValue)(nil)).Elem()

// EncodeValue drives s through the wire encoding of v, using reflection to
// decide which Serializer calls a Go value implies. bcs.Codec and
// bincode.Codec both build their Marshal method on top of this so the
// reflective decomposition rules are shared between both wire formats
// rather than duplicated per codec.
func EncodeValue(s Serializer, v reflect.Value) error {
	for v.Kind() == reflect.Interface && !v.IsNil() {
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Bool:
		return s.SerializeBool(v.Bool())
	case reflect.Int8:
		return s.SerializeI8(int8(v.Int()))
	case reflect.Int16:
		return s.SerializeI16(int16(v.Int()))
	case reflect.Int32:
		return s.SerializeI32(int32(v.Int()))
	case reflect.Int64, reflect.Int:
		return s.SerializeI64(v.Int())
	case reflect.Uint8:
		return s.SerializeU8(uint8(v.Uint()))
	case reflect.Uint16:
		return s.SerializeU16(uint16(v.Uint()))
	case reflect.Uint32:
		return s.SerializeU32(uint32(v.Uint()))
	case reflect.Uint64, reflect.Uint:
		return s.SerializeU64(v.Uint())
	case reflect.Float32:
		return s.SerializeF32(float32(v.Float()))
	case reflect.Float64:
		return s.SerializeF64(v.Float())
	case reflect.String:
		return s.SerializeStr(v.String())
	case reflect.Ptr:
		if v.IsNil() {
			return s.SerializeOptionTag(false)
		}
		if err := s.SerializeOptionTag(true); err != nil {
			return err
		}
		return EncodeValue(s, v.Elem())
	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return s.SerializeBytes(v.Bytes())
		}
		if err := s.SerializeLen(uint64(v.Len())); err != nil {
			return err
		}
		for i := 0; i < v.Len(); i++ {
			if err := EncodeValue(s, v.Index(i)); err != nil {
				return err
			}
		}
		return nil
	case reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if err := EncodeValue(s, v.Index(i)); err != nil {
				return err
			}
		}
		return nil
	case reflect.Map:
		keys := v.MapKeys()
		if err := s.SerializeLen(uint64(len(keys))); err != nil {
			return err
		}
		offsets := make([]uint64, len(keys))
		for i, k := range keys {
			offsets[i] = s.GetBufferOffset()
			if err := EncodeValue(s, k); err != nil {
				return err
			}
			if err := EncodeValue(s, v.MapIndex(k)); err != nil {
				return err
			}
		}
		s.SortMapEntries(offsets)
		return nil
	case reflect.Struct:
		if v.Type() == reflect.TypeOf(Uint128{}) {
			u := v.Interface().(Uint128)
			return s.SerializeU128(u)
		}
		if v.Type() == reflect.TypeOf(Int128{}) {
			n := v.Interface().(Int128)
			return s.SerializeI128(n)
		}
		return encodeStructBody(s, v)
	case reflect.Invalid:
		return s.SerializeUnit()
	default:
		return fmt.Errorf("witness: cannot encode kind %s", v.Kind())
	}
}

// encodeStructBody writes a struct's fields in declaration order. A
// zero-exported-field struct encodes as Unit; a single field named Value
// encodes as a newtype (no length or tag, just the inner value), matching
// how [classifyStruct] reports the same struct to the tracer.
func encodeStructBody(s Serializer, v reflect.Value) error {
	if v.Type().Implements(enumValueType) || reflect.PtrTo(v.Type()).Implements(enumValueType) {
		ev := asEnumValue(v)
		if err := s.SerializeVariantIndex(ev.VariantIndex()); err != nil {
			return err
		}
	}
	shape := classifyStruct(v.Type())
	switch shape.kind {
	case structShapeUnit:
		return nil
	case structShapeNewType:
		return EncodeValue(s, v.Field(shape.fields[0]))
	default:
		for _, idx := range shape.fields {
			if err := EncodeValue(s, v.Field(idx)); err != nil {
				return err
			}
		}
		return nil
	}
}

func asEnumValue(v reflect.Value) EnumValue {
	if v.Type().Implements(enumValueType) {
		return v.Interface().(EnumValue)
	}
	return v.Addr().Interface().(EnumValue)
}

// DecodeValue is the read-side counterpart of [EncodeValue]: it allocates
// and fills a value of type t by reading from d.
func DecodeValue(d Deserializer, t reflect.Type) (reflect.Value, error) {
	switch t.Kind() {
	case reflect.Bool:
		b, err := d.DeserializeBool()
		return reflect.ValueOf(b), err
	case reflect.Int8:
		n, err := d.DeserializeI8()
		return reflect.ValueOf(n).Convert(t), err
	case reflect.Int16:
		n, err := d.DeserializeI16()
		return reflect.ValueOf(n).Convert(t), err
	case reflect.Int32:
		n, err := d.DeserializeI32()
		return reflect.ValueOf(n).Convert(t), err
	case reflect.Int64, reflect.Int:
		n, err := d.DeserializeI64()
		return reflect.ValueOf(n).Convert(t), err
	case reflect.Uint8:
		n, err := d.DeserializeU8()
		return reflect.ValueOf(n).Convert(t), err
	case reflect.Uint16:
		n, err := d.DeserializeU16()
		return reflect.ValueOf(n).Convert(t), err
	case reflect.Uint32:
		n, err := d.DeserializeU32()
		return reflect.ValueOf(n).Convert(t), err
	case reflect.Uint64, reflect.Uint:
		n, err := d.DeserializeU64()
		return reflect.ValueOf(n).Convert(t), err
	case reflect.Float32:
		n, err := d.DeserializeF32()
		return reflect.ValueOf(n).Convert(t), err
	case reflect.Float64:
		n, err := d.DeserializeF64()
		return reflect.ValueOf(n).Convert(t), err
	case reflect.String:
		str, err := d.DeserializeStr()
		return reflect.ValueOf(str).Convert(t), err
	case reflect.Ptr:
		tag, err := d.DeserializeOptionTag()
		if err != nil {
			return reflect.Value{}, err
		}
		if !tag {
			return reflect.Zero(t), nil
		}
		inner, err := DecodeValue(d, t.Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		ptr := reflect.New(t.Elem())
		ptr.Elem().Set(inner)
		return ptr, nil
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			b, err := d.DeserializeBytes()
			return reflect.ValueOf(b).Convert(t), err
		}
		n, err := d.DeserializeLen()
		if err != nil {
			return reflect.Value{}, err
		}
		out := reflect.MakeSlice(t, int(n), int(n))
		for i := 0; i < int(n); i++ {
			elem, err := DecodeValue(d, t.Elem())
			if err != nil {
				return reflect.Value{}, err
			}
			out.Index(i).Set(elem)
		}
		return out, nil
	case reflect.Array:
		out := reflect.New(t).Elem()
		for i := 0; i < t.Len(); i++ {
			elem, err := DecodeValue(d, t.Elem())
			if err != nil {
				return reflect.Value{}, err
			}
			out.Index(i).Set(elem)
		}
		return out, nil
	case reflect.Map:
		n, err := d.DeserializeLen()
		if err != nil {
			return reflect.Value{}, err
		}
		out := reflect.MakeMapWithSize(t, int(n))
		var prev Slice
		havePrev := false
		for i := 0; i < int(n); i++ {
			start := d.GetBufferOffset()
			key, err := DecodeValue(d, t.Key())
			if err != nil {
				return reflect.Value{}, err
			}
			keyEnd := d.GetBufferOffset()
			value, err := DecodeValue(d, t.Elem())
			if err != nil {
				return reflect.Value{}, err
			}
			cur := Slice{Start: start, End: keyEnd}
			if havePrev {
				if err := d.CheckThatKeySlicesAreIncreasing(prev, cur); err != nil {
					return reflect.Value{}, err
				}
			}
			prev, havePrev = cur, true
			out.SetMapIndex(key, value)
		}
		return out, nil
	case reflect.Struct:
		if t == reflect.TypeOf(Uint128{}) {
			u, err := d.DeserializeU128()
			return reflect.ValueOf(u), err
		}
		if t == reflect.TypeOf(Int128{}) {
			n, err := d.DeserializeI128()
			return reflect.ValueOf(n), err
		}
		return decodeStructBody(d, t)
	default:
		return reflect.Value{}, fmt.Errorf("witness: cannot decode kind %s", t.Kind())
	}
}

func decodeStructBody(d Deserializer, t reflect.Type) (reflect.Value, error) {
	if dl, ok := d.(DepthLimiter); ok {
		if err := dl.EnterContainer(); err != nil {
			return reflect.Value{}, err
		}
		defer dl.ExitContainer()
	}

	out := reflect.New(t).Elem()
	ptrType := reflect.PtrTo(t)
	if ptrType.Implements(enumValueType) {
		if _, err := d.DeserializeVariantIndex(); err != nil {
			return reflect.Value{}, err
		}
	}
	shape := classifyStruct(t)
	switch shape.kind {
	case structShapeUnit:
		return out, nil
	case structShapeNewType:
		v, err := DecodeValue(d, t.Field(shape.fields[0]).Type)
		if err != nil {
			return reflect.Value{}, err
		}
		out.Field(shape.fields[0]).Set(v)
		return out, nil
	default:
		for _, idx := range shape.fields {
			v, err := DecodeValue(d, t.Field(idx).Type)
			if err != nil {
				return reflect.Value{}, err
			}
			out.Field(idx).Set(v)
		}
		return out, nil
	}
}

type structShapeKind uint8

const (
	structShapeUnit structShapeKind = iota
	structShapeNewType
	structShapeNamed
)

type structShape struct {
	kind   structShapeKind
	fields []int // exported field indices, in declaration order
}

// classifyStruct decides how a struct type maps onto a [ContainerFormat]
// shape: zero exported fields is a UnitStruct, a single field literally
// named Value is a NewTypeStruct (the Go rendering of a Rust newtype
// struct), and anything else is a Struct of named fields. See DESIGN.md's
// Open Question decision for the rationale.
func classifyStruct(t reflect.Type) structShape {
	fields := exportedFieldIndices(t)
	switch {
	case len(fields) == 0:
		return structShape{kind: structShapeUnit}
	case len(fields) == 1 && t.Field(fields[0]).Name == "Value":
		return structShape{kind: structShapeNewType, fields: fields}
	default:
		return structShape{kind: structShapeNamed, fields: fields}
	}
}

// exportedFieldIndices lists t's exported field indices in declaration
// order. TraceSimpleType, TraceTypeOnce, and TraceType each call
// sentinel.Scan for their type parameter before reaching here, so for a
// struct traced through any of those entry points sentinel's cached
// metadata is reused instead of walking reflect.Type again; a struct
// traced repeatedly only pays the reflection cost of listing its exported
// fields once.
func exportedFieldIndices(t reflect.Type) []int {
	if meta, ok := sentinel.Lookup(t.String()); ok {
		fields := make([]int, 0, len(meta.Fields))
		for _, fm := range meta.Fields {
			if len(fm.Index) == 1 {
				fields = append(fields, fm.Index[0])
			}
		}
		if len(fields) > 0 {
			return fields
		}
	}
	var fields []int
	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).IsExported() {
			fields = append(fields, i)
		}
	}
	return fields
}

// sortedMapKeys returns v's map keys ordered by their String() form; used
// only by tracing (which has no encoded byte representation to sort by
// yet) to keep witness generation deterministic.
func sortedMapKeys(v reflect.Value) []reflect.Value {
	keys := v.MapKeys()
	sort.Slice(keys, func(i, j int) bool {
		return fmt.Sprint(keys[i].Interface()) < fmt.Sprint(keys[j].Interface())
	})
	return keys
}
