package witness

import (
	"fmt"
	"reflect"
)

// traceValue walks v — an arbitrary Go value — recording the Format at
// this position and, for every named container it passes through,
// unifying that container's shape into the session's registry. Rather than
// a trait the tracer implements once per user type, reflection lets one
// function drive the whole open-ended set of user types directly.
func (s *session) traceValue(v reflect.Value) (Format, error) {
	if v.Kind() == reflect.Interface {
		if v.IsNil() {
			return Format{}, fmt.Errorf("witness: cannot trace a nil interface value")
		}
		return s.traceEnum(v.Type(), v.Elem())
	}

	t := v.Type()
	if t == reflect.TypeOf(Uint128{}) {
		return U128Format(), nil
	}
	if t == reflect.TypeOf(Int128{}) {
		return I128Format(), nil
	}

	if t.Name() != "" && t.PkgPath() != "" && isScalarKind(t.Kind()) {
		inner, err := s.traceScalar(v)
		if err != nil {
			return Format{}, err
		}
		if err := s.bindNewType(t.Name(), inner, v); err != nil {
			return Format{}, err
		}
		return TypeNameFormat(t.Name()), nil
	}

	if t.Kind() == reflect.Struct {
		return s.traceStruct(t, v)
	}

	return s.traceComposite(v)
}

func isScalarKind(k reflect.Kind) bool {
	switch k {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64,
		reflect.String:
		return true
	default:
		return false
	}
}

func (s *session) traceScalar(v reflect.Value) (Format, error) {
	switch v.Kind() {
	case reflect.Bool:
		return Bool(), nil
	case reflect.Int8:
		return I8Format(), nil
	case reflect.Int16:
		return I16Format(), nil
	case reflect.Int32:
		return I32Format(), nil
	case reflect.Int64:
		return I64Format(), nil
	case reflect.Int:
		return s.cfg.defaultI64(), nil
	case reflect.Uint8:
		return U8Format(), nil
	case reflect.Uint16:
		return U16Format(), nil
	case reflect.Uint32:
		return U32Format(), nil
	case reflect.Uint64:
		return U64Format(), nil
	case reflect.Uint:
		return s.cfg.defaultU64(), nil
	case reflect.Float32:
		return F32Format(), nil
	case reflect.Float64:
		return F64Format(), nil
	case reflect.String:
		return Str(), nil
	default:
		return Format{}, fmt.Errorf("witness: %s is not a scalar kind", v.Kind())
	}
}

func (s *session) traceComposite(v reflect.Value) (Format, error) {
	switch v.Kind() {
	case reflect.Ptr:
		if v.IsNil() {
			return OptionFormat(s.resolver.variable()), nil
		}
		inner, err := s.traceValue(v.Elem())
		if err != nil {
			return Format{}, err
		}
		return OptionFormat(inner), nil

	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return Bytes(), nil
		}
		if v.Len() == 0 {
			return SeqFormat(s.resolver.variable()), nil
		}
		elemFmt, err := s.traceValue(v.Index(0))
		if err != nil {
			return Format{}, err
		}
		for i := 1; i < v.Len(); i++ {
			f, err := s.traceValue(v.Index(i))
			if err != nil {
				return Format{}, err
			}
			if err := Unify(&elemFmt, f); err != nil {
				return Format{}, err
			}
		}
		return SeqFormat(elemFmt), nil

	case reflect.Array:
		if v.Len() == 0 {
			return TupleArrayFormat(s.resolver.variable(), 0), nil
		}
		elemFmt, err := s.traceValue(v.Index(0))
		if err != nil {
			return Format{}, err
		}
		for i := 1; i < v.Len(); i++ {
			f, err := s.traceValue(v.Index(i))
			if err != nil {
				return Format{}, err
			}
			if err := Unify(&elemFmt, f); err != nil {
				return Format{}, err
			}
		}
		return TupleArrayFormat(elemFmt, uint64(v.Len())), nil

	case reflect.Map:
		keys := sortedMapKeys(v)
		if len(keys) == 0 {
			return MapFormat(s.resolver.variable(), s.resolver.variable()), nil
		}
		keyFmt, err := s.traceValue(keys[0])
		if err != nil {
			return Format{}, err
		}
		valFmt, err := s.traceValue(v.MapIndex(keys[0]))
		if err != nil {
			return Format{}, err
		}
		for _, k := range keys[1:] {
			kf, err := s.traceValue(k)
			if err != nil {
				return Format{}, err
			}
			if err := Unify(&keyFmt, kf); err != nil {
				return Format{}, err
			}
			vf, err := s.traceValue(v.MapIndex(k))
			if err != nil {
				return Format{}, err
			}
			if err := Unify(&valFmt, vf); err != nil {
				return Format{}, err
			}
		}
		return MapFormat(keyFmt, valFmt), nil

	default:
		return s.traceScalar(v)
	}
}

func (s *session) traceStruct(t reflect.Type, v reflect.Value) (Format, error) {
	shape := classifyStruct(t)
	switch shape.kind {
	case structShapeUnit:
		if err := s.bind(t.Name(), UnitStructFormat()); err != nil {
			return Format{}, err
		}
		if s.cfg.RecordSampleForUnitStruct {
			s.samples.recordValue(t.Name(), v)
		}
		return TypeNameFormat(t.Name()), nil

	case structShapeNewType:
		inner, err := s.traceValue(v.Field(shape.fields[0]))
		if err != nil {
			return Format{}, err
		}
		if err := s.bindNewType(t.Name(), inner, v); err != nil {
			return Format{}, err
		}
		return TypeNameFormat(t.Name()), nil

	default:
		fields := make([]NamedField, len(shape.fields))
		for i, idx := range shape.fields {
			f, err := s.traceValue(v.Field(idx))
			if err != nil {
				return Format{}, err
			}
			fields[i] = NamedField{Name: t.Field(idx).Name, Format: f}
		}
		if err := s.bind(t.Name(), StructFormat(fields...)); err != nil {
			return Format{}, err
		}
		if s.cfg.RecordSampleForStruct {
			s.samples.recordValue(t.Name(), v)
		}
		return TypeNameFormat(t.Name()), nil
	}
}

func (s *session) bindNewType(name string, inner Format, v reflect.Value) error {
	if inner.Kind() == KindUnit {
		return fmt.Errorf("witness: NewTypeStruct %s must not wrap Unit", name)
	}
	if err := s.bind(name, NewTypeStructFormat(inner)); err != nil {
		return err
	}
	if s.cfg.RecordSampleForNewTypeStruct {
		s.samples.recordValue(name, v)
	}
	return nil
}

func (s *session) traceEnum(ifaceType reflect.Type, concrete reflect.Value) (Format, error) {
	ev, ok := concreteEnumValue(concrete)
	if !ok {
		return Format{}, fmt.Errorf("witness: %s does not implement EnumValue", concrete.Type())
	}
	variant, err := s.traceVariantBody(concrete)
	if err != nil {
		return Format{}, err
	}
	variant.Name = ev.VariantName()
	name := ifaceType.Name()

	isNew := true
	if existing, ok := s.registry.Get(name); ok {
		if _, ok := existing.Variants[ev.VariantIndex()]; ok {
			isNew = false
		}
	}

	cf := EnumFormat(map[uint32]Variant{ev.VariantIndex(): variant})
	if err := s.bind(name, cf); err != nil {
		return Format{}, err
	}
	if isNew {
		emitVariantDiscovered(s.ctx, name, variant.Name, ev.VariantIndex())
	}
	return TypeNameFormat(name), nil
}

func (s *session) traceVariantBody(v reflect.Value) (Variant, error) {
	t := v.Type()
	shape := classifyStruct(t)
	switch shape.kind {
	case structShapeUnit:
		return Variant{Kind: VariantUnit}, nil
	case structShapeNewType:
		inner, err := s.traceValue(v.Field(shape.fields[0]))
		if err != nil {
			return Variant{}, err
		}
		return Variant{Kind: VariantNewType, NewType: &inner}, nil
	default:
		fields := make([]NamedField, len(shape.fields))
		for i, idx := range shape.fields {
			f, err := s.traceValue(v.Field(idx))
			if err != nil {
				return Variant{}, err
			}
			fields[i] = NamedField{Name: t.Field(idx).Name, Format: f}
		}
		return Variant{Kind: VariantStruct, Fields: fields}, nil
	}
}

func concreteEnumValue(v reflect.Value) (EnumValue, bool) {
	if v.Type().Implements(enumValueType) {
		return v.Interface().(EnumValue), true
	}
	if v.CanAddr() && reflect.PtrTo(v.Type()).Implements(enumValueType) {
		return v.Addr().Interface().(EnumValue), true
	}
	return nil, false
}
