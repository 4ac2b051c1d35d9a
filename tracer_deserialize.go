package witness

import (
	"fmt"
	"reflect"
)

// Validator marks a type whose deserialization is expected to reject
// arbitrary field values — a newtype wrapping a ranged integer, a struct
// with a cross-field invariant. The deserialization tracer does not
// synthesize these directly: it looks up a witness the serialization
// tracer recorded in the SamplesStore and retraces that value's shape
// instead.
type Validator interface {
	Validate() error
}

var validatorType = reflect.TypeOf((*Validator)(nil)).Elem()

func implementsValidator(t reflect.Type) bool {
	return t.Implements(validatorType) || reflect.PtrTo(t).Implements(validatorType)
}

// synthesizeType returns the Format implied by t, fabricating field and
// element values as needed rather than requiring a caller-supplied
// instance. This lets a deserialization tracer name a type's shape,
// including the shapes of types it has never seen a concrete value of.
func (s *session) synthesizeType(t reflect.Type) (Format, error) {
	if t == reflect.TypeOf(Uint128{}) {
		return U128Format(), nil
	}
	if t == reflect.TypeOf(Int128{}) {
		return I128Format(), nil
	}
	if t.Kind() == reflect.Interface {
		return s.synthesizeEnum(t)
	}
	if name := t.Name(); name != "" && implementsValidator(t) {
		return s.synthesizeFromSample(name)
	}
	if t.Name() != "" && t.PkgPath() != "" && isScalarKind(t.Kind()) {
		inner, err := s.synthesizeScalar(t)
		if err != nil {
			return Format{}, err
		}
		if err := s.bindNewTypeShape(t.Name(), inner); err != nil {
			return Format{}, err
		}
		return TypeNameFormat(t.Name()), nil
	}
	if t.Kind() == reflect.Struct {
		return s.synthesizeStruct(t)
	}
	return s.synthesizeComposite(t)
}

// synthesizeFromSample retraces a previously recorded witness value for
// name through the serialization tracer, which both produces the Format
// and re-binds any container the sample touches.
func (s *session) synthesizeFromSample(name string) (Format, error) {
	sample, ok := s.samples.Lookup(name)
	if !ok {
		return Format{}, &SampleRequiredError{Container: name, Cause: ErrSampleRequired}
	}
	return s.traceValue(sample)
}

func (s *session) synthesizeScalar(t reflect.Type) (Format, error) {
	switch t.Kind() {
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
		return Format{}, fmt.Errorf("witness: %s is not a scalar kind", t.Kind())
	}
}

func (s *session) synthesizeComposite(t reflect.Type) (Format, error) {
	switch t.Kind() {
	case reflect.Ptr:
		inner, err := s.synthesizeType(t.Elem())
		if err != nil {
			return Format{}, err
		}
		return OptionFormat(inner), nil

	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return Bytes(), nil
		}
		inner, err := s.synthesizeType(t.Elem())
		if err != nil {
			return Format{}, err
		}
		return SeqFormat(inner), nil

	case reflect.Array:
		inner, err := s.synthesizeType(t.Elem())
		if err != nil {
			return Format{}, err
		}
		return TupleArrayFormat(inner, uint64(t.Len())), nil

	case reflect.Map:
		key, err := s.synthesizeType(t.Key())
		if err != nil {
			return Format{}, err
		}
		value, err := s.synthesizeType(t.Elem())
		if err != nil {
			return Format{}, err
		}
		return MapFormat(key, value), nil

	default:
		return s.synthesizeScalar(t)
	}
}

// synthesizeStruct mirrors traceStruct's classifyStruct dispatch, but a
// struct reached twice in the same pass (direct recursion through a
// pointer or slice field, rather than through an enum) just returns its
// own TypeName: the outer call is still in the middle of binding that
// container's shape, so recursing into it again would loop forever for
// no new information.
func (s *session) synthesizeStruct(t reflect.Type) (Format, error) {
	name := t.Name()
	if s.stack[name] {
		return TypeNameFormat(name), nil
	}
	s.stack[name] = true
	defer delete(s.stack, name)

	shape := classifyStruct(t)
	switch shape.kind {
	case structShapeUnit:
		if _, existed := s.registry.Get(name); !existed {
			s.discoveredNew = true
		}
		if err := s.bind(name, UnitStructFormat()); err != nil {
			return Format{}, err
		}
		return TypeNameFormat(name), nil

	case structShapeNewType:
		inner, err := s.synthesizeType(t.Field(shape.fields[0]).Type)
		if err != nil {
			return Format{}, err
		}
		if err := s.bindNewTypeShape(name, inner); err != nil {
			return Format{}, err
		}
		return TypeNameFormat(name), nil

	default:
		fields := make([]NamedField, len(shape.fields))
		for i, idx := range shape.fields {
			f, err := s.synthesizeType(t.Field(idx).Type)
			if err != nil {
				return Format{}, err
			}
			fields[i] = NamedField{Name: t.Field(idx).Name, Format: f}
		}
		if _, existed := s.registry.Get(name); !existed {
			s.discoveredNew = true
		}
		if err := s.bind(name, StructFormat(fields...)); err != nil {
			return Format{}, err
		}
		return TypeNameFormat(name), nil
	}
}

func (s *session) bindNewTypeShape(name string, inner Format) error {
	if inner.Kind() == KindUnit {
		return fmt.Errorf("witness: NewTypeStruct %s must not wrap Unit", name)
	}
	existed := false
	if _, ok := s.registry.Get(name); ok {
		existed = true
	}
	if err := s.bind(name, NewTypeStructFormat(inner)); err != nil {
		return err
	}
	if !existed {
		s.discoveredNew = true
	}
	return nil
}

// synthesizeEnum resolves the registered variants of an enum-shaped
// interface type. The first pass to reach this container synthesizes
// every registered variant it can without recursing back into itself; a
// pass that reaches the same container again while still inside that
// first synthesis (the variant bodies are mutually recursive with the
// interface itself) synthesizes only the base-case variant — variants[0]
// in [Config.RegisterEnum]'s ordering — to terminate, matching the design
// note "base-case ordering for recursive enums."
func (s *session) synthesizeEnum(t reflect.Type) (Format, error) {
	spec, ok := s.cfg.lookupEnum(t)
	if !ok || len(spec.variants) == 0 {
		return Format{}, fmt.Errorf("witness: %s has no registered variants, call Config.RegisterEnum", t)
	}

	name := t.Name()
	variants := make(map[uint32]Variant)
	if existing, ok := s.registry.Get(name); ok {
		for idx, v := range existing.Variants {
			variants[idx] = v
		}
	}

	recursing := s.stack[name]
	s.stack[name] = true
	if !recursing {
		defer delete(s.stack, name)
	}

	toSynthesize := spec.variants
	if recursing {
		toSynthesize = spec.variants[:1]
	}
	for _, ev := range toSynthesize {
		idx := ev.VariantIndex()
		if _, ok := variants[idx]; ok {
			continue
		}
		variant, err := s.synthesizeVariantBody(reflect.TypeOf(ev))
		if err != nil {
			return Format{}, err
		}
		variant.Name = ev.VariantName()
		variants[idx] = variant
		s.discoveredNew = true
		emitVariantDiscovered(s.ctx, name, variant.Name, idx)
	}

	if err := s.bind(name, EnumFormat(variants)); err != nil {
		return Format{}, err
	}
	return TypeNameFormat(name), nil
}

func (s *session) synthesizeVariantBody(t reflect.Type) (Variant, error) {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	shape := classifyStruct(t)
	switch shape.kind {
	case structShapeUnit:
		return Variant{Kind: VariantUnit}, nil
	case structShapeNewType:
		inner, err := s.synthesizeType(t.Field(shape.fields[0]).Type)
		if err != nil {
			return Variant{}, err
		}
		return Variant{Kind: VariantNewType, NewType: &inner}, nil
	default:
		fields := make([]NamedField, len(shape.fields))
		for i, idx := range shape.fields {
			f, err := s.synthesizeType(t.Field(idx).Type)
			if err != nil {
				return Variant{}, err
			}
			fields[i] = NamedField{Name: t.Field(idx).Name, Format: f}
		}
		return Variant{Kind: VariantStruct, Fields: fields}, nil
	}
}
