package witness

import "sort"

// Registry is the ordered mapping from container name to [ContainerFormat]
// that a [Tracer] produces. Iteration order follows insertion
// order (the order containers were first observed) so downstream
// consumers produce stable output; [Registry.SortedNames] is offered
// separately for the lexicographic order the textual wire format
// requires.
type Registry struct {
	order   []string
	entries map[string]ContainerFormat
}

// NewRegistry returns an empty, writable registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]ContainerFormat)}
}

// clone returns a shallow copy of r: Bind on the copy never mutates r,
// which is how a [Tracer] stages a trace call's registry updates and
// commits them only once the whole call has succeeded, so a failed trace
// call leaves the Tracer's committed registry untouched.
func (r *Registry) clone() *Registry {
	out := &Registry{
		order:   make([]string, len(r.order)),
		entries: make(map[string]ContainerFormat, len(r.entries)),
	}
	copy(out.order, r.order)
	for k, v := range r.entries {
		out.entries[k] = v
	}
	return out
}

// Bind unifies shape into the entry for name, creating the entry if this
// is the first observation. Bind fails with a [NameCollisionError] if the
// existing and new shapes cannot be reconciled.
func (r *Registry) Bind(name string, shape ContainerFormat) error {
	existing, ok := r.entries[name]
	if !ok {
		r.order = append(r.order, name)
		r.entries[name] = shape
		return nil
	}
	merged, err := unifyContainer(existing, shape)
	if err != nil {
		return &NameCollisionError{Name: name, Existing: existing, New: shape, Cause: err}
	}
	r.entries[name] = merged
	return nil
}

// Get returns the container format bound to name.
func (r *Registry) Get(name string) (ContainerFormat, bool) {
	cf, ok := r.entries[name]
	return cf, ok
}

// Names returns container names in insertion order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// SortedNames returns container names sorted lexicographically, matching
// the deterministic output order the textual wire format requires.
func (r *Registry) SortedNames() []string {
	out := r.Names()
	sort.Strings(out)
	return out
}

// Len reports the number of bound containers.
func (r *Registry) Len() int { return len(r.order) }

// Finalize normalizes every format reachable from every entry, checks
// that no Variable placeholder survives, that every TypeName resolves to
// a bound container, and that every Enum has at least one fully-discovered
// variant with no gaps in its index space. It returns a new read-only
// Registry on success; the receiver is left untouched so a failed
// finalization can be retried after more tracing.
func (r *Registry) Finalize() (*Registry, error) {
	out := NewRegistry()
	for _, name := range r.order {
		cf, err := normalizeContainer(r.entries[name])
		if err != nil {
			return nil, &FinalizationError{Err: ErrUnknownFormatInContainer, Container: name, Detail: err.Error()}
		}
		if cf.Kind == ContainerEnum {
			if err := validateEnum(cf); err != nil {
				return nil, &FinalizationError{Err: ErrMissingVariants, Container: name, Detail: err.Error()}
			}
		}
		out.order = append(out.order, name)
		out.entries[name] = cf
	}
	for _, name := range out.order {
		if err := checkNamedReferences(out, out.entries[name]); err != nil {
			return nil, &FinalizationError{Err: ErrUnknownNamedType, Container: name, Detail: err.Error()}
		}
	}
	return out, nil
}

func unifyContainer(a, b ContainerFormat) (ContainerFormat, error) {
	if a.Kind != b.Kind {
		return ContainerFormat{}, &IncompatibilityError{Reason: a.Kind.String() + " is not " + b.Kind.String()}
	}
	switch a.Kind {
	case ContainerUnitStruct:
		return a, nil
	case ContainerNewTypeStruct:
		inner, err := unify(*a.NewType, *b.NewType, "")
		if err != nil {
			return ContainerFormat{}, err
		}
		return NewTypeStructFormat(inner), nil
	case ContainerTupleStruct:
		if len(a.Tuple) != len(b.Tuple) {
			return ContainerFormat{}, &IncompatibilityError{Reason: "tuple struct arity mismatch"}
		}
		elements := make([]Format, len(a.Tuple))
		for i := range a.Tuple {
			u, err := unify(a.Tuple[i], b.Tuple[i], "")
			if err != nil {
				return ContainerFormat{}, err
			}
			elements[i] = u
		}
		return TupleStructFormat(elements...), nil
	case ContainerStruct:
		if len(a.Fields) != len(b.Fields) {
			return ContainerFormat{}, &IncompatibilityError{Reason: "struct field count mismatch"}
		}
		fields := make([]NamedField, len(a.Fields))
		for i := range a.Fields {
			if a.Fields[i].Name != b.Fields[i].Name {
				return ContainerFormat{}, &IncompatibilityError{Reason: "struct field name mismatch: " + a.Fields[i].Name + " vs " + b.Fields[i].Name}
			}
			u, err := unify(a.Fields[i].Format, b.Fields[i].Format, a.Fields[i].Name)
			if err != nil {
				return ContainerFormat{}, err
			}
			fields[i] = NamedField{Name: a.Fields[i].Name, Format: u}
		}
		return StructFormat(fields...), nil
	case ContainerEnum:
		merged := make(map[uint32]Variant, len(a.Variants))
		for idx, v := range a.Variants {
			merged[idx] = v
		}
		for idx, v := range b.Variants {
			existing, ok := merged[idx]
			if !ok {
				merged[idx] = v
				continue
			}
			uv, err := unifyVariant(existing, v)
			if err != nil {
				return ContainerFormat{}, err
			}
			merged[idx] = uv
		}
		return EnumFormat(merged), nil
	default:
		return a, nil
	}
}

func unifyVariant(a, b Variant) (Variant, error) {
	if a.Kind == variantUndiscovered {
		return b, nil
	}
	if b.Kind == variantUndiscovered {
		return a, nil
	}
	if a.Name != b.Name {
		return Variant{}, &IncompatibilityError{Reason: "variant name mismatch: " + a.Name + " vs " + b.Name}
	}
	if a.Kind != b.Kind {
		return Variant{}, &IncompatibilityError{Reason: "variant shape mismatch for " + a.Name}
	}
	switch a.Kind {
	case VariantUnit:
		return a, nil
	case VariantNewType:
		u, err := unify(*a.NewType, *b.NewType, a.Name)
		if err != nil {
			return Variant{}, err
		}
		return Variant{Name: a.Name, Kind: VariantNewType, NewType: &u}, nil
	case VariantTuple:
		if len(a.Tuple) != len(b.Tuple) {
			return Variant{}, &IncompatibilityError{Reason: "variant tuple arity mismatch for " + a.Name}
		}
		elements := make([]Format, len(a.Tuple))
		for i := range a.Tuple {
			u, err := unify(a.Tuple[i], b.Tuple[i], a.Name)
			if err != nil {
				return Variant{}, err
			}
			elements[i] = u
		}
		return Variant{Name: a.Name, Kind: VariantTuple, Tuple: elements}, nil
	case VariantStruct:
		if len(a.Fields) != len(b.Fields) {
			return Variant{}, &IncompatibilityError{Reason: "variant struct field count mismatch for " + a.Name}
		}
		fields := make([]NamedField, len(a.Fields))
		for i := range a.Fields {
			u, err := unify(a.Fields[i].Format, b.Fields[i].Format, a.Name+"."+a.Fields[i].Name)
			if err != nil {
				return Variant{}, err
			}
			fields[i] = NamedField{Name: a.Fields[i].Name, Format: u}
		}
		return Variant{Name: a.Name, Kind: VariantStruct, Fields: fields}, nil
	default:
		return a, nil
	}
}

func normalizeContainer(cf ContainerFormat) (ContainerFormat, error) {
	switch cf.Kind {
	case ContainerUnitStruct:
		return cf, nil
	case ContainerNewTypeStruct:
		inner, err := Normalize(*cf.NewType)
		if err != nil {
			return ContainerFormat{}, err
		}
		return NewTypeStructFormat(inner), nil
	case ContainerTupleStruct:
		out := make([]Format, len(cf.Tuple))
		for i, f := range cf.Tuple {
			n, err := Normalize(f)
			if err != nil {
				return ContainerFormat{}, err
			}
			out[i] = n
		}
		return TupleStructFormat(out...), nil
	case ContainerStruct:
		out := make([]NamedField, len(cf.Fields))
		for i, f := range cf.Fields {
			n, err := Normalize(f.Format)
			if err != nil {
				return ContainerFormat{}, err
			}
			out[i] = NamedField{Name: f.Name, Format: n}
		}
		return StructFormat(out...), nil
	case ContainerEnum:
		out := make(map[uint32]Variant, len(cf.Variants))
		for idx, v := range cf.Variants {
			nv, err := normalizeVariant(v)
			if err != nil {
				return ContainerFormat{}, err
			}
			out[idx] = nv
		}
		return EnumFormat(out), nil
	default:
		return cf, nil
	}
}

func normalizeVariant(v Variant) (Variant, error) {
	switch v.Kind {
	case VariantUnit:
		return v, nil
	case VariantNewType:
		n, err := Normalize(*v.NewType)
		if err != nil {
			return Variant{}, err
		}
		return Variant{Name: v.Name, Kind: VariantNewType, NewType: &n}, nil
	case VariantTuple:
		out := make([]Format, len(v.Tuple))
		for i, f := range v.Tuple {
			n, err := Normalize(f)
			if err != nil {
				return Variant{}, err
			}
			out[i] = n
		}
		return Variant{Name: v.Name, Kind: VariantTuple, Tuple: out}, nil
	case VariantStruct:
		out := make([]NamedField, len(v.Fields))
		for i, f := range v.Fields {
			n, err := Normalize(f.Format)
			if err != nil {
				return Variant{}, err
			}
			out[i] = NamedField{Name: f.Name, Format: n}
		}
		return Variant{Name: v.Name, Kind: VariantStruct, Fields: out}, nil
	default:
		return Variant{}, &FinalizationError{Err: ErrMissingVariants, Detail: "variant " + v.Name + " never fully discovered"}
	}
}

func validateEnum(cf ContainerFormat) error {
	if len(cf.Variants) == 0 {
		return ErrMissingVariants
	}
	names := make(map[string]bool, len(cf.Variants))
	var max uint32
	for idx, v := range cf.Variants {
		if idx > max {
			max = idx
		}
		if names[v.Name] {
			return &IncompatibilityError{Reason: "duplicate variant name " + v.Name}
		}
		names[v.Name] = true
	}
	for i := uint32(0); i <= max; i++ {
		if _, ok := cf.Variants[i]; !ok {
			return &FinalizationError{Err: ErrMissingVariants, Detail: "index gap at " + itoa(i)}
		}
	}
	return nil
}

func checkNamedReferences(r *Registry, cf ContainerFormat) error {
	switch cf.Kind {
	case ContainerNewTypeStruct:
		return checkFormatReferences(r, *cf.NewType)
	case ContainerTupleStruct:
		for _, f := range cf.Tuple {
			if err := checkFormatReferences(r, f); err != nil {
				return err
			}
		}
	case ContainerStruct:
		for _, f := range cf.Fields {
			if err := checkFormatReferences(r, f.Format); err != nil {
				return err
			}
		}
	case ContainerEnum:
		for _, v := range cf.Variants {
			switch v.Kind {
			case VariantNewType:
				if err := checkFormatReferences(r, *v.NewType); err != nil {
					return err
				}
			case VariantTuple:
				for _, f := range v.Tuple {
					if err := checkFormatReferences(r, f); err != nil {
						return err
					}
				}
			case VariantStruct:
				for _, f := range v.Fields {
					if err := checkFormatReferences(r, f.Format); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}

func checkFormatReferences(r *Registry, f Format) error {
	switch f.kind {
	case KindTypeName:
		if _, ok := r.entries[f.name]; !ok {
			return &FinalizationError{Err: ErrUnknownNamedType, Detail: f.name}
		}
	case KindOption, KindSeq, KindTupleArray:
		return checkFormatReferences(r, *f.elem)
	case KindMap:
		if err := checkFormatReferences(r, *f.key); err != nil {
			return err
		}
		return checkFormatReferences(r, *f.value)
	case KindTuple:
		for _, e := range f.elements {
			if err := checkFormatReferences(r, e); err != nil {
				return err
			}
		}
	}
	return nil
}

func itoa(u uint32) string {
	if u == 0 {
		return "0"
	}
	var buf [10]byte
	i := len(buf)
	for u > 0 {
		i--
		buf[i] = byte('0' + u%10)
		u /= 10
	}
	return string(buf[i:])
}
