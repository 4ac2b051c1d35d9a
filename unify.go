package witness

import "fmt"

// IncompatibilityError reports that two partial observations of the same
// wire position could not be reconciled.
type IncompatibilityError struct {
	Position string // human-readable path to the conflicting position
	Reason   string
	A, B     Format
}

func (e *IncompatibilityError) Error() string {
	if e.Position == "" {
		return fmt.Sprintf("incompatible formats: %s", e.Reason)
	}
	return fmt.Sprintf("incompatible formats at %s: %s", e.Position, e.Reason)
}

func (e *IncompatibilityError) Unwrap() error { return ErrIncompatibleFormat }

// Unify updates a in place to the least upper bound of a and b, or returns
// an [IncompatibilityError]. Unify is commutative and idempotent: unifying
// the same pair twice leaves a unchanged the second time.
func Unify(a *Format, b Format) error {
	unified, err := unify(*a, b, "")
	if err != nil {
		return err
	}
	*a = unified
	return nil
}

func unify(a, b Format, path string) (Format, error) {
	a = chase(a)
	b = chase(b)

	if a.kind == KindVariable && b.kind == KindVariable && a.resolver == b.resolver && a.varID == b.varID {
		return a, nil
	}
	if a.kind == KindVariable {
		if b.kind == KindVariable {
			// Bind one variable to the other; direction is arbitrary but
			// deterministic (the lower id is bound to the higher) so
			// repeated unification is idempotent.
			if a.varID <= b.varID {
				if err := a.resolver.bind(a.varID, b); err != nil {
					return Format{}, err
				}
				return b, nil
			}
			if err := b.resolver.bind(b.varID, a); err != nil {
				return Format{}, err
			}
			return a, nil
		}
		if err := a.resolver.bind(a.varID, b); err != nil {
			return Format{}, err
		}
		return b, nil
	}
	if b.kind == KindVariable {
		if err := b.resolver.bind(b.varID, a); err != nil {
			return Format{}, err
		}
		return a, nil
	}

	if a.kind != b.kind {
		return Format{}, &IncompatibilityError{
			Position: path,
			Reason:   fmt.Sprintf("%s is not %s", a.kind, b.kind),
			A:        a, B: b,
		}
	}

	switch a.kind {
	case KindTypeName:
		if a.name != b.name {
			return Format{}, &IncompatibilityError{
				Position: path,
				Reason:   fmt.Sprintf("TypeName(%s) is not TypeName(%s)", a.name, b.name),
				A:        a, B: b,
			}
		}
		return a, nil

	case KindOption, KindSeq:
		elem, err := unify(*a.elem, *b.elem, path+".elem")
		if err != nil {
			return Format{}, err
		}
		return Format{kind: a.kind, elem: &elem}, nil

	case KindTupleArray:
		if a.size != b.size {
			return Format{}, &IncompatibilityError{
				Position: path,
				Reason:   fmt.Sprintf("TupleArray size %d is not %d", a.size, b.size),
				A:        a, B: b,
			}
		}
		elem, err := unify(*a.elem, *b.elem, path+".elem")
		if err != nil {
			return Format{}, err
		}
		return Format{kind: KindTupleArray, elem: &elem, size: a.size}, nil

	case KindMap:
		key, err := unify(*a.key, *b.key, path+".key")
		if err != nil {
			return Format{}, err
		}
		value, err := unify(*a.value, *b.value, path+".value")
		if err != nil {
			return Format{}, err
		}
		return Format{kind: KindMap, key: &key, value: &value}, nil

	case KindTuple:
		if len(a.elements) != len(b.elements) {
			return Format{}, &IncompatibilityError{
				Position: path,
				Reason:   fmt.Sprintf("tuple arity %d is not %d", len(a.elements), len(b.elements)),
				A:        a, B: b,
			}
		}
		elements := make([]Format, len(a.elements))
		for i := range a.elements {
			u, err := unify(a.elements[i], b.elements[i], fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return Format{}, err
			}
			elements[i] = u
		}
		return Format{kind: KindTuple, elements: elements}, nil

	default:
		// Identical primitives unify to themselves.
		return a, nil
	}
}

// Normalize chases every Variable cell reachable from f to its current
// resolution and returns an error naming the first unresolved cell found.
func Normalize(f Format) (Format, error) {
	f = chase(f)
	if f.kind == KindVariable {
		return Format{}, &FinalizationError{
			Err:    ErrUnknownFormatInContainer,
			Detail: fmt.Sprintf("unresolved variable %d", f.varID),
		}
	}
	switch f.kind {
	case KindOption, KindSeq, KindTupleArray:
		elem, err := Normalize(*f.elem)
		if err != nil {
			return Format{}, err
		}
		f.elem = &elem
	case KindMap:
		key, err := Normalize(*f.key)
		if err != nil {
			return Format{}, err
		}
		value, err := Normalize(*f.value)
		if err != nil {
			return Format{}, err
		}
		f.key, f.value = &key, &value
	case KindTuple:
		elements := make([]Format, len(f.elements))
		for i, e := range f.elements {
			n, err := Normalize(e)
			if err != nil {
				return Format{}, err
			}
			elements[i] = n
		}
		f.elements = elements
	}
	return Reduce(f), nil
}

// Reduce canonicalizes equivalent forms. The only canonicalization the
// contract requires in practice is collapsing a Seq(U8) that slipped past
// emission (tracer code is expected to emit Bytes directly; Reduce is the
// defensive backstop so a hand-built registry is still well-formed).
func Reduce(f Format) Format {
	if f.kind == KindSeq && f.elem != nil && f.elem.kind == KindU8 {
		return Bytes()
	}
	return f
}
