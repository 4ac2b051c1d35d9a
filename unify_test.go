package witness

import (
	"errors"
	"testing"
)

func TestUnifyIdenticalPrimitives(t *testing.T) {
	a := U32Format()
	if err := Unify(&a, U32Format()); err != nil {
		t.Fatalf("Unify(U32, U32): %v", err)
	}
	if a.Kind() != KindU32 {
		t.Fatalf("a.Kind() = %s, want U32", a.Kind())
	}
}

func TestUnifyMismatchedKindsFails(t *testing.T) {
	a := U32Format()
	err := Unify(&a, Str())
	if err == nil {
		t.Fatal("expected an error unifying U32 with Str")
	}
	if !errors.Is(err, ErrIncompatibleFormat) {
		t.Fatalf("error should wrap ErrIncompatibleFormat, got %v", err)
	}
}

func TestUnifyMismatchedTupleArityFails(t *testing.T) {
	a := TupleFormat(U8Format(), U8Format())
	err := Unify(&a, TupleFormat(U8Format()))
	if err == nil {
		t.Fatal("expected an error unifying tuples of different arity")
	}
}

func TestUnifyMismatchedTupleArraySizeFails(t *testing.T) {
	a := TupleArrayFormat(U8Format(), 4)
	err := Unify(&a, TupleArrayFormat(U8Format(), 5))
	if err == nil {
		t.Fatal("expected an error unifying TupleArrays of different size")
	}
}

func TestUnifyMismatchedTypeNameFails(t *testing.T) {
	a := TypeNameFormat("Foo")
	err := Unify(&a, TypeNameFormat("Bar"))
	if err == nil {
		t.Fatal("expected an error unifying different TypeNames")
	}
}

func TestUnifyVariableWithConcrete(t *testing.T) {
	r := newResolver()
	v := r.variable()
	err := Unify(&v, U64Format())
	if err != nil {
		t.Fatalf("Unify(variable, U64): %v", err)
	}
	if v.Kind() != KindU64 {
		t.Fatalf("v.Kind() = %s, want U64", v.Kind())
	}
}

func TestUnifyIsIdempotent(t *testing.T) {
	a := SeqFormat(U8Format())
	b := SeqFormat(U8Format())
	if err := Unify(&a, b); err != nil {
		t.Fatalf("first Unify: %v", err)
	}
	before := a
	if err := Unify(&a, b); err != nil {
		t.Fatalf("second Unify: %v", err)
	}
	if a.Kind() != before.Kind() || a.Elem().Kind() != before.Elem().Kind() {
		t.Fatal("Unify should be idempotent")
	}
}

func TestUnifyNestedContainers(t *testing.T) {
	a := MapFormat(Str(), OptionFormat(U8Format()))
	b := MapFormat(Str(), OptionFormat(U8Format()))
	if err := Unify(&a, b); err != nil {
		t.Fatalf("Unify(Map, Map): %v", err)
	}
	key, value := a.KeyValue()
	if key.Kind() != KindStr || value.Kind() != KindOption || value.Elem().Kind() != KindU8 {
		t.Fatalf("unified Map = %s, unexpected shape", a)
	}
}

func TestNormalizeResolvesVariable(t *testing.T) {
	r := newResolver()
	v := r.variable()
	if err := r.bind(v.varID, Bool()); err != nil {
		t.Fatalf("bind: %v", err)
	}
	got, err := Normalize(v)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if got.Kind() != KindBool {
		t.Fatalf("Normalize(bound variable) = %s, want Bool", got.Kind())
	}
}

func TestNormalizeFailsOnUnresolvedVariable(t *testing.T) {
	r := newResolver()
	v := r.variable()
	if _, err := Normalize(v); err == nil {
		t.Fatal("expected Normalize to fail on an unresolved variable")
	}
}

func TestNormalizeReducesSeqU8ToBytes(t *testing.T) {
	got, err := Normalize(SeqFormat(U8Format()))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if got.Kind() != KindBytes {
		t.Fatalf("Normalize(Seq(U8)) = %s, want Bytes", got.Kind())
	}
}

func TestReduceLeavesOtherSeqsAlone(t *testing.T) {
	got := Reduce(SeqFormat(U32Format()))
	if got.Kind() != KindSeq {
		t.Fatalf("Reduce(Seq(U32)) = %s, want Seq", got.Kind())
	}
}
