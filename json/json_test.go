package json

import (
	"strings"
	"testing"

	"github.com/zoobzio/witness"
)

func buildTestRegistry(t *testing.T) *witness.Registry {
	t.Helper()
	r := witness.NewRegistry()
	if err := r.Bind("Test", witness.StructFormat(
		witness.NamedField{Name: "a", Format: witness.SeqFormat(witness.U64Format())},
		witness.NamedField{Name: "b", Format: witness.TupleFormat(witness.U32Format(), witness.U32Format())},
	)); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	newTypeU8 := witness.U8Format()
	if err := r.Bind("Choice", witness.EnumFormat(map[uint32]witness.Variant{
		0: {Name: "None", Kind: witness.VariantUnit},
		1: {Name: "Some", Kind: witness.VariantNewType, NewType: &newTypeU8},
	})); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	out, err := r.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	return out
}

func TestMarshalOrdersContainersByName(t *testing.T) {
	r := buildTestRegistry(t)
	data, err := New().Marshal(r)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	s := string(data)
	choiceIdx := strings.Index(s, `"Choice"`)
	testIdx := strings.Index(s, `"Test"`)
	if choiceIdx < 0 || testIdx < 0 || choiceIdx > testIdx {
		t.Fatalf("expected Choice before Test in lexicographic order, got:\n%s", s)
	}
}

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	r := buildTestRegistry(t)
	codec := New()
	data, err := codec.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got, err := codec.Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	got, err = got.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if got.Len() != r.Len() {
		t.Fatalf("Len() = %d, want %d", got.Len(), r.Len())
	}
	for _, name := range r.Names() {
		want, _ := r.Get(name)
		have, ok := got.Get(name)
		if !ok {
			t.Fatalf("round trip lost container %q", name)
		}
		if have.Kind != want.Kind {
			t.Fatalf("container %q kind = %v, want %v", name, have.Kind, want.Kind)
		}
	}
}

func TestUnmarshalRejectsInvalidJSON(t *testing.T) {
	if _, err := New().Unmarshal([]byte("not json")); err == nil {
		t.Fatal("expected an error unmarshaling malformed JSON")
	}
}
