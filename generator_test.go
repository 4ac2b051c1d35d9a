package witness

import (
	"errors"
	"testing"
)

type recordingEmitter struct {
	order []string
}

func (e *recordingEmitter) EmitUnitStruct(name string) error {
	e.order = append(e.order, "unit:"+name)
	return nil
}

func (e *recordingEmitter) EmitNewTypeStruct(name string, _ Format) error {
	e.order = append(e.order, "newtype:"+name)
	return nil
}

func (e *recordingEmitter) EmitTupleStruct(name string, _ []Format) error {
	e.order = append(e.order, "tuple:"+name)
	return nil
}

func (e *recordingEmitter) EmitStruct(name string, _ []NamedField) error {
	e.order = append(e.order, "struct:"+name)
	return nil
}

func (e *recordingEmitter) EmitEnum(name string, _ map[uint32]Variant) error {
	e.order = append(e.order, "enum:"+name)
	return nil
}

func TestGenerateVisitsInLexicographicOrder(t *testing.T) {
	r := NewRegistry()
	must(t, r.Bind("Zebra", UnitStructFormat()))
	must(t, r.Bind("Alpha", TupleStructFormat(U8Format())))
	must(t, r.Bind("Middle", StructFormat(NamedField{Name: "a", Format: U8Format()})))

	e := &recordingEmitter{}
	if err := Generate(r, e); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	want := []string{"tuple:Alpha", "struct:Middle", "unit:Zebra"}
	if len(e.order) != len(want) {
		t.Fatalf("order = %v, want %v", e.order, want)
	}
	for i := range want {
		if e.order[i] != want[i] {
			t.Fatalf("order = %v, want %v", e.order, want)
		}
	}
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

type stoppingEmitter struct{}

func (stoppingEmitter) EmitUnitStruct(string) error               { return errStopGenerate }
func (stoppingEmitter) EmitNewTypeStruct(string, Format) error    { return nil }
func (stoppingEmitter) EmitTupleStruct(string, []Format) error    { return nil }
func (stoppingEmitter) EmitStruct(string, []NamedField) error     { return nil }
func (stoppingEmitter) EmitEnum(string, map[uint32]Variant) error { return nil }

var errStopGenerate = errors.New("stop")

func TestGeneratePropagatesEmitterError(t *testing.T) {
	r := NewRegistry()
	must(t, r.Bind("Alpha", UnitStructFormat()))
	if err := Generate(r, stoppingEmitter{}); err != errStopGenerate {
		t.Fatalf("Generate error = %v, want errStopGenerate", err)
	}
}
