package witness

import (
	"reflect"
	"testing"
)

type testShapeIface interface {
	Area() float64
}

type testCircle struct{ Radius float64 }

func (testCircle) Area() float64        { return 0 }
func (testCircle) VariantIndex() uint32 { return 0 }
func (testCircle) VariantName() string  { return "Circle" }

type testSquare struct{ Side float64 }

func (testSquare) Area() float64        { return 0 }
func (testSquare) VariantIndex() uint32 { return 1 }
func (testSquare) VariantName() string  { return "Square" }

var testShapeIfaceType = reflect.TypeOf((*testShapeIface)(nil)).Elem()

func TestRegisterEnumThenLookup(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RegisterEnum(testShapeIfaceType, testCircle{}, testSquare{})

	spec, ok := cfg.lookupEnum(testShapeIfaceType)
	if !ok {
		t.Fatal("lookupEnum should find the registered interface type")
	}
	if len(spec.variants) != 2 {
		t.Fatalf("len(variants) = %d, want 2", len(spec.variants))
	}
	if spec.variants[0].VariantName() != "Circle" {
		t.Fatalf("variants[0] = %q, want Circle (the base case must come first)", spec.variants[0].VariantName())
	}
}

func TestLookupEnumUnregisteredType(t *testing.T) {
	cfg := DefaultConfig()
	if _, ok := cfg.lookupEnum(testShapeIfaceType); ok {
		t.Fatal("lookupEnum should report false for an unregistered interface type")
	}
}

func TestTracerRegisterEnumDelegatesToConfig(t *testing.T) {
	tracer := NewTracer(DefaultConfig())
	tracer.RegisterEnum(testShapeIfaceType, testCircle{}, testSquare{})
	if _, ok := tracer.cfg.lookupEnum(testShapeIfaceType); !ok {
		t.Fatal("Tracer.RegisterEnum should register on the tracer's own Config")
	}
}
