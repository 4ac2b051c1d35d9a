package witness_test

import (
	"context"
	"reflect"
	"testing"

	"github.com/zoobzio/witness"
	"github.com/zoobzio/witness/bcs"
	"github.com/zoobzio/witness/bincode"
	"github.com/zoobzio/witness/json"
	"github.com/zoobzio/witness/yaml"
)

type integrationTest struct {
	A []uint64
	B [2]uint32
}

func TestTraceEncodeDecodeAcrossFormats(t *testing.T) {
	original := integrationTest{A: []uint64{4, 6}, B: [2]uint32{3, 5}}

	tracer := witness.NewTracer(witness.DefaultConfig())
	if err := tracer.TraceValue(context.Background(), original); err != nil {
		t.Fatalf("TraceValue: %v", err)
	}
	registry, err := tracer.Registry(context.Background())
	if err != nil {
		t.Fatalf("Registry: %v", err)
	}
	if registry.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", registry.Len())
	}

	for _, codec := range []witness.Codec{bcs.New(), bincode.New()} {
		data, err := codec.Marshal(original)
		if err != nil {
			t.Fatalf("%s Marshal: %v", codec.ContentType(), err)
		}
		var restored integrationTest
		if err := codec.Unmarshal(data, &restored); err != nil {
			t.Fatalf("%s Unmarshal: %v", codec.ContentType(), err)
		}
		if !reflect.DeepEqual(restored, original) {
			t.Fatalf("%s round trip = %+v, want %+v", codec.ContentType(), restored, original)
		}
	}

	for _, registryCodec := range []witness.RegistryCodec{yaml.New(), json.New()} {
		data, err := registryCodec.Marshal(registry)
		if err != nil {
			t.Fatalf("Marshal registry: %v", err)
		}
		got, err := registryCodec.Unmarshal(data)
		if err != nil {
			t.Fatalf("Unmarshal registry: %v", err)
		}
		got, err = got.Finalize()
		if err != nil {
			t.Fatalf("Finalize round-tripped registry: %v", err)
		}
		cf, ok := got.Get("integrationTest")
		if !ok {
			t.Fatalf("round trip lost the integrationTest container")
		}
		if cf.Kind != witness.ContainerStruct || len(cf.Fields) != 2 {
			t.Fatalf("round-tripped container = %+v, want a two-field struct", cf)
		}
	}
}
