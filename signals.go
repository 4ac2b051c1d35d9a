package witness

import (
	"context"
	"time"

	"github.com/zoobzio/capitan"
)

// Signals emitted around tracing and registry finalization, giving callers
// structured visibility into a trace session's boundaries the way marshal
// and unmarshal calls emit their own start/complete signals.
var (
	SignalTraceStart        = capitan.NewSignal("witness.trace.start", "Trace call beginning")
	SignalTraceComplete     = capitan.NewSignal("witness.trace.complete", "Trace call finished")
	SignalContainerRecorded = capitan.NewSignal("witness.container.recorded", "Container shape unified into the registry")
	SignalVariantDiscovered = capitan.NewSignal("witness.variant.discovered", "New enum variant observed")
	SignalRegistryFinalized = capitan.NewSignal("witness.registry.finalized", "Registry validated and frozen")
)

// Keys for typed event data.
var (
	KeyContainerName  = capitan.NewStringKey("container_name")
	KeyVariantName    = capitan.NewStringKey("variant_name")
	KeyVariantIndex   = capitan.NewIntKey("variant_index")
	KeyDuration       = capitan.NewDurationKey("duration")
	KeyError          = capitan.NewErrorKey("error")
	KeyContainerCount = capitan.NewIntKey("container_count")
)

func emitTraceStart(ctx context.Context) {
	capitan.Emit(ctx, SignalTraceStart)
}

func emitTraceComplete(ctx context.Context, start time.Time, err error) {
	fields := []capitan.Field{KeyDuration.Field(time.Since(start))}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalTraceComplete, fields...)
		return
	}
	capitan.Emit(ctx, SignalTraceComplete, fields...)
}

func emitContainerRecorded(ctx context.Context, name string) {
	capitan.Emit(ctx, SignalContainerRecorded, KeyContainerName.Field(name))
}

func emitVariantDiscovered(ctx context.Context, container, variant string, index uint32) {
	capitan.Emit(ctx, SignalVariantDiscovered,
		KeyContainerName.Field(container),
		KeyVariantName.Field(variant),
		KeyVariantIndex.Field(int(index)),
	)
}

func emitRegistryFinalized(ctx context.Context, count int) {
	capitan.Emit(ctx, SignalRegistryFinalized, KeyContainerCount.Field(count))
}
