package witness

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/zoobzio/sentinel"
)

// Config tunes how a Tracer walks values and types. Use [DefaultConfig]
// rather than the zero value; RecordSampleForNewTypeStruct defaults to
// false on a bare Config{} and most callers want it on.
type Config struct {
	// RecordSampleForNewTypeStruct, RecordSampleForTupleStruct,
	// RecordSampleForStruct, and RecordSampleForUnitStruct govern whether
	// the serialization tracer stores a witness value for each container
	// shape, for the deserialization tracer to replay when a container's
	// custom validation rejects a synthesized value.
	RecordSampleForNewTypeStruct bool
	RecordSampleForTupleStruct   bool
	RecordSampleForStruct        bool
	RecordSampleForUnitStruct    bool

	// IsHumanReadable reports to codecs whether string-keyed map encoding
	// should be preferred over positional encoding. No tracer or codec in
	// this module reads it: BCS, Bincode, and the yaml/json RegistryCodecs
	// all ignore it.
	IsHumanReadable bool

	// DefaultU64Representation and DefaultI64Representation pick the
	// Format a plain Go int/uint traces to. The zero Kind value (KindUnit)
	// means U64/I64; set these only to narrow the representation for a
	// specific target width.
	DefaultU64Representation Kind
	DefaultI64Representation Kind

	enums map[reflect.Type]enumSpec
}

// DefaultConfig returns the Config a Tracer uses unless the caller
// overrides it: every shape except NewTypeStruct samples are left
// unrecorded, since the common custom-validation case — a newtype
// wrapping a bounded integer or a non-empty string — is also the
// cheapest shape to resample.
func DefaultConfig() Config {
	return Config{RecordSampleForNewTypeStruct: true}
}

func (c *Config) defaultU64() Format {
	if c.DefaultU64Representation == KindUnit {
		return U64Format()
	}
	return Format{kind: c.DefaultU64Representation}
}

func (c *Config) defaultI64() Format {
	if c.DefaultI64Representation == KindUnit {
		return I64Format()
	}
	return Format{kind: c.DefaultI64Representation}
}

// session is one tracing call's working state: a staged registry cloned
// from the owning Tracer so that Bind calls during this call never touch
// the Tracer's committed state until the whole call succeeds.
type session struct {
	ctx      context.Context
	cfg      *Config
	registry *Registry
	samples  *SamplesStore
	resolver *resolver

	// discoveredNew is set by the deserialization tracer when this pass
	// bound a container or resolved an enum variant that had not appeared
	// in any prior committed pass, so the caller knows whether another
	// pass might still make progress.
	discoveredNew bool

	// stack tracks container names currently being synthesized, so the
	// deserialization tracer can recognize recursion and fall back to an
	// enum's base-case variant instead of looping forever.
	stack map[string]bool
}

func newSession(ctx context.Context, cfg *Config, base *Registry, samples *SamplesStore) *session {
	return &session{
		ctx:      ctx,
		cfg:      cfg,
		registry: base.clone(),
		samples:  samples,
		resolver: newResolver(),
		stack:    make(map[string]bool),
	}
}

// bind records shape under name and emits SignalContainerRecorded on
// success, so every place a tracer names a container's shape also reports
// it, not just the ones a caller happens to inspect afterward.
func (s *session) bind(name string, shape ContainerFormat) error {
	if err := s.registry.Bind(name, shape); err != nil {
		return err
	}
	emitContainerRecorded(s.ctx, name)
	return nil
}

// scanStructType populates sentinel's metadata cache for T ahead of a
// trace, so classifyStruct's exportedFieldIndices hits the cache instead
// of falling back to a manual field walk.
func scanStructType[T any]() {
	if reflect.TypeOf((*T)(nil)).Elem().Kind() == reflect.Struct {
		sentinel.Scan[T]()
	}
}

// Tracer accumulates a Registry across repeated trace calls, committing
// each call's staged registry atomically and discarding it on error.
type Tracer struct {
	cfg      Config
	registry *Registry
	samples  *SamplesStore
}

// NewTracer returns a Tracer with an empty registry and samples store.
func NewTracer(cfg Config) *Tracer {
	return &Tracer{cfg: cfg, registry: NewRegistry(), samples: NewSamplesStore()}
}

// RegisterEnum declares the variants of an enum-shaped interface type.
// See [Config.RegisterEnum].
func (t *Tracer) RegisterEnum(ifaceType reflect.Type, variants ...EnumValue) {
	t.cfg.RegisterEnum(ifaceType, variants...)
}

// Samples exposes the witness values recorded so far, keyed by container
// name.
func (t *Tracer) Samples() *SamplesStore { return t.samples }

// Registry finalizes and returns the accumulated registry. The Tracer's
// own staged state is left untouched, so tracing can continue after a
// failed finalization.
func (t *Tracer) Registry(ctx context.Context) (*Registry, error) {
	out, err := t.registry.Finalize()
	if err != nil {
		return nil, err
	}
	emitRegistryFinalized(ctx, out.Len())
	return out, nil
}

// TraceValue walks v, unifying every container it touches into t's
// registry. On error t is left exactly as it was before the call.
func (t *Tracer) TraceValue(ctx context.Context, v any) error {
	start := time.Now()
	emitTraceStart(ctx)
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		err := fmt.Errorf("witness: cannot trace a nil value")
		emitTraceComplete(ctx, start, err)
		return err
	}
	s := newSession(ctx, &t.cfg, t.registry, t.samples)
	_, err := s.traceValue(rv)
	emitTraceComplete(ctx, start, err)
	if err != nil {
		return err
	}
	t.registry = s.registry
	return nil
}

// TraceSimpleType is the convenience form of TraceType: it drives T's
// deserialization tracer to a fixed point using a fresh, empty samples
// store rather than the ones t has already recorded, then returns the
// ContainerFormat bound to T's name. T must be a struct or interface —
// the container types this operation names.
func TraceSimpleType[T any](ctx context.Context, t *Tracer) (ContainerFormat, error) {
	scanStructType[T]()
	rt := reflect.TypeOf((*T)(nil)).Elem()
	if rt.Kind() != reflect.Struct && rt.Kind() != reflect.Interface {
		return ContainerFormat{}, fmt.Errorf("witness: %s is not a container type", rt)
	}

	empty := NewSamplesStore()
	const maxPasses = 10000
	for i := 0; ; i++ {
		start := time.Now()
		emitTraceStart(ctx)
		s := newSession(ctx, &t.cfg, t.registry, empty)
		_, err := s.synthesizeType(rt)
		emitTraceComplete(ctx, start, err)
		if err != nil {
			return ContainerFormat{}, err
		}
		t.registry = s.registry
		if !s.discoveredNew {
			break
		}
		if i == maxPasses-1 {
			return ContainerFormat{}, fmt.Errorf("witness: TraceSimpleType did not converge after %d passes", maxPasses)
		}
	}

	cf, ok := t.registry.Get(rt.Name())
	if !ok {
		return ContainerFormat{}, fmt.Errorf("witness: %s produced no registry entry", rt.Name())
	}
	return cf, nil
}

// TraceTypeOnce performs a single deserialization-tracing pass over T,
// synthesizing witness values as it goes so the caller need not supply
// one. It returns whether the pass discovered a container or enum variant
// that had not been bound in any prior committed pass; a caller driving
// enum variant discovery to closure loops on this until it returns false.
// On error t is left exactly as it was before the call.
func TraceTypeOnce[T any](ctx context.Context, t *Tracer) (bool, error) {
	scanStructType[T]()
	rt := reflect.TypeOf((*T)(nil)).Elem()
	start := time.Now()
	emitTraceStart(ctx)
	s := newSession(ctx, &t.cfg, t.registry, t.samples)
	_, err := s.synthesizeType(rt)
	emitTraceComplete(ctx, start, err)
	if err != nil {
		return false, err
	}
	t.registry = s.registry
	return s.discoveredNew, nil
}

// TraceType drives TraceTypeOnce to a fixed point: it repeats the pass
// until one returns no newly discovered variant, which is how an enum
// reachable from T gets every variant bound despite Go's reflection
// having no way to enumerate an interface's implementations up front.
// The pass count is capped so a caller that forgot to RegisterEnum a
// variant-less interface fails loudly instead of looping forever.
func TraceType[T any](ctx context.Context, t *Tracer) error {
	const maxPasses = 10000
	for i := 0; i < maxPasses; i++ {
		progressed, err := TraceTypeOnce[T](ctx, t)
		if err != nil {
			return err
		}
		if !progressed {
			return nil
		}
	}
	return fmt.Errorf("witness: TraceType did not converge after %d passes", maxPasses)
}
