package witness

import (
	"errors"
	"fmt"
)

// Sentinel errors for programmatic error handling. Use errors.Is() against
// these; the structured error types below carry the context (container,
// field, variant, byte offset) every message needs to pin down a failure.
var (
	// ErrIncompatibleFormat indicates two observations of the same wire
	// position could not be unified.
	ErrIncompatibleFormat = errors.New("incompatible formats")

	// ErrUnknownFormatInContainer indicates a placeholder Variable survived
	// finalization.
	ErrUnknownFormatInContainer = errors.New("unknown format in container")

	// ErrMissingVariants indicates an enum has no recorded variants, or a
	// variant index was left undiscovered.
	ErrMissingVariants = errors.New("missing variants")

	// ErrUnknownNamedType indicates a TypeName with no corresponding
	// registry entry.
	ErrUnknownNamedType = errors.New("unknown named type")

	// ErrIncompleteRegistry indicates a named type referenced by another
	// container was never traced. Registry.Finalize reports that case with
	// ErrUnknownNamedType; nothing in this module returns
	// ErrIncompleteRegistry.
	ErrIncompleteRegistry = errors.New("incomplete registry")

	// ErrNameCollision indicates two distinct containers attempted to
	// bind the same name with conflicting shapes.
	ErrNameCollision = errors.New("name collision")

	// ErrSampleRequired indicates a type with custom validation rejected
	// synthesized witnesses and the samples store had no entry.
	ErrSampleRequired = errors.New("sample required")

	// ErrNotImplemented indicates a feature this module deliberately
	// refuses (floats on platforms without them, or Char; see DESIGN.md).
	// The bcs and bincode codecs refuse Char, F32, and F64 with their own
	// "... is not implemented" errors, which do not wrap ErrNotImplemented.
	ErrNotImplemented = errors.New("not implemented")
)

// FinalizationError reports why Registry.Finalize could not produce a
// read-only registry.
type FinalizationError struct {
	Err       error
	Container string
	Detail    string
}

func (e *FinalizationError) Error() string {
	switch {
	case e.Container != "" && e.Detail != "":
		return fmt.Sprintf("%s: container %q: %s", e.Err.Error(), e.Container, e.Detail)
	case e.Container != "":
		return fmt.Sprintf("%s: container %q", e.Err.Error(), e.Container)
	case e.Detail != "":
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Detail)
	default:
		return e.Err.Error()
	}
}

func (e *FinalizationError) Unwrap() error { return e.Err }

// NameCollisionError reports that two shapes were bound to the same
// container name.
type NameCollisionError struct {
	Name     string
	Existing ContainerFormat
	New      ContainerFormat
	Cause    error
}

func (e *NameCollisionError) Error() string {
	return fmt.Sprintf("name collision on %q: %s shape conflicts with %s: %v",
		e.Name, e.Existing.Kind, e.New.Kind, e.Cause)
}

func (e *NameCollisionError) Unwrap() error { return ErrNameCollision }

// SampleRequiredError reports that deserialization tracing of a container
// needs a recorded sample to proceed.
type SampleRequiredError struct {
	Container string
	Cause     error
}

func (e *SampleRequiredError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("sample required for container %q: %v", e.Container, e.Cause)
	}
	return fmt.Sprintf("sample required for container %q", e.Container)
}

func (e *SampleRequiredError) Unwrap() error { return ErrSampleRequired }

// TraceError reports an error encountered while walking a value or type,
// annotated with the position at which it happened.
type TraceError struct {
	Position string
	Cause    error
}

func (e *TraceError) Error() string {
	return fmt.Sprintf("trace error at %s: %v", e.Position, e.Cause)
}

func (e *TraceError) Unwrap() error { return e.Cause }
