package witness

import "reflect"

// EnumValue is the override interface a Go type must implement to trace as
// an Enum container. Go has no native sum type, so the concrete variant
// types of an enum-shaped interface each implement EnumValue; the
// interface type itself is the container name.
type EnumValue interface {
	VariantIndex() uint32
	VariantName() string
}

// enumSpec records the known variants of one enum-shaped interface type,
// registered ahead of time via [Config.RegisterEnum] because Go's
// reflection cannot enumerate the implementations of an interface on its
// own.
type enumSpec struct {
	variants []EnumValue // in ascending VariantIndex order; index 0 is the base case
}

// RegisterEnum declares the variants of an enum-shaped interface type.
// variants must list one instance per variant, in ascending VariantIndex
// order; a recursive enum's terminating variant must come first so
// deserialization tracing can pick it as the base case at a recursion
// point.
func (c *Config) RegisterEnum(ifaceType reflect.Type, variants ...EnumValue) {
	if c.enums == nil {
		c.enums = make(map[reflect.Type]enumSpec)
	}
	c.enums[ifaceType] = enumSpec{variants: variants}
}

func (c *Config) lookupEnum(ifaceType reflect.Type) (enumSpec, bool) {
	spec, ok := c.enums[ifaceType]
	return spec, ok
}
