package witness

// Emitter is the visitor a code generator implements to render one target
// language from a finalized [Registry]. [Generate] drives the visitor
// through every container in deterministic order; it carries no knowledge
// of any particular target language itself, staying as agnostic of the
// output language as a Codec stays of any one wire format.
type Emitter interface {
	EmitUnitStruct(name string) error
	EmitNewTypeStruct(name string, inner Format) error
	EmitTupleStruct(name string, elements []Format) error
	EmitStruct(name string, fields []NamedField) error
	EmitEnum(name string, variants map[uint32]Variant) error
}

// Generate walks r in lexicographic container-name order, calling the
// matching Emitter method for each container's shape. Lexicographic order
// (rather than discovery order) is required so two Generate calls over
// the same registry, even one traced in a different order, produce
// byte-identical output.
func Generate(r *Registry, e Emitter) error {
	for _, name := range r.SortedNames() {
		cf, _ := r.Get(name)
		switch cf.Kind {
		case ContainerUnitStruct:
			if err := e.EmitUnitStruct(name); err != nil {
				return err
			}
		case ContainerNewTypeStruct:
			if err := e.EmitNewTypeStruct(name, *cf.NewType); err != nil {
				return err
			}
		case ContainerTupleStruct:
			if err := e.EmitTupleStruct(name, cf.Tuple); err != nil {
				return err
			}
		case ContainerStruct:
			if err := e.EmitStruct(name, cf.Fields); err != nil {
				return err
			}
		case ContainerEnum:
			if err := e.EmitEnum(name, cf.Variants); err != nil {
				return err
			}
		}
	}
	return nil
}
