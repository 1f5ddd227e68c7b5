package graph

import (
	"github.com/go-openapi/inflect"

	"github.com/syssam/morph/schema/field"
)

// A Field wraps one field descriptor with its declaring definition,
// its resolved default value and its computed JSON-facing name.
type Field struct {
	def      *Definition
	desc     *field.Descriptor
	name     string
	jsonName string
}

func newField(def *Definition, desc *field.Descriptor) *Field {
	f := &Field{def: def, desc: desc, name: desc.Name, jsonName: desc.Name}
	if def.config.CamelizeKeys {
		f.jsonName = inflect.CamelizeDownFirst(desc.Name)
	}
	return f
}

// Name returns the internal name of the field.
func (f *Field) Name() string { return f.name }

// JSONName returns the JSON-facing name of the field: camelized when
// the graph camelizes keys, the internal name otherwise.
func (f *Field) JSONName() string { return f.jsonName }

// Descriptor returns the field's type/modifier-chain descriptor.
func (f *Field) Descriptor() *field.Descriptor { return f.desc }

// Definition returns the declaring class definition.
func (f *Field) Definition() *Definition { return f.def }

// Default returns the field's default value and whether one is
// declared. Function defaults are invoked per call.
func (f *Field) Default() (any, bool) {
	if f.desc.DefaultFunc != nil {
		return f.desc.DefaultFunc(), true
	}
	if f.desc.DefaultValue != nil {
		return f.desc.DefaultValue, true
	}
	return nil, false
}

// ForeignClass returns the linked class name for reference and
// nested-instance fields, or "".
func (f *Field) ForeignClass() string { return f.desc.ForeignClass }

// IsReference reports whether the field links to another class.
func (f *Field) IsReference() bool {
	return f.desc.Storage != field.Embedded
}

// ReferenceKey returns the externally visible key name of a local-key
// field, derived by the graph's key transformer. It returns "" for
// non-local-key fields.
func (f *Field) ReferenceKey() string {
	if f.desc.Storage != field.LocalKey {
		return ""
	}
	return f.def.config.KeyTransformer(f)
}
