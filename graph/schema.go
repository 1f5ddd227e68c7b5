package graph

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/syssam/morph/schema/field"
)

// A Mixin contributes a reusable group of field descriptors to a
// schema. Implemented by the schema/mixin package.
type Mixin interface {
	Fields() []*field.Descriptor
}

// A Schema is the declaration of one class: its name, its mixins and
// its own field descriptors. Schemas compile into definitions at
// registration.
type Schema struct {
	Name   string
	Mixins []Mixin
	Fields []*field.Descriptor
}

// NewSchema returns a new schema declaration.
func NewSchema(name string, fields ...*field.Descriptor) *Schema {
	return &Schema{Name: name, Fields: fields}
}

// Use appends mixins to the schema. Mixin fields compile before the
// schema's own fields, in listing order.
func (s *Schema) Use(mixins ...Mixin) *Schema {
	s.Mixins = append(s.Mixins, mixins...)
	return s
}

// allFields flattens mixin fields before the schema's own fields.
func (s *Schema) allFields() []*field.Descriptor {
	var all []*field.Descriptor
	for _, m := range s.Mixins {
		all = append(all, m.Fields()...)
	}
	return append(all, s.Fields...)
}

// SchemaSpec is the serializable form of a schema declaration. It
// captures the declarative parts of the descriptors; modifier chains
// and function defaults are code and do not round-trip (the validator
// count is preserved for inspection, like a compiled schema dump).
type SchemaSpec struct {
	Name   string       `json:"name" yaml:"name"`
	Fields []*FieldSpec `json:"fields" yaml:"fields"`
}

// FieldSpec is the serializable form of one field descriptor.
type FieldSpec struct {
	Name             string                `json:"name" yaml:"name"`
	Type             string                `json:"type" yaml:"type"`
	Storage          string                `json:"storage,omitempty" yaml:"storage,omitempty"`
	OnDelete         string                `json:"on_delete,omitempty" yaml:"on_delete,omitempty"`
	Usage            string                `json:"usage,omitempty" yaml:"usage,omitempty"`
	Default          any                   `json:"default,omitempty" yaml:"default,omitempty"`
	Readonly         bool                  `json:"readonly,omitempty" yaml:"readonly,omitempty"`
	Writeonly        bool                  `json:"writeonly,omitempty" yaml:"writeonly,omitempty"`
	OperatorAssigned bool                  `json:"operator_assigned,omitempty" yaml:"operator_assigned,omitempty"`
	ForeignClass     string                `json:"foreign_class,omitempty" yaml:"foreign_class,omitempty"`
	ForeignKey       string                `json:"foreign_key,omitempty" yaml:"foreign_key,omitempty"`
	Enum             string                `json:"enum,omitempty" yaml:"enum,omitempty"`
	Dict             string                `json:"dict,omitempty" yaml:"dict,omitempty"`
	Elem             *FieldSpec            `json:"elem,omitempty" yaml:"elem,omitempty"`
	Shape            map[string]*FieldSpec `json:"shape,omitempty" yaml:"shape,omitempty"`
	Validators       int                   `json:"validators,omitempty" yaml:"validators,omitempty"`
}

// Spec returns the serializable form of the schema, with mixins
// flattened.
func (s *Schema) Spec() *SchemaSpec {
	spec := &SchemaSpec{Name: s.Name}
	for _, desc := range s.allFields() {
		spec.Fields = append(spec.Fields, fieldSpec(desc))
	}
	return spec
}

func fieldSpec(d *field.Descriptor) *FieldSpec {
	fs := &FieldSpec{
		Name:             d.Name,
		Type:             d.Info.String(),
		Usage:            d.Usage.String(),
		Readonly:         d.Readonly,
		Writeonly:        d.Writeonly,
		OperatorAssigned: d.OperatorAssigned,
		ForeignClass:     d.ForeignClass,
		ForeignKey:       d.ForeignKey,
		Enum:             d.EnumName,
		Dict:             d.DictName,
		Validators:       len(d.Validators),
	}
	if d.Storage != field.Embedded {
		fs.Storage = d.Storage.String()
	}
	if d.OnDelete != field.NoAction {
		fs.OnDelete = d.OnDelete.String()
	}
	// Function defaults are not representable; only literals dump.
	if _, err := json.Marshal(d.DefaultValue); err == nil {
		fs.Default = d.DefaultValue
	}
	if d.Elem != nil {
		fs.Elem = fieldSpec(d.Elem)
	}
	if len(d.Shape) > 0 {
		fs.Shape = make(map[string]*FieldSpec, len(d.Shape))
		for k, sub := range d.Shape {
			fs.Shape[k] = fieldSpec(sub)
		}
	}
	return fs
}

// Schema rebuilds a schema declaration from its serializable form.
func (sp *SchemaSpec) Schema() (*Schema, error) {
	s := NewSchema(sp.Name)
	for _, fs := range sp.Fields {
		desc, err := fs.descriptor()
		if err != nil {
			return nil, NewSchemaError(sp.Name, fs.Name, "invalid field spec", err)
		}
		s.Fields = append(s.Fields, desc)
	}
	return s, nil
}

func (fs *FieldSpec) descriptor() (*field.Descriptor, error) {
	typ := field.TypeOf(fs.Type)
	if !typ.Valid() {
		return nil, fmt.Errorf("unknown field type %q", fs.Type)
	}
	d := &field.Descriptor{
		Name:             fs.Name,
		Info:             typ,
		Storage:          field.StorageOf(fs.Storage),
		OnDelete:         field.DeleteRuleOf(fs.OnDelete),
		Usage:            field.UsageOf(fs.Usage),
		DefaultValue:     fs.Default,
		Readonly:         fs.Readonly,
		Writeonly:        fs.Writeonly,
		OperatorAssigned: fs.OperatorAssigned,
		ForeignClass:     fs.ForeignClass,
		ForeignKey:       fs.ForeignKey,
		EnumName:         fs.Enum,
		DictName:         fs.Dict,
	}
	if fs.Elem != nil {
		elem, err := fs.Elem.descriptor()
		if err != nil {
			return nil, err
		}
		d.Elem = elem
	}
	if len(fs.Shape) > 0 {
		d.Shape = make(map[string]*field.Descriptor, len(fs.Shape))
		for k, sub := range fs.Shape {
			sd, err := sub.descriptor()
			if err != nil {
				return nil, err
			}
			d.Shape[k] = sd
		}
	}
	return d, nil
}

// MarshalJSON encodes the schema's serializable form.
func (s *Schema) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Spec())
}

// MarshalYAML encodes the schema's serializable form.
func (s *Schema) MarshalYAML() (any, error) {
	return s.Spec(), nil
}

// ParseSchemaYAML decodes one or more schema declarations from a YAML
// document.
func ParseSchemaYAML(data []byte) ([]*SchemaSpec, error) {
	var specs []*SchemaSpec
	if err := yaml.Unmarshal(data, &specs); err != nil {
		// Fall back to a single-schema document.
		var one SchemaSpec
		if err2 := yaml.Unmarshal(data, &one); err2 != nil || one.Name == "" {
			return nil, fmt.Errorf("morph: parsing schema document: %w", err)
		}
		specs = []*SchemaSpec{&one}
	}
	return specs, nil
}
