package graph

import (
	"sync"

	"github.com/go-openapi/inflect"

	"github.com/syssam/morph/schema/field"
)

// A Definition is the compiled form of one registered class: its
// ordered field catalog, the classification buckets derived from it,
// and the lazily resolved reference names used to validate incoming
// payload keys. A definition is built once at registration and is
// read-only afterwards.
type Definition struct {
	graph  *Graph
	config *Config
	name   string

	fields []*Field
	byName map[string]*Field

	primary   *Field
	createdAt *Field
	updatedAt *Field
	deletedAt *Field

	deny    []*Field
	nullify []*Field
	cascade []*Field

	assignOperator []*Field

	// Reference names resolve lazily, exactly once: a definition may
	// reference classes that register after it.
	refOnce        sync.Once
	referenceNames []string
	availableNames map[string]struct{}
	updateNames    map[string]struct{}
}

// newDefinition compiles a schema into a definition. Mixin fields are
// flattened before the schema's own fields, in listing order.
func newDefinition(g *Graph, s *Schema, cfg *Config) (*Definition, error) {
	if s.Name == "" {
		return nil, NewSchemaError("", "", "class name cannot be empty", nil)
	}
	def := &Definition{
		graph:  g,
		config: cfg,
		name:   s.Name,
		byName: make(map[string]*Field),
	}
	for _, desc := range s.allFields() {
		if err := def.addField(desc); err != nil {
			return nil, err
		}
	}
	return def, nil
}

func (d *Definition) addField(desc *field.Descriptor) error {
	switch {
	case desc == nil:
		return NewSchemaError(d.name, "", "nil field descriptor", nil)
	case desc.Err != nil:
		return NewSchemaError(d.name, desc.Name, "invalid field", desc.Err)
	case desc.Name == "":
		return NewSchemaError(d.name, "", "field name cannot be empty", nil)
	case !desc.Info.Valid():
		return NewSchemaError(d.name, desc.Name, "invalid field type", nil)
	case d.byName[desc.Name] != nil:
		return NewSchemaError(d.name, desc.Name, "field redeclared", nil)
	}
	f := newField(d, desc)
	d.fields = append(d.fields, f)
	d.byName[desc.Name] = f
	switch desc.Usage {
	case field.UsagePrimary:
		if d.primary != nil {
			return NewSchemaError(d.name, desc.Name, "second primary field (already "+d.primary.Name()+")", nil)
		}
		d.primary = f
	case field.UsageCreatedAt:
		if d.createdAt != nil {
			return NewSchemaError(d.name, desc.Name, "second created_at field (already "+d.createdAt.Name()+")", nil)
		}
		d.createdAt = f
	case field.UsageUpdatedAt:
		if d.updatedAt != nil {
			return NewSchemaError(d.name, desc.Name, "second updated_at field (already "+d.updatedAt.Name()+")", nil)
		}
		d.updatedAt = f
	case field.UsageDeletedAt:
		if d.deletedAt != nil {
			return NewSchemaError(d.name, desc.Name, "second deleted_at field (already "+d.deletedAt.Name()+")", nil)
		}
		d.deletedAt = f
	}
	if f.IsReference() {
		switch desc.OnDelete {
		case field.Deny:
			d.deny = append(d.deny, f)
		case field.Nullify:
			d.nullify = append(d.nullify, f)
		case field.Cascade:
			d.cascade = append(d.cascade, f)
		}
	}
	if desc.OperatorAssigned {
		d.assignOperator = append(d.assignOperator, f)
	}
	return nil
}

// Name returns the class name.
func (d *Definition) Name() string { return d.name }

// Graph returns the class graph the definition is registered on.
func (d *Definition) Graph() *Graph { return d.graph }

// Config returns the configuration applied to this class.
func (d *Definition) Config() *Config { return d.config }

// Fields returns the fields in declaration order. The returned slice
// must not be modified.
func (d *Definition) Fields() []*Field { return d.fields }

// FieldNamed returns the field named name. It fails with a
// FieldNotFoundError identifying the class and the requested name.
func (d *Definition) FieldNamed(name string) (*Field, error) {
	f, ok := d.byName[name]
	if !ok {
		return nil, NewFieldNotFoundError(d.name, name)
	}
	return f, nil
}

// PrimaryField returns the primary field, or nil if none is declared.
func (d *Definition) PrimaryField() *Field { return d.primary }

// CreatedAtField returns the creation timestamp field, or nil.
func (d *Definition) CreatedAtField() *Field { return d.createdAt }

// UpdatedAtField returns the update timestamp field, or nil.
func (d *Definition) UpdatedAtField() *Field { return d.updatedAt }

// DeletedAtField returns the soft-delete timestamp field, or nil.
func (d *Definition) DeletedAtField() *Field { return d.deletedAt }

// DenyFields returns the reference fields with the deny delete rule.
func (d *Definition) DenyFields() []*Field { return d.deny }

// NullifyFields returns the reference fields with the nullify delete
// rule.
func (d *Definition) NullifyFields() []*Field { return d.nullify }

// CascadeFields returns the reference fields with the cascade delete
// rule.
func (d *Definition) CascadeFields() []*Field { return d.cascade }

// AssignOperatorFields returns the fields requiring an acting operator
// at creation.
func (d *Definition) AssignOperatorFields() []*Field { return d.assignOperator }

// FieldForUpdateName resolves an update-name spelling to its declaring
// field: the raw field name, or the reference-key name of a local-key
// field. It returns nil for unrecognized spellings.
func (d *Definition) FieldForUpdateName(name string) *Field {
	if f, ok := d.byName[name]; ok {
		return f
	}
	for _, f := range d.fields {
		if key := f.ReferenceKey(); key != "" && key == name {
			return f
		}
	}
	return nil
}

// RField scans the fields whose descriptor links to foreignClass and
// returns the first one matching the field name or the configured
// foreign-key name. Absence is not an error: callers interpret nil as
// "no reverse link declared".
func (d *Definition) RField(foreignClass, fname, fkey string) *Field {
	for _, f := range d.fields {
		if f.ForeignClass() != foreignClass {
			continue
		}
		if fname != "" && f.Name() == fname {
			return f
		}
		if fkey != "" && f.Descriptor().ForeignKey == fkey {
			return f
		}
	}
	return nil
}

// resolveRefs computes the reference names of local-key fields and the
// derived name sets. It runs exactly once; repeated calls are no-ops.
func (d *Definition) resolveRefs() {
	d.refOnce.Do(func() {
		d.availableNames = make(map[string]struct{})
		d.updateNames = make(map[string]struct{})
		for _, f := range d.fields {
			d.availableNames[f.Name()] = struct{}{}
			d.availableNames[f.JSONName()] = struct{}{}
			d.updateNames[f.Name()] = struct{}{}
			key := f.ReferenceKey()
			if key == "" {
				continue
			}
			d.referenceNames = append(d.referenceNames, key)
			d.availableNames[key] = struct{}{}
			d.updateNames[key] = struct{}{}
			if d.config.CamelizeKeys {
				d.availableNames[inflect.CamelizeDownFirst(key)] = struct{}{}
			}
		}
	})
}

// ReferenceNames returns the external key names projected by the
// class's local-key reference fields.
func (d *Definition) ReferenceNames() []string {
	d.resolveRefs()
	return d.referenceNames
}

// AvailableNames returns the union of raw field names, JSON-facing
// field names, raw reference names and camelized reference names. It
// is the set of keys accepted in incoming payloads.
func (d *Definition) AvailableNames() map[string]struct{} {
	d.resolveRefs()
	return d.availableNames
}

// UpdateNames returns the raw field names plus raw reference names:
// the set of keys accepted when applying a partial update.
func (d *Definition) UpdateNames() map[string]struct{} {
	d.resolveRefs()
	return d.updateNames
}
