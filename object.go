package morph

import (
	"time"

	"github.com/syssam/morph/graph"
)

// An Object is a dynamic instance of a registered class: a field
// value store governed by the class definition. Values move in and
// out through the transforming, validating and serializing
// operations; direct access stays raw.
type Object struct {
	def    *graph.Definition
	values map[string]any

	isNew    bool
	modified map[string]struct{}
	deleted  bool
}

// New returns a fresh instance of the definition. Declared defaults
// are assigned and creation hooks fire.
func New(def *graph.Definition) *Object {
	o := &Object{
		def:      def,
		values:   make(map[string]any),
		isNew:    true,
		modified: make(map[string]struct{}),
	}
	for _, f := range def.Fields() {
		if v, ok := f.Default(); ok {
			o.values[f.Name()] = v
		}
	}
	for _, hook := range def.Config().OnCreate {
		hook(o)
	}
	return o
}

// Create fetches the class from the graph and returns a fresh
// instance of it.
func Create(g *graph.Graph, class string) (*Object, error) {
	def, err := g.Fetch(class)
	if err != nil {
		return nil, err
	}
	return New(def), nil
}

// Definition returns the class definition of the instance.
func (o *Object) Definition() *graph.Definition { return o.def }

// Class returns the class name of the instance.
func (o *Object) Class() string { return o.def.Name() }

// IsNew reports whether the instance was created locally and never
// saved.
func (o *Object) IsNew() bool { return o.isNew }

// IsDeleted reports whether the instance was deleted. Under soft
// deletion this is true once the deletion timestamp is set.
func (o *Object) IsDeleted() bool { return o.deleted }

// Modified returns the names of the fields assigned since creation or
// the last save, in no particular order.
func (o *Object) Modified() []string {
	names := make([]string, 0, len(o.modified))
	for n := range o.modified {
		names = append(names, n)
	}
	return names
}

// Get returns the raw value of the named field and whether the field
// holds one.
func (o *Object) Get(name string) (any, bool) {
	v, ok := o.values[name]
	return v, ok
}

// PrimaryValue returns the value of the primary field, or nil if the
// class declares none or the field is unset.
func (o *Object) PrimaryValue() any {
	pf := o.def.PrimaryField()
	if pf == nil {
		return nil
	}
	return o.values[pf.Name()]
}

// set assigns a raw field value and records the modification.
func (o *Object) set(name string, value any) {
	o.values[name] = value
	o.modified[name] = struct{}{}
}

// unset removes a raw field value and records the modification.
func (o *Object) unset(name string) {
	delete(o.values, name)
	o.modified[name] = struct{}{}
}

// Update assigns raw values directly, bypassing transformer chains.
// Only raw field names and reference-key names are accepted; an
// unrecognized key fails with a ValidationError keyed by the key
// itself. Reference-key spellings assign to their declaring field.
func (o *Object) Update(values map[string]any) error {
	fields := make(map[string]*graph.Field, len(values))
	for k := range values {
		f := o.def.FieldForUpdateName(k)
		if f == nil {
			return NewValidationError(k, "key is not allowed", o)
		}
		fields[k] = f
	}
	for k, v := range values {
		name := fields[k].Name()
		if v == nil {
			o.unset(name)
			continue
		}
		o.set(name, v)
	}
	return nil
}

// Save validates the instance, fires save hooks, stamps the update
// timestamp and clears the new/modified state. It does not persist:
// persistence belongs to the caller.
func (o *Object) Save(opts ...OpOption) error {
	cfg := o.opConfig(opts)
	if err := o.validate(cfg); err != nil {
		return err
	}
	checks := o.def.Config().CanCreate
	op := "create"
	if !o.isNew {
		checks = o.def.Config().CanUpdate
		op = "update"
	}
	for _, check := range checks {
		if err := check(o, cfg.operator); err != nil {
			return NewPermissionError(o.Class(), op, err)
		}
	}
	now := time.Now()
	if o.isNew {
		if f := o.def.CreatedAtField(); f != nil {
			if _, ok := o.values[f.Name()]; !ok {
				o.values[f.Name()] = now
			}
		}
	}
	if f := o.def.UpdatedAtField(); f != nil {
		o.values[f.Name()] = now
	}
	for _, hook := range o.def.Config().OnSave {
		hook(o)
	}
	o.isNew = false
	o.modified = make(map[string]struct{})
	return nil
}

// Delete removes the instance, honoring the delete rules of its
// reference fields: deny blocks deletion while links remain, nullify
// unlinks, cascade deletes the linked instances too. Under soft
// deletion the deletion timestamp is stamped instead.
func (o *Object) Delete(opts ...OpOption) error {
	cfg := o.opConfig(opts)
	return o.delete(cfg, NewMGraph())
}

func (o *Object) delete(cfg opConfig, seen *MGraph) error {
	if seen.Visited(o) {
		return nil
	}
	seen.Visit(o)
	for _, check := range o.def.Config().CanDelete {
		if err := check(o, cfg.operator); err != nil {
			return NewPermissionError(o.Class(), "delete", err)
		}
	}
	for _, f := range o.def.DenyFields() {
		if len(o.linked(f)) > 0 {
			return NewDeletionError(o.Class(), f.Name())
		}
	}
	for _, f := range o.def.NullifyFields() {
		for _, other := range o.linked(f) {
			other.unlink(o)
		}
		o.unset(f.Name())
	}
	for _, f := range o.def.CascadeFields() {
		for _, other := range o.linked(f) {
			if err := other.delete(cfg, seen); err != nil {
				return err
			}
		}
		o.unset(f.Name())
	}
	if o.def.Config().SoftDelete {
		if f := o.def.DeletedAtField(); f != nil {
			o.values[f.Name()] = time.Now()
		}
	}
	o.deleted = true
	for _, hook := range o.def.Config().OnDelete {
		hook(o)
	}
	return nil
}

// linked returns the instances held by a reference field. Scalar ids
// are not instances and do not participate in delete-rule traversal.
func (o *Object) linked(f *graph.Field) []*Object {
	switch v := o.values[f.Name()].(type) {
	case *Object:
		return []*Object{v}
	case []*Object:
		return v
	case []any:
		var objs []*Object
		for _, e := range v {
			if obj, ok := e.(*Object); ok {
				objs = append(objs, obj)
			}
		}
		return objs
	default:
		return nil
	}
}

// unlink clears every reference field on the instance that currently
// holds other.
func (o *Object) unlink(other *Object) {
	for _, f := range o.def.Fields() {
		if !f.IsReference() {
			continue
		}
		switch v := o.values[f.Name()].(type) {
		case *Object:
			if v == other {
				o.unset(f.Name())
			}
		case []*Object:
			kept := v[:0:0]
			for _, e := range v {
				if e != other {
					kept = append(kept, e)
				}
			}
			o.set(f.Name(), kept)
		case []any:
			kept := v[:0:0]
			for _, e := range v {
				if e != other {
					kept = append(kept, e)
				}
			}
			o.set(f.Name(), kept)
		}
	}
}

// An OpOption adjusts one validate, transform, serialize or lifecycle
// call without touching the class configuration.
type OpOption func(*opConfig)

type opConfig struct {
	operator     any
	ctx          CtxCfg
	allFieldsSet bool
}

// opConfig resolves the per-call configuration against the class
// defaults.
func (o *Object) opConfig(opts []OpOption) opConfig {
	var cfg opConfig
	cfg.ctx.FillDestBlanks = true
	for _, opt := range opts {
		opt(&cfg)
	}
	if !cfg.allFieldsSet {
		cfg.ctx.AllFields = o.def.Config().ValidateAllFields
	}
	return cfg
}

// WithOperator sets the acting operator for the call.
func WithOperator(operator any) OpOption {
	return func(c *opConfig) { c.operator = operator }
}

// WithAllFields toggles batch error collection for the call,
// overriding the class default.
func WithAllFields(v bool) OpOption {
	return func(c *opConfig) {
		c.ctx.AllFields = v
		c.allFieldsSet = true
	}
}

// WithIgnoreWriteonly emits write-only fields on serialization.
func WithIgnoreWriteonly() OpOption {
	return func(c *opConfig) { c.ctx.IgnoreWriteonly = true }
}

// WithoutFillBlanks leaves omitted fields untouched instead of
// assigning blanks and defaults.
func WithoutFillBlanks() OpOption {
	return func(c *opConfig) { c.ctx.FillDestBlanks = false }
}
