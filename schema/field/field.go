package field

import (
	"fmt"

	"github.com/google/uuid"
)

// A Context carries the traversal state a modifier may inspect.
// It is implemented by the engine's context records. Modifiers must
// not retain or mutate the context they receive.
type Context interface {
	// Value is the current value of the field being processed.
	Value() any
	// Original is the pre-transform value of the field.
	Original() any
	// Root is the root instance of the traversal.
	Root() any
	// Owner is the nearest enclosing instance on which the value is defined.
	Owner() any
	// Operator is the acting operator, or nil.
	Operator() any
	// Keypath is the root-relative keypath of the value.
	Keypath() string
}

// A Transformer is a value-bearing modifier. It receives the traversal
// context and returns the transformed value.
type Transformer func(Context) (any, error)

// A Validator checks the value carried by the context and reports a
// human-readable failure message through its returned error.
type Validator func(Context) error

// A Descriptor holds the full declaration of one field: its type
// information, storage kind, delete rule, usage tag, defaults, access
// rules and modifier chain. Descriptors are built with the fluent
// builders in this package and compiled into graph definitions.
type Descriptor struct {
	// Name is the internal (snake_case) name of the field.
	Name string
	// Info holds the static type of the field value.
	Info Type
	// Storage describes where a reference field keeps its identifier.
	Storage Storage
	// OnDelete is the delete rule for reference fields.
	OnDelete DeleteRule
	// Usage tags the field with a framework-reserved role.
	Usage Usage
	// DefaultValue is the literal default, if any.
	DefaultValue any
	// DefaultFunc produces a default at instantiation time, if set.
	DefaultFunc func() any
	// Readonly fields reject external assignment.
	Readonly bool
	// Writeonly fields are suppressed on serialization.
	Writeonly bool
	// OperatorAssigned fields require an acting operator at creation
	// and take the operator as their value when unassigned.
	OperatorAssigned bool
	// ForeignClass names the linked class for reference fields.
	ForeignClass string
	// ForeignKey names the field on the foreign class holding the link.
	ForeignKey string
	// EnumName names a graph-registered enum type.
	EnumName string
	// DictName names a graph-registered structured-dict type.
	DictName string
	// Elem describes the element of list and dict fields.
	Elem *Descriptor
	// Shape holds the keyed sub-descriptors of shape fields.
	Shape map[string]*Descriptor
	// Transformers is the ordered transform chain.
	Transformers []Transformer
	// Validators is the ordered validation chain.
	Validators []Validator
	// Err holds a builder misuse error, surfaced at registration.
	Err error
}

// Bool returns a new bool field descriptor.
func Bool(name string) *Descriptor {
	return &Descriptor{Name: name, Info: TypeBool}
}

// String returns a new string field descriptor.
func String(name string) *Descriptor {
	return &Descriptor{Name: name, Info: TypeString}
}

// Int returns a new int field descriptor.
func Int(name string) *Descriptor {
	return &Descriptor{Name: name, Info: TypeInt}
}

// Int64 returns a new int64 field descriptor.
func Int64(name string) *Descriptor {
	return &Descriptor{Name: name, Info: TypeInt64}
}

// Float64 returns a new float64 field descriptor.
func Float64(name string) *Descriptor {
	return &Descriptor{Name: name, Info: TypeFloat64}
}

// Decimal returns a new arbitrary-precision decimal field descriptor.
// Values are decimal.Decimal.
func Decimal(name string) *Descriptor {
	return &Descriptor{Name: name, Info: TypeDecimal}
}

// Time returns a new time field descriptor. Values are time.Time.
func Time(name string) *Descriptor {
	return &Descriptor{Name: name, Info: TypeTime}
}

// UUID returns a new uuid field descriptor. Values are canonical
// uuid strings.
func UUID(name string) *Descriptor {
	return &Descriptor{Name: name, Info: TypeUUID}
}

// Enum returns a new enum field descriptor referencing the enum type
// registered under enumName on the class graph.
func Enum(name, enumName string) *Descriptor {
	return &Descriptor{Name: name, Info: TypeEnum, EnumName: enumName}
}

// List returns a new list field descriptor with the given element
// descriptor.
func List(name string, elem *Descriptor) *Descriptor {
	d := &Descriptor{Name: name, Info: TypeList, Elem: elem}
	if elem == nil {
		d.Err = fmt.Errorf("list field %q requires an element descriptor", name)
	}
	return d
}

// Dict returns a new keyed-mapping field descriptor whose values all
// share the given element descriptor.
func Dict(name string, elem *Descriptor) *Descriptor {
	d := &Descriptor{Name: name, Info: TypeDict, Elem: elem}
	if elem == nil {
		d.Err = fmt.Errorf("dict field %q requires an element descriptor", name)
	}
	return d
}

// Shape returns a new shape field descriptor: a mapping with a fixed
// set of keyed sub-descriptors.
func Shape(name string, shape map[string]*Descriptor) *Descriptor {
	d := &Descriptor{Name: name, Info: TypeShape, Shape: shape}
	if len(shape) == 0 {
		d.Err = fmt.Errorf("shape field %q requires keyed sub-descriptors", name)
	}
	return d
}

// ShapeNamed returns a new shape field descriptor referencing the
// structured-dict type registered under dictName on the class graph.
func ShapeNamed(name, dictName string) *Descriptor {
	return &Descriptor{Name: name, Info: TypeShape, DictName: dictName}
}

// Instance returns a new nested-instance field descriptor. The value
// is an instance of the named class on the same graph.
func Instance(name, className string) *Descriptor {
	return &Descriptor{Name: name, Info: TypeInstance, ForeignClass: className}
}

// Ref returns a new reference field descriptor linking to the named
// class. The storage kind defaults to LocalKey; use ForeignOn to flip
// the link to the foreign side.
func Ref(name, className string) *Descriptor {
	return &Descriptor{
		Name:         name,
		Info:         TypeInstance,
		Storage:      LocalKey,
		ForeignClass: className,
	}
}

// =============================================================================
// Builder options
// =============================================================================

// Primary marks the field as the primary field of its class.
func (d *Descriptor) Primary() *Descriptor {
	return d.usage(UsagePrimary)
}

// CreatedAt marks the field as the record creation timestamp.
func (d *Descriptor) CreatedAt() *Descriptor {
	return d.usage(UsageCreatedAt)
}

// UpdatedAt marks the field as the record update timestamp.
func (d *Descriptor) UpdatedAt() *Descriptor {
	return d.usage(UsageUpdatedAt)
}

// DeletedAt marks the field as the soft-delete timestamp.
func (d *Descriptor) DeletedAt() *Descriptor {
	return d.usage(UsageDeletedAt)
}

func (d *Descriptor) usage(u Usage) *Descriptor {
	if d.Usage != UsageNone && d.Usage != u {
		d.err(fmt.Errorf("field %q cannot be both %s and %s", d.Name, d.Usage, u))
		return d
	}
	d.Usage = u
	return d
}

// Default sets the literal default value of the field. A func() any
// is retained as a default factory called at instantiation time.
func (d *Descriptor) Default(v any) *Descriptor {
	if fn, ok := v.(func() any); ok {
		d.DefaultFunc = fn
		return d
	}
	d.DefaultValue = v
	return d
}

// DefaultUUID sets a default factory producing a new canonical uuid
// string per instance.
func (d *Descriptor) DefaultUUID() *Descriptor {
	if d.Info != TypeUUID && d.Info != TypeString {
		d.err(fmt.Errorf("field %q: uuid default requires a uuid or string field", d.Name))
		return d
	}
	d.DefaultFunc = func() any { return uuid.NewString() }
	return d
}

// ReadOnly marks the field as rejecting external assignment.
func (d *Descriptor) ReadOnly() *Descriptor {
	d.Readonly = true
	return d
}

// WriteOnly marks the field as suppressed on serialization.
func (d *Descriptor) WriteOnly() *Descriptor {
	d.Writeonly = true
	return d
}

// AssignedByOperator requires an acting operator at creation. When the
// field is not explicitly assigned, the operator becomes its value.
func (d *Descriptor) AssignedByOperator() *Descriptor {
	d.OperatorAssigned = true
	return d
}

// DeleteRule sets the delete rule of a reference field.
func (d *Descriptor) DeleteRule(rule DeleteRule) *Descriptor {
	if d.Storage == Embedded {
		d.err(fmt.Errorf("field %q: delete rule requires a reference field", d.Name))
		return d
	}
	d.OnDelete = rule
	return d
}

// ForeignOn flips the reference to foreign-key storage: the named
// field on the foreign class holds the link back to this class.
func (d *Descriptor) ForeignOn(foreignKey string) *Descriptor {
	if d.ForeignClass == "" {
		d.err(fmt.Errorf("field %q: foreign storage requires a reference field", d.Name))
		return d
	}
	d.Storage = ForeignKey
	d.ForeignKey = foreignKey
	return d
}

// Transform appends a transformer to the field's modifier chain.
func (d *Descriptor) Transform(fn Transformer) *Descriptor {
	d.Transformers = append(d.Transformers, fn)
	return d
}

// Validate appends a validator to the field's modifier chain.
func (d *Descriptor) Validate(fn Validator) *Descriptor {
	d.Validators = append(d.Validators, fn)
	return d
}

func (d *Descriptor) err(err error) {
	if d.Err == nil {
		d.Err = err
	}
}
