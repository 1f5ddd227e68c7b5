package morph

import (
	"github.com/syssam/morph/graph"
	"github.com/syssam/morph/schema/field"
)

// Context records thread the traversal state through every recursive
// validate, transform and serialize call. Records are immutable:
// deriving a child context copies every field not explicitly
// overridden and never mutates the original, so sibling branches of a
// traversal cannot leak state into each other.

// CtxCfg holds the traversal configuration flags seeded at the root
// of an operation.
type CtxCfg struct {
	// AllFields collects every field error instead of failing fast.
	AllFields bool
	// IgnoreWriteonly emits write-only fields on serialization.
	IgnoreWriteonly bool
	// FillDestBlanks assigns blanks/defaults to omitted fields instead
	// of leaving them untouched.
	FillDestBlanks bool
}

// A Ctx is the generic modifier-facing context: the snapshot a field
// modifier may inspect while transforming or validating one value. It
// implements field.Context.
type Ctx struct {
	root     *Object
	owner    *Object
	parent   any
	value    any
	original any

	keypathRoot   string
	keypathOwner  string
	keypathParent string

	fdef     *field.Descriptor
	operator any
	mgraph   *MGraph
}

// Value returns the current value of the field being processed.
func (c *Ctx) Value() any { return c.value }

// Original returns the pre-transform value of the field.
func (c *Ctx) Original() any { return c.original }

// Root returns the root instance of the traversal.
func (c *Ctx) Root() any { return c.root }

// Owner returns the nearest enclosing instance on which the value is
// defined.
func (c *Ctx) Owner() any { return c.owner }

// Operator returns the acting operator, or nil.
func (c *Ctx) Operator() any { return c.operator }

// Keypath returns the root-relative keypath of the value.
func (c *Ctx) Keypath() string { return c.keypathRoot }

// KeypathOwner returns the owner-relative keypath of the value.
func (c *Ctx) KeypathOwner() string { return c.keypathOwner }

// KeypathParent returns the parent-relative key of the value.
func (c *Ctx) KeypathParent() string { return c.keypathParent }

// Fdef returns the active field descriptor.
func (c *Ctx) Fdef() *field.Descriptor { return c.fdef }

// MGraph returns the shared instance tracker of the traversal.
func (c *Ctx) MGraph() *MGraph { return c.mgraph }

var _ field.Context = (*Ctx)(nil)

// A VCtx is the context on which validating performs. It carries the
// information validators need to key their failures correctly.
type VCtx struct {
	value any

	keypathRoot   string
	keypathOwner  string
	keypathParent string

	root     *Object
	cfgRoot  *graph.Config
	owner    *Object
	cfgOwner *graph.Config
	parent   any

	fdef      *field.Descriptor
	operator  any
	allFields bool
	mgraph    *MGraph
}

// newVCtx seeds a root validating context for the given instance.
func newVCtx(root *Object, cfg CtxCfg, operator any) VCtx {
	return VCtx{
		value:     root,
		root:      root,
		cfgRoot:   root.def.Config(),
		owner:     root,
		cfgOwner:  root.def.Config(),
		parent:    root,
		operator:  operator,
		allFields: cfg.AllFields,
		mgraph:    NewMGraph(),
	}
}

// WithValue derives a context carrying a new current value.
func (c VCtx) WithValue(v any) VCtx {
	c.value = v
	return c
}

// WithFdef derives a context carrying a new active field descriptor.
func (c VCtx) WithFdef(fdef *field.Descriptor) VCtx {
	c.fdef = fdef
	return c
}

// WithAllFields derives a context with batch collection toggled.
func (c VCtx) WithAllFields(v bool) VCtx {
	c.allFields = v
	return c
}

// child derives a context for the value at key inside the current
// value: the key is appended to all three keypaths and the current
// value becomes the parent.
func (c VCtx) child(key any, value any, fdef *field.Descriptor) VCtx {
	parent := c.value
	c.keypathRoot = keypath(c.keypathRoot, key)
	c.keypathOwner = keypath(c.keypathOwner, key)
	c.keypathParent = keypath("", key)
	c.parent = parent
	c.value = value
	c.fdef = fdef
	return c
}

// childOwner derives a context entering a nested instance: the owner
// is reassigned and the owner-relative keypath restarts.
func (c VCtx) childOwner(o *Object) VCtx {
	c.owner = o
	c.cfgOwner = o.def.Config()
	c.keypathOwner = ""
	c.value = o
	return c
}

// mctx lifts the validating context into the generic modifier context.
func (c VCtx) mctx(original any) *Ctx {
	return &Ctx{
		root:          c.root,
		owner:         c.owner,
		parent:        c.parent,
		value:         c.value,
		original:      original,
		keypathRoot:   c.keypathRoot,
		keypathOwner:  c.keypathOwner,
		keypathParent: c.keypathParent,
		fdef:          c.fdef,
		operator:      c.operator,
		mgraph:        c.mgraph,
	}
}

// Tctx lifts into a transforming context, pre-populating the
// transform-only fields with safe defaults: no destination object and
// fill-blanks enabled.
func (c VCtx) Tctx() TCtx {
	return TCtx{VCtx: c, fillBlanks: true}
}

// A TCtx is the context on which transforming performs. Eager
// validations run during transforming, so a transforming context is a
// superset of a validating one, plus the destination object being
// populated and the fill-blanks flag.
type TCtx struct {
	VCtx

	dest       *Object
	fillBlanks bool
}

// Vctx drops back to the validating view, used when a transform step
// eagerly validates a sub-value before transforming it.
func (c TCtx) Vctx() VCtx { return c.VCtx }

// WithDest derives a context carrying a new destination object.
func (c TCtx) WithDest(dest *Object) TCtx {
	c.dest = dest
	return c
}

// WithFillBlanks derives a context with blank-filling toggled.
func (c TCtx) WithFillBlanks(v bool) TCtx {
	c.fillBlanks = v
	return c
}

// WithValue derives a context carrying a new current value.
func (c TCtx) WithValue(v any) TCtx {
	c.VCtx = c.VCtx.WithValue(v)
	return c
}

// child derives a transforming context for the value at key inside the
// current value.
func (c TCtx) child(key any, value any, fdef *field.Descriptor) TCtx {
	c.VCtx = c.VCtx.child(key, value, fdef)
	return c
}

// childOwner derives a transforming context entering a nested
// instance. The nested instance becomes both owner and destination.
func (c TCtx) childOwner(o *Object) TCtx {
	c.VCtx = c.VCtx.childOwner(o)
	c.dest = o
	return c
}

// A JCtx is the context on which serialization performs. The entity
// chain records which instances are already being rendered so that
// circular reference graphs truncate instead of recursing without
// bound.
type JCtx struct {
	value           any
	cfg             *graph.Config
	graph           *graph.Graph
	fdef            *field.Descriptor
	ignoreWriteonly bool
	chain           []*Object
}

// newJCtx seeds a root serializing context for the given instance.
func newJCtx(root *Object, cfg CtxCfg) JCtx {
	return JCtx{
		value:           root,
		cfg:             root.def.Config(),
		graph:           root.def.Graph(),
		ignoreWriteonly: cfg.IgnoreWriteonly,
	}
}

// WithValue derives a context carrying a new current value.
func (c JCtx) WithValue(v any) JCtx {
	c.value = v
	return c
}

// WithFdef derives a context carrying a new active field descriptor.
func (c JCtx) WithFdef(fdef *field.Descriptor) JCtx {
	c.fdef = fdef
	return c
}

// push derives a context whose entity chain additionally holds o. The
// chain is copied: sibling branches must not observe each other's
// descents.
func (c JCtx) push(o *Object) JCtx {
	chain := make([]*Object, len(c.chain), len(c.chain)+1)
	copy(chain, c.chain)
	c.chain = append(chain, o)
	return c
}

// inChain reports whether o is already being rendered by an enclosing
// frame.
func (c JCtx) inChain(o *Object) bool {
	for _, e := range c.chain {
		if e == o {
			return true
		}
	}
	return false
}
