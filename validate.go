package morph

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/syssam/morph/schema/field"
)

// Validate checks every field of the instance against its type and
// validator chain. By default the first failure short-circuits with a
// single-keypath ValidationError; with batch collection enabled, all
// failures across the object graph are gathered into one error keyed
// by root-relative keypaths.
func (o *Object) Validate(opts ...OpOption) error {
	return o.validate(o.opConfig(opts))
}

func (o *Object) validate(cfg opConfig) error {
	return validateObject(newVCtx(o, cfg.ctx, cfg.operator), o)
}

// ValidateEach validates the instances concurrently, one goroutine
// per instance. The first failure cancels the remaining work and is
// returned.
func ValidateEach(ctx context.Context, objs []*Object, opts ...OpOption) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, o := range objs {
		o := o // per-iteration copy; required while go.mod targets go < 1.22
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return o.Validate(opts...)
		})
	}
	return g.Wait()
}

// validateObject validates every field of o under ctx. Instances
// already entered by this traversal pass vacuously, which bounds
// recursion over circular reference graphs.
func validateObject(ctx VCtx, o *Object) error {
	if ctx.mgraph.Visited(o) {
		return nil
	}
	ctx.mgraph.Visit(o)
	var collected *ValidationError
	for _, f := range o.def.Fields() {
		v := o.values[f.Name()]
		err := validateValue(ctx.child(f.Name(), v, f.Descriptor()))
		if err = collect(ctx, &collected, err); err != nil {
			return err
		}
	}
	if collected != nil {
		return collected
	}
	return nil
}

// collect routes one failure: under batch collection ValidationErrors
// merge into the accumulator and traversal continues; anything else
// propagates immediately.
func collect(ctx VCtx, dst **ValidationError, err error) error {
	if err == nil {
		return nil
	}
	var verr *ValidationError
	if !ctx.allFields || !errors.As(err, &verr) {
		return err
	}
	if *dst == nil {
		*dst = &ValidationError{Keypaths: make(map[string]string), Root: ctx.root}
	}
	(*dst).merge(verr)
	return nil
}

// validateValue checks one value against its field descriptor: the
// static type first, then the declared validator chain. Validators run
// even for nil values so that presence checks can fire.
func validateValue(ctx VCtx) error {
	d := ctx.fdef
	if ctx.value != nil {
		var err error
		switch d.Info {
		case field.TypeList:
			err = validateList(ctx)
		case field.TypeDict:
			err = validateDict(ctx)
		case field.TypeShape:
			err = validateShape(ctx)
		case field.TypeInstance:
			err = validateInstance(ctx)
		default:
			err = validateScalar(ctx)
		}
		if err != nil {
			return err
		}
	}
	for _, fn := range d.Validators {
		if err := fn(ctx.mctx(ctx.value)); err != nil {
			return NewValidationError(ctx.keypathRoot, err.Error(), ctx.root)
		}
	}
	return nil
}

func validateScalar(ctx VCtx) error {
	d, v := ctx.fdef, ctx.value
	ok := false
	switch d.Info {
	case field.TypeBool:
		_, ok = v.(bool)
	case field.TypeString:
		_, ok = v.(string)
	case field.TypeInt:
		switch v.(type) {
		case int, int64:
			ok = true
		}
	case field.TypeInt64:
		switch v.(type) {
		case int, int64:
			ok = true
		}
	case field.TypeFloat64:
		switch v.(type) {
		case float64, int, int64:
			ok = true
		}
	case field.TypeDecimal:
		_, ok = v.(decimal.Decimal)
	case field.TypeTime:
		_, ok = v.(time.Time)
	case field.TypeUUID:
		if s, isStr := v.(string); isStr {
			_, err := uuid.Parse(s)
			ok = err == nil
		}
	case field.TypeEnum:
		return validateEnum(ctx)
	}
	if !ok {
		return NewValidationError(ctx.keypathRoot,
			fmt.Sprintf("value is not %s", d.Info), ctx.root)
	}
	return nil
}

func validateEnum(ctx VCtx) error {
	s, ok := ctx.value.(string)
	if !ok {
		return NewValidationError(ctx.keypathRoot, "value is not enum", ctx.root)
	}
	enum, err := ctx.owner.def.Graph().FetchEnum(ctx.fdef.EnumName)
	if err != nil {
		return err
	}
	if !enum.Valid(s) {
		return NewValidationError(ctx.keypathRoot,
			fmt.Sprintf("value is not one of enum %s", enum.Name), ctx.root)
	}
	return nil
}

func validateList(ctx VCtx) error {
	items, ok := ctx.value.([]any)
	if !ok {
		if objs, isObjs := ctx.value.([]*Object); isObjs {
			items = make([]any, len(objs))
			for i, o := range objs {
				items[i] = o
			}
		} else {
			return NewValidationError(ctx.keypathRoot, "value is not list", ctx.root)
		}
	}
	var collected *ValidationError
	for i, item := range items {
		err := validateValue(ctx.child(i, item, ctx.fdef.Elem))
		if err = collect(ctx, &collected, err); err != nil {
			return err
		}
	}
	if collected != nil {
		return collected
	}
	return nil
}

func validateDict(ctx VCtx) error {
	m, ok := ctx.value.(map[string]any)
	if !ok {
		return NewValidationError(ctx.keypathRoot, "value is not dict", ctx.root)
	}
	var collected *ValidationError
	for k, item := range m {
		err := validateValue(ctx.child(k, item, ctx.fdef.Elem))
		if err = collect(ctx, &collected, err); err != nil {
			return err
		}
	}
	if collected != nil {
		return collected
	}
	return nil
}

func validateShape(ctx VCtx) error {
	m, ok := ctx.value.(map[string]any)
	if !ok {
		return NewValidationError(ctx.keypathRoot, "value is not shape", ctx.root)
	}
	shape, err := resolveShape(ctx)
	if err != nil {
		return err
	}
	var collected *ValidationError
	for k, sub := range shape {
		// Missing keys validate as nil so presence checks fire.
		err := validateValue(ctx.child(k, m[k], sub))
		if err = collect(ctx, &collected, err); err != nil {
			return err
		}
	}
	if collected != nil {
		return collected
	}
	return nil
}

// resolveShape returns the keyed sub-descriptors of a shape field,
// fetching graph-registered dict types by name when the shape is not
// declared inline.
func resolveShape(ctx VCtx) (map[string]*field.Descriptor, error) {
	d := ctx.fdef
	if len(d.Shape) > 0 {
		return d.Shape, nil
	}
	dict, err := ctx.owner.def.Graph().FetchDict(d.DictName)
	if err != nil {
		return nil, err
	}
	return dict.Shape, nil
}

func validateInstance(ctx VCtx) error {
	switch v := ctx.value.(type) {
	case *Object:
		return validateObject(ctx.childOwner(v), v)
	case string, int, int64:
		// A bare identifier stands in for an unfetched linked instance.
		if ctx.fdef.Storage == field.Embedded {
			return NewValidationError(ctx.keypathRoot, "value is not instance", ctx.root)
		}
		return nil
	default:
		return NewValidationError(ctx.keypathRoot, "value is not instance", ctx.root)
	}
}
