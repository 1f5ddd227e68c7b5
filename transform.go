package morph

import (
	"fmt"
	"time"

	"github.com/go-openapi/inflect"
	"github.com/shopspring/decimal"

	"github.com/syssam/morph/graph"
	"github.com/syssam/morph/schema/field"
)

// Set assigns an incoming keyed payload to the instance through the
// transforming pipeline: keys are matched against the class's accepted
// names, values are coerced to their field types, nested payloads
// build nested instances, and each field's transformer chain runs on
// the way in. Read-only fields are silently skipped. Under strict
// input an unrecognized key fails with a ValidationError keyed by the
// offending key.
func (o *Object) Set(values map[string]any, opts ...OpOption) error {
	cfg := o.opConfig(opts)
	ctx := newVCtx(o, cfg.ctx, cfg.operator).Tctx().
		WithDest(o).
		WithFillBlanks(cfg.ctx.FillDestBlanks)
	return transformObject(ctx, o, values)
}

func transformObject(ctx TCtx, o *Object, values map[string]any) error {
	if ctx.mgraph.Visited(o) {
		return nil
	}
	ctx.mgraph.Visit(o)
	if o.def.Config().StrictInput {
		allowed := o.def.AvailableNames()
		for k := range values {
			if _, ok := allowed[k]; !ok {
				return NewValidationError(keypath(ctx.keypathRoot, k), "key is not allowed", ctx.root)
			}
		}
	}
	for _, f := range o.def.Fields() {
		incoming, found := lookupValue(values, f)
		if !found {
			if !ctx.fillBlanks {
				continue
			}
			if err := fillBlank(ctx, o, f); err != nil {
				return err
			}
			continue
		}
		if f.Descriptor().Readonly {
			continue
		}
		v, err := transformValue(ctx.child(f.Name(), incoming, f.Descriptor()), incoming)
		if err != nil {
			return err
		}
		if v == nil {
			o.unset(f.Name())
			continue
		}
		o.set(f.Name(), v)
	}
	return nil
}

// lookupValue resolves the incoming value for a field: the raw name
// first, then the JSON-facing name, then the reference-key spellings
// for local-key fields.
func lookupValue(values map[string]any, f *graph.Field) (any, bool) {
	if v, ok := values[f.Name()]; ok {
		return v, true
	}
	if v, ok := values[f.JSONName()]; ok {
		return v, true
	}
	if key := f.ReferenceKey(); key != "" {
		if v, ok := values[key]; ok {
			return v, true
		}
		if v, ok := values[inflect.CamelizeDownFirst(key)]; ok {
			return v, true
		}
	}
	return nil, false
}

// fillBlank handles an omitted field when blank-filling is on:
// operator-assigned fields take the acting operator (and require one),
// defaulted fields take their default, everything else stays unset.
func fillBlank(ctx TCtx, o *Object, f *graph.Field) error {
	if _, assigned := o.values[f.Name()]; assigned {
		return nil
	}
	if f.Descriptor().OperatorAssigned {
		if ctx.operator == nil {
			return NewValidationError(keypath(ctx.keypathRoot, f.Name()), "operator is not present", ctx.root)
		}
		o.set(f.Name(), ctx.operator)
		return nil
	}
	if v, ok := f.Default(); ok {
		o.set(f.Name(), v)
	}
	return nil
}

// transformValue coerces one incoming value to its field type,
// recursing through composites, then runs the field's transformer
// chain on the result.
func transformValue(ctx TCtx, original any) (any, error) {
	d := ctx.fdef
	v := ctx.value
	var err error
	if v != nil {
		switch d.Info {
		case field.TypeList:
			v, err = transformList(ctx)
		case field.TypeDict:
			v, err = transformDict(ctx)
		case field.TypeShape:
			v, err = transformShape(ctx)
		case field.TypeInstance:
			v, err = transformInstance(ctx)
		default:
			v, err = coerceScalar(ctx)
		}
		if err != nil {
			return nil, err
		}
	}
	for _, fn := range d.Transformers {
		v, err = fn(ctx.WithValue(v).mctx(original))
		if err != nil {
			return nil, NewValidationError(ctx.keypathRoot, err.Error(), ctx.root)
		}
	}
	return v, nil
}

func transformList(ctx TCtx) (any, error) {
	items, ok := ctx.value.([]any)
	if !ok {
		return nil, NewValidationError(ctx.keypathRoot, "value is not list", ctx.root)
	}
	out := make([]any, len(items))
	for i, item := range items {
		v, err := transformValue(ctx.child(i, item, ctx.fdef.Elem), item)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func transformDict(ctx TCtx) (any, error) {
	m, ok := ctx.value.(map[string]any)
	if !ok {
		return nil, NewValidationError(ctx.keypathRoot, "value is not dict", ctx.root)
	}
	out := make(map[string]any, len(m))
	for k, item := range m {
		v, err := transformValue(ctx.child(k, item, ctx.fdef.Elem), item)
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

func transformShape(ctx TCtx) (any, error) {
	m, ok := ctx.value.(map[string]any)
	if !ok {
		return nil, NewValidationError(ctx.keypathRoot, "value is not shape", ctx.root)
	}
	shape, err := resolveShape(ctx.Vctx())
	if err != nil {
		return nil, err
	}
	// Incoming keys arrive in either spelling when the class camelizes:
	// underscore them back to the declared names before matching, so a
	// serialized tree feeds back in unchanged.
	in := make(map[string]any, len(m))
	for k, item := range m {
		name := k
		if _, declared := shape[name]; !declared && ctx.cfgOwner.CamelizeKeys {
			name = inflect.Underscore(k)
		}
		if _, declared := shape[name]; !declared {
			return nil, NewValidationError(keypath(ctx.keypathRoot, k), "key is not allowed", ctx.root)
		}
		in[name] = item
	}
	// Every declared key lands in the result; omitted keys carry nil.
	out := make(map[string]any, len(shape))
	for k, sub := range shape {
		item, present := in[k]
		if !present {
			out[k] = nil
			continue
		}
		v, err := transformValue(ctx.child(k, item, sub), item)
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

func transformInstance(ctx TCtx) (any, error) {
	switch v := ctx.value.(type) {
	case *Object:
		return v, nil
	case map[string]any:
		def, err := ctx.owner.def.Graph().Fetch(ctx.fdef.ForeignClass)
		if err != nil {
			return nil, err
		}
		nested := New(def)
		if err := transformObject(ctx.childOwner(nested), nested, v); err != nil {
			return nil, err
		}
		return nested, nil
	case string, int, int64:
		if ctx.fdef.Storage == field.Embedded {
			return nil, NewValidationError(ctx.keypathRoot, "value is not instance", ctx.root)
		}
		return v, nil
	case float64:
		// JSON numeric identifiers arrive as float64.
		if ctx.fdef.Storage == field.Embedded {
			return nil, NewValidationError(ctx.keypathRoot, "value is not instance", ctx.root)
		}
		return int(v), nil
	default:
		return nil, NewValidationError(ctx.keypathRoot, "value is not instance", ctx.root)
	}
}

// coerceScalar converts the loosely-typed forms a JSON payload
// produces into the field's value type. Values already of the target
// type pass through; anything unconvertible fails with a
// ValidationError.
func coerceScalar(ctx TCtx) (any, error) {
	d, v := ctx.fdef, ctx.value
	switch d.Info {
	case field.TypeBool:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case field.TypeString, field.TypeEnum:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case field.TypeUUID:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case field.TypeInt:
		switch n := v.(type) {
		case int:
			return n, nil
		case int64:
			return int(n), nil
		case float64:
			if n == float64(int(n)) {
				return int(n), nil
			}
		}
	case field.TypeInt64:
		switch n := v.(type) {
		case int64:
			return n, nil
		case int:
			return int64(n), nil
		case float64:
			if n == float64(int64(n)) {
				return int64(n), nil
			}
		}
	case field.TypeFloat64:
		switch n := v.(type) {
		case float64:
			return n, nil
		case int:
			return float64(n), nil
		case int64:
			return float64(n), nil
		}
	case field.TypeDecimal:
		switch n := v.(type) {
		case decimal.Decimal:
			return n, nil
		case string:
			dec, err := decimal.NewFromString(n)
			if err == nil {
				return dec, nil
			}
		case float64:
			return decimal.NewFromFloat(n), nil
		case int:
			return decimal.NewFromInt(int64(n)), nil
		case int64:
			return decimal.NewFromInt(n), nil
		}
	case field.TypeTime:
		switch t := v.(type) {
		case time.Time:
			return t, nil
		case string:
			parsed, err := time.Parse(time.RFC3339, t)
			if err == nil {
				return parsed, nil
			}
		}
	}
	return nil, NewValidationError(ctx.keypathRoot,
		fmt.Sprintf("value is not %s", d.Info), ctx.root)
}
