package morph

import (
	"encoding/json"
	"time"

	"github.com/go-openapi/inflect"
	"github.com/shopspring/decimal"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/syssam/morph/schema/field"
)

// ToJSON renders the instance as a JSON-ready tree of maps, slices
// and scalars. Keys take their JSON-facing spelling, write-only
// fields are suppressed unless explicitly ignored, times render as
// RFC 3339 strings and decimals as exact strings. An instance reached
// again through a circular reference renders as a primary-key-only
// stub instead of recursing.
func (o *Object) ToJSON(opts ...OpOption) (map[string]any, error) {
	cfg := o.opConfig(opts)
	for _, check := range o.def.Config().CanRead {
		if err := check(o, cfg.operator); err != nil {
			return nil, NewPermissionError(o.Class(), "read", err)
		}
	}
	return jsonObject(newJCtx(o, cfg.ctx), o), nil
}

// MarshalMsgpack renders the instance's JSON tree in MessagePack
// encoding. With no options it also satisfies msgpack.Marshaler, so
// instances nest inside other msgpack-encoded values.
func (o *Object) MarshalMsgpack(opts ...OpOption) ([]byte, error) {
	tree, err := o.ToJSON(opts...)
	if err != nil {
		return nil, err
	}
	return msgpack.Marshal(tree)
}

// MarshalJSON encodes the instance with default serialization options.
func (o *Object) MarshalJSON() ([]byte, error) {
	tree, err := o.ToJSON()
	if err != nil {
		return nil, err
	}
	return json.Marshal(tree)
}

func jsonObject(ctx JCtx, o *Object) map[string]any {
	if ctx.inChain(o) {
		return jsonStub(o)
	}
	ctx = ctx.push(o)
	ctx.cfg = o.def.Config()
	ctx.graph = o.def.Graph()
	out := make(map[string]any, len(o.def.Fields()))
	for _, f := range o.def.Fields() {
		d := f.Descriptor()
		if d.Writeonly && !ctx.ignoreWriteonly {
			continue
		}
		v := o.values[f.Name()]
		key := f.JSONName()
		// A bare identifier on a local-key field emits under the
		// external reference-key name.
		if refKey := f.ReferenceKey(); refKey != "" {
			if _, isObj := v.(*Object); !isObj && v != nil {
				if ctx.cfg.CamelizeKeys {
					refKey = inflect.CamelizeDownFirst(refKey)
				}
				out[refKey] = v
				continue
			}
		}
		out[key] = jsonValue(ctx.WithFdef(d), v)
	}
	return out
}

// jsonStub renders a revisited instance as its primary key alone, or
// nil when the class declares no primary field.
func jsonStub(o *Object) map[string]any {
	pf := o.def.PrimaryField()
	if pf == nil {
		return nil
	}
	return map[string]any{pf.JSONName(): o.values[pf.Name()]}
}

func jsonValue(ctx JCtx, v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case *Object:
		return jsonObject(ctx, val)
	case []*Object:
		out := make([]any, len(val))
		for i, obj := range val {
			out[i] = jsonObject(ctx, obj)
		}
		return out
	case time.Time:
		return val.UTC().Format(time.RFC3339)
	case decimal.Decimal:
		return val.String()
	case []any:
		out := make([]any, len(val))
		elem := elemDescriptor(ctx.fdef)
		for i, item := range val {
			out[i] = jsonValue(ctx.WithFdef(elem), item)
		}
		return out
	case map[string]any:
		return jsonMap(ctx, val)
	default:
		return val
	}
}

// jsonMap renders dict and shape values. Shape keys are declared
// names and camelize with the class's keys; dict keys are caller data
// and pass through untouched.
func jsonMap(ctx JCtx, m map[string]any) any {
	d := ctx.fdef
	out := make(map[string]any, len(m))
	if d != nil && d.Info == field.TypeShape {
		for k, item := range m {
			key := k
			if ctx.cfg.CamelizeKeys {
				key = inflect.CamelizeDownFirst(k)
			}
			out[key] = jsonValue(ctx.WithFdef(shapeElem(ctx, k)), item)
		}
		return out
	}
	elem := elemDescriptor(d)
	for k, item := range m {
		out[k] = jsonValue(ctx.WithFdef(elem), item)
	}
	return out
}

func elemDescriptor(d *field.Descriptor) *field.Descriptor {
	if d == nil {
		return nil
	}
	return d.Elem
}

// shapeElem resolves the sub-descriptor of one shape key, reaching
// into the graph for named dict types.
func shapeElem(ctx JCtx, key string) *field.Descriptor {
	d := ctx.fdef
	if len(d.Shape) > 0 {
		return d.Shape[key]
	}
	if d.DictName == "" || ctx.graph == nil {
		return nil
	}
	dict, err := ctx.graph.FetchDict(d.DictName)
	if err != nil {
		return nil
	}
	return dict.Shape[key]
}
