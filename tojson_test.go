package morph

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/syssam/morph/graph"
	"github.com/syssam/morph/schema/field"
)

func TestToJSONKeys(t *testing.T) {
	g := newGraph(t)
	def := g.MustRegister(graph.NewSchema("User",
		field.String("full_name"),
		field.String("password").WriteOnly(),
		field.Int("age"),
	))
	o := New(def)
	o.set("full_name", "Ada Lovelace")
	o.set("password", "secret")

	out, err := o.ToJSON()
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", out["fullName"])
	_, ok := out["password"]
	assert.False(t, ok, "write-only fields are suppressed")
	v, ok := out["age"]
	assert.True(t, ok)
	assert.Nil(t, v, "unset fields render as null")

	out, err = o.ToJSON(WithIgnoreWriteonly())
	require.NoError(t, err)
	assert.Equal(t, "secret", out["password"])
}

func TestToJSONRawKeys(t *testing.T) {
	g := newGraph(t)
	def := g.MustRegister(
		graph.NewSchema("User", field.String("full_name")),
		graph.WithCamelizeKeys(false),
	)
	o := New(def)
	o.set("full_name", "ada")

	out, err := o.ToJSON()
	require.NoError(t, err)
	assert.Equal(t, "ada", out["full_name"])
}

func TestToJSONScalars(t *testing.T) {
	g := newGraph(t)
	def := g.MustRegister(graph.NewSchema("Order",
		field.Time("placed_at"),
		field.Decimal("total"),
		field.List("tags", field.String("tag")),
	))
	o := New(def)
	o.set("placed_at", time.Date(2026, 8, 24, 10, 30, 0, 0, time.UTC))
	o.set("total", decimal.RequireFromString("19.99"))
	o.set("tags", []any{"go", "orm"})

	out, err := o.ToJSON()
	require.NoError(t, err)
	assert.Equal(t, "2026-08-24T10:30:00Z", out["placedAt"])
	assert.Equal(t, "19.99", out["total"])
	assert.Equal(t, []any{"go", "orm"}, out["tags"])
}

func TestToJSONShapeKeys(t *testing.T) {
	g := newGraph(t)
	def := g.MustRegister(graph.NewSchema("User",
		field.Shape("settings", map[string]*field.Descriptor{
			"color_theme": field.String("color_theme"),
		}),
		field.Dict("raw_counts", field.Int("count")),
	))
	o := New(def)
	o.set("settings", map[string]any{"color_theme": "dark"})
	o.set("raw_counts", map[string]any{"some_key": 1})

	out, err := o.ToJSON()
	require.NoError(t, err)
	settings := out["settings"].(map[string]any)
	assert.Equal(t, "dark", settings["colorTheme"], "shape keys camelize")
	counts := out["rawCounts"].(map[string]any)
	assert.Equal(t, 1, counts["some_key"], "dict keys pass through untouched")
}

func TestToJSONReferenceKey(t *testing.T) {
	g := newGraph(t)
	customerDef := g.MustRegister(graph.NewSchema("Customer",
		field.String("name"),
	))
	orderDef := g.MustRegister(graph.NewSchema("Order",
		field.Ref("customer", "Customer"),
	))

	o := New(orderDef)
	o.set("customer", 7)
	out, err := o.ToJSON()
	require.NoError(t, err)
	assert.Equal(t, 7, out["customerId"], "bare identifiers emit under the reference key")
	_, ok := out["customer"]
	assert.False(t, ok)

	customer := New(customerDef)
	customer.set("name", "ada")
	o.set("customer", customer)
	out, err = o.ToJSON()
	require.NoError(t, err)
	nested, ok := out["customer"].(map[string]any)
	require.True(t, ok, "linked instances nest under the field name")
	assert.Equal(t, "ada", nested["name"])
}

func TestToJSONNestedList(t *testing.T) {
	g := newGraph(t)
	itemDef := g.MustRegister(graph.NewSchema("OrderItem",
		field.String("sku"),
	))
	orderDef := g.MustRegister(graph.NewSchema("Order",
		field.Ref("items", "OrderItem").ForeignOn("order"),
	))

	o := New(orderDef)
	a, b := New(itemDef), New(itemDef)
	a.set("sku", "A-1")
	b.set("sku", "B-2")
	o.set("items", []*Object{a, b})

	out, err := o.ToJSON()
	require.NoError(t, err)
	items := out["items"].([]any)
	require.Len(t, items, 2)
	assert.Equal(t, "A-1", items[0].(map[string]any)["sku"])
}

func TestToJSONCycle(t *testing.T) {
	g := newGraph(t)
	userDef := g.MustRegister(graph.NewSchema("User",
		field.UUID("id").Primary().DefaultUUID(),
		field.String("name"),
		field.Instance("profile", "Profile"),
	))
	profileDef := g.MustRegister(graph.NewSchema("Profile",
		field.String("bio"),
		field.Instance("user", "User"),
	))

	user, profile := New(userDef), New(profileDef)
	user.set("name", "ada")
	user.set("profile", profile)
	profile.set("bio", "pioneer")
	profile.set("user", user)

	out, err := user.ToJSON()
	require.NoError(t, err)
	nested := out["profile"].(map[string]any)
	assert.Equal(t, "pioneer", nested["bio"])
	stub, ok := nested["user"].(map[string]any)
	require.True(t, ok, "a revisited instance renders as its primary key")
	assert.Equal(t, map[string]any{"id": user.PrimaryValue()}, stub)

	// No primary field means the stub degrades to null.
	out, err = profile.ToJSON()
	require.NoError(t, err)
	nestedUser := out["user"].(map[string]any)
	assert.Nil(t, nestedUser["profile"])
}

func TestToJSONSiblingsNotTruncated(t *testing.T) {
	g := newGraph(t)
	tagDef := g.MustRegister(graph.NewSchema("Tag", field.String("label")))
	postDef := g.MustRegister(graph.NewSchema("Post",
		field.Ref("tags", "Tag").ForeignOn("post"),
	))

	post := New(postDef)
	tag := New(tagDef)
	tag.set("label", "go")
	// The same instance appears twice as siblings; only true ancestry
	// truncates.
	post.set("tags", []*Object{tag, tag})

	out, err := post.ToJSON()
	require.NoError(t, err)
	tags := out["tags"].([]any)
	require.Len(t, tags, 2)
	for _, v := range tags {
		assert.Equal(t, "go", v.(map[string]any)["label"])
	}
}

func TestToJSONCanRead(t *testing.T) {
	g := newGraph(t)
	denied := errors.New("classified")
	def := g.MustRegister(graph.NewSchema("Doc", field.String("body")),
		graph.WithCanRead(func(obj, operator any) error {
			if operator == nil {
				return denied
			}
			return nil
		}),
	)
	o := New(def)

	_, err := o.ToJSON()
	require.Error(t, err)
	assert.True(t, IsPermission(err))
	assert.ErrorIs(t, err, denied)

	_, err = o.ToJSON(WithOperator("reader"))
	assert.NoError(t, err)
}

func TestMarshalJSON(t *testing.T) {
	g := newGraph(t)
	def := g.MustRegister(graph.NewSchema("User", field.String("full_name")))
	o := New(def)
	o.set("full_name", "ada")

	data, err := json.Marshal(o)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "ada", out["fullName"])
}

func TestMarshalMsgpack(t *testing.T) {
	g := newGraph(t)
	def := g.MustRegister(graph.NewSchema("User",
		field.String("full_name"),
		field.Int("age"),
	))
	o := New(def)
	o.set("full_name", "ada")
	o.set("age", 36)

	data, err := o.MarshalMsgpack()
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, msgpack.Unmarshal(data, &out))
	assert.Equal(t, "ada", out["fullName"])
	assert.EqualValues(t, 36, out["age"])
}
