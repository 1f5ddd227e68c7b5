package morph

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/morph/graph"
	"github.com/syssam/morph/schema/field"
	"github.com/syssam/morph/schema/mixin"
)

func newGraph(t *testing.T) *graph.Graph {
	t.Helper()
	return graph.NewRegistry().Graph("main")
}

func TestNewAppliesDefaults(t *testing.T) {
	g := newGraph(t)
	var created int
	def := g.MustRegister(graph.NewSchema("User",
		field.UUID("id").Primary().DefaultUUID(),
		field.Int("age").Default(18),
		field.String("name"),
	), graph.WithOnCreate(func(obj any) { created++ }))

	o := New(def)
	assert.Equal(t, 1, created)
	assert.True(t, o.IsNew())
	assert.Equal(t, "User", o.Class())

	age, ok := o.Get("age")
	require.True(t, ok)
	assert.Equal(t, 18, age)

	id, ok := o.Get("id")
	require.True(t, ok)
	assert.NotEmpty(t, id)
	assert.Equal(t, id, o.PrimaryValue())

	_, ok = o.Get("name")
	assert.False(t, ok)

	other := New(def)
	assert.NotEqual(t, id, other.PrimaryValue(), "function defaults are per instance")
}

func TestCreate(t *testing.T) {
	g := newGraph(t)
	g.MustRegister(graph.NewSchema("User", field.String("name")))

	o, err := Create(g, "User")
	require.NoError(t, err)
	assert.Equal(t, "User", o.Class())

	_, err = Create(g, "Ghost")
	require.Error(t, err)
	assert.True(t, graph.IsNotFound(err))
}

func TestUpdate(t *testing.T) {
	g := newGraph(t)
	def := g.MustRegister(graph.NewSchema("Order",
		field.String("note"),
		field.Ref("customer", "Customer"),
	))
	o := New(def)

	require.NoError(t, o.Update(map[string]any{"note": "rush", "customer_id": 7}))
	note, _ := o.Get("note")
	assert.Equal(t, "rush", note)
	assert.Equal(t, 7, mustGet(t, o, "customer"), "reference-key spellings assign to their field")
	assert.ElementsMatch(t, []string{"note", "customer"}, o.Modified())

	out, err := o.ToJSON()
	require.NoError(t, err)
	assert.Equal(t, 7, out["customerId"], "updated reference identifiers survive serialization")

	err = o.Update(map[string]any{"ghost": 1})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Keypaths, "ghost")

	err = o.Update(map[string]any{"noteValue": 1})
	assert.Error(t, err, "camelized spellings are not update names")

	require.NoError(t, o.Update(map[string]any{"note": nil}))
	_, ok := o.Get("note")
	assert.False(t, ok)
}

func TestSave(t *testing.T) {
	g := newGraph(t)
	def := g.MustRegister(graph.NewSchema("User",
		field.String("name").Required(),
	).Use(mixin.Time{}))
	o := New(def)

	err := o.Save()
	require.Error(t, err, "required field blocks saving")
	assert.True(t, IsValidation(err))

	require.NoError(t, o.Set(map[string]any{"name": "ada"}))
	require.NoError(t, o.Save())
	assert.False(t, o.IsNew())
	assert.Empty(t, o.Modified())

	createdAt, ok := o.Get("created_at")
	require.True(t, ok)
	updatedAt, ok := o.Get("updated_at")
	require.True(t, ok)
	assert.IsType(t, time.Time{}, createdAt)
	assert.IsType(t, time.Time{}, updatedAt)

	require.NoError(t, o.Save())
	assert.Equal(t, createdAt, mustGet(t, o, "created_at"), "creation stamp is set once")
}

func TestSaveHooksAndPermissions(t *testing.T) {
	g := newGraph(t)
	var saved int
	denied := errors.New("not yours")
	def := g.MustRegister(graph.NewSchema("Doc",
		field.String("body"),
	),
		graph.WithOnSave(func(obj any) { saved++ }),
		graph.WithCanUpdate(func(obj, operator any) error {
			if operator != "admin" {
				return denied
			}
			return nil
		}),
	)
	o := New(def)

	require.NoError(t, o.Save())
	assert.Equal(t, 1, saved)

	err := o.Save()
	require.Error(t, err, "updates require the admin operator")
	assert.True(t, IsPermission(err))
	assert.ErrorIs(t, err, denied)

	require.NoError(t, o.Save(WithOperator("admin")))
	assert.Equal(t, 2, saved)
}

func TestDeleteDeny(t *testing.T) {
	g := newGraph(t)
	userDef := g.MustRegister(graph.NewSchema("User",
		field.Ref("team", "Team").DeleteRule(field.Deny),
	))
	teamDef := g.MustRegister(graph.NewSchema("Team", field.String("name")))

	user := New(userDef)
	team := New(teamDef)
	user.set("team", team)

	err := user.Delete()
	require.Error(t, err)
	assert.True(t, IsDeletionDenied(err))
	assert.ErrorIs(t, err, ErrDeletionDenied)
	assert.False(t, user.IsDeleted())

	user.unset("team")
	require.NoError(t, user.Delete())
	assert.True(t, user.IsDeleted())
}

func TestDeleteNullify(t *testing.T) {
	g := newGraph(t)
	aDef := g.MustRegister(graph.NewSchema("A",
		field.Ref("b", "B").DeleteRule(field.Nullify),
	))
	bDef := g.MustRegister(graph.NewSchema("B",
		field.Ref("a", "A"),
	))

	a, b := New(aDef), New(bDef)
	a.set("b", b)
	b.set("a", a)

	require.NoError(t, a.Delete())
	assert.True(t, a.IsDeleted())
	assert.False(t, b.IsDeleted())
	_, ok := b.Get("a")
	assert.False(t, ok, "deletion unlinks the back reference")
	_, ok = a.Get("b")
	assert.False(t, ok)
}

func TestDeleteCascade(t *testing.T) {
	g := newGraph(t)
	aDef := g.MustRegister(graph.NewSchema("A",
		field.Ref("bs", "B").ForeignOn("a").DeleteRule(field.Cascade),
	))
	bDef := g.MustRegister(graph.NewSchema("B",
		field.Ref("a", "A").DeleteRule(field.Cascade),
	))

	a := New(aDef)
	b1, b2 := New(bDef), New(bDef)
	a.set("bs", []*Object{b1, b2})
	b1.set("a", a)

	require.NoError(t, a.Delete())
	assert.True(t, a.IsDeleted())
	assert.True(t, b1.IsDeleted(), "cascade deletes dependents, cycles terminate")
	assert.True(t, b2.IsDeleted())
}

func TestDeleteHooksAndPermissions(t *testing.T) {
	g := newGraph(t)
	var deleted int
	def := g.MustRegister(graph.NewSchema("Doc", field.String("body")),
		graph.WithOnDelete(func(obj any) { deleted++ }),
		graph.WithCanDelete(func(obj, operator any) error {
			if operator == nil {
				return errors.New("anonymous")
			}
			return nil
		}),
	)
	o := New(def)

	err := o.Delete()
	require.Error(t, err)
	assert.True(t, IsPermission(err))
	assert.Equal(t, 0, deleted)

	require.NoError(t, o.Delete(WithOperator("admin")))
	assert.Equal(t, 1, deleted)
}

func TestSoftDelete(t *testing.T) {
	g := newGraph(t)
	def := g.MustRegister(
		graph.NewSchema("User", field.String("name")).Use(mixin.SoftDelete{}),
		graph.WithSoftDelete(true),
	)
	o := New(def)

	require.NoError(t, o.Delete())
	assert.True(t, o.IsDeleted())
	stamp, ok := o.Get("deleted_at")
	require.True(t, ok)
	assert.IsType(t, time.Time{}, stamp)
}

func mustGet(t *testing.T, o *Object, name string) any {
	t.Helper()
	v, ok := o.Get(name)
	require.True(t, ok, "field %q should be set", name)
	return v
}
