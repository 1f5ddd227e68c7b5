package field

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testCtx is a minimal Context for exercising modifier chains.
type testCtx struct {
	value   any
	keypath string
}

func (c testCtx) Value() any      { return c.value }
func (c testCtx) Original() any   { return c.value }
func (c testCtx) Root() any       { return nil }
func (c testCtx) Owner() any      { return nil }
func (c testCtx) Operator() any   { return nil }
func (c testCtx) Keypath() string { return c.keypath }

func TestConstructors(t *testing.T) {
	tests := []struct {
		desc *Descriptor
		typ  Type
	}{
		{Bool("active"), TypeBool},
		{String("name"), TypeString},
		{Int("age"), TypeInt},
		{Int64("count"), TypeInt64},
		{Float64("score"), TypeFloat64},
		{Decimal("price"), TypeDecimal},
		{Time("born_at"), TypeTime},
		{UUID("id"), TypeUUID},
		{Enum("status", "OrderStatus"), TypeEnum},
		{List("tags", String("tag")), TypeList},
		{Dict("meta", String("v")), TypeDict},
		{Shape("settings", map[string]*Descriptor{"theme": String("theme")}), TypeShape},
		{Instance("profile", "Profile"), TypeInstance},
		{Ref("owner", "User"), TypeInstance},
	}
	for _, tt := range tests {
		t.Run(tt.desc.Name, func(t *testing.T) {
			assert.Equal(t, tt.typ, tt.desc.Info)
			assert.NoError(t, tt.desc.Err)
		})
	}
}

func TestRefStorage(t *testing.T) {
	r := Ref("owner", "User")
	assert.Equal(t, LocalKey, r.Storage)
	assert.Equal(t, "User", r.ForeignClass)

	r = Ref("posts", "Post").ForeignOn("author")
	assert.Equal(t, ForeignKey, r.Storage)
	assert.Equal(t, "author", r.ForeignKey)

	instance := Instance("profile", "Profile")
	assert.Equal(t, Embedded, instance.Storage)
}

func TestBuilderErrors(t *testing.T) {
	t.Run("usage conflict", func(t *testing.T) {
		d := Time("stamp").CreatedAt().UpdatedAt()
		require.Error(t, d.Err)
		assert.Equal(t, UsageCreatedAt, d.Usage)
	})
	t.Run("delete rule on embedded", func(t *testing.T) {
		d := String("name").DeleteRule(Cascade)
		require.Error(t, d.Err)
	})
	t.Run("min on non-numeric", func(t *testing.T) {
		require.Error(t, String("name").Min(1).Err)
	})
	t.Run("bad match pattern", func(t *testing.T) {
		require.Error(t, String("code").Match("(").Err)
	})
	t.Run("list without element", func(t *testing.T) {
		require.Error(t, List("tags", nil).Err)
	})
	t.Run("uuid default on int", func(t *testing.T) {
		require.Error(t, Int("n").DefaultUUID().Err)
	})
	t.Run("first error wins", func(t *testing.T) {
		d := String("name").Min(1).DeleteRule(Deny)
		require.Error(t, d.Err)
		assert.Contains(t, d.Err.Error(), "min requires a numeric field")
	})
}

func TestDefaults(t *testing.T) {
	d := Int("age").Default(18)
	assert.Equal(t, 18, d.DefaultValue)
	assert.Nil(t, d.DefaultFunc)

	d = Int("age").Default(func() any { return 21 })
	require.NotNil(t, d.DefaultFunc)
	assert.Equal(t, 21, d.DefaultFunc())

	d = UUID("id").DefaultUUID()
	require.NotNil(t, d.DefaultFunc)
	s, ok := d.DefaultFunc().(string)
	require.True(t, ok)
	_, err := uuid.Parse(s)
	assert.NoError(t, err)
}

func TestRequired(t *testing.T) {
	d := String("name").Required()
	require.Len(t, d.Validators, 1)
	assert.Error(t, d.Validators[0](testCtx{value: nil, keypath: "name"}))
	assert.NoError(t, d.Validators[0](testCtx{value: "a"}))
}

func TestMinClamps(t *testing.T) {
	d := Int("age").Min(18)
	require.Len(t, d.Transformers, 1)
	fn := d.Transformers[0]

	v, err := fn(testCtx{value: 10})
	require.NoError(t, err)
	assert.Equal(t, 18, v)

	v, err = fn(testCtx{value: 30})
	require.NoError(t, err)
	assert.Equal(t, 30, v)

	v, err = fn(testCtx{value: nil})
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestMinClampsDecimal(t *testing.T) {
	d := Decimal("price").Min(1)
	fn := d.Transformers[0]
	v, err := fn(testCtx{value: decimal.NewFromFloat(0.5)})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(1).Equal(v.(decimal.Decimal)))
}

func TestMax(t *testing.T) {
	d := Int("age").Max(100)
	fn := d.Validators[0]
	assert.NoError(t, fn(testCtx{value: 100}))
	assert.Error(t, fn(testCtx{value: 101, keypath: "age"}))
}

func TestLengths(t *testing.T) {
	d := String("name").MinLen(2).MaxLen(4)
	require.Len(t, d.Validators, 2)
	assert.Error(t, d.Validators[0](testCtx{value: "a"}))
	assert.NoError(t, d.Validators[0](testCtx{value: "ab"}))
	assert.Error(t, d.Validators[1](testCtx{value: "abcde"}))

	l := List("tags", String("tag")).Len(2)
	assert.NoError(t, l.Validators[0](testCtx{value: []any{"a", "b"}}))
	assert.Error(t, l.Validators[0](testCtx{value: []any{"a"}}))
}

func TestMatch(t *testing.T) {
	d := String("code").Match(`^[a-z]+$`)
	fn := d.Validators[0]
	assert.NoError(t, fn(testCtx{value: "abc"}))
	assert.Error(t, fn(testCtx{value: "ABC", keypath: "code"}))
	// Non-strings pass; type checking is not the modifier's job.
	assert.NoError(t, fn(testCtx{value: 3}))
}

func TestOneOf(t *testing.T) {
	d := String("size").OneOf("s", "m", "l")
	fn := d.Validators[0]
	assert.NoError(t, fn(testCtx{value: "m"}))
	assert.Error(t, fn(testCtx{value: "xl", keypath: "size"}))
}

func TestMapElems(t *testing.T) {
	d := List("tags", String("tag")).MapElems(func(v any) any {
		if s, ok := v.(string); ok {
			return s + "!"
		}
		return v
	})
	v, err := d.Transformers[0](testCtx{value: []any{"a", "b"}})
	require.NoError(t, err)
	assert.Equal(t, []any{"a!", "b!"}, v)
}

func TestTypeNames(t *testing.T) {
	for typ := TypeBool; typ < endTypes; typ++ {
		assert.Equal(t, typ, TypeOf(typ.String()))
	}
	assert.Equal(t, TypeInvalid, TypeOf("nope"))
	assert.False(t, TypeInvalid.Valid())
	assert.True(t, TypeDecimal.Numeric())
	assert.False(t, TypeString.Numeric())
	assert.True(t, TypeShape.Composite())
}
