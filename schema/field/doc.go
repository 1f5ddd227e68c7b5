// Package field provides fluent builders for declaring the fields of
// Morph classes.
//
// Field names follow snake_case conventions; the JSON-facing name is
// derived by the class graph configuration (camelCase by default):
//
//	field.String("email")       // internal: email,      JSON: email
//	field.Time("created_at")    // internal: created_at, JSON: createdAt
//
// # Field Types
//
//	field.String("name")
//	field.Int64("count")
//	field.Float64("ratio")
//	field.Decimal("price")
//	field.Bool("active")
//	field.Time("created_at")
//	field.UUID("id")
//	field.Enum("status", "OrderStatus")
//	field.List("tags", field.String("tag"))
//	field.Dict("scores", field.Int("score"))
//	field.Shape("address", map[string]*field.Descriptor{
//	    "line1": field.String("line1"),
//	    "city":  field.String("city"),
//	})
//	field.Instance("profile", "Profile")
//	field.Ref("customer", "Customer")
//
// # Usages and Access Rules
//
//	field.UUID("id").Primary().DefaultUUID()
//	field.Time("created_at").CreatedAt()
//	field.Time("updated_at").UpdatedAt()
//	field.String("password").WriteOnly()
//	field.String("slug").ReadOnly()
//
// # References
//
// Reference fields link classes registered on the same graph. LocalKey
// storage (the default for field.Ref) keeps the foreign identifier on
// this class and projects an external key name (customer -> customer_id);
// ForeignOn flips the link to the foreign side:
//
//	field.Ref("customer", "Customer").DeleteRule(field.Nullify)
//	field.Ref("orders", "Order").ForeignOn("customer")
//
// # Modifiers
//
// Fields carry an ordered chain of transformers and validators:
//
//	field.Int("age").Min(0).Max(150)
//	field.String("code").Len(6).Match(`^[A-Z]+$`)
//	field.List("prices", field.Float64("price")).MapElems(discount)
//	field.String("email").Required().Transform(normalize)
package field
