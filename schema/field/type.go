package field

// A Type represents the static type of a field value.
type Type uint8

// Field value types.
const (
	TypeInvalid Type = iota
	TypeBool
	TypeString
	TypeInt
	TypeInt64
	TypeFloat64
	TypeDecimal
	TypeTime
	TypeUUID
	TypeEnum
	TypeList
	TypeDict
	TypeShape
	TypeInstance
	endTypes
)

var typeNames = [...]string{
	TypeInvalid:  "invalid",
	TypeBool:     "bool",
	TypeString:   "string",
	TypeInt:      "int",
	TypeInt64:    "int64",
	TypeFloat64:  "float64",
	TypeDecimal:  "decimal",
	TypeTime:     "time",
	TypeUUID:     "uuid",
	TypeEnum:     "enum",
	TypeList:     "list",
	TypeDict:     "dict",
	TypeShape:    "shape",
	TypeInstance: "instance",
}

// String returns the string representation of the type.
func (t Type) String() string {
	if t < endTypes {
		return typeNames[t]
	}
	return typeNames[TypeInvalid]
}

// Valid reports if the given type is a valid field type.
func (t Type) Valid() bool {
	return t > TypeInvalid && t < endTypes
}

// Numeric reports if the given type is a numeric type.
func (t Type) Numeric() bool {
	switch t {
	case TypeInt, TypeInt64, TypeFloat64, TypeDecimal:
		return true
	}
	return false
}

// Composite reports if the given type holds other values.
func (t Type) Composite() bool {
	switch t {
	case TypeList, TypeDict, TypeShape, TypeInstance:
		return true
	}
	return false
}

// TypeOf resolves a Type from its string name. TypeInvalid is
// returned for unknown names.
func TypeOf(name string) Type {
	for t, n := range typeNames {
		if n == name && Type(t) != TypeInvalid {
			return Type(t)
		}
	}
	return TypeInvalid
}

// A Storage describes where a reference field keeps its linking
// identifier.
type Storage uint8

// Field storage kinds.
const (
	// Embedded fields hold their value directly on the instance.
	Embedded Storage = iota
	// LocalKey fields hold the foreign identifier on this class.
	LocalKey
	// ForeignKey fields rely on the other class to hold the identifier.
	ForeignKey
)

var storageNames = [...]string{
	Embedded:   "embedded",
	LocalKey:   "local_key",
	ForeignKey: "foreign_key",
}

// String returns the string representation of the storage kind.
func (s Storage) String() string {
	if int(s) < len(storageNames) {
		return storageNames[s]
	}
	return storageNames[Embedded]
}

// StorageOf resolves a Storage from its string name. Embedded is
// returned for unknown names.
func StorageOf(name string) Storage {
	for s, n := range storageNames {
		if n == name {
			return Storage(s)
		}
	}
	return Embedded
}

// A DeleteRule is the policy applied to a reference field when the
// referenced object is deleted.
type DeleteRule uint8

// Delete rules for reference fields.
const (
	// NoAction performs nothing on delete.
	NoAction DeleteRule = iota
	// Deny blocks the deletion while references exist.
	Deny
	// Nullify clears the reference.
	Nullify
	// Cascade deletes the dependents too.
	Cascade
)

var deleteRuleNames = [...]string{
	NoAction: "no_action",
	Deny:     "deny",
	Nullify:  "nullify",
	Cascade:  "cascade",
}

// String returns the string representation of the delete rule.
func (r DeleteRule) String() string {
	if int(r) < len(deleteRuleNames) {
		return deleteRuleNames[r]
	}
	return deleteRuleNames[NoAction]
}

// DeleteRuleOf resolves a DeleteRule from its string name. NoAction is
// returned for unknown names.
func DeleteRuleOf(name string) DeleteRule {
	for r, n := range deleteRuleNames {
		if n == name {
			return DeleteRule(r)
		}
	}
	return NoAction
}

// A Usage tags a field with a framework-reserved role. Each usage is
// exclusive within a class definition.
type Usage uint8

// Field usages.
const (
	UsageNone Usage = iota
	UsagePrimary
	UsageCreatedAt
	UsageUpdatedAt
	UsageDeletedAt
)

var usageNames = [...]string{
	UsageNone:      "",
	UsagePrimary:   "primary",
	UsageCreatedAt: "created_at",
	UsageUpdatedAt: "updated_at",
	UsageDeletedAt: "deleted_at",
}

// String returns the string representation of the usage.
func (u Usage) String() string {
	if int(u) < len(usageNames) {
		return usageNames[u]
	}
	return usageNames[UsageNone]
}

// UsageOf resolves a Usage from its string name. UsageNone is returned
// for unknown names.
func UsageOf(name string) Usage {
	for u, n := range usageNames {
		if n == name && Usage(u) != UsageNone {
			return Usage(u)
		}
	}
	return UsageNone
}
