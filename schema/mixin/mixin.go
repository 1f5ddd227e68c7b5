// Package mixin provides reusable field groups for Morph schemas.
//
// A mixin is a named set of field descriptors that can be shared by
// multiple schema declarations. Mixin fields are compiled before the
// schema's own fields, in listing order:
//
//	graph.NewSchema("Order",
//	    field.UUID("id").Primary().DefaultUUID(),
//	).Use(mixin.Time{})
package mixin

import (
	"github.com/syssam/morph/schema/field"
)

// Schema is the base mixin. Embed it in custom mixins and override
// Fields.
type Schema struct{}

// Fields returns the fields of the mixin.
func (Schema) Fields() []*field.Descriptor { return nil }

// Time adds created_at and updated_at timestamp fields tagged with
// their usages, so the declaring class classifies them as its creation
// and update timestamps.
type Time struct {
	Schema
}

// Fields returns the time tracking fields.
func (Time) Fields() []*field.Descriptor {
	return []*field.Descriptor{
		field.Time("created_at").CreatedAt().ReadOnly(),
		field.Time("updated_at").UpdatedAt().ReadOnly(),
	}
}

// CreateTime adds only the created_at timestamp field.
type CreateTime struct {
	Schema
}

// Fields returns the created_at field.
func (CreateTime) Fields() []*field.Descriptor {
	return []*field.Descriptor{
		field.Time("created_at").CreatedAt().ReadOnly(),
	}
}

// UpdateTime adds only the updated_at timestamp field.
type UpdateTime struct {
	Schema
}

// Fields returns the updated_at field.
func (UpdateTime) Fields() []*field.Descriptor {
	return []*field.Descriptor{
		field.Time("updated_at").UpdatedAt().ReadOnly(),
	}
}

// SoftDelete adds a deleted_at field tagged as the soft-delete
// timestamp. A nil value means not deleted.
type SoftDelete struct {
	Schema
}

// Fields returns the soft delete field.
func (SoftDelete) Fields() []*field.Descriptor {
	return []*field.Descriptor{
		field.Time("deleted_at").DeletedAt().ReadOnly(),
	}
}

// TimeSoftDelete combines Time and SoftDelete.
type TimeSoftDelete struct {
	Schema
}

// Fields returns all timestamp and soft delete fields.
func (TimeSoftDelete) Fields() []*field.Descriptor {
	return append(Time{}.Fields(), SoftDelete{}.Fields()...)
}
