package graph

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// A KeyTransformer derives the externally visible key name of a
// local-key reference field from the field itself.
type KeyTransformer func(f *Field) string

// ReferenceKey is the default key transformer. It appends the "_id"
// reference suffix to the field name.
func ReferenceKey(f *Field) string {
	return f.Name() + "_id"
}

// A Hook observes an instance lifecycle event. The argument is the
// instance being created, saved or deleted.
type Hook func(obj any)

// A PermissionCheck guards an operation on an instance for the acting
// operator. A non-nil error denies the operation.
type PermissionCheck func(obj, operator any) error

// Config is the shared default configuration of a class graph. It is
// applied to every class registered on the graph.
type Config struct {
	// Graph is the name of the owning class graph.
	Graph string

	// CamelizeKeys camelizes JSON-facing key names on output and
	// accepts camelized key names on input. On by default.
	CamelizeKeys bool

	// StrictInput rejects unrecognized keys in incoming payloads.
	// On by default.
	StrictInput bool

	// KeyTransformer derives external reference-key names for
	// local-key fields. Defaults to ReferenceKey.
	KeyTransformer KeyTransformer

	// ValidateAllFields collects every field error instead of failing
	// fast on the first. Off by default.
	ValidateAllFields bool

	// SoftDelete marks records deleted instead of removing them.
	// Off by default.
	SoftDelete bool

	// Lifecycle hooks.
	OnCreate []Hook
	OnSave   []Hook
	OnDelete []Hook

	// Permission checks.
	CanCreate []PermissionCheck
	CanUpdate []PermissionCheck
	CanDelete []PermissionCheck
	CanRead   []PermissionCheck
}

func defaultConfig(graphName string) *Config {
	return &Config{
		Graph:          graphName,
		CamelizeKeys:   true,
		StrictInput:    true,
		KeyTransformer: ReferenceKey,
	}
}

// An Option configures a class graph.
type Option func(*Config) error

// WithCamelizeKeys toggles JSON key camelization.
func WithCamelizeKeys(v bool) Option {
	return func(c *Config) error {
		c.CamelizeKeys = v
		return nil
	}
}

// WithStrictInput toggles rejection of unrecognized input keys.
func WithStrictInput(v bool) Option {
	return func(c *Config) error {
		c.StrictInput = v
		return nil
	}
}

// WithValidateAllFields toggles batch validation by default.
func WithValidateAllFields(v bool) Option {
	return func(c *Config) error {
		c.ValidateAllFields = v
		return nil
	}
}

// WithSoftDelete toggles soft deletion.
func WithSoftDelete(v bool) Option {
	return func(c *Config) error {
		c.SoftDelete = v
		return nil
	}
}

// WithKeyTransformer sets the reference-key transformer.
func WithKeyTransformer(fn KeyTransformer) Option {
	return func(c *Config) error {
		if fn == nil {
			return fmt.Errorf("morph: key transformer cannot be nil")
		}
		c.KeyTransformer = fn
		return nil
	}
}

// WithOnCreate appends creation lifecycle hooks.
func WithOnCreate(hooks ...Hook) Option {
	return func(c *Config) error {
		c.OnCreate = append(c.OnCreate, hooks...)
		return nil
	}
}

// WithOnSave appends save lifecycle hooks.
func WithOnSave(hooks ...Hook) Option {
	return func(c *Config) error {
		c.OnSave = append(c.OnSave, hooks...)
		return nil
	}
}

// WithOnDelete appends delete lifecycle hooks.
func WithOnDelete(hooks ...Hook) Option {
	return func(c *Config) error {
		c.OnDelete = append(c.OnDelete, hooks...)
		return nil
	}
}

// WithCanCreate appends creation permission checks.
func WithCanCreate(checks ...PermissionCheck) Option {
	return func(c *Config) error {
		c.CanCreate = append(c.CanCreate, checks...)
		return nil
	}
}

// WithCanUpdate appends update permission checks.
func WithCanUpdate(checks ...PermissionCheck) Option {
	return func(c *Config) error {
		c.CanUpdate = append(c.CanUpdate, checks...)
		return nil
	}
}

// WithCanDelete appends delete permission checks.
func WithCanDelete(checks ...PermissionCheck) Option {
	return func(c *Config) error {
		c.CanDelete = append(c.CanDelete, checks...)
		return nil
	}
}

// WithCanRead appends read permission checks.
func WithCanRead(checks ...PermissionCheck) Option {
	return func(c *Config) error {
		c.CanRead = append(c.CanRead, checks...)
		return nil
	}
}

// clone returns a copy of the config whose hook and permission slices
// are independent of the original, so per-class appends cannot write
// into the shared defaults.
func (c *Config) clone() *Config {
	clone := *c
	clone.OnCreate = append([]Hook(nil), c.OnCreate...)
	clone.OnSave = append([]Hook(nil), c.OnSave...)
	clone.OnDelete = append([]Hook(nil), c.OnDelete...)
	clone.CanCreate = append([]PermissionCheck(nil), c.CanCreate...)
	clone.CanUpdate = append([]PermissionCheck(nil), c.CanUpdate...)
	clone.CanDelete = append([]PermissionCheck(nil), c.CanDelete...)
	clone.CanRead = append([]PermissionCheck(nil), c.CanRead...)
	return &clone
}

// Apply applies options to the config. It returns the first error
// encountered.
func (c *Config) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// configFile is the serializable subset of Config.
type configFile struct {
	CamelizeKeys      *bool `yaml:"camelize_keys"`
	StrictInput       *bool `yaml:"strict_input"`
	ValidateAllFields *bool `yaml:"validate_all_fields"`
	SoftDelete        *bool `yaml:"soft_delete"`
}

// OptionsFromYAML parses graph options from a YAML document. Only the
// boolean toggles are representable in configuration files; hooks,
// permission checks and key transformers are code.
func OptionsFromYAML(data []byte) ([]Option, error) {
	var f configFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("morph: parsing graph config: %w", err)
	}
	var opts []Option
	if f.CamelizeKeys != nil {
		opts = append(opts, WithCamelizeKeys(*f.CamelizeKeys))
	}
	if f.StrictInput != nil {
		opts = append(opts, WithStrictInput(*f.StrictInput))
	}
	if f.ValidateAllFields != nil {
		opts = append(opts, WithValidateAllFields(*f.ValidateAllFields))
	}
	if f.SoftDelete != nil {
		opts = append(opts, WithSoftDelete(*f.SoftDelete))
	}
	return opts, nil
}
