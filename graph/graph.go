// Package graph holds the class graph registry of Morph. Classes are
// registered on named graphs; classes on the same graph share default
// configuration and can link to one another. A class name is unique
// within its graph, and different graphs serve as independent
// namespaces.
package graph

import (
	"sort"
	"sync"

	"github.com/syssam/morph/schema/field"
)

// A Registry owns a set of named class graphs. Requesting a graph by
// name always returns the same graph within the registry; the first
// request performs one-time initialization. Registries are safe for
// concurrent use, though the expected discipline is declaration at
// start-up followed by read-only traversal.
type Registry struct {
	mu     sync.Mutex
	graphs map[string]*Graph
}

// NewRegistry returns an empty registry. Tests and embedding
// applications construct isolated registries; package-level code may
// use the default registry through Named.
func NewRegistry() *Registry {
	return &Registry{graphs: make(map[string]*Graph)}
}

// Graph returns the graph registered under name, creating and
// initializing it on first request.
func (r *Registry) Graph(name string) *Graph {
	r.mu.Lock()
	defer r.mu.Unlock()
	if g, ok := r.graphs[name]; ok {
		return g
	}
	g := &Graph{
		name:   name,
		defs:   make(map[string]*Definition),
		dicts:  make(map[string]*DictType),
		enums:  make(map[string]*EnumType),
		config: defaultConfig(name),
	}
	r.graphs[name] = g
	return g
}

var defaultRegistry = NewRegistry()

// Named returns the graph registered under name on the default
// process-wide registry.
func Named(name string) *Graph {
	return defaultRegistry.Graph(name)
}

// A Graph is a named namespace of class definitions plus auxiliary
// structured-dict and enum type registries, sharing one default
// configuration.
type Graph struct {
	name   string
	mu     sync.Mutex
	defs   map[string]*Definition
	dicts  map[string]*DictType
	enums  map[string]*EnumType
	config *Config
}

// Name returns the name of the graph.
func (g *Graph) Name() string { return g.name }

// Config returns the default configuration of the graph.
func (g *Graph) Config() *Config { return g.config }

// Configure applies options to the graph's default configuration.
// Configuration changes apply to subsequently registered classes.
func (g *Graph) Configure(opts ...Option) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.config.Apply(opts...)
}

// Register compiles the schema into a definition and puts it on the
// graph. Per-class options override the graph defaults for this class
// only.
func (g *Graph) Register(s *Schema, opts ...Option) (*Definition, error) {
	cfg := g.config
	if len(opts) > 0 {
		cfg = g.config.clone()
		if err := cfg.Apply(opts...); err != nil {
			return nil, err
		}
	}
	def, err := newDefinition(g, s, cfg)
	if err != nil {
		return nil, err
	}
	if err := g.Put(def); err != nil {
		return nil, err
	}
	return def, nil
}

// MustRegister is like Register but panics on error. Class
// declaration is start-up code, so a failure here is a programming
// error.
func (g *Graph) MustRegister(s *Schema, opts ...Option) *Definition {
	def, err := g.Register(s, opts...)
	if err != nil {
		panic(err)
	}
	return def
}

// Put stores the definition on the graph. It fails with a
// RedefinitionError if a class of the same name already exists.
func (g *Graph) Put(def *Definition) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.defs[def.Name()]; ok {
		return NewRedefinitionError(g.name, def.Name(), KindClass)
	}
	g.defs[def.Name()] = def
	return nil
}

// Fetch returns the definition registered under name. It fails with a
// NotFoundError carrying the graph name and the requested name.
func (g *Graph) Fetch(name string) (*Definition, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	def, ok := g.defs[name]
	if !ok {
		return nil, NewNotFoundError(g.name, name, KindClass)
	}
	return def, nil
}

// Has reports whether a class with name is registered on the graph.
func (g *Graph) Has(name string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.defs[name]
	return ok
}

// CheckLinks verifies the declared cross-class references of every
// registered class: a foreign-key field must name a field that exists
// on its foreign class and links back here. Classes may register in
// any order, so this runs after declaration is complete. Classes are
// checked in name order for deterministic failures.
func (g *Graph) CheckLinks() error {
	g.mu.Lock()
	defs := make([]*Definition, 0, len(g.defs))
	for _, d := range g.defs {
		defs = append(defs, d)
	}
	g.mu.Unlock()
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name() < defs[j].Name() })
	for _, d := range defs {
		for _, f := range d.Fields() {
			desc := f.Descriptor()
			if desc.Storage != field.ForeignKey {
				continue
			}
			foreign, err := g.Fetch(desc.ForeignClass)
			if err != nil {
				return err
			}
			ff, err := foreign.FieldNamed(desc.ForeignKey)
			if err != nil {
				return NewLinkedFieldError(d.Name(), f.Name(), desc.ForeignClass, desc.ForeignKey)
			}
			if ff.ForeignClass() != d.Name() {
				return NewLinkedFieldError(d.Name(), f.Name(), desc.ForeignClass, desc.ForeignKey)
			}
		}
	}
	return nil
}

// A DictType is a named structured-dict type: a mapping with a fixed
// set of keyed field descriptors, registered on a graph and referenced
// by shape fields.
type DictType struct {
	Name  string
	Shape map[string]*field.Descriptor
}

// PutDict stores a structured-dict type on the graph. It fails with a
// RedefinitionError if the name is taken.
func (g *Graph) PutDict(d *DictType) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.dicts[d.Name]; ok {
		return NewRedefinitionError(g.name, d.Name, KindDict)
	}
	g.dicts[d.Name] = d
	return nil
}

// FetchDict returns the structured-dict type registered under name.
func (g *Graph) FetchDict(name string) (*DictType, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	d, ok := g.dicts[name]
	if !ok {
		return nil, NewNotFoundError(g.name, name, KindDict)
	}
	return d, nil
}

// HasDict reports whether a structured-dict type with name is
// registered on the graph.
func (g *Graph) HasDict(name string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.dicts[name]
	return ok
}

// An EnumType is a named set of string values registered on a graph
// and referenced by enum fields.
type EnumType struct {
	Name   string
	Values []string
}

// Valid reports whether v is one of the enum's values.
func (e *EnumType) Valid(v string) bool {
	for _, val := range e.Values {
		if val == v {
			return true
		}
	}
	return false
}

// PutEnum stores an enum type on the graph. It fails with a
// RedefinitionError if the name is taken.
func (g *Graph) PutEnum(e *EnumType) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.enums[e.Name]; ok {
		return NewRedefinitionError(g.name, e.Name, KindEnum)
	}
	g.enums[e.Name] = e
	return nil
}

// FetchEnum returns the enum type registered under name.
func (g *Graph) FetchEnum(name string) (*EnumType, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	e, ok := g.enums[name]
	if !ok {
		return nil, NewNotFoundError(g.name, name, KindEnum)
	}
	return e, nil
}

// HasEnum reports whether an enum type with name is registered on the
// graph.
func (g *Graph) HasEnum(name string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.enums[name]
	return ok
}
