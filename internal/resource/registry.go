// Package resource declares the console's entity pages.
package resource

import (
	"fmt"

	"github.com/kartik-turing/repo-scanner-frontend/internal/console"
)

// Registry holds the entity schemas in menu order.
type Registry struct {
	schemas []*console.Schema
	byName  map[string]*console.Schema
}

// NewRegistry returns the registry of every entity page.
func NewRegistry() (*Registry, error) {
	return newRegistry(
		Users(),
		Devkits(),
		Subscriptions(),
		Partners(),
		Customers(),
		Repositories(),
		DbDumps(),
		NetworkSettings(),
		ScanSchedulers(),
		ScanSessions(),
		DiscoveryCode(),
		DiscoveryDatabase(),
		DiscoveryNetwork(),
	)
}

// MustRegistry is NewRegistry for static wiring; it panics on a bad schema.
func MustRegistry() *Registry {
	r, err := NewRegistry()
	if err != nil {
		panic(err)
	}
	return r
}

func newRegistry(schemas ...*console.Schema) (*Registry, error) {
	r := &Registry{byName: make(map[string]*console.Schema, len(schemas))}
	for _, s := range schemas {
		if err := s.Check(); err != nil {
			return nil, err
		}
		if _, dup := r.byName[s.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate entity %q", console.ErrInvalidSchema, s.Name)
		}
		r.byName[s.Name] = s
		r.schemas = append(r.schemas, s)
	}
	return r, nil
}

// Lookup returns the schema of an entity page.
func (r *Registry) Lookup(name string) (*console.Schema, bool) {
	s, ok := r.byName[name]
	return s, ok
}

// All returns every schema in menu order.
func (r *Registry) All() []*console.Schema {
	out := make([]*console.Schema, len(r.schemas))
	copy(out, r.schemas)
	return out
}

// Names returns the entity names in menu order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.schemas))
	for i, s := range r.schemas {
		out[i] = s.Name
	}
	return out
}

// Menu returns the navigation menu with links under prefix.
func (r *Registry) Menu(prefix string) []console.MenuItem {
	return console.MenuFor(prefix, r.schemas)
}
