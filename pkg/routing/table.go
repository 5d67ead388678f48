package routing

import (
	"sort"
	"strings"
	"sync/atomic"

	"estech/inference-gateway/pkg/config"
)

// Table maps logical service names to backend base URLs.
// A Table is immutable once built; reloads build a new Table and swap it
// into a Store.
type Table struct {
	routes map[string]string
	names  []string
}

// NewTable builds a Table from a name -> base URL mapping. Every name must be
// non-empty and every base URL must be an absolute http(s) URL. The input map
// is copied.
func NewTable(routes map[string]string) (*Table, error) {
	t := &Table{
		routes: make(map[string]string, len(routes)),
		names:  make([]string, 0, len(routes)),
	}
	for name, base := range routes {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, &InvalidRouteError{Service: name, Reason: "service name is empty"}
		}
		if err := config.ValidateBaseURL(base); err != nil {
			return nil, &InvalidRouteError{Service: name, Reason: err.Error()}
		}
		if _, dup := t.routes[name]; dup {
			return nil, &InvalidRouteError{Service: name, Reason: "duplicate service name"}
		}
		t.routes[name] = base
		t.names = append(t.names, name)
	}
	sort.Strings(t.names)
	return t, nil
}

// Lookup returns the base URL for a service name.
func (t *Table) Lookup(name string) (string, bool) {
	if t == nil {
		return "", false
	}
	base, ok := t.routes[name]
	return base, ok
}

// Names returns the configured service names in sorted order.
func (t *Table) Names() []string {
	if t == nil {
		return nil
	}
	return append([]string(nil), t.names...)
}

// Len returns the number of routes.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.routes)
}

// Store holds the current route table. Readers never block; an update
// replaces the whole table reference.
type Store struct {
	current atomic.Pointer[Table]
}

// NewStore creates a Store holding the given table, which may be nil.
func NewStore(t *Table) *Store {
	s := &Store{}
	if t != nil {
		s.current.Store(t)
	}
	return s
}

// Load returns the current table. It returns nil before the first table is
// stored.
func (s *Store) Load() *Table {
	return s.current.Load()
}

// Swap installs a new table and returns the previous one.
func (s *Store) Swap(t *Table) *Table {
	return s.current.Swap(t)
}
