package routing

import "strings"

// Router resolves service names against the current route table and builds
// outbound target URLs.
//
// Router is safe for concurrent use. Each call reads the table once, so a
// concurrent reload is never observed half-applied.
type Router struct {
	store *Store
}

// NewRouter creates a Router reading from store.
func NewRouter(store *Store) *Router {
	return &Router{store: store}
}

// Resolve returns the base URL registered for impl. It returns an
// *UnknownServiceError when impl is not in the table.
func (r *Router) Resolve(impl string) (string, error) {
	table := r.store.Load()
	base, ok := table.Lookup(impl)
	if !ok {
		return "", &UnknownServiceError{Service: impl, Available: table.Names()}
	}
	return base, nil
}

// Target resolves impl and joins its base URL with path.
func (r *Router) Target(impl, path string) (string, error) {
	base, err := r.Resolve(impl)
	if err != nil {
		return "", err
	}
	return ComposePath(base, path), nil
}

// Table returns the route table currently in effect.
func (r *Router) Table() *Table {
	return r.store.Load()
}

// ComposePath joins base and path with exactly one slash, however either
// side is formatted.
func ComposePath(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
