package scenegraph

import (
	"fmt"
	"sync"
)

// Entry is one registered output.
type Entry struct {
	Key      string
	Resource any
}

// Registry holds the persistent outputs of an import in registration order.
// Keys are "<kind>/<name>", with a numeric suffix when a name repeats.
type Registry struct {
	entries []Entry
	index   map[string]int
	owned   map[any]bool
	mu      sync.RWMutex

	// Stats
	hits   int
	misses int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		index: make(map[string]int),
		owned: make(map[any]bool),
	}
}

// Add registers a resource and returns its key. Registering the same
// resource twice is an error.
func (r *Registry) Add(resource any) (string, error) {
	kind, name, err := describe(resource)
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.owned[resource] {
		return "", fmt.Errorf("%s %q already registered", kind, name)
	}

	base := kind + "/" + name
	key := base
	for n := 1; ; n++ {
		if _, taken := r.index[key]; !taken {
			break
		}
		key = fmt.Sprintf("%s#%d", base, n)
	}

	r.index[key] = len(r.entries)
	r.entries = append(r.entries, Entry{Key: key, Resource: resource})
	r.owned[resource] = true
	return key, nil
}

// Get retrieves a resource by key.
func (r *Registry) Get(key string) (any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i, ok := r.index[key]
	if !ok {
		r.misses++
		return nil, false
	}
	r.hits++
	return r.entries[i].Resource, true
}

// Entries returns a copy of all entries in registration order.
func (r *Registry) Entries() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Len returns the number of registered resources.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Clear removes every entry.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = nil
	r.index = make(map[string]int)
	r.owned = make(map[any]bool)
	r.hits = 0
	r.misses = 0
}

// Stats returns lookup statistics.
func (r *Registry) Stats() (hits, misses int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.hits, r.misses
}

func describe(resource any) (kind, name string, err error) {
	switch v := resource.(type) {
	case *Object:
		return "object", v.Name, nil
	case *Mesh:
		return "mesh", v.Name, nil
	case *Material:
		return "material", v.Name, nil
	case *Texture:
		return "texture", v.Name, nil
	default:
		return "", "", fmt.Errorf("%w: %T", ErrInvalidHandle, resource)
	}
}
