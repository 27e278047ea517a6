package registry

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"sync"
	"time"

	"cgp-hq/seqval/pkg/manifest/schema"
)

// Registry is a thread-safe in-memory set of schemas keyed by
// "<type>-<version>". Replace swaps the whole set at once, so readers see
// either the previous or the new set and never a mix.
type Registry struct {
	mu       sync.RWMutex
	schemas  map[string]*schema.Schema
	version  string
	loadTime time.Time
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		schemas:  make(map[string]*schema.Schema),
		loadTime: time.Now(),
	}
}

// Register adds a schema, replacing any schema with the same key.
func (r *Registry) Register(s *schema.Schema) error {
	if s == nil {
		return &RegistryError{Operation: "register", Message: "schema cannot be nil"}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	next := make(map[string]*schema.Schema, len(r.schemas)+1)
	for k, v := range r.schemas {
		next[k] = v
	}
	next[s.Key()] = s
	r.swap(next)

	return nil
}

// Replace atomically replaces all registered schemas. Duplicate keys in the
// new set are rejected and leave the registry untouched.
func (r *Registry) Replace(schemas []*schema.Schema) error {
	next := make(map[string]*schema.Schema, len(schemas))
	for _, s := range schemas {
		if s == nil {
			return &RegistryError{Operation: "replace", Message: "schema cannot be nil"}
		}
		if _, dup := next[s.Key()]; dup {
			return &RegistryError{Key: s.Key(), Operation: "replace", Message: "duplicate schema key"}
		}
		next[s.Key()] = s
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.swap(next)

	return nil
}

// swap installs a new map; callers hold the write lock.
func (r *Registry) swap(next map[string]*schema.Schema) {
	r.schemas = next
	r.loadTime = time.Now()
	r.version = computeVersion(next)
}

// Get retrieves a schema by key.
func (r *Registry) Get(key string) (*schema.Schema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.schemas[key]
	return s, ok
}

// Lookup retrieves the schema for a form type and version.
func (r *Registry) Lookup(typ, version string) (*schema.Schema, error) {
	key := schema.Key(typ, version)
	s, ok := r.Get(key)
	if !ok {
		return nil, &NotFoundError{Key: key}
	}
	return s, nil
}

// Keys returns the registered keys, sorted.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.schemas))
	for k := range r.schemas {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// All returns the registered schemas sorted by key.
func (r *Registry) All() []*schema.Schema {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*schema.Schema, 0, len(r.schemas))
	for _, s := range r.schemas {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out
}

// Count returns the number of registered schemas.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.schemas)
}

// Version returns a short hash identifying the current schema set.
// It changes whenever a schema is added, removed or loaded from a different source.
func (r *Registry) Version() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.version
}

// LoadTime returns when the current set was installed.
func (r *Registry) LoadTime() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loadTime
}

func computeVersion(schemas map[string]*schema.Schema) string {
	if len(schemas) == 0 {
		return ""
	}

	keys := make([]string, 0, len(schemas))
	for k := range schemas {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := sha256.New()
	for _, k := range keys {
		fmt.Fprintf(h, "%s\x00%s\n", k, schemas[k].Source())
	}
	return fmt.Sprintf("%x", h.Sum(nil))[:16]
}
