package renderer

import (
	"fmt"
	"sort"
	"sync"
)

// Factory builds a fresh Renderer backed by a surface of the given pixel
// dimensions.
type Factory func(width, height int) Renderer

var (
	registryMu sync.RWMutex
	backends   = make(map[string]Factory)
)

// Register associates name with factory, replacing any previous
// registration for the same name. Grounded on surface.Register's and
// backend.Register's replace-on-duplicate idiom rather than
// recording.Register's panic-on-duplicate one — matching command.Register's
// already-established stance in this module that a registration can
// legitimately be swapped (e.g. in tests), not just made once at init.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	backends[name] = factory
}

// Unregister removes a backend from the registry.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(backends, name)
}

// New creates a renderer from the named backend.
func New(name string, width, height int) (Renderer, error) {
	registryMu.RLock()
	factory, ok := backends[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("renderer: unknown backend %q (forgotten import?)", name)
	}
	return factory(width, height), nil
}

// MustNew creates a renderer from the named backend, panicking on error.
func MustNew(name string, width, height int) Renderer {
	r, err := New(name, width, height)
	if err != nil {
		panic(err)
	}
	return r
}

// List returns the registered backend names, sorted alphabetically.
func List() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered reports whether name has a registered backend.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := backends[name]
	return ok
}
