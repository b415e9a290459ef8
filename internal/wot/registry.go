package wot

import (
	"sort"
	"sync"
)

// Registry is the shared index of Things, keyed by ThingID. It is written
// by the bridge goroutine and read by the HTTP server pool.
type Registry struct {
	mu     sync.RWMutex
	things map[string]*Thing
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{things: make(map[string]*Thing)}
}

// Add inserts or replaces a Thing.
func (r *Registry) Add(thing *Thing) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.things[thing.ID] = thing
}

// Get returns a snapshot copy of one Thing, or nil when absent. The copy
// keeps HTTP encoding from racing the bridge's property updates.
func (r *Registry) Get(id string) *Thing {
	r.mu.RLock()
	defer r.mu.RUnlock()

	thing, ok := r.things[id]
	if !ok {
		return nil
	}
	return snapshot(thing)
}

// List returns snapshot copies of all Things, ordered by id.
func (r *Registry) List() []*Thing {
	r.mu.RLock()
	defer r.mu.RUnlock()

	things := make([]*Thing, 0, len(r.things))
	for _, thing := range r.things {
		things = append(things, snapshot(thing))
	}
	sort.Slice(things, func(i, j int) bool { return things[i].ID < things[j].ID })
	return things
}

// UpdateProperty sets a property value, returning false when the thing or
// property is unknown.
func (r *Registry) UpdateProperty(id, property string, value any) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	thing, ok := r.things[id]
	if !ok {
		return false
	}
	prop, ok := thing.Properties[property]
	if !ok {
		return false
	}
	prop.Value = value
	return true
}

// property returns the live property entry; bridge-internal.
func (r *Registry) property(id, name string) (*Property, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	thing, ok := r.things[id]
	if !ok {
		return nil, false
	}
	prop, ok := thing.Properties[name]
	return prop, ok
}

// snapshot deep-copies a Thing so callers can encode it without holding
// the lock.
func snapshot(t *Thing) *Thing {
	cpy := *t
	cpy.Properties = make(map[string]*Property, len(t.Properties))
	for name, prop := range t.Properties {
		p := *prop
		cpy.Properties[name] = &p
	}
	return &cpy
}
