package receiver

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps receiver names to live receivers. Names are unique; its
// lifecycle is owned by the hosting application.
type Registry struct {
	mu        sync.RWMutex
	receivers map[string]*Receiver
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{receivers: make(map[string]*Receiver)}
}

// add inserts a receiver, rejecting duplicate names.
func (r *Registry) add(name string, rx *Receiver) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.receivers[name]; ok {
		return fmt.Errorf("receiver: name %q is already registered, receiver names must be unique", name)
	}
	r.receivers[name] = rx
	return nil
}

// remove deletes a receiver by name.
func (r *Registry) remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.receivers, name)
}

// Find returns the receiver registered under name, or nil.
func (r *Registry) Find(name string) *Receiver {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.receivers[name]
}

// Names returns all registered receiver names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.receivers))
	for name := range r.receivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
