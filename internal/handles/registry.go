// Package handles implements the per-run Result Handle Registry: a process-
// local mapping from handle names to full result sets that the bounded tool
// surface writes into and reads bounded views out of. The interpreter never
// sees a full result set directly.
package handles

import (
	"fmt"
	"sync"

	"graphrlm.dev/core/internal/model"
)

// Registry is created at driver entry and dropped at driver exit; one
// instance backs exactly one run.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

type entry struct {
	mu     sync.Mutex
	handle model.ResultHandle
}

// New returns an empty registry for a fresh run.
func New() *Registry {
	return &Registry{entries: map[string]*entry{}}
}

// Put stores or replaces the handle under name. A prior write to the same
// name is silently replaced, per the registry's replace-semantics.
func (r *Registry) Put(name string, h model.ResultHandle) {
	r.mu.Lock()
	e, ok := r.entries[name]
	if !ok {
		e = &entry{}
		r.entries[name] = e
	}
	r.mu.Unlock()

	e.mu.Lock()
	e.handle = h
	e.mu.Unlock()
}

// Get returns the handle stored under name.
func (r *Registry) Get(name string) (model.ResultHandle, bool) {
	r.mu.RLock()
	e, ok := r.entries[name]
	r.mu.RUnlock()
	if !ok {
		return model.ResultHandle{}, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.handle, true
}

// Names returns the handle names currently registered, in no particular
// order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.entries))
	for name := range r.entries {
		out = append(out, name)
	}
	return out
}

// Drop clears every entry. Called once at driver exit.
func (r *Registry) Drop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = map[string]*entry{}
}

// ErrNoSuchHandle is returned by view operations when name isn't registered.
type ErrNoSuchHandle struct{ Name string }

func (e ErrNoSuchHandle) Error() string {
	return fmt.Sprintf("no result handle named %q", e.Name)
}
