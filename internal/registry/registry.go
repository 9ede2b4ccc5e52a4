// Package registry holds the authoritative toast records.
package registry

import "github.com/LucaLeukert/toastd/internal/model"

// Registry is the single source of truth for live toast records. Everything
// else refers to records by id. An action handler's lifetime is tied 1:1 to
// its record's lifetime: both are removed together.
//
// Not safe for concurrent use: the lifecycle coordinator owns the registry
// and serializes every access.
type Registry struct {
	records map[string]*model.Toast
	actions map[string]model.ActionHandler
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		records: make(map[string]*model.Toast),
		actions: make(map[string]model.ActionHandler),
	}
}

// Add stores a record and its optional action handler.
func (r *Registry) Add(t *model.Toast, handler model.ActionHandler) {
	r.records[t.ID] = t
	if handler != nil {
		r.actions[t.ID] = handler
	}
}

// Get returns the record for id, or nil.
func (r *Registry) Get(id string) *model.Toast {
	return r.records[id]
}

// Action returns the action handler for id, or nil.
func (r *Registry) Action(id string) model.ActionHandler {
	return r.actions[id]
}

// SetAction replaces the action handler for id. A nil handler clears it.
func (r *Registry) SetAction(id string, handler model.ActionHandler) {
	if _, ok := r.records[id]; !ok {
		return
	}
	if handler == nil {
		delete(r.actions, id)
		return
	}
	r.actions[id] = handler
}

// Remove deletes the record and its action handler atomically.
func (r *Registry) Remove(id string) *model.Toast {
	t := r.records[id]
	delete(r.records, id)
	delete(r.actions, id)
	return t
}

// Has reports whether a record exists for id.
func (r *Registry) Has(id string) bool {
	_, ok := r.records[id]
	return ok
}

// Len returns the number of live records.
func (r *Registry) Len() int {
	return len(r.records)
}
