// Package presence tracks which users currently hold a live connection.
package presence

import (
	"sort"
	"sync"
)

// Handle is one live client connection as seen by the registry.
// Implementations must be comparable (pointer types are).
type Handle interface {
	// Send queues an event without blocking and reports whether it was queued.
	Send(event string, payload any) bool
}

// Registry maps a user id to at most one connection handle.
// A newer registration for the same user replaces the older one.
type Registry struct {
	mu       sync.RWMutex
	byUser   map[string]Handle
	byHandle map[Handle]string
}

func NewRegistry() *Registry {
	return &Registry{
		byUser:   make(map[string]Handle),
		byHandle: make(map[Handle]string),
	}
}

// Register installs h as the connection of userID. The previous handle, if
// any, is forgotten but not closed.
func (r *Registry) Register(userID string, h Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.byUser[userID]; ok && prev != h {
		delete(r.byHandle, prev)
	}
	if prevUser, ok := r.byHandle[h]; ok && prevUser != userID {
		delete(r.byUser, prevUser)
	}
	r.byUser[userID] = h
	r.byHandle[h] = userID
}

// Unregister removes the entry owned by h. It returns the user that was
// removed, or false when h is not (or no longer) registered.
func (r *Registry) Unregister(h Handle) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	userID, ok := r.byHandle[h]
	if !ok {
		return "", false
	}
	delete(r.byHandle, h)
	delete(r.byUser, userID)
	return userID, true
}

// Lookup returns the live handle for userID.
func (r *Registry) Lookup(userID string) (Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.byUser[userID]
	return h, ok
}

// Online returns the ids of connected users in ascending order.
func (r *Registry) Online() []string {
	r.mu.RLock()
	ids := make([]string, 0, len(r.byUser))
	for id := range r.byUser {
		ids = append(ids, id)
	}
	r.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

// Handles returns a snapshot of every registered handle.
func (r *Registry) Handles() []Handle {
	r.mu.RLock()
	defer r.mu.RUnlock()
	hs := make([]Handle, 0, len(r.byUser))
	for _, h := range r.byUser {
		hs = append(hs, h)
	}
	return hs
}

// Len returns the number of connected users.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser)
}
