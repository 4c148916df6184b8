package booking

import (
	"cmp"
	"slices"
	"sync"

	"github.com/iliyamo/cinebook/internal/model"
)

// Registry indexes live reservations by id, by user and by showing.
// Entries are copied on the way in and out so callers cannot mutate
// stored seat slices.
type Registry struct {
	mu        sync.RWMutex
	byID      map[string]model.Reservation
	byUser    map[uint64]map[string]struct{}
	byShowing map[uint64]map[string]struct{}
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		byID:      make(map[string]model.Reservation),
		byUser:    make(map[uint64]map[string]struct{}),
		byShowing: make(map[uint64]map[string]struct{}),
	}
}

// Add inserts or replaces a reservation.
func (r *Registry) Add(res model.Reservation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.addLocked(res)
}

func (r *Registry) addLocked(res model.Reservation) {
	if old, ok := r.byID[res.ID]; ok {
		r.removeLocked(old)
	}
	r.byID[res.ID] = res.Clone()
	index(r.byUser, res.UserID, res.ID)
	index(r.byShowing, res.ShowingID, res.ID)
}

// Remove deletes a reservation and returns it.
func (r *Registry) Remove(id string) (model.Reservation, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.byID[id]
	if ok {
		r.removeLocked(res)
	}
	return res, ok
}

func (r *Registry) removeLocked(res model.Reservation) {
	delete(r.byID, res.ID)
	unindex(r.byUser, res.UserID, res.ID)
	unindex(r.byShowing, res.ShowingID, res.ID)
}

// Get returns a copy of the reservation with the given id.
func (r *Registry) Get(id string) (model.Reservation, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.byID[id]
	if !ok {
		return model.Reservation{}, false
	}
	return res.Clone(), true
}

// ByUser returns the user's reservations, newest first.
func (r *Registry) ByUser(userID uint64) []model.Reservation {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collectLocked(r.byUser[userID])
}

// ByShowing returns the showing's reservations, newest first.
func (r *Registry) ByShowing(showingID uint64) []model.Reservation {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collectLocked(r.byShowing[showingID])
}

// ReplaceShowing drops every entry of the showing and inserts list in
// their place.  Used when a showing is (re)hydrated from the store.
func (r *Registry) ReplaceShowing(showingID uint64, list []model.Reservation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id := range r.byShowing[showingID] {
		r.removeLocked(r.byID[id])
	}
	for _, res := range list {
		r.addLocked(res)
	}
}

// Len returns the number of reservations held.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

func (r *Registry) collectLocked(ids map[string]struct{}) []model.Reservation {
	out := make([]model.Reservation, 0, len(ids))
	for id := range ids {
		out = append(out, r.byID[id].Clone())
	}
	SortNewestFirst(out)
	return out
}

// SortNewestFirst orders reservations by creation time descending,
// breaking ties by id so the order is stable across calls.
func SortNewestFirst(list []model.Reservation) {
	slices.SortFunc(list, func(a, b model.Reservation) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

func index(m map[uint64]map[string]struct{}, key uint64, id string) {
	set, ok := m[key]
	if !ok {
		set = make(map[string]struct{})
		m[key] = set
	}
	set[id] = struct{}{}
}

func unindex(m map[uint64]map[string]struct{}, key uint64, id string) {
	set, ok := m[key]
	if !ok {
		return
	}
	delete(set, id)
	if len(set) == 0 {
		delete(m, key)
	}
}
