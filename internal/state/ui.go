package state

import (
	"maps"
	"sync"

	"github.com/KirkDiggler/rpg-saga/internal/entities"
)

// Operation names a tracked loading or error slot
type Operation string

// Operation constants
const (
	OpStoryGeneration   Operation = "storyGeneration"
	OpProfileValidation Operation = "profileValidation"
	OpDataSync          Operation = "dataSync"
	OpNetwork           Operation = "network"
)

// Operations lists every operation slot in display order
func Operations() []Operation {
	return []Operation{OpStoryGeneration, OpProfileValidation, OpDataSync, OpNetwork}
}

// UIState is a copy of the ui store
type UIState struct {
	CurrentPage entities.Page
	Error       string
	Loading     map[Operation]bool
	Errors      map[Operation]string
}

// UIStore tracks the current page plus per-operation loading and error slots.
// Only the page is persisted.
type UIStore struct {
	mu      sync.RWMutex
	page    entities.Page
	err     string
	loading map[Operation]bool
	errs    map[Operation]string

	subs listeners[UIState]
}

// NewUIStore returns a store on the landing page
func NewUIStore() *UIStore {
	return &UIStore{
		page:    entities.PageLanding,
		loading: map[Operation]bool{},
		errs:    map[Operation]string{},
	}
}

// Subscribe registers fn for every change and returns its removal func
func (u *UIStore) Subscribe(fn func(UIState)) func() {
	return u.subs.add(fn)
}

// State returns a copy of the store
func (u *UIStore) State() UIState {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.stateLocked()
}

// CurrentPage returns the current page
func (u *UIStore) CurrentPage() entities.Page {
	return u.State().CurrentPage
}

// NavigateTo moves to page and reports whether the page changed
func (u *UIStore) NavigateTo(page entities.Page) bool {
	changed := false
	u.mutate(func() {
		if u.page != page {
			u.page = page
			changed = true
		}
	})
	return changed
}

// SetLoading flags op as loading or not
func (u *UIStore) SetLoading(op Operation, loading bool) {
	u.mutate(func() {
		if loading {
			u.loading[op] = true
		} else {
			delete(u.loading, op)
		}
	})
}

// SetError records message for op; an empty message clears it
func (u *UIStore) SetError(op Operation, message string) {
	u.mutate(func() {
		if message == "" {
			delete(u.errs, op)
		} else {
			u.errs[op] = message
		}
	})
}

// SetGlobalError records the page-wide error; empty clears it
func (u *UIStore) SetGlobalError(message string) {
	u.mutate(func() { u.err = message })
}

// ClearAllErrors drops every error
func (u *UIStore) ClearAllErrors() {
	u.mutate(func() {
		u.err = ""
		u.errs = map[Operation]string{}
	})
}

// ClearAllLoading drops every loading flag
func (u *UIStore) ClearAllLoading() {
	u.mutate(func() { u.loading = map[Operation]bool{} })
}

// Reset returns to the landing page with no errors or loading
func (u *UIStore) Reset() {
	u.mutate(func() {
		u.page = entities.PageLanding
		u.err = ""
		u.loading = map[Operation]bool{}
		u.errs = map[Operation]string{}
	})
}

// HasAnyError reports whether any error is set
func (u *UIStore) HasAnyError() bool {
	s := u.State()
	return s.Error != "" || len(s.Errors) > 0
}

// HasAnyLoading reports whether any operation is loading
func (u *UIStore) HasAnyLoading() bool {
	return len(u.State().Loading) > 0
}

// ActiveErrors lists the global error first, then per-operation errors in
// Operations order
func (u *UIStore) ActiveErrors() []string {
	s := u.State()

	var out []string
	if s.Error != "" {
		out = append(out, s.Error)
	}
	for _, op := range Operations() {
		if msg, ok := s.Errors[op]; ok {
			out = append(out, msg)
		}
	}
	return out
}

// Snapshot returns the persisted fields
func (u *UIStore) Snapshot() *entities.UISnapshot {
	return &entities.UISnapshot{CurrentPage: u.CurrentPage()}
}

// Restore sets the page from a persisted snapshot
func (u *UIStore) Restore(snap *entities.UISnapshot) {
	if snap == nil || snap.CurrentPage == "" {
		return
	}
	u.NavigateTo(snap.CurrentPage)
}

func (u *UIStore) mutate(fn func()) {
	u.mu.Lock()
	fn()
	out := u.stateLocked()
	u.mu.Unlock()

	u.subs.notify(out)
}

func (u *UIStore) stateLocked() UIState {
	return UIState{
		CurrentPage: u.page,
		Error:       u.err,
		Loading:     maps.Clone(u.loading),
		Errors:      maps.Clone(u.errs),
	}
}
