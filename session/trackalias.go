package session

import (
	"sync"

	"github.com/moqtail/moqt-go/moqtype"
)

// trackAliasTable maps trackAlias <-> FullTrackName for active
// subscriptions, guarded by a RWMutex in the same style as the teacher's
// MoQSession.subscriptions map (internal/distribution/moq_session.go).
type trackAliasTable struct {
	mu      sync.RWMutex
	byAlias map[uint64]moqtype.FullTrackName
}

func newTrackAliasTable() *trackAliasTable {
	return &trackAliasTable{byAlias: make(map[uint64]moqtype.FullTrackName)}
}

// Add registers a new alias, failing with DuplicateTrackAlias if it is
// already in use.
func (t *trackAliasTable) Add(alias uint64, name moqtype.FullTrackName) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.byAlias[alias]; exists {
		return terminate(DuplicateTrackAlias, "track alias already in use", nil)
	}
	t.byAlias[alias] = name
	return nil
}

// Lookup resolves an alias to its FullTrackName.
func (t *trackAliasTable) Lookup(alias uint64) (moqtype.FullTrackName, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	name, ok := t.byAlias[alias]
	return name, ok
}

// Remove drops an alias, e.g. on subscription end.
func (t *trackAliasTable) Remove(alias uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.byAlias, alias)
}

// Reassign atomically moves a FullTrackName from oldAlias to newAlias,
// for the SubscribeError(RetryTrackAlias) flow.
func (t *trackAliasTable) Reassign(oldAlias, newAlias uint64, name moqtype.FullTrackName) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.byAlias[newAlias]; exists {
		return terminate(DuplicateTrackAlias, "retry track alias already in use", nil)
	}
	delete(t.byAlias, oldAlias)
	t.byAlias[newAlias] = name
	return nil
}
