package index

import (
	"sync"
	"time"

	"github.com/MrSnakeDoc/urlpop/internal/suggest"
	"github.com/MrSnakeDoc/urlpop/internal/urlmodel"
)

// SuggestionIndex guards the in-memory suggestion store shared by handlers and schedulers.
// Every mutation bumps a version; the flusher persists a snapshot and marks that version clean.
type SuggestionIndex struct {
	mu         sync.RWMutex
	store      *suggest.Store
	version    uint64    // bumped on every successful mutation
	flushed    uint64    // version last persisted
	lastFlush  time.Time // Timestamp of last successful flush
	lastReload time.Time // Timestamp of last seed reload
	lastLoad   time.Time // Timestamp of last load from redis
}

// NewSuggestionIndex creates an empty index
func NewSuggestionIndex() *SuggestionIndex {
	return &SuggestionIndex{store: suggest.New()}
}

// Load replaces the store with data read from persistence. The index is clean afterwards.
func (idx *SuggestionIndex) Load(st *suggest.Store) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.store = st
	idx.version++
	idx.flushed = idx.version
	idx.lastLoad = time.Now()
}

// Replace swaps the whole store, for imports. The index is dirty afterwards.
func (idx *SuggestionIndex) Replace(st *suggest.Store) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.store = st
	idx.version++
}

// Update runs fn with exclusive access to the store. The index turns dirty only when fn succeeds,
// so fn must not leave partial changes behind when it returns an error.
func (idx *SuggestionIndex) Update(fn func(st *suggest.Store) error) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if err := fn(idx.store); err != nil {
		return err
	}
	idx.version++
	return nil
}

// Snapshot returns a deep copy of the store and the version it reflects
func (idx *SuggestionIndex) Snapshot() (*suggest.Store, uint64) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.store.Clone(), idx.version
}

// MarkFlushed records that version has been persisted
func (idx *SuggestionIndex) MarkFlushed(version uint64) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if version > idx.flushed {
		idx.flushed = version
	}
	idx.lastFlush = time.Now()
}

// Dirty reports whether mutations happened since the last flush
func (idx *SuggestionIndex) Dirty() bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.version != idx.flushed
}

// MarkReloaded records a seed reload
func (idx *SuggestionIndex) MarkReloaded() {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.lastReload = time.Now()
}

// ─────────────────────────────────────────────────────────────────
// Reads
// ─────────────────────────────────────────────────────────────────

// Count returns the number of domain entries, aliases included
func (idx *SuggestionIndex) Count() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.store.Len()
}

// Domains returns every domain in insertion order
func (idx *SuggestionIndex) Domains() []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.store.Domains()
}

// Top returns the domain owning the history of domain
func (idx *SuggestionIndex) Top(domain string) string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.store.Top(domain)
}

// Aliases returns the other members of domain's group
func (idx *SuggestionIndex) Aliases(domain string) []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.store.Aliases(domain)
}

// Params returns a copy of the history of domain's group
func (idx *SuggestionIndex) Params(domain string) *urlmodel.Params {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.store.Params(domain)
}

// Values returns the values of param starting with prefix, most recent first
func (idx *SuggestionIndex) Values(domain, param, prefix string) []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.store.Values(domain, param, prefix)
}

// MarshalJSON exports the store in its persisted shape
func (idx *SuggestionIndex) MarshalJSON() ([]byte, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.store.MarshalJSON()
}

// GetLastFlush returns the timestamp of the last flush
func (idx *SuggestionIndex) GetLastFlush() time.Time {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.lastFlush
}

// GetLastReload returns the timestamp of the last seed reload
func (idx *SuggestionIndex) GetLastReload() time.Time {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.lastReload
}

// GetLastLoad returns the timestamp of the last load from redis
func (idx *SuggestionIndex) GetLastLoad() time.Time {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.lastLoad
}

// ─────────────────────────────────────────────────────────────────
// Mutations
// ─────────────────────────────────────────────────────────────────

// Record moves value to the front of param's history for domain
func (idx *SuggestionIndex) Record(domain, param, value string) {
	_ = idx.Update(func(st *suggest.Store) error {
		st.Record(domain, param, value)
		return nil
	})
}

// RecordURL records every parameter of a URL under its hostname, the way a URL
// accepted by the user feeds the history. Unparseable URLs are ignored.
func (idx *SuggestionIndex) RecordURL(raw string) bool {
	m := urlmodel.Parse(raw)
	if m.Hostname() == "" {
		return false
	}
	params := m.Params()
	if params.Len() == 0 {
		return false
	}
	_ = idx.Update(func(st *suggest.Store) error {
		for _, name := range params.Names() {
			for _, v := range params.Get(name) {
				st.Record(m.Hostname(), name, v)
			}
		}
		return nil
	})
	return true
}

// Merge adds values the group of domain does not know yet
func (idx *SuggestionIndex) Merge(domain string, params *urlmodel.Params) {
	_ = idx.Update(func(st *suggest.Store) error {
		st.Merge(domain, params)
		return nil
	})
}

// DeleteParam removes param from domain's group
func (idx *SuggestionIndex) DeleteParam(domain, param string) {
	_ = idx.Update(func(st *suggest.Store) error {
		st.DeleteParam(domain, param)
		return nil
	})
}

// DeleteValue removes one value of param from domain's group
func (idx *SuggestionIndex) DeleteValue(domain, param, value string) {
	_ = idx.Update(func(st *suggest.Store) error {
		st.DeleteValue(domain, param, value)
		return nil
	})
}

// DeleteDomain removes one domain entry
func (idx *SuggestionIndex) DeleteDomain(domain string) {
	_ = idx.Update(func(st *suggest.Store) error {
		st.DeleteDomain(domain)
		return nil
	})
}

// Bind joins target to subject's group
func (idx *SuggestionIndex) Bind(subject, target string) {
	_ = idx.Update(func(st *suggest.Store) error {
		st.Bind(subject, target)
		return nil
	})
}

// Unbind detaches the alias side of a bound pair
func (idx *SuggestionIndex) Unbind(subject, target string) error {
	return idx.Update(func(st *suggest.Store) error {
		return st.Unbind(subject, target)
	})
}
