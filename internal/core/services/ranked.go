package services

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/custodia-labs/sfcc-replicator/internal/core/ports/driven"
)

// RankedRegistry holds named entries ordered by ascending rank.
// Entries with equal rank keep their registration order.
type RankedRegistry[T driven.Ranked] struct {
	mu   sync.Mutex
	seq  uint64
	snap atomic.Pointer[rankedSnapshot[T]]
}

type rankedEntry[T driven.Ranked] struct {
	item T
	seq  uint64
}

type rankedSnapshot[T driven.Ranked] struct {
	entries []rankedEntry[T]
	items   []T
}

// NewRankedRegistry creates a registry holding items.
func NewRankedRegistry[T driven.Ranked](items ...T) *RankedRegistry[T] {
	r := &RankedRegistry[T]{}
	r.snap.Store(&rankedSnapshot[T]{})
	r.Replace(items...)
	return r
}

// Bind registers item under its name, replacing an entry with the same name.
func (r *RankedRegistry[T]) Bind(item T) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur := r.snap.Load()
	entries := make([]rankedEntry[T], 0, len(cur.entries)+1)
	for _, e := range cur.entries {
		if e.item.Name() != item.Name() {
			entries = append(entries, e)
		}
	}
	r.seq++
	entries = append(entries, rankedEntry[T]{item: item, seq: r.seq})
	r.publish(entries)
}

// Unbind removes the entry registered under name.
// It reports whether an entry was removed.
func (r *RankedRegistry[T]) Unbind(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur := r.snap.Load()
	entries := make([]rankedEntry[T], 0, len(cur.entries))
	for _, e := range cur.entries {
		if e.item.Name() != name {
			entries = append(entries, e)
		}
	}
	if len(entries) == len(cur.entries) {
		return false
	}
	r.publish(entries)
	return true
}

// Replace swaps the whole registry content in one step.
func (r *RankedRegistry[T]) Replace(items ...T) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := make([]rankedEntry[T], 0, len(items))
	seen := make(map[string]int, len(items))
	for _, item := range items {
		r.seq++
		e := rankedEntry[T]{item: item, seq: r.seq}
		if i, dup := seen[item.Name()]; dup {
			entries[i] = e
			continue
		}
		seen[item.Name()] = len(entries)
		entries = append(entries, e)
	}
	r.publish(entries)
}

// publish sorts entries and stores the new snapshot (caller must hold mu).
func (r *RankedRegistry[T]) publish(entries []rankedEntry[T]) {
	sort.SliceStable(entries, func(i, j int) bool {
		ri, rj := entries[i].item.Rank(), entries[j].item.Rank()
		if ri != rj {
			return ri < rj
		}
		return entries[i].seq < entries[j].seq
	})
	items := make([]T, len(entries))
	for i, e := range entries {
		items[i] = e.item
	}
	r.snap.Store(&rankedSnapshot[T]{entries: entries, items: items})
}

// Snapshot returns the entries in rank order. The slice is shared and
// must not be modified; later mutations never change it.
func (r *RankedRegistry[T]) Snapshot() []T {
	return r.snap.Load().items
}

// Get returns the entry registered under name.
func (r *RankedRegistry[T]) Get(name string) (T, bool) {
	for _, item := range r.Snapshot() {
		if item.Name() == name {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Names returns the registered names in rank order.
func (r *RankedRegistry[T]) Names() []string {
	items := r.Snapshot()
	names := make([]string, len(items))
	for i, item := range items {
		names[i] = item.Name()
	}
	return names
}

// Len returns the number of entries.
func (r *RankedRegistry[T]) Len() int {
	return len(r.Snapshot())
}
