package router

import (
	"sync"

	"imsse/internal/entitlement/wfc"
	"imsse/pkg/domain"
)

// handle serializes work on one subscription and owns its WFC applier.
type handle struct {
	sub     domain.SubID
	mu      sync.Mutex
	applier *wfc.Applier

	// guarded by registry.mu
	refs    int
	evicted bool
}

// registry maps subscriptions to handles. A handle lives while it is in use
// or until its subscription leaves its slot, whichever is later.
type registry struct {
	mu         sync.Mutex
	handles    map[domain.SubID]*handle
	newApplier func(domain.SubID) (*wfc.Applier, error)
}

func newRegistry(newApplier func(domain.SubID) (*wfc.Applier, error)) *registry {
	return &registry{
		handles:    make(map[domain.SubID]*handle),
		newApplier: newApplier,
	}
}

// acquire returns the handle for sub, creating it on first use. Every acquire
// must be paired with release.
func (r *registry) acquire(sub domain.SubID) (*handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h, ok := r.handles[sub]; ok {
		h.refs++
		return h, nil
	}
	applier, err := r.newApplier(sub)
	if err != nil {
		return nil, err
	}
	h := &handle{sub: sub, applier: applier, refs: 1}
	r.handles[sub] = h
	return h, nil
}

func (r *registry) release(h *handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h.refs--
	if h.refs <= 0 && h.evicted && r.handles[h.sub] == h {
		delete(r.handles, h.sub)
	}
}

// evict drops the handle for sub once nobody holds it. Holders keep using the
// same handle, so mutual exclusion survives eviction.
func (r *registry) evict(sub domain.SubID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.handles[sub]
	if !ok {
		return
	}
	if h.refs <= 0 {
		delete(r.handles, sub)
		return
	}
	h.evicted = true
}

func (r *registry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.handles)
}

// slotLocks hands out one mutex per slot. Slots are few and fixed, so locks
// are never freed.
type slotLocks struct {
	mu    sync.Mutex
	locks map[domain.SlotID]*sync.Mutex
}

func (l *slotLocks) get(slot domain.SlotID) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.locks == nil {
		l.locks = make(map[domain.SlotID]*sync.Mutex)
	}
	m, ok := l.locks[slot]
	if !ok {
		m = &sync.Mutex{}
		l.locks[slot] = m
	}
	return m
}
