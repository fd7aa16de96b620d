package ttlcache

import (
	"container/heap"

	"github.com/bluele/gcache"
)

// evictionPolicy tracks the entries of a bounded cache and picks victims. All
// methods are called with the cache lock held.
type evictionPolicy interface {
	// admit records a new entry and returns the keys that must be dropped to
	// make room for it.
	admit(e *entry) []string
	// touch records a use of e.
	touch(e *entry)
	// forget removes e. Entries the policy does not know are ignored.
	forget(e *entry)
	reset()
}

func newEvictionPolicy(kind string, capacity int) evictionPolicy {
	if kind == EvictExpiry {
		return &expiryPolicy{capacity: capacity}
	}
	return newIndexPolicy(kind, capacity)
}

// indexPolicy uses a gcache instance as a key-only index. gcache decides
// which key to evict and reports it through its EvictedFunc. gcache also
// calls EvictedFunc on Remove, so only evictions happening inside admit are
// collected.
type indexPolicy struct {
	index     gcache.Cache
	admitting bool
	victims   []string
}

func newIndexPolicy(kind string, capacity int) *indexPolicy {
	p := &indexPolicy{}
	p.index = gcache.New(capacity).
		EvictType(kind).
		EvictedFunc(p.evicted).
		Build()
	return p
}

func (p *indexPolicy) evicted(key, _ interface{}) {
	if !p.admitting {
		return
	}
	p.victims = append(p.victims, key.(string))
}

func (p *indexPolicy) admit(e *entry) []string {
	p.admitting, p.victims = true, nil
	defer func() {
		p.admitting, p.victims = false, nil
	}()

	// Set only fails when a serialize func is configured
	_ = p.index.Set(e.key, struct{}{})

	return p.victims
}

func (p *indexPolicy) touch(e *entry) {
	_, _ = p.index.Get(e.key)
}

func (p *indexPolicy) forget(e *entry) {
	p.index.Remove(e.key)
}

func (p *indexPolicy) reset() {
	p.index.Purge()
}

// expiryPolicy drops the entry with the earliest deadline. Entries sharing a
// deadline are dropped oldest generation first. The policy orders the cache's
// own entries and keeps their heap position in entry.index.
type expiryPolicy struct {
	capacity  int
	deadlines []*entry
}

func (p *expiryPolicy) Len() int {
	return len(p.deadlines)
}

func (p *expiryPolicy) Less(i, j int) bool {
	a, b := p.deadlines[i], p.deadlines[j]
	if a.expireAt.Equal(b.expireAt) {
		return a.gen < b.gen
	}
	return a.expireAt.Before(b.expireAt)
}

func (p *expiryPolicy) Swap(i, j int) {
	p.deadlines[i], p.deadlines[j] = p.deadlines[j], p.deadlines[i]
	p.deadlines[i].index = i
	p.deadlines[j].index = j
}

func (p *expiryPolicy) Push(x interface{}) {
	e := x.(*entry)
	e.index = len(p.deadlines)
	p.deadlines = append(p.deadlines, e)
}

func (p *expiryPolicy) Pop() interface{} {
	n := len(p.deadlines) - 1
	e := p.deadlines[n]
	p.deadlines[n] = nil
	p.deadlines = p.deadlines[:n]
	e.index = -1
	return e
}

func (p *expiryPolicy) admit(e *entry) []string {
	var victims []string
	for len(p.deadlines) >= p.capacity {
		victim := heap.Pop(p).(*entry)
		victims = append(victims, victim.key)
	}
	heap.Push(p, e)
	return victims
}

func (p *expiryPolicy) touch(*entry) {}

func (p *expiryPolicy) forget(e *entry) {
	if e.index < 0 || e.index >= len(p.deadlines) || p.deadlines[e.index] != e {
		return
	}
	heap.Remove(p, e.index)
}

func (p *expiryPolicy) reset() {
	for _, e := range p.deadlines {
		e.index = -1
	}
	p.deadlines = nil
}
