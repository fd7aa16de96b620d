package ttlcache

import (
	"sync"
	"time"
)

// EventKind names a kind of cache activity.
type EventKind string

const (
	// EventPut is emitted after an entry has been installed.
	EventPut EventKind = "put"
	// EventHit is emitted when Get finds a live entry.
	EventHit EventKind = "hit"
	// EventMiss is emitted when Get finds no live entry.
	EventMiss EventKind = "miss"
	// EventDel is emitted when an entry is removed by its timer, an explicit
	// Delete, Clear, a replacing Put or a read that found it expired.
	EventDel EventKind = "del"
	// EventDrop is emitted when an entry is evicted to make room for a new
	// key in a cache with a capacity.
	EventDrop EventKind = "drop"
)

// Event describes one cache activity. Value and TTL are unset for misses.
type Event struct {
	Kind  EventKind
	Key   string
	Value interface{}
	TTL   time.Duration
}

// Handler receives events it has been subscribed to.
type Handler func(ev Event)

// Subscription identifies a registered Handler. The zero value identifies
// nothing.
type Subscription struct {
	kind EventKind
	id   uint64
}

// Observable is implemented by everything that emits cache events.
type Observable interface {
	// Subscribe registers h for events of the given kind. A kind can have any
	// number of independent subscribers; they are called in subscription
	// order.
	Subscribe(kind EventKind, h Handler) Subscription
	// Unsubscribe removes a registration and reports whether it existed.
	Unsubscribe(s Subscription) bool
}

type subscriber struct {
	id uint64
	h  Handler
}

// emitter implements Observable. Subscriber lists are copy-on-write so a
// dispatch can iterate over a snapshot while handlers (un)subscribe.
type emitter struct {
	subsLock sync.RWMutex
	nextID   uint64
	subs     map[EventKind][]subscriber
}

func (em *emitter) Subscribe(kind EventKind, h Handler) Subscription {
	if h == nil {
		return Subscription{}
	}

	em.subsLock.Lock()
	defer em.subsLock.Unlock()

	if em.subs == nil {
		em.subs = make(map[EventKind][]subscriber)
	}

	em.nextID++
	list := em.subs[kind]
	next := make([]subscriber, len(list), len(list)+1)
	copy(next, list)
	em.subs[kind] = append(next, subscriber{id: em.nextID, h: h})

	return Subscription{kind: kind, id: em.nextID}
}

func (em *emitter) Unsubscribe(s Subscription) bool {
	if s.id == 0 {
		return false
	}

	em.subsLock.Lock()
	defer em.subsLock.Unlock()

	list := em.subs[s.kind]
	for i, sub := range list {
		if sub.id != s.id {
			continue
		}

		next := make([]subscriber, 0, len(list)-1)
		next = append(next, list[:i]...)
		next = append(next, list[i+1:]...)
		if len(next) == 0 {
			delete(em.subs, s.kind)
		} else {
			em.subs[s.kind] = next
		}
		return true
	}

	return false
}

func (em *emitter) subscribers(kind EventKind) []subscriber {
	em.subsLock.RLock()
	defer em.subsLock.RUnlock()
	return em.subs[kind]
}

// dispatch delivers events in order on the calling goroutine. It must never
// be called while the cache lock is held.
func (em *emitter) dispatch(events []Event) {
	for _, ev := range events {
		for _, sub := range em.subscribers(ev.Kind) {
			sub.h(ev)
		}
	}
}
