package ttlcache

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	logger "github.com/harwoeck/liblog/contract"
	"golang.org/x/sync/singleflight"
)

type entry struct {
	key      string
	value    interface{}
	ttl      time.Duration
	expireAt time.Time
	gen      uint64
	timer    *clock.Timer

	// index is the position in the deadline heap of the expiry policy, -1
	// while the entry is not queued there.
	index int
}

func (e *entry) expired(now time.Time) bool {
	return !e.expireAt.After(now)
}

// Cache is an expiring key/value store. All methods are safe for concurrent
// use. None of them fail: absent input is ignored and unknown keys are
// misses.
type Cache struct {
	emitter

	log      logger.Logger
	clock    clock.Clock
	ttl      time.Duration
	capacity int
	policy   evictionPolicy
	loads    singleflight.Group

	mu      sync.Mutex
	entries map[string]*entry
	gen     uint64

	// pending holds events in the order their mutations committed. Only the
	// goroutine that set draining delivers them.
	pending  []Event
	draining bool
}

var _ Observable = (*Cache)(nil)

// New creates a Cache. A nil config is treated like an empty one, a nil log
// falls back to the std logger.
func New(config *Config, log logger.Logger) (*Cache, error) {
	if log == nil {
		log = logger.MustNewStd()
	}
	log = log.Named("ttlcache")

	if config == nil {
		config = &Config{}
	}
	if config.Capacity < 0 {
		return nil, fmt.Errorf("ttlcache: capacity cannot be %d! Must not be negative", config.Capacity)
	}
	eviction, err := config.eviction()
	if err != nil {
		return nil, err
	}

	c := &Cache{
		log:      log,
		clock:    config.Clock,
		ttl:      config.TTL,
		capacity: config.Capacity,
		entries:  make(map[string]*entry),
	}
	if c.clock == nil {
		c.clock = clock.New()
	}
	if c.capacity > 0 {
		c.policy = newEvictionPolicy(eviction, c.capacity)
	}

	log.Info("cache created",
		logger.NewField("default_ttl", c.ttl),
		logger.NewField("capacity", c.capacity),
		logger.NewField("eviction", eviction))

	return c, nil
}

// TTL returns the default time-to-live used by Put.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Put stores value under key with the default TTL. See PutTTL.
func (c *Cache) Put(key string, value interface{}) {
	c.PutTTL(key, value, c.ttl)
}

// PutTTL stores value under key for ttl. An empty key or a nil value makes
// the call a no-op. An existing entry is removed first (emitting del), then
// the new entry is installed and put is emitted. A ttl <= 0 expires the entry
// on the next timer tick.
func (c *Cache) PutTTL(key string, value interface{}, ttl time.Duration) {
	if key == "" || value == nil {
		return
	}

	c.mu.Lock()
	c.removeLocked(key, EventDel)

	c.gen++
	e := &entry{
		key:      key,
		value:    value,
		ttl:      ttl,
		expireAt: c.clock.Now().Add(ttl),
		gen:      c.gen,
		index:    -1,
	}

	if c.policy != nil {
		for _, victim := range c.policy.admit(e) {
			c.log.Debug("dropping entry to honor capacity",
				logger.NewField("key", victim),
				logger.NewField("capacity", c.capacity))
			c.removeLocked(victim, EventDrop)
		}
	}

	gen := e.gen
	e.timer = c.clock.AfterFunc(ttl, func() {
		c.expire(key, gen)
	})
	c.entries[key] = e
	c.pending = append(c.pending, Event{Kind: EventPut, Key: key, Value: value, TTL: ttl})
	c.mu.Unlock()

	c.drain()
}

// expire is the timer callback. It removes key only if it still holds the
// entry generation the timer was armed for.
func (c *Cache) expire(key string, gen uint64) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok || e.gen != gen {
		c.mu.Unlock()
		return
	}
	e.timer = nil
	c.removeLocked(key, EventDel)
	c.mu.Unlock()

	c.log.Debug("entry expired", logger.NewField("key", key), logger.NewField("ttl", e.ttl))
	c.drain()
}

// Get returns the value stored under key. It emits hit for a live entry and
// miss otherwise. An entry whose deadline passed is removed first, emitting
// del before the miss. Reads never extend the TTL.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if ok && e.expired(c.clock.Now()) {
		c.log.Debug("entry found expired on read", logger.NewField("key", key))
		c.removeLocked(key, EventDel)
		ok = false
	}
	if ok {
		if c.policy != nil {
			c.policy.touch(e)
		}
		c.pending = append(c.pending, Event{Kind: EventHit, Key: key, Value: e.value, TTL: e.ttl})
	} else {
		c.pending = append(c.pending, Event{Kind: EventMiss, Key: key})
	}
	c.mu.Unlock()

	c.drain()

	if !ok {
		return nil, false
	}
	return e.value, true
}

// Delete removes key, emits del and returns the removed value. Deleting an
// unknown key is a no-op without an event.
func (c *Cache) Delete(key string) (interface{}, bool) {
	c.mu.Lock()
	e, ok := c.removeLocked(key, EventDel)
	c.mu.Unlock()

	c.drain()

	if !ok {
		return nil, false
	}
	return e.value, true
}

// Clear removes every entry, emitting one del per entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	for key := range c.entries {
		c.removeLocked(key, EventDel)
	}
	if c.policy != nil {
		c.policy.reset()
	}
	c.mu.Unlock()

	c.drain()
}

// Size returns the number of stored entries. It is cheap but counts entries
// whose deadline passed and that have not been swept yet.
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// ExactSize returns the number of live entries. As a side effect every entry
// whose deadline passed is removed the way Get removes it, emitting del
// followed by miss.
func (c *Cache) ExactSize() int {
	c.mu.Lock()
	now := c.clock.Now()
	for key, e := range c.entries {
		if !e.expired(now) {
			continue
		}
		c.removeLocked(key, EventDel)
		c.pending = append(c.pending, Event{Kind: EventMiss, Key: key})
	}
	n := len(c.entries)
	c.mu.Unlock()

	c.drain()
	return n
}

// Keys returns the sorted keys of all live entries. It neither emits events
// nor removes expired entries.
func (c *Cache) Keys() []string {
	c.mu.Lock()
	now := c.clock.Now()
	keys := make([]string, 0, len(c.entries))
	for key, e := range c.entries {
		if !e.expired(now) {
			keys = append(keys, key)
		}
	}
	c.mu.Unlock()

	sort.Strings(keys)
	return keys
}

// removeLocked cancels the timer of key, removes the entry and queues an
// event of the given kind.
func (c *Cache) removeLocked(key string, kind EventKind) (*entry, bool) {
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}

	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	delete(c.entries, key)
	if c.policy != nil {
		c.policy.forget(e)
	}

	c.pending = append(c.pending, Event{Kind: kind, Key: key, Value: e.value, TTL: e.ttl})
	return e, true
}

// drain delivers pending events in commit order. If another goroutine is
// already draining, it delivers the events queued here as well and drain
// returns at once. The same holds for handlers calling back into the cache:
// their events follow once the current handler returns.
func (c *Cache) drain() {
	c.mu.Lock()
	if c.draining {
		c.mu.Unlock()
		return
	}
	c.draining = true

	// a panicking handler must not leave the queue without a drainer
	defer func() {
		if r := recover(); r != nil {
			c.mu.Lock()
			c.draining = false
			c.mu.Unlock()
			panic(r)
		}
	}()

	for len(c.pending) > 0 {
		events := c.pending
		c.pending = nil
		c.mu.Unlock()

		c.dispatch(events)

		c.mu.Lock()
	}

	c.draining = false
	c.mu.Unlock()
}
