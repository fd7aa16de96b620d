// Package ttlcache provides an in-process key/value cache whose entries carry
// a time-to-live and are removed automatically once it elapses.
//
// Every entry owns exactly one expiration timer. When the timer fires the
// entry is removed (eager expiration). A read that finds an entry whose
// deadline already passed removes it as well (lazy expiration). Both paths
// agree on a single entry instance through a per-entry generation, so a timer
// that lost a race can never remove a newer entry stored under the same key.
//
// Callers observe cache activity by subscribing to events (put, hit, miss,
// del and drop). Events are queued in the order their changes were made and
// delivered after the cache lock has been released, so handlers are free to
// call back into the cache. One goroutine delivers at a time. Usually that is
// the triggering call, before it returns. A call made while another goroutine
// or an enclosing handler is delivering leaves its events to that deliverer.
//
// An optional capacity bounds the number of entries. Victims are chosen by a
// configurable policy (lru, lfu, arc, simple or expiry) and reported with a
// drop event.
package ttlcache
