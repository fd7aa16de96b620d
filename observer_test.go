package ttlcache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmitter_MultipleSubscribers(t *testing.T) {
	var em emitter
	var calls []string

	em.Subscribe(EventHit, func(Event) { calls = append(calls, "first") })
	em.Subscribe(EventHit, func(Event) { calls = append(calls, "second") })
	em.Subscribe(EventMiss, func(Event) { calls = append(calls, "miss") })

	em.dispatch([]Event{{Kind: EventHit}, {Kind: EventMiss}, {Kind: EventPut}})

	assert.Equal(t, []string{"first", "second", "miss"}, calls)
}

func TestEmitter_Unsubscribe(t *testing.T) {
	var em emitter
	calls := 0

	s := em.Subscribe(EventDel, func(Event) { calls++ })
	em.dispatch([]Event{{Kind: EventDel}})

	assert.True(t, em.Unsubscribe(s))
	assert.False(t, em.Unsubscribe(s))
	assert.False(t, em.Unsubscribe(Subscription{}))

	em.dispatch([]Event{{Kind: EventDel}})
	assert.Equal(t, 1, calls)
}

func TestEmitter_UnsubscribeDuringDispatch(t *testing.T) {
	var em emitter
	var calls []string

	var self Subscription
	self = em.Subscribe(EventPut, func(Event) {
		calls = append(calls, "once")
		em.Unsubscribe(self)
	})
	em.Subscribe(EventPut, func(Event) { calls = append(calls, "always") })

	em.dispatch([]Event{{Kind: EventPut}, {Kind: EventPut}})

	assert.Equal(t, []string{"once", "always", "always"}, calls)
}

func TestEmitter_NilHandler(t *testing.T) {
	var em emitter

	s := em.Subscribe(EventPut, nil)
	assert.Equal(t, Subscription{}, s)
	assert.NotPanics(t, func() {
		em.dispatch([]Event{{Kind: EventPut}})
	})
}
