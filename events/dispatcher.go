// Package events holds the small synchronous pub/sub primitive
// (EventDispatcher) and the platform-pointer-to-canvas mapping (Pointer)
// that spec.md §4.8 names. Grounded on the teacher's registry-as-map idiom
// (recording/registry.go, backend/registry.go: a mutex-protected map plus
// Register/sorted-iteration helpers), generalized from a named-factory
// registry into a generic ordered subscriber list, since no example repo
// in the corpus implements a generic pub/sub dispatcher.
package events

import "sync"

// Listener is a subscriber callback. Dispatch calls every currently
// subscribed listener, in subscription order, with kind and payload.
type Listener[Kind comparable, Payload any] func(kind Kind, payload Payload)

// subscription pairs a listener with the token Unsubscribe needs.
type subscription[Kind comparable, Payload any] struct {
	token    uint64
	listener Listener[Kind, Payload]
}

// EventDispatcher is a synchronous, subscription-ordered publish/subscribe
// hub for a single event taxonomy (Kind) carrying a single payload shape
// (Payload), per spec.md §4.8. Dispatch is synchronous: Dispatch returns
// only after every subscribed listener has run.
//
// Per spec.md §5's ordering guarantee, listeners registered while a
// Dispatch is already in progress do not fire for that dispatch — they
// take effect starting with the next one, since subscribe() snapshots
// nothing but Dispatch iterates over the slice captured at its own start.
type EventDispatcher[Kind comparable, Payload any] struct {
	mu          sync.Mutex
	subscribers []subscription[Kind, Payload]
	nextToken   uint64
}

// NewEventDispatcher creates an empty dispatcher.
func NewEventDispatcher[Kind comparable, Payload any]() *EventDispatcher[Kind, Payload] {
	return &EventDispatcher[Kind, Payload]{}
}

// Subscribe registers listener and returns a token Unsubscribe accepts to
// remove it again.
func (d *EventDispatcher[Kind, Payload]) Subscribe(listener Listener[Kind, Payload]) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextToken++
	token := d.nextToken
	d.subscribers = append(d.subscribers, subscription[Kind, Payload]{token: token, listener: listener})
	return token
}

// Unsubscribe removes the listener registered under token. Reports whether
// a matching subscription was found.
func (d *EventDispatcher[Kind, Payload]) Unsubscribe(token uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, s := range d.subscribers {
		if s.token == token {
			d.subscribers = append(d.subscribers[:i], d.subscribers[i+1:]...)
			return true
		}
	}
	return false
}

// Dispatch synchronously invokes every listener subscribed at the moment
// Dispatch was called, in subscription order.
func (d *EventDispatcher[Kind, Payload]) Dispatch(kind Kind, payload Payload) {
	d.mu.Lock()
	snapshot := make([]subscription[Kind, Payload], len(d.subscribers))
	copy(snapshot, d.subscribers)
	d.mu.Unlock()

	for _, s := range snapshot {
		s.listener(kind, payload)
	}
}

// Len reports the number of currently subscribed listeners.
func (d *EventDispatcher[Kind, Payload]) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.subscribers)
}
