// Package signal provides a synchronous multicast observer.
//
// Listeners run in subscription order on the caller's goroutine. Broadcast
// iterates a snapshot, so a listener may subscribe or unsubscribe (itself or
// others) without disturbing the delivery in progress: listeners removed
// mid-broadcast still receive the current value, listeners added mid-broadcast
// receive only later ones.
package signal

// Subscription identifies one listener. The zero value is never issued.
type Subscription uint64

type listener[T any] struct {
	id Subscription
	fn func(T)
}

// Signal is a list of listeners for values of type T. The zero value is ready
// to use. A Signal is not safe for concurrent use.
type Signal[T any] struct {
	// listeners is copy-on-write: a Broadcast in progress keeps iterating the
	// slice it started with.
	listeners []listener[T]
	next      Subscription
}

// Subscribe adds fn and returns the handle that removes it. A nil fn is
// ignored and yields the zero Subscription.
func (s *Signal[T]) Subscribe(fn func(T)) Subscription {
	if s == nil || fn == nil {
		return 0
	}
	s.next++
	next := make([]listener[T], len(s.listeners), len(s.listeners)+1)
	copy(next, s.listeners)
	s.listeners = append(next, listener[T]{id: s.next, fn: fn})
	return s.next
}

// Unsubscribe removes the listener for id. It reports false when id is not
// subscribed.
func (s *Signal[T]) Unsubscribe(id Subscription) bool {
	if s == nil || id == 0 {
		return false
	}
	for i, l := range s.listeners {
		if l.id != id {
			continue
		}
		next := make([]listener[T], 0, len(s.listeners)-1)
		next = append(next, s.listeners[:i]...)
		next = append(next, s.listeners[i+1:]...)
		s.listeners = next
		return true
	}
	return false
}

// Broadcast calls every listener subscribed at the time of the call with v.
func (s *Signal[T]) Broadcast(v T) {
	if s == nil || len(s.listeners) == 0 {
		return
	}
	for _, l := range s.listeners {
		l.fn(v)
	}
}

// Len returns the number of listeners.
func (s *Signal[T]) Len() int {
	if s == nil {
		return 0
	}
	return len(s.listeners)
}

// Clear drops every listener.
func (s *Signal[T]) Clear() {
	if s == nil {
		return
	}
	s.listeners = nil
}
