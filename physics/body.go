// Package physics maps collision proxies back to gameplay objects.
//
// Bodies is the registry the response pass resolves handles through. Each
// Body exposes one signal per contact kind plus OnContact, which fires for
// every kind.
package physics

import (
	"github.com/milk9111/quadcollide/collision"
	"github.com/milk9111/quadcollide/signal"
)

// Body is the gameplay side of one proxy.
type Body struct {
	handle collision.ProxyHandle
	owner  any

	kinds [collision.ContactKindCount]signal.Signal[collision.Contact]

	// OnContact fires for every contact after the kind-specific signal.
	OnContact signal.Signal[collision.Contact]
}

// Handle returns the proxy this body stands for.
func (b *Body) Handle() collision.ProxyHandle {
	if b == nil {
		return collision.InvalidHandle
	}
	return b.handle
}

// Owner returns the gameplay object registered with the body.
func (b *Body) Owner() any {
	if b == nil {
		return nil
	}
	return b.owner
}

// On returns the signal for kind, or nil for an unknown kind.
func (b *Body) On(kind collision.ContactKind) *signal.Signal[collision.Contact] {
	if b == nil || int(kind) >= len(b.kinds) {
		return nil
	}
	return &b.kinds[kind]
}

// HandleContact broadcasts c on the kind signal, then on OnContact.
func (b *Body) HandleContact(c collision.Contact) {
	if b == nil {
		return
	}
	if s := b.On(c.Kind); s != nil {
		s.Broadcast(c)
	}
	b.OnContact.Broadcast(c)
}

// OwnerOf returns the owner of the body behind a contact's counterpart.
func OwnerOf[T any](c collision.Contact) (T, bool) {
	var zero T
	b, ok := c.OtherTarget.(*Body)
	if !ok || b == nil {
		return zero, false
	}
	v, ok := b.owner.(T)
	return v, ok
}
