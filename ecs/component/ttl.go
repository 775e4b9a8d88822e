package component

// TTL is a frame-based time-to-live. The TTL system destroys the entity once
// Frames reaches zero.
type TTL struct {
	// Frames remaining for the TTL (in update ticks)
	Frames int
}

var TTLComponent = NewComponent[TTL]()
