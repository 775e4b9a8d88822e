package component

// Tag is a free-form name scripts use to tell objects apart.
type Tag struct {
	Name string
}

var TagComponent = NewComponent[Tag]()

type PlayerTag struct{}

var PlayerTagComponent = NewComponent[PlayerTag]()
