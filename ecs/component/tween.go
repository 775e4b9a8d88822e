package component

import "github.com/tanema/gween"

// Tween drives a Transform along eased paths. A nil sequence leaves that
// axis alone.
type Tween struct {
	X *gween.Sequence
	Y *gween.Sequence
}

var TweenComponent = NewComponent[Tween]()
