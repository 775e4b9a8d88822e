package component

// Pickup is a collectible consumed by the first entity with Health that
// enters it.
type Pickup struct {
	Heal  int
	Score int
}

var PickupComponent = NewComponent[Pickup]()
