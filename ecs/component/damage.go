package component

// Damage hurts anything with Health it touches. Each contact enter deals
// Amount once; PerTick also deals it on every stay.
type Damage struct {
	Amount  int
	PerTick bool
	// DestroyOnHit removes the dealer after its first hit, as for bullets.
	DestroyOnHit bool
}

var DamageComponent = NewComponent[Damage]()
