package ecs

import "strconv"

// Entity is a generational handle: the low 32 bits are the slot id, the high
// 32 bits the generation the slot had when the entity was created. A
// destroyed entity's slot is recycled with a bumped generation, so stale
// handles never alias a new entity.
type Entity uint64

type entityID uint32
type generation uint32

const entityIDBits = 32

func makeEntity(id entityID, gen generation) Entity {
	return Entity(uint64(gen)<<entityIDBits | uint64(id))
}

func (e Entity) id() entityID {
	return entityID(uint32(e))
}

func (e Entity) generation() generation {
	return generation(uint32(uint64(e) >> entityIDBits))
}

func (e Entity) String() string {
	return strconv.FormatUint(uint64(e.id()), 10) + "v" + strconv.FormatUint(uint64(e.generation()), 10)
}

// Valid reports whether e could have been issued by a world. It says nothing
// about whether e is still alive.
func (e Entity) Valid() bool {
	return e.id() != 0
}
