package ecs

// entityStore tracks slot generations and free slots. Slot 0 is never used.
type entityStore struct {
	gen   []generation
	alive []bool
	free  []entityID
	count int
}

func (s *entityStore) create() Entity {
	var id entityID
	if n := len(s.free); n > 0 {
		id = s.free[n-1]
		s.free = s.free[:n-1]
	} else {
		if len(s.gen) == 0 {
			s.gen = append(s.gen, 0)
			s.alive = append(s.alive, false)
		}
		id = entityID(len(s.gen))
		s.gen = append(s.gen, 0)
		s.alive = append(s.alive, false)
	}
	s.alive[id] = true
	s.count++
	return makeEntity(id, s.gen[id])
}

func (s *entityStore) destroy(e Entity) bool {
	if !s.isAlive(e) {
		return false
	}
	id := e.id()
	s.gen[id]++
	s.alive[id] = false
	s.free = append(s.free, id)
	s.count--
	return true
}

func (s *entityStore) isAlive(e Entity) bool {
	id := e.id()
	if id == 0 || int(id) >= len(s.gen) {
		return false
	}
	return s.alive[id] && s.gen[id] == e.generation()
}

// each calls fn for every live entity in slot order.
func (s *entityStore) each(fn func(Entity)) {
	for i := 1; i < len(s.gen); i++ {
		if s.alive[i] {
			fn(makeEntity(entityID(i), s.gen[i]))
		}
	}
}
