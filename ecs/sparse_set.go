package ecs

// store is the type-erased view of a component set the world needs to clean
// up after a destroyed entity.
type store interface {
	remove(id entityID) bool
	has(id entityID) bool
	len() int
	ids() []entityID
}

// sparseSet stores components densely, indexed by entity slot id. Lookups are
// O(1) and iteration walks a packed slice.
type sparseSet[T any] struct {
	dense  []entityID
	values []*T
	sparse []int32
}

func (s *sparseSet[T]) has(id entityID) bool {
	if int(id) >= len(s.sparse) {
		return false
	}
	idx := s.sparse[id]
	return idx >= 0 && int(idx) < len(s.dense) && s.dense[idx] == id
}

func (s *sparseSet[T]) get(id entityID) (*T, bool) {
	if !s.has(id) {
		return nil, false
	}
	return s.values[s.sparse[id]], true
}

func (s *sparseSet[T]) set(id entityID, v *T) {
	for int(id) >= len(s.sparse) {
		s.sparse = append(s.sparse, -1)
	}
	if s.has(id) {
		s.values[s.sparse[id]] = v
		return
	}
	s.sparse[id] = int32(len(s.dense))
	s.dense = append(s.dense, id)
	s.values = append(s.values, v)
}

func (s *sparseSet[T]) remove(id entityID) bool {
	if !s.has(id) {
		return false
	}
	idx := s.sparse[id]
	last := int32(len(s.dense) - 1)
	lastID := s.dense[last]

	s.dense[idx] = lastID
	s.values[idx] = s.values[last]
	s.sparse[lastID] = idx

	s.values[last] = nil
	s.dense = s.dense[:last]
	s.values = s.values[:last]
	s.sparse[id] = -1
	return true
}

func (s *sparseSet[T]) len() int {
	return len(s.dense)
}

func (s *sparseSet[T]) ids() []entityID {
	return s.dense
}
