package ecs

// snapshot copies the ids of the smallest store that also appear in every
// other store. Iterating the copy keeps callers safe from swap-removes done
// while they run.
func snapshot(stores ...store) []entityID {
	if len(stores) == 0 {
		return nil
	}
	smallest := stores[0]
	for _, s := range stores[1:] {
		if s.len() < smallest.len() {
			smallest = s
		}
	}
	ids := smallest.ids()
	out := make([]entityID, 0, len(ids))
	for _, id := range ids {
		keep := true
		for _, s := range stores {
			if s != smallest && !s.has(id) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, id)
		}
	}
	return out
}
