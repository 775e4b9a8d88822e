package collision

// proxyStore is a dense, cache-friendly store of proxies keyed by handle.
// Handles are never reused, so a lookup through a stale handle simply misses.
type proxyStore struct {
	handles []ProxyHandle
	values  []Proxy
	sparse  []int32
}

func (s *proxyStore) has(h ProxyHandle) bool {
	if s == nil || h == InvalidHandle || int(h)-1 >= len(s.sparse) {
		return false
	}
	idx := s.sparse[h-1]
	return idx >= 0 && int(idx) < len(s.handles) && s.handles[idx] == h
}

// get returns a pointer into the dense slice. It stays valid until the next
// insert or remove.
func (s *proxyStore) get(h ProxyHandle) *Proxy {
	if !s.has(h) {
		return nil
	}
	return &s.values[s.sparse[h-1]]
}

func (s *proxyStore) insert(p Proxy) {
	if s == nil || p.Handle == InvalidHandle {
		return
	}
	for int(p.Handle)-1 >= len(s.sparse) {
		s.sparse = append(s.sparse, -1)
	}
	if s.has(p.Handle) {
		s.values[s.sparse[p.Handle-1]] = p
		return
	}
	s.handles = append(s.handles, p.Handle)
	s.values = append(s.values, p)
	s.sparse[p.Handle-1] = int32(len(s.handles) - 1)
}

func (s *proxyStore) remove(h ProxyHandle) bool {
	if s == nil || !s.has(h) {
		return false
	}
	idx := s.sparse[h-1]
	last := int32(len(s.handles) - 1)
	lastHandle := s.handles[last]

	s.handles[idx] = s.handles[last]
	s.values[idx] = s.values[last]
	s.sparse[lastHandle-1] = idx

	s.values[last] = Proxy{}
	s.handles = s.handles[:last]
	s.values = s.values[:last]
	s.sparse[h-1] = -1
	return true
}

func (s *proxyStore) len() int {
	if s == nil {
		return 0
	}
	return len(s.handles)
}
