package collision

import (
	"cmp"
	"slices"
)

// CollisionPair is an unordered pair of proxies stored with A < B.
type CollisionPair struct {
	A                  ProxyHandle
	B                  ProxyHandle
	IsTriggerCollision bool
}

// MakeOrderedPair returns the canonical pair for h1 and h2.
func MakeOrderedPair(h1, h2 ProxyHandle) CollisionPair {
	if h1 > h2 {
		h1, h2 = h2, h1
	}
	return CollisionPair{A: h1, B: h2}
}

// Involves reports whether h is one side of the pair.
func (p CollisionPair) Involves(h ProxyHandle) bool {
	return p.A == h || p.B == h
}

// Other returns the side that is not h.
func (p CollisionPair) Other(h ProxyHandle) ProxyHandle {
	if p.A == h {
		return p.B
	}
	return p.A
}

type pairKey uint64

func (p CollisionPair) key() pairKey {
	return pairKey(uint64(p.A)<<32 | uint64(p.B))
}

func comparePairs(a, b CollisionPair) int {
	return cmp.Compare(a.key(), b.key())
}

// pairSet holds at most one entry per unordered pair.
type pairSet map[pairKey]CollisionPair

func (s pairSet) add(p CollisionPair) {
	if prev, ok := s[p.key()]; ok {
		p.IsTriggerCollision = p.IsTriggerCollision || prev.IsTriggerCollision
	}
	s[p.key()] = p
}

func (s pairSet) has(p CollisionPair) bool {
	_, ok := s[p.key()]
	return ok
}

func (s pairSet) purge(h ProxyHandle) {
	for k, p := range s {
		if p.Involves(h) {
			delete(s, k)
		}
	}
}

// appendSorted appends the pairs of s that pass keep, ordered by (A, B).
func (s pairSet) appendSorted(out []CollisionPair, keep func(CollisionPair) bool) []CollisionPair {
	start := len(out)
	for _, p := range s {
		if keep == nil || keep(p) {
			out = append(out, p)
		}
	}
	slices.SortFunc(out[start:], comparePairs)
	return out
}
