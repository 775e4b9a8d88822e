// Package quadtree implements a region quadtree over axis-aligned bounding
// boxes for broad-phase queries.
//
// Items are stored by key. The tree knows nothing about what a key refers to;
// callers keep their own records and use the key to find them again.
//
// An item only moves down into a child when the child's rectangle fully
// contains it. Items straddling a split stay at the parent, so a parent list
// can be wider than strictly needed but a query never misses an item.
package quadtree

import "github.com/jakecoffman/cp"

const (
	DefaultCapacity = 6
	DefaultMaxDepth = 6
)

// Item is a keyed bounding box stored in the tree.
type Item[K comparable] struct {
	Key    K
	Bounds cp.BB
}

// Option configures a Tree at construction time.
type Option func(*settings)

type settings struct {
	capacity int
	maxDepth int
}

// WithCapacity sets how many items a node holds before it tries to split.
func WithCapacity(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.capacity = n
		}
	}
}

// WithMaxDepth sets the deepest level a node may split to. The root is depth 0.
func WithMaxDepth(d int) Option {
	return func(s *settings) {
		if d >= 0 {
			s.maxDepth = d
		}
	}
}

// Tree is a quadtree keyed by K. The zero key is reserved and never stored.
type Tree[K comparable] struct {
	root  *node[K]
	cfg   settings
	count int
}

type node[K comparable] struct {
	rect     cp.BB
	depth    int
	items    []Item[K]
	children [4]*node[K]
	divided  bool
}

// New creates an empty tree rooted at bounds.
func New[K comparable](bounds cp.BB, opts ...Option) *Tree[K] {
	cfg := settings{capacity: DefaultCapacity, maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &Tree[K]{
		root: &node[K]{rect: bounds},
		cfg:  cfg,
	}
}

// Bounds returns the root rectangle.
func (t *Tree[K]) Bounds() cp.BB {
	if t == nil || t.root == nil {
		return cp.BB{}
	}
	return t.root.rect
}

// Len returns the number of stored items.
func (t *Tree[K]) Len() int {
	if t == nil {
		return 0
	}
	return t.count
}

// Capacity returns the per-node split threshold.
func (t *Tree[K]) Capacity() int {
	if t == nil {
		return 0
	}
	return t.cfg.capacity
}

// MaxDepth returns the deepest level a node may reach.
func (t *Tree[K]) MaxDepth() int {
	if t == nil {
		return 0
	}
	return t.cfg.maxDepth
}

// Insert stores item. An item with the zero key is ignored. Inserting a key
// that is already present stores it twice; use Update to move an item.
func (t *Tree[K]) Insert(item Item[K]) {
	var zero K
	if t == nil || t.root == nil || item.Key == zero {
		return
	}
	t.root.insert(item, t.cfg)
	t.count++
}

// Remove deletes the item with key. It reports false when key is not stored.
func (t *Tree[K]) Remove(key K) bool {
	var zero K
	if t == nil || t.root == nil || key == zero {
		return false
	}
	if !t.root.remove(key) {
		return false
	}
	t.count--
	return true
}

// Update removes item.Key and inserts item again when insert is true.
func (t *Tree[K]) Update(item Item[K], insert bool) {
	if t == nil {
		return
	}
	t.Remove(item.Key)
	if insert {
		t.Insert(item)
	}
}

// Query appends every item whose bounds touch rect to out and returns it.
func (t *Tree[K]) Query(rect cp.BB, out []Item[K]) []Item[K] {
	if t == nil || t.root == nil {
		return out
	}
	return t.root.query(rect, out)
}

// Clear drops every item and collapses the tree to a single root node.
func (t *Tree[K]) Clear() {
	if t == nil || t.root == nil {
		return
	}
	t.Reset(t.root.rect)
}

// Reset drops every item and re-roots the tree at bounds.
func (t *Tree[K]) Reset(bounds cp.BB) {
	if t == nil {
		return
	}
	t.root = &node[K]{rect: bounds}
	t.count = 0
}

// Walk visits every node depth-first, parent before children.
func (t *Tree[K]) Walk(fn func(rect cp.BB, depth, items int)) {
	if t == nil || t.root == nil || fn == nil {
		return
	}
	t.root.walk(fn)
}

func (n *node[K]) insert(item Item[K], cfg settings) {
	if n.divided {
		if child := n.childFor(item.Bounds); child != nil {
			child.insert(item, cfg)
			return
		}
		n.items = append(n.items, item)
		return
	}

	n.items = append(n.items, item)
	if len(n.items) > cfg.capacity && n.depth < cfg.maxDepth {
		n.subdivide(cfg)
	}
}

func (n *node[K]) subdivide(cfg settings) {
	midX := (n.rect.L + n.rect.R) / 2
	midY := (n.rect.B + n.rect.T) / 2
	quads := [4]cp.BB{
		{L: n.rect.L, B: n.rect.B, R: midX, T: midY},
		{L: midX, B: n.rect.B, R: n.rect.R, T: midY},
		{L: n.rect.L, B: midY, R: midX, T: n.rect.T},
		{L: midX, B: midY, R: n.rect.R, T: n.rect.T},
	}
	for i, q := range quads {
		n.children[i] = &node[K]{rect: q, depth: n.depth + 1}
	}
	n.divided = true

	kept := n.items[:0]
	for _, item := range n.items {
		if child := n.childFor(item.Bounds); child != nil {
			child.insert(item, cfg)
			continue
		}
		kept = append(kept, item)
	}
	clear(n.items[len(kept):])
	n.items = kept
}

func (n *node[K]) childFor(bb cp.BB) *node[K] {
	for _, child := range n.children {
		if child.rect.Contains(bb) {
			return child
		}
	}
	return nil
}

func (n *node[K]) remove(key K) bool {
	for i := range n.items {
		if n.items[i].Key != key {
			continue
		}
		last := len(n.items) - 1
		n.items[i] = n.items[last]
		n.items[last] = Item[K]{}
		n.items = n.items[:last]
		return true
	}
	if !n.divided {
		return false
	}
	for _, child := range n.children {
		if child.remove(key) {
			return true
		}
	}
	return false
}

func (n *node[K]) query(rect cp.BB, out []Item[K]) []Item[K] {
	for _, item := range n.items {
		if item.Bounds.Intersects(rect) {
			out = append(out, item)
		}
	}
	if !n.divided {
		return out
	}
	for _, child := range n.children {
		if child.rect.Intersects(rect) {
			out = child.query(rect, out)
		}
	}
	return out
}

func (n *node[K]) walk(fn func(rect cp.BB, depth, items int)) {
	fn(n.rect, n.depth, len(n.items))
	if !n.divided {
		return
	}
	for _, child := range n.children {
		child.walk(fn)
	}
}
