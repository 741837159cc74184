package grid

import (
	"fmt"
	"math"
)

// Tree is a static-depth quadtree over axis-aligned bounding boxes.
// The node hierarchy is built once at construction and never changes
// shape afterwards; only the leaf object sets and the back-reference
// index mutate. A Tree is not safe for concurrent writers.
type Tree struct {
	root   *nodeT
	depth  int
	leaves int
	refs   map[string][]*nodeT // object id -> leaves the id was filed into
	ox, oy float64             // accumulated window origin
	scale  float64             // accumulated window scale, 1 means identity
}

// nodeT is one cell of the tree. A node with a nil children array is a
// leaf; objects are only ever stored on leaves.
type nodeT struct {
	minX, minY float64
	maxX, maxY float64
	children   *[4]nodeT
	objects    []string
}

// New creates a tree covering the given area, fully subdivided to the
// given depth. Depth 1 is a single leaf. The area bounds and the depth
// are all mandatory; a NaN bound or a depth below 1 is a construction
// error. Every other operation on the returned tree is infallible.
func New(minX, minY, maxX, maxY float64, depth int) (*Tree, error) {
	if depth < 1 {
		return nil, fmt.Errorf("invalid depth '%d'", depth)
	}
	if math.IsNaN(minX) || math.IsNaN(minY) || math.IsNaN(maxX) || math.IsNaN(maxY) {
		return nil, fmt.Errorf("invalid bounds '%v,%v,%v,%v'", minX, minY, maxX, maxY)
	}
	tr := &Tree{
		root:   &nodeT{minX: minX, minY: minY, maxX: maxX, maxY: maxY},
		depth:  depth,
		leaves: 1,
		refs:   make(map[string][]*nodeT),
		scale:  1,
	}
	tr.root.split(depth)
	for i := 1; i < depth; i++ {
		tr.leaves *= 4
	}
	return tr, nil
}

// split subdivides the node into four equal quadrants down to the given
// depth. Quadrant order is fixed: top-left, top-right, bottom-left,
// bottom-right.
func (n *nodeT) split(depth int) {
	if depth == 1 {
		return
	}
	midX := (n.maxX-n.minX)/2 + n.minX
	midY := (n.maxY-n.minY)/2 + n.minY
	n.children = &[4]nodeT{
		{minX: n.minX, minY: midY, maxX: midX, maxY: n.maxY},
		{minX: midX, minY: midY, maxX: n.maxX, maxY: n.maxY},
		{minX: n.minX, minY: n.minY, maxX: midX, maxY: midY},
		{minX: midX, minY: n.minY, maxX: n.maxX, maxY: midY},
	}
	for i := range n.children {
		n.children[i].split(depth - 1)
	}
}

// window maps a coordinate through the pan/zoom transform. The transform
// only applies while the accumulated scale differs from 1.
func (tr *Tree) window(x, y float64) (float64, float64) {
	if tr.scale != 1 {
		return tr.ox + x/tr.scale, tr.oy + y/tr.scale
	}
	return x, y
}

// Add files an object box into every leaf it overlaps and records those
// leaves in the back-reference index. Corners may be supplied in any
// order. Ids are not checked for uniqueness; re-adding an id files
// additional references rather than replacing the old ones.
func (tr *Tree) Add(id string, minX, minY, maxX, maxY float64) {
	minX, minY = tr.window(minX, minY)
	maxX, maxY = tr.window(maxX, maxY)
	if maxX < minX {
		minX, maxX = maxX, minX
	}
	if maxY < minY {
		minY, maxY = maxY, minY
	}
	tr.add(tr.root, id, minX, minY, maxX, maxY)
}

func (tr *Tree) add(n *nodeT, id string, minX, minY, maxX, maxY float64) {
	// Inclusive overlap test: a box touching the cell boundary is filed.
	if minX > n.maxX || maxX < n.minX || minY > n.maxY || maxY < n.minY {
		return
	}
	if n.children == nil {
		n.objects = append(n.objects, id)
		tr.refs[id] = append(tr.refs[id], n)
		return
	}
	for i := range n.children {
		tr.add(&n.children[i], id, minX, minY, maxX, maxY)
	}
}

// Delete removes an id from every leaf recorded in the back-reference
// index and drops the index entry. Unknown ids are a no-op, so deleting
// twice is safe.
func (tr *Tree) Delete(id string) {
	leaves, ok := tr.refs[id]
	if !ok {
		return
	}
	for _, leaf := range leaves {
		for i := 0; i < len(leaf.objects); {
			if leaf.objects[i] == id {
				leaf.objects[i] = leaf.objects[len(leaf.objects)-1]
				leaf.objects = leaf.objects[:len(leaf.objects)-1]
			} else {
				i++
			}
		}
	}
	delete(tr.refs, id)
}

// Search finds all objects filed into leaves overlapping the query box
// and passes each id to the iterator exactly once, in no particular
// order. Returning false from the iterator stops the search. Results are
// cell-level candidates: every returned object overlaps a matching cell,
// not necessarily the query box itself.
//
// The query box goes through the window transform like Add, but its
// corners are NOT normalized, and the overlap test is strict: a query
// box that only touches a cell boundary does not match that cell. This
// differs from the inclusive test used by Add.
func (tr *Tree) Search(minX, minY, maxX, maxY float64, iterator func(id string) bool) bool {
	minX, minY = tr.window(minX, minY)
	maxX, maxY = tr.window(maxX, maxY)
	idm := make(map[string]bool)
	return tr.search(tr.root, minX, minY, maxX, maxY, idm, iterator)
}

func (tr *Tree) search(n *nodeT, minX, minY, maxX, maxY float64, idm map[string]bool, iterator func(id string) bool) bool {
	if minX >= n.maxX || maxX <= n.minX || minY >= n.maxY || maxY <= n.minY {
		return true
	}
	if n.children == nil {
		for _, id := range n.objects {
			if idm[id] {
				continue
			}
			idm[id] = true
			if !iterator(id) {
				return false
			}
		}
		return true
	}
	for i := range n.children {
		if !tr.search(&n.children[i], minX, minY, maxX, maxY, idm, iterator) {
			return false
		}
	}
	return true
}

// SetWindow composes a pan/zoom onto the current window. The shift is
// relative to the current view: sx and sy are divided by the current
// scale before being accumulated, and the scales multiply.
func (tr *Tree) SetWindow(sx, sy, scale float64) {
	tr.ox += sx / tr.scale
	tr.oy += sy / tr.scale
	tr.scale *= scale
}

// ResetWindow discards all accumulated pan/zoom.
func (tr *Tree) ResetWindow() {
	tr.ox, tr.oy, tr.scale = 0, 0, 1
}

// Window returns the accumulated origin and scale.
func (tr *Tree) Window() (ox, oy, scale float64) {
	return tr.ox, tr.oy, tr.scale
}

// Count returns the number of distinct ids currently filed in the tree.
func (tr *Tree) Count() int {
	return len(tr.refs)
}

// Refs returns the number of leaf references held for an id, or zero if
// the id is not filed.
func (tr *Tree) Refs(id string) int {
	return len(tr.refs[id])
}

// RefTotal returns the total number of leaf references across all ids.
func (tr *Tree) RefTotal() int {
	var total int
	for _, leaves := range tr.refs {
		total += len(leaves)
	}
	return total
}

// Bounds returns the area the tree was constructed over.
func (tr *Tree) Bounds() (minX, minY, maxX, maxY float64) {
	return tr.root.minX, tr.root.minY, tr.root.maxX, tr.root.maxY
}

// Depth returns the construction depth.
func (tr *Tree) Depth() int {
	return tr.depth
}

// Leaves returns the number of leaf cells, 4^(depth-1).
func (tr *Tree) Leaves() int {
	return tr.leaves
}

// RemoveAll removes all objects from the tree. The window is unaffected.
func (tr *Tree) RemoveAll() {
	root := &nodeT{minX: tr.root.minX, minY: tr.root.minY, maxX: tr.root.maxX, maxY: tr.root.maxY}
	root.split(tr.depth)
	tr.root = root
	tr.refs = make(map[string][]*nodeT)
}
