package xtree

import (
	"gonum.org/v1/gonum/mat"
)

// Node is a node of an X-tree. A node is either a leaf holding points or an
// internal node holding child nodes; the root is a leaf while the tree is
// small.
//
// Leaf points are stored column-wise: column j of the local dataset holds the
// coordinates of the point whose identifier is ids[j].
type Node struct {
	tree     *XTree
	parent   *Node // non-owning
	children []*Node
	bound    Box

	ids     []int
	dataset *mat.Dense // dims × capacity, nil for internal nodes

	minLeafSize    int
	maxLeafSize    int
	minNumChildren int
	maxNumChildren int

	splitHistory SplitHistory
}

// newNode creates an empty leaf with the tree's configured capacities.
func newNode(t *XTree, parent *Node) *Node {
	return &Node{
		tree:           t,
		parent:         parent,
		bound:          EmptyBox(t.dims),
		minLeafSize:    t.cfg.MinLeafSize,
		maxLeafSize:    t.cfg.MaxLeafSize,
		minNumChildren: t.cfg.MinNumChildren,
		maxNumChildren: t.cfg.MaxNumChildren,
		splitHistory:   newSplitHistory(t.dims),
	}
}

func (n *Node) Bound() Box                  { return n.bound }
func (n *Node) Parent() *Node               { return n.parent }
func (n *Node) Children() []*Node           { return n.children }
func (n *Node) Child(i int) *Node           { return n.children[i] }
func (n *Node) NumChildren() int            { return len(n.children) }
func (n *Node) NumPoints() int              { return len(n.ids) }
func (n *Node) IsLeaf() bool                { return len(n.children) == 0 }
func (n *Node) IsRoot() bool                { return n.parent == nil }
func (n *Node) MinLeafSize() int            { return n.minLeafSize }
func (n *Node) MaxLeafSize() int            { return n.maxLeafSize }
func (n *Node) MinNumChildren() int         { return n.minNumChildren }
func (n *Node) MaxNumChildren() int         { return n.maxNumChildren }
func (n *Node) SplitHistory() SplitHistory  { return n.splitHistory }
func (n *Node) PointID(i int) int           { return n.ids[i] }
func (n *Node) PointCoords(i int) []float64 { return mat.Col(nil, i, n.dataset) }

// Point returns the identifier and a copy of the coordinates of the i-th
// point of a leaf.
func (n *Node) Point(i int) (int, []float64) {
	return n.ids[i], n.PointCoords(i)
}

// IsSupernode reports whether the node's capacity was doubled after a failed
// split.
func (n *Node) IsSupernode() bool {
	return n.maxNumChildren > n.tree.cfg.MaxNumChildren
}

// Depth returns the distance from the root.
func (n *Node) Depth() int {
	d := 0
	for p := n.parent; p != nil; p = p.parent {
		d++
	}
	return d
}

// count returns the number of entries, children or points, held by the node.
func (n *Node) count() int {
	if n.IsLeaf() {
		return len(n.ids)
	}
	return len(n.children)
}

// appendPoint stores a point in the leaf and expands its bound.
func (n *Node) appendPoint(id int, coords []float64) {
	n.ensurePointStorage(len(n.ids) + 1)
	n.dataset.SetCol(len(n.ids), coords)
	n.ids = append(n.ids, id)
	n.bound.Expand(coords)
}

// ensurePointStorage makes room for at least size columns in the local
// dataset. The dataset starts with room for one overflow point.
func (n *Node) ensurePointStorage(size int) {
	if n.dataset == nil {
		c := n.maxLeafSize + 1
		if size > c {
			c = size
		}
		n.dataset = mat.NewDense(n.tree.dims, c, nil)
		return
	}
	if _, c := n.dataset.Dims(); size > c {
		grow := c
		if size > 2*c {
			grow = size - c
		}
		n.dataset = n.dataset.Grow(0, grow).(*mat.Dense)
	}
}

// retainPoints keeps the points for which keep returns true, preserving their
// order, and returns the identifiers and coordinates of the dropped points.
func (n *Node) retainPoints(keep func(i int) bool) (ids []int, coords [][]float64) {
	w := 0
	for i := range n.ids {
		if !keep(i) {
			ids = append(ids, n.ids[i])
			coords = append(coords, n.PointCoords(i))
			continue
		}
		if w != i {
			n.dataset.SetCol(w, n.PointCoords(i))
			n.ids[w] = n.ids[i]
		}
		w++
	}
	n.ids = n.ids[:w]
	return ids, coords
}

// appendChild adds c as the last child and expands the bound.
func (n *Node) appendChild(c *Node) {
	c.parent = n
	n.children = append(n.children, c)
	n.bound.ExpandBox(c.bound)
}

// childIndex returns the position of c among the children, or -1.
func (n *Node) childIndex(c *Node) int {
	for i, child := range n.children {
		if child == c {
			return i
		}
	}
	return -1
}

// recomputeBound sets the bound to the exact union of the node's contents.
func (n *Node) recomputeBound() {
	b := EmptyBox(n.tree.dims)
	if n.IsLeaf() {
		for i := range n.ids {
			b.Expand(n.PointCoords(i))
		}
	} else {
		for _, c := range n.children {
			b.ExpandBox(c.bound)
		}
	}
	n.bound = b
}

// condenseBounds recomputes the bounds from n up to the root.
func (n *Node) condenseBounds() {
	for p := n; p != nil; p = p.parent {
		p.recomputeBound()
	}
}

// growCapacity turns the node into a supernode, or a larger one: the child
// and point limits double in place and the backing storage grows with them.
func (n *Node) growCapacity() {
	n.maxNumChildren *= 2
	n.maxLeafSize *= 2
	if cap(n.children) < n.maxNumChildren+1 {
		children := make([]*Node, len(n.children), n.maxNumChildren+1)
		copy(children, n.children)
		n.children = children
	}
	if n.dataset != nil {
		n.ensurePointStorage(n.maxLeafSize + 1)
	}
}

// nullifyData drops the leaf payload; used when a node turns internal.
func (n *Node) nullifyData() {
	n.ids = nil
	n.dataset = nil
}

// detach soft-deletes a node whose contents were handed to other nodes: no
// owning or back references remain.
func (n *Node) detach() {
	n.parent = nil
	n.children = nil
	n.nullifyData()
}

// walk visits n and its descendants depth-first, parents before children.
func (n *Node) walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.children {
		c.walk(fn)
	}
}
