package xtree

import "github.com/sirupsen/logrus"

// Delete removes one point with the given identifier and coordinates. It
// reports whether such a point was found.
//
// Nodes left with fewer entries than their minimum are removed and their
// points inserted again from the root. The root object is kept; when it is
// left with a single child it absorbs that child and the tree gets shorter.
func (t *XTree) Delete(id int, coords []float64) bool {
	if len(coords) != t.dims {
		return false
	}
	leaf, i := t.findPoint(t.root, id, coords)
	if leaf == nil {
		return false
	}
	leaf.retainPoints(func(j int) bool { return j != i })
	t.size--
	t.condenseTree(leaf)
	return true
}

// findPoint returns the leaf and slot holding the point, following only the
// subtrees whose bounds contain it.
func (t *XTree) findPoint(n *Node, id int, coords []float64) (*Node, int) {
	if !n.bound.Contains(coords) {
		return nil, -1
	}
	if n.IsLeaf() {
		for i, pid := range n.ids {
			if pid == id && equalCoords(n.PointCoords(i), coords) {
				return n, i
			}
		}
		return nil, -1
	}
	for _, c := range n.children {
		if leaf, i := t.findPoint(c, id, coords); leaf != nil {
			return leaf, i
		}
	}
	return nil, -1
}

func equalCoords(a, b []float64) bool {
	for k := range a {
		if a[k] != b[k] {
			return false
		}
	}
	return true
}

type orphan struct {
	id     int
	coords []float64
}

// condenseTree walks from a leaf that lost a point up to the root, removing
// underfull nodes and tightening bounds, then reinserts the orphaned points.
func (t *XTree) condenseTree(leaf *Node) {
	var orphans []orphan
	removed := 0
	for n := leaf; !n.IsRoot(); {
		parent := n.parent
		minEntries := n.minNumChildren
		if n.IsLeaf() {
			minEntries = n.minLeafSize
		}
		if n.count() < minEntries {
			i := parent.childIndex(n)
			parent.children = append(parent.children[:i], parent.children[i+1:]...)
			orphans = collectPoints(n, orphans)
			var dead []*Node
			n.walk(func(d *Node) { dead = append(dead, d) })
			for _, d := range dead {
				d.detach()
			}
			removed++
		} else {
			n.recomputeBound()
		}
		n = parent
	}
	t.root.recomputeBound()
	t.shortenRoot()

	if removed > 0 {
		t.log.WithFields(logrus.Fields{
			"nodes":  removed,
			"points": len(orphans),
		}).Debug("xtree: condensed tree")
	}
	for _, o := range orphans {
		t.resetReinsertion()
		t.insertPoint(o.id, o.coords)
	}
}

// collectPoints appends every point stored under n.
func collectPoints(n *Node, dst []orphan) []orphan {
	n.walk(func(d *Node) {
		for i := range d.ids {
			dst = append(dst, orphan{id: d.ids[i], coords: d.PointCoords(i)})
		}
	})
	return dst
}

// shortenRoot pulls the contents of a single child into the root until the
// root has no child or at least two.
func (t *XTree) shortenRoot() {
	root := t.root
	for len(root.children) == 1 {
		c := root.children[0]
		root.children = c.children
		root.ids = c.ids
		root.dataset = c.dataset
		root.bound = c.bound
		root.maxLeafSize = c.maxLeafSize
		root.maxNumChildren = c.maxNumChildren
		root.splitHistory = c.splitHistory
		for _, gc := range root.children {
			gc.parent = root
		}
		c.parent, c.children = nil, nil
		c.nullifyData()
	}
	if root.IsLeaf() && len(root.ids) == 0 {
		root.nullifyData()
		root.bound = EmptyBox(t.dims)
	}
}
