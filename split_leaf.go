package xtree

import "github.com/sirupsen/logrus"

// splitLeaf resolves an over-full leaf. The first overflow at a depth during an
// insertion is handled by forced reinsertion; otherwise the points are split
// into two new leaves that replace n in its parent. An over-full root leaf is
// first pushed one level down so the root object survives.
func (t *XTree) splitLeaf(n *Node) {
	if n.IsRoot() {
		n = t.growRoot()
	}
	if t.takeReinsertion(n.Depth()) && t.forceReinsert(n) {
		return
	}

	axis, cuts := t.chooseLeafAxis(n)
	cut, score := cuts.best()

	one := t.newSplitNode(n, axis)
	two := t.newSplitNode(n, axis)
	for k, i := range cuts.order {
		dst := two
		if k < cut {
			dst = one
		}
		dst.appendPoint(n.ids[i], n.PointCoords(i))
	}
	t.assertf(len(one.ids) >= n.minLeafSize && len(two.ids) >= n.minLeafSize,
		"xtree: leaf split left %d and %d points, minimum is %d",
		len(one.ids), len(two.ids), n.minLeafSize)
	t.assertf(len(one.ids) <= one.maxLeafSize && len(two.ids) <= two.maxLeafSize,
		"xtree: leaf split left %d and %d points, capacity is %d",
		len(one.ids), len(two.ids), one.maxLeafSize)

	t.log.WithFields(logrus.Fields{
		"depth":   n.Depth(),
		"axis":    axis,
		"cut":     cut,
		"points":  len(n.ids),
		"overlap": score.overlap,
	}).Debug("xtree: split leaf")

	t.replaceWithPair(n, one, two)
}

// chooseLeafAxis scores every axis of a leaf and returns the one with the
// smallest margin sum. The lowest axis wins ties.
func (t *XTree) chooseLeafAxis(n *Node) (int, axisCuts) {
	boxes := make([]Box, len(n.ids))
	for i := range n.ids {
		boxes[i] = PointBox(n.PointCoords(i))
	}

	bestAxis := 0
	var best axisCuts
	for j := 0; j < t.dims; j++ {
		a := scoreCuts(boxes, func(i int) float64 { return boxes[i].lo[j] }, n.minLeafSize, t.dims)
		if j == 0 || a.marginSum < best.marginSum {
			bestAxis, best = j, a
		}
	}
	return bestAxis, best
}

// newSplitNode creates an empty sibling for a node being split along axis. It
// has the configured capacities and n's split history plus axis.
func (t *XTree) newSplitNode(n *Node, axis int) *Node {
	s := newNode(t, n.parent)
	s.splitHistory = n.splitHistory.record(axis)
	return s
}

// replaceWithPair puts one in n's slot of the parent and appends two, then
// soft-deletes n. The parent is split in turn if it now overflows.
func (t *XTree) replaceWithPair(n, one, two *Node) {
	parent := n.parent
	i := parent.childIndex(n)
	t.assertf(i >= 0, "xtree: split node is not a child of its parent")

	one.parent = parent
	parent.children[i] = one
	parent.appendChild(two)
	n.detach()

	t.updateStatistic(one)
	t.updateStatistic(two)

	if len(parent.children) > parent.maxNumChildren {
		t.splitNonLeaf(parent)
	}
}
