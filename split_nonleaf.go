package xtree

import (
	"sort"

	"github.com/sirupsen/logrus"
)

// nonLeafSplit is a chosen partition of an internal node's children.
type nonLeafSplit struct {
	axis        int
	hi          bool // ordered by upper rather than lower bound
	cut         int
	order       []int
	score       cutScore
	topological bool
}

// splitNonLeaf resolves an internal node holding more children than its
// capacity. It returns false when no split keeps the overlap of the halves
// under Config.MaxOverlap; the node then becomes a supernode with doubled
// capacity instead.
func (t *XTree) splitNonLeaf(n *Node) bool {
	s, ok := t.chooseNonLeafSplit(n)
	if !ok {
		n.growCapacity()
		t.log.WithFields(logrus.Fields{
			"depth":    n.Depth(),
			"children": len(n.children),
			"capacity": n.maxNumChildren,
		}).Debug("xtree: supernode")
		return false
	}

	if n.IsRoot() {
		n = t.growRoot()
	}

	one := t.newSplitNode(n, s.axis)
	two := t.newSplitNode(n, s.axis)
	for k, i := range s.order {
		dst := two
		if k < s.cut {
			dst = one
		}
		dst.appendChild(n.children[i])
	}
	fitCapacity(one)
	fitCapacity(two)
	t.assertf(len(one.children) >= n.minNumChildren && len(two.children) >= n.minNumChildren,
		"xtree: split left %d and %d children, minimum is %d",
		len(one.children), len(two.children), n.minNumChildren)
	t.assertf(len(one.children) <= one.maxNumChildren && len(two.children) <= two.maxNumChildren,
		"xtree: split left %d and %d children, capacity is %d and %d",
		len(one.children), len(two.children), one.maxNumChildren, two.maxNumChildren)

	t.log.WithFields(logrus.Fields{
		"depth":       n.Depth(),
		"axis":        s.axis,
		"hi":          s.hi,
		"cut":         s.cut,
		"children":    len(n.children),
		"topological": s.topological,
	}).Debug("xtree: split node")

	t.replaceWithPair(n, one, two)
	return true
}

// fitCapacity doubles the capacity of a freshly built internal node until it
// holds its children. Only halves of a split supernode need it.
func fitCapacity(n *Node) {
	for len(n.children) > n.maxNumChildren {
		n.growCapacity()
	}
}

// chooseNonLeafSplit scores every axis twice, once with the children ordered
// by their lower bounds and once by their upper bounds. The ordering with the
// smallest margin sum provides the split when its overlap ratio is small
// enough; otherwise the best cut on the topological axis is tried.
func (t *XTree) chooseNonLeafSplit(n *Node) (nonLeafSplit, bool) {
	boxes := make([]Box, len(n.children))
	for i, c := range n.children {
		boxes[i] = c.bound
	}
	topo := topologicalAxis(n, t.dims)

	var best, bestTopo nonLeafSplit
	var bestMargin float64
	haveBest, haveTopo := false, false
	for _, hi := range []bool{false, true} {
		for j := 0; j < t.dims; j++ {
			key := func(i int) float64 { return boxes[i].lo[j] }
			if hi {
				key = func(i int) float64 { return boxes[i].hi[j] }
			}
			a := scoreCuts(boxes, key, n.minNumChildren, t.dims)
			cut, score := a.best()
			cand := nonLeafSplit{axis: j, hi: hi, cut: cut, order: a.order, score: score}

			if !haveBest || a.marginSum < bestMargin {
				best, bestMargin, haveBest = cand, a.marginSum, true
			}
			if j == topo && (!haveTopo || score.less(bestTopo.score)) {
				bestTopo, haveTopo = cand, true
			}
		}
	}

	if best.score.overlapRatio() < t.cfg.MaxOverlap {
		return best, true
	}
	if haveTopo && bestTopo.score.overlapRatio() < t.cfg.MaxOverlap {
		bestTopo.topological = true
		return bestTopo, true
	}
	return nonLeafSplit{}, false
}

// topologicalAxis returns the first axis after the median last split axis of
// n's children, wrapping around, that every child has already been split on.
// It returns -1 when there is none.
func topologicalAxis(n *Node, dims int) int {
	last := make([]int, len(n.children))
	for i, c := range n.children {
		last[i] = c.splitHistory.lastDimension
	}
	sort.Ints(last)
	median := last[len(last)/2]

	for s := 1; s <= dims; s++ {
		axis := (median + s) % dims
		shared := true
		for _, c := range n.children {
			if !c.splitHistory.used[axis] {
				shared = false
				break
			}
		}
		if shared {
			return axis
		}
	}
	return -1
}
