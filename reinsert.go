package xtree

import (
	"sort"

	"github.com/sirupsen/logrus"
)

// resetReinsertion makes forced reinsertion available again at every depth.
// It runs at the start of each top-level insertion.
func (t *XTree) resetReinsertion() {
	for d := range t.reinsertEligible {
		t.reinsertEligible[d] = true
	}
}

// takeReinsertion reports whether reinsertion is still available at depth and
// marks it used for the rest of the current insertion.
func (t *XTree) takeReinsertion(depth int) bool {
	for len(t.reinsertEligible) <= depth {
		t.reinsertEligible = append(t.reinsertEligible, true)
	}
	ok := t.reinsertEligible[depth]
	t.reinsertEligible[depth] = false
	return ok
}

// forceReinsert removes the points of an over-full leaf that lie farthest from
// the centroid of its bound and inserts them again from the root, closest
// first. It returns false without touching the leaf when the reinsertion
// count rounds down to zero.
func (t *XTree) forceReinsert(n *Node) bool {
	p := int(t.cfg.ReinsertFraction * float64(n.maxLeafSize))
	if p == 0 {
		return false
	}

	centroid := n.bound.Centroid()
	dist := make([]float64, len(n.ids))
	order := make([]int, len(n.ids))
	for i := range n.ids {
		dist[i] = t.cfg.Metric.Distance(centroid, n.PointCoords(i))
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return dist[order[a]] > dist[order[b]]
	})

	type entry struct {
		id     int
		coords []float64
	}
	removed := make([]entry, p)
	drop := make([]bool, len(n.ids))
	for k := 0; k < p; k++ {
		i := order[k]
		removed[p-1-k] = entry{id: n.ids[i], coords: n.PointCoords(i)}
		drop[i] = true
	}
	n.retainPoints(func(i int) bool { return !drop[i] })
	n.condenseBounds()

	t.log.WithFields(logrus.Fields{
		"depth":  n.Depth(),
		"points": p,
	}).Debug("xtree: forced reinsertion")

	for _, e := range removed {
		t.insertPoint(e.id, e.coords)
	}
	return true
}
