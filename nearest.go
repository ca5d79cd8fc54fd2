package xtree

import (
	"github.com/cockroachdb/errors"
	"github.com/tidwall/tinyqueue"
)

// Neighbor is a point returned by a nearest-neighbor search.
type Neighbor struct {
	ID       int
	Coords   []float64
	Distance float64
}

// queueItem is either a node, keyed by a lower bound on the distance to
// anything under it, or a point, keyed by its distance.
type queueItem struct {
	node   *Node
	id     int
	coords []float64
	dist   float64
}

func (item *queueItem) Less(b tinyqueue.Item) bool {
	return item.dist < b.(*queueItem).dist
}

// PrioritySearch visits points in order of increasing distance from q under
// the tree's metric, calling fn for each. Return Stop from fn to end the
// search; any other error ends it and is returned.
func (t *XTree) PrioritySearch(q []float64, fn func(id int, coords []float64, dist float64) error) error {
	if len(q) != t.dims {
		return errors.Newf("xtree: query has %d coordinates, tree has %d dimensions", len(q), t.dims)
	}
	if err := t.prioritySearch(q, fn); err != nil && !errors.Is(err, Stop) {
		return err
	}
	return nil
}

func (t *XTree) prioritySearch(q []float64, fn func(int, []float64, float64) error) error {
	m := t.cfg.Metric
	queue := tinyqueue.New(nil)
	queue.Push(&queueItem{node: t.root, dist: minDistToBox(m, q, t.root.bound)})
	for queue.Len() > 0 {
		item := queue.Pop().(*queueItem)
		n := item.node
		if n == nil {
			if err := fn(item.id, item.coords, item.dist); err != nil {
				return err
			}
			continue
		}
		if n.IsLeaf() {
			for i, id := range n.ids {
				p := n.PointCoords(i)
				queue.Push(&queueItem{id: id, coords: p, dist: m.Distance(q, p)})
			}
			continue
		}
		for _, c := range n.children {
			queue.Push(&queueItem{node: c, dist: minDistToBox(m, q, c.bound)})
		}
	}
	return nil
}

// NearestNeighbors returns the k points closest to q, nearest first. Fewer are
// returned when the tree holds fewer than k points.
func (t *XTree) NearestNeighbors(q []float64, k int) ([]Neighbor, error) {
	if k < 1 {
		return nil, errors.Newf("xtree: k must be >= 1, got %d", k)
	}
	if len(q) != t.dims {
		return nil, errors.Newf("xtree: query has %d coordinates, tree has %d dimensions", len(q), t.dims)
	}
	return t.nearest(q, k), nil
}

func (t *XTree) nearest(q []float64, k int) []Neighbor {
	out := make([]Neighbor, 0, min(k, t.size))
	_ = t.prioritySearch(q, func(id int, coords []float64, dist float64) error {
		out = append(out, Neighbor{ID: id, Coords: coords, Distance: dist})
		if len(out) == k {
			return Stop
		}
		return nil
	})
	return out
}
