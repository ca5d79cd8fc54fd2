package xtree

import "github.com/cockroachdb/errors"

// Stop can be returned by a search callback to end the search early. The
// search then returns nil.
var Stop = errors.New("xtree: stop search")

// RangeSearch calls fn with the identifier and coordinates of every point
// inside the closed box b, in tree order. An error returned by fn ends the
// search and is returned, except for Stop.
func (t *XTree) RangeSearch(b Box, fn func(id int, coords []float64) error) error {
	if b.Dims() != t.dims {
		return errors.Newf("xtree: query box has %d dimensions, tree has %d", b.Dims(), t.dims)
	}
	if err := t.rangeSearch(t.root, b, fn); err != nil && !errors.Is(err, Stop) {
		return err
	}
	return nil
}

func (t *XTree) rangeSearch(n *Node, b Box, fn func(int, []float64) error) error {
	if n.bound.Empty() || !n.bound.Intersects(b) {
		return nil
	}
	if n.IsLeaf() {
		for i, id := range n.ids {
			p := n.PointCoords(i)
			if !b.Contains(p) {
				continue
			}
			if err := fn(id, p); err != nil {
				return err
			}
		}
		return nil
	}
	for _, c := range n.children {
		if err := t.rangeSearch(c, b, fn); err != nil {
			return err
		}
	}
	return nil
}

// Range returns the identifiers of all points inside b.
func (t *XTree) Range(b Box) ([]int, error) {
	var ids []int
	err := t.RangeSearch(b, func(id int, _ []float64) error {
		ids = append(ids, id)
		return nil
	})
	return ids, err
}
