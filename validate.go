package xtree

import (
	"github.com/cockroachdb/errors"
)

// Validate checks the structural invariants of the tree and returns an
// assertion failure describing the first violation found:
//
//   - every bound is the exact union of the node's points or child bounds
//   - a node holds either points or children, never both
//   - every non-root node holds at least its minimum and at most its
//     capacity of entries
//   - parent links match the child lists
//   - all leaves are at the same depth
//   - the number of stored points matches Len
func (t *XTree) Validate() error {
	if t.root.parent != nil {
		return errors.AssertionFailedf("xtree: root has a parent")
	}
	points := 0
	leafDepth := -1
	var check func(n *Node, depth int) error
	check = func(n *Node, depth int) error {
		if len(n.children) > 0 && len(n.ids) > 0 {
			return errors.AssertionFailedf("xtree: node at depth %d has both %d children and %d points",
				depth, len(n.children), len(n.ids))
		}

		want := EmptyBox(t.dims)
		if n.IsLeaf() {
			for i := range n.ids {
				want.Expand(n.PointCoords(i))
			}
		} else {
			for _, c := range n.children {
				want.ExpandBox(c.bound)
			}
		}
		if !n.bound.Equal(want) && !(n.bound.Empty() && want.Empty()) {
			return errors.AssertionFailedf("xtree: node at depth %d has bound %s, contents span %s",
				depth, n.bound, want)
		}

		if !n.IsRoot() {
			if n.IsLeaf() {
				if len(n.ids) < n.minLeafSize || len(n.ids) > n.maxLeafSize {
					return errors.AssertionFailedf("xtree: leaf at depth %d holds %d points, want [%d, %d]",
						depth, len(n.ids), n.minLeafSize, n.maxLeafSize)
				}
			} else if len(n.children) < n.minNumChildren || len(n.children) > n.maxNumChildren {
				return errors.AssertionFailedf("xtree: node at depth %d has %d children, want [%d, %d]",
					depth, len(n.children), n.minNumChildren, n.maxNumChildren)
			}
		} else if n.IsLeaf() && len(n.ids) > n.maxLeafSize {
			return errors.AssertionFailedf("xtree: root leaf holds %d points, capacity %d",
				len(n.ids), n.maxLeafSize)
		}

		if n.IsLeaf() {
			points += len(n.ids)
			if leafDepth < 0 {
				leafDepth = depth
			} else if depth != leafDepth {
				return errors.AssertionFailedf("xtree: leaves at depths %d and %d", leafDepth, depth)
			}
			return nil
		}
		for i, c := range n.children {
			if c.parent != n {
				return errors.AssertionFailedf("xtree: child %d at depth %d has a stale parent link", i, depth+1)
			}
			if err := check(c, depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	if err := check(t.root, 0); err != nil {
		return err
	}
	if points != t.size {
		return errors.AssertionFailedf("xtree: tree stores %d points, Len is %d", points, t.size)
	}
	return nil
}
