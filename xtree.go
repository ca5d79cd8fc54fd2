package xtree

import (
	"math"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
)

// XTree is an in-memory X-tree: an R*-tree variant with forced reinsertion,
// minimal-overlap splitting and supernodes. It holds point identifier and
// coordinate pairs; callers keep their own records keyed by identifier.
//
// An XTree is not safe for concurrent use. Wrap it in a SyncTree when
// several goroutines share it.
type XTree struct {
	root *Node
	dims int
	size int
	cfg  Config
	log  logrus.FieldLogger

	// reinsertEligible[d] is true while forced reinsertion has not yet been
	// attempted at depth d during the current top-level insertion.
	reinsertEligible []bool
}

// New creates an empty tree for points of the given dimensionality.
func New(dims int, cfg Config) (*XTree, error) {
	applyDefaults(&cfg)
	if err := validateConfig(&cfg, dims); err != nil {
		return nil, err
	}
	t := &XTree{
		dims: dims,
		cfg:  cfg,
		log:  cfg.Logger,
	}
	t.root = newNode(t, nil)
	return t, nil
}

// Root returns the root node. The root object stays the same for the life of
// the tree, even when the tree grows a level.
func (t *XTree) Root() *Node { return t.root }

// Len returns the number of points in the tree.
func (t *XTree) Len() int { return t.size }

// Dims returns the dimensionality of the indexed points.
func (t *XTree) Dims() int { return t.dims }

// Config returns the configuration the tree was built with, defaults applied.
func (t *XTree) Config() Config { return t.cfg }

// Height returns the depth of the leaves; a tree whose root is a leaf has
// height 0.
func (t *XTree) Height() int {
	h := 0
	for n := t.root; !n.IsLeaf(); n = n.children[0] {
		h++
	}
	return h
}

// Insert adds a point with the given identifier to the tree. Identifiers are
// opaque to the tree and need not be unique. An error is returned only when
// the coordinates do not fit the tree.
func (t *XTree) Insert(id int, coords []float64) error {
	if err := t.checkCoords(coords); err != nil {
		return err
	}
	p := make([]float64, len(coords))
	copy(p, coords)

	t.resetReinsertion()
	t.insertPoint(id, p)
	t.size++
	return nil
}

func (t *XTree) checkCoords(coords []float64) error {
	if len(coords) != t.dims {
		return errors.Newf("xtree: point has %d coordinates, tree has %d dimensions", len(coords), t.dims)
	}
	for k, v := range coords {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.Newf("xtree: coordinate %d is not finite: %v", k, v)
		}
	}
	return nil
}

// insertPoint descends from the root to a leaf, expanding bounds on the way
// down, stores the point and splits the leaf if it overflows.
func (t *XTree) insertPoint(id int, coords []float64) {
	pb := PointBox(coords)
	n := t.root
	for !n.IsLeaf() {
		n.bound.Expand(coords)
		n = n.children[t.cfg.Descent.ChooseDescentNode(n, pb)]
	}
	n.appendPoint(id, coords)
	if len(n.ids) > n.maxLeafSize {
		t.splitLeaf(n)
	}
}

// growRoot moves the contents of the root into a fresh node which becomes the
// root's only child, so the root object itself is kept. It returns the copy.
func (t *XTree) growRoot() *Node {
	root := t.root
	cp := &Node{}
	*cp = *root
	cp.parent = root
	cp.bound = root.bound.Clone()
	cp.splitHistory = root.splitHistory.clone()
	for _, c := range cp.children {
		c.parent = cp
	}

	root.children = make([]*Node, 0, root.maxNumChildren+1)
	root.nullifyData()
	root.children = append(root.children, cp)

	t.log.WithFields(logrus.Fields{
		"height": t.Height(),
		"leaf":   cp.IsLeaf(),
	}).Debug("xtree: grew root")
	t.updateStatistic(cp)
	t.updateStatistic(root)
	return cp
}

func (t *XTree) updateStatistic(n *Node) {
	if t.cfg.Statistic != nil {
		t.cfg.Statistic(n)
	}
}

// assertf panics with an assertion failure when invariant checking is on and
// cond does not hold.
func (t *XTree) assertf(cond bool, format string, args ...interface{}) {
	if t.cfg.CheckInvariants && !cond {
		panic(errors.AssertionFailedf(format, args...))
	}
}
