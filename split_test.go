package xtree

import (
	"sort"
	"testing"

	"github.com/cockroachdb/errors"
)

// newTestTree builds a tree for split tests and fails the test on a bad config.
func newTestTree(t *testing.T, dims int, cfg Config) *XTree {
	t.Helper()
	cfg.CheckInvariants = true
	tree, err := New(dims, cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return tree
}

func smallConfig(minLeaf, maxLeaf, minChildren, maxChildren int) Config {
	cfg := DefaultConfig()
	cfg.MinLeafSize = minLeaf
	cfg.MaxLeafSize = maxLeaf
	cfg.MinNumChildren = minChildren
	cfg.MaxNumChildren = maxChildren
	return cfg
}

// leafWith returns a detached leaf holding pts, identified by their index.
func leafWith(tree *XTree, pts ...[]float64) *Node {
	n := newNode(tree, nil)
	for i, p := range pts {
		n.appendPoint(i, p)
	}
	return n
}

func sortedIDs(n *Node) []int {
	ids := append([]int(nil), n.ids...)
	sort.Ints(ids)
	return ids
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// --- Cut scoring ---

func TestScoreCuts_LegalRange(t *testing.T) {
	boxes := make([]Box, 7)
	for i := range boxes {
		boxes[i] = PointBox([]float64{float64(i)})
	}
	a := scoreCuts(boxes, func(i int) float64 { return boxes[i].lo[0] }, 2, 1)
	// Cuts 2..5 keep at least two entries per side.
	if len(a.scores) != 4 || a.first != 2 {
		t.Fatalf("got %d cuts starting at %d, want 4 starting at 2", len(a.scores), a.first)
	}
	// Every cut of points on a line has margin 6 - 1 = 5.
	if a.marginSum != 20 {
		t.Errorf("marginSum = %v, want 20", a.marginSum)
	}
}

func TestScoreCuts_StableOrder(t *testing.T) {
	boxes := []Box{
		PointBox([]float64{1}),
		PointBox([]float64{0}),
		PointBox([]float64{1}),
		PointBox([]float64{0}),
	}
	a := scoreCuts(boxes, func(i int) float64 { return boxes[i].lo[0] }, 1, 1)
	want := []int{1, 3, 0, 2}
	if !equalInts(a.order, want) {
		t.Errorf("order = %v, want %v", a.order, want)
	}
}

func TestCutScore_OverlapRatio(t *testing.T) {
	if r := (cutScore{overlap: 0, area: 0}).overlapRatio(); r != 0 {
		t.Errorf("no overlap: ratio = %v, want 0", r)
	}
	if r := (cutScore{overlap: 1, area: 4}).overlapRatio(); r != 0.25 {
		t.Errorf("ratio = %v, want 0.25", r)
	}
}

// --- Leaf splits ---

func TestChooseLeafAxis_SeparatesClusters(t *testing.T) {
	tree := newTestTree(t, 2, smallConfig(2, 5, 2, 4))
	n := leafWith(tree,
		[]float64{0, 0}, []float64{1, 0}, []float64{2, 0},
		[]float64{10, 0}, []float64{11, 0}, []float64{12, 0},
	)
	axis, cuts := tree.chooseLeafAxis(n)
	if axis != 0 {
		t.Errorf("axis = %d, want 0", axis)
	}
	cut, score := cuts.best()
	if cut != 3 {
		t.Fatalf("cut = %d, want 3", cut)
	}
	if score.overlap != 0 {
		t.Errorf("overlap = %v, want 0", score.overlap)
	}
	first := append([]int(nil), cuts.order[:cut]...)
	sort.Ints(first)
	if !equalInts(first, []int{0, 1, 2}) {
		t.Errorf("first group = %v, want [0 1 2]", first)
	}
}

func TestSplitLeaf_ThroughInsert(t *testing.T) {
	cfg := smallConfig(2, 5, 2, 4)
	cfg.ReinsertFraction = 0
	tree := newTestTree(t, 2, cfg)
	pts := [][]float64{{0, 0}, {1, 0}, {2, 0}, {10, 0}, {11, 0}, {12, 0}}
	for i, p := range pts {
		if err := tree.Insert(i, p); err != nil {
			t.Fatal(err)
		}
	}
	root := tree.Root()
	if root.NumChildren() != 2 {
		t.Fatalf("root has %d children, want 2", root.NumChildren())
	}
	got := [][]int{sortedIDs(root.Child(0)), sortedIDs(root.Child(1))}
	sort.Slice(got, func(i, j int) bool { return got[i][0] < got[j][0] })
	if !equalInts(got[0], []int{0, 1, 2}) || !equalInts(got[1], []int{3, 4, 5}) {
		t.Errorf("leaves = %v, want [[0 1 2] [3 4 5]]", got)
	}
	for _, c := range root.Children() {
		h := c.SplitHistory()
		if h.LastDimension() != 0 || !h.Used(0) || h.Used(1) {
			t.Errorf("split history = %v (last %d), want only axis 0", h.Axes(), h.LastDimension())
		}
	}
	if err := tree.Validate(); err != nil {
		t.Error(err)
	}
}

func TestSplitLeaf_AssertsHalvesFit(t *testing.T) {
	cfg := smallConfig(2, 4, 2, 4)
	cfg.ReinsertFraction = 0
	tree := newTestTree(t, 1, cfg)

	// Eleven evenly spaced points score every cut alike, so the first legal
	// cut wins and leaves nine points in a half that holds four.
	leaf := newNode(tree, nil)
	for i := 0; i < 11; i++ {
		leaf.appendPoint(i, []float64{float64(i)})
	}
	internalRoot(tree, leaf, leafWith(tree, []float64{50}, []float64{51}))

	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.HasAssertionFailure(err) {
			t.Fatalf("recovered %v, want an assertion failure", r)
		}
	}()
	tree.splitLeaf(leaf)
	t.Fatal("split of an overloaded leaf did not panic")
}

func TestChooseLeafAxis_TieGoesToLowerAxis(t *testing.T) {
	tree := newTestTree(t, 3, smallConfig(2, 4, 2, 4))
	// Points on the diagonal score identically on every axis.
	var pts [][]float64
	for i := 0; i < 5; i++ {
		v := float64(i)
		pts = append(pts, []float64{v, v, v})
	}
	for run := 0; run < 10; run++ {
		axis, _ := tree.chooseLeafAxis(leafWith(tree, pts...))
		if axis != 0 {
			t.Fatalf("run %d: axis = %d, want 0", run, axis)
		}
	}
}

func TestChooseLeafAxis_PrefersSmallerMargin(t *testing.T) {
	tree := newTestTree(t, 2, smallConfig(2, 4, 2, 4))
	// Spread along y, tight along x.
	n := leafWith(tree,
		[]float64{0, 0}, []float64{0.1, 10}, []float64{0.2, 20},
		[]float64{0.1, 30}, []float64{0, 40},
	)
	axis, _ := tree.chooseLeafAxis(n)
	if axis != 1 {
		t.Errorf("axis = %d, want 1", axis)
	}
}

// --- Internal node splits ---

// internalRoot turns the tree's root into an internal node over the given
// leaves and sets the point count to match.
func internalRoot(tree *XTree, leaves ...*Node) {
	root := tree.root
	for _, l := range leaves {
		root.appendChild(l)
		tree.size += l.NumPoints()
	}
}

func TestSplitNonLeaf_IdenticalChildrenBecomeSupernode(t *testing.T) {
	tree := newTestTree(t, 2, smallConfig(1, 4, 2, 4))
	var leaves []*Node
	for i := 0; i < 5; i++ {
		leaves = append(leaves, leafWith(tree, []float64{0, 0}, []float64{1, 1}))
	}
	internalRoot(tree, leaves...)

	if tree.splitNonLeaf(tree.root) {
		t.Fatal("split accepted, want supernode")
	}
	root := tree.Root()
	if !root.IsSupernode() {
		t.Error("root is not a supernode")
	}
	if root.MaxNumChildren() != 8 || root.MaxLeafSize() != 8 {
		t.Errorf("capacity = %d children / %d points, want 8 / 8", root.MaxNumChildren(), root.MaxLeafSize())
	}
	if root.NumChildren() != 5 {
		t.Errorf("root has %d children, want 5", root.NumChildren())
	}
	if cap(root.children) < 9 {
		t.Errorf("children storage holds %d, want room for 9", cap(root.children))
	}
}

func TestSplitNonLeaf_DisjointChildrenSplit(t *testing.T) {
	tree := newTestTree(t, 2, smallConfig(1, 4, 2, 4))
	var leaves []*Node
	for i := 0; i < 5; i++ {
		x := float64(3 * i)
		leaves = append(leaves, leafWith(tree, []float64{x, 0}, []float64{x + 1, 1}))
	}
	internalRoot(tree, leaves...)
	root := tree.Root()

	if !tree.splitNonLeaf(root) {
		t.Fatal("split rejected")
	}
	if tree.Root() != root {
		t.Error("root object replaced")
	}
	if root.NumChildren() != 2 || tree.Height() != 2 {
		t.Fatalf("root has %d children at height %d, want 2 at height 2", root.NumChildren(), tree.Height())
	}
	total := 0
	for _, c := range root.Children() {
		total += c.NumChildren()
		if c.SplitHistory().LastDimension() != 0 {
			t.Errorf("child split on axis %d, want 0", c.SplitHistory().LastDimension())
		}
		if c.IsSupernode() {
			t.Error("split half is a supernode")
		}
	}
	if total != 5 {
		t.Errorf("halves hold %d children, want 5", total)
	}
	if err := tree.Validate(); err != nil {
		t.Error(err)
	}
}

func TestChooseNonLeafSplit_UpperBoundOrdering(t *testing.T) {
	tree := newTestTree(t, 1, smallConfig(1, 4, 2, 4))
	// The long interval comes first by lower bound, where every cut keeps
	// it spanning most of the line, and third by upper bound.
	leaves := []*Node{
		leafWith(tree, []float64{0}, []float64{10}),
		leafWith(tree, []float64{1}, []float64{2}),
		leafWith(tree, []float64{3}, []float64{4}),
		leafWith(tree, []float64{11}, []float64{12}),
		leafWith(tree, []float64{13}, []float64{14}),
	}
	internalRoot(tree, leaves...)
	s, ok := tree.chooseNonLeafSplit(tree.root)
	if !ok {
		t.Fatal("no split found")
	}
	if !s.hi {
		t.Error("lower-bound ordering chosen, want upper-bound")
	}
	if s.cut != 3 || s.score.overlap != 0 {
		t.Errorf("cut %d with overlap %v, want cut 3 with no overlap", s.cut, s.score.overlap)
	}
	first := append([]int(nil), s.order[:s.cut]...)
	sort.Ints(first)
	if !equalInts(first, []int{0, 1, 2}) {
		t.Errorf("first group = %v, want [0 1 2]", first)
	}
}

func TestChooseNonLeafSplit_EqualOrderingsPreferLowerBound(t *testing.T) {
	tree := newTestTree(t, 1, smallConfig(1, 4, 2, 4))
	var leaves []*Node
	for i := 0; i < 5; i++ {
		x := float64(2 * i)
		leaves = append(leaves, leafWith(tree, []float64{x}, []float64{x + 1}))
	}
	internalRoot(tree, leaves...)
	s, ok := tree.chooseNonLeafSplit(tree.root)
	if !ok {
		t.Fatal("no split found")
	}
	if s.hi {
		t.Error("upper-bound ordering chosen on a tie")
	}
	if s.score.overlap != 0 {
		t.Errorf("overlap = %v, want 0", s.score.overlap)
	}
}

func TestTopologicalAxis(t *testing.T) {
	tree := newTestTree(t, 3, smallConfig(1, 4, 2, 4))
	child := func(last int, used ...int) *Node {
		n := newNode(tree, nil)
		h := newSplitHistory(3)
		for _, a := range used {
			h = h.record(a)
		}
		h.lastDimension = last
		n.splitHistory = h
		return n
	}
	tests := []struct {
		name     string
		children []*Node
		want     int
	}{
		{"after median", []*Node{child(0, 0, 1), child(0, 0, 1), child(1, 0, 1)}, 1},
		{"wraps around", []*Node{child(2, 2), child(2, 2), child(2, 2)}, 2},
		{"wraps to shared axis", []*Node{child(1, 0, 1), child(2, 0, 2), child(2, 0, 2)}, 0},
		{"none shared", []*Node{child(0, 0), child(1, 1), child(2, 2)}, -1},
		{"fresh children", []*Node{child(0), child(0)}, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := newNode(tree, nil)
			n.children = tt.children
			if got := topologicalAxis(n, 3); got != tt.want {
				t.Errorf("topologicalAxis = %d, want %d", got, tt.want)
			}
		})
	}
}

// overlappingSlabs are five children whose cheapest split by margin, along x,
// overlaps heavily, while the costlier split along y is clean.
func overlappingSlabs(tree *XTree, history SplitHistory) []*Node {
	boxes := [][2][]float64{
		{{0, 0}, {100, 1}},
		{{10, 2}, {110, 3}},
		{{20, 0}, {120, 1}},
		{{30, 2}, {130, 3}},
		{{40, 0}, {140, 1}},
	}
	var leaves []*Node
	for _, b := range boxes {
		n := leafWith(tree, b[0], b[1])
		n.splitHistory = history.clone()
		leaves = append(leaves, n)
	}
	return leaves
}

func TestChooseNonLeafSplit_FallsBackToTopologicalAxis(t *testing.T) {
	tree := newTestTree(t, 2, smallConfig(1, 4, 2, 4))
	internalRoot(tree, overlappingSlabs(tree, newSplitHistory(2).record(1).record(0))...)

	s, ok := tree.chooseNonLeafSplit(tree.root)
	if !ok {
		t.Fatal("no split found")
	}
	if !s.topological || s.axis != 1 {
		t.Errorf("got axis %d (topological %v), want topological axis 1", s.axis, s.topological)
	}
	if s.cut != 3 || s.score.overlap != 0 {
		t.Errorf("cut %d with overlap %v, want cut 3 with no overlap", s.cut, s.score.overlap)
	}
}

func TestChooseNonLeafSplit_NoTopologicalAxis(t *testing.T) {
	tree := newTestTree(t, 2, smallConfig(1, 4, 2, 4))
	internalRoot(tree, overlappingSlabs(tree, newSplitHistory(2))...)

	if s, ok := tree.chooseNonLeafSplit(tree.root); ok {
		t.Errorf("split accepted on axis %d, want none", s.axis)
	}
	if tree.splitNonLeaf(tree.root) {
		t.Error("split accepted, want supernode")
	}
	if !tree.Root().IsSupernode() {
		t.Error("root is not a supernode")
	}
}
