// Package xtree implements an in-memory X-tree, an R*-tree variant for
// indexing points in D-dimensional space.
//
// Like the R*-tree, an X-tree splits over-full nodes along the axis with the
// smallest total margin and reinserts the outermost points of a full leaf once
// per level before it splits. Unlike it, an internal node whose children
// cannot be split without heavy overlap becomes a supernode: its capacity
// doubles in place and it keeps all its children. This keeps queries on
// high-dimensional, overlapping data from degrading into scans of many
// overlapping siblings.
//
// Basic usage:
//
//	tree, err := xtree.New(2, xtree.DefaultConfig())
//	err = tree.Insert(7, []float64{1.5, 2.0})
//	ids, err := tree.Range(xtree.NewBox([]float64{0, 0}, []float64{2, 2}))
//	nbrs, err := tree.NearestNeighbors([]float64{1, 1}, 3)
//
// An XTree is not safe for concurrent use; SyncTree adds a read/write lock.
//
// # Splitting
//
// For leaves, every axis is scored by sorting the points along it and summing
// the margins of all legal two-way cuts. On the winning axis the cut with the
// least overlap wins, then the least total volume, then the least margin.
//
// Internal nodes are scored the same way twice, with children ordered by their
// lower and by their upper bounds. The winning cut is used when its overlap
// is below Config.MaxOverlap of its volume. Otherwise the tree tries the
// topological axis, an axis every child has already been split on, and if
// that fails too the node becomes a supernode.
package xtree
