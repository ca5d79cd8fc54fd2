package xtree

// SplitHistory records which axes were used by the chain of splits that
// produced a node. The topological split of an internal node only reuses an
// axis that every child has already been split on.
type SplitHistory struct {
	lastDimension int
	used          []bool
}

func newSplitHistory(dims int) SplitHistory {
	return SplitHistory{used: make([]bool, dims)}
}

// LastDimension is the axis of the split that created the node. Nodes that
// were never produced by a split report 0.
func (h SplitHistory) LastDimension() int { return h.lastDimension }

// Used reports whether axis was used by any split leading to the node.
func (h SplitHistory) Used(axis int) bool { return h.used[axis] }

// Axes returns the used axes in increasing order.
func (h SplitHistory) Axes() []int {
	var axes []int
	for k, u := range h.used {
		if u {
			axes = append(axes, k)
		}
	}
	return axes
}

// record returns a copy of h with axis added and marked as the last split.
func (h SplitHistory) record(axis int) SplitHistory {
	used := make([]bool, len(h.used))
	copy(used, h.used)
	used[axis] = true
	return SplitHistory{lastDimension: axis, used: used}
}

func (h SplitHistory) clone() SplitHistory {
	used := make([]bool, len(h.used))
	copy(used, h.used)
	return SplitHistory{lastDimension: h.lastDimension, used: used}
}
