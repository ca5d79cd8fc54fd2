package xtree

// DescentStrategy chooses which child of an internal node an entry with the
// given bound descends into during insertion.
type DescentStrategy interface {
	ChooseDescentNode(n *Node, b Box) int
}

// StatisticFunc recomputes user statistics for a node after a split or a root
// growth has put its contents in place.
type StatisticFunc func(n *Node)

// MinimalEnlargement descends into the child whose bound needs the least
// volume enlargement to cover the entry. Ties go to the child whose margin
// grows least (this separates zero-volume bounds), then to the smaller
// volume, then to the first child.
type MinimalEnlargement struct{}

func (MinimalEnlargement) ChooseDescentNode(n *Node, b Box) int {
	type cost struct{ volume, margin, size float64 }
	costOf := func(c *Node) cost {
		u := Union(c.bound, b)
		return cost{
			volume: u.Volume() - c.bound.Volume(),
			margin: u.PerimeterSum() - c.bound.PerimeterSum(),
			size:   c.bound.Volume(),
		}
	}
	less := func(a, b cost) bool {
		if a.volume != b.volume {
			return a.volume < b.volume
		}
		if a.margin != b.margin {
			return a.margin < b.margin
		}
		return a.size < b.size
	}

	best := 0
	bestCost := costOf(n.children[0])
	for i := 1; i < len(n.children); i++ {
		if c := costOf(n.children[i]); less(c, bestCost) {
			best, bestCost = i, c
		}
	}
	return best
}
