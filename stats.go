package xtree

import (
	"gonum.org/v1/gonum/stat"
)

// Stats summarizes the shape of a tree.
type Stats struct {
	Height     int `json:"height"`
	Points     int `json:"points"`
	Nodes      int `json:"nodes"`
	Leaves     int `json:"leaves"`
	Supernodes int `json:"supernodes"`

	// LeafFillMean and LeafFillStdDev describe the number of points per leaf
	// relative to the leaf capacity.
	LeafFillMean   float64 `json:"leafFillMean"`
	LeafFillStdDev float64 `json:"leafFillStdDev"`
}

// Stats walks the tree and returns its summary.
func (t *XTree) Stats() Stats {
	s := Stats{Height: t.Height(), Points: t.size}
	var fill []float64
	t.root.walk(func(n *Node) {
		s.Nodes++
		if n.IsSupernode() {
			s.Supernodes++
		}
		if n.IsLeaf() {
			s.Leaves++
			fill = append(fill, float64(len(n.ids))/float64(n.maxLeafSize))
		}
	})
	switch len(fill) {
	case 0:
	case 1:
		s.LeafFillMean = fill[0]
	default:
		s.LeafFillMean, s.LeafFillStdDev = stat.MeanStdDev(fill, nil)
	}
	return s
}
