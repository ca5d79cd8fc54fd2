package xtree

// SpatialIndex is the read interface shared by XTree and SyncTree, used by
// batch queries such as QueryKNNParallel and CoreDistances.
type SpatialIndex interface {
	// QueryKNN finds the k nearest neighbors for each row in queryData.
	// queryData is flat row-major with queryRows rows.
	// Returns per-query neighbor identifiers and distances, both sorted by
	// distance.
	QueryKNN(queryData []float64, queryRows, k int) (ids [][]int, distances [][]float64)

	// Points returns the identifiers of the indexed points and their
	// coordinates as flat row-major data, in the same order.
	Points() (ids []int, data []float64)

	// NumPoints returns the number of points in the index.
	NumPoints() int

	// NumFeatures returns the dimensionality of each point.
	NumFeatures() int
}

var _ SpatialIndex = (*XTree)(nil)

func (t *XTree) NumPoints() int   { return t.size }
func (t *XTree) NumFeatures() int { return t.dims }

// QueryKNN implements SpatialIndex. Rows are answered independently with
// NearestNeighbors.
func (t *XTree) QueryKNN(queryData []float64, queryRows, k int) ([][]int, [][]float64) {
	ids := make([][]int, queryRows)
	distances := make([][]float64, queryRows)
	for r := 0; r < queryRows; r++ {
		nbrs := t.nearest(queryData[r*t.dims:(r+1)*t.dims], k)
		ids[r] = make([]int, len(nbrs))
		distances[r] = make([]float64, len(nbrs))
		for j, nb := range nbrs {
			ids[r][j] = nb.ID
			distances[r][j] = nb.Distance
		}
	}
	return ids, distances
}

// Points implements SpatialIndex. Points are listed leaf by leaf, depth-first.
func (t *XTree) Points() ([]int, []float64) {
	ids := make([]int, 0, t.size)
	data := make([]float64, 0, t.size*t.dims)
	t.root.walk(func(n *Node) {
		for i, id := range n.ids {
			ids = append(ids, id)
			data = append(data, n.PointCoords(i)...)
		}
	})
	return ids, data
}
