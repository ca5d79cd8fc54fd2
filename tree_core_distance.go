package xtree

// CoreDistances computes, for every indexed point, the distance to its
// minSamples-th nearest neighbor other than itself, using the index's KNN
// queries. Results are aligned with the identifiers it returns, which are
// those of index.Points().
//
// A point is matched to itself by identifier, so identifiers should be
// unique; only the first hit with the query's identifier is skipped.
func CoreDistances(index SpatialIndex, minSamples int) (ids []int, core []float64) {
	ids, data := index.Points()
	n := len(ids)
	if n == 0 {
		return nil, nil
	}

	minSamples = min(minSamples, n-1)
	minSamples = max(minSamples, 0)

	core = make([]float64, n)
	if minSamples == 0 {
		return ids, core
	}

	// Query k = minSamples+1 neighbors (the +1 accounts for the point itself).
	k := minSamples + 1
	indices, distances := index.QueryKNN(data, n, k)

	for i := 0; i < n; i++ {
		neighborCount := 0
		skipped := false
		for j := 0; j < len(distances[i]); j++ {
			if !skipped && indices[i][j] == ids[i] {
				skipped = true
				continue
			}
			neighborCount++
			if neighborCount == minSamples {
				core[i] = distances[i][j]
				break
			}
		}
		// Fewer hits than asked for; use the farthest one found.
		if neighborCount < minSamples && len(distances[i]) > 0 {
			core[i] = distances[i][len(distances[i])-1]
		}
	}

	return ids, core
}
