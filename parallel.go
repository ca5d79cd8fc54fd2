package xtree

import (
	"sync"
)

// QueryKNNParallel answers a batch of k-nearest-neighbor queries using
// multiple goroutines. queryData is flat row-major with queryRows rows.
// numWorkers controls the degree of parallelism; if <= 1, it falls back to
// a single index.QueryKNN call.
//
// The result is identical to index.QueryKNN on the whole batch. The index
// must not be modified while the queries run, unless it is a SyncTree.
func QueryKNNParallel(index SpatialIndex, queryData []float64, queryRows, k, numWorkers int) ([][]int, [][]float64) {
	if numWorkers <= 1 || queryRows <= 1 {
		return index.QueryKNN(queryData, queryRows, k)
	}

	dims := index.NumFeatures()
	ids := make([][]int, queryRows)
	distances := make([][]float64, queryRows)

	// Split rows across workers. Each worker writes only its own rows of
	// the result, so no synchronization is needed for writes.
	var wg sync.WaitGroup
	rowsPerWorker := (queryRows + numWorkers - 1) / numWorkers

	for w := 0; w < numWorkers; w++ {
		startRow := w * rowsPerWorker
		endRow := startRow + rowsPerWorker
		if endRow > queryRows {
			endRow = queryRows
		}
		if startRow >= queryRows {
			break
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			chunkIDs, chunkDists := index.QueryKNN(queryData[start*dims:end*dims], end-start, k)
			copy(ids[start:end], chunkIDs)
			copy(distances[start:end], chunkDists)
		}(startRow, endRow)
	}

	wg.Wait()
	return ids, distances
}
