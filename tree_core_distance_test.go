package xtree

import (
	"sort"
	"testing"
)

// bruteCoreDistances returns, per row, the distance to its minSamples-th
// nearest other row.
func bruteCoreDistances(data []float64, n, dims, minSamples int, m Metric) []float64 {
	core := make([]float64, n)
	for i := 0; i < n; i++ {
		var d []float64
		for j := 0; j < n; j++ {
			if j != i {
				d = append(d, m.Distance(data[i*dims:(i+1)*dims], data[j*dims:(j+1)*dims]))
			}
		}
		sort.Float64s(d)
		core[i] = d[minSamples-1]
	}
	return core
}

// coreByID reorders core distances from index order to identifier order.
func coreByID(ids []int, core []float64) []float64 {
	out := make([]float64, len(ids))
	for i, id := range ids {
		out[id] = core[i]
	}
	return out
}

func treeFromRows(t *testing.T, data []float64, n, dims int, cfg Config) *XTree {
	t.Helper()
	tree := newTestTree(t, dims, cfg)
	for i := 0; i < n; i++ {
		if err := tree.Insert(i, data[i*dims:(i+1)*dims]); err != nil {
			t.Fatalf("Insert(%d): %v", i, err)
		}
	}
	return tree
}

func TestCoreDistances_MatchesBruteForce(t *testing.T) {
	data := []float64{
		0, 0,
		3, 0,
		0, 4,
		3, 4,
		1.5, 2,
	}
	n, dims := 5, 2
	tree := treeFromRows(t, data, n, dims, smallConfig(1, 2, 1, 2))

	for minSamples := 1; minSamples <= n-1; minSamples++ {
		expected := bruteCoreDistances(data, n, dims, minSamples, EuclideanMetric{})
		got := coreByID(CoreDistances(tree, minSamples))

		for i := 0; i < n; i++ {
			if !almostEqual(got[i], expected[i], floatTol) {
				t.Errorf("minSamples=%d: core[%d] = %v, want %v", minSamples, i, got[i], expected[i])
			}
		}
	}
}

func TestCoreDistances_Collinear(t *testing.T) {
	// 5 points on x-axis: (0,0), (1,0), (2,0), (3,0), (4,0)
	data := []float64{0, 0, 1, 0, 2, 0, 3, 0, 4, 0}
	n, dims := 5, 2

	for _, m := range []Metric{EuclideanMetric{}, ManhattanMetric{}} {
		cfg := smallConfig(1, 2, 1, 2)
		cfg.Metric = m
		tree := treeFromRows(t, data, n, dims, cfg)
		for minSamples := 1; minSamples <= 4; minSamples++ {
			expected := bruteCoreDistances(data, n, dims, minSamples, m)
			got := coreByID(CoreDistances(tree, minSamples))
			for i := 0; i < n; i++ {
				if !almostEqual(got[i], expected[i], floatTol) {
					t.Errorf("%T minSamples=%d: core[%d] = %v, want %v", m, minSamples, i, got[i], expected[i])
				}
			}
		}
	}
}

func TestCoreDistances_SinglePoint(t *testing.T) {
	tree := treeFromRows(t, []float64{5, 5}, 1, 2, DefaultConfig())

	ids, core := CoreDistances(tree, 5)
	if len(core) != 1 || len(ids) != 1 {
		t.Fatalf("expected length 1, got %d", len(core))
	}
	if core[0] != 0 {
		t.Errorf("expected 0 for single point, got %v", core[0])
	}
}

func TestCoreDistances_EmptyTree(t *testing.T) {
	tree := newTestTree(t, 2, DefaultConfig())
	if ids, core := CoreDistances(tree, 3); ids != nil || core != nil {
		t.Errorf("expected nil results, got %v %v", ids, core)
	}
}

func TestCoreDistances_MinSamplesZero(t *testing.T) {
	tree := treeFromRows(t, []float64{0, 0, 3, 4}, 2, 2, DefaultConfig())
	_, core := CoreDistances(tree, 0)
	for i, c := range core {
		if c != 0 {
			t.Errorf("core[%d] = %v, want 0", i, c)
		}
	}
}

func TestCoreDistances_MinSamplesClampedToNMinus1(t *testing.T) {
	data := []float64{0, 0, 1, 1, 2, 2}
	n, dims := 3, 2
	expected := bruteCoreDistances(data, n, dims, n-1, EuclideanMetric{})

	tree := treeFromRows(t, data, n, dims, DefaultConfig())
	got := coreByID(CoreDistances(tree, 10))

	for i := 0; i < n; i++ {
		if !almostEqual(got[i], expected[i], floatTol) {
			t.Errorf("core[%d] = %v, want %v", i, got[i], expected[i])
		}
	}
}

func TestCoreDistances_IdenticalPoints(t *testing.T) {
	data := []float64{1, 1, 1, 1, 1, 1}
	tree := treeFromRows(t, data, 3, 2, smallConfig(1, 2, 1, 2))

	_, core := CoreDistances(tree, 2)
	for i, c := range core {
		if c != 0 {
			t.Errorf("core[%d] = %v, want 0 for identical points", i, c)
		}
	}
}
