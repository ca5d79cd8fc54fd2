package xtree_test

import (
	"fmt"

	"github.com/TrevorS/xtree"
)

func Example() {
	tree, err := xtree.New(2, xtree.DefaultConfig())
	if err != nil {
		panic(err)
	}
	points := [][]float64{{0, 0}, {1, 0}, {0, 1}, {5, 5}, {6, 5}}
	for id, p := range points {
		if err := tree.Insert(id, p); err != nil {
			panic(err)
		}
	}

	nbrs, _ := tree.NearestNeighbors([]float64{5.2, 5}, 2)
	for _, nb := range nbrs {
		fmt.Printf("%d %.1f\n", nb.ID, nb.Distance)
	}

	ids, _ := tree.Range(xtree.NewBox([]float64{-1, -1}, []float64{0.5, 0.5}))
	fmt.Println(ids)
	// Output:
	// 3 0.2
	// 4 0.8
	// [0]
}

func ExampleXTree_Delete() {
	tree, _ := xtree.New(1, xtree.DefaultConfig())
	_ = tree.Insert(1, []float64{3})
	_ = tree.Insert(2, []float64{4})

	fmt.Println(tree.Delete(1, []float64{3}), tree.Len())
	fmt.Println(tree.Delete(1, []float64{3}), tree.Len())
	// Output:
	// true 1
	// false 1
}

func ExampleCoreDistances() {
	tree, _ := xtree.New(1, xtree.DefaultConfig())
	for id, x := range []float64{0, 1, 3, 7} {
		_ = tree.Insert(id, []float64{x})
	}

	ids, core := xtree.CoreDistances(tree, 1)
	for i, id := range ids {
		fmt.Println(id, core[i])
	}
	// Output:
	// 0 1
	// 1 1
	// 2 2
	// 3 4
}
