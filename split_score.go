package xtree

import "sort"

// cutScore describes one candidate partition of an ordered entry list.
type cutScore struct {
	margin  float64 // sum of the two groups' perimeter sums
	area    float64 // sum of the two groups' volumes
	overlap float64 // volume of the intersection of the two groups
}

func (s cutScore) less(o cutScore) bool {
	if s.overlap != o.overlap {
		return s.overlap < o.overlap
	}
	if s.area != o.area {
		return s.area < o.area
	}
	return s.margin < o.margin
}

// overlapRatio is overlap divided by area, 0 when the groups do not overlap.
func (s cutScore) overlapRatio() float64 {
	if s.overlap == 0 {
		return 0
	}
	return s.overlap / s.area
}

// axisCuts holds the scored cuts of one ordering of the entries. Cut i puts the
// first i ordered entries in the first group.
type axisCuts struct {
	order     []int
	first     int // smallest legal cut
	scores    []cutScore
	marginSum float64
}

// best returns the winning cut index and its score. The earliest cut wins ties.
func (a axisCuts) best() (int, cutScore) {
	bi := 0
	for i := 1; i < len(a.scores); i++ {
		if a.scores[i].less(a.scores[bi]) {
			bi = i
		}
	}
	return a.first + bi, a.scores[bi]
}

// scoreCuts orders the entries by key and scores every cut that leaves at
// least minSize entries on each side.
func scoreCuts(boxes []Box, key func(i int) float64, minSize, dims int) axisCuts {
	n := len(boxes)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return key(order[i]) < key(order[j])
	})

	// prefix[i] covers order[:i], suffix[i] covers order[i:].
	prefix := make([]Box, n+1)
	suffix := make([]Box, n+1)
	prefix[0] = EmptyBox(dims)
	suffix[n] = EmptyBox(dims)
	for i := 0; i < n; i++ {
		prefix[i+1] = Union(prefix[i], boxes[order[i]])
	}
	for i := n - 1; i >= 0; i-- {
		suffix[i] = Union(suffix[i+1], boxes[order[i]])
	}

	a := axisCuts{order: order, first: minSize}
	for i := minSize; i <= n-minSize; i++ {
		one, two := prefix[i], suffix[i]
		s := cutScore{
			margin:  one.PerimeterSum() + two.PerimeterSum(),
			area:    one.Volume() + two.Volume(),
			overlap: OverlapVolume(one, two),
		}
		a.scores = append(a.scores, s)
		a.marginSum += s.margin
	}
	return a
}
