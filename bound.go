package xtree

import (
	"fmt"
	"math"
)

// Box is an axis-aligned bounding box in D dimensions. The bounds are stored
// as per-dimension min/max slices; an empty box has lo = +Inf and hi = -Inf so
// that it acts as the identity for Union.
type Box struct {
	lo []float64
	hi []float64
}

// NewBox builds a box from copies of lo and hi. Panics if the lengths differ.
func NewBox(lo, hi []float64) Box {
	if len(lo) != len(hi) {
		panic(fmt.Sprintf("xtree: box bounds have different dimensionality: %d vs %d", len(lo), len(hi)))
	}
	b := Box{lo: make([]float64, len(lo)), hi: make([]float64, len(hi))}
	copy(b.lo, lo)
	copy(b.hi, hi)
	return b
}

// PointBox returns the degenerate box covering exactly p.
func PointBox(p []float64) Box {
	return NewBox(p, p)
}

// EmptyBox returns a box of the given dimensionality containing nothing.
func EmptyBox(dims int) Box {
	b := Box{lo: make([]float64, dims), hi: make([]float64, dims)}
	for k := 0; k < dims; k++ {
		b.lo[k] = math.Inf(1)
		b.hi[k] = math.Inf(-1)
	}
	return b
}

func (b Box) Dims() int        { return len(b.lo) }
func (b Box) Lo(k int) float64 { return b.lo[k] }
func (b Box) Hi(k int) float64 { return b.hi[k] }

// Empty reports whether the box contains no point.
func (b Box) Empty() bool {
	for k := range b.lo {
		if b.lo[k] > b.hi[k] {
			return true
		}
	}
	return len(b.lo) == 0
}

// Clone returns a deep copy of b.
func (b Box) Clone() Box {
	return NewBox(b.lo, b.hi)
}

// Expand grows b in place to cover p.
func (b *Box) Expand(p []float64) {
	for k, v := range p {
		if v < b.lo[k] {
			b.lo[k] = v
		}
		if v > b.hi[k] {
			b.hi[k] = v
		}
	}
}

// ExpandBox grows b in place to cover o.
func (b *Box) ExpandBox(o Box) {
	for k := range o.lo {
		if o.lo[k] < b.lo[k] {
			b.lo[k] = o.lo[k]
		}
		if o.hi[k] > b.hi[k] {
			b.hi[k] = o.hi[k]
		}
	}
}

// Union returns the smallest box containing both a and b.
func Union(a, b Box) Box {
	u := a.Clone()
	u.ExpandBox(b)
	return u
}

// Equal reports whether a and b have identical bounds.
func (b Box) Equal(o Box) bool {
	if len(b.lo) != len(o.lo) {
		return false
	}
	for k := range b.lo {
		if b.lo[k] != o.lo[k] || b.hi[k] != o.hi[k] {
			return false
		}
	}
	return true
}

// Centroid returns the center of the box.
func (b Box) Centroid() []float64 {
	c := make([]float64, len(b.lo))
	for k := range b.lo {
		c[k] = (b.lo[k] + b.hi[k]) / 2
	}
	return c
}

// PerimeterSum returns the sum of the side lengths of the box. This is the
// box's contribution to the margin of a candidate split.
func (b Box) PerimeterSum() float64 {
	if b.Empty() {
		return 0
	}
	var sum float64
	for k := range b.lo {
		sum += b.hi[k] - b.lo[k]
	}
	return sum
}

// Volume returns the product of the side lengths of the box.
func (b Box) Volume() float64 {
	if b.Empty() {
		return 0
	}
	v := 1.0
	for k := range b.lo {
		v *= b.hi[k] - b.lo[k]
	}
	return v
}

// OverlapVolume returns the volume of the intersection of a and b, or 0 if
// they are disjoint on any axis.
func OverlapVolume(a, b Box) float64 {
	v := 1.0
	for k := range a.lo {
		lo := math.Max(a.lo[k], b.lo[k])
		hi := math.Min(a.hi[k], b.hi[k])
		if hi < lo {
			return 0
		}
		v *= hi - lo
	}
	return v
}

// Enlargement returns how much the volume of b grows when it is expanded to
// cover o.
func (b Box) Enlargement(o Box) float64 {
	return Union(b, o).Volume() - b.Volume()
}

// Contains reports whether p lies inside the closed box.
func (b Box) Contains(p []float64) bool {
	for k, v := range p {
		if v < b.lo[k] || v > b.hi[k] {
			return false
		}
	}
	return true
}

// ContainsBox reports whether o lies entirely inside b.
func (b Box) ContainsBox(o Box) bool {
	for k := range o.lo {
		if o.lo[k] < b.lo[k] || o.hi[k] > b.hi[k] {
			return false
		}
	}
	return true
}

// Intersects reports whether the closed boxes share at least one point.
func (b Box) Intersects(o Box) bool {
	for k := range b.lo {
		if b.hi[k] < o.lo[k] || o.hi[k] < b.lo[k] {
			return false
		}
	}
	return true
}

// ClosestPoint clamps p into the box. For any Lp metric this is the point of
// the box nearest to p.
func (b Box) ClosestPoint(p []float64) []float64 {
	c := make([]float64, len(p))
	for k, v := range p {
		switch {
		case v < b.lo[k]:
			c[k] = b.lo[k]
		case v > b.hi[k]:
			c[k] = b.hi[k]
		default:
			c[k] = v
		}
	}
	return c
}

func (b Box) String() string {
	return fmt.Sprintf("Box{lo: %v, hi: %v}", b.lo, b.hi)
}
