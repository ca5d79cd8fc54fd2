package pointset

import (
	"encoding/binary"
	"math"

	"github.com/cockroachdb/errors"
	"github.com/viant/vec/search"
)

// Encode packs coordinates into a BLOB of little-endian IEEE 754 float32
// values with no length prefix; the length follows from the BLOB size.
func Encode(coords []float32) []byte {
	if len(coords) == 0 {
		return nil
	}
	b := make([]byte, len(coords)*4)
	for i, v := range coords {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(v))
	}
	return b
}

// Decode unpacks a BLOB produced by Encode.
func Decode(b []byte) ([]float32, error) {
	if len(b) == 0 {
		return nil, nil
	}
	if len(b)%4 != 0 {
		return nil, errors.Newf("pointset: invalid coordinate blob length %d (not multiple of 4)", len(b))
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v, nil
}

// Normalize scales v to unit length in place and returns it. Zero vectors are
// returned unchanged.
func Normalize(v []float32) []float32 {
	m := search.Float32s(v).Magnitude()
	if m == 0 {
		return v
	}
	for i := range v {
		v[i] /= m
	}
	return v
}

// Float64s widens float32 coordinates for insertion into a tree.
func Float64s(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}
