package search

import (
	"fmt"

	"github.com/x448/float16"
)

// Precision selects how cached object encodings are stored in memory.
// Float32 keeps the model output as-is; Float16 halves the memory footprint
// of a long search at the cost of a lossy (but deterministic) conversion.
type Precision string

const (
	// Float32 stores encodings in single precision (default).
	Float32 Precision = "float32"
	// Float16 stores encodings in half precision.
	Float16 Precision = "float16"
)

// storedVector is a cached encoding in its storage representation.
// Exactly one of f32/f16 is populated, according to the cache precision.
type storedVector struct {
	f32 []float32
	f16 []uint16
}

func compressVector(v []float32, p Precision) (storedVector, error) {
	switch p {
	case Float32, "":
		return storedVector{f32: v}, nil
	case Float16:
		out := make([]uint16, len(v))
		for i, x := range v {
			out[i] = float16.Fromfloat32(x).Bits()
		}
		return storedVector{f16: out}, nil
	default:
		return storedVector{}, fmt.Errorf("unsupported cache precision %q", p)
	}
}

// decode materializes the float32 view of a stored vector. The conversion is
// deterministic, so repeated reads of the same entry are bit-identical.
func (s storedVector) decode() []float32 {
	if s.f32 != nil {
		return s.f32
	}
	out := make([]float32, len(s.f16))
	for i, bits := range s.f16 {
		out[i] = float16.Frombits(bits).Float32()
	}
	return out
}
