package engine

import "math/rand"

// randSource is a lightweight wrapper around math/rand.Rand.
// It is not safe for concurrent use, so each tile must have its own instance.
type randSource struct {
	r *rand.Rand
}

func newSeededRandSource(seed int64) *randSource {
	return &randSource{
		r: rand.New(rand.NewSource(seed)),
	}
}

// tileSeed derives an independent stream per tile from the frame seed.
func tileSeed(frameSeed int64, tile int) int64 {
	return frameSeed ^ int64(uint64(tile+1)*0x9e3779b97f4a7c15)
}

func (rs *randSource) Float64() float64 {
	return rs.r.Float64()
}
