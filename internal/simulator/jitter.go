package simulator

import "hash/fnv"

// jitter returns a deterministic multiplier in [0.9, 1.1] derived from the
// service id with FNV-1a, so otherwise-identical services diverge while
// repeated runs stay reproducible.
func jitter(id string) float64 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return 0.9 + 0.2*float64(h.Sum32()%1000)/999.0
}
