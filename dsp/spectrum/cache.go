package spectrum

import (
	"encoding/binary"
	"hash/fnv"
	"math"
)

// cacheKey identifies the exact working signal a spectrogram was computed
// from. The content hash guards against two differently filtered signals
// that happen to share length and sample rate.
type cacheKey struct {
	length     int
	sampleRate float64
	hash       uint64
}

// Cache memoizes the most recent spectrogram. It is not safe for concurrent
// use; the analysis pipeline runs recomputes on a single goroutine.
type Cache struct {
	key   cacheKey
	res   *Result
	valid bool
}

// Compute returns the spectrogram for the signal, reusing the cached result
// when the signal content and sample rate are unchanged.
func (c *Cache) Compute(signal []float64, sampleRate float64) (*Result, error) {
	key := cacheKey{
		length:     len(signal),
		sampleRate: sampleRate,
		hash:       contentHash(signal),
	}

	if c.valid && key == c.key {
		return c.res, nil
	}

	res, err := Compute(signal, sampleRate)
	if err != nil {
		return nil, err
	}

	c.key = key
	c.res = res
	c.valid = true

	return res, nil
}

// Invalidate drops the cached result.
func (c *Cache) Invalidate() {
	c.res = nil
	c.valid = false
}

func contentHash(signal []float64) uint64 {
	h := fnv.New64a()
	var buf [8]byte
	for _, v := range signal {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		h.Write(buf[:])
	}
	return h.Sum64()
}
