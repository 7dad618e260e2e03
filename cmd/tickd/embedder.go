package main

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
)

// localEmbedder is a stand-in for the external embedding service: a
// deterministic bag-of-words feature hash, normalized to unit length. It
// keeps semantic lookup functional without a model dependency; deployments
// with a real embedding service swap it at engine construction.
type localEmbedder struct {
	dims uint64
}

func (e localEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	dims := int(e.dims)
	if dims <= 0 {
		dims = 256
	}
	vec := make([]float32, dims)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New64a()
		h.Write([]byte(word))
		vec[h.Sum64()%uint64(dims)]++
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}
	return vec, nil
}
