// Package mock provides a deterministic in-process embedding provider.
//
// It is intended for tests and offline development: the same text always
// produces the same vector, and texts sharing tokens produce vectors with
// higher cosine similarity than unrelated texts. No network access is
// required.
package mock

import (
	"context"
	"hash/fnv"
	"math"
	"strings"

	"github.com/cogmem/cogmem-go/pkg/embedder"
)

// Provider is a deterministic embedding provider.
type Provider struct {
	dimensions int
}

// NewProvider creates a mock provider producing vectors of the given dimension.
// A dimension of 0 defaults to 256.
func NewProvider(dimensions int) *Provider {
	if dimensions <= 0 {
		dimensions = 256
	}
	return &Provider{dimensions: dimensions}
}

// Embed produces a deterministic unit vector for the given text.
//
// Each whitespace-separated token contributes a hashed bag-of-words
// component, so overlapping vocabularies yield overlapping vectors.
func (p *Provider) Embed(ctx context.Context, text string) ([]float64, error) {
	if text == "" {
		return nil, embedder.ErrEmptyInput
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vec := make([]float64, p.dimensions)
	for _, token := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New64a()
		_, _ = h.Write([]byte(token))
		seed := h.Sum64()
		idx := int(seed % uint64(p.dimensions))
		// Sign derived from a second hash bit keeps components spread
		// across both halves of the space.
		if seed&(1<<32) != 0 {
			vec[idx] += 1
		} else {
			vec[idx] -= 1
		}
	}

	return normalize(vec), nil
}

// EmbedBatch embeds each text in order.
func (p *Provider) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, embedder.ErrEmptyInput
	}

	embeddings := make([][]float64, len(texts))
	for i, text := range texts {
		vec, err := p.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		embeddings[i] = vec
	}
	return embeddings, nil
}

// Dimensions returns the vector dimensions.
func (p *Provider) Dimensions() int {
	return p.dimensions
}

// Close is a no-op for the mock provider.
func (p *Provider) Close() error {
	return nil
}

func normalize(vec []float64) []float64 {
	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	if norm == 0 {
		// Text with no hashable tokens still gets a stable non-zero vector.
		vec[0] = 1
		return vec
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}
