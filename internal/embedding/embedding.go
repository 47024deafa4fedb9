// Package embedding provides text embedding engines used to rerank knowledge
// snippet hits. Embeddings are an optional refinement: retrieval works without
// an engine, it just keeps keyword order.
package embedding

import (
	"context"
	"math"
)

// Engine generates vector embeddings for text.
type Engine interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Name() string
	Close() error
}

// CosineSimilarity computes cosine similarity between two vectors. Mismatched
// lengths or zero vectors score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// NoopEngine is the engine used when no embedding provider is configured.
// Every embed call reports unavailability through empty output.
type NoopEngine struct{}

// Embed returns nil; callers treat that as "no rerank".
func (NoopEngine) Embed(ctx context.Context, text string) ([]float32, error) {
	return nil, nil
}

// EmbedBatch returns nil.
func (NoopEngine) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, nil
}

// Dimensions returns 0.
func (NoopEngine) Dimensions() int { return 0 }

// Name identifies the engine.
func (NoopEngine) Name() string { return "noop" }

// Close is a no-op.
func (NoopEngine) Close() error { return nil }
