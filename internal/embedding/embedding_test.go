package embedding

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosineSimilarity(t *testing.T) {
	t.Run("identical vectors", func(t *testing.T) {
		v := []float32{0.5, 0.5, 0.7}
		assert.InDelta(t, 1.0, CosineSimilarity(v, v), 1e-9)
	})

	t.Run("orthogonal vectors", func(t *testing.T) {
		assert.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	})

	t.Run("opposite vectors", func(t *testing.T) {
		assert.InDelta(t, -1.0, CosineSimilarity([]float32{1, 2}, []float32{-1, -2}), 1e-9)
	})

	t.Run("mismatched lengths score zero", func(t *testing.T) {
		assert.Zero(t, CosineSimilarity([]float32{1, 2}, []float32{1, 2, 3}))
	})

	t.Run("zero vector scores zero", func(t *testing.T) {
		assert.Zero(t, CosineSimilarity([]float32{0, 0}, []float32{1, 2}))
	})
}

func TestNoopEngine(t *testing.T) {
	var e Engine = NoopEngine{}

	vec, err := e.Embed(context.Background(), "大安")
	assert.NoError(t, err)
	assert.Nil(t, vec)

	vecs, err := e.EmbedBatch(context.Background(), []string{"a", "b"})
	assert.NoError(t, err)
	assert.Nil(t, vecs)

	assert.Zero(t, e.Dimensions())
	assert.Equal(t, "noop", e.Name())
	assert.NoError(t, e.Close())
}
