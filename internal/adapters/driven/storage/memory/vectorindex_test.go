package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/clause/internal/core/domain"
)

func TestVectorIndex_Search(t *testing.T) {
	idx := NewVectorIndex()
	ctx := context.Background()

	require.NoError(t, idx.Add(ctx, "east", []float32{1, 0}))
	require.NoError(t, idx.Add(ctx, "north", []float32{0, 1}))
	require.NoError(t, idx.Add(ctx, "north-east", []float32{1, 1}))

	hits, err := idx.Search(ctx, []float32{1, 0.1}, 2)

	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "east", hits[0].ChunkID)
	assert.Equal(t, "north-east", hits[1].ChunkID)
	assert.Greater(t, hits[0].Similarity, hits[1].Similarity)
}

func TestVectorIndex_AddCopiesAndReplaces(t *testing.T) {
	idx := NewVectorIndex()
	ctx := context.Background()

	vec := []float32{1, 0}
	require.NoError(t, idx.Add(ctx, "c1", vec))
	vec[0], vec[1] = 0, 1

	hits, err := idx.Search(ctx, []float32{1, 0}, 1)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, hits[0].Similarity, 1e-9)

	require.NoError(t, idx.Add(ctx, "c1", []float32{0, 1}))
	hits, err = idx.Search(ctx, []float32{1, 0}, 1)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, hits[0].Similarity, 1e-9)
	assert.Equal(t, 1, idx.Len())
}

func TestVectorIndex_Delete(t *testing.T) {
	idx := NewVectorIndex()
	ctx := context.Background()
	require.NoError(t, idx.Add(ctx, "c1", []float32{1, 0}))

	require.NoError(t, idx.Delete(ctx, "c1"))
	require.NoError(t, idx.Delete(ctx, "unknown"))

	hits, err := idx.Search(ctx, []float32{1, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
	assert.NoError(t, idx.Close())
}

func TestVectorIndex_SearchErrors(t *testing.T) {
	idx := NewVectorIndex()

	_, err := idx.Search(context.Background(), nil, 3)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = idx.Search(ctx, []float32{1}, 3)
	assert.ErrorIs(t, err, context.Canceled)
}
