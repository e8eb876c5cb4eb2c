package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuchat/docuchat/internal/core/ports/driven"
)

func record(id, userID string, values ...float32) driven.VectorRecord {
	return driven.VectorRecord{
		ID:     id,
		Values: values,
		Metadata: driven.RecordMetadata{
			UserID: userID,
			Text:   "text for " + id,
		},
	}
}

func TestQuery_OrdersByScore(t *testing.T) {
	store := NewStore()
	err := store.Upsert(context.Background(), []driven.VectorRecord{
		record("far", "u1", 0, 1),
		record("near", "u1", 1, 0.01),
		record("exact", "u1", 1, 0),
	})
	require.NoError(t, err)

	matches, err := store.Query(context.Background(), []float32{1, 0}, 2, nil)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "exact", matches[0].ID)
	assert.Equal(t, "near", matches[1].ID)
	assert.Greater(t, matches[0].Score, matches[1].Score)
}

func TestQuery_FilterIsolatesUsers(t *testing.T) {
	store := NewStore()
	err := store.Upsert(context.Background(), []driven.VectorRecord{
		record("a-chunk-0", "alice", 1, 0),
		record("b-chunk-0", "bob", 1, 0),
	})
	require.NoError(t, err)

	matches, err := store.Query(context.Background(), []float32{1, 0}, 10, map[string]string{"userId": "alice"})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "a-chunk-0", matches[0].ID)
	assert.Equal(t, "alice", matches[0].Metadata.UserID)
}

func TestUpsert_OverwritesByID(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, []driven.VectorRecord{record("doc-chunk-0", "u1", 1, 0)}))
	require.NoError(t, store.Upsert(ctx, []driven.VectorRecord{record("doc-chunk-0", "u1", 0, 1)}))

	assert.Equal(t, 1, store.Len())

	matches, err := store.Query(ctx, []float32{0, 1}, 1, nil)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.InDelta(t, 1.0, matches[0].Score, 1e-9)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 2}, []float32{2, 4}), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, cosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	assert.Zero(t, cosineSimilarity([]float32{1}, []float32{1, 2}))
	assert.Zero(t, cosineSimilarity([]float32{0, 0}, []float32{1, 2}))
}
