package retrieval

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liuren/internal/store"
)

func seededDB(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.SeedSnippets(context.Background(), []store.Snippet{
		{Topic: "palace", Keywords: "大安 平安 吉利", Content: "大安主静，属木，万事平稳。"},
		{Topic: "palace", Keywords: "空亡 落空", Content: "空亡主虚，属土，谋事难成。"},
		{Topic: "beast", Keywords: "青龙 喜事", Content: "青龙临宫，主喜庆之事。"},
		{Topic: "kin", Keywords: "官鬼 事业 压力", Content: "官鬼持世，事业上有压力也有机会。"},
	}))
	return db
}

func TestSearchKeywordScoring(t *testing.T) {
	searcher, err := NewSQLiteSearcher(seededDB(t), nil)
	require.NoError(t, err)

	hits, err := searcher.Search(context.Background(), []string{"大安", "事业"}, 3)
	require.NoError(t, err)
	require.NotEmpty(t, hits)

	// Curated keyword match outranks content-only match.
	assert.Equal(t, "大安 平安 吉利", hits[0].Snippet.Keywords)
	for _, h := range hits {
		assert.Positive(t, h.Score)
	}
}

func TestSearchTopK(t *testing.T) {
	searcher, err := NewSQLiteSearcher(seededDB(t), nil)
	require.NoError(t, err)

	hits, err := searcher.Search(context.Background(), []string{"主"}, 2)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(hits), 2)
}

func TestSearchNoKeywords(t *testing.T) {
	searcher, err := NewSQLiteSearcher(seededDB(t), nil)
	require.NoError(t, err)

	hits, err := searcher.Search(context.Background(), nil, 3)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSearchNoMatches(t *testing.T) {
	searcher, err := NewSQLiteSearcher(seededDB(t), nil)
	require.NoError(t, err)

	hits, err := searcher.Search(context.Background(), []string{"占星"}, 3)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSearchHonorsDeadline(t *testing.T) {
	searcher, err := NewSQLiteSearcher(seededDB(t), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	time.Sleep(time.Millisecond)

	_, err = searcher.Search(ctx, []string{"大安"}, 3)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewSQLiteSearcherRejectsNilDB(t *testing.T) {
	_, err := NewSQLiteSearcher(nil, nil)
	assert.Error(t, err)
}
