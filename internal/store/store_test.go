package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleRecord(userID, questionType string) Record {
	return Record{
		UserID:       userID,
		Number1:      3,
		Number2:      5,
		Gender:       "男",
		QuestionType: questionType,
		AskTime:      time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC),
		Luogong:      1,
		Palace:       "大安",
		Favorable:    true,
		Summary:      "落宫大安",
		Reply:        "整体运势较好",
	}
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	_, err := Open("")
	assert.Error(t, err)
}

func TestRecordSaveAndList(t *testing.T) {
	db := testDB(t)
	records := NewRecordStore(db)
	ctx := context.Background()

	id1, err := records.Save(ctx, sampleRecord("u1", "事业"))
	require.NoError(t, err)
	id2, err := records.Save(ctx, sampleRecord("u1", "财运"))
	require.NoError(t, err)
	_, err = records.Save(ctx, sampleRecord("u2", "事业"))
	require.NoError(t, err)

	assert.NotEqual(t, id1, id2)

	got, err := records.List(ctx, "u1", ListFilter{}, 10, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "u1", got[0].UserID)
	assert.Equal(t, "大安", got[0].Palace)
	assert.True(t, got[0].Favorable)
	assert.Equal(t, 10, got[0].AskTime.UTC().Hour())
}

func TestRecordListFilterAndPagination(t *testing.T) {
	db := testDB(t)
	records := NewRecordStore(db)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		qt := "事业"
		if i%2 == 1 {
			qt = "感情"
		}
		_, err := records.Save(ctx, sampleRecord("u1", qt))
		require.NoError(t, err)
	}

	t.Run("question type filter", func(t *testing.T) {
		got, err := records.List(ctx, "u1", ListFilter{QuestionType: "感情"}, 10, 0)
		require.NoError(t, err)
		assert.Len(t, got, 2)
		for _, r := range got {
			assert.Equal(t, "感情", r.QuestionType)
		}
	})

	t.Run("pagination", func(t *testing.T) {
		page1, err := records.List(ctx, "u1", ListFilter{}, 2, 0)
		require.NoError(t, err)
		page2, err := records.List(ctx, "u1", ListFilter{}, 2, 2)
		require.NoError(t, err)
		require.Len(t, page1, 2)
		require.Len(t, page2, 2)
		assert.NotEqual(t, page1[0].ID, page2[0].ID)
	})

	t.Run("unknown user empty", func(t *testing.T) {
		got, err := records.List(ctx, "ghost", ListFilter{}, 10, 0)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestRecordStats(t *testing.T) {
	db := testDB(t)
	records := NewRecordStore(db)
	ctx := context.Background()

	_, err := records.Save(ctx, sampleRecord("u1", "事业"))
	require.NoError(t, err)
	unfavorable := sampleRecord("u1", "事业")
	unfavorable.Palace = "空亡"
	unfavorable.Favorable = false
	_, err = records.Save(ctx, unfavorable)
	require.NoError(t, err)

	stats, err := records.Stats(ctx, "u1")
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Favorable)
	assert.Equal(t, 2, stats.ByQuestionType["事业"])
	assert.Equal(t, 1, stats.ByPalace["大安"])
	assert.Equal(t, 1, stats.ByPalace["空亡"])
}

func TestRecordSaveRequiresUser(t *testing.T) {
	db := testDB(t)
	records := NewRecordStore(db)

	r := sampleRecord("", "事业")
	_, err := records.Save(context.Background(), r)
	assert.Error(t, err)
}

func TestProfileStore(t *testing.T) {
	db := testDB(t)
	profiles := NewProfileStore(db)
	ctx := context.Background()

	t.Run("missing profile is not an error", func(t *testing.T) {
		p, ok, err := profiles.Get(ctx, "nobody")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, p)
	})

	t.Run("upsert then get", func(t *testing.T) {
		require.NoError(t, profiles.Upsert(ctx, Profile{
			UserID: "u1", Gender: "女", BirthYear: 1995, Preferences: "偏好简短解读",
		}))

		p, ok, err := profiles.Get(ctx, "u1")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "女", p.Gender)
		assert.Equal(t, 1995, p.BirthYear)

		require.NoError(t, profiles.Upsert(ctx, Profile{UserID: "u1", Gender: "女", BirthYear: 1996}))
		p, ok, err = profiles.Get(ctx, "u1")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, 1996, p.BirthYear)
	})
}

func TestSeedSnippets(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	require.NoError(t, db.SeedSnippets(ctx, []Snippet{
		{Topic: "palace", Keywords: "大安 平安", Content: "大安主静，属木。"},
		{Topic: "palace", Keywords: "空亡 落空", Content: "空亡主虚，属土。"},
	}))

	var count int
	require.NoError(t, db.Handle().QueryRowContext(ctx, "SELECT COUNT(*) FROM snippets").Scan(&count))
	assert.Equal(t, 2, count)

	// Re-seeding replaces, not appends.
	require.NoError(t, db.SeedSnippets(ctx, []Snippet{
		{Topic: "beast", Keywords: "青龙", Content: "青龙主喜事。"},
	}))
	require.NoError(t, db.Handle().QueryRowContext(ctx, "SELECT COUNT(*) FROM snippets").Scan(&count))
	assert.Equal(t, 1, count)
}
