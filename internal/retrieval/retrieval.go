// Package retrieval searches the knowledge snippet corpus that enriches
// explanations. The corpus is small (hundreds of passages), so search scans
// and scores in process: keyword overlap first, optional embedding rerank on
// top. Retrieval is an enrichment; callers degrade to no snippets when it
// fails or times out.
package retrieval

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"liuren/internal/embedding"
	"liuren/internal/logging"
	"liuren/internal/store"
)

// Hit is one scored snippet.
type Hit struct {
	Snippet store.Snippet
	Score   float64
}

// Searcher finds snippets relevant to a set of keywords.
type Searcher interface {
	Search(ctx context.Context, keywords []string, topK int) ([]Hit, error)
}

// SQLiteSearcher scores snippets from the shared database.
type SQLiteSearcher struct {
	db     *store.DB
	engine embedding.Engine
}

// NewSQLiteSearcher returns a searcher. A nil engine means keyword order is
// final; pass one to rerank the keyword hits by semantic similarity.
func NewSQLiteSearcher(db *store.DB, engine embedding.Engine) (*SQLiteSearcher, error) {
	if db == nil {
		return nil, fmt.Errorf("retrieval: nil database")
	}
	if engine == nil {
		engine = embedding.NoopEngine{}
	}
	return &SQLiteSearcher{db: db, engine: engine}, nil
}

// Search implements Searcher. The context deadline is honored between phases;
// a timed-out search returns the context error and the caller treats the
// result as absent.
func (s *SQLiteSearcher) Search(ctx context.Context, keywords []string, topK int) ([]Hit, error) {
	if topK <= 0 {
		topK = 3
	}
	if len(keywords) == 0 {
		return nil, nil
	}

	timer := logging.StartTimer(logging.CategoryRetrieval, "snippet search")
	defer timer.StopWithThreshold(time.Second)

	rows, err := s.db.Handle().QueryContext(ctx,
		"SELECT id, topic, keywords, content FROM snippets")
	if err != nil {
		return nil, fmt.Errorf("retrieval: query snippets: %w", err)
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var sn store.Snippet
		if err := rows.Scan(&sn.ID, &sn.Topic, &sn.Keywords, &sn.Content); err != nil {
			return nil, fmt.Errorf("retrieval: scan snippet: %w", err)
		}
		if score := keywordScore(sn, keywords); score > 0 {
			hits = append(hits, Hit{Snippet: sn, Score: score})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("retrieval: iterate snippets: %w", err)
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Snippet.ID < hits[j].Snippet.ID
	})
	if len(hits) > topK {
		hits = hits[:topK]
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if reranked, err := s.rerank(ctx, keywords, hits); err == nil {
		hits = reranked
	} else {
		// Rerank is a refinement; keyword order stands when it fails.
		logging.Retrieval("rerank skipped: %v", err)
	}

	logging.Retrieval("search keywords=%v hits=%d", keywords, len(hits))
	return hits, nil
}

// keywordScore counts keyword occurrences, weighting the curated keyword list
// over content matches.
func keywordScore(sn store.Snippet, keywords []string) float64 {
	var score float64
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(sn.Keywords, kw) {
			score += 2
		}
		if strings.Contains(sn.Content, kw) {
			score++
		}
	}
	return score
}

// rerank reorders hits by cosine similarity between the query and snippet
// contents. A no-op engine returns nil vectors, which keeps keyword order.
func (s *SQLiteSearcher) rerank(ctx context.Context, keywords []string, hits []Hit) ([]Hit, error) {
	if len(hits) < 2 {
		return hits, nil
	}

	query := strings.Join(keywords, " ")
	queryVec, err := s.engine.Embed(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(queryVec) == 0 {
		return hits, nil
	}

	texts := make([]string, len(hits))
	for i, h := range hits {
		texts[i] = h.Snippet.Content
	}
	vecs, err := s.engine.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(hits) {
		return nil, fmt.Errorf("embedding count mismatch: %d vectors for %d hits", len(vecs), len(hits))
	}

	reranked := make([]Hit, len(hits))
	copy(reranked, hits)
	for i := range reranked {
		reranked[i].Score = embedding.CosineSimilarity(queryVec, vecs[i])
	}
	sort.Slice(reranked, func(i, j int) bool {
		if reranked[i].Score != reranked[j].Score {
			return reranked[i].Score > reranked[j].Score
		}
		return reranked[i].Snippet.ID < reranked[j].Snippet.ID
	})
	return reranked, nil
}
