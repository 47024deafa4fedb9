package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"liuren/internal/logging"
)

// Record is one completed divination, flattened for history queries. The full
// chart is not stored; it recomputes bit-identically from the inputs.
type Record struct {
	ID           string
	UserID       string
	Number1      int
	Number2      int
	Gender       string
	QuestionType string
	AskTime      time.Time
	Luogong      int
	Palace       string
	Favorable    bool
	Summary      string
	Reply        string
	CreatedAt    time.Time
}

// ListFilter narrows List results. Zero values mean no constraint.
type ListFilter struct {
	QuestionType string
	Palace       string
	Since        time.Time
}

// Stats aggregates a user's history.
type Stats struct {
	Total          int
	Favorable      int
	ByQuestionType map[string]int
	ByPalace       map[string]int
}

// RecordStore persists divination records.
type RecordStore struct {
	db *DB
}

// NewRecordStore returns a record store over the shared database.
func NewRecordStore(db *DB) *RecordStore {
	return &RecordStore{db: db}
}

// Save inserts a record and returns its generated id.
func (s *RecordStore) Save(ctx context.Context, r Record) (string, error) {
	if r.UserID == "" {
		return "", fmt.Errorf("record store: empty user id")
	}

	id := uuid.NewString()
	_, err := s.db.handle.ExecContext(ctx, `
INSERT INTO records (id, user_id, number1, number2, gender, question_type,
	ask_time, luogong, palace, favorable, summary, reply, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, r.UserID, r.Number1, r.Number2, r.Gender, r.QuestionType,
		r.AskTime.UTC(), r.Luogong, r.Palace, boolToInt(r.Favorable),
		r.Summary, r.Reply, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("record store: save: %w", err)
	}

	logging.StoreDebug("saved record %s for user %s", id, r.UserID)
	return id, nil
}

// List returns a user's records, newest first, with offset pagination.
func (s *RecordStore) List(ctx context.Context, userID string, filter ListFilter, limit, offset int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	query := `
SELECT id, user_id, number1, number2, gender, question_type, ask_time,
	luogong, palace, favorable, summary, reply, created_at
FROM records WHERE user_id = ?`
	args := []interface{}{userID}

	if filter.QuestionType != "" {
		query += " AND question_type = ?"
		args = append(args, filter.QuestionType)
	}
	if filter.Palace != "" {
		query += " AND palace = ?"
		args = append(args, filter.Palace)
	}
	if !filter.Since.IsZero() {
		query += " AND created_at >= ?"
		args = append(args, filter.Since.UTC())
	}
	query += " ORDER BY created_at DESC, id LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := s.db.handle.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("record store: list: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		var favorable int
		if err := rows.Scan(&r.ID, &r.UserID, &r.Number1, &r.Number2, &r.Gender,
			&r.QuestionType, &r.AskTime, &r.Luogong, &r.Palace, &favorable,
			&r.Summary, &r.Reply, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("record store: scan: %w", err)
		}
		r.Favorable = favorable != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

// Stats aggregates the user's full history.
func (s *RecordStore) Stats(ctx context.Context, userID string) (*Stats, error) {
	stats := &Stats{
		ByQuestionType: make(map[string]int),
		ByPalace:       make(map[string]int),
	}

	rows, err := s.db.handle.QueryContext(ctx, `
SELECT question_type, palace, favorable, COUNT(*)
FROM records WHERE user_id = ?
GROUP BY question_type, palace, favorable`, userID)
	if err != nil {
		return nil, fmt.Errorf("record store: stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var qt, palace string
		var favorable, count int
		if err := rows.Scan(&qt, &palace, &favorable, &count); err != nil {
			return nil, fmt.Errorf("record store: stats scan: %w", err)
		}
		stats.Total += count
		stats.ByQuestionType[qt] += count
		stats.ByPalace[palace] += count
		if favorable != 0 {
			stats.Favorable += count
		}
	}
	return stats, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
