package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Profile is the per-user context enrichment may attach to an explanation.
type Profile struct {
	UserID      string
	Gender      string
	BirthYear   int
	Preferences string
	UpdatedAt   time.Time
}

// ProfileStore reads and writes user profiles.
type ProfileStore struct {
	db *DB
}

// NewProfileStore returns a profile store over the shared database.
func NewProfileStore(db *DB) *ProfileStore {
	return &ProfileStore{db: db}
}

// Get returns the profile for userID. The bool reports existence; a missing
// profile is a normal condition, not an error.
func (s *ProfileStore) Get(ctx context.Context, userID string) (*Profile, bool, error) {
	var p Profile
	err := s.db.handle.QueryRowContext(ctx, `
SELECT user_id, gender, birth_year, preferences, updated_at
FROM profiles WHERE user_id = ?`, userID).
		Scan(&p.UserID, &p.Gender, &p.BirthYear, &p.Preferences, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("profile store: get: %w", err)
	}
	return &p, true, nil
}

// Upsert creates or replaces the profile.
func (s *ProfileStore) Upsert(ctx context.Context, p Profile) error {
	if p.UserID == "" {
		return fmt.Errorf("profile store: empty user id")
	}
	_, err := s.db.handle.ExecContext(ctx, `
INSERT INTO profiles (user_id, gender, birth_year, preferences, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(user_id) DO UPDATE SET
	gender = excluded.gender,
	birth_year = excluded.birth_year,
	preferences = excluded.preferences,
	updated_at = excluded.updated_at`,
		p.UserID, p.Gender, p.BirthYear, p.Preferences, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("profile store: upsert: %w", err)
	}
	return nil
}
