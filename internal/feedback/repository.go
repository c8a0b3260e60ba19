package feedback

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shapedtime/releasegrade/internal/quality"
)

// Repository handles feedback database operations
type Repository struct {
	db *DB
}

// NewRepository creates a new feedback repository
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

const entryColumns = `id, title, description, size_bytes, seeders, leechers, uploader,
	info_hash, rating, predicted_score, predicted_category, created_at`

// Create stores a new entry and fills in its ID and CreatedAt
func (r *Repository) Create(ctx context.Context, e *Entry) error {
	if _, ok := quality.ParseCategory(string(e.Rating)); !ok {
		return ErrInvalidRating
	}

	c := e.Candidate.Normalized()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO feedback (title, description, size_bytes, seeders, leechers, uploader,
			info_hash, rating, predicted_score, predicted_category, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`,
		c.Title, c.Description, c.SizeBytes, c.Seeders, c.Leechers, c.Uploader,
		nullString(e.InfoHash), string(e.Rating), e.PredictedScore,
		nullString(string(e.PredictedCategory)), e.CreatedAt,
	).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("failed to create feedback: %w", err)
	}
	return nil
}

// GetByID retrieves a single entry
func (r *Repository) GetByID(ctx context.Context, id int64) (*Entry, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM feedback WHERE id = $1`, id)

	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrFeedbackNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feedback: %w", err)
	}
	return e, nil
}

// List returns entries newest first. A limit of 0 returns everything.
func (r *Repository) List(ctx context.Context, limit, offset int) ([]*Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM feedback ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1 OFFSET $2`
		args = append(args, limit, offset)
	}
	return r.query(ctx, query, args...)
}

// All returns every entry in insertion order
func (r *Repository) All(ctx context.Context) ([]*Entry, error) {
	return r.query(ctx, `SELECT `+entryColumns+` FROM feedback ORDER BY id`)
}

// Count returns the number of stored entries
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM feedback`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count feedback: %w", err)
	}
	return n, nil
}

// Stats returns the total and per-rating entry counts
func (r *Repository) Stats(ctx context.Context) (*Stats, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT rating, COUNT(*) FROM feedback GROUP BY rating`)
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback stats: %w", err)
	}
	defer rows.Close()

	stats := &Stats{ByRating: make(map[quality.Category]int64, len(quality.Categories))}
	for _, c := range quality.Categories {
		stats.ByRating[c] = 0
	}
	for rows.Next() {
		var rating string
		var n int64
		if err := rows.Scan(&rating, &n); err != nil {
			return nil, fmt.Errorf("failed to scan feedback stats: %w", err)
		}
		stats.ByRating[quality.Category(rating)] = n
		stats.Total += n
	}
	return stats, rows.Err()
}

// Delete removes an entry
func (r *Repository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM feedback WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete feedback: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return ErrFeedbackNotFound
	}
	return nil
}

func (r *Repository) query(ctx context.Context, query string, args ...any) ([]*Entry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (*Entry, error) {
	e := &Entry{}
	var (
		infoHash, category sql.NullString
		score              sql.NullFloat64
		rating             string
	)

	err := s.Scan(
		&e.ID, &e.Candidate.Title, &e.Candidate.Description, &e.Candidate.SizeBytes,
		&e.Candidate.Seeders, &e.Candidate.Leechers, &e.Candidate.Uploader,
		&infoHash, &rating, &score, &category, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	e.InfoHash = infoHash.String
	e.Rating = quality.Category(rating)
	e.PredictedCategory = quality.Category(category.String)
	if score.Valid {
		v := score.Float64
		e.PredictedScore = &v
	}
	return e, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
