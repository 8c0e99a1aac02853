package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/spigell/jobmatch/internal/jobboard"
)

const recommendationColumns = `id, profile_id, job_id, score, reasons, is_viewed, created_at`

func scanRecommendation(row rowScanner) (*jobboard.Recommendation, error) {
	var r jobboard.Recommendation
	if err := row.Scan(&r.ID, &r.ProfileID, &r.JobID, &r.Score, &r.Reasons, &r.IsViewed, &r.CreatedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

func (db *DB) CreateRecommendation(ctx context.Context, rec *jobboard.Recommendation) (bool, error) {
	if rec == nil {
		return false, fmt.Errorf("recommendation is required")
	}

	id := rec.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	tag, err := db.pool.Exec(ctx,
		`INSERT INTO recommendations (id, profile_id, job_id, score, reasons)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (profile_id, job_id) DO NOTHING`,
		id, rec.ProfileID, rec.JobID, rec.Score, nonNilStrings(rec.Reasons),
	)
	if err != nil {
		return false, translate(err, "create recommendation")
	}
	return tag.RowsAffected() == 1, nil
}

func (db *DB) GetRecommendation(ctx context.Context, id uuid.UUID) (*jobboard.Recommendation, error) {
	r, err := scanRecommendation(db.pool.QueryRow(ctx,
		`SELECT `+recommendationColumns+` FROM recommendations WHERE id = $1`, id))
	if err != nil {
		return nil, translate(err, "get recommendation")
	}
	return r, nil
}

func (db *DB) ListRecommendationsByProfile(ctx context.Context, profileID uuid.UUID, limit int) ([]*jobboard.Recommendation, error) {
	query := `SELECT ` + recommendationColumns + ` FROM recommendations WHERE profile_id = $1 ORDER BY created_at DESC`
	args := []any{profileID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, translate(err, "list recommendations")
	}
	defer rows.Close()

	var out []*jobboard.Recommendation
	for rows.Next() {
		r, err := scanRecommendation(rows)
		if err != nil {
			return nil, translate(err, "list recommendations")
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err, "list recommendations")
	}
	return out, nil
}

func (db *DB) MarkRecommendationViewed(ctx context.Context, id uuid.UUID) error {
	tag, err := db.pool.Exec(ctx, `UPDATE recommendations SET is_viewed = TRUE WHERE id = $1`, id)
	if err != nil {
		return translate(err, "mark recommendation viewed")
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("recommendation %s: %w", id, jobboard.ErrNotFound)
	}
	return nil
}
