package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spigell/jobmatch/internal/jobboard"
)

const applicationColumns = `id, job_id, profile_id, status, cover_letter, is_auto_applied, ai_match_score, applied_at, updated_at`

func scanApplication(row rowScanner) (*jobboard.Application, error) {
	var (
		a      jobboard.Application
		status string
	)
	err := row.Scan(&a.ID, &a.JobID, &a.ProfileID, &status, &a.CoverLetter, &a.IsAutoApplied,
		&a.AIMatchScore, &a.AppliedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.Status = jobboard.ApplicationStatus(status)
	return &a, nil
}

// CreateApplication inserts the application and bumps the job counter in one transaction. The
// unique (profile_id, job_id) key turns a concurrent duplicate into a no-op insert.
func (db *DB) CreateApplication(ctx context.Context, app *jobboard.Application) (*jobboard.Application, error) {
	if app == nil {
		return nil, fmt.Errorf("application is required")
	}

	id := app.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	status := app.Status
	if status == "" {
		status = jobboard.StatusPending
	}

	var created *jobboard.Application
	err := pgx.BeginFunc(ctx, db.pool, func(tx pgx.Tx) error {
		a, err := scanApplication(tx.QueryRow(ctx,
			`INSERT INTO applications (id, job_id, profile_id, status, cover_letter, is_auto_applied, ai_match_score)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 ON CONFLICT (profile_id, job_id) DO NOTHING
			 RETURNING `+applicationColumns,
			id, app.JobID, app.ProfileID, string(status), app.CoverLetter, app.IsAutoApplied, app.AIMatchScore,
		))
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("application for job %s: %w", app.JobID, jobboard.ErrAlreadyExists)
		}
		if err != nil {
			return translate(err, "create application")
		}

		if _, err := tx.Exec(ctx,
			`UPDATE jobs SET application_count = application_count + 1 WHERE id = $1`,
			app.JobID,
		); err != nil {
			return translate(err, "increment application count")
		}

		created = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (db *DB) GetApplication(ctx context.Context, id uuid.UUID) (*jobboard.Application, error) {
	a, err := scanApplication(db.pool.QueryRow(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE id = $1`, id))
	if err != nil {
		return nil, translate(err, "get application")
	}
	return a, nil
}

func (db *DB) ListApplicationsByProfile(ctx context.Context, profileID uuid.UUID) ([]*jobboard.Application, error) {
	return db.listApplications(ctx, "list applications by profile",
		`SELECT `+applicationColumns+` FROM applications WHERE profile_id = $1 ORDER BY applied_at DESC`, profileID)
}

func (db *DB) ListApplicationsByJob(ctx context.Context, jobID uuid.UUID) ([]*jobboard.Application, error) {
	return db.listApplications(ctx, "list applications by job",
		`SELECT `+applicationColumns+` FROM applications WHERE job_id = $1 ORDER BY applied_at DESC`, jobID)
}

func (db *DB) listApplications(ctx context.Context, what, query string, args ...any) ([]*jobboard.Application, error) {
	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, translate(err, what)
	}
	defer rows.Close()

	var out []*jobboard.Application
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, translate(err, what)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err, what)
	}
	return out, nil
}

// UpdateApplicationStatus is a compare-and-set on the status column.
func (db *DB) UpdateApplicationStatus(ctx context.Context, id uuid.UUID, from, to jobboard.ApplicationStatus) (*jobboard.Application, error) {
	if !from.CanTransition(to) {
		return nil, fmt.Errorf("application %s cannot move from %s to %s: %w", id, from, to, jobboard.ErrInvalidTransition)
	}

	a, err := scanApplication(db.pool.QueryRow(ctx,
		`UPDATE applications SET status = $3, updated_at = NOW()
		 WHERE id = $1 AND status = $2
		 RETURNING `+applicationColumns,
		id, string(from), string(to),
	))
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, translate(err, "update application status")
	}

	current, getErr := db.GetApplication(ctx, id)
	if getErr != nil {
		return nil, getErr
	}
	return nil, fmt.Errorf("application %s is %s, cannot move from %s to %s: %w", id, current.Status, from, to, jobboard.ErrInvalidTransition)
}
