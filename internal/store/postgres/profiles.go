package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/spigell/jobmatch/internal/jobboard"
)

const profileColumns = `id, user_id, name, email, phone, location, bio, experience, education, skills, resume_url,
	score_frontend, score_backend, score_fullstack, score_data_science, score_devops,
	score_product_management, score_design, score_marketing,
	scoring_status, scoring_error, last_scored_at,
	auto_apply_enabled, auto_apply_job_types, auto_apply_min_score, auto_apply_locations,
	created_at, updated_at`

func scanProfile(row rowScanner) (*jobboard.Profile, error) {
	var (
		p          jobboard.Profile
		experience []byte
		education  []byte
		status     string
		jobTypes   []string
	)
	err := row.Scan(
		&p.ID, &p.UserID, &p.Name, &p.Email, &p.Phone, &p.Location, &p.Bio,
		&experience, &education, &p.Skills, &p.ResumeURL,
		&p.Scores.Frontend, &p.Scores.Backend, &p.Scores.Fullstack, &p.Scores.DataScience, &p.Scores.DevOps,
		&p.Scores.ProductManagement, &p.Scores.Design, &p.Scores.Marketing,
		&status, &p.ScoringError, &p.LastScoredAt,
		&p.AutoApplyEnabled, &jobTypes, &p.AutoApply.MinScore, &p.AutoApply.Locations,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(experience, &p.Experience); err != nil {
		return nil, fmt.Errorf("failed to decode experience: %w", err)
	}
	if err := json.Unmarshal(education, &p.Education); err != nil {
		return nil, fmt.Errorf("failed to decode education: %w", err)
	}
	p.ScoringStatus = jobboard.ScoringStatus(status)
	p.AutoApply.JobTypes = stringsToCategories(jobTypes)

	return &p, nil
}

func (db *DB) GetProfile(ctx context.Context, id uuid.UUID) (*jobboard.Profile, error) {
	p, err := scanProfile(db.pool.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id))
	if err != nil {
		return nil, translate(err, "get profile")
	}
	return p, nil
}

func (db *DB) GetProfileByUser(ctx context.Context, userID uuid.UUID) (*jobboard.Profile, error) {
	p, err := scanProfile(db.pool.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE user_id = $1`, userID))
	if err != nil {
		return nil, translate(err, "get profile by user")
	}
	return p, nil
}

// UpsertProfile inserts a fresh profile with a zero score vector or, when the user already has
// one, replaces only the fields the user edits.
func (db *DB) UpsertProfile(ctx context.Context, profile *jobboard.Profile) (*jobboard.Profile, error) {
	if profile == nil {
		return nil, fmt.Errorf("profile is required")
	}

	experience, err := json.Marshal(nonNilExperience(profile.Experience))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal experience: %w", err)
	}
	education, err := json.Marshal(nonNilEducation(profile.Education))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal education: %w", err)
	}

	id := profile.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	p, err := scanProfile(db.pool.QueryRow(ctx,
		`INSERT INTO profiles (id, user_id, name, email, phone, location, bio, experience, education, skills, resume_url, scoring_status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 'pending')
		 ON CONFLICT (user_id) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			phone = EXCLUDED.phone,
			location = EXCLUDED.location,
			bio = EXCLUDED.bio,
			experience = EXCLUDED.experience,
			education = EXCLUDED.education,
			skills = EXCLUDED.skills,
			resume_url = EXCLUDED.resume_url,
			scoring_status = 'pending',
			scoring_error = '',
			updated_at = NOW()
		 RETURNING `+profileColumns,
		id, profile.UserID, profile.Name, profile.Email, profile.Phone, profile.Location, profile.Bio,
		experience, education, nonNilStrings(profile.Skills), profile.ResumeURL,
	))
	if err != nil {
		return nil, translate(err, "upsert profile")
	}
	return p, nil
}

func (db *DB) SetAutoApply(ctx context.Context, id uuid.UUID, enabled bool, prefs jobboard.AutoApplyPreferences) (*jobboard.Profile, error) {
	p, err := scanProfile(db.pool.QueryRow(ctx,
		`UPDATE profiles SET
			auto_apply_enabled = $2,
			auto_apply_job_types = $3,
			auto_apply_min_score = $4,
			auto_apply_locations = $5,
			updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+profileColumns,
		id, enabled, categoriesToStrings(prefs.JobTypes), prefs.MinScore, nonNilStrings(prefs.Locations),
	))
	if err != nil {
		return nil, translate(err, "set auto-apply")
	}
	return p, nil
}

func (db *DB) UpdateProfileScores(ctx context.Context, id uuid.UUID, scores jobboard.ScoreVector, scoredAt time.Time) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE profiles SET
			score_frontend = $2,
			score_backend = $3,
			score_fullstack = $4,
			score_data_science = $5,
			score_devops = $6,
			score_product_management = $7,
			score_design = $8,
			score_marketing = $9,
			scoring_status = 'scored',
			scoring_error = '',
			last_scored_at = $10,
			updated_at = NOW()
		 WHERE id = $1`,
		id, scores.Frontend, scores.Backend, scores.Fullstack, scores.DataScience, scores.DevOps,
		scores.ProductManagement, scores.Design, scores.Marketing, scoredAt.UTC(),
	)
	if err != nil {
		return translate(err, "update profile scores")
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("profile %s: %w", id, jobboard.ErrNotFound)
	}
	return nil
}

func (db *DB) UpdateScoringStatus(ctx context.Context, id uuid.UUID, status jobboard.ScoringStatus, message string) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE profiles SET scoring_status = $2, scoring_error = $3 WHERE id = $1`,
		id, string(status), message,
	)
	if err != nil {
		return translate(err, "update scoring status")
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("profile %s: %w", id, jobboard.ErrNotFound)
	}
	return nil
}

func (db *DB) ListAutoApplyProfiles(ctx context.Context) ([]*jobboard.Profile, error) {
	return db.listProfiles(ctx, "list auto-apply profiles",
		`SELECT `+profileColumns+` FROM profiles WHERE auto_apply_enabled ORDER BY created_at`)
}

func (db *DB) ListProfilesByScoringStatus(ctx context.Context, statuses ...jobboard.ScoringStatus) ([]*jobboard.Profile, error) {
	values := make([]string, 0, len(statuses))
	for _, st := range statuses {
		values = append(values, string(st))
	}
	return db.listProfiles(ctx, "list profiles by scoring status",
		`SELECT `+profileColumns+` FROM profiles WHERE scoring_status = ANY($1) ORDER BY created_at`, values)
}

func (db *DB) listProfiles(ctx context.Context, what, query string, args ...any) ([]*jobboard.Profile, error) {
	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, translate(err, what)
	}
	defer rows.Close()

	var out []*jobboard.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, translate(err, what)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err, what)
	}
	return out, nil
}

func nonNilExperience(in []jobboard.Experience) []jobboard.Experience {
	if in == nil {
		return []jobboard.Experience{}
	}
	return in
}

func nonNilEducation(in []jobboard.Education) []jobboard.Education {
	if in == nil {
		return []jobboard.Education{}
	}
	return in
}
