package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/spigell/jobmatch/internal/jobboard"
)

const jobColumns = `id, company_id, title, description, requirements, job_type, location, salary,
	employment_type, is_active, application_count, created_at, updated_at`

func scanJob(row rowScanner) (*jobboard.Job, error) {
	var (
		j        jobboard.Job
		category string
		salary   []byte
	)
	err := row.Scan(&j.ID, &j.CompanyID, &j.Title, &j.Description, &j.Requirements, &category,
		&j.Location, &salary, &j.EmploymentType, &j.IsActive, &j.ApplicationCount, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, err
	}

	j.Category = jobboard.Category(category)
	if len(salary) > 0 {
		var s jobboard.SalaryRange
		if err := json.Unmarshal(salary, &s); err != nil {
			return nil, fmt.Errorf("failed to decode salary: %w", err)
		}
		j.Salary = &s
	}
	return &j, nil
}

func marshalSalary(s *jobboard.SalaryRange) ([]byte, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

func (db *DB) CreateJob(ctx context.Context, job *jobboard.Job) (*jobboard.Job, error) {
	if job == nil {
		return nil, fmt.Errorf("job is required")
	}

	salary, err := marshalSalary(job.Salary)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal salary: %w", err)
	}

	id := job.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	j, err := scanJob(db.pool.QueryRow(ctx,
		`INSERT INTO jobs (id, company_id, title, description, requirements, job_type, location, salary, employment_type, is_active, application_count)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 0)
		 RETURNING `+jobColumns,
		id, job.CompanyID, job.Title, job.Description, nonNilStrings(job.Requirements), string(job.Category),
		job.Location, salary, job.EmploymentType, job.IsActive,
	))
	if err != nil {
		return nil, translate(err, "create job")
	}
	return j, nil
}

func (db *DB) GetJob(ctx context.Context, id uuid.UUID) (*jobboard.Job, error) {
	j, err := scanJob(db.pool.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id))
	if err != nil {
		return nil, translate(err, "get job")
	}
	return j, nil
}

func (db *DB) UpdateJob(ctx context.Context, job *jobboard.Job) (*jobboard.Job, error) {
	if job == nil {
		return nil, fmt.Errorf("job is required")
	}

	salary, err := marshalSalary(job.Salary)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal salary: %w", err)
	}

	j, err := scanJob(db.pool.QueryRow(ctx,
		`UPDATE jobs SET
			title = $2,
			description = $3,
			requirements = $4,
			job_type = $5,
			location = $6,
			salary = $7,
			employment_type = $8,
			is_active = $9,
			updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+jobColumns,
		job.ID, job.Title, job.Description, nonNilStrings(job.Requirements), string(job.Category),
		job.Location, salary, job.EmploymentType, job.IsActive,
	))
	if err != nil {
		return nil, translate(err, "update job")
	}
	return j, nil
}

func (db *DB) ListActiveJobs(ctx context.Context) ([]*jobboard.Job, error) {
	return db.listJobs(ctx, "list active jobs",
		`SELECT `+jobColumns+` FROM jobs WHERE is_active ORDER BY created_at DESC`)
}

func (db *DB) ListJobsByCompany(ctx context.Context, companyID uuid.UUID) ([]*jobboard.Job, error) {
	return db.listJobs(ctx, "list jobs by company",
		`SELECT `+jobColumns+` FROM jobs WHERE company_id = $1 ORDER BY created_at DESC`, companyID)
}

func (db *DB) listJobs(ctx context.Context, what, query string, args ...any) ([]*jobboard.Job, error) {
	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, translate(err, what)
	}
	defer rows.Close()

	var out []*jobboard.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, translate(err, what)
		}
		out = append(out, j)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err, what)
	}
	return out, nil
}
