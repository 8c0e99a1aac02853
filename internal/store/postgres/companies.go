package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/spigell/jobmatch/internal/jobboard"
)

const companyColumns = `id, user_id, name, description, industry, size, location, website, logo_url, created_at, updated_at`

func scanCompany(row rowScanner) (*jobboard.Company, error) {
	var c jobboard.Company
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Description, &c.Industry, &c.Size,
		&c.Location, &c.Website, &c.LogoURL, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (db *DB) GetCompany(ctx context.Context, id uuid.UUID) (*jobboard.Company, error) {
	c, err := scanCompany(db.pool.QueryRow(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE id = $1`, id))
	if err != nil {
		return nil, translate(err, "get company")
	}
	return c, nil
}

func (db *DB) GetCompanyByUser(ctx context.Context, userID uuid.UUID) (*jobboard.Company, error) {
	c, err := scanCompany(db.pool.QueryRow(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE user_id = $1`, userID))
	if err != nil {
		return nil, translate(err, "get company by user")
	}
	return c, nil
}

func (db *DB) UpsertCompany(ctx context.Context, company *jobboard.Company) (*jobboard.Company, error) {
	if company == nil {
		return nil, fmt.Errorf("company is required")
	}

	id := company.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	c, err := scanCompany(db.pool.QueryRow(ctx,
		`INSERT INTO companies (id, user_id, name, description, industry, size, location, website, logo_url)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (user_id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			industry = EXCLUDED.industry,
			size = EXCLUDED.size,
			location = EXCLUDED.location,
			website = EXCLUDED.website,
			logo_url = EXCLUDED.logo_url,
			updated_at = NOW()
		 RETURNING `+companyColumns,
		id, company.UserID, company.Name, company.Description, company.Industry, company.Size,
		company.Location, company.Website, company.LogoURL,
	))
	if err != nil {
		return nil, translate(err, "upsert company")
	}
	return c, nil
}

func (db *DB) ListCompanies(ctx context.Context) ([]*jobboard.Company, error) {
	rows, err := db.pool.Query(ctx, `SELECT `+companyColumns+` FROM companies ORDER BY name`)
	if err != nil {
		return nil, translate(err, "list companies")
	}
	defer rows.Close()

	var out []*jobboard.Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, translate(err, "list companies")
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err, "list companies")
	}
	return out, nil
}
