package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/spigell/jobmatch/internal/jobboard"
	"github.com/spigell/jobmatch/internal/logger"
)

func (b *Board) CurrentCompany(ctx context.Context, userID uuid.UUID) (*jobboard.Company, error) {
	return b.store.GetCompanyByUser(ctx, userID)
}

func (b *Board) UpsertCompany(ctx context.Context, userID uuid.UUID, req CompanyRequest) (*jobboard.Company, error) {
	if err := b.check(req); err != nil {
		return nil, err
	}

	company, err := b.store.UpsertCompany(ctx, &jobboard.Company{
		UserID:      userID,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Industry:    req.Industry,
		Size:        req.Size,
		Location:    strings.TrimSpace(req.Location),
		Website:     req.Website,
		LogoURL:     req.LogoURL,
	})
	if err != nil {
		return nil, fmt.Errorf("save company: %w", err)
	}
	b.logger.Info("company saved", logger.CompanyField(company.ID), logger.UserField(userID))
	return company, nil
}

func (b *Board) ListCompanies(ctx context.Context) ([]*jobboard.Company, error) {
	return b.store.ListCompanies(ctx)
}

func (b *Board) GetCompany(ctx context.Context, id uuid.UUID) (*jobboard.Company, error) {
	return b.store.GetCompany(ctx, id)
}
