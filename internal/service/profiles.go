package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/spigell/jobmatch/internal/jobboard"
	"github.com/spigell/jobmatch/internal/logger"
)

func (b *Board) CurrentProfile(ctx context.Context, userID uuid.UUID) (*jobboard.Profile, error) {
	return b.store.GetProfileByUser(ctx, userID)
}

// UpsertProfile creates or replaces the user's profile and schedules scoring. Existing scores stay
// in place until the new run finishes.
func (b *Board) UpsertProfile(ctx context.Context, userID uuid.UUID, req ProfileRequest) (*jobboard.Profile, error) {
	if err := b.check(req); err != nil {
		return nil, err
	}

	in := req.profile()
	in.UserID = userID

	profile, err := b.store.UpsertProfile(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}

	b.scheduler.ProfileUpserted(profile.ID)
	b.logger.Info("profile saved", logger.ProfileField(profile.ID), logger.UserField(userID))
	return profile, nil
}

// GetProfile returns a candidate profile. Only the owner and company accounts may view it.
func (b *Board) GetProfile(ctx context.Context, userID, profileID uuid.UUID) (*jobboard.Profile, error) {
	profile, err := b.store.GetProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if profile.UserID == userID {
		return profile, nil
	}
	if _, err := b.ownCompany(ctx, userID); err != nil {
		if errors.Is(err, jobboard.ErrCompanyRequired) {
			return nil, jobboard.ErrNotAuthorized
		}
		return nil, err
	}
	return profile, nil
}

func (b *Board) ToggleAutoApply(ctx context.Context, userID uuid.UUID, req AutoApplyRequest) (*jobboard.Profile, error) {
	if err := b.check(req); err != nil {
		return nil, err
	}
	prefs, err := req.preferences()
	if err != nil {
		return nil, err
	}

	profile, err := b.store.GetProfileByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, jobboard.ErrNotFound) {
			return nil, jobboard.ErrProfileRequired
		}
		return nil, err
	}

	updated, err := b.store.SetAutoApply(ctx, profile.ID, req.Enabled, prefs)
	if err != nil {
		return nil, fmt.Errorf("save auto-apply settings: %w", err)
	}
	b.logger.Info("auto-apply settings changed", logger.ProfileField(profile.ID), logger.UserField(userID))
	return updated, nil
}
