package cmd

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/jobmatch/internal/jobboard"
	"github.com/spigell/jobmatch/internal/logger"
	"github.com/spigell/jobmatch/internal/pipeline"
	"github.com/spigell/jobmatch/internal/store"
	"github.com/spigell/jobmatch/internal/utils"
)

var scoreCmd = &cobra.Command{
	Use:   "score [profile-id...]",
	Short: "Score profiles now and refresh their recommendations",
	RunE: func(cmd *cobra.Command, args []string) error {
		failed, _ := cmd.Flags().GetBool("failed")
		pending, _ := cmd.Flags().GetBool("pending")
		return score(cmd.Context(), args, failed, pending)
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().Bool("failed", false, "also score every profile whose last scoring attempt failed")
	scoreCmd.Flags().Bool("pending", false, "also score every profile that was never scored since its last edit")
}

func score(ctx context.Context, args []string, failed, pending bool) error {
	log, config, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := openStore(ctx, config.Storage, log)
	if err != nil {
		return err
	}
	defer st.Close()

	ids, err := profilesToScore(ctx, st, args, failed, pending)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		log.Info("exiting", zap.String("reason", "no profiles to score"))
		return nil
	}

	scorer, err := newScorer(ctx, config.AI, log)
	if err != nil {
		return err
	}
	p := pipeline.New(st, scorer, log)

	var failures int
	for _, id := range ids {
		res := p.ScoreProfile(ctx, id)
		if res.Outcome == pipeline.OutcomeScored {
			continue
		}
		failures++
		if status, ok := res.Outcome.ScoringStatus(); ok {
			message := utils.TruncateForLog(res.Err.Error(), 500)
			if err := st.UpdateScoringStatus(ctx, id, status, message); err != nil {
				log.Error("failed to record scoring status", logger.ProfileField(id), zap.Error(err))
			}
		}
	}

	log.Info("scoring finished", zap.Int("profiles", len(ids)), zap.Int("failed", failures))
	if failures > 0 {
		return fmt.Errorf("%d of %d profiles failed to score", failures, len(ids))
	}
	return nil
}

func profilesToScore(ctx context.Context, st store.Profiles, args []string, failed, pending bool) ([]uuid.UUID, error) {
	seen := map[uuid.UUID]bool{}
	var ids []uuid.UUID
	add := func(id uuid.UUID) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	for _, arg := range args {
		id, err := uuid.Parse(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid profile id %q: %w", arg, err)
		}
		add(id)
	}

	var statuses []jobboard.ScoringStatus
	if failed {
		statuses = append(statuses, jobboard.FailedScoringStatuses...)
	}
	if pending {
		statuses = append(statuses, jobboard.ScoringPending)
	}
	if len(statuses) > 0 {
		profiles, err := st.ListProfilesByScoringStatus(ctx, statuses...)
		if err != nil {
			return nil, fmt.Errorf("list profiles: %w", err)
		}
		for _, p := range profiles {
			add(p.ID)
		}
	}
	return ids, nil
}
