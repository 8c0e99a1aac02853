package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/jobmatch/internal/jobboard"
	"github.com/spigell/jobmatch/internal/service"
)

const PromptBack = "back"

var reviewCmd = &cobra.Command{
	Use:   "review <job-id>",
	Short: "Walk through applicants of a job and move them along the hiring pipeline",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		as, _ := cmd.Flags().GetString("as")
		return review(cmd.Context(), as, args[0])
	},
}

func init() {
	rootCmd.AddCommand(reviewCmd)

	reviewCmd.Flags().String("as", "", "user id of the company account that owns the job")
	reviewCmd.MarkFlagRequired("as") //nolint:errcheck
}

func review(ctx context.Context, as, arg string) error {
	userID, err := uuid.Parse(as)
	if err != nil {
		return fmt.Errorf("invalid user id %q: %w", as, err)
	}
	jobID, err := uuid.Parse(arg)
	if err != nil {
		return fmt.Errorf("invalid job id %q: %w", arg, err)
	}

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

	board := service.New(st, nil, log)

	for {
		applicants, err := board.JobApplications(ctx, userID, jobID)
		if err != nil {
			return err
		}
		if len(applicants) == 0 {
			log.Info("exiting", zap.String("reason", "no applications for the job"))
			return nil
		}

		items := make([]string, 0, len(applicants)+1)
		for _, a := range applicants {
			items = append(items, fmt.Sprintf("%s (score %d, %s)", a.Profile.Name, a.AIMatchScore, a.Status))
		}

		applicantPrompt := promptui.Select{
			Label: "Choose an applicant and press ENTER",
			Items: append(items, PromptBack),
		}
		idx, selected, err := applicantPrompt.Run()
		if err != nil {
			return promptErr(err)
		}
		if selected == PromptBack {
			return nil
		}

		if err := reviewApplicant(ctx, log, board, userID, applicants[idx]); err != nil {
			return err
		}
	}
}

func reviewApplicant(ctx context.Context, log *zap.Logger, board *service.Board, userID uuid.UUID, a service.Applicant) error {
	next := a.Status.Next()
	if len(next) == 0 {
		log.Info("application is final", zap.String("status", string(a.Status)))
		return nil
	}

	items := make([]string, 0, len(next)+1)
	for _, status := range next {
		items = append(items, string(status))
	}

	statusPrompt := promptui.Select{
		Label: fmt.Sprintf("Move %s from %s to", a.Profile.Name, a.Status),
		Items: append(items, PromptBack),
	}
	_, selected, err := statusPrompt.Run()
	if err != nil {
		return promptErr(err)
	}
	if selected == PromptBack {
		return nil
	}

	updated, err := board.UpdateApplicationStatus(ctx, userID, a.ID, service.StatusRequest{Status: selected})
	if err != nil {
		if errors.Is(err, jobboard.ErrInvalidTransition) {
			log.Warn("application changed meanwhile, reload and retry", zap.Error(err))
			return nil
		}
		return err
	}

	log.Info("status updated", zap.String("applicant", a.Profile.Name), zap.String("status", string(updated.Status)))
	return nil
}

// promptErr treats Ctrl+C and Ctrl+D as a normal exit.
func promptErr(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
		return nil
	}
	return err
}
