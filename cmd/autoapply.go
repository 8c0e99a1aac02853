package cmd

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/jobmatch/internal/filtering"
	"github.com/spigell/jobmatch/internal/matching"
)

var autoApplyCmd = &cobra.Command{
	Use:   "auto-apply <job-id>",
	Short: "Evaluate a job posting against every auto-apply profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		skip, _ := cmd.Flags().GetStringSlice("skip")
		return autoApply(cmd.Context(), args[0], dryRun, skip)
	},
}

func init() {
	rootCmd.AddCommand(autoApplyCmd)

	autoApplyCmd.Flags().Bool("dry-run", false, "report eligible profiles without creating applications")
	autoApplyCmd.Flags().StringSlice("skip", nil, "eligibility steps to disable; only applied_history unless --dry-run")
}

// checkSkip rejects unknown step names and consent steps outside a dry run.
func checkSkip(skip []string, dryRun bool) error {
	known := map[string]bool{}
	for _, step := range filtering.DefaultSteps() {
		known[step.Name()] = true
	}
	for _, name := range skip {
		if !known[name] {
			return fmt.Errorf("unknown eligibility step %q", name)
		}
		if filtering.IsConsentStep(name) && !dryRun {
			return fmt.Errorf("step %q can only be skipped with --dry-run", name)
		}
	}
	return nil
}

func autoApply(ctx context.Context, arg string, dryRun bool, skip []string) error {
	jobID, err := uuid.Parse(arg)
	if err != nil {
		return fmt.Errorf("invalid job id %q: %w", arg, err)
	}
	if err := checkSkip(skip, dryRun); err != nil {
		return err
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

	steps := func() []filtering.Filter {
		s := filtering.DefaultSteps()
		for _, name := range skip {
			filtering.DisableByName(s, name, "disabled from command line")
		}
		return s
	}
	for _, status := range filtering.Describe(steps()) {
		log.Debug("eligibility step",
			zap.String("name", status.Name),
			zap.Bool("enabled", status.Enabled),
			zap.String("reason", status.Reason),
		)
	}

	opts := []matching.AutoApplyOption{matching.WithSteps(steps)}
	if dryRun {
		opts = append(opts, matching.WithDryRun())
	}

	summary, err := matching.NewAutoApplier(st, log, opts...).Evaluate(ctx, jobID)
	if err != nil {
		return err
	}
	if summary.Skipped != "" {
		log.Info("exiting", zap.String("reason", summary.Skipped))
		return nil
	}

	for _, step := range summary.Steps {
		log.Info("eligibility step",
			zap.String("name", step.Name),
			zap.Int("initial", step.Step.Initial),
			zap.Int("dropped", step.Step.Dropped),
			zap.Int("left", step.Step.Left),
		)
	}
	log.Info("done",
		zap.Bool("dry_run", dryRun),
		zap.Int("candidates", summary.Candidates),
		zap.Int("eligible", summary.Eligible),
		zap.Int("applied", summary.Applied),
		zap.Int("duplicates", summary.Duplicates),
	)
	return nil
}
