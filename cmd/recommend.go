package cmd

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/jobmatch/internal/matching"
)

var recommendCmd = &cobra.Command{
	Use:   "recommend <profile-id>",
	Short: "Generate recommendations from the stored scores without calling the model",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return recommend(cmd.Context(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(recommendCmd)
}

func recommend(ctx context.Context, arg string) error {
	profileID, err := uuid.Parse(arg)
	if err != nil {
		return fmt.Errorf("invalid profile id %q: %w", arg, err)
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

	summary, err := matching.NewRecommender(st, log).Generate(ctx, profileID)
	if err != nil {
		return err
	}

	log.Info("done",
		zap.Int("considered", summary.Considered),
		zap.Int("qualified", summary.Qualified),
		zap.Int("created", summary.Created),
		zap.Int("existing", summary.Existing),
	)
	return nil
}
