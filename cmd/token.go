package cmd

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var tokenCmd = &cobra.Command{
	Use:   "token [user-id]",
	Short: "Issue an API token for a user, a new user id is generated when none is given",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		userID := uuid.New()
		if len(args) == 1 {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid user id %q: %w", args[0], err)
			}
			userID = id
		}
		return issueToken(userID)
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
}

func issueToken(userID uuid.UUID) error {
	log, config, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	tokens, err := newTokens(config.Server)
	if err != nil {
		return err
	}
	token, expires, err := tokens.Issue(userID)
	if err != nil {
		return err
	}

	log.Debug("token issued", zap.String("user_id", userID.String()), zap.Time("expires_at", expires))
	fmt.Println(token)
	return nil
}
