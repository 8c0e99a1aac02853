package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spigell/jobmatch/internal/store/postgres"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the postgres schema",
	RunE: func(cmd *cobra.Command, _ []string) error {
		printOnly, _ := cmd.Flags().GetBool("print")
		if printOnly {
			fmt.Println(postgres.Schema())
			return nil
		}
		return migrate(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)

	migrateCmd.Flags().Bool("print", false, "print the schema instead of applying it")
}

func migrate(ctx context.Context) error {
	log, config, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck
	if ctx == nil {
		ctx = context.Background()
	}

	if driver := strings.ToLower(strings.TrimSpace(config.Storage.Driver)); driver != "postgres" {
		return fmt.Errorf("migrations need the postgres driver, got %q", config.Storage.Driver)
	}

	url, err := databaseURL(config.Storage)
	if err != nil {
		return err
	}
	db, err := postgres.Connect(ctx, url)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		return err
	}
	log.Info("schema is up to date")
	return nil
}
