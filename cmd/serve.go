package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/jobmatch/internal/ai"
	"github.com/spigell/jobmatch/internal/pipeline"
	"github.com/spigell/jobmatch/internal/server"
	"github.com/spigell/jobmatch/internal/service"
	"github.com/spigell/jobmatch/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API with background scoring and auto-apply",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return serve(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(parent context.Context) error {
	log, config, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("starting the jobmatch server", zap.String("version", version))

	st, err := openStore(ctx, config.Storage, log)
	if err != nil {
		return err
	}
	defer st.Close()

	scorer, err := newScorer(ctx, config.AI, log)
	if err != nil {
		return err
	}

	tokens, err := newTokens(config.Server)
	if err != nil {
		return err
	}

	limiter, closeLimiter := newLimiter(config.Server.RateLimit, log)
	defer closeLimiter()

	if err := runServices(ctx, config, st, scorer, tokens, limiter, log); err != nil {
		log.Error("server stopped with error", zap.Error(err))
		return err
	}
	log.Info("server stopped")
	return nil
}

// runServices wires the pipeline, the board and the HTTP server and runs them until ctx is done.
// Everything that can fail on configuration is built before the first goroutine starts.
func runServices(ctx context.Context, config *Config, st store.Store, scorer ai.ProfileScorer, tokens *server.Tokens, limiter server.Limiter, log *zap.Logger) error {
	runner := pipeline.New(st, scorer, log.Named("pipeline"))
	dispatcher := pipeline.NewDispatcher(runner, st, config.Pipeline.Config, log.Named("dispatcher"))
	board := service.New(st, dispatcher, log.Named("board"))
	srv := server.New(board, tokens, limiter, config.Server, log.Named("http"))

	var sweeper *pipeline.Sweeper
	if config.Pipeline.SweepSchedule != "" {
		var err error
		sweeper, err = pipeline.NewSweeper(st, dispatcher, config.Pipeline.SweepSchedule, log.Named("sweeper"))
		if err != nil {
			return err
		}
	} else {
		log.Info("scoring sweep disabled")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return dispatcher.Run(gctx) })
	g.Go(func() error { return srv.Run(gctx) })
	if sweeper != nil {
		g.Go(func() error { return sweeper.Run(gctx) })
	}

	return g.Wait()
}
