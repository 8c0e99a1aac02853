package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spigell/jobmatch/internal/ai"
	"github.com/spigell/jobmatch/internal/ai/gemini"
	"github.com/spigell/jobmatch/internal/ai/openai"
	"github.com/spigell/jobmatch/internal/logger"
	"github.com/spigell/jobmatch/internal/secrets"
	"github.com/spigell/jobmatch/internal/server"
	"github.com/spigell/jobmatch/internal/store"
	"github.com/spigell/jobmatch/internal/store/memory"
	"github.com/spigell/jobmatch/internal/store/postgres"
)

func databaseURL(cfg StorageConfig) (string, error) {
	return secrets.Load(secrets.Source{
		Name:  "database url",
		File:  cfg.DatabaseURLFile,
		Value: cfg.DatabaseURL,
		Env:   "DATABASE_URL",
	})
}

func openStore(ctx context.Context, cfg StorageConfig, log *zap.Logger) (store.Store, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	switch driver {
	case "", "memory":
		log.Warn("using in-memory storage, data is lost on exit")
		return memory.New(), nil
	case "postgres":
		url, err := databaseURL(cfg)
		if err != nil {
			return nil, fmt.Errorf("%w (set storage.database-url-file or DATABASE_URL)", err)
		}
		db, err := postgres.Connect(ctx, url)
		if err != nil {
			return nil, err
		}
		log.Info("connected to postgres")
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Driver)
	}
}

func newGenerator(ctx context.Context, cfg AIConfig) (ai.Generator, string, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	switch provider {
	case "", gemini.ProviderName:
		apiKey, err := secrets.Load(secrets.Source{
			Name:  "gemini api key",
			File:  cfg.Gemini.APIKeyFile,
			Value: cfg.Gemini.APIKey,
			Env:   "GEMINI_API_KEY",
		})
		if err != nil {
			return nil, "", fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY)", err)
		}
		budget := int32(cfg.Gemini.ThinkingBudget)
		gen, err := gemini.NewGenerator(ctx, gemini.Options{
			APIKey:          apiKey,
			Model:           cfg.Gemini.Model,
			Temperature:     cfg.Temperature,
			MaxOutputTokens: int32(cfg.MaxOutputTokens),
			ThinkingBudget:  &budget,
		})
		return gen, gemini.ProviderName, err
	case openai.ProviderName:
		apiKey, err := secrets.Load(secrets.Source{
			Name:  "openai api key",
			File:  cfg.OpenAI.APIKeyFile,
			Value: cfg.OpenAI.APIKey,
			Env:   "OPENAI_API_KEY",
		})
		if err != nil {
			return nil, "", fmt.Errorf("%w (set ai.openai.api-key-file or OPENAI_API_KEY)", err)
		}
		gen, err := openai.NewGenerator(openai.Options{
			APIKey:      apiKey,
			Model:       cfg.OpenAI.Model,
			BaseURL:     cfg.OpenAI.BaseURL,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxOutputTokens,
		})
		return gen, openai.ProviderName, err
	default:
		return nil, "", fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}
}

func newScorer(ctx context.Context, cfg AIConfig, log *zap.Logger) (*ai.Scorer, error) {
	gen, provider, err := newGenerator(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("building ai generator: %w", err)
	}

	scorerLog := logger.WithCommonFields(log, provider, gen.Model())
	scorerLog.Info("ai scorer ready", zap.Duration("timeout", cfg.Timeout))

	return ai.NewScorer(gen, scorerLog, cfg.MaxLogLength, cfg.Timeout), nil
}

func newTokens(cfg server.Config) (*server.Tokens, error) {
	secret, err := secrets.Load(secrets.Source{
		Name:  "jwt secret",
		File:  cfg.JWTSecretFile,
		Value: cfg.JWTSecret,
		Env:   "JWT_SECRET",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set server.jwt-secret-file or JWT_SECRET)", err)
	}
	return server.NewTokens(secret, cfg.TokenTTL)
}

// newLimiter prefers redis so limits hold across instances. The returned func releases the client.
func newLimiter(cfg server.RateLimitConfig, log *zap.Logger) (server.Limiter, func()) {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		log.Info("rate limiting in process memory")
		return server.NewMemoryLimiter(), func() {}
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	log.Info("rate limiting with redis", zap.String("addr", addr))
	return server.NewRedisLimiter(client), func() { _ = client.Close() }
}
