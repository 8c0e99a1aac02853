package cmd

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/jobmatch/internal/logger"
	"github.com/spigell/jobmatch/internal/pipeline"
	"github.com/spigell/jobmatch/internal/server"
)

const (
	app       = "jobmatch"
	envPrefix = "JOBMATCH"
)

type Config struct {
	Storage  StorageConfig  `mapstructure:"storage"`
	AI       AIConfig       `mapstructure:"ai"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Server   server.Config  `mapstructure:"server"`
}

type StorageConfig struct {
	Driver          string `mapstructure:"driver"`
	DatabaseURL     string `mapstructure:"database-url"`
	DatabaseURLFile string `mapstructure:"database-url-file"`
}

type AIConfig struct {
	Provider        string        `mapstructure:"provider"`
	Temperature     float32       `mapstructure:"temperature"`
	MaxOutputTokens int           `mapstructure:"max-output-tokens"`
	Timeout         time.Duration `mapstructure:"timeout"`
	MaxLogLength    int           `mapstructure:"max-log-length"`
	Gemini          GeminiConfig  `mapstructure:"gemini"`
	OpenAI          OpenAIConfig  `mapstructure:"openai"`
}

type GeminiConfig struct {
	APIKey         string `mapstructure:"api-key"`
	APIKeyFile     string `mapstructure:"api-key-file"`
	Model          string `mapstructure:"model"`
	ThinkingBudget int    `mapstructure:"thinking-budget"`
}

type OpenAIConfig struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
	BaseURL    string `mapstructure:"base-url"`
}

type PipelineConfig struct {
	pipeline.Config `mapstructure:",squash"`
	SweepSchedule   string `mapstructure:"sweep-schedule"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:           app,
		Short:         "jobmatch scores candidate profiles with an LLM and matches them to job postings",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is jobmatch.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("storage.driver", "memory")
	v.SetDefault("storage.database-url", "")
	v.SetDefault("storage.database-url-file", "")

	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.temperature", 0.3)
	v.SetDefault("ai.max-output-tokens", 512)
	v.SetDefault("ai.timeout", 60*time.Second)
	v.SetDefault("ai.max-log-length", 200)
	v.SetDefault("ai.gemini.api-key", "")
	v.SetDefault("ai.gemini.api-key-file", "")
	v.SetDefault("ai.gemini.model", "gemini-2.5-flash")
	v.SetDefault("ai.gemini.thinking-budget", 0)
	v.SetDefault("ai.openai.api-key", "")
	v.SetDefault("ai.openai.api-key-file", "")
	v.SetDefault("ai.openai.model", "")
	v.SetDefault("ai.openai.base-url", "")

	v.SetDefault("pipeline.workers", 4)
	v.SetDefault("pipeline.queue-size", 128)
	v.SetDefault("pipeline.max-retries", 2)
	v.SetDefault("pipeline.retry-delay", 5*time.Second)
	v.SetDefault("pipeline.sweep-schedule", "@every 30m")

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.jwt-secret", "")
	v.SetDefault("server.jwt-secret-file", "")
	v.SetDefault("server.token-ttl", 24*time.Hour)
	v.SetDefault("server.rate-limit.redis-addr", "")
	v.SetDefault("server.rate-limit.limit", 10)
	v.SetDefault("server.rate-limit.window", time.Minute)
}

func initConfig() {
	// A missing .env file is fine; the variables may come from the real environment.
	_ = godotenv.Load()

	setDefaults(viper.GetViper())
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			// We can't proceed if the config file parsed with error.
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	return decodeConfig(viper.GetViper())
}

func decodeConfig(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &config, nil
}

// setup builds the logger and loads the config every command needs.
func setup() (*zap.Logger, *Config, error) {
	lg, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		return nil, nil, fmt.Errorf("creating a logger: %w", err)
	}

	config, err := getConfig()
	if err != nil {
		return nil, nil, err
	}

	if used := viper.ConfigFileUsed(); used != "" {
		lg.Debug("config loaded", zap.String("file", used))
	}
	return lg, config, nil
}
