// Package client provides terminal commands that drive the story pipeline
package client

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"

	"github.com/KirkDiggler/rpg-saga/internal/clients/narrative"
	"github.com/KirkDiggler/rpg-saga/internal/config"
	"github.com/KirkDiggler/rpg-saga/internal/entities"
	redisclient "github.com/KirkDiggler/rpg-saga/internal/redis"
	sessionrepo "github.com/KirkDiggler/rpg-saga/internal/repositories/session"
	"github.com/KirkDiggler/rpg-saga/internal/services/story"
)

var (
	// Connection flags
	relayURL    string
	directOnly  bool
	timeout     time.Duration
	sessionName string

	appConfig *config.Config
)

// ClientCmd is the root command for all client commands
var ClientCmd = &cobra.Command{
	Use:   "client",
	Short: "Generate and inspect stories from the terminal",
	Long: `Client commands run the quiz-to-story pipeline locally. Generation goes
through the relay when one is configured and falls back to the provider.`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := LoadConfig(cmd)
		if err != nil {
			return err
		}
		if relayURL == "" {
			relayURL = cfg.RelayURL
		}
		appConfig = cfg
		return nil
	},
}

func init() {
	ClientCmd.PersistentFlags().StringVar(&relayURL, "relay", "", "Relay endpoint URL (default from RELAY_URL)")
	ClientCmd.PersistentFlags().BoolVar(&directOnly, "direct", false, "Skip the relay and call the provider directly")
	ClientCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "Overall command timeout")
	ClientCmd.PersistentFlags().StringVar(&sessionName, "session", sessionrepo.DefaultName, "Session record name")

	ClientCmd.AddCommand(generateCmd)
	ClientCmd.AddCommand(probeCmd)
	ClientCmd.AddCommand(fallbackCmd)
	ClientCmd.AddCommand(sessionCmd)
}

// LoadConfig reads the env files named by the inherited --env-file flag
func LoadConfig(cmd *cobra.Command) (*config.Config, error) {
	files, err := cmd.Flags().GetStringSlice("env-file")
	if err != nil {
		files = nil
	}
	cfg, err := config.Load(files...)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// NewNarrativeClient builds a provider client from cfg. base carries
// per-caller timeouts and retry counts.
func NewNarrativeClient(ctx context.Context, cfg *config.Config, base *narrative.Config) (narrative.Client, error) {
	gen, err := narrative.NewGenAIGenerator(ctx, cfg.APIKey)
	if err != nil {
		return nil, err
	}

	ncfg := *base
	ncfg.Generator = gen
	ncfg.Model = cfg.Model
	if cfg.ProviderRPS > 0 {
		ncfg.Limiter = rate.NewLimiter(rate.Limit(cfg.ProviderRPS), 1)
	}

	return narrative.NewClient(&ncfg)
}

// NewRedisClient accepts host:port or a redis:// URL
func NewRedisClient(addr string) (redisclient.Client, error) {
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		return redisclient.NewClientFromURL(addr)
	}
	return redisclient.NewClient(addr, nil)
}

func newStoryService(ctx context.Context) (story.Service, error) {
	var direct narrative.Client
	if appConfig.HasAPIKey() {
		var err error
		direct, err = NewNarrativeClient(ctx, appConfig, &narrative.Config{})
		if err != nil {
			return nil, fmt.Errorf("failed to create narrative client: %w", err)
		}
	}

	return story.New(&story.Config{
		RelayURL:        relayURL,
		NarrativeClient: direct,
		DisableRelay:    directOnly || relayURL == "",
	})
}

// openRepository returns the Redis repository when REDIS_ADDR is set and the
// local SQLite file otherwise
func openRepository(ctx context.Context) (sessionrepo.Repository, func(), error) {
	if appConfig.UsesRedis() {
		rc, err := NewRedisClient(appConfig.RedisAddr)
		if err != nil {
			return nil, nil, err
		}
		repo, err := sessionrepo.NewRedisRepository(&sessionrepo.RedisConfig{Client: rc})
		if err != nil {
			_ = rc.Close()
			return nil, nil, err
		}
		return repo, func() { _ = rc.Close() }, nil // nolint:errcheck // safe to ignore in cleanup
	}

	repo, err := sessionrepo.NewSQLiteRepository(ctx, &sessionrepo.SQLiteConfig{Path: appConfig.SessionDB})
	if err != nil {
		return nil, nil, err
	}
	return repo, func() { _ = repo.Close() }, nil // nolint:errcheck // safe to ignore in cleanup
}

// readAnswers loads a question-id to answer map from a YAML or JSON file
func readAnswers(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read answers: %w", err)
	}

	var answers map[string]string
	if err := yaml.Unmarshal(data, &answers); err != nil {
		return nil, fmt.Errorf("failed to parse answers: %w", err)
	}
	return answers, nil
}

func printNarrative(n *entities.Narrative) {
	fmt.Println(n.Formatted())
	fmt.Printf("\n(%d words)\n", n.WordCount())
}
