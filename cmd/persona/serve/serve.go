package serve

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"persona/internal/agent"
	"persona/internal/config"
	"persona/internal/db"
	"persona/internal/gateway"
	"persona/internal/leads"
	"persona/internal/llm"
	"persona/internal/notify"
	"persona/internal/profile"
	"persona/internal/session"
	"persona/internal/tools"
	"persona/internal/trace"
)

var addr string

var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the chat gateway",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if addr != "" {
			cfg.Gateway.Addr = addr
		}

		ctx := cmd.Context()
		if cfg.Trace.Endpoint != "" {
			shutdown, err := trace.Init(ctx, trace.Config{
				Endpoint: cfg.Trace.Endpoint,
				URLPath:  cfg.Trace.URLPath,
				APIKey:   cfg.Trace.APIKey,
			})
			if err != nil {
				return fmt.Errorf("initializing tracing: %w", err)
			}
			defer shutdown(context.Background())
		}

		engine, database, err := buildEngine(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		srv := gateway.NewServer(engine, session.NewManager())
		slog.Info("starting gateway", "addr", cfg.Gateway.Addr, "model", cfg.LLM.Model)
		return srv.ListenAndServe(cfg.Gateway.Addr)
	},
}

func init() {
	Cmd.Flags().StringVarP(&addr, "addr", "a", "", "override gateway listen address")
}

// buildEngine assembles the conversation engine: profile-derived system
// prompt, the two recorder tools backed by the lead store and notifier,
// and the OpenAI provider.
func buildEngine(cfg *config.Config) (*agent.Engine, *db.DB, error) {
	prof := profile.Load(cfg.Owner)
	slog.Info("profile loaded",
		"owner", prof.OwnerName,
		"summary_bytes", len(prof.Summary),
		"document_bytes", len(prof.DocumentText),
	)

	database, err := db.Open(cfg.DB.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	if err := database.Migrate(); err != nil {
		database.Close()
		return nil, nil, fmt.Errorf("migrating database: %w", err)
	}

	store := leads.NewStore(database)
	notifier := notify.New(cfg.Pushover.User, cfg.Pushover.Token)

	registry := agent.NewRegistry()
	registry.Register(tools.NewUserDetails(store, notifier))
	registry.Register(tools.NewUnknownQuestion(store, notifier))

	provider := llm.NewOpenAI(cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.Model)
	engine := agent.NewEngine(provider, registry, agent.WithSystemPrompt(prof.SystemPrompt()))
	return engine, database, nil
}
