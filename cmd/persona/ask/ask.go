package ask

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"persona/internal/agent"
	"persona/internal/config"
	"persona/internal/db"
	"persona/internal/leads"
	"persona/internal/llm"
	"persona/internal/notify"
	"persona/internal/profile"
	"persona/internal/session"
	"persona/internal/tools"
)

var Cmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask the agent a single question from the terminal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		prof := profile.Load(cfg.Owner)

		database, err := db.Open(cfg.DB.Path)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()
		if err := database.Migrate(); err != nil {
			return fmt.Errorf("migrating database: %w", err)
		}

		store := leads.NewStore(database)
		notifier := notify.New(cfg.Pushover.User, cfg.Pushover.Token)

		registry := agent.NewRegistry()
		registry.Register(tools.NewUserDetails(store, notifier))
		registry.Register(tools.NewUnknownQuestion(store, notifier))

		provider := llm.NewOpenAI(cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.Model)
		engine := agent.NewEngine(provider, registry, agent.WithSystemPrompt(prof.SystemPrompt()))

		sess := session.NewManager().Ensure("cli")
		streamed := false
		reply, err := sess.Turn(cmd.Context(), engine, args[0], func(ev agent.Event) {
			if ev.Type == agent.EventToken {
				streamed = true
				fmt.Print(ev.Data)
			}
		})
		if err != nil {
			return err
		}
		if streamed {
			fmt.Println()
		} else {
			fmt.Fprintln(os.Stdout, reply)
		}
		return nil
	},
}
