package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

type Config struct {
	LLM      LLMConfig      `toml:"llm"`
	Owner    OwnerConfig    `toml:"owner"`
	Pushover PushoverConfig `toml:"pushover"`
	Gateway  GatewayConfig  `toml:"gateway"`
	DB       DBConfig       `toml:"db"`
	Trace    TraceConfig    `toml:"trace"`
}

type LLMConfig struct {
	Model   string `toml:"model"`
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`
}

type OwnerConfig struct {
	Name        string `toml:"name"`
	SummaryPath string `toml:"summary_path"`
	ProfilePDF  string `toml:"profile_pdf"`
}

type PushoverConfig struct {
	User  string `toml:"user"`
	Token string `toml:"token"`
}

type GatewayConfig struct {
	Addr string `toml:"addr"`
}

type DBConfig struct {
	Path string `toml:"path"`
}

type TraceConfig struct {
	Endpoint string `toml:"endpoint"`
	URLPath  string `toml:"url_path"`
	APIKey   string `toml:"api_key"`
}

func Load() (*Config, error) {
	cfg := &Config{
		LLM: LLMConfig{
			Model: "gpt-4o-mini",
		},
		Owner: OwnerConfig{
			Name:        "the site owner",
			SummaryPath: "me/summary.txt",
			ProfilePDF:  "me/profile.pdf",
		},
		Gateway: GatewayConfig{
			Addr: ":8090",
		},
		DB: DBConfig{
			Path: defaultDBPath(),
		},
	}

	path := Path()
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

// applyEnv lets environment variables override the config file. The env
// surface matches what deployments of the original site used.
func applyEnv(cfg *Config) {
	for env, dst := range map[string]*string{
		"OPENAI_API_KEY":  &cfg.LLM.APIKey,
		"OPENAI_MODEL":    &cfg.LLM.Model,
		"OPENAI_BASE_URL": &cfg.LLM.BaseURL,
		"PUSHOVER_USER":   &cfg.Pushover.User,
		"PUSHOVER_TOKEN":  &cfg.Pushover.Token,
		"PERSONA_ADDR":    &cfg.Gateway.Addr,
		"PERSONA_DB_PATH": &cfg.DB.Path,
	} {
		if v := os.Getenv(env); v != "" {
			*dst = v
		}
	}
}

// Validate checks the settings the process cannot run without. Pushover and
// tracing are optional; the LLM API key is not.
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		return errors.New("missing LLM API key: set OPENAI_API_KEY or llm.api_key in config.toml")
	}
	return nil
}

func Path() string {
	if p := os.Getenv("PERSONA_CONFIG"); p != "" {
		return p
	}
	dir, _ := os.UserConfigDir()
	return filepath.Join(dir, "persona", "config.toml")
}

func defaultDBPath() string {
	dir, _ := os.UserHomeDir()
	return filepath.Join(dir, ".local", "share", "persona", "persona.db")
}
