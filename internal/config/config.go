// Package config assembles server settings from an optional YAML file and
// the process environment. Environment values win. Missing credentials are
// not an error here: adapters without credentials register in a degraded,
// error-reporting state instead of stopping the server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the resolved server configuration.
type Config struct {
	VaultRoot string

	SearchKey           string
	SearchMonthlyBudget int
	PaceInterval        time.Duration

	WikiToken  string
	DriveToken string

	ChatToken      string
	ChatGuildID    string
	ChatChannelIDs []string
}

// fileConfig is the YAML shape for non-secret settings.
type fileConfig struct {
	Vault struct {
		Root string `yaml:"root"`
	} `yaml:"vault"`
	Search struct {
		MonthlyBudget int `yaml:"monthly_budget"`
		PaceMillis    int `yaml:"pace_ms"`
	} `yaml:"search"`
	Chat struct {
		GuildID  string   `yaml:"guild_id"`
		Channels []string `yaml:"channels"`
	} `yaml:"chat"`
}

// LoadEnvFiles loads a .env file if one is present, trying the repo root
// (parent of the executable's bin directory), the executable's directory,
// and the working directory, in that order. Missing files are not an error.
func LoadEnvFiles() {
	paths := []string{".env"}
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append([]string{
			filepath.Join(filepath.Dir(exeDir), ".env"),
			filepath.Join(exeDir, ".env"),
		}, paths...)
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			return
		}
	}
}

// Load builds the configuration from an optional YAML file at path (empty
// path skips the file) overlaid with environment variables.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %q: %w", path, err)
		}
		var fc fileConfig
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("parse config %q: %w", path, err)
		}
		cfg.VaultRoot = fc.Vault.Root
		cfg.SearchMonthlyBudget = fc.Search.MonthlyBudget
		if fc.Search.PaceMillis > 0 {
			cfg.PaceInterval = time.Duration(fc.Search.PaceMillis) * time.Millisecond
		}
		cfg.ChatGuildID = fc.Chat.GuildID
		cfg.ChatChannelIDs = fc.Chat.Channels
	}

	if v := os.Getenv("SATCHEL_VAULT_ROOT"); v != "" {
		cfg.VaultRoot = v
	}
	cfg.SearchKey = os.Getenv("BRAVE_API_KEY")
	if v := os.Getenv("SATCHEL_SEARCH_BUDGET"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("SATCHEL_SEARCH_BUDGET: %w", err)
		}
		cfg.SearchMonthlyBudget = n
	}
	cfg.WikiToken = os.Getenv("NOTION_API_KEY")
	cfg.DriveToken = os.Getenv("DRIVE_ACCESS_TOKEN")
	cfg.ChatToken = os.Getenv("DISCORD_BOT_TOKEN")
	if v := os.Getenv("DISCORD_GUILD_ID"); v != "" {
		cfg.ChatGuildID = v
	}
	if v := os.Getenv("DISCORD_CHANNEL_IDS"); v != "" {
		cfg.ChatChannelIDs = splitList(v)
	}

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
