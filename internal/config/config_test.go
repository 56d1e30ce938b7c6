package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "satchel.yaml")
	yamlBody := `
vault:
  root: /from/file
search:
  monthly_budget: 5000
  pace_ms: 500
chat:
  guild_id: guild-file
  channels: [c1, c2]
`
	if err := os.WriteFile(path, []byte(yamlBody), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("SATCHEL_VAULT_ROOT", "/from/env")
	t.Setenv("DISCORD_GUILD_ID", "guild-env")
	t.Setenv("DISCORD_CHANNEL_IDS", " c3 , c4 ")
	t.Setenv("BRAVE_API_KEY", "brave-key")
	t.Setenv("SATCHEL_SEARCH_BUDGET", "")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.VaultRoot != "/from/env" {
		t.Errorf("VaultRoot = %q", cfg.VaultRoot)
	}
	if cfg.SearchMonthlyBudget != 5000 {
		t.Errorf("SearchMonthlyBudget = %d", cfg.SearchMonthlyBudget)
	}
	if cfg.PaceInterval != 500*time.Millisecond {
		t.Errorf("PaceInterval = %v", cfg.PaceInterval)
	}
	if cfg.ChatGuildID != "guild-env" {
		t.Errorf("ChatGuildID = %q", cfg.ChatGuildID)
	}
	if len(cfg.ChatChannelIDs) != 2 || cfg.ChatChannelIDs[0] != "c3" {
		t.Errorf("ChatChannelIDs = %v", cfg.ChatChannelIDs)
	}
	if cfg.SearchKey != "brave-key" {
		t.Errorf("SearchKey = %q", cfg.SearchKey)
	}
}

func TestLoadWithoutFile(t *testing.T) {
	t.Setenv("SATCHEL_VAULT_ROOT", "/vault")
	t.Setenv("SATCHEL_SEARCH_BUDGET", "123")

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.VaultRoot != "/vault" || cfg.SearchMonthlyBudget != 123 {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadBadBudget(t *testing.T) {
	t.Setenv("SATCHEL_SEARCH_BUDGET", "lots")
	if _, err := Load(""); err == nil {
		t.Error("expected error for non-numeric budget")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}
