package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

const sampleYAML = `
server:
  address: "127.0.0.1"
  port: 9200
storage:
  db_path: "/var/lib/parley"
brain:
  max_tokens: 40
  prefix_tokens: 2
redaction:
  enabled: true
  cron: "0 3 * * *"
  phrases:
    - "secret"
security:
  rate_limit:
    rps: 2.5
    burst: 4
  api_keys:
    backend: ["bk1"]
    admin: ["ad1", "ad2"]
logging:
  level: "debug"
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return p
}

func TestLoadYAML(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Address != "127.0.0.1" || cfg.Server.Port != 9200 {
		t.Fatalf("server section: %+v", cfg.Server)
	}
	if cfg.Storage.DBPath != "/var/lib/parley" {
		t.Fatalf("storage section: %+v", cfg.Storage)
	}
	if cfg.Brain.MaxTokens != 40 || cfg.Brain.PrefixTokens != 2 {
		t.Fatalf("brain section: %+v", cfg.Brain)
	}
	if !cfg.Redaction.Enabled || cfg.Redaction.Cron != "0 3 * * *" ||
		!reflect.DeepEqual(cfg.Redaction.Phrases, []string{"secret"}) {
		t.Fatalf("redaction section: %+v", cfg.Redaction)
	}
	if cfg.Security.RateLimit.RPS != 2.5 || cfg.Security.RateLimit.Burst != 4 {
		t.Fatalf("rate limit section: %+v", cfg.Security.RateLimit)
	}
	if !reflect.DeepEqual(cfg.Security.APIKeys.Admin, []string{"ad1", "ad2"}) {
		t.Fatalf("api keys section: %+v", cfg.Security.APIKeys)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("logging section: %+v", cfg.Logging)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestAddrDefaults(t *testing.T) {
	var cfg Config
	if got := cfg.Addr(); got != "0.0.0.0:8080" {
		t.Fatalf("got %q", got)
	}
	cfg.Server.Address = "10.0.0.5"
	cfg.Server.Port = 9000
	if got := cfg.Addr(); got != "10.0.0.5:9000" {
		t.Fatalf("got %q", got)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PARLEY_ADDR", "0.0.0.0:7070")
	t.Setenv("PARLEY_DB_PATH", "/tmp/parley-db")
	t.Setenv("PARLEY_MAX_TOKENS", "25")
	t.Setenv("PARLEY_REDACTION_PHRASES", "alpha, beta ,")
	t.Setenv("PARLEY_RATE_RPS", "9")
	t.Setenv("PARLEY_API_ADMIN_KEYS", "root-key")

	var cfg Config
	if !LoadEnvOverrides(&cfg) {
		t.Fatalf("env overrides not detected")
	}
	if cfg.Server.Address != "0.0.0.0" || cfg.Server.Port != 7070 {
		t.Fatalf("addr override: %+v", cfg.Server)
	}
	if cfg.Storage.DBPath != "/tmp/parley-db" {
		t.Fatalf("db override: %+v", cfg.Storage)
	}
	if cfg.Brain.MaxTokens != 25 {
		t.Fatalf("max tokens override: %+v", cfg.Brain)
	}
	if !reflect.DeepEqual(cfg.Redaction.Phrases, []string{"alpha", "beta"}) {
		t.Fatalf("phrase list override: %+v", cfg.Redaction.Phrases)
	}
	if cfg.Security.RateLimit.RPS != 9 {
		t.Fatalf("rps override: %+v", cfg.Security.RateLimit)
	}
	if !reflect.DeepEqual(cfg.Security.APIKeys.Admin, []string{"root-key"}) {
		t.Fatalf("admin keys override: %+v", cfg.Security.APIKeys)
	}
}

func TestEnvOverridesInvalidMaxTokensIgnored(t *testing.T) {
	t.Setenv("PARLEY_MAX_TOKENS", "zero")
	var cfg Config
	cfg.Brain.MaxTokens = 50
	LoadEnvOverrides(&cfg)
	if cfg.Brain.MaxTokens != 50 {
		t.Fatalf("invalid value must be ignored: %+v", cfg.Brain)
	}
}

func TestLoadEffectiveMissingFileStillAppliesEnv(t *testing.T) {
	t.Setenv("PARLEY_PORT", "8181")
	cfg, envUsed, err := LoadEffective(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadEffective: %v", err)
	}
	if !envUsed || cfg.Server.Port != 8181 {
		t.Fatalf("env not applied: used=%v cfg=%+v", envUsed, cfg.Server)
	}
}

func TestResolveConfigPath(t *testing.T) {
	t.Setenv("PARLEY_CONFIG", "/etc/parley/config.yaml")
	if got := ResolveConfigPath("./flag.yaml", true); got != "./flag.yaml" {
		t.Fatalf("flag must win: %q", got)
	}
	if got := ResolveConfigPath("./default.yaml", false); got != "/etc/parley/config.yaml" {
		t.Fatalf("env must win over default: %q", got)
	}
}
