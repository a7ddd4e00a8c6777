package internal

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/starford/luach/internal/auth"
	"github.com/starford/luach/internal/reconcile"
	pkgconfig "github.com/starford/luach/pkg/config"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestDefaultConfigValid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config: %v", err)
	}
	if cfg.Catalog.Strategy() != reconcile.MatchTitle {
		t.Errorf("strategy = %q", cfg.Catalog.Strategy())
	}
	if cfg.Calendar.Weekday() != time.Sunday {
		t.Errorf("weekday = %v", cfg.Calendar.Weekday())
	}
}

func TestSectionValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port", func(c *Config) { c.App.HTTP.Port = 70000 }},
		{"catalog match", func(c *Config) { c.Catalog.Match = "fuzzy" }},
		{"upcoming limit", func(c *Config) { c.Upcoming.Limit = 0 }},
		{"upcoming max days", func(c *Config) { c.Upcoming.MaxDays = -1 }},
		{"first weekday", func(c *Config) { c.Calendar.FirstWeekday = "someday" }},
		{"reminder schedule", func(c *Config) { c.Reminders.Schedule = "every morning" }},
		{"reminder schedule required", func(c *Config) { c.Reminders.Schedule = "" }},
		{"sse throttle", func(c *Config) { c.SSE.Throttle = -time.Second }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestCalendarWeekdayCaseInsensitive(t *testing.T) {
	cfg := CalendarConfig{FirstWeekday: "Monday"}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	if cfg.Weekday() != time.Monday {
		t.Errorf("weekday = %v", cfg.Weekday())
	}
}

func TestLoadConfigFile(t *testing.T) {
	t.Setenv("LUACH_TEST_TOKEN", "from-env")
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `app:
  log_level: debug
  http:
    port: 9090
auth:
  mode: token
  token: ${LUACH_TEST_TOKEN}
catalog:
  match: provenance
calendar:
  first_weekday: monday
sse:
  throttle: 500ms
seed:
  demo: false
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(path, cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.App.HTTP.Port != 9090 || cfg.Auth.Token != "from-env" {
		t.Errorf("app/auth = %+v / %+v", cfg.App, cfg.Auth)
	}
	if cfg.Catalog.Strategy() != reconcile.MatchProvenance || cfg.Calendar.Weekday() != time.Monday {
		t.Errorf("catalog/calendar = %+v / %+v", cfg.Catalog, cfg.Calendar)
	}
	if cfg.SSE.Throttle != 500*time.Millisecond {
		t.Errorf("throttle = %v", cfg.SSE.Throttle)
	}
	// Sections absent from the file keep their defaults.
	if cfg.Upcoming.Limit != 10 || !cfg.Reminders.Enabled {
		t.Errorf("defaults lost: %+v %+v", cfg.Upcoming, cfg.Reminders)
	}
}

func TestLoadConfigFileHashedToken(t *testing.T) {
	hash, err := auth.HashToken("s3cret")
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "auth:\n  mode: token\n  token: " + hash + "\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(path, cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Auth.Token != hash || !auth.IsHash(cfg.Auth.Token) {
		t.Fatalf("token = %q, want %q", cfg.Auth.Token, hash)
	}
	checker := auth.NewTokenChecker(cfg.Auth.Token)
	if !checker.Check("s3cret") {
		t.Error("hashed token from file should accept the original token")
	}
	if checker.Check("wrong") {
		t.Error("hashed token accepted a wrong token")
	}
}

func TestPrintMonth(t *testing.T) {
	cfg := NewDefaultConfig()
	var out bytes.Buffer
	err := PrintMonth(context.Background(), &out, 2024, time.June, "chassidic",
		WithConfig(cfg), WithLogOutput(&bytes.Buffer{}))
	if err != nil {
		t.Fatalf("PrintMonth: %v", err)
	}
	text := out.String()
	if !strings.Contains(text, "June 2024") || !strings.Contains(text, "12  Yahrzeit of the Baal Shem Tov (chassidic)") {
		t.Errorf("output =\n%s", text)
	}
	if strings.Contains(text, "Family Anniversary") {
		t.Error("personal events should be filtered out")
	}

	if err := PrintMonth(context.Background(), &out, 2024, time.June, "bogus", WithConfig(cfg)); err == nil {
		t.Error("expected error for unknown category")
	}
}

func TestPrintCatalog(t *testing.T) {
	var out bytes.Buffer
	if err := PrintCatalog(&out); err != nil {
		t.Fatal(err)
	}
	if lines := strings.Count(out.String(), "\n"); lines != 12 {
		t.Errorf("lines = %d, want 12", lines)
	}
	if !strings.Contains(out.String(), "lag-baomer") {
		t.Error("catalog should list lag-baomer")
	}
}

func TestRunRequiresConfig(t *testing.T) {
	if err := Run(context.Background()); err == nil {
		t.Error("Run without config should fail")
	}
}
