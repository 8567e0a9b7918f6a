package config

import (
	stderrors "errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vango-dev/vroute/internal/errors"
	"github.com/vango-dev/vroute/pkg/router"
)

const journalJSON = `{
  "name": "journal",
  "routes": [
    {"path": "/", "redirect": "/write"},
    {"path": "/write", "name": "write", "view": "WriteJournaling"},
    {"path": "/daily", "name": "daily", "view": "DailyReport"},
    {"path": "/monthly", "name": "monthly", "view": "MonthlyReport"}
  ],
  "notFoundView": "NotFound",
  "history": {"mode": "sqlite", "key": "work"},
  "server": {"host": "0.0.0.0", "port": 9090, "allowedOrigins": ["https://journal.example"]},
  "log": {"level": "debug"}
}
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Server.Port != DefaultPort {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, DefaultPort)
	}
	if cfg.Server.Host != DefaultHost {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, DefaultHost)
	}
	if cfg.MaxRedirects != DefaultMaxRedirects {
		t.Errorf("MaxRedirects = %d, want %d", cfg.MaxRedirects, DefaultMaxRedirects)
	}
	if cfg.History.Mode != HistoryMemory {
		t.Errorf("History.Mode = %q, want %q", cfg.History.Mode, HistoryMemory)
	}
	if len(cfg.Routes) != 0 {
		t.Errorf("Routes = %v, want none", cfg.Routes)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()

	_, err := Load(tmpDir)
	if !stderrors.Is(err, errors.Code("R030")) {
		t.Fatalf("Load on empty dir = %v, want R030", err)
	}

	writeFile(t, tmpDir, ConfigFileName, journalJSON)

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Name != "journal" {
		t.Errorf("Name = %q, want journal", cfg.Name)
	}
	if len(cfg.Routes) != 4 {
		t.Fatalf("len(Routes) = %d, want 4", len(cfg.Routes))
	}
	want := router.Definition{Pattern: "/", RedirectTo: "/write"}
	if cfg.Routes[0] != want {
		t.Errorf("Routes[0] = %+v, want %+v", cfg.Routes[0], want)
	}
	if cfg.Routes[2].Name != "daily" || cfg.Routes[2].View != "DailyReport" {
		t.Errorf("Routes[2] = %+v", cfg.Routes[2])
	}
	if cfg.NotFoundView != "NotFound" {
		t.Errorf("NotFoundView = %q", cfg.NotFoundView)
	}
	if cfg.History.Mode != HistorySQLite || cfg.History.Key != "work" {
		t.Errorf("History = %+v", cfg.History)
	}
	if cfg.History.Path != DefaultHistoryPath {
		t.Errorf("History.Path = %q, want default", cfg.History.Path)
	}
	if cfg.Server.Port != 9090 || cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if len(cfg.Server.AllowedOrigins) != 1 || cfg.Server.AllowedOrigins[0] != "https://journal.example" {
		t.Errorf("AllowedOrigins = %v", cfg.Server.AllowedOrigins)
	}
	if cfg.MaxRedirects != DefaultMaxRedirects {
		t.Errorf("MaxRedirects = %d, want default", cfg.MaxRedirects)
	}
	if cfg.Log.SlogLevel() != slog.LevelDebug {
		t.Errorf("Log level = %v, want debug", cfg.Log.SlogLevel())
	}
	if cfg.Dir() != tmpDir {
		t.Errorf("Dir() = %q, want %q", cfg.Dir(), tmpDir)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadYAML(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "vroute.yaml", `
routes:
  - path: /entries/:id:int
    name: entry
    view: Entry
maxRedirects: 3
`)

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if len(cfg.Routes) != 1 || cfg.Routes[0].Pattern != "/entries/:id:int" {
		t.Errorf("Routes = %+v", cfg.Routes)
	}
	if cfg.MaxRedirects != 3 {
		t.Errorf("MaxRedirects = %d, want 3", cfg.MaxRedirects)
	}
}

func TestLoadFile(t *testing.T) {
	tmpDir := t.TempDir()

	_, err := LoadFile(filepath.Join(tmpDir, "missing.json"))
	if !stderrors.Is(err, errors.Code("R030")) {
		t.Errorf("missing file = %v, want R030", err)
	}

	bad := writeFile(t, tmpDir, "bad.json", `{"routes": [`)
	_, err = LoadFile(bad)
	if !stderrors.Is(err, errors.Code("R031")) {
		t.Errorf("invalid file = %v, want R031", err)
	}

	good := writeFile(t, tmpDir, "custom.json", journalJSON)
	cfg, err := LoadFile(good)
	if err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}
	if cfg.Path() != good {
		t.Errorf("Path() = %q, want %q", cfg.Path(), good)
	}
}

func TestEnvOverrides(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, ConfigFileName, journalJSON)

	t.Setenv("VROUTE_SERVER_PORT", "7000")
	t.Setenv("VROUTE_HISTORY_KEY", "from-env")

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Server.Port != 7000 {
		t.Errorf("Server.Port = %d, want 7000", cfg.Server.Port)
	}
	if cfg.History.Key != "from-env" {
		t.Errorf("History.Key = %q, want from-env", cfg.History.Key)
	}

	envOnly, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv error: %v", err)
	}
	if envOnly.Server.Port != 7000 {
		t.Errorf("FromEnv Server.Port = %d, want 7000", envOnly.Server.Port)
	}
	if envOnly.Path() != "" {
		t.Errorf("FromEnv Path() = %q, want empty", envOnly.Path())
	}
}

func TestSaveRoundTrip(t *testing.T) {
	for _, name := range []string{"out.json", "out.yaml"} {
		t.Run(name, func(t *testing.T) {
			tmpDir := t.TempDir()
			cfg := New()
			cfg.Name = "journal"
			cfg.Routes = []router.Definition{
				{Pattern: "/", RedirectTo: "/write"},
				{Pattern: "/write", Name: "write", View: "WriteJournaling"},
			}
			cfg.Server.Port = 9000

			path := filepath.Join(tmpDir, "nested", name)
			if err := cfg.SaveTo(path); err != nil {
				t.Fatalf("SaveTo error: %v", err)
			}
			if cfg.Path() != path {
				t.Errorf("Path() = %q, want %q", cfg.Path(), path)
			}

			loaded, err := LoadFile(path)
			if err != nil {
				t.Fatalf("LoadFile error: %v", err)
			}
			if loaded.Name != "journal" || loaded.Server.Port != 9000 {
				t.Errorf("loaded = %+v", loaded)
			}
			if len(loaded.Routes) != 2 || loaded.Routes[1].View != "WriteJournaling" {
				t.Errorf("loaded.Routes = %+v", loaded.Routes)
			}
		})
	}
}

func TestSaveJSONFormat(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, ConfigFileName)

	if err := New().SaveTo(path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(string(data), "}\n") {
		t.Error("saved JSON should end with a newline")
	}
	if !strings.Contains(string(data), `"maxRedirects": 10`) {
		t.Errorf("saved JSON missing maxRedirects:\n%s", data)
	}
}

func TestSaveWithoutPath(t *testing.T) {
	if err := New().Save(); err == nil {
		t.Error("Save without a path should fail")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		code   string
	}{
		{"port", func(c *Config) { c.Server.Port = 70000 }, "R032"},
		{"redirects", func(c *Config) { c.MaxRedirects = -1 }, "R032"},
		{"mode", func(c *Config) { c.History.Mode = "redis" }, "R032"},
		{"timeout", func(c *Config) { c.Server.WriteTimeout = "soon" }, "R032"},
		{"level", func(c *Config) { c.Log.Level = "loud" }, "R032"},
		{"format", func(c *Config) { c.Log.Format = "xml" }, "R032"},
		{"duplicate name", func(c *Config) {
			c.Routes = []router.Definition{
				{Pattern: "/a", Name: "x", View: "A"},
				{Pattern: "/b", Name: "x", View: "B"},
			}
		}, "R001"},
		{"dangling redirect", func(c *Config) {
			c.Routes = []router.Definition{{Pattern: "/", RedirectTo: "/nowhere"}}
		}, "R002"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !stderrors.Is(err, errors.Code(tt.code)) {
				t.Errorf("Validate() = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestHelpers(t *testing.T) {
	cfg := New()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 8181
	if got := cfg.Address(); got != "127.0.0.1:8181" {
		t.Errorf("Address() = %q", got)
	}

	if got := cfg.WriteTimeout(); got != 10*time.Second {
		t.Errorf("WriteTimeout() = %v, want 10s", got)
	}
	cfg.Server.WriteTimeout = "250ms"
	if got := cfg.WriteTimeout(); got != 250*time.Millisecond {
		t.Errorf("WriteTimeout() = %v, want 250ms", got)
	}

	cfg.configPath = filepath.Join("proj", ConfigFileName)
	if got := cfg.HistoryPath(); got != filepath.Join("proj", DefaultHistoryPath) {
		t.Errorf("HistoryPath() = %q", got)
	}
	cfg.History.Path = "/var/lib/vroute.db"
	if got := cfg.HistoryPath(); got != "/var/lib/vroute.db" {
		t.Errorf("HistoryPath() = %q", got)
	}

	if (LogConfig{Level: "warning"}).SlogLevel() != slog.LevelWarn {
		t.Error("warning should map to slog.LevelWarn")
	}
	if (LogConfig{Level: "bogus"}).SlogLevel() != slog.LevelInfo {
		t.Error("unknown level should map to info")
	}
}

func TestWatch(t *testing.T) {
	tmpDir := t.TempDir()
	path := writeFile(t, tmpDir, ConfigFileName, `{"maxRedirects": 4}`)

	type reload struct {
		cfg *Config
		err error
	}
	reloads := make(chan reload, 16)
	if err := Watch(path, func(cfg *Config, err error) {
		reloads <- reload{cfg, err}
	}); err != nil {
		t.Fatalf("Watch error: %v", err)
	}

	next := func() reload {
		t.Helper()
		select {
		case r := <-reloads:
			return r
		case <-time.After(5 * time.Second):
			t.Fatal("no reload")
			return reload{}
		}
	}

	writeFile(t, tmpDir, ConfigFileName, `{"maxRedirects": 6}`)
	r := next()
	for r.err == nil && r.cfg.MaxRedirects != 6 {
		r = next()
	}
	if r.err != nil {
		t.Fatalf("reload error: %v", r.err)
	}

	writeFile(t, tmpDir, ConfigFileName, `{"server": {"port": 99999}}`)
	r = next()
	for r.err == nil {
		r = next()
	}
	if !stderrors.Is(r.err, errors.Code("R032")) {
		t.Errorf("reload error = %v, want R032", r.err)
	}
}

func TestWatchMissingFile(t *testing.T) {
	err := Watch(filepath.Join(t.TempDir(), "missing.json"), func(*Config, error) {})
	if !stderrors.Is(err, errors.Code("R031")) {
		t.Errorf("Watch on missing file = %v, want R031", err)
	}
}
