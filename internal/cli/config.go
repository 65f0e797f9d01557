package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/codalotl/checkdeck/internal/backend"
	"github.com/codalotl/checkdeck/internal/q/cascade"
)

// Config is checkdeck's configuration loaded from a cascade of sources.
//
// internal/q/cascade addresses fields by json tag name (falling back to the
// lowercased field name), so the tags below double as the config file keys and
// as the `checkdeck config` output naming.
type Config struct {
	// BackendURL is the checker service's base URL.
	// Defaults to http://127.0.0.1:8765.
	BackendURL string `json:"backendurl" cascade:",required"`

	// DebounceMS is the quiescence delay in milliseconds between a detected
	// change (or a manual run key) and the run it schedules. Defaults to 500.
	DebounceMS int `json:"debouncems"`

	// WatchIntervalMS is how often the watcher polls the project for changed
	// Python files, in milliseconds. Defaults to 400.
	WatchIntervalMS int `json:"watchintervalms"`

	// MaxLines/MaxChars bound how much of a tool's output a card renders before
	// truncating. Defaults: 500 lines, 100000 characters.
	MaxLines int `json:"maxlines"`
	MaxChars int `json:"maxchars"`

	// Ignore is a list of path globs the watcher skips.
	// Defaults to [".venv/**", "**/__pycache__/**"].
	Ignore []string `json:"ignore"`

	Tools ToolsConfig `json:"tools"`

	NoColor bool `json:"nocolor,omitempty"`
}

// ToolsConfig adjusts which checkers run. Disable wins over Enable when a name
// appears in both.
type ToolsConfig struct {
	Enable  []string `json:"enable"`
	Disable []string `json:"disable"`
}

func loadConfig() (Config, error) {
	loader := cascade.New().WithDefaults(map[string]any{
		"backendurl":      backend.DefaultBaseURL,
		"debouncems":      500,
		"watchintervalms": 400,
		"maxlines":        500,
		"maxchars":        100000,
		"ignore":          []string{".venv/**", "**/__pycache__/**"},
	})

	// Global user config, then the nearest project config so project settings
	// can override global ones, then environment variables on top.
	loader = loader.WithJSONFile(globalConfigPath())
	loader = loader.WithNearestJSONFile(".checkdeck.json", "")
	loader = loader.WithEnv(map[string]string{
		"backendurl": "CHECKDECK_BACKEND",
		"nocolor":    "CHECKDECK_NO_COLOR",
	})

	var cfg Config
	if err := loader.StrictlyLoad(&cfg); err != nil {
		return Config{}, fmt.Errorf("load configuration: %w", err)
	}
	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func globalConfigPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "checkdeck", "config.json")
	}
	return cascade.ExpandPath("~/.config/checkdeck/config.json")
}

func validateConfig(cfg Config) error {
	u, err := url.Parse(strings.TrimSpace(cfg.BackendURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid configuration: backendurl must be an absolute URL (got %q)", cfg.BackendURL)
	}
	if cfg.DebounceMS < 0 {
		return fmt.Errorf("invalid configuration: debouncems must be >= 0 (got %d)", cfg.DebounceMS)
	}
	if cfg.WatchIntervalMS <= 0 {
		return fmt.Errorf("invalid configuration: watchintervalms must be > 0 (got %d)", cfg.WatchIntervalMS)
	}
	if cfg.MaxLines <= 0 {
		return fmt.Errorf("invalid configuration: maxlines must be > 0 (got %d)", cfg.MaxLines)
	}
	if cfg.MaxChars <= 0 {
		return fmt.Errorf("invalid configuration: maxchars must be > 0 (got %d)", cfg.MaxChars)
	}
	return nil
}

func writeConfigJSON(w io.Writer, cfg Config) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(cfg); err != nil {
		return err
	}
	return nil
}
