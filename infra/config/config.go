package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// Surface kinds for CLIPFLOW_SURFACE.
const (
	SurfaceChrome = "chrome"
	SurfaceRelay  = "relay"
	SurfaceNone   = "none"
)

const defaultFeedLimit = 40

// Config holds application-level configuration.
type Config struct {
	DatabaseURL string // postgres:// DSN (required)
	RedisURL    string // realtime and relay broker
	ViewerPath  string // file holding the signed-in viewer id
	UIStatePath string // persisted mode, tag and audio preference
	LogPath     string
	LogLevel    string
	Surface     string // chrome | relay | none
	Headless    bool
	FeedLimit   int
	Playback    PlaybackConfig
}

// PlaybackConfig tunes the command bursts. Empty lists mean the built-in defaults.
type PlaybackConfig struct {
	ActivateBurstMS []int `toml:"activate_burst_ms"`
	LoadedBurstMS   []int `toml:"loaded_burst_ms"`
	QueueSize       int   `toml:"queue_size"`
}

type fileConfig struct {
	DatabaseURL string         `toml:"database_url"`
	RedisURL    string         `toml:"redis_url"`
	Surface     string         `toml:"surface"`
	Headless    *bool          `toml:"headless"`
	FeedLimit   int            `toml:"feed_limit"`
	LogLevel    string         `toml:"log_level"`
	Playback    PlaybackConfig `toml:"playback"`
}

// Load reads the optional TOML file at path, then environment variables, which win.
// An empty path tries ~/.config/clipflow/config.toml.
//
//	CLIPFLOW_DATABASE_URL: Postgres DSN (required)
//	CLIPFLOW_REDIS_URL   : Redis URL (default: redis://localhost:6379/0)
//	CLIPFLOW_VIEWER      : Viewer id file (default: ~/.config/clipflow/viewer)
//	CLIPFLOW_STATE       : UI state file (default: ~/.config/clipflow/ui_state.json)
//	CLIPFLOW_LOG         : Log file (default: ~/.config/clipflow/clipflow.log)
//	CLIPFLOW_LOG_LEVEL   : debug | info | warn | error (default: info)
//	CLIPFLOW_SURFACE     : chrome | relay | none (default: chrome)
//	CLIPFLOW_HEADLESS    : run Chrome headless (default: false)
func Load(path string) (Config, error) {
	dir, err := configDir()
	if err != nil {
		return Config{}, err
	}

	var fc fileConfig
	if path == "" {
		path = filepath.Join(dir, "config.toml")
		if _, err := os.Stat(path); err != nil {
			path = ""
		}
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, &fc); err != nil {
			return Config{}, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := Config{
		DatabaseURL: firstNonEmpty(os.Getenv("CLIPFLOW_DATABASE_URL"), fc.DatabaseURL),
		RedisURL:    firstNonEmpty(os.Getenv("CLIPFLOW_REDIS_URL"), fc.RedisURL, "redis://localhost:6379/0"),
		ViewerPath:  firstNonEmpty(os.Getenv("CLIPFLOW_VIEWER"), filepath.Join(dir, "viewer")),
		UIStatePath: firstNonEmpty(os.Getenv("CLIPFLOW_STATE"), filepath.Join(dir, "ui_state.json")),
		LogPath:     firstNonEmpty(os.Getenv("CLIPFLOW_LOG"), filepath.Join(dir, "clipflow.log")),
		LogLevel:    strings.ToLower(firstNonEmpty(os.Getenv("CLIPFLOW_LOG_LEVEL"), fc.LogLevel, "info")),
		Surface:     strings.ToLower(firstNonEmpty(os.Getenv("CLIPFLOW_SURFACE"), fc.Surface, SurfaceChrome)),
		FeedLimit:   fc.FeedLimit,
		Playback:    fc.Playback,
	}
	if fc.Headless != nil {
		cfg.Headless = *fc.Headless
	}
	if v := os.Getenv("CLIPFLOW_HEADLESS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid CLIPFLOW_HEADLESS: %w", err)
		}
		cfg.Headless = b
	}
	if cfg.FeedLimit <= 0 {
		cfg.FeedLimit = defaultFeedLimit
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("CLIPFLOW_DATABASE_URL is required")
	}
	parsed, err := url.Parse(cfg.DatabaseURL)
	if err != nil || (parsed.Scheme != "postgres" && parsed.Scheme != "postgresql") || parsed.Host == "" {
		return Config{}, fmt.Errorf("invalid CLIPFLOW_DATABASE_URL: must be a postgres:// URL")
	}
	switch cfg.Surface {
	case SurfaceChrome, SurfaceRelay, SurfaceNone:
	default:
		return Config{}, fmt.Errorf("invalid CLIPFLOW_SURFACE %q: want chrome, relay or none", cfg.Surface)
	}

	return cfg, nil
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", "clipflow"), nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
