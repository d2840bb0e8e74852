package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/portside/portside/internal/poll"
)

// Config captures everything portside reads at startup. Values are fixed for
// the lifetime of the run; the file is not watched or re-read.
type Config struct {
	Host    string
	LogPath string
	Poll    poll.Intervals
	Cache   poll.TTLs
}

const (
	defaultConfigPath = "~/.config/portside/config.toml"
	defaultLogPath    = "~/.local/share/portside/portside.log"
	defaultHost       = "unix:///var/run/docker.sock"
)

// Load locates and parses the portside config, falling back to defaults when
// the file is missing. A present but unparseable file is an error; silently
// ignoring a typo'd config would be worse than failing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Host: defaultHost,
		Poll: poll.DefaultIntervals(),
	}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg.LogPath = mustExpand(defaultLogPath)
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		Host    string `toml:"host"`
		LogPath string `toml:"log_path"`
		Poll    struct {
			Containers string `toml:"containers"`
			Resources  string `toml:"resources"`
			Stats      string `toml:"stats"`
			Logs       string `toml:"logs"`
		} `toml:"poll"`
		Cache struct {
			Containers string `toml:"containers"`
			Resources  string `toml:"resources"`
			Stats      string `toml:"stats"`
		} `toml:"cache"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg.Host = strings.TrimSpace(raw.Host)
	if cfg.Host == "" {
		cfg.Host = defaultHost
	}

	cfg.LogPath = strings.TrimSpace(raw.LogPath)
	if cfg.LogPath == "" {
		cfg.LogPath = defaultLogPath
	}
	cfg.LogPath = mustExpand(cfg.LogPath)

	if err := applyDurations(&cfg, map[*time.Duration]string{
		&cfg.Poll.Containers:  raw.Poll.Containers,
		&cfg.Poll.Resources:   raw.Poll.Resources,
		&cfg.Poll.Stats:       raw.Poll.Stats,
		&cfg.Poll.Logs:        raw.Poll.Logs,
		&cfg.Cache.Containers: raw.Cache.Containers,
		&cfg.Cache.Resources:  raw.Cache.Resources,
		&cfg.Cache.Stats:      raw.Cache.Stats,
	}); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// applyDurations parses each non-empty interval string into its field;
// empty strings keep whatever default is already there.
func applyDurations(cfg *Config, fields map[*time.Duration]string) error {
	for dst, text := range fields {
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		d, err := time.ParseDuration(text)
		if err != nil {
			return fmt.Errorf("parse config: bad duration %q: %w", text, err)
		}
		if d <= 0 {
			return fmt.Errorf("parse config: duration %q must be positive", text)
		}
		*dst = d
	}
	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
