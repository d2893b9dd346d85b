package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	configDirName  = "stagehand"
	configFileName = "config.json"

	DefaultHistoryLimit  = 200
	DefaultLogLevel      = "info"
	DefaultDiffStyle     = "split"
	DefaultWatchDebounce = 300
	DefaultCacheSize     = 256
)

type AppConfig struct {
	HistoryLimit    int      `json:"history_limit"`
	LogLevel        string   `json:"log_level"`
	LogFile         string   `json:"log_file"`
	DiffStyle       string   `json:"diff_style"`
	Watch           *bool    `json:"watch"`
	WatchDebounceMS int      `json:"watch_debounce_ms"`
	CacheSize       int      `json:"cache_size"`
	PersistComments *bool    `json:"persist_comments"`
	CommentsFile    string   `json:"comments_file"`
	Repos           []string `json:"repos"`
}

// WatchEnabled reports the watch flag, defaulting to on.
func (c AppConfig) WatchEnabled() bool { return c.Watch == nil || *c.Watch }

// PersistEnabled reports the persist_comments flag, defaulting to on.
func (c AppConfig) PersistEnabled() bool { return c.PersistComments == nil || *c.PersistComments }

func (c AppConfig) WatchDebounce() time.Duration {
	return time.Duration(c.WatchDebounceMS) * time.Millisecond
}

func Default() AppConfig {
	return AppConfig{
		HistoryLimit:    DefaultHistoryLimit,
		LogLevel:        DefaultLogLevel,
		DiffStyle:       DefaultDiffStyle,
		WatchDebounceMS: DefaultWatchDebounce,
		CacheSize:       DefaultCacheSize,
	}
}

func Load() (AppConfig, string, error) {
	path, err := DefaultPath()
	if err != nil {
		return AppConfig{}, "", err
	}
	cfg, err := LoadFromPath(path)
	return cfg, path, err
}

func LoadFromPath(path string) (AppConfig, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return AppConfig{}, err
	}

	if len(strings.TrimSpace(string(data))) > 0 {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return AppConfig{}, fmt.Errorf("parse config: %w", err)
		}
	}
	if err := cfg.finish(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// finish validates the fields and fills derived defaults.
func (c *AppConfig) finish() error {
	if c.HistoryLimit <= 0 {
		return fmt.Errorf("history_limit must be positive, got %d", c.HistoryLimit)
	}
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	switch c.DiffStyle = strings.ToLower(strings.TrimSpace(c.DiffStyle)); c.DiffStyle {
	case "":
		c.DiffStyle = DefaultDiffStyle
	case "split", "unified":
	default:
		return fmt.Errorf("diff_style must be split or unified, got %q", c.DiffStyle)
	}
	if c.WatchDebounceMS < 0 {
		return fmt.Errorf("watch_debounce_ms cannot be negative")
	}
	if c.CacheSize <= 0 {
		c.CacheSize = DefaultCacheSize
	}
	if c.CommentsFile == "" {
		path, err := DefaultCommentsPath()
		if err != nil {
			return err
		}
		c.CommentsFile = path
	}
	repos := c.Repos[:0]
	for _, r := range c.Repos {
		if r = strings.TrimSpace(r); r != "" {
			repos = append(repos, r)
		}
	}
	c.Repos = repos
	return nil
}

func DefaultPath() (string, error) {
	home, err := configHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configDirName, configFileName), nil
}

// DefaultCommentsPath is comments.json under the XDG state directory.
func DefaultCommentsPath() (string, error) {
	home, err := stateHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configDirName, "comments.json"), nil
}

func configHome() (string, error) {
	if xdg := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); xdg != "" {
		return xdg, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config"), nil
}

func stateHome() (string, error) {
	if xdg := strings.TrimSpace(os.Getenv("XDG_STATE_HOME")); xdg != "" {
		return xdg, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "state"), nil
}
