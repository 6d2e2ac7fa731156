// Package config loads catalog settings from ~/.config/catalog/config.toml.
// A missing file yields the built-in defaults.
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

	"github.com/h0rv/catalog/internal/domain"
	"github.com/h0rv/catalog/internal/form"
	"github.com/h0rv/catalog/internal/store"
)

// Config is the resolved application configuration.
type Config struct {
	BaseURL        string
	StatePath      string
	RequestTimeout time.Duration
	RevealBase     time.Duration
	RevealStagger  time.Duration
	DraftDebounce  time.Duration
	Collections    []domain.Collection
}

const (
	defaultConfigPath     = "~/.config/catalog/config.toml"
	defaultStatePath      = "~/.local/share/catalog/state.db"
	defaultBaseURL        = "http://localhost:3000"
	defaultRequestTimeout = 15 * time.Second
)

// DefaultPath returns the default config file path.
func DefaultPath() string {
	return defaultConfigPath
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		BaseURL:        defaultBaseURL,
		StatePath:      mustExpand(defaultStatePath),
		RequestTimeout: defaultRequestTimeout,
		RevealBase:     store.DefaultRevealBase,
		RevealStagger:  store.DefaultRevealStagger,
		DraftDebounce:  store.DefaultDebounce,
		Collections:    DefaultCollections(),
	}
}

// DefaultCollections lists the four catalog sections.
func DefaultCollections() []domain.Collection {
	return []domain.Collection{
		{Name: "forum", Title: "Forum", Path: "posts", FilterKey: "category", FilterValues: form.PostCategories, PageSize: store.DefaultPageSize, Form: domain.FormPost},
		{Name: "heroes", Title: "Heroes", Path: "heroes", FilterKey: "role", FilterValues: form.HeroRoles, PageSize: store.DefaultPageSize, Form: domain.FormHero},
		{Name: "items", Title: "Items", Path: "items", FilterKey: "category", FilterValues: form.ItemCategories, PageSize: store.DefaultPageSize, Form: domain.FormItem},
		{Name: "reviews", Title: "Reviews", Path: "reviews", FilterKey: "district", FilterValues: form.Districts, PageSize: store.DefaultPageSize, Form: domain.FormReview},
	}
}

type rawCollection struct {
	Name         string   `toml:"name"`
	Title        string   `toml:"title"`
	Path         string   `toml:"path"`
	FilterKey    string   `toml:"filter_key"`
	FilterValues []string `toml:"filter_values"`
	PageSize     int      `toml:"page_size"`
	Form         string   `toml:"form"`
}

type rawConfig struct {
	BaseURL        string `toml:"base_url"`
	StatePath      string `toml:"state_path"`
	RequestTimeout int    `toml:"request_timeout"`
	Animation      struct {
		BaseMS    int `toml:"base_ms"`
		StaggerMS int `toml:"stagger_ms"`
	} `toml:"animation"`
	DraftDebounceMS int             `toml:"draft_debounce_ms"`
	Collections     []rawCollection `toml:"collections"`
}

// Load reads the config at path (the default path when empty), falling back
// to defaults for a missing file or unset keys.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw rawConfig
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.BaseURL); v != "" {
		cfg.BaseURL = v
	}
	if v := strings.TrimSpace(raw.StatePath); v != "" {
		cfg.StatePath = mustExpand(v)
	}
	if raw.RequestTimeout > 0 {
		cfg.RequestTimeout = time.Duration(raw.RequestTimeout) * time.Second
	}
	if raw.Animation.BaseMS > 0 {
		cfg.RevealBase = time.Duration(raw.Animation.BaseMS) * time.Millisecond
	}
	if raw.Animation.StaggerMS > 0 {
		cfg.RevealStagger = time.Duration(raw.Animation.StaggerMS) * time.Millisecond
	}
	if raw.DraftDebounceMS > 0 {
		cfg.DraftDebounce = time.Duration(raw.DraftDebounceMS) * time.Millisecond
	}

	if len(raw.Collections) > 0 {
		collections, err := parseCollections(raw.Collections)
		if err != nil {
			return Config{}, err
		}
		cfg.Collections = collections
	}

	return cfg, nil
}

func parseCollections(raws []rawCollection) ([]domain.Collection, error) {
	seen := make(map[string]bool, len(raws))
	out := make([]domain.Collection, 0, len(raws))
	for i, r := range raws {
		c := domain.Collection{
			Name:      strings.TrimSpace(r.Name),
			Title:     strings.TrimSpace(r.Title),
			Path:      strings.Trim(strings.TrimSpace(r.Path), "/"),
			FilterKey: strings.TrimSpace(r.FilterKey),
			PageSize:  r.PageSize,
			Form:      domain.FormKind(strings.ToLower(strings.TrimSpace(r.Form))),
		}
		if c.Name == "" {
			return nil, fmt.Errorf("collection %d: name is required", i+1)
		}
		if seen[c.Name] {
			return nil, fmt.Errorf("collection %q: duplicate name", c.Name)
		}
		seen[c.Name] = true
		if c.Path == "" {
			c.Path = c.Name
		}
		if c.Title == "" {
			c.Title = c.Name
		}
		if c.PageSize <= 0 {
			c.PageSize = store.DefaultPageSize
		}
		switch c.Form {
		case domain.FormHero, domain.FormItem, domain.FormPost, domain.FormReview, domain.FormNone:
		default:
			return nil, fmt.Errorf("collection %q: unknown form %q", c.Name, r.Form)
		}
		for _, v := range r.FilterValues {
			if v = strings.TrimSpace(v); v != "" && v != domain.AllValue {
				c.FilterValues = append(c.FilterValues, v)
			}
		}
		out = append(out, c)
	}
	return out, nil
}

// Collection returns the collection called name.
func (c Config) Collection(name string) (domain.Collection, bool) {
	for _, col := range c.Collections {
		if col.Name == name {
			return col, true
		}
	}
	return domain.Collection{}, false
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
