// Package config persists pintail's local state: backend address, model
// choice, and the saved tab layout restored on the next launch. The backend
// owns the conversations themselves; only the workspace shell state lives
// here, as JSON under ~/.pintail.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/pintaildata/pintail/internal/errors"
)

// SavedTab is one entry of the persisted tab layout. ID is a backend
// session id; tabs that were never bound to a session are not persisted.
type SavedTab struct {
	ID    string `json:"id"`
	Order int    `json:"order"`
}

// Config holds the application configuration
type Config struct {
	BackendURL           string     `json:"backend_url,omitempty"`
	DefaultModel         string     `json:"default_model,omitempty"`
	ProjectID            string     `json:"project_id,omitempty"`
	DataSource           string     `json:"data_source,omitempty"`
	PinnedAssets         []string   `json:"pinned_assets,omitempty"`
	Theme                string     `json:"theme,omitempty"`
	NotificationsEnabled bool       `json:"notifications_enabled,omitempty"`
	SavedTabs            []SavedTab `json:"saved_tabs,omitempty"`
	ActiveTabID          string     `json:"active_tab_id,omitempty"` // session id of the active tab

	mu       sync.RWMutex
	filePath string
}

// configDir returns the path to the config directory
func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".pintail"), nil
}

// configPath returns the path to the config file
func configPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or creates a new one if it doesn't exist
func Load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads the config from an explicit path.
func LoadFrom(path string) (*Config, error) {
	cfg := &Config{
		SavedTabs: []SavedTab{},
		filePath:  path,
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, errors.ConfigLoadFailed(path, err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.ConfigLoadFailed(path, err)
	}

	// Ensure slices are initialized (not nil) after unmarshaling.
	// This must happen before Validate() since Validate() only reads.
	if cfg.SavedTabs == nil {
		cfg.SavedTabs = []SavedTab{}
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.ConfigLoadFailed(path, err)
	}

	return cfg, nil
}

// Validate checks that the config is internally consistent.
func (c *Config) Validate() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	seen := make(map[string]bool)
	for _, tab := range c.SavedTabs {
		if tab.ID == "" {
			return fmt.Errorf("saved tab with empty session id found")
		}
		if seen[tab.ID] {
			return fmt.Errorf("duplicate saved tab: %s", tab.ID)
		}
		seen[tab.ID] = true
	}
	return nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if err := os.MkdirAll(filepath.Dir(c.filePath), 0755); err != nil {
		return errors.ConfigSaveFailed(c.filePath, err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.ConfigSaveFailed(c.filePath, err)
	}

	if err := os.WriteFile(c.filePath, data, 0644); err != nil {
		return errors.ConfigSaveFailed(c.filePath, err)
	}
	return nil
}

// GetBackendURL returns the configured backend URL, or "" for the default.
func (c *Config) GetBackendURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.BackendURL
}

// SetBackendURL sets the backend URL.
func (c *Config) SetBackendURL(url string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.BackendURL = url
}

// GetDefaultModel returns the model used for new submissions.
func (c *Config) GetDefaultModel() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.DefaultModel
}

// SetDefaultModel sets the model used for new submissions.
func (c *Config) SetDefaultModel(model string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.DefaultModel = model
}

// GetProjectID returns the active project id, if any.
func (c *Config) GetProjectID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ProjectID
}

// GetDataSource returns the active data source name, if any.
func (c *Config) GetDataSource() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.DataSource
}

// SetDataSource sets the active data source name.
func (c *Config) SetDataSource(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.DataSource = name
}

// GetPinnedAssets returns the ids of assets pinned to the conversation
// context. The workspace writes this list; the shell only reads it into
// submission metadata.
func (c *Config) GetPinnedAssets() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	assets := make([]string, len(c.PinnedAssets))
	copy(assets, c.PinnedAssets)
	return assets
}

// GetTheme returns the current theme name
func (c *Config) GetTheme() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Theme
}

// SetTheme sets the theme name
func (c *Config) SetTheme(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Theme = name
}

// AreNotificationsEnabled returns whether desktop notifications are enabled.
func (c *Config) AreNotificationsEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.NotificationsEnabled
}

// SetNotificationsEnabled toggles desktop notifications.
func (c *Config) SetNotificationsEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.NotificationsEnabled = enabled
}

// GetSavedTabs returns the persisted tab layout sorted by ascending order.
func (c *Config) GetSavedTabs() []SavedTab {
	c.mu.RLock()
	defer c.mu.RUnlock()

	tabs := make([]SavedTab, len(c.SavedTabs))
	copy(tabs, c.SavedTabs)
	sort.SliceStable(tabs, func(i, j int) bool { return tabs[i].Order < tabs[j].Order })
	return tabs
}

// GetActiveTabID returns the session id of the tab that was active when the
// layout was saved, or "".
func (c *Config) GetActiveTabID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ActiveTabID
}

// SetTabLayout replaces the persisted tab layout wholesale. sessionIDs is
// the session binding of each open tab in display order; unbound tabs are
// omitted by the caller. activeID is the session id of the active tab ("" if
// the active tab has no binding).
func (c *Config) SetTabLayout(sessionIDs []string, activeID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	tabs := make([]SavedTab, 0, len(sessionIDs))
	for i, id := range sessionIDs {
		if id == "" {
			continue
		}
		tabs = append(tabs, SavedTab{ID: id, Order: i})
	}
	c.SavedTabs = tabs
	c.ActiveTabID = activeID
}

// ClearTabLayout removes the persisted tab layout.
func (c *Config) ClearTabLayout() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.SavedTabs = []SavedTab{}
	c.ActiveTabID = ""
}
