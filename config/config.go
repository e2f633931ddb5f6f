package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
)

// maxRecent bounds the recent files list
const maxRecent = 8

// EditorConfig holds editing and export preferences
type EditorConfig struct {
	HitTolerancePx float64  `json:"hitTolerancePx"`
	DefaultFormat  string   `json:"defaultFormat"` // "sparse" or "dense"
	ExportDir      string   `json:"exportDir,omitempty"`
	ProjectName    string   `json:"projectName,omitempty"`
	ProjectVersion string   `json:"projectVersion,omitempty"`
	RecentFiles    []string `json:"recentFiles,omitempty"`
}

// AnalysisConfig holds the audio analysis settings used by the generators
type AnalysisConfig struct {
	ChunkSize         int     `json:"chunkSize"` // power of two
	MaxClipSeconds    float64 `json:"maxClipSeconds"`
	OnsetThreshold    float64 `json:"onsetThreshold"` // RMS floor for onsets
	PeakWindow        int     `json:"peakWindow"`
	SimplifyTolerance float64 `json:"simplifyTolerance"`
}

// UIConfig stores UI preferences
type UIConfig struct {
	Palette        string  `json:"palette,omitempty"` // GIMP .gpl file
	VisibleSeconds float64 `json:"visibleSeconds"`
}

// Config is the main configuration structure
type Config struct {
	Editor   EditorConfig   `json:"editor"`
	Analysis AnalysisConfig `json:"analysis"`
	UI       UIConfig       `json:"ui"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Editor: EditorConfig{
			HitTolerancePx: 1,
			DefaultFormat:  "sparse",
			ProjectName:    "untitled",
			ProjectVersion: "1.0.0",
		},
		Analysis: AnalysisConfig{
			ChunkSize:         1024,
			MaxClipSeconds:    30,
			OnsetThreshold:    0.05,
			PeakWindow:        8,
			SimplifyTolerance: 0.02,
		},
		UI: UIConfig{
			VisibleSeconds: 4,
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "hapticedit"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// ExpandPath expands a leading ~ and environment variables
func ExpandPath(path string) (string, error) {
	p, err := homedir.Expand(path)
	if err != nil {
		return "", err
	}
	return os.ExpandEnv(p), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	// Fields missing from the file keep their defaults
	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	// Create directory if it doesn't exist
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	path, err := ConfigPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// AddRecent moves path to the front of the recent files list
func (c *Config) AddRecent(path string) {
	recent := []string{path}
	for _, p := range c.Editor.RecentFiles {
		if p != path && len(recent) < maxRecent {
			recent = append(recent, p)
		}
	}
	c.Editor.RecentFiles = recent
}

// ResolveExportDir returns the expanded export directory, defaulting to
// ~/.config/hapticedit/exports
func (c *Config) ResolveExportDir() (string, error) {
	if c.Editor.ExportDir != "" {
		return ExpandPath(c.Editor.ExportDir)
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "exports"), nil
}
