// Package config loads lisp0 settings from project and user config files.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// ProjectFile is looked up in the working directory, UserFile under the
// home directory.
const (
	ProjectFile = ".lisp0.json"
	UserFile    = ".lisp0/config.json"
)

// DefaultHistoryFile is the REPL history file name under the home directory.
const DefaultHistoryFile = ".lisp0_history"

// Config holds the effective settings.
type Config struct {
	Pretty      bool
	HistoryFile string
	Prelude     []string
	Disabled    map[string]bool
}

// File represents the JSON structure of a config file. Prelude paths are
// relative to the file's directory.
type File struct {
	Pretty      bool     `json:"pretty,omitempty"`
	HistoryFile string   `json:"historyFile,omitempty"`
	Prelude     []string `json:"prelude,omitempty"`
	Enable      []string `json:"enable,omitempty"`
	Disable     []string `json:"disable,omitempty"`
}

// IsDisabled reports whether the builtin called name is switched off.
func (c *Config) IsDisabled(name string) bool {
	if c == nil || c.Disabled == nil {
		return false
	}
	return c.Disabled[name]
}

// DisabledNames returns the switched-off builtins.
func (c *Config) DisabledNames() []string {
	if c == nil {
		return nil
	}
	names := make([]string, 0, len(c.Disabled))
	for name := range c.Disabled {
		names = append(names, name)
	}
	return names
}

// Load reads settings from the project file in projectDir, falling back to
// the user file and then to Default. The File that was used is returned
// alongside, nil for the default.
func Load(projectDir string) (*Config, *File) {
	projectPath := filepath.Join(projectDir, ProjectFile)
	if f, err := loadFile(projectPath); err == nil {
		return build(f, projectDir), f
	}

	homeDir, err := os.UserHomeDir()
	if err == nil {
		userPath := filepath.Join(homeDir, UserFile)
		if f, err := loadFile(userPath); err == nil {
			return build(f, filepath.Dir(userPath)), f
		}
	}

	return Default(), nil
}

func loadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

func build(f *File, dir string) *Config {
	c := Default()
	c.Pretty = f.Pretty
	if f.HistoryFile != "" {
		c.HistoryFile = f.HistoryFile
	}
	for _, p := range f.Prelude {
		if !filepath.IsAbs(p) {
			p = filepath.Join(dir, p)
		}
		c.Prelude = append(c.Prelude, p)
	}

	for _, name := range f.Disable {
		c.Disabled[name] = true
	}
	// Enable overrides disable
	for _, name := range f.Enable {
		delete(c.Disabled, name)
	}
	return c
}

// Default returns the settings used when no config file exists.
func Default() *Config {
	c := &Config{Disabled: make(map[string]bool)}
	if home, err := os.UserHomeDir(); err == nil {
		c.HistoryFile = filepath.Join(home, DefaultHistoryFile)
	}
	return c
}
