// Package prefs stores the small set of TUI choices vidlift remembers between
// runs: the color theme and the tab it opens on. The file lives at
// ~/.config/vidlift/prefs.toml and is rewritten whenever either changes.
//
// Preferences are never fatal. A missing, unreadable or malformed file
// yields Defaults.
package prefs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Prefs is the persisted TUI state.
type Prefs struct {
	Theme    string `toml:"theme"`
	StartTab string `toml:"start_tab"`
}

// Tabs that may be remembered as start_tab. The Logs tab never is.
const (
	TabUpload = "upload"
	TabVideos = "videos"
)

const (
	defaultPrefsPath = "~/.config/vidlift/prefs.toml"
	defaultTheme     = "Nightfox"
)

// Defaults opens on the Upload tab with the Nightfox theme.
func Defaults() Prefs {
	return Prefs{Theme: defaultTheme, StartTab: TabUpload}
}

// DefaultPath is where the TUI keeps prefs when --prefs is not given.
func DefaultPath() string {
	return defaultPrefsPath
}

// Load returns the prefs at path, or Defaults when the file cannot be used.
// The error is always nil; it is kept so callers treat Load like the config
// loader.
func Load(path string) (Prefs, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Defaults(), nil
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		return Defaults(), nil
	}

	p := Defaults()
	if err := toml.Unmarshal(data, &p); err != nil {
		return Defaults(), nil
	}
	return p.normalized(), nil
}

// normalized replaces a blank theme and any start tab vidlift does not open
// on with their defaults.
func (p Prefs) normalized() Prefs {
	if strings.TrimSpace(p.Theme) == "" {
		p.Theme = defaultTheme
	}
	if strings.EqualFold(strings.TrimSpace(p.StartTab), TabVideos) {
		p.StartTab = TabVideos
	} else {
		p.StartTab = TabUpload
	}
	return p
}

// Save writes p to path, creating the parent directory.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve prefs path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	data, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode prefs: %w", err)
	}
	if err := os.WriteFile(resolved, data, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	return nil
}

// resolvePath maps a blank path to the default and expands a leading ~.
func resolvePath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		trimmed = defaultPrefsPath
	}
	if rest, ok := strings.CutPrefix(trimmed, "~"); ok {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, rest)
	}
	return filepath.Abs(trimmed)
}
