// Package wspcli holds the pieces shared by the wsp-create, wsp-update,
// and wsp-dump command-line tools: layered JSONC configuration and the
// two small text grammars spec.md section 6 uses for archive and point
// arguments.
package wspcli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tailscale/hujson"
)

// Config holds the options every wsp-* tool shares.
type Config struct {
	Mapping string  `json:"mapping,omitempty"` //nolint:tagliatelle // snake_case for config file
	XFF     float64 `json:"xff,omitempty"`
	Editor  string  `json:"editor,omitempty"`
}

// ConfigFileName is the default project config file name.
const ConfigFileName = ".wsp.json"

// DefaultConfig returns the built-in defaults, overridden by config files
// and then by CLI flags, in that order (spec.md section 6's mapping enum
// default is "file").
func DefaultConfig() Config {
	return Config{
		Mapping: "file",
		XFF:     0.5,
	}
}

// LoadConfig loads configuration with the following precedence, highest
// last:
//  1. DefaultConfig
//  2. Global user config ($XDG_CONFIG_HOME/wsp/config.json or
//     ~/.config/wsp/config.json)
//  3. Project config file (.wsp.json in workDir)
//  4. CLI overrides, applied by the caller after LoadConfig returns
func LoadConfig(workDir string, env []string) (Config, error) {
	cfg := DefaultConfig()

	globalCfg, err := loadOptional(globalConfigPath(env))
	if err != nil {
		return Config{}, err
	}

	cfg = merge(cfg, globalCfg)

	projectCfg, err := loadOptional(filepath.Join(workDir, ConfigFileName))
	if err != nil {
		return Config{}, err
	}

	cfg = merge(cfg, projectCfg)

	return cfg, nil
}

func globalConfigPath(env []string) string {
	for _, e := range env {
		if after, ok := strings.CutPrefix(e, "XDG_CONFIG_HOME="); ok {
			return filepath.Join(after, "wsp", "config.json")
		}
	}

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "wsp", "config.json")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".config", "wsp", "config.json")
}

// loadOptional reads and parses a JSONC config file. A missing file (or
// an empty path) is not an error: it returns the zero Config.
func loadOptional(path string) (Config, error) {
	if path == "" {
		return Config{}, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // path is user-controlled by design
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}

		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, fmt.Errorf("invalid JSONC in %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(standardized, &cfg); err != nil {
		return Config{}, fmt.Errorf("invalid JSON in %s: %w", path, err)
	}

	return cfg, nil
}

func merge(base, overlay Config) Config {
	if overlay.Mapping != "" {
		base.Mapping = overlay.Mapping
	}

	if overlay.XFF != 0 {
		base.XFF = overlay.XFF
	}

	if overlay.Editor != "" {
		base.Editor = overlay.Editor
	}

	return base
}
