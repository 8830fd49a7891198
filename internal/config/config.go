// Package config loads jdex settings from layered JSONC files.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/tailscale/hujson"
)

// FileName is the project config file looked up in the working directory.
const FileName = ".jdex.json"

var (
	ErrFileNotFound  = errors.New("config file not found")
	ErrFileRead      = errors.New("cannot read config file")
	ErrInvalid       = errors.New("invalid config file")
	ErrDatabaseEmpty = errors.New("database path cannot be empty")
	ErrLogLevel      = errors.New("unknown log level")
)

// Config holds all configuration options.
type Config struct {
	// From config files
	Database    string `json:"database"`
	SeedFile    string `json:"seed_file,omitempty"`
	HistoryFile string `json:"history_file,omitempty"`
	LogLevel    string `json:"log_level,omitempty"`

	// Sources tracks which config files were loaded (for diagnostics)
	Sources Sources `json:"-"`
}

// Sources tracks which config files were loaded.
type Sources struct {
	Global  string
	Project string
}

// Level returns the zerolog level named by LogLevel. Load has already
// rejected unknown names.
func (c Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || c.LogLevel == "" {
		return zerolog.WarnLevel
	}
	return lvl
}

// dataDir is where the database and history live by default:
// $XDG_DATA_HOME/jdex, else ~/.local/share/jdex, else the working directory.
func dataDir(env map[string]string, workDir string) string {
	if xdg := env["XDG_DATA_HOME"]; xdg != "" {
		return filepath.Join(xdg, "jdex")
	}
	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".local", "share", "jdex")
	}
	return workDir
}

// Default returns the configuration used when no file sets a key.
func Default(env map[string]string, workDir string) Config {
	dir := dataDir(env, workDir)
	return Config{
		Database:    filepath.Join(dir, "jdex.db"),
		HistoryFile: filepath.Join(dir, "sql_history"),
		LogLevel:    "warn",
	}
}

// globalPath returns $XDG_CONFIG_HOME/jdex/config.json, falling back to
// ~/.config/jdex/config.json. Empty if neither can be determined.
func globalPath(env map[string]string) string {
	if xdg := env["XDG_CONFIG_HOME"]; xdg != "" {
		return filepath.Join(xdg, "jdex", "config.json")
	}
	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".config", "jdex", "config.json")
	}
	return ""
}

// LoadInput holds the inputs for Load.
type LoadInput struct {
	WorkDir          string            // if empty, os.Getwd() is used
	ConfigPath       string            // --config flag value
	DatabaseOverride string            // --db flag value; empty means no override
	Env              map[string]string // environment variables
}

// Load resolves configuration with the following precedence (highest wins):
//  1. Defaults
//  2. Global user config
//  3. Project config (.jdex.json in the working directory), or the
//     explicit --config file instead when one is given
//  4. CLI overrides
//
// Relative paths in files and flags are resolved against the working
// directory.
func Load(in LoadInput) (Config, error) {
	workDir := in.WorkDir
	if workDir == "" {
		var err error
		if workDir, err = os.Getwd(); err != nil {
			return Config{}, fmt.Errorf("cannot get working directory: %w", err)
		}
	}

	cfg := Default(in.Env, workDir)

	if path := globalPath(in.Env); path != "" {
		global, loaded, err := loadFile(path, false)
		if err != nil {
			return Config{}, err
		}
		if loaded {
			cfg = merge(cfg, global)
			cfg.Sources.Global = path
		}
	}

	projectPath, mustExist := filepath.Join(workDir, FileName), false
	if in.ConfigPath != "" {
		projectPath, mustExist = resolve(workDir, in.ConfigPath), true
	}
	project, loaded, err := loadFile(projectPath, mustExist)
	if err != nil {
		return Config{}, err
	}
	if loaded {
		cfg = merge(cfg, project)
		cfg.Sources.Project = projectPath
	}

	if in.DatabaseOverride != "" {
		cfg.Database = in.DatabaseOverride
	}

	if _, err := zerolog.ParseLevel(cfg.LogLevel); err != nil {
		return Config{}, fmt.Errorf("%w: %q", ErrLogLevel, cfg.LogLevel)
	}

	cfg.Database = resolve(workDir, cfg.Database)
	cfg.SeedFile = resolve(workDir, cfg.SeedFile)
	cfg.HistoryFile = resolve(workDir, cfg.HistoryFile)
	return cfg, nil
}

func resolve(workDir, path string) string {
	if path == "" || path == ":memory:" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(workDir, path)
}

// loadFile reads one config file. A missing optional file is not an
// error and reports loaded=false.
func loadFile(path string, mustExist bool) (Config, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		switch {
		case errors.Is(err, os.ErrNotExist) && mustExist:
			return Config{}, false, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		case errors.Is(err, os.ErrNotExist):
			return Config{}, false, nil
		default:
			return Config{}, false, fmt.Errorf("%w: %s: %w", ErrFileRead, path, err)
		}
	}

	cfg, err := parse(data)
	if err != nil {
		return Config{}, false, fmt.Errorf("%w %s: %w", ErrInvalid, path, err)
	}
	return cfg, true, nil
}

// parse decodes JSONC. Unknown keys and an explicitly empty database
// are errors.
func parse(data []byte) (Config, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, fmt.Errorf("invalid JSONC: %w", err)
	}

	var cfg Config
	dec := json.NewDecoder(bytes.NewReader(standardized))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("invalid JSON: %w", err)
	}

	var raw map[string]any
	_ = json.Unmarshal(standardized, &raw)
	if v, ok := raw["database"]; ok {
		if s, ok := v.(string); ok && s == "" {
			return Config{}, ErrDatabaseEmpty
		}
	}
	return cfg, nil
}

func merge(base, overlay Config) Config {
	if overlay.Database != "" {
		base.Database = overlay.Database
	}
	if overlay.SeedFile != "" {
		base.SeedFile = overlay.SeedFile
	}
	if overlay.HistoryFile != "" {
		base.HistoryFile = overlay.HistoryFile
	}
	if overlay.LogLevel != "" {
		base.LogLevel = overlay.LogLevel
	}
	return base
}
