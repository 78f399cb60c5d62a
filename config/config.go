// Package config loads and validates the download run configuration
// from a JSON or YAML file.
package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"gridfetch/internal/griderrors"
	"gridfetch/internal/models"
)

// Backend tags accepted in configuration files.
const (
	BackendPerFile = "xrootd"
	BackendBatch   = "alien"
)

type Config struct {
	// Backend selects the transfer strategy: BackendPerFile or
	// BackendBatch. The legacy spellings "TGrid" and "alienpy" are
	// accepted and mapped.
	Backend string `json:"backend" yaml:"backend"`

	// OutputDir is the root of the local download tree.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// RemoteFiles lists explicit remote paths to download.
	RemoteFiles []string `json:"remote_files" yaml:"remote_files"`

	// RemoteGlobs lists wildcard searches resolved against the grid
	// catalog; matches are appended to RemoteFiles.
	RemoteGlobs []models.GlobSpec `json:"remote_files_glob" yaml:"remote_files_glob"`

	// NumWorkers sizes the per-file worker pool and the batched
	// client's thread count.
	NumWorkers int `json:"num_workers" yaml:"num_workers"`

	// KeepDepth is the number of trailing remote directory segments
	// preserved locally. Absent defaults to 5; an explicit null
	// preserves the full remote hierarchy.
	KeepDepth *int `json:"keep_depth" yaml:"keep_depth"`

	// BackendArgs is passed through to the batched client call.
	BackendArgs []string `json:"backend_args" yaml:"backend_args"`

	// QueryCommand is the grid client tool used for catalog searches,
	// session checks and batched copies.
	QueryCommand string `json:"query_command" yaml:"query_command"`

	// CopyCommand is the single-file transfer tool used by the
	// per-file backend.
	CopyCommand string `json:"copy_command" yaml:"copy_command"`

	// FlattenPaths maps every file into a flat OutputDir using the
	// collision-avoiding unique-name strategy.
	FlattenPaths bool `json:"flatten_paths" yaml:"flatten_paths"`
}

// Default returns the configuration used when a key is absent from the
// file.
func Default() *Config {
	keep := 5
	return &Config{
		Backend:      BackendPerFile,
		OutputDir:    "grid",
		NumWorkers:   16,
		KeepDepth:    &keep,
		BackendArgs:  []string{"-timeout", "600", "-retry", "3"},
		QueryCommand: "alien.py",
		CopyCommand:  "xrdcp",
	}
}

// Load reads the configuration file at path. The format is chosen by
// extension: .yaml/.yml is parsed as YAML, everything else as JSON.
// A .env file, if present, is loaded first so the grid tools see their
// ambient credentials.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug(".env file not found, using ambient environment only")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) normalize() error {
	switch c.Backend {
	case BackendPerFile, BackendBatch:
	case "TGrid":
		c.Backend = BackendPerFile
	case "alienpy":
		c.Backend = BackendBatch
	default:
		return &griderrors.Error{
			Op:  "config",
			Err: fmt.Errorf("%w: unknown backend %q", griderrors.ErrConfig, c.Backend),
		}
	}

	if c.OutputDir == "" {
		c.OutputDir = "grid"
	}
	if c.NumWorkers <= 0 {
		c.NumWorkers = 16
	}
	if c.KeepDepth != nil && *c.KeepDepth < 0 {
		return &griderrors.Error{
			Op:  "config",
			Err: fmt.Errorf("%w: keep_depth must not be negative", griderrors.ErrConfig),
		}
	}
	if c.QueryCommand == "" {
		c.QueryCommand = "alien.py"
	}
	if c.CopyCommand == "" {
		c.CopyCommand = "xrdcp"
	}
	return nil
}
