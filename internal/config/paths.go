package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains every resolved file system location of a run.
// This is the single source of truth for file paths in the application.
type Paths struct {
	Root         string
	CPIPanel     string
	FXWorkbook   string
	ProcessedDir string
	OutputsDir   string
	LogsDir      string
}

// ResolvePaths turns the configured paths into absolute ones. Relative
// entries are joined to Root, and Root itself is resolved against the
// working directory.
func ResolvePaths(cfg PathsConfig) (*Paths, error) {
	root := cfg.Root
	if root == "" {
		root = "."
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root %s: %w", cfg.Root, err)
	}

	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(root, p)
	}

	return &Paths{
		Root:         root,
		CPIPanel:     resolve(cfg.CPIPanel),
		FXWorkbook:   resolve(cfg.FXWorkbook),
		ProcessedDir: resolve(cfg.ProcessedDir),
		OutputsDir:   resolve(cfg.OutputsDir),
		LogsDir:      resolve(cfg.LogsDir),
	}, nil
}

// EnsureDirectories creates the output directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	dirs := []string{p.ProcessedDir, p.OutputsDir}
	if p.LogsDir != "" {
		dirs = append(dirs, p.LogsDir)
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// ProcessedPath returns the full path of a processed data file
func (p *Paths) ProcessedPath(name string) string {
	return filepath.Join(p.ProcessedDir, name)
}

// OutputPath returns the full path of an analysis output file
func (p *Paths) OutputPath(name string) string {
	return filepath.Join(p.OutputsDir, name)
}

// Resolve joins a relative path to Root
func (p *Paths) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(p.Root, path)
}

// ValidateInputs checks that the raw input files exist
func (p *Paths) ValidateInputs() error {
	for _, f := range []string{p.CPIPanel, p.FXWorkbook} {
		if _, err := os.Stat(f); err != nil {
			return fmt.Errorf("input file %s: %w", f, err)
		}
	}
	return nil
}

// LogPathResolution logs all resolved paths for debugging
func (p *Paths) LogPathResolution() {
	slog.Debug("paths_resolved",
		slog.String("root", p.Root),
		slog.String("cpi_panel", p.CPIPanel),
		slog.String("fx_workbook", p.FXWorkbook),
		slog.String("processed_dir", p.ProcessedDir),
		slog.String("outputs_dir", p.OutputsDir),
		slog.String("logs_dir", p.LogsDir))
}
