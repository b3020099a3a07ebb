package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths is the single source of truth for all file paths the pipeline writes.
// Every run gets its own directory under RunsDir so concurrent runs never
// share a path.
type Paths struct {
	DataDir    string
	RunsDir    string
	ArchiveDir string
	LogsDir    string
}

// NewPaths builds the path layout under the configured data directory.
//
//	data/
//	  ├── runs/      (per-run working directories, ephemeral)
//	  └── archives/  (final zip archives)
func NewPaths(cfg PathsConfig) *Paths {
	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = "data"
	}
	logsDir := cfg.LogsDir
	if logsDir == "" {
		logsDir = "logs"
	}
	return &Paths{
		DataDir:    dataDir,
		RunsDir:    filepath.Join(dataDir, "runs"),
		ArchiveDir: filepath.Join(dataDir, "archives"),
		LogsDir:    logsDir,
	}
}

// RunDir returns the working directory for one run id.
func (p *Paths) RunDir(runID string) string {
	return filepath.Join(p.RunsDir, runID)
}

// EnsureRunDir creates the working directory for a run and returns it.
func (p *Paths) EnsureRunDir(runID string) (string, error) {
	dir := p.RunDir(runID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create run directory: %w", err)
	}
	return dir, nil
}

// ArchiveDirFor returns the archive directory for one run id. Archives are
// keyed by run id so same-client, same-day runs never overwrite each other.
func (p *Paths) ArchiveDirFor(runID string) string {
	return filepath.Join(p.ArchiveDir, runID)
}

// EnsureArchiveDir creates the archive directory for a run and returns it.
func (p *Paths) EnsureArchiveDir(runID string) (string, error) {
	dir := p.ArchiveDirFor(runID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}
	return dir, nil
}

// EnsureDirs creates the base directory layout.
func (p *Paths) EnsureDirs() error {
	for _, dir := range []string{p.DataDir, p.RunsDir, p.ArchiveDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
