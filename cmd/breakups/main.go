// Command breakups generates one report archive from a workbook on disk.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"breakupscli/internal/config"
	"breakupscli/internal/infrastructure"
	"breakupscli/internal/operations"
	"breakupscli/pkg/contracts/domain"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "breakups: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		filePath   = flag.String("file", "", "path to the comparables workbook (.xlsx)")
		clientName = flag.String("client", "", "client display name for the report")
		outDir     = flag.String("out", "", "data directory for archives (default from configuration)")
	)
	flag.Parse()

	if *filePath == "" || *clientName == "" {
		flag.Usage()
		return fmt.Errorf("-file and -client are required")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if *outDir != "" {
		cfg.Paths.DataDir = *outDir
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	slog.SetDefault(logger)

	data, err := os.ReadFile(*filePath)
	if err != nil {
		return fmt.Errorf("read workbook: %w", err)
	}

	pipeline := operations.NewPipeline(logger, cfg, newConsoleSink())
	result := pipeline.Run(context.Background(), data, *clientName)
	if !result.Success {
		return fmt.Errorf("run failed: %s", result.Error)
	}

	fmt.Printf("archive: %s (%d bytes)\n", result.ZipPath, result.ZipSize)
	fmt.Printf("contents: excel=%t charts=%d pdfs=%d propertyradar=%t data=%d\n",
		result.Contents.Excel, result.Contents.Charts, result.Contents.PDFs,
		result.Contents.PropertyRadar, result.Contents.DataFiles)
	return nil
}

// consoleSink prints each stage once as it becomes active.
type consoleSink struct {
	mu   sync.Mutex
	seen map[operations.Stage]bool
}

func newConsoleSink() *consoleSink {
	return &consoleSink{seen: make(map[operations.Stage]bool)}
}

func (s *consoleSink) RunStarted(runID, clientName string) {
	fmt.Printf("run %s started for %s\n", runID, clientName)
}

func (s *consoleSink) StageChanged(snap operations.StateSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, stage := range snap.Stages {
		if stage.Status == operations.StageStatusActive && !s.seen[stage.Stage] {
			s.seen[stage.Stage] = true
			fmt.Printf("  %s...\n", stage.Stage)
		}
	}
}

func (s *consoleSink) RunFinished(string, domain.RunResult) {}
