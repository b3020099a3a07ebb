package operations

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"breakupscli/internal/analysis"
	"breakupscli/internal/charts"
	"breakupscli/internal/config"
	"breakupscli/internal/exporter"
	"breakupscli/internal/packaging"
	"breakupscli/internal/parsing"
	"breakupscli/internal/pdf"
	"breakupscli/pkg/contracts/domain"
)

// Pipeline wires the report stages together and drives the run state
// machine. One Pipeline serves many concurrent runs; all per-run state lives
// in the Run call.
type Pipeline struct {
	logger   *slog.Logger
	paths    *config.Paths
	parser   *parsing.Parser
	engine   *analysis.Engine
	renderer *charts.Renderer
	composer *pdf.Composer
	packager *packaging.Packager
	sink     ProgressSink
}

// NewPipeline builds a pipeline from configuration. A nil sink disables
// progress reporting.
func NewPipeline(logger *slog.Logger, cfg *config.Config, sink ProgressSink) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if sink == nil {
		sink = NopSink{}
	}
	return &Pipeline{
		logger:   logger,
		paths:    config.NewPaths(cfg.Paths),
		parser:   parsing.NewParser(logger),
		engine:   analysis.NewEngine(logger, cfg.Pipeline.AnalysisWorkers),
		renderer: charts.NewRenderer(logger, cfg.Pipeline.ChartWidth, cfg.Pipeline.ChartHeight),
		composer: pdf.NewComposer(logger),
		packager: packaging.NewPackager(logger),
		sink:     sink,
	}
}

// Run executes the full pipeline for one uploaded workbook. The returned
// result is self-contained; intermediate artifacts are deleted once the
// archive is written. Success is false only when ingestion or packaging
// failed.
func (p *Pipeline) Run(ctx context.Context, data []byte, clientName string) domain.RunResult {
	runID := uuid.NewString()
	state := NewRunState(runID)
	p.sink.RunStarted(runID, clientName)

	p.logger.InfoContext(ctx, "run started",
		slog.String("run_id", runID),
		slog.String("client", clientName),
		slog.Int("upload_bytes", len(data)))

	// Parsing. A bad workbook is the first of the two fatal outcomes.
	p.startStage(state, StageParsing)
	wb, err := p.parser.Parse(ctx, data, clientName)
	if err != nil {
		return p.fail(ctx, state, StageParsing, fmt.Errorf("%w: %v", ErrIngestion, err))
	}
	wb.Meta.RunID = runID
	p.completeStage(state, StageParsing,
		fmt.Sprintf("%d sale and %d lease comps", wb.Meta.TotalProperties, wb.Meta.LeaseCount))

	// The run directory holds every intermediate artifact; it goes away with
	// the run. A write failure here is a packaging-class failure.
	if err := p.paths.EnsureDirs(); err != nil {
		return p.fail(ctx, state, StagePackaging, fmt.Errorf("%w: %v", ErrPackaging, err))
	}
	runDir, err := p.paths.EnsureRunDir(runID)
	if err != nil {
		return p.fail(ctx, state, StagePackaging, fmt.Errorf("%w: %v", ErrPackaging, err))
	}
	defer func() {
		if err := os.RemoveAll(runDir); err != nil {
			p.logger.WarnContext(ctx, "failed to clean run directory",
				slog.String("run_id", runID),
				slog.String("error", err.Error()))
		}
	}()

	// Analyzing. The engine always returns the full battery.
	p.startStage(state, StageAnalyzing)
	battery := p.engine.Run(ctx, wb)
	p.completeStage(state, StageAnalyzing,
		fmt.Sprintf("%d of %d analyses ok", battery.OKCount(), analysis.BatterySize))

	// Rendering, composing, and exporting overlap. Composition waits on the
	// charts it embeds, so it shares a goroutine with rendering; the data
	// exports run beside them. Shortfalls here shrink the package, never
	// abort it.
	var (
		renderReport  *charts.RenderReport
		composeReport *pdf.ComposeReport
		radarName     string
		radarData     []byte
		dataFiles     []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p.startStage(state, StageRendering)
		renderReport = p.renderer.Render(gctx, battery.Results, runDir)
		p.completeStage(state, StageRendering,
			fmt.Sprintf("%d of %d charts rendered", renderReport.SuccessfulCharts, renderReport.TotalCharts))

		p.startStage(state, StageComposing)
		chartPaths := make(map[int]string, renderReport.SuccessfulCharts)
		for _, artifact := range renderReport.Successful() {
			chartPaths[artifact.AnalysisID] = artifact.Path
		}
		composeReport = p.composer.Compose(gctx, battery.Results, chartPaths, wb.Meta, runDir)
		p.completeStage(state, StageComposing,
			fmt.Sprintf("%d of %d documents composed", composeReport.SuccessfulPDFs, len(composeReport.Documents)))
		return nil
	})
	g.Go(func() error {
		p.startStage(state, StageExporting)

		name, bytes, err := exporter.BuildPropertyRadar(wb, clientName, wb.Meta.AnalysisDate)
		if err != nil {
			p.logger.WarnContext(gctx, "propertyradar export failed",
				slog.String("run_id", runID),
				slog.String("error", err.Error()))
		} else {
			radarName, radarData = name, bytes
		}

		jsonPath := filepath.Join(runDir, "analysis_results.json")
		if err := exporter.WriteResultsJSON(jsonPath, wb.Meta, battery.Results); err != nil {
			p.logger.WarnContext(gctx, "analysis dump failed",
				slog.String("run_id", runID),
				slog.String("error", err.Error()))
		} else {
			dataFiles = append(dataFiles, jsonPath)
		}

		csvPath := filepath.Join(runDir, "properties.csv")
		if err := exporter.WritePropertiesCSV(csvPath, wb); err != nil {
			p.logger.WarnContext(gctx, "property dump failed",
				slog.String("run_id", runID),
				slog.String("error", err.Error()))
		} else {
			dataFiles = append(dataFiles, csvPath)
		}

		p.completeStage(state, StageExporting,
			fmt.Sprintf("%d data files, propertyradar=%t", len(dataFiles), radarData != nil))
		return nil
	})
	_ = g.Wait()

	// Packaging. Counts come from what actually landed on disk.
	p.startStage(state, StagePackaging)
	bundle := packaging.Bundle{
		SourceWorkbook: wb.Source,
		PDFs:           composeReport.SuccessfulPaths(),
		RadarName:      radarName,
		RadarData:      radarData,
		DataFiles:      dataFiles,
	}
	for _, artifact := range renderReport.Successful() {
		bundle.Charts = append(bundle.Charts, artifact.Path)
	}

	archiveDir, err := p.paths.EnsureArchiveDir(runID)
	if err != nil {
		return p.fail(ctx, state, StagePackaging, fmt.Errorf("%w: %v", ErrPackaging, err))
	}
	archive, err := p.packager.Package(ctx, wb.Meta, bundle, archiveDir)
	if err != nil {
		return p.fail(ctx, state, StagePackaging, fmt.Errorf("%w: %v", ErrPackaging, err))
	}
	p.completeStage(state, StagePackaging, archive.FileName)

	state.Finish()
	p.sink.StageChanged(state.Snapshot())

	result := domain.RunResult{
		Success:  true,
		FileID:   runID,
		FileName: archive.FileName,
		ZipPath:  archive.Path,
		ZipSize:  archive.Size,
		Contents: archive.Contents,
	}
	p.sink.RunFinished(runID, result)

	p.logger.InfoContext(ctx, "run finished",
		slog.String("run_id", runID),
		slog.String("file", archive.FileName),
		slog.Int64("size", archive.Size),
		slog.Duration("duration", state.Duration()),
		slog.Int("charts", archive.Contents.Charts),
		slog.Int("pdfs", archive.Contents.PDFs))

	return result
}

func (p *Pipeline) startStage(state *RunState, stage Stage) {
	state.StartStage(stage)
	p.sink.StageChanged(state.Snapshot())
}

func (p *Pipeline) completeStage(state *RunState, stage Stage, detail string) {
	state.CompleteStage(stage, detail)
	p.sink.StageChanged(state.Snapshot())
}

func (p *Pipeline) fail(ctx context.Context, state *RunState, stage Stage, err error) domain.RunResult {
	state.FailStage(stage, err)
	snap := state.Snapshot()
	p.sink.StageChanged(snap)

	p.logger.ErrorContext(ctx, "run failed",
		slog.String("run_id", snap.RunID),
		slog.String("stage", string(stage)),
		slog.String("error", err.Error()))

	result := domain.RunResult{Success: false, Error: err.Error()}
	p.sink.RunFinished(snap.RunID, result)
	return result
}
