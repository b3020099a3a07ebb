// Package packaging assembles the final report archive and derives the
// manifest from what was actually written.
package packaging

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"breakupscli/internal/exporter"
	"breakupscli/pkg/contracts/domain"
)

// Bundle carries every artifact a run produced. Paths reference files already
// on disk; byte slices are embedded directly. Empty or missing members are
// simply left out of the archive, never treated as fatal.
type Bundle struct {
	SourceWorkbook []byte
	Charts         []string
	PDFs           []string
	RadarName      string
	RadarData      []byte
	DataFiles      []string
}

// Archive describes the written zip.
type Archive struct {
	FileName string
	Path     string
	Size     int64
	Contents domain.PackageContents
}

// Packager writes report archives.
type Packager struct {
	logger *slog.Logger
}

// NewPackager creates a packager. A nil logger falls back to slog.Default.
func NewPackager(logger *slog.Logger) *Packager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Packager{logger: logger}
}

// Package writes the archive for one run into dir. The manifest counts what
// actually landed in the zip; a chart or PDF that cannot be read is skipped
// and logged, while a zip write failure aborts the whole archive.
func (p *Packager) Package(ctx context.Context, meta domain.RunMeta, bundle Bundle, dir string) (*Archive, error) {
	fileName := fmt.Sprintf("Breakups_Report_%s_%s.zip",
		exporter.SafeName(meta.ClientName), meta.AnalysisDate.Format("2006-01-02"))
	path := filepath.Join(dir, fileName)

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create archive: %w", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	contents := domain.PackageContents{}

	if len(bundle.SourceWorkbook) > 0 {
		name := fmt.Sprintf("Workbook_%s.xlsx", exporter.SafeName(meta.ClientName))
		if err := p.addBytes(zw, name, bundle.SourceWorkbook); err != nil {
			return nil, err
		}
		contents.Excel = true
	}

	for _, chart := range bundle.Charts {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("packaging cancelled: %w", err)
		}
		if ok, err := p.addFile(ctx, zw, chart); err != nil {
			return nil, err
		} else if ok {
			contents.Charts++
		}
	}

	for _, pdf := range bundle.PDFs {
		if ok, err := p.addFile(ctx, zw, pdf); err != nil {
			return nil, err
		} else if ok {
			contents.PDFs++
		}
	}

	if bundle.RadarName != "" && len(bundle.RadarData) > 0 {
		if err := p.addBytes(zw, bundle.RadarName, bundle.RadarData); err != nil {
			return nil, err
		}
		contents.PropertyRadar = true
	}

	for _, data := range bundle.DataFiles {
		if ok, err := p.addFile(ctx, zw, data); err != nil {
			return nil, err
		} else if ok {
			contents.DataFiles++
		}
	}

	if err := p.addBytes(zw, "README.txt", []byte(BuildReadme(meta, contents))); err != nil {
		return nil, err
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close archive: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat archive: %w", err)
	}

	p.logger.InfoContext(ctx, "archive written",
		slog.String("run_id", meta.RunID),
		slog.String("file", fileName),
		slog.Int64("size", info.Size()),
		slog.Int("charts", contents.Charts),
		slog.Int("pdfs", contents.PDFs))

	return &Archive{
		FileName: fileName,
		Path:     path,
		Size:     info.Size(),
		Contents: contents,
	}, nil
}

// addFile copies one on-disk artifact into the zip under its base name.
// An unreadable source file is skipped with ok=false.
func (p *Packager) addFile(ctx context.Context, zw *zip.Writer, path string) (bool, error) {
	src, err := os.Open(path)
	if err != nil {
		p.logger.WarnContext(ctx, "artifact missing at packaging time",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return false, nil
	}
	defer src.Close()

	dst, err := zw.Create(filepath.Base(path))
	if err != nil {
		return false, fmt.Errorf("failed to add %s to archive: %w", filepath.Base(path), err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		return false, fmt.Errorf("failed to copy %s into archive: %w", filepath.Base(path), err)
	}
	return true, nil
}

func (p *Packager) addBytes(zw *zip.Writer, name string, data []byte) error {
	dst, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("failed to add %s to archive: %w", name, err)
	}
	if _, err := dst.Write(data); err != nil {
		return fmt.Errorf("failed to write %s into archive: %w", name, err)
	}
	return nil
}
