// Package pdf composes the five themed narrative report documents.
package pdf

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-pdf/fpdf"

	"breakupscli/pkg/contracts/domain"
)

// Document describes one of the five fixed report documents.
type Document struct {
	Key        string
	Title      string
	Categories []domain.Category
}

// Documents returns the fixed five-document set, in report order.
func Documents() []Document {
	return []Document{
		{"executive_summary", "Executive Summary", []domain.Category{
			domain.CategoryCharacteristics, domain.CategoryPositioning,
			domain.CategoryTimeLocation, domain.CategoryActivity, domain.CategoryFinancial,
		}},
		{"property_characteristics", "Property Characteristics", []domain.Category{domain.CategoryCharacteristics}},
		{"market_analysis", "Market Analysis", []domain.Category{domain.CategoryPositioning, domain.CategoryTimeLocation}},
		{"financial_analysis", "Financial Analysis", []domain.Category{domain.CategoryFinancial}},
		{"market_activity", "Market Activity", []domain.Category{domain.CategoryActivity}},
	}
}

// DocumentResult is the per-document outcome.
type DocumentResult struct {
	Key   string
	Title string
	Path  string
	Err   string
}

// Succeeded reports whether the document was written.
func (d DocumentResult) Succeeded() bool { return d.Err == "" && d.Path != "" }

// ComposeReport aggregates the five document outcomes.
type ComposeReport struct {
	Documents      []DocumentResult
	SuccessfulPDFs int
}

// SuccessfulPaths returns the written PDF paths in document order.
func (r *ComposeReport) SuccessfulPaths() []string {
	out := make([]string, 0, len(r.Documents))
	for _, d := range r.Documents {
		if d.Succeeded() {
			out = append(out, d.Path)
		}
	}
	return out
}

// Composer builds the five PDFs from the battery results and chart paths.
type Composer struct {
	logger *slog.Logger
}

// NewComposer creates a composer. A nil logger falls back to slog.Default.
func NewComposer(logger *slog.Logger) *Composer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Composer{logger: logger}
}

// Compose attempts all five documents. chartPaths maps analysis id to a
// rendered chart image; missing entries simply omit the image. One document's
// failure never blocks the other four.
func (c *Composer) Compose(ctx context.Context, results []domain.AnalysisResult, chartPaths map[int]string, meta domain.RunMeta, dir string) *ComposeReport {
	report := &ComposeReport{}

	for _, doc := range Documents() {
		outcome := DocumentResult{Key: doc.Key, Title: doc.Title}

		if ctx.Err() != nil {
			outcome.Err = fmt.Sprintf("composition cancelled: %v", ctx.Err())
			report.Documents = append(report.Documents, outcome)
			continue
		}

		path := filepath.Join(dir, doc.Key+".pdf")
		if err := c.composeOne(doc, results, chartPaths, meta, path); err != nil {
			outcome.Err = err.Error()
			c.logger.WarnContext(ctx, "pdf composition failed",
				slog.String("document", doc.Key),
				slog.String("error", err.Error()))
		} else {
			outcome.Path = path
			report.SuccessfulPDFs++
		}
		report.Documents = append(report.Documents, outcome)
	}

	c.logger.InfoContext(ctx, "pdf composition complete",
		slog.Int("attempted", len(report.Documents)),
		slog.Int("successful", report.SuccessfulPDFs))

	return report
}

func (c *Composer) composeOne(doc Document, results []domain.AnalysisResult, chartPaths map[int]string, meta domain.RunMeta, path string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf composition panicked: %v", r)
			os.Remove(path)
		}
	}()

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 10, fmt.Sprintf("Breakups Report  |  %s  |  Page %d", meta.ClientName, pdf.PageNo()),
			"", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 22)
	pdf.CellFormat(0, 14, doc.Title, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Prepared for %s on %s  |  %d sale comps, %d lease comps",
		meta.ClientName, meta.AnalysisDate.Format("January 2, 2006"),
		meta.TotalProperties, meta.LeaseCount), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	if doc.Key == "executive_summary" {
		c.writeExecutiveSummary(pdf, results)
	} else {
		for _, cat := range doc.Categories {
			c.writeCategorySection(pdf, cat, results, chartPaths)
		}
	}

	if pdf.Err() {
		return fmt.Errorf("pdf builder error: %v", pdf.Error())
	}
	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("failed to write pdf: %w", err)
	}
	return nil
}

// writeExecutiveSummary synthesizes every category into a one-line-per-
// analysis digest instead of embedding all 22 charts.
func (c *Composer) writeExecutiveSummary(pdf *fpdf.Fpdf, results []domain.AnalysisResult) {
	ok, degraded := 0, 0
	for _, r := range results {
		if r.Status == domain.AnalysisOK {
			ok++
		} else {
			degraded++
		}
	}
	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 6, fmt.Sprintf(
		"This report synthesizes %d market-comparison analyses across five categories. "+
			"%d analyses completed; %d had insufficient data.", len(results), ok, degraded),
		"", "L", false)
	pdf.Ln(2)

	for _, cat := range []domain.Category{
		domain.CategoryCharacteristics, domain.CategoryPositioning,
		domain.CategoryTimeLocation, domain.CategoryActivity, domain.CategoryFinancial,
	} {
		c.ensureRoom(pdf, 30)
		pdf.SetFont("Helvetica", "B", 14)
		pdf.CellFormat(0, 9, cat.CategoryName(), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		for _, r := range results {
			if r.Category != cat {
				continue
			}
			c.ensureRoom(pdf, 14)
			pdf.SetFont("Helvetica", "B", 10)
			pdf.CellFormat(0, 5, r.Name, "", 1, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", 10)
			pdf.MultiCell(0, 5, Insight(r), "", "L", false)
			pdf.Ln(1)
		}
		pdf.Ln(2)
	}
}

// writeCategorySection writes the full analysis blocks of one category,
// chart images included where available.
func (c *Composer) writeCategorySection(pdf *fpdf.Fpdf, cat domain.Category, results []domain.AnalysisResult, chartPaths map[int]string) {
	c.ensureRoom(pdf, 20)
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, cat.CategoryName(), "", 1, "L", false, 0, "")
	pdf.Ln(1)

	for _, r := range results {
		if r.Category != cat {
			continue
		}

		chartPath := chartPaths[r.ID]
		needed := 16.0
		if chartPath != "" {
			needed = 110
		}
		c.ensureRoom(pdf, needed)

		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 7, fmt.Sprintf("%d. %s", r.ID, r.Name), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, Insight(r), "", "L", false)

		if chartPath != "" {
			pdf.Ln(1)
			pdf.ImageOptions(chartPath, pdf.GetX(), pdf.GetY(), 170, 0, false,
				fpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}, 0, "")
			// 16:9 image scaled to 170mm wide.
			pdf.SetY(pdf.GetY() + 170*9/16 + 4)
		} else {
			pdf.Ln(3)
		}
	}
	pdf.Ln(3)
}

// ensureRoom starts a new page when fewer than needed millimeters remain.
func (c *Composer) ensureRoom(pdf *fpdf.Fpdf, needed float64) {
	_, pageH := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	if pdf.GetY()+needed > pageH-bottom-10 {
		pdf.AddPage()
	}
}
