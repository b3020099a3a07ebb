package domain

import (
	"time"
)

// RunMeta is the summary metadata carried from ingestion through packaging.
type RunMeta struct {
	RunID           string    `json:"run_id"`
	ClientName      string    `json:"client_name"`
	AnalysisDate    time.Time `json:"analysis_date"`
	TotalProperties int       `json:"total_properties"`
	LeaseCount      int       `json:"lease_count"`
}

// ChartArtifact ties one rendered chart image to its analysis slot.
type ChartArtifact struct {
	AnalysisID int    `json:"analysis_id"`
	Path       string `json:"path"`
	Err        string `json:"error,omitempty"`
}

// Succeeded reports whether the chart was actually written.
func (c ChartArtifact) Succeeded() bool {
	return c.Err == "" && c.Path != ""
}

// PackageContents records the actual artifact counts included in the archive.
// Counts are derived from what was written, never from what was planned.
type PackageContents struct {
	Excel         bool `json:"excel"`
	Charts        int  `json:"charts"`
	PDFs          int  `json:"pdfs"`
	PropertyRadar bool `json:"propertyRadar"`
	DataFiles     int  `json:"dataFiles"`
}

// RunResult is the single descriptor returned to the upload handler. Success
// is false only when ingestion failed or the archive could not be written.
type RunResult struct {
	Success  bool            `json:"success"`
	FileID   string          `json:"fileId,omitempty"`
	FileName string          `json:"fileName,omitempty"`
	ZipPath  string          `json:"zipPath,omitempty"`
	ZipSize  int64           `json:"zipSize,omitempty"`
	Contents PackageContents `json:"contents"`
	Error    string          `json:"error,omitempty"`
}
