// Package operations orchestrates the report pipeline: one Run call drives a
// workbook from ingestion through analysis, artifact generation, and
// packaging, and returns the archive descriptor.
package operations

import "errors"

// Run-fatal sentinels. Only ingestion and packaging can fail a run; every
// intermediate stage records its shortfalls and moves forward.
var (
	ErrIngestion = errors.New("workbook ingestion failed")
	ErrPackaging = errors.New("archive packaging failed")
)
