package exporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"breakupscli/internal/parsing"
	"breakupscli/pkg/contracts/domain"
)

// utf8BOM lets Excel open the CSV with the right encoding.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var csvHeader = []string{
	"address", "city", "apn", "kind",
	"price", "monthly_rent", "estimated_value",
	"bedrooms", "bathrooms", "square_feet", "lot_sqft", "year_built",
	"has_hoa", "hoa_fee", "str_eligible",
	"renovation", "status", "source", "property_radar",
	"list_date", "close_date",
	"assessed_value", "annual_tax",
}

// WritePropertiesCSV dumps every parsed record to a flat CSV at path.
func WritePropertiesCSV(path string, wb *parsing.Workbook) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create csv file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(utf8BOM); err != nil {
		return fmt.Errorf("failed to write csv BOM: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, rec := range wb.Records {
		if err := w.Write(csvRow(rec)); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return f.Close()
}

func csvRow(rec domain.PropertyRecord) []string {
	return []string{
		rec.Address, rec.City, rec.APN, string(rec.Kind),
		fmtFloat(rec.Price), fmtFloat(rec.MonthlyRent), fmtFloat(rec.EstimatedValue),
		fmtInt(rec.Bedrooms), fmtFloat(rec.Bathrooms), fmtFloat(rec.SquareFeet),
		fmtFloat(rec.LotSqFt), fmtInt(rec.YearBuilt),
		strconv.FormatBool(rec.HasHOA), fmtFloat(rec.HOAFee), strconv.FormatBool(rec.STREligible),
		string(rec.Renovation), string(rec.Status), string(rec.Source),
		strconv.FormatBool(rec.PropertyRadar),
		fmtDate(rec.ListDate), fmtDate(rec.CloseDate),
		fmtFloat(rec.AssessedValue), fmtFloat(rec.AnnualTax),
	}
}

func fmtFloat(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}

func fmtInt(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}

func fmtDate(p *time.Time) string {
	if p == nil {
		return ""
	}
	return p.Format("2006-01-02")
}

// resultsDocument is the envelope written to analysis_results.json.
type resultsDocument struct {
	Meta    domain.RunMeta          `json:"meta"`
	Results []domain.AnalysisResult `json:"results"`
}

// WriteResultsJSON dumps the full battery output plus run metadata to path.
func WriteResultsJSON(path string, meta domain.RunMeta, results []domain.AnalysisResult) error {
	data, err := json.MarshalIndent(resultsDocument{Meta: meta, Results: results}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal analysis results: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write analysis results: %w", err)
	}
	return nil
}
