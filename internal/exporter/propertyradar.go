// Package exporter derives the secondary data artifacts shipped alongside the
// report archive: the PropertyRadar-layout workbook and the JSON/CSV dumps.
package exporter

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"breakupscli/internal/parsing"
	"breakupscli/pkg/contracts/domain"
)

const propertyRadarSheet = "PropertyRadar"

// propertyRadarColumns is the fixed import layout PropertyRadar expects.
// Order matters; their importer maps by position, not by header text.
var propertyRadarColumns = []string{
	"Address", "City", "APN", "Type",
	"Beds", "Baths", "SqFt", "Lot SqFt", "Year Built",
	"Price", "Monthly Rent", "Est Value",
	"HOA", "HOA Fee", "STR Eligible",
	"Renovation", "Status", "Source",
	"List Date", "Close Date",
	"Assessed Value", "Annual Tax",
}

// BuildPropertyRadar transforms the ingested records into a new workbook in
// the PropertyRadar column layout. It is a pure transform of the record set
// and never touches analysis results. Returns the deterministic file name and
// the workbook bytes.
func BuildPropertyRadar(wb *parsing.Workbook, clientName string, date time.Time) (string, []byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", propertyRadarSheet); err != nil {
		return "", nil, fmt.Errorf("failed to name export sheet: %w", err)
	}

	header := make([]interface{}, len(propertyRadarColumns))
	for i, col := range propertyRadarColumns {
		header[i] = col
	}
	if err := f.SetSheetRow(propertyRadarSheet, "A1", &header); err != nil {
		return "", nil, fmt.Errorf("failed to write export header: %w", err)
	}

	for i, rec := range wb.Records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return "", nil, fmt.Errorf("failed to address export row %d: %w", i+2, err)
		}
		row := radarRow(rec)
		if err := f.SetSheetRow(propertyRadarSheet, cell, &row); err != nil {
			return "", nil, fmt.Errorf("failed to write export row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return "", nil, fmt.Errorf("failed to serialize PropertyRadar workbook: %w", err)
	}

	name := fmt.Sprintf("PropertyRadar_%s_%s.xlsx", SafeName(clientName), date.Format("2006-01-02"))
	return name, buf.Bytes(), nil
}

// radarRow maps one record onto the fixed column layout. Absent optional
// fields stay as empty cells rather than zeros.
func radarRow(rec domain.PropertyRecord) []interface{} {
	return []interface{}{
		rec.Address, rec.City, rec.APN, string(rec.Kind),
		cellInt(rec.Bedrooms), cellFloat(rec.Bathrooms), cellFloat(rec.SquareFeet),
		cellFloat(rec.LotSqFt), cellInt(rec.YearBuilt),
		cellFloat(rec.Price), cellFloat(rec.MonthlyRent), cellFloat(rec.EstimatedValue),
		yesNo(rec.HasHOA), cellFloat(rec.HOAFee), yesNo(rec.STREligible),
		string(rec.Renovation), string(rec.Status), string(rec.Source),
		cellDate(rec.ListDate), cellDate(rec.CloseDate),
		cellFloat(rec.AssessedValue), cellFloat(rec.AnnualTax),
	}
}

func cellFloat(p *float64) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

func cellInt(p *int) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

func cellDate(p *time.Time) interface{} {
	if p == nil {
		return nil
	}
	return p.Format("2006-01-02")
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

// SafeName turns a client display name into a filename-safe token. Spaces
// become underscores; anything outside [A-Za-z0-9_-] is dropped.
func SafeName(name string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "Client"
	}
	return b.String()
}
