// Package testutil provides shared fixtures for pipeline tests.
package testutil

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/xuri/excelize/v2"
)

// CompRow is one comparable row in a generated test workbook.
type CompRow struct {
	Address    string
	Price      float64
	Rent       float64
	Bedrooms   int
	Bathrooms  float64
	SquareFeet float64
	YearBuilt  int
	HOAFee     float64
	STR        string
	Renovation string
	Status     string
	Source     string
	CloseDate  string
}

// WorkbookSpec describes a generated test workbook.
type WorkbookSpec struct {
	SaleRows  []CompRow
	LeaseRows []CompRow
	// OmitAssessor drops the assessor sheet to exercise the fatal-ingestion path.
	OmitAssessor bool
	// Analysis holds label/value pairs for the analysis sheet.
	Analysis [][]string
}

// DefaultAnalysisRows returns an analysis sheet with a full set of subject
// assumptions, NOI inputs included.
func DefaultAnalysisRows() [][]string {
	return [][]string{
		{"Subject Address", "100 Main St"},
		{"City", "Austin"},
		{"Bedrooms", "3"},
		{"Bathrooms", "2"},
		{"Square Feet", "1800"},
		{"Year Built", "1995"},
		{"Estimated Value", "500000"},
		{"Gross Income", "48000"},
		{"Operating Expenses", "12000"},
		{"Renovation Cost", "60000"},
		{"Improved Income", "60000"},
	}
}

// BuildWorkbook writes an xlsx with the four pipeline sheets and returns its
// bytes. Fails the test on any write error.
func BuildWorkbook(t *testing.T, spec WorkbookSpec) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	writeCompSheet(t, f, "Sale Comps", "Close Price", spec.SaleRows)
	writeCompSheet(t, f, "Lease Comps", "Monthly Rent", spec.LeaseRows)

	if !spec.OmitAssessor {
		mustNewSheet(t, f, "Assessor Data")
		writeRow(t, f, "Assessor Data", 1, []interface{}{"Address", "APN", "Assessed Value", "Annual Tax"})
		row := 2
		for _, set := range [][]CompRow{spec.SaleRows, spec.LeaseRows} {
			for _, r := range set {
				writeRow(t, f, "Assessor Data", row, []interface{}{r.Address, fmt.Sprintf("123-%03d", row), r.Price * 0.8, 5000})
				row++
			}
		}
	}

	mustNewSheet(t, f, "Analysis")
	analysis := spec.Analysis
	if analysis == nil {
		analysis = DefaultAnalysisRows()
	}
	for i, pair := range analysis {
		cells := make([]interface{}, len(pair))
		for j, v := range pair {
			cells[j] = v
		}
		writeRow(t, f, "Analysis", i+1, cells)
	}

	// Drop the default sheet so discovery only sees real ones.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		t.Fatalf("delete default sheet: %v", err)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

func writeCompSheet(t *testing.T, f *excelize.File, sheet, priceHeader string, rows []CompRow) {
	t.Helper()
	mustNewSheet(t, f, sheet)
	writeRow(t, f, sheet, 1, []interface{}{
		"Address", priceHeader, "Bedrooms", "Bathrooms", "Sq Ft", "Year Built",
		"HOA Fee", "STR Eligible", "Renovation", "Status", "Comp Source", "Close Date",
	})
	for i, r := range rows {
		price := interface{}(r.Price)
		if priceHeader == "Monthly Rent" {
			price = r.Rent
		}
		var hoa interface{}
		if r.HOAFee > 0 {
			hoa = r.HOAFee
		} else {
			hoa = ""
		}
		writeRow(t, f, sheet, i+2, []interface{}{
			r.Address, price, r.Bedrooms, r.Bathrooms, r.SquareFeet, r.YearBuilt,
			hoa, r.STR, r.Renovation, r.Status, r.Source, r.CloseDate,
		})
	}
}

func mustNewSheet(t *testing.T, f *excelize.File, name string) {
	t.Helper()
	if _, err := f.NewSheet(name); err != nil {
		t.Fatalf("new sheet %s: %v", name, err)
	}
}

func writeRow(t *testing.T, f *excelize.File, sheet string, row int, cells []interface{}) {
	t.Helper()
	for col, v := range cells {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			t.Fatalf("set cell %s!%s: %v", sheet, cell, err)
		}
	}
}
