package exporter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"breakupscli/internal/parsing"
	"breakupscli/pkg/contracts/domain"
)

func fptr(v float64) *float64 { return &v }
func iptr(v int) *int         { return &v }

func exportWorkbook() *parsing.Workbook {
	close1 := time.Date(2026, 5, 12, 0, 0, 0, 0, time.UTC)
	return &parsing.Workbook{
		Records: []domain.PropertyRecord{
			{
				Address: "12 Oak St", City: "Austin", APN: "001-22-333",
				Kind:  domain.ListingKindSale,
				Price: fptr(510000), Bedrooms: iptr(3), Bathrooms: fptr(2),
				SquareFeet: fptr(1800), YearBuilt: iptr(1998),
				HasHOA: true, HOAFee: fptr(120), STREligible: true,
				Renovation: domain.RenovationFull, Status: domain.StatusClosed,
				Source: domain.SourceDirect, CloseDate: &close1,
				AssessedValue: fptr(480000), AnnualTax: fptr(9600),
			},
			{
				Address: "44 Elm Ave", Kind: domain.ListingKindLease,
				MonthlyRent: fptr(2400), Bedrooms: iptr(2),
				Renovation: domain.RenovationNone, Status: domain.StatusActive,
				Source: domain.SourceIndirect, PropertyRadar: true,
			},
		},
		Meta: domain.RunMeta{ClientName: "Acme Client", TotalProperties: 1, LeaseCount: 1},
	}
}

func TestBuildPropertyRadar(t *testing.T) {
	wb := exportWorkbook()
	date := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	name, data, err := BuildPropertyRadar(wb, "Acme Client", date)
	require.NoError(t, err)
	assert.Equal(t, "PropertyRadar_Acme_Client_2026-08-01.xlsx", name)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(propertyRadarSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3, "header plus one row per record")

	assert.Equal(t, propertyRadarColumns, rows[0][:len(propertyRadarColumns)])

	// Spot-check the round trip on the first record.
	assert.Equal(t, "12 Oak St", rows[1][0])
	assert.Equal(t, "sale", rows[1][3])
	assert.Equal(t, "510000", rows[1][9])
	assert.Equal(t, "Yes", rows[1][12])
	assert.Equal(t, "closed", rows[1][16])
	assert.Equal(t, "2026-05-12", rows[1][19])

	// Lease record keeps absent optionals as empty cells.
	assert.Equal(t, "44 Elm Ave", rows[2][0])
	assert.Equal(t, "lease", rows[2][3])
	assert.Equal(t, "2400", rows[2][10])
}

func TestWritePropertiesCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "properties.csv")
	require.NoError(t, WritePropertiesCSV(path, exportWorkbook()))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(raw, utf8BOM), "csv should carry a UTF-8 BOM")

	records, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(raw, utf8BOM))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, csvHeader, records[0])
	assert.Equal(t, "12 Oak St", records[1][0])
	assert.Equal(t, "510000", records[1][4])
	assert.Equal(t, "true", records[1][12])
	assert.Equal(t, "", records[2][4], "absent price stays empty, not zero")
	assert.Equal(t, "true", records[2][18], "property_radar flag survives")
}

func TestWriteResultsJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "analysis_results.json")
	meta := domain.RunMeta{RunID: "run-9", ClientName: "Acme Client"}
	results := []domain.AnalysisResult{
		{ID: 8, Slug: "lease_vs_sale", Name: "Lease vs Sale",
			Category: domain.CategoryPositioning, Status: domain.AnalysisOK,
			Payload: domain.LeaseVsSale{SaleCount: 100, LeaseCount: 35}},
		{ID: 21, Slug: "expected_noi", Name: "Expected NOI",
			Category: domain.CategoryFinancial, Status: domain.AnalysisInsufficientData,
			Err: "insufficient data"},
	}

	require.NoError(t, WriteResultsJSON(path, meta, results))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc struct {
		Meta    domain.RunMeta   `json:"meta"`
		Results []map[string]any `json:"results"`
	}
	require.NoError(t, json.Unmarshal(raw, &doc))

	assert.Equal(t, "run-9", doc.Meta.RunID)
	require.Len(t, doc.Results, 2)
	assert.Equal(t, "lease_vs_sale", doc.Results[0]["slug"])
	assert.NotEmpty(t, doc.Results[0]["payload_kind"])
	assert.Equal(t, "insufficient-data", doc.Results[1]["status"])
}

func TestSafeName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"spaces become underscores", "Acme Client", "Acme_Client"},
		{"hostile characters dropped", `a/b\c:d*e`, "abcde"},
		{"empty falls back", "   ", "Client"},
		{"already safe", "Client-42", "Client-42"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SafeName(tt.input))
		})
	}
}
