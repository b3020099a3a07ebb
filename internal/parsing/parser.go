package parsing

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"breakupscli/pkg/contracts/domain"
)

// The four required sheets, located by candidate names first and header
// sniffing second. Analysts rename tabs constantly, so both lists matter.
var (
	saleSheetNames     = []string{"Sale Comps", "Sales Comps", "Sale Comparables", "Sales", "Sold Comps"}
	leaseSheetNames    = []string{"Lease Comps", "Lease Comparables", "Rentals", "Leases", "Rent Comps"}
	assessorSheetNames = []string{"Assessor Data", "Assessor", "Tax Data", "Tax Records"}
	analysisSheetNames = []string{"Analysis", "Subject Analysis", "Subject", "Breakups Analysis"}
)

// Parser reads an uploaded comparables workbook into immutable property
// records. Parsing is a pure read; it never writes files.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a parser. A nil logger falls back to slog.Default.
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger}
}

// Parse extracts the four required sheets from the workbook bytes. A missing
// required sheet or an unreadable workbook is fatal; dirty cells are not.
func (p *Parser) Parse(ctx context.Context, data []byte, clientName string) (*Workbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	saleRows, saleSheet, err := p.findSheet(f, saleSheetNames, []string{"address", "price"})
	if err != nil {
		return nil, fmt.Errorf("sale comps sheet: %w", err)
	}
	leaseRows, leaseSheet, err := p.findSheet(f, leaseSheetNames, []string{"address", "rent"})
	if err != nil {
		return nil, fmt.Errorf("lease comps sheet: %w", err)
	}
	assessorRows, assessorSheet, err := p.findSheet(f, assessorSheetNames, []string{"address", "assessed"})
	if err != nil {
		return nil, fmt.Errorf("assessor data sheet: %w", err)
	}
	analysisRows, analysisSheet, err := p.findSheet(f, analysisSheetNames, []string{"estimated value"})
	if err != nil {
		return nil, fmt.Errorf("analysis sheet: %w", err)
	}

	p.logger.InfoContext(ctx, "located workbook sheets",
		slog.String("sale_sheet", saleSheet),
		slog.String("lease_sheet", leaseSheet),
		slog.String("assessor_sheet", assessorSheet),
		slog.String("analysis_sheet", analysisSheet))

	saleRecords := p.parseCompRows(ctx, saleRows, domain.ListingKindSale)
	leaseRecords := p.parseCompRows(ctx, leaseRows, domain.ListingKindLease)
	assessor := parseAssessorRows(assessorRows)
	subject := parseAnalysisSheet(analysisRows)

	records := append(saleRecords, leaseRecords...)
	for i := range records {
		if info, ok := assessor[normalizeAddress(records[i].Address)]; ok {
			records[i].AssessedValue = info.assessedValue
			records[i].AnnualTax = info.annualTax
			if records[i].APN == "" {
				records[i].APN = info.apn
			}
		}
	}

	wb := &Workbook{
		Records: records,
		Subject: subject,
		Meta: domain.RunMeta{
			ClientName:      clientName,
			AnalysisDate:    time.Now(),
			TotalProperties: len(saleRecords),
			LeaseCount:      len(leaseRecords),
		},
		Source: data,
	}

	p.logger.InfoContext(ctx, "workbook parsed",
		slog.Int("sale_records", len(saleRecords)),
		slog.Int("lease_records", len(leaseRecords)),
		slog.Int("assessor_rows", len(assessor)),
		slog.String("client", clientName))

	return wb, nil
}

// findSheet locates a sheet by candidate names, then by sniffing headers for
// the given hint keywords. Returns the rows and the resolved sheet name.
func (p *Parser) findSheet(f *excelize.File, candidates, hints []string) ([][]string, string, error) {
	for _, name := range candidates {
		if rows, err := f.GetRows(name); err == nil {
			return rows, name, nil
		}
	}

	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil || len(rows) == 0 {
			continue
		}
		limit := len(rows)
		if limit > 5 {
			limit = 5
		}
		for _, row := range rows[:limit] {
			rowText := strings.ToLower(strings.Join(row, " "))
			matched := true
			for _, hint := range hints {
				if !strings.Contains(rowText, hint) {
					matched = false
					break
				}
			}
			if matched {
				return rows, name, nil
			}
		}
	}

	return nil, "", fmt.Errorf("required sheet not found (tried %s)", strings.Join(candidates, ", "))
}

// parseCompRows walks a comparables sheet: find the header row, map columns by
// header keywords, then coerce each data row into a PropertyRecord.
func (p *Parser) parseCompRows(ctx context.Context, rows [][]string, kind domain.ListingKind) []domain.PropertyRecord {
	headerRow, cols := findCompHeader(rows)
	if headerRow < 0 {
		p.logger.WarnContext(ctx, "no header row found in comp sheet", slog.String("kind", string(kind)))
		return nil
	}

	records := make([]domain.PropertyRecord, 0, len(rows)-headerRow)
	for i := headerRow + 1; i < len(rows); i++ {
		row := rows[i]

		cell := func(key string) string {
			if idx, ok := cols[key]; ok && idx < len(row) {
				return row[idx]
			}
			return ""
		}

		address := strings.TrimSpace(cell("address"))
		if address == "" {
			continue
		}
		// Summary rows sneak in at the bottom of analyst sheets.
		if strings.Contains(strings.ToLower(address), "total") || strings.Contains(strings.ToLower(address), "average") {
			continue
		}

		rec := domain.PropertyRecord{
			Address:        address,
			City:           strings.TrimSpace(cell("city")),
			APN:            strings.TrimSpace(cell("apn")),
			Kind:           kind,
			Price:          coerceFloat(cell("price")),
			EstimatedValue: coerceFloat(cell("estimated_value")),
			MonthlyRent:    coerceFloat(cell("rent")),
			Bedrooms:       coerceInt(cell("bedrooms")),
			Bathrooms:      coerceFloat(cell("bathrooms")),
			SquareFeet:     coerceFloat(cell("sqft")),
			LotSqFt:        coerceFloat(cell("lot")),
			YearBuilt:      coerceInt(cell("year_built")),
			HOAFee:         coerceFloat(cell("hoa_fee")),
			STREligible:    coerceBool(cell("str")),
			Renovation:     domain.ClassifyRenovation(cell("renovation")),
			Status:         domain.ClassifyStatus(cell("status")),
			Source:         domain.ClassifySource(cell("source")),
			PropertyRadar:  domain.IsPropertyRadarSource(cell("source")),
			ListDate:       coerceDate(cell("list_date")),
			CloseDate:      coerceDate(cell("close_date")),
		}

		// Active listings often carry only a list price column.
		if rec.Price == nil {
			rec.Price = coerceFloat(cell("list_price"))
		}

		if hoaCol, ok := cols["hoa"]; ok && hoaCol < len(row) {
			rec.HasHOA = coerceBool(row[hoaCol])
		}
		if rec.HOAFee != nil && *rec.HOAFee > 0 {
			rec.HasHOA = true
		}

		records = append(records, rec)
	}

	return records
}

// findCompHeader scans the first rows for the header and maps columns by
// keyword. Returns -1 when no plausible header exists.
func findCompHeader(rows [][]string) (int, map[string]int) {
	for i, row := range rows {
		if i > 4 {
			break
		}
		rowText := strings.ToLower(strings.Join(row, " "))
		if !strings.Contains(rowText, "address") {
			continue
		}
		if !strings.Contains(rowText, "price") && !strings.Contains(rowText, "rent") {
			continue
		}

		cols := make(map[string]int)
		for j, header := range row {
			h := strings.ToLower(strings.TrimSpace(header))
			switch {
			case strings.Contains(h, "address"):
				mapOnce(cols, "address", j)
			case strings.Contains(h, "city"):
				mapOnce(cols, "city", j)
			case strings.Contains(h, "apn") || strings.Contains(h, "parcel"):
				mapOnce(cols, "apn", j)
			case strings.Contains(h, "rent"):
				mapOnce(cols, "rent", j)
			case strings.Contains(h, "estimated") || strings.Contains(h, "avm"):
				mapOnce(cols, "estimated_value", j)
			case strings.Contains(h, "price") && !strings.Contains(h, "list"):
				mapOnce(cols, "price", j)
			case strings.Contains(h, "list price"):
				mapOnce(cols, "list_price", j)
			case strings.Contains(h, "bed"):
				mapOnce(cols, "bedrooms", j)
			case strings.Contains(h, "bath"):
				mapOnce(cols, "bathrooms", j)
			case strings.Contains(h, "lot"):
				mapOnce(cols, "lot", j)
			case strings.Contains(h, "sq") && strings.Contains(h, "ft"), strings.Contains(h, "square"):
				mapOnce(cols, "sqft", j)
			case strings.Contains(h, "year") || strings.Contains(h, "built"):
				mapOnce(cols, "year_built", j)
			case strings.Contains(h, "hoa") && strings.Contains(h, "fee"):
				mapOnce(cols, "hoa_fee", j)
			case strings.Contains(h, "hoa"):
				mapOnce(cols, "hoa", j)
			case h == "str" || strings.Contains(h, "str eligible") || strings.Contains(h, "short-term") || strings.Contains(h, "short term"):
				mapOnce(cols, "str", j)
			case strings.Contains(h, "renovation") || strings.Contains(h, "condition") || strings.Contains(h, "updates"):
				mapOnce(cols, "renovation", j)
			case strings.Contains(h, "status"):
				mapOnce(cols, "status", j)
			case strings.Contains(h, "list") && strings.Contains(h, "date"):
				mapOnce(cols, "list_date", j)
			case (strings.Contains(h, "close") || strings.Contains(h, "sold") || strings.Contains(h, "coe")) && strings.Contains(h, "date"):
				mapOnce(cols, "close_date", j)
			case strings.Contains(h, "source") || strings.Contains(h, "comp type"):
				mapOnce(cols, "source", j)
			}
		}

		if _, ok := cols["address"]; ok {
			return i, cols
		}
	}
	return -1, nil
}

// mapOnce keeps the first matching column for a key; later duplicates lose.
func mapOnce(cols map[string]int, key string, idx int) {
	if _, exists := cols[key]; !exists {
		cols[key] = idx
	}
}

type assessorInfo struct {
	apn           string
	assessedValue *float64
	annualTax     *float64
}

// parseAssessorRows builds the address-keyed assessor join table.
func parseAssessorRows(rows [][]string) map[string]assessorInfo {
	out := make(map[string]assessorInfo)

	headerRow := -1
	cols := make(map[string]int)
	for i, row := range rows {
		if i > 4 {
			break
		}
		rowText := strings.ToLower(strings.Join(row, " "))
		if !strings.Contains(rowText, "address") {
			continue
		}
		for j, header := range row {
			h := strings.ToLower(strings.TrimSpace(header))
			switch {
			case strings.Contains(h, "address"):
				mapOnce(cols, "address", j)
			case strings.Contains(h, "apn") || strings.Contains(h, "parcel"):
				mapOnce(cols, "apn", j)
			case strings.Contains(h, "assessed"):
				mapOnce(cols, "assessed_value", j)
			case strings.Contains(h, "tax"):
				mapOnce(cols, "annual_tax", j)
			}
		}
		headerRow = i
		break
	}
	if headerRow < 0 {
		return out
	}

	for i := headerRow + 1; i < len(rows); i++ {
		row := rows[i]
		cell := func(key string) string {
			if idx, ok := cols[key]; ok && idx < len(row) {
				return row[idx]
			}
			return ""
		}
		address := strings.TrimSpace(cell("address"))
		if address == "" {
			continue
		}
		out[normalizeAddress(address)] = assessorInfo{
			apn:           strings.TrimSpace(cell("apn")),
			assessedValue: coerceFloat(cell("assessed_value")),
			annualTax:     coerceFloat(cell("annual_tax")),
		}
	}
	return out
}

// parseAnalysisSheet reads the label/value layout of the subject analysis
// sheet: first cell is the label, second the value.
func parseAnalysisSheet(rows [][]string) domain.SubjectProperty {
	subject := domain.SubjectProperty{}
	subject.Record.Kind = domain.ListingKindSale

	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		label := strings.ToLower(strings.TrimSpace(row[0]))
		value := row[1]

		switch {
		case strings.Contains(label, "address"):
			subject.Record.Address = strings.TrimSpace(value)
		case strings.Contains(label, "city"):
			subject.Record.City = strings.TrimSpace(value)
		case strings.Contains(label, "apn") || strings.Contains(label, "parcel"):
			subject.Record.APN = strings.TrimSpace(value)
		case strings.Contains(label, "bedroom"):
			subject.Record.Bedrooms = coerceInt(value)
		case strings.Contains(label, "bathroom"):
			subject.Record.Bathrooms = coerceFloat(value)
		case strings.Contains(label, "lot"):
			subject.Record.LotSqFt = coerceFloat(value)
		case strings.Contains(label, "square") || (strings.Contains(label, "sq") && strings.Contains(label, "ft")):
			subject.Record.SquareFeet = coerceFloat(value)
		case strings.Contains(label, "year built"):
			subject.Record.YearBuilt = coerceInt(value)
		case strings.Contains(label, "estimated value") || strings.Contains(label, "avm"):
			subject.EstimatedValue = coerceFloat(value)
		case strings.Contains(label, "gross income") || strings.Contains(label, "annual income"):
			subject.GrossIncome = coerceFloat(value)
		case strings.Contains(label, "operating expense"):
			subject.OperatingExpenses = coerceFloat(value)
		case strings.Contains(label, "renovation cost") || strings.Contains(label, "improvement cost"):
			subject.RenovationCost = coerceFloat(value)
		case strings.Contains(label, "improved income") || strings.Contains(label, "post-renovation income"):
			subject.ImprovedIncome = coerceFloat(value)
		}
	}

	subject.Record.EstimatedValue = subject.EstimatedValue
	return subject
}
