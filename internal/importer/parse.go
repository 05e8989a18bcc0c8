package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
)

const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// Row is one parsed source line, all values still raw strings.
type Row struct {
	Line             int
	Name             string
	ShortDescription string
	Description      string
	BasePrice        string
	MRP              string
	DiscountPercent  string
	Category         string
	SubCategory      string
	SKU              string
	Stock            string
}

// parseFile reads the whole source into rows. The first record is the
// header; columns are matched by normalized name, unknown columns are
// ignored.
func parseFile(path, format string) ([]Row, error) {
	switch format {
	case FormatCSV:
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return parseCSV(f)
	case FormatXLSX:
		return parseXLSX(path)
	default:
		return nil, fmt.Errorf("unsupported import format %q", format)
	}
}

func parseCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv read error: %w", err)
	}
	return recordsToRows(records), nil
}

func parseXLSX(path string) ([]Row, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("xlsx read error: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx has no sheets")
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("xlsx read error: %w", err)
	}
	return recordsToRows(records), nil
}

func recordsToRows(records [][]string) []Row {
	if len(records) == 0 {
		return nil
	}

	index := map[string]int{}
	for i, col := range records[0] {
		index[normalizeHeader(col)] = i
	}

	field := func(record []string, names ...string) string {
		for _, name := range names {
			if i, ok := index[name]; ok && i < len(record) {
				return strings.TrimSpace(record[i])
			}
		}
		return ""
	}

	rows := make([]Row, 0, len(records)-1)
	for n, record := range records[1:] {
		rows = append(rows, Row{
			Line:             n + 2, // 1-based, after the header
			Name:             field(record, "name", "productname"),
			ShortDescription: field(record, "short_description"),
			Description:      field(record, "description"),
			BasePrice:        field(record, "base_price", "price"),
			MRP:              field(record, "mrp"),
			DiscountPercent:  field(record, "discount_percent"),
			Category:         field(record, "category", "category_name", "categoryname"),
			SubCategory:      field(record, "subcategory", "subcategory_name", "subcategoryname"),
			SKU:              field(record, "sku"),
			Stock:            field(record, "stock"),
		})
	}
	return rows
}

func normalizeHeader(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
