// Package spreadsheet reads and writes the catalog exchange workbook used
// by the back office for bulk product export and import.
package spreadsheet

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Products"

var header = []string{
	"Name", "Secondary Name", "Description", "Price", "Discount",
	"Category", "Brand", "Audience", "In Stock", "Active",
}

// ProductRow is one workbook line. Prices travel as decimal currency in
// the sheet and as cents everywhere else.
type ProductRow struct {
	Name          string
	SecondaryName string
	Description   string
	PriceCents    int64
	DiscountCents int64
	Category      string
	Brand         string
	Audience      string
	InStock       bool
	Active        bool
}

func centsToDecimal(cents int64) string {
	return strconv.FormatFloat(float64(cents)/100, 'f', 2, 64)
}

func decimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "$"))
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q", s)
	}
	return int64(math.Round(f * 100)), nil
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "y", "1":
		return true
	}
	return false
}

// WriteProducts serializes rows into an xlsx workbook.
func WriteProducts(w io.Writer, rows []ProductRow) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	for i, h := range header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	for i, r := range rows {
		values := []any{
			r.Name, r.SecondaryName, r.Description,
			centsToDecimal(r.PriceCents), centsToDecimal(r.DiscountCents),
			r.Category, r.Brand, r.Audience,
			r.InStock, r.Active,
		}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return fmt.Errorf("write row %d: %w", i+1, err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// ParseProducts reads an uploaded workbook back into rows. The header row
// is skipped; rows with an empty name column are ignored.
func ParseProducts(r io.Reader) ([]ProductRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := sheetName
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		// fall back to the first sheet of hand-made workbooks
		sheet = f.GetSheetName(0)
	}

	raw, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	var rows []ProductRow
	for i, cells := range raw {
		if i == 0 {
			continue
		}
		get := func(col int) string {
			if col < len(cells) {
				return strings.TrimSpace(cells[col])
			}
			return ""
		}
		name := get(0)
		if name == "" {
			continue
		}
		price, err := decimalToCents(get(3))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		discount, err := decimalToCents(get(4))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		rows = append(rows, ProductRow{
			Name:          name,
			SecondaryName: get(1),
			Description:   get(2),
			PriceCents:    price,
			DiscountCents: discount,
			Category:      get(5),
			Brand:         get(6),
			Audience:      strings.ToLower(get(7)),
			InStock:       parseBool(get(8)),
			Active:        parseBool(get(9)),
		})
	}
	return rows, nil
}
