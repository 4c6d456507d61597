package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cast"
	"github.com/xuri/excelize/v2"

	"github.com/rpattn/productfilter/internal/domain"
)

// ErrUnsupportedFormat is returned for export formats other than csv and
// xlsx.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

const sheetName = "products"

// ParseFormat parses a format name. The empty string means csv.
func ParseFormat(raw string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(raw))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, raw)
	}
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}

// FileName returns the download name for an export of the format.
func (f Format) FileName() string {
	return "products." + string(f)
}

// Write renders table in the given format.
func Write(w io.Writer, format Format, table Table) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, table)
	case FormatXLSX:
		return WriteXLSX(w, table)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// WriteCSV writes a header row followed by one row per product.
func WriteCSV(w io.Writer, table Table) error {
	csvWriter := csv.NewWriter(w)
	if err := csvWriter.Write(table.Header()); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range table.Rows {
		if err := csvWriter.Write(row.Cells); err != nil {
			return fmt.Errorf("failed to write row for product %d: %w", row.ProductID, err)
		}
	}
	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

// WriteXLSX writes the table to a single-sheet workbook. Number columns are
// written as numeric cells.
func WriteXLSX(w io.Writer, table Table) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	for col, name := range table.Header() {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, name); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	for r, row := range table.Rows {
		for col, value := range row.Cells {
			if value == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(col+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheetName, cell, cellValue(table.Columns[col].Type, value)); err != nil {
				return fmt.Errorf("failed to write product %d: %w", row.ProductID, err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write xlsx: %w", err)
	}
	return nil
}

func cellValue(propertyType domain.PropertyType, value string) any {
	if propertyType == domain.PropertyTypeNumber {
		if n, err := cast.ToFloat64E(value); err == nil {
			return n
		}
	}
	return value
}
