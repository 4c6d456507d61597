package ingestion

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/xuri/excelize/v2"
)

const (
	productsSheet   = "products"
	propertiesSheet = "properties"
	operatorsSheet  = "operators"
)

var byteOrderMark = []byte{0xEF, 0xBB, 0xBF}

// tableData is a header row plus the non-empty data rows beneath it, padded
// to the header width.
type tableData struct {
	headers        []string
	rows           [][]string
	headerRowIndex int
}

// workbook holds the tables found in one uploaded file. Only xlsx files can
// carry property and operator tables.
type workbook struct {
	products   tableData
	properties *tableData
	operators  *tableData
}

func parseWorkbook(fileName string, payload []byte) (workbook, error) {
	switch ext := fileExtension(fileName, payload); ext {
	case ".csv":
		table, err := parseCSV(payload)
		if err != nil {
			return workbook{}, err
		}
		return workbook{products: table}, nil
	case ".xlsx":
		return parseExcel(payload)
	default:
		return workbook{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

// fileExtension returns the lowercased extension of fileName, sniffing the
// payload when the name has none.
func fileExtension(fileName string, payload []byte) string {
	if ext := strings.ToLower(filepath.Ext(fileName)); ext != "" {
		return ext
	}
	return mimetype.Detect(payload).Extension()
}

func parseCSV(payload []byte) (tableData, error) {
	reader := bufio.NewReader(bytes.NewReader(payload))
	if prefix, err := reader.Peek(len(byteOrderMark)); err == nil && bytes.Equal(prefix, byteOrderMark) {
		_, _ = reader.Discard(len(byteOrderMark))
	}

	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		return tableData{}, fmt.Errorf("failed to read csv: %w", err)
	}

	return normalizeTable(records)
}

func parseExcel(payload []byte) (workbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(payload))
	if err != nil {
		return workbook{}, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return workbook{}, errors.New("excel file has no sheets")
	}

	byName := make(map[string]string, len(sheets))
	for _, sheet := range sheets {
		byName[strings.ToLower(strings.TrimSpace(sheet))] = sheet
	}

	readSheet := func(sheet string) (tableData, error) {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return tableData{}, fmt.Errorf("failed to read rows from sheet %q: %w", sheet, err)
		}
		table, err := normalizeTable(rows)
		if err != nil {
			return tableData{}, fmt.Errorf("sheet %q: %w", sheet, err)
		}
		return table, nil
	}

	productSheet, ok := byName[productsSheet]
	if !ok {
		productSheet = sheets[0]
	}

	var book workbook
	if book.products, err = readSheet(productSheet); err != nil {
		return workbook{}, err
	}
	if sheet, ok := byName[propertiesSheet]; ok && sheet != productSheet {
		table, err := readSheet(sheet)
		if err != nil {
			return workbook{}, err
		}
		book.properties = &table
	}
	if sheet, ok := byName[operatorsSheet]; ok && sheet != productSheet {
		table, err := readSheet(sheet)
		if err != nil {
			return workbook{}, err
		}
		book.operators = &table
	}
	return book, nil
}

func normalizeTable(records [][]string) (tableData, error) {
	if len(records) == 0 {
		return tableData{}, errors.New("no rows found in file")
	}

	var headerRow []string
	var dataRows [][]string
	headerIndex := -1

	for idx, row := range records {
		if len(cleanRow(row)) == 0 {
			continue
		}
		if headerRow == nil {
			headerRow = row
			headerIndex = idx
			continue
		}
		dataRows = append(dataRows, row)
	}

	if headerRow == nil {
		return tableData{}, errors.New("header row could not be detected")
	}

	headers := dedupeHeaders(headerRow)
	for i := range dataRows {
		dataRows[i] = padRow(dataRows[i], len(headers))
	}

	return tableData{
		headers:        headers,
		rows:           filterEmptyRows(dataRows),
		headerRowIndex: headerIndex,
	}, nil
}

// column returns the index of the header equal to name, ignoring case.
func (t tableData) column(name string) int {
	for idx, header := range t.headers {
		if strings.EqualFold(header, name) {
			return idx
		}
	}
	return -1
}

func cleanRow(row []string) []string {
	var cleaned []string
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			cleaned = append(cleaned, cell)
		}
	}
	return cleaned
}

// dedupeHeaders trims header names and suffixes repeats so every column has a
// distinct property name.
func dedupeHeaders(raw []string) []string {
	headers := make([]string, len(raw))
	seen := make(map[string]int)

	for idx, value := range raw {
		name := strings.TrimSpace(value)
		if name == "" {
			name = fmt.Sprintf("column_%d", idx+1)
		}

		base := name
		count := seen[base]
		if count > 0 {
			name = fmt.Sprintf("%s_%d", base, count+1)
		}
		seen[base] = count + 1

		headers[idx] = name
	}

	return headers
}

func padRow(row []string, length int) []string {
	if len(row) >= length {
		return row[:length]
	}
	padded := make([]string, length)
	copy(padded, row)
	return padded
}

func filterEmptyRows(rows [][]string) [][]string {
	var filtered [][]string
	for _, row := range rows {
		if len(cleanRow(row)) > 0 {
			filtered = append(filtered, row)
		}
	}
	return filtered
}
