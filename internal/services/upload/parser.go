package upload

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// FormatFromFilename picks the decoder from the file extension.
func FormatFromFilename(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(name))
}

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

// Parse decodes an upload file into rows in file order. The header set is
// checked once; a *MissingColumnsError means nothing may be inserted.
func (p *Parser) Parse(ctx context.Context, r io.Reader, format Format) ([]UploadRow, error) {
	records, err := p.readRecords(r, format)
	if err != nil {
		return nil, err
	}

	var header []string
	if len(records) > 0 {
		header = records[0]
		records = records[1:]
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	var rows []UploadRow
	for _, record := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if isBlank(record) {
			continue
		}
		fields := make(map[string]string, len(header))
		for i, name := range header {
			if _, seen := fields[name]; seen {
				continue
			}
			if i < len(record) {
				fields[name] = record[i]
			} else {
				fields[name] = ""
			}
		}
		rows = append(rows, rowFromFields(len(rows)+1, fields))
	}

	// The column set is taken from the first data row, so an empty or
	// header-only file reports every column as missing.
	present := map[string]struct{}{}
	if len(rows) > 0 {
		for _, name := range header {
			present[name] = struct{}{}
		}
	}
	if missing := missingColumns(present); len(missing) > 0 {
		return nil, &MissingColumnsError{Missing: missing}
	}

	return rows, nil
}

func (p *Parser) readRecords(r io.Reader, format Format) ([][]string, error) {
	switch format {
	case FormatCSV:
		reader := csv.NewReader(r)
		reader.FieldsPerRecord = -1
		reader.LazyQuotes = true
		records, err := reader.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		return records, nil
	case FormatXLSX:
		f, err := excelize.OpenReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to open Excel file: %w", err)
		}
		defer f.Close()

		sheet := f.GetSheetName(0)
		if sheet == "" {
			return nil, nil
		}
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to get rows: %w", err)
		}
		return rows, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

func missingColumns(present map[string]struct{}) []string {
	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := present[col]; !ok {
			missing = append(missing, col)
		}
	}
	return missing
}

func isBlank(record []string) bool {
	for _, v := range record {
		if v != "" {
			return false
		}
	}
	return true
}
