// Package sheet reads import spreadsheets into raw rows and writes exports.
package sheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/NomuraAI/SIGADES-sub000/internal/domain/project"
	"github.com/NomuraAI/SIGADES-sub000/internal/normalize"
	"github.com/xuri/excelize/v2"
)

// Format is a supported spreadsheet encoding.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// ExportSheetName is the worksheet name used for exports.
const ExportSheetName = "Projects"

var (
	ErrUnsupportedFormat = errors.New("unsupported spreadsheet format")
	ErrNoHeader          = errors.New("spreadsheet has no header row")
	ErrSheetNotFound     = errors.New("worksheet not found")
)

const utf8BOM = "\ufeff"

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// ReadFile opens path and reads its rows. sheetName selects a worksheet for
// xlsx input; empty means the first sheet.
func ReadFile(path, sheetName string) ([]normalize.RawRow, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening spreadsheet: %w", err)
	}
	defer f.Close()
	return Read(f, format, sheetName)
}

// Read decodes a spreadsheet whose first row holds the headers.
// Blank rows are skipped; short rows read missing cells as empty.
func Read(r io.Reader, format Format, sheetName string) ([]normalize.RawRow, error) {
	var (
		grid [][]string
		err  error
	)
	switch format {
	case FormatXLSX:
		grid, err = readXLSX(r, sheetName)
	case FormatCSV:
		grid, err = readCSV(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}
	return toRawRows(grid)
}

func readXLSX(r io.Reader, sheetName string) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	if sheetName == "" {
		sheetName = f.GetSheetName(0)
	} else if idx, err := f.GetSheetIndex(sheetName); err != nil || idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, sheetName)
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("reading worksheet %q: %w", sheetName, err)
	}
	return rows, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], utf8BOM)
	}
	return rows, nil
}

func toRawRows(grid [][]string) ([]normalize.RawRow, error) {
	if len(grid) == 0 || isBlank(grid[0]) {
		return nil, ErrNoHeader
	}
	headers := grid[0]

	rows := make([]normalize.RawRow, 0, len(grid)-1)
	for _, cells := range grid[1:] {
		if isBlank(cells) {
			continue
		}
		row := make(normalize.RawRow, len(headers))
		for i, h := range headers {
			if strings.TrimSpace(h) == "" {
				continue
			}
			if i < len(cells) {
				row[h] = cells[i]
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// WriteFile exports records to path in the format implied by its extension.
func WriteFile(path string, recs []project.Project) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}
	if err := Write(f, format, recs); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Write encodes records under the canonical headers, so an export can be
// imported again unchanged.
func Write(w io.Writer, format Format, recs []project.Project) error {
	switch format {
	case FormatXLSX:
		return writeXLSX(w, recs)
	case FormatCSV:
		return writeCSV(w, recs)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func writeXLSX(w io.Writer, recs []project.Project) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), ExportSheetName); err != nil {
		return fmt.Errorf("naming worksheet: %w", err)
	}
	if err := setRow(f, 1, normalize.Headers()); err != nil {
		return err
	}
	for i, rec := range recs {
		if err := setRow(f, i+2, normalize.Canonical(rec).Values()); err != nil {
			return err
		}
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, rowNum int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return fmt.Errorf("addressing row %d: %w", rowNum, err)
	}
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(ExportSheetName, cell, &cells); err != nil {
		return fmt.Errorf("writing row %d: %w", rowNum, err)
	}
	return nil
}

func writeCSV(w io.Writer, recs []project.Project) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(normalize.Headers()); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, rec := range recs {
		if err := cw.Write(normalize.Canonical(rec).Values()); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}
	return nil
}
