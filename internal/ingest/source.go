package ingest

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"morsel-dashboard/internal/errors"
)

// table is a fully-read tabular source: the header row plus data rows.
// Whole files are read into memory; realistic inputs are a few thousand
// rows.
type table struct {
	header []string
	rows   [][]string
}

func readSource(path string) (*table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return readXLSX(path)
	default:
		return readCSV(path)
	}
}

func readCSV(path string) (*table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	// Sources may carry extra columns; width is validated per required
	// field, not per row.
	r.FieldsPerRecord = -1

	all, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(all) == 0 {
		return nil, errors.Schema(fmt.Sprintf("%s: empty file, no header row", path))
	}

	return &table{header: all[0], rows: all[1:]}, nil
}

// readXLSX reads the first sheet of a workbook, treating the first row as
// the header, so spreadsheet exports can be ingested next to plain CSV.
func readXLSX(path string) (*table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.Schema(fmt.Sprintf("%s: workbook has no sheets", path))
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read %s sheet %s: %w", path, sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, errors.Schema(fmt.Sprintf("%s: empty sheet, no header row", path))
	}

	return &table{header: rows[0], rows: rows[1:]}, nil
}
