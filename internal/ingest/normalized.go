package ingest

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"morsel-dashboard/internal/errors"
	"morsel-dashboard/internal/models"
)

// normalizedHeader is the contract of the handoff artifact between the
// process command and the dashboard.
var normalizedHeader = []string{"sales", "date", "region"}

// WriteNormalized persists records as the normalized CSV artifact. Given
// the same records it produces byte-identical output.
func WriteNormalized(path string, records []models.NormalizedRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(normalizedHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, rec := range records {
		row := []string{
			rec.Sales.String(),
			rec.Date.Format(dateLayout),
			rec.Region,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}

// ReadNormalized loads a normalized CSV artifact back into memory. The
// returned slice is a fresh snapshot owned by the caller.
func ReadNormalized(path string) ([]models.NormalizedRecord, error) {
	tbl, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	idx := make(columnIndex, len(tbl.header))
	for i, name := range tbl.header {
		idx[name] = i
	}
	for _, name := range normalizedHeader {
		if _, ok := idx[name]; !ok {
			return nil, errors.Schema(fmt.Sprintf("%s: not a normalized sales file, missing column %q", path, name))
		}
	}

	records := make([]models.NormalizedRecord, 0, len(tbl.rows))
	for n, row := range tbl.rows {
		if len(row) < len(normalizedHeader) {
			return nil, errors.Validation(fmt.Sprintf("%s row %d: short row", path, n+2))
		}
		sales, err := decimal.NewFromString(row[idx["sales"]])
		if err != nil {
			return nil, errors.PriceParseWrap(err, fmt.Sprintf("%s row %d: malformed sales value", path, n+2))
		}
		date, err := time.Parse(dateLayout, row[idx["date"]])
		if err != nil {
			return nil, errors.ValidationWrap(err, fmt.Sprintf("%s row %d: malformed date", path, n+2))
		}
		records = append(records, models.NormalizedRecord{
			Sales:  sales,
			Date:   date,
			Region: row[idx["region"]],
		})
	}
	return records, nil
}
