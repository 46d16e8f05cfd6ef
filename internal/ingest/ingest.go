package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"morsel-dashboard/internal/errors"
	"morsel-dashboard/internal/models"
)

const dateLayout = "2006-01-02"

// requiredColumns must all be present (by header name, any order) in every
// source file. A missing column is a schema error and aborts the run.
var requiredColumns = []string{"product", "price", "quantity", "date", "region"}

type Options struct {
	Sources []string
	Product string
}

// Report records what happened to every input row. It is logged before the
// run is declared a success or a failure.
type Report struct {
	RowsRead     int
	RowsRetained int
	RowsSkipped  int
	ZeroQuantity int
	FirstDate    time.Time
	LastDate     time.Time
	Regions      []string
	MinSales     decimal.Decimal
	MaxSales     decimal.Decimal
}

// Result is an immutable snapshot of one ingestion run: the normalized
// records sorted ascending by date (stable, input order breaks ties), the
// observed per-unit prices kept aside for price-change analysis, and the
// row accounting.
type Result struct {
	Records []models.NormalizedRecord
	Prices  []models.PriceObservation
	Report  Report
}

type sourceResult struct {
	records      []models.NormalizedRecord
	prices       []models.PriceObservation
	rowsRead     int
	rowsSkipped  int
	zeroQuantity int
}

// Run reads every source, filters to the target product (case-insensitive
// exact match), normalizes prices and computes sales = price * quantity.
//
// Row-level policy is skip-and-warn: a malformed row is counted, logged and
// dropped. Structural problems (missing required columns, no data rows at
// all) abort the run before any output is produced. Sources are read
// concurrently but merged in input-list order, so repeated runs over the
// same inputs produce identical output.
func Run(ctx context.Context, logger *slog.Logger, opts Options) (*Result, error) {
	if len(opts.Sources) == 0 {
		return nil, errors.Validation("no source files given")
	}
	product := strings.TrimSpace(opts.Product)
	if product == "" {
		return nil, errors.Validation("target product cannot be empty")
	}

	results := make([]*sourceResult, len(opts.Sources))

	g, ctx := errgroup.WithContext(ctx)
	for i, path := range opts.Sources {
		g.Go(func() error {
			logger.Info("processing source", "path", path)
			res, err := processSource(ctx, logger, path, product)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &Result{}
	for _, res := range results {
		out.Records = append(out.Records, res.records...)
		out.Prices = append(out.Prices, res.prices...)
		out.Report.RowsRead += res.rowsRead
		out.Report.RowsSkipped += res.rowsSkipped
		out.Report.ZeroQuantity += res.zeroQuantity
	}
	out.Report.RowsRetained = len(out.Records)

	if out.Report.RowsRead == 0 {
		return nil, errors.Schema("no data rows in any source")
	}

	// Stable: rows sharing a date keep their input order.
	sort.SliceStable(out.Records, func(i, j int) bool {
		return out.Records[i].Date.Before(out.Records[j].Date)
	})
	sort.SliceStable(out.Prices, func(i, j int) bool {
		return out.Prices[i].Date.Before(out.Prices[j].Date)
	})

	out.Report.summarize(out.Records)
	logger.Info("ingestion complete",
		"rows_read", out.Report.RowsRead,
		"rows_retained", out.Report.RowsRetained,
		"rows_skipped", out.Report.RowsSkipped,
		"zero_quantity_rows", out.Report.ZeroQuantity,
	)

	if out.Report.RowsRetained == 0 {
		return nil, errors.NotFound(fmt.Sprintf("no %q records found in any source", product))
	}

	return out, nil
}

func processSource(ctx context.Context, logger *slog.Logger, path, product string) (*sourceResult, error) {
	tbl, err := readSource(path)
	if err != nil {
		return nil, err
	}

	idx, err := indexColumns(path, tbl.header)
	if err != nil {
		return nil, err
	}

	res := &sourceResult{}
	for n, row := range tbl.rows {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		res.rowsRead++

		if !rowMatchesProduct(idx, row, product) {
			continue
		}

		raw, err := parseRow(idx, row)
		if err != nil {
			res.rowsSkipped++
			logger.Warn("skipping malformed row",
				"source", path,
				"row", n+2, // 1-based, after the header
				"error", err,
			)
			continue
		}

		if raw.Quantity == 0 {
			res.zeroQuantity++
			logger.Warn("zero-quantity row retained with sales=0",
				"source", path,
				"row", n+2,
				"date", raw.Date.Format(dateLayout),
			)
		}

		sales := raw.Price.Mul(decimal.NewFromInt(int64(raw.Quantity)))
		res.records = append(res.records, models.NormalizedRecord{
			Sales:  sales,
			Date:   raw.Date,
			Region: raw.Region,
		})
		res.prices = append(res.prices, models.PriceObservation{
			Price: raw.Price,
			Date:  raw.Date,
		})
	}

	logger.Info("source processed",
		"path", path,
		"rows", res.rowsRead,
		"matched", len(res.records),
		"skipped", res.rowsSkipped,
	)
	return res, nil
}

type columnIndex map[string]int

func indexColumns(path string, header []string) (columnIndex, error) {
	idx := make(columnIndex, len(header))
	for i, name := range header {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}

	var missing []string
	for _, name := range requiredColumns {
		if _, ok := idx[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, errors.Schema(fmt.Sprintf("%s: missing required columns: %s", path, strings.Join(missing, ", ")))
	}
	return idx, nil
}

func (idx columnIndex) field(row []string, name string) (string, error) {
	i := idx[name]
	if i >= len(row) {
		return "", fmt.Errorf("row has no %s field", name)
	}
	return strings.TrimSpace(row[i]), nil
}

func rowMatchesProduct(idx columnIndex, row []string, product string) bool {
	got, err := idx.field(row, "product")
	if err != nil {
		return false
	}
	return strings.EqualFold(got, product)
}

func parseRow(idx columnIndex, row []string) (models.RawRecord, error) {
	var rec models.RawRecord

	product, err := idx.field(row, "product")
	if err != nil {
		return rec, err
	}

	rawPrice, err := idx.field(row, "price")
	if err != nil {
		return rec, err
	}
	price, err := parsePrice(rawPrice)
	if err != nil {
		return rec, errors.PriceParseWrap(err, fmt.Sprintf("malformed price %q", rawPrice))
	}

	rawQuantity, err := idx.field(row, "quantity")
	if err != nil {
		return rec, err
	}
	quantity, err := strconv.Atoi(rawQuantity)
	if err != nil {
		return rec, fmt.Errorf("malformed quantity %q: %w", rawQuantity, err)
	}
	if quantity < 0 {
		return rec, fmt.Errorf("negative quantity %d", quantity)
	}

	rawDate, err := idx.field(row, "date")
	if err != nil {
		return rec, err
	}
	date, err := time.Parse(dateLayout, rawDate)
	if err != nil {
		return rec, fmt.Errorf("malformed date %q: %w", rawDate, err)
	}

	region, err := idx.field(row, "region")
	if err != nil {
		return rec, err
	}

	rec = models.RawRecord{
		Product:  product,
		Price:    price,
		Quantity: quantity,
		Date:     date,
		Region:   region,
	}
	return rec, nil
}

// parsePrice strips a single leading currency symbol and parses the rest
// as a non-negative decimal.
func parsePrice(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "$"))
	if s == "" {
		return decimal.Decimal{}, fmt.Errorf("empty price")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if d.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("negative price %s", d)
	}
	return d, nil
}

func (r *Report) summarize(records []models.NormalizedRecord) {
	if len(records) == 0 {
		return
	}

	r.FirstDate = records[0].Date
	r.LastDate = records[len(records)-1].Date
	r.MinSales = records[0].Sales
	r.MaxSales = records[0].Sales

	seen := make(map[string]bool)
	for _, rec := range records {
		if rec.Sales.LessThan(r.MinSales) {
			r.MinSales = rec.Sales
		}
		if rec.Sales.GreaterThan(r.MaxSales) {
			r.MaxSales = rec.Sales
		}
		if !seen[rec.Region] {
			seen[rec.Region] = true
			r.Regions = append(r.Regions, rec.Region)
		}
	}
	sort.Strings(r.Regions)
}
