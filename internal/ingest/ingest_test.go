package ingest

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"morsel-dashboard/internal/errors"
)

const rawHeader = "product,price,quantity,date,region\n"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func createTempCSV(t *testing.T, content string) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "sales*.csv")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if _, err := f.WriteString(content); err != nil {
		t.Fatal(err)
	}
	return f.Name()
}

func runIngest(t *testing.T, sources ...string) (*Result, error) {
	t.Helper()
	return Run(context.Background(), testLogger(), Options{
		Sources: sources,
		Product: "pink morsel",
	})
}

func TestRun_NormalizesSingleRecord(t *testing.T) {
	f := createTempCSV(t, rawHeader+"Pink Morsel,$3.00,100,2021-01-10,north\n")

	result, err := runIngest(t, f)
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	if len(result.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(result.Records))
	}

	rec := result.Records[0]
	if !rec.Sales.Equal(decimal.NewFromInt(300)) {
		t.Errorf("expected sales 300, got %s", rec.Sales)
	}
	if got := rec.Date.Format("2006-01-02"); got != "2021-01-10" {
		t.Errorf("expected date 2021-01-10, got %s", got)
	}
	if rec.Region != "north" {
		t.Errorf("expected region north, got %q", rec.Region)
	}

	if len(result.Prices) != 1 || !result.Prices[0].Price.Equal(decimal.RequireFromString("3.00")) {
		t.Errorf("expected one observed price of 3.00, got %v", result.Prices)
	}
}

func TestRun_FiltersOtherProducts(t *testing.T) {
	f := createTempCSV(t, rawHeader+
		"gold morsel,$9.99,5,2021-01-10,north\n"+
		"PINK MORSEL,$3.00,10,2021-01-10,north\n"+
		"Gold Morsel,$9.99,5,2021-01-11,south\n"+
		"pink morselish,$3.00,10,2021-01-11,south\n")

	result, err := runIngest(t, f)
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	if result.Report.RowsRead != 4 {
		t.Errorf("expected 4 rows read, got %d", result.Report.RowsRead)
	}
	if len(result.Records) != 1 {
		t.Fatalf("expected only the case-folded exact match, got %d records", len(result.Records))
	}
	if result.Report.RowsSkipped != 0 {
		t.Errorf("non-matching rows are filtered, not skipped: got %d skipped", result.Report.RowsSkipped)
	}
}

func TestRun_SkipsMalformedRows(t *testing.T) {
	tests := []struct {
		name string
		row  string
	}{
		{"malformed price", "pink morsel,three dollars,10,2021-01-10,north\n"},
		{"negative price", "pink morsel,$-3.00,10,2021-01-10,north\n"},
		{"malformed quantity", "pink morsel,$3.00,ten,2021-01-10,north\n"},
		{"negative quantity", "pink morsel,$3.00,-10,2021-01-10,north\n"},
		{"malformed date", "pink morsel,$3.00,10,10/01/2021,north\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := createTempCSV(t, rawHeader+tt.row+"pink morsel,$3.00,10,2021-01-11,south\n")

			result, err := runIngest(t, f)
			if err != nil {
				t.Fatalf("Run() failed: %v", err)
			}

			if result.Report.RowsSkipped != 1 {
				t.Errorf("expected 1 skipped row, got %d", result.Report.RowsSkipped)
			}
			if len(result.Records) != 1 {
				t.Errorf("expected the valid row to survive, got %d records", len(result.Records))
			}
		})
	}
}

func TestRun_MissingColumnIsSchemaError(t *testing.T) {
	f := createTempCSV(t, "product,price,date,region\npink morsel,$3.00,2021-01-10,north\n")

	_, err := runIngest(t, f)
	if err == nil {
		t.Fatal("expected schema error for missing quantity column")
	}
	if code := errors.CodeOf(err); code != errors.CodeSchema {
		t.Errorf("expected %s, got %s", errors.CodeSchema, code)
	}
}

func TestRun_EmptyInputIsFatal(t *testing.T) {
	f := createTempCSV(t, rawHeader)

	_, err := runIngest(t, f)
	if err == nil {
		t.Fatal("expected error for input with no data rows")
	}
	if code := errors.CodeOf(err); code != errors.CodeSchema {
		t.Errorf("expected %s, got %s", errors.CodeSchema, code)
	}
}

func TestRun_NoMatchingProductIsFatal(t *testing.T) {
	f := createTempCSV(t, rawHeader+"gold morsel,$9.99,5,2021-01-10,north\n")

	_, err := runIngest(t, f)
	if err == nil {
		t.Fatal("expected error when no rows match the target product")
	}
	if code := errors.CodeOf(err); code != errors.CodeNotFound {
		t.Errorf("expected %s, got %s", errors.CodeNotFound, code)
	}
}

func TestRun_ZeroQuantityIsSoftWarning(t *testing.T) {
	f := createTempCSV(t, rawHeader+"pink morsel,$3.00,0,2021-01-10,north\n"+
		"pink morsel,$3.00,10,2021-01-11,north\n")

	result, err := runIngest(t, f)
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	if result.Report.ZeroQuantity != 1 {
		t.Errorf("expected 1 zero-quantity row, got %d", result.Report.ZeroQuantity)
	}
	if len(result.Records) != 2 {
		t.Fatalf("zero-quantity rows are retained, got %d records", len(result.Records))
	}
	if !result.Records[0].Sales.IsZero() {
		t.Errorf("expected sales 0 for zero-quantity row, got %s", result.Records[0].Sales)
	}
}

func TestRun_MultiSourceMergeAndStableSort(t *testing.T) {
	first := createTempCSV(t, rawHeader+
		"pink morsel,$3.00,20,2021-01-11,north\n"+
		"pink morsel,$3.00,10,2021-01-10,east\n")
	second := createTempCSV(t, rawHeader+
		"pink morsel,$3.00,30,2021-01-10,west\n"+
		"pink morsel,$3.00,10,2021-01-10,east\n") // duplicate of a first-source row

	result, err := runIngest(t, first, second)
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	// Duplicates across sources are counted twice.
	if len(result.Records) != 4 {
		t.Fatalf("expected 4 records, got %d", len(result.Records))
	}

	// Ascending by date; ties keep source-list order.
	regions := make([]string, len(result.Records))
	for i, rec := range result.Records {
		regions[i] = rec.Region
	}
	want := []string{"east", "west", "east", "north"}
	for i := range want {
		if regions[i] != want[i] {
			t.Fatalf("expected region order %v, got %v", want, regions)
		}
	}

	for i := 1; i < len(result.Records); i++ {
		if result.Records[i].Date.Before(result.Records[i-1].Date) {
			t.Error("records are not sorted ascending by date")
		}
	}
}

func TestRun_XLSXSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sales.xlsx")

	f := excelize.NewFile()
	rows := [][]any{
		{"product", "price", "quantity", "date", "region"},
		{"pink morsel", "$3.00", "100", "2021-01-10", "north"},
		{"gold morsel", "$9.99", "5", "2021-01-10", "north"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	f.Close()

	result, err := runIngest(t, path)
	if err != nil {
		t.Fatalf("Run() failed for xlsx source: %v", err)
	}
	if len(result.Records) != 1 {
		t.Fatalf("expected 1 record from xlsx, got %d", len(result.Records))
	}
	if !result.Records[0].Sales.Equal(decimal.NewFromInt(300)) {
		t.Errorf("expected sales 300, got %s", result.Records[0].Sales)
	}
}

func TestWriteNormalized_IdempotentOutput(t *testing.T) {
	source := createTempCSV(t, rawHeader+
		"pink morsel,$3.00,100,2021-01-10,north\n"+
		"pink morsel,$5.00,50,2021-01-20,south\n")

	result, err := runIngest(t, source)
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	dir := t.TempDir()
	first := filepath.Join(dir, "first.csv")
	second := filepath.Join(dir, "second.csv")

	if err := WriteNormalized(first, result.Records); err != nil {
		t.Fatalf("WriteNormalized() failed: %v", err)
	}
	if err := WriteNormalized(second, result.Records); err != nil {
		t.Fatalf("WriteNormalized() failed: %v", err)
	}

	a, err := os.ReadFile(first)
	if err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(second)
	if err != nil {
		t.Fatal(err)
	}
	if string(a) != string(b) {
		t.Error("expected byte-identical output across runs")
	}

	want := "sales,date,region\n300.00,2021-01-10,north\n250.00,2021-01-20,south\n"
	if string(a) != want {
		t.Errorf("unexpected output:\n got %q\nwant %q", a, want)
	}
}

func TestReadNormalized_RoundTrip(t *testing.T) {
	source := createTempCSV(t, rawHeader+
		"pink morsel,$3.00,100,2021-01-10,north\n"+
		"pink morsel,$5.00,50,2021-01-20,south\n")

	result, err := runIngest(t, source)
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "normalized.csv")
	if err := WriteNormalized(path, result.Records); err != nil {
		t.Fatalf("WriteNormalized() failed: %v", err)
	}

	records, err := ReadNormalized(path)
	if err != nil {
		t.Fatalf("ReadNormalized() failed: %v", err)
	}

	if len(records) != len(result.Records) {
		t.Fatalf("expected %d records, got %d", len(result.Records), len(records))
	}
	for i := range records {
		if !records[i].Sales.Equal(result.Records[i].Sales) ||
			!records[i].Date.Equal(result.Records[i].Date) ||
			records[i].Region != result.Records[i].Region {
			t.Errorf("record %d does not round-trip: %+v vs %+v", i, records[i], result.Records[i])
		}
	}
}

func TestReadNormalized_RejectsWrongSchema(t *testing.T) {
	path := createTempCSV(t, "foo,bar\n1,2\n")

	_, err := ReadNormalized(path)
	if err == nil {
		t.Fatal("expected schema error")
	}
	if code := errors.CodeOf(err); code != errors.CodeSchema {
		t.Errorf("expected %s, got %s", errors.CodeSchema, code)
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"$3.00", "3.00", false},
		{"3.00", "3.00", false},
		{"$5", "5", false},
		{" $3.50 ", "3.50", false},
		{"$", "", true},
		{"", "", true},
		{"$abc", "", true},
		{"$-1.00", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parsePrice(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("parsePrice(%q) expected error, got %s", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parsePrice(%q) failed: %v", tt.in, err)
			}
			if got.String() != tt.want {
				t.Errorf("parsePrice(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestRun_ReportDateRange(t *testing.T) {
	f := createTempCSV(t, rawHeader+
		"pink morsel,$3.00,100,2021-01-10,north\n"+
		"pink morsel,$5.00,50,2021-02-01,south\n")

	result, err := runIngest(t, f)
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	report := result.Report
	if !report.FirstDate.Equal(time.Date(2021, 1, 10, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected first date %v", report.FirstDate)
	}
	if !report.LastDate.Equal(time.Date(2021, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected last date %v", report.LastDate)
	}
	if len(report.Regions) != 2 || report.Regions[0] != "north" || report.Regions[1] != "south" {
		t.Errorf("unexpected regions %v", report.Regions)
	}
}
