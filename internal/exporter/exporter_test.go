package exporter

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"airmarket/internal/dataprocessing"
	apperrors "airmarket/internal/errors"
	"airmarket/pkg/contracts/domain"
)

var testNow = time.Date(2024, time.May, 1, 13, 45, 0, 0, time.UTC)

func newTestExporter(opts ...Option) *Exporter {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	opts = append([]Option{WithClock(func() time.Time { return testNow })}, opts...)
	return New(logger, opts...)
}

func sampleRecords() []domain.FlightRecord {
	day := func(d int) time.Time { return time.Date(2024, time.May, d, 0, 0, 0, 0, time.UTC) }
	return dataprocessing.Derive([]domain.FlightRecord{
		{Date: day(1), DepartureCity: "New York", DestinationCity: "Los Angeles", Airline: "Delta", FlightNumber: "DE101", Price: 350.5, Capacity: 200, Occupancy: 180},
		{Date: day(1), DepartureCity: "Chicago", DestinationCity: "Miami", Airline: "United", FlightNumber: "UN202", Price: 289.99, Capacity: 150, Occupancy: 90},
		{Date: day(2), DepartureCity: "Denver", DestinationCity: "Seattle", Airline: "JetBlue, Inc.", FlightNumber: "JE303", Price: 410, Capacity: 0, Occupancy: 75},
		{Date: day(3), DepartureCity: "New York", DestinationCity: "Los Angeles", Airline: "Delta", FlightNumber: "DE104", Price: 615.25, Capacity: 220, Occupancy: 230},
	})
}

func TestExport_CSVRoundTrip(t *testing.T) {
	records := sampleRecords()
	before := append([]domain.FlightRecord(nil), records...)

	data, err := newTestExporter().Export(context.Background(), records, dataprocessing.Aggregate(records), domain.FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, before, records, "records are not modified")

	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, len(records)+1)
	assert.Equal(t, RecordHeaders, rows[0])

	type pair struct {
		route string
		price float64
	}
	want := map[pair]int{}
	for _, r := range records {
		want[pair{r.Route, r.Price}]++
	}
	got := map[pair]int{}
	for _, row := range rows[1:] {
		price, err := strconv.ParseFloat(row[5], 64)
		require.NoError(t, err)
		got[pair{row[8], price}]++
	}
	assert.Equal(t, want, got)

	assert.Equal(t, []string{
		"2024-05-02", "Denver", "Seattle", "JetBlue, Inc.", "JE303",
		"410.00", "0", "75", "Denver → Seattle", "0.00", "30750.00",
	}, rows[3])
}

func TestExport_CSVWithBOM(t *testing.T) {
	data, err := newTestExporter(WithCSVBOM(true)).Export(context.Background(), nil, dataprocessing.Aggregate(nil), domain.FormatCSV)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, utf8BOM))
}

func TestExport_EmptySpreadsheet(t *testing.T) {
	data, err := newTestExporter().Export(context.Background(), nil, dataprocessing.Aggregate(nil), domain.FormatSpreadsheet)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetFlightData, SheetInsightsSummary}, f.GetSheetList())

	rows, err := f.GetRows(SheetFlightData)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, RecordHeaders, rows[0])
}

func TestExport_Spreadsheet(t *testing.T) {
	records := sampleRecords()
	data, err := newTestExporter().Export(context.Background(), records, dataprocessing.Aggregate(records), "xlsx")
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{
		SheetFlightData, SheetInsightsSummary, SheetPopularRoutes,
		SheetRoutePrices, SheetRouteSummary, SheetDailySummary,
	}, f.GetSheetList())

	rows, err := f.GetRows(SheetFlightData)
	require.NoError(t, err)
	assert.Len(t, rows, len(records)+1)

	summary, err := f.GetRows(SheetInsightsSummary)
	require.NoError(t, err)
	require.Len(t, summary, 7)
	assert.Equal(t, []string{"Total Flights", "4"}, summary[1])
	assert.Equal(t, "Unique Routes", summary[6][0])
	assert.Equal(t, "3", summary[6][1])

	popular, err := f.GetRows(SheetPopularRoutes)
	require.NoError(t, err)
	assert.Equal(t, []string{"New York → Los Angeles", "2"}, popular[1])
}

func TestExport_PDF(t *testing.T) {
	records := sampleRecords()
	insights := dataprocessing.Aggregate(records)

	compressed, err := newTestExporter().Export(context.Background(), records, insights, domain.FormatPDF)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(compressed, []byte("%PDF-")))

	plain, err := newTestExporter(WithPDFCompression(false), WithPDFSampleSize(2)).Export(context.Background(), records, insights, domain.FormatPDF)
	require.NoError(t, err)
	assert.Contains(t, string(plain), ReportTitle)
	assert.Contains(t, string(plain), "Executive Summary")
	assert.Contains(t, string(plain), "Data Sample \\(First 2 Records\\)")
	assert.Contains(t, string(plain), "1. New York -> Los Angeles: 2 flights")
	assert.Contains(t, string(plain), "Generated: 2024-05-01 13:45:00")

	short, err := newTestExporter(WithPDFCompression(false), WithPDFSampleSize(50)).Export(context.Background(), records, insights, domain.FormatPDF)
	require.NoError(t, err)
	assert.Contains(t, string(short), fmt.Sprintf("Data Sample \\(First %d Records\\)", len(records)))
	assert.NotContains(t, string(short), "First 50 Records")
}

func TestExport_EmptyPDF(t *testing.T) {
	data, err := newTestExporter(WithPDFCompression(false)).Export(context.Background(), nil, dataprocessing.Aggregate(nil), domain.FormatPDF)
	require.NoError(t, err)
	assert.Contains(t, string(data), "No route data available")
}

func TestExport_UnsupportedFormat(t *testing.T) {
	_, err := newTestExporter().Export(context.Background(), sampleRecords(), domain.InsightSet{}, "docx")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeUnsupportedFormat))
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWrite_WriterFailure(t *testing.T) {
	records := sampleRecords()
	for _, format := range domain.AllFormats {
		t.Run(string(format), func(t *testing.T) {
			err := newTestExporter().Write(context.Background(), failingWriter{}, records, dataprocessing.Aggregate(records), format)
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeExportFailed))
			assert.ErrorContains(t, err, "disk full")
		})
	}
}

type panickingWriter struct{}

func (panickingWriter) Write([]byte) (int, error) { panic("boom") }

func TestWrite_PanicIsRecovered(t *testing.T) {
	err := newTestExporter().Write(context.Background(), panickingWriter{}, sampleRecords(), domain.InsightSet{}, domain.FormatCSV)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeExportFailed))
	assert.ErrorContains(t, err, "boom")
}

func TestFilename(t *testing.T) {
	tests := []struct {
		prefix string
		format domain.ExportFormat
		want   string
	}{
		{"airline_analysis", domain.FormatCSV, "airline_analysis_20240501_134500.csv"},
		{"", domain.FormatSpreadsheet, "airline_analysis_20240501_134500.xlsx"},
		{"weekly", domain.FormatPDF, "weekly_20240501_134500.pdf"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Filename(tt.prefix, tt.format, testNow))
	}
}

func TestSaveReport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	records := sampleRecords()

	path, err := newTestExporter().SaveReport(context.Background(), dir, "test", records, dataprocessing.Aggregate(records), domain.FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "test_20240501_134500.csv"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("date,departure_city")))

	_, err = newTestExporter().SaveReport(context.Background(), dir, "test", records, domain.InsightSet{}, "html")
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeUnsupportedFormat))
}
