package export

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/usage"
)

// Columns is the fixed CSV column order.
var Columns = []string{
	"userId", "timestamp", "provider", "model",
	"promptTokens", "completionTokens", "totalTokens",
	"estimatedCost", "duration", "sessionId",
}

// CSVExporter writes records as CSV rows.
type CSVExporter struct {
	// IncludeHeader writes Columns as the first row.
	IncludeHeader bool
}

// NewCSVExporter creates a CSV exporter.
func NewCSVExporter(includeHeader bool) *CSVExporter {
	return &CSVExporter{IncludeHeader: includeHeader}
}

// Export writes records to w.
func (e *CSVExporter) Export(ctx context.Context, records []*usage.UsageRecord, w io.Writer) error {
	writer := csv.NewWriter(w)

	if e.IncludeHeader {
		if err := writer.Write(Columns); err != nil {
			return usage.NewExportError("csv", len(records), err)
		}
	}

	for i, rec := range records {
		if i%100 == 0 {
			if err := ctx.Err(); err != nil {
				return usage.NewExportError("csv", len(records), err)
			}
		}
		if err := writer.Write(recordToRow(rec)); err != nil {
			return usage.NewExportError("csv", len(records), err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return usage.NewExportError("csv", len(records), err)
	}
	return nil
}

func recordToRow(rec *usage.UsageRecord) []string {
	ts := ""
	if !rec.Timestamp.IsZero() {
		ts = rec.Timestamp.Format(time.RFC3339Nano)
	}
	return []string{
		rec.UserID,
		ts,
		string(rec.Provider),
		rec.Model,
		strconv.Itoa(rec.PromptTokens),
		strconv.Itoa(rec.CompletionTokens),
		strconv.Itoa(rec.TotalTokens),
		strconv.FormatFloat(rec.EstimatedCost, 'f', -1, 64),
		strconv.FormatInt(rec.ResponseTime.Milliseconds(), 10),
		rec.SessionID,
	}
}

// ParseCSV reads records written by CSVExporter. A header row matching
// Columns is skipped when present.
func ParseCSV(r io.Reader) ([]*usage.UsageRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(Columns)

	var records []*usage.UsageRecord
	for line := 1; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, usage.NewExportError("csv", len(records), err)
		}
		if line == 1 && row[0] == Columns[0] && row[1] == Columns[1] {
			continue
		}

		rec, err := rowToRecord(row)
		if err != nil {
			return nil, usage.NewExportError("csv", len(records), fmt.Errorf("line %d: %w", line, err))
		}
		records = append(records, rec)
	}
	return records, nil
}

func rowToRecord(row []string) (*usage.UsageRecord, error) {
	rec := &usage.UsageRecord{
		UserID:    row[0],
		Provider:  usage.Provider(row[2]),
		Model:     row[3],
		SessionID: row[9],
	}

	if row[1] != "" {
		ts, err := time.Parse(time.RFC3339Nano, row[1])
		if err != nil {
			return nil, fmt.Errorf("timestamp: %w", err)
		}
		rec.Timestamp = ts
	}

	ints := []struct {
		name string
		raw  string
		dst  *int
	}{
		{"promptTokens", row[4], &rec.PromptTokens},
		{"completionTokens", row[5], &rec.CompletionTokens},
		{"totalTokens", row[6], &rec.TotalTokens},
	}
	for _, f := range ints {
		v, err := strconv.Atoi(f.raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.name, err)
		}
		*f.dst = v
	}

	cost, err := strconv.ParseFloat(row[7], 64)
	if err != nil {
		return nil, fmt.Errorf("estimatedCost: %w", err)
	}
	rec.EstimatedCost = cost

	ms, err := strconv.ParseInt(row[8], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("duration: %w", err)
	}
	rec.ResponseTime = time.Duration(ms) * time.Millisecond

	return rec, nil
}
