package export

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/usage"
)

// Format names an export encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ParseFormat accepts "json" or "csv", case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", usage.NewExportError(s, 0, fmt.Errorf("unsupported export format %q", s))
	}
}

// NewExporter returns the exporter for format. JSON output is indented and
// CSV output carries a header row.
func NewExporter(format Format) (usage.Exporter, error) {
	switch format {
	case FormatJSON:
		return NewJSONExporter(true), nil
	case FormatCSV:
		return NewCSVExporter(true), nil
	default:
		return nil, usage.NewExportError(string(format), 0, fmt.Errorf("unsupported export format %q", format))
	}
}

// Export writes records to w in the named format.
func Export(ctx context.Context, format string, records []*usage.UsageRecord, w io.Writer) error {
	f, err := ParseFormat(format)
	if err != nil {
		return usage.NewExportError(format, len(records), fmt.Errorf("unsupported export format %q", format))
	}
	exp, err := NewExporter(f)
	if err != nil {
		return err
	}
	return exp.Export(ctx, records, w)
}

// ExportString is Export into a string.
func ExportString(ctx context.Context, format string, records []*usage.UsageRecord) (string, error) {
	var buf bytes.Buffer
	if err := Export(ctx, format, records, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
