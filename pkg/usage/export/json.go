package export

import (
	"context"
	"encoding/json"
	"io"

	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/usage"
)

// JSONExporter writes records as one JSON array.
type JSONExporter struct {
	// Pretty indents the output with two spaces.
	Pretty bool
}

// NewJSONExporter creates a JSON exporter.
func NewJSONExporter(pretty bool) *JSONExporter {
	return &JSONExporter{Pretty: pretty}
}

// Export writes records to w.
func (e *JSONExporter) Export(ctx context.Context, records []*usage.UsageRecord, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return usage.NewExportError("json", len(records), err)
	}
	if records == nil {
		records = []*usage.UsageRecord{}
	}

	enc := json.NewEncoder(w)
	if e.Pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(records); err != nil {
		return usage.NewExportError("json", len(records), err)
	}
	return nil
}
