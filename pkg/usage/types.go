package usage

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/google/uuid"
)

// UsageRecord is a single tracked LLM call.
type UsageRecord struct {
	ID               string            `json:"id,omitempty"`
	Provider         Provider          `json:"provider"`
	Model            string            `json:"model"`
	PromptTokens     int               `json:"promptTokens"`
	CompletionTokens int               `json:"completionTokens"`
	TotalTokens      int               `json:"totalTokens"`
	EstimatedCost    float64           `json:"estimatedCost"`
	Prompt           string            `json:"prompt"`
	Completion       string            `json:"completion,omitempty"`
	Timestamp        time.Time         `json:"timestamp"`
	UserID           string            `json:"userId,omitempty"`
	SessionID        string            `json:"sessionId,omitempty"`
	Tags             []string          `json:"tags,omitempty"`
	ResponseTime     time.Duration     `json:"-"`
	Metadata         map[string]string `json:"metadata,omitempty"`
}

type recordJSON UsageRecord

type recordWire struct {
	*recordJSON
	ResponseTime int64 `json:"responseTime,omitempty"`
}

// MarshalJSON encodes ResponseTime as integer milliseconds.
func (r UsageRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(recordWire{
		recordJSON:   (*recordJSON)(&r),
		ResponseTime: r.ResponseTime.Milliseconds(),
	})
}

// UnmarshalJSON decodes ResponseTime from integer milliseconds.
func (r *UsageRecord) UnmarshalJSON(data []byte) error {
	wire := recordWire{recordJSON: (*recordJSON)(r)}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	r.ResponseTime = time.Duration(wire.ResponseTime) * time.Millisecond
	return nil
}

// Normalize enforces record invariants: an ID, TotalTokens equal to the
// sum of its parts, a timestamp (now when unset), and deduplicated tags.
func (r *UsageRecord) Normalize(now time.Time) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	r.TotalTokens = r.PromptTokens + r.CompletionTokens
	if r.Timestamp.IsZero() {
		r.Timestamp = now
	}
	r.Tags = dedupTags(r.Tags)
}

// Clone returns a deep copy of the record.
func (r *UsageRecord) Clone() *UsageRecord {
	c := *r
	if r.Tags != nil {
		c.Tags = append([]string(nil), r.Tags...)
	}
	if r.Metadata != nil {
		c.Metadata = make(map[string]string, len(r.Metadata))
		for k, v := range r.Metadata {
			c.Metadata[k] = v
		}
	}
	return &c
}

func dedupTags(tags []string) []string {
	if len(tags) < 2 {
		return tags
	}
	seen := make(map[string]struct{}, len(tags))
	out := tags[:0:0]
	for _, t := range tags {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// Filter narrows the records returned by Storage.Load. Zero fields do not
// filter. Date bounds are inclusive.
type Filter struct {
	UserID    string     `json:"userId,omitempty"`
	Provider  Provider   `json:"provider,omitempty"`
	Model     string     `json:"model,omitempty"`
	StartDate *time.Time `json:"startDate,omitempty"`
	EndDate   *time.Time `json:"endDate,omitempty"`

	// Limit caps the number of records returned; 0 means all.
	Limit int `json:"limit,omitempty"`
}

// Matches reports whether rec satisfies every set field of f. A nil filter
// matches everything.
func (f *Filter) Matches(rec *UsageRecord) bool {
	if f == nil {
		return true
	}
	if f.UserID != "" && rec.UserID != f.UserID {
		return false
	}
	if f.Provider != "" && rec.Provider != f.Provider {
		return false
	}
	if f.Model != "" && rec.Model != f.Model {
		return false
	}
	if f.StartDate != nil && rec.Timestamp.Before(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && rec.Timestamp.After(*f.EndDate) {
		return false
	}
	return true
}

// Apply filters records in order and applies the limit.
func (f *Filter) Apply(records []*UsageRecord) []*UsageRecord {
	out := make([]*UsageRecord, 0, len(records))
	for _, rec := range records {
		if !f.Matches(rec) {
			continue
		}
		out = append(out, rec)
		if f != nil && f.Limit > 0 && len(out) >= f.Limit {
			break
		}
	}
	return out
}

// Storage is the capability set every usage backend provides. Records are
// returned in insertion order.
type Storage interface {
	// Save appends a record.
	Save(ctx context.Context, record *UsageRecord) error

	// Load returns the records matching filter. A nil filter returns all.
	Load(ctx context.Context, filter *Filter) ([]*UsageRecord, error)

	// Clear removes every record.
	Clear(ctx context.Context) error
}

// Exporter writes records in a specific format.
type Exporter interface {
	Export(ctx context.Context, records []*UsageRecord, w io.Writer) error
}
