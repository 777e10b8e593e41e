package retention

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/config"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/telemetry/logging"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/telemetry/metrics"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/usage"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/usage/export"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/usage/storage"
)

// archiveTimeFormat names archive files usage-YYYY-MM-DD-HHMMSS.json.
const archiveTimeFormat = "2006-01-02-150405"

// Pruner deletes records older than the retention window.
type Pruner struct {
	storage usage.Storage
	config  config.RetentionConfig
	logger  *logging.Logger
	metrics *metrics.Collector
	now     func() time.Time
}

// NewPruner creates a pruner over store. logger and collector may be nil.
func NewPruner(store usage.Storage, cfg config.RetentionConfig, logger *logging.Logger, collector *metrics.Collector) *Pruner {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Pruner{
		storage: store,
		config:  cfg,
		logger:  logger.Named("retention"),
		metrics: collector,
		now:     time.Now,
	}
}

// SetClock replaces the time source.
func (p *Pruner) SetClock(now func() time.Time) {
	p.now = now
}

// RetentionDays returns the configured window.
func (p *Pruner) RetentionDays() int {
	return p.config.Days
}

// Cutoff returns the oldest timestamp that is kept.
func (p *Pruner) Cutoff() time.Time {
	return p.now().Add(-time.Duration(p.config.Days) * 24 * time.Hour)
}

// Prune removes expired records and returns how many were removed. It is a
// no-op when RetentionDays is 0.
func (p *Pruner) Prune(ctx context.Context) (int, error) {
	if p.config.Days <= 0 {
		return 0, nil
	}

	cutoff := p.Cutoff()
	removed, err := storage.Purge(ctx, p.storage, cutoff)
	if err != nil {
		return 0, usage.NewRetentionError(p.config.Days, err)
	}
	if len(removed) == 0 {
		return 0, nil
	}

	if p.config.ArchiveBeforeDelete {
		path, err := p.archive(ctx, removed)
		if err != nil {
			// Records are already gone; the archive failure is reported only.
			p.logger.Error("failed to archive pruned records", "error", err, "count", len(removed))
		} else {
			p.logger.Info("pruned records archived", "path", path, "count", len(removed))
		}
	}

	p.metrics.RecordPruned(len(removed))
	p.logger.Info("usage records pruned",
		"count", len(removed),
		"cutoff", cutoff.Format(time.RFC3339),
		"retention_days", p.config.Days,
	)
	return len(removed), nil
}

func (p *Pruner) archive(ctx context.Context, records []*usage.UsageRecord) (string, error) {
	dir := p.config.ArchivePath
	if dir == "" {
		dir = config.DefaultRetentionArchiveDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create archive directory: %w", err)
	}

	name := fmt.Sprintf("usage-%s.json", p.now().UTC().Format(archiveTimeFormat))
	path := filepath.Join(dir, name)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return "", fmt.Errorf("create archive file: %w", err)
	}

	if err := export.NewJSONExporter(true).Export(ctx, records, f); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return path, nil
}
