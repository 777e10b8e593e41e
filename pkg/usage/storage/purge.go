package storage

import (
	"context"
	"time"

	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/usage"
)

// replacer is implemented by backends that can swap their whole contents
// in one step.
type replacer interface {
	Replace(ctx context.Context, records []*usage.UsageRecord) error
}

// Purge removes every record whose timestamp is before cutoff and returns
// the removed records. It loads all records, keeps the rest, clears the
// store and re-saves what is kept, in original order.
func Purge(ctx context.Context, store usage.Storage, cutoff time.Time) ([]*usage.UsageRecord, error) {
	records, err := store.Load(ctx, nil)
	if err != nil {
		return nil, err
	}

	var kept, removed []*usage.UsageRecord
	for _, rec := range records {
		if rec.Timestamp.Before(cutoff) {
			removed = append(removed, rec)
		} else {
			kept = append(kept, rec)
		}
	}

	if len(removed) == 0 {
		return nil, nil
	}

	if err := replaceAll(ctx, store, kept); err != nil {
		return nil, err
	}
	return removed, nil
}

func replaceAll(ctx context.Context, store usage.Storage, records []*usage.UsageRecord) error {
	if r, ok := store.(replacer); ok {
		return r.Replace(ctx, records)
	}

	if err := store.Clear(ctx); err != nil {
		return err
	}
	for _, rec := range records {
		if err := store.Save(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}
