// Package repositories implements the persistence ports on top of a KVStore.
// Each repository owns one JSON document whose layout matches the files
// written by earlier versions of the tool.
package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/valutatrade_hub/internal/apperrors"
	portsrepo "github.com/SscSPs/valutatrade_hub/internal/core/ports/repositories"
)

// loadDocument decodes key into v. A missing document leaves v untouched and
// reports found=false.
func loadDocument(ctx context.Context, store portsrepo.KVStore, key string, v any) (bool, error) {
	data, err := store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if len(data) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return true, fmt.Errorf("document '%s' is corrupt: %w", key, err)
	}
	return true, nil
}

func saveDocument(ctx context.Context, store portsrepo.KVStore, key string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode document '%s': %w", key, err)
	}
	return store.Put(ctx, key, data)
}

const timestampLayout = "2006-01-02T15:04:05.999999Z07:00"

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// parseTimestamp accepts RFC 3339 and naive ISO-8601 timestamps; naive values are UTC.
func parseTimestamp(raw string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: invalid timestamp '%s'", apperrors.ErrValidation, raw)
}
