package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/crawlmeter/crawlmeter/internal/domain/detection"
	"github.com/crawlmeter/crawlmeter/internal/domain/pricing"
	"github.com/crawlmeter/crawlmeter/internal/infrastructure/monitoring/logging"
)

// LoadRateTables reads a YAML rate-table file layered over the built-in
// defaults, so a partial file only overrides the keys it names. The result
// is validated before it is returned.
func LoadRateTables(path string) (pricing.RateTables, error) {
	tables := pricing.DefaultRateTables()

	data, err := os.ReadFile(path)
	if err != nil {
		return pricing.RateTables{}, fmt.Errorf("config: failed to read rate tables %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &tables); err != nil {
		return pricing.RateTables{}, fmt.Errorf("config: failed to parse rate tables %q: %w", path, err)
	}
	if err := tables.Validate(); err != nil {
		return pricing.RateTables{}, fmt.Errorf("config: rate tables %q: %w", path, err)
	}
	return tables, nil
}

// LoadSignatures reads a YAML actor-signature table. The file replaces the
// built-in table entirely, because table order is an observable contract and
// merging would make the effective order ambiguous.
func LoadSignatures(path string) ([]detection.ActorSignature, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read signatures %q: %w", path, err)
	}

	var sigs []detection.ActorSignature
	if err := yaml.Unmarshal(data, &sigs); err != nil {
		return nil, fmt.Errorf("config: failed to parse signatures %q: %w", path, err)
	}
	if err := detection.ValidateSignatures(sigs); err != nil {
		return nil, fmt.Errorf("config: signatures %q: %w", path, err)
	}
	return sigs, nil
}

// RateTableStore exposes an atomically swapped, immutable rate-table
// snapshot. Readers call Snapshot per pricing call and never observe a
// partially updated table; writers swap a fully validated replacement.
type RateTableStore struct {
	current atomic.Value // pricing.RateTables
}

// NewRateTableStore seeds the store with an initial snapshot.
func NewRateTableStore(tables pricing.RateTables) *RateTableStore {
	s := &RateTableStore{}
	s.current.Store(tables)
	return s
}

// Snapshot returns the current rate tables. The returned value must be
// treated as read-only.
func (s *RateTableStore) Snapshot() pricing.RateTables {
	return s.current.Load().(pricing.RateTables)
}

// Replace swaps in a new snapshot after validating it.
func (s *RateTableStore) Replace(tables pricing.RateTables) error {
	if err := tables.Validate(); err != nil {
		return err
	}
	s.current.Store(tables)
	return nil
}

// WatchFile reloads the store from path whenever the file changes on disk,
// until ctx is cancelled. A file that fails to parse or validate is skipped
// and the previous snapshot stays in effect. The parent directory is watched
// rather than the file itself so atomic rename-style rewrites are picked up.
func (s *RateTableStore) WatchFile(ctx context.Context, path string, logger logging.Logger) error {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	logger = logger.Named("ratewatcher")

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config: failed to create rate-table watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return fmt.Errorf("config: failed to watch %q: %w", path, err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(path) {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				tables, err := LoadRateTables(path)
				if err != nil {
					logger.Warn("rate-table reload skipped", logging.Err(err))
					continue
				}
				s.current.Store(tables)
				logger.Info("rate tables reloaded", logging.String("path", path))
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("rate-table watcher error", logging.Err(err))
			}
		}
	}()

	return nil
}
