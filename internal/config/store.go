package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
)

// Store is the copy-on-write configuration handle shared by the daemon's
// goroutines. Readers take a snapshot pointer and never see partial updates;
// the watcher and the API's config endpoint swap in whole replacements.
// Individual fields carry no cross-field consistency requirement, so a
// snapshot may lag a concurrent update by one read.
type Store struct {
	path    string
	current atomic.Pointer[Config]
}

// NewStore wraps an initial configuration and the path it was loaded from.
func NewStore(cfg *Config, path string) *Store {
	s := &Store{path: path}
	s.current.Store(cfg)
	return s
}

// Snapshot returns the current configuration. Callers must treat the result
// as read-only.
func (s *Store) Snapshot() *Config {
	return s.current.Load()
}

// Replace swaps in a new configuration snapshot.
func (s *Store) Replace(cfg *Config) {
	s.current.Store(cfg)
}

// Path returns the configuration file location backing this store.
func (s *Store) Path() string {
	return s.path
}

// Watch reloads the backing file whenever it changes on disk, until ctx is
// cancelled. Reload failures keep the previous snapshot and are logged; a
// broken edit must not take down a running sync.
func (s *Store) Watch(ctx context.Context, logger *slog.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create config watcher: %w", err)
	}

	// Watch the directory rather than the file: editors and the API's Save
	// replace the file, which would orphan a direct watch.
	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch config directory %q: %w", dir, err)
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
				if event.Name != s.path {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				cfg, _, _, err := Load(s.path)
				if err != nil {
					if logger != nil {
						logger.Warn("config reload failed; keeping previous snapshot",
							slog.String("path", s.path),
							slog.String("error", err.Error()),
						)
					}
					continue
				}
				s.Replace(cfg)
				if logger != nil {
					logger.Info("config reloaded",
						slog.String("path", s.path),
						slog.Bool("offset_active", cfg.TimeturnerOffset().Active()),
						slog.Bool("auto_sync", cfg.Sync.AutoSyncEnabled),
					)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				if logger != nil {
					logger.Warn("config watcher error", slog.String("error", err.Error()))
				}
			}
		}
	}()

	return nil
}
