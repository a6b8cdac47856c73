// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"
)

// Watcher polls configuration files and reloads them when one changes.
// A file that appears after the watcher started counts as a change, so a
// profile overlay can be added while running.
type Watcher struct {
	mu        sync.RWMutex
	paths     []string
	profile   string
	interval  time.Duration
	seen      map[string]fileStamp
	config    *Config
	listeners []func(*Config)
	logger    *slog.Logger

	startOnce sync.Once
	stopOnce  sync.Once
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// fileStamp identifies one version of a file on disk.
type fileStamp struct {
	modTime time.Time
	size    int64
}

func stampOf(path string) (fileStamp, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return fileStamp{}, false
	}
	return fileStamp{modTime: info.ModTime(), size: info.Size()}, true
}

// WatcherOption configures the watcher.
type WatcherOption func(*Watcher)

// WithWatchInterval sets the polling interval.
func WithWatchInterval(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.interval = d
		}
	}
}

// WithWatchLogger sets the logger for reload events.
func WithWatchLogger(logger *slog.Logger) WatcherOption {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithWatchProfile merges the named profile overlay on every reload.
func WithWatchProfile(profile string) WatcherOption {
	return func(w *Watcher) {
		w.profile = profile
	}
}

// NewWatcher loads the configuration once and prepares to watch paths.
// The first path is the base config; the rest only trigger reloads.
func NewWatcher(paths []string, opts ...WatcherOption) (*Watcher, error) {
	w := &Watcher{
		paths:    paths,
		interval: time.Second,
		seen:     make(map[string]fileStamp, len(paths)),
		logger:   slog.Default(),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	for _, path := range paths {
		if stamp, ok := stampOf(path); ok {
			w.seen[path] = stamp
		}
	}

	cfg, err := w.loadConfig()
	if err != nil {
		return nil, err
	}
	w.config = cfg
	return w, nil
}

// OnChange registers a callback run after every successful reload.
func (w *Watcher) OnChange(fn func(*Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.listeners = append(w.listeners, fn)
}

// Config returns the current configuration.
func (w *Watcher) Config() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.config
}

// Start begins polling. Calling it more than once has no effect.
func (w *Watcher) Start(ctx context.Context) {
	w.startOnce.Do(func() {
		go w.watch(ctx)
	})
}

// Stop ends polling and waits for the loop to exit. It is safe to call
// more than once, and before Start.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
	})
	started := true
	w.startOnce.Do(func() {
		started = false
		close(w.doneCh)
	})
	if started {
		<-w.doneCh
	}
}

func (w *Watcher) watch(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			if changed := w.changedPaths(); len(changed) > 0 {
				w.reload(changed)
			}
		}
	}
}

// changedPaths returns the watched files whose stamp differs from the last
// one seen. Missing files are ignored until they reappear.
func (w *Watcher) changedPaths() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	var changed []string
	for _, path := range w.paths {
		stamp, ok := stampOf(path)
		if !ok {
			continue
		}
		if last, seen := w.seen[path]; seen && last == stamp {
			continue
		}
		w.seen[path] = stamp
		changed = append(changed, path)
	}
	return changed
}

func (w *Watcher) reload(changed []string) {
	cfg, err := w.loadConfig()
	if err != nil {
		w.logger.Error("config.reload.failed", "paths", changed, "error", err)
		return
	}

	w.mu.Lock()
	w.config = cfg
	listeners := append([]func(*Config){}, w.listeners...)
	w.mu.Unlock()

	w.logger.Info("config.reload", "paths", changed, "listeners", len(listeners))
	for _, fn := range listeners {
		fn(cfg)
	}
}

func (w *Watcher) loadConfig() (*Config, error) {
	if len(w.paths) == 0 {
		return Load("")
	}
	return LoadWithProfile(w.paths[0], w.profile)
}

// WatchConfig creates a watcher for the given config path and starts watching.
// The profile overlay is watched too, even before it exists.
func WatchConfig(ctx context.Context, configPath, profile string, opts ...WatcherOption) (*Watcher, *Config, error) {
	var paths []string
	if configPath != "" {
		paths = append(paths, configPath)
		if overlay := profileCandidate(configPath, profile); overlay != "" {
			paths = append(paths, overlay)
		}
	}

	opts = append(opts, WithWatchProfile(profile))
	watcher, err := NewWatcher(paths, opts...)
	if err != nil {
		return nil, nil, err
	}

	watcher.Start(ctx)
	return watcher, watcher.Config(), nil
}
