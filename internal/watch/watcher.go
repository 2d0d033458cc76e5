// Package watch tails a hand-history export directory and hands files
// to a callback once their writes have settled. Poker clients append to
// export files in bursts, so each file gets a debounce timer that
// resets on every write event.
package watch

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultSettle is how long a file must stay quiet before it is
// considered fully exported.
const DefaultSettle = 2 * time.Second

// Watcher watches one directory for hand-history exports.
type Watcher struct {
	dir    string
	settle time.Duration
	clock  quartz.Clock
	logger zerolog.Logger
	handle func(path string)

	mu     sync.Mutex
	timers map[string]*quartz.Timer
}

// New creates a watcher. The clock is injected so tests can drive the
// debounce deterministically; pass quartz.NewReal() in production.
func New(dir string, settle time.Duration, clock quartz.Clock, logger zerolog.Logger, handle func(path string)) *Watcher {
	if settle <= 0 {
		settle = DefaultSettle
	}
	return &Watcher{
		dir:    dir,
		settle: settle,
		clock:  clock,
		logger: logger,
		handle: handle,
		timers: make(map[string]*quartz.Timer),
	}
}

// Run watches until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return err
	}
	w.logger.Info().Str("dir", w.dir).Dur("settle", w.settle).Msg("watching for hand history exports")

	for {
		select {
		case <-ctx.Done():
			w.stopTimers()
			return ctx.Err()
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				w.bump(event.Name)
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn().Err(err).Msg("watcher error")
		}
	}
}

// bump starts or resets the settle timer for a file.
func (w *Watcher) bump(path string) {
	base := strings.ToLower(filepath.Base(path))
	if !strings.HasSuffix(base, ".txt") {
		return
	}
	// Never pick up our own output when it lands in the watched directory.
	if strings.Contains(base, ".resolved.") {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.timers[path]; ok {
		timer.Reset(w.settle)
		return
	}
	w.timers[path] = w.clock.AfterFunc(w.settle, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()

		w.logger.Debug().Str("file", filepath.Base(path)).Msg("export settled")
		w.handle(path)
	})
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, timer := range w.timers {
		timer.Stop()
		delete(w.timers, path)
	}
}
