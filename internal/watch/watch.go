// Package watch converts tracking outputs as they arrive: it watches a
// directory and invokes the converter for each new .sdds file, so long
// simulator sessions can be post-processed without re-running a batch
// conversion at the end.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"trackctl/internal/toolchain"
)

// Watcher converts new files in a directory as they appear.
type Watcher struct {
	// Dir is the watched directory.
	Dir string

	// Suffix selects the files to convert; defaults to ".sdds".
	Suffix string

	// Converter is invoked with each new file's path.
	Converter toolchain.Tool

	// Log defaults to a nop logger.
	Log *zap.Logger
}

func (w *Watcher) logger() *zap.Logger {
	if w.Log == nil {
		return zap.NewNop()
	}
	return w.Log
}

func (w *Watcher) suffix() string {
	if w.Suffix == "" {
		return ".sdds"
	}
	return w.Suffix
}

// Run blocks until ctx is cancelled, converting each newly created matching
// file. A failed conversion is logged and does not stop the watch; only a
// watcher-level error or cancellation ends the loop.
func (w *Watcher) Run(ctx context.Context) error {
	if w.Converter == nil {
		return fmt.Errorf("converter tool is required")
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.Dir); err != nil {
		return fmt.Errorf("watching %s: %w", w.Dir, err)
	}
	w.logger().Info("watching for new tracking output",
		zap.String("dir", w.Dir), zap.String("suffix", w.suffix()))

	// A writer typically triggers Create followed by several Writes;
	// convert each path once.
	converted := make(map[string]struct{})

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			path := filepath.Clean(event.Name)
			if !strings.HasSuffix(path, w.suffix()) {
				continue
			}
			if _, done := converted[path]; done {
				continue
			}
			converted[path] = struct{}{}

			if err := w.Converter.Invoke(ctx, path); err != nil {
				w.logger().Error("conversion failed",
					zap.String("file", path), zap.Error(err))
				continue
			}
			w.logger().Info("converted", zap.String("file", path))
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch error: %w", err)
		}
	}
}
