package ingest

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/oduya/receipt-tracker/constants"
)

type WatchConfig struct {
	Roots       []string            // directories to watch (recursive)
	AllowedExts map[string]struct{} // nil -> constants.AllowedExtensions
	InitialScan bool                // walk roots and emit existing files first
	Debounce    time.Duration       // coalesce rapid write/rename bursts
}

// StartWatcher emits paths of new or changed receipt files under the
// configured roots until ctx is cancelled. Subdirectories created later
// are picked up as well.
func StartWatcher(ctx context.Context, cfg WatchConfig, logger *slog.Logger) (<-chan string, <-chan error, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(cfg.Roots) == 0 {
		return nil, nil, errors.New("no roots provided")
	}

	evCh := make(chan string, 256)
	errCh := make(chan error, 1)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Error("failed to create fsnotify watcher", "error", err)
		return nil, nil, err
	}

	addRoot := func(root string) error {
		return filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if d.IsDir() {
				return w.Add(path)
			}
			if cfg.InitialScan && watchAllowed(path, cfg.AllowedExts) {
				select {
				case evCh <- path:
				default:
				}
			}
			return nil
		})
	}
	for _, r := range cfg.Roots {
		if err := addRoot(r); err != nil {
			logger.Error("failed to add watch root", "root", r, "error", err)
			_ = w.Close()
			return nil, nil, err
		}
	}

	go func() {
		defer close(evCh)
		defer close(errCh)
		defer func() {
			if err := w.Close(); err != nil {
				logger.Warn("watcher close failed", "error", err)
			}
		}()

		var (
			mu      sync.Mutex
			timer   *time.Timer
			pending = map[string]struct{}{}
		)

		// flush runs on the AfterFunc goroutine as well as inline
		flush := func() {
			mu.Lock()
			defer mu.Unlock()
			for p := range pending {
				select {
				case evCh <- p:
				default:
				}
				delete(pending, p)
			}
		}

		for {
			select {
			case <-ctx.Done():
				return
			case e, ok := <-w.Events:
				if !ok {
					return
				}
				if e.Op.Has(fsnotify.Create) {
					// a new directory must be watched too; Add on a plain
					// file fails and that is fine
					_ = w.Add(e.Name)
				}
				if watchAllowed(e.Name, cfg.AllowedExts) && e.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
					mu.Lock()
					pending[e.Name] = struct{}{}
					if cfg.Debounce > 0 {
						if timer != nil {
							timer.Stop()
						}
						timer = time.AfterFunc(cfg.Debounce, flush)
						mu.Unlock()
					} else {
						mu.Unlock()
						flush()
					}
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Error("watcher error", "error", err)
				select {
				case errCh <- err:
				default:
				}
			}
		}
	}()

	return evCh, errCh, nil
}

func watchAllowed(path string, exts map[string]struct{}) bool {
	if exts == nil {
		return AllowedExt(filepath.Ext(path))
	}
	_, ok := exts[constants.NormalizeExt(filepath.Ext(path))]
	return ok
}
