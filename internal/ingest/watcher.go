package ingest

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchConfig configures the inbox watcher.
type WatchConfig struct {
	Root        string        // inbox directory to watch (recursive)
	InitialScan bool          // emit files already present at startup
	Debounce    time.Duration // coalesce rapid create/write bursts
}

// StartWatcher watches the inbox and emits paths of documents to process.
// Both channels close when ctx is cancelled. Scanners write into the
// inbox in bursts, so events are debounced before they are emitted.
func StartWatcher(ctx context.Context, cfg WatchConfig, logger *slog.Logger) (<-chan string, <-chan error, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Root == "" {
		return nil, nil, errors.New("watch root is required")
	}

	evCh := make(chan string, 256)
	errCh := make(chan error, 1)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Error("ingest.watcher.create_failed", "error", err)
		return nil, nil, err
	}

	err = filepath.WalkDir(cfg.Root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return w.Add(path)
		}
		if cfg.InitialScan && AllowedExt(filepath.Ext(path)) && !IsHidden(path) {
			select {
			case evCh <- path:
			default:
				logger.Warn("ingest.watcher.event_dropped", "path", path)
			}
		}
		return nil
	})
	if err != nil {
		logger.Error("ingest.watcher.add_root_failed", "root", cfg.Root, "error", err)
		_ = w.Close()
		return nil, nil, err
	}

	go func() {
		defer close(evCh)
		defer close(errCh)
		defer func() {
			if err := w.Close(); err != nil {
				logger.Warn("ingest.watcher.close_failed", "error", err)
			}
		}()

		var timer *time.Timer
		var timerC <-chan time.Time
		pending := map[string]struct{}{}

		sendPending := func() {
			flushPending(pending, evCh, logger)
		}

		for {
			select {
			case <-ctx.Done():
				return
			case <-timerC:
				timerC = nil
				sendPending()
			case e, ok := <-w.Events:
				if !ok {
					return
				}
				if e.Op.Has(fsnotify.Create) {
					// a created directory needs watching too; Add on a
					// plain file fails and is ignored on purpose
					_ = w.Add(e.Name)
				}
				if !AllowedExt(filepath.Ext(e.Name)) || IsHidden(e.Name) {
					continue
				}
				if e.Op.Has(fsnotify.Create) || e.Op.Has(fsnotify.Write) || e.Op.Has(fsnotify.Rename) {
					pending[e.Name] = struct{}{}
					if cfg.Debounce > 0 {
						if timer == nil {
							timer = time.NewTimer(cfg.Debounce)
						} else {
							if !timer.Stop() {
								select {
								case <-timer.C:
								default:
								}
							}
							timer.Reset(cfg.Debounce)
						}
						timerC = timer.C
					} else {
						sendPending()
					}
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Error("ingest.watcher.error", "error", err)
				select {
				case errCh <- err:
				default:
				}
			}
		}
	}()

	return evCh, errCh, nil
}

// flushPending forwards debounced paths, dropping with a warning when the
// consumer lags behind the channel buffer.
func flushPending(pending map[string]struct{}, evCh chan<- string, logger *slog.Logger) {
	for p := range pending {
		select {
		case evCh <- p:
		default:
			logger.Warn("ingest.watcher.event_dropped", "path", p)
		}
		delete(pending, p)
	}
}
