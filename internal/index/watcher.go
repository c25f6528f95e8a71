package index

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/lcsc2kicad/internal/batch"
)

const watchDebounce = 200 * time.Millisecond

// IDCallback receives identifiers that appeared in the watched list for the
// first time during this session, in file order. It returns the ones that
// failed; those are offered again on the next change to the file.
type IDCallback func(ids []string) (failed []string)

// Watch follows a batch list file until ctx is cancelled. Writes are
// debounced and every pass calls cb with the identifiers not handled yet.
// Identifiers already present when Watch starts are reported immediately.
//
// The parent directory is watched rather than the file itself so editors
// that replace the file on save keep being followed.
func Watch(ctx context.Context, file string, logger *slog.Logger, cb IDCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	file = filepath.Clean(file)
	if err := w.Add(filepath.Dir(file)); err != nil {
		return err
	}
	logger.Info("watcher: started", slog.String("file", file))

	seen := make(map[string]struct{})
	scan := func() {
		ids, err := readIDFile(file)
		if err != nil {
			logger.Warn("watcher: read failed", slog.String("file", file), slog.String("error", err.Error()))
			return
		}
		var fresh []string
		for _, id := range ids {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			fresh = append(fresh, id)
		}
		if len(fresh) == 0 {
			return
		}
		logger.Debug("watcher: new ids", slog.Int("count", len(fresh)))
		failed := cb(fresh)
		for _, id := range failed {
			delete(seen, id)
		}
		if len(failed) > 0 {
			logger.Info("watcher: will retry on next save", slog.Int("count", len(failed)))
		}
	}
	scan()

	var debounce *time.Timer
	var debounceCh <-chan time.Time
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			logger.Info("watcher: stopped")
			return nil

		case <-debounceCh:
			debounceCh = nil
			scan()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != file || ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			if debounce == nil {
				debounce = time.NewTimer(watchDebounce)
			} else {
				debounce.Reset(watchDebounce)
			}
			debounceCh = debounce.C

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// readIDFile returns the identifiers listed in file; a missing file lists none.
func readIDFile(file string) ([]string, error) {
	f, err := os.Open(file)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return batch.ReadIDs(f)
}
