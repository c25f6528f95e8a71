package library

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/starford/lcsc2kicad/internal/apperr"
)

const lockRetry = 20 * time.Millisecond

// withLock runs fn holding both the in-process mutex and the library file
// lock, so concurrent goroutines and other processes serialize their
// read-modify-write cycles on the symbol container.
func (l *Library) withLock(ctx context.Context, fn func() error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	ok, err := l.lock.TryLockContext(ctx, lockRetry)
	if err != nil {
		return fmt.Errorf("%w: acquire lock: %w", apperr.ErrLibrary, err)
	}
	if !ok {
		return fmt.Errorf("%w: lock %s held elsewhere", apperr.ErrLibrary, l.lock.Path())
	}
	defer func() {
		if err := l.lock.Unlock(); err != nil {
			l.logger.Warn("library: release lock failed", slog.String("error", err.Error()))
		}
	}()
	return fn()
}
