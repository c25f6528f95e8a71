package index

import (
	"context"
	"log/slog"
	"slices"

	"github.com/starford/lcsc2kicad/internal/library"
)

// Inspector reports which artifacts a library holds for a component.
type Inspector interface {
	Lookup(ctx context.Context, id string) (library.Artifacts, error)
}

// Sync brings the catalog in line with the library on disk:
//   - rows whose artifacts are all gone are deleted
//   - rows whose artifact flags drifted are rewritten
func Sync(ctx context.Context, db *DB, lib Inspector, logger *slog.Logger) error {
	ids, err := db.AllIDs(ctx)
	if err != nil {
		return err
	}

	for id := range ids {
		if err := ctx.Err(); err != nil {
			return err
		}
		art, err := lib.Lookup(ctx, id)
		if err != nil {
			logger.Warn("sync: lookup failed", slog.String("id", id), slog.String("error", err.Error()))
			continue
		}
		if art.Empty() {
			if err := db.DeleteComponent(ctx, id); err != nil {
				logger.Warn("sync: delete failed", slog.String("id", id), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("id", id))
			}
			continue
		}

		c, err := db.GetComponent(ctx, id)
		if err != nil {
			logger.Warn("sync: get failed", slog.String("id", id), slog.String("error", err.Error()))
			continue
		}
		if c.HasSymbol == art.Symbol && c.HasFootprint == art.Footprint && slices.Equal(c.ModelFormats, art.ModelFormats) {
			continue
		}
		c.HasSymbol = art.Symbol
		c.HasFootprint = art.Footprint
		c.ModelFormats = art.ModelFormats
		if err := db.UpsertComponent(ctx, *c); err != nil {
			logger.Warn("sync: update failed", slog.String("id", id), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: refreshed", slog.String("id", id))
		}
	}
	return nil
}
