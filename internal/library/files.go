package library

import (
	"context"
	"fmt"
	"log/slog"
	"path"

	"github.com/starford/lcsc2kicad/internal/apperr"
)

// Mesh file extensions, in the order they are reported.
const (
	ExtWRL  = "wrl"
	ExtSTEP = "step"
)

var modelExts = []string{ExtWRL, ExtSTEP}

// WriteFootprint stores content as <lib>.pretty/<name>.kicad_mod, replacing
// any previous file.
func (l *Library) WriteFootprint(ctx context.Context, name, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p := path.Join(l.FootprintDir(), name+".kicad_mod")
	if err := l.store.Write(p, []byte(content)); err != nil {
		return fmt.Errorf("%w: %w", apperr.ErrLibrary, err)
	}
	l.logger.Debug("library: wrote footprint", slog.String("path", p))
	return nil
}

// WriteModel stores a mesh as <lib>.3dshapes/<name>.<ext>.
func (l *Library) WriteModel(ctx context.Context, name, ext string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if ext != ExtWRL && ext != ExtSTEP {
		return fmt.Errorf("%w: model extension %q", apperr.ErrInvalidInput, ext)
	}
	p := path.Join(l.ModelDir(), name+"."+ext)
	if err := l.store.Write(p, data); err != nil {
		return fmt.Errorf("%w: %w", apperr.ErrLibrary, err)
	}
	l.logger.Debug("library: wrote model", slog.String("path", p))
	return nil
}

// RemoveFootprints deletes the footprint files of component id.
func (l *Library) RemoveFootprints(ctx context.Context, id string) (int, error) {
	return l.removeFiles(ctx, l.FootprintDir(), id, ".kicad_mod")
}

// RemoveModels deletes the mesh files of component id.
func (l *Library) RemoveModels(ctx context.Context, id string) (int, error) {
	total := 0
	for _, ext := range modelExts {
		n, err := l.removeFiles(ctx, l.ModelDir(), id, "."+ext)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func (l *Library) removeFiles(ctx context.Context, dir, id, ext string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	paths, err := l.store.Names(dir, ext)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", apperr.ErrLibrary, err)
	}
	n := 0
	for _, p := range paths {
		if !fileMatchesID(p, id, ext) {
			continue
		}
		if err := l.store.Delete(p); err != nil {
			return n, fmt.Errorf("%w: %w", apperr.ErrLibrary, err)
		}
		n++
	}
	return n, nil
}
