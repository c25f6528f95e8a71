// Package library manages the on-disk KiCad library shared by conversions:
// one symbol container, one footprint directory and one 3D model directory.
//
// The symbol container is mutated under an in-process mutex and a
// cross-process file lock, and every write is atomic, so readers observe
// either the previous or the next complete document.
package library

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofrs/flock"

	"github.com/starford/lcsc2kicad/internal/apperr"
	"github.com/starford/lcsc2kicad/internal/storage"
)

// Library is a KiCad library rooted at one directory.
type Library struct {
	name   string
	root   string
	store  storage.Provider
	logger *slog.Logger

	mu   sync.Mutex
	lock *flock.Flock
}

// Open prepares the library directory, creating it when missing.
func Open(dir, name string, logger *slog.Logger) (*Library, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return nil, fmt.Errorf("%w: library name %q", apperr.ErrInvalidInput, name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create %s: %w", apperr.ErrLibrary, dir, err)
	}
	store, err := storage.NewFS(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrLibrary, err)
	}
	return &Library{
		name:   name,
		root:   store.Root(),
		store:  store,
		logger: logger,
		lock:   flock.New(filepath.Join(store.Root(), "."+name+".lock")),
	}, nil
}

// Name returns the library nickname used in footprint links.
func (l *Library) Name() string { return l.name }

// Dir returns the absolute library directory.
func (l *Library) Dir() string { return l.root }

// Store exposes the file provider backing the library.
func (l *Library) Store() storage.Provider { return l.store }

// SymbolFile is the shared container path relative to Dir.
func (l *Library) SymbolFile() string { return l.name + ".kicad_sym" }

// FootprintDir is the footprint directory relative to Dir.
func (l *Library) FootprintDir() string { return l.name + ".pretty" }

// ModelDir is the 3D model directory relative to Dir.
func (l *Library) ModelDir() string { return l.name + ".3dshapes" }

// RemoveReport counts what Remove deleted per artifact class.
type RemoveReport struct {
	Symbols    int `json:"symbols"`
	Footprints int `json:"footprints"`
	Models     int `json:"models"`
}

// Total is the number of removed artifacts.
func (r RemoveReport) Total() int { return r.Symbols + r.Footprints + r.Models }

// Remove deletes every artifact of component id. All three classes are
// attempted; failures are joined. An unknown id yields a zero report.
func (l *Library) Remove(ctx context.Context, id string) (RemoveReport, error) {
	var (
		rep  RemoveReport
		errs []error
		err  error
	)
	if rep.Symbols, err = l.RemoveSymbols(ctx, id); err != nil {
		errs = append(errs, err)
	}
	if rep.Footprints, err = l.RemoveFootprints(ctx, id); err != nil {
		errs = append(errs, err)
	}
	if rep.Models, err = l.RemoveModels(ctx, id); err != nil {
		errs = append(errs, err)
	}
	l.logger.Info("library: removed component",
		slog.String("id", id),
		slog.Int("symbols", rep.Symbols),
		slog.Int("footprints", rep.Footprints),
		slog.Int("models", rep.Models))
	return rep, errors.Join(errs...)
}

// Artifacts describes what the library holds for one component.
type Artifacts struct {
	Symbol       bool
	Footprint    bool
	ModelFormats []string
}

// Empty reports whether nothing is stored.
func (a Artifacts) Empty() bool { return !a.Symbol && !a.Footprint && len(a.ModelFormats) == 0 }

// Lookup reports which artifacts exist for component id.
func (l *Library) Lookup(ctx context.Context, id string) (Artifacts, error) {
	var a Artifacts
	names, err := l.SymbolNames(ctx)
	if err != nil {
		return a, err
	}
	for _, n := range names {
		if matchesID(n, id) {
			a.Symbol = true
			break
		}
	}
	fps, err := l.store.Names(l.FootprintDir(), ".kicad_mod")
	if err != nil {
		return a, fmt.Errorf("%w: %w", apperr.ErrLibrary, err)
	}
	for _, p := range fps {
		if fileMatchesID(p, id, ".kicad_mod") {
			a.Footprint = true
			break
		}
	}
	for _, ext := range modelExts {
		models, err := l.store.Names(l.ModelDir(), "."+ext)
		if err != nil {
			return a, fmt.Errorf("%w: %w", apperr.ErrLibrary, err)
		}
		for _, p := range models {
			if fileMatchesID(p, id, "."+ext) {
				a.ModelFormats = append(a.ModelFormats, ext)
				break
			}
		}
	}
	return a, nil
}

// matchesID reports whether a component name belongs to id.
func matchesID(name, id string) bool { return strings.HasSuffix(name, "_"+id) }

func fileMatchesID(path, id, ext string) bool {
	base := filepath.Base(path)
	return strings.HasSuffix(base, ext) && matchesID(strings.TrimSuffix(base, ext), id)
}
