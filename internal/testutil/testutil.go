// Package testutil provides shared test helpers for libraries, catalogs and
// canned conversions.
package testutil

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/starford/lcsc2kicad/internal/apperr"
	"github.com/starford/lcsc2kicad/internal/converter"
	"github.com/starford/lcsc2kicad/internal/index"
	"github.com/starford/lcsc2kicad/internal/library"
	"github.com/starford/lcsc2kicad/internal/models"
)

// TestDB creates a temporary catalog database that is automatically closed.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	db, err := index.Open(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestLibrary opens an empty library named "lcsc" in a temporary directory.
func TestLibrary(t *testing.T) *library.Library {
	t.Helper()
	lib, err := library.Open(filepath.Join(t.TempDir(), "lib"), "lcsc", slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatal(err)
	}
	return lib
}

// SymbolEntry returns a minimal symbol entry for name.
func SymbolEntry(name string) string {
	return fmt.Sprintf("  (symbol %q (in_bom yes) (on_board yes))\n", name)
}

// FakeConverter stores a canned symbol and footprint for every id it is asked
// to convert, without touching the network. Ids listed in Errors fail.
type FakeConverter struct {
	Lib    *library.Library
	DB     *index.DB
	Errors map[string]error

	mu    sync.Mutex
	calls []string
}

// Convert implements componentservice.Converter.
func (f *FakeConverter) Convert(ctx context.Context, id string, opts converter.Options) (*converter.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, id)
	f.mu.Unlock()

	if err := converter.ValidateID(id); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := f.Errors[id]; err != nil {
		return nil, err
	}
	name := "Part_" + id
	res := &converter.Result{ID: id, Name: name, Title: "Part " + id}
	if opts.Symbol {
		if err := f.Lib.AddOrUpdate(ctx, name, SymbolEntry(name), opts.Overwrite); err != nil {
			return nil, fmt.Errorf("symbol %s: %w", id, err)
		}
		res.Symbol = true
	}
	if opts.Footprint {
		if err := f.Lib.WriteFootprint(ctx, name, "(footprint \""+name+"\")\n"); err != nil {
			return nil, err
		}
		res.Footprint = true
	}
	if f.DB != nil {
		err := f.DB.UpsertComponent(ctx, models.ComponentSummary{
			ID:           id,
			Name:         name,
			Title:        res.Title,
			HasSymbol:    res.Symbol,
			HasFootprint: res.Footprint,
			UpdatedAt:    time.Now().UTC(),
		})
		if err != nil {
			return nil, err
		}
	}
	return res, nil
}

// ErrUnknownPart is the error a source reports for an unknown part.
var ErrUnknownPart = fmt.Errorf("%w: %w", apperr.ErrRemote, apperr.ErrComponentNotFound)

// CallIDs returns the ids converted so far.
func (f *FakeConverter) CallIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}
