package library

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/starford/lcsc2kicad/internal/apperr"
)

// SymbolLibHeader is the content of a freshly created symbol container.
const SymbolLibHeader = "(kicad_symbol_lib (version 20211014) (generator lcsc2kicad)\n)\n"

// AddOrUpdate stores payload as the container entry named key. payload must
// be a complete top-level symbol entry ending in a newline. An existing key
// is replaced only when overwrite is set; otherwise ErrDuplicateComponent is
// returned and the container is left untouched. Only the key's own span
// changes; every other byte of the container is preserved.
func (l *Library) AddOrUpdate(ctx context.Context, key, payload string, overwrite bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return l.withLock(ctx, func() error {
		data, err := l.readContainer()
		if err != nil {
			return err
		}
		entries, rootEnd, err := scanTopLevel(data)
		if err != nil {
			return fmt.Errorf("%s: %w", l.SymbolFile(), err)
		}

		var out []byte
		if e, ok := findSymbol(entries, key); ok {
			if !overwrite {
				return fmt.Errorf("%w: %s already in %s", apperr.ErrDuplicateComponent, key, l.SymbolFile())
			}
			start, end := lineSpan(data, e.Start, e.End)
			out = splice(data, start, end, payload)
			l.logger.Debug("library: replacing symbol", slog.String("name", key))
		} else {
			at, ownLine := insertionPoint(data, rootEnd)
			if !ownLine {
				payload = "\n" + payload
			}
			out = splice(data, at, at, payload)
			l.logger.Debug("library: adding symbol", slog.String("name", key))
		}
		return l.writeContainer(out)
	})
}

// RemoveSymbols deletes every top-level symbol entry whose name ends in
// "_<id>" and returns how many were removed.
func (l *Library) RemoveSymbols(ctx context.Context, id string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	removed := 0
	err := l.withLock(ctx, func() error {
		data, err := l.store.Read(l.SymbolFile())
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %w", apperr.ErrLibrary, err)
		}
		entries, _, err := scanTopLevel(data)
		if err != nil {
			return fmt.Errorf("%s: %w", l.SymbolFile(), err)
		}
		out := data
		// Back to front so earlier offsets stay valid.
		for i := len(entries) - 1; i >= 0; i-- {
			e := entries[i]
			if e.Keyword != "symbol" || !matchesID(e.Name, id) {
				continue
			}
			start, end := lineSpan(out, e.Start, e.End)
			out = splice(out, start, end, "")
			removed++
		}
		if removed == 0 {
			return nil
		}
		return l.writeContainer(out)
	})
	return removed, err
}

// SymbolNames lists the names of all top-level symbol entries.
func (l *Library) SymbolNames(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := l.store.Read(l.SymbolFile())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrLibrary, err)
	}
	entries, _, err := scanTopLevel(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", l.SymbolFile(), err)
	}
	var names []string
	for _, e := range entries {
		if e.Keyword == "symbol" {
			names = append(names, e.Name)
		}
	}
	return names, nil
}

func (l *Library) readContainer() ([]byte, error) {
	data, err := l.store.Read(l.SymbolFile())
	if errors.Is(err, fs.ErrNotExist) {
		return []byte(SymbolLibHeader), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrLibrary, err)
	}
	return data, nil
}

func (l *Library) writeContainer(data []byte) error {
	if err := l.store.Write(l.SymbolFile(), data); err != nil {
		return fmt.Errorf("%w: %w", apperr.ErrLibrary, err)
	}
	return nil
}

func findSymbol(entries []span, name string) (span, bool) {
	for _, e := range entries {
		if e.Keyword == "symbol" && e.Name == name {
			return e, true
		}
	}
	return span{}, false
}

// splice returns data with data[start:end] replaced by s, in a new slice.
func splice(data []byte, start, end int, s string) []byte {
	var b bytes.Buffer
	b.Grow(len(data) - (end - start) + len(s))
	b.Write(data[:start])
	b.WriteString(s)
	b.Write(data[end:])
	return b.Bytes()
}
