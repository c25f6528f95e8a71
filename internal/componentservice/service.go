// Package componentservice coordinates conversion, removal and catalog
// queries for the HTTP and MCP front ends.
package componentservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/starford/lcsc2kicad/internal/batch"
	"github.com/starford/lcsc2kicad/internal/converter"
	"github.com/starford/lcsc2kicad/internal/index"
	"github.com/starford/lcsc2kicad/internal/library"
	"github.com/starford/lcsc2kicad/internal/metrics"
	"github.com/starford/lcsc2kicad/internal/models"
	"github.com/starford/lcsc2kicad/internal/sse"
)

// Converter runs one conversion.
type Converter interface {
	Convert(ctx context.Context, id string, opts converter.Options) (*converter.Result, error)
}

// Library removes stored components.
type Library interface {
	Remove(ctx context.Context, id string) (library.RemoveReport, error)
}

// Publisher receives component change notifications.
type Publisher interface {
	ComponentConverted(ev sse.Converted)
	ComponentRemoved(ev sse.Removed)
}

// Service coordinates the converter, the library and the catalog.
type Service struct {
	conv     Converter
	lib      Library
	db       index.Catalog
	events   Publisher
	defaults converter.Options
	logger   *slog.Logger
}

// NewService creates a new component service. events may be nil.
func NewService(conv Converter, lib Library, db index.Catalog, events Publisher, defaults converter.Options, logger *slog.Logger) *Service {
	return &Service{conv: conv, lib: lib, db: db, events: events, defaults: defaults, logger: logger}
}

// Defaults returns the conversion options configured for the service.
func (s *Service) Defaults() converter.Options { return s.defaults }

// Convert converts one component with opts and announces it.
func (s *Service) Convert(ctx context.Context, id string, opts converter.Options) (*converter.Result, error) {
	res, err := s.conv.Convert(ctx, id, opts)
	if err != nil {
		return nil, err
	}
	if s.events != nil {
		s.events.ComponentConverted(sse.Converted{
			ID:           res.ID,
			Name:         res.Name,
			Symbol:       res.Symbol,
			Footprint:    res.Footprint,
			ModelFormats: res.ModelFormats,
		})
	}
	return res, nil
}

// ConvertBatch converts ids with the batch orchestrator.
func (s *Service) ConvertBatch(ctx context.Context, ids []string, opts converter.Options, bopts batch.Options) (batch.Report, error) {
	task := func(ctx context.Context, id string) error {
		_, err := s.Convert(ctx, id, opts)
		return err
	}
	return batch.Run(ctx, ids, task, bopts, s.logger)
}

// Remove deletes every artifact of id from the library and the catalog.
// Removing an unknown id yields a zero report and no error. When some
// artifact classes fail, whatever was removed is still dropped from the
// catalog and announced, and the library error is returned.
func (s *Service) Remove(ctx context.Context, id string) (library.RemoveReport, error) {
	if err := converter.ValidateID(id); err != nil {
		return library.RemoveReport{}, err
	}
	rep, err := s.lib.Remove(ctx, id)
	metrics.RecordRemoval(rep.Symbols, rep.Footprints, rep.Models)
	if err != nil && rep.Total() == 0 {
		return rep, err
	}
	if dbErr := s.db.DeleteComponent(ctx, id); dbErr != nil {
		return rep, errors.Join(err, fmt.Errorf("remove %s: %w", id, dbErr))
	}
	if rep.Total() > 0 && s.events != nil {
		s.events.ComponentRemoved(sse.Removed{
			ID:         id,
			Symbols:    rep.Symbols,
			Footprints: rep.Footprints,
			Models:     rep.Models,
		})
	}
	return rep, err
}

// GetComponent returns the catalog entry for id.
func (s *Service) GetComponent(ctx context.Context, id string) (*models.ComponentSummary, error) {
	if err := converter.ValidateID(id); err != nil {
		return nil, err
	}
	return s.db.GetComponent(ctx, id)
}

// ListComponents returns a page of catalogued components.
func (s *Service) ListComponents(ctx context.Context, limit, offset int, sort string) ([]models.ComponentSummary, int, error) {
	items, total, err := s.db.ListComponents(ctx, limit, offset, sort)
	if err != nil {
		return nil, 0, err
	}
	return nonNilSlice(items), total, nil
}

// Search delegates catalog search to the index.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]models.ComponentSummary, error) {
	items, err := s.db.Search(ctx, query, limit)
	return nonNilSlice(items), err
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
